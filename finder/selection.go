package finder

import (
	"math/rand"
	"sort"

	"shortsbot/types"
)

// Limits bounds a selection
type Limits struct {
	MinClips int
	MaxClips int
	Ceiling  float64 // total duration ceiling in seconds
}

// Selector picks the clips for one compilation
type Selector interface {
	Select(cands []types.Candidate, limits Limits) types.Selection
}

// NewSelector returns the selector for a policy name
func NewSelector(policy string, rng *rand.Rand) Selector {
	if policy == "sample" {
		return &SampleSelector{Rand: rng}
	}
	return &CombinatorialSelector{Rand: rng}
}

// CombinatorialSelector builds one greedy shortest-first set per clip count in
// [MinClips, MaxClips] and picks one of the sets that reached its count.
type CombinatorialSelector struct {
	Rand *rand.Rand
}

// Select implements Selector
func (s *CombinatorialSelector) Select(cands []types.Candidate, limits Limits) types.Selection {
	sorted := make([]types.Candidate, len(cands))
	copy(sorted, cands)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DurationSeconds < sorted[j].DurationSeconds
	})

	var valid []types.Selection
	for n := limits.MinClips; n <= limits.MaxClips; n++ {
		total := 0.0
		var picked types.Selection
		for _, c := range sorted {
			if total+c.DurationSeconds <= limits.Ceiling {
				picked = append(picked, c)
				total += c.DurationSeconds
				if len(picked) == n {
					break
				}
			}
		}
		if n > 0 && len(picked) == n {
			valid = append(valid, picked)
		}
	}

	if len(valid) == 0 {
		return nil
	}
	return valid[intn(s.Rand, len(valid))]
}

// SampleSelector shuffles the candidates and keeps the first MaxClips.
// Only the per-clip duration filter bounds the total.
type SampleSelector struct {
	Rand *rand.Rand
}

// Select implements Selector
func (s *SampleSelector) Select(cands []types.Candidate, limits Limits) types.Selection {
	shuffled := make(types.Selection, len(cands))
	copy(shuffled, cands)
	shuffle(s.Rand, len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if limits.MaxClips > 0 && len(shuffled) > limits.MaxClips {
		shuffled = shuffled[:limits.MaxClips]
	}
	if len(shuffled) == 0 {
		return nil
	}
	return shuffled
}

func intn(rng *rand.Rand, n int) int {
	if rng == nil {
		return rand.Intn(n)
	}
	return rng.Intn(n)
}

func shuffle(rng *rand.Rand, n int, swap func(i, j int)) {
	if rng == nil {
		rand.Shuffle(n, swap)
		return
	}
	rng.Shuffle(n, swap)
}
