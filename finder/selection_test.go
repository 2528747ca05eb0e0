package finder

import (
	"fmt"
	"math/rand"
	"testing"

	"shortsbot/types"
)

func withDurations(durs ...float64) []types.Candidate {
	out := make([]types.Candidate, len(durs))
	for i, d := range durs {
		out[i] = types.Candidate{ID: fmt.Sprintf("v%d", i), DurationSeconds: d}
	}
	return out
}

func TestCombinatorialSelectionEndToEnd(t *testing.T) {
	sel := &CombinatorialSelector{Rand: rand.New(rand.NewSource(1))}
	got := sel.Select(withDurations(25, 10, 20, 12, 15), Limits{MinClips: 4, MaxClips: 8, Ceiling: 58})

	if len(got) != 4 {
		t.Fatalf("selected %d clips; want 4", len(got))
	}
	if got.TotalDuration() != 57 {
		t.Fatalf("total = %v; want 57", got.TotalDuration())
	}
}

func TestCombinatorialSelectionRespectsLimits(t *testing.T) {
	limits := Limits{MinClips: 4, MaxClips: 8, Ceiling: 58}
	for seed := int64(0); seed < 50; seed++ {
		rng := rand.New(rand.NewSource(seed))
		n := 3 + rng.Intn(15)
		durs := make([]float64, n)
		for i := range durs {
			durs[i] = float64(1 + rng.Intn(30))
		}

		got := (&CombinatorialSelector{Rand: rng}).Select(withDurations(durs...), limits)
		if got == nil {
			continue
		}
		if got.TotalDuration() > limits.Ceiling {
			t.Fatalf("seed %d: total %v exceeds ceiling", seed, got.TotalDuration())
		}
		if len(got) < limits.MinClips || len(got) > limits.MaxClips {
			t.Fatalf("seed %d: count %d outside [%d,%d]", seed, len(got), limits.MinClips, limits.MaxClips)
		}
	}
}

func TestCombinatorialSelectionEmpty(t *testing.T) {
	sel := &CombinatorialSelector{Rand: rand.New(rand.NewSource(1))}
	if got := sel.Select(withDurations(30, 40, 50), Limits{MinClips: 4, MaxClips: 8, Ceiling: 58}); got != nil {
		t.Fatalf("expected empty selection, got %v", got)
	}
}

func TestSampleSelection(t *testing.T) {
	sel := &SampleSelector{Rand: rand.New(rand.NewSource(2))}
	got := sel.Select(withDurations(50, 50, 50, 50, 50, 50, 50, 50, 50, 50), Limits{MinClips: 4, MaxClips: 8, Ceiling: 58})
	if len(got) != 8 {
		t.Fatalf("selected %d; want 8", len(got))
	}
	seen := map[string]bool{}
	for _, c := range got {
		if seen[c.ID] {
			t.Fatalf("duplicate %s in sample", c.ID)
		}
		seen[c.ID] = true
	}
}

func TestNewSelector(t *testing.T) {
	if _, ok := NewSelector("sample", nil).(*SampleSelector); !ok {
		t.Fatalf("sample policy should yield SampleSelector")
	}
	if _, ok := NewSelector("combinatorial", nil).(*CombinatorialSelector); !ok {
		t.Fatalf("combinatorial policy should yield CombinatorialSelector")
	}
}
