package finder

import (
	"strings"

	"shortsbot/ledger"
	"shortsbot/types"
)

// Filter is a pure predicate over a candidate
type Filter func(c types.Candidate) bool

// MinLikes keeps candidates with at least n likes
func MinLikes(n int64) Filter {
	return func(c types.Candidate) bool {
		return c.LikeCount >= n
	}
}

// DurationWithin keeps candidates with 0 < duration <= max
func DurationWithin(max float64) Filter {
	return func(c types.Candidate) bool {
		return c.DurationSeconds > 0 && c.DurationSeconds <= max
	}
}

// MatchesTags keeps candidates where any query tag appears, case-insensitively,
// inside the joined metadata tags or the title. An empty tag list matches everything.
func MatchesTags(tags []string) Filter {
	keywords := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			keywords = append(keywords, t)
		}
	}
	return func(c types.Candidate) bool {
		if len(keywords) == 0 {
			return true
		}
		haystack := strings.ToLower(strings.Join(c.Tags, ", ") + " " + c.Title)
		for _, k := range keywords {
			if strings.Contains(haystack, k) {
				return true
			}
		}
		return false
	}
}

// NotSeen drops candidates already recorded in the ledger
func NotSeen(seen ledger.Set) Filter {
	return func(c types.Candidate) bool {
		return !seen.Has(c.ID)
	}
}

// ApplyFilters returns the candidates that pass every filter, in input order
func ApplyFilters(cands []types.Candidate, filters ...Filter) []types.Candidate {
	out := make([]types.Candidate, 0, len(cands))
next:
	for _, c := range cands {
		for _, f := range filters {
			if !f(c) {
				continue next
			}
		}
		out = append(out, c)
	}
	return out
}
