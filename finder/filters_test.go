package finder

import (
	"reflect"
	"testing"

	"shortsbot/ledger"
	"shortsbot/types"
)

func sampleCandidates() []types.Candidate {
	return []types.Candidate{
		{ID: "a", Title: "Cat fails", DurationSeconds: 12, LikeCount: 10000, Tags: []string{"Funny", "cats"}},
		{ID: "b", Title: "Long talk", DurationSeconds: 300, LikeCount: 50000, Tags: []string{"funny"}},
		{ID: "c", Title: "Zero", DurationSeconds: 0, LikeCount: 9000, Tags: []string{"viral"}},
		{ID: "d", Title: "Unpopular", DurationSeconds: 20, LikeCount: 10, Tags: []string{"funny"}},
		{ID: "e", Title: "VIRAL dance", DurationSeconds: 58, LikeCount: 7000},
		{ID: "f", Title: "Cooking", DurationSeconds: 30, LikeCount: 8000, Tags: []string{"food"}},
	}
}

func ids(cands []types.Candidate) []string {
	out := make([]string, 0, len(cands))
	for _, c := range cands {
		out = append(out, c.ID)
	}
	return out
}

func TestFilters(t *testing.T) {
	cands := sampleCandidates()
	tagFilter := MatchesTags([]string{"funny", "viral"})

	got := ApplyFilters(cands, MinLikes(7000), DurationWithin(58), tagFilter)
	want := []string{"a", "e"}
	if !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("ApplyFilters = %v; want %v", ids(got), want)
	}

	got = ApplyFilters(got, NotSeen(ledger.NewSet("a")))
	if !reflect.DeepEqual(ids(got), []string{"e"}) {
		t.Fatalf("NotSeen = %v", ids(got))
	}
}

func TestFiltersAreIdempotent(t *testing.T) {
	filters := []Filter{
		MinLikes(7000),
		DurationWithin(58),
		MatchesTags([]string{"funny"}),
		NotSeen(ledger.NewSet("b")),
	}
	for i, f := range filters {
		once := ApplyFilters(sampleCandidates(), f)
		twice := ApplyFilters(once, f)
		if !reflect.DeepEqual(ids(once), ids(twice)) {
			t.Fatalf("filter %d not idempotent: %v then %v", i, ids(once), ids(twice))
		}
	}
}

func TestMatchesTagsEmptyMatchesAll(t *testing.T) {
	got := ApplyFilters(sampleCandidates(), MatchesTags(nil))
	if len(got) != len(sampleCandidates()) {
		t.Fatalf("empty tag list should match all, got %d", len(got))
	}
}
