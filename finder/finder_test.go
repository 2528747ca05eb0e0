package finder

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"shortsbot/ledger"
	"shortsbot/types"
)

type fakeSource struct {
	name  string
	cands []types.Candidate
	err   error
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Search(context.Context, Query, Window) ([]types.Candidate, error) {
	return f.cands, f.err
}

type fakeLedger struct {
	seen     ledger.Set
	recorded []string
}

func (f *fakeLedger) Load(context.Context) (ledger.Set, error) { return f.seen, nil }

func (f *fakeLedger) Record(_ context.Context, ids []string) error {
	f.recorded = append(f.recorded, ids...)
	return nil
}

func (f *fakeLedger) Close() error { return nil }

func funnyCandidates(durs ...float64) []types.Candidate {
	out := withDurations(durs...)
	for i := range out {
		out[i].URL = "https://youtube.com/watch?v=" + out[i].ID
		out[i].LikeCount = 10000
		out[i].Tags = []string{"funny"}
	}
	return out
}

func defaultQuery() Query {
	return Query{Tags: []string{"funny"}, MinClips: 4, MaxClips: 8, Ceiling: 58, MinLikes: 7000}
}

func TestFindSelectsAndRecords(t *testing.T) {
	src := &fakeSource{name: "yt", cands: funnyCandidates(10, 12, 15, 20, 25)}
	led := &fakeLedger{seen: ledger.Set{}}
	f := New([]Source{src}, &CombinatorialSelector{Rand: rand.New(rand.NewSource(1))}, RecentPolicy{},
		WithLedger(led), WithClock(func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }))

	sel, err := f.Find(context.Background(), defaultQuery())
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(sel) != 4 {
		t.Fatalf("selected %d; want 4", len(sel))
	}
	if len(led.recorded) != 4 {
		t.Fatalf("ledger recorded %v", led.recorded)
	}
}

func TestFindSkipsSeen(t *testing.T) {
	src := &fakeSource{name: "yt", cands: funnyCandidates(10, 12, 15, 20, 25)}
	led := &fakeLedger{seen: ledger.NewSet("v1")}
	f := New([]Source{src}, &CombinatorialSelector{Rand: rand.New(rand.NewSource(1))}, nil, WithLedger(led))

	sel, err := f.Find(context.Background(), defaultQuery())
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	// Without v1 (12s): 10+15+20 = 45, +25 = 70 > 58, so only three fit.
	if len(sel) != 0 {
		t.Fatalf("expected empty selection, got %v", sel.IDs())
	}
	if len(led.recorded) != 0 {
		t.Fatalf("nothing should be recorded on empty selection")
	}
}

func TestFindEmptyAndErrors(t *testing.T) {
	sel := &CombinatorialSelector{Rand: rand.New(rand.NewSource(1))}

	got, err := New(nil, sel, nil).Find(context.Background(), defaultQuery())
	if err != nil || got != nil {
		t.Fatalf("no sources: %v, %v", got, err)
	}

	got, err = New([]Source{&fakeSource{name: "yt"}}, sel, nil).Find(context.Background(), defaultQuery())
	if err != nil || got != nil {
		t.Fatalf("no results: %v, %v", got, err)
	}

	_, err = New([]Source{&fakeSource{name: "yt", err: errors.New("boom")}}, sel, nil).Find(context.Background(), defaultQuery())
	if err == nil {
		t.Fatalf("expected error when every source fails")
	}

	partial := []Source{
		&fakeSource{name: "broken", err: errors.New("boom")},
		&fakeSource{name: "yt", cands: funnyCandidates(10, 12, 15, 20)},
	}
	got, err = New(partial, sel, nil).Find(context.Background(), defaultQuery())
	if err != nil || len(got) != 4 {
		t.Fatalf("partial failure: %v, %v", got, err)
	}
}
