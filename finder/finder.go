// Package finder discovers candidate clips, filters them and selects a
// bounded set that fits the compilation's duration ceiling.
package finder

import (
	"context"
	"fmt"
	"log"
	"time"

	"shortsbot/config"
	"shortsbot/ledger"
	"shortsbot/types"
)

// Finder runs every source, filters the merged candidates and selects a set
type Finder struct {
	sources  []Source
	selector Selector
	recency  Recency
	ledger   ledger.Ledger
	now      func() time.Time
}

// Option configures a Finder
type Option func(*Finder)

// WithLedger enables seen-video filtering and recording
func WithLedger(l ledger.Ledger) Option {
	return func(f *Finder) { f.ledger = l }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(f *Finder) { f.now = now }
}

// New creates a Finder
func New(sources []Source, selector Selector, recency Recency, opts ...Option) *Finder {
	f := &Finder{
		sources:  sources,
		selector: selector,
		recency:  recency,
		now:      time.Now,
	}
	if f.recency == nil {
		f.recency = RecentPolicy{}
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Find returns the selected candidates. An empty selection with a nil error
// means nothing usable was found; the reason is logged.
func (f *Finder) Find(ctx context.Context, q Query) (types.Selection, error) {
	if len(f.sources) == 0 {
		log.Println("⚠️  No clip sources configured")
		return nil, nil
	}

	window := f.recency.Window(f.now())

	var all []types.Candidate
	var lastErr error
	failed := 0
	for _, src := range f.sources {
		cands, err := src.Search(ctx, q, window)
		if err != nil {
			log.Printf("❌ %s search failed: %v", src.Name(), err)
			lastErr = err
			failed++
			continue
		}
		all = append(all, cands...)
	}
	if failed == len(f.sources) {
		return nil, fmt.Errorf("every clip source failed: %w", lastErr)
	}

	all = DedupeByURL(all)
	if len(all) == 0 {
		log.Println("⚠️  No candidates returned by any source")
		return nil, nil
	}

	filters := []Filter{
		MinLikes(q.MinLikes),
		DurationWithin(config.MaxClipSeconds),
		MatchesTags(q.Tags),
	}
	if f.ledger != nil {
		seen, err := f.ledger.Load(ctx)
		if err != nil {
			log.Printf("⚠️  Could not load seen-videos ledger: %v", err)
			seen = ledger.Set{}
		}
		filters = append(filters, NotSeen(seen))
	}

	filtered := ApplyFilters(all, filters...)
	log.Printf("🧹 %d of %d candidates passed filters", len(filtered), len(all))
	if len(filtered) == 0 {
		log.Println("⚠️  No candidates passed the filters")
		return nil, nil
	}

	selection := f.selector.Select(filtered, Limits{
		MinClips: q.MinClips,
		MaxClips: q.MaxClips,
		Ceiling:  q.Ceiling,
	})
	if len(selection) == 0 {
		log.Println("⚠️  Could not find enough clips to fit under total duration limit")
		return nil, nil
	}
	log.Printf("✅ Selected %d clips totaling %.0fs", len(selection), selection.TotalDuration())

	if f.ledger != nil {
		if err := f.ledger.Record(ctx, selection.IDs()); err != nil {
			log.Printf("⚠️  Failed to record selection in ledger: %v", err)
		}
	}
	return selection, nil
}
