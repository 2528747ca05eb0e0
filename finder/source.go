package finder

import (
	"context"
	"time"

	"shortsbot/config"
	"shortsbot/types"
)

// Query describes one search across every configured source
type Query struct {
	Tags       []string
	MaxResults int64
	Ceiling    float64
	MinClips   int
	MaxClips   int
	MinLikes   int64
}

// Window bounds publication time. A zero field is unbounded.
type Window struct {
	After  time.Time
	Before time.Time
}

// Contains reports whether t falls inside the window
func (w Window) Contains(t time.Time) bool {
	if t.IsZero() {
		return true
	}
	if !w.After.IsZero() && t.Before(w.After) {
		return false
	}
	if !w.Before.IsZero() && t.After(w.Before) {
		return false
	}
	return true
}

// Source produces raw candidates for a query
type Source interface {
	Name() string
	Search(ctx context.Context, q Query, w Window) ([]types.Candidate, error)
}

// Recency turns the current time into a publication window
type Recency interface {
	Window(now time.Time) Window
}

// RecentPolicy only accepts videos published in the last 30 days
type RecentPolicy struct{}

// Window implements Recency
func (RecentPolicy) Window(now time.Time) Window {
	return Window{After: now.Add(-config.RecentWindow)}
}

// EvergreenPolicy only accepts videos older than 60 days
type EvergreenPolicy struct{}

// Window implements Recency
func (EvergreenPolicy) Window(now time.Time) Window {
	return Window{Before: now.Add(-config.EvergreenAge)}
}

// NewRecency returns the recency policy for a name
func NewRecency(name string) Recency {
	if name == "evergreen" {
		return EvergreenPolicy{}
	}
	return RecentPolicy{}
}
