package common

import (
	"context"
	"log"
	"time"
)

// ProgressFunc receives simulated progress for a slow call
type ProgressFunc func(task string, pct int)

// LogProgress writes progress lines to the standard logger
func LogProgress(task string, pct int) {
	log.Printf("⏳ %s... %d%%", task, pct)
}

// WithProgress runs fn while reporting simulated progress every tick.
// Progress climbs toward 99% until fn returns and is reported as 100% on success.
func WithProgress(ctx context.Context, task string, tick time.Duration, report ProgressFunc, fn func(context.Context) error) error {
	done := make(chan error, 1)
	go func() { done <- fn(ctx) }()

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	pct := 0
	report(task, pct)
	for {
		select {
		case err := <-done:
			if err == nil {
				report(task, 100)
			}
			return err
		case <-ticker.C:
			pct = nextProgress(pct)
			report(task, pct)
		}
	}
}

func nextProgress(pct int) int {
	pct += (99 - pct) / 4
	if pct < 99 {
		pct++
	}
	return pct
}
