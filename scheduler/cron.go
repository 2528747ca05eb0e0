// Package scheduler triggers pipeline runs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"shortsbot/types"
)

// Runner runs the pipeline synchronously
type Runner interface {
	Run(ctx context.Context, req types.RunRequest) (types.RunResult, error)
}

// Scheduler owns the cron instance
type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	isBusy func(error) bool
	req    types.RunRequest
}

// New creates a scheduler that submits req on every tick
func New(runner Runner, req types.RunRequest, isBusy func(error) bool) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		runner: runner,
		isBusy: isBusy,
		req:    req,
	}
}

// Add registers schedule, a standard five-field cron expression or descriptor like "@daily"
func (s *Scheduler) Add(ctx context.Context, schedule string) error {
	_, err := s.cron.AddFunc(schedule, func() { s.Tick(ctx) })
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}
	log.Printf("⏰ Cron job registered with schedule: %s", schedule)
	return nil
}

// Tick runs once. A tick while another run is active is skipped.
func (s *Scheduler) Tick(ctx context.Context) {
	log.Println("⏰ Cron triggered: starting automated run")
	result, err := s.runner.Run(ctx, s.req)
	switch {
	case err == nil:
		log.Printf("✅ Cron run %s finished: %s", result.RunID, result.VideoPath)
	case s.isBusy != nil && s.isBusy(err):
		log.Printf("⏭️  Cron skipped: %v", err)
	default:
		log.Printf("❌ Cron run failed: %v", err)
	}
}

// Run starts the cron loop and blocks until ctx is cancelled, then waits
// for an in-flight run to finish
func (s *Scheduler) Run(ctx context.Context) {
	s.cron.Start()
	<-ctx.Done()
	log.Println("Stopping scheduler...")
	<-s.cron.Stop().Done()
}
