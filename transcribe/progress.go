package transcribe

import (
	"context"
	"path/filepath"
	"time"

	"shortsbot/common"
)

type progressBackend struct {
	Backend
	report common.ProgressFunc
	tick   time.Duration
}

// WithProgress wraps b so every call reports simulated progress
func WithProgress(b Backend, report common.ProgressFunc, tick time.Duration) Backend {
	if report == nil {
		report = common.LogProgress
	}
	return &progressBackend{Backend: b, report: report, tick: tick}
}

func (p *progressBackend) Transcribe(ctx context.Context, audioPath string) (string, error) {
	var text string
	err := common.WithProgress(ctx, "Transcribing "+filepath.Base(audioPath), p.tick, p.report, func(ctx context.Context) error {
		var err error
		text, err = p.Backend.Transcribe(ctx, audioPath)
		return err
	})
	return text, err
}
