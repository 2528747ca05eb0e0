package captions

import (
	"context"
	"time"

	"shortsbot/common"
	"shortsbot/config"

	"github.com/openai/openai-go/option"
)

// LocalGenerator talks to a locally hosted model (Ollama) through its
// OpenAI-compatible endpoint and reports simulated progress.
type LocalGenerator struct {
	inner    *OpenAIGenerator
	progress common.ProgressFunc
	tick     time.Duration
}

// NewLocalGenerator creates a generator for model served at baseURL,
// e.g. http://localhost:11434/v1/
func NewLocalGenerator(baseURL, model string, progress common.ProgressFunc) *LocalGenerator {
	if progress == nil {
		progress = common.LogProgress
	}
	return &LocalGenerator{
		// Ollama ignores the key but the client requires one
		inner:    NewOpenAIGenerator("ollama", model, option.WithBaseURL(baseURL)),
		progress: progress,
		tick:     config.ProgressTick,
	}
}

// ModelName implements Generator
func (g *LocalGenerator) ModelName() string { return g.inner.ModelName() }

// Generate implements Generator
func (g *LocalGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	var out string
	err := common.WithProgress(ctx, "Generating with "+g.inner.ModelName(), g.tick, g.progress, func(ctx context.Context) error {
		var err error
		out, err = g.inner.Generate(ctx, system, prompt)
		return err
	})
	return out, err
}
