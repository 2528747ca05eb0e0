// Package video turns downloaded clips into one captioned vertical compilation.
package video

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"shortsbot/captions"
	"shortsbot/config"
	"shortsbot/types"
)

// StageFunc is told when composition moves to a new stage
type StageFunc func(types.State)

// Composer plans, captions and renders a compilation
type Composer struct {
	renderer  Renderer
	policy    TrimPolicy
	ceiling   float64
	outputDir string
	stage     StageFunc
}

// NewComposer creates a composer writing into outputDir. A nil policy is
// chosen per caption source by NewTrimPolicy.
func NewComposer(r Renderer, policy TrimPolicy, ceiling float64, outputDir string) *Composer {
	return &Composer{
		renderer:  r,
		policy:    policy,
		ceiling:   ceiling,
		outputDir: outputDir,
		stage:     func(types.State) {},
	}
}

// WithStageHook reports stage changes to fn
func (c *Composer) WithStageHook(fn StageFunc) *Composer {
	if fn != nil {
		c.stage = fn
	}
	return c
}

// Compose renders clips into outputDir/filename. Clips are accepted in order
// under the trim policy; only accepted clips are captioned.
func (c *Composer) Compose(ctx context.Context, clips []types.LocalClip, src captions.Source, filename string) (types.ComposedVideo, error) {
	if len(clips) == 0 {
		return types.ComposedVideo{}, ErrNoClips
	}

	policy := c.policy
	if policy == nil {
		policy, _ = NewTrimPolicy("", src.Name())
	}
	plans := PlanClips(c.probe(clips), policy, c.ceiling)
	if len(plans) == 0 {
		return types.ComposedVideo{}, ErrNoClips
	}
	log.Printf("🎞️  Accepted %d/%d clips under the %s policy", len(plans), len(clips), policy.Name())

	accepted := make([]types.LocalClip, len(plans))
	for i, p := range plans {
		accepted[i] = p.Clip
	}

	c.stage(types.StateCaptioning)
	set, err := src.Captions(ctx, accepted)
	if err != nil {
		return types.ComposedVideo{}, fmt.Errorf("failed to generate captions: %w", err)
	}

	c.stage(types.StateComposing)
	workDir, err := os.MkdirTemp("", "shortsbot-render-*")
	if err != nil {
		return types.ComposedVideo{}, fmt.Errorf("failed to create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	result := types.ComposedVideo{Title: set.MainTitle, Captions: set}
	segments := make([]string, 0, len(plans))
	for i, p := range plans {
		caption := set.CaptionFor(p.Clip.ID)
		seg := Segment{
			Input:    p.Clip.Path,
			Take:     p.Take,
			Caption:  caption,
			HasAudio: p.HasAudio,
		}
		segPath := filepath.Join(workDir, fmt.Sprintf("segment_%02d.mp4", i))
		log.Printf("🎬 Rendering clip %d/%d (%.1fs): %s", i+1, len(plans), p.Take, caption)
		if err := c.renderer.RenderSegment(ctx, seg, segPath); err != nil {
			return types.ComposedVideo{}, err
		}
		segments = append(segments, segPath)
		result.Clips = append(result.Clips, types.AcceptedClip{
			ClipID:   p.Clip.ID,
			Path:     p.Clip.Path,
			Caption:  caption,
			Duration: p.Take,
		})
		result.Duration += p.Take
	}

	if err := os.MkdirAll(c.outputDir, 0o755); err != nil {
		return types.ComposedVideo{}, fmt.Errorf("failed to create output dir: %w", err)
	}
	if filename == "" {
		filename = config.Default().OutputFilename
	}
	result.Path = filepath.Join(c.outputDir, filepath.Base(filename))

	log.Printf("🎬 Rendering final video: %s", result.Path)
	if err := c.renderer.RenderFinal(ctx, segments, set.MainTitle, result.Path); err != nil {
		return types.ComposedVideo{}, err
	}

	log.Printf("✅ Composed %.1fs video with %d clips", result.Duration, len(result.Clips))
	return result, nil
}

// probe drops clips whose media cannot be read
func (c *Composer) probe(clips []types.LocalClip) []ProbedClip {
	probed := make([]ProbedClip, 0, len(clips))
	for _, clip := range clips {
		info, err := c.renderer.Probe(clip.Path)
		if err != nil || info.Duration <= 0 {
			log.Printf("⚠️  Skipping unreadable clip %s: %v", clip.ID, err)
			continue
		}
		log.Printf("🔍 %s: %dx%d, %.1fs", clip.ID, info.Width, info.Height, info.Duration)
		probed = append(probed, ProbedClip{
			Clip:     clip,
			Duration: info.Duration,
			HasAudio: info.HasAudio,
		})
	}
	return probed
}
