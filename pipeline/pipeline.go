// Package pipeline runs one find, download, compose and upload cycle.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"google.golang.org/api/youtube/v3"

	"shortsbot/captions"
	"shortsbot/finder"
	"shortsbot/types"
	"shortsbot/uploader"
	"shortsbot/video"
)

var (
	// ErrNoCandidates means the finder returned nothing to work with
	ErrNoCandidates = errors.New("no candidate clips found")
	// ErrNoUsableClips means no clip survived download and composition
	ErrNoUsableClips = errors.New("no usable clips")
	// ErrBusy means another run holds the run lock
	ErrBusy = errors.New("a run is already in progress")
)

// ClipFinder selects clips for a run
type ClipFinder interface {
	Find(ctx context.Context, q finder.Query) (types.Selection, error)
}

// Downloader fetches one clip and returns its local path
type Downloader interface {
	Download(ctx context.Context, url, prefix string) (string, error)
}

// Composer renders the compilation
type Composer interface {
	Compose(ctx context.Context, clips []types.LocalClip, src captions.Source, filename string) (types.ComposedVideo, error)
}

// Uploader publishes the rendered file
type Uploader interface {
	Upload(ctx context.Context, path string, metadata uploader.Metadata) (*youtube.Video, error)
}

// Archiver stores the rendered file and a run manifest
type Archiver interface {
	Archive(ctx context.Context, video types.ComposedVideo, result types.RunResult) (string, error)
}

// Deps are the stage implementations. Uploader and Archiver may be nil.
type Deps struct {
	Finder     ClipFinder
	Downloader Downloader
	Composer   Composer
	Sources    map[string]captions.Source
	Uploader   Uploader
	Archiver   Archiver
}

// Options are per-deployment defaults that a RunRequest may override
type Options struct {
	Query         finder.Query
	CaptionSource string
	OutputName    string
	Upload        uploader.Metadata
}

// Pipeline runs the stages in order under a single run lock
type Pipeline struct {
	deps  Deps
	opts  Options
	state *Manager
}

// New creates a pipeline
func New(deps Deps, opts Options, state *Manager) *Pipeline {
	if state == nil {
		state = NewManager()
	}
	return &Pipeline{deps: deps, opts: opts, state: state}
}

// State exposes the run state manager
func (p *Pipeline) State() *Manager { return p.state }

// Run executes one run. It returns ErrBusy without side effects when
// another run is active.
func (p *Pipeline) Run(ctx context.Context, req types.RunRequest) (types.RunResult, error) {
	runID := req.RequestID
	if runID == "" {
		runID = uuid.NewString()
	}
	if !p.state.Begin(runID) {
		return types.RunResult{}, ErrBusy
	}
	return p.finish(ctx, runID, req)
}

// Start claims the run lock and runs in the background. It returns the run
// ID, or ErrBusy when another run is active.
func (p *Pipeline) Start(ctx context.Context, req types.RunRequest) (string, error) {
	runID := req.RequestID
	if runID == "" {
		runID = uuid.NewString()
	}
	if !p.state.Begin(runID) {
		return "", ErrBusy
	}
	go func() {
		if _, err := p.finish(ctx, runID, req); err != nil {
			log.Printf("❌ Run %s failed: %v", runID, err)
		}
	}()
	return runID, nil
}

func (p *Pipeline) finish(ctx context.Context, runID string, req types.RunRequest) (types.RunResult, error) {
	result, err := p.run(ctx, runID, req)
	if err != nil {
		p.state.Fail(err)
		return result, err
	}
	p.state.Complete(result)
	return result, nil
}

func (p *Pipeline) run(ctx context.Context, runID string, req types.RunRequest) (types.RunResult, error) {
	result := types.RunResult{RunID: runID}

	src, err := p.source(req.CaptionSource)
	if err != nil {
		return result, err
	}

	// Step 1: Find clips
	p.state.SetState(types.StateFinding)
	p.state.AddLog("🔎 Finding clips...")
	q := p.opts.Query
	if len(req.Tags) > 0 {
		q.Tags = req.Tags
	}
	selection, err := p.deps.Finder.Find(ctx, q)
	if err != nil {
		return result, fmt.Errorf("find clips: %w", err)
	}
	if len(selection) == 0 {
		return result, ErrNoCandidates
	}
	p.state.AddLog(fmt.Sprintf("🔎 Selected %d clips (%.0fs)", len(selection), selection.TotalDuration()))

	// Step 2: Download
	p.state.SetState(types.StateDownloading)
	clips, err := p.download(ctx, selection)
	if err != nil {
		return result, err
	}
	if len(clips) == 0 {
		return result, ErrNoUsableClips
	}
	p.state.SetClipCount(len(clips))

	// Step 3: Caption and compose
	p.state.SetState(types.StateComposing)
	p.state.AddLog(fmt.Sprintf("🎬 Composing %d clips with %s captions", len(clips), src.Name()))
	filename := req.OutputName
	if filename == "" {
		filename = p.opts.OutputName
	}
	composed, err := p.deps.Composer.Compose(ctx, clips, src, filename)
	if err != nil {
		if errors.Is(err, video.ErrNoClips) {
			return result, fmt.Errorf("%w: %w", ErrNoUsableClips, err)
		}
		return result, fmt.Errorf("compose: %w", err)
	}
	result.VideoPath = composed.Path
	result.Title = composed.Title
	result.Duration = composed.Duration
	for _, c := range composed.Clips {
		result.ClipIDs = append(result.ClipIDs, c.ClipID)
	}
	p.state.SetClipCount(len(composed.Clips))
	p.state.AddLog(fmt.Sprintf("✅ Rendered %s (%.1fs): %s", composed.Path, composed.Duration, composed.Title))

	// Step 4: Archive
	if p.deps.Archiver != nil {
		p.state.SetState(types.StateArchiving)
		key, err := p.deps.Archiver.Archive(ctx, composed, result)
		if err != nil {
			p.state.AddLog(fmt.Sprintf("⚠️  Archive failed: %v", err))
		} else {
			result.ArchiveKey = key
			p.state.AddLog(fmt.Sprintf("📦 Archived to %s", key))
		}
	}

	// Step 5: Upload
	if p.deps.Uploader == nil || req.SkipUpload {
		p.state.AddLog("⏭️  Upload skipped, video-only mode")
		return result, nil
	}
	p.state.SetState(types.StateUploading)
	metadata := p.opts.Upload
	metadata.Title = composed.Title
	uploaded, err := p.deps.Uploader.Upload(ctx, composed.Path, metadata)
	if err != nil {
		return result, fmt.Errorf("upload: %w", err)
	}
	result.VideoID = uploaded.Id
	p.state.AddLog(fmt.Sprintf("📤 Uploaded https://youtube.com/shorts/%s", uploaded.Id))
	return result, nil
}

// download fetches clips in selection order, skipping failures
func (p *Pipeline) download(ctx context.Context, selection types.Selection) ([]types.LocalClip, error) {
	clips := make([]types.LocalClip, 0, len(selection))
	for i, c := range selection {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p.state.AddLog(fmt.Sprintf("⬇️  Downloading %d/%d: %s", i+1, len(selection), c.Title))
		path, err := p.deps.Downloader.Download(ctx, c.URL, fmt.Sprintf("clip_%02d_%s", i, c.ID))
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			p.state.AddLog(fmt.Sprintf("⚠️  Skipping %s: %v", c.ID, err))
			continue
		}
		clips = append(clips, types.LocalClip{
			ID:          c.ID,
			Path:        path,
			Title:       c.Title,
			Description: c.Description,
			Source:      c.Source,
		})
	}
	log.Printf("⬇️  Downloaded %d/%d clips", len(clips), len(selection))
	return clips, nil
}

func (p *Pipeline) source(name string) (captions.Source, error) {
	if name == "" {
		name = p.opts.CaptionSource
	}
	src, ok := p.deps.Sources[name]
	if !ok || src == nil {
		return nil, fmt.Errorf("caption source %q is not configured", name)
	}
	return src, nil
}
