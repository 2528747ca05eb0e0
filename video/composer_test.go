package video

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"shortsbot/common"
	"shortsbot/types"
)

type fakeRenderer struct {
	infos    map[string]common.MediaInfo
	segments []Segment
	final    []string
	title    string
	failSeg  bool
}

func (f *fakeRenderer) Probe(path string) (common.MediaInfo, error) {
	info, ok := f.infos[path]
	if !ok {
		return common.MediaInfo{}, errors.New("no such file")
	}
	return info, nil
}

func (f *fakeRenderer) RenderSegment(_ context.Context, seg Segment, outPath string) error {
	if f.failSeg {
		return errors.New("encoder crashed")
	}
	f.segments = append(f.segments, seg)
	return os.WriteFile(outPath, []byte(seg.Input), 0o644)
}

func (f *fakeRenderer) RenderFinal(_ context.Context, segmentPaths []string, title, outPath string) error {
	f.final = segmentPaths
	f.title = title
	return os.WriteFile(outPath, []byte("video"), 0o644)
}

type fakeSource struct {
	got []types.LocalClip
	err error
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Captions(_ context.Context, clips []types.LocalClip) (types.CaptionSet, error) {
	f.got = clips
	if f.err != nil {
		return types.CaptionSet{}, f.err
	}
	set := types.CaptionSet{Captions: map[string]string{}, MainTitle: "BEST CLIPS"}
	for _, c := range clips {
		set.Captions[c.ID] = "caption " + c.ID
		set.Ordered = append(set.Ordered, "caption "+c.ID)
	}
	return set, nil
}

func TestComposeWholePolicyBudget(t *testing.T) {
	r := &fakeRenderer{infos: map[string]common.MediaInfo{
		"a.mp4": {Width: 1920, Height: 1080, Duration: 20, HasAudio: true},
		"b.mp4": {Width: 1080, Height: 1920, Duration: 20},
		"c.mp4": {Width: 720, Height: 1280, Duration: 20, HasAudio: true},
	}}
	clips := []types.LocalClip{
		{ID: "a", Path: "a.mp4"},
		{ID: "b", Path: "b.mp4"},
		{ID: "c", Path: "c.mp4"},
	}
	src := &fakeSource{}
	var stages []types.State
	out := t.TempDir()

	c := NewComposer(r, WholePolicy{}, 58, out).WithStageHook(func(s types.State) { stages = append(stages, s) })
	video, err := c.Compose(context.Background(), clips, src, "compilation.mp4")
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	if len(video.Clips) != 2 || video.Duration != 40 {
		t.Fatalf("accepted %d clips for %vs; want 2 for 40s", len(video.Clips), video.Duration)
	}
	if len(src.got) != 2 {
		t.Fatalf("captioned %d clips; want only accepted ones", len(src.got))
	}
	if video.Path != filepath.Join(out, "compilation.mp4") || video.Title != "BEST CLIPS" {
		t.Fatalf("unexpected result: %+v", video)
	}
	if r.title != "BEST CLIPS" || len(r.final) != 2 {
		t.Fatalf("final render got title %q with %d segments", r.title, len(r.final))
	}
	if r.segments[1].Caption != "caption b" || r.segments[1].HasAudio {
		t.Fatalf("segment b = %+v", r.segments[1])
	}
	if len(stages) != 2 || stages[0] != types.StateCaptioning || stages[1] != types.StateComposing {
		t.Fatalf("stages = %v", stages)
	}
	if _, err := os.Stat(video.Path); err != nil {
		t.Fatalf("output not written: %v", err)
	}
}

func TestComposeSkipsUnreadableClips(t *testing.T) {
	r := &fakeRenderer{infos: map[string]common.MediaInfo{
		"good.mp4": {Width: 1080, Height: 1920, Duration: 12, HasAudio: true},
	}}
	clips := []types.LocalClip{{ID: "bad", Path: "missing.mp4"}, {ID: "good", Path: "good.mp4"}}

	video, err := NewComposer(r, CappedPolicy{}, 58, t.TempDir()).Compose(context.Background(), clips, &fakeSource{}, "")
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	if len(video.Clips) != 1 || video.Clips[0].ClipID != "good" {
		t.Fatalf("unexpected clips: %+v", video.Clips)
	}
	if filepath.Base(video.Path) != "final_short.mp4" {
		t.Fatalf("default filename not used: %s", video.Path)
	}
}

func TestComposeErrors(t *testing.T) {
	ctx := context.Background()
	r := &fakeRenderer{infos: map[string]common.MediaInfo{"a.mp4": {Duration: 10}}}
	clips := []types.LocalClip{{ID: "a", Path: "a.mp4"}}

	if _, err := NewComposer(r, CappedPolicy{}, 58, t.TempDir()).Compose(ctx, nil, &fakeSource{}, ""); !errors.Is(err, ErrNoClips) {
		t.Fatalf("empty input: err = %v; want ErrNoClips", err)
	}

	unreadable := []types.LocalClip{{ID: "x", Path: "x.mp4"}}
	if _, err := NewComposer(r, CappedPolicy{}, 58, t.TempDir()).Compose(ctx, unreadable, &fakeSource{}, ""); !errors.Is(err, ErrNoClips) {
		t.Fatalf("unreadable input: err = %v; want ErrNoClips", err)
	}

	captionErr := errors.New("quota exceeded")
	if _, err := NewComposer(r, CappedPolicy{}, 58, t.TempDir()).Compose(ctx, clips, &fakeSource{err: captionErr}, ""); !errors.Is(err, captionErr) {
		t.Fatalf("caption failure: err = %v", err)
	}

	r.failSeg = true
	if _, err := NewComposer(r, CappedPolicy{}, 58, t.TempDir()).Compose(ctx, clips, &fakeSource{}, ""); err == nil {
		t.Fatal("expected render error")
	}
}

func TestComposeDefaultPolicyFollowsSource(t *testing.T) {
	r := &fakeRenderer{infos: map[string]common.MediaInfo{
		"long.mp4": {Duration: 45, HasAudio: true},
	}}
	clips := []types.LocalClip{{ID: "long", Path: "long.mp4"}}

	video, err := NewComposer(r, nil, 58, t.TempDir()).Compose(context.Background(), clips, &namedSource{name: "metadata"}, "")
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	if video.Duration != 25 {
		t.Fatalf("metadata source should use the budget policy: %vs", video.Duration)
	}

	video, err = NewComposer(r, nil, 58, t.TempDir()).Compose(context.Background(), clips, &namedSource{name: "transcript"}, "")
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	if video.Duration != 15 {
		t.Fatalf("transcript source should use the capped policy: %vs", video.Duration)
	}
}

type namedSource struct {
	fakeSource
	name string
}

func (n *namedSource) Name() string { return n.name }
