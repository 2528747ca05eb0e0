package video

import (
	"context"
	"errors"

	"shortsbot/common"
)

// ErrNoClips is returned when no clip could be accepted into the composition
var ErrNoClips = errors.New("no clips to compose")

// Segment is one normalised, captioned piece of the final video
type Segment struct {
	Input    string
	Take     float64
	Caption  string
	HasAudio bool
}

// Renderer does the media work behind Compose
type Renderer interface {
	Probe(path string) (common.MediaInfo, error)
	RenderSegment(ctx context.Context, seg Segment, outPath string) error
	RenderFinal(ctx context.Context, segmentPaths []string, title, outPath string) error
}
