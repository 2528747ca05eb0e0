package common

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// MediaInfo is what we need to know about an input file. Width and Height
// are the displayed size, after any rotation ffmpeg applies on decode.
type MediaInfo struct {
	Width    int
	Height   int
	Rotation int
	Duration float64
	HasAudio bool
}

// ProbeMedia runs ffprobe on path
func ProbeMedia(path string) (MediaInfo, error) {
	out, err := ffmpeg.Probe(path)
	if err != nil {
		return MediaInfo{}, fmt.Errorf("error probing %s: %w", path, err)
	}
	return ParseProbe(out)
}

type sideData struct {
	Rotation *float64 `json:"rotation"`
}

type probeOutput struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
		Duration  string `json:"duration"`
		Tags      struct {
			Rotate string `json:"rotate"`
		} `json:"tags"`
		SideDataList []sideData `json:"side_data_list"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// ParseProbe extracts MediaInfo from ffprobe JSON output
func ParseProbe(raw string) (MediaInfo, error) {
	var data probeOutput
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return MediaInfo{}, fmt.Errorf("failed to parse probe output: %w", err)
	}

	var info MediaInfo
	foundVideo := false
	for _, s := range data.Streams {
		switch s.CodecType {
		case "video":
			if foundVideo {
				continue
			}
			foundVideo = true
			info.Width, info.Height = s.Width, s.Height
			info.Duration = parseSeconds(s.Duration)
			info.Rotation = streamRotation(s.Tags.Rotate, s.SideDataList)
			if info.Rotation == 90 || info.Rotation == 270 {
				info.Width, info.Height = info.Height, info.Width
			}
		case "audio":
			info.HasAudio = true
		}
	}
	if !foundVideo {
		return info, fmt.Errorf("no video stream found")
	}

	// Container duration is more reliable for some muxers
	if info.Duration == 0 {
		info.Duration = parseSeconds(data.Format.Duration)
	}
	return info, nil
}

// streamRotation normalises the display rotation to 0, 90, 180 or 270.
// The display matrix side data wins over the legacy rotate tag.
func streamRotation(tag string, sides []sideData) int {
	deg := 0.0
	found := false
	for _, sd := range sides {
		if sd.Rotation != nil {
			deg, found = *sd.Rotation, true
			break
		}
	}
	if !found {
		v, err := strconv.ParseFloat(strings.TrimSpace(tag), 64)
		if err != nil {
			return 0
		}
		deg = v
	}
	r := int(math.Round(deg)) % 360
	if r < 0 {
		r += 360
	}
	return r
}

func parseSeconds(s string) float64 {
	d, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return d
}

// RunStream compiles an ffmpeg-go stream and runs it, killing ffmpeg when ctx ends
func RunStream(ctx context.Context, s *ffmpeg.Stream) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cmd := s.Compile()
	var stderr bytes.Buffer
	cmd.Stdout = nil
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("ffmpeg failed: %w: %s", err, tail(stderr.String(), 800))
		}
		return nil
	}
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
