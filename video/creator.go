package video

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"shortsbot/common"
	"shortsbot/config"
)

// FFmpegRenderer renders segments and the final video with ffmpeg
type FFmpegRenderer struct {
	AllowCropping bool
	Corner        string
	// FontFile is optional; fontconfig picks a default when empty
	FontFile string
}

// NewFFmpegRenderer creates a renderer
func NewFFmpegRenderer(allowCropping bool, corner string) *FFmpegRenderer {
	return &FFmpegRenderer{AllowCropping: allowCropping, Corner: corner}
}

// Probe implements Renderer
func (r *FFmpegRenderer) Probe(path string) (common.MediaInfo, error) {
	return common.ProbeMedia(path)
}

// RenderSegment normalises one clip onto the canvas, trims it and draws its caption
func (r *FFmpegRenderer) RenderSegment(ctx context.Context, seg Segment, outPath string) error {
	textPath := outPath + ".caption.txt"
	if err := os.WriteFile(textPath, []byte(seg.Caption), 0o644); err != nil {
		return fmt.Errorf("failed to write caption file: %w", err)
	}
	defer os.Remove(textPath)

	filters := normaliseFilters(r.AllowCropping)
	if seg.Caption != "" {
		filters = append(filters, r.captionFilter(seg.Caption, textPath))
	}

	input := ffmpeg.Input(seg.Input)
	audio := input.Audio()
	if !seg.HasAudio {
		silence := fmt.Sprintf("anullsrc=channel_layout=stereo:sample_rate=%d", config.AudioSampleRate)
		audio = ffmpeg.Input(silence, ffmpeg.KwArgs{"f": "lavfi"}).Audio()
	}

	kwargs := encoderArgs()
	kwargs["vf"] = strings.Join(filters, ",")
	kwargs["t"] = fmt.Sprintf("%.3f", seg.Take)
	kwargs["c:a"] = config.AudioCodec
	kwargs["b:a"] = config.AudioBitrate
	kwargs["ar"] = config.AudioSampleRate
	kwargs["ac"] = 2

	stream := ffmpeg.Output([]*ffmpeg.Stream{input.Video(), audio}, outPath, kwargs).OverWriteOutput()
	if err := common.RunStream(ctx, stream); err != nil {
		return fmt.Errorf("failed to render segment %s: %w", filepath.Base(seg.Input), err)
	}
	return nil
}

// RenderFinal concatenates segments and draws the main title over the opening seconds
func (r *FFmpegRenderer) RenderFinal(ctx context.Context, segmentPaths []string, title, outPath string) error {
	listPath := outPath + ".concat.txt"
	if err := writeConcatList(listPath, segmentPaths); err != nil {
		return err
	}
	defer os.Remove(listPath)

	kwargs := encoderArgs()
	kwargs["c:a"] = "copy"
	kwargs["movflags"] = "+faststart"

	if title != "" {
		titlePath := outPath + ".title.txt"
		if err := os.WriteFile(titlePath, []byte(title), 0o644); err != nil {
			return fmt.Errorf("failed to write title file: %w", err)
		}
		defer os.Remove(titlePath)
		kwargs["vf"] = r.titleFilter(title, titlePath)
	}

	stream := ffmpeg.Input(listPath, ffmpeg.KwArgs{"f": "concat", "safe": "0"}).
		Output(outPath, kwargs).
		OverWriteOutput()
	if err := common.RunStream(ctx, stream); err != nil {
		return fmt.Errorf("failed to render final video: %w", err)
	}
	return nil
}

func encoderArgs() ffmpeg.KwArgs {
	return ffmpeg.KwArgs{
		"c:v":     config.VideoCodec,
		"preset":  config.VideoPreset,
		"threads": config.EncoderThreads,
		"r":       config.VideoFPS,
		"pix_fmt": "yuv420p",
	}
}

// normaliseFilters fits any source onto the vertical canvas. The sizes are
// evaluated on the decoded frames, so rotated phone clips fit as well.
// With cropping the clip is scaled to the canvas width and centre-cropped to
// the canvas height; without it the clip is scaled to fit inside the canvas.
func normaliseFilters(allowCropping bool) []string {
	w, h := config.VideoWidth, config.VideoHeight
	var filters []string
	if allowCropping {
		filters = []string{
			fmt.Sprintf("scale=%d:-2", w),
			fmt.Sprintf("crop='min(iw,%d)':'min(ih,%d)'", w, h),
		}
	} else {
		filters = []string{
			fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease:force_divisible_by=2", w, h),
		}
	}

	return append(filters,
		fmt.Sprintf("pad=%d:%d:(ow-iw)/2:(oh-ih)/2:color=black", w, h),
		"setsar=1",
		fmt.Sprintf("fps=%d", config.VideoFPS),
	)
}

func (r *FFmpegRenderer) captionFilter(caption, textPath string) string {
	x, y := CornerPosition(r.Corner, config.CaptionMargin)
	size := DynamicFontSize(caption, config.CaptionFontSize, config.CaptionCharLimit)
	return r.drawtext(textPath, size, config.CaptionStrokeWidth, x, y)
}

func (r *FFmpegRenderer) titleFilter(title, textPath string) string {
	size := DynamicFontSize(title, config.TitleFontSize, config.TitleCharLimit)
	return r.drawtext(textPath, size, config.TitleStrokeWidth, "(w-text_w)/2", fmt.Sprintf("%d", config.TitleY)) +
		fmt.Sprintf(":enable='between(t,0,%g)'", config.TitleDuration)
}

func (r *FFmpegRenderer) drawtext(textPath string, size, stroke int, x, y string) string {
	filter := fmt.Sprintf("drawtext=textfile='%s':fontsize=%d:fontcolor=%s:borderw=%d:bordercolor=%s:x=%s:y=%s",
		escapeFilterPath(textPath), size, config.TextColor, stroke, config.StrokeColor, x, y)
	if r.FontFile != "" {
		filter += fmt.Sprintf(":fontfile='%s'", escapeFilterPath(r.FontFile))
	}
	return filter
}

// escapeFilterPath makes a path safe inside a quoted filter argument
func escapeFilterPath(p string) string {
	return strings.ReplaceAll(filepath.ToSlash(p), `'`, `'\''`)
}

func writeConcatList(listPath string, segmentPaths []string) error {
	var b strings.Builder
	for _, p := range segmentPaths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("failed to resolve segment path: %w", err)
		}
		fmt.Fprintf(&b, "file '%s'\n", strings.ReplaceAll(filepath.ToSlash(abs), `'`, `'\''`))
	}
	if err := os.WriteFile(listPath, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write concat list: %w", err)
	}
	return nil
}
