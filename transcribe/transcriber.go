// Package transcribe turns a clip's audio track into text. Backends are the
// OpenAI speech-to-text API or a local whisper.cpp binary.
package transcribe

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"shortsbot/common"
	"shortsbot/types"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Backend converts an audio file to text
type Backend interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
	// AudioExt is the audio container the backend expects, e.g. ".mp3"
	AudioExt() string
}

// AudioExtractor writes the audio track of videoPath to outPath
type AudioExtractor func(ctx context.Context, videoPath, outPath string) error

// Service extracts audio into a temp file and hands it to a Backend
type Service struct {
	backend Backend
	extract AudioExtractor
}

// NewService creates a transcription service over backend
func NewService(backend Backend) *Service {
	return &Service{backend: backend, extract: ExtractAudio}
}

// WithExtractor replaces the ffmpeg audio extractor
func (s *Service) WithExtractor(e AudioExtractor) *Service {
	s.extract = e
	return s
}

// TranscribeClip never fails the caller. Errors leave Text empty and are
// reported on the returned Transcript.
func (s *Service) TranscribeClip(ctx context.Context, clip types.LocalClip) types.Transcript {
	tr := types.Transcript{ClipID: clip.ID}

	text, err := s.transcribe(ctx, clip.Path)
	if err != nil {
		log.Printf("⚠️  Transcription failed for %s: %v", clip.ID, err)
		tr.Err = err
		return tr
	}
	tr.Text = text
	return tr
}

// TranscribeAll transcribes clips one at a time, in order
func (s *Service) TranscribeAll(ctx context.Context, clips []types.LocalClip) []types.Transcript {
	out := make([]types.Transcript, 0, len(clips))
	for i, clip := range clips {
		log.Printf("🎙️  [%d/%d] Transcribing %s", i+1, len(clips), clip.ID)
		out = append(out, s.TranscribeClip(ctx, clip))
	}
	return out
}

func (s *Service) transcribe(ctx context.Context, videoPath string) (string, error) {
	tmp, err := os.CreateTemp("", "shortsbot-audio-*"+s.backend.AudioExt())
	if err != nil {
		return "", fmt.Errorf("failed to create temp audio file: %w", err)
	}
	audioPath := tmp.Name()
	tmp.Close()
	defer os.Remove(audioPath)

	if err := s.extract(ctx, videoPath, audioPath); err != nil {
		return "", fmt.Errorf("failed to extract audio: %w", err)
	}
	return s.backend.Transcribe(ctx, audioPath)
}

// ExtractAudio writes a mono 16 kHz audio track. The codec follows outPath's extension.
func ExtractAudio(ctx context.Context, videoPath, outPath string) error {
	kwargs := ffmpeg.KwArgs{
		"vn": "",
		"ac": 1,
		"ar": 16000,
	}
	if filepath.Ext(outPath) == ".wav" {
		kwargs["c:a"] = "pcm_s16le"
	} else {
		kwargs["c:a"] = "libmp3lame"
		kwargs["b:a"] = "64k"
	}

	stream := ffmpeg.Input(videoPath).Output(outPath, kwargs).OverWriteOutput()
	return common.RunStream(ctx, stream)
}
