package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// WhisperCPPBackend runs a local whisper.cpp binary
type WhisperCPPBackend struct {
	bin   string
	model string
}

// NewWhisperCPPBackend creates a backend for the binary and ggml model at the given paths
func NewWhisperCPPBackend(binPath, modelPath string) *WhisperCPPBackend {
	return &WhisperCPPBackend{bin: binPath, model: modelPath}
}

// AudioExt implements Backend. whisper.cpp reads 16 kHz wav.
func (w *WhisperCPPBackend) AudioExt() string { return ".wav" }

type whisperOutput struct {
	Transcription []struct {
		Text string `json:"text"`
	} `json:"transcription"`
}

// Transcribe implements Backend
func (w *WhisperCPPBackend) Transcribe(ctx context.Context, audioPath string) (string, error) {
	outPrefix := strings.TrimSuffix(audioPath, ".wav")
	args := []string{
		"-m", w.model,
		"-f", audioPath,
		"-oj",
		"-of", outPrefix,
		"-np",
	}
	cmd := exec.CommandContext(ctx, w.bin, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("whisper.cpp failed: %w\n%s", err, string(b))
	}

	jsonPath := outPrefix + ".json"
	defer os.Remove(jsonPath)
	jb, err := os.ReadFile(jsonPath)
	if err != nil {
		return "", err
	}
	return parseWhisperJSON(jb)
}

func parseWhisperJSON(b []byte) (string, error) {
	var out whisperOutput
	if err := json.Unmarshal(b, &out); err != nil {
		return "", fmt.Errorf("failed to parse whisper.cpp output: %w", err)
	}
	parts := make([]string, 0, len(out.Transcription))
	for _, seg := range out.Transcription {
		if t := strings.TrimSpace(seg.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " "), nil
}
