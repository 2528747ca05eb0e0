// Package downloader fetches clip media and metadata with the yt-dlp binary.
package downloader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Config configures the yt-dlp invocation
type Config struct {
	// Path to the yt-dlp binary. Resolved via exec.LookPath when empty.
	Path string
	// CookiesFile is passed as --cookies when set
	CookiesFile string
	// TikTokCookie is sent as a Cookie header for tiktok.com URLs
	TikTokCookie string
	// Dir receives downloaded files
	Dir string
}

// Metadata is the subset of yt-dlp --dump-json output we use
type Metadata struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Duration    float64  `json:"duration"`
	LikeCount   int64    `json:"like_count"`
	Timestamp   int64    `json:"timestamp"`
	UploadDate  string   `json:"upload_date"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	WebpageURL  string   `json:"webpage_url"`
	Extractor   string   `json:"extractor_key"`
}

// PublishedAt resolves the upload time from the timestamp or upload_date fields
func (m Metadata) PublishedAt() time.Time {
	if m.Timestamp > 0 {
		return time.Unix(m.Timestamp, 0).UTC()
	}
	if t, err := time.Parse("20060102", m.UploadDate); err == nil {
		return t
	}
	return time.Time{}
}

// Runner executes a command and returns its stdout
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// YtDlp downloads clips and probes metadata
type YtDlp struct {
	cfg Config
	run Runner
}

// New creates a yt-dlp client
func New(cfg Config) *YtDlp {
	if cfg.Path == "" {
		cfg.Path = "yt-dlp"
	}
	if p, err := exec.LookPath(cfg.Path); err == nil {
		cfg.Path = p
	}
	if cfg.Dir == "" {
		cfg.Dir = "downloads"
	}
	return &YtDlp{cfg: cfg, run: execRunner}
}

// WithRunner replaces the command runner
func (d *YtDlp) WithRunner(r Runner) *YtDlp {
	d.run = r
	return d
}

// Download fetches rawURL into <Dir>/<prefix>.<ext> and returns the file path
func (d *YtDlp) Download(ctx context.Context, rawURL, prefix string) (string, error) {
	if err := os.MkdirAll(d.cfg.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create download dir: %w", err)
	}

	args := append(d.commonArgs(rawURL),
		"--no-playlist",
		"-f", "mp4/bestvideo*+bestaudio/best",
		"--merge-output-format", "mp4",
		"--force-overwrites",
		"--print", "after_move:filepath",
		"-o", filepath.Join(d.cfg.Dir, prefix+".%(ext)s"),
		rawURL,
	)

	log.Printf("⬇️  Downloading %s -> %s", rawURL, prefix)
	out, err := d.run(ctx, d.cfg.Path, args...)
	if err != nil {
		return "", fmt.Errorf("yt-dlp download failed for %s: %w", rawURL, err)
	}

	if path := lastLine(out); path != "" {
		return path, nil
	}

	// Older yt-dlp builds print nothing; find the file by prefix instead.
	matches, _ := filepath.Glob(filepath.Join(d.cfg.Dir, prefix+".*"))
	for _, m := range matches {
		if !strings.HasSuffix(m, ".part") {
			return m, nil
		}
	}
	return "", fmt.Errorf("yt-dlp reported success but no file for %s", prefix)
}

// Probe returns metadata for rawURL without downloading media
func (d *YtDlp) Probe(ctx context.Context, rawURL string) (*Metadata, error) {
	args := append(d.commonArgs(rawURL),
		"--dump-json",
		"--skip-download",
		"--no-playlist",
		rawURL,
	)

	out, err := d.run(ctx, d.cfg.Path, args...)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp probe failed for %s: %w", rawURL, err)
	}

	var meta Metadata
	if err := json.Unmarshal(bytes.TrimSpace(firstLine(out)), &meta); err != nil {
		return nil, fmt.Errorf("parse yt-dlp output: %w", err)
	}
	return &meta, nil
}

func (d *YtDlp) commonArgs(rawURL string) []string {
	args := []string{"--no-warnings", "--no-progress"}
	if d.cfg.CookiesFile != "" {
		args = append(args, "--cookies", d.cfg.CookiesFile)
	}
	if d.cfg.TikTokCookie != "" && isTikTok(rawURL) {
		args = append(args, "--add-header", "Cookie:"+d.cfg.TikTokCookie)
	}
	return args
}

func isTikTok(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == "tiktok.com" || strings.HasSuffix(host, ".tiktok.com")
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		errOutput := stderr.String()
		if len(errOutput) > 500 {
			errOutput = errOutput[:500]
		}
		return nil, fmt.Errorf("%w: %s", err, errOutput)
	}
	return stdout.Bytes(), nil
}

func lastLine(b []byte) string {
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

func firstLine(b []byte) []byte {
	b = bytes.TrimSpace(b)
	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		return b[:i]
	}
	return b
}
