package downloader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type recordedCall struct {
	name string
	args []string
}

func fakeRunner(out string, err error, calls *[]recordedCall) Runner {
	return func(_ context.Context, name string, args ...string) ([]byte, error) {
		*calls = append(*calls, recordedCall{name: name, args: args})
		return []byte(out), err
	}
}

func hasArgPair(args []string, flag, value string) bool {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag && args[i+1] == value {
			return true
		}
	}
	return false
}

func TestDownloadBuildsOutputTemplate(t *testing.T) {
	dir := t.TempDir()
	var calls []recordedCall
	want := filepath.Join(dir, "clip0.mp4")
	d := New(Config{Path: "yt-dlp-test", Dir: dir, CookiesFile: "cookies.txt"}).
		WithRunner(fakeRunner(want+"\n", nil, &calls))

	got, err := d.Download(context.Background(), "https://www.youtube.com/watch?v=abc", "clip0")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if got != want {
		t.Fatalf("Download path = %q; want %q", got, want)
	}
	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(calls))
	}
	args := calls[0].args
	if !hasArgPair(args, "-o", filepath.Join(dir, "clip0.%(ext)s")) {
		t.Fatalf("missing output template in %v", args)
	}
	if !hasArgPair(args, "--cookies", "cookies.txt") {
		t.Fatalf("missing cookies flag in %v", args)
	}
	if args[len(args)-1] != "https://www.youtube.com/watch?v=abc" {
		t.Fatalf("URL should be the last argument: %v", args)
	}
}

func TestDownloadFallsBackToGlob(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip3.webm")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	var calls []recordedCall
	d := New(Config{Dir: dir}).WithRunner(fakeRunner("", nil, &calls))

	got, err := d.Download(context.Background(), "https://example.com/v", "clip3")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if got != path {
		t.Fatalf("Download = %q; want %q", got, path)
	}
}

func TestDownloadError(t *testing.T) {
	var calls []recordedCall
	d := New(Config{Dir: t.TempDir()}).WithRunner(fakeRunner("", errors.New("exit status 1"), &calls))
	if _, err := d.Download(context.Background(), "https://example.com/v", "clip0"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestTikTokCookieHeader(t *testing.T) {
	var calls []recordedCall
	d := New(Config{Dir: t.TempDir(), TikTokCookie: "sid=1"}).
		WithRunner(fakeRunner(`{"id":"1"}`, nil, &calls))

	if _, err := d.Probe(context.Background(), "https://www.tiktok.com/@u/video/1"); err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if _, err := d.Probe(context.Background(), "https://www.reddit.com/r/x/comments/1"); err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if !hasArgPair(calls[0].args, "--add-header", "Cookie:sid=1") {
		t.Fatalf("tiktok call missing cookie header: %v", calls[0].args)
	}
	if strings.Contains(strings.Join(calls[1].args, " "), "Cookie:") {
		t.Fatalf("non-tiktok call should not send cookie header: %v", calls[1].args)
	}
}

func TestProbeParsesMetadata(t *testing.T) {
	var calls []recordedCall
	out := `{"id":"abc","title":"Funny cat","duration":12.5,"like_count":9000,"upload_date":"20240102","tags":["cat"]}`
	d := New(Config{Dir: t.TempDir()}).WithRunner(fakeRunner(out+"\n", nil, &calls))

	meta, err := d.Probe(context.Background(), "https://example.com/v")
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if meta.ID != "abc" || meta.Duration != 12.5 || meta.LikeCount != 9000 {
		t.Fatalf("unexpected metadata: %+v", meta)
	}
	wantDate := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	if !meta.PublishedAt().Equal(wantDate) {
		t.Fatalf("PublishedAt = %v; want %v", meta.PublishedAt(), wantDate)
	}
	args := calls[0].args
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "--dump-json") || !strings.Contains(joined, "--skip-download") {
		t.Fatalf("probe args = %v", args)
	}
}
