package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"path"
	"path/filepath"
	"time"

	"shortsbot/types"
)

// ObjectStore is the subset of common.S3 the archive needs
type ObjectStore interface {
	PutFile(ctx context.Context, key, path, contentType string) error
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Manifest describes an archived run
type Manifest struct {
	Run        types.RunResult      `json:"run"`
	Captions   types.CaptionSet     `json:"captions"`
	Clips      []types.AcceptedClip `json:"clips"`
	ArchivedAt time.Time            `json:"archived_at"`
}

// S3Archiver writes <prefix>/<run id>/<file> and manifest.json
type S3Archiver struct {
	store  ObjectStore
	prefix string
}

// NewS3Archiver creates an archiver under prefix
func NewS3Archiver(store ObjectStore, prefix string) *S3Archiver {
	return &S3Archiver{store: store, prefix: prefix}
}

// Archive implements Archiver and returns the video key
func (a *S3Archiver) Archive(ctx context.Context, video types.ComposedVideo, result types.RunResult) (string, error) {
	dir := path.Join(a.prefix, result.RunID)
	videoKey := path.Join(dir, filepath.Base(video.Path))

	exists, err := a.store.Exists(ctx, videoKey)
	if err != nil {
		return "", fmt.Errorf("failed to check %s: %w", videoKey, err)
	}
	if exists {
		log.Printf("📦 %s already archived, keeping existing object", videoKey)
	} else if err := a.store.PutFile(ctx, videoKey, video.Path, "video/mp4"); err != nil {
		return "", err
	}

	manifest := Manifest{
		Run:        result,
		Captions:   video.Captions,
		Clips:      video.Clips,
		ArchivedAt: time.Now().UTC(),
	}
	manifest.Run.ArchiveKey = videoKey
	body, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := a.store.Put(ctx, path.Join(dir, "manifest.json"), bytes.NewReader(body), "application/json"); err != nil {
		return "", err
	}
	return videoKey, nil
}
