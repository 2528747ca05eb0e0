package uploader

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/api/youtube/v3"
)

// Connector authorizes and returns a ready Uploader
type Connector func(ctx context.Context) (*Uploader, error)

// LazyUploader signs in on its first Upload. A run that never uploads never
// starts the authorization flow. A failed sign-in is retried on the next Upload.
type LazyUploader struct {
	mu      sync.Mutex
	connect Connector
	up      *Uploader
}

// NewLazyUploader wraps connect
func NewLazyUploader(connect Connector) *LazyUploader {
	return &LazyUploader{connect: connect}
}

// Upload connects if needed, then uploads
func (l *LazyUploader) Upload(ctx context.Context, path string, metadata Metadata) (*youtube.Video, error) {
	up, err := l.uploader(ctx)
	if err != nil {
		return nil, err
	}
	return up.Upload(ctx, path, metadata)
}

func (l *LazyUploader) uploader(ctx context.Context) (*Uploader, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.up != nil {
		return l.up, nil
	}
	up, err := l.connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to authorize upload: %w", err)
	}
	l.up = up
	return up, nil
}
