// Package uploader publishes rendered videos to YouTube.
package uploader

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"shortsbot/config"
)

// ProgressFunc receives bytes sent so far
type ProgressFunc func(current, total int64)

// Inserter performs the videos.insert call
type Inserter interface {
	Insert(ctx context.Context, video *youtube.Video, media io.Reader, progress ProgressFunc) (*youtube.Video, error)
}

type youtubeInserter struct {
	service *youtube.Service
}

func (y *youtubeInserter) Insert(ctx context.Context, video *youtube.Video, media io.Reader, progress ProgressFunc) (*youtube.Video, error) {
	call := y.service.Videos.Insert([]string{"snippet", "status"}, video).
		Media(media, googleapi.ChunkSize(config.UploadChunkSize)).
		ProgressUpdater(googleapi.ProgressUpdater(progress)).
		Context(ctx)
	return call.Do()
}

// Uploader uploads videos through an authorized client
type Uploader struct {
	inserter Inserter
}

// NewUploader creates an uploader from an OAuth-authorized HTTP client
func NewUploader(ctx context.Context, client *http.Client) (*Uploader, error) {
	service, err := youtube.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create YouTube service: %w", err)
	}
	return &Uploader{inserter: &youtubeInserter{service: service}}, nil
}

// NewUploaderWithInserter is used by tests and alternate transports
func NewUploaderWithInserter(i Inserter) *Uploader {
	return &Uploader{inserter: i}
}

// Upload sends the file at path as a resumable, chunked upload
func (u *Uploader) Upload(ctx context.Context, path string, metadata Metadata) (*youtube.Video, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open video file: %w", err)
	}
	defer file.Close()

	fileInfo, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat video file: %w", err)
	}
	size := fileInfo.Size()

	metadata = metadata.WithDefaults()
	log.Printf("📤 Uploading: %s (%.2f MB) as %q", path, float64(size)/(1024*1024), metadata.Title)

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       metadata.Title,
			Description: metadata.Description,
			Tags:        metadata.Tags,
			CategoryId:  metadata.CategoryID,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           metadata.Privacy,
			SelfDeclaredMadeForKids: false,
		},
	}

	response, err := u.inserter.Insert(ctx, video, file, logProgress(size))
	if err != nil {
		return nil, fmt.Errorf("failed to upload video: %w", err)
	}

	log.Printf("✅ Uploaded! https://youtube.com/shorts/%s", response.Id)
	return response, nil
}

func logProgress(size int64) ProgressFunc {
	return func(current, total int64) {
		if total <= 0 {
			total = size
		}
		if total <= 0 {
			log.Printf("⏳ Uploaded %d bytes", current)
			return
		}
		log.Printf("⏳ Uploaded %d%%", int(current*100/total))
	}
}
