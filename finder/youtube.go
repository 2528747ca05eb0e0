package finder

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"shortsbot/types"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// maxSearchResults is the YouTube Data API page size limit
const maxSearchResults = 50

// VideoAPI is the slice of the YouTube Data API the finder uses
type VideoAPI interface {
	SearchIDs(ctx context.Context, query string, w Window, maxResults int64) ([]string, error)
	Videos(ctx context.Context, ids []string) ([]*youtube.Video, error)
}

type youtubeAPI struct {
	service *youtube.Service
}

// NewYouTubeAPI creates a Data API client authenticated with an API key
func NewYouTubeAPI(ctx context.Context, apiKey string) (VideoAPI, error) {
	service, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("unable to create YouTube service: %w", err)
	}
	return &youtubeAPI{service: service}, nil
}

func (y *youtubeAPI) SearchIDs(ctx context.Context, query string, w Window, maxResults int64) ([]string, error) {
	if maxResults <= 0 || maxResults > maxSearchResults {
		maxResults = maxSearchResults
	}
	call := y.service.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		VideoDuration("short").
		MaxResults(maxResults)
	if !w.After.IsZero() {
		call = call.PublishedAfter(w.After.UTC().Format(time.RFC3339))
	}
	if !w.Before.IsZero() {
		call = call.PublishedBefore(w.Before.UTC().Format(time.RFC3339))
	}

	resp, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("search.list failed: %w", err)
	}

	ids := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id != nil && item.Id.VideoId != "" {
			ids = append(ids, item.Id.VideoId)
		}
	}
	return ids, nil
}

func (y *youtubeAPI) Videos(ctx context.Context, ids []string) ([]*youtube.Video, error) {
	resp, err := y.service.Videos.List([]string{"snippet", "contentDetails", "statistics"}).
		Id(ids...).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("videos.list failed: %w", err)
	}
	return resp.Items, nil
}

// YouTubeSource searches YouTube for short videos
type YouTubeSource struct {
	api VideoAPI
}

// NewYouTubeSource creates the source. An empty key yields a source that
// logs the missing credential and returns nothing.
func NewYouTubeSource(ctx context.Context, apiKey string) (*YouTubeSource, error) {
	if apiKey == "" {
		return &YouTubeSource{}, nil
	}
	api, err := NewYouTubeAPI(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	return &YouTubeSource{api: api}, nil
}

// NewYouTubeSourceWithAPI wraps an existing VideoAPI
func NewYouTubeSourceWithAPI(api VideoAPI) *YouTubeSource {
	return &YouTubeSource{api: api}
}

// Name implements Source
func (s *YouTubeSource) Name() string { return "youtube" }

// Search implements Source. Details for every hit are fetched in one batch.
func (s *YouTubeSource) Search(ctx context.Context, q Query, w Window) ([]types.Candidate, error) {
	if s.api == nil {
		log.Println("⚠️  Missing YOUTUBE_API_KEY, skipping YouTube search")
		return nil, nil
	}

	query := strings.Join(q.Tags, " ")
	ids, err := s.api.SearchIDs(ctx, query, w, q.MaxResults)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		log.Printf("⚠️  No YouTube search results for %q", query)
		return nil, nil
	}

	videos, err := s.api.Videos(ctx, ids)
	if err != nil {
		return nil, err
	}

	cands := make([]types.Candidate, 0, len(videos))
	for _, v := range videos {
		if c, ok := candidateFromVideo(v); ok {
			cands = append(cands, c)
		}
	}
	log.Printf("🔎 YouTube returned %d videos for %q", len(cands), query)
	return cands, nil
}

func candidateFromVideo(v *youtube.Video) (types.Candidate, bool) {
	if v == nil || v.Id == "" || v.Snippet == nil {
		return types.Candidate{}, false
	}
	c := types.Candidate{
		ID:          v.Id,
		Title:       v.Snippet.Title,
		URL:         "https://www.youtube.com/watch?v=" + v.Id,
		Tags:        v.Snippet.Tags,
		Description: v.Snippet.Description,
		Source:      "youtube",
	}
	if v.ContentDetails != nil {
		c.DurationSeconds = float64(ParseISODuration(v.ContentDetails.Duration))
	}
	// Hidden like counts read as zero.
	if v.Statistics != nil {
		c.LikeCount = int64(v.Statistics.LikeCount)
	}
	if t, err := time.Parse(time.RFC3339, v.Snippet.PublishedAt); err == nil {
		c.PublishedAt = t
	}
	return c, true
}
