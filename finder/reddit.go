package finder

import (
	"context"
	"fmt"
	"log"
	"strings"

	"shortsbot/config"
	"shortsbot/downloader"
	"shortsbot/types"

	"github.com/mmcdole/gofeed"
)

// FeedParser fetches and parses an RSS/Atom feed
type FeedParser interface {
	ParseURLWithContext(feedURL string, ctx context.Context) (*gofeed.Feed, error)
}

// MetadataProber reads clip metadata without downloading media
type MetadataProber interface {
	Probe(ctx context.Context, rawURL string) (*downloader.Metadata, error)
}

// RedditSource discovers video posts from subreddit feeds
type RedditSource struct {
	subreddits []string
	parser     FeedParser
	prober     MetadataProber
	perFeed    int
}

// NewRedditSource creates a source over the given subreddits
func NewRedditSource(subreddits []string, prober MetadataProber) *RedditSource {
	parser := gofeed.NewParser()
	parser.UserAgent = "shortsbot/1.0"
	return &RedditSource{
		subreddits: subreddits,
		parser:     parser,
		prober:     prober,
		perFeed:    config.RedditPostsPerFeed,
	}
}

// WithParser replaces the feed parser
func (s *RedditSource) WithParser(p FeedParser) *RedditSource {
	s.parser = p
	return s
}

// Name implements Source
func (s *RedditSource) Name() string { return "reddit" }

// Search implements Source. Posts whose metadata probe fails are skipped.
func (s *RedditSource) Search(ctx context.Context, q Query, w Window) ([]types.Candidate, error) {
	var cands []types.Candidate
	var lastErr error
	failed := 0

	for _, sub := range s.subreddits {
		feedURL := fmt.Sprintf("https://www.reddit.com/r/%s/.rss", strings.TrimPrefix(sub, "r/"))
		feed, err := s.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			log.Printf("⚠️  Failed to fetch feed %s: %v", feedURL, err)
			lastErr = err
			failed++
			continue
		}

		count := min(len(feed.Items), s.perFeed)
		for i := 0; i < count; i++ {
			c, ok := s.candidateFromItem(ctx, sub, feed.Items[i], w)
			if ok {
				cands = append(cands, c)
			}
		}
	}

	if failed > 0 && failed == len(s.subreddits) {
		return nil, fmt.Errorf("all subreddit feeds failed: %w", lastErr)
	}
	log.Printf("🔎 Reddit returned %d video posts from %d feeds", len(cands), len(s.subreddits))
	return cands, nil
}

func (s *RedditSource) candidateFromItem(ctx context.Context, sub string, item *gofeed.Item, w Window) (types.Candidate, bool) {
	if item == nil || item.Link == "" {
		return types.Candidate{}, false
	}
	if item.PublishedParsed != nil && !w.Contains(*item.PublishedParsed) {
		return types.Candidate{}, false
	}

	meta, err := s.prober.Probe(ctx, item.Link)
	if err != nil {
		log.Printf("⚠️  Skipping %s: %v", item.Link, err)
		return types.Candidate{}, false
	}

	id := meta.ID
	if id == "" {
		id = types.GenerateID(item.Link)
	}

	tags := append([]string{sub}, item.Categories...)
	tags = append(tags, meta.Tags...)

	c := types.Candidate{
		ID:              "reddit_" + id,
		Title:           firstNonEmpty(item.Title, meta.Title),
		URL:             item.Link,
		DurationSeconds: meta.Duration,
		LikeCount:       meta.LikeCount,
		Tags:            tags,
		Description:     meta.Description,
		Source:          "reddit",
	}
	if item.PublishedParsed != nil {
		c.PublishedAt = *item.PublishedParsed
	} else {
		c.PublishedAt = meta.PublishedAt()
	}
	return c, true
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
