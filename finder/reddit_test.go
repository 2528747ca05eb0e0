package finder

import (
	"context"
	"errors"
	"testing"
	"time"

	"shortsbot/downloader"

	"github.com/mmcdole/gofeed"
)

type fakeFeedParser struct {
	feeds map[string]*gofeed.Feed
}

func (f *fakeFeedParser) ParseURLWithContext(feedURL string, _ context.Context) (*gofeed.Feed, error) {
	feed, ok := f.feeds[feedURL]
	if !ok {
		return nil, errors.New("404")
	}
	return feed, nil
}

type fakeProber struct {
	meta map[string]*downloader.Metadata
}

func (f *fakeProber) Probe(_ context.Context, rawURL string) (*downloader.Metadata, error) {
	m, ok := f.meta[rawURL]
	if !ok {
		return nil, errors.New("not a video")
	}
	return m, nil
}

func TestRedditSourceSearch(t *testing.T) {
	recent := time.Now().Add(-24 * time.Hour)
	old := time.Now().Add(-90 * 24 * time.Hour)

	parser := &fakeFeedParser{feeds: map[string]*gofeed.Feed{
		"https://www.reddit.com/r/funny/.rss": {Items: []*gofeed.Item{
			{Title: "Dog falls", Link: "https://reddit.com/r/funny/comments/1", PublishedParsed: &recent},
			{Title: "Text post", Link: "https://reddit.com/r/funny/comments/2", PublishedParsed: &recent},
			{Title: "Old video", Link: "https://reddit.com/r/funny/comments/3", PublishedParsed: &old},
		}},
	}}
	prober := &fakeProber{meta: map[string]*downloader.Metadata{
		"https://reddit.com/r/funny/comments/1": {ID: "1", Duration: 14, LikeCount: 8000},
		"https://reddit.com/r/funny/comments/3": {ID: "3", Duration: 10, LikeCount: 9000},
	}}

	src := NewRedditSource([]string{"funny", "missing"}, prober).WithParser(parser)
	cands, err := src.Search(context.Background(), Query{}, RecentPolicy{}.Window(time.Now()))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(cands) != 1 {
		t.Fatalf("got %d candidates; want 1", len(cands))
	}
	c := cands[0]
	if c.ID != "reddit_1" || c.DurationSeconds != 14 || c.LikeCount != 8000 || c.Source != "reddit" {
		t.Fatalf("unexpected candidate: %+v", c)
	}
	if len(c.Tags) == 0 || c.Tags[0] != "funny" {
		t.Fatalf("subreddit should be the first tag: %v", c.Tags)
	}
}

func TestRedditSourceAllFeedsFail(t *testing.T) {
	src := NewRedditSource([]string{"a", "b"}, &fakeProber{}).WithParser(&fakeFeedParser{})
	if _, err := src.Search(context.Background(), Query{}, Window{}); err == nil {
		t.Fatalf("expected error when every feed fails")
	}
}
