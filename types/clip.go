package types

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Candidate represents a single short video found by a clip source
type Candidate struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	URL             string    `json:"url"`
	DurationSeconds float64   `json:"duration_seconds"`
	PublishedAt     time.Time `json:"published_at"`
	LikeCount       int64     `json:"like_count"`
	Tags            []string  `json:"tags,omitempty"`
	Description     string    `json:"description,omitempty"`
	Source          string    `json:"source"`
}

// Selection is the ordered list of candidates chosen for one compilation
type Selection []Candidate

// TotalDuration sums the durations of every selected candidate
func (s Selection) TotalDuration() float64 {
	total := 0.0
	for _, c := range s {
		total += c.DurationSeconds
	}
	return total
}

// IDs returns the candidate IDs in selection order
func (s Selection) IDs() []string {
	ids := make([]string, 0, len(s))
	for _, c := range s {
		ids = append(ids, c.ID)
	}
	return ids
}

// LocalClip is a downloaded candidate. ID is the candidate ID.
type LocalClip struct {
	ID          string `json:"id"`
	Path        string `json:"path"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Source      string `json:"source"`
}

// Transcript holds the speech-to-text result for one clip.
// Text is empty when transcription failed.
type Transcript struct {
	ClipID string `json:"clip_id"`
	Text   string `json:"text"`
	Err    error  `json:"-"`
}

// CaptionSet holds per-clip captions and the overall video title
type CaptionSet struct {
	// Ordered follows the clip order passed to the generator
	Ordered   []string          `json:"ordered"`
	Captions  map[string]string `json:"captions"`
	MainTitle string            `json:"main_title"`
}

// CaptionFor returns the caption for a clip ID, or "" when none exists
func (c CaptionSet) CaptionFor(clipID string) string {
	if c.Captions == nil {
		return ""
	}
	return c.Captions[clipID]
}

// AcceptedClip is a clip that made it into the composed video
type AcceptedClip struct {
	ClipID   string  `json:"clip_id"`
	Path     string  `json:"path"`
	Caption  string  `json:"caption"`
	Duration float64 `json:"duration"`
}

// ComposedVideo is the rendered compilation
type ComposedVideo struct {
	Path     string         `json:"path"`
	Title    string         `json:"title"`
	Captions CaptionSet     `json:"captions"`
	Clips    []AcceptedClip `json:"clips"`
	Duration float64        `json:"duration"`
}

// GenerateID creates a short stable ID from a URL
func GenerateID(url string) string {
	hash := sha256.Sum256([]byte(url))
	return hex.EncodeToString(hash[:])[:16]
}
