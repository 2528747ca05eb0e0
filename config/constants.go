package config

import "time"

// Canvas Constants
const (
	// VideoWidth is the output canvas width (9:16 vertical)
	VideoWidth = 1080

	// VideoHeight is the output canvas height (9:16 vertical)
	VideoHeight = 1920

	// VideoFPS is the output frame rate
	VideoFPS = 24
)

// Encoder Constants
const (
	// VideoCodec is the video encoding codec
	VideoCodec = "libx264"

	// AudioCodec is the audio encoding codec
	AudioCodec = "aac"

	// AudioBitrate is the audio quality bitrate
	AudioBitrate = "192k"

	// VideoPreset is the ffmpeg encoding speed preset
	VideoPreset = "medium"

	// EncoderThreads is the number of encoder threads
	EncoderThreads = 4

	// AudioSampleRate is used for silent tracks on clips without audio
	AudioSampleRate = 44100
)

// Caption Overlay Constants
const (
	// CaptionFontSize is the base font size for per-clip captions
	CaptionFontSize = 70

	// CaptionCharLimit is the caption length above which the font shrinks
	CaptionCharLimit = 20

	// CaptionStrokeWidth is the black outline width around captions
	CaptionStrokeWidth = 3

	// CaptionMargin is the distance from the canvas edges in pixels
	CaptionMargin = 40

	// TitleFontSize is the base font size for the main title
	TitleFontSize = 100

	// TitleCharLimit is the title length above which the font shrinks
	TitleCharLimit = 25

	// TitleStrokeWidth is the black outline width around the title
	TitleStrokeWidth = 5

	// TitleY is the vertical position of the main title
	TitleY = 100

	// TitleDuration is how long the main title stays on screen in seconds
	TitleDuration = 3.0

	// TextColor and StrokeColor are drawtext colours
	TextColor   = "yellow"
	StrokeColor = "black"
)

// Trim Policy Constants
const (
	// CappedClipSeconds is the per-clip ceiling of the capped trim policy
	CappedClipSeconds = 15.0

	// BudgetLongClipSeconds marks a clip as long under the budget trim policy
	BudgetLongClipSeconds = 40.0

	// BudgetTrimSeconds is what a long clip is cut to under the budget trim policy
	BudgetTrimSeconds = 25.0
)

// Finder Constants
const (
	// MaxClipSeconds is the longest single clip that passes the duration filter
	MaxClipSeconds = 58.0

	// RecentWindow bounds the recent recency policy
	RecentWindow = 30 * 24 * time.Hour

	// EvergreenAge bounds the evergreen recency policy
	EvergreenAge = 60 * 24 * time.Hour

	// RedditPostsPerFeed caps how many posts are probed per subreddit feed
	RedditPostsPerFeed = 25
)

// Title and Metadata Constants
const (
	// MaxTitleLength is the maximum character length for video titles
	MaxTitleLength = 100

	// LabelTitleLength is how much of a clip title survives in a synthesized label
	LabelTitleLength = 20

	// MetadataHintChars caps the description part of a metadata caption hint
	MetadataHintChars = 200

	// DefaultDescription is the upload description used when none is given
	DefaultDescription = "Automated compilation"

	// DefaultCategoryID is the YouTube "People & Blogs" category
	DefaultCategoryID = "22"

	// DefaultPrivacyStatus sets video visibility
	DefaultPrivacyStatus = "public"

	// UploadChunkSize is the resumable upload chunk size in bytes
	UploadChunkSize = 8 * 1024 * 1024
)

// DefaultUploadTags are attached to every upload unless overridden
var DefaultUploadTags = []string{"shorts", "compilation"}

// Run State Constants
const (
	// MaxRunLogs is the size of the run log ring buffer
	MaxRunLogs = 50

	// ProgressTick is how often simulated progress is reported for local models
	ProgressTick = 2 * time.Second
)
