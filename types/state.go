package types

import "time"

// State represents the pipeline run state machine
type State string

const (
	StateIdle        State = "idle"
	StateFinding     State = "finding"
	StateDownloading State = "downloading"
	StateCaptioning  State = "captioning"
	StateComposing   State = "composing"
	StateArchiving   State = "archiving"
	StateUploading   State = "uploading"
	StateComplete    State = "complete"
	StateError       State = "error"
)

// Busy reports whether a run is in progress in this state
func (s State) Busy() bool {
	switch s {
	case StateIdle, StateComplete, StateError, "":
		return false
	}
	return true
}

// LogEntry represents a single log line with timestamp
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// RunResult summarises a finished run
type RunResult struct {
	RunID      string   `json:"run_id"`
	VideoPath  string   `json:"video_path,omitempty"`
	Title      string   `json:"title,omitempty"`
	VideoID    string   `json:"video_id,omitempty"`
	ArchiveKey string   `json:"archive_key,omitempty"`
	ClipIDs    []string `json:"clip_ids,omitempty"`
	Duration   float64  `json:"duration,omitempty"`
}

// StatusResponse is the JSON response for GET /api/runs/current
type StatusResponse struct {
	State      State      `json:"state"`
	RunID      string     `json:"run_id,omitempty"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	Logs       []LogEntry `json:"logs"`
	ClipCount  int        `json:"clip_count"`
	LastResult *RunResult `json:"last_result,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// RunRequest asks for one pipeline run. Empty fields use configured defaults.
type RunRequest struct {
	RequestID     string   `json:"request_id,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	CaptionSource string   `json:"caption_source,omitempty"`
	OutputName    string   `json:"output_name,omitempty"`
	SkipUpload    bool     `json:"skip_upload,omitempty"`
}
