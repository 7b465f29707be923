package video

import "time"

// Config holds the limits and retry policy applied by Service
type Config struct {
	MaxSize        int64    // Maximum upload size in bytes, 0 for no limit
	MaxTitleLength int      // Maximum title length in characters
	MaxDescLength  int      // Maximum description length in characters
	AllowedFormats []string // Lowercase extensions such as ".mp4"; empty allows any

	PersistRetries int           // Extra catalog insert attempts after the first
	PersistBackoff time.Duration // Pause between insert attempts
	MirrorTimeout  time.Duration // Upper bound for one object-store mirror run
}

// Upload is a staged file plus the form fields that came with it
type Upload struct {
	SourcePath   string
	OriginalName string
	Size         int64
	Title        string
	Description  string
	RequestID    string
}

// UploadResponse is returned by POST /upload
type UploadResponse struct {
	Message    string `json:"message"`
	VideoID    int64  `json:"videoId"`
	StreamPath string `json:"streamPath"`
}

// UploadSuccessMessage is the message of a successful upload response
const UploadSuccessMessage = "Video uploaded and converted successfully"

// SweepResult counts what one janitor pass removed
type SweepResult struct {
	StagedRemoved int
	OutputRemoved int
}
