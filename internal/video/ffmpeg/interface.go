package ffmpeg

import "context"

// Engine converts a source file into an HLS playlist with segments
type Engine interface {
	// Convert starts the conversion and returns at once. The channel delivers
	// exactly one Result and is then closed.
	Convert(ctx context.Context, req Request) <-chan Result
}

// Request names the input and where the playlist must be written
type Request struct {
	JobID      string
	SourcePath string
	OutputDir  string
	OutputFile string
}

// Result is the outcome of one conversion. Err is a *errors.TranscodeError when set.
type Result struct {
	PlaylistPath string
	Err          error
}
