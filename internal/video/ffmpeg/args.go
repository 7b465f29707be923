package ffmpeg

import (
	"path/filepath"
	"strconv"
)

const segmentPattern = "segment_%03d.ts"

// BuildArgs returns the ffmpeg arguments for a single-rendition VOD HLS package.
// The playlist path is always the last argument.
func (s *Service) BuildArgs(req Request) []string {
	args := []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", req.SourcePath,
	}

	if s.config.VideoCodec != "" {
		args = append(args, "-c:v", s.config.VideoCodec)
		if s.config.Preset != "" && s.config.VideoCodec != "copy" {
			args = append(args, "-preset", s.config.Preset)
		}
	}
	if s.config.AudioCodec != "" {
		args = append(args, "-c:a", s.config.AudioCodec)
	}

	args = append(args,
		"-f", "hls",
		"-hls_time", strconv.Itoa(s.config.SegmentDuration),
		"-hls_list_size", "0",
		"-hls_playlist_type", "vod",
		"-hls_segment_filename", filepath.Join(req.OutputDir, segmentPattern),
		filepath.Join(req.OutputDir, req.OutputFile),
	)
	return args
}
