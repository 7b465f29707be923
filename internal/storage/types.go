package storage

import (
	"path/filepath"
	"strings"
)

// S3Config represents S3 configuration settings
type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"accessKeyId"`
	SecretAccessKey string `mapstructure:"secretAccessKey"`
	UseSSL          bool   `mapstructure:"useSSL"`
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	Prefix          string `mapstructure:"prefix"`
}

// HLS content types; players are picky about the playlist one.
const (
	ContentTypePlaylist = "application/vnd.apple.mpegurl"
	ContentTypeSegment  = "video/mp2t"
)

// ContentType returns the MIME type for an HLS artifact by extension
func ContentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".m3u8":
		return ContentTypePlaylist
	case ".ts":
		return ContentTypeSegment
	case ".m4s", ".mp4":
		return "video/mp4"
	default:
		return "application/octet-stream"
	}
}
