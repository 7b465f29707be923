package notification

import "time"

// Config represents Redis configuration settings
type Config struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Channel  string `mapstructure:"channel"`
}

// JobEvent is published on every job state change
type JobEvent struct {
	JobID      string    `json:"job_id,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
	State      string    `json:"state"`
	VideoID    int64     `json:"video_id,omitempty"`
	StreamPath string    `json:"stream_path,omitempty"`
	Error      string    `json:"error,omitempty"`
	At         time.Time `json:"at"`
}
