package config

import "time"

// Config represents the application configuration
type Config struct {
	Environment string          `mapstructure:"environment" yaml:"environment"`
	Server      ServerConfig    `mapstructure:"server" yaml:"server"`
	Database    DatabaseConfig  `mapstructure:"database" yaml:"database"`
	Redis       RedisConfig     `mapstructure:"redis" yaml:"redis"`
	Storage     StorageConfig   `mapstructure:"storage" yaml:"storage"`
	Logging     LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	Ffmpeg      FfmpegConfig    `mapstructure:"ffmpeg" yaml:"ffmpeg"`
	Transcode   TranscodeConfig `mapstructure:"transcode" yaml:"transcode"`
	Video       VideoConfig     `mapstructure:"video" yaml:"video"`
	Janitor     JanitorConfig   `mapstructure:"janitor" yaml:"janitor"`
}

// ServerConfig represents server configuration settings
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
	// MaxMultipartMemory is the part of a multipart body gin keeps in memory before spilling to disk.
	MaxMultipartMemory int64 `mapstructure:"maxMultipartMemory"`
}

// DatabaseConfig represents database configuration settings
type DatabaseConfig struct {
	// Driver is either "postgres" or "sqlite".
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Dbname   string `mapstructure:"dbname"`
	Port     int    `mapstructure:"port"`
	Sslmode  string `mapstructure:"sslmode"`
	Timezone string `mapstructure:"timezone"`
	// Path is the database file used by the sqlite driver.
	Path        string `mapstructure:"path"`
	AutoMigrate bool   `mapstructure:"autoMigrate"`
	Pool        struct {
		MaxOpen         int           `mapstructure:"maxOpen"`
		MaxIdle         int           `mapstructure:"maxIdle"`
		ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"`
	} `mapstructure:"pool"`
}

// StorageConfig represents storage configuration settings
type StorageConfig struct {
	// UploadDir holds staged uploads until their job finishes.
	UploadDir string `mapstructure:"uploadDir"`
	// StreamDir is the stream root; every job gets one subdirectory.
	StreamDir  string   `mapstructure:"streamDir"`
	PublicPath string   `mapstructure:"publicPath"`
	S3         S3Config `mapstructure:"s3"`
}

// S3Config represents the optional object-store mirror
type S3Config struct {
	Enabled         bool          `mapstructure:"enabled"`
	Endpoint        string        `mapstructure:"endpoint"`
	AccessKeyID     string        `mapstructure:"accessKeyId"`
	SecretAccessKey string        `mapstructure:"secretAccessKey"`
	UseSSL          bool          `mapstructure:"useSSL"`
	Region          string        `mapstructure:"region"`
	Bucket          string        `mapstructure:"bucket"`
	Prefix          string        `mapstructure:"prefix"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// RedisConfig represents the job event publisher settings
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Channel  string `mapstructure:"channel"`
}

// FfmpegConfig represents the HLS packager invocation
type FfmpegConfig struct {
	Path            string `mapstructure:"path"`
	VideoCodec      string `mapstructure:"videoCodec"`
	AudioCodec      string `mapstructure:"audioCodec"`
	Preset          string `mapstructure:"preset"`
	SegmentDuration int    `mapstructure:"segmentDuration"`
}

// TranscodeConfig bounds how transcodes run
type TranscodeConfig struct {
	MaxConcurrent int           `mapstructure:"maxConcurrent"`
	Timeout       time.Duration `mapstructure:"timeout"`
	KillGrace     time.Duration `mapstructure:"killGrace"`
	// PersistRetries is the number of extra catalog insert attempts before rollback.
	PersistRetries int           `mapstructure:"persistRetries"`
	PersistBackoff time.Duration `mapstructure:"persistBackoff"`
}

// VideoConfig represents upload validation limits. Zero disables a limit.
type VideoConfig struct {
	MaxSize        int64    `mapstructure:"maxSize"`
	MaxTitleLength int      `mapstructure:"maxTitleLength"`
	MaxDescLength  int      `mapstructure:"maxDescLength"`
	AllowedFormats []string `mapstructure:"allowedFormats"`
}

// JanitorConfig controls the orphan sweeper
type JanitorConfig struct {
	Interval    time.Duration `mapstructure:"interval"`
	GracePeriod time.Duration `mapstructure:"gracePeriod"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	Output      string `mapstructure:"output" yaml:"output"`
	Development bool   `mapstructure:"development" yaml:"development"`

	Sampling struct {
		Initial    int `mapstructure:"initial" yaml:"initial"`
		Thereafter int `mapstructure:"thereafter" yaml:"thereafter"`
	} `mapstructure:"sampling" yaml:"sampling"`
}
