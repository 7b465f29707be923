package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ConfigService implements the Service interface
type ConfigService struct {
	logger ConfigLogger
}

// NewConfigService creates a new configuration service
func NewConfigService(logger ConfigLogger) *ConfigService {
	return &ConfigService{
		logger: logger,
	}
}

// envBindings maps configuration keys to the plain environment variables the
// service has always honoured.
var envBindings = map[string]string{
	"environment":                "ENV",
	"server.port":                "PORT",
	"database.driver":            "DB_DRIVER",
	"database.host":              "DB_HOST",
	"database.port":              "DB_PORT",
	"database.user":              "DB_USER",
	"database.password":          "DB_PASSWORD",
	"database.dbname":            "DB_NAME",
	"redis.addr":                 "REDIS_ADDR",
	"redis.password":             "REDIS_PASSWORD",
	"ffmpeg.path":                "FFMPEG_PATH",
	"storage.s3.accessKeyId":     "S3_ACCESS_KEY_ID",
	"storage.s3.secretAccessKey": "S3_SECRET_ACCESS_KEY",
}

// Load loads the configuration from the specified directory. A missing config
// file is not an error; defaults and environment variables still apply.
func (s *ConfigService) Load(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	if os.Getenv("ENV") == "test" {
		v.SetConfigName("config_test")
	} else {
		v.SetConfigName("config")
	}
	v.SetConfigType("yaml")

	setDefaults(v)

	v.SetEnvPrefix("VOD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %v", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %v", err)
		}
		s.logger.LogWarn("No config file found, using defaults and environment", map[string]interface{}{
			"path": path,
		})
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %v", err)
	}

	if err := s.validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %v", err)
	}

	if err := s.resolveStoragePaths(&config, path); err != nil {
		return nil, fmt.Errorf("failed to resolve storage paths: %v", err)
	}

	s.logger.LogInfo("Configuration loaded successfully", map[string]interface{}{
		"file":        v.ConfigFileUsed(),
		"environment": config.Environment,
		"driver":      config.Database.Driver,
	})
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.shutdownTimeout", "15s")
	v.SetDefault("server.maxMultipartMemory", 32<<20)
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.timezone", "UTC")
	v.SetDefault("database.path", "vodstream.db")
	v.SetDefault("database.autoMigrate", true)
	v.SetDefault("database.pool.maxOpen", 10)
	v.SetDefault("database.pool.maxIdle", 5)
	v.SetDefault("database.pool.connMaxLifetime", "30m")
	v.SetDefault("storage.uploadDir", "uploads")
	v.SetDefault("storage.streamDir", "stream")
	v.SetDefault("storage.publicPath", "/stream")
	v.SetDefault("storage.s3.region", "us-east-1")
	v.SetDefault("storage.s3.timeout", "5m")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.channel", "vodstream:jobs")
	v.SetDefault("ffmpeg.path", "ffmpeg")
	v.SetDefault("ffmpeg.videoCodec", "libx264")
	v.SetDefault("ffmpeg.audioCodec", "aac")
	v.SetDefault("ffmpeg.preset", "veryfast")
	v.SetDefault("ffmpeg.segmentDuration", 10)
	v.SetDefault("transcode.maxConcurrent", 2)
	v.SetDefault("transcode.timeout", "30m")
	v.SetDefault("transcode.killGrace", "5s")
	v.SetDefault("transcode.persistRetries", 0)
	v.SetDefault("transcode.persistBackoff", "500ms")
	v.SetDefault("video.maxSize", 2*1024*1024*1024) // 2GB
	v.SetDefault("video.maxTitleLength", 255)
	v.SetDefault("video.maxDescLength", 5000)
	v.SetDefault("janitor.interval", "1h")
	v.SetDefault("janitor.gracePeriod", "6h")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
}

func (s *ConfigService) validate(config *Config) error {
	if config.Server.Port <= 0 {
		return fmt.Errorf("invalid server port")
	}

	switch config.Database.Driver {
	case "postgres":
		if config.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if config.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if config.Database.Dbname == "" {
			return fmt.Errorf("database name is required")
		}
		if config.Database.Port <= 0 {
			return fmt.Errorf("invalid database port")
		}
	case "sqlite":
		if config.Database.Path == "" {
			return fmt.Errorf("database path is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", config.Database.Driver)
	}

	if config.Storage.UploadDir == "" || config.Storage.StreamDir == "" {
		return fmt.Errorf("storage uploadDir and streamDir are required")
	}
	if config.Ffmpeg.Path == "" {
		return fmt.Errorf("ffmpeg path is required")
	}
	if config.Ffmpeg.SegmentDuration <= 0 {
		return fmt.Errorf("ffmpeg segmentDuration must be positive")
	}
	if config.Transcode.MaxConcurrent < 1 {
		return fmt.Errorf("transcode maxConcurrent must be at least 1")
	}
	if config.Transcode.Timeout <= 0 {
		return fmt.Errorf("transcode timeout must be positive")
	}
	if config.Transcode.PersistRetries < 0 {
		return fmt.Errorf("transcode persistRetries cannot be negative")
	}
	// The janitor sweeps once at startup even with a zero interval.
	if config.Janitor.GracePeriod <= config.Transcode.Timeout {
		return fmt.Errorf("janitor gracePeriod must exceed transcode timeout")
	}
	if config.Storage.S3.Enabled && (config.Storage.S3.Endpoint == "" || config.Storage.S3.Bucket == "") {
		return fmt.Errorf("s3 endpoint and bucket are required when the mirror is enabled")
	}

	return nil
}

// resolveStoragePaths converts relative paths to absolute paths
func (s *ConfigService) resolveStoragePaths(config *Config, basePath string) error {
	paths := []*string{&config.Storage.UploadDir, &config.Storage.StreamDir}
	if config.Database.Driver == "sqlite" {
		paths = append(paths, &config.Database.Path)
	}

	for _, p := range paths {
		if filepath.IsAbs(*p) {
			continue
		}
		absPath, err := filepath.Abs(filepath.Join(basePath, *p))
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %v", *p, err)
		}
		*p = absPath
	}

	return nil
}
