package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	apperrors "github.com/consensuslabs/vodstream/internal/errors"
	"github.com/consensuslabs/vodstream/internal/logger"
	"github.com/consensuslabs/vodstream/internal/metrics"
	"golang.org/x/sync/semaphore"
)

const stderrTailLimit = 4096

// Config represents FFmpeg configuration
type Config struct {
	Path            string        // Path to FFmpeg binary
	VideoCodec      string        // Video codec (e.g. libx264, copy)
	AudioCodec      string        // Audio codec (e.g. aac)
	Preset          string        // Encoding preset (e.g. veryfast)
	SegmentDuration int           // Target HLS segment length in seconds
	MaxConcurrent   int           // ffmpeg processes allowed at once
	Timeout         time.Duration // Upper bound for a single run
	KillGrace       time.Duration // How long to wait for pipes after the kill
}

// Service runs ffmpeg as an HLS packager behind a fixed pool of worker slots
type Service struct {
	config  *Config
	logger  logger.Logger
	metrics *metrics.Metrics
	slots   *semaphore.Weighted
}

// NewService creates a new FFmpeg service
func NewService(config *Config, logger logger.Logger, m *metrics.Metrics) *Service {
	size := config.MaxConcurrent
	if size < 1 {
		size = 1
	}
	if m == nil {
		m = metrics.NewUnregistered()
	}
	return &Service{
		config:  config,
		logger:  logger,
		metrics: m,
		slots:   semaphore.NewWeighted(int64(size)),
	}
}

// Available checks that the configured binary can be found
func (s *Service) Available() error {
	if _, err := exec.LookPath(s.config.Path); err != nil {
		return fmt.Errorf("ffmpeg not found at %q: %w", s.config.Path, err)
	}
	return nil
}

// Convert implements Engine
func (s *Service) Convert(ctx context.Context, req Request) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		out <- s.run(ctx, req)
	}()
	return out
}

func (s *Service) run(ctx context.Context, req Request) Result {
	log := s.logger.WithJobID(req.JobID)

	s.metrics.TranscodesQueued.Inc()
	err := s.slots.Acquire(ctx, 1)
	s.metrics.TranscodesQueued.Dec()
	if err != nil {
		return Result{Err: apperrors.NewTranscodeError("transcode cancelled while waiting for a worker slot", 0, "", err)}
	}
	defer s.slots.Release(1)

	s.metrics.TranscodesActive.Inc()
	defer s.metrics.TranscodesActive.Dec()

	runCtx := ctx
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	args := s.BuildArgs(req)
	playlist := filepath.Join(req.OutputDir, req.OutputFile)

	cmd := exec.CommandContext(runCtx, s.config.Path, args...)
	cmd.WaitDelay = s.config.KillGrace
	stderr := newTailBuffer(stderrTailLimit)
	cmd.Stderr = stderr

	log.LogInfo("Starting ffmpeg", map[string]interface{}{
		"source":   req.SourcePath,
		"playlist": playlist,
		"timeout":  s.config.Timeout.String(),
	})

	start := time.Now()
	err = cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		result := s.failure(ctx, runCtx, err, stderr.String())
		s.metrics.TranscodeDuration.WithLabelValues(resultLabel(result.Err)).Observe(elapsed.Seconds())
		log.WithFields(map[string]interface{}{
			"duration": elapsed.String(),
			"stderr":   apperrors.Excerpt(stderr.String(), apperrors.StderrExcerptLimit),
		}).LogError(result.Err, "ffmpeg run failed")
		return result
	}

	info, statErr := os.Stat(playlist)
	if statErr != nil || info.Size() == 0 {
		terr := apperrors.NewTranscodeError("ffmpeg produced no playlist", 0, stderr.String(), statErr)
		s.metrics.TranscodeDuration.WithLabelValues("failed").Observe(elapsed.Seconds())
		log.LogError(terr, "ffmpeg output verification failed")
		return Result{Err: terr}
	}

	s.metrics.TranscodeDuration.WithLabelValues("success").Observe(elapsed.Seconds())
	log.LogInfo("ffmpeg finished", map[string]interface{}{
		"playlist": playlist,
		"duration": elapsed.String(),
	})
	return Result{PlaylistPath: playlist}
}

func (s *Service) failure(parent, runCtx context.Context, err error, stderr string) Result {
	if parent.Err() == nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		msg := fmt.Sprintf("ffmpeg exceeded its time limit of %s", s.config.Timeout)
		return Result{Err: apperrors.NewTimeoutError(msg, stderr, runCtx.Err())}
	}
	if parent.Err() != nil {
		return Result{Err: apperrors.NewTranscodeError("ffmpeg run cancelled", -1, stderr, parent.Err())}
	}

	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}
	return Result{Err: apperrors.NewTranscodeError("ffmpeg exited with an error", exitCode, stderr, err)}
}

func resultLabel(err error) string {
	var terr *apperrors.TranscodeError
	if errors.As(err, &terr) && terr.TimedOut {
		return "timeout"
	}
	return "failed"
}
