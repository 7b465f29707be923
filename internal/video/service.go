package video

import (
	"context"
	"errors"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	apperrors "github.com/consensuslabs/vodstream/internal/errors"
	"github.com/consensuslabs/vodstream/internal/logger"
	"github.com/consensuslabs/vodstream/internal/metrics"
	"github.com/consensuslabs/vodstream/internal/notification"
	"github.com/consensuslabs/vodstream/internal/storage"
	"github.com/consensuslabs/vodstream/internal/video/ffmpeg"
	"github.com/consensuslabs/vodstream/internal/video/layout"
)

const (
	publishTimeout       = 2 * time.Second
	defaultMirrorTimeout = 10 * time.Minute
)

// Service runs the ingest pipeline: validate, allocate, transcode, persist
type Service struct {
	config  *Config
	layout  layout.Layout
	engine  ffmpeg.Engine
	repo    Repository
	events  notification.Publisher
	mirror  storage.Mirror
	metrics *metrics.Metrics
	logger  logger.Logger

	removeFile func(string) error
	removeAll  func(string) error

	mirrors sync.WaitGroup
}

// Option configures optional Service collaborators
type Option func(*Service)

// WithPublisher sends job state changes to p
func WithPublisher(p notification.Publisher) Option {
	return func(s *Service) { s.events = p }
}

// WithMirror copies completed output to m after the catalog commit
func WithMirror(m storage.Mirror) Option {
	return func(s *Service) { s.mirror = m }
}

// WithMetrics records pipeline outcomes on m
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates a new ingest service
func NewService(config *Config, l layout.Layout, engine ffmpeg.Engine, repo Repository, log logger.Logger, opts ...Option) *Service {
	s := &Service{
		config:     config,
		layout:     l,
		engine:     engine,
		repo:       repo,
		events:     notification.NopPublisher{},
		logger:     log,
		removeFile: os.Remove,
		removeAll:  os.RemoveAll,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.NewUnregistered()
	}
	return s
}

// Ingest converts a staged upload into a catalogued HLS stream. The staged
// source is removed on every path. A failed job leaves no output directory
// and no catalog row behind.
func (s *Service) Ingest(ctx context.Context, upload Upload) (*Video, error) {
	job := NewJob(upload.SourcePath)
	log := s.logger
	if upload.RequestID != "" {
		log = log.WithRequestID(upload.RequestID)
	}
	defer s.cleanupSource(job, log)

	if err := validateUpload(s.config, upload); err != nil {
		s.fail(ctx, job, upload, err, metrics.OutcomeValidation, log)
		return nil, err
	}
	if err := job.Transition(JobValidated); err != nil {
		return nil, err
	}

	alloc, err := s.layout.Allocate()
	if err != nil {
		var serr *apperrors.StorageError
		if !errors.As(err, &serr) {
			err = apperrors.NewStorageError("failed to allocate output directory", err)
		}
		s.fail(ctx, job, upload, err, metrics.OutcomeStorage, log)
		return nil, err
	}
	defer s.layout.Release(alloc)

	job.Attach(alloc)
	log = log.WithJobID(job.ID)
	if err := job.Transition(JobTranscoding); err != nil {
		return nil, err
	}
	s.publish(ctx, job, upload, nil, log)

	log.LogInfo("Transcoding upload", map[string]interface{}{
		"title":     upload.Title,
		"file":      upload.OriginalName,
		"size":      upload.Size,
		"outputDir": job.OutputDir,
	})

	result := <-s.engine.Convert(ctx, ffmpeg.Request{
		JobID:      job.ID,
		SourcePath: job.SourcePath,
		OutputDir:  job.OutputDir,
		OutputFile: job.OutputFile,
	})
	if result.Err != nil {
		err := result.Err
		var terr *apperrors.TranscodeError
		if !errors.As(err, &terr) {
			err = apperrors.NewTranscodeError("transcode failed", -1, "", err)
		}
		s.removeOutput(job, log)
		s.fail(ctx, job, upload, err, metrics.OutcomeTranscode, log)
		return nil, err
	}

	streamPath, err := s.layout.Relative(result.PlaylistPath)
	if err != nil {
		s.removeOutput(job, log)
		s.fail(ctx, job, upload, err, metrics.OutcomeStorage, log)
		return nil, err
	}

	s.cleanupSource(job, log)

	// The artifact is complete; a client that went away does not undo it.
	video, err := s.persist(context.WithoutCancel(ctx), strings.TrimSpace(upload.Title), upload.Description, streamPath, log)
	if err != nil {
		s.removeOutput(job, log)
		s.fail(ctx, job, upload, err, metrics.OutcomePersistence, log)
		return nil, err
	}

	if err := job.Transition(JobCompleted); err != nil {
		return nil, err
	}
	s.metrics.IngestTotal.WithLabelValues(metrics.OutcomeCompleted).Inc()
	s.publish(ctx, job, upload, video, log)

	log.LogInfo("Upload ingested", map[string]interface{}{
		"videoID":    video.ID,
		"streamPath": video.FilePath,
	})

	s.startMirror(job, video.FilePath, log)
	return video, nil
}

// ListVideos returns the catalog, newest first
func (s *Service) ListVideos(ctx context.Context) ([]Video, error) {
	return s.repo.List(ctx)
}

// Wait blocks until background mirror uploads have finished
func (s *Service) Wait() {
	s.mirrors.Wait()
}

func (s *Service) persist(ctx context.Context, title, description, streamPath string, log logger.Logger) (*Video, error) {
	var lastErr error
	for attempt := 0; attempt <= s.config.PersistRetries; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(s.config.PersistBackoff)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return nil, apperrors.NewPersistenceError("insert", ctx.Err())
			}
		}

		video, err := s.repo.Insert(ctx, title, description, streamPath)
		if err == nil {
			return video, nil
		}
		lastErr = err
		log.LogWarn("Catalog insert failed", map[string]interface{}{
			"attempt": attempt + 1,
			"error":   err.Error(),
		})
	}

	var perr *apperrors.PersistenceError
	if !errors.As(lastErr, &perr) {
		lastErr = apperrors.NewPersistenceError("insert", lastErr)
	}
	return nil, lastErr
}

func (s *Service) fail(ctx context.Context, job *Job, upload Upload, cause error, outcome string, log logger.Logger) {
	if err := job.Fail(cause); err != nil {
		log.LogWarn("Job state not updated", map[string]interface{}{"error": err.Error()})
	}
	s.metrics.IngestTotal.WithLabelValues(outcome).Inc()

	var verr *apperrors.ValidationError
	if errors.As(cause, &verr) {
		log.LogInfo("Upload rejected", map[string]interface{}{
			"field":  verr.Field,
			"reason": verr.Message,
		})
	} else {
		log.LogError(cause, "Upload processing failed")
	}

	// Nothing is published for uploads rejected before a job id exists.
	if job.ID != "" {
		s.publish(ctx, job, upload, nil, log)
	}
}

func (s *Service) cleanupSource(job *Job, log logger.Logger) {
	attempted, err := job.RemoveSource(s.removeFile)
	if attempted && err != nil && !errors.Is(err, os.ErrNotExist) {
		s.metrics.CleanupFailures.WithLabelValues("source").Inc()
		log.LogWarn("Failed to remove staged upload", map[string]interface{}{
			"path":  job.SourcePath,
			"error": err.Error(),
		})
	}
}

func (s *Service) removeOutput(job *Job, log logger.Logger) {
	if job.OutputDir == "" {
		return
	}
	if err := s.removeAll(job.OutputDir); err != nil {
		s.metrics.CleanupFailures.WithLabelValues("output").Inc()
		log.LogWarn("Failed to remove output directory", map[string]interface{}{
			"path":  job.OutputDir,
			"error": err.Error(),
		})
	}
}

func (s *Service) publish(ctx context.Context, job *Job, upload Upload, video *Video, log logger.Logger) {
	event := notification.JobEvent{
		JobID:     job.ID,
		RequestID: upload.RequestID,
		State:     string(job.State()),
		Error:     job.ErrorDetail(),
		At:        time.Now().UTC(),
	}
	if video != nil {
		event.VideoID = video.ID
		event.StreamPath = video.FilePath
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.events.Publish(pubCtx, event); err != nil {
		log.LogWarn("Failed to publish job event", map[string]interface{}{
			"state": event.State,
			"error": err.Error(),
		})
	}
}

func (s *Service) startMirror(job *Job, streamPath string, log logger.Logger) {
	if s.mirror == nil {
		return
	}
	timeout := s.config.MirrorTimeout
	if timeout <= 0 {
		timeout = defaultMirrorTimeout
	}

	s.mirrors.Add(1)
	go func() {
		defer s.mirrors.Done()
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		n, err := s.mirror.UploadDir(ctx, job.OutputDir, path.Dir(streamPath))
		if err != nil {
			log.LogError(err, "Failed to mirror HLS output")
			return
		}
		log.LogDebug("Mirrored HLS output", map[string]interface{}{"objects": n})
	}()
}
