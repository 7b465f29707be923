package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/consensuslabs/vodstream/internal/config"
	"github.com/consensuslabs/vodstream/internal/database"
	"github.com/consensuslabs/vodstream/internal/health"
	"github.com/consensuslabs/vodstream/internal/logger"
	"github.com/consensuslabs/vodstream/internal/metrics"
	"github.com/consensuslabs/vodstream/internal/notification"
	"github.com/consensuslabs/vodstream/internal/storage"
	"github.com/consensuslabs/vodstream/internal/storage/s3"
	"github.com/consensuslabs/vodstream/internal/video"
	"github.com/consensuslabs/vodstream/internal/video/ffmpeg"
	"github.com/consensuslabs/vodstream/internal/video/layout"
	"github.com/consensuslabs/vodstream/migrations"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"
)

// App holds all application dependencies
type App struct {
	Config    *config.Config
	logger    logger.Logger
	db        *gorm.DB
	dbService *database.DatabaseService
	registry  *prometheus.Registry
	publisher notification.Publisher
	layout    *layout.Manager
	video     *video.Service
	janitor   *video.Janitor
	health    *health.Handler
	router    *gin.Engine
	server    *http.Server
}

// NewApp creates a new application instance with all dependencies
func NewApp(cfg *config.Config, log logger.Logger) (*App, error) {
	app := &App{
		Config:   cfg,
		logger:   log,
		registry: prometheus.NewRegistry(),
	}
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	pipelineMetrics := metrics.New(app.registry)

	engine := ffmpeg.NewService(&ffmpeg.Config{
		Path:            cfg.Ffmpeg.Path,
		VideoCodec:      cfg.Ffmpeg.VideoCodec,
		AudioCodec:      cfg.Ffmpeg.AudioCodec,
		Preset:          cfg.Ffmpeg.Preset,
		SegmentDuration: cfg.Ffmpeg.SegmentDuration,
		MaxConcurrent:   cfg.Transcode.MaxConcurrent,
		Timeout:         cfg.Transcode.Timeout,
		KillGrace:       cfg.Transcode.KillGrace,
	}, log, pipelineMetrics)
	if err := engine.Available(); err != nil {
		return nil, err
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	manager, err := layout.NewManager(&layout.Config{
		StreamRoot: cfg.Storage.StreamDir,
		StagingDir: cfg.Storage.UploadDir,
	}, log)
	if err != nil {
		app.closeDatabase()
		return nil, fmt.Errorf("failed to prepare storage layout: %v", err)
	}
	app.layout = manager

	if err := app.initPublisher(); err != nil {
		app.closeDatabase()
		return nil, err
	}

	opts := []video.Option{
		video.WithPublisher(app.publisher),
		video.WithMetrics(pipelineMetrics),
	}
	if cfg.Storage.S3.Enabled {
		mirror, err := app.initMirror()
		if err != nil {
			app.publisher.Close()
			app.closeDatabase()
			return nil, err
		}
		opts = append(opts, video.WithMirror(mirror))
	}

	repo := video.NewGormRepository(app.db)
	app.video = video.NewService(&video.Config{
		MaxSize:        cfg.Video.MaxSize,
		MaxTitleLength: cfg.Video.MaxTitleLength,
		MaxDescLength:  cfg.Video.MaxDescLength,
		AllowedFormats: cfg.Video.AllowedFormats,
		PersistRetries: cfg.Transcode.PersistRetries,
		PersistBackoff: cfg.Transcode.PersistBackoff,
		MirrorTimeout:  cfg.Storage.S3.Timeout,
	}, manager, engine, repo, log, opts...)

	app.janitor = video.NewJanitor(manager, repo, cfg.Janitor.GracePeriod, cfg.Janitor.Interval, log, pipelineMetrics)

	app.health = health.NewHandler(log)
	app.health.Register("database", func(ctx context.Context) error { return app.dbService.Ping() })
	if cfg.Redis.Enabled {
		app.health.Register("redis", app.publisher.Ping)
	}

	if err := app.setupRouter(); err != nil {
		app.publisher.Close()
		app.closeDatabase()
		return nil, err
	}
	return app, nil
}

func (a *App) initDatabase() error {
	a.dbService = database.NewDatabaseService(&a.Config.Database, a.logger)
	db, err := a.dbService.Connect()
	if err != nil {
		return fmt.Errorf("failed to setup database: %v", err)
	}
	a.db = db

	if a.Config.Database.AutoMigrate {
		opts := migrations.Options{
			Direction:   "up",
			Environment: a.Config.Environment,
			Force:       true,
		}
		if err := migrations.RunMigrations(db, a.logger, opts); err != nil {
			a.closeDatabase()
			return fmt.Errorf("failed to migrate database: %v", err)
		}
	}
	return nil
}

func (a *App) initPublisher() error {
	if !a.Config.Redis.Enabled {
		a.publisher = notification.NopPublisher{}
		return nil
	}
	publisher, err := notification.NewRedisPublisher(&notification.Config{
		Addr:     a.Config.Redis.Addr,
		Password: a.Config.Redis.Password,
		DB:       a.Config.Redis.DB,
		Channel:  a.Config.Redis.Channel,
	})
	if err != nil {
		return err
	}
	a.publisher = publisher
	return nil
}

func (a *App) initMirror() (storage.Mirror, error) {
	s3cfg := a.Config.Storage.S3
	return s3.NewService(&storage.S3Config{
		Endpoint:        s3cfg.Endpoint,
		AccessKeyID:     s3cfg.AccessKeyID,
		SecretAccessKey: s3cfg.SecretAccessKey,
		UseSSL:          s3cfg.UseSSL,
		Region:          s3cfg.Region,
		Bucket:          s3cfg.Bucket,
		Prefix:          s3cfg.Prefix,
	}, a.logger)
}

// Run serves HTTP and the janitor until ctx is cancelled, then shuts down
func (a *App) Run(ctx context.Context) error {
	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go a.janitor.Run(janitorCtx)

	a.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler: a.router,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.LogInfo(fmt.Sprintf("Starting server on port %d", a.Config.Server.Port), nil)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			a.Shutdown()
			return a.logger.LogError(err, "server failed to start")
		}
	case <-ctx.Done():
	}

	return a.Shutdown()
}

// Shutdown drains in-flight uploads and background mirrors, then closes connections
func (a *App) Shutdown() error {
	a.logger.LogInfo("Initiating graceful shutdown", nil)

	ctx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	var shutdownErr error
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			shutdownErr = a.logger.LogError(err, "HTTP server shutdown did not complete")
		}
	}

	done := make(chan struct{})
	go func() {
		a.video.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		a.logger.LogWarn("Gave up waiting for object-store mirrors", nil)
	}

	if err := a.publisher.Close(); err != nil {
		a.logger.LogWarn("Error closing event publisher", map[string]interface{}{
			"error": err.Error(),
		})
	}
	a.closeDatabase()

	a.logger.LogInfo("Shutdown complete", nil)
	return shutdownErr
}

func (a *App) closeDatabase() {
	if a.dbService == nil {
		return
	}
	if err := a.dbService.Close(); err != nil {
		a.logger.LogWarn("Error closing database connections", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
