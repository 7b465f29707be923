package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/consensuslabs/vodstream/internal/config"
	"github.com/consensuslabs/vodstream/internal/logger"
	"github.com/joho/godotenv"
)

func main() {
	configDir := flag.String("config", ".", "Directory containing config.yaml")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: No .env file found or error loading it: %v", err)
	}

	// Bootstrap logger until the configured one exists.
	bootLogger, err := logger.NewLogger(&logger.Config{Level: logger.InfoLevel, Format: "json", Output: "stdout"})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	cfg, err := config.NewConfigService(bootLogger).Load(*configDir)
	if err != nil {
		bootLogger.LogFatal(err, "Failed to load configuration")
	}

	loggerService, err := logger.NewLogger(&logger.Config{
		Level:       logger.Level(cfg.Logging.Level),
		Format:      cfg.Logging.Format,
		Output:      cfg.Logging.Output,
		Development: cfg.Logging.Development,
		Service:     "vodstream",
		Sampling:    cfg.Logging.Sampling,
	})
	if err != nil {
		bootLogger.LogFatal(err, "Failed to initialize logger")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := NewApp(cfg, loggerService)
	if err != nil {
		loggerService.LogFatal(err, "Failed to initialize application")
	}

	if err := app.Run(ctx); err != nil {
		loggerService.LogError(err, "Application stopped with an error")
		os.Exit(1)
	}
}
