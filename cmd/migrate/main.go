package main

import (
	"flag"
	"log"

	"github.com/consensuslabs/vodstream/internal/config"
	"github.com/consensuslabs/vodstream/internal/database"
	"github.com/consensuslabs/vodstream/internal/logger"
	"github.com/consensuslabs/vodstream/migrations"
	"github.com/joho/godotenv"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction (up/down)")
	configDir := flag.String("config", ".", "Directory containing config.yaml")
	force := flag.Bool("force", false, "Allow migrations in production")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: No .env file found or error loading it: %v", err)
	}

	loggerInstance, err := logger.NewLogger(&logger.Config{
		Level:   logger.InfoLevel,
		Format:  "json",
		Output:  "stdout",
		Service: "vodstream-migrate",
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	cfg, err := config.NewConfigService(loggerInstance).Load(*configDir)
	if err != nil {
		loggerInstance.LogFatal(err, "Failed to load configuration")
	}

	dbService := database.NewDatabaseService(&cfg.Database, loggerInstance)
	db, err := dbService.Connect()
	if err != nil {
		loggerInstance.LogFatal(err, "Failed to connect to database")
	}
	defer dbService.Close()

	opts := migrations.Options{
		Direction:   *direction,
		Environment: cfg.Environment,
		Force:       *force,
	}
	if err := migrations.RunMigrations(db, loggerInstance, opts); err != nil {
		loggerInstance.LogFatal(err, "Failed to run migrations")
	}

	loggerInstance.LogInfo("Migrations completed", map[string]interface{}{
		"direction": *direction,
	})
}
