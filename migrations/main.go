package migrations

import (
	"fmt"

	"github.com/consensuslabs/vodstream/internal/database"
	"github.com/consensuslabs/vodstream/internal/logger"
	"gorm.io/gorm"
)

type Migrator interface {
	Up() error
	Down() error
}

// Options controls a migration run
type Options struct {
	Direction   string
	Environment string
	Force       bool
}

type migration struct {
	Name     string
	Migrator Migrator
}

func registered(db *gorm.DB) []migration {
	return []migration{
		{"001_create_videos", NewCreateVideosMigration(db)},
		{"002_index_videos_uploaded_at", NewUploadedAtIndexMigration(db)},
	}
}

// RunMigrations applies (up) or rolls back (down) the catalog schema, tracking
// each step in schema_migrations.
func RunMigrations(db *gorm.DB, log logger.Logger, opts Options) error {
	migrationConfig := database.NewMigrationConfig(db, opts.Environment, opts.Force)

	log.LogInfo("Migration Configuration", map[string]interface{}{
		"environment":     migrationConfig.Environment,
		"direction":       opts.Direction,
		"force_migration": migrationConfig.ForceRun,
	})

	if err := migrationConfig.ValidateEnvironment(); err != nil {
		return err
	}
	if err := migrationConfig.InitializeMigrationTable(); err != nil {
		return fmt.Errorf("failed to initialize migration table: %v", err)
	}

	migrations := registered(db)

	switch opts.Direction {
	case "up":
		for i, m := range migrations {
			applied, err := migrationConfig.HasMigrationBeenApplied(m.Name)
			if err != nil {
				return fmt.Errorf("failed to check migration status: %v", err)
			}
			if applied {
				log.LogDebug("Migration already applied", map[string]interface{}{"migration": m.Name})
				continue
			}

			log.LogInfo("Running migration up", map[string]interface{}{
				"index": i + 1,
				"name":  m.Name,
			})
			if err := m.Migrator.Up(); err != nil {
				return fmt.Errorf("failed to run migration %s up: %v", m.Name, err)
			}
			if err := migrationConfig.RecordMigration(m.Name, m.Name); err != nil {
				return fmt.Errorf("failed to record migration %s: %v", m.Name, err)
			}
		}
	case "down":
		for i := len(migrations) - 1; i >= 0; i-- {
			m := migrations[i]
			applied, err := migrationConfig.HasMigrationBeenApplied(m.Name)
			if err != nil {
				return fmt.Errorf("failed to check migration status: %v", err)
			}
			if !applied {
				continue
			}

			log.LogInfo("Running migration down", map[string]interface{}{
				"index": i + 1,
				"name":  m.Name,
			})
			if err := m.Migrator.Down(); err != nil {
				return fmt.Errorf("failed to run migration %s down: %v", m.Name, err)
			}
			if err := migrationConfig.RemoveMigration(m.Name); err != nil {
				return fmt.Errorf("failed to remove migration record %s: %v", m.Name, err)
			}
		}
	default:
		return fmt.Errorf("invalid migration direction: %s", opts.Direction)
	}

	return nil
}
