package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/consensuslabs/vodstream/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const slowQueryThreshold = 500 * time.Millisecond

// DatabaseService implements the Service interface
type DatabaseService struct {
	config *config.DatabaseConfig
	logger Logger
	db     *gorm.DB
}

// NewDatabaseService creates a new database service instance
func NewDatabaseService(config *config.DatabaseConfig, logger Logger) *DatabaseService {
	return &DatabaseService{
		config: config,
		logger: logger,
	}
}

// Connect opens the catalog database for the configured driver and applies pool limits
func (s *DatabaseService) Connect() (*gorm.DB, error) {
	dialector, err := s.dialector()
	if err != nil {
		return nil, err
	}

	gormConfig := &gorm.Config{
		PrepareStmt: true,
		Logger:      NewGormLogger(s.logger, slowQueryThreshold),
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %v", err)
	}

	if s.config.Driver == "sqlite" {
		// sqlite serialises writers; a single connection avoids SQLITE_BUSY under concurrent inserts.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(s.config.Pool.MaxOpen)
		sqlDB.SetMaxIdleConns(s.config.Pool.MaxIdle)
		sqlDB.SetConnMaxLifetime(s.config.Pool.ConnMaxLifetime)
	}

	s.db = db
	if err := s.Ping(); err != nil {
		return nil, err
	}

	s.logger.LogInfo("Connected to database", map[string]interface{}{
		"driver":  s.config.Driver,
		"maxOpen": s.config.Pool.MaxOpen,
	})
	return db, nil
}

func (s *DatabaseService) dialector() (gorm.Dialector, error) {
	switch s.config.Driver {
	case "postgres":
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=%s",
			s.config.Host,
			s.config.User,
			s.config.Password,
			s.config.Dbname,
			s.config.Port,
			s.config.Sslmode,
			s.config.Timezone,
		)
		s.logger.LogInfo(fmt.Sprintf("Using database connection string (without credentials): host=%s dbname=%s port=%d",
			s.config.Host, s.config.Dbname, s.config.Port), nil)
		return postgres.Open(dsn), nil
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(s.config.Path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %v", err)
		}
		s.logger.LogInfo("Using sqlite database", map[string]interface{}{"path": s.config.Path})
		return sqlite.Open(s.config.Path + "?_busy_timeout=5000"), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", s.config.Driver)
	}
}

// Ping checks the connection with a short deadline
func (s *DatabaseService) Ping() error {
	if s.db == nil {
		return fmt.Errorf("database not connected")
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %v", err)
	}
	return nil
}

// Close closes the database connection
func (s *DatabaseService) Close() error {
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err != nil {
			return fmt.Errorf("failed to get database instance: %v", err)
		}
		if err := sqlDB.Close(); err != nil {
			return fmt.Errorf("failed to close database connection: %v", err)
		}
	}
	return nil
}
