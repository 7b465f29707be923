package database

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// MigrationConfig holds configuration for database migrations
type MigrationConfig struct {
	Environment string
	ForceRun    bool
	db          *gorm.DB
}

// NewMigrationConfig creates a new migration configuration
func NewMigrationConfig(db *gorm.DB, environment string, force bool) *MigrationConfig {
	if environment == "" {
		environment = "development"
	}
	return &MigrationConfig{
		Environment: environment,
		ForceRun:    force,
		db:          db,
	}
}

// InitializeMigrationTable creates the migrations tracking table
func (c *MigrationConfig) InitializeMigrationTable() error {
	if err := c.db.AutoMigrate(&MigrationRecord{}); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %v", err)
	}
	return nil
}

// HasMigrationBeenApplied checks if a specific migration has already been run
func (c *MigrationConfig) HasMigrationBeenApplied(name string) (bool, error) {
	var count int64
	err := c.db.Model(&MigrationRecord{}).Where("name = ?", name).Count(&count).Error
	return count > 0, err
}

// RecordMigration records a successful migration
func (c *MigrationConfig) RecordMigration(name string, content string) error {
	hash := sha256.Sum256([]byte(content))

	var batchNo int
	err := c.db.Model(&MigrationRecord{}).Select("COALESCE(MAX(batch_no), 0) + 1").Row().Scan(&batchNo)
	if err != nil {
		return fmt.Errorf("failed to determine batch number: %v", err)
	}

	record := MigrationRecord{
		Name:      name,
		Hash:      hex.EncodeToString(hash[:]),
		AppliedAt: time.Now(),
		BatchNo:   batchNo,
	}
	return c.db.Create(&record).Error
}

// RemoveMigration deletes the record of a rolled back migration
func (c *MigrationConfig) RemoveMigration(name string) error {
	return c.db.Where("name = ?", name).Delete(&MigrationRecord{}).Error
}

// GetAppliedMigrations returns a list of all applied migrations
func (c *MigrationConfig) GetAppliedMigrations() ([]MigrationRecord, error) {
	var migrations []MigrationRecord
	err := c.db.Order("applied_at").Order("id").Find(&migrations).Error
	return migrations, err
}

// ValidateEnvironment refuses to touch a production schema unless forced
func (c *MigrationConfig) ValidateEnvironment() error {
	if c.Environment == "production" && !c.ForceRun {
		return fmt.Errorf("refusing to run migrations in production without force flag")
	}
	return nil
}
