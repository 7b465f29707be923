package migrations

import (
	"time"

	"gorm.io/gorm"
)

// video is the schema of the catalog table as created by this migration.
type video struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	Title       string    `gorm:"type:varchar(255);not null"`
	Description string    `gorm:"type:text"`
	FilePath    string    `gorm:"column:file_path;type:varchar(255);not null;uniqueIndex:idx_videos_file_path"`
	UploadedAt  time.Time `gorm:"column:uploaded_at;not null;default:CURRENT_TIMESTAMP"`
}

func (video) TableName() string {
	return "videos"
}

type CreateVideosMigration struct {
	db *gorm.DB
}

func NewCreateVideosMigration(db *gorm.DB) *CreateVideosMigration {
	return &CreateVideosMigration{db: db}
}

func (m *CreateVideosMigration) Up() error {
	return m.db.AutoMigrate(&video{})
}

func (m *CreateVideosMigration) Down() error {
	return m.db.Migrator().DropTable(&video{})
}
