package migrations

import "gorm.io/gorm"

// UploadedAtIndexMigration backs the newest-first catalog listing.
type UploadedAtIndexMigration struct {
	db *gorm.DB
}

func NewUploadedAtIndexMigration(db *gorm.DB) *UploadedAtIndexMigration {
	return &UploadedAtIndexMigration{db: db}
}

func (m *UploadedAtIndexMigration) Up() error {
	return m.db.Exec("CREATE INDEX IF NOT EXISTS idx_videos_uploaded_at ON videos (uploaded_at DESC, id DESC)").Error
}

func (m *UploadedAtIndexMigration) Down() error {
	return m.db.Exec("DROP INDEX IF EXISTS idx_videos_uploaded_at").Error
}
