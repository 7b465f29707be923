package video

import (
	"context"
	"time"

	apperrors "github.com/consensuslabs/vodstream/internal/errors"
	"gorm.io/gorm"
)

// GormRepository stores the catalog through GORM
type GormRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormRepository creates a new catalog repository
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Insert implements Repository
func (r *GormRepository) Insert(ctx context.Context, title, description, streamPath string) (*Video, error) {
	video := &Video{
		Title:       title,
		Description: description,
		FilePath:    streamPath,
		UploadedAt:  r.now(),
	}
	if err := r.db.WithContext(ctx).Create(video).Error; err != nil {
		return nil, apperrors.NewPersistenceError("insert", err)
	}
	return video, nil
}

// List implements Repository. Equal upload times fall back to id order.
func (r *GormRepository) List(ctx context.Context) ([]Video, error) {
	videos := make([]Video, 0)
	err := r.db.WithContext(ctx).
		Order("uploaded_at DESC").
		Order("id DESC").
		Find(&videos).Error
	if err != nil {
		return nil, apperrors.NewPersistenceError("list", err)
	}
	return videos, nil
}

// StreamPaths implements Repository
func (r *GormRepository) StreamPaths(ctx context.Context) ([]string, error) {
	var paths []string
	if err := r.db.WithContext(ctx).Model(&Video{}).Pluck("file_path", &paths).Error; err != nil {
		return nil, apperrors.NewPersistenceError("list stream paths", err)
	}
	return paths, nil
}
