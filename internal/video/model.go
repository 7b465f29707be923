package video

import "time"

// Video is one catalogued, streamable upload
type Video struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	FilePath    string    `gorm:"column:file_path;type:varchar(255);not null;uniqueIndex:idx_videos_file_path" json:"file_path"`
	UploadedAt  time.Time `gorm:"column:uploaded_at;not null;autoCreateTime" json:"uploaded_at"`
}

// TableName specifies the table name for Video
func (Video) TableName() string {
	return "videos"
}
