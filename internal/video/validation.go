package video

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	apperrors "github.com/consensuslabs/vodstream/internal/errors"
)

// validateUpload checks an upload against the configured limits
func validateUpload(config *Config, upload Upload) error {
	if upload.SourcePath == "" {
		return apperrors.NewValidationError("file", apperrors.ErrMsgNoFile)
	}

	title := strings.TrimSpace(upload.Title)
	if title == "" {
		return apperrors.NewValidationError("title", apperrors.ErrMsgTitleRequired)
	}

	if config.MaxSize > 0 && upload.Size > config.MaxSize {
		return apperrors.NewValidationError("file",
			fmt.Sprintf("%s of %d MB", apperrors.ErrMsgFileSize, config.MaxSize/1024/1024))
	}

	if len(config.AllowedFormats) > 0 {
		ext := strings.ToLower(filepath.Ext(upload.OriginalName))
		validExt := false
		for _, format := range config.AllowedFormats {
			if ext == strings.ToLower(format) {
				validExt = true
				break
			}
		}
		if !validExt {
			return apperrors.NewValidationError("file",
				fmt.Sprintf("%s: %q. Allowed types: %v", apperrors.ErrMsgFileType, ext, config.AllowedFormats))
		}
	}

	if config.MaxTitleLength > 0 && utf8.RuneCountInString(title) > config.MaxTitleLength {
		return apperrors.NewValidationError("title",
			fmt.Sprintf("%s of %d characters", apperrors.ErrMsgTitleLength, config.MaxTitleLength))
	}

	if config.MaxDescLength > 0 && utf8.RuneCountInString(upload.Description) > config.MaxDescLength {
		return apperrors.NewValidationError("description",
			fmt.Sprintf("%s of %d characters", apperrors.ErrMsgDescLength, config.MaxDescLength))
	}

	return nil
}
