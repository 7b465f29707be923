package errors

// Public error messages returned by the upload and catalog endpoints.
const (
	ErrMsgNoFile        = "No video file uploaded"
	ErrMsgTitleRequired = "Title is required"
	ErrMsgConversion    = "Error converting video"
	ErrMsgUpload        = "Error uploading video"
	ErrMsgListVideos    = "Error fetching videos"
)

// Validation messages for the optional upload limits.
const (
	ErrMsgFileSize    = "File size exceeds maximum allowed size"
	ErrMsgFileType    = "File type not allowed"
	ErrMsgTitleLength = "Title exceeds maximum allowed length"
	ErrMsgDescLength  = "Description exceeds maximum allowed length"
)

// StderrExcerptLimit caps the ffmpeg diagnostic text carried by a TranscodeError.
const StderrExcerptLimit = 1024
