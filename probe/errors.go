package probe

import "errors"

var (
	// ErrFileNotFound means the path does not exist or cannot be opened.
	ErrFileNotFound = errors.New("audio file not found")
	// ErrUnsupportedFormat means no registered decoder recognizes the file.
	ErrUnsupportedFormat = errors.New("unsupported audio format")
)
