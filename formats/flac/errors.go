package flac

import "errors"

var (
	ErrNotSeekable           = errors.New("flac source is not seekable")
	ErrUnsupportedFlacLayout = errors.New("unsupported FLAC layout")
)
