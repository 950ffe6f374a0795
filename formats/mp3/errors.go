package mp3

import "errors"

var (
	ErrNotSeekable = errors.New("mp3 source is not seekable")
)
