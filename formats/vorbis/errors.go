package vorbis

import "errors"

var (
	ErrNotSeekable = errors.New("vorbis source is not seekable")
)
