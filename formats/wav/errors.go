package wav

import "errors"

var (
	ErrNotWavFile = errors.New("not a WAV file")
	ErrUnsupportedBitDepth = errors.New("unsupported WAV bit depth")
)
