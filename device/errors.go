package device

import "errors"

var (
	// ErrAudioDevice means no usable playback device or configuration exists.
	ErrAudioDevice = errors.New("audio device unavailable")
)
