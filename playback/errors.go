package playback

import "errors"

var (
	// ErrDecoding wraps a mid-session decode failure (EOF is not an error).
	ErrDecoding = errors.New("decoding failed")
	// ErrPlayback covers session-level failures outside probing, device
	// negotiation and decoding.
	ErrPlayback = errors.New("playback failed")
)
