// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis audio files into the playback pipeline.
//
// The decoder wraps github.com/jfreymuth/oggvorbis, which already produces
// interleaved float32 samples in [-1, 1] at the stream's native channel
// count, so no normalization pass is needed.
//
// For seekable inputs the source reports its total frame count (used by
// the probe for duration) and supports frame repositioning (used by
// playback for seek). For non-seekable inputs length is unknown and seek
// requests fail with ErrNotSeekable.
//
//	decoder := vorbis.Decoder{}
//	src, err := decoder.Decode(file)
//	if err != nil {
//	    // handle error
//	}
//
//	buf := make([]float32, 4096)
//	n, err := src.ReadSamples(buf)
package vorbis
