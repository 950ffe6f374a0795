// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MP3 audio files into the playback pipeline.
//
// The decoder wraps github.com/hajimehoshi/go-mp3, which always outputs
// 16-bit stereo PCM regardless of the encoded channel layout. Samples are
// normalized to float32 in [-1, 1].
//
// When the input reader is seekable the source additionally reports its
// total frame count (used by the probe for duration) and supports frame
// repositioning (used by playback for seek). For non-seekable inputs both
// capabilities degrade gracefully: length is unknown and seek requests
// fail with ErrNotSeekable.
//
//	decoder := mp3.Decoder{}
//	src, err := decoder.Decode(file)
//	if err != nil {
//	    // handle error
//	}
//
//	buf := make([]float32, 4096)
//	n, err := src.ReadSamples(buf)
package mp3
