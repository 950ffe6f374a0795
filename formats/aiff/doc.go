// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF audio files into the playback pipeline.
//
// The decoder wraps github.com/go-audio/aiff and converts its integer PCM
// buffers into interleaved float32 samples in [-1, 1]. Only 16-bit PCM
// files are accepted; other bit depths return ErrOnlyPCM16bitSupported.
//
// The source reports the frame count from the COMM chunk, which the probe
// uses to compute track duration without decoding the whole file.
//
//	decoder := aiff.Decoder{}
//	src, err := decoder.Decode(file)
//	if err != nil {
//	    // handle error
//	}
//
//	buf := make([]float32, 4096)
//	n, err := src.ReadSamples(buf)
package aiff
