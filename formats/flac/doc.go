// SPDX-License-Identifier: EPL-2.0

// Package flac decodes FLAC audio files into the playback pipeline.
//
// The decoder wraps github.com/mewkiz/flac. Container frames carry one
// subframe per channel, so the source interleaves them and normalizes
// the integer samples into float32 values in [-1, 1] using the stream's
// declared bit depth.
//
// The STREAMINFO block carries the total frame count, which the probe
// uses to compute track duration. Seekable inputs also support frame
// repositioning; the container only seeks to frame boundaries, so the
// source discards the remainder to land on the exact frame.
//
//	decoder := flac.Decoder{}
//	src, err := decoder.Decode(file)
//	if err != nil {
//	    // handle error
//	}
//
//	buf := make([]float32, 4096)
//	n, err := src.ReadSamples(buf)
package flac
