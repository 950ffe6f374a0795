// SPDX-License-Identifier: EPL-2.0

// Package wav decodes WAV (RIFF) audio files into the playback pipeline.
//
// The decoder wraps github.com/go-audio/wav and supports PCM at 8, 16, 24
// and 32 bits per sample, any channel count and sample rate. 8-bit WAV is
// unsigned; all wider depths are signed. Samples are normalized to float32
// in [-1, 1].
//
// # Usage
//
//	decoder := wav.Decoder{}
//	src, err := decoder.Decode(file)
//	if err != nil {
//	    // handle error
//	}
//
//	buf := make([]float32, 4096)
//	n, err := src.ReadSamples(buf)
//
// The returned source reports its exact frame count (the data chunk size
// divided by the frame size), so probing a WAV file always resolves the
// duration without decoding.
//
// # Writing WAV Files
//
// The package can also write mono 16-bit PCM WAV files, which the tests and
// examples use to synthesize fixtures:
//
//	samples := []int16{100, -100, 200, -200}
//	wav.WriteWAV16(file, 8000, samples)
package wav
