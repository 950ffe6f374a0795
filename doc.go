// SPDX-License-Identifier: EPL-2.0

// Package tonearm is a real-time audio playback pipeline: file probing
// and decoding, output device negotiation, channel up/down mixing, and a
// ring-buffered decode-to-hardware bridge with pause, resume, stop and
// seek control.
//
// The root package is a thin convenience layer. The pieces live in:
//
//   - audio: Source interface, ring buffer, channel mixer, resampler
//   - formats/...: wav, mp3, ogg vorbis, aiff and flac decoders
//   - probe: format sniffing and track metadata
//   - device: output negotiation and the miniaudio backend
//   - playback: session orchestration
//   - playlist, lyrics, config: caller-side collaborators
//
// Typical use:
//
//	player, err := tonearm.NewPlayer()
//	if err != nil {
//	    // handle error
//	}
//	defer player.Close()
//
//	session, err := player.Play("song.flac", playback.Options{
//	    DeviceIndex: device.DefaultDevice,
//	})
//	if err != nil {
//	    // handle error
//	}
//
//	if err := <-session.Done(); err != nil {
//	    // decode failure; end of stream delivers nil
//	}
package tonearm
