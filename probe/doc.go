// SPDX-License-Identifier: EPL-2.0

// Package probe identifies audio files and derives their track parameters
// without starting playback.
//
// A Prober sniffs the container by magic bytes (with a file-extension
// fallback), picks a decoder from its registry, and produces an immutable
// audio.TrackInfo. Duration is resolved from the container's frame count
// or the decoder-reported stream length; for headerless layouts an opt-in
// bounded decode either measures the duration exactly or extrapolates it
// from the file-size ratio.
//
//	p := probe.New(probe.DefaultRegistry())
//	track, err := p.Open("song.mp3")
//	if err != nil {
//	    // handle error
//	}
//	fmt.Println(track.Info.Duration)
package probe
