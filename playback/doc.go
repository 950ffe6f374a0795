// SPDX-License-Identifier: EPL-2.0

// Package playback orchestrates one decode-and-play session at a time.
//
// A Controller probes the file, negotiates an output configuration, and
// starts a Session with two goroutines: the decode loop produces samples
// into the session ring buffer (sleeping under backpressure and honoring
// asynchronous seek requests), and the control loop consumes commands,
// advances the presented clock, and tears the session down when decoding
// ends. The hardware callback pulls from the ring buffer through the
// channel mixer and never blocks.
//
// End of stream is not an error: the decode loop terminates normally, the
// queued tail plays out, and Done delivers nil so the caller can advance
// to the next track. Any other decode error is delivered on Done after
// the stream is released and the decode goroutine joined.
package playback
