// SPDX-License-Identifier: EPL-2.0

// Package audio provides the low-level primitives of the playback pipeline.
//
// This package contains the core building blocks:
//   - Source interface for decoded audio input
//   - Registry for decoder registration by format key
//   - RingBuffer bridging the decode goroutine and the hardware callback
//   - Mixer for channel up-mix/down-mix into the output layout
//   - Resampler for sample rate conversion
//
// # Source Interface
//
// The Source interface is the foundation of the pipeline:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// All format decoders and processors implement this interface, allowing
// them to be chained together. Two optional capability interfaces refine
// it: FrameCounter for sources that know their exact length, and Seeker
// for sources that can reposition to a frame.
//
// # Ring Buffer
//
// The RingBuffer is the only object in the pipeline mutated from two
// goroutines. The decode side pushes interleaved samples and throttles
// itself above HighWaterMark; the hardware callback pops and substitutes
// silence on underrun rather than ever blocking:
//
//	rb, _ := audio.NewRingBuffer(audio.SessionCapacity(44100, 2))
//	rb.Push(samples)
//	v, ok := rb.PopFront() // ok == false means underrun
//
// # Channel Mixing
//
// The Mixer converts between arbitrary source and output channel counts
// once per hardware callback:
//
//	mixer := audio.NewMixer()
//	mixer.Fill(out, rb, outputChannels, sourceChannels)
//
// Mono sources are replicated, stereo into surround layouts uses a fixed
// mapping table, and down-mixes fold correlated channels with reduced
// weights.
//
// # Resampling
//
// The Resampler changes the sample rate of a Source using cubic
// interpolation. Playback wraps the decoded source in a Resampler whenever
// the negotiated device rate differs from the file's rate:
//
//	resampler := audio.NewResampler(source, 48000)
//
// # Sample Format
//
// Audio samples are represented as float32 in the range [-1.0, 1.0]:
//   - 0.0 represents silence
//   - 1.0 represents maximum positive amplitude
//   - -1.0 represents maximum negative amplitude
//
// All mixing arithmetic stays in this normalized domain; conversion to the
// output device's native format is the device backend's last step.
//
// # Error Handling
//
// Sources return io.EOF when no more data is available. End of stream is
// not an error: it terminates the decode loop normally and signals track
// completion upstream.
package audio
