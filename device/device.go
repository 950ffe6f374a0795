// SPDX-License-Identifier: EPL-2.0

package device

// SampleFormat is the native sample encoding of an output configuration.
type SampleFormat int

const (
	FormatUnknown SampleFormat = iota
	FormatU8
	FormatS16
	FormatS24
	FormatS32
	FormatF32
)

func (f SampleFormat) String() string {
	switch f {
	case FormatU8:
		return "u8"
	case FormatS16:
		return "s16"
	case FormatS24:
		return "s24"
	case FormatS32:
		return "s32"
	case FormatF32:
		return "f32"
	default:
		return "unknown"
	}
}

// quality ranks floating point highest, then descending integer widths.
func (f SampleFormat) quality() int {
	switch f {
	case FormatF32:
		return 5
	case FormatS32:
		return 4
	case FormatS24:
		return 3
	case FormatS16:
		return 2
	case FormatU8:
		return 1
	default:
		return 0
	}
}

// BytesPerSample of the native encoding.
func (f SampleFormat) BytesPerSample() int {
	switch f {
	case FormatU8:
		return 1
	case FormatS16:
		return 2
	case FormatS24:
		return 3
	case FormatS32, FormatF32:
		return 4
	default:
		return 0
	}
}

// OutputConfig is one configuration a device enumerates: a channel count,
// a supported sample-rate range and the native sample format.
type OutputConfig struct {
	Channels int
	MinRate  int
	MaxRate  int
	Format   SampleFormat
}

// StreamConfig is a concrete negotiated configuration used to open a stream.
type StreamConfig struct {
	Channels   int
	SampleRate int
	Format     SampleFormat
}

// DataCallback fills out with interleaved float32 samples for one hardware
// period. frames is len(out) / StreamConfig.Channels. It runs on the
// real-time audio thread and must not block.
type DataCallback func(out []float32, frames int)

// Host enumerates playback devices. Close releases the backend context.
type Host interface {
	Devices() ([]Device, error)
	Close() error
}

// Device is one playback endpoint.
type Device interface {
	Name() string
	Configs() ([]OutputConfig, error)
	// Open creates a stream with the negotiated configuration. The stream
	// is created stopped; call Start to begin callback delivery.
	Open(cfg StreamConfig, cb DataCallback) (Stream, error)
}

// Stream is an open hardware stream.
type Stream interface {
	Start() error
	Stop() error
	Close() error
}
