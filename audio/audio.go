// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"sync"
)

type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count (e.g., 1=mono, 2=stereo).
	Channels() int
	// ReadSamples fills dst with interleaved float32 samples in [-1,1].
	// Returns number of float32 values written (not frames). When n == 0 with err == io.EOF, the stream is finished.
	ReadSamples(dst []float32) (n int, err error)

	BufSize() int

	// Close releases any resources.
	Close() error
}

// FrameCounter is implemented by sources that know their exact total frame
// count up front (e.g. WAV data size, FLAC stream info).
type FrameCounter interface {
	TotalFrames() int64
}

// Seeker is implemented by sources that can reposition the stream to an
// absolute frame. Sources without this capability ignore seek requests.
type Seeker interface {
	SeekFrame(frame int64) error
}

// BitDepther is implemented by sources that know the bit depth of the
// underlying encoded stream.
type BitDepther interface {
	BitsPerSample() int
}

// Unwrapper is implemented by sources that decorate another source
// (file-closing wrappers, resampling adapters). Capability lookups walk
// the chain via AsSeeker and AsFrameCounter.
type Unwrapper interface {
	Unwrap() Source
}

// AsSeeker returns the Seeker capability of src, unwrapping decorated
// sources until one is found or the chain ends.
func AsSeeker(src Source) (Seeker, bool) {
	for src != nil {
		if sk, ok := src.(Seeker); ok {
			return sk, true
		}

		u, ok := src.(Unwrapper)
		if !ok {
			break
		}
		src = u.Unwrap()
	}

	return nil, false
}

// AsFrameCounter returns the FrameCounter capability of src, unwrapping
// decorated sources until one is found or the chain ends.
func AsFrameCounter(src Source) (FrameCounter, bool) {
	for src != nil {
		if fc, ok := src.(FrameCounter); ok {
			return fc, true
		}

		u, ok := src.(Unwrapper)
		if !ok {
			break
		}
		src = u.Unwrap()
	}

	return nil, false
}

// TrackInfo describes the primary audio stream of a probed file. Derived
// once at probe time; immutable afterwards.
type TrackInfo struct {
	// Channels count of the source stream.
	Channels int
	// SampleRate in Hz.
	SampleRate int
	// Duration in seconds. Zero means unknown; it may be refined later by
	// an exhaustive parse (see the probe package).
	Duration float64
	// BitsPerSample of the encoded stream. Zero means unknown.
	BitsPerSample int
}

// Decoder constructs a Source from an input reader.
type Decoder interface {
	Decode(r io.Reader) (Source, error)
}

// Registry for decoders by format key (e.g., "wav", "mp3", "ogg vorbis").
type Registry struct {
	codecs map[string]Decoder

	mtx *sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[string]Decoder),
		mtx:    &sync.Mutex{},
	}
}

func (r *Registry) Register(format string, d Decoder) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.codecs[format] = d
}

func (r *Registry) Get(format string) (Decoder, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	d, ok := r.codecs[format]
	return d, ok
}

// Formats returns the registered format keys, in no particular order.
func (r *Registry) Formats() []string {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	keys := make([]string, 0, len(r.codecs))
	for k := range r.codecs {
		keys = append(keys, k)
	}
	return keys
}
