// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"

	"github.com/ik5/tonearm/audio"
)

// wavReader is an interface for gowav.Decoder to allow testing
type wavReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

type source struct {
	dec         wavReader
	sampleRate  int
	channels    int
	bitDepth    int
	totalFrames int64
	intBuf      *goaudio.IntBuffer
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int {
	if s.intBuf != nil {
		return cap(s.intBuf.Data)
	}
	return 4096
}

// TotalFrames reports the exact frame count from the data chunk size.
func (s *source) TotalFrames() int64 { return s.totalFrames }

func (s *source) BitsPerSample() int { return s.bitDepth }

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	if s.intBuf == nil || cap(s.intBuf.Data) < len(dst) {
		s.intBuf = &goaudio.IntBuffer{
			Data: make([]int, len(dst)),
			Format: &goaudio.Format{
				NumChannels: s.channels,
				SampleRate:  s.sampleRate,
			},
		}
	} else {
		s.intBuf.Data = s.intBuf.Data[:len(dst)]
	}

	n, err := s.dec.PCMBuffer(s.intBuf)
	if n == 0 {
		if err != nil {
			return 0, err
		}
		return 0, io.EOF
	}

	// go-audio returns raw integer samples; normalize by bit depth. 8-bit
	// WAV is unsigned (0..255), everything wider is signed.
	switch s.bitDepth {
	case 8:
		for i := range n {
			dst[i] = (float32(s.intBuf.Data[i]) - 128.0) / 128.0
		}
	case 16:
		for i := range n {
			dst[i] = float32(s.intBuf.Data[i]) / 32768.0
		}
	case 24:
		for i := range n {
			dst[i] = float32(s.intBuf.Data[i]) / 8388608.0
		}
	case 32:
		for i := range n {
			dst[i] = float32(s.intBuf.Data[i]) / 2147483648.0
		}
	}

	if n < len(dst) && err == nil {
		return n, io.EOF
	}

	return n, err
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	// go-audio requires io.ReadSeeker
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading wav data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := gowav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotWavFile
	}

	dec.ReadInfo()

	channels := int(dec.NumChans)
	sampleRate := int(dec.SampleRate)
	bitDepth := int(dec.BitDepth)

	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, ErrUnsupportedBitDepth
	}

	// Position at the data chunk so its size is known; the exact frame
	// count comes straight from it.
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("locating wav data chunk: %w", err)
	}

	var totalFrames int64
	bytesPerFrame := channels * bitDepth / 8
	if bytesPerFrame > 0 {
		totalFrames = int64(dec.PCMSize / bytesPerFrame)
	}

	return &source{
		dec:         dec,
		sampleRate:  sampleRate,
		channels:    channels,
		bitDepth:    bitDepth,
		totalFrames: totalFrames,
	}, nil
}
