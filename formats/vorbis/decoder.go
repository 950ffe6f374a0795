package vorbis

import (
	"fmt"
	"io"

	"github.com/ik5/tonearm/audio"
	"github.com/jfreymuth/oggvorbis"
)

// oggReader is an interface for oggvorbis.Reader to allow testing
type oggReader interface {
	SampleRate() int
	Channels() int
	Read([]float32) (int, error)
}

type source struct {
	dec        oggReader
	sampleRate int
	channels   int
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return 4096 }

// TotalFrames reports the stream length in frames. oggvorbis only knows it
// for seekable inputs; zero means unknown.
func (s *source) TotalFrames() int64 {
	l, ok := s.dec.(interface{ Length() int64 })
	if !ok {
		return 0
	}

	return l.Length()
}

// SeekFrame repositions the decoded stream to an absolute frame.
func (s *source) SeekFrame(frame int64) error {
	sk, ok := s.dec.(interface{ SetPosition(int64) error })
	if !ok {
		return ErrNotSeekable
	}

	if err := sk.SetPosition(frame); err != nil {
		return fmt.Errorf("seeking vorbis stream: %w", err)
	}

	return nil
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	// oggvorbis fills dst with whole frames of interleaved samples and
	// returns the number of float32 values written, not frames.
	usable := len(dst) - len(dst)%s.channels
	if usable == 0 {
		return 0, nil
	}

	n, err := s.dec.Read(dst[:usable])
	if n == 0 {
		if err != nil {
			return 0, err
		}
		return 0, nil
	}

	return n, err
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		channels:   dec.Channels(),
	}, nil
}
