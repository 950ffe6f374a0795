package flac

import (
	"fmt"
	"io"

	"github.com/ik5/tonearm/audio"
	mewflac "github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
)

// frameParser is an interface for flac.Stream to allow testing
type frameParser interface {
	ParseNext() (*frame.Frame, error)
}

type source struct {
	stream      frameParser
	sampleRate  int
	channels    int
	bitDepth    int
	totalFrames int64
	scale       float32   // 1 << (bitDepth - 1)
	pending     []float32 // decoded samples not yet handed out
	skip        int       // samples to discard after a coarse seek
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }

func (s *source) Close() error {
	if c, ok := s.stream.(io.Closer); ok {
		return c.Close()
	}

	return nil
}

func (s *source) BufSize() int { return cap(s.pending) }

// TotalFrames reports the frame count from the STREAMINFO block. Zero
// means the encoder did not record one.
func (s *source) TotalFrames() int64 { return s.totalFrames }

func (s *source) BitsPerSample() int { return s.bitDepth }

// SeekFrame repositions the stream to an absolute frame. The container
// seeks to frame boundaries, so the remainder up to the requested
// position is decoded and discarded on the next read.
func (s *source) SeekFrame(f int64) error {
	sk, ok := s.stream.(interface{ Seek(uint64) (uint64, error) })
	if !ok {
		return ErrNotSeekable
	}

	if f < 0 {
		f = 0
	}

	pos, err := sk.Seek(uint64(f))
	if err != nil {
		return fmt.Errorf("seeking flac stream: %w", err)
	}

	s.pending = s.pending[:0]
	s.skip = 0
	if int64(pos) < f {
		s.skip = int(f-int64(pos)) * s.channels
	}

	return nil
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	total := 0
	for total < len(dst) {
		if len(s.pending) == 0 {
			err := s.fill()
			if err != nil {
				if total > 0 && err == io.EOF {
					return total, io.EOF
				}
				return total, err
			}
		}

		n := copy(dst[total:], s.pending)
		s.pending = s.pending[n:]
		total += n
	}

	return total, nil
}

// fill decodes the next container frame into pending, interleaving the
// per-channel subframes and applying the post-seek discard.
func (s *source) fill() error {
	for {
		fr, err := s.stream.ParseNext()
		if err != nil {
			if err == io.EOF {
				return io.EOF
			}
			return fmt.Errorf("parsing flac frame: %w", err)
		}

		if len(fr.Subframes) == 0 {
			continue
		}

		frames := len(fr.Subframes[0].Samples)
		need := frames * s.channels
		if cap(s.pending) < need {
			s.pending = make([]float32, need)
		}
		s.pending = s.pending[:need]

		for i := range frames {
			for ch := range s.channels {
				s.pending[i*s.channels+ch] = float32(fr.Subframes[ch].Samples[i]) / s.scale
			}
		}

		if s.skip > 0 {
			if s.skip >= len(s.pending) {
				s.skip -= len(s.pending)
				s.pending = s.pending[:0]
				continue
			}
			s.pending = s.pending[s.skip:]
			s.skip = 0
		}

		return nil
	}
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	var (
		stream *mewflac.Stream
		err    error
	)

	// A seekable input enables SeekFrame via the stream's seek table.
	if rs, ok := r.(io.ReadSeeker); ok {
		stream, err = mewflac.NewSeek(rs)
	} else {
		stream, err = mewflac.New(r)
	}
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	info := stream.Info
	if info == nil || info.NChannels == 0 || info.SampleRate == 0 {
		return nil, ErrUnsupportedFlacLayout
	}

	return &source{
		stream:      stream,
		sampleRate:  int(info.SampleRate),
		channels:    int(info.NChannels),
		bitDepth:    int(info.BitsPerSample),
		totalFrames: int64(info.NSamples),
		scale:       float32(int64(1) << (info.BitsPerSample - 1)),
	}, nil
}
