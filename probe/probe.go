// SPDX-License-Identifier: EPL-2.0

package probe

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/ik5/tonearm/audio"
	"github.com/ik5/tonearm/formats/aiff"
	"github.com/ik5/tonearm/formats/flac"
	"github.com/ik5/tonearm/formats/mp3"
	"github.com/ik5/tonearm/formats/vorbis"
	"github.com/ik5/tonearm/formats/wav"
)

// Registry format keys.
const (
	FormatWav    = "wav"
	FormatMP3    = "mp3"
	FormatVorbis = "ogg vorbis"
	FormatAiff   = "aiff"
	FormatFlac   = "flac"
)

const (
	// maxEstimationReads bounds the exhaustive duration parse so a
	// pathological file cannot stall probing.
	maxEstimationReads = 100000
	// maxPlausibleDuration discards extrapolated durations beyond 24 hours.
	maxPlausibleDuration = 86400.0

	sniffLen = 12
)

// DefaultRegistry returns a registry with every built-in decoder wired.
func DefaultRegistry() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register(FormatWav, wav.Decoder{})
	reg.Register(FormatMP3, mp3.Decoder{})
	reg.Register(FormatVorbis, vorbis.Decoder{})
	reg.Register(FormatAiff, aiff.Decoder{})
	reg.Register(FormatFlac, flac.Decoder{})

	return reg
}

// ProbedTrack is the result of probing a file: the sniffed format key and
// the track parameters. The decode session used for probing is closed
// before returning; OpenSource starts a fresh one.
type ProbedTrack struct {
	Path   string
	Format string
	Info   audio.TrackInfo
}

// Prober sniffs files and derives their track parameters.
type Prober struct {
	reg *audio.Registry

	// RefineDuration enables the bounded exhaustive parse for files whose
	// headers omit duration (see Open).
	RefineDuration bool
}

// New returns a Prober backed by the given decoder registry.
func New(reg *audio.Registry) *Prober {
	return &Prober{reg: reg}
}

// Open probes the file at path without starting playback.
//
// Duration resolution tries, in order: the exact frame count reported by
// the container, the decoder-reported stream length, and (only when
// RefineDuration is set) a bounded exhaustive decode that either measures
// the duration exactly or extrapolates it from the file-size ratio.
// Implausible extrapolations are discarded and the duration stays zero.
func (p *Prober) Open(path string) (*ProbedTrack, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) || os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	format, err := p.sniff(f, path)
	if err != nil {
		return nil, err
	}

	dec, ok := p.reg.Get(format)
	if !ok {
		return nil, fmt.Errorf("%w: no decoder for %q", ErrUnsupportedFormat, format)
	}

	src, err := dec.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, err)
	}
	defer src.Close()

	info := audio.TrackInfo{
		Channels:   src.Channels(),
		SampleRate: src.SampleRate(),
	}
	if bd, ok := src.(audio.BitDepther); ok {
		info.BitsPerSample = bd.BitsPerSample()
	}

	if fc, ok := src.(audio.FrameCounter); ok && info.SampleRate > 0 {
		if frames := fc.TotalFrames(); frames > 0 {
			info.Duration = float64(frames) / float64(info.SampleRate)
		}
	}

	if info.Duration == 0 && p.RefineDuration {
		p.refineDuration(path, format, &info)
	}

	log.Debug().
		Str("path", path).
		Str("format", format).
		Int("channels", info.Channels).
		Int("sample_rate", info.SampleRate).
		Float64("duration", info.Duration).
		Msg("probed track")

	return &ProbedTrack{Path: path, Format: format, Info: info}, nil
}

// sniff identifies the container by magic bytes, falling back to the file
// extension for headerless layouts.
func (p *Prober) sniff(f *os.File, path string) (string, error) {
	header := make([]byte, sniffLen)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.ErrUnexpectedEOF {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	header = header[:n]

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewinding %s: %w", path, err)
	}

	if format, ok := sniffMagic(header); ok {
		return format, nil
	}

	if format, ok := formatByExtension(path); ok {
		return format, nil
	}

	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

func sniffMagic(header []byte) (string, bool) {
	switch {
	case len(header) >= 12 && string(header[:4]) == "RIFF" && string(header[8:12]) == "WAVE":
		return FormatWav, true
	case len(header) >= 12 && string(header[:4]) == "FORM" &&
		(string(header[8:12]) == "AIFF" || string(header[8:12]) == "AIFC"):
		return FormatAiff, true
	case len(header) >= 4 && string(header[:4]) == "OggS":
		return FormatVorbis, true
	case len(header) >= 4 && string(header[:4]) == "fLaC":
		return FormatFlac, true
	case len(header) >= 3 && string(header[:3]) == "ID3":
		return FormatMP3, true
	case len(header) >= 2 && header[0] == 0xFF && header[1]&0xE0 == 0xE0:
		// Raw MPEG frame sync, no ID3 tag.
		return FormatMP3, true
	}

	return "", false
}

func formatByExtension(path string) (string, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		return FormatWav, true
	case ".mp3":
		return FormatMP3, true
	case ".ogg", ".oga":
		return FormatVorbis, true
	case ".aiff", ".aif":
		return FormatAiff, true
	case ".flac":
		return FormatFlac, true
	}

	return "", false
}

// refineDuration decodes the file up to maxEstimationReads batches. If the
// stream ends inside the bound the measured duration is exact; otherwise
// the total is extrapolated from the consumed-bytes to file-size ratio.
// Failures leave the duration unknown rather than failing the probe.
func (p *Prober) refineDuration(path, format string, info *audio.TrackInfo) {
	if info.SampleRate <= 0 || info.Channels <= 0 {
		return
	}

	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil || st.Size() <= 0 {
		return
	}

	dec, ok := p.reg.Get(format)
	if !ok {
		return
	}

	// The counting reader hides the file's Seek method, so decoders see a
	// plain stream and consumed bytes track real decode progress.
	cr := &countingReader{r: f}
	src, err := dec.Decode(cr)
	if err != nil {
		return
	}
	defer src.Close()

	var (
		frames int64
		exact  bool
		buf    = make([]float32, 4096)
	)
	for range maxEstimationReads {
		n, err := src.ReadSamples(buf)
		frames += int64(n / info.Channels)

		if err == io.EOF {
			exact = true
			break
		}
		if err != nil {
			return
		}
	}

	decoded := float64(frames) / float64(info.SampleRate)
	if exact {
		if decoded > 0 {
			info.Duration = decoded
			log.Debug().Str("path", path).Float64("duration", decoded).
				Msg("measured duration by full decode")
		}
		return
	}

	if cr.n <= 0 || decoded <= 0 {
		return
	}

	estimated := decoded * float64(st.Size()) / float64(cr.n)
	if estimated > 0 && estimated <= maxPlausibleDuration {
		info.Duration = estimated
		log.Debug().Str("path", path).Float64("duration", estimated).
			Msg("extrapolated duration from partial decode")
	}
}

// OpenSource starts a fresh decode session for the probed track. Closing
// the returned source also closes the underlying file.
func (t *ProbedTrack) OpenSource(reg *audio.Registry) (audio.Source, error) {
	dec, ok := reg.Get(t.Format)
	if !ok {
		return nil, fmt.Errorf("%w: no decoder for %q", ErrUnsupportedFormat, t.Format)
	}

	f, err := os.Open(t.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, t.Path)
		}
		return nil, fmt.Errorf("opening %s: %w", t.Path, err)
	}

	src, err := dec.Decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, err)
	}

	return &fileSource{Source: src, file: f}, nil
}

// countingReader counts bytes consumed by the decoder.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// fileSource ties the lifetime of the file handle to the source.
type fileSource struct {
	audio.Source
	file *os.File
}

func (s *fileSource) Unwrap() audio.Source { return s.Source }

func (s *fileSource) Close() error {
	err := s.Source.Close()
	if cerr := s.file.Close(); err == nil {
		err = cerr
	}
	return err
}
