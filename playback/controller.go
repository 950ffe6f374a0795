// SPDX-License-Identifier: EPL-2.0

package playback

import (
	"fmt"
	"io"
	"math"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ik5/tonearm/audio"
	"github.com/ik5/tonearm/device"
	"github.com/ik5/tonearm/probe"
)

const (
	// bufferWriteDelay is the producer's backpressure sleep, used both
	// above the high-water mark and when a push is only partly accepted.
	bufferWriteDelay = 10 * time.Millisecond

	// stateTickInterval paces the presented playback clock.
	stateTickInterval = 100 * time.Millisecond

	// noSeek marks the seek mailbox as empty.
	noSeek = math.MaxUint64

	decodeBatch  = 4096
	commandQueue = 16
)

// CommandKind enumerates the playback commands.
type CommandKind int

const (
	CmdPause CommandKind = iota
	CmdResume
	CmdStop
	CmdSeek
)

// Command is one control message. Commands are delivered in send order and
// the session consumes at most one per loop iteration.
type Command struct {
	Kind CommandKind
	// Seek position in seconds, used when Kind is CmdSeek.
	Seek float64
}

// State is a read-only snapshot of a session.
type State struct {
	IsPlaying     bool
	IsPaused      bool
	CurrentTime   float64
	TotalDuration float64
}

// Options tune session startup.
type Options struct {
	// DeviceIndex selects an output device; device.DefaultDevice picks the
	// host default.
	DeviceIndex int
	// RefineDuration enables the probe's bounded exhaustive duration parse.
	RefineDuration bool
}

// Controller starts playback sessions against a device host and a decoder
// registry.
type Controller struct {
	host device.Host
	reg  *audio.Registry
}

// NewController returns a Controller. The host outlives sessions; the
// caller closes it.
func NewController(host device.Host, reg *audio.Registry) *Controller {
	return &Controller{host: host, reg: reg}
}

// Open probes a file without starting playback.
func (c *Controller) Open(path string) (*probe.ProbedTrack, error) {
	return probe.New(c.reg).Open(path)
}

// Start probes the file, negotiates a device configuration, and begins a
// playback session. Probe and negotiation failures abort before any
// goroutine is spawned, so a session either starts cleanly or not at all.
func (c *Controller) Start(path string, opts Options) (*Session, error) {
	prober := probe.New(c.reg)
	prober.RefineDuration = opts.RefineDuration

	track, err := prober.Open(path)
	if err != nil {
		return nil, err
	}

	src, err := track.OpenSource(c.reg)
	if err != nil {
		return nil, err
	}

	dev, cfg, err := device.Select(c.host, opts.DeviceIndex, track.Info.SampleRate, track.Info.Channels)
	if err != nil {
		src.Close()
		return nil, err
	}

	// The ring buffer carries samples in the source channel layout at the
	// negotiated rate; the mixer adapts the layout per callback.
	reader := src
	var resampler *audio.Resampler
	if cfg.SampleRate != src.SampleRate() {
		resampler = audio.NewResampler(src, cfg.SampleRate)
		reader = resampler
	}

	rb, err := audio.NewRingBuffer(audio.SessionCapacity(cfg.SampleRate, track.Info.Channels))
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("%w: %s", ErrPlayback, err)
	}

	s := &Session{
		track:     track,
		source:    src,
		reader:    reader,
		resampler: resampler,
		ring:      rb,
		mixer:     audio.NewMixer(),
		cfg:       cfg,
		cmds:      make(chan Command, commandQueue),
		done:      make(chan error, 1),
		closed:    make(chan struct{}),
	}
	s.seekMillis.Store(noSeek)
	s.setCurrentTime(0)
	s.totalMillis.Store(uint64(track.Info.Duration * 1000))

	stream, err := dev.Open(cfg, func(out []float32, frames int) {
		s.mixer.Fill(out, s.ring, cfg.Channels, track.Info.Channels)
	})
	if err != nil {
		src.Close()
		return nil, err
	}
	s.stream = stream

	if err := stream.Start(); err != nil {
		stream.Close()
		src.Close()
		return nil, fmt.Errorf("%w: %s", ErrPlayback, err)
	}

	s.isPlaying.Store(true)

	decodeDone := make(chan error, 1)
	go s.decodeLoop(decodeDone)
	go s.controlLoop(decodeDone)

	log.Info().
		Str("path", path).
		Str("device", dev.Name()).
		Int("out_channels", cfg.Channels).
		Int("sample_rate", cfg.SampleRate).
		Msg("playback session started")

	return s, nil
}

// Session is one active playback of one track. It owns two goroutines: the
// decode loop (producer) and the control loop (command consumer and clock).
type Session struct {
	track     *probe.ProbedTrack
	source    audio.Source
	reader    audio.Source
	resampler *audio.Resampler
	ring      *audio.RingBuffer
	mixer     *audio.Mixer
	stream    device.Stream
	cfg       device.StreamConfig

	cmds   chan Command
	done   chan error
	closed chan struct{}

	isPlaying  atomic.Bool
	isPaused   atomic.Bool
	shouldStop atomic.Bool

	// seekMillis is a one-slot mailbox read by the decode loop; noSeek
	// means no pending request.
	seekMillis    atomic.Uint64
	currentMillis atomic.Uint64
	totalMillis   atomic.Uint64
}

// Track the session is playing.
func (s *Session) Track() *probe.ProbedTrack { return s.track }

// Send queues a command. Commands are processed in order; sends after the
// session has ended are discarded.
func (s *Session) Send(cmd Command) {
	select {
	case s.cmds <- cmd:
	case <-s.closed:
	}
}

// Pause gates the playback clock and stops the hardware stream. The
// decode loop keeps filling the buffer up to the high-water mark.
func (s *Session) Pause() { s.Send(Command{Kind: CmdPause}) }

// Resume restarts the stream and the clock.
func (s *Session) Resume() { s.Send(Command{Kind: CmdResume}) }

// Stop ends the session.
func (s *Session) Stop() { s.Send(Command{Kind: CmdStop}) }

// Seek requests an asynchronous reposition to seconds. The presented
// clock updates immediately; the decode position follows when the source
// supports seeking.
func (s *Session) Seek(seconds float64) { s.Send(Command{Kind: CmdSeek, Seek: seconds}) }

// Done reports session termination: nil for end-of-stream or Stop, a
// wrapped ErrDecoding otherwise. The stream is released and the decode
// goroutine joined before the error is delivered.
func (s *Session) Done() <-chan error { return s.done }

// State returns a snapshot for display.
func (s *Session) State() State {
	return State{
		IsPlaying:     s.isPlaying.Load(),
		IsPaused:      s.isPaused.Load(),
		CurrentTime:   float64(s.currentMillis.Load()) / 1000,
		TotalDuration: float64(s.totalMillis.Load()) / 1000,
	}
}

// tickClock advances the presented clock and publishes the snapshot,
// returning the advanced value so the caller keeps the untruncated
// accumulator.
func (s *Session) tickClock(clock, elapsed float64) float64 {
	clock += elapsed
	s.setCurrentTime(clock)
	return clock
}

func (s *Session) setCurrentTime(seconds float64) {
	if seconds < 0 {
		seconds = 0
	}
	s.currentMillis.Store(uint64(seconds * 1000))
}

// decodeLoop is the producer: it pulls samples from the reader, honors
// seek requests and backpressure, and pushes into the ring buffer. It
// exits on stop, end of stream, or a decode error.
func (s *Session) decodeLoop(decodeDone chan<- error) {
	buf := make([]float32, decodeBatch)

	for !s.shouldStop.Load() {
		s.applyPendingSeek()

		if s.ring.AboveHighWater() {
			time.Sleep(bufferWriteDelay)
			continue
		}

		n, err := s.reader.ReadSamples(buf)
		if n > 0 {
			s.pushAll(buf[:n])
		}

		if err != nil {
			if err == io.EOF {
				s.drain()
				decodeDone <- nil
				return
			}

			log.Error().Err(err).Str("path", s.track.Path).Msg("decode failed")
			decodeDone <- fmt.Errorf("%w: %s", ErrDecoding, err)
			return
		}
	}

	decodeDone <- nil
}

// pushAll queues samples, sleeping briefly whenever the buffer accepts
// only part of a batch.
func (s *Session) pushAll(samples []float32) {
	for len(samples) > 0 && !s.shouldStop.Load() {
		accepted := s.ring.Push(samples)
		samples = samples[accepted:]

		if len(samples) > 0 {
			time.Sleep(bufferWriteDelay)
		}
	}
}

// applyPendingSeek consumes the seek mailbox. Sources without the seek
// capability log and ignore the request; the presented clock has already
// moved.
func (s *Session) applyPendingSeek() {
	millis := s.seekMillis.Swap(noSeek)
	if millis == noSeek {
		return
	}

	sk, ok := audio.AsSeeker(s.reader)
	if !ok {
		log.Debug().Str("path", s.track.Path).Msg("source is not seekable, ignoring seek")
		return
	}

	frame := int64(millis) * int64(s.source.SampleRate()) / 1000
	if err := sk.SeekFrame(frame); err != nil {
		log.Debug().Err(err).Str("path", s.track.Path).Msg("seek failed, continuing from current position")
		return
	}

	// Stale audio from the old position must not play.
	s.ring.Clear()
	if s.resampler != nil {
		s.resampler.Reset()
	}
}

// drain lets the queued tail play out before completion is signaled.
// While paused the buffer is not consumed, so completion waits for resume
// or stop.
func (s *Session) drain() {
	for s.ring.Len() > 0 && !s.shouldStop.Load() {
		time.Sleep(bufferWriteDelay)
	}
}

// controlLoop consumes commands, advances the presented clock, and tears
// the session down when the decode loop finishes.
func (s *Session) controlLoop(decodeDone <-chan error) {
	ticker := time.NewTicker(stateTickInterval)
	defer ticker.Stop()

	last := time.Now()

	// clock carries full float precision between ticks; the stored
	// snapshot is millisecond-truncated and would drift slow if used as
	// the accumulator.
	clock := float64(s.currentMillis.Load()) / 1000

	for {
		select {
		case cmd := <-s.cmds:
			if stop := s.handleCommand(cmd); stop {
				s.shouldStop.Store(true)
			}
			// Seek moves the stored clock; resync the accumulator.
			clock = float64(s.currentMillis.Load()) / 1000

		case now := <-ticker.C:
			if s.isPlaying.Load() && !s.isPaused.Load() {
				clock = s.tickClock(clock, now.Sub(last).Seconds())
			}
			last = now

		case err := <-decodeDone:
			s.teardown(err)
			return
		}
	}
}

func (s *Session) handleCommand(cmd Command) (stop bool) {
	switch cmd.Kind {
	case CmdPause:
		if s.isPaused.CompareAndSwap(false, true) {
			s.isPlaying.Store(false)
			if err := s.stream.Stop(); err != nil {
				log.Error().Err(err).Msg("stopping stream on pause")
			}
		}

	case CmdResume:
		if s.isPaused.CompareAndSwap(true, false) {
			s.isPlaying.Store(true)
			if err := s.stream.Start(); err != nil {
				log.Error().Err(err).Msg("restarting stream on resume")
			}
		}

	case CmdStop:
		return true

	case CmdSeek:
		target := cmd.Seek
		if target < 0 {
			target = 0
		}
		if total := float64(s.totalMillis.Load()) / 1000; total > 0 && target > total {
			target = total
		}

		// The caller's clock moves immediately; the decode position
		// follows asynchronously.
		s.setCurrentTime(target)
		s.seekMillis.Store(uint64(target * 1000))
	}

	return false
}

// teardown releases the stream and the source, then delivers the session
// outcome. Runs after the decode goroutine has finished, so no orphaned
// producer can outlive the stream.
func (s *Session) teardown(decodeErr error) {
	s.isPlaying.Store(false)
	close(s.closed)

	if err := s.stream.Stop(); err != nil {
		log.Debug().Err(err).Msg("stopping stream on teardown")
	}
	if err := s.stream.Close(); err != nil {
		log.Error().Err(err).Msg("closing stream")
	}
	if err := s.reader.Close(); err != nil {
		log.Error().Err(err).Msg("closing source")
	}

	s.done <- decodeErr
	close(s.done)

	log.Info().Str("path", s.track.Path).Msg("playback session ended")
}
