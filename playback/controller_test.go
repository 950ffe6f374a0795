// SPDX-License-Identifier: EPL-2.0

package playback

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/tonearm/audio"
	"github.com/ik5/tonearm/device"
	"github.com/ik5/tonearm/formats/wav"
	"github.com/ik5/tonearm/internal/audiotest"
	"github.com/ik5/tonearm/probe"
)

// mockStream records lifecycle calls and lets the test pump the data
// callback the way real hardware would.
type mockStream struct {
	mtx     sync.Mutex
	cb      device.DataCallback
	cfg     device.StreamConfig
	started bool
	starts  int
	stops   int
	closed  bool
}

func (s *mockStream) Start() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.started = true
	s.starts++
	return nil
}

func (s *mockStream) Stop() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.started = false
	s.stops++
	return nil
}

func (s *mockStream) Close() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.closed = true
	return nil
}

func (s *mockStream) running() bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.started
}

// pump simulates hardware pulls while the stream is running.
func (s *mockStream) pump(frames int) []float32 {
	s.mtx.Lock()
	cb := s.cb
	running := s.started
	channels := s.cfg.Channels
	s.mtx.Unlock()

	if !running || cb == nil {
		return nil
	}

	out := make([]float32, frames*channels)
	cb(out, frames)
	return out
}

type mockDevice struct {
	configs []device.OutputConfig

	mtx    sync.Mutex
	stream *mockStream
}

func (d *mockDevice) Name() string { return "mock output" }

func (d *mockDevice) Configs() ([]device.OutputConfig, error) { return d.configs, nil }

func (d *mockDevice) Open(cfg device.StreamConfig, cb device.DataCallback) (device.Stream, error) {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	d.stream = &mockStream{cb: cb, cfg: cfg}
	return d.stream, nil
}

func (d *mockDevice) openStream() *mockStream {
	d.mtx.Lock()
	defer d.mtx.Unlock()
	return d.stream
}

type mockHost struct {
	devices []device.Device
}

func (h *mockHost) Devices() ([]device.Device, error) { return h.devices, nil }
func (h *mockHost) Close() error                      { return nil }

func monoHost() (*mockHost, *mockDevice) {
	dev := &mockDevice{configs: []device.OutputConfig{
		{Channels: 1, MinRate: 8000, MaxRate: 48000, Format: device.FormatF32},
	}}
	return &mockHost{devices: []device.Device{dev}}, dev
}

func writeWavFixture(t *testing.T, rate, frames int) string {
	t.Helper()

	samples := make([]int16, frames)
	for i := range samples {
		samples[i] = int16((i%100)*300 - 15000)
	}

	path := filepath.Join(t.TempDir(), "fixture.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, wav.WriteWAV16(f, rate, samples))

	return path
}

// pumpUntilDone drains the stream like hardware until the session ends.
func pumpUntilDone(t *testing.T, s *Session, st *mockStream) error {
	t.Helper()

	timeout := time.After(10 * time.Second)
	for {
		select {
		case err := <-s.Done():
			return err
		case <-timeout:
			t.Fatal("session did not finish in time")
		default:
			st.pump(256)
			time.Sleep(time.Millisecond)
		}
	}
}

func TestStart_FileNotFound(t *testing.T) {
	t.Parallel()

	host, _ := monoHost()
	c := NewController(host, probe.DefaultRegistry())

	_, err := c.Start(filepath.Join(t.TempDir(), "missing.wav"), Options{DeviceIndex: device.DefaultDevice})
	assert.ErrorIs(t, err, probe.ErrFileNotFound)
}

func TestStart_NoUsableDevice(t *testing.T) {
	t.Parallel()

	host := &mockHost{devices: []device.Device{&mockDevice{}}}
	c := NewController(host, probe.DefaultRegistry())

	path := writeWavFixture(t, 8000, 100)
	_, err := c.Start(path, Options{DeviceIndex: device.DefaultDevice})
	assert.ErrorIs(t, err, device.ErrAudioDevice)
}

func TestSession_PlaysToCompletion(t *testing.T) {
	t.Parallel()

	host, dev := monoHost()
	c := NewController(host, probe.DefaultRegistry())

	path := writeWavFixture(t, 8000, 2000)
	s, err := c.Start(path, Options{DeviceIndex: device.DefaultDevice})
	require.NoError(t, err)

	st := dev.openStream()
	require.NotNil(t, st)
	assert.True(t, st.running())

	err = pumpUntilDone(t, s, st)
	assert.NoError(t, err, "end of stream is not an error")

	assert.True(t, st.closed, "stream must be released on completion")
	assert.False(t, s.State().IsPlaying)
}

func TestSession_StateSnapshot(t *testing.T) {
	t.Parallel()

	host, dev := monoHost()
	c := NewController(host, probe.DefaultRegistry())

	// Two seconds of audio so the session outlives the assertions.
	path := writeWavFixture(t, 8000, 16000)
	s, err := c.Start(path, Options{DeviceIndex: device.DefaultDevice})
	require.NoError(t, err)
	defer func() {
		s.Stop()
		<-s.Done()
	}()

	state := s.State()
	assert.True(t, state.IsPlaying)
	assert.False(t, state.IsPaused)
	assert.InDelta(t, 2.0, state.TotalDuration, 0.01)

	st := dev.openStream()
	assert.Eventually(t, func() bool {
		st.pump(256)
		return s.State().CurrentTime > 0
	}, 5*time.Second, 10*time.Millisecond, "clock should advance while playing")
}

func TestSession_PauseAndResume(t *testing.T) {
	t.Parallel()

	host, dev := monoHost()
	c := NewController(host, probe.DefaultRegistry())

	path := writeWavFixture(t, 8000, 16000)
	s, err := c.Start(path, Options{DeviceIndex: device.DefaultDevice})
	require.NoError(t, err)
	defer func() {
		s.Stop()
		<-s.Done()
	}()

	st := dev.openStream()

	s.Pause()
	require.Eventually(t, func() bool {
		return s.State().IsPaused && !st.running()
	}, 5*time.Second, 10*time.Millisecond, "pause should gate the clock and stop the stream")

	paused := s.State()
	assert.False(t, paused.IsPlaying)

	// The clock must not advance while paused.
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, paused.CurrentTime, s.State().CurrentTime)

	s.Resume()
	require.Eventually(t, func() bool {
		return !s.State().IsPaused && st.running()
	}, 5*time.Second, 10*time.Millisecond, "resume should restart the stream")
}

func TestSession_StopEndsSession(t *testing.T) {
	t.Parallel()

	host, dev := monoHost()
	c := NewController(host, probe.DefaultRegistry())

	path := writeWavFixture(t, 8000, 16000)
	s, err := c.Start(path, Options{DeviceIndex: device.DefaultDevice})
	require.NoError(t, err)

	s.Stop()

	err = pumpUntilDone(t, s, dev.openStream())
	assert.NoError(t, err)
	assert.True(t, dev.openStream().closed)
}

func TestSession_SeekBeyondDurationClampsClock(t *testing.T) {
	t.Parallel()

	host, dev := monoHost()
	c := NewController(host, probe.DefaultRegistry())

	path := writeWavFixture(t, 8000, 16000)
	s, err := c.Start(path, Options{DeviceIndex: device.DefaultDevice})
	require.NoError(t, err)
	defer func() {
		s.Stop()
		<-s.Done()
	}()

	s.Seek(9999)

	require.Eventually(t, func() bool {
		return s.State().CurrentTime >= s.State().TotalDuration-0.2
	}, 5*time.Second, 10*time.Millisecond, "seek target should clamp to total duration")

	// The decode goroutine must survive an out-of-range seek.
	assert.NotPanics(t, func() { dev.openStream().pump(256) })
}

func TestSession_NegativeSeekClampsToZero(t *testing.T) {
	t.Parallel()

	host, _ := monoHost()
	c := NewController(host, probe.DefaultRegistry())

	path := writeWavFixture(t, 8000, 16000)
	s, err := c.Start(path, Options{DeviceIndex: device.DefaultDevice})
	require.NoError(t, err)
	defer func() {
		s.Stop()
		<-s.Done()
	}()

	s.Seek(-5)

	require.Eventually(t, func() bool {
		return s.State().CurrentTime < 0.5
	}, 5*time.Second, 10*time.Millisecond)
}

// sineDecoder ignores the file contents and produces a synthetic stereo
// sine at a rate the mock device cannot do natively, forcing the session
// through the resampler and the downmix path.
type sineDecoder struct{}

func (sineDecoder) Decode(r io.Reader) (audio.Source, error) {
	return audiotest.NewSineSource(96000, 2, 9600, 440), nil
}

func TestSession_ResamplesAndDownmixesToDeviceLayout(t *testing.T) {
	t.Parallel()

	reg := audio.NewRegistry()
	reg.Register(probe.FormatWav, sineDecoder{})

	// Mono device capped at 48 kHz: rate clamps and channels fold.
	host, dev := monoHost()
	c := NewController(host, reg)

	path := writeWavFixture(t, 8000, 100)
	s, err := c.Start(path, Options{DeviceIndex: device.DefaultDevice})
	require.NoError(t, err)

	st := dev.openStream()
	require.Equal(t, 1, st.cfg.Channels)
	require.Equal(t, 48000, st.cfg.SampleRate)

	var nonSilent bool
	timeout := time.After(10 * time.Second)
	for {
		select {
		case err := <-s.Done():
			require.NoError(t, err)
			assert.True(t, nonSilent, "downmixed sine should reach the callback")
			return
		case <-timeout:
			t.Fatal("session did not finish in time")
		default:
			for _, v := range st.pump(256) {
				if v != 0 {
					nonSilent = true
				}
				require.LessOrEqual(t, v, float32(1.0))
				require.GreaterOrEqual(t, v, float32(-1.0))
			}
			time.Sleep(time.Millisecond)
		}
	}
}

// failingDecoder produces a source that errors after its first batch,
// simulating mid-session corruption.
type failingDecoder struct{}

type failingSource struct {
	reads int
}

func (s *failingSource) SampleRate() int { return 8000 }
func (s *failingSource) Channels() int   { return 1 }
func (s *failingSource) BufSize() int    { return 4096 }
func (s *failingSource) Close() error    { return nil }

func (s *failingSource) ReadSamples(dst []float32) (int, error) {
	s.reads++
	if s.reads > 1 {
		return 0, errors.New("bitstream corrupted")
	}

	n := min(len(dst), 256)
	for i := range n {
		dst[i] = 0.1
	}
	return n, nil
}

func (failingDecoder) Decode(r io.Reader) (audio.Source, error) {
	return &failingSource{}, nil
}

func TestSession_DecodeErrorSurfacedAfterCleanup(t *testing.T) {
	t.Parallel()

	// A registry that routes sniffed WAV data into the failing decoder.
	reg := audio.NewRegistry()
	reg.Register(probe.FormatWav, failingDecoder{})

	host, dev := monoHost()
	c := NewController(host, reg)

	path := writeWavFixture(t, 8000, 16000)
	s, err := c.Start(path, Options{DeviceIndex: device.DefaultDevice})
	require.NoError(t, err)

	err = pumpUntilDone(t, s, dev.openStream())
	assert.ErrorIs(t, err, ErrDecoding)

	assert.True(t, dev.openStream().closed, "stream must be released before the error is surfaced")
}

func TestController_Open(t *testing.T) {
	t.Parallel()

	host, _ := monoHost()
	c := NewController(host, probe.DefaultRegistry())

	path := writeWavFixture(t, 8000, 4000)
	track, err := c.Open(path)
	require.NoError(t, err)

	assert.Equal(t, 1, track.Info.Channels)
	assert.InDelta(t, 0.5, track.Info.Duration, 0.001)
}

func TestSession_SendAfterDoneDoesNotBlock(t *testing.T) {
	t.Parallel()

	host, dev := monoHost()
	c := NewController(host, probe.DefaultRegistry())

	path := writeWavFixture(t, 8000, 800)
	s, err := c.Start(path, Options{DeviceIndex: device.DefaultDevice})
	require.NoError(t, err)

	require.NoError(t, pumpUntilDone(t, s, dev.openStream()))

	finished := make(chan struct{})
	go func() {
		s.Pause()
		s.Seek(1)
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Send blocked after session end")
	}
}

func TestSession_ClockKeepsSubMillisecondRemainders(t *testing.T) {
	t.Parallel()

	// Ticks rarely land on whole milliseconds. Accumulating through the
	// truncated snapshot would lose up to 1 ms per tick and the clock
	// would drift slow over a long track.
	s := &Session{}

	clock := 0.0
	for range 1000 {
		clock = s.tickClock(clock, 0.0999)
	}

	assert.InDelta(t, 99.9, s.State().CurrentTime, 0.001)
}
