// SPDX-License-Identifier: EPL-2.0

package device

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/gen2brain/malgo"

	"github.com/ik5/tonearm/utils"
)

// MalgoHost is the miniaudio-backed Host implementation.
type MalgoHost struct {
	ctx *malgo.AllocatedContext
}

// NewMalgoHost initializes the platform audio backend.
func NewMalgoHost() (*MalgoHost, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrAudioDevice, err)
	}

	return &MalgoHost{ctx: ctx}, nil
}

func (h *MalgoHost) Devices() ([]Device, error) {
	infos, err := h.ctx.Devices(malgo.Playback)
	if err != nil {
		return nil, fmt.Errorf("enumerating playback devices: %w", err)
	}

	devices := make([]Device, 0, len(infos))
	for _, info := range infos {
		devices = append(devices, &malgoDevice{host: h, info: info})
	}

	return devices, nil
}

func (h *MalgoHost) Close() error {
	err := h.ctx.Uninit()
	h.ctx.Free()
	if err != nil {
		return fmt.Errorf("closing audio context: %w", err)
	}

	return nil
}

type malgoDevice struct {
	host *MalgoHost
	info malgo.DeviceInfo
}

func (d *malgoDevice) Name() string { return d.info.Name() }

// Configs groups the enumerated data formats by format and channel count,
// collapsing their sample rates into a range. A zero rate bound means the
// backend accepts any rate for that layout.
func (d *malgoDevice) Configs() ([]OutputConfig, error) {
	full, err := d.host.ctx.DeviceInfo(malgo.Playback, d.info.ID, malgo.Shared)
	if err != nil {
		// Fall back to the enumeration snapshot.
		full = d.info
	}

	type layout struct {
		format   SampleFormat
		channels int
	}

	ranges := make(map[layout][2]int)
	order := make([]layout, 0, len(full.Formats))

	for _, df := range full.Formats {
		format := fromMalgoFormat(df.Format)
		if format == FormatUnknown || df.Channels == 0 {
			continue
		}

		key := layout{format: format, channels: int(df.Channels)}
		rate := int(df.SampleRate)

		r, seen := ranges[key]
		if !seen {
			order = append(order, key)
			ranges[key] = [2]int{rate, rate}
			continue
		}

		if rate < r[0] {
			r[0] = rate
		}
		if rate > r[1] {
			r[1] = rate
		}
		ranges[key] = r
	}

	configs := make([]OutputConfig, 0, len(order))
	for _, key := range order {
		r := ranges[key]
		configs = append(configs, OutputConfig{
			Channels: key.channels,
			MinRate:  r[0],
			MaxRate:  r[1],
			Format:   key.format,
		})
	}

	return configs, nil
}

func (d *malgoDevice) Open(cfg StreamConfig, cb DataCallback) (Stream, error) {
	devCfg := malgo.DefaultDeviceConfig(malgo.Playback)
	devCfg.Playback.Format = toMalgoFormat(cfg.Format)
	devCfg.Playback.Channels = uint32(cfg.Channels)
	devCfg.Playback.DeviceID = d.info.ID.Pointer()
	devCfg.SampleRate = uint32(cfg.SampleRate)

	st := &malgoStream{
		channels: cfg.Channels,
		format:   cfg.Format,
		cb:       cb,
		scratch:  make([]float32, 4096*cfg.Channels),
	}

	dev, err := malgo.InitDevice(d.host.ctx.Context, devCfg, malgo.DeviceCallbacks{
		Data: st.data,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: opening %q: %s", ErrAudioDevice, d.Name(), err)
	}
	st.dev = dev

	return st, nil
}

type malgoStream struct {
	dev      *malgo.Device
	channels int
	format   SampleFormat
	cb       DataCallback
	scratch  []float32

	mtx    sync.Mutex
	closed bool
}

// data runs on the real-time audio thread. The pipeline fills the float32
// scratch buffer and the samples are converted to the device's native
// format as the last step.
func (s *malgoStream) data(out, _ []byte, frameCount uint32) {
	frames := int(frameCount)
	samples := frames * s.channels

	if cap(s.scratch) < samples {
		s.scratch = make([]float32, samples)
	}
	buf := s.scratch[:samples]

	s.cb(buf, frames)

	switch s.format {
	case FormatF32:
		for i, v := range buf {
			binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
		}
	case FormatS32:
		for i, v := range buf {
			binary.LittleEndian.PutUint32(out[i*4:], uint32(utils.Float32ToInt32(v)))
		}
	case FormatS24:
		for i, v := range buf {
			s24 := utils.Float32ToInt24(v)
			out[i*3] = byte(s24)
			out[i*3+1] = byte(s24 >> 8)
			out[i*3+2] = byte(s24 >> 16)
		}
	case FormatS16:
		for i, v := range buf {
			binary.LittleEndian.PutUint16(out[i*2:], uint16(utils.Float32ToInt16(v)))
		}
	case FormatU8:
		for i, v := range buf {
			out[i] = utils.Float32ToUint8(v)
		}
	}
}

func (s *malgoStream) Start() error {
	if err := s.dev.Start(); err != nil {
		return fmt.Errorf("starting stream: %w", err)
	}

	return nil
}

func (s *malgoStream) Stop() error {
	if err := s.dev.Stop(); err != nil {
		return fmt.Errorf("stopping stream: %w", err)
	}

	return nil
}

func (s *malgoStream) Close() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if !s.closed {
		s.dev.Uninit()
		s.closed = true
	}

	return nil
}

func fromMalgoFormat(f malgo.FormatType) SampleFormat {
	switch f {
	case malgo.FormatU8:
		return FormatU8
	case malgo.FormatS16:
		return FormatS16
	case malgo.FormatS24:
		return FormatS24
	case malgo.FormatS32:
		return FormatS32
	case malgo.FormatF32:
		return FormatF32
	default:
		return FormatUnknown
	}
}

func toMalgoFormat(f SampleFormat) malgo.FormatType {
	switch f {
	case FormatU8:
		return malgo.FormatU8
	case FormatS16:
		return malgo.FormatS16
	case FormatS24:
		return malgo.FormatS24
	case FormatS32:
		return malgo.FormatS32
	case FormatF32:
		return malgo.FormatF32
	default:
		return malgo.FormatUnknown
	}
}
