// SPDX-License-Identifier: EPL-2.0

package device

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// DefaultDevice selects the host's default playback device.
const DefaultDevice = -1

// Select picks an output device and stream configuration for a source with
// the given channel count and sample rate.
//
// Configurations are tried in strict priority order:
//
//  1. Exact channel match. The requested rate is clamped into the
//     configuration's supported range rather than failing.
//  2. Smallest superset: among configurations with more channels, the one
//     with the fewest (minimizes upmixing). Same clamping rule.
//  3. Best effort: every configuration is scored by
//     format quality x 100 + channels x 10 + max rate / 1000,
//     and the highest wins. This tier never fails on channel or format
//     mismatch, so any device that enumerates at least one configuration
//     yields a playable stream.
//
// deviceIndex selects a device from the host's enumeration order;
// DefaultDevice picks the first.
func Select(host Host, deviceIndex, sampleRate, sourceChannels int) (Device, StreamConfig, error) {
	devices, err := host.Devices()
	if err != nil {
		return nil, StreamConfig{}, fmt.Errorf("%w: %s", ErrAudioDevice, err)
	}

	if len(devices) == 0 {
		return nil, StreamConfig{}, fmt.Errorf("%w: no playback devices", ErrAudioDevice)
	}

	if deviceIndex == DefaultDevice {
		deviceIndex = 0
	}
	if deviceIndex < 0 || deviceIndex >= len(devices) {
		return nil, StreamConfig{}, fmt.Errorf("%w: device index %d out of range (%d devices)",
			ErrAudioDevice, deviceIndex, len(devices))
	}

	dev := devices[deviceIndex]

	configs, err := dev.Configs()
	if err != nil {
		return nil, StreamConfig{}, fmt.Errorf("%w: %s", ErrAudioDevice, err)
	}

	if len(configs) == 0 {
		return nil, StreamConfig{}, fmt.Errorf("%w: %q enumerates no configurations",
			ErrAudioDevice, dev.Name())
	}

	cfg, tier := negotiate(configs, sampleRate, sourceChannels)

	log.Debug().
		Str("device", dev.Name()).
		Int("tier", tier).
		Int("channels", cfg.Channels).
		Int("sample_rate", cfg.SampleRate).
		Stringer("format", cfg.Format).
		Msg("negotiated output configuration")

	return dev, cfg, nil
}

func negotiate(configs []OutputConfig, sampleRate, sourceChannels int) (StreamConfig, int) {
	// Tier 1: exact channel match.
	for _, c := range configs {
		if c.Channels == sourceChannels {
			return concrete(c, sampleRate), 1
		}
	}

	// Tier 2: smallest superset.
	var (
		best     OutputConfig
		haveBest bool
	)
	for _, c := range configs {
		if c.Channels <= sourceChannels {
			continue
		}
		if !haveBest || c.Channels < best.Channels {
			best = c
			haveBest = true
		}
	}
	if haveBest {
		return concrete(best, sampleRate), 2
	}

	// Tier 3: highest score wins.
	best = configs[0]
	for _, c := range configs[1:] {
		if score(c) > score(best) {
			best = c
		}
	}

	return concrete(best, sampleRate), 3
}

func score(c OutputConfig) int {
	return c.Format.quality()*100 + c.Channels*10 + c.MaxRate/1000
}

// concrete clamps the requested rate into the configuration's range.
func concrete(c OutputConfig, sampleRate int) StreamConfig {
	rate := sampleRate
	if c.MinRate > 0 && rate < c.MinRate {
		rate = c.MinRate
	}
	if c.MaxRate > 0 && rate > c.MaxRate {
		rate = c.MaxRate
	}

	return StreamConfig{
		Channels:   c.Channels,
		SampleRate: rate,
		Format:     c.Format,
	}
}
