// SPDX-License-Identifier: EPL-2.0

package tonearm

import (
	"github.com/ik5/tonearm/audio"
	"github.com/ik5/tonearm/device"
	"github.com/ik5/tonearm/playback"
	"github.com/ik5/tonearm/probe"
)

// Open probes an audio file with the default decoder registry, without
// starting playback.
func Open(path string) (*probe.ProbedTrack, error) {
	return probe.New(probe.DefaultRegistry()).Open(path)
}

// Player couples an output host with a playback controller. One Player
// serves many sessions; Close releases the audio backend.
type Player struct {
	host device.Host
	ctrl *playback.Controller
	reg  *audio.Registry
}

// NewPlayer creates a Player on the platform audio backend.
func NewPlayer() (*Player, error) {
	host, err := device.NewMalgoHost()
	if err != nil {
		return nil, err
	}

	return NewPlayerWithHost(host), nil
}

// NewPlayerWithHost creates a Player on a caller-supplied host. Tests use
// this with a mock host.
func NewPlayerWithHost(host device.Host) *Player {
	reg := probe.DefaultRegistry()

	return &Player{
		host: host,
		ctrl: playback.NewController(host, reg),
		reg:  reg,
	}
}

// Registry exposes the decoder registry so callers can add formats.
func (p *Player) Registry() *audio.Registry { return p.reg }

// Open probes a file without starting playback.
func (p *Player) Open(path string) (*probe.ProbedTrack, error) {
	return p.ctrl.Open(path)
}

// Play starts a playback session for the file.
func (p *Player) Play(path string, opts playback.Options) (*playback.Session, error) {
	return p.ctrl.Start(path, opts)
}

// Close releases the audio backend. Active sessions must be stopped first.
func (p *Player) Close() error {
	return p.host.Close()
}
