// SPDX-License-Identifier: EPL-2.0

package playlist

import (
	"math/rand/v2"

	"github.com/ik5/tonearm/probe"
)

// PlayMode decides what happens when a track finishes.
type PlayMode int

const (
	// ListLoop advances through the list and wraps to the start.
	ListLoop PlayMode = iota
	// SingleLoop restarts the current track.
	SingleLoop
	// Random jumps to a random other track (never the same one twice in a
	// row while the list has more than one entry).
	Random
)

func (m PlayMode) String() string {
	switch m {
	case ListLoop:
		return "list loop"
	case SingleLoop:
		return "single loop"
	case Random:
		return "random"
	default:
		return "unknown"
	}
}

// Item is one playlist entry.
type Item struct {
	Path  string
	Title string
	// Duration in seconds. Zero means unknown; see BackfillDurations.
	Duration float64
}

// Playlist is an ordered track list with a cursor and a play mode. It is
// a caller-side collaborator of the playback core and is not safe for
// concurrent use.
type Playlist struct {
	items   []Item
	current int
	mode    PlayMode

	intn func(n int) int
}

func New() *Playlist {
	return &Playlist{intn: rand.IntN}
}

func (p *Playlist) Add(item Item) {
	p.items = append(p.items, item)
}

func (p *Playlist) Len() int { return len(p.items) }

// Items returns a copy of the entries.
func (p *Playlist) Items() []Item {
	out := make([]Item, len(p.items))
	copy(out, p.items)
	return out
}

func (p *Playlist) Mode() PlayMode     { return p.mode }
func (p *Playlist) SetMode(m PlayMode) { p.mode = m }

// Current returns the entry under the cursor.
func (p *Playlist) Current() (Item, bool) {
	if len(p.items) == 0 {
		return Item{}, false
	}

	return p.items[p.current], true
}

// SetCurrent moves the cursor to index i.
func (p *Playlist) SetCurrent(i int) error {
	if i < 0 || i >= len(p.items) {
		return ErrIndexOutOfRange
	}

	p.current = i
	return nil
}

// Next picks the track to play after the current one finishes, honoring
// the play mode. restart reports that the same track should start over
// (single loop). ok is false only for an empty list.
func (p *Playlist) Next() (item Item, restart, ok bool) {
	if len(p.items) == 0 {
		return Item{}, false, false
	}

	switch p.mode {
	case SingleLoop:
		return p.items[p.current], true, true

	case Random:
		if len(p.items) > 1 {
			next := p.intn(len(p.items) - 1)
			if next >= p.current {
				next++
			}
			p.current = next
		}
		return p.items[p.current], false, true

	default: // ListLoop
		p.current = (p.current + 1) % len(p.items)
		return p.items[p.current], false, true
	}
}

// Previous moves the cursor backwards, wrapping to the end. Play mode is
// ignored: user navigation is always sequential.
func (p *Playlist) Previous() (Item, bool) {
	if len(p.items) == 0 {
		return Item{}, false
	}

	p.current = (p.current - 1 + len(p.items)) % len(p.items)
	return p.items[p.current], true
}

// BackfillDurations probes entries whose duration is unknown. Probe
// failures leave the entry untouched; a playlist may reference files that
// appear later.
func (p *Playlist) BackfillDurations(prober *probe.Prober) {
	for i := range p.items {
		if p.items[i].Duration > 0 {
			continue
		}

		track, err := prober.Open(p.items[i].Path)
		if err != nil {
			continue
		}

		p.items[i].Duration = track.Info.Duration
	}
}
