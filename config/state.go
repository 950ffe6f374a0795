// SPDX-License-Identifier: EPL-2.0

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// State is the persisted last-played snapshot, written on shutdown and
// track changes so a restart resumes where the user left off.
type State struct {
	LastPath     string  `json:"last_path"`
	LastPosition float64 `json:"last_position"`
	PlayMode     string  `json:"play_mode"`
	DeviceIndex  int     `json:"device_index"`
}

// LoadState reads persisted state. A missing file is not an error; it
// returns the zero state for first runs.
func LoadState(path string) (State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return State{DeviceIndex: -1}, nil
		}
		return State{}, fmt.Errorf("reading state: %w", err)
	}

	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}, fmt.Errorf("parsing state: %w", err)
	}

	return s, nil
}

// SaveState writes the state atomically, creating parent directories as
// needed.
func SaveState(path string, s State) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating state directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing state: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing state: %w", err)
	}

	return nil
}
