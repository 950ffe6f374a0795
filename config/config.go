// SPDX-License-Identifier: EPL-2.0

package config

import (
	"os"
	"strconv"
)

// Config holds runtime configuration, loaded from environment variables.
type Config struct {
	// DeviceIndex selects the output device; -1 means the host default.
	DeviceIndex int
	// Volume in [0, 1], pre-applied by the caller before samples reach the
	// pipeline.
	Volume float64
	// AutoNext advances to the next playlist entry on track completion.
	AutoNext bool
	// LoopList wraps the playlist instead of stopping at the end.
	LoopList bool
	// RefineDuration enables the probe's exhaustive duration parse for
	// files whose headers omit it.
	RefineDuration bool
	// StatePath is where last-played state is persisted.
	StatePath string
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	return Config{
		DeviceIndex:    envInt("TONEARM_DEVICE_INDEX", -1),
		Volume:         envFloat("TONEARM_VOLUME", 1.0),
		AutoNext:       envBool("TONEARM_AUTO_NEXT", true),
		LoopList:       envBool("TONEARM_LOOP_LIST", false),
		RefineDuration: envBool("TONEARM_REFINE_DURATION", false),
		StatePath:      envStr("TONEARM_STATE_PATH", defaultStatePath()),
	}
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "tonearm-state.json"
	}

	return dir + string(os.PathSeparator) + "tonearm" + string(os.PathSeparator) + "state.json"
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
