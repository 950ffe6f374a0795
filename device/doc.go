// SPDX-License-Identifier: EPL-2.0

// Package device selects and drives audio output hardware.
//
// A Host enumerates playback Devices, each of which reports the output
// configurations it supports (channel count, sample-rate range, native
// sample format). Select negotiates a concrete StreamConfig for a source
// using a tiered strategy: exact channel match, smallest channel superset,
// then a scored best-effort fallback that always yields a configuration
// when the device reports at least one.
//
// MalgoHost is the production implementation on top of miniaudio
// (github.com/gen2brain/malgo). The stream callback hands the pipeline a
// float32 buffer and converts to the device's native format as the final
// step, so all mixing arithmetic stays in the normalized float domain.
package device
