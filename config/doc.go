// SPDX-License-Identifier: EPL-2.0

// Package config supplies runtime settings to the playback core: output
// device index, volume, playlist behavior flags, all read from
// environment variables with defaults. Last-played state persists as a
// small JSON file so a restart resumes the previous track and position.
package config
