// SPDX-License-Identifier: EPL-2.0

// Package lyrics parses LRC lyric files and answers "what line is being
// sung now" queries against the playback clock.
//
// Supported syntax: [ti:] [ar:] [al:] [by:] metadata tags, a global
// [offset:] in milliseconds, and one or more [mm:ss.xx] timestamps per
// line. Lines are sorted by time after parsing, so lookups by playback
// position are a binary search.
package lyrics
