// SPDX-License-Identifier: EPL-2.0

// Package playlist supplies the next track to the playback core.
//
// A Playlist is an ordered list with a cursor and a PlayMode deciding how
// track completion advances it: wrap through the list, restart the same
// track, or jump randomly without immediate repeats. Playlists load from
// and save to the M3U format, including #EXTINF duration and title lines.
package playlist
