// SPDX-License-Identifier: EPL-2.0

package lyrics

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Line is one timed lyric line.
type Line struct {
	// Time in seconds from the start of the track, offset already applied.
	Time float64
	Text string
}

// Lyrics is a parsed LRC file: metadata tags plus time-sorted lines.
type Lyrics struct {
	Title  string
	Artist string
	Album  string
	Author string
	// OffsetMillis is the [offset:] tag. Positive values shift lyrics
	// earlier; it is already applied to every Line.Time.
	OffsetMillis int

	lines []Line
}

var (
	timestampRe = regexp.MustCompile(`\[(\d+):(\d{1,2})(?:\.(\d{1,3}))?\]`)
	metadataRe  = regexp.MustCompile(`^\[(ti|ar|al|by|offset):(.*)\]$`)
)

// Parse reads LRC text. Lines may carry several timestamps (a repeated
// chorus appears once in the file); each produces its own Line. Lines
// without a timestamp are skipped.
func Parse(r io.Reader) (*Lyrics, error) {
	l := &Lyrics{}

	type rawLine struct {
		millis int
		text   string
	}
	var raw []rawLine

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if m := metadataRe.FindStringSubmatch(line); m != nil {
			value := strings.TrimSpace(m[2])
			switch m[1] {
			case "ti":
				l.Title = value
			case "ar":
				l.Artist = value
			case "al":
				l.Album = value
			case "by":
				l.Author = value
			case "offset":
				if ms, err := strconv.Atoi(strings.TrimPrefix(value, "+")); err == nil {
					l.OffsetMillis = ms
				}
			}
			continue
		}

		stamps := timestampRe.FindAllStringSubmatch(line, -1)
		if len(stamps) == 0 {
			continue
		}

		text := strings.TrimSpace(timestampRe.ReplaceAllString(line, ""))
		for _, m := range stamps {
			raw = append(raw, rawLine{millis: stampMillis(m), text: text})
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading lyrics: %w", err)
	}

	for _, rl := range raw {
		ms := rl.millis - l.OffsetMillis
		if ms < 0 {
			ms = 0
		}
		l.lines = append(l.lines, Line{Time: float64(ms) / 1000, Text: rl.text})
	}

	sort.SliceStable(l.lines, func(i, j int) bool {
		return l.lines[i].Time < l.lines[j].Time
	})

	return l, nil
}

// stampMillis converts a timestamp match to milliseconds, normalizing the
// fractional part: one digit is tenths, two are centiseconds, three are
// milliseconds.
func stampMillis(m []string) int {
	minutes, _ := strconv.Atoi(m[1])
	seconds, _ := strconv.Atoi(m[2])

	millis := (minutes*60 + seconds) * 1000

	if m[3] != "" {
		frac, _ := strconv.Atoi(m[3])
		switch len(m[3]) {
		case 1:
			millis += frac * 100
		case 2:
			millis += frac * 10
		default:
			millis += frac
		}
	}

	return millis
}

// Load parses the LRC file at path.
func Load(path string) (*Lyrics, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening lyrics: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Lines returns the time-sorted lines.
func (l *Lyrics) Lines() []Line {
	out := make([]Line, len(l.lines))
	copy(out, l.lines)
	return out
}

// LineAt returns the line being sung at t seconds: the last line whose
// time is not after t. ok is false before the first line starts.
func (l *Lyrics) LineAt(t float64) (line Line, index int, ok bool) {
	i := sort.Search(len(l.lines), func(i int) bool {
		return l.lines[i].Time > t
	})

	if i == 0 {
		return Line{}, 0, false
	}

	return l.lines[i-1], i - 1, true
}

// Between returns the lines with from <= Time < to, for rendering a
// scrolling window.
func (l *Lyrics) Between(from, to float64) []Line {
	var out []Line
	for _, line := range l.lines {
		if line.Time >= from && line.Time < to {
			out = append(out, line)
		}
	}
	return out
}

// Discover returns the sibling .lrc path for a track ("dir/song.mp3" ->
// "dir/song.lrc") if it exists.
func Discover(trackPath string) (string, bool) {
	base := strings.TrimSuffix(trackPath, filepath.Ext(trackPath))
	candidate := base + ".lrc"

	if _, err := os.Stat(candidate); err != nil {
		return "", false
	}

	return candidate, true
}
