// SPDX-License-Identifier: EPL-2.0

package playlist

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Load reads an M3U or extended M3U playlist. Relative entry paths are
// resolved against the playlist file's directory. Unknown directives are
// skipped.
func Load(path string) (*Playlist, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening playlist: %w", err)
	}
	defer f.Close()

	base := filepath.Dir(path)
	p := New()

	var pending Item

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "#") {
			if dur, title, ok := parseExtInf(line); ok {
				pending.Duration = dur
				pending.Title = title
			}
			continue
		}

		if !filepath.IsAbs(line) {
			line = filepath.Join(base, line)
		}

		pending.Path = line
		p.Add(pending)
		pending = Item{}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading playlist: %w", err)
	}

	return p, nil
}

// parseExtInf parses "#EXTINF:<seconds>,<title>". Seconds may be -1 or
// fractional; non-positive values mean unknown.
func parseExtInf(line string) (duration float64, title string, ok bool) {
	rest, found := strings.CutPrefix(line, "#EXTINF:")
	if !found {
		return 0, "", false
	}

	durPart, titlePart, _ := strings.Cut(rest, ",")

	dur, err := strconv.ParseFloat(strings.TrimSpace(durPart), 64)
	if err != nil || dur < 0 {
		dur = 0
	}

	return dur, strings.TrimSpace(titlePart), true
}

// Save writes the playlist in extended M3U form.
func (p *Playlist) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating playlist: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, "#EXTM3U")

	for _, item := range p.items {
		title := item.Title
		if title == "" {
			title = strings.TrimSuffix(filepath.Base(item.Path), filepath.Ext(item.Path))
		}

		seconds := int(item.Duration)
		if item.Duration <= 0 {
			seconds = -1
		}

		fmt.Fprintf(w, "#EXTINF:%d,%s\n", seconds, title)
		fmt.Fprintln(w, item.Path)
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing playlist: %w", err)
	}

	return nil
}
