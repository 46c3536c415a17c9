// Package manifest reads candidate video descriptions from a directory of
// JSON manifest files.
//
// Two formats are accepted: the current one, a top-level "pins" array with
// per-pin status/destination/alt fields, and the legacy one, a top-level
// "items" array with just url/title/description.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Item is one candidate video read from a manifest file.
type Item struct {
	Manifest       string // manifest file name, e.g. "wood.json"
	Action         string // manifest-level action hint
	Tag            string // manifest-level tag hint
	VideoURL       string
	Filename       string
	Title          string
	Description    string
	DestinationURL string
	Alt            string
	Status         string
}

// Ready reports whether the item is marked ready for posting.
// An empty status counts as ready.
func (it Item) Ready() bool {
	return it.Status == "" || strings.EqualFold(it.Status, "ready")
}

type rawPin struct {
	Status      string `json:"status"`
	VideoURL    string `json:"video_url"`
	Filename    string `json:"filename"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Alt         string `json:"alt"`
	Destination *struct {
		URL string `json:"url"`
	} `json:"destination"`
}

type rawManifest struct {
	Action string    `json:"action"`
	Tag    string    `json:"tag"`
	Pins   []*rawPin `json:"pins"`
	Items  []*rawPin `json:"items"`
}

// ReadFile parses one manifest file. Pins without a video URL are skipped.
func ReadFile(path string) ([]Item, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m rawManifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}

	pins := m.Pins
	legacy := false
	if pins == nil {
		pins = m.Items
		legacy = true
	}
	if pins == nil {
		return nil, fmt.Errorf("%s: expected top-level \"pins\" or \"items\" array", filepath.Base(path))
	}

	name := filepath.Base(path)
	var out []Item
	for _, p := range pins {
		if p == nil {
			continue
		}

		videoURL := strings.TrimSpace(p.VideoURL)
		if videoURL == "" {
			continue
		}

		it := Item{
			Manifest:    name,
			VideoURL:    videoURL,
			Filename:    strings.TrimSpace(p.Filename),
			Title:       strings.TrimSpace(p.Title),
			Description: strings.TrimSpace(p.Description),
		}
		if it.Filename == "" {
			it.Filename = InferFilename(videoURL)
		}
		if !legacy {
			it.Action = strings.TrimSpace(m.Action)
			it.Tag = strings.TrimSpace(m.Tag)
			it.Alt = strings.TrimSpace(p.Alt)
			it.Status = strings.TrimSpace(p.Status)
			if p.Destination != nil {
				it.DestinationURL = strings.TrimSpace(p.Destination.URL)
			}
		}

		out = append(out, it)
	}

	return out, nil
}

// ReadDir reads every manifest in dir, visiting the named files in the given
// order first, then any remaining *.json files sorted by name. Named files
// that do not exist are skipped. A missing directory yields no items.
func ReadDir(dir string, order []string) ([]Item, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read manifest dir: %w", err)
	}

	present := make(map[string]bool)
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			present[e.Name()] = true
		}
	}

	ordered := make([]string, 0, len(present))
	seen := make(map[string]bool)
	for _, name := range order {
		if present[name] && !seen[name] {
			ordered = append(ordered, name)
			seen[name] = true
		}
	}
	var extra []string
	for name := range present {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	ordered = append(ordered, extra...)

	var out []Item
	for _, name := range ordered {
		items, err := ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		out = append(out, items...)
	}
	return out, nil
}

// InferFilename derives a local file name from a media URL, falling back to
// "video.mp4" when the URL has no usable path segment.
func InferFilename(videoURL string) string {
	s := videoURL
	if i := strings.IndexByte(s, '?'); i >= 0 {
		s = s[:i]
	}
	if i := strings.IndexByte(s, '#'); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimRight(s, "/")
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		s = s[i+1:]
	}
	if s == "" {
		return "video.mp4"
	}
	return s
}
