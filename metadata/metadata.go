// Package metadata composes the YouTube title, description, and tag list
// for a manifest item, applying the platform's length limits.
package metadata

import (
	"regexp"
	"strings"
	"unicode"

	"ytpost/manifest"
)

// Platform limits. The description cap is kept well below YouTube's actual
// maximum to stay readable.
const (
	TitleMax       = 100
	DescriptionMax = 5000

	hookMax = 180
	restMax = 800
	tipMax  = 240

	maxHashtags = 3
	maxTags     = 8
)

var (
	spaceRe    = regexp.MustCompile(`\s+`)
	sentenceRe = regexp.MustCompile(`[.!?]\s+`)
	hashtagRe  = regexp.MustCompile(`[^a-z0-9]+`)
)

// Title returns the item title trimmed and truncated to the platform limit.
func Title(raw string) string {
	return truncate(raw, TitleMax)
}

// Description builds the video description: a short hook line, the
// destination link on line two so it shows without expanding, the remaining
// copy, an optional tip derived from the alt text, and a small hashtag row.
func Description(it manifest.Item) string {
	summary, rest := splitSummaryRest(it.Description)
	if summary == "" {
		summary = it.Title
	}
	summary = truncate(summary, hookMax)

	// Alt text becomes a tip line only when it adds information.
	extra := ""
	if it.Alt != "" {
		altClean := spaceRe.ReplaceAllString(strings.TrimSpace(it.Alt), " ")
		if altClean != "" && !strings.Contains(strings.ToLower(it.Description), strings.ToLower(altClean)) {
			extra = "Tip: " + altClean + "."
		}
	}

	lines := []string{summary}

	if it.DestinationURL != "" {
		lines = append(lines, it.DestinationURL, "")
	}
	if rest != "" {
		lines = append(lines, truncate(rest, restMax), "")
	}
	if extra != "" {
		lines = append(lines, truncate(extra, tipMax), "")
	}

	// More than three hashtags starts to look spammy on Shorts.
	if tags := hashtags(it); len(tags) > 0 {
		lines = append(lines, strings.Join(tags, " "))
	}

	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	return truncate(strings.Join(lines, "\n"), DescriptionMax)
}

// Tags builds the video tag list from the manifest hints plus the configured
// extras, deduplicated case-insensitively and capped.
func Tags(it manifest.Item, extra []string) []string {
	raw := append([]string{it.Tag, it.Action}, extra...)

	var out []string
	for _, t := range raw {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		dup := false
		for _, have := range out {
			if strings.EqualFold(have, t) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, t)
		}
		if len(out) >= maxTags {
			break
		}
	}
	return out
}

func hashtags(it manifest.Item) []string {
	var out []string
	for _, t := range []string{it.Tag, it.Action, "sanding"} {
		h := hashtagify(t)
		if h == "" {
			continue
		}
		dup := false
		for _, have := range out {
			if have == h {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, h)
		}
		if len(out) >= maxHashtags {
			break
		}
	}
	return out
}

func hashtagify(s string) string {
	s = hashtagRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "")
	if s == "" {
		return ""
	}
	return "#" + s
}

// splitSummaryRest splits text at the first sentence boundary, after
// collapsing internal whitespace.
func splitSummaryRest(text string) (string, string) {
	t := spaceRe.ReplaceAllString(strings.TrimSpace(text), " ")
	if t == "" {
		return "", ""
	}
	loc := sentenceRe.FindStringIndex(t)
	if loc == nil {
		return t, ""
	}
	return t[:loc[0]+1], strings.TrimSpace(t[loc[1]:])
}

// truncate trims the string and cuts it to limit runes, ending with an
// ellipsis when anything was removed.
func truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	cut := strings.TrimRightFunc(string(r[:limit-1]), unicode.IsSpace)
	return cut + "…"
}
