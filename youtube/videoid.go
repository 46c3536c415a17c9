package youtube

import "regexp"

var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/shorts/([A-Za-z0-9_-]{6,})`),
	regexp.MustCompile(`[?&]v=([A-Za-z0-9_-]{6,})`),
	regexp.MustCompile(`youtu\.be/([A-Za-z0-9_-]{6,})`),
}

// ExtractVideoID pulls the video ID out of a watch, shorts, or youtu.be URL.
// Returns "" when no ID is recognizable.
func ExtractVideoID(url string) string {
	if url == "" {
		return ""
	}
	for _, rx := range videoIDPatterns {
		if m := rx.FindStringSubmatch(url); m != nil {
			return m[1]
		}
	}
	return ""
}
