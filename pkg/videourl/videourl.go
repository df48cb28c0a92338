// Package videourl derives canonical YouTube video ids and thumbnail URLs from the
// link shapes people paste into the admin form.
package videourl

import (
	"fmt"
	"regexp"
	"strings"
)

const thumbnailTemplate = "https://img.youtube.com/vi/%s/maxresdefault.jpg"

// Order matters: the first pattern that matches wins.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([^&\n?#]+)`),
	regexp.MustCompile(`youtube\.com/shorts/([^&\n?#]+)`),
}

// ExtractVideoID returns the video id for watch?v=, youtu.be/, embed/ and shorts/ links.
// An empty or unrecognised input is reported with ok=false, never as an error.
func ExtractVideoID(url string) (id string, ok bool) {
	url = strings.TrimSpace(url)
	if url == "" {
		return "", false
	}

	for _, p := range patterns {
		if m := p.FindStringSubmatch(url); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// ThumbnailURL returns the max resolution thumbnail for the video behind url.
// It is absent exactly when ExtractVideoID is absent.
func ThumbnailURL(url string) (string, bool) {
	id, ok := ExtractVideoID(url)
	if !ok {
		return "", false
	}
	return fmt.Sprintf(thumbnailTemplate, id), true
}

// WatchURL returns the canonical watch link for url, used when the player opens a video.
func WatchURL(url string) (string, bool) {
	id, ok := ExtractVideoID(url)
	if !ok {
		return "", false
	}
	return "https://www.youtube.com/watch?v=" + id, true
}
