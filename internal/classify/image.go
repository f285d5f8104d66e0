package classify

import (
	"strings"
)

const (
	imageCDNBase    = "https://cdn.swipebet.app/series/"
	defaultImageURL = imageCDNBase + "default.png"
)

// ImageURL derives a deterministic card image from the series portion of an
// event ticker (everything before the first '-'), lowercased against a fixed
// CDN path. Markets without a resolvable ticker get the default image.
func ImageURL(eventTicker string) string {
	series := eventTicker
	if i := strings.IndexByte(series, '-'); i >= 0 {
		series = series[:i]
	}
	series = strings.ToLower(strings.TrimSpace(series))
	if series == "" {
		return defaultImageURL
	}
	return imageCDNBase + series + ".png"
}
