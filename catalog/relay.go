package catalog

import (
	"net/url"
	"strings"
)

// Relay rewrites outbound catalog URLs through a CORS relay. The zero value
// sends requests directly.
type Relay struct {
	Prefix string
}

// Wrap returns the URL to request for target
func (r Relay) Wrap(target string) string {
	if r.Prefix == "" {
		return target
	}
	return r.Prefix + encodeURIComponent(target)
}

var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// encodeURIComponent escapes like the browser function of the same name: a
// space becomes %20 and !'()* stay literal.
func encodeURIComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}

// UpgradeArtwork swaps the 100x100 artwork size token for 500x500
func UpgradeArtwork(artworkURL string) string {
	return strings.Replace(artworkURL, "100x100", "500x500", 1)
}
