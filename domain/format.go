package domain

import (
	"fmt"
	"math"
	"strings"
)

// FormatMillis renders a catalog track length as m:ss. Unknown lengths are
// shown as N/A.
func FormatMillis(millis float64) string {
	if math.IsNaN(millis) || math.IsInf(millis, 0) {
		return "N/A"
	}
	return minutesSeconds(int64(math.Floor(millis / 1000)))
}

// FormatClock renders a player position or duration in seconds as m:ss. A
// zero or not-yet-known value is shown as 0:00.
func FormatClock(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds == 0 {
		return "0:00"
	}
	return minutesSeconds(int64(math.Floor(seconds)))
}

func minutesSeconds(total int64) string {
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// FilterAlbums keeps albums whose title or artist contains the query,
// ignoring case.
func FilterAlbums(albums []Album, query string) []Album {
	q := strings.ToLower(query)
	if q == "" {
		return albums
	}
	filtered := make([]Album, 0, len(albums))
	for _, album := range albums {
		if strings.Contains(strings.ToLower(album.Title), q) ||
			strings.Contains(strings.ToLower(album.Artist), q) {
			filtered = append(filtered, album)
		}
	}
	return filtered
}

// FilterSingers keeps singers whose name contains the query, ignoring case
func FilterSingers(singers []Singer, query string) []Singer {
	q := strings.ToLower(query)
	if q == "" {
		return singers
	}
	filtered := make([]Singer, 0, len(singers))
	for _, singer := range singers {
		if strings.Contains(strings.ToLower(singer.Name), q) {
			filtered = append(filtered, singer)
		}
	}
	return filtered
}
