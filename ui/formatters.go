package ui

import (
	"fmt"
	"strings"

	"github.com/yhkl-dev/PreviewCLI/domain"
	"github.com/yhkl-dev/PreviewCLI/playback"
	"github.com/yhkl-dev/PreviewCLI/store"
)

// CreateProgressBar creates a visual progress bar
func CreateProgressBar(position, duration float64, width int) string {
	progress := 0.0
	if duration > 0 {
		progress = position / duration
	}
	if progress > 1 {
		progress = 1
	} else if progress < 0 {
		progress = 0
	}

	filled := int(progress * float64(width))
	var bar strings.Builder
	bar.WriteString("[lightgreen]")
	bar.WriteString(strings.Repeat("▓", filled))
	bar.WriteString("[darkgray]")
	bar.WriteString(strings.Repeat("░", width-filled))
	return bar.String() + fmt.Sprintf("[white] %.1f%%", progress*100)
}

// FormatVolume renders the volume as a percentage, or muted
func FormatVolume(volume float64) string {
	if volume <= 0 {
		return "muted"
	}
	return fmt.Sprintf("%.0f%%", volume*100)
}

// FormatStateLabel colors the playback state for the status panel
func FormatStateLabel(state playback.State) string {
	switch state {
	case playback.Loading:
		return "[yellow]loading"
	case playback.Playing:
		return "[lightgreen]playing"
	case playback.Paused:
		return "[yellow]paused"
	default:
		return "[darkgray]idle"
	}
}

// FormatPlayerBar creates the one-line transport display
func FormatPlayerBar(snap playback.Snapshot, width int) string {
	if snap.Track == nil {
		return "\n[darkgray] Nothing playing. Pick an album and press Enter."
	}
	return fmt.Sprintf("\n %s [darkgray]%s/%s [darkgray][vol] [white]%s  %s",
		CreateProgressBar(snap.Position, snap.Duration, width),
		domain.FormatClock(snap.Position), domain.FormatClock(snap.Duration),
		FormatVolume(snap.Volume), FormatStateLabel(snap.State))
}

// FormatNowPlaying creates the now playing panel, with the album cover when
// one has been rendered
func FormatNowPlaying(snap playback.Snapshot, cover string) string {
	if snap.Track == nil {
		return ""
	}
	artist, album := "", ""
	if snap.Playlist != nil {
		artist = snap.Playlist.Album.Artist
		album = snap.Playlist.Album.Title
	}

	position := ""
	if snap.Playlist != nil {
		if idx := snap.Playlist.IndexOf(snap.Track.ID); idx >= 0 {
			position = fmt.Sprintf(" %d/%d", idx+1, snap.Playlist.Len())
		}
	}

	text := fmt.Sprintf(`
[white]Now playing%s:
[lightgreen]%s %s

[gray]Artist: [white]%s
[gray]Album:  [white]%s
[gray]Clip:   [white]%s`,
		position, snap.Track.Title, FormatStateLabel(snap.State), artist, album, snap.Track.Duration)
	if cover != "" {
		text += "\n\n" + cover
	}
	return text
}

// CreateWelcomeMessage creates the welcome screen message
func CreateWelcomeMessage(albums int) string {
	return fmt.Sprintf(`
[lightgreen] Welcome to PreviewCLI
[darkgray][play] 30 second previews from the public catalog

[darkgray]query := "[yellow]something new[darkgray]"
[darkgray][red]func[darkgray] [green]discover[darkgray]([yellow]query[darkgray] [lightblue]string[darkgray]) [][lightblue]Album[darkgray] {
[darkgray]    [red]return[darkgray] search(query)
[darkgray]}

[gray]  Enter (open album) | SPACE (play/pause)
[gray]  n/p (next/prev) | / (search) | f (favorite)
[gray]  1-4 (pages) | u (up next) | ? (help)

[darkgray]// %d albums loaded`, albums)
}

// FormatContactPage is the text of the contact page
func FormatContactPage() string {
	return `
[white::b]Contact Us[-:-:-]

[gray]Have questions or feedback? We'd love to hear from you.

[white]Email:   [lightblue]support@muse.com
[white]Phone:   [white](555) 123-4567
[white]Address: [white]123 Music Lane, Beat City, 90210`
}

// FormatHeader renders the page tabs, highlighting the current page
func FormatHeader(current store.Page) string {
	var b strings.Builder
	b.WriteString("[lightgreen::b] PreviewCLI [-:-:-] ")
	for i, p := range store.Pages {
		if p == current {
			fmt.Fprintf(&b, " [black:lightgreen] %d %s [-:-] ", i+1, p)
		} else {
			fmt.Fprintf(&b, " [gray]%d %s[-] ", i+1, p)
		}
	}
	return b.String()
}

// FavoriteMark renders the favorite column
func FavoriteMark(fav bool) string {
	if fav {
		return "♥"
	}
	return " "
}
