package domain

import "strings"

// Album represents a catalog album. Songs is empty until the tracklist is
// looked up.
type Album struct {
	ID       int64
	Title    string
	Artist   string
	CoverURL string
	Songs    []Song
}

// Song represents a single track with an optional preview clip
type Song struct {
	ID         int64
	Title      string
	Duration   string // m:ss, or N/A
	PreviewURL string
}

// Playable reports whether the song has a preview clip that can be handed to
// the player.
func (s Song) Playable() bool {
	return s.PreviewURL != ""
}

// Singer represents an artist card. IDs are borrowed from the album the
// artist was derived from and are not unique against other artist sources.
type Singer struct {
	ID       int64
	Name     string
	ImageURL string
}

// SingersFromAlbums derives one singer per distinct artist name, in album
// order.
func SingersFromAlbums(albums []Album) []Singer {
	seen := make(map[string]bool, len(albums))
	singers := make([]Singer, 0, len(albums))
	for _, album := range albums {
		key := strings.ToLower(strings.TrimSpace(album.Artist))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		singers = append(singers, Singer{
			ID:       album.ID,
			Name:     album.Artist,
			ImageURL: album.CoverURL,
		})
	}
	return singers
}

// Playlist is the album and song order the player advances through
type Playlist struct {
	Album Album
	Songs []Song
}

// NewPlaylist snapshots the tracklist so later changes to the source album do
// not leak into a running playlist.
func NewPlaylist(album Album, tracklist []Song) *Playlist {
	songs := make([]Song, len(tracklist))
	copy(songs, tracklist)
	album.Songs = nil
	return &Playlist{
		Album: album,
		Songs: songs,
	}
}

// IndexOf returns the position of the song with the given id, or -1
func (p *Playlist) IndexOf(songID int64) int {
	if p == nil {
		return -1
	}
	for i, song := range p.Songs {
		if song.ID == songID {
			return i
		}
	}
	return -1
}

// Len returns the number of songs in the playlist
func (p *Playlist) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Songs)
}
