package store

import "github.com/yhkl-dev/PreviewCLI/domain"

// Page is a top-level view of the application
type Page int

const (
	PageHome Page = iota
	PageBrowse
	PageCharts
	PageContact
)

// Pages lists every page in tab order
var Pages = []Page{PageHome, PageBrowse, PageCharts, PageContact}

func (p Page) String() string {
	switch p {
	case PageHome:
		return "Home"
	case PageBrowse:
		return "Browse"
	case PageCharts:
		return "Charts"
	case PageContact:
		return "Contact"
	default:
		return "Unknown"
	}
}

// Section selects the album list an added album goes to
type Section int

const (
	SectionNew Section = iota
	SectionFeatured
)

const (
	// MsgNoTracks is shown in the album detail when nothing can be played
	MsgNoTracks = "No playable tracks available for this album."
	// MsgTopAlbumsFailed is the persistent banner for a failed initial load
	MsgTopAlbumsFailed = "Could not load top albums. Check your connection and try again."
	// MsgSearchFailed is the notice for a failed search
	MsgSearchFailed = "Search failed. Showing previous results."
	// MsgLookupFailed is the notice for a failed full song lookup
	MsgLookupFailed = "There was an error while searching for the full song."
)

// Detail is the open album detail view
type Detail struct {
	Album   domain.Album
	Tracks  []domain.Song
	Loading bool
	Message string
}

// State is a copy of the application state handed to subscribers
type State struct {
	Page Page

	Featured    []domain.Album
	NewReleases []domain.Album
	Singers     []domain.Singer
	LoadingTop  bool

	SearchText    string
	SearchQuery   string // committed query
	SearchResults []domain.Album
	Searching     bool

	FavoriteAlbums  map[int64]bool
	FavoriteSingers map[int64]bool

	FindingFullSong bool
	FullSongURL     string

	// Banner is persistent until the failing load succeeds
	Banner string
	// Notice is shown once and cleared by DismissNotice
	Notice string

	Detail *Detail
}

// Albums returns the album list the current page shows. A committed search
// replaces the home listing, the browse page filters every known album
// locally and charts ranks the featured feed.
func (s State) Albums() []domain.Album {
	switch s.Page {
	case PageHome:
		if s.SearchQuery != "" {
			return s.SearchResults
		}
		return append(append([]domain.Album{}, s.Featured...), s.NewReleases...)
	case PageBrowse:
		all := append(append([]domain.Album{}, s.Featured...), s.NewReleases...)
		return domain.FilterAlbums(all, s.SearchText)
	case PageCharts:
		return s.Featured
	default:
		return nil
	}
}

// VisibleSingers returns the singers matching the search text
func (s State) VisibleSingers() []domain.Singer {
	switch s.Page {
	case PageHome, PageBrowse:
		return domain.FilterSingers(s.Singers, s.SearchText)
	default:
		return nil
	}
}
