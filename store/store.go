package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/yhkl-dev/PreviewCLI/catalog"
	"github.com/yhkl-dev/PreviewCLI/domain"
	"github.com/yhkl-dev/PreviewCLI/lookup"
	"github.com/yhkl-dev/PreviewCLI/playback"
	"github.com/yhkl-dev/PreviewCLI/search"
)

// Options carries the collaborators a Store is built from
type Options struct {
	Catalog   catalog.Catalog
	Engine    *playback.Engine
	Finder    *lookup.Finder
	Favorites *domain.Favorites
	Debounce  time.Duration
	// Now stamps the ids of user-added albums and singers
	Now func() time.Time
}

// Store is the application state container. Views read State snapshots and
// call the methods below; every change is pushed to subscribers.
type Store struct {
	catalog   catalog.Catalog
	engine    *playback.Engine
	finder    *lookup.Finder
	favorites *domain.Favorites
	pipeline  *search.Pipeline
	now       func() time.Time

	mux          sync.Mutex
	state        State
	version      uint64
	addedSing    []domain.Singer
	detailSeq    uint64
	detailCancel context.CancelFunc
	lastID       int64

	subs    map[int]func(State)
	nextSub int

	notifyMux sync.Mutex
	delivered uint64
}

// New creates a store. ctx bounds the lifetime of background searches.
func New(ctx context.Context, opts Options) *Store {
	s := &Store{
		catalog:   opts.Catalog,
		engine:    opts.Engine,
		finder:    opts.Finder,
		favorites: opts.Favorites,
		now:       opts.Now,
		subs:      make(map[int]func(State)),
	}
	if s.favorites == nil {
		s.favorites = domain.NewFavorites()
	}
	if s.finder == nil {
		s.finder = lookup.NewFinder(nil)
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.state.SearchResults = []domain.Album{}
	s.pipeline = search.NewPipeline(ctx, opts.Catalog, opts.Debounce, s.applySearch)
	return s
}

// Engine returns the playback engine the store drives
func (s *Store) Engine() *playback.Engine {
	return s.engine
}

// Close stops background searches
func (s *Store) Close() {
	s.pipeline.Close()
}

// Subscribe registers fn for every state change and returns a function that
// removes it.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mux.Lock()
	defer s.mux.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mux.Lock()
		defer s.mux.Unlock()
		delete(s.subs, id)
	}
}

// State returns a snapshot of the current state
func (s *Store) State() State {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.snapshotLocked()
}

// LoadTopAlbums fetches the featured albums. On failure the previous albums
// stay and a persistent banner is set.
func (s *Store) LoadTopAlbums(ctx context.Context) error {
	s.update(func(st *State) { st.LoadingTop = true })

	albums, err := s.catalog.FetchTopAlbums(ctx)
	if err != nil {
		log.Printf("[store] failed to load top albums: %v", err)
		s.update(func(st *State) {
			st.LoadingTop = false
			st.Banner = MsgTopAlbumsFailed
		})
		return err
	}

	log.Printf("[store] loaded %d top albums", len(albums))
	s.update(func(st *State) {
		st.LoadingTop = false
		st.Banner = ""
		st.Featured = albums
		st.Singers = s.singersLocked()
	})
	return nil
}

// SetSearchText records the search box text and feeds the search pipeline
func (s *Store) SetSearchText(text string) {
	s.update(func(st *State) {
		st.SearchText = text
		st.Searching = strings.TrimSpace(text) != ""
	})
	s.pipeline.Input(text)
}

// applySearch is called by the pipeline for each committed query
func (s *Store) applySearch(r search.Result) {
	s.update(func(st *State) {
		if r.Query != s.pipeline.Committed() {
			return
		}
		st.Searching = false
		if r.Err != nil {
			st.Notice = MsgSearchFailed
			return
		}
		st.SearchQuery = r.Query
		st.SearchResults = r.Albums
	})
}

// OpenAlbum shows the album detail and loads its tracklist. Closing the
// detail or opening another album aborts the lookup.
func (s *Store) OpenAlbum(ctx context.Context, album domain.Album) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var seq uint64
	s.update(func(st *State) {
		s.resetDetailLocked()
		s.detailSeq++
		seq = s.detailSeq
		s.detailCancel = cancel
		st.Detail = &Detail{Album: album, Loading: true}
	})

	tracks, err := s.catalog.FetchAlbumTracks(ctx, album.ID)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("[store] failed to fetch tracks for album %d: %v", album.ID, err)
	}

	s.update(func(st *State) {
		if st.Detail == nil || seq != s.detailSeq {
			return
		}
		s.detailCancel = nil
		detail := &Detail{Album: album, Tracks: tracks}
		if err != nil || len(tracks) == 0 {
			detail.Tracks = nil
			detail.Message = MsgNoTracks
		}
		detail.Album.Songs = detail.Tracks
		st.Detail = detail
	})
}

// CloseAlbum closes the album detail
func (s *Store) CloseAlbum() {
	s.update(func(st *State) {
		s.resetDetailLocked()
		s.detailSeq++
		st.Detail = nil
	})
}

func (s *Store) resetDetailLocked() {
	if s.detailCancel != nil {
		s.detailCancel()
		s.detailCancel = nil
	}
}

// PlayTrack hands the track to the engine with its album as the playlist
// context and closes the album detail.
func (s *Store) PlayTrack(track domain.Song, album domain.Album, tracklist []domain.Song) error {
	if err := s.engine.SelectTrack(track, album, tracklist); err != nil {
		return err
	}
	s.CloseAlbum()
	return nil
}

// ToggleAlbumFavorite flips the favorite mark of an album
func (s *Store) ToggleAlbumFavorite(id int64) bool {
	var fav bool
	s.update(func(*State) { fav = s.favorites.ToggleAlbum(id) })
	return fav
}

// ToggleSingerFavorite flips the favorite mark of a singer
func (s *Store) ToggleSingerFavorite(id int64) bool {
	var fav bool
	s.update(func(*State) { fav = s.favorites.ToggleSinger(id) })
	return fav
}

// AddAlbum prepends a user-made album to the chosen section
func (s *Store) AddAlbum(title, artist, coverURL string, section Section) (domain.Album, error) {
	title, artist, coverURL = strings.TrimSpace(title), strings.TrimSpace(artist), strings.TrimSpace(coverURL)
	if title == "" || artist == "" || coverURL == "" {
		return domain.Album{}, errors.New("please fill out all fields")
	}

	var album domain.Album
	s.update(func(st *State) {
		album = domain.Album{ID: s.nextIDLocked(), Title: title, Artist: artist, CoverURL: coverURL}
		if section == SectionFeatured {
			st.Featured = append([]domain.Album{album}, st.Featured...)
		} else {
			st.NewReleases = append([]domain.Album{album}, st.NewReleases...)
		}
		st.Singers = s.singersLocked()
	})
	return album, nil
}

// AddSinger prepends a user-made singer
func (s *Store) AddSinger(name, imageURL string) (domain.Singer, error) {
	name, imageURL = strings.TrimSpace(name), strings.TrimSpace(imageURL)
	if name == "" || imageURL == "" {
		return domain.Singer{}, errors.New("please fill out all fields")
	}

	var singer domain.Singer
	s.update(func(st *State) {
		singer = domain.Singer{ID: s.nextIDLocked(), Name: name, ImageURL: imageURL}
		s.addedSing = append([]domain.Singer{singer}, s.addedSing...)
		st.Singers = s.singersLocked()
	})
	return singer, nil
}

// FindFullSong asks the finder for the full version of the current track.
// Failures end up in a one-shot notice and never touch the player.
func (s *Store) FindFullSong(ctx context.Context) {
	snap := s.engine.Snapshot()
	if snap.Track == nil {
		return
	}
	title := snap.Track.Title
	artist := ""
	if snap.Playlist != nil {
		artist = snap.Playlist.Album.Artist
	}

	s.update(func(st *State) {
		st.FindingFullSong = true
		st.FullSongURL = ""
	})

	url, err := s.finder.FindFullSong(ctx, title, artist)

	s.update(func(st *State) {
		st.FindingFullSong = false
		switch {
		case err != nil:
			st.Notice = MsgLookupFailed
			if errors.Is(err, lookup.ErrDisabled) {
				st.Notice = "Full song lookup is disabled. Set GEMINI_API_KEY to enable it."
			}
		case url == "":
			st.Notice = fmt.Sprintf("Sorry, an AI-powered search couldn't find a full version of %q. You can still enjoy the preview!", title)
		default:
			st.FullSongURL = url
			st.Notice = fmt.Sprintf("Full version of %q: %s", title, url)
		}
	})
}

// DismissNotice clears the one-shot notice
func (s *Store) DismissNotice() {
	s.update(func(st *State) { st.Notice = "" })
}

// Navigate switches the current page
func (s *Store) Navigate(page Page) {
	s.update(func(st *State) { st.Page = page })
}

// nextIDLocked returns a wall-clock millisecond id that never repeats
func (s *Store) nextIDLocked() int64 {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

func (s *Store) singersLocked() []domain.Singer {
	derived := domain.SingersFromAlbums(append(append([]domain.Album{}, s.state.Featured...), s.state.NewReleases...))
	return append(append([]domain.Singer{}, s.addedSing...), derived...)
}

func (s *Store) snapshotLocked() State {
	st := s.state
	st.FavoriteAlbums = idSet(s.favorites.AlbumIDs())
	st.FavoriteSingers = idSet(s.favorites.SingerIDs())
	if s.state.Detail != nil {
		d := *s.state.Detail
		st.Detail = &d
	}
	return st
}

// update applies fn and hands the new snapshot to subscribers. Snapshots are
// versioned; one that loses the race to a newer one is not delivered, so
// subscribers always end on the latest state.
func (s *Store) update(fn func(*State)) {
	s.mux.Lock()
	fn(&s.state)
	snap := s.snapshotLocked()
	s.version++
	version := s.version
	subs := make([]func(State), 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mux.Unlock()

	s.notifyMux.Lock()
	defer s.notifyMux.Unlock()
	if version < s.delivered {
		return
	}
	s.delivered = version
	for _, sub := range subs {
		sub(snap)
	}
}

func idSet(ids []int64) map[int64]bool {
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
