package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yhkl-dev/PreviewCLI/catalog"
	"github.com/yhkl-dev/PreviewCLI/domain"
	"github.com/yhkl-dev/PreviewCLI/lookup"
	"github.com/yhkl-dev/PreviewCLI/playback"
	"github.com/yhkl-dev/PreviewCLI/player"
)

type fakeCatalog struct {
	mu       sync.Mutex
	top      []domain.Album
	topErr   error
	tracks   map[int64][]domain.Song
	trackErr error
	search   map[string][]domain.Album
	srchErr  error
}

func (f *fakeCatalog) FetchTopAlbums(context.Context) ([]domain.Album, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.top, f.topErr
}

func (f *fakeCatalog) FetchAlbumTracks(_ context.Context, id int64) ([]domain.Song, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tracks[id], f.trackErr
}

func (f *fakeCatalog) SearchMusic(_ context.Context, term string) ([]domain.Album, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.srchErr != nil {
		return nil, f.srchErr
	}
	return f.search[term], nil
}

type nopOutput struct{ events chan player.Event }

func (nopOutput) Load(string) error             { return nil }
func (nopOutput) Play() error                   { return nil }
func (nopOutput) Pause() error                  { return nil }
func (nopOutput) Stop() error                   { return nil }
func (nopOutput) Seek(float64) error            { return nil }
func (nopOutput) SetVolume(float64) error       { return nil }
func (o nopOutput) Events() <-chan player.Event { return o.events }
func (nopOutput) Close() error                  { return nil }

type fakeGenerator struct {
	answer string
	err    error
}

func (g fakeGenerator) Generate(context.Context, string) (string, error) {
	return g.answer, g.err
}

var (
	bloom = domain.Album{ID: 1, Title: "Midnight Bloom", Artist: "Luna", CoverURL: "https://img.test/1.jpg"}
	grid  = domain.Album{ID: 2, Title: "Neon Grid", Artist: "Cybersynth", CoverURL: "https://img.test/2.jpg"}
	dawn  = domain.Album{ID: 3, Title: "Dawn", Artist: "luna ", CoverURL: "https://img.test/3.jpg"}

	bloomTracks = []domain.Song{
		{ID: 11, Title: "Petals", Duration: "0:30", PreviewURL: "https://audio.test/11.m4a"},
		{ID: 12, Title: "Stems", Duration: "0:30", PreviewURL: "https://audio.test/12.m4a"},
	}
)

func newTestStore(t *testing.T, cat catalog.Catalog, gen lookup.Generator) *Store {
	engine := playback.NewEngine(nopOutput{events: make(chan player.Event)}, 1)
	s := New(context.Background(), Options{
		Catalog:  cat,
		Engine:   engine,
		Finder:   lookup.NewFinder(gen),
		Debounce: 10 * time.Millisecond,
		Now:      func() time.Time { return time.UnixMilli(1700000000000) },
	})
	t.Cleanup(s.Close)
	return s
}

func TestLoadTopAlbums(t *testing.T) {
	cat := &fakeCatalog{top: []domain.Album{bloom, grid, dawn}}
	s := newTestStore(t, cat, nil)

	var loading []bool
	s.Subscribe(func(st State) { loading = append(loading, st.LoadingTop) })

	require.NoError(t, s.LoadTopAlbums(context.Background()))
	st := s.State()
	assert.Equal(t, []domain.Album{bloom, grid, dawn}, st.Featured)
	assert.Equal(t, []domain.Singer{
		{ID: 1, Name: "Luna", ImageURL: bloom.CoverURL},
		{ID: 2, Name: "Cybersynth", ImageURL: grid.CoverURL},
	}, st.Singers)
	assert.Empty(t, st.Banner)
	assert.Equal(t, []bool{true, false}, loading)
}

func TestLoadTopAlbumsFailureKeepsPreviousAlbums(t *testing.T) {
	cat := &fakeCatalog{top: []domain.Album{bloom}}
	s := newTestStore(t, cat, nil)
	require.NoError(t, s.LoadTopAlbums(context.Background()))

	cat.mu.Lock()
	cat.topErr = &catalog.NetworkError{Op: "top albums", Status: 503}
	cat.mu.Unlock()

	err := s.LoadTopAlbums(context.Background())
	assert.True(t, catalog.IsNetworkError(err))
	st := s.State()
	assert.Equal(t, MsgTopAlbumsFailed, st.Banner)
	assert.Equal(t, []domain.Album{bloom}, st.Featured)
	assert.False(t, st.LoadingTop)
}

func TestSearchResultsAndFailure(t *testing.T) {
	cat := &fakeCatalog{search: map[string][]domain.Album{"neon": {grid}}}
	s := newTestStore(t, cat, nil)

	s.SetSearchText("neon")
	assert.True(t, s.State().Searching)
	require.Eventually(t, func() bool { return s.State().SearchQuery == "neon" }, time.Second, 5*time.Millisecond)
	st := s.State()
	assert.Equal(t, []domain.Album{grid}, st.SearchResults)
	assert.Equal(t, []domain.Album{grid}, st.Albums())
	assert.False(t, st.Searching)

	cat.mu.Lock()
	cat.srchErr = errors.New("relay down")
	cat.mu.Unlock()
	s.SetSearchText("neo")
	require.Eventually(t, func() bool { return s.State().Notice == MsgSearchFailed }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []domain.Album{grid}, s.State().SearchResults, "previous results stay")
	assert.Equal(t, "neon", s.State().SearchQuery)
	assert.Equal(t, []domain.Album{grid}, s.State().Albums())

	s.SetSearchText("")
	st = s.State()
	assert.Empty(t, st.SearchResults)
	assert.NotNil(t, st.SearchResults)
	assert.Equal(t, "", st.SearchQuery)
}

func TestFirstSearchFailureKeepsFeaturedAlbums(t *testing.T) {
	cat := &fakeCatalog{top: []domain.Album{bloom, grid}, srchErr: errors.New("relay down")}
	s := newTestStore(t, cat, nil)
	require.NoError(t, s.LoadTopAlbums(context.Background()))
	require.Equal(t, []domain.Album{bloom, grid}, s.State().Albums())

	s.SetSearchText("luna")
	require.Eventually(t, func() bool { return s.State().Notice == MsgSearchFailed }, time.Second, 5*time.Millisecond)
	st := s.State()
	assert.False(t, st.Searching)
	assert.Empty(t, st.SearchQuery)
	assert.Equal(t, []domain.Album{bloom, grid}, st.Albums())
}

func TestSubscribersEndOnLatestState(t *testing.T) {
	s := newTestStore(t, &fakeCatalog{}, nil)
	entered := make(chan struct{})
	hold := make(chan struct{})
	var once sync.Once
	var mu sync.Mutex
	var pages []Page
	s.Subscribe(func(st State) {
		if st.Page == PageBrowse {
			once.Do(func() {
				close(entered)
				<-hold
			})
		}
		mu.Lock()
		defer mu.Unlock()
		pages = append(pages, st.Page)
	})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.Navigate(PageBrowse)
	}()
	<-entered
	go func() {
		defer wg.Done()
		s.Navigate(PageCharts)
	}()
	require.Eventually(t, func() bool { return s.State().Page == PageCharts }, time.Second, time.Millisecond)
	close(hold)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, pages)
	assert.Equal(t, PageCharts, pages[len(pages)-1])
}

// slowTracksCatalog holds every track lookup until its context ends
type slowTracksCatalog struct {
	fakeCatalog
	started chan int64
	ended   chan error
}

func (c *slowTracksCatalog) FetchAlbumTracks(ctx context.Context, id int64) ([]domain.Song, error) {
	c.started <- id
	<-ctx.Done()
	c.ended <- ctx.Err()
	return nil, &catalog.NetworkError{Op: "album tracks", Err: ctx.Err()}
}

func TestAlbumLookupAbortedWhenSupersededOrClosed(t *testing.T) {
	cat := &slowTracksCatalog{started: make(chan int64, 2), ended: make(chan error, 2)}
	s := newTestStore(t, cat, nil)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.OpenAlbum(context.Background(), bloom)
	}()
	assert.Equal(t, bloom.ID, <-cat.started)

	go func() {
		defer wg.Done()
		s.OpenAlbum(context.Background(), grid)
	}()
	assert.Equal(t, grid.ID, <-cat.started)
	assert.ErrorIs(t, <-cat.ended, context.Canceled, "newer album cancels the first lookup")
	require.Eventually(t, func() bool {
		d := s.State().Detail
		return d != nil && d.Album.ID == grid.ID && d.Loading
	}, time.Second, time.Millisecond)

	s.CloseAlbum()
	assert.ErrorIs(t, <-cat.ended, context.Canceled, "closing cancels the second lookup")
	wg.Wait()
	assert.Nil(t, s.State().Detail)
}

func TestOpenAlbum(t *testing.T) {
	cat := &fakeCatalog{tracks: map[int64][]domain.Song{1: bloomTracks}}
	s := newTestStore(t, cat, nil)

	s.OpenAlbum(context.Background(), bloom)
	d := s.State().Detail
	require.NotNil(t, d)
	assert.False(t, d.Loading)
	assert.Equal(t, bloomTracks, d.Tracks)
	assert.Empty(t, d.Message)

	s.CloseAlbum()
	assert.Nil(t, s.State().Detail)
}

func TestOpenAlbumWithoutTracks(t *testing.T) {
	for name, cat := range map[string]*fakeCatalog{
		"empty":  {tracks: map[int64][]domain.Song{}},
		"failed": {trackErr: &catalog.NetworkError{Op: "album tracks", Status: 500}},
	} {
		t.Run(name, func(t *testing.T) {
			s := newTestStore(t, cat, nil)
			s.OpenAlbum(context.Background(), grid)
			d := s.State().Detail
			require.NotNil(t, d)
			assert.Equal(t, MsgNoTracks, d.Message)
			assert.Empty(t, d.Tracks)
		})
	}
}

func TestPlayTrackClosesDetail(t *testing.T) {
	cat := &fakeCatalog{tracks: map[int64][]domain.Song{1: bloomTracks}}
	s := newTestStore(t, cat, nil)
	s.OpenAlbum(context.Background(), bloom)

	d := s.State().Detail
	require.NoError(t, s.PlayTrack(d.Tracks[1], d.Album, d.Tracks))
	assert.Nil(t, s.State().Detail)

	snap := s.Engine().Snapshot()
	assert.Equal(t, int64(12), snap.Track.ID)
	assert.Equal(t, int64(1), snap.Playlist.Album.ID)

	silent := domain.Song{ID: 99}
	assert.ErrorIs(t, s.PlayTrack(silent, bloom, nil), playback.ErrNotPlayable)
}

func TestFavorites(t *testing.T) {
	s := newTestStore(t, &fakeCatalog{}, nil)

	assert.True(t, s.ToggleAlbumFavorite(7))
	assert.True(t, s.ToggleSingerFavorite(8))
	st := s.State()
	assert.True(t, st.FavoriteAlbums[7])
	assert.True(t, st.FavoriteSingers[8])

	assert.False(t, s.ToggleAlbumFavorite(7))
	assert.False(t, s.ToggleSingerFavorite(8))
	st = s.State()
	assert.Empty(t, st.FavoriteAlbums)
	assert.Empty(t, st.FavoriteSingers)
}

func TestAddAlbumAndSinger(t *testing.T) {
	s := newTestStore(t, &fakeCatalog{}, nil)

	_, err := s.AddAlbum("  ", "Luna", "https://img.test/x.jpg", SectionNew)
	assert.Error(t, err)

	a1, err := s.AddAlbum("First", "Luna", "https://img.test/a.jpg", SectionNew)
	require.NoError(t, err)
	a2, err := s.AddAlbum("Second", "Orbit", "https://img.test/b.jpg", SectionFeatured)
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000000), a1.ID)
	assert.Equal(t, a1.ID+1, a2.ID, "ids stay unique within one millisecond")

	singer, err := s.AddSinger("Echo", "https://img.test/e.jpg")
	require.NoError(t, err)

	st := s.State()
	assert.Equal(t, []domain.Album{a1}, st.NewReleases)
	assert.Equal(t, []domain.Album{a2}, st.Featured)
	require.Len(t, st.Singers, 3)
	assert.Equal(t, singer, st.Singers[0])

	_, err = s.AddSinger("", "")
	assert.Error(t, err)
}

func TestBrowseFiltersLocally(t *testing.T) {
	cat := &fakeCatalog{top: []domain.Album{bloom, grid}}
	s := newTestStore(t, cat, nil)
	require.NoError(t, s.LoadTopAlbums(context.Background()))

	s.Navigate(PageBrowse)
	s.SetSearchText("LUNA")
	st := s.State()
	assert.Equal(t, PageBrowse, st.Page)
	assert.Equal(t, []domain.Album{bloom}, st.Albums())
	assert.Equal(t, []domain.Singer{{ID: 1, Name: "Luna", ImageURL: bloom.CoverURL}}, st.VisibleSingers())

	s.Navigate(PageCharts)
	assert.Equal(t, []domain.Album{bloom, grid}, s.State().Albums())
	assert.Empty(t, s.State().VisibleSingers())

	s.Navigate(PageContact)
	assert.Empty(t, s.State().Albums())
}

func playing(t *testing.T, s *Store) {
	require.NoError(t, s.PlayTrack(bloomTracks[0], bloom, bloomTracks))
}

func TestFindFullSong(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		s := newTestStore(t, &fakeCatalog{}, fakeGenerator{answer: "https://youtube.test/petals"})
		playing(t, s)
		s.FindFullSong(context.Background())
		st := s.State()
		assert.Equal(t, "https://youtube.test/petals", st.FullSongURL)
		assert.Contains(t, st.Notice, "https://youtube.test/petals")
		assert.False(t, st.FindingFullSong)
	})

	t.Run("not found", func(t *testing.T) {
		s := newTestStore(t, &fakeCatalog{}, fakeGenerator{answer: "NOT_FOUND"})
		playing(t, s)
		s.FindFullSong(context.Background())
		st := s.State()
		assert.Empty(t, st.FullSongURL)
		assert.Contains(t, st.Notice, `"Petals"`)

		s.DismissNotice()
		assert.Empty(t, s.State().Notice)
	})

	t.Run("failure leaves player alone", func(t *testing.T) {
		s := newTestStore(t, &fakeCatalog{}, fakeGenerator{err: errors.New("quota")})
		playing(t, s)
		before := s.Engine().Snapshot()
		s.FindFullSong(context.Background())
		assert.Equal(t, MsgLookupFailed, s.State().Notice)
		assert.Equal(t, before, s.Engine().Snapshot())
	})

	t.Run("no track", func(t *testing.T) {
		s := newTestStore(t, &fakeCatalog{}, fakeGenerator{answer: "https://x.test"})
		s.FindFullSong(context.Background())
		assert.Empty(t, s.State().Notice)
	})
}
