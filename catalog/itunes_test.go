package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yhkl-dev/PreviewCLI/domain"
)

const (
	feedTarget   = "https://feed.test/api/v2/us/music/most-played/50/albums.json"
	lookupTarget = "https://itunes.test/lookup"
	searchTarget = "https://itunes.test/search"
)

type relayServer struct {
	*httptest.Server
	hits    atomic.Int32
	targets chan string
	routes  map[string]func(w http.ResponseWriter, target *url.URL)
}

// newRelayServer stands in for the CORS relay: the wrapped target URL arrives
// as the raw query string.
func newRelayServer(t *testing.T) *relayServer {
	rs := &relayServer{
		targets: make(chan string, 16),
		routes:  map[string]func(http.ResponseWriter, *url.URL){},
	}
	rs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rs.hits.Add(1)
		raw, err := url.QueryUnescape(r.URL.RawQuery)
		require.NoError(t, err)
		rs.targets <- raw
		target, err := url.Parse(raw)
		require.NoError(t, err)
		route, ok := rs.routes[target.Scheme+"://"+target.Host+target.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		route(w, target)
	}))
	t.Cleanup(rs.Close)
	return rs
}

func (rs *relayServer) client() *ITunesClient {
	return NewITunesClient(Options{
		RelayPrefix: rs.URL + "/?",
		FeedURL:     feedTarget,
		LookupURL:   lookupTarget,
		SearchURL:   searchTarget,
		SearchLimit: 25,
		Timeout:     2 * time.Second,
	})
}

func TestFetchTopAlbums(t *testing.T) {
	rs := newRelayServer(t)
	rs.routes[feedTarget] = func(w http.ResponseWriter, _ *url.URL) {
		fmt.Fprint(w, `{"feed":{"results":[
			{"id":"1500","name":"Midnight Bloom","artistName":"Luna","artworkUrl100":"https://img.test/a/100x100bb.jpg"},
			{"id":"oops","name":"Broken","artistName":"Nobody","artworkUrl100":""},
			{"id":"1501","name":"Neon Grid","artistName":"Cybersynth","artworkUrl100":"https://img.test/b/cover.jpg"}
		]}}`)
	}

	albums, err := rs.client().FetchTopAlbums(context.Background())
	require.NoError(t, err)
	require.Len(t, albums, 2)

	assert.Equal(t, domain.Album{
		ID: 1500, Title: "Midnight Bloom", Artist: "Luna",
		CoverURL: "https://img.test/a/500x500bb.jpg", Songs: []domain.Song{},
	}, albums[0])
	assert.Equal(t, "https://img.test/b/cover.jpg", albums[1].CoverURL)
	assert.Equal(t, feedTarget, <-rs.targets)
}

func TestFetchAlbumTracksKeepsOnlyTracks(t *testing.T) {
	rs := newRelayServer(t)
	rs.routes[lookupTarget] = func(w http.ResponseWriter, target *url.URL) {
		assert.Equal(t, "77", target.Query().Get("id"))
		assert.Equal(t, "song", target.Query().Get("entity"))
		fmt.Fprint(w, `{"resultCount":4,"results":[
			{"wrapperType":"collection","collectionId":77,"collectionName":"Album"},
			{"wrapperType":"track","trackId":1,"trackName":"One","trackTimeMillis":65000,"previewUrl":"https://audio.test/1.m4a"},
			{"wrapperType":"track","trackId":2,"trackName":"Two","previewUrl":""},
			{"wrapperType":"track","trackId":3,"trackName":"Three","trackTimeMillis":"long"}
		]}`)
	}

	songs, err := rs.client().FetchAlbumTracks(context.Background(), 77)
	require.NoError(t, err)
	assert.Equal(t, []domain.Song{
		{ID: 1, Title: "One", Duration: "1:05", PreviewURL: "https://audio.test/1.m4a"},
		{ID: 2, Title: "Two", Duration: "N/A"},
		{ID: 3, Title: "Three", Duration: "N/A"},
	}, songs)
	assert.True(t, songs[0].Playable())
	assert.False(t, songs[1].Playable())
}

func TestSearchMusicFiltersAlbumCollections(t *testing.T) {
	rs := newRelayServer(t)
	rs.routes[searchTarget] = func(w http.ResponseWriter, target *url.URL) {
		assert.Equal(t, "luna spectre", target.Query().Get("term"))
		assert.Equal(t, "album", target.Query().Get("entity"))
		assert.Equal(t, "25", target.Query().Get("limit"))
		fmt.Fprint(w, `{"results":[
			{"wrapperType":"collection","collectionType":"Album","collectionId":10,"collectionName":"Bloom","artistName":"Luna","artworkUrl100":"https://img.test/100x100.jpg"},
			{"wrapperType":"collection","collectionType":"Compilation","collectionId":11},
			{"wrapperType":"track","trackId":12},
			{"wrapperType":"artist","artistName":"Luna"}
		]}`)
	}

	albums, err := rs.client().SearchMusic(context.Background(), "luna spectre")
	require.NoError(t, err)
	assert.Equal(t, []domain.Album{{
		ID: 10, Title: "Bloom", Artist: "Luna",
		CoverURL: "https://img.test/500x500.jpg", Songs: []domain.Song{},
	}}, albums)
}

func TestSearchMusicBlankTermSkipsNetwork(t *testing.T) {
	rs := newRelayServer(t)
	c := rs.client()

	for _, term := range []string{"", "   ", "\t\n"} {
		albums, err := c.SearchMusic(context.Background(), term)
		require.NoError(t, err)
		assert.NotNil(t, albums)
		assert.Empty(t, albums)
	}
	assert.Equal(t, int32(0), rs.hits.Load())
}

func TestNetworkErrors(t *testing.T) {
	rs := newRelayServer(t)
	rs.routes[feedTarget] = func(w http.ResponseWriter, _ *url.URL) {
		w.WriteHeader(http.StatusBadGateway)
	}
	rs.routes[searchTarget] = func(w http.ResponseWriter, _ *url.URL) {
		fmt.Fprint(w, `{not json`)
	}
	c := rs.client()

	_, err := c.FetchTopAlbums(context.Background())
	require.Error(t, err)
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, http.StatusBadGateway, netErr.Status)
	assert.Equal(t, "top albums", netErr.Op)

	_, err = c.SearchMusic(context.Background(), "x")
	assert.True(t, IsNetworkError(err))

	// lookup has no route registered, so the relay answers 404
	_, err = c.FetchAlbumTracks(context.Background(), 1)
	assert.True(t, IsNetworkError(err))
}

func TestTransportFailureAndCancellation(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	dead.Close()
	c := NewITunesClient(Options{
		RelayPrefix: dead.URL + "/?",
		FeedURL:     feedTarget,
		SearchURL:   searchTarget,
		Timeout:     time.Second,
	})

	_, err := c.FetchTopAlbums(context.Background())
	assert.True(t, IsNetworkError(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.SearchMusic(ctx, "anything")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDirectRequestsWithoutRelay(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/lookup", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Equal(t, "previewcli-test", r.Header.Get("User-Agent"))
		fmt.Fprint(w, `{"results":[{"wrapperType":"track","trackId":5,"trackName":"Solo","trackTimeMillis":0}]}`)
	}))
	defer srv.Close()

	c := NewITunesClient(Options{
		LookupURL: srv.URL + "/lookup",
		Timeout:   time.Second,
		UserAgent: "previewcli-test",
		RateLimit: 100,
	})
	songs, err := c.FetchAlbumTracks(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, []domain.Song{{ID: 5, Title: "Solo", Duration: "0:00"}}, songs)
}

func TestRelayWrap(t *testing.T) {
	r := Relay{Prefix: "https://corsproxy.io/?"}
	assert.Equal(t,
		"https://corsproxy.io/?https%3A%2F%2Fitunes.apple.com%2Fsearch%3Fterm%3Da%20b%26entity%3Dalbum",
		r.Wrap("https://itunes.apple.com/search?term=a b&entity=album"))
	assert.Equal(t, "https://x.test/y", Relay{}.Wrap("https://x.test/y"))
	assert.Equal(t, "p?it's%20(a)*!~%2B", Relay{Prefix: "p?"}.Wrap("it's (a)*!~+"))
}

func TestFetchAlbumTracksSurvivesCancelledCaller(t *testing.T) {
	rs := newRelayServer(t)
	release := make(chan struct{})
	rs.routes[lookupTarget] = func(w http.ResponseWriter, _ *url.URL) {
		<-release
		fmt.Fprint(w, `{"results":[{"wrapperType":"track","trackId":7,"trackName":"Tide","trackTimeMillis":65000,"previewUrl":"https://p.test/7.m4a"}]}`)
	}
	c := rs.client()

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.FetchAlbumTracks(ctx, 7)
		firstErr <- err
	}()
	second := make(chan []domain.Song, 1)
	go func() {
		songs, err := c.FetchAlbumTracks(context.Background(), 7)
		assert.NoError(t, err)
		second <- songs
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	err := <-firstErr
	assert.True(t, IsNetworkError(err))
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
	songs := <-second
	require.Len(t, songs, 1)
	assert.Equal(t, "Tide", songs[0].Title)
	assert.EqualValues(t, 1, rs.hits.Load())
}

func TestUpgradeArtwork(t *testing.T) {
	assert.Equal(t, "https://a/500x500bb.jpg", UpgradeArtwork("https://a/100x100bb.jpg"))
	assert.Equal(t, "https://a/60x60bb.jpg", UpgradeArtwork("https://a/60x60bb.jpg"))
	assert.Equal(t, "", UpgradeArtwork(""))
}
