package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yhkl-dev/PreviewCLI/domain"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// Options configures an iTunes catalog client
type Options struct {
	RelayPrefix string
	FeedURL     string
	LookupURL   string
	SearchURL   string
	SearchLimit int
	Timeout     time.Duration
	RateLimit   float64 // requests per second, <= 0 disables limiting
	UserAgent   string
	HTTPClient  *http.Client
}

// ITunesClient talks to the public iTunes RSS, lookup and search endpoints
type ITunesClient struct {
	httpClient  *http.Client
	relay       Relay
	feedURL     string
	lookupURL   string
	searchURL   string
	searchLimit int
	userAgent   string
	limiter     *rate.Limiter
	lookups     singleflight.Group
}

// NewITunesClient creates a catalog client from opts
func NewITunesClient(opts Options) *ITunesClient {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), int(math.Max(1, math.Ceil(opts.RateLimit))))
	}

	searchLimit := opts.SearchLimit
	if searchLimit <= 0 {
		searchLimit = 50
	}

	return &ITunesClient{
		httpClient:  httpClient,
		relay:       Relay{Prefix: opts.RelayPrefix},
		feedURL:     opts.FeedURL,
		lookupURL:   opts.LookupURL,
		searchURL:   opts.SearchURL,
		searchLimit: searchLimit,
		userAgent:   opts.UserAgent,
		limiter:     limiter,
	}
}

// FetchTopAlbums returns the most-played albums feed in rank order
func (c *ITunesClient) FetchTopAlbums(ctx context.Context) ([]domain.Album, error) {
	var feed feedResponse
	if err := c.getJSON(ctx, "top albums", c.feedURL, &feed); err != nil {
		return nil, err
	}

	albums := make([]domain.Album, 0, len(feed.Feed.Results))
	for _, entry := range feed.Feed.Results {
		id, err := strconv.ParseInt(entry.ID, 10, 64)
		if err != nil {
			log.Printf("[catalog] skipping feed entry with invalid id %q", entry.ID)
			continue
		}
		albums = append(albums, domain.Album{
			ID:       id,
			Title:    entry.Name,
			Artist:   entry.ArtistName,
			CoverURL: UpgradeArtwork(entry.ArtworkURL100),
			Songs:    []domain.Song{},
		})
	}
	return albums, nil
}

// FetchAlbumTracks looks up an album and returns its tracks. The album
// summary record that leads the result set is dropped. Concurrent lookups of
// the same album share one request, which outlives a caller that gives up
// and is bounded by the client timeout instead.
func (c *ITunesClient) FetchAlbumTracks(ctx context.Context, albumID int64) ([]domain.Song, error) {
	key := strconv.FormatInt(albumID, 10)
	shared := context.WithoutCancel(ctx)
	ch := c.lookups.DoChan(key, func() (interface{}, error) {
		params := url.Values{}
		params.Set("id", key)
		params.Set("entity", "song")

		var resp itunesResponse
		if err := c.getJSON(shared, "album tracks", c.lookupURL+"?"+params.Encode(), &resp); err != nil {
			return nil, err
		}
		return mapTracks(resp.Results), nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, &NetworkError{Op: "album tracks", Err: ctx.Err()}
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}

	tracks := res.Val.([]domain.Song)
	songs := make([]domain.Song, len(tracks))
	copy(songs, tracks)
	return songs, nil
}

// SearchMusic runs a free-text album search. A blank term returns no albums
// without touching the network.
func (c *ITunesClient) SearchMusic(ctx context.Context, term string) ([]domain.Album, error) {
	if strings.TrimSpace(term) == "" {
		return []domain.Album{}, nil
	}

	params := url.Values{}
	params.Set("term", term)
	params.Set("entity", "album")
	params.Set("limit", strconv.Itoa(c.searchLimit))

	var resp itunesResponse
	if err := c.getJSON(ctx, "search", c.searchURL+"?"+params.Encode(), &resp); err != nil {
		return nil, err
	}

	albums := make([]domain.Album, 0, len(resp.Results))
	for _, r := range resp.Results {
		if r.WrapperType != "collection" || r.CollectionType != "Album" {
			continue
		}
		albums = append(albums, domain.Album{
			ID:       r.CollectionID,
			Title:    r.CollectionName,
			Artist:   r.ArtistName,
			CoverURL: UpgradeArtwork(r.ArtworkURL100),
			Songs:    []domain.Song{},
		})
	}
	return albums, nil
}

func mapTracks(results []itunesResult) []domain.Song {
	songs := make([]domain.Song, 0, len(results))
	for _, r := range results {
		if r.WrapperType != "track" {
			continue
		}
		songs = append(songs, domain.Song{
			ID:         r.TrackID,
			Title:      r.TrackName,
			Duration:   domain.FormatMillis(parseMillis(r.TrackTimeMS)),
			PreviewURL: r.PreviewURL,
		})
	}
	return songs
}

// parseMillis returns NaN for a missing or non-numeric length
func parseMillis(raw json.RawMessage) float64 {
	var millis float64
	if len(raw) == 0 || json.Unmarshal(raw, &millis) != nil {
		return math.NaN()
	}
	return millis
}

// getJSON performs a relayed GET and decodes the JSON body into out
func (c *ITunesClient) getJSON(ctx context.Context, op, target string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &NetworkError{Op: op, Err: err}
	}

	requestID := uuid.NewString()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.relay.Wrap(target), nil)
	if err != nil {
		return &NetworkError{Op: op, Err: fmt.Errorf("create request failed: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[catalog] %s failed request_id=%s: %v", op, requestID, err)
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	log.Printf("[catalog] %s status=%d request_id=%s took=%s", op, resp.StatusCode, requestID, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &NetworkError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &NetworkError{Op: op, Err: fmt.Errorf("decode response failed: %w", err)}
	}
	return nil
}
