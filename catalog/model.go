package catalog

import "encoding/json"

// feedResponse is the most-played albums RSS feed
type feedResponse struct {
	Feed struct {
		Title   string      `json:"title"`
		Results []feedAlbum `json:"results"`
	} `json:"feed"`
}

type feedAlbum struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ArtistName    string `json:"artistName"`
	ArtworkURL100 string `json:"artworkUrl100"`
	ReleaseDate   string `json:"releaseDate"`
}

// itunesResponse is shared by the lookup and search endpoints
type itunesResponse struct {
	ResultCount int            `json:"resultCount"`
	Results     []itunesResult `json:"results"`
}

type itunesResult struct {
	WrapperType    string          `json:"wrapperType"`
	CollectionType string          `json:"collectionType"`
	Kind           string          `json:"kind"`
	CollectionID   int64           `json:"collectionId"`
	CollectionName string          `json:"collectionName"`
	ArtistName     string          `json:"artistName"`
	ArtworkURL100  string          `json:"artworkUrl100"`
	TrackID        int64           `json:"trackId"`
	TrackName      string          `json:"trackName"`
	TrackNumber    int             `json:"trackNumber"`
	TrackTimeMS    json.RawMessage `json:"trackTimeMillis"`
	PreviewURL     string          `json:"previewUrl"`
}
