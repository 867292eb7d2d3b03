package catalog

import (
	"context"

	"github.com/yhkl-dev/PreviewCLI/domain"
)

// Catalog is the remote music catalog the application browses
type Catalog interface {
	FetchTopAlbums(ctx context.Context) ([]domain.Album, error)
	FetchAlbumTracks(ctx context.Context, albumID int64) ([]domain.Song, error)
	SearchMusic(ctx context.Context, term string) ([]domain.Album, error)
}
