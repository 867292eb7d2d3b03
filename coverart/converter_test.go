package coverart

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func coverServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/cover.png" {
			http.NotFound(w, r)
			return
		}
		img := image.NewGray(image.Rect(0, 0, 40, 40))
		for x := 0; x < 20; x++ {
			for y := 0; y < 40; y++ {
				img.Set(x, y, color.White)
			}
		}
		w.Header().Set("Content-Type", "image/png")
		require.NoError(t, png.Encode(w, img))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRenderCachesCover(t *testing.T) {
	var hits atomic.Int32
	srv := coverServer(t, &hits)
	c := NewConverter(10, 5)

	art, err := c.Render(context.Background(), srv.URL+"/cover.png")
	require.NoError(t, err)
	assert.NotEmpty(t, strings.TrimSpace(art))
	assert.NotEqual(t, Placeholder(), art)

	again, err := c.Render(context.Background(), srv.URL+"/cover.png")
	require.NoError(t, err)
	assert.Equal(t, art, again)
	assert.Equal(t, int32(1), hits.Load())
}

func TestRenderFallsBackToPlaceholder(t *testing.T) {
	var hits atomic.Int32
	srv := coverServer(t, &hits)
	c := NewConverter(0, 0)
	assert.Equal(t, DefaultWidth, c.width)

	art, err := c.Render(context.Background(), "")
	assert.NoError(t, err)
	assert.Equal(t, Placeholder(), art)

	art, err = c.Render(context.Background(), srv.URL+"/missing.png")
	assert.Error(t, err)
	assert.Equal(t, Placeholder(), art)
}
