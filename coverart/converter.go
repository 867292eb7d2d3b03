package coverart

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"sync"
	"time"

	"github.com/qeesung/image2ascii/convert"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultWidth  = 25
	DefaultHeight = 12
)

// Converter downloads album covers and renders them as ASCII art. Rendered
// covers are cached by URL for the life of the process.
type Converter struct {
	httpClient *http.Client
	converter  *convert.ImageConverter
	width      int
	height     int

	group singleflight.Group
	mux   sync.RWMutex
	cache map[string]string
}

// NewConverter creates a converter rendering at width x height characters
func NewConverter(width, height int) *Converter {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return &Converter{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		converter: convert.NewImageConverter(),
		width:     width,
		height:    height,
		cache:     make(map[string]string),
	}
}

// Render returns the ASCII rendering of the cover at url. On any failure the
// placeholder is returned together with the error.
func (c *Converter) Render(ctx context.Context, url string) (string, error) {
	if url == "" {
		return Placeholder(), nil
	}

	c.mux.RLock()
	art, ok := c.cache[url]
	c.mux.RUnlock()
	if ok {
		return art, nil
	}

	v, err, _ := c.group.Do(url, func() (interface{}, error) {
		return c.fetch(ctx, url)
	})
	if err != nil {
		return Placeholder(), err
	}

	art = v.(string)
	c.mux.Lock()
	c.cache[url] = art
	c.mux.Unlock()
	return art, nil
}

func (c *Converter) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build cover request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download cover: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("cover download returned status %d", resp.StatusCode)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to decode cover: %w", err)
	}

	opts := convert.DefaultOptions
	opts.FixedWidth = c.width
	opts.FixedHeight = c.height
	opts.Colored = false // tview draws its own colors

	return c.converter.Image2ASCIIString(img, &opts), nil
}

// Placeholder is shown while a cover loads or when it is unavailable
func Placeholder() string {
	return `[darkgray]┌───────────────────────┐
[darkgray]│                       │
[darkgray]│                       │
[darkgray]│        ♫  ♪  ♫        │
[darkgray]│       No  Cover       │
[darkgray]│        ♫  ♪  ♫        │
[darkgray]│                       │
[darkgray]│                       │
[darkgray]└───────────────────────┘`
}
