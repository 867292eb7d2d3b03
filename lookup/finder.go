package lookup

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

// NotFound is the model's answer when it has no link to offer
const NotFound = "NOT_FOUND"

const requestTimeout = 30 * time.Second

// ErrDisabled is reported when no API key is configured
var ErrDisabled = errors.New("full song lookup is disabled: no API key configured")

// AiLookupError reports a failed generative lookup
type AiLookupError struct {
	Title  string
	Artist string
	Err    error
}

func (e *AiLookupError) Error() string {
	return fmt.Sprintf("full song lookup for %q by %q: %v", e.Title, e.Artist, e.Err)
}

func (e *AiLookupError) Unwrap() error {
	return e.Err
}

// Generator produces a text answer for a prompt
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Finder asks a Generator for a link to the full version of a song
type Finder struct {
	gen   Generator
	group singleflight.Group
}

// NewFinder creates a finder. A nil generator yields a disabled finder.
func NewFinder(gen Generator) *Finder {
	return &Finder{gen: gen}
}

// Enabled reports whether lookups can be made
func (f *Finder) Enabled() bool {
	return f.gen != nil
}

// FindFullSong returns a URL, or "" when the model found nothing usable.
// Identical concurrent lookups share one request; a caller that gives up
// does not cancel it for the others.
func (f *Finder) FindFullSong(ctx context.Context, title, artist string) (string, error) {
	if f.gen == nil {
		return "", &AiLookupError{Title: title, Artist: artist, Err: ErrDisabled}
	}

	shared := context.WithoutCancel(ctx)
	ch := f.group.DoChan(title+"\x00"+artist, func() (interface{}, error) {
		reqCtx, cancel := context.WithTimeout(shared, requestTimeout)
		defer cancel()
		return f.gen.Generate(reqCtx, Prompt(title, artist))
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return "", &AiLookupError{Title: title, Artist: artist, Err: ctx.Err()}
	case res = <-ch:
	}
	if res.Err != nil {
		log.Printf("[lookup] %q by %q failed: %v", title, artist, res.Err)
		return "", &AiLookupError{Title: title, Artist: artist, Err: res.Err}
	}

	answer := strings.TrimSpace(res.Val.(string))
	if answer == NotFound || !strings.HasPrefix(answer, "http") {
		log.Printf("[lookup] no usable link for %q by %q", title, artist)
		return "", nil
	}
	return answer, nil
}

// Prompt builds the question sent to the model
func Prompt(title, artist string) string {
	return fmt.Sprintf("Find a publicly available, streamable audio or video URL for the full version of the song %q by %q. "+
		"Prioritize official artist channels on platforms like YouTube or SoundCloud. "+
		"Return ONLY the URL and nothing else. If you cannot find a valid URL, return %q.", title, artist, NotFound)
}
