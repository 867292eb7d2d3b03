package search

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/yhkl-dev/PreviewCLI/domain"
)

// Searcher runs a catalog search for a term
type Searcher interface {
	SearchMusic(ctx context.Context, term string) ([]domain.Album, error)
}

// Result is the outcome of one committed query. Albums is never nil when
// Err is nil.
type Result struct {
	Query  string
	Albums []domain.Album
	Err    error
}

// Pipeline turns raw search input into at most one live catalog request and
// publishes results only for the query that is still committed.
type Pipeline struct {
	searcher  Searcher
	publish   func(Result)
	debouncer *Debouncer

	root     context.Context
	shutdown context.CancelFunc
	wg       conc.WaitGroup

	mux       sync.Mutex
	committed string
	seq       uint64
	cancel    context.CancelFunc
}

// NewPipeline creates a pipeline. publish is called from background
// goroutines and must not block for long.
func NewPipeline(ctx context.Context, searcher Searcher, delay time.Duration, publish func(Result)) *Pipeline {
	root, shutdown := context.WithCancel(ctx)
	p := &Pipeline{
		searcher: searcher,
		publish:  publish,
		root:     root,
		shutdown: shutdown,
	}
	p.debouncer = NewDebouncer(delay, p.commit)
	return p
}

// Input feeds the latest search box text. Blank text clears the results at
// once; anything else is committed after the debounce delay.
func (p *Pipeline) Input(text string) {
	if strings.TrimSpace(text) != "" {
		p.debouncer.Trigger(text)
		return
	}

	p.debouncer.Cancel()
	p.mux.Lock()
	p.cancelInFlightLocked()
	p.seq++
	p.committed = ""
	p.mux.Unlock()

	p.publish(Result{Query: "", Albums: []domain.Album{}})
}

// Committed returns the query whose results are currently wanted
func (p *Pipeline) Committed() string {
	p.mux.Lock()
	defer p.mux.Unlock()
	return p.committed
}

// Close cancels pending and in-flight searches and waits for them to return
func (p *Pipeline) Close() {
	p.debouncer.Stop()
	p.mux.Lock()
	p.cancelInFlightLocked()
	p.shutdown()
	p.mux.Unlock()
	p.wg.Wait()
}

func (p *Pipeline) commit(query string) {
	p.mux.Lock()
	if p.root.Err() != nil {
		p.mux.Unlock()
		return
	}
	p.cancelInFlightLocked()
	p.seq++
	seq := p.seq
	p.committed = query
	ctx, cancel := context.WithCancel(p.root)
	p.cancel = cancel
	defer p.mux.Unlock()

	p.wg.Go(func() {
		defer cancel()
		albums, err := p.searcher.SearchMusic(ctx, query)

		p.mux.Lock()
		current := seq == p.seq && query == p.committed
		if current {
			p.cancel = nil
		}
		p.mux.Unlock()

		if !current || ctx.Err() != nil {
			log.Printf("[search] discarding stale results for %q", query)
			return
		}
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			log.Printf("[search] %q failed: %v", query, err)
			p.publish(Result{Query: query, Err: err})
			return
		}
		if albums == nil {
			albums = []domain.Album{}
		}
		p.publish(Result{Query: query, Albums: albums})
	})
}

func (p *Pipeline) cancelInFlightLocked() {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}
