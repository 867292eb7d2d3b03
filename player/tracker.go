package player

import "sync"

type fileEventKind int

const (
	fileStarted fileEventKind = iota
	fileLoaded
	fileEnded
)

// fileEvent is the part of an mpv file event the tracker needs. path is only
// set for fileStarted, eof only for fileEnded.
type fileEvent struct {
	kind fileEventKind
	path string
	eof  bool
}

// fileTracker ties mpv's file events to the loadfile that produced them.
// mpv starts files in the order they were loaded and may drop a file that was
// replaced before it started, so each start is matched against the queue of
// pending loads.
type fileTracker struct {
	mux     sync.Mutex
	pending []string // loaded URLs mpv has not started yet
	current string   // URL of the file mpv is on
}

func (t *fileTracker) load(url string) {
	t.mux.Lock()
	defer t.mux.Unlock()
	t.pending = append(t.pending, url)
}

// stop drops the pending loads; mpv clears its playlist on stop
func (t *fileTracker) stop() {
	t.mux.Lock()
	defer t.mux.Unlock()
	t.pending = nil
}

// source returns the file mpv is on
func (t *fileTracker) source() string {
	t.mux.Lock()
	defer t.mux.Unlock()
	return t.current
}

// translate turns a raw file event into an output event. Events of a file
// that a newer load superseded, and ends other than EOF, are dropped.
func (t *fileTracker) translate(fe fileEvent) (Event, bool) {
	t.mux.Lock()
	defer t.mux.Unlock()

	switch fe.kind {
	case fileStarted:
		t.current = fe.path
		for i, url := range t.pending {
			if url == fe.path {
				t.pending = t.pending[i+1:]
				break
			}
		}
		return Event{}, false
	case fileLoaded:
		if t.current == "" || len(t.pending) > 0 {
			return Event{}, false
		}
		return Event{Kind: EventReady, Source: t.current}, true
	case fileEnded:
		ended := t.current
		t.current = ""
		if !fe.eof || ended == "" || len(t.pending) > 0 {
			return Event{}, false
		}
		return Event{Kind: EventEnded, Source: ended}, true
	}
	return Event{}, false
}
