package playback

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/yhkl-dev/PreviewCLI/domain"
	"github.com/yhkl-dev/PreviewCLI/player"
)

// ErrNotPlayable is returned when a song without a preview is selected
var ErrNotPlayable = errors.New("song has no preview to play")

// State is the engine's playback state
type State int

const (
	// Idle means no track is loaded
	Idle State = iota
	// Loading means a new source is bound and the output is not ready yet
	Loading
	// Playing means the output is ready and the intent is to play
	Playing
	// Paused means the output is ready and the intent is to pause
	Paused
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "unknown"
	}
}

// Snapshot is a copy of the engine state handed to subscribers
type Snapshot struct {
	State           State
	Track           *domain.Song
	Playlist        *domain.Playlist
	Playing         bool // play intent, also true while loading
	Position        float64
	Duration        float64
	Volume          float64
	PlaylistVisible bool
}

// Engine owns the current track, the playlist context and the single audio
// output. All methods are safe for concurrent use.
type Engine struct {
	mux sync.Mutex
	out player.Output

	track    *domain.Song
	playlist *domain.Playlist
	intent   bool

	bound   string // source currently bound to the output
	loading bool   // bound source has not reported ready yet

	position   float64
	duration   float64
	volume     float64
	lastVolume float64

	playlistVisible bool

	subs    map[int]func(Snapshot)
	nextSub int
	version uint64

	notifyMux sync.Mutex
	delivered uint64
}

// NewEngine creates an idle engine driving out at the given volume
func NewEngine(out player.Output, volume float64) *Engine {
	volume = clampVolume(volume)
	e := &Engine{
		out:        out,
		volume:     volume,
		lastVolume: volume,
		subs:       make(map[int]func(Snapshot)),
	}
	if err := out.SetVolume(volume); err != nil {
		log.Printf("[playback] set initial volume: %v", err)
	}
	return e
}

// Subscribe registers fn for every state change and returns a function that
// removes it.
func (e *Engine) Subscribe(fn func(Snapshot)) func() {
	e.mux.Lock()
	defer e.mux.Unlock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	return func() {
		e.mux.Lock()
		defer e.mux.Unlock()
		delete(e.subs, id)
	}
}

// Snapshot returns the current state
func (e *Engine) Snapshot() Snapshot {
	e.mux.Lock()
	defer e.mux.Unlock()
	return e.snapshotLocked()
}

// SelectTrack plays track from album. The playlist context is replaced only
// when album differs from the active one, so picking another song of the
// same album keeps the running playlist.
func (e *Engine) SelectTrack(track domain.Song, album domain.Album, tracklist []domain.Song) error {
	if !track.Playable() {
		return ErrNotPlayable
	}
	e.mutate(func() {
		if e.playlist == nil || e.playlist.Album.ID != album.ID {
			e.playlist = domain.NewPlaylist(album, tracklist)
			log.Printf("[playback] playlist switched to album %d (%d songs)", album.ID, e.playlist.Len())
		}
		e.setTrackLocked(track)
	})
	return nil
}

// SelectTrackFromPlaylist plays track without touching the playlist context
func (e *Engine) SelectTrackFromPlaylist(track domain.Song) error {
	if !track.Playable() {
		return ErrNotPlayable
	}
	e.mutate(func() {
		e.setTrackLocked(track)
	})
	return nil
}

// TogglePlayPause flips the play intent. It does nothing when no track is
// loaded.
func (e *Engine) TogglePlayPause() {
	e.mutate(func() {
		if e.track == nil {
			return
		}
		e.intent = !e.intent
		e.syncOutputLocked()
	})
}

// Pause sets the play intent to paused
func (e *Engine) Pause() {
	e.mutate(func() {
		if e.track == nil || !e.intent {
			return
		}
		e.intent = false
		e.syncOutputLocked()
	})
}

// Next advances to the following playable song, wrapping at the end
func (e *Engine) Next() {
	e.mutate(func() { e.stepLocked(1) })
}

// Previous moves to the preceding playable song, wrapping at the start
func (e *Engine) Previous() {
	e.mutate(func() { e.stepLocked(-1) })
}

// OnTrackEnded auto-advances like Next. The finished source is unbound so a
// one-song playlist starts over.
func (e *Engine) OnTrackEnded() {
	e.mutate(e.trackEndedLocked)
}

// Close clears the track and playlist and returns the engine to Idle
func (e *Engine) Close() {
	e.mutate(func() {
		e.track = nil
		e.playlist = nil
		e.intent = false
		e.playlistVisible = false
		e.syncOutputLocked()
	})
}

// Seek moves the playback position of the loaded track
func (e *Engine) Seek(seconds float64) {
	e.mutate(func() {
		if e.track == nil || e.loading {
			return
		}
		if seconds < 0 {
			seconds = 0
		}
		if e.duration > 0 && seconds > e.duration {
			seconds = e.duration
		}
		if err := e.out.Seek(seconds); err != nil {
			log.Printf("[playback] seek: %v", err)
			return
		}
		e.position = seconds
	})
}

// SetVolume applies a volume in 0.0 - 1.0; non-zero values are remembered
// for unmuting.
func (e *Engine) SetVolume(volume float64) {
	e.mutate(func() {
		volume = clampVolume(volume)
		if volume > 0 {
			e.lastVolume = volume
		}
		e.applyVolumeLocked(volume)
	})
}

// ToggleMute mutes, remembering the current volume, or restores the
// remembered volume (full volume if that was zero).
func (e *Engine) ToggleMute() {
	e.mutate(func() {
		if e.volume > 0 {
			e.lastVolume = e.volume
			e.applyVolumeLocked(0)
			return
		}
		if e.lastVolume > 0 {
			e.applyVolumeLocked(e.lastVolume)
		} else {
			e.applyVolumeLocked(1)
		}
	})
}

// TogglePlaylist shows or hides the up-next panel
func (e *Engine) TogglePlaylist() {
	e.mutate(func() {
		e.playlistVisible = !e.playlistVisible
	})
}

// HandleEvent applies an output event. Events for a source other than the
// bound one are stale and dropped.
func (e *Engine) HandleEvent(ev player.Event) {
	e.mutate(func() {
		if e.track == nil || ev.Source != e.bound {
			return
		}
		switch ev.Kind {
		case player.EventEnded:
			e.trackEndedLocked()
		case player.EventReady:
			if !e.loading {
				return
			}
			e.loading = false
			if e.intent {
				e.playLocked()
			}
		case player.EventTimeUpdate:
			e.position = ev.Value
		case player.EventDurationKnown:
			e.duration = ev.Value
		}
	})
}

// Run pumps output events into the engine until ctx is done or the output
// closes its channel.
func (e *Engine) Run(ctx context.Context) {
	events := e.out.Events()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			e.HandleEvent(ev)
		case <-ctx.Done():
			return
		}
	}
}

func (e *Engine) trackEndedLocked() {
	e.bound = ""
	if e.playlist.Len() == 0 {
		e.intent = false
		return
	}
	e.stepLocked(1)
}

func (e *Engine) stepLocked(dir int) {
	n := e.playlist.Len()
	if n == 0 || e.track == nil {
		return
	}
	current := e.playlist.IndexOf(e.track.ID)
	for k := 1; k <= n; k++ {
		idx := ((current+dir*k)%n + n) % n
		if song := e.playlist.Songs[idx]; song.Playable() {
			e.setTrackLocked(song)
			return
		}
	}
}

func (e *Engine) setTrackLocked(track domain.Song) {
	e.track = &track
	e.intent = true
	e.syncOutputLocked()
}

// syncOutputLocked brings the output in line with the current track and
// intent. A new source is bound and left silent; the pending intent is
// applied when the output reports ready.
func (e *Engine) syncOutputLocked() {
	if e.track == nil {
		if e.bound != "" {
			if err := e.out.Stop(); err != nil {
				log.Printf("[playback] stop: %v", err)
			}
		}
		e.bound = ""
		e.loading = false
		e.position, e.duration = 0, 0
		return
	}

	if e.track.PreviewURL != e.bound {
		e.bound = e.track.PreviewURL
		e.loading = true
		e.position, e.duration = 0, 0
		if err := e.out.Load(e.bound); err != nil {
			log.Printf("[playback] load %q: %v", e.track.Title, err)
			e.bound = ""
			e.loading = false
			e.intent = false
		}
		return
	}

	if e.loading {
		return
	}
	if e.intent {
		e.playLocked()
		return
	}
	if err := e.out.Pause(); err != nil {
		log.Printf("[playback] pause: %v", err)
	}
}

func (e *Engine) playLocked() {
	err := e.out.Play()
	if err == nil || errors.Is(err, player.ErrInterrupted) {
		return
	}
	log.Printf("[playback] play: %v", err)
}

func (e *Engine) applyVolumeLocked(volume float64) {
	e.volume = volume
	if err := e.out.SetVolume(volume); err != nil {
		log.Printf("[playback] set volume: %v", err)
	}
}

func (e *Engine) stateLocked() State {
	switch {
	case e.track == nil:
		return Idle
	case e.loading:
		return Loading
	case e.intent:
		return Playing
	default:
		return Paused
	}
}

func (e *Engine) snapshotLocked() Snapshot {
	var track *domain.Song
	if e.track != nil {
		t := *e.track
		track = &t
	}
	return Snapshot{
		State:           e.stateLocked(),
		Track:           track,
		Playlist:        e.playlist,
		Playing:         e.intent,
		Position:        e.position,
		Duration:        e.duration,
		Volume:          e.volume,
		PlaylistVisible: e.playlistVisible,
	}
}

// mutate runs fn under the lock and notifies subscribers afterwards. A
// snapshot overtaken by a newer one is not delivered.
func (e *Engine) mutate(fn func()) {
	e.mux.Lock()
	fn()
	snap := e.snapshotLocked()
	e.version++
	version := e.version
	subs := make([]func(Snapshot), 0, len(e.subs))
	for _, sub := range e.subs {
		subs = append(subs, sub)
	}
	e.mux.Unlock()

	e.notifyMux.Lock()
	defer e.notifyMux.Unlock()
	if version < e.delivered {
		return
	}
	e.delivered = version
	for _, sub := range subs {
		sub(snap)
	}
}

func clampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
