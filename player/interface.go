package player

import "errors"

// ErrInterrupted is returned by Play when a newer command superseded it
// before playback started. Callers treat it as a normal outcome.
var ErrInterrupted = errors.New("play interrupted by a newer command")

// EventKind identifies what an Event reports
type EventKind int

const (
	// EventReady fires once the bound source can start playing
	EventReady EventKind = iota
	// EventTimeUpdate carries the playback position in seconds
	EventTimeUpdate
	// EventDurationKnown carries the source length in seconds
	EventDurationKnown
	// EventEnded fires when the source played to its end
	EventEnded
)

func (k EventKind) String() string {
	switch k {
	case EventReady:
		return "ready"
	case EventTimeUpdate:
		return "time-update"
	case EventDurationKnown:
		return "duration-known"
	case EventEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Event is emitted by an Output. Source is the URL of the file that produced
// the event, so late events from a replaced source can be told apart.
type Event struct {
	Kind   EventKind
	Source string
	Value  float64
}

// Output defines the single audio output the playback engine drives.
// This abstraction keeps the engine independent of the media backend (MPV,
// a test fake, ...).
type Output interface {
	// Load binds a new source. It must not start audio; readiness is
	// reported with EventReady.
	Load(url string) error

	// Play resumes or starts the bound source
	Play() error

	// Pause pauses the bound source
	Pause() error

	// Stop unbinds the current source
	Stop() error

	// Seek moves the playback position to the given second
	Seek(seconds float64) error

	// SetVolume applies a volume level in the range 0.0 - 1.0
	SetVolume(volume float64) error

	// Events returns the channel of output events
	Events() <-chan Event

	// Close releases the backend
	Close() error
}
