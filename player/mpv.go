package player

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/wildeyedskies/go-mpv/mpv"
	"go.uber.org/atomic"
)

const pollInterval = 250 * time.Millisecond

// MPVOutput implements Output using the MPV media player
type MPVOutput struct {
	mpv    *mpv.Mpv
	events chan Event
	cancel context.CancelFunc
	done   chan struct{}

	files    fileTracker
	loaded   *atomic.Bool // the current file is open and ready inside mpv
	duration *atomic.Float64
}

// NewMPVOutput creates and initializes an MPV instance with video disabled
func NewMPVOutput(ctx context.Context) (*MPVOutput, error) {
	m := mpv.Create()
	m.SetOptionString("audio-display", "no")
	m.SetOptionString("video", "no")
	m.SetOptionString("idle", "yes")
	m.SetOptionString("keep-open", "no")

	if err := m.Initialize(); err != nil {
		m.TerminateDestroy()
		return nil, fmt.Errorf("failed to initialize mpv: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	o := &MPVOutput{
		mpv:      m,
		events:   make(chan Event, 64),
		cancel:   cancel,
		done:     make(chan struct{}),
		loaded:   atomic.NewBool(false),
		duration: atomic.NewFloat64(0),
	}
	go o.eventLoop(ctx)
	return o, nil
}

// Load pauses mpv first so the new file stays silent until the engine
// decides to play it.
func (o *MPVOutput) Load(url string) error {
	if err := o.mpv.Command([]string{"set", "pause", "yes"}); err != nil {
		return fmt.Errorf("pause before load: %w", err)
	}
	o.loaded.Store(false)
	o.duration.Store(0)
	o.files.load(url)
	return o.mpv.Command([]string{"loadfile", url, "replace"})
}

// Play resumes the bound source
func (o *MPVOutput) Play() error {
	if !o.loaded.Load() {
		return ErrInterrupted
	}
	return o.mpv.Command([]string{"set", "pause", "no"})
}

// Pause pauses the bound source
func (o *MPVOutput) Pause() error {
	return o.mpv.Command([]string{"set", "pause", "yes"})
}

// Stop unloads the current file
func (o *MPVOutput) Stop() error {
	o.loaded.Store(false)
	o.files.stop()
	return o.mpv.Command([]string{"stop"})
}

// Seek jumps to an absolute position in seconds
func (o *MPVOutput) Seek(seconds float64) error {
	return o.mpv.Command([]string{"seek", strconv.FormatFloat(seconds, 'f', 3, 64), "absolute"})
}

// SetVolume maps 0.0 - 1.0 onto mpv's 0 - 100 scale
func (o *MPVOutput) SetVolume(volume float64) error {
	return o.mpv.Command([]string{"set", "volume", strconv.FormatFloat(volume*100, 'f', 1, 64)})
}

// Events returns the output event channel
func (o *MPVOutput) Events() <-chan Event {
	return o.events
}

// Close stops the event loop and destroys the mpv instance
func (o *MPVOutput) Close() error {
	o.cancel()
	<-o.done
	err := o.mpv.Command([]string{"quit"})
	o.mpv.TerminateDestroy()
	return err
}

func (o *MPVOutput) eventLoop(ctx context.Context) {
	defer close(o.done)
	defer close(o.events)

	lastPoll := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		e := o.mpv.WaitEvent(float32(pollInterval.Seconds()))
		if e != nil {
			o.handleEvent(ctx, e)
		}

		if time.Since(lastPoll) >= pollInterval {
			lastPoll = time.Now()
			o.pollProgress(ctx)
		}
	}
}

func (o *MPVOutput) handleEvent(ctx context.Context, e *mpv.Event) {
	var fe fileEvent
	switch e.Event_Id {
	case mpv.EVENT_START_FILE:
		fe = fileEvent{kind: fileStarted, path: o.mpv.GetPropertyString("path")}
	case mpv.EVENT_FILE_LOADED:
		fe = fileEvent{kind: fileLoaded}
	case mpv.EVENT_END_FILE:
		fe = fileEvent{kind: fileEnded, eof: endedAtEOF(e)}
	case mpv.EVENT_SHUTDOWN:
		log.Println("[player] mpv shut down")
		return
	default:
		return
	}

	ev, ok := o.files.translate(fe)
	if fe.kind == fileEnded {
		o.loaded.Store(false)
	}
	if !ok {
		return
	}
	if ev.Kind == EventReady {
		o.loaded.Store(true)
	}
	o.emit(ctx, ev)
	if ev.Kind == EventReady {
		o.pollDuration(ctx)
	}
}

func endedAtEOF(e *mpv.Event) bool {
	data, ok := e.Data.(mpv.EventEndFile)
	if !ok {
		return false
	}
	if data.Reason == mpv.END_FILE_REASON_ERROR {
		log.Printf("[player] playback failed: %v", data.ErrCode)
	}
	return data.Reason == mpv.END_FILE_REASON_EOF
}

func (o *MPVOutput) pollDuration(ctx context.Context) {
	if o.duration.Load() > 0 {
		return
	}
	if d, ok := o.doubleProperty("duration"); ok && d > 0 {
		o.duration.Store(d)
		o.emit(ctx, Event{Kind: EventDurationKnown, Source: o.files.source(), Value: d})
	}
}

func (o *MPVOutput) pollProgress(ctx context.Context) {
	if !o.loaded.Load() {
		return
	}
	pos, ok := o.doubleProperty("time-pos")
	if !ok {
		return
	}
	// progress is lossy; drop an update rather than block the loop
	select {
	case o.events <- Event{Kind: EventTimeUpdate, Source: o.files.source(), Value: pos}:
	default:
	}
	if o.duration.Load() == 0 {
		o.pollDuration(ctx)
	}
}

func (o *MPVOutput) doubleProperty(name string) (float64, bool) {
	v, err := o.mpv.GetProperty(name, mpv.FORMAT_DOUBLE)
	if err != nil {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

func (o *MPVOutput) emit(ctx context.Context, e Event) {
	select {
	case o.events <- e:
	case <-ctx.Done():
	}
}
