package search

import (
	"sync"
	"time"
)

// DefaultDelay is the quiet period before a typed query is committed
const DefaultDelay = 500 * time.Millisecond

// Debouncer delays a value until it has been stable for a fixed delay
type Debouncer struct {
	mux     sync.Mutex
	delay   time.Duration
	fire    func(string)
	timer   *time.Timer
	gen     uint64
	value   string
	stopped bool
}

// NewDebouncer returns a debouncer that calls fire with the latest value once
// delay passes without another Trigger.
func NewDebouncer(delay time.Duration, fire func(string)) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{delay: delay, fire: fire}
}

// Trigger records v and restarts the delay
func (d *Debouncer) Trigger(v string) {
	d.mux.Lock()
	defer d.mux.Unlock()
	if d.stopped {
		return
	}
	d.value = v
	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() { d.expire(gen) })
}

// Cancel drops a pending fire, if any
func (d *Debouncer) Cancel() {
	d.mux.Lock()
	defer d.mux.Unlock()
	d.cancelLocked()
}

// Stop cancels the pending fire and ignores later triggers
func (d *Debouncer) Stop() {
	d.mux.Lock()
	defer d.mux.Unlock()
	d.cancelLocked()
	d.stopped = true
}

// Pending reports whether a fire is scheduled
func (d *Debouncer) Pending() bool {
	d.mux.Lock()
	defer d.mux.Unlock()
	return d.timer != nil
}

func (d *Debouncer) cancelLocked() {
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// expire runs on the timer goroutine. A timer that lost the race against a
// newer Trigger or Cancel sees a different generation and does nothing.
func (d *Debouncer) expire(gen uint64) {
	d.mux.Lock()
	if gen != d.gen || d.stopped {
		d.mux.Unlock()
		return
	}
	d.timer = nil
	v := d.value
	d.mux.Unlock()

	d.fire(v)
}
