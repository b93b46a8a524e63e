package cache

import (
	"sync"
	"time"
)

type throttleEntry struct {
	timer     *time.Timer
	seq       uint64
	settled   bool
	settledAt time.Time
}

// Throttler runs callbacks on the trailing edge of a quiet period per key.
// Scheduling a key again before it fires cancels the earlier callback.
type Throttler struct {
	mu      sync.Mutex
	entries map[string]*throttleEntry
	seq     uint64
	stopped bool
}

// NewThrottler creates a Throttler.
func NewThrottler() *Throttler {
	return &Throttler{entries: make(map[string]*throttleEntry)}
}

// Throttle schedules fn to run once interval has passed without another call for key.
func (t *Throttler) Throttle(key string, fn func(), interval time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		return
	}

	e, ok := t.entries[key]
	if !ok {
		e = &throttleEntry{}
		t.entries[key] = e
	}
	if e.timer != nil {
		e.timer.Stop()
	}

	t.seq++
	seq := t.seq
	e.seq = seq
	e.settled = false
	e.timer = time.AfterFunc(interval, func() { t.fire(key, seq, fn) })
}

// Debounce is Throttle under another name; both cancel and reschedule.
func (t *Throttler) Debounce(key string, fn func(), delay time.Duration) {
	t.Throttle(key, fn, delay)
}

// Cancel forgets key and stops its callback if it has not fired yet. It
// reports whether a pending callback was cancelled.
func (t *Throttler) Cancel(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[key]
	if !ok {
		return false
	}
	delete(t.entries, key)
	if e.timer == nil {
		return false
	}
	e.timer.Stop()
	return true
}

func (t *Throttler) fire(key string, seq uint64, fn func()) {
	t.mu.Lock()
	e, ok := t.entries[key]
	if !ok || e.seq != seq || t.stopped {
		t.mu.Unlock()
		return
	}
	e.timer = nil
	e.settled = true
	e.settledAt = time.Now()
	t.mu.Unlock()

	fn()
}

// Pending returns the number of keys with a scheduled callback.
func (t *Throttler) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for _, e := range t.entries {
		if !e.settled {
			n++
		}
	}
	return n
}

// Len returns the number of tracked keys, pending or settled.
func (t *Throttler) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Sweep forgets keys that settled more than maxAge ago.
func (t *Throttler) Sweep(maxAge time.Duration) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for key, e := range t.entries {
		if e.settled && e.settledAt.Before(cutoff) {
			delete(t.entries, key)
			removed++
		}
	}
	return removed
}

// Stop cancels every pending callback. Later calls to Throttle are ignored.
func (t *Throttler) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopped = true
	for key, e := range t.entries {
		if e.timer != nil {
			e.timer.Stop()
		}
		delete(t.entries, key)
	}
}
