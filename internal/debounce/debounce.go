// Package debounce coalesces bursts of updates into a single commit.
package debounce

import (
	"sync"
	"time"
)

// Debouncer delays commits per key until the key has been quiet for the
// configured period. Every Update restarts the period, so only the last value
// of a burst is committed. Commits run on timer goroutines.
type Debouncer[K comparable, V any] struct {
	quiet  time.Duration
	commit func(K, V)

	mu      sync.Mutex
	seq     uint64
	pending map[K]*pending[V]
	stopped bool
}

type pending[V any] struct {
	value V
	gen   uint64
	timer *time.Timer
}

// New creates a Debouncer that calls commit after quiet has elapsed without
// an update to the same key.
func New[K comparable, V any](quiet time.Duration, commit func(K, V)) *Debouncer[K, V] {
	return &Debouncer[K, V]{
		quiet:   quiet,
		commit:  commit,
		pending: make(map[K]*pending[V]),
	}
}

// Update replaces the pending value of key and restarts its quiet period.
// After Stop, Update does nothing.
func (d *Debouncer[K, V]) Update(key K, value V) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	p, ok := d.pending[key]
	if ok {
		p.timer.Stop()
	} else {
		p = &pending[V]{}
		d.pending[key] = p
	}
	d.seq++
	gen := d.seq
	p.value = value
	p.gen = gen
	p.timer = time.AfterFunc(d.quiet, func() { d.fire(key, gen) })
}

// fire commits key if gen is still the latest update. A timer that lost the
// race with a newer Update, Flush or Stop is a no-op.
func (d *Debouncer[K, V]) fire(key K, gen uint64) {
	d.mu.Lock()
	p, ok := d.pending[key]
	if d.stopped || !ok || p.gen != gen {
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	value := p.value
	d.mu.Unlock()

	d.commit(key, value)
}

// Pending returns the value waiting to be committed for key.
func (d *Debouncer[K, V]) Pending(key K) (V, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.pending[key]
	if !ok {
		var zero V
		return zero, false
	}
	return p.value, true
}

// Flush commits every pending value immediately.
func (d *Debouncer[K, V]) Flush() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	type entry struct {
		key   K
		value V
	}
	entries := make([]entry, 0, len(d.pending))
	for k, p := range d.pending {
		p.timer.Stop()
		entries = append(entries, entry{key: k, value: p.value})
	}
	clear(d.pending)
	d.mu.Unlock()

	for _, e := range entries {
		d.commit(e.key, e.value)
	}
}

// Stop discards pending values. Timers that fire afterwards do nothing and
// later Updates are ignored.
func (d *Debouncer[K, V]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	for _, p := range d.pending {
		p.timer.Stop()
	}
	clear(d.pending)
}
