package preview

import (
	"sync"
	"time"
)

// debouncer coalesces bursts of Trigger calls into one signal on C, sent
// once no further Trigger arrived for the quiet window.
type debouncer struct {
	quiet time.Duration
	out   chan struct{}

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

func newDebouncer(quiet time.Duration) *debouncer {
	if quiet <= 0 {
		quiet = 300 * time.Millisecond
	}
	return &debouncer{quiet: quiet, out: make(chan struct{}, 1)}
}

// C delivers debounced signals. It holds at most one pending signal.
func (d *debouncer) C() <-chan struct{} { return d.out }

// Trigger restarts the quiet window.
func (d *debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.quiet, func() {
		select {
		case d.out <- struct{}{}:
		default:
		}
	})
}

// Stop cancels a pending signal; later Triggers are ignored.
func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}
