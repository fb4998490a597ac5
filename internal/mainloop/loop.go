// Package mainloop provides the single-threaded dispatch context that owns
// all web-content instance mutation. Engine instances, the pool's idle set,
// and bridge handler registration are only touched from this loop, which is
// why none of them carry locks around their backing state.
package mainloop

import (
	"sync/atomic"
	"time"
)

// Dispatcher schedules work onto the UI-affinity context. Deferred posts back
// the bridge's polling loops; they are timer driven, never blocking waits.
type Dispatcher interface {
	// Post enqueues fn to run on the loop. Posting after the loop stopped is
	// a no-op.
	Post(fn func())
	// PostDelayed schedules fn to be posted after d. The returned cancel
	// function stops delivery if it has not happened yet.
	PostDelayed(d time.Duration, fn func()) (cancel func())
}

// Loop is a serial run loop backed by a single goroutine. It stands in for
// the GTK main loop in headless builds; the webkit_cgo backend swaps in a
// glib-idle dispatcher with the same contract.
type Loop struct {
	tasks   chan func()
	quit    chan struct{}
	stopped atomic.Bool
}

// New creates a loop. Run must be called before posted work executes.
func New() *Loop {
	return &Loop{
		tasks: make(chan func(), 256),
		quit:  make(chan struct{}),
	}
}

// Run processes posted work until Stop is called. It blocks the calling
// goroutine; typically invoked as `go loop.Run()` or as the program's main
// loop.
func (l *Loop) Run() {
	for {
		select {
		case fn := <-l.tasks:
			fn()
		case <-l.quit:
			// Drain what was already enqueued so Stop doesn't drop
			// teardown work posted just before it.
			for {
				select {
				case fn := <-l.tasks:
					fn()
				default:
					return
				}
			}
		}
	}
}

// Stop shuts the loop down. Idempotent.
func (l *Loop) Stop() {
	if l.stopped.Swap(true) {
		return
	}
	close(l.quit)
}

// Post enqueues fn to run on the loop goroutine.
func (l *Loop) Post(fn func()) {
	if fn == nil || l.stopped.Load() {
		return
	}
	select {
	case l.tasks <- fn:
	case <-l.quit:
	}
}

// PostDelayed schedules fn onto the loop after d.
func (l *Loop) PostDelayed(d time.Duration, fn func()) (cancel func()) {
	if fn == nil {
		return func() {}
	}
	timer := time.AfterFunc(d, func() {
		l.Post(fn)
	})
	return func() { timer.Stop() }
}
