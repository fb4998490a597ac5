package mainloop

import "sync"

// Coalescer merges bursts of same-key loop tasks so that only the most recent
// callback for a key runs. The pool uses it to collapse a burst of dequeues
// into a single replenish pass per variant.
type Coalescer struct {
	mu        sync.Mutex
	pending   map[string]func()
	post      func(func())
	destroyed bool
}

func NewCoalescer(post func(func())) *Coalescer {
	if post == nil {
		panic("mainloop.NewCoalescer: post function cannot be nil")
	}

	return &Coalescer{
		pending: make(map[string]func()),
		post:    post,
	}
}

// Post schedules fn under key. If a task with the same key is already
// scheduled and has not run, fn replaces it without scheduling again.
func (c *Coalescer) Post(key string, fn func()) {
	if fn == nil || key == "" {
		return
	}

	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return
	}
	_, scheduled := c.pending[key]
	c.pending[key] = fn
	post := c.post
	c.mu.Unlock()

	if scheduled {
		return
	}

	post(func() {
		c.mu.Lock()
		fn := c.pending[key]
		delete(c.pending, key)
		destroyed := c.destroyed
		c.mu.Unlock()

		if destroyed || fn == nil {
			return
		}
		fn()
	})
}

// Destroy drops all pending work and rejects further posts.
func (c *Coalescer) Destroy() {
	c.mu.Lock()
	c.destroyed = true
	c.pending = map[string]func(){}
	c.mu.Unlock()
}
