package customers

import (
	"sync"
	"time"
)

// coalescer collapses triggers arriving within window into a single call of
// fire at the end of the window. A zero window fires on every trigger.
type coalescer struct {
	window time.Duration
	fire   func()

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

func newCoalescer(window time.Duration, fire func()) *coalescer {
	return &coalescer{window: window, fire: fire}
}

func (c *coalescer) Trigger() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	if c.window <= 0 {
		c.mu.Unlock()
		c.fire()
		return
	}
	if c.timer == nil {
		c.timer = time.AfterFunc(c.window, c.flush)
	}
	c.mu.Unlock()
}

func (c *coalescer) flush() {
	c.mu.Lock()
	c.timer = nil
	stopped := c.stopped
	c.mu.Unlock()
	if !stopped {
		c.fire()
	}
}

func (c *coalescer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
