package cyclectrl

import (
	"sync"
	"time"
)

// Mode describes how the Controller paces update cycles.
type Mode int

const (
	// RealTime fires one cycle per tick interval of wall-clock time.
	RealTime Mode = iota
	// Accelerated fires cycles back-to-back, still advancing the nominal
	// cycle time by Tick each step. Useful for replays and tests.
	Accelerated
)

// Controller drives the per-cycle update loop and notifies registered
// listeners with the cycle index and the nominal cycle time.
type Controller struct {
	mu        sync.RWMutex
	StartTime time.Time
	Tick      time.Duration
	Mode      Mode

	currentCycle int
	currentTime  time.Time

	listeners []func(cycle int, now time.Time)
}

// NewController constructs a controller.
func NewController(start time.Time, tick time.Duration, mode Mode) *Controller {
	return &Controller{
		StartTime:   start,
		Tick:        tick,
		Mode:        mode,
		currentTime: start,
	}
}

// Now returns the nominal time of the most recent cycle.
func (c *Controller) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentTime
}

// CycleCount returns the number of cycles fired so far.
func (c *Controller) CycleCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentCycle
}

// AddListener registers a callback invoked on every cycle.
func (c *Controller) AddListener(fn func(cycle int, now time.Time)) {
	c.listeners = append(c.listeners, fn)
}

// Run executes cycles for the specified nominal duration in a separate
// goroutine and returns a channel closed when the controller finishes.
// In RealTime mode cycles are paced by a ticker; in Accelerated mode they
// run as fast as the listeners allow.
func (c *Controller) Run(duration time.Duration) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		c.mu.Lock()
		now := c.StartTime
		c.currentTime = now
		c.currentCycle = 0
		c.mu.Unlock()

		var ticker *time.Ticker
		if c.Mode == RealTime {
			ticker = time.NewTicker(c.Tick)
			defer ticker.Stop()
		}

		elapsed := time.Duration(0)
		cycle := 0
		for {
			if duration > 0 && elapsed >= duration {
				return
			}

			if ticker != nil {
				<-ticker.C
			}
			now = now.Add(c.Tick)
			elapsed += c.Tick

			c.mu.Lock()
			c.currentTime = now
			c.currentCycle = cycle + 1
			c.mu.Unlock()

			for _, fn := range c.listeners {
				fn(cycle, now)
			}
			cycle++
		}
	}()
	return done
}
