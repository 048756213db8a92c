package planning

import (
	"sync"

	"github.com/driveframe/storyteller/model"
)

// Feed is the hand-off point between the planning producer and trajectory
// consumers. It keeps only the latest snapshot; consumers attach a Reader
// once and poll it every cycle.
type Feed struct {
	mu     sync.RWMutex
	latest *model.Trajectory
	has    bool

	subs []func(*model.Trajectory)
}

// NewFeed constructs an empty feed. Latest reports no data until the first
// Publish.
func NewFeed() *Feed {
	return &Feed{}
}

// Publish replaces the latest trajectory snapshot and notifies subscribers.
// The trajectory is treated as read-only after publication.
func (f *Feed) Publish(t *model.Trajectory) {
	f.mu.Lock()
	f.latest = t
	f.has = true
	subs := append([]func(*model.Trajectory){}, f.subs...)
	f.mu.Unlock()

	// Notify subscribers outside the lock to avoid deadlocks.
	for _, sub := range subs {
		sub(t)
	}
}

// Latest returns the most recently published trajectory. ok is false before
// the first Publish.
func (f *Feed) Latest() (t *model.Trajectory, ok bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.latest, f.has
}

// Subscribe registers a callback invoked on every Publish. It returns an
// unsubscribe function.
func (f *Feed) Subscribe(fn func(*model.Trajectory)) (unsubscribe func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs = append(f.subs, fn)
	idx := len(f.subs) - 1

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if idx < 0 || idx >= len(f.subs) {
			return
		}
		f.subs = append(f.subs[:idx], f.subs[idx+1:]...)
		idx = -1
	}
}

// Reader is a consumer-side handle on the feed, registered once at
// initialisation time.
type Reader struct {
	feed *Feed
}

// NewReader registers a reader on the feed.
func (f *Feed) NewReader() *Reader {
	return &Reader{feed: f}
}

// Latest returns the most recently published trajectory, or ok=false when
// the feed has no data yet.
func (r *Reader) Latest() (*model.Trajectory, bool) {
	if r == nil || r.feed == nil {
		return nil, false
	}
	return r.feed.Latest()
}
