package story

import (
	"sync"

	"github.com/driveframe/storyteller/model"
)

// EventType indicates what kind of story transition happened.
type EventType int

const (
	EventEnter EventType = iota
	EventExit
)

func (e EventType) String() string {
	if e == EventEnter {
		return "enter"
	}
	return "exit"
}

// Event is emitted to subscribers when a story record appears or
// disappears. Refreshing an already-active record emits nothing.
type Event struct {
	Type  EventType
	Story model.CloseToJunction
}

// MetricsRecorder lets the store drive observability gauges directly from
// its mutators. Implemented by the observability collector.
type MetricsRecorder interface {
	RecordStoryTransition(direction string)
	SetActiveStories(n int)
}

// Store holds the published story state: at most one active CloseToJunction
// record at a time. It is thread-safe, although the update cycle itself is
// single-threaded.
type Store struct {
	mu sync.RWMutex

	closeToJunction model.CloseToJunction
	active          bool

	subs    []func(Event)
	metrics MetricsRecorder
}

// NewStore constructs an empty store. metrics may be nil.
func NewStore(metrics MetricsRecorder) *Store {
	return &Store{metrics: metrics}
}

// CloseToJunction returns the active record, if any.
func (s *Store) CloseToJunction() (model.CloseToJunction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closeToJunction, s.active
}

// SetCloseToJunction creates or refreshes the record. An Enter event is
// emitted only on the Absent -> Active transition.
func (s *Store) SetCloseToJunction(record model.CloseToJunction) {
	s.mu.Lock()
	entered := !s.active
	s.closeToJunction = record
	s.active = true
	subs := append([]func(Event){}, s.subs...)
	metrics := s.metrics
	s.mu.Unlock()

	if !entered {
		return
	}
	if metrics != nil {
		metrics.RecordStoryTransition("enter")
		metrics.SetActiveStories(1)
	}
	// Notify subscribers outside the lock to avoid deadlocks.
	for _, sub := range subs {
		sub(Event{Type: EventEnter, Story: record})
	}
}

// ClearCloseToJunction removes the record. An Exit event carrying the last
// published record is emitted only when a record was active.
func (s *Store) ClearCloseToJunction() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	last := s.closeToJunction
	s.closeToJunction = model.CloseToJunction{}
	s.active = false
	subs := append([]func(Event){}, s.subs...)
	metrics := s.metrics
	s.mu.Unlock()

	if metrics != nil {
		metrics.RecordStoryTransition("exit")
		metrics.SetActiveStories(0)
	}
	for _, sub := range subs {
		sub(Event{Type: EventExit, Story: last})
	}
}

// Subscribe registers a callback for story events. It returns an
// unsubscribe function.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
	idx := len(s.subs) - 1

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if idx < 0 || idx >= len(s.subs) {
			return
		}
		s.subs = append(s.subs[:idx], s.subs[idx+1:]...)
		idx = -1
	}
}
