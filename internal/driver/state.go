package driver

import (
	"sync"

	"github.com/nerrad567/gray-logic-gpio/internal/gpio"
)

// State is the guarded on/off register for one line.
//
// Every read and write happens under the mutex, and writes propagate to
// the physical line while the mutex is still held, so the register and
// the line can never diverge from a concurrent reader's perspective.
// Watcher callbacks run after the mutex is released.
type State struct {
	mu   sync.Mutex
	on   bool
	line gpio.Line

	watchMu   sync.Mutex
	watchers  map[int]func(on bool)
	nextWatch int
}

// newState initialises the register to the level the line was acquired at.
func newState(line gpio.Line, initial bool) *State {
	return &State{
		on:       initial,
		line:     line,
		watchers: make(map[int]func(bool)),
	}
}

// Get returns the current value.
func (s *State) Get() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.on
}

// Set writes the value and drives the line to match, under the lock.
// If driving the line fails the register keeps its previous value and the
// error is returned. Writes are last-writer-wins; there is no queueing.
func (s *State) Set(on bool) error {
	s.mu.Lock()
	changed := s.on != on
	if err := s.line.Set(on); err != nil {
		s.mu.Unlock()
		return err
	}
	s.on = on
	s.mu.Unlock()

	if changed {
		s.notify(on)
	}
	return nil
}

// Watch registers fn to run after every value change. The returned cancel
// function removes the watcher; it is safe to call more than once.
//
// Callbacks run synchronously on the writer's goroutine, outside the state
// lock. They must not block for long.
func (s *State) Watch(fn func(on bool)) (cancel func()) {
	s.watchMu.Lock()
	id := s.nextWatch
	s.nextWatch++
	s.watchers[id] = fn
	s.watchMu.Unlock()

	return func() {
		s.watchMu.Lock()
		delete(s.watchers, id)
		s.watchMu.Unlock()
	}
}

// notify invokes a snapshot of the watchers with the new value.
func (s *State) notify(on bool) {
	s.watchMu.Lock()
	fns := make([]func(bool), 0, len(s.watchers))
	for _, fn := range s.watchers {
		fns = append(fns, fn)
	}
	s.watchMu.Unlock()

	for _, fn := range fns {
		fn(on)
	}
}
