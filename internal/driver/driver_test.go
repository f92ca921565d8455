package driver

import (
	"fmt"
	"sync"

	"github.com/nerrad567/gray-logic-gpio/internal/gpio"
)

// fakeLine is a test implementation of gpio.Line that records every level
// change and close.
type fakeLine struct {
	mu     sync.Mutex
	level  bool
	sets   []bool
	closes int
	setErr error
}

func (l *fakeLine) Set(on bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.setErr != nil {
		return l.setErr
	}
	l.level = on
	l.sets = append(l.sets, on)
	return nil
}

func (l *fakeLine) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closes++
	return nil
}

func (l *fakeLine) setCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.sets)
}

func (l *fakeLine) closeCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closes
}

func (l *fakeLine) currentLevel() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// fakeProvider hands out fakeLines and remembers them by pin name.
type fakeProvider struct {
	mu         sync.Mutex
	lines      map[string]*fakeLine
	requestErr error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{lines: make(map[string]*fakeLine)}
}

func (p *fakeProvider) Request(name string, initialOn bool) (gpio.Line, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.requestErr != nil {
		return nil, p.requestErr
	}
	l := &fakeLine{level: initialOn}
	p.lines[name] = l
	return l, nil
}

func (p *fakeProvider) line(name string) *fakeLine {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lines[name]
}

// recordingSurface journals register/unregister calls into a shared log,
// optionally failing registration.
type recordingSurface struct {
	name    string
	failErr error

	mu      *sync.Mutex
	journal *[]string
}

func newJournal() (*sync.Mutex, *[]string) {
	return &sync.Mutex{}, &[]string{}
}

func (s *recordingSurface) Name() string { return s.name }

func (s *recordingSurface) Register(inst *Instance) (func() error, error) {
	if s.failErr != nil {
		return nil, s.failErr
	}
	s.mu.Lock()
	*s.journal = append(*s.journal, "register:"+s.name)
	s.mu.Unlock()

	return func() error {
		s.mu.Lock()
		*s.journal = append(*s.journal, "unregister:"+s.name)
		s.mu.Unlock()
		return nil
	}, nil
}

func journalEntries(mu *sync.Mutex, journal *[]string) []string {
	mu.Lock()
	defer mu.Unlock()
	out := make([]string, len(*journal))
	copy(out, *journal)
	return out
}

func testConfig(id string) Config {
	return Config{
		ID:        id,
		Name:      "Test " + id,
		Pin:       "PIN_" + id,
		DefaultOn: false,
	}
}

var errSurfaceBroken = fmt.Errorf("%w: broken surface", ErrRegistration)
