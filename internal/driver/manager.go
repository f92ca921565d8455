package driver

import (
	"fmt"
	"sort"
	"sync"

	"github.com/nerrad567/gray-logic-gpio/internal/gpio"
)

// Logger defines the logging interface used by the Manager.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Manager orchestrates line attach and detach.
//
// It owns every Instance for the duration of its existence and is the
// instance-association mechanism: surfaces and API handlers look lines up
// through Get. Attach and detach for a given id are single-flight; calls
// for different ids may run concurrently.
type Manager struct {
	lines    gpio.Provider
	surfaces []Surface

	mu        sync.RWMutex
	instances map[string]*Instance
	pending   map[string]struct{}

	logger Logger
}

// NewManager creates a Manager that registers the given surfaces, in
// order, against every attached line.
func NewManager(lines gpio.Provider, surfaces ...Surface) *Manager {
	return &Manager{
		lines:     lines,
		surfaces:  surfaces,
		instances: make(map[string]*Instance),
		pending:   make(map[string]struct{}),
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger for the manager.
func (m *Manager) SetLogger(logger Logger) {
	m.logger = logger
}

// Attach acquires the configured line, initialises its state register and
// registers every surface. All-or-nothing: on any failure everything
// acquired so far is released, in reverse order, and the originating error
// is returned. The instance becomes visible through Get only on full
// success.
func (m *Manager) Attach(cfg Config) (*Instance, error) {
	if err := m.reserve(cfg.ID); err != nil {
		return nil, err
	}
	defer m.release(cfg.ID)

	inst := &Instance{cfg: cfg}
	inst.phase.Store(int32(PhaseAttaching))

	line, err := m.lines.Request(cfg.Pin, cfg.DefaultOn)
	if err != nil {
		return nil, fmt.Errorf("attaching %s: %w", cfg.ID, err)
	}
	inst.line = line
	inst.state = newState(line, cfg.DefaultOn)

	for _, s := range m.surfaces {
		unregister, regErr := s.Register(inst)
		if regErr != nil {
			m.logger.Error("surface registration failed",
				"line", cfg.ID,
				"surface", s.Name(),
				"error", regErr,
			)
			if safeErr := inst.line.Set(false); safeErr != nil {
				m.logger.Debug("safe level on rollback failed", "line", cfg.ID, "error", safeErr)
			}
			m.unwind(inst)
			m.releaseLine(inst)
			return nil, fmt.Errorf("attaching %s: registering %s surface: %w", cfg.ID, s.Name(), regErr)
		}
		inst.registrations = append(inst.registrations, registration{
			surface:    s.Name(),
			unregister: unregister,
		})
	}

	inst.phase.Store(int32(PhaseActive))

	m.mu.Lock()
	m.instances[cfg.ID] = inst
	m.mu.Unlock()

	m.logger.Info("line attached",
		"line", cfg.ID,
		"pin", cfg.Pin,
		"default_on", cfg.DefaultOn,
		"surfaces", len(inst.registrations),
	)
	return inst, nil
}

// Detach tears down an attached line: safe level first, surfaces
// unregistered in reverse order, line released. Idempotent: detaching an
// unknown or already detached id is a no-op success, and teardown errors
// are logged rather than propagated so teardown always completes.
func (m *Manager) Detach(id string) error {
	m.mu.Lock()
	inst, ok := m.instances[id]
	if ok {
		delete(m.instances, id)
	}
	m.mu.Unlock()

	if !ok {
		m.logger.Debug("detach of unknown line", "line", id)
		return nil
	}

	inst.phase.Store(int32(PhaseDetaching))

	// Drive the safe level before anything else so the actuator is never
	// left on while surfaces are still being torn down.
	if err := inst.line.Set(false); err != nil {
		m.logger.Warn("driving safe level failed", "line", id, "error", err)
	}

	m.unwind(inst)
	m.releaseLine(inst)

	inst.phase.Store(int32(PhaseDetached))
	m.logger.Info("line detached", "line", id)
	return nil
}

// DetachAll detaches every attached line. Used on shutdown.
func (m *Manager) DetachAll() {
	m.mu.RLock()
	ids := make([]string, 0, len(m.instances))
	for id := range m.instances {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	for _, id := range ids {
		//nolint:errcheck // Detach never fails outward
		m.Detach(id)
	}
}

// Get returns the Active instance for id, or ErrNotAvailable.
func (m *Manager) Get(id string) (*Instance, error) {
	m.mu.RLock()
	inst, ok := m.instances[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotAvailable, id)
	}
	return inst, nil
}

// List returns the attached instances ordered by id.
func (m *Manager) List() []*Instance {
	m.mu.RLock()
	out := make([]*Instance, 0, len(m.instances))
	for _, inst := range m.instances {
		out = append(out, inst)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Count returns the number of attached instances.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.instances)
}

// reserve guards against a duplicate or concurrent attach of the same id.
func (m *Manager) reserve(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.instances[id]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyAttached, id)
	}
	if _, ok := m.pending[id]; ok {
		return fmt.Errorf("%w: %s attach in progress", ErrAlreadyAttached, id)
	}
	m.pending[id] = struct{}{}
	return nil
}

func (m *Manager) release(id string) {
	m.mu.Lock()
	delete(m.pending, id)
	m.mu.Unlock()
}

// unwind unregisters every recorded registration in strict reverse order.
// Failures are logged and skipped so later unregistrations still run.
func (m *Manager) unwind(inst *Instance) {
	for i := len(inst.registrations) - 1; i >= 0; i-- {
		reg := inst.registrations[i]
		if err := reg.unregister(); err != nil {
			m.logger.Warn("surface unregistration failed",
				"line", inst.ID(),
				"surface", reg.surface,
				"error", err,
			)
		}
	}
	inst.registrations = nil
}

// releaseLine closes the handle. Callers drive the safe level first; Close
// itself is idempotent so a failure here never leaks the line.
func (m *Manager) releaseLine(inst *Instance) {
	if err := inst.line.Close(); err != nil {
		m.logger.Warn("line release failed", "line", inst.ID(), "error", err)
	}
}
