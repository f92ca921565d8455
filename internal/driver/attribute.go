package driver

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// ValueAttribute is the textual read/write protocol for a line's stored
// value. One key, "value": reads return a decimal digit plus newline,
// writes accept any signed decimal integer and coerce nonzero to 1.
type ValueAttribute struct {
	inst *Instance
}

// NewValueAttribute binds the attribute protocol to an instance. Bridges
// that speak the attribute wire format (MQTT commands) use this directly;
// HTTP goes through the AttributeRegistry.
func NewValueAttribute(inst *Instance) *ValueAttribute {
	return &ValueAttribute{inst: inst}
}

// Name returns the attribute key.
func (a *ValueAttribute) Name() string { return "value" }

// Show formats the stored value as "<digit>\n".
// Fails only with ErrNotAvailable once the line is detached.
func (a *ValueAttribute) Show() (string, error) {
	on, err := a.inst.Value()
	if err != nil {
		return "", err
	}
	if on {
		return "1\n", nil
	}
	return "0\n", nil
}

// Store parses text as a signed decimal integer and writes the coerced
// value through the state register. Any nonzero parse, negatives
// included, stores 1; zero stores 0. Parse failures return
// ErrInvalidInput and leave the value unchanged.
func (a *ValueAttribute) Store(text string) error {
	if err := a.inst.active(); err != nil {
		return err
	}
	v, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %q is not a decimal integer", ErrInvalidInput, strings.TrimSpace(text))
	}
	return a.inst.SetValue(v != 0)
}

// AttributeRegistry is the published attribute namespace: line id to value
// attribute. The HTTP API and any in-process client resolve attributes
// here; entries exist exactly while the line's attribute surface
// registration is live.
type AttributeRegistry struct {
	mu     sync.RWMutex
	byLine map[string]*ValueAttribute
}

// NewAttributeRegistry creates an empty registry.
func NewAttributeRegistry() *AttributeRegistry {
	return &AttributeRegistry{byLine: make(map[string]*ValueAttribute)}
}

// Lookup returns the value attribute for a line, or ErrNotAvailable if the
// line is not registered (unknown, detached, or mid-teardown).
func (r *AttributeRegistry) Lookup(lineID string) (*ValueAttribute, error) {
	r.mu.RLock()
	attr, ok := r.byLine[lineID]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: no attributes for %s", ErrNotAvailable, lineID)
	}
	return attr, nil
}

// AttributeSurface registers each attached line's value attribute into a
// shared AttributeRegistry.
type AttributeSurface struct {
	registry *AttributeRegistry
}

// NewAttributeSurface creates the surface backed by registry.
func NewAttributeSurface(registry *AttributeRegistry) *AttributeSurface {
	return &AttributeSurface{registry: registry}
}

// Name implements Surface.
func (*AttributeSurface) Name() string { return "attributes" }

// Register implements Surface. A duplicate line id is a registration
// failure; nothing is recorded for it.
func (s *AttributeSurface) Register(inst *Instance) (func() error, error) {
	s.registry.mu.Lock()
	defer s.registry.mu.Unlock()

	id := inst.ID()
	if _, exists := s.registry.byLine[id]; exists {
		return nil, fmt.Errorf("%w: attributes for %s already registered", ErrRegistration, id)
	}
	s.registry.byLine[id] = NewValueAttribute(inst)

	return func() error {
		s.registry.mu.Lock()
		delete(s.registry.byLine, id)
		s.registry.mu.Unlock()
		return nil
	}, nil
}
