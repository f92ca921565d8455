package driver

import (
	"fmt"
	"sync/atomic"

	"github.com/nerrad567/gray-logic-gpio/internal/gpio"
)

// Phase is the lifecycle phase of an Instance.
type Phase int32

// Lifecycle phases. Attaching and Detaching are transient and
// single-flight per line; Detached is terminal.
const (
	PhaseUnattached Phase = iota
	PhaseAttaching
	PhaseActive
	PhaseDetaching
	PhaseDetached
)

// String returns the phase name for logs and API payloads.
func (p Phase) String() string {
	switch p {
	case PhaseUnattached:
		return "unattached"
	case PhaseAttaching:
		return "attaching"
	case PhaseActive:
		return "active"
	case PhaseDetaching:
		return "detaching"
	case PhaseDetached:
		return "detached"
	default:
		return fmt.Sprintf("phase(%d)", int32(p))
	}
}

// Config describes one line to attach.
type Config struct {
	// ID is the stable identifier surfaces register under.
	ID string

	// Name is the human-readable line name.
	Name string

	// Pin is the platform pin name passed to the gpio provider.
	Pin string

	// DefaultOn is the level the line is driven to on attach.
	DefaultOn bool
}

// Instance is the aggregate for one attached line: the acquired gpio
// handle, the guarded state register, and the ordered surface
// registrations used for teardown.
//
// Instances are created and destroyed only by the Manager. Surfaces hold
// non-owning references and must treat ErrNotAvailable as the signal that
// the instance is gone.
type Instance struct {
	cfg   Config
	line  gpio.Line
	state *State
	phase atomic.Int32

	// registrations is append-only during attach and consumed in reverse
	// during teardown. Only the attach/detach goroutine touches it.
	registrations []registration
}

// ID returns the line id.
func (inst *Instance) ID() string { return inst.cfg.ID }

// Config returns the attach-time configuration.
func (inst *Instance) Config() Config { return inst.cfg }

// Phase returns the current lifecycle phase.
func (inst *Instance) Phase() Phase { return Phase(inst.phase.Load()) }

// active returns ErrNotAvailable unless the instance is Active.
func (inst *Instance) active() error {
	if Phase(inst.phase.Load()) != PhaseActive {
		return fmt.Errorf("%w: %s is %s", ErrNotAvailable, inst.cfg.ID, inst.Phase())
	}
	return nil
}

// Value returns the stored value. Fails with ErrNotAvailable after detach.
func (inst *Instance) Value() (bool, error) {
	if err := inst.active(); err != nil {
		return false, err
	}
	return inst.state.Get(), nil
}

// SetValue writes the stored value and drives the line.
// Fails with ErrNotAvailable after detach.
func (inst *Instance) SetValue(on bool) error {
	if err := inst.active(); err != nil {
		return err
	}
	return inst.state.Set(on)
}

// Watch registers fn for value-change notifications; see State.Watch.
// Surfaces call this during registration and cancel during unregistration,
// so watchers never outlive the registration that created them.
func (inst *Instance) Watch(fn func(on bool)) (cancel func()) {
	return inst.state.Watch(fn)
}
