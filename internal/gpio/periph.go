package gpio

import (
	"fmt"
	"sync"

	periphgpio "periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
)

// PeriphProvider acquires lines through the periph.io pin registry.
//
// periph.io/x/host must be initialised (host.Init) before the first
// Request; main does this once at startup.
type PeriphProvider struct{}

// NewPeriphProvider returns a Provider backed by the periph.io registry.
func NewPeriphProvider() *PeriphProvider {
	return &PeriphProvider{}
}

// Request implements Provider.
//
// Pin names follow the periph registry: "GPIO17", "17" or a platform
// alias. The pin is configured as an output at initialOn before Request
// returns.
func (*PeriphProvider) Request(name string, initialOn bool) (Line, error) {
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("%w: no pin named %q", ErrLineUnavailable, name)
	}
	if err := pin.Out(levelFor(initialOn)); err != nil {
		return nil, fmt.Errorf("%w: configuring %q as output: %w", ErrLineUnavailable, name, err)
	}
	return &periphLine{pin: pin}, nil
}

// periphLine adapts a periph gpio.PinOut to the Line interface.
type periphLine struct {
	pin periphgpio.PinIO

	mu     sync.Mutex
	closed bool
}

func (l *periphLine) Set(on bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return fmt.Errorf("%w: %s is released", ErrLineUnavailable, l.pin.Name())
	}
	if err := l.pin.Out(levelFor(on)); err != nil {
		return fmt.Errorf("driving %s: %w", l.pin.Name(), err)
	}
	return nil
}

func (l *periphLine) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	if err := l.pin.Halt(); err != nil {
		return fmt.Errorf("releasing %s: %w", l.pin.Name(), err)
	}
	return nil
}

func levelFor(on bool) periphgpio.Level {
	if on {
		return periphgpio.High
	}
	return periphgpio.Low
}
