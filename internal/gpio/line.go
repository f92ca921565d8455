package gpio

import "errors"

// Domain errors for the gpio package.
// Check with errors.Is(); callers see them wrapped with pin detail.
var (
	// ErrLineUnavailable is returned when a physical line cannot be acquired,
	// typically because the pin name is unknown on this platform or the pin
	// is held by another consumer.
	ErrLineUnavailable = errors.New("gpio: line unavailable")
)

// Line is an acquired binary output line.
//
// Implementations must be safe for concurrent use; callers serialise Set
// through their own locking, but Close may race with a late Set.
type Line interface {
	// Set drives the line high (true) or low (false).
	Set(on bool) error

	// Close releases the line. Idempotent: second and later calls are no-ops.
	// The caller is responsible for driving the line to its safe level
	// before closing.
	Close() error
}

// Provider acquires lines by platform pin name.
type Provider interface {
	// Request acquires the named line as an output driven to initialOn.
	// Returns ErrLineUnavailable (wrapped) if the pin does not exist or
	// cannot be configured.
	Request(name string, initialOn bool) (Line, error)
}
