package driver

import "errors"

// Domain errors for the driver package.
//
// Check with errors.Is():
//
//	if errors.Is(err, driver.ErrNotAvailable) {
//	    // line detached between lookup and use
//	}
var (
	// ErrNotAvailable is returned by surface operations issued against a
	// detached (or never attached) line.
	ErrNotAvailable = errors.New("driver: line not available")

	// ErrInvalidInput is returned when a client payload fails protocol-level
	// validation (non-numeric attribute text, empty stream write). The
	// stored value is never modified on this path.
	ErrInvalidInput = errors.New("driver: invalid input")

	// ErrTransportFault marks a failure moving bytes between a client and a
	// surface (socket copy error, truncated HTTP body). Distinct from
	// ErrInvalidInput: the payload never arrived intact.
	ErrTransportFault = errors.New("driver: transport fault")

	// ErrRegistration is returned when a surface cannot allocate its
	// registration (duplicate line id, exhausted resources). During attach
	// it triggers a full rollback.
	ErrRegistration = errors.New("driver: surface registration failed")

	// ErrAlreadyAttached is returned when attaching a line id that is
	// already attached or mid-attach.
	ErrAlreadyAttached = errors.New("driver: line already attached")
)
