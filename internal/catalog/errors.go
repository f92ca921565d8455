package catalog

import "errors"

// Domain errors for the catalog package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, catalog.ErrLineNotFound) {
//	    // handle not found case
//	}
var (
	// ErrLineNotFound is returned when a line id does not exist.
	ErrLineNotFound = errors.New("catalog: line not found")

	// ErrLineExists is returned when creating a line with an id that
	// already exists.
	ErrLineExists = errors.New("catalog: line already exists")

	// ErrPinInUse is returned when creating a line whose pin is already
	// claimed by another definition.
	ErrPinInUse = errors.New("catalog: pin already in use")

	// ErrInvalidLine is returned when definition validation fails.
	ErrInvalidLine = errors.New("catalog: invalid line definition")
)
