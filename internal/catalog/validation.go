package catalog

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Validation constants.
const (
	maxNameLength = 100
	maxPinLength  = 32

	// pinPattern matches periph-style pin names: "GPIO17", "17", "PA7",
	// or a registry alias such as "LED1".
	pinPattern = `^[A-Za-z0-9_]+$`
)

var pinRegex = regexp.MustCompile(pinPattern)

// Validate checks a definition before it is persisted or attached.
// Returns ErrInvalidLine wrapped with the failing field.
func Validate(def *LineDefinition) error {
	if def == nil {
		return fmt.Errorf("%w: nil definition", ErrInvalidLine)
	}

	name := strings.TrimSpace(def.Name)
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidLine)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidLine, maxNameLength)
	}

	pin := strings.TrimSpace(def.Pin)
	if pin == "" {
		return fmt.Errorf("%w: pin is required", ErrInvalidLine)
	}
	if len(pin) > maxPinLength {
		return fmt.Errorf("%w: pin exceeds %d characters", ErrInvalidLine, maxPinLength)
	}
	if !pinRegex.MatchString(pin) {
		return fmt.Errorf("%w: pin %q contains invalid characters", ErrInvalidLine, pin)
	}

	return nil
}

// NewID generates a unique line identifier.
func NewID() string {
	return uuid.New().String()
}
