package catalog

import (
	"time"

	"github.com/nerrad567/gray-logic-gpio/internal/driver"
)

// LineDefinition describes one GPIO line in the catalogue.
// This matches the lines table in migrations/20260830_100000_initial_schema.up.sql.
type LineDefinition struct {
	// Identity
	ID   string `json:"id"`
	Name string `json:"name"`

	// Pin is the platform pin name (e.g. "GPIO17") passed to the gpio
	// provider on attach.
	Pin string `json:"pin"`

	// DefaultOn is the level the line is driven to when attached.
	DefaultOn bool `json:"default_on"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DriverConfig converts the definition into the driver's attach config.
func (d *LineDefinition) DriverConfig() driver.Config {
	return driver.Config{
		ID:        d.ID,
		Name:      d.Name,
		Pin:       d.Pin,
		DefaultOn: d.DefaultOn,
	}
}
