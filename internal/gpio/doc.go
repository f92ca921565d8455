// Package gpio abstracts access to physical GPIO output lines.
//
// The rest of the daemon never talks to pin hardware directly. It requests
// a Line from a Provider and interacts with the returned handle:
//
//	line, err := provider.Request("GPIO17", false)
//	if err != nil {
//	    return err // gpio.ErrLineUnavailable wrapped with detail
//	}
//	defer line.Close()
//
//	line.Set(true) // drive the line high
//
// Requesting a line drives it to the initial level before Request returns,
// so acquisition is the first externally observable effect of an attach.
// Close is idempotent and releases the underlying pin.
//
// The production implementation (PeriphProvider) resolves pins through the
// periph.io pin registry, which covers memory-mapped GPIO, sysfs and the
// character-device interface depending on the platform. Tests substitute
// their own Provider.
package gpio
