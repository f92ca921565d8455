// Package driver binds GPIO actuator lines to their external surfaces.
//
// It is the heart of graylogic-gpio: a Manager owns one Instance per
// attached line, each Instance owns a guarded on/off state register wired
// through to the physical line, and a fixed ordered set of Surface
// implementations (attribute registry, stream sockets, MQTT bridge,
// WebSocket events, telemetry) is registered against every instance.
//
// # Lifecycle
//
// Attach is all-or-nothing. The line is acquired and driven to its default
// level, the state register is initialised, then surfaces register in
// order. Any surface failure unwinds the registrations already made in
// strict reverse order, releases the line, and reports the original
// error. Only a fully registered instance is published to the manager's
// instance table.
//
// Detach is idempotent: the line is driven to its safe (off) level first,
// surfaces are unregistered in reverse order with failures logged rather
// than propagated, and the line is released. A detach for an unknown id is
// a no-op success.
//
// # Concurrency
//
// Surface operations may run concurrently against an Active instance. The
// state register's mutex is the sole serialisation point and is held only
// for the constant-time read/write/propagate, never across I/O. Attach and
// detach are single-flight per line id; a surface operation racing a
// detach observes either valid Active state or a clean ErrNotAvailable.
//
// # Usage
//
//	manager := driver.NewManager(provider, attrSurface, streamSurface)
//	manager.SetLogger(log)
//
//	inst, err := manager.Attach(driver.Config{
//	    ID:        "relay-garage",
//	    Pin:       "GPIO17",
//	    DefaultOn: false,
//	})
//	...
//	manager.Detach("relay-garage")
package driver
