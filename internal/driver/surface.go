package driver

// Surface is an external-facing protocol endpoint registered against every
// attached line. One implementation exists per transport (attribute
// registry, stream sockets, MQTT, WebSocket events, telemetry); the
// Manager keeps the set fixed and ordered so rollback lives in one place
// instead of being duplicated per deployment variant.
type Surface interface {
	// Name identifies the surface in logs and errors.
	Name() string

	// Register makes the instance reachable through this surface and
	// returns the function that fully undoes the registration. On error no
	// partial registration may remain: either the returned unregister
	// function releases everything, or nothing was allocated.
	Register(inst *Instance) (unregister func() error, err error)
}

// registration is one entry in an instance's teardown list. The sequence
// of recorded registrations always equals the sequence of resources
// actually allocated.
type registration struct {
	surface    string
	unregister func() error
}
