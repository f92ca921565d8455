// Package telemetry records GPIO line transitions in InfluxDB.
//
// This package manages:
//   - Connection to InfluxDB v2 with token authentication
//   - Non-blocking, batched transition writes
//   - Connection health monitoring
//   - A line surface that records every value change
//
// Telemetry is optional. When disabled in configuration the daemon runs
// without it and no surface is registered.
//
// # Data Model
//
// Each transition is one point in the line_transitions measurement:
//
//	line_transitions,line_id=led-hall,source=mqtt value=1i <timestamp>
//
// Tags are low cardinality (line id, the surface that caused the
// change); the on/off value is the field.
//
// # Usage
//
//	client, err := telemetry.Connect(cfg.Telemetry)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.WriteTransition("led-hall", true, "api")
package telemetry
