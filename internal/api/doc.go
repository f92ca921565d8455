// Package api implements the HTTP REST API and WebSocket server for the
// Gray Logic GPIO daemon.
//
// This package provides:
//   - REST endpoints for line catalogue CRUD and attach/detach lifecycle
//   - The textual value attribute endpoint (read and write a line's level)
//   - WebSocket hub for real-time line state broadcasts
//   - Middleware stack (request ID, logging, recovery, body size limit)
//
// # Architecture
//
// The API server sits between clients (the core controller, admin tooling,
// curl) and the line driver. Creating a line writes the catalogue entry and
// attaches the GPIO line in one operation; deleting detaches first and then
// removes the entry. Value reads and writes go through the attribute
// registry, so the HTTP surface behaves identically to the MQTT command
// topic.
//
// # Graceful Degradation
//
// The server operates without MQTT and without telemetry. A line that is
// defined in the catalogue but not currently attached answers attribute
// requests with 410 Gone rather than 404, so clients can tell the two
// apart.
package api
