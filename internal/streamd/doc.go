// Package streamd exposes attached GPIO lines as Unix socket byte streams.
//
// Each attached line gets its own socket at <socket_dir>/<line-id>.sock.
// A connection is one stream session: on connect the daemon writes a
// single byte, '1' or '0', carrying the line's current value, and every
// payload the client sends afterwards is applied as a write (first byte
// '1' switches the line on, anything else off).
//
//	$ nc -U /run/graylogic-gpio/led-hall.sock
//	1
//	^ value byte, then the connection stays open for writes
//
// The socket is created when the line attaches and removed when it
// detaches; connections open at detach time are closed. I/O failures on
// a connection end that session only and are logged as transport faults.
package streamd
