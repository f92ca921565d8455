package streamd

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"

	"github.com/nerrad567/gray-logic-gpio/internal/driver"
)

// socketDirPermissions is the permission mode for the socket directory.
const socketDirPermissions = 0750

// readBufferSize is the per-connection inbound buffer. Writes are tiny
// (a value byte, maybe a trailing newline), so a small buffer suffices.
const readBufferSize = 64

// Logger is the logging interface used by the surface.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Surface serves every attached line on its own Unix socket.
type Surface struct {
	socketDir string
	logger    Logger
}

// NewSurface creates a stream surface rooted at socketDir.
// The directory is created on first registration.
func NewSurface(socketDir string) *Surface {
	return &Surface{
		socketDir: socketDir,
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger for session and teardown events.
func (s *Surface) SetLogger(logger Logger) {
	s.logger = logger
}

// Name identifies the surface in logs.
func (s *Surface) Name() string { return "stream" }

// SocketPath returns the socket path serving the given line id.
func (s *Surface) SocketPath(id string) string {
	return filepath.Join(s.socketDir, id+".sock")
}

// Register creates and serves the line's socket. The returned closure
// stops the listener, closes open sessions and removes the socket file.
func (s *Surface) Register(inst *driver.Instance) (func() error, error) {
	if err := os.MkdirAll(s.socketDir, socketDirPermissions); err != nil {
		return nil, fmt.Errorf("%w: creating socket dir: %w", driver.ErrRegistration, err)
	}

	path := s.SocketPath(inst.ID())

	// A stale socket from an unclean shutdown blocks the listen.
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: removing stale socket %s: %w", driver.ErrRegistration, path, err)
	}

	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("%w: listening on %s: %w", driver.ErrRegistration, path, err)
	}

	srv := &lineServer{
		surface: s,
		inst:    inst,
		ln:      ln,
		conns:   make(map[net.Conn]struct{}),
	}

	srv.wg.Add(1)
	go srv.acceptLoop()

	return func() error {
		return srv.close(path)
	}, nil
}

// lineServer owns the listener and open sessions for one line.
type lineServer struct {
	surface *Surface
	inst    *driver.Instance
	ln      net.Listener

	mu      sync.Mutex
	conns   map[net.Conn]struct{}
	closing bool

	wg sync.WaitGroup
}

func (srv *lineServer) acceptLoop() {
	defer srv.wg.Done()

	for {
		conn, err := srv.ln.Accept()
		if err != nil {
			// Listener closed during teardown.
			return
		}

		if !srv.track(conn) {
			conn.Close()
			return
		}

		srv.wg.Add(1)
		go srv.serveConn(conn)
	}
}

// track records an open session, refusing new ones during teardown.
func (srv *lineServer) track(conn net.Conn) bool {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if srv.closing {
		return false
	}
	srv.conns[conn] = struct{}{}
	return true
}

func (srv *lineServer) untrack(conn net.Conn) {
	srv.mu.Lock()
	delete(srv.conns, conn)
	srv.mu.Unlock()
}

// serveConn runs one stream session over a connection.
func (srv *lineServer) serveConn(conn net.Conn) {
	defer srv.wg.Done()
	defer srv.untrack(conn)
	defer conn.Close()

	id := srv.inst.ID()

	st, err := srv.inst.OpenStream()
	if err != nil {
		// Line went away between accept and open.
		srv.surface.logger.Debug("session refused", "line", id, "error", err)
		return
	}

	log := srv.surface.logger

	// One value byte on connect, then the session drains to EOF.
	var value [1]byte
	if _, err := st.Read(value[:]); err != nil {
		log.Debug("session read failed", "line", id, "session", st.ID(), "error", err)
		return
	}
	if _, err := conn.Write(value[:]); err != nil {
		log.Warn("session value delivery failed",
			"line", id,
			"session", st.ID(),
			"error", fmt.Errorf("%w: %w", driver.ErrTransportFault, err),
		)
		return
	}

	buf := make([]byte, readBufferSize)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			if _, werr := st.Write(buf[:n]); werr != nil {
				log.Debug("session write rejected", "line", id, "session", st.ID(), "error", werr)
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				log.Warn("session transport error",
					"line", id,
					"session", st.ID(),
					"error", fmt.Errorf("%w: %w", driver.ErrTransportFault, err),
				)
			}
			return
		}
	}
}

// close stops accepting, closes open sessions, waits for them to drain
// and removes the socket file.
func (srv *lineServer) close(path string) error {
	srv.mu.Lock()
	srv.closing = true
	open := make([]net.Conn, 0, len(srv.conns))
	for conn := range srv.conns {
		open = append(open, conn)
	}
	srv.mu.Unlock()

	err := srv.ln.Close()

	for _, conn := range open {
		conn.Close()
	}

	srv.wg.Wait()

	if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
		srv.surface.logger.Warn("socket removal failed", "path", path, "error", rmErr)
	}

	if err != nil {
		return fmt.Errorf("closing listener: %w", err)
	}
	return nil
}
