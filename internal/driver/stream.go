package driver

import (
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
)

// Stream is one open byte-stream session against a line.
//
// Read is single-shot: the first call returns exactly one byte, '1' or
// '0', and every later call returns io.EOF until the caller opens a fresh
// session. Write applies the first byte of the payload ('1' switches the
// line on, anything else off) and silently accepts the rest.
//
// A Stream holds a non-owning reference to its instance; operations after
// detach fail with ErrNotAvailable.
type Stream struct {
	id   string
	inst *Instance

	mu  sync.Mutex
	pos int
}

// OpenStream opens a byte-stream session. It always succeeds while the
// instance is Active.
func (inst *Instance) OpenStream() (*Stream, error) {
	if err := inst.active(); err != nil {
		return nil, err
	}
	return &Stream{
		id:   uuid.New().String(),
		inst: inst,
	}, nil
}

// ID returns the session id, used for log correlation.
func (st *Stream) ID() string { return st.id }

// Read implements io.Reader with single-shot semantics. A zero-length
// buffer reads zero bytes without consuming the one-shot.
func (st *Stream) Read(p []byte) (int, error) {
	if err := st.inst.active(); err != nil {
		return 0, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if st.pos != 0 {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}

	on, err := st.inst.Value()
	if err != nil {
		return 0, err
	}
	if on {
		p[0] = '1'
	} else {
		p[0] = '0'
	}
	st.pos = 1
	return 1, nil
}

// Write applies the payload's first byte and reports the whole payload as
// consumed. An empty payload is ErrInvalidInput.
func (st *Stream) Write(p []byte) (int, error) {
	if err := st.inst.active(); err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, fmt.Errorf("%w: stream write requires at least one byte", ErrInvalidInput)
	}
	if err := st.inst.SetValue(p[0] == '1'); err != nil {
		return 0, err
	}
	return len(p), nil
}
