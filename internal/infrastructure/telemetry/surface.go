package telemetry

import (
	"github.com/nerrad567/gray-logic-gpio/internal/driver"
)

// sourceState tags transitions recorded from value-change notifications.
// The daemon does not attribute a change to the surface that caused it;
// every committed transition flows through the state register.
const sourceState = "state"

// Recorder is the subset of Client used by the surface.
// Kept as an interface so tests can capture writes without a server.
type Recorder interface {
	WriteTransition(lineID string, on bool, source string)
}

// Surface records every committed value change of an attached line.
//
// On registration it writes the line's current value so the series
// starts at the attach-time level, then records each subsequent change
// until the line detaches.
type Surface struct {
	recorder Recorder
}

// NewSurface creates a telemetry surface writing through recorder.
func NewSurface(recorder Recorder) *Surface {
	return &Surface{recorder: recorder}
}

// Name identifies the surface in logs.
func (s *Surface) Name() string { return "telemetry" }

// Register starts recording transitions for the instance.
func (s *Surface) Register(inst *driver.Instance) (func() error, error) {
	id := inst.ID()

	// Registration happens mid-attach, before the instance goes Active;
	// the line has already been driven to its default level.
	s.recorder.WriteTransition(id, inst.Config().DefaultOn, sourceState)

	cancel := inst.Watch(func(on bool) {
		s.recorder.WriteTransition(id, on, sourceState)
	})

	return func() error {
		cancel()
		return nil
	}, nil
}
