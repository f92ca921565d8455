package telemetry

import (
	"sync"
	"testing"

	"github.com/nerrad567/gray-logic-gpio/internal/driver"
	"github.com/nerrad567/gray-logic-gpio/internal/gpio"
)

// fakeRecorder captures transitions written through the surface.
type fakeRecorder struct {
	mu          sync.Mutex
	transitions []transition
}

type transition struct {
	lineID string
	on     bool
	source string
}

func (r *fakeRecorder) WriteTransition(lineID string, on bool, source string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, transition{lineID, on, source})
}

func (r *fakeRecorder) recorded() []transition {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]transition, len(r.transitions))
	copy(out, r.transitions)
	return out
}

// fakeProvider hands out no-op lines.
type fakeProvider struct{}

type fakeLine struct{}

func (fakeLine) Set(bool) error { return nil }
func (fakeLine) Close() error   { return nil }

func (fakeProvider) Request(string, bool) (gpio.Line, error) { return fakeLine{}, nil }

func TestSurface_RecordsTransitions(t *testing.T) {
	recorder := &fakeRecorder{}
	mgr := driver.NewManager(fakeProvider{}, NewSurface(recorder))

	inst, err := mgr.Attach(driver.Config{ID: "led-hall", Pin: "GPIO17", DefaultOn: true})
	if err != nil {
		t.Fatalf("Attach() error = %v", err)
	}

	if err := inst.SetValue(false); err != nil {
		t.Fatalf("SetValue(false) error = %v", err)
	}
	if err := inst.SetValue(true); err != nil {
		t.Fatalf("SetValue(true) error = %v", err)
	}

	got := recorder.recorded()
	want := []transition{
		{"led-hall", true, "state"},
		{"led-hall", false, "state"},
		{"led-hall", true, "state"},
	}
	if len(got) != len(want) {
		t.Fatalf("recorded %d transitions, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("transition[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSurface_UnchangedValueNotRecorded(t *testing.T) {
	recorder := &fakeRecorder{}
	mgr := driver.NewManager(fakeProvider{}, NewSurface(recorder))

	inst, err := mgr.Attach(driver.Config{ID: "led-hall", Pin: "GPIO17", DefaultOn: false})
	if err != nil {
		t.Fatalf("Attach() error = %v", err)
	}

	// Writing the value already held must not produce a transition.
	if err := inst.SetValue(false); err != nil {
		t.Fatalf("SetValue(false) error = %v", err)
	}

	if got := recorder.recorded(); len(got) != 1 {
		t.Errorf("recorded %d transitions, want 1 (attach only): %v", len(got), got)
	}
}

func TestSurface_StopsAfterDetach(t *testing.T) {
	recorder := &fakeRecorder{}
	mgr := driver.NewManager(fakeProvider{}, NewSurface(recorder))

	inst, err := mgr.Attach(driver.Config{ID: "led-hall", Pin: "GPIO17", DefaultOn: false})
	if err != nil {
		t.Fatalf("Attach() error = %v", err)
	}

	if err := mgr.Detach("led-hall"); err != nil {
		t.Fatalf("Detach() error = %v", err)
	}

	before := len(recorder.recorded())

	// The stale instance refuses writes, so nothing further is recorded.
	if err := inst.SetValue(true); err == nil {
		t.Fatal("SetValue() after detach should fail")
	}

	if got := recorder.recorded(); len(got) != before {
		t.Errorf("recorded %d transitions after detach, want %d", len(got), before)
	}
}
