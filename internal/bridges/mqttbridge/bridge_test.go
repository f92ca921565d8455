package mqttbridge

import (
	"errors"
	"sync"
	"testing"

	"github.com/nerrad567/gray-logic-gpio/internal/driver"
	"github.com/nerrad567/gray-logic-gpio/internal/gpio"
	"github.com/nerrad567/gray-logic-gpio/internal/infrastructure/mqtt"
)

// fakeBroker records publishes and subscriptions and lets tests inject
// inbound command messages.
type fakeBroker struct {
	mu        sync.Mutex
	published []publication
	handlers  map[string]mqtt.MessageHandler
	pubErr    error
	subErr    error
}

type publication struct {
	topic   string
	payload string
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{handlers: make(map[string]mqtt.MessageHandler)}
}

func (b *fakeBroker) PublishRetained(topic string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pubErr != nil {
		return b.pubErr
	}
	b.published = append(b.published, publication{topic, string(payload)})
	return nil
}

func (b *fakeBroker) Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subErr != nil {
		return b.subErr
	}
	b.handlers[topic] = handler
	return nil
}

func (b *fakeBroker) Unsubscribe(topic string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.handlers, topic)
	return nil
}

func (b *fakeBroker) deliver(t *testing.T, topic string, payload string) error {
	t.Helper()
	b.mu.Lock()
	handler, ok := b.handlers[topic]
	b.mu.Unlock()
	if !ok {
		t.Fatalf("no handler subscribed on %s", topic)
	}
	return handler(topic, []byte(payload))
}

func (b *fakeBroker) publications() []publication {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]publication, len(b.published))
	copy(out, b.published)
	return out
}

func (b *fakeBroker) subscribed(topic string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.handlers[topic]
	return ok
}

// fakeProvider hands out no-op lines.
type fakeProvider struct{}

type fakeLine struct{}

func (fakeLine) Set(bool) error { return nil }
func (fakeLine) Close() error   { return nil }

func (fakeProvider) Request(string, bool) (gpio.Line, error) { return fakeLine{}, nil }

func attach(t *testing.T, broker *fakeBroker, defaultOn bool) (*driver.Manager, *driver.Instance) {
	t.Helper()

	mgr := driver.NewManager(fakeProvider{}, NewSurface(broker, 1))
	inst, err := mgr.Attach(driver.Config{ID: "led-hall", Pin: "GPIO17", DefaultOn: defaultOn})
	if err != nil {
		t.Fatalf("Attach() error = %v", err)
	}
	return mgr, inst
}

func TestRegister_PublishesRetainedStateAndSubscribes(t *testing.T) {
	broker := newFakeBroker()
	attach(t, broker, true)

	pubs := broker.publications()
	if len(pubs) != 1 {
		t.Fatalf("published %d messages, want 1: %v", len(pubs), pubs)
	}
	if pubs[0].topic != "graylogic/gpio/state/led-hall/value" {
		t.Errorf("state topic = %q", pubs[0].topic)
	}
	if pubs[0].payload != "1\n" {
		t.Errorf("state payload = %q, want %q", pubs[0].payload, "1\n")
	}

	if !broker.subscribed("graylogic/gpio/command/led-hall/value") {
		t.Error("command topic not subscribed")
	}
}

func TestCommand_DrivesLine(t *testing.T) {
	broker := newFakeBroker()
	_, inst := attach(t, broker, false)

	tests := []struct {
		payload string
		want    bool
	}{
		{"1", true},
		{"0", false},
		{"7\n", true},
		{"-3", true},
		{"  0 ", false},
	}

	for _, tt := range tests {
		if err := broker.deliver(t, "graylogic/gpio/command/led-hall/value", tt.payload); err != nil {
			t.Fatalf("deliver(%q) error = %v", tt.payload, err)
		}
		on, err := inst.Value()
		if err != nil {
			t.Fatalf("Value() error = %v", err)
		}
		if on != tt.want {
			t.Errorf("after command %q: value = %v, want %v", tt.payload, on, tt.want)
		}
	}
}

func TestCommand_MalformedPayloadRejected(t *testing.T) {
	broker := newFakeBroker()
	_, inst := attach(t, broker, false)

	// Malformed payloads are logged and dropped, not returned as handler
	// errors, so the broker never sees a failure.
	if err := broker.deliver(t, "graylogic/gpio/command/led-hall/value", "banana"); err != nil {
		t.Fatalf("deliver() error = %v", err)
	}

	on, err := inst.Value()
	if err != nil {
		t.Fatalf("Value() error = %v", err)
	}
	if on {
		t.Error("malformed command changed the value")
	}
}

func TestValueChange_RepublishesState(t *testing.T) {
	broker := newFakeBroker()
	_, inst := attach(t, broker, false)

	if err := inst.SetValue(true); err != nil {
		t.Fatalf("SetValue() error = %v", err)
	}

	pubs := broker.publications()
	if len(pubs) != 2 {
		t.Fatalf("published %d messages, want 2: %v", len(pubs), pubs)
	}
	if pubs[1].payload != "1\n" {
		t.Errorf("republished payload = %q, want %q", pubs[1].payload, "1\n")
	}
}

func TestDetach_Unsubscribes(t *testing.T) {
	broker := newFakeBroker()
	mgr, _ := attach(t, broker, false)

	if err := mgr.Detach("led-hall"); err != nil {
		t.Fatalf("Detach() error = %v", err)
	}

	if broker.subscribed("graylogic/gpio/command/led-hall/value") {
		t.Error("command subscription survived detach")
	}
}

func TestRegister_SubscribeFailureIsRegistrationError(t *testing.T) {
	broker := newFakeBroker()
	broker.subErr = errors.New("broker down")

	mgr := driver.NewManager(fakeProvider{}, NewSurface(broker, 1))
	_, err := mgr.Attach(driver.Config{ID: "led-hall", Pin: "GPIO17"})
	if !errors.Is(err, driver.ErrRegistration) {
		t.Fatalf("Attach() error = %v, want ErrRegistration", err)
	}
	if mgr.Count() != 0 {
		t.Errorf("Count() = %d after failed attach, want 0", mgr.Count())
	}
}

func TestCommandAfterDetach_ReturnsNotAvailable(t *testing.T) {
	broker := newFakeBroker()
	mgr, _ := attach(t, broker, false)

	// Capture the handler before detach removes the subscription.
	broker.mu.Lock()
	handler := broker.handlers["graylogic/gpio/command/led-hall/value"]
	broker.mu.Unlock()

	if err := mgr.Detach("led-hall"); err != nil {
		t.Fatalf("Detach() error = %v", err)
	}

	err := handler("graylogic/gpio/command/led-hall/value", []byte("1"))
	if !errors.Is(err, driver.ErrNotAvailable) {
		t.Errorf("stale handler error = %v, want ErrNotAvailable", err)
	}
}
