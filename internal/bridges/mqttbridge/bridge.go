package mqttbridge

import (
	"errors"
	"fmt"

	"github.com/nerrad567/gray-logic-gpio/internal/driver"
	"github.com/nerrad567/gray-logic-gpio/internal/infrastructure/mqtt"
)

// Broker is the subset of the MQTT client used by the bridge.
// This allows mocking in tests and flexibility in implementation.
type Broker interface {
	// PublishRetained publishes a retained message at the configured QoS.
	PublishRetained(topic string, payload []byte) error

	// Subscribe registers a handler for a topic pattern.
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error

	// Unsubscribe removes a subscription.
	Unsubscribe(topic string) error
}

// Logger is the logging interface used by the bridge.
type Logger interface {
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Surface bridges attached lines to MQTT state and command topics.
//
// Thread Safety: all methods are safe for concurrent use; per-line
// subscription state is carried in the unregister closure rather than
// shared maps.
type Surface struct {
	broker Broker
	qos    byte
	logger Logger
}

// NewSurface creates a bridge surface publishing through broker.
func NewSurface(broker Broker, qos byte) *Surface {
	return &Surface{
		broker: broker,
		qos:    qos,
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for command and publish failures.
func (s *Surface) SetLogger(logger Logger) {
	s.logger = logger
}

// Name identifies the surface in logs.
func (s *Surface) Name() string { return "mqtt" }

// Register publishes the line's retained state and subscribes to its
// command topic. The returned closure withdraws both.
func (s *Surface) Register(inst *driver.Instance) (func() error, error) {
	id := inst.ID()
	topics := mqtt.Topics{}
	stateTopic := topics.LineState(id)
	commandTopic := topics.LineCommand(id)

	attr := driver.NewValueAttribute(inst)

	// Commands reuse the attribute's parse-and-coerce rules so MQTT and
	// HTTP writers behave identically.
	err := s.broker.Subscribe(commandTopic, s.qos, func(topic string, payload []byte) error {
		if storeErr := attr.Store(string(payload)); storeErr != nil {
			if errors.Is(storeErr, driver.ErrInvalidInput) {
				s.logger.Warn("rejected command payload",
					"line", id,
					"topic", topic,
					"payload", string(payload),
				)
				return nil
			}
			return storeErr
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: subscribing %s: %w", driver.ErrRegistration, commandTopic, err)
	}

	// Registration happens mid-attach; the line holds its default level.
	s.publishState(id, stateTopic, inst.Config().DefaultOn)

	cancel := inst.Watch(func(on bool) {
		s.publishState(id, stateTopic, on)
	})

	return func() error {
		cancel()
		if err := s.broker.Unsubscribe(commandTopic); err != nil {
			return fmt.Errorf("unsubscribing %s: %w", commandTopic, err)
		}
		return nil
	}, nil
}

// publishState publishes the retained state payload, logging failures as
// transport faults rather than propagating them to the value writer.
func (s *Surface) publishState(id, topic string, on bool) {
	payload := []byte("0\n")
	if on {
		payload = []byte("1\n")
	}
	if err := s.broker.PublishRetained(topic, payload); err != nil {
		s.logger.Error("state publish failed",
			"line", id,
			"topic", topic,
			"error", fmt.Errorf("%w: %w", driver.ErrTransportFault, err),
		)
	}
}
