package api

import (
	"github.com/nerrad567/gray-logic-gpio/internal/driver"
)

// lineEvent is the payload for line lifecycle and value broadcasts.
type lineEvent struct {
	LineID string `json:"line_id"`
	Value  int    `json:"value"`
}

// EventSurface broadcasts line lifecycle and value changes to WebSocket
// clients through the hub. It registers with the line manager like any
// other surface, so clients see exactly what the driver sees.
type EventSurface struct {
	hub *Hub
}

// NewEventSurface creates the surface backed by hub.
func NewEventSurface(hub *Hub) *EventSurface {
	return &EventSurface{hub: hub}
}

// Name implements driver.Surface.
func (*EventSurface) Name() string { return "events" }

// Register implements driver.Surface. It announces the attach, then
// relays every value change until the line detaches.
func (s *EventSurface) Register(inst *driver.Instance) (func() error, error) {
	id := inst.ID()

	// Registration happens mid-attach, before the instance goes Active;
	// the line has already been driven to its default level.
	s.hub.Broadcast(ChannelLineAttached, lineEvent{LineID: id, Value: asValue(inst.Config().DefaultOn)})

	cancel := inst.Watch(func(on bool) {
		s.hub.Broadcast(ChannelLineValueChanged, lineEvent{LineID: id, Value: asValue(on)})
	})

	return func() error {
		cancel()
		s.hub.Broadcast(ChannelLineDetached, lineEvent{LineID: id, Value: 0})
		return nil
	}, nil
}

func asValue(on bool) int {
	if on {
		return 1
	}
	return 0
}
