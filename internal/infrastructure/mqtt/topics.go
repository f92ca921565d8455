package mqtt

import "fmt"

// Topic prefixes for the GPIO daemon.
//
// The daemon follows the flat Gray Logic bridge scheme:
// graylogic/gpio/{category}/{line_id}/{attribute}
const (
	// TopicPrefix is the base for all GPIO daemon topics.
	TopicPrefix = "graylogic/gpio"
)

// Topics provides builders for GPIO daemon MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	stateTopic := topics.LineState("led-hall")
//	// Returns: "graylogic/gpio/state/led-hall/value"
type Topics struct{}

// LineState returns the topic for state updates of a line attribute.
// State messages are published retained so late subscribers see the
// current value immediately.
//
// Example: graylogic/gpio/state/led-hall/value
func (Topics) LineState(lineID string) string {
	return fmt.Sprintf("%s/state/%s/value", TopicPrefix, lineID)
}

// LineCommand returns the topic for commands addressed to a line.
//
// Example: graylogic/gpio/command/led-hall/value
func (Topics) LineCommand(lineID string) string {
	return fmt.Sprintf("%s/command/%s/value", TopicPrefix, lineID)
}

// SystemStatus returns the daemon status topic, used for the online
// payload and the Last Will and Testament.
//
// Example: graylogic/gpio/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefix)
}

// AllLineStates returns a pattern matching all line state updates.
//
// Pattern: graylogic/gpio/state/+/value
func (Topics) AllLineStates() string {
	return fmt.Sprintf("%s/state/+/value", TopicPrefix)
}

// AllLineCommands returns a pattern matching all line commands.
//
// Pattern: graylogic/gpio/command/+/value
func (Topics) AllLineCommands() string {
	return fmt.Sprintf("%s/command/+/value", TopicPrefix)
}

// AllTopics returns a pattern matching all GPIO daemon topics.
// Use with caution - this receives ALL traffic.
//
// Pattern: graylogic/gpio/#
func (Topics) AllTopics() string {
	return TopicPrefix + "/#"
}
