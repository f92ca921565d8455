// Package mqttbridge exposes attached GPIO lines over MQTT.
//
// The bridge is a line surface: when a line attaches it publishes the
// retained state topic and subscribes to the command topic; when the
// line detaches both are withdrawn. Per line:
//
//	graylogic/gpio/state/<line-id>/value    retained, "1\n" or "0\n"
//	graylogic/gpio/command/<line-id>/value  accepts decimal integers
//
// Command payloads follow the value attribute's parsing rules: the
// payload is parsed as a decimal integer and any non-zero value switches
// the line on. Malformed payloads are rejected and logged.
//
// State publishes are driven by value-change notifications, so a change
// made through any surface (HTTP, stream socket, MQTT itself) is
// reflected on the state topic.
package mqttbridge
