package mqtt

import "fmt"

// Topics builds the four sensor link topics under a configured namespace.
//
// The sensor publishes on data/status/response and listens on command:
//
//	topics := mqtt.NewTopics("soilsense")
//	topics.Data()    // "soilsense/data"
//	topics.Command() // "soilsense/command"
type Topics struct {
	namespace string
}

// NewTopics returns a topic builder for the given namespace.
func NewTopics(namespace string) Topics {
	return Topics{namespace: namespace}
}

// Data returns the inbound reading telemetry topic.
func (t Topics) Data() string {
	return fmt.Sprintf("%s/data", t.namespace)
}

// Status returns the inbound system status topic.
func (t Topics) Status() string {
	return fmt.Sprintf("%s/status", t.namespace)
}

// Response returns the inbound command acknowledgement topic.
func (t Topics) Response() string {
	return fmt.Sprintf("%s/response", t.namespace)
}

// Command returns the outbound device command topic.
func (t Topics) Command() string {
	return fmt.Sprintf("%s/command", t.namespace)
}
