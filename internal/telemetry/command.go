package telemetry

// Command is a device command token published on the command topic.
type Command string

// Command tokens understood by the sensor firmware.
const (
	// CommandValveOn opens the irrigation valve.
	CommandValveOn Command = "GPIO_ON"

	// CommandValveOff closes the irrigation valve.
	CommandValveOff Command = "GPIO_OFF"

	// CommandGetReading requests an immediate moisture reading.
	CommandGetReading Command = "GET_READING"

	// CommandGetStatus requests a system status snapshot.
	CommandGetStatus Command = "GET_STATUS"
)

// EncodeCommand serializes a command token for the wire.
// Commands are plain text; no framing is applied.
func EncodeCommand(c Command) []byte {
	return []byte(c)
}

// String returns the wire form of the command.
func (c Command) String() string {
	return string(c)
}
