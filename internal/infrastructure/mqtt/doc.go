// Package mqtt provides the broker link for SoilSense Core.
//
// It wraps paho.mqtt.golang with connection lifecycle management
// (clean-session connect, tracked subscriptions restored after
// reconnect, a single fixed-delay reconnect attempt per disconnect
// event) and the outbound device command path.
//
// The sensor link uses four topics under a configurable namespace:
//
//	<namespace>/data      reading telemetry (sensor -> core)
//	<namespace>/status    system status snapshots (sensor -> core)
//	<namespace>/response  command acknowledgement text (sensor -> core)
//	<namespace>/command   command tokens (core -> sensor)
//
// Commands are fire-and-forget: PublishCommand succeeding means the
// broker accepted the message, not that the device executed it.
package mqtt
