// Package influxdb provides the optional time-series archive for sensor
// readings.
//
// The archive is strictly write-only from the engine's perspective:
// readings flow out to InfluxDB for dashboarding, and nothing is ever
// read back. Engine state is rebuilt from live telemetry alone, so a
// missing or unreachable InfluxDB degrades charts, not control.
package influxdb
