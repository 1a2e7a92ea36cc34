// Package telemetry is the wire codec for the soil sensor link.
//
// It parses inbound reading and status payloads, serializes outbound
// command tokens, and normalizes sensor timestamps (which may arrive as
// epoch seconds, RFC 3339, or naive local time) to canonical UTC.
// Everything here is pure and stateless.
package telemetry
