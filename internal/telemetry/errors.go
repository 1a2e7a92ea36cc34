package telemetry

import "errors"

// ErrMalformedPayload indicates an inbound payload could not be decoded.
// Callers log and drop the message; it is never a fatal failure.
var ErrMalformedPayload = errors.New("telemetry: malformed payload")
