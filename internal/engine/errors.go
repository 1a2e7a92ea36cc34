package engine

import "errors"

// ErrWateringInProgress indicates a watering cycle is already running;
// concurrent cycles would leave the valve state ambiguous.
var ErrWateringInProgress = errors.New("engine: watering cycle already in progress")
