// Package history holds the in-memory retention buffer for sensor
// readings. The buffer is bounded twice over: by age (the retention
// period, swept on a timer) and by a hard capacity cap (evict-oldest
// on append). State is memory-resident only and rebuilt from live
// telemetry after a restart.
package history
