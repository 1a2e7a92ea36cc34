// Package watering holds the irrigation domain logic: the watering
// event log, the moisture-jump detection heuristic with reconciliation
// against pending commands, and the threshold/cooldown auto-watering
// policy. The detector and policy are pure; the log is mutated only
// under the engine's state lock.
package watering
