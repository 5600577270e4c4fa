package game

import "time"

// Liveness is an advisory staleness class derived from a player's last
// heartbeat. Reconciliation never uses it; the denominator for "everyone
// answered" is the is_active flag alone.
type Liveness string

const (
	LivenessFresh Liveness = "fresh"
	LivenessStale Liveness = "stale"
	LivenessDead  Liveness = "dead"
)

const (
	freshWithin = 10 * time.Second
	staleWithin = 30 * time.Second
)

// Classify buckets a player by how long ago they were last seen.
func Classify(now, lastSeen time.Time) Liveness {
	age := now.Sub(lastSeen)
	switch {
	case age < freshWithin:
		return LivenessFresh
	case age < staleWithin:
		return LivenessStale
	default:
		return LivenessDead
	}
}
