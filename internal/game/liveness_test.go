package game

import (
	"testing"
	"time"
)

func TestClassify(t *testing.T) {
	now := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		ago  time.Duration
		want Liveness
	}{
		{"just seen", 0, LivenessFresh},
		{"under fresh cutoff", 9 * time.Second, LivenessFresh},
		{"at fresh cutoff", 10 * time.Second, LivenessStale},
		{"under stale cutoff", 29 * time.Second, LivenessStale},
		{"at stale cutoff", 30 * time.Second, LivenessDead},
		{"long gone", 5 * time.Minute, LivenessDead},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(now, now.Add(-tt.ago)); got != tt.want {
				t.Errorf("Classify(-%v) = %q, want %q", tt.ago, got, tt.want)
			}
		})
	}

	// A zero last-seen classifies as dead, not fresh.
	if got := Classify(now, time.Time{}); got != LivenessDead {
		t.Errorf("Classify(zero) = %q, want %q", got, LivenessDead)
	}
}
