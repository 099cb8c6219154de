package core

import "time"

// TimeProvider is the clock read by confirmation dates, delivery stamps, audit records
// and notification events
type TimeProvider interface {
	Now() time.Time
	Since(t time.Time) time.Duration
	// Sleep pauses between connection retries
	Sleep(d time.Duration)
}
