package common

import "time"

// FreshnessResolution is how long a stored resolution is reused by the warm
// job before the identifier is resolved again.
const FreshnessResolution = 12 * time.Hour

// IsFresh returns true if updated is within ttl of now
func IsFresh(updated, now time.Time, ttl time.Duration) bool {
	if updated.IsZero() {
		return false
	}
	return now.Sub(updated) < ttl
}
