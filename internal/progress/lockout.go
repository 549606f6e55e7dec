package progress

import (
	"math"
	"time"

	"studystreak/internal/models"
)

// IsLocked reports whether quiz-taking is currently disabled for the
// profile. Locked means strictly before the lockout deadline.
func IsLocked(p models.Profile, now time.Time) bool {
	return p.LockoutUntil != nil && now.Before(*p.LockoutUntil)
}

// MinutesRemaining returns the lockout countdown rounded up to whole
// minutes, for display. Zero when the profile is not locked.
func MinutesRemaining(p models.Profile, now time.Time) int {
	if !IsLocked(p, now) {
		return 0
	}
	return int(math.Ceil(p.LockoutUntil.Sub(now).Minutes()))
}
