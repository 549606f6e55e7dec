package progress

import "time"

// dayKeyLayout is the canonical calendar-day representation used for both
// study-history keys and last-completed markers. Day keys are local-time:
// two instants on the same local calendar day produce the same key.
const dayKeyLayout = "2006-01-02"

// legacyDayLayout matches day markers written by old installations
// ("Mon Jan 2 2006" style); normalization rewrites them to the canonical
// layout.
const legacyDayLayout = "Mon Jan 2 2006"

// DayKey converts an instant into its local calendar-day key.
func DayKey(t time.Time) string {
	return t.Format(dayKeyLayout)
}

// ParseDayKey parses a canonical day key in local time.
func ParseDayKey(key string) (time.Time, bool) {
	t, err := time.ParseInLocation(dayKeyLayout, key, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// parseDayMarker accepts either a canonical or a legacy day marker.
func parseDayMarker(s string) (time.Time, bool) {
	if t, ok := ParseDayKey(s); ok {
		return t, true
	}
	t, err := time.ParseInLocation(legacyDayLayout, s, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// startOfDay truncates an instant to local midnight.
func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// DaysBetween returns the number of whole calendar days between two
// instants, always non-negative. Both sides are truncated to midnight
// first, so sub-day drift never counts as a day.
func DaysBetween(a, b time.Time) int {
	diff := startOfDay(a).Sub(startOfDay(b))
	if diff < 0 {
		diff = -diff
	}
	// Midnight-to-midnight differences are whole days except for DST
	// shifts; rounding absorbs the hour either way.
	const day = 24 * time.Hour
	return int((diff + day/2) / day)
}
