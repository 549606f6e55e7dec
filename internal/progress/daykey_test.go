package progress

import (
	"testing"
	"time"
)

func TestDayKeySameDayRegardlessOfTime(t *testing.T) {
	tests := []struct {
		name string
		a    time.Time
		b    time.Time
		same bool
	}{
		{
			name: "morning and evening of same day",
			a:    time.Date(2026, 8, 29, 6, 0, 0, 0, time.Local),
			b:    time.Date(2026, 8, 29, 23, 59, 59, 0, time.Local),
			same: true,
		},
		{
			name: "just before and after midnight",
			a:    time.Date(2026, 8, 29, 23, 59, 59, 0, time.Local),
			b:    time.Date(2026, 8, 30, 0, 0, 1, 0, time.Local),
			same: false,
		},
		{
			name: "identical instants",
			a:    time.Date(2026, 8, 29, 12, 0, 0, 0, time.Local),
			b:    time.Date(2026, 8, 29, 12, 0, 0, 0, time.Local),
			same: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DayKey(tt.a) == DayKey(tt.b)
			if got != tt.same {
				t.Errorf("DayKey(%v) == DayKey(%v) = %v, want %v", tt.a, tt.b, got, tt.same)
			}
		})
	}
}

func TestDayKeyFormat(t *testing.T) {
	instant := time.Date(2026, 8, 29, 15, 30, 0, 0, time.Local)
	if got := DayKey(instant); got != "2026-08-29" {
		t.Errorf("DayKey() = %q, want %q", got, "2026-08-29")
	}
}

func TestParseDayKeyRoundTrip(t *testing.T) {
	instant := time.Date(2026, 8, 29, 18, 45, 0, 0, time.Local)
	key := DayKey(instant)

	parsed, ok := ParseDayKey(key)
	if !ok {
		t.Fatalf("ParseDayKey(%q) failed", key)
	}
	if DayKey(parsed) != key {
		t.Errorf("round trip changed key: got %q, want %q", DayKey(parsed), key)
	}

	if _, ok := ParseDayKey("not-a-day"); ok {
		t.Error("ParseDayKey should reject garbage input")
	}
}

func TestParseDayMarkerLegacyFormat(t *testing.T) {
	// Old installations stored markers in toDateString form.
	parsed, ok := parseDayMarker("Sat Aug 29 2026")
	if !ok {
		t.Fatal("parseDayMarker should accept the legacy layout")
	}
	if DayKey(parsed) != "2026-08-29" {
		t.Errorf("legacy marker parsed to %q, want %q", DayKey(parsed), "2026-08-29")
	}
}

func TestDaysBetween(t *testing.T) {
	base := time.Date(2026, 8, 29, 12, 0, 0, 0, time.Local)

	tests := []struct {
		name string
		a    time.Time
		b    time.Time
		want int
	}{
		{
			name: "same instant",
			a:    base,
			b:    base,
			want: 0,
		},
		{
			name: "same day different times",
			a:    time.Date(2026, 8, 29, 0, 30, 0, 0, time.Local),
			b:    time.Date(2026, 8, 29, 23, 30, 0, 0, time.Local),
			want: 0,
		},
		{
			name: "consecutive days across midnight",
			a:    time.Date(2026, 8, 29, 23, 59, 0, 0, time.Local),
			b:    time.Date(2026, 8, 30, 0, 1, 0, 0, time.Local),
			want: 1,
		},
		{
			name: "sub-day drift does not count as a day",
			a:    time.Date(2026, 8, 29, 8, 0, 0, 0, time.Local),
			b:    time.Date(2026, 8, 30, 7, 0, 0, 0, time.Local),
			want: 1,
		},
		{
			name: "three day gap",
			a:    time.Date(2026, 8, 26, 22, 0, 0, 0, time.Local),
			b:    time.Date(2026, 8, 29, 6, 0, 0, 0, time.Local),
			want: 3,
		},
		{
			name: "month boundary",
			a:    time.Date(2026, 8, 31, 12, 0, 0, 0, time.Local),
			b:    time.Date(2026, 9, 1, 12, 0, 0, 0, time.Local),
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysBetween(tt.a, tt.b); got != tt.want {
				t.Errorf("DaysBetween() = %d, want %d", got, tt.want)
			}
			// Symmetric under absolute value.
			if got := DaysBetween(tt.b, tt.a); got != tt.want {
				t.Errorf("DaysBetween() reversed = %d, want %d", got, tt.want)
			}
		})
	}
}
