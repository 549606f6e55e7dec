package progress

import (
	"testing"
	"time"

	"studystreak/internal/models"
)

func TestIsLocked(t *testing.T) {
	now := time.Date(2026, 8, 29, 16, 0, 0, 0, time.Local)
	deadline := now.Add(LockoutDuration)

	tests := []struct {
		name    string
		lockout *time.Time
		at      time.Time
		want    bool
	}{
		{"no lockout", nil, now, false},
		{"just after fail", &deadline, now.Add(time.Second), true},
		{"one second before deadline", &deadline, deadline.Add(-time.Second), true},
		{"exactly at deadline", &deadline, deadline, false},
		{"just past deadline", &deadline, deadline.Add(time.Millisecond), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testProfile()
			p.LockoutUntil = tt.lockout
			if got := IsLocked(p, tt.at); got != tt.want {
				t.Errorf("IsLocked() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMinutesRemaining(t *testing.T) {
	now := time.Date(2026, 8, 29, 16, 0, 0, 0, time.Local)

	tests := []struct {
		name      string
		remaining time.Duration
		want      int
	}{
		{"full lockout", 30 * time.Minute, 30},
		{"partial minute rounds up", 4*time.Minute + 30*time.Second, 5},
		{"under a minute rounds to one", 10 * time.Second, 1},
		{"expired", -time.Minute, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testProfile()
			deadline := now.Add(tt.remaining)
			p.LockoutUntil = &deadline
			if got := MinutesRemaining(p, now); got != tt.want {
				t.Errorf("MinutesRemaining() = %d, want %d", got, tt.want)
			}
		})
	}

	t.Run("no lockout", func(t *testing.T) {
		p := testProfile()
		if got := MinutesRemaining(p, now); got != 0 {
			t.Errorf("MinutesRemaining() = %d, want 0", got)
		}
	})
}

func TestFailThenWaitUnlocks(t *testing.T) {
	now := time.Date(2026, 8, 29, 16, 0, 0, 0, time.Local)

	p := ApplyQuizResult(testProfile(), models.QuizResult{Passed: false}, now)

	if !IsLocked(p, now.Add(time.Second)) {
		t.Error("profile should be locked right after a fail")
	}
	if IsLocked(p, now.Add(LockoutDuration)) {
		t.Error("profile should unlock once the cooldown elapses")
	}
	if IsLocked(p, now.Add(LockoutDuration+time.Millisecond)) {
		t.Error("profile should stay unlocked past the cooldown")
	}
}

func TestPassClearsLockoutEarly(t *testing.T) {
	now := time.Date(2026, 8, 29, 16, 0, 0, 0, time.Local)

	p := ApplyQuizResult(testProfile(), models.QuizResult{Passed: false}, now)

	// A pass (e.g. after an admin reset) clears any pending lockout.
	p = ApplyQuizResult(p, models.QuizResult{Passed: true}, now.Add(time.Minute))
	if p.LockoutUntil != nil {
		t.Error("a pass should clear the lockout")
	}
	if IsLocked(p, now.Add(2*time.Minute)) {
		t.Error("profile should not be locked after a pass")
	}
}
