package progress

import (
	"reflect"
	"testing"
	"time"

	"studystreak/internal/models"
)

func testProfile() models.Profile {
	return models.Profile{
		ID:       "p1",
		Username: "Minh",
		Grade:    "Lớp 8",
		Pet: models.Pet{
			Name:   "Rexy",
			Avatar: "classic",
			XP:     0,
			IQ:     50,
			Level:  1,
		},
		StudyHistory:   make(map[string]int),
		DailyGoalHours: 3,
		Language:       "vi",
	}
}

func TestNormalizeBackfillsDefaults(t *testing.T) {
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.Local)

	p := models.Profile{ID: "legacy", Pet: models.Pet{XP: 250}}
	got := NormalizeProfile(p, now)

	if got.Language != DefaultLanguage {
		t.Errorf("Language = %q, want %q", got.Language, DefaultLanguage)
	}
	if got.Pet.IQ != DefaultPetIQ {
		t.Errorf("Pet.IQ = %d, want %d", got.Pet.IQ, DefaultPetIQ)
	}
	if got.StudyHistory == nil {
		t.Error("StudyHistory should be backfilled to an empty map")
	}
	if got.DailyGoalHours != DefaultDailyGoalHours {
		t.Errorf("DailyGoalHours = %v, want %v", got.DailyGoalHours, DefaultDailyGoalHours)
	}
	if got.Pet.Level != 3 {
		t.Errorf("Pet.Level = %d, want 3 for 250 XP", got.Pet.Level)
	}
}

func TestNormalizeStreakDecay(t *testing.T) {
	now := time.Date(2026, 8, 29, 9, 0, 0, 0, time.Local)

	tests := []struct {
		name          string
		lastCompleted string
		streak        int
		wantStreak    int
	}{
		{
			name:          "same day keeps streak",
			lastCompleted: "2026-08-29",
			streak:        5,
			wantStreak:    5,
		},
		{
			name:          "yesterday keeps streak",
			lastCompleted: "2026-08-28",
			streak:        5,
			wantStreak:    5,
		},
		{
			name:          "two day gap resets streak",
			lastCompleted: "2026-08-27",
			streak:        5,
			wantStreak:    0,
		},
		{
			name:          "three day gap resets streak",
			lastCompleted: "2026-08-26",
			streak:        5,
			wantStreak:    0,
		},
		{
			name:          "zero streak stays zero",
			lastCompleted: "2026-08-20",
			streak:        0,
			wantStreak:    0,
		},
		{
			name:          "never completed keeps streak untouched",
			lastCompleted: "",
			streak:        3,
			wantStreak:    3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testProfile()
			p.LastCompletedDate = tt.lastCompleted
			p.Streak = tt.streak

			got := NormalizeProfile(p, now)
			if got.Streak != tt.wantStreak {
				t.Errorf("Streak = %d, want %d", got.Streak, tt.wantStreak)
			}
		})
	}
}

func TestNormalizeRewritesLegacyMarker(t *testing.T) {
	now := time.Date(2026, 8, 29, 9, 0, 0, 0, time.Local)

	p := testProfile()
	p.LastCompletedDate = "Fri Aug 28 2026"
	p.Streak = 4

	got := NormalizeProfile(p, now)
	if got.LastCompletedDate != "2026-08-28" {
		t.Errorf("LastCompletedDate = %q, want canonical %q", got.LastCompletedDate, "2026-08-28")
	}
	if got.Streak != 4 {
		t.Errorf("Streak = %d, want 4 (yesterday does not decay)", got.Streak)
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	now := time.Date(2026, 8, 29, 9, 0, 0, 0, time.Local)

	profiles := []models.Profile{
		{ID: "a", Pet: models.Pet{XP: 120}},
		func() models.Profile {
			p := testProfile()
			p.Streak = 7
			p.LastCompletedDate = "2026-08-25"
			p.StudyHistory["2026-08-25"] = 4000
			return p
		}(),
	}

	once := Normalize(profiles, now)
	twice := Normalize(once, now)

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Normalize is not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	now := time.Date(2026, 8, 29, 9, 0, 0, 0, time.Local)

	p := testProfile()
	p.Streak = 5
	p.LastCompletedDate = "2026-08-20"
	p.StudyHistory["2026-08-20"] = 100

	Normalize([]models.Profile{p}, now)

	if p.Streak != 5 {
		t.Errorf("input profile streak mutated to %d", p.Streak)
	}
	if p.StudyHistory["2026-08-20"] != 100 {
		t.Error("input profile study history mutated")
	}
}

func TestApplyQuizResultGoalCrossing(t *testing.T) {
	// Scenario: 10000s studied, goal 10800s, quiz adds 1000s and crosses it.
	now := time.Date(2026, 8, 29, 16, 0, 0, 0, time.Local)
	today := DayKey(now)

	p := testProfile()
	p.StudyHistory[today] = 10000

	result := models.QuizResult{
		Score:     100,
		Total:     6,
		TimeSpent: 1000,
		Passed:    true,
		XPGained:  2,
		IQChange:  3,
	}

	got := ApplyQuizResult(p, result, now)

	if got.StudyHistory[today] != 11000 {
		t.Errorf("StudyHistory[today] = %d, want 11000", got.StudyHistory[today])
	}
	if got.Pet.XP != 3 {
		t.Errorf("Pet.XP = %d, want 3 (2 gained + 1 goal bonus)", got.Pet.XP)
	}
	if got.Streak != 1 {
		t.Errorf("Streak = %d, want 1", got.Streak)
	}
	if got.LastCompletedDate != today {
		t.Errorf("LastCompletedDate = %q, want %q", got.LastCompletedDate, today)
	}
	if got.LockoutUntil != nil {
		t.Error("LockoutUntil should be cleared on a pass")
	}
}

func TestApplyQuizResultBonusFiresOncePerDay(t *testing.T) {
	now := time.Date(2026, 8, 29, 16, 0, 0, 0, time.Local)
	today := DayKey(now)

	p := testProfile()
	p.StudyHistory[today] = 10000

	first := models.QuizResult{TimeSpent: 1000, Passed: true, XPGained: 2}
	second := models.QuizResult{TimeSpent: 500, Passed: true, XPGained: 1}

	after1 := ApplyQuizResult(p, first, now)
	after2 := ApplyQuizResult(after1, second, now.Add(10*time.Minute))

	if after2.StudyHistory[today] != 11500 {
		t.Errorf("StudyHistory[today] = %d, want 11500", after2.StudyHistory[today])
	}
	// First call: 2 + 1 bonus. Second call: 1, no bonus.
	if after2.Pet.XP != 4 {
		t.Errorf("Pet.XP = %d, want 4 (bonus must not fire twice)", after2.Pet.XP)
	}
	if after2.Streak != 1 {
		t.Errorf("Streak = %d, want 1 (one increment per day)", after2.Streak)
	}
}

func TestApplyQuizResultBonusOnExactThreshold(t *testing.T) {
	now := time.Date(2026, 8, 29, 16, 0, 0, 0, time.Local)
	today := DayKey(now)

	p := testProfile()
	p.StudyHistory[today] = 10000

	// Lands exactly on 10800: crossing counts.
	got := ApplyQuizResult(p, models.QuizResult{TimeSpent: 800, XPGained: 0, Passed: true}, now)
	if got.Pet.XP != 1 {
		t.Errorf("Pet.XP = %d, want 1 (bonus at exact threshold)", got.Pet.XP)
	}

	// Already at the goal: no further bonus.
	again := ApplyQuizResult(got, models.QuizResult{TimeSpent: 100, XPGained: 0, Passed: true}, now)
	if again.Pet.XP != 1 {
		t.Errorf("Pet.XP = %d, want 1 (no bonus past threshold)", again.Pet.XP)
	}
}

func TestApplyQuizResultLevelDerivation(t *testing.T) {
	now := time.Date(2026, 8, 29, 16, 0, 0, 0, time.Local)

	tests := []struct {
		name      string
		startXP   int
		xpGained  int
		wantLevel int
	}{
		{"stays level 1", 0, 50, 1},
		{"reaches level 2 exactly", 90, 10, 2},
		{"mid level 3", 180, 70, 3},
		{"big jump", 0, 1000, 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testProfile()
			p.Pet.XP = tt.startXP

			got := ApplyQuizResult(p, models.QuizResult{XPGained: tt.xpGained, Passed: true}, now)
			if got.Pet.Level != tt.wantLevel {
				t.Errorf("Pet.Level = %d, want %d", got.Pet.Level, tt.wantLevel)
			}
			if got.Pet.Level != got.Pet.XP/XPPerLevel+1 {
				t.Errorf("level invariant broken: level=%d xp=%d", got.Pet.Level, got.Pet.XP)
			}
		})
	}
}

func TestApplyQuizResultIQFloor(t *testing.T) {
	now := time.Date(2026, 8, 29, 16, 0, 0, 0, time.Local)

	tests := []struct {
		name     string
		startIQ  int
		iqChange int
		wantIQ   int
	}{
		{"gain", 50, 5, 55},
		{"loss above floor", 50, -10, 40},
		{"floored not subtracted through", 12, -5, 10},
		{"at floor stays at floor", 10, -100, 10},
		{"no ceiling", 200, 50, 250},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testProfile()
			p.Pet.IQ = tt.startIQ

			got := ApplyQuizResult(p, models.QuizResult{IQChange: tt.iqChange, Passed: true}, now)
			if got.Pet.IQ != tt.wantIQ {
				t.Errorf("Pet.IQ = %d, want %d", got.Pet.IQ, tt.wantIQ)
			}
		})
	}
}

func TestApplyQuizResultIQFloorOverSequence(t *testing.T) {
	now := time.Date(2026, 8, 29, 16, 0, 0, 0, time.Local)

	p := testProfile()
	for _, change := range []int{-20, -30, 4, -50, 2, -1} {
		p = ApplyQuizResult(p, models.QuizResult{IQChange: change, Passed: true}, now)
		if p.Pet.IQ < MinPetIQ {
			t.Fatalf("Pet.IQ = %d dropped below floor %d", p.Pet.IQ, MinPetIQ)
		}
	}
}

func TestApplyQuizResultFailedQuizLockout(t *testing.T) {
	now := time.Date(2026, 8, 29, 16, 0, 0, 0, time.Local)

	p := testProfile()
	p.Streak = 3
	p.LastCompletedDate = "2026-08-28"

	got := ApplyQuizResult(p, models.QuizResult{Score: 40, Passed: false, IQChange: -2}, now)

	if got.LockoutUntil == nil {
		t.Fatal("LockoutUntil should be set on a fail")
	}
	want := now.Add(LockoutDuration)
	if !got.LockoutUntil.Equal(want) {
		t.Errorf("LockoutUntil = %v, want %v", got.LockoutUntil, want)
	}
	if got.Streak != 3 {
		t.Errorf("Streak = %d, want 3 (fail does not touch streak)", got.Streak)
	}
	if got.LastCompletedDate != "2026-08-28" {
		t.Errorf("LastCompletedDate changed on a fail: %q", got.LastCompletedDate)
	}
}

func TestApplyQuizResultLockoutOverwrite(t *testing.T) {
	now := time.Date(2026, 8, 29, 16, 0, 0, 0, time.Local)

	p := testProfile()
	existing := now.Add(25 * time.Minute)
	p.LockoutUntil = &existing

	// A second fail overwrites the unexpired lockout, never extends it.
	later := now.Add(5 * time.Minute)
	got := ApplyQuizResult(p, models.QuizResult{Passed: false}, later)

	want := later.Add(LockoutDuration)
	if got.LockoutUntil == nil || !got.LockoutUntil.Equal(want) {
		t.Errorf("LockoutUntil = %v, want %v", got.LockoutUntil, want)
	}
}

func TestApplyQuizResultStreakAcrossDays(t *testing.T) {
	day1 := time.Date(2026, 8, 28, 20, 0, 0, 0, time.Local)
	day2 := time.Date(2026, 8, 29, 7, 0, 0, 0, time.Local)

	p := testProfile()

	p = ApplyQuizResult(p, models.QuizResult{Passed: true}, day1)
	if p.Streak != 1 {
		t.Fatalf("Streak after day 1 = %d, want 1", p.Streak)
	}

	p = ApplyQuizResult(p, models.QuizResult{Passed: true}, day2)
	if p.Streak != 2 {
		t.Errorf("Streak after day 2 = %d, want 2", p.Streak)
	}
	if p.LastCompletedDate != DayKey(day2) {
		t.Errorf("LastCompletedDate = %q, want %q", p.LastCompletedDate, DayKey(day2))
	}
}

func TestApplyQuizResultDefaultsGoalWhenUnset(t *testing.T) {
	now := time.Date(2026, 8, 29, 16, 0, 0, 0, time.Local)
	today := DayKey(now)

	// Unnormalized profile: no goal configured, nil history.
	p := models.Profile{ID: "raw", Pet: models.Pet{IQ: 50}}

	got := ApplyQuizResult(p, models.QuizResult{TimeSpent: 3 * 3600, XPGained: 1, Passed: true}, now)

	if got.StudyHistory[today] != 3*3600 {
		t.Errorf("StudyHistory[today] = %d, want %d", got.StudyHistory[today], 3*3600)
	}
	// Default goal is 3h, so this call crosses it.
	if got.Pet.XP != 2 {
		t.Errorf("Pet.XP = %d, want 2 (1 gained + default-goal bonus)", got.Pet.XP)
	}
}
