package progress

import (
	"time"

	"studystreak/internal/models"
)

// Domain constants for profile progression.
const (
	// DefaultDailyGoalHours is the study-time goal applied when a profile
	// has none configured.
	DefaultDailyGoalHours = 3.0

	// DefaultPetIQ is the IQ a pet starts with.
	DefaultPetIQ = 50

	// MinPetIQ is the hard floor pet IQ can never drop below.
	MinPetIQ = 10

	// XPPerLevel is the XP span of one pet level: level = xp/100 + 1.
	XPPerLevel = 100

	// DailyGoalBonusXP is granted once per day when accumulated study time
	// first crosses the daily goal.
	DailyGoalBonusXP = 1

	// LockoutDuration is the cooldown after a failed quiz.
	LockoutDuration = 30 * time.Minute

	// DefaultLanguage backfills profiles saved before language existed.
	DefaultLanguage = "vi"
)

// Normalize returns a copy of the profile collection with missing optional
// fields backfilled and stale streaks decayed. It is idempotent and leaves
// its input untouched; callers run it once per load, not per request.
func Normalize(profiles []models.Profile, now time.Time) []models.Profile {
	out := make([]models.Profile, len(profiles))
	for i, p := range profiles {
		out[i] = NormalizeProfile(p, now)
	}
	return out
}

// NormalizeProfile backfills one profile's defaults and applies streak
// decay: a gap of two or more days since the last passed quiz resets the
// streak to zero. Yesterday (gap of one) is the expected cadence and does
// not decay; same-day does not decay.
func NormalizeProfile(p models.Profile, now time.Time) models.Profile {
	p = p.Clone()

	if p.Language == "" {
		p.Language = DefaultLanguage
	}
	if p.Pet.IQ == 0 {
		p.Pet.IQ = DefaultPetIQ
	}
	if p.Pet.IQ < MinPetIQ {
		p.Pet.IQ = MinPetIQ
	}
	if p.StudyHistory == nil {
		p.StudyHistory = make(map[string]int)
	}
	if p.DailyGoalHours <= 0 {
		p.DailyGoalHours = DefaultDailyGoalHours
	}
	p.Pet.Level = p.Pet.XP/XPPerLevel + 1

	if p.LastCompletedDate != "" {
		if last, ok := parseDayMarker(p.LastCompletedDate); ok {
			// Rewrite legacy markers to the canonical day key.
			p.LastCompletedDate = DayKey(last)
			if p.Streak > 0 && DaysBetween(now, last) > 1 {
				p.Streak = 0
			}
		}
	}

	return p
}

// ApplyQuizResult applies the outcome of a completed quiz to a profile and
// returns the updated copy. It is a total function: it performs no I/O and
// never rejects. Callers must validate the result (non-negative time,
// score in range) before calling; see validation.ValidateQuizSubmission.
//
// The order of steps matters: study time is accumulated before the
// daily-goal check so the bonus fires exactly once per day, on the call
// that crosses the threshold.
func ApplyQuizResult(p models.Profile, r models.QuizResult, now time.Time) models.Profile {
	p = p.Clone()

	today := DayKey(now)

	goalHours := p.DailyGoalHours
	if goalHours <= 0 {
		goalHours = DefaultDailyGoalHours
	}
	dailyGoalSeconds := int(goalHours * 3600)

	if p.StudyHistory == nil {
		p.StudyHistory = make(map[string]int)
	}
	secondsBefore := p.StudyHistory[today]
	secondsAfter := secondsBefore + r.TimeSpent
	p.StudyHistory[today] = secondsAfter

	xpGained := r.XPGained
	if secondsBefore < dailyGoalSeconds && secondsAfter >= dailyGoalSeconds {
		xpGained += DailyGoalBonusXP
	}

	p.Pet.XP += xpGained
	p.Pet.Level = p.Pet.XP/XPPerLevel + 1

	p.Pet.IQ += r.IQChange
	if p.Pet.IQ < MinPetIQ {
		p.Pet.IQ = MinPetIQ
	}

	if r.Passed {
		if p.LastCompletedDate != today {
			p.Streak++
			p.LastCompletedDate = today
		}
		p.LockoutUntil = nil
	} else {
		until := now.Add(LockoutDuration)
		p.LockoutUntil = &until
	}

	return p
}
