package models

import "time"

// Pet is the progression avatar owned by a study profile. It is created
// with the profile and destroyed with it; only quiz completions mutate it.
type Pet struct {
	Name   string
	Avatar string
	XP     int
	IQ     int
	Level  int
}

// Profile represents one learner's study profile: schedule, streak state,
// pet and per-day study history.
type Profile struct {
	ID       string
	UserID   int64
	Username string
	Grade    string

	// Schedule maps a weekday name to the subjects studied that day.
	Schedule map[string][]string

	// SubjectTextbooks maps a subject name to its textbook set.
	SubjectTextbooks map[string]string

	// Streak counts consecutive days with at least one passed quiz.
	Streak int

	// LastCompletedDate is the day key of the last passed quiz, empty when
	// no quiz has ever been passed.
	LastCompletedDate string

	// LockoutUntil disables quiz-taking while now is before it.
	LockoutUntil *time.Time

	Pet Pet

	// StudyHistory maps a day key to accumulated study seconds for that day.
	StudyHistory map[string]int

	DailyGoalHours float64
	Theme          string
	Language       string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a deep copy of the profile so callers can mutate the copy
// without sharing map state with the original.
func (p Profile) Clone() Profile {
	out := p
	if p.Schedule != nil {
		out.Schedule = make(map[string][]string, len(p.Schedule))
		for day, subjects := range p.Schedule {
			out.Schedule[day] = append([]string(nil), subjects...)
		}
	}
	if p.SubjectTextbooks != nil {
		out.SubjectTextbooks = make(map[string]string, len(p.SubjectTextbooks))
		for subject, textbook := range p.SubjectTextbooks {
			out.SubjectTextbooks[subject] = textbook
		}
	}
	if p.StudyHistory != nil {
		out.StudyHistory = make(map[string]int, len(p.StudyHistory))
		for day, seconds := range p.StudyHistory {
			out.StudyHistory[day] = seconds
		}
	}
	return out
}

// ProfileWithStats combines a profile with aggregate quiz statistics
type ProfileWithStats struct {
	Profile       Profile
	TotalQuizzes  int
	QuizzesPassed int
	AverageScore  float64
	SecondsToday  int
	GoalMetToday  bool
}
