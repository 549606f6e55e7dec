package validation

import (
	"testing"

	"studystreak/internal/models"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{
			name:    "valid email",
			email:   "test@example.com",
			wantErr: false,
		},
		{
			name:    "valid email with subdomain",
			email:   "user@mail.example.com",
			wantErr: false,
		},
		{
			name:    "valid email with plus",
			email:   "user+tag@example.com",
			wantErr: false,
		},
		{
			name:    "missing @",
			email:   "testexample.com",
			wantErr: true,
		},
		{
			name:    "missing domain",
			email:   "test@",
			wantErr: true,
		},
		{
			name:    "missing local part",
			email:   "@example.com",
			wantErr: true,
		},
		{
			name:    "empty string",
			email:   "",
			wantErr: true,
		},
		{
			name:    "spaces in email",
			email:   "test @example.com",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid password", "supersecret", false},
		{"exactly 8 characters", "12345678", false},
		{"too short", "short", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePassword(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
			}
		})
	}
}

func TestValidateDailyGoal(t *testing.T) {
	tests := []struct {
		name    string
		hours   float64
		wantErr bool
	}{
		{"typical goal", 3, false},
		{"fractional goal", 1.5, false},
		{"zero", 0, true},
		{"negative", -2, true},
		{"more than a day", 25, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDailyGoal(tt.hours)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDailyGoal(%v) error = %v, wantErr %v", tt.hours, err, tt.wantErr)
			}
		})
	}
}

func validSubmission() *models.QuizSubmission {
	return &models.QuizSubmission{
		ProfileID: "p1",
		Questions: []models.Question{
			{
				ID:                 "q1",
				Subject:            "Toán",
				QuestionText:       "2 + 2 = ?",
				Options:            []string{"3", "4", "5", "6"},
				CorrectAnswerIndex: 1,
				Difficulty:         models.DifficultyEasy,
			},
			{
				ID:                 "q2",
				Subject:            "Toán",
				QuestionText:       "5 * 6 = ?",
				Options:            []string{"30", "35", "36", "25"},
				CorrectAnswerIndex: 0,
				Difficulty:         models.DifficultyMedium,
			},
		},
		Answers:   []int{1, 0},
		TimeSpent: 120,
	}
}

func TestValidateQuizSubmission(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.QuizSubmission)
		wantErr bool
	}{
		{
			name:    "valid submission",
			mutate:  func(s *models.QuizSubmission) {},
			wantErr: false,
		},
		{
			name:    "skipped answer is allowed",
			mutate:  func(s *models.QuizSubmission) { s.Answers[0] = -1 },
			wantErr: false,
		},
		{
			name:    "no questions",
			mutate:  func(s *models.QuizSubmission) { s.Questions = nil },
			wantErr: true,
		},
		{
			name:    "answer count mismatch",
			mutate:  func(s *models.QuizSubmission) { s.Answers = s.Answers[:1] },
			wantErr: true,
		},
		{
			name:    "negative time spent",
			mutate:  func(s *models.QuizSubmission) { s.TimeSpent = -1 },
			wantErr: true,
		},
		{
			name:    "answer index past options",
			mutate:  func(s *models.QuizSubmission) { s.Answers[1] = 4 },
			wantErr: true,
		},
		{
			name:    "answer index below -1",
			mutate:  func(s *models.QuizSubmission) { s.Answers[0] = -2 },
			wantErr: true,
		},
		{
			name:    "correct index out of range",
			mutate:  func(s *models.QuizSubmission) { s.Questions[0].CorrectAnswerIndex = 9 },
			wantErr: true,
		},
		{
			name:    "too few options",
			mutate:  func(s *models.QuizSubmission) { s.Questions[0].Options = []string{"only"} },
			wantErr: true,
		},
		{
			name:    "unknown difficulty",
			mutate:  func(s *models.QuizSubmission) { s.Questions[1].Difficulty = "brutal" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := validSubmission()
			tt.mutate(sub)
			err := ValidateQuizSubmission(sub)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateQuizSubmission() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
