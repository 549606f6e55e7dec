package validation

import (
	"fmt"
	"regexp"
	"strings"

	"studystreak/internal/models"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidatePassword checks if a password meets requirements
func ValidatePassword(password string) error {
	if password == "" {
		return ValidationError{Field: "password", Message: "password is required"}
	}
	if len(password) < 8 {
		return ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}
	return nil
}

// ValidateName checks if a name is valid
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "name", Message: "name is required"}
	}
	if len(name) < 2 {
		return ValidationError{Field: "name", Message: "name must be at least 2 characters"}
	}
	return nil
}

// ValidateUsername checks a profile display name
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return ValidationError{Field: "username", Message: "username is required"}
	}
	if len(username) > 50 {
		return ValidationError{Field: "username", Message: "username must be at most 50 characters"}
	}
	return nil
}

// ValidateDailyGoal checks a daily study goal in hours
func ValidateDailyGoal(hours float64) error {
	if hours <= 0 {
		return ValidationError{Field: "dailyGoalHours", Message: "daily goal must be positive"}
	}
	if hours > 24 {
		return ValidationError{Field: "dailyGoalHours", Message: "daily goal cannot exceed 24 hours"}
	}
	return nil
}

// ValidateQuizSubmission checks an answer sheet before it is graded.
// Malformed submissions are rejected here so the grader and the progress
// engine only ever see well-formed input.
func ValidateQuizSubmission(sub *models.QuizSubmission) error {
	if len(sub.Questions) == 0 {
		return ValidationError{Field: "questions", Message: "quiz has no questions"}
	}
	if len(sub.Answers) != len(sub.Questions) {
		return ValidationError{Field: "answers", Message: "answer count does not match question count"}
	}
	if sub.TimeSpent < 0 {
		return ValidationError{Field: "timeSpentSeconds", Message: "time spent cannot be negative"}
	}

	for i, q := range sub.Questions {
		if len(q.Options) < 2 {
			return ValidationError{Field: "questions", Message: fmt.Sprintf("question %d has fewer than 2 options", i)}
		}
		if q.CorrectAnswerIndex < 0 || q.CorrectAnswerIndex >= len(q.Options) {
			return ValidationError{Field: "questions", Message: fmt.Sprintf("question %d has an out-of-range answer index", i)}
		}
		switch q.Difficulty {
		case models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
		default:
			return ValidationError{Field: "questions", Message: fmt.Sprintf("question %d has unknown difficulty %q", i, q.Difficulty)}
		}
	}

	for i, a := range sub.Answers {
		if a < -1 || a >= len(sub.Questions[i].Options) {
			return ValidationError{Field: "answers", Message: fmt.Sprintf("answer %d is out of range", i)}
		}
	}

	return nil
}
