package service

import (
	"testing"

	"studystreak/internal/models"
)

func question(difficulty models.QuestionDifficulty, correctIndex int) models.Question {
	return models.Question{
		Subject:            "Toán",
		QuestionText:       "placeholder",
		Options:            []string{"a", "b", "c", "d"},
		CorrectAnswerIndex: correctIndex,
		Difficulty:         difficulty,
	}
}

func TestGradeQuizAllCorrect(t *testing.T) {
	sub := &models.QuizSubmission{
		Questions: []models.Question{
			question(models.DifficultyEasy, 0),
			question(models.DifficultyMedium, 1),
			question(models.DifficultyHard, 2),
		},
		Answers:   []int{0, 1, 2},
		TimeSpent: 300,
	}

	result := GradeQuiz(sub)

	if result.Score != 100 {
		t.Errorf("Score = %v, want 100", result.Score)
	}
	if !result.Passed {
		t.Error("a perfect quiz should pass")
	}
	// 1 + 2 + 3 points
	if result.XPGained != 6 {
		t.Errorf("XPGained = %d, want 6", result.XPGained)
	}
	if result.IQChange != 6 {
		t.Errorf("IQChange = %d, want 6", result.IQChange)
	}
	if result.TimeSpent != 300 {
		t.Errorf("TimeSpent = %d, want 300", result.TimeSpent)
	}
}

func TestGradeQuizWrongAnswersCostIQ(t *testing.T) {
	sub := &models.QuizSubmission{
		Questions: []models.Question{
			question(models.DifficultyHard, 0),
			question(models.DifficultyEasy, 1),
			question(models.DifficultyEasy, 2),
		},
		Answers: []int{0, 3, 3},
	}

	result := GradeQuiz(sub)

	// One hard correct, two wrong.
	if result.XPGained != 3 {
		t.Errorf("XPGained = %d, want 3", result.XPGained)
	}
	if result.IQChange != 1 {
		t.Errorf("IQChange = %d, want 1 (3 earned, 2 lost)", result.IQChange)
	}
	if result.Passed {
		t.Error("one of three correct should not pass")
	}
}

func TestGradeQuizSkippedQuestionsAreNeutral(t *testing.T) {
	sub := &models.QuizSubmission{
		Questions: []models.Question{
			question(models.DifficultyMedium, 0),
			question(models.DifficultyMedium, 1),
		},
		Answers: []int{0, -1},
	}

	result := GradeQuiz(sub)

	if result.XPGained != 2 {
		t.Errorf("XPGained = %d, want 2", result.XPGained)
	}
	// Skipped question must not subtract IQ.
	if result.IQChange != 2 {
		t.Errorf("IQChange = %d, want 2", result.IQChange)
	}
	if result.Score != 50 {
		t.Errorf("Score = %v, want 50", result.Score)
	}
}

func TestGradeQuizPassBoundary(t *testing.T) {
	tests := []struct {
		name       string
		correct    int
		total      int
		wantPassed bool
	}{
		{"four of five is exactly 80", 4, 5, true},
		{"three of four is 75", 3, 4, false},
		{"five of six is 83", 5, 6, true},
		{"all wrong", 0, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := &models.QuizSubmission{}
			for i := 0; i < tt.total; i++ {
				sub.Questions = append(sub.Questions, question(models.DifficultyEasy, 0))
				if i < tt.correct {
					sub.Answers = append(sub.Answers, 0)
				} else {
					sub.Answers = append(sub.Answers, 1)
				}
			}

			result := GradeQuiz(sub)
			if result.Passed != tt.wantPassed {
				t.Errorf("Passed = %v (score %v), want %v", result.Passed, result.Score, tt.wantPassed)
			}
		})
	}
}

func TestDifficultyPoints(t *testing.T) {
	tests := []struct {
		difficulty models.QuestionDifficulty
		want       int
	}{
		{models.DifficultyEasy, 1},
		{models.DifficultyMedium, 2},
		{models.DifficultyHard, 3},
		{"unknown", 1},
	}

	for _, tt := range tests {
		if got := difficultyPoints(tt.difficulty); got != tt.want {
			t.Errorf("difficultyPoints(%q) = %d, want %d", tt.difficulty, got, tt.want)
		}
	}
}
