package models

import "time"

// QuestionDifficulty is the difficulty tier of a generated question
type QuestionDifficulty string

const (
	DifficultyEasy   QuestionDifficulty = "easy"
	DifficultyMedium QuestionDifficulty = "medium"
	DifficultyHard   QuestionDifficulty = "hard"
)

// Question is a single multiple-choice question in a generated quiz
type Question struct {
	ID                 string             `json:"id"`
	Subject            string             `json:"subject"`
	QuestionText       string             `json:"questionText"`
	Options            []string           `json:"options"`
	CorrectAnswerIndex int                `json:"correctAnswerIndex"`
	Explanation        string             `json:"explanation"`
	Difficulty         QuestionDifficulty `json:"difficulty"`
}

// SubjectLesson describes one subject's lesson content used to generate
// quiz questions
type SubjectLesson struct {
	Subject  string `json:"subject"`
	Lesson   string `json:"lesson"`
	Textbook string `json:"textbook,omitempty"`
}

// QuizSubmission is a client's answer sheet for a generated quiz.
// An answer of -1 marks a skipped question.
type QuizSubmission struct {
	ProfileID string     `json:"profileId"`
	Questions []Question `json:"questions"`
	Answers   []int      `json:"answers"`
	TimeSpent int        `json:"timeSpentSeconds"`
}

// QuizResult is the graded outcome of a completed quiz, consumed by the
// progress engine
type QuizResult struct {
	Score     float64
	Total     int
	TimeSpent int // seconds
	Passed    bool
	XPGained  int
	IQChange  int
}

// QuizSession is a persisted record of a completed quiz
type QuizSession struct {
	ID             int64
	ProfileID      string
	CompletedAt    time.Time
	TotalQuestions int
	CorrectAnswers int
	Score          float64
	TimeSpent      int
	Passed         bool
	XPGained       int
	IQChange       int
}
