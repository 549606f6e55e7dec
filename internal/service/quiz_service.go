package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"studystreak/internal/ai"
	"studystreak/internal/models"
	"studystreak/internal/progress"
	"studystreak/internal/repository"
	"studystreak/internal/validation"
)

var (
	ErrQuizLocked      = errors.New("quiz taking is locked after a failed attempt")
	ErrQuizUnavailable = errors.New("quiz generation is not available")
)

// PassingScore is the minimum score (percent) that counts as a pass
const PassingScore = 80.0

// QuizService handles quiz generation, grading and completion
type QuizService struct {
	profileRepo *repository.ProfileRepository
	quizRepo    *repository.QuizRepository
	gemini      *ai.GeminiService
}

// NewQuizService creates a new quiz service
func NewQuizService(profileRepo *repository.ProfileRepository, quizRepo *repository.QuizRepository, gemini *ai.GeminiService) *QuizService {
	return &QuizService{
		profileRepo: profileRepo,
		quizRepo:    quizRepo,
		gemini:      gemini,
	}
}

// difficultyPoints maps a question difficulty to its point value
func difficultyPoints(d models.QuestionDifficulty) int {
	switch d {
	case models.DifficultyEasy:
		return 1
	case models.DifficultyMedium:
		return 2
	case models.DifficultyHard:
		return 3
	default:
		return 1
	}
}

// GradeQuiz scores an answer sheet. Correct answers earn their question's
// point value as XP and pet IQ; wrong answers cost one IQ point; skipped
// questions earn and cost nothing.
func GradeQuiz(sub *models.QuizSubmission) models.QuizResult {
	var correct, xpGained, iqChange int

	for i, q := range sub.Questions {
		answer := sub.Answers[i]
		if answer == -1 {
			continue
		}
		if answer == q.CorrectAnswerIndex {
			points := difficultyPoints(q.Difficulty)
			correct++
			xpGained += points
			iqChange += points
		} else {
			iqChange--
		}
	}

	total := len(sub.Questions)
	score := float64(correct) / float64(total) * 100

	return models.QuizResult{
		Score:     score,
		Total:     total,
		TimeSpent: sub.TimeSpent,
		Passed:    score >= PassingScore,
		XPGained:  xpGained,
		IQChange:  iqChange,
	}
}

// GenerateQuiz produces questions for a profile's lessons. Locked profiles
// cannot start a quiz.
func (s *QuizService) GenerateQuiz(ctx context.Context, profileID, grade string, lessons []models.SubjectLesson, questionsPerSubject int, language string) ([]models.Question, error) {
	if s.gemini == nil || !s.gemini.IsEnabled() {
		return nil, ErrQuizUnavailable
	}

	p, err := s.profileRepo.GetProfileByID(profileID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProfileNotFound
	}
	if progress.IsLocked(*p, time.Now()) {
		return nil, ErrQuizLocked
	}

	return s.gemini.GenerateQuestions(ctx, grade, lessons, questionsPerSubject, language)
}

// CompleteQuiz grades a submission and applies the outcome to the profile.
// The profile update, the day's study-history row and the quiz session
// record are committed in one transaction.
func (s *QuizService) CompleteQuiz(profileID string, sub *models.QuizSubmission, now time.Time) (*models.Profile, *models.QuizResult, error) {
	if err := validation.ValidateQuizSubmission(sub); err != nil {
		return nil, nil, err
	}

	loaded, err := s.profileRepo.GetProfileByID(profileID)
	if err != nil {
		return nil, nil, err
	}
	if loaded == nil {
		return nil, nil, ErrProfileNotFound
	}

	p := progress.NormalizeProfile(*loaded, now)
	if progress.IsLocked(p, now) {
		return nil, nil, ErrQuizLocked
	}

	result := GradeQuiz(sub)
	updated := progress.ApplyQuizResult(p, result, now)
	today := progress.DayKey(now)

	correct := 0
	for i, q := range sub.Questions {
		if sub.Answers[i] == q.CorrectAnswerIndex {
			correct++
		}
	}

	tx, err := s.profileRepo.Begin()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.profileRepo.UpdateProgress(tx, &updated); err != nil {
		return nil, nil, err
	}
	if err := s.profileRepo.UpsertStudySeconds(tx, profileID, today, updated.StudyHistory[today]); err != nil {
		return nil, nil, err
	}

	session := &models.QuizSession{
		ProfileID:      profileID,
		CompletedAt:    now,
		TotalQuestions: result.Total,
		CorrectAnswers: correct,
		Score:          result.Score,
		TimeSpent:      result.TimeSpent,
		Passed:         result.Passed,
		XPGained:       result.XPGained,
		IQChange:       result.IQChange,
	}
	if err := s.quizRepo.InsertSession(tx, session); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit quiz completion: %w", err)
	}

	return &updated, &result, nil
}

// GetHistory returns a profile's most recent quiz sessions
func (s *QuizService) GetHistory(profileID string, limit int) ([]models.QuizSession, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.quizRepo.GetProfileSessions(profileID, limit)
}

// LockoutStatus reports whether a profile may take a quiz right now
func (s *QuizService) LockoutStatus(profileID string, now time.Time) (locked bool, minutesRemaining int, err error) {
	p, err := s.profileRepo.GetProfileByID(profileID)
	if err != nil {
		return false, 0, err
	}
	if p == nil {
		return false, 0, ErrProfileNotFound
	}
	return progress.IsLocked(*p, now), progress.MinutesRemaining(*p, now), nil
}

// PetChat relays a message to the profile's pet persona
func (s *QuizService) PetChat(ctx context.Context, profileID, message string) (string, error) {
	if s.gemini == nil || !s.gemini.IsEnabled() {
		return "", ErrQuizUnavailable
	}

	p, err := s.profileRepo.GetProfileByID(profileID)
	if err != nil {
		return "", err
	}
	if p == nil {
		return "", ErrProfileNotFound
	}

	return s.gemini.PetChat(ctx, p.Pet.Name, p.Pet.IQ, message, p.Language)
}
