package repository

import (
	"database/sql"
	"fmt"
	"time"

	"studystreak/internal/database"
	"studystreak/internal/models"
)

// QuizRepository handles database operations for quiz session records
type QuizRepository struct {
	db *database.DB
}

// NewQuizRepository creates a new quiz repository
func NewQuizRepository(db *database.DB) *QuizRepository {
	return &QuizRepository{db: db}
}

// InsertSession records a completed quiz. It accepts a DBTX so the record
// lands in the same transaction as the profile update.
func (r *QuizRepository) InsertSession(q database.DBTX, s *models.QuizSession) error {
	query := `
		INSERT INTO quiz_sessions (
			profile_id, completed_at, total_questions, correct_answers,
			score, time_spent, passed, xp_gained, iq_change
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := q.ExecReturningID(query,
		s.ProfileID, s.CompletedAt, s.TotalQuestions, s.CorrectAnswers,
		s.Score, s.TimeSpent, s.Passed, s.XPGained, s.IQChange,
	)
	if err != nil {
		return fmt.Errorf("failed to insert quiz session: %w", err)
	}
	s.ID = id
	return nil
}

// GetProfileSessions retrieves a profile's quiz history, newest first
func (r *QuizRepository) GetProfileSessions(profileID string, limit int) ([]models.QuizSession, error) {
	query := `
		SELECT id, profile_id, completed_at, total_questions, correct_answers,
			score, time_spent, passed, xp_gained, iq_change
		FROM quiz_sessions
		WHERE profile_id = ?
		ORDER BY completed_at DESC
		LIMIT ?
	`
	rows, err := r.db.Query(query, profileID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query quiz sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.QuizSession
	for rows.Next() {
		var s models.QuizSession
		if err := rows.Scan(
			&s.ID, &s.ProfileID, &s.CompletedAt, &s.TotalQuestions, &s.CorrectAnswers,
			&s.Score, &s.TimeSpent, &s.Passed, &s.XPGained, &s.IQChange,
		); err != nil {
			return nil, fmt.Errorf("failed to scan quiz session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate quiz sessions: %w", err)
	}

	return sessions, nil
}

// GetProfileStats aggregates a profile's quiz totals
func (r *QuizRepository) GetProfileStats(profileID string) (total, passed int, avgScore float64, err error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN passed THEN 1 ELSE 0 END), 0), COALESCE(AVG(score), 0)
		FROM quiz_sessions
		WHERE profile_id = ?
	`
	err = r.db.QueryRow(query, profileID).Scan(&total, &passed, &avgScore)
	if err != nil && err != sql.ErrNoRows {
		return 0, 0, 0, fmt.Errorf("failed to get quiz stats: %w", err)
	}
	return total, passed, avgScore, nil
}

// DeleteSessionsBefore prunes quiz sessions older than the cutoff
func (r *QuizRepository) DeleteSessionsBefore(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec("DELETE FROM quiz_sessions WHERE completed_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune quiz sessions: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read prune result: %w", err)
	}
	return n, nil
}
