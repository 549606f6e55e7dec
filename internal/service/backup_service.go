package service

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"studystreak/internal/database"
)

// BackupData represents the complete database backup structure
type BackupData struct {
	Version      string              `json:"version"`
	ExportedAt   time.Time           `json:"exported_at"`
	Users        []UserBackup        `json:"users"`
	Profiles     []ProfileBackup     `json:"profiles"`
	QuizSessions []QuizSessionBackup `json:"quiz_sessions"`
}

// UserBackup represents a user record for backup
type UserBackup struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"password_hash"`
	Name          string    `json:"name"`
	OAuthProvider string    `json:"oauth_provider"`
	OAuthSubject  string    `json:"oauth_subject"`
	IsAdmin       bool      `json:"is_admin"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ProfileBackup represents a study profile with its nested maps
type ProfileBackup struct {
	ID                string              `json:"id"`
	UserID            int64               `json:"user_id"`
	Username          string              `json:"username"`
	Grade             string              `json:"grade"`
	Streak            int                 `json:"streak"`
	LastCompletedDate string              `json:"last_completed_date"`
	LockoutUntil      *time.Time          `json:"lockout_until"`
	PetName           string              `json:"pet_name"`
	PetAvatar         string              `json:"pet_avatar"`
	PetXP             int                 `json:"pet_xp"`
	PetIQ             int                 `json:"pet_iq"`
	PetLevel          int                 `json:"pet_level"`
	DailyGoalHours    float64             `json:"daily_goal_hours"`
	Theme             string              `json:"theme"`
	Language          string              `json:"language"`
	Schedule          map[string][]string `json:"schedule"`
	SubjectTextbooks  map[string]string   `json:"subject_textbooks"`
	StudyHistory      map[string]int      `json:"study_history"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// QuizSessionBackup represents a quiz session record for backup
type QuizSessionBackup struct {
	ID             int64     `json:"id"`
	ProfileID      string    `json:"profile_id"`
	CompletedAt    time.Time `json:"completed_at"`
	TotalQuestions int       `json:"total_questions"`
	CorrectAnswers int       `json:"correct_answers"`
	Score          float64   `json:"score"`
	TimeSpent      int       `json:"time_spent"`
	Passed         bool      `json:"passed"`
	XPGained       int       `json:"xp_gained"`
	IQChange       int       `json:"iq_change"`
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Export creates a complete backup of the database to a file
func (s *BackupService) Export(outputPath string) error {
	log.Println("Starting database export...")

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(file); err != nil {
		return err
	}

	log.Printf("Database exported successfully to %s", outputPath)
	return nil
}

// ExportToWriter exports the database to an io.Writer (useful for HTTP responses)
func (s *BackupService) ExportToWriter(w io.Writer) error {
	backup := &BackupData{
		Version:    "1.0",
		ExportedAt: time.Now(),
	}

	if err := s.exportUsers(backup); err != nil {
		return fmt.Errorf("failed to export users: %w", err)
	}
	if err := s.exportProfiles(backup); err != nil {
		return fmt.Errorf("failed to export profiles: %w", err)
	}
	if err := s.exportQuizSessions(backup); err != nil {
		return fmt.Errorf("failed to export quiz sessions: %w", err)
	}

	log.Printf("Exported: %d users, %d profiles, %d quiz sessions",
		len(backup.Users), len(backup.Profiles), len(backup.QuizSessions))

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(backup)
}

// Import restores a database from a backup file
func (s *BackupService) Import(inputPath string) error {
	log.Printf("Starting database import from %s...", inputPath)

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file)
}

// ImportFromReader restores a database from a backup reader (for file uploads)
func (s *BackupService) ImportFromReader(reader io.Reader) error {
	var backup BackupData
	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}

	if backup.Version == "" {
		return fmt.Errorf("invalid backup: missing version")
	}

	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	// Import in order of dependencies
	if err := s.importUsers(backup.Users); err != nil {
		return fmt.Errorf("failed to import users: %w", err)
	}
	if err := s.importProfiles(backup.Profiles); err != nil {
		return fmt.Errorf("failed to import profiles: %w", err)
	}
	if err := s.importQuizSessions(backup.QuizSessions); err != nil {
		return fmt.Errorf("failed to import quiz sessions: %w", err)
	}

	log.Println("Database import completed successfully")
	return nil
}

func (s *BackupService) exportUsers(backup *BackupData) error {
	query := "SELECT id, email, password_hash, name, COALESCE(oauth_provider, ''), COALESCE(oauth_subject, ''), is_admin, created_at, updated_at FROM users ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var u UserBackup
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.OAuthProvider, &u.OAuthSubject, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return err
		}
		backup.Users = append(backup.Users, u)
	}
	return rows.Err()
}

func (s *BackupService) exportProfiles(backup *BackupData) error {
	query := `
		SELECT id, user_id, username, grade, streak, COALESCE(last_completed_date, ''), lockout_until,
			pet_name, pet_avatar, pet_xp, pet_iq, pet_level,
			daily_goal_hours, COALESCE(theme, ''), COALESCE(language, ''), created_at, updated_at
		FROM profiles ORDER BY id
	`
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p ProfileBackup
		var lockout sql.NullTime
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.Username, &p.Grade, &p.Streak, &p.LastCompletedDate, &lockout,
			&p.PetName, &p.PetAvatar, &p.PetXP, &p.PetIQ, &p.PetLevel,
			&p.DailyGoalHours, &p.Theme, &p.Language, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return err
		}
		if lockout.Valid {
			t := lockout.Time
			p.LockoutUntil = &t
		}
		backup.Profiles = append(backup.Profiles, p)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range backup.Profiles {
		if err := s.exportProfileMaps(&backup.Profiles[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *BackupService) exportProfileMaps(p *ProfileBackup) error {
	p.Schedule = make(map[string][]string)
	rows, err := s.db.Query("SELECT day, subject FROM schedule_entries WHERE profile_id = ? ORDER BY day, position", p.ID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var day, subject string
		if err := rows.Scan(&day, &subject); err != nil {
			rows.Close()
			return err
		}
		p.Schedule[day] = append(p.Schedule[day], subject)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	p.SubjectTextbooks = make(map[string]string)
	rows, err = s.db.Query("SELECT subject, textbook FROM subject_textbooks WHERE profile_id = ?", p.ID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var subject, textbook string
		if err := rows.Scan(&subject, &textbook); err != nil {
			rows.Close()
			return err
		}
		p.SubjectTextbooks[subject] = textbook
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	p.StudyHistory = make(map[string]int)
	rows, err = s.db.Query("SELECT day, seconds FROM study_history WHERE profile_id = ?", p.ID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var day string
		var seconds int
		if err := rows.Scan(&day, &seconds); err != nil {
			rows.Close()
			return err
		}
		p.StudyHistory[day] = seconds
	}
	rows.Close()
	return rows.Err()
}

func (s *BackupService) exportQuizSessions(backup *BackupData) error {
	query := `
		SELECT id, profile_id, completed_at, total_questions, correct_answers,
			score, time_spent, passed, xp_gained, iq_change
		FROM quiz_sessions ORDER BY id
	`
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var q QuizSessionBackup
		if err := rows.Scan(
			&q.ID, &q.ProfileID, &q.CompletedAt, &q.TotalQuestions, &q.CorrectAnswers,
			&q.Score, &q.TimeSpent, &q.Passed, &q.XPGained, &q.IQChange,
		); err != nil {
			return err
		}
		backup.QuizSessions = append(backup.QuizSessions, q)
	}
	return rows.Err()
}

func (s *BackupService) importUsers(users []UserBackup) error {
	log.Printf("Importing %d users...", len(users))
	for _, u := range users {
		query := "INSERT INTO users (id, email, password_hash, name, oauth_provider, oauth_subject, is_admin, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)"
		_, err := s.db.Exec(query, u.ID, u.Email, u.PasswordHash, u.Name, nullIfEmpty(u.OAuthProvider), nullIfEmpty(u.OAuthSubject), u.IsAdmin, u.CreatedAt, u.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to import user %d: %w", u.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importProfiles(profiles []ProfileBackup) error {
	log.Printf("Importing %d profiles...", len(profiles))
	for _, p := range profiles {
		query := `
			INSERT INTO profiles (
				id, user_id, username, grade, streak, last_completed_date, lockout_until,
				pet_name, pet_avatar, pet_xp, pet_iq, pet_level,
				daily_goal_hours, theme, language, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		var lockout interface{}
		if p.LockoutUntil != nil {
			lockout = *p.LockoutUntil
		}
		_, err := s.db.Exec(query,
			p.ID, p.UserID, p.Username, p.Grade, p.Streak, p.LastCompletedDate, lockout,
			p.PetName, p.PetAvatar, p.PetXP, p.PetIQ, p.PetLevel,
			p.DailyGoalHours, p.Theme, p.Language, p.CreatedAt, p.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to import profile %s: %w", p.ID, err)
		}

		for day, subjects := range p.Schedule {
			for i, subject := range subjects {
				if _, err := s.db.Exec(
					"INSERT INTO schedule_entries (profile_id, day, position, subject) VALUES (?, ?, ?, ?)",
					p.ID, day, i, subject,
				); err != nil {
					return fmt.Errorf("failed to import schedule for profile %s: %w", p.ID, err)
				}
			}
		}

		for subject, textbook := range p.SubjectTextbooks {
			if _, err := s.db.Exec(
				"INSERT INTO subject_textbooks (profile_id, subject, textbook) VALUES (?, ?, ?)",
				p.ID, subject, textbook,
			); err != nil {
				return fmt.Errorf("failed to import textbooks for profile %s: %w", p.ID, err)
			}
		}

		for day, seconds := range p.StudyHistory {
			if _, err := s.db.Exec(
				"INSERT INTO study_history (profile_id, day, seconds) VALUES (?, ?, ?)",
				p.ID, day, seconds,
			); err != nil {
				return fmt.Errorf("failed to import study history for profile %s: %w", p.ID, err)
			}
		}
	}
	return nil
}

func (s *BackupService) importQuizSessions(sessions []QuizSessionBackup) error {
	log.Printf("Importing %d quiz sessions...", len(sessions))
	for _, q := range sessions {
		query := `
			INSERT INTO quiz_sessions (
				id, profile_id, completed_at, total_questions, correct_answers,
				score, time_spent, passed, xp_gained, iq_change
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err := s.db.Exec(query,
			q.ID, q.ProfileID, q.CompletedAt, q.TotalQuestions, q.CorrectAnswers,
			q.Score, q.TimeSpent, q.Passed, q.XPGained, q.IQChange,
		)
		if err != nil {
			return fmt.Errorf("failed to import quiz session %d: %w", q.ID, err)
		}
	}
	return nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
