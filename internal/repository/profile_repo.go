package repository

import (
	"database/sql"
	"fmt"

	"studystreak/internal/database"
	"studystreak/internal/models"
)

// ProfileRepository handles database operations for study profiles,
// their schedules, textbooks and study history
type ProfileRepository struct {
	db *database.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *database.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `
	id, user_id, username, grade, streak, COALESCE(last_completed_date, ''), lockout_until,
	pet_name, pet_avatar, pet_xp, pet_iq, pet_level,
	daily_goal_hours, COALESCE(theme, ''), COALESCE(language, ''), created_at, updated_at
`

// CreateProfile inserts a new profile with its schedule and textbooks
func (r *ProfileRepository) CreateProfile(p *models.Profile) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO profiles (
			id, user_id, username, grade, streak, last_completed_date, lockout_until,
			pet_name, pet_avatar, pet_xp, pet_iq, pet_level,
			daily_goal_hours, theme, language
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.Exec(query,
		p.ID, p.UserID, p.Username, p.Grade, p.Streak, p.LastCompletedDate, p.LockoutUntil,
		p.Pet.Name, p.Pet.Avatar, p.Pet.XP, p.Pet.IQ, p.Pet.Level,
		p.DailyGoalHours, p.Theme, p.Language,
	)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}

	if err := replaceSchedule(tx, p.ID, p.Schedule); err != nil {
		return err
	}
	if err := replaceTextbooks(tx, p.ID, p.SubjectTextbooks); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit profile: %w", err)
	}
	return nil
}

// GetProfileByID retrieves a profile with its schedule, textbooks and history
func (r *ProfileRepository) GetProfileByID(id string) (*models.Profile, error) {
	query := "SELECT " + profileColumns + " FROM profiles WHERE id = ?"

	p, err := scanProfile(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	if err := r.loadProfileMaps(p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetUserProfiles retrieves all profiles belonging to a user
func (r *ProfileRepository) GetUserProfiles(userID int64) ([]models.Profile, error) {
	query := "SELECT " + profileColumns + " FROM profiles WHERE user_id = ? ORDER BY created_at ASC"

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	profiles, err := collectProfiles(rows)
	if err != nil {
		return nil, err
	}

	for i := range profiles {
		if err := r.loadProfileMaps(&profiles[i]); err != nil {
			return nil, err
		}
	}
	return profiles, nil
}

// GetAllProfiles retrieves every profile, used by export and the reminder sweep
func (r *ProfileRepository) GetAllProfiles() ([]models.Profile, error) {
	query := "SELECT " + profileColumns + " FROM profiles ORDER BY created_at ASC"

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	profiles, err := collectProfiles(rows)
	if err != nil {
		return nil, err
	}

	for i := range profiles {
		if err := r.loadProfileMaps(&profiles[i]); err != nil {
			return nil, err
		}
	}
	return profiles, nil
}

// UpdateProgress writes the progression fields of a profile. It accepts a
// DBTX so quiz completion can update the profile, its study history and the
// quiz session log in one transaction.
func (r *ProfileRepository) UpdateProgress(q database.DBTX, p *models.Profile) error {
	query := `
		UPDATE profiles
		SET streak = ?, last_completed_date = ?, lockout_until = ?,
			pet_xp = ?, pet_iq = ?, pet_level = ?,
			daily_goal_hours = ?, language = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	_, err := q.Exec(query,
		p.Streak, p.LastCompletedDate, p.LockoutUntil,
		p.Pet.XP, p.Pet.IQ, p.Pet.Level,
		p.DailyGoalHours, p.Language,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update progress: %w", err)
	}
	return nil
}

// UpsertStudySeconds sets the studied seconds for one profile-day. The
// SELECT-then-write pair keeps it portable across dialects; callers run it
// inside a transaction.
func (r *ProfileRepository) UpsertStudySeconds(q database.DBTX, profileID, day string, seconds int) error {
	var existing int
	err := q.QueryRow("SELECT seconds FROM study_history WHERE profile_id = ? AND day = ?", profileID, day).Scan(&existing)
	if err == sql.ErrNoRows {
		_, err = q.Exec("INSERT INTO study_history (profile_id, day, seconds) VALUES (?, ?, ?)", profileID, day, seconds)
		if err != nil {
			return fmt.Errorf("failed to insert study history: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read study history: %w", err)
	}

	_, err = q.Exec("UPDATE study_history SET seconds = ? WHERE profile_id = ? AND day = ?", seconds, profileID, day)
	if err != nil {
		return fmt.Errorf("failed to update study history: %w", err)
	}
	return nil
}

// ReplaceStudyHistory rewrites a profile's entire study history, used by
// import and by legacy-key migration during normalization
func (r *ProfileRepository) ReplaceStudyHistory(q database.DBTX, profileID string, history map[string]int) error {
	if _, err := q.Exec("DELETE FROM study_history WHERE profile_id = ?", profileID); err != nil {
		return fmt.Errorf("failed to clear study history: %w", err)
	}
	for day, seconds := range history {
		if _, err := q.Exec("INSERT INTO study_history (profile_id, day, seconds) VALUES (?, ?, ?)", profileID, day, seconds); err != nil {
			return fmt.Errorf("failed to insert study history: %w", err)
		}
	}
	return nil
}

// UpdateSettings writes the user-editable profile fields
func (r *ProfileRepository) UpdateSettings(p *models.Profile) error {
	query := `
		UPDATE profiles
		SET username = ?, grade = ?, pet_name = ?, pet_avatar = ?,
			daily_goal_hours = ?, theme = ?, language = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	_, err := r.db.Exec(query,
		p.Username, p.Grade, p.Pet.Name, p.Pet.Avatar,
		p.DailyGoalHours, p.Theme, p.Language,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}
	return nil
}

// UpdateSchedule replaces a profile's weekly schedule
func (r *ProfileRepository) UpdateSchedule(profileID string, schedule map[string][]string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := replaceSchedule(tx, profileID, schedule); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schedule: %w", err)
	}
	return nil
}

// UpdateSubjectTextbooks replaces a profile's subject-to-textbook mapping
func (r *ProfileRepository) UpdateSubjectTextbooks(profileID string, textbooks map[string]string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := replaceTextbooks(tx, profileID, textbooks); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit textbooks: %w", err)
	}
	return nil
}

// DeleteProfile deletes a profile and all associated data
func (r *ProfileRepository) DeleteProfile(id string) error {
	query := "DELETE FROM profiles WHERE id = ?"
	_, err := r.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	return nil
}

// Begin starts a transaction for multi-statement profile updates
func (r *ProfileRepository) Begin() (*database.Tx, error) {
	return r.db.Begin()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProfile(row rowScanner) (*models.Profile, error) {
	p := &models.Profile{}
	var lockout sql.NullTime
	err := row.Scan(
		&p.ID, &p.UserID, &p.Username, &p.Grade, &p.Streak, &p.LastCompletedDate, &lockout,
		&p.Pet.Name, &p.Pet.Avatar, &p.Pet.XP, &p.Pet.IQ, &p.Pet.Level,
		&p.DailyGoalHours, &p.Theme, &p.Language, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lockout.Valid {
		t := lockout.Time
		p.LockoutUntil = &t
	}
	return p, nil
}

func collectProfiles(rows *sql.Rows) ([]models.Profile, error) {
	var profiles []models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate profiles: %w", err)
	}
	return profiles, nil
}

// loadProfileMaps fills the schedule, textbook and study-history maps
func (r *ProfileRepository) loadProfileMaps(p *models.Profile) error {
	schedule := make(map[string][]string)
	rows, err := r.db.Query(
		"SELECT day, subject FROM schedule_entries WHERE profile_id = ? ORDER BY day, position",
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to query schedule: %w", err)
	}
	for rows.Next() {
		var day, subject string
		if err := rows.Scan(&day, &subject); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan schedule entry: %w", err)
		}
		schedule[day] = append(schedule[day], subject)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate schedule: %w", err)
	}
	p.Schedule = schedule

	textbooks := make(map[string]string)
	rows, err = r.db.Query(
		"SELECT subject, textbook FROM subject_textbooks WHERE profile_id = ?",
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to query textbooks: %w", err)
	}
	for rows.Next() {
		var subject, textbook string
		if err := rows.Scan(&subject, &textbook); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan textbook: %w", err)
		}
		textbooks[subject] = textbook
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate textbooks: %w", err)
	}
	p.SubjectTextbooks = textbooks

	history := make(map[string]int)
	rows, err = r.db.Query(
		"SELECT day, seconds FROM study_history WHERE profile_id = ?",
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to query study history: %w", err)
	}
	for rows.Next() {
		var day string
		var seconds int
		if err := rows.Scan(&day, &seconds); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan study history: %w", err)
		}
		history[day] = seconds
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate study history: %w", err)
	}
	p.StudyHistory = history

	return nil
}

func replaceSchedule(tx *database.Tx, profileID string, schedule map[string][]string) error {
	if _, err := tx.Exec("DELETE FROM schedule_entries WHERE profile_id = ?", profileID); err != nil {
		return fmt.Errorf("failed to clear schedule: %w", err)
	}
	for day, subjects := range schedule {
		for i, subject := range subjects {
			if _, err := tx.Exec(
				"INSERT INTO schedule_entries (profile_id, day, position, subject) VALUES (?, ?, ?, ?)",
				profileID, day, i, subject,
			); err != nil {
				return fmt.Errorf("failed to insert schedule entry: %w", err)
			}
		}
	}
	return nil
}

func replaceTextbooks(tx *database.Tx, profileID string, textbooks map[string]string) error {
	if _, err := tx.Exec("DELETE FROM subject_textbooks WHERE profile_id = ?", profileID); err != nil {
		return fmt.Errorf("failed to clear textbooks: %w", err)
	}
	for subject, textbook := range textbooks {
		if _, err := tx.Exec(
			"INSERT INTO subject_textbooks (profile_id, subject, textbook) VALUES (?, ?, ?)",
			profileID, subject, textbook,
		); err != nil {
			return fmt.Errorf("failed to insert textbook: %w", err)
		}
	}
	return nil
}
