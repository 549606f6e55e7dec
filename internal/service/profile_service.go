package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"studystreak/internal/models"
	"studystreak/internal/progress"
	"studystreak/internal/repository"
	"studystreak/internal/validation"
)

var ErrProfileNotFound = errors.New("profile not found")

// ProfileService handles study-profile business logic. Profiles are
// normalized on every load so older rows pick up defaults and stale
// streaks decay; normalization changes are written back before the
// profile is returned.
type ProfileService struct {
	profileRepo *repository.ProfileRepository
	userRepo    *repository.UserRepository
	quizRepo    *repository.QuizRepository
}

// NewProfileService creates a new profile service
func NewProfileService(profileRepo *repository.ProfileRepository, userRepo *repository.UserRepository, quizRepo *repository.QuizRepository) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		userRepo:    userRepo,
		quizRepo:    quizRepo,
	}
}

// CreateProfile creates a new study profile with a fresh pet
func (s *ProfileService) CreateProfile(userID int64, username, grade, petName, petAvatar string) (*models.Profile, error) {
	if err := validation.ValidateUsername(username); err != nil {
		return nil, err
	}
	if petName == "" {
		petName = "Rexy"
	}
	if petAvatar == "" {
		petAvatar = "classic"
	}

	p := &models.Profile{
		ID:               uuid.New().String(),
		UserID:           userID,
		Username:         username,
		Grade:            grade,
		Schedule:         make(map[string][]string),
		SubjectTextbooks: make(map[string]string),
		Pet: models.Pet{
			Name:   petName,
			Avatar: petAvatar,
			XP:     0,
			IQ:     progress.DefaultPetIQ,
			Level:  1,
		},
		StudyHistory:   make(map[string]int),
		DailyGoalHours: progress.DefaultDailyGoalHours,
		Language:       progress.DefaultLanguage,
	}

	if err := s.profileRepo.CreateProfile(p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetProfile loads one profile, normalized against the current time
func (s *ProfileService) GetProfile(id string) (*models.Profile, error) {
	return s.getProfileAt(id, time.Now())
}

func (s *ProfileService) getProfileAt(id string, now time.Time) (*models.Profile, error) {
	p, err := s.profileRepo.GetProfileByID(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProfileNotFound
	}
	return s.normalizeAndPersist(p, now)
}

// ListProfiles loads all of a user's profiles, normalized
func (s *ProfileService) ListProfiles(userID int64) ([]models.Profile, error) {
	profiles, err := s.profileRepo.GetUserProfiles(userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	out := make([]models.Profile, 0, len(profiles))
	for i := range profiles {
		p, err := s.normalizeAndPersist(&profiles[i], now)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

// normalizeAndPersist runs load-time normalization and writes back any
// fields it changed, so decayed streaks and backfilled defaults survive
// a restart
func (s *ProfileService) normalizeAndPersist(p *models.Profile, now time.Time) (*models.Profile, error) {
	normalized := progress.NormalizeProfile(*p, now)

	if !progressFieldsEqual(p, &normalized) {
		tx, err := s.profileRepo.Begin()
		if err != nil {
			return nil, fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback()

		if err := s.profileRepo.UpdateProgress(tx, &normalized); err != nil {
			return nil, err
		}
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("failed to persist normalization: %w", err)
		}
	}

	return &normalized, nil
}

func progressFieldsEqual(a, b *models.Profile) bool {
	return a.Streak == b.Streak &&
		a.LastCompletedDate == b.LastCompletedDate &&
		a.Pet.IQ == b.Pet.IQ &&
		a.Pet.Level == b.Pet.Level &&
		a.DailyGoalHours == b.DailyGoalHours &&
		a.Language == b.Language
}

// UpdateSettings writes the user-editable fields of a profile
func (s *ProfileService) UpdateSettings(id, username, grade, petName, petAvatar string, dailyGoalHours float64, theme, language string) (*models.Profile, error) {
	if err := validation.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := validation.ValidateDailyGoal(dailyGoalHours); err != nil {
		return nil, err
	}

	p, err := s.GetProfile(id)
	if err != nil {
		return nil, err
	}

	p.Username = username
	p.Grade = grade
	p.Pet.Name = petName
	p.Pet.Avatar = petAvatar
	p.DailyGoalHours = dailyGoalHours
	p.Theme = theme
	if language != "" {
		p.Language = language
	}

	if err := s.profileRepo.UpdateSettings(p); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateSchedule replaces a profile's weekly study schedule
func (s *ProfileService) UpdateSchedule(id string, schedule map[string][]string) error {
	p, err := s.profileRepo.GetProfileByID(id)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrProfileNotFound
	}
	return s.profileRepo.UpdateSchedule(id, schedule)
}

// UpdateSubjectTextbooks replaces a profile's subject-to-textbook mapping
func (s *ProfileService) UpdateSubjectTextbooks(id string, textbooks map[string]string) error {
	p, err := s.profileRepo.GetProfileByID(id)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrProfileNotFound
	}
	return s.profileRepo.UpdateSubjectTextbooks(id, textbooks)
}

// DeleteProfile removes a profile and its history
func (s *ProfileService) DeleteProfile(id string) error {
	return s.profileRepo.DeleteProfile(id)
}

// GetProfileStats returns a profile with its aggregated quiz statistics
func (s *ProfileService) GetProfileStats(id string) (*models.ProfileWithStats, error) {
	now := time.Now()
	p, err := s.getProfileAt(id, now)
	if err != nil {
		return nil, err
	}

	total, passed, avgScore, err := s.quizRepo.GetProfileStats(id)
	if err != nil {
		return nil, err
	}

	secondsToday := p.StudyHistory[progress.DayKey(now)]
	goalSeconds := int(p.DailyGoalHours * 3600)

	return &models.ProfileWithStats{
		Profile:       *p,
		TotalQuizzes:  total,
		QuizzesPassed: passed,
		AverageScore:  avgScore,
		SecondsToday:  secondsToday,
		GoalMetToday:  secondsToday >= goalSeconds,
	}, nil
}

// SendStreakReminders emails the owner of every profile whose streak is at
// risk: a positive streak with no quiz passed today. Called once per sweep
// by the server's background ticker.
func (s *ProfileService) SendStreakReminders(ctx context.Context, emailService *EmailService, now time.Time) {
	if emailService == nil || !emailService.IsEnabled() {
		return
	}

	profiles, err := s.profileRepo.GetAllProfiles()
	if err != nil {
		log.Printf("Streak reminder sweep failed: %v", err)
		return
	}

	today := progress.DayKey(now)
	for i := range profiles {
		p := progress.NormalizeProfile(profiles[i], now)
		if p.Streak == 0 || p.LastCompletedDate == today {
			continue
		}

		user, err := s.userRepo.GetUserByID(p.UserID)
		if err != nil || user == nil {
			continue
		}

		if err := emailService.SendStreakReminderEmail(ctx, user.Email, user.Name, p.Username, p.Streak); err != nil {
			log.Printf("Failed to send streak reminder for profile %s: %v", p.ID, err)
		}
	}
}
