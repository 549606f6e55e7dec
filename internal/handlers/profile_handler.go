package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"studystreak/internal/models"
	"studystreak/internal/service"
	"studystreak/internal/validation"
)

// ProfileHandler handles study-profile HTTP requests
type ProfileHandler struct {
	profileService *service.ProfileService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

type petResponse struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	XP     int    `json:"xp"`
	IQ     int    `json:"iq"`
	Level  int    `json:"level"`
}

type profileResponse struct {
	ID                string              `json:"id"`
	Username          string              `json:"username"`
	Grade             string              `json:"grade"`
	Schedule          map[string][]string `json:"schedule"`
	SubjectTextbooks  map[string]string   `json:"subjectTextbooks"`
	Streak            int                 `json:"streak"`
	LastCompletedDate string              `json:"lastCompletedDate"`
	LockoutUntil      *time.Time          `json:"lockoutUntil"`
	Pet               petResponse         `json:"pet"`
	StudyHistory      map[string]int      `json:"studyHistory"`
	DailyGoalHours    float64             `json:"dailyGoalHours"`
	Theme             string              `json:"theme"`
	Language          string              `json:"language"`
}

func toProfileResponse(p *models.Profile) profileResponse {
	return profileResponse{
		ID:                p.ID,
		Username:          p.Username,
		Grade:             p.Grade,
		Schedule:          p.Schedule,
		SubjectTextbooks:  p.SubjectTextbooks,
		Streak:            p.Streak,
		LastCompletedDate: p.LastCompletedDate,
		LockoutUntil:      p.LockoutUntil,
		Pet: petResponse{
			Name:   p.Pet.Name,
			Avatar: p.Pet.Avatar,
			XP:     p.Pet.XP,
			IQ:     p.Pet.IQ,
			Level:  p.Pet.Level,
		},
		StudyHistory:   p.StudyHistory,
		DailyGoalHours: p.DailyGoalHours,
		Theme:          p.Theme,
		Language:       p.Language,
	}
}

// requireOwnedProfile loads a profile and verifies the requester owns it.
// Admins may access any profile. Writes the error response itself on failure.
func requireOwnedProfile(w http.ResponseWriter, r *http.Request, profileService *service.ProfileService, id string) (*models.Profile, bool) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		respondWithError(w, http.StatusUnauthorized, "Authentication required", "", nil)
		return nil, false
	}

	p, err := profileService.GetProfile(id)
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			respondWithError(w, http.StatusNotFound, "Profile not found", "", nil)
			return nil, false
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to load profile", "", err)
		return nil, false
	}

	if p.UserID != user.ID && !user.IsAdmin {
		respondWithError(w, http.StatusForbidden, "Profile belongs to another account", "", nil)
		return nil, false
	}
	return p, true
}

type createProfileRequest struct {
	Username  string `json:"username"`
	Grade     string `json:"grade"`
	PetName   string `json:"petName"`
	PetAvatar string `json:"petAvatar"`
}

// Create handles new profile creation
func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req createProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	p, err := h.profileService.CreateProfile(user.ID, req.Username, req.Grade, req.PetName, req.PetAvatar)
	if err != nil {
		var vErr validation.ValidationError
		if errors.As(err, &vErr) {
			respondWithError(w, http.StatusBadRequest, vErr.Error(), "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to create profile", "", err)
		return
	}

	respondJSON(w, http.StatusCreated, toProfileResponse(p))
}

// List returns the authenticated user's profiles, normalized
func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	profiles, err := h.profileService.ListProfiles(user.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load profiles", "", err)
		return
	}

	out := make([]profileResponse, 0, len(profiles))
	for i := range profiles {
		out = append(out, toProfileResponse(&profiles[i]))
	}
	respondJSON(w, http.StatusOK, out)
}

// Get returns one profile
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := requireOwnedProfile(w, r, h.profileService, r.PathValue("id"))
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, toProfileResponse(p))
}

type updateSettingsRequest struct {
	Username       string  `json:"username"`
	Grade          string  `json:"grade"`
	PetName        string  `json:"petName"`
	PetAvatar      string  `json:"petAvatar"`
	DailyGoalHours float64 `json:"dailyGoalHours"`
	Theme          string  `json:"theme"`
	Language       string  `json:"language"`
}

// UpdateSettings writes the user-editable fields of a profile
func (h *ProfileHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	p, ok := requireOwnedProfile(w, r, h.profileService, r.PathValue("id"))
	if !ok {
		return
	}

	var req updateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	updated, err := h.profileService.UpdateSettings(p.ID, req.Username, req.Grade, req.PetName, req.PetAvatar, req.DailyGoalHours, req.Theme, req.Language)
	if err != nil {
		var vErr validation.ValidationError
		if errors.As(err, &vErr) {
			respondWithError(w, http.StatusBadRequest, vErr.Error(), "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to update settings", "", err)
		return
	}

	respondJSON(w, http.StatusOK, toProfileResponse(updated))
}

// UpdateSchedule replaces the weekly study schedule
func (h *ProfileHandler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	p, ok := requireOwnedProfile(w, r, h.profileService, r.PathValue("id"))
	if !ok {
		return
	}

	var schedule map[string][]string
	if err := json.NewDecoder(r.Body).Decode(&schedule); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	if err := h.profileService.UpdateSchedule(p.ID, schedule); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to update schedule", "", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// UpdateTextbooks replaces the subject-to-textbook mapping
func (h *ProfileHandler) UpdateTextbooks(w http.ResponseWriter, r *http.Request) {
	p, ok := requireOwnedProfile(w, r, h.profileService, r.PathValue("id"))
	if !ok {
		return
	}

	var textbooks map[string]string
	if err := json.NewDecoder(r.Body).Decode(&textbooks); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	if err := h.profileService.UpdateSubjectTextbooks(p.ID, textbooks); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to update textbooks", "", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Delete removes a profile
func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, ok := requireOwnedProfile(w, r, h.profileService, r.PathValue("id"))
	if !ok {
		return
	}

	if err := h.profileService.DeleteProfile(p.ID); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to delete profile", "", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type profileStatsResponse struct {
	Profile       profileResponse `json:"profile"`
	TotalQuizzes  int             `json:"totalQuizzes"`
	QuizzesPassed int             `json:"quizzesPassed"`
	AverageScore  float64         `json:"averageScore"`
	SecondsToday  int             `json:"secondsToday"`
	GoalMetToday  bool            `json:"goalMetToday"`
}

// Stats returns a profile with aggregated quiz statistics
func (h *ProfileHandler) Stats(w http.ResponseWriter, r *http.Request) {
	p, ok := requireOwnedProfile(w, r, h.profileService, r.PathValue("id"))
	if !ok {
		return
	}

	stats, err := h.profileService.GetProfileStats(p.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load stats", "", err)
		return
	}

	respondJSON(w, http.StatusOK, profileStatsResponse{
		Profile:       toProfileResponse(&stats.Profile),
		TotalQuizzes:  stats.TotalQuizzes,
		QuizzesPassed: stats.QuizzesPassed,
		AverageScore:  stats.AverageScore,
		SecondsToday:  stats.SecondsToday,
		GoalMetToday:  stats.GoalMetToday,
	})
}
