package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"studystreak/internal/models"
	"studystreak/internal/service"
	"studystreak/internal/validation"
)

// QuizHandler handles quiz HTTP requests
type QuizHandler struct {
	quizService    *service.QuizService
	profileService *service.ProfileService
}

// NewQuizHandler creates a new quiz handler
func NewQuizHandler(quizService *service.QuizService, profileService *service.ProfileService) *QuizHandler {
	return &QuizHandler{
		quizService:    quizService,
		profileService: profileService,
	}
}

type generateQuizRequest struct {
	Lessons             []models.SubjectLesson `json:"lessons"`
	QuestionsPerSubject int                    `json:"questionsPerSubject"`
	Language            string                 `json:"language"`
}

// Generate produces a fresh quiz for a profile's lessons
func (h *QuizHandler) Generate(w http.ResponseWriter, r *http.Request) {
	p, ok := requireOwnedProfile(w, r, h.profileService, r.PathValue("id"))
	if !ok {
		return
	}

	var req generateQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}
	if len(req.Lessons) == 0 {
		respondWithError(w, http.StatusBadRequest, "At least one lesson is required", "", nil)
		return
	}
	if req.QuestionsPerSubject <= 0 {
		req.QuestionsPerSubject = 3
	}
	language := req.Language
	if language == "" {
		language = p.Language
	}

	questions, err := h.quizService.GenerateQuiz(r.Context(), p.ID, p.Grade, req.Lessons, req.QuestionsPerSubject, language)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrQuizLocked):
			h.respondLocked(w, p.ID)
		case errors.Is(err, service.ErrQuizUnavailable):
			respondWithError(w, http.StatusServiceUnavailable, "Quiz generation is not available", "", nil)
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to generate quiz", "", err)
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"questions": questions})
}

type completeQuizResponse struct {
	Profile  profileResponse `json:"profile"`
	Score    float64         `json:"score"`
	Total    int             `json:"total"`
	Passed   bool            `json:"passed"`
	XPGained int             `json:"xpGained"`
	IQChange int             `json:"iqChange"`
}

// Complete grades a submitted quiz and applies the outcome
func (h *QuizHandler) Complete(w http.ResponseWriter, r *http.Request) {
	p, ok := requireOwnedProfile(w, r, h.profileService, r.PathValue("id"))
	if !ok {
		return
	}

	var sub models.QuizSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}
	sub.ProfileID = p.ID

	updated, result, err := h.quizService.CompleteQuiz(p.ID, &sub, time.Now())
	if err != nil {
		var vErr validation.ValidationError
		switch {
		case errors.Is(err, service.ErrQuizLocked):
			h.respondLocked(w, p.ID)
		case errors.As(err, &vErr):
			respondWithError(w, http.StatusBadRequest, vErr.Error(), "", nil)
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to complete quiz", "", err)
		}
		return
	}

	respondJSON(w, http.StatusOK, completeQuizResponse{
		Profile:  toProfileResponse(updated),
		Score:    result.Score,
		Total:    result.Total,
		Passed:   result.Passed,
		XPGained: result.XPGained,
		IQChange: result.IQChange,
	})
}

type quizSessionResponse struct {
	ID             int64     `json:"id"`
	CompletedAt    time.Time `json:"completedAt"`
	TotalQuestions int       `json:"totalQuestions"`
	CorrectAnswers int       `json:"correctAnswers"`
	Score          float64   `json:"score"`
	TimeSpent      int       `json:"timeSpentSeconds"`
	Passed         bool      `json:"passed"`
	XPGained       int       `json:"xpGained"`
	IQChange       int       `json:"iqChange"`
}

// History returns a profile's recent quiz sessions
func (h *QuizHandler) History(w http.ResponseWriter, r *http.Request) {
	p, ok := requireOwnedProfile(w, r, h.profileService, r.PathValue("id"))
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	sessions, err := h.quizService.GetHistory(p.ID, limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load quiz history", "", err)
		return
	}

	out := make([]quizSessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, quizSessionResponse{
			ID:             s.ID,
			CompletedAt:    s.CompletedAt,
			TotalQuestions: s.TotalQuestions,
			CorrectAnswers: s.CorrectAnswers,
			Score:          s.Score,
			TimeSpent:      s.TimeSpent,
			Passed:         s.Passed,
			XPGained:       s.XPGained,
			IQChange:       s.IQChange,
		})
	}
	respondJSON(w, http.StatusOK, out)
}

// Lockout reports whether a profile may take a quiz right now
func (h *QuizHandler) Lockout(w http.ResponseWriter, r *http.Request) {
	p, ok := requireOwnedProfile(w, r, h.profileService, r.PathValue("id"))
	if !ok {
		return
	}

	locked, minutes, err := h.quizService.LockoutStatus(p.ID, time.Now())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to check lockout", "", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"locked":           locked,
		"minutesRemaining": minutes,
	})
}

type petChatRequest struct {
	Message string `json:"message"`
}

// PetChat relays a chat message to the profile's pet persona
func (h *QuizHandler) PetChat(w http.ResponseWriter, r *http.Request) {
	p, ok := requireOwnedProfile(w, r, h.profileService, r.PathValue("id"))
	if !ok {
		return
	}

	var req petChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}
	if req.Message == "" {
		respondWithError(w, http.StatusBadRequest, "Message is required", "", nil)
		return
	}

	reply, err := h.quizService.PetChat(r.Context(), p.ID, req.Message)
	if err != nil {
		if errors.Is(err, service.ErrQuizUnavailable) {
			respondWithError(w, http.StatusServiceUnavailable, "Pet chat is not available", "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to chat with pet", "", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

func (h *QuizHandler) respondLocked(w http.ResponseWriter, profileID string) {
	_, minutes, err := h.quizService.LockoutStatus(profileID, time.Now())
	if err != nil {
		minutes = 0
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusLocked)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":            "Quiz taking is locked after a failed attempt",
		"minutesRemaining": minutes,
	})
}
