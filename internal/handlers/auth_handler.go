package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"studystreak/internal/models"
	"studystreak/internal/security"
	"studystreak/internal/service"
	"studystreak/internal/validation"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService          *service.AuthService
	emailService         *service.EmailService
	oauthProviders       map[string]OAuthProvider
	oauthRedirectBaseURL string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, emailService *service.EmailService, oauthProviders map[string]OAuthProvider, oauthRedirectBaseURL string) *AuthHandler {
	return &AuthHandler{
		authService:          authService,
		emailService:         emailService,
		oauthProviders:       oauthProviders,
		oauthRedirectBaseURL: oauthRedirectBaseURL,
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID      int64  `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"isAdmin"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:      u.ID,
		Email:   u.Email,
		Name:    u.Name,
		IsAdmin: u.IsAdmin,
	}
}

// Register handles account creation
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	user, err := h.authService.Register(req.Email, req.Password, req.Name)
	if err != nil {
		var vErr validation.ValidationError
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			respondWithError(w, http.StatusConflict, "Email already registered", "", nil)
		case errors.As(err, &vErr):
			respondWithError(w, http.StatusBadRequest, vErr.Error(), "", nil)
		default:
			respondWithError(w, http.StatusInternalServerError, "Registration failed", "Failed to register user", err)
		}
		return
	}

	// Welcome email is best effort
	if err := h.emailService.SendWelcomeEmail(r.Context(), user.Email, user.Name); err != nil {
		log.Printf("Failed to send welcome email to %s: %v", user.Email, err)
	}

	// Log the new user in immediately
	session, _, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Registration succeeded but login failed", "", err)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, SessionCookieName, session.ID, session.ExpiresAt))
	respondJSON(w, http.StatusCreated, toUserResponse(user))
}

// Login handles credential login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	session, user, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondWithError(w, http.StatusUnauthorized, "Invalid email or password", "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Login failed", "Failed to log in user", err)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, SessionCookieName, session.ID, session.ExpiresAt))
	respondJSON(w, http.StatusOK, toUserResponse(user))
}

// Logout invalidates the current session
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if err := h.authService.Logout(cookie.Value); err != nil {
			log.Printf("Failed to delete session: %v", err)
		}
	}

	http.SetCookie(w, security.CreateDeleteCookie(r, SessionCookieName))
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Me returns the authenticated user
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		respondWithError(w, http.StatusUnauthorized, "Authentication required", "", nil)
		return
	}
	respondJSON(w, http.StatusOK, toUserResponse(user))
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword starts the password reset flow. The response is identical
// whether or not the email exists.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	if err := h.authService.RequestPasswordReset(r.Context(), h.emailService, req.Email); err != nil {
		log.Printf("Password reset request failed for %s: %v", req.Email, err)
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "If that email is registered, a reset link has been sent",
	})
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// ResetPassword completes the password reset flow
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	if err := h.authService.ResetPassword(req.Token, req.NewPassword); err != nil {
		var vErr validation.ValidationError
		if errors.As(err, &vErr) {
			respondWithError(w, http.StatusBadRequest, vErr.Error(), "", nil)
			return
		}
		respondWithError(w, http.StatusBadRequest, "Invalid or expired reset link", "Failed to reset password", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
