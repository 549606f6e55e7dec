package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"studystreak/internal/ai"
	"studystreak/internal/config"
	"studystreak/internal/database"
	"studystreak/internal/handlers"
	"studystreak/internal/repository"
	"studystreak/internal/security"
	"studystreak/internal/service"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
	"golang.org/x/oauth2/google"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations for the active dialect
	migrationsDir := filepath.Join(cfg.MigrationsPath, db.Dialect.MigrationsSubdir())
	if err := db.RunMigrations(migrationsDir); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	quizRepo := repository.NewQuizRepository(db)

	// Initialize services
	authService := service.NewAuthService(userRepo, cfg.SessionDuration)
	profileService := service.NewProfileService(profileRepo, userRepo, quizRepo)
	geminiService := ai.NewGeminiService(cfg.GeminiAPIKey, cfg.GeminiModel)
	quizService := service.NewQuizService(profileRepo, quizRepo, geminiService)
	backupService := service.NewBackupService(db)

	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.EmailFromAddress, cfg.EmailFromName, cfg.AppBaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	oauthProviders := map[string]handlers.OAuthProvider{
		"google": {
			Name:  "google",
			Label: "Google",
			Config: &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				Endpoint:     google.Endpoint,
				Scopes:       []string{"openid", "email", "profile"},
			},
		},
		"facebook": {
			Name:  "facebook",
			Label: "Facebook",
			Config: &oauth2.Config{
				ClientID:     cfg.FacebookClientID,
				ClientSecret: cfg.FacebookClientSecret,
				Endpoint:     facebook.Endpoint,
				Scopes:       []string{"email", "public_profile"},
			},
			UserInfoURL: "https://graph.facebook.com/me?fields=id,name,email",
		},
	}

	// Initialize handlers
	rateLimiter := security.NewRateLimiter(20, time.Minute)
	middleware := handlers.NewMiddleware(authService, rateLimiter)
	authHandler := handlers.NewAuthHandler(authService, emailService, oauthProviders, cfg.OAuthRedirectBaseURL)
	profileHandler := handlers.NewProfileHandler(profileService)
	quizHandler := handlers.NewQuizHandler(quizService, profileService)
	dataHandler := handlers.NewDataHandler(backupService)

	// Setup routes
	mux := http.NewServeMux()

	// Auth routes
	mux.HandleFunc("POST /api/auth/register", middleware.RateLimit(authHandler.Register))
	mux.HandleFunc("POST /api/auth/login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.HandleFunc("GET /api/auth/me", middleware.RequireAuth(authHandler.Me))
	mux.HandleFunc("POST /api/auth/forgot-password", middleware.RateLimit(authHandler.ForgotPassword))
	mux.HandleFunc("POST /api/auth/reset-password", middleware.RateLimit(authHandler.ResetPassword))

	// OAuth routes
	mux.HandleFunc("GET /auth/providers", authHandler.Providers)
	mux.HandleFunc("GET /auth/{provider}/start", authHandler.StartOAuth)
	mux.HandleFunc("GET /auth/{provider}/callback", authHandler.OAuthCallback)

	// Profile routes
	mux.HandleFunc("POST /api/profiles", middleware.RequireAuth(profileHandler.Create))
	mux.HandleFunc("GET /api/profiles", middleware.RequireAuth(profileHandler.List))
	mux.HandleFunc("GET /api/profiles/{id}", middleware.RequireAuth(profileHandler.Get))
	mux.HandleFunc("PUT /api/profiles/{id}/settings", middleware.RequireAuth(profileHandler.UpdateSettings))
	mux.HandleFunc("PUT /api/profiles/{id}/schedule", middleware.RequireAuth(profileHandler.UpdateSchedule))
	mux.HandleFunc("PUT /api/profiles/{id}/textbooks", middleware.RequireAuth(profileHandler.UpdateTextbooks))
	mux.HandleFunc("DELETE /api/profiles/{id}", middleware.RequireAuth(profileHandler.Delete))
	mux.HandleFunc("GET /api/profiles/{id}/stats", middleware.RequireAuth(profileHandler.Stats))

	// Quiz routes
	mux.HandleFunc("POST /api/profiles/{id}/quiz/generate", middleware.RequireAuth(quizHandler.Generate))
	mux.HandleFunc("POST /api/profiles/{id}/quiz/complete", middleware.RequireAuth(quizHandler.Complete))
	mux.HandleFunc("GET /api/profiles/{id}/quiz/history", middleware.RequireAuth(quizHandler.History))
	mux.HandleFunc("GET /api/profiles/{id}/lockout", middleware.RequireAuth(quizHandler.Lockout))
	mux.HandleFunc("POST /api/profiles/{id}/pet/chat", middleware.RequireAuth(quizHandler.PetChat))

	// Backup routes
	mux.HandleFunc("GET /api/data/export", middleware.RequireAuth(dataHandler.Export))
	mux.HandleFunc("POST /api/data/import", middleware.RequireAuth(dataHandler.Import))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start background cleanup and reminder loops
	stop := make(chan struct{})
	go cleanupLoop(authService, quizRepo, stop)
	go reminderLoop(profileService, emailService, stop)

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	close(stop)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}

// cleanupLoop periodically removes expired sessions, expired reset tokens
// and old quiz sessions
func cleanupLoop(authService *service.AuthService, quizRepo *repository.QuizRepository, stop <-chan struct{}) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := authService.CleanupExpiredSessions(); err != nil {
				log.Printf("Error cleaning up expired sessions: %v", err)
			}
			if err := authService.CleanupExpiredPasswordResetTokens(); err != nil {
				log.Printf("Error cleaning up expired reset tokens: %v", err)
			}
			if deleted, err := quizRepo.DeleteSessionsBefore(time.Now().AddDate(-1, 0, 0)); err != nil {
				log.Printf("Error pruning old quiz sessions: %v", err)
			} else if deleted > 0 {
				log.Printf("Pruned %d old quiz sessions", deleted)
			}
		}
	}
}

// reminderLoop sends streak reminder emails in the evening to profiles that
// have not completed a quiz today
func reminderLoop(profileService *service.ProfileService, emailService *service.EmailService, stop <-chan struct{}) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			now := time.Now()
			if now.Hour() != 19 {
				continue
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			profileService.SendStreakReminders(ctx, emailService, now)
			cancel()
		}
	}
}
