package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort     string
	AppBaseURL     string
	DatabaseType   string
	DatabaseURL    string
	DatabasePath   string
	MigrationsPath string

	SessionDuration time.Duration

	// AWS SES email delivery; email is disabled when FromAddress is empty
	AWSRegion        string
	EmailFromAddress string
	EmailFromName    string

	// Gemini question generation; disabled when the key is empty
	GeminiAPIKey string
	GeminiModel  string

	// OAuth sign-in
	GoogleClientID       string
	GoogleClientSecret   string
	FacebookClientID     string
	FacebookClientSecret string
	OAuthRedirectBaseURL string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first when present.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	return &Config{
		ServerPort:     getEnv("PORT", "8080"),
		AppBaseURL:     getEnv("APP_BASE_URL", "http://localhost:8080"),
		DatabaseType:   getEnv("DATABASE_TYPE", "sqlite"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		DatabasePath:   getEnv("DB_PATH", "./studystreak.db"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),

		SessionDuration: time.Duration(getEnvInt("SESSION_DURATION_HOURS", 24)) * time.Hour,

		AWSRegion:        getEnv("AWS_REGION", "us-east-1"),
		EmailFromAddress: getEnv("SES_FROM_ADDRESS", ""),
		EmailFromName:    getEnv("SES_FROM_NAME", "StudyStreak"),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		GoogleClientID:       getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:   getEnv("GOOGLE_CLIENT_SECRET", ""),
		FacebookClientID:     getEnv("FACEBOOK_CLIENT_ID", ""),
		FacebookClientSecret: getEnv("FACEBOOK_CLIENT_SECRET", ""),
		OAuthRedirectBaseURL: getEnv("OAUTH_REDIRECT_BASE_URL", getEnv("APP_BASE_URL", "http://localhost:8080")),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt reads an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
