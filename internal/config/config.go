// Package config loads application settings from the environment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"pocketpilot/internal/logger"
)

// Config holds application configuration
type Config struct {
	// Server
	Env  string
	Port string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTExpirationDur time.Duration

	// Machine-to-machine endpoints (X-API-Key)
	ServiceAPIKey string

	// Assistant
	GeminiAPIKey   string
	AssistantModel string

	// Budgets
	BudgetAlertThreshold float64
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Get().Warn(".env file not found")
	}

	config := &Config{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "8080"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "pocketpilot"),
		DBPassword: getEnv("DB_PASSWORD", "pocketpilot"),
		DBName:     getEnv("DB_NAME", "pocketpilot"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret: getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),

		ServiceAPIKey: getEnv("SERVICE_API_KEY", ""),

		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		AssistantModel: getEnv("ASSISTANT_MODEL", "gemini-2.5-flash"),
	}

	expStr := getEnv("JWT_EXPIRES_IN", "15m")
	expDur, err := time.ParseDuration(expStr)
	if err != nil {
		logger.Get().Warnw("invalid JWT_EXPIRES_IN, falling back to 15m", "value", expStr)
		expDur = 15 * time.Minute
	}
	config.JWTExpirationDur = expDur

	thresholdStr := getEnv("BUDGET_ALERT_THRESHOLD", "90")
	threshold, err := strconv.ParseFloat(thresholdStr, 64)
	if err != nil || threshold <= 0 || threshold > 100 {
		logger.Get().Warnw("invalid BUDGET_ALERT_THRESHOLD, falling back to 90", "value", thresholdStr)
		threshold = 90
	}
	config.BudgetAlertThreshold = threshold

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			logger.Get().Fatalw("failed to load configuration", "error", err)
		}
	}
	return appConfig
}

// Set replaces the process-wide configuration. Tests use it to pin secrets.
func Set(cfg *Config) {
	appConfig = cfg
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
