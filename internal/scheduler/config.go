package scheduler

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds scheduler settings read from the environment.
type Config struct {
	APIURL         string
	ServiceAPIKey  string
	RequestTimeout time.Duration
}

// LoadConfig reads configuration from the environment and validates required fields.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		APIURL:        os.Getenv("POCKETPILOT_API_URL"),
		ServiceAPIKey: os.Getenv("SERVICE_API_KEY"),
	}
	if cfg.APIURL == "" {
		return nil, fmt.Errorf("POCKETPILOT_API_URL is required")
	}
	if cfg.ServiceAPIKey == "" {
		return nil, fmt.Errorf("SERVICE_API_KEY is required")
	}

	timeout, err := parseTimeout(os.Getenv("REQUEST_TIMEOUT"))
	if err != nil {
		return nil, err
	}
	cfg.RequestTimeout = timeout

	return cfg, nil
}

func parseTimeout(s string) (time.Duration, error) {
	if s == "" {
		return 60 * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid REQUEST_TIMEOUT %q: %w", s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("REQUEST_TIMEOUT must be positive, got %v", d)
	}
	return d, nil
}
