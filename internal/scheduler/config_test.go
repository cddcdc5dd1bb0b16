package scheduler

import (
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	t.Run("missing_url", func(t *testing.T) {
		t.Setenv("POCKETPILOT_API_URL", "")
		t.Setenv("SERVICE_API_KEY", "key")
		if _, err := LoadConfig(); err == nil {
			t.Fatal("expected error for missing URL")
		}
	})

	t.Run("missing_key", func(t *testing.T) {
		t.Setenv("POCKETPILOT_API_URL", "http://localhost:8080")
		t.Setenv("SERVICE_API_KEY", "")
		if _, err := LoadConfig(); err == nil {
			t.Fatal("expected error for missing key")
		}
	})

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("POCKETPILOT_API_URL", "http://localhost:8080")
		t.Setenv("SERVICE_API_KEY", "key")
		t.Setenv("REQUEST_TIMEOUT", "")

		cfg, err := LoadConfig()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.RequestTimeout != 60*time.Second {
			t.Errorf("expected 60s timeout, got %v", cfg.RequestTimeout)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		t.Setenv("POCKETPILOT_API_URL", "http://localhost:8080")
		t.Setenv("SERVICE_API_KEY", "key")

		tests := []struct {
			in      string
			want    time.Duration
			wantErr bool
		}{
			{"5s", 5 * time.Second, false},
			{"2m", 2 * time.Minute, false},
			{"soon", 0, true},
			{"-1s", 0, true},
		}
		for _, tt := range tests {
			t.Setenv("REQUEST_TIMEOUT", tt.in)
			cfg, err := LoadConfig()
			if tt.wantErr {
				if err == nil {
					t.Errorf("%q: expected error", tt.in)
				}
				continue
			}
			if err != nil {
				t.Errorf("%q: unexpected error: %v", tt.in, err)
				continue
			}
			if cfg.RequestTimeout != tt.want {
				t.Errorf("%q: got %v, want %v", tt.in, cfg.RequestTimeout, tt.want)
			}
		}
	})
}
