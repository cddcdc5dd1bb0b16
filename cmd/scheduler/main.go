package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"pocketpilot/internal/logger"
	"pocketpilot/internal/scheduler"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	cfg, err := scheduler.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log := logger.Get()
	client := scheduler.NewClient(cfg.APIURL, cfg.ServiceAPIKey, &http.Client{Timeout: cfg.RequestTimeout})

	summary, err := client.GenerateRecurring(context.Background())
	if err != nil {
		log.Errorw("Recurring generation failed", "error", err)
		os.Exit(1)
	}

	log.Infow("Recurring generation completed",
		"users", len(summary.Users),
		"created", summary.TotalCreated,
		"skipped", summary.TotalSkipped,
		"errors", summary.TotalErrors,
	)
	for _, u := range summary.Users {
		if u.Errors > 0 {
			log.Warnw("Recurring generation had failures", "user_id", u.UserID, "errors", u.Errors)
		}
	}

	if summary.TotalErrors > 0 {
		os.Exit(2)
	}
}
