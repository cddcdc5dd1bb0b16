package main

import (
	"context"
	"fmt"
	"os"

	"pocketpilot/internal/app"
	"pocketpilot/internal/assistant"
	"pocketpilot/internal/config"
	"pocketpilot/internal/database"
	"pocketpilot/internal/logger"
	"pocketpilot/internal/services"
	"pocketpilot/internal/validator"
)

// @title           Pocket Pilot API
// @version         1.0
// @description     Pocket Pilot is a personal finance API for accounts, budgets, savings goals, recurring transactions and categorization rules.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnw("Failed to close database", "error", err)
		}
	}()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	validator.Register()

	var chatModel assistant.ChatModel
	if appConfig.GeminiAPIKey != "" {
		gemini, err := assistant.NewGemini(context.Background(), appConfig.GeminiAPIKey, appConfig.AssistantModel)
		if err != nil {
			return fmt.Errorf("failed to create assistant model: %w", err)
		}
		chatModel = gemini
	} else {
		log.Info("GEMINI_API_KEY not set, assistant endpoint disabled")
	}
	if appConfig.ServiceAPIKey == "" {
		log.Info("SERVICE_API_KEY not set, internal endpoints disabled")
	}

	db := dbManager.DB()
	router := app.NewRouter(app.Services{
		User:        services.NewUserService(db),
		Account:     services.NewAccountService(db),
		Category:    services.NewCategoryService(db),
		Transaction: services.NewTransactionService(db),
		Budget:      services.NewBudgetService(db, appConfig.BudgetAlertThreshold),
		Goal:        services.NewGoalService(db),
		Rule:        services.NewRuleService(db),
		Recurring:   services.NewRecurringService(db),
		Link:        services.NewLinkService(db),
		Tag:         services.NewTagService(db),
		Export:      services.NewExportService(db),
		Import:      services.NewImportService(db),
		Assistant:   services.NewAssistantService(db, chatModel, appConfig.BudgetAlertThreshold),
		Audit:       services.NewAuditService(db),
	}, app.Options{
		ServiceAPIKey:  appConfig.ServiceAPIKey,
		RequestLogging: true,
		Swagger:        true,
	})

	log.Infof("Starting Pocket Pilot server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
