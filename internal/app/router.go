// Package app assembles the HTTP surface of the Pocket Pilot API.
package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "pocketpilot/internal/docs" // Register swagger docs
	"pocketpilot/internal/handlers"
	"pocketpilot/internal/middleware"
	"pocketpilot/internal/services"
)

// Services bundles every service the router dispatches to.
type Services struct {
	User        services.UserServicer
	Account     services.AccountServicer
	Category    services.CategoryServicer
	Transaction services.TransactionServicer
	Budget      services.BudgetServicer
	Goal        services.GoalServicer
	Rule        services.RuleServicer
	Recurring   services.RecurringServicer
	Link        services.LinkServicer
	Tag         services.TagServicer
	Export      services.ExportServicer
	Import      services.ImportServicer
	Assistant   services.AssistantServicer
	Audit       services.AuditServicer
}

// Options tunes router behaviour that differs between deployments and tests.
type Options struct {
	ServiceAPIKey  string
	RequestLogging bool
	Swagger        bool
}

// NewRouter wires handlers and middleware into a gin engine.
func NewRouter(svc Services, opts Options) *gin.Engine {
	authHandler := handlers.NewAuthHandler(svc.User, svc.Audit)
	accountHandler := handlers.NewAccountHandler(svc.Account, svc.Audit)
	categoryHandler := handlers.NewCategoryHandler(svc.Category, svc.Audit)
	transactionHandler := handlers.NewTransactionHandler(svc.Transaction, svc.Audit)
	budgetHandler := handlers.NewBudgetHandler(svc.Budget, svc.Audit)
	goalHandler := handlers.NewGoalHandler(svc.Goal, svc.Audit)
	ruleHandler := handlers.NewRuleHandler(svc.Rule, svc.Audit)
	recurringHandler := handlers.NewRecurringHandler(svc.Recurring, svc.Audit)
	linkHandler := handlers.NewLinkHandler(svc.Link, svc.Audit)
	tagHandler := handlers.NewTagHandler(svc.Tag, svc.Audit)
	dataHandler := handlers.NewDataHandler(svc.Export, svc.Import, svc.Audit)
	assistantHandler := handlers.NewAssistantHandler(svc.Assistant)

	router := gin.New()
	router.Use(gin.Recovery())
	if opts.RequestLogging {
		router.Use(middleware.RequestLogging())
	}
	router.Use(middleware.ErrorHandler())
	router.Use(cors())

	if opts.Swagger {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	v1.GET("/shared/goals/:token", goalHandler.GetSharedGoal)

	// Machine routes
	internal := v1.Group("/internal")
	internal.Use(middleware.ServiceKeyMiddleware(opts.ServiceAPIKey))
	internal.POST("/recurring/generate", recurringHandler.GenerateAllDue)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)

	accounts := protected.Group("/accounts")
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.GetUserAccounts)
	accounts.GET("/:id", accountHandler.GetAccountByID)
	accounts.PUT("/:id", accountHandler.UpdateAccount)
	accounts.DELETE("/:id", accountHandler.DeleteAccount)
	accounts.GET("/:id/transactions", transactionHandler.GetAccountTransactions)

	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetUserCategories)
	categories.GET("/:id", categoryHandler.GetCategoryByID)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetUserTransactions)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)
	transactions.POST("/:id/split", transactionHandler.SplitTransaction)
	transactions.DELETE("/:id/split", transactionHandler.UnsplitTransaction)
	transactions.GET("/:id/links", linkHandler.GetTransactionLinks)
	transactions.POST("/:id/tags/:tagId", tagHandler.AttachTag)
	transactions.DELETE("/:id/tags/:tagId", tagHandler.DetachTag)

	rules := protected.Group("/rules")
	rules.POST("", ruleHandler.CreateRule)
	rules.GET("", ruleHandler.GetUserRules)
	rules.PUT("/reorder", ruleHandler.ReorderRules)
	rules.POST("/apply", ruleHandler.ApplyRules)
	rules.POST("/test", ruleHandler.TestRule)
	rules.GET("/:id", ruleHandler.GetRuleByID)
	rules.PUT("/:id", ruleHandler.UpdateRule)
	rules.DELETE("/:id", ruleHandler.DeleteRule)

	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetUserBudgets)
	budgets.GET("/:id", budgetHandler.GetBudgetByID)
	budgets.GET("/:id/details", budgetHandler.GetBudgetDetails)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)

	goals := protected.Group("/goals")
	goals.POST("", goalHandler.CreateGoal)
	goals.GET("", goalHandler.GetUserGoals)
	goals.GET("/:id", goalHandler.GetGoalByID)
	goals.PUT("/:id", goalHandler.UpdateGoal)
	goals.DELETE("/:id", goalHandler.DeleteGoal)
	goals.POST("/:id/contributions", goalHandler.AddContribution)
	goals.GET("/:id/contributions", goalHandler.GetContributions)
	goals.DELETE("/:id/contributions/:contributionId", goalHandler.DeleteContribution)
	goals.POST("/:id/share", goalHandler.ShareGoal)
	goals.DELETE("/:id/share", goalHandler.UnshareGoal)

	recurring := protected.Group("/recurring")
	recurring.POST("", recurringHandler.CreateRecurring)
	recurring.GET("", recurringHandler.GetUserRecurring)
	recurring.POST("/generate", recurringHandler.GenerateDue)
	recurring.GET("/upcoming", recurringHandler.GetUpcoming)
	recurring.GET("/:id", recurringHandler.GetRecurringByID)
	recurring.PUT("/:id", recurringHandler.UpdateRecurring)
	recurring.DELETE("/:id", recurringHandler.DeleteRecurring)

	links := protected.Group("/links")
	links.POST("", linkHandler.CreateLink)
	links.DELETE("/:id", linkHandler.DeleteLink)

	tags := protected.Group("/tags")
	tags.POST("", tagHandler.CreateTag)
	tags.GET("", tagHandler.GetUserTags)
	tags.PUT("/:id", tagHandler.UpdateTag)
	tags.DELETE("/:id", tagHandler.DeleteTag)

	protected.GET("/export", dataHandler.ExportTransactions)
	protected.POST("/import/csv", dataHandler.ImportCSV)

	protected.POST("/assistant/chat", assistantHandler.Chat)

	return router
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
