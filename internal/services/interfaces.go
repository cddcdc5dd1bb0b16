package services

import (
	"context"
	"io"
	"time"

	"cloud.google.com/go/civil"

	"pocketpilot/internal/finance"
	"pocketpilot/internal/models"
	"pocketpilot/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// AccountInput holds the fields for creating an account.
type AccountInput struct {
	Name           string
	Type           models.AccountType
	Description    string
	Currency       string
	InitialBalance int64
}

// AccountUpdateFields holds optional fields for updating an account.
type AccountUpdateFields struct {
	Name        *string
	Type        *models.AccountType
	Description *string
}

// AccountServicer defines the contract for account-related business logic.
type AccountServicer interface {
	CreateAccount(userID string, in AccountInput) (*models.Account, error)
	GetUserAccounts(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error)
	GetAccountByID(userID, accountID string) (*models.Account, error)
	UpdateAccount(userID, accountID string, fields AccountUpdateFields) (*models.Account, error)
	DeleteAccount(userID, accountID string) error
}

// CategoryInput holds the fields for creating a category.
type CategoryInput struct {
	Name         string
	Type         models.CategoryType
	Color        string
	Icon         string
	IsTaxRelated bool
	TaxTag       string
}

// CategoryUpdateFields holds optional fields for updating a category.
type CategoryUpdateFields struct {
	Name         *string
	Color        *string
	Icon         *string
	IsTaxRelated *bool
	TaxTag       *string
	IsArchived   *bool
}

// CategoryFilter narrows category listings.
type CategoryFilter struct {
	Type            *models.CategoryType
	IncludeArchived bool
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(userID string, in CategoryInput) (*models.Category, error)
	GetUserCategories(userID string, filter CategoryFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(userID, categoryID string) (*models.Category, error)
	UpdateCategory(userID, categoryID string, fields CategoryUpdateFields) (*models.Category, error)
	// DeleteCategory reports whether the category was archived instead of removed.
	DeleteCategory(userID, categoryID string) (archived bool, err error)
}

// TransactionInput holds the fields for creating a transaction.
type TransactionInput struct {
	AccountID   string
	CategoryID  *string
	Date        time.Time
	Amount      int64
	Description string
	Notes       string
	IsTransfer  bool
	TagIDs      []string
}

// TransactionUpdateFields holds optional fields for updating a transaction.
type TransactionUpdateFields struct {
	AccountID     *string
	CategoryID    *string
	ClearCategory bool
	Date          *time.Time
	Amount        *int64
	Description   *string
	Notes         *string
	IsTransfer    *bool
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate      *time.Time
	ToDate        *time.Time
	AccountID     *string
	CategoryID    *string
	Uncategorized bool
	TagID         *string
	MinAmount     *int64
	MaxAmount     *int64
	Search        string
}

// SplitInput is one child of a split. Amount is a positive magnitude.
type SplitInput struct {
	CategoryID  *string
	Amount      int64
	Description string
	Notes       string
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID string, in TransactionInput) (*models.Transaction, error)
	GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID string, fields TransactionUpdateFields) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID string) error
	SplitTransaction(userID, transactionID string, splits []SplitInput) (*models.Transaction, error)
	UnsplitTransaction(userID, transactionID string) (*models.Transaction, error)
}

// BudgetInput holds the fields for creating a budget.
type BudgetInput struct {
	CategoryID     string
	Amount         int64
	Rollover       bool
	AlertThreshold float64
}

// BudgetUpdateFields holds optional fields for updating a budget.
type BudgetUpdateFields struct {
	Amount         *int64
	Rollover       *bool
	AlertThreshold *float64
}

// BudgetWithDetails is a budget plus its derived figures for one month.
type BudgetWithDetails struct {
	models.Budget
	finance.BudgetDetails
	Month string `json:"month"`
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(userID string, in BudgetInput) (*models.Budget, error)
	GetUserBudgets(userID string, month civil.Date) ([]BudgetWithDetails, error)
	GetBudgetByID(userID, budgetID string) (*models.Budget, error)
	GetBudgetDetails(userID, budgetID string, month civil.Date) (*BudgetWithDetails, error)
	UpdateBudget(userID, budgetID string, fields BudgetUpdateFields) (*models.Budget, error)
	DeleteBudget(userID, budgetID string) error
}

// GoalInput holds the fields for creating a goal.
type GoalInput struct {
	Name          string
	TargetAmount  int64
	CurrentAmount int64
	TargetDate    *time.Time
}

// GoalUpdateFields holds optional fields for updating a goal.
type GoalUpdateFields struct {
	Name            *string
	TargetAmount    *int64
	TargetDate      *time.Time
	ClearTargetDate bool
}

// ContributionInput records money added to a goal. Amount must be positive.
type ContributionInput struct {
	Amount int64
	Date   time.Time
	Note   string
}

// GoalWithDetails is a goal plus its derived progress.
type GoalWithDetails struct {
	models.Goal
	finance.GoalDetails
	IsShared bool `json:"is_shared"`
}

// SharedGoal is the public, owner-free view of a shared goal.
type SharedGoal struct {
	Name          string     `json:"name"`
	TargetAmount  int64      `json:"target_amount"`
	CurrentAmount int64      `json:"current_amount"`
	Percentage    float64    `json:"percentage"`
	TargetDate    *time.Time `json:"target_date,omitempty"`
	IsCompleted   bool       `json:"is_completed"`
}

// GoalServicer defines the contract for goal-related business logic.
type GoalServicer interface {
	CreateGoal(userID string, in GoalInput) (*GoalWithDetails, error)
	GetUserGoals(userID string, page pagination.PageRequest) (*pagination.PageResponse[GoalWithDetails], error)
	GetGoalByID(userID, goalID string) (*GoalWithDetails, error)
	UpdateGoal(userID, goalID string, fields GoalUpdateFields) (*GoalWithDetails, error)
	DeleteGoal(userID, goalID string) error
	AddContribution(userID, goalID string, in ContributionInput) (*models.GoalContribution, *GoalWithDetails, error)
	GetContributions(userID, goalID string) ([]models.GoalContribution, error)
	DeleteContribution(userID, goalID, contributionID string) (*GoalWithDetails, error)
	ShareGoal(userID, goalID string) (string, error)
	UnshareGoal(userID, goalID string) error
	GetSharedGoal(token string) (*SharedGoal, error)
}

// RuleInput holds the fields for creating a categorization rule.
type RuleInput struct {
	Name          string
	RuleType      models.RuleType
	Pattern       string
	CaseSensitive bool
	CategoryID    string
	IsActive      *bool
}

// RuleUpdateFields holds optional fields for updating a rule.
type RuleUpdateFields struct {
	Name          *string
	RuleType      *models.RuleType
	Pattern       *string
	CaseSensitive *bool
	CategoryID    *string
	IsActive      *bool
}

// ApplyRulesOptions controls a rule application run.
type ApplyRulesOptions struct {
	UncategorizedOnly bool
	DryRun            bool
}

// RuleMatch describes one transaction a rule matched.
type RuleMatch struct {
	TransactionID      string  `json:"transaction_id"`
	Description        string  `json:"description"`
	RuleID             string  `json:"rule_id"`
	RuleName           string  `json:"rule_name"`
	CategoryID         string  `json:"category_id"`
	CategoryName       string  `json:"category_name"`
	PreviousCategoryID *string `json:"previous_category_id,omitempty"`
}

// ItemError reports a failure for one item of a batch.
type ItemError struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// ApplyRulesResult summarises a rule application run.
type ApplyRulesResult struct {
	TotalChecked int         `json:"total_checked"`
	TotalMatched int         `json:"total_matched"`
	DryRun       bool        `json:"dry_run"`
	Matches      []RuleMatch `json:"matches"`
	Errors       []ItemError `json:"errors,omitempty"`
	Message      string      `json:"message"`
}

// RuleTestInput is an ad hoc rule evaluated without saving it.
type RuleTestInput struct {
	Description   string
	RuleType      models.RuleType
	Pattern       string
	CaseSensitive bool
}

// RuleTestResult reports whether the ad hoc rule matched the description
// and which of the owner's recent transactions it would match.
type RuleTestResult struct {
	Matches              bool                 `json:"matches"`
	MatchingTransactions []models.Transaction `json:"matching_transactions"`
}

// RuleServicer defines the contract for categorization rules.
type RuleServicer interface {
	CreateRule(userID string, in RuleInput) (*models.CategorizationRule, error)
	GetUserRules(userID string) ([]models.CategorizationRule, error)
	GetRuleByID(userID, ruleID string) (*models.CategorizationRule, error)
	UpdateRule(userID, ruleID string, fields RuleUpdateFields) (*models.CategorizationRule, error)
	DeleteRule(userID, ruleID string) error
	ReorderRules(userID string, ruleIDs []string) ([]models.CategorizationRule, error)
	ApplyRules(userID string, opts ApplyRulesOptions) (*ApplyRulesResult, error)
	TestRule(userID string, in RuleTestInput) (*RuleTestResult, error)
}

// RecurringInput holds the fields for creating a recurring template.
type RecurringInput struct {
	AccountID          string
	CategoryID         *string
	Description        string
	Amount             int64
	Frequency          models.Frequency
	NextOccurrenceDate time.Time
}

// RecurringUpdateFields holds optional fields for updating a template.
type RecurringUpdateFields struct {
	AccountID          *string
	CategoryID         *string
	ClearCategory      bool
	Description        *string
	Amount             *int64
	Frequency          *models.Frequency
	NextOccurrenceDate *time.Time
	IsActive           *bool
}

// GenerateResult is the outcome of one generation run for an owner.
type GenerateResult struct {
	Created      int                  `json:"created"`
	Transactions []models.Transaction `json:"transactions"`
	Skipped      int                  `json:"skipped"`
	Errors       []ItemError          `json:"errors,omitempty"`
}

// OwnerGenerateResult is one owner's line in a service-wide run.
type OwnerGenerateResult struct {
	UserID  string `json:"user_id"`
	Created int    `json:"created"`
	Skipped int    `json:"skipped"`
	Errors  int    `json:"errors"`
}

// UpcomingOccurrence is a projected future transaction.
type UpcomingOccurrence struct {
	RecurringTransactionID string    `json:"recurring_transaction_id"`
	Description            string    `json:"description"`
	Amount                 int64     `json:"amount"`
	Date                   time.Time `json:"date"`
	AccountID              string    `json:"account_id"`
	CategoryID             *string   `json:"category_id,omitempty"`
}

// RecurringServicer defines the contract for recurring templates and generation.
type RecurringServicer interface {
	CreateRecurring(userID string, in RecurringInput) (*models.RecurringTransaction, error)
	GetUserRecurring(userID string, activeOnly bool) ([]models.RecurringTransaction, error)
	GetRecurringByID(userID, recurringID string) (*models.RecurringTransaction, error)
	UpdateRecurring(userID, recurringID string, fields RecurringUpdateFields) (*models.RecurringTransaction, error)
	DeleteRecurring(userID, recurringID string) error
	GenerateDue(userID string, today civil.Date) (*GenerateResult, error)
	GenerateAllDue(today civil.Date) ([]OwnerGenerateResult, error)
	GetUpcoming(userID string, today civil.Date, days int) ([]UpcomingOccurrence, error)
}

// LinkInput holds the fields for linking two transactions.
type LinkInput struct {
	SourceTransactionID string
	TargetTransactionID string
	LinkType            models.LinkType
	Notes               string
}

// LinkServicer defines the contract for transaction links.
type LinkServicer interface {
	CreateLink(userID string, in LinkInput) (*models.TransactionLink, error)
	GetTransactionLinks(userID, transactionID string) ([]models.TransactionLink, error)
	DeleteLink(userID, linkID string) error
}

// TagServicer defines the contract for tags.
type TagServicer interface {
	CreateTag(userID, name, color string) (*models.Tag, error)
	GetUserTags(userID string) ([]models.Tag, error)
	UpdateTag(userID, tagID string, name, color *string) (*models.Tag, error)
	DeleteTag(userID, tagID string) error
	AttachTag(userID, transactionID, tagID string) error
	DetachTag(userID, transactionID, tagID string) error
}

// ExportFormat names an export file type.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportJSON ExportFormat = "json"
	ExportXLSX ExportFormat = "xlsx"
)

// ExportServicer writes an owner's transactions as a downloadable file.
type ExportServicer interface {
	ExportTransactions(w io.Writer, userID string, format ExportFormat, from, to *time.Time) error
}

// ImportRowError reports a CSV row that could not be imported.
type ImportRowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// ImportResult summarises a CSV import.
type ImportResult struct {
	Imported     int              `json:"imported"`
	Categorized  int              `json:"categorized"`
	Failed       int              `json:"failed"`
	Errors       []ImportRowError `json:"errors,omitempty"`
	Transactions []string         `json:"transaction_ids"`
}

// ImportServicer loads transactions from an uploaded file.
type ImportServicer interface {
	ImportCSV(userID, accountID string, r io.Reader) (*ImportResult, error)
}

// ChatMessage is one turn of an assistant conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AssistantServicer answers questions about the owner's finances.
type AssistantServicer interface {
	Chat(ctx context.Context, userID, message string, history []ChatMessage) (string, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]any)
}
