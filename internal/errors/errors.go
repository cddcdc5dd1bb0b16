// Package errors provides custom error types for the Pocket Pilot API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrInvalidToken       = &AppError{Code: "INVALID_TOKEN", Message: "Invalid or expired token", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrConflict       = &AppError{Code: "CONFLICT", Message: "Resource already exists", StatusCode: http.StatusConflict}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Account errors.
var (
	ErrAccountNotFound = &AppError{Code: "ACCOUNT_NOT_FOUND", Message: "Account not found", StatusCode: http.StatusNotFound}
)

// Category errors.
var (
	ErrCategoryNotFound  = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
	ErrDuplicateCategory = &AppError{Code: "DUPLICATE_CATEGORY", Message: "A category with this name already exists", StatusCode: http.StatusConflict}
)

// Transaction errors.
var (
	ErrTransactionNotFound = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrInvalidSplit        = &AppError{Code: "INVALID_SPLIT", Message: "Split amounts do not match the transaction amount", StatusCode: http.StatusBadRequest}
	ErrAlreadySplit        = &AppError{Code: "ALREADY_SPLIT", Message: "Transaction is already split", StatusCode: http.StatusConflict}
	ErrNotSplit            = &AppError{Code: "NOT_SPLIT", Message: "Transaction is not split", StatusCode: http.StatusBadRequest}
	ErrSplitChild          = &AppError{Code: "SPLIT_CHILD", Message: "Split child transactions cannot be modified directly", StatusCode: http.StatusBadRequest}
)

// Categorization rule errors.
var (
	ErrRuleNotFound   = &AppError{Code: "RULE_NOT_FOUND", Message: "Categorization rule not found", StatusCode: http.StatusNotFound}
	ErrInvalidPattern = &AppError{Code: "INVALID_PATTERN", Message: "Invalid regular expression pattern", StatusCode: http.StatusBadRequest}
	ErrInvalidReorder = &AppError{Code: "INVALID_REORDER", Message: "Reorder must list every rule exactly once", StatusCode: http.StatusBadRequest}
)

// Budget errors.
var (
	ErrBudgetNotFound = &AppError{Code: "BUDGET_NOT_FOUND", Message: "Budget not found", StatusCode: http.StatusNotFound}
	ErrBudgetExists   = &AppError{Code: "BUDGET_EXISTS", Message: "A budget for this category already exists", StatusCode: http.StatusConflict}
)

// Goal errors.
var (
	ErrGoalNotFound         = &AppError{Code: "GOAL_NOT_FOUND", Message: "Goal not found", StatusCode: http.StatusNotFound}
	ErrContributionNotFound = &AppError{Code: "CONTRIBUTION_NOT_FOUND", Message: "Contribution not found", StatusCode: http.StatusNotFound}
	ErrShareNotFound        = &AppError{Code: "SHARE_NOT_FOUND", Message: "Shared goal not found", StatusCode: http.StatusNotFound}
)

// Recurring transaction errors.
var (
	ErrRecurringNotFound = &AppError{Code: "RECURRING_NOT_FOUND", Message: "Recurring transaction not found", StatusCode: http.StatusNotFound}
)

// Link and tag errors.
var (
	ErrLinkNotFound  = &AppError{Code: "LINK_NOT_FOUND", Message: "Transaction link not found", StatusCode: http.StatusNotFound}
	ErrLinkExists    = &AppError{Code: "LINK_EXISTS", Message: "This link already exists", StatusCode: http.StatusConflict}
	ErrSelfLink      = &AppError{Code: "SELF_LINK", Message: "A transaction cannot be linked to itself", StatusCode: http.StatusBadRequest}
	ErrTagNotFound   = &AppError{Code: "TAG_NOT_FOUND", Message: "Tag not found", StatusCode: http.StatusNotFound}
	ErrDuplicateTag  = &AppError{Code: "DUPLICATE_TAG", Message: "A tag with this name already exists", StatusCode: http.StatusConflict}
	ErrInvalidImport = &AppError{Code: "INVALID_IMPORT", Message: "The uploaded file could not be read", StatusCode: http.StatusBadRequest}
)

// Assistant errors.
var (
	ErrAssistantNotConfigured = &AppError{Code: "ASSISTANT_NOT_CONFIGURED", Message: "The assistant is not configured", StatusCode: http.StatusServiceUnavailable}
	ErrAssistantUnavailable   = &AppError{Code: "ASSISTANT_UNAVAILABLE", Message: "The assistant could not answer right now", StatusCode: http.StatusBadGateway}
)
