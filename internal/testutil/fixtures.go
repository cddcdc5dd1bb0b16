package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"pocketpilot/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TestPassword is the plaintext password of every fixture user.
const TestPassword = "password123"

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Date returns midnight UTC for the given calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestAccount creates a USD checking account.
func CreateTestAccount(t *testing.T, db *gorm.DB, userID string) *models.Account {
	t.Helper()

	account := &models.Account{
		UserID:   userID,
		Name:     fmt.Sprintf("Test Account %d", nextID()),
		Type:     models.AccountTypeChecking,
		Currency: "USD",
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// CreateTestCategory creates an expense category.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string) *models.Category {
	t.Helper()
	return CreateTestCategoryWithType(t, db, userID, models.CategoryTypeExpense)
}

// CreateTestCategoryWithType creates a category of the given type.
func CreateTestCategoryWithType(t *testing.T, db *gorm.DB, userID string, catType models.CategoryType) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID: userID,
		Name:   fmt.Sprintf("Test Category %d", nextID()),
		Type:   catType,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestTransaction creates a transaction dated today with the given signed amount.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID, accountID string, amount int64) *models.Transaction {
	t.Helper()
	now := time.Now().UTC()
	return CreateTestTransactionOn(t, db, userID, accountID, nil, amount, Date(now.Year(), now.Month(), now.Day()))
}

// CreateTestTransactionOn creates a transaction with full control over category and date.
func CreateTestTransactionOn(t *testing.T, db *gorm.DB, userID, accountID string, categoryID *string, amount int64, date time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:      userID,
		AccountID:   accountID,
		CategoryID:  categoryID,
		Amount:      amount,
		Date:        date,
		Description: fmt.Sprintf("Test Transaction %d", nextID()),
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestBudget creates a budget for categoryID.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID, categoryID string, amount int64) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID:     userID,
		CategoryID: categoryID,
		Amount:     amount,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestGoal creates a goal without a target date.
func CreateTestGoal(t *testing.T, db *gorm.DB, userID string, target, current int64) *models.Goal {
	t.Helper()

	goal := &models.Goal{
		UserID:        userID,
		Name:          fmt.Sprintf("Test Goal %d", nextID()),
		TargetAmount:  target,
		CurrentAmount: current,
	}
	goal.SyncCompletion(time.Now().UTC())
	if err := db.Create(goal).Error; err != nil {
		t.Fatalf("failed to create test goal: %v", err)
	}
	return goal
}

// CreateTestRule creates an active case-insensitive rule at the given order.
func CreateTestRule(t *testing.T, db *gorm.DB, userID, categoryID string, order int, ruleType models.RuleType, pattern string) *models.CategorizationRule {
	t.Helper()

	rule := &models.CategorizationRule{
		UserID:     userID,
		Name:       fmt.Sprintf("Test Rule %d", nextID()),
		RuleOrder:  order,
		RuleType:   ruleType,
		Pattern:    pattern,
		CategoryID: categoryID,
		IsActive:   true,
	}
	if err := db.Create(rule).Error; err != nil {
		t.Fatalf("failed to create test rule: %v", err)
	}
	return rule
}

// CreateTestRecurring creates an active recurring template.
func CreateTestRecurring(t *testing.T, db *gorm.DB, userID, accountID string, amount int64, freq models.Frequency, next time.Time) *models.RecurringTransaction {
	t.Helper()

	rt := &models.RecurringTransaction{
		UserID:             userID,
		AccountID:          accountID,
		Description:        fmt.Sprintf("Test Recurring %d", nextID()),
		Amount:             amount,
		Frequency:          freq,
		NextOccurrenceDate: next,
		IsActive:           true,
	}
	if err := db.Create(rt).Error; err != nil {
		t.Fatalf("failed to create test recurring transaction: %v", err)
	}
	return rt
}

// CreateTestTag creates a tag with a unique name.
func CreateTestTag(t *testing.T, db *gorm.DB, userID string) *models.Tag {
	t.Helper()

	tag := &models.Tag{
		UserID: userID,
		Name:   fmt.Sprintf("tag-%d", nextID()),
	}
	if err := db.Create(tag).Error; err != nil {
		t.Fatalf("failed to create test tag: %v", err)
	}
	return tag
}
