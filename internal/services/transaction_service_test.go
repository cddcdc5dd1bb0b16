package services

import (
	"testing"
	"time"

	"pocketpilot/internal/models"
	"pocketpilot/internal/pagination"
	"pocketpilot/internal/testutil"
)

func TestCreateTransaction(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)
		cat := testutil.CreateTestCategory(t, db, user.ID)
		tag := testutil.CreateTestTag(t, db, user.ID)

		tx, err := svc.CreateTransaction(user.ID, TransactionInput{
			AccountID:   account.ID,
			CategoryID:  &cat.ID,
			Date:        testutil.Date(2024, 2, 10).Add(15 * time.Hour),
			Amount:      -4599,
			Description: "Groceries",
			TagIDs:      []string{tag.ID},
		})
		testutil.AssertNoError(t, err)

		if !tx.Date.Equal(testutil.Date(2024, 2, 10)) {
			t.Errorf("expected date truncated to the day, got %v", tx.Date)
		}
		if tx.Kind() != "expense" {
			t.Errorf("expected expense, got %s", tx.Kind())
		}
		if len(tx.Tags) != 1 || tx.Tags[0].ID != tag.ID {
			t.Errorf("expected tag to be attached, got %+v", tx.Tags)
		}
	})

	t.Run("auto_categorized_by_rules", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)
		dining := testutil.CreateTestCategory(t, db, user.ID)
		testutil.CreateTestRule(t, db, user.ID, dining.ID, 0, models.RuleTypeContains, "uber eats")

		tx, err := svc.CreateTransaction(user.ID, TransactionInput{AccountID: account.ID, Amount: -2000, Description: "UBER EATS 123"})
		testutil.AssertNoError(t, err)

		if tx.CategoryID == nil || *tx.CategoryID != dining.ID {
			t.Errorf("expected rule to assign dining, got %v", tx.CategoryID)
		}
	})

	t.Run("zero_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)

		_, err := svc.CreateTransaction(user.ID, TransactionInput{AccountID: account.ID, Description: "Nothing"})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("other_users_account", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		owner := testutil.CreateTestUser(t, db)
		intruder := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, owner.ID)

		_, err := svc.CreateTransaction(intruder.ID, TransactionInput{AccountID: account.ID, Amount: -100, Description: "x"})
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
	})

	t.Run("archived_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)
		cat := testutil.CreateTestCategory(t, db, user.ID)
		db.Model(cat).Update("is_archived", true)

		_, err := svc.CreateTransaction(user.ID, TransactionInput{AccountID: account.ID, CategoryID: &cat.ID, Amount: -100, Description: "x"})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetUserTransactions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTransactionService(db)
	tagSvc := NewTagService(db)
	user := testutil.CreateTestUser(t, db)
	account := testutil.CreateTestAccount(t, db, user.ID)
	cat := testutil.CreateTestCategory(t, db, user.ID)
	tag := testutil.CreateTestTag(t, db, user.ID)

	coffee := testutil.CreateTestTransactionOn(t, db, user.ID, account.ID, &cat.ID, -450, testutil.Date(2024, 1, 5))
	db.Model(coffee).Update("description", "Morning Coffee")
	testutil.CreateTestTransactionOn(t, db, user.ID, account.ID, nil, -12000, testutil.Date(2024, 1, 20))
	testutil.CreateTestTransactionOn(t, db, user.ID, account.ID, nil, 300000, testutil.Date(2024, 2, 1))
	testutil.AssertNoError(t, tagSvc.AttachTag(user.ID, coffee.ID, tag.ID))

	from := testutil.Date(2024, 1, 1)
	to := testutil.Date(2024, 1, 31)
	minAmount := int64(-1000)

	tests := []struct {
		name   string
		filter TransactionFilter
		want   int64
	}{
		{"all", TransactionFilter{}, 3},
		{"date_range", TransactionFilter{FromDate: &from, ToDate: &to}, 2},
		{"category", TransactionFilter{CategoryID: &cat.ID}, 1},
		{"uncategorized", TransactionFilter{Uncategorized: true}, 2},
		{"tag", TransactionFilter{TagID: &tag.ID}, 1},
		{"min_amount", TransactionFilter{MinAmount: &minAmount}, 2},
		{"search", TransactionFilter{Search: "coffee"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.GetUserTransactions(user.ID, pagination.PageRequest{}, tt.filter)
			testutil.AssertNoError(t, err)
			if result.TotalItems != tt.want {
				t.Errorf("expected %d transactions, got %d", tt.want, result.TotalItems)
			}
		})
	}

	t.Run("newest_first", func(t *testing.T) {
		result, err := svc.GetUserTransactions(user.ID, pagination.PageRequest{}, TransactionFilter{})
		testutil.AssertNoError(t, err)
		if result.Data[0].Amount != 300000 {
			t.Errorf("expected the February income first, got %d", result.Data[0].Amount)
		}
	})
}

func TestUpdateTransaction(t *testing.T) {
	t.Run("clear_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)
		cat := testutil.CreateTestCategory(t, db, user.ID)
		tx := testutil.CreateTestTransactionOn(t, db, user.ID, account.ID, &cat.ID, -100, testutil.Date(2024, 1, 1))

		notes := "reimbursable"
		updated, err := svc.UpdateTransaction(user.ID, tx.ID, TransactionUpdateFields{ClearCategory: true, Notes: &notes})
		testutil.AssertNoError(t, err)
		if updated.CategoryID != nil || updated.Notes != "reimbursable" {
			t.Errorf("unexpected transaction after update: %+v", updated)
		}
	})

	t.Run("split_parent_amount_locked", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)
		tx := testutil.CreateTestTransaction(t, db, user.ID, account.ID, -1000)

		split, err := svc.SplitTransaction(user.ID, tx.ID, []SplitInput{{Amount: 500}, {Amount: 500}})
		testutil.AssertNoError(t, err)

		amount := int64(-2000)
		_, err = svc.UpdateTransaction(user.ID, tx.ID, TransactionUpdateFields{Amount: &amount})
		testutil.AssertAppError(t, err, "ALREADY_SPLIT")

		_, err = svc.UpdateTransaction(user.ID, split.Splits[0].ID, TransactionUpdateFields{Amount: &amount})
		testutil.AssertAppError(t, err, "SPLIT_CHILD")

		date := testutil.Date(2023, 12, 24)
		updated, err := svc.UpdateTransaction(user.ID, tx.ID, TransactionUpdateFields{Date: &date})
		testutil.AssertNoError(t, err)
		for _, child := range updated.Splits {
			if !child.Date.Equal(date) {
				t.Errorf("expected child date to follow parent, got %v", child.Date)
			}
		}
	})
}

func TestSplitTransaction(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)
		food := testutil.CreateTestCategory(t, db, user.ID)
		home := testutil.CreateTestCategory(t, db, user.ID)
		tx := testutil.CreateTestTransaction(t, db, user.ID, account.ID, -10000)

		parent, err := svc.SplitTransaction(user.ID, tx.ID, []SplitInput{
			{CategoryID: &food.ID, Amount: 6000, Description: "Food"},
			{CategoryID: &home.ID, Amount: 4000},
		})
		testutil.AssertNoError(t, err)

		if !parent.IsSplitParent || parent.SplitGroupID == nil {
			t.Fatal("expected parent to be flagged with a group id")
		}
		if len(parent.Splits) != 2 {
			t.Fatalf("expected 2 children, got %d", len(parent.Splits))
		}
		var sum int64
		for _, child := range parent.Splits {
			if child.Amount >= 0 {
				t.Errorf("expected negative child amount, got %d", child.Amount)
			}
			if child.SplitGroupID == nil || *child.SplitGroupID != *parent.SplitGroupID {
				t.Error("expected child to share the group id")
			}
			sum += child.Amount
		}
		testutil.AssertCents(t, "children sum", sum, -10000)
	})

	t.Run("missing_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)
		tx := testutil.CreateTestTransaction(t, db, user.ID, account.ID, -10000)

		_, err := svc.SplitTransaction(user.ID, tx.ID, []SplitInput{{Amount: 6000}, {Amount: 3000}})
		testutil.AssertAppError(t, err, "INVALID_SPLIT")

		fetched, _ := svc.GetTransactionByID(user.ID, tx.ID)
		if fetched.IsSplitParent {
			t.Error("expected parent to stay unsplit after a failed split")
		}
	})

	t.Run("already_split", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)
		tx := testutil.CreateTestTransaction(t, db, user.ID, account.ID, 1000)

		_, err := svc.SplitTransaction(user.ID, tx.ID, []SplitInput{{Amount: 500}, {Amount: 500}})
		testutil.AssertNoError(t, err)
		_, err = svc.SplitTransaction(user.ID, tx.ID, []SplitInput{{Amount: 500}, {Amount: 500}})
		testutil.AssertAppError(t, err, "ALREADY_SPLIT")
	})

	t.Run("unknown_category_rolls_back", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)
		tx := testutil.CreateTestTransaction(t, db, user.ID, account.ID, -1000)
		missing := "0190a7a4-0000-7000-8000-000000000000"

		_, err := svc.SplitTransaction(user.ID, tx.ID, []SplitInput{{Amount: 500}, {Amount: 500, CategoryID: &missing}})
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")

		var children int64
		db.Model(&models.Transaction{}).Where("split_parent_id = ?", tx.ID).Count(&children)
		if children != 0 {
			t.Errorf("expected no children, found %d", children)
		}
	})
}

func TestUnsplitTransaction(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTransactionService(db)
	user := testutil.CreateTestUser(t, db)
	account := testutil.CreateTestAccount(t, db, user.ID)
	tx := testutil.CreateTestTransaction(t, db, user.ID, account.ID, -1000)

	_, err := svc.UnsplitTransaction(user.ID, tx.ID)
	testutil.AssertAppError(t, err, "NOT_SPLIT")

	_, err = svc.SplitTransaction(user.ID, tx.ID, []SplitInput{{Amount: 250}, {Amount: 750}})
	testutil.AssertNoError(t, err)

	restored, err := svc.UnsplitTransaction(user.ID, tx.ID)
	testutil.AssertNoError(t, err)
	if restored.IsSplitParent || restored.SplitGroupID != nil || len(restored.Splits) != 0 {
		t.Errorf("expected plain transaction after unsplit, got %+v", restored)
	}
}

func TestDeleteTransaction(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTransactionService(db)
	user := testutil.CreateTestUser(t, db)
	account := testutil.CreateTestAccount(t, db, user.ID)
	tx := testutil.CreateTestTransaction(t, db, user.ID, account.ID, -1000)

	split, err := svc.SplitTransaction(user.ID, tx.ID, []SplitInput{{Amount: 400}, {Amount: 600}})
	testutil.AssertNoError(t, err)

	err = svc.DeleteTransaction(user.ID, split.Splits[0].ID)
	testutil.AssertAppError(t, err, "SPLIT_CHILD")

	testutil.AssertNoError(t, svc.DeleteTransaction(user.ID, tx.ID))

	var remaining int64
	db.Model(&models.Transaction{}).Where("user_id = ?", user.ID).Count(&remaining)
	if remaining != 0 {
		t.Errorf("expected parent and children deleted, %d remain", remaining)
	}

	err = svc.DeleteTransaction(user.ID, tx.ID)
	testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
}
