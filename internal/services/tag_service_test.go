package services

import (
	"testing"

	"pocketpilot/internal/models"
	"pocketpilot/internal/testutil"
)

func TestCreateTag(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTagService(db)
	user := testutil.CreateTestUser(t, db)

	tag, err := svc.CreateTag(user.ID, " vacation ", "#ff8800")
	testutil.AssertNoError(t, err)
	if tag.Name != "vacation" {
		t.Errorf("expected trimmed name, got %q", tag.Name)
	}

	_, err = svc.CreateTag(user.ID, "vacation", "")
	testutil.AssertAppError(t, err, "DUPLICATE_TAG")

	_, err = svc.CreateTag(user.ID, "", "")
	testutil.AssertAppError(t, err, "INVALID_INPUT")
}

func TestAttachDetachTag(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTagService(db)
	user := testutil.CreateTestUser(t, db)
	account := testutil.CreateTestAccount(t, db, user.ID)
	tx := testutil.CreateTestTransaction(t, db, user.ID, account.ID, -100)
	tag := testutil.CreateTestTag(t, db, user.ID)

	testutil.AssertNoError(t, svc.AttachTag(user.ID, tx.ID, tag.ID))
	testutil.AssertNoError(t, svc.AttachTag(user.ID, tx.ID, tag.ID))

	var joins int64
	db.Model(&models.TransactionTag{}).Where("transaction_id = ?", tx.ID).Count(&joins)
	if joins != 1 {
		t.Errorf("expected attaching twice to be idempotent, found %d joins", joins)
	}

	testutil.AssertNoError(t, svc.DetachTag(user.ID, tx.ID, tag.ID))
	db.Model(&models.TransactionTag{}).Where("transaction_id = ?", tx.ID).Count(&joins)
	if joins != 0 {
		t.Errorf("expected tag detached, found %d joins", joins)
	}

	other := testutil.CreateTestUser(t, db)
	foreign := testutil.CreateTestTag(t, db, other.ID)
	err := svc.AttachTag(user.ID, tx.ID, foreign.ID)
	testutil.AssertAppError(t, err, "TAG_NOT_FOUND")
}

func TestDeleteTag(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTagService(db)
	user := testutil.CreateTestUser(t, db)
	account := testutil.CreateTestAccount(t, db, user.ID)
	tx := testutil.CreateTestTransaction(t, db, user.ID, account.ID, -100)
	tag := testutil.CreateTestTag(t, db, user.ID)
	testutil.AssertNoError(t, svc.AttachTag(user.ID, tx.ID, tag.ID))

	testutil.AssertNoError(t, svc.DeleteTag(user.ID, tag.ID))

	tags, err := svc.GetUserTags(user.ID)
	testutil.AssertNoError(t, err)
	if len(tags) != 0 {
		t.Errorf("expected no tags, got %d", len(tags))
	}

	_, err = svc.CreateTag(user.ID, tag.Name, "")
	testutil.AssertNoError(t, err)
}
