package services

import (
	"encoding/json"
	"testing"

	"pocketpilot/internal/models"
	"pocketpilot/internal/testutil"
)

func TestAuditLog(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAuditService(db)
	user := testutil.CreateTestUser(t, db)

	changes := map[string]any{
		"name":        "Trip",
		"share_token": "abc123",
		"nested":      map[string]any{"Password": "hunter2", "amount": 2500},
	}
	svc.Log(user.ID, "SHARE_GOAL", "goal", "goal-1", "10.0.0.1", changes)

	var entry models.AuditLog
	testutil.AssertNoError(t, db.Where("user_id = ?", user.ID).First(&entry).Error)
	if entry.Action != "SHARE_GOAL" || entry.ResourceID != "goal-1" || entry.IPAddress != "10.0.0.1" {
		t.Errorf("unexpected entry: %+v", entry)
	}

	var stored map[string]any
	testutil.AssertNoError(t, json.Unmarshal([]byte(entry.Changes), &stored))
	if stored["name"] != "Trip" {
		t.Errorf("expected name kept, got %v", stored["name"])
	}
	if stored["share_token"] != redacted {
		t.Errorf("expected share token masked, got %v", stored["share_token"])
	}
	nested := stored["nested"].(map[string]any)
	if nested["Password"] != redacted || nested["amount"] != float64(2500) {
		t.Errorf("unexpected nested changes: %v", nested)
	}
	if changes["share_token"] != "abc123" {
		t.Error("expected caller's map left untouched")
	}
}

func TestAuditLogWithoutChanges(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAuditService(db)
	user := testutil.CreateTestUser(t, db)

	svc.Log(user.ID, "LOGIN", "user", user.ID, "", nil)

	var entry models.AuditLog
	testutil.AssertNoError(t, db.Where("user_id = ?", user.ID).First(&entry).Error)
	if entry.Changes != "" {
		t.Errorf("expected empty changes, got %q", entry.Changes)
	}
}
