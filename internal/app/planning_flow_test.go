package app

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestBudgetFlow_SpentRolloverAndConflict(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "budget@test.com", "password123")
	accountID := app.createAccount(t, token, "Checking", 0)
	dining := app.createCategory(t, token, "Dining", "expense")

	rec := app.request(http.MethodPost, "/api/v1/budgets",
		fmt.Sprintf(`{"category_id":%q,"amount":20000,"rollover":true,"alert_threshold":80}`, dining), token)
	mustStatus(t, rec, http.StatusCreated)
	budgetID := object(t, parseJSON(t, rec), "budget")["id"].(string)

	rec = app.request(http.MethodPost, "/api/v1/budgets", fmt.Sprintf(`{"category_id":%q,"amount":100}`, dining), token)
	mustStatus(t, rec, http.StatusConflict)
	if code := errorCode(t, rec); code != "BUDGET_EXISTS" {
		t.Errorf("expected BUDGET_EXISTS, got %s", code)
	}

	// February: 150.00 spent, 50.00 carries into March.
	app.createTransaction(t, token, fmt.Sprintf(
		`{"account_id":%q,"category_id":%q,"date":"2026-02-14","amount":-15000,"description":"Dinner"}`, accountID, dining))
	// March: 170.00 spent plus a transfer and an income that must be ignored.
	app.createTransaction(t, token, fmt.Sprintf(
		`{"account_id":%q,"category_id":%q,"date":"2026-03-02","amount":-17000,"description":"Tasting menu"}`, accountID, dining))
	app.createTransaction(t, token, fmt.Sprintf(
		`{"account_id":%q,"category_id":%q,"date":"2026-03-03","amount":-9999,"description":"Move","is_transfer":true}`, accountID, dining))
	app.createTransaction(t, token, fmt.Sprintf(
		`{"account_id":%q,"category_id":%q,"date":"2026-03-04","amount":2000,"description":"Refund"}`, accountID, dining))

	rec = app.request(http.MethodGet, "/api/v1/budgets/"+budgetID+"/details?month=2026-03", "", token)
	mustStatus(t, rec, http.StatusOK)
	details := object(t, parseJSON(t, rec), "budget")
	if spent := details["spent"].(float64); spent != 17000 {
		t.Errorf("expected spent 17000, got %.0f", spent)
	}
	if rollover := details["rollover_amount"].(float64); rollover != 5000 {
		t.Errorf("expected rollover 5000, got %.0f", rollover)
	}
	if effective := details["effective_budget"].(float64); effective != 25000 {
		t.Errorf("expected effective budget 25000, got %.0f", effective)
	}
	if details["status"] != "safe" {
		t.Errorf("expected safe status at 68%%, got %v", details["status"])
	}

	// January had no spending, so the whole amount rolls into February.
	rec = app.request(http.MethodGet, "/api/v1/budgets?month=2026-02", "", token)
	mustStatus(t, rec, http.StatusOK)
	budgets := parseJSON(t, rec)["budgets"].([]interface{})
	if len(budgets) != 1 {
		t.Fatalf("expected 1 budget, got %d", len(budgets))
	}
	feb := budgets[0].(map[string]interface{})
	if feb["spent"].(float64) != 15000 || feb["rollover_amount"].(float64) != 20000 {
		t.Errorf("unexpected February details: %v", feb)
	}
	if feb["month"] != "2026-02" {
		t.Errorf("expected month 2026-02, got %v", feb["month"])
	}

	rec = app.request(http.MethodGet, "/api/v1/budgets?month=March", "", token)
	mustStatus(t, rec, http.StatusBadRequest)
}

func TestGoalFlow_ContributionsAndSharing(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "goal@test.com", "password123")

	rec := app.request(http.MethodPost, "/api/v1/goals", `{"name":"Bike","target_amount":100000}`, token)
	mustStatus(t, rec, http.StatusCreated)
	goalID := object(t, parseJSON(t, rec), "goal")["id"].(string)

	rec = app.request(http.MethodPost, "/api/v1/goals/"+goalID+"/contributions", `{"amount":60000,"note":"bonus"}`, token)
	mustStatus(t, rec, http.StatusCreated)
	result := parseJSON(t, rec)
	goal := object(t, result, "goal")
	if goal["current_amount"].(float64) != 60000 || goal["percentage"].(float64) != 60 {
		t.Errorf("unexpected progress after contribution: %v", goal)
	}
	reached := 0
	for _, m := range goal["milestones"].([]interface{}) {
		if m.(map[string]interface{})["reached"] == true {
			reached++
		}
	}
	if reached != 2 {
		t.Errorf("expected 25%% and 50%% milestones reached, got %d", reached)
	}

	rec = app.request(http.MethodPost, "/api/v1/goals/"+goalID+"/contributions", `{"amount":45000}`, token)
	mustStatus(t, rec, http.StatusCreated)
	result = parseJSON(t, rec)
	contributionID := object(t, result, "contribution")["id"].(string)
	if object(t, result, "goal")["is_completed"] != true {
		t.Errorf("expected goal completed once target is passed")
	}

	rec = app.request(http.MethodDelete, "/api/v1/goals/"+goalID+"/contributions/"+contributionID, "", token)
	mustStatus(t, rec, http.StatusOK)
	goal = object(t, parseJSON(t, rec), "goal")
	if goal["is_completed"] != false || goal["current_amount"].(float64) != 60000 {
		t.Errorf("expected contribution reversal to reopen the goal: %v", goal)
	}

	rec = app.request(http.MethodPost, "/api/v1/goals/"+goalID+"/share", "", token)
	mustStatus(t, rec, http.StatusOK)
	share := parseJSON(t, rec)
	sharePath := share["share_path"].(string)
	if !strings.HasSuffix(sharePath, share["share_token"].(string)) {
		t.Errorf("share path %q does not carry the token", sharePath)
	}

	// The shared view is public and omits owner data.
	rec = app.request(http.MethodGet, sharePath, "", "")
	mustStatus(t, rec, http.StatusOK)
	shared := object(t, parseJSON(t, rec), "goal")
	if shared["name"] != "Bike" || shared["current_amount"].(float64) != 60000 {
		t.Errorf("unexpected shared goal: %v", shared)
	}
	if _, leaked := shared["user_id"]; leaked {
		t.Error("shared goal must not expose the owner")
	}

	rec = app.request(http.MethodDelete, "/api/v1/goals/"+goalID+"/share", "", token)
	mustStatus(t, rec, http.StatusOK)
	rec = app.request(http.MethodGet, sharePath, "", "")
	mustStatus(t, rec, http.StatusNotFound)
}

func TestRecurringFlow_GenerateCatchesUpOnePerCall(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "recurring@test.com", "password123")
	accountID := app.createAccount(t, token, "Checking", 0)

	rec := app.request(http.MethodPost, "/api/v1/recurring", fmt.Sprintf(
		`{"account_id":%q,"description":"Rent","amount":-120000,"frequency":"monthly","next_occurrence_date":"2020-01-31"}`, accountID), token)
	mustStatus(t, rec, http.StatusCreated)
	recurringID := object(t, parseJSON(t, rec), "recurring_transaction")["id"].(string)

	rec = app.request(http.MethodPost, "/api/v1/recurring/generate", "", token)
	mustStatus(t, rec, http.StatusOK)
	if created := parseJSON(t, rec)["created"].(float64); created != 1 {
		t.Fatalf("expected 1 occurrence per call, got %.0f", created)
	}

	rec = app.request(http.MethodGet, "/api/v1/recurring/"+recurringID, "", token)
	mustStatus(t, rec, http.StatusOK)
	next := object(t, parseJSON(t, rec), "recurring_transaction")["next_occurrence_date"].(string)
	if !strings.HasPrefix(next, "2020-02-29") {
		t.Errorf("expected month-end clamp to 2020-02-29, got %s", next)
	}

	// The machine endpoint picks up the remaining backlog one step at a time.
	rec = app.serviceRequest(http.MethodPost, "/api/v1/internal/recurring/generate", "wrong-key")
	mustStatus(t, rec, http.StatusUnauthorized)

	rec = app.serviceRequest(http.MethodPost, "/api/v1/internal/recurring/generate", testServiceKey)
	mustStatus(t, rec, http.StatusOK)
	summary := parseJSON(t, rec)
	if summary["total_created"].(float64) != 1 {
		t.Errorf("expected 1 created by the service run, got %v", summary["total_created"])
	}

	rec = app.request(http.MethodGet, "/api/v1/accounts/"+accountID+"/transactions", "", token)
	mustStatus(t, rec, http.StatusOK)
	if total := parseJSON(t, rec)["total_items"].(float64); total != 2 {
		t.Errorf("expected 2 generated transactions, got %.0f", total)
	}

	rec = app.request(http.MethodGet, "/api/v1/recurring/upcoming?days=400", "", token)
	mustStatus(t, rec, http.StatusBadRequest)
}
