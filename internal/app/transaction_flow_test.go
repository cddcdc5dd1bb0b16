package app

import (
	"fmt"
	"net/http"
	"testing"
)

func TestTransactionFlow_BalanceSplitAndUnsplit(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "tx@test.com", "password123")
	accountID := app.createAccount(t, token, "Checking", 100000)
	groceries := app.createCategory(t, token, "Groceries", "expense")
	household := app.createCategory(t, token, "Household", "expense")

	txID := app.createTransaction(t, token, fmt.Sprintf(
		`{"account_id":%q,"date":"2026-03-10","amount":-10000,"description":"Warehouse store"}`, accountID))
	app.createTransaction(t, token, fmt.Sprintf(
		`{"account_id":%q,"date":"2026-03-11","amount":250000,"description":"Salary"}`, accountID))

	rec := app.request(http.MethodGet, "/api/v1/accounts/"+accountID, "", token)
	mustStatus(t, rec, http.StatusOK)
	if got := object(t, parseJSON(t, rec), "account")["balance"].(float64); got != 340000 {
		t.Fatalf("expected balance 340000, got %.0f", got)
	}

	// Parts that do not reconcile to the cent are rejected.
	rec = app.request(http.MethodPost, "/api/v1/transactions/"+txID+"/split", fmt.Sprintf(
		`{"splits":[{"category_id":%q,"amount":6000},{"category_id":%q,"amount":3999}]}`, groceries, household), token)
	mustStatus(t, rec, http.StatusBadRequest)
	if code := errorCode(t, rec); code != "INVALID_SPLIT" {
		t.Errorf("expected INVALID_SPLIT, got %s", code)
	}

	rec = app.request(http.MethodPost, "/api/v1/transactions/"+txID+"/split", fmt.Sprintf(
		`{"splits":[{"category_id":%q,"amount":6000},{"category_id":%q,"amount":4000}]}`, groceries, household), token)
	mustStatus(t, rec, http.StatusOK)
	parent := object(t, parseJSON(t, rec), "transaction")
	if parent["is_split_parent"] != true {
		t.Errorf("expected parent flagged as split")
	}
	splits, _ := parent["splits"].([]interface{})
	if len(splits) != 2 {
		t.Fatalf("expected 2 children, got %d", len(splits))
	}
	for _, s := range splits {
		if amount := s.(map[string]interface{})["amount"].(float64); amount >= 0 {
			t.Errorf("expected children to inherit the expense sign, got %.0f", amount)
		}
	}

	// Children do not count twice toward the balance.
	rec = app.request(http.MethodGet, "/api/v1/accounts/"+accountID, "", token)
	if got := object(t, parseJSON(t, rec), "account")["balance"].(float64); got != 340000 {
		t.Errorf("expected balance unchanged after split, got %.0f", got)
	}

	rec = app.request(http.MethodPost, "/api/v1/transactions/"+txID+"/split", fmt.Sprintf(
		`{"splits":[{"category_id":%q,"amount":5000},{"category_id":%q,"amount":5000}]}`, groceries, household), token)
	mustStatus(t, rec, http.StatusConflict)

	rec = app.request(http.MethodDelete, "/api/v1/transactions/"+txID+"/split", "", token)
	mustStatus(t, rec, http.StatusOK)
	if object(t, parseJSON(t, rec), "transaction")["is_split_parent"] != false {
		t.Errorf("expected split flag cleared")
	}

	rec = app.request(http.MethodDelete, "/api/v1/transactions/"+txID+"/split", "", token)
	mustStatus(t, rec, http.StatusBadRequest)
}

func TestTransactionFlow_FiltersTagsAndLinks(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "filters@test.com", "password123")
	accountID := app.createAccount(t, token, "Checking", 0)

	purchase := app.createTransaction(t, token, fmt.Sprintf(
		`{"account_id":%q,"date":"2026-04-01","amount":-4599,"description":"Headphones"}`, accountID))
	refund := app.createTransaction(t, token, fmt.Sprintf(
		`{"account_id":%q,"date":"2026-04-09","amount":4599,"description":"Headphones refund"}`, accountID))
	app.createTransaction(t, token, fmt.Sprintf(
		`{"account_id":%q,"date":"2026-05-01","amount":-1200,"description":"Lunch"}`, accountID))

	rec := app.request(http.MethodGet, "/api/v1/transactions?search=headphones&from_date=2026-04-01&to_date=2026-04-30", "", token)
	mustStatus(t, rec, http.StatusOK)
	if total := parseJSON(t, rec)["total_items"].(float64); total != 2 {
		t.Errorf("expected 2 matching transactions, got %.0f", total)
	}

	rec = app.request(http.MethodPost, "/api/v1/tags", `{"name":"electronics","color":"#3366ff"}`, token)
	mustStatus(t, rec, http.StatusCreated)
	tagID := object(t, parseJSON(t, rec), "tag")["id"].(string)

	rec = app.request(http.MethodPost, "/api/v1/tags", `{"name":"electronics"}`, token)
	mustStatus(t, rec, http.StatusConflict)

	rec = app.request(http.MethodPost, "/api/v1/transactions/"+purchase+"/tags/"+tagID, "", token)
	mustStatus(t, rec, http.StatusOK)

	rec = app.request(http.MethodGet, "/api/v1/transactions?tag_id="+tagID, "", token)
	mustStatus(t, rec, http.StatusOK)
	if total := parseJSON(t, rec)["total_items"].(float64); total != 1 {
		t.Errorf("expected 1 tagged transaction, got %.0f", total)
	}

	linkBody := fmt.Sprintf(`{"source_transaction_id":%q,"target_transaction_id":%q,"link_type":"refund"}`, refund, purchase)
	rec = app.request(http.MethodPost, "/api/v1/links", linkBody, token)
	mustStatus(t, rec, http.StatusCreated)

	rec = app.request(http.MethodPost, "/api/v1/links", linkBody, token)
	mustStatus(t, rec, http.StatusConflict)
	if code := errorCode(t, rec); code != "LINK_EXISTS" {
		t.Errorf("expected LINK_EXISTS, got %s", code)
	}

	rec = app.request(http.MethodPost, "/api/v1/links", fmt.Sprintf(
		`{"source_transaction_id":%q,"target_transaction_id":%q,"link_type":"related"}`, purchase, purchase), token)
	mustStatus(t, rec, http.StatusBadRequest)

	rec = app.request(http.MethodGet, "/api/v1/transactions/"+purchase+"/links", "", token)
	mustStatus(t, rec, http.StatusOK)
	if links := parseJSON(t, rec)["links"].([]interface{}); len(links) != 1 {
		t.Errorf("expected 1 link, got %d", len(links))
	}
}

func TestTransactionFlow_OwnerIsolation(t *testing.T) {
	app := setupApp(t)
	alice, _, _ := app.registerUser(t, "alice@test.com", "password123")
	bob, _, _ := app.registerUser(t, "bob@test.com", "password123")

	accountID := app.createAccount(t, alice, "Alice checking", 0)
	txID := app.createTransaction(t, alice, fmt.Sprintf(
		`{"account_id":%q,"amount":-500,"description":"Coffee"}`, accountID))

	rec := app.request(http.MethodGet, "/api/v1/accounts/"+accountID, "", bob)
	mustStatus(t, rec, http.StatusNotFound)

	rec = app.request(http.MethodGet, "/api/v1/transactions/"+txID, "", bob)
	mustStatus(t, rec, http.StatusNotFound)

	rec = app.request(http.MethodPost, "/api/v1/transactions", fmt.Sprintf(
		`{"account_id":%q,"amount":-500,"description":"Sneaky"}`, accountID), bob)
	mustStatus(t, rec, http.StatusNotFound)
}
