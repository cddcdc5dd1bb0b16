package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"pocketpilot/internal/assistant"
	"pocketpilot/internal/config"
	"pocketpilot/internal/logger"
	"pocketpilot/internal/services"
	"pocketpilot/internal/testutil"
	"pocketpilot/internal/validator"
)

const testServiceKey = "flow-service-key"

// testApp holds the full application stack for flow tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
	config.Set(&config.Config{JWTSecret: "flow-test-secret", JWTExpirationDur: 15 * time.Minute})
}

// echoModel answers with a fixed reply and remembers the last prompt.
type echoModel struct {
	system string
	turns  []assistant.Turn
}

func (m *echoModel) Reply(_ context.Context, system string, turns []assistant.Turn) (string, error) {
	m.system = system
	m.turns = turns
	return "You are on track.", nil
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	return setupAppWithModel(t, nil)
}

func setupAppWithModel(t *testing.T, model assistant.ChatModel) *testApp {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	router := NewRouter(Services{
		User:        services.NewUserService(db),
		Account:     services.NewAccountService(db),
		Category:    services.NewCategoryService(db),
		Transaction: services.NewTransactionService(db),
		Budget:      services.NewBudgetService(db, 90),
		Goal:        services.NewGoalService(db),
		Rule:        services.NewRuleService(db),
		Recurring:   services.NewRecurringService(db),
		Link:        services.NewLinkService(db),
		Tag:         services.NewTagService(db),
		Export:      services.NewExportService(db),
		Import:      services.NewImportService(db),
		Assistant:   services.NewAssistantService(db, model, 90),
		Audit:       services.NewAuditService(db),
	}, Options{ServiceAPIKey: testServiceKey})

	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// mustStatus fails the test when rec does not carry want.
func mustStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// object returns result[key] as a JSON object.
func object(t *testing.T, result map[string]interface{}, key string) map[string]interface{} {
	t.Helper()
	obj, ok := result[key].(map[string]interface{})
	if !ok {
		t.Fatalf("expected object at %q, got %T", key, result[key])
	}
	return obj
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return object(t, parseJSON(t, rec), "error")["code"].(string)
}

// registerUser registers a new user and returns the access token, refresh token, and user ID.
func (app *testApp) registerUser(t *testing.T, email, password string) (accessToken, refreshToken, userID string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"first_name":"Test","last_name":"User"}`, email, password)
	rec := app.request(http.MethodPost, "/api/v1/auth/register", body, "")
	mustStatus(t, rec, http.StatusCreated)
	result := parseJSON(t, rec)
	user := object(t, result, "user")
	return result["access_token"].(string), result["refresh_token"].(string), user["id"].(string)
}

// loginUser logs in and returns the access and refresh tokens.
func (app *testApp) loginUser(t *testing.T, email, password string) (accessToken, refreshToken string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request(http.MethodPost, "/api/v1/auth/login", body, "")
	mustStatus(t, rec, http.StatusOK)
	result := parseJSON(t, rec)
	return result["access_token"].(string), result["refresh_token"].(string)
}

// createAccount creates an account and returns its ID.
func (app *testApp) createAccount(t *testing.T, token, name string, initialBalance int64) string {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q,"type":"checking","currency":"USD","initial_balance":%d}`, name, initialBalance)
	rec := app.request(http.MethodPost, "/api/v1/accounts", body, token)
	mustStatus(t, rec, http.StatusCreated)
	return object(t, parseJSON(t, rec), "account")["id"].(string)
}

// createCategory creates a category and returns its ID.
func (app *testApp) createCategory(t *testing.T, token, name, kind string) string {
	t.Helper()
	rec := app.request(http.MethodPost, "/api/v1/categories", fmt.Sprintf(`{"name":%q,"type":%q}`, name, kind), token)
	mustStatus(t, rec, http.StatusCreated)
	return object(t, parseJSON(t, rec), "category")["id"].(string)
}

// createTransaction creates a transaction and returns its ID.
func (app *testApp) createTransaction(t *testing.T, token, body string) string {
	t.Helper()
	rec := app.request(http.MethodPost, "/api/v1/transactions", body, token)
	mustStatus(t, rec, http.StatusCreated)
	return object(t, parseJSON(t, rec), "transaction")["id"].(string)
}

// serviceRequest calls a machine endpoint with the given X-API-Key.
func (app *testApp) serviceRequest(method, path, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("X-API-Key", key)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}
