package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"pocketpilot/internal/config"
	apperrors "pocketpilot/internal/errors"
	"pocketpilot/internal/logger"
	"pocketpilot/internal/models"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	config.Set(&config.Config{JWTSecret: testSecret, JWTExpirationDur: 15 * time.Minute})
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse response body: %v", err)
	}
	return result
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	errObj, ok := parseBody(t, rec)["error"].(map[string]interface{})
	if !ok {
		t.Fatal("expected error object in response")
	}
	code, _ := errObj["code"].(string)
	return code
}

func TestServiceKeyMiddleware(t *testing.T) {
	tests := []struct {
		name          string
		configuredKey string
		requestKey    string
		wantStatus    int
		wantErrorCode string
	}{
		{name: "valid_api_key", configuredKey: "secret-service-key", requestKey: "secret-service-key", wantStatus: http.StatusOK},
		{name: "invalid_api_key", configuredKey: "secret-service-key", requestKey: "wrong-key", wantStatus: http.StatusUnauthorized, wantErrorCode: "INVALID_API_KEY"},
		{name: "missing_api_key", configuredKey: "secret-service-key", wantStatus: http.StatusUnauthorized, wantErrorCode: "INVALID_API_KEY"},
		{name: "partial_match_rejected", configuredKey: "secret-service-key", requestKey: "secret-service", wantStatus: http.StatusUnauthorized, wantErrorCode: "INVALID_API_KEY"},
		{name: "empty_configured_key", requestKey: "any-key", wantStatus: http.StatusServiceUnavailable, wantErrorCode: "SERVICE_KEY_NOT_CONFIGURED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(ServiceKeyMiddleware(tt.configuredKey))
			r.POST("/test", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

			req := httptest.NewRequest(http.MethodPost, "/test", http.NoBody)
			if tt.requestKey != "" {
				req.Header.Set("X-API-Key", tt.requestKey)
			}
			rec := serve(r, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantErrorCode != "" {
				if code := errorCode(t, rec); code != tt.wantErrorCode {
					t.Errorf("error code = %q, want %q", code, tt.wantErrorCode)
				}
			}
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	user := &models.User{Base: models.Base{ID: "0190a1b2-0000-7000-8000-000000000001"}, Email: "a@example.com"}

	access, err := GenerateAccessToken(user)
	if err != nil {
		t.Fatalf("failed to generate access token: %v", err)
	}
	refresh, err := GenerateRefreshToken(user)
	if err != nil {
		t.Fatalf("failed to generate refresh token: %v", err)
	}

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &JWTClaims{
		UserID:    user.ID,
		TokenType: tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			Issuer:    tokenIssuer,
		},
	})
	expiredToken, _ := expired.SignedString([]byte(testSecret))

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, &JWTClaims{UserID: user.ID, TokenType: tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: tokenIssuer}})
	foreignToken, _ := foreign.SignedString([]byte("other-secret"))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCode   string
	}{
		{"valid_access_token", "Bearer " + access, http.StatusOK, ""},
		{"missing_header", "", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"wrong_scheme", "Basic " + access, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"refresh_token_rejected", "Bearer " + refresh, http.StatusUnauthorized, "INVALID_TOKEN"},
		{"expired_token", "Bearer " + expiredToken, http.StatusUnauthorized, "INVALID_TOKEN"},
		{"wrong_secret", "Bearer " + foreignToken, http.StatusUnauthorized, "INVALID_TOKEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/me", AuthMiddleware(), func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"user_id": c.GetString(UserIDKey)})
			})

			req := httptest.NewRequest(http.MethodGet, "/me", http.NoBody)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := serve(r, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantCode != "" {
				if code := errorCode(t, rec); code != tt.wantCode {
					t.Errorf("error code = %q, want %q", code, tt.wantCode)
				}
				return
			}
			if got := parseBody(t, rec)["user_id"]; got != user.ID {
				t.Errorf("user_id = %v, want %s", got, user.ID)
			}
		})
	}
}

func TestValidateRefreshToken(t *testing.T) {
	user := &models.User{Base: models.Base{ID: "0190a1b2-0000-7000-8000-000000000002"}}
	refresh, _ := GenerateRefreshToken(user)
	access, _ := GenerateAccessToken(user)

	claims, err := ValidateRefreshToken(refresh)
	if err != nil || claims.UserID != user.ID {
		t.Fatalf("expected valid refresh token, got %v", err)
	}
	if _, err := ValidateRefreshToken(access); err == nil {
		t.Error("expected access token to be rejected as refresh token")
	}
	if HashToken(refresh) == HashToken(access) || len(HashToken(refresh)) != 64 {
		t.Error("expected distinct 64-char hashes")
	}
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"app_error", apperrors.ErrGoalNotFound, http.StatusNotFound, "GOAL_NOT_FOUND"},
		{"wrapped_app_error", apperrors.Wrap(apperrors.ErrInternalServer, errors.New("db down")), http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"plain_error", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(ErrorHandler())
			r.GET("/fail", func(c *gin.Context) { _ = c.Error(tt.err) })

			rec := serve(r, httptest.NewRequest(http.MethodGet, "/fail", http.NoBody))
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if code := errorCode(t, rec); code != tt.wantCode {
				t.Errorf("code = %q, want %q", code, tt.wantCode)
			}
		})
	}
}

func TestRequestLogging(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogging())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, RequestID(c)) })

	t.Run("generates_id", func(t *testing.T) {
		rec := serve(r, httptest.NewRequest(http.MethodGet, "/ping", http.NoBody))
		id := rec.Header().Get("X-Request-ID")
		if len(id) != 36 || rec.Body.String() != id {
			t.Errorf("expected generated request id echoed, got header %q body %q", id, rec.Body.String())
		}
	})

	t.Run("keeps_valid_incoming_id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", http.NoBody)
		req.Header.Set("X-Request-ID", "0190a1b2-0000-7000-8000-0000000000aa")
		rec := serve(r, req)
		if rec.Header().Get("X-Request-ID") != "0190a1b2-0000-7000-8000-0000000000aa" {
			t.Errorf("expected incoming id kept, got %q", rec.Header().Get("X-Request-ID"))
		}
	})

	t.Run("replaces_malformed_id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", http.NoBody)
		req.Header.Set("X-Request-ID", "<script>")
		rec := serve(r, req)
		if rec.Header().Get("X-Request-ID") == "<script>" {
			t.Error("expected malformed id replaced")
		}
	})
}
