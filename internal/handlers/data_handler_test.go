package handlers

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "pocketpilot/internal/errors"
	"pocketpilot/internal/services"
)

// --- mock export and import services ---

type mockExportService struct {
	exportFn func(w io.Writer, userID string, format services.ExportFormat, from, to *time.Time) error
}

var _ services.ExportServicer = (*mockExportService)(nil)

func (m *mockExportService) ExportTransactions(w io.Writer, userID string, format services.ExportFormat, from, to *time.Time) error {
	if m.exportFn != nil {
		return m.exportFn(w, userID, format, from, to)
	}
	return nil
}

type mockImportService struct {
	importFn func(userID, accountID string, r io.Reader) (*services.ImportResult, error)
}

var _ services.ImportServicer = (*mockImportService)(nil)

func (m *mockImportService) ImportCSV(userID, accountID string, r io.Reader) (*services.ImportResult, error) {
	if m.importFn != nil {
		return m.importFn(userID, accountID, r)
	}
	return &services.ImportResult{}, nil
}

func setupDataRouter(handler *DataHandler) *gin.Engine {
	r := gin.New()
	r.Use(injectUserID(testUserID))
	r.GET("/export", handler.ExportTransactions)
	r.POST("/import/csv", handler.ImportCSV)
	return r
}

func multipartImport(t *testing.T, accountID, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if accountID != "" {
		_ = w.WriteField("account_id", accountID)
	}
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		_, _ = part.Write([]byte(content))
	}
	_ = w.Close()

	req := httptest.NewRequest("POST", "/import/csv", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

// --- tests ---

func TestDataHandler_ExportTransactions(t *testing.T) {
	t.Run("defaults to csv attachment", func(t *testing.T) {
		var gotFormat services.ExportFormat
		svc := &mockExportService{
			exportFn: func(w io.Writer, _ string, format services.ExportFormat, _, _ *time.Time) error {
				gotFormat = format
				_, err := io.WriteString(w, "Date,Description\n")
				return err
			},
		}
		r := setupDataRouter(NewDataHandler(svc, &mockImportService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/export", "")

		assertStatus(t, rec, http.StatusOK)
		if gotFormat != services.ExportCSV {
			t.Errorf("expected csv, got %q", gotFormat)
		}
		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
			t.Errorf("unexpected content type %q", ct)
		}
		cd := rec.Header().Get("Content-Disposition")
		if !strings.HasPrefix(cd, `attachment; filename="transactions_`) || !strings.HasSuffix(cd, `.csv"`) {
			t.Errorf("unexpected disposition %q", cd)
		}
		if rec.Body.String() != "Date,Description\n" {
			t.Errorf("unexpected body %q", rec.Body.String())
		}
	})

	t.Run("passes the date range", func(t *testing.T) {
		var gotFrom, gotTo *time.Time
		svc := &mockExportService{
			exportFn: func(_ io.Writer, _ string, _ services.ExportFormat, from, to *time.Time) error {
				gotFrom, gotTo = from, to
				return nil
			},
		}
		r := setupDataRouter(NewDataHandler(svc, &mockImportService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/export?format=xlsx&from_date=2024-01-01", "")

		assertStatus(t, rec, http.StatusOK)
		if gotFrom == nil || gotTo != nil {
			t.Errorf("unexpected range %v %v", gotFrom, gotTo)
		}
	})

	t.Run("rejects an unknown format", func(t *testing.T) {
		r := setupDataRouter(NewDataHandler(&mockExportService{}, &mockImportService{}, &mockAuditService{}))
		rec := doRequest(r, "GET", "/export?format=pdf", "")
		assertStatus(t, rec, http.StatusBadRequest)
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})
}

func TestDataHandler_ImportCSV(t *testing.T) {
	t.Run("hands the file to the importer", func(t *testing.T) {
		var gotAccount, gotContent string
		svc := &mockImportService{
			importFn: func(_, accountID string, r io.Reader) (*services.ImportResult, error) {
				gotAccount = accountID
				b, _ := io.ReadAll(r)
				gotContent = string(b)
				return &services.ImportResult{Imported: 1, Transactions: []string{testTransactionID}}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupDataRouter(NewDataHandler(&mockExportService{}, svc, audit))

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, multipartImport(t, testAccountID, "bank.csv", "Date,Description,Amount\n2024-01-02,Coffee,-4.50\n"))

		assertStatus(t, rec, http.StatusOK)
		if gotAccount != testAccountID || !strings.Contains(gotContent, "Coffee") {
			t.Errorf("unexpected import call %q %q", gotAccount, gotContent)
		}
		if parseJSON(t, rec)["imported"] != float64(1) {
			t.Error("expected imported=1")
		}
		if !audit.has("IMPORT_TRANSACTIONS") {
			t.Error("expected IMPORT_TRANSACTIONS audit entry")
		}
	})

	t.Run("requires an account", func(t *testing.T) {
		r := setupDataRouter(NewDataHandler(&mockExportService{}, &mockImportService{}, &mockAuditService{}))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, multipartImport(t, "", "bank.csv", "Date\n"))
		assertStatus(t, rec, http.StatusBadRequest)
	})

	t.Run("requires a file", func(t *testing.T) {
		r := setupDataRouter(NewDataHandler(&mockExportService{}, &mockImportService{}, &mockAuditService{}))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, multipartImport(t, testAccountID, "", ""))
		assertStatus(t, rec, http.StatusBadRequest)
	})

	t.Run("maps unreadable files", func(t *testing.T) {
		svc := &mockImportService{
			importFn: func(_, _ string, _ io.Reader) (*services.ImportResult, error) {
				return nil, apperrors.WithMessage(apperrors.ErrInvalidImport, "Missing required columns: Amount")
			},
		}
		r := setupDataRouter(NewDataHandler(&mockExportService{}, svc, &mockAuditService{}))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, multipartImport(t, testAccountID, "bank.csv", "Date,Description\n"))
		assertStatus(t, rec, http.StatusBadRequest)
		assertErrorCode(t, parseJSON(t, rec), "INVALID_IMPORT")
	})
}
