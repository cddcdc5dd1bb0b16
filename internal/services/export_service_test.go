package services

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"pocketpilot/internal/models"
	"pocketpilot/internal/testutil"
)

func seedExport(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := testutil.CreateTestUser(t, db)
	account := testutil.CreateTestAccount(t, db, user.ID)
	category := testutil.CreateTestCategory(t, db, user.ID)

	testutil.CreateTestTransactionOn(t, db, user.ID, account.ID, &category.ID, -1250, testutil.Date(2024, 3, 5))
	testutil.CreateTestTransactionOn(t, db, user.ID, account.ID, nil, 300000, testutil.Date(2024, 3, 1))
	testutil.CreateTestTransactionOn(t, db, user.ID, account.ID, nil, -999, testutil.Date(2024, 1, 1))
	return user
}

func TestExportCSV(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewExportService(db)
	user := seedExport(t, db)

	from := testutil.Date(2024, 3, 1)
	var buf bytes.Buffer
	testutil.AssertNoError(t, svc.ExportTransactions(&buf, user.ID, ExportCSV, &from, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	testutil.AssertNoError(t, err)
	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(records))
	}

	header := records[0]
	for i, col := range exportColumns {
		if header[i] != col {
			t.Errorf("column %d: expected %q, got %q", i, col, header[i])
		}
	}

	first := records[1]
	if first[0] != "2024-03-05" || first[2] != "-12.50" || first[3] != "expense" || first[4] == "" || first[6] != "false" {
		t.Errorf("unexpected first row: %v", first)
	}
	second := records[2]
	if second[2] != "3000.00" || second[3] != "income" || second[4] != "" {
		t.Errorf("unexpected second row: %v", second)
	}
}

func TestExportJSON(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewExportService(db)
	user := seedExport(t, db)

	var buf bytes.Buffer
	testutil.AssertNoError(t, svc.ExportTransactions(&buf, user.ID, ExportJSON, nil, nil))

	var rows []exportRow
	testutil.AssertNoError(t, json.Unmarshal(buf.Bytes(), &rows))
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[2].Date != "2024-01-01" || rows[2].Amount != "-9.99" {
		t.Errorf("unexpected oldest row: %+v", rows[2])
	}
}

func TestExportXLSX(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewExportService(db)
	user := seedExport(t, db)

	var buf bytes.Buffer
	testutil.AssertNoError(t, svc.ExportTransactions(&buf, user.ID, ExportXLSX, nil, nil))

	f, err := excelize.OpenReader(&buf)
	testutil.AssertNoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	testutil.AssertNoError(t, err)
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	if rows[0][0] != "Date" || rows[0][6] != "Is Transfer" {
		t.Errorf("unexpected header: %v", rows[0])
	}
}

func TestExportExcludesSplitParents(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	user := testutil.CreateTestUser(t, db)
	account := testutil.CreateTestAccount(t, db, user.ID)
	food := testutil.CreateTestCategory(t, db, user.ID)
	home := testutil.CreateTestCategory(t, db, user.ID)

	parent := testutil.CreateTestTransaction(t, db, user.ID, account.ID, -10000)
	_, err := NewTransactionService(db).SplitTransaction(user.ID, parent.ID, []SplitInput{
		{CategoryID: &food.ID, Amount: 6000},
		{CategoryID: &home.ID, Amount: 4000},
	})
	testutil.AssertNoError(t, err)

	var buf bytes.Buffer
	testutil.AssertNoError(t, NewExportService(db).ExportTransactions(&buf, user.ID, ExportCSV, nil, nil))
	records, _ := csv.NewReader(&buf).ReadAll()
	if len(records) != 3 {
		t.Errorf("expected only the two children, got %d rows", len(records)-1)
	}
}

func TestExportUnsupportedFormat(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	user := testutil.CreateTestUser(t, db)

	var buf bytes.Buffer
	err := NewExportService(db).ExportTransactions(&buf, user.ID, "pdf", nil, nil)
	testutil.AssertAppError(t, err, "INVALID_INPUT")
}
