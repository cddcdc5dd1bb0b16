package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "pocketpilot/internal/errors"
	"pocketpilot/internal/finance"
	"pocketpilot/internal/logger"
	"pocketpilot/internal/models"
	"pocketpilot/internal/money"
)

const maxImportRows = 5000

var importDateLayouts = []string{"2006-01-02", "01/02/2006", "1/2/2006", "2006/01/02", "02 Jan 2006"}

type importService struct {
	db *gorm.DB
}

// NewImportService creates a new ImportServicer.
func NewImportService(db *gorm.DB) ImportServicer {
	return &importService{db: db}
}

// ImportCSV reads Date, Description, Amount and an optional Category column
// into the account. Each row is stored on its own; a bad row is reported and
// skipped. Rows without a known category go through the owner's rules.
func (s *importService) ImportCSV(userID, accountID string, r io.Reader) (*ImportResult, error) {
	if _, err := findAccount(s.db, userID, accountID); err != nil {
		return nil, err
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidImport, "The file is empty")
		}
		return nil, apperrors.Wrap(apperrors.ErrInvalidImport, err)
	}
	cols, err := importColumns(header)
	if err != nil {
		return nil, err
	}

	rows, err := readImportRows(reader)
	if err != nil {
		return nil, err
	}

	categories, err := s.categoriesByName(userID)
	if err != nil {
		return nil, err
	}
	rules, err := loadRuleSet(s.db, userID)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Transactions: []string{}}
	log := logger.With("user_id", userID, "account_id", accountID)

	for i, rec := range rows {
		row := i + 2
		record, err := rec.fields, rec.err

		var t *models.Transaction
		if err == nil {
			t, err = cols.transaction(record, categories, rules)
		}
		if err == nil {
			t.UserID = userID
			t.AccountID = accountID
			if cerr := s.db.Create(t).Error; cerr != nil {
				log.Errorw("failed to store imported row", "row", row, "error", cerr)
				err = errors.New("could not be saved")
			}
		}
		if err != nil {
			log.Warnw("skipping import row", "row", row, "error", err)
			result.Failed++
			result.Errors = append(result.Errors, ImportRowError{Row: row, Error: err.Error()})
			continue
		}

		result.Imported++
		if t.CategoryID != nil {
			result.Categorized++
		}
		result.Transactions = append(result.Transactions, t.ID)
	}

	log.Infow("csv import finished", "imported", result.Imported, "failed", result.Failed)
	return result, nil
}

type importRow struct {
	fields []string
	err    error
}

// readImportRows buffers every data row so an oversized file is rejected
// before anything is stored. Malformed rows keep their read error.
func readImportRows(reader *csv.Reader) ([]importRow, error) {
	var rows []importRow
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		var parseErr *csv.ParseError
		if err != nil && !errors.As(err, &parseErr) {
			return nil, apperrors.Wrap(apperrors.ErrInvalidImport, err)
		}
		if len(rows) == maxImportRows {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidImport, fmt.Sprintf("Imports are limited to %d rows", maxImportRows))
		}
		rows = append(rows, importRow{fields: record, err: err})
	}
}

func (s *importService) categoriesByName(userID string) (map[string]string, error) {
	var categories []models.Category
	if err := s.db.Where("user_id = ? AND is_archived = ?", userID, false).Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	byName := make(map[string]string, len(categories))
	for _, c := range categories {
		byName[strings.ToLower(c.Name)] = c.ID
	}
	return byName, nil
}

// columnIndex locates the recognised headers; category is -1 when absent.
type columnIndex struct {
	date, description, amount, category int
}

func importColumns(header []string) (columnIndex, error) {
	cols := columnIndex{date: -1, description: -1, amount: -1, category: -1}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case "date":
			cols.date = i
		case "description":
			cols.description = i
		case "amount":
			cols.amount = i
		case "category":
			cols.category = i
		}
	}

	var missing []string
	if cols.date < 0 {
		missing = append(missing, "Date")
	}
	if cols.description < 0 {
		missing = append(missing, "Description")
	}
	if cols.amount < 0 {
		missing = append(missing, "Amount")
	}
	if len(missing) > 0 {
		return cols, apperrors.WithMessage(apperrors.ErrInvalidImport, "Missing required columns: "+strings.Join(missing, ", "))
	}
	return cols, nil
}

func (c columnIndex) transaction(record []string, categories map[string]string, rules *finance.RuleSet) (*models.Transaction, error) {
	field := func(i int) string {
		if i < 0 || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	date, err := parseImportDate(field(c.date))
	if err != nil {
		return nil, err
	}
	description := field(c.description)
	if description == "" {
		return nil, errors.New("description is required")
	}
	amount, err := money.Parse(field(c.amount))
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q", field(c.amount))
	}
	if amount == 0 {
		return nil, errors.New("amount cannot be zero")
	}

	t := &models.Transaction{
		Date:        finance.Midnight(finance.DateOf(date)),
		Amount:      amount,
		Description: description,
	}
	if id, ok := categories[strings.ToLower(field(c.category))]; ok {
		t.CategoryID = &id
	} else if rule, ok := rules.Match(description); ok {
		categoryID := rule.CategoryID
		t.CategoryID = &categoryID
	}
	return t, nil
}

func parseImportDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("date is required")
	}
	for _, layout := range importDateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
