package services

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	apperrors "pocketpilot/internal/errors"
	"pocketpilot/internal/finance"
	"pocketpilot/internal/models"
	"pocketpilot/internal/money"
)

const exportSheet = "Transactions"

// exportColumns is the fixed column order of every export format.
var exportColumns = []string{"Date", "Description", "Amount", "Type", "Category", "Account", "Is Transfer"}

// exportRow is one exported transaction.
type exportRow struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Type        string `json:"type"`
	Category    string `json:"category"`
	Account     string `json:"account"`
	IsTransfer  bool   `json:"is_transfer"`
}

func (r exportRow) values() []string {
	return []string{r.Date, r.Description, r.Amount, r.Type, r.Category, r.Account, strconv.FormatBool(r.IsTransfer)}
}

type exportService struct {
	db *gorm.DB
}

// NewExportService creates a new ExportServicer.
func NewExportService(db *gorm.DB) ExportServicer {
	return &exportService{db: db}
}

// ExportTransactions writes the owner's transactions, newest first. Split
// parents are represented by their children so every amount appears once.
func (s *exportService) ExportTransactions(w io.Writer, userID string, format ExportFormat, from, to *time.Time) error {
	rows, err := s.rows(userID, from, to)
	if err != nil {
		return err
	}

	switch format {
	case ExportCSV, "":
		return writeCSV(w, rows)
	case ExportJSON:
		if err := json.NewEncoder(w).Encode(rows); err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	case ExportXLSX:
		return writeXLSX(w, rows)
	default:
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "unsupported export format")
	}
}

func (s *exportService) rows(userID string, from, to *time.Time) ([]exportRow, error) {
	query := s.db.Preload("Account").Preload("Category").
		Where("user_id = ? AND is_split_parent = ?", userID, false)
	if from != nil {
		query = query.Where("date >= ?", finance.Midnight(finance.DateOf(*from)))
	}
	if to != nil {
		query = query.Where("date <= ?", finance.Midnight(finance.DateOf(*to)))
	}

	var transactions []models.Transaction
	if err := query.Order("date DESC, created_at DESC").Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	rows := make([]exportRow, 0, len(transactions))
	for i := range transactions {
		t := &transactions[i]
		row := exportRow{
			Date:        t.Date.Format("2006-01-02"),
			Description: t.Description,
			Amount:      money.String(t.Amount),
			Type:        t.Kind(),
			IsTransfer:  t.IsTransfer,
		}
		if t.Category != nil {
			row.Category = t.Category.Name
		}
		if t.Account != nil {
			row.Account = t.Account.Name
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func writeCSV(w io.Writer, rows []exportRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(exportColumns); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for _, r := range rows {
		if err := writer.Write(r.values()); err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func writeXLSX(w io.Writer, rows []exportRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for i, h := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(exportSheet, cell, h); err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	for r, row := range rows {
		values := row.values()
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			var value interface{} = v
			// Amounts go in as numbers so spreadsheets can sum them.
			if c == 2 {
				if d, err := strconv.ParseFloat(v, 64); err == nil {
					value = d
				}
			}
			if err := f.SetCellValue(exportSheet, cell, value); err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
	}

	_ = f.SetColWidth(exportSheet, "A", "A", 12)
	_ = f.SetColWidth(exportSheet, "B", "B", 36)
	_ = f.SetColWidth(exportSheet, "C", "D", 12)
	_ = f.SetColWidth(exportSheet, "E", "F", 18)

	if err := f.Write(w); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, fmt.Errorf("write xlsx: %w", err))
	}
	return nil
}

// ExportFilename is the download name for an export made on day.
func ExportFilename(format ExportFormat, day time.Time) string {
	if format == "" {
		format = ExportCSV
	}
	return fmt.Sprintf("transactions_%s.%s", day.Format("20060102"), format)
}
