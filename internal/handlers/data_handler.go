package handlers

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "pocketpilot/internal/errors"
	"pocketpilot/internal/services"
)

// maxUploadSize bounds the CSV accepted by the import endpoint.
const maxUploadSize = 5 << 20

var exportContentTypes = map[services.ExportFormat]string{
	services.ExportCSV:  "text/csv; charset=utf-8",
	services.ExportJSON: "application/json",
	services.ExportXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// DataHandler handles transaction export and import
type DataHandler struct {
	exportService services.ExportServicer
	importService services.ImportServicer
	auditService  services.AuditServicer
}

// NewDataHandler creates a new DataHandler
func NewDataHandler(exportService services.ExportServicer, importService services.ImportServicer, auditService services.AuditServicer) *DataHandler {
	return &DataHandler{exportService: exportService, importService: importService, auditService: auditService}
}

// ExportQuery selects the file format and date range.
type ExportQuery struct {
	Format   string `form:"format" binding:"omitempty,export_format"`
	FromDate string `form:"from_date"`
	ToDate   string `form:"to_date"`
}

// ImportForm is the multipart body of a CSV import.
type ImportForm struct {
	AccountID string `form:"account_id" binding:"required,uuid"`
}

// ExportTransactions downloads transactions as CSV, JSON or XLSX
// @Summary     Export transactions
// @Tags        data
// @Produce     octet-stream
// @Security    BearerAuth
// @Param       format    query string false "csv, json or xlsx (default csv)"
// @Param       from_date query string false "Start date (YYYY-MM-DD)"
// @Param       to_date   query string false "End date (YYYY-MM-DD)"
// @Success     200 {file}   file "Export file"
// @Failure     400 {object} ErrorResponse "Invalid format or date"
// @Router      /export [get]
func (h *DataHandler) ExportTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q ExportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}
	format := services.ExportFormat(q.Format)
	if format == "" {
		format = services.ExportCSV
	}

	from, err := parseOptionalDate(&q.FromDate, "from_date")
	if err != nil {
		respondWithError(c, err)
		return
	}
	to, err := parseOptionalDate(&q.ToDate, "to_date")
	if err != nil {
		respondWithError(c, err)
		return
	}

	// Buffer the file so a failure mid-way still yields a JSON error.
	var buf bytes.Buffer
	if err := h.exportService.ExportTransactions(&buf, userID, format, from, to); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "EXPORT_TRANSACTIONS", "transaction", "", c.ClientIP(),
		map[string]interface{}{"format": format, "from_date": q.FromDate, "to_date": q.ToDate})

	filename := services.ExportFilename(format, time.Now())
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, exportContentTypes[format], buf.Bytes())
}

// ImportCSV loads transactions from an uploaded CSV file
// @Summary     Import transactions
// @Description Columns Date, Description and Amount are required; Category is optional.
// @Tags        data
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
// @Param       file       formData file   true "CSV file"
// @Param       account_id formData string true "Account ID"
// @Success     200 {object} services.ImportResult "Import summary"
// @Failure     400 {object} ErrorResponse "Unreadable file"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Router      /import/csv [post]
func (h *DataHandler) ImportCSV(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	var form ImportForm
	if err := c.ShouldBind(&form); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "file is required"))
		return
	}
	file, err := header.Open()
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInvalidImport, err))
		return
	}
	defer file.Close()

	result, err := h.importService.ImportCSV(userID, form.AccountID, file)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "IMPORT_TRANSACTIONS", "account", form.AccountID, c.ClientIP(),
		map[string]interface{}{"filename": header.Filename, "imported": result.Imported, "failed": result.Failed})

	c.JSON(http.StatusOK, result)
}
