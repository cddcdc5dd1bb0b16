package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pocketpilot/internal/finance"
	"pocketpilot/internal/logger"
	"pocketpilot/internal/models"
	"pocketpilot/internal/services"
)

// RecurringHandler handles recurring transaction templates and generation
type RecurringHandler struct {
	recurringService services.RecurringServicer
	auditService     services.AuditServicer
}

// NewRecurringHandler creates a new RecurringHandler
func NewRecurringHandler(recurringService services.RecurringServicer, auditService services.AuditServicer) *RecurringHandler {
	return &RecurringHandler{recurringService: recurringService, auditService: auditService}
}

// CreateRecurringRequest represents the request body for creating a template
type CreateRecurringRequest struct {
	AccountID          string           `json:"account_id" binding:"required,uuid"`
	CategoryID         *string          `json:"category_id" binding:"omitempty,uuid"`
	Description        string           `json:"description" binding:"required,min=1,max=255"`
	Amount             int64            `json:"amount" binding:"required"`
	Frequency          models.Frequency `json:"frequency" binding:"required,frequency"`
	NextOccurrenceDate string           `json:"next_occurrence_date"`
}

// UpdateRecurringRequest represents the request body for updating a template
type UpdateRecurringRequest struct {
	AccountID          *string           `json:"account_id" binding:"omitempty,uuid"`
	CategoryID         *string           `json:"category_id" binding:"omitempty,uuid"`
	ClearCategory      bool              `json:"clear_category"`
	Description        *string           `json:"description" binding:"omitempty,min=1,max=255"`
	Amount             *int64            `json:"amount"`
	Frequency          *models.Frequency `json:"frequency" binding:"omitempty,frequency"`
	NextOccurrenceDate *string           `json:"next_occurrence_date"`
	IsActive           *bool             `json:"is_active"`
}

// RecurringListQuery filters the template list.
type RecurringListQuery struct {
	ActiveOnly bool `form:"active_only"`
}

// UpcomingQuery sets the preview window in days.
type UpcomingQuery struct {
	Days int `form:"days" binding:"omitempty,min=1,max=366"`
}

// CreateRecurring handles the creation of a recurring template
// @Summary     Create recurring transaction
// @Tags        recurring
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateRecurringRequest true "Template details"
// @Success     201 {object} models.RecurringTransaction "Template created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Account or category not found"
// @Router      /recurring [post]
func (h *RecurringHandler) CreateRecurring(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateRecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	in := services.RecurringInput{
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
		Description: req.Description,
		Amount:      req.Amount,
		Frequency:   req.Frequency,
	}
	if req.NextOccurrenceDate != "" {
		if in.NextOccurrenceDate, err = parseDate(req.NextOccurrenceDate, "next_occurrence_date"); err != nil {
			respondWithError(c, err)
			return
		}
	}

	rt, err := h.recurringService.CreateRecurring(userID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_RECURRING", "recurring_transaction", rt.ID, c.ClientIP(),
		map[string]interface{}{"frequency": req.Frequency, "amount": req.Amount})

	c.JSON(http.StatusCreated, gin.H{"recurring_transaction": rt})
}

// GetUserRecurring lists templates by next occurrence
// @Summary     List recurring transactions
// @Tags        recurring
// @Produce     json
// @Security    BearerAuth
// @Param       active_only query bool false "Only active templates"
// @Success     200 {array} models.RecurringTransaction "Templates"
// @Router      /recurring [get]
func (h *RecurringHandler) GetUserRecurring(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q RecurringListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	items, err := h.recurringService.GetUserRecurring(userID, q.ActiveOnly)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recurring_transactions": items})
}

// GetRecurringByID returns a single template
// @Summary     Get recurring transaction
// @Tags        recurring
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Template ID"
// @Success     200 {object} models.RecurringTransaction "Template"
// @Failure     404 {object} ErrorResponse "Template not found"
// @Router      /recurring/{id} [get]
func (h *RecurringHandler) GetRecurringByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	recurringID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	rt, err := h.recurringService.GetRecurringByID(userID, recurringID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recurring_transaction": rt})
}

// UpdateRecurring updates a template
// @Summary     Update recurring transaction
// @Tags        recurring
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                 true "Template ID"
// @Param       request body UpdateRecurringRequest true "Fields to update"
// @Success     200 {object} models.RecurringTransaction "Template updated"
// @Failure     404 {object} ErrorResponse "Template not found"
// @Router      /recurring/{id} [put]
func (h *RecurringHandler) UpdateRecurring(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	recurringID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateRecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	next, err := parseOptionalDate(req.NextOccurrenceDate, "next_occurrence_date")
	if err != nil {
		respondWithError(c, err)
		return
	}

	rt, err := h.recurringService.UpdateRecurring(userID, recurringID, services.RecurringUpdateFields{
		AccountID:          req.AccountID,
		CategoryID:         req.CategoryID,
		ClearCategory:      req.ClearCategory,
		Description:        req.Description,
		Amount:             req.Amount,
		Frequency:          req.Frequency,
		NextOccurrenceDate: next,
		IsActive:           req.IsActive,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_RECURRING", "recurring_transaction", recurringID, c.ClientIP(),
		map[string]interface{}{"amount": req.Amount, "frequency": req.Frequency, "is_active": req.IsActive})

	c.JSON(http.StatusOK, gin.H{"recurring_transaction": rt})
}

// DeleteRecurring deletes a template; generated transactions are kept
// @Summary     Delete recurring transaction
// @Tags        recurring
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Template ID"
// @Success     200 {object} MessageResponse "Template deleted"
// @Failure     404 {object} ErrorResponse "Template not found"
// @Router      /recurring/{id} [delete]
func (h *RecurringHandler) DeleteRecurring(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	recurringID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.recurringService.DeleteRecurring(userID, recurringID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_RECURRING", "recurring_transaction", recurringID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, MessageResponse{Message: "Recurring transaction deleted"})
}

// GenerateDue creates the due occurrence of each of the user's templates
// @Summary     Generate due transactions
// @Tags        recurring
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.GenerateResult "Generation summary"
// @Router      /recurring/generate [post]
func (h *RecurringHandler) GenerateDue(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.recurringService.GenerateDue(userID, finance.Today())
	if err != nil {
		respondWithError(c, err)
		return
	}

	if result.Created > 0 {
		h.auditService.Log(userID, "GENERATE_RECURRING", "recurring_transaction", "", c.ClientIP(),
			map[string]interface{}{"created": result.Created, "skipped": result.Skipped})
	}

	c.JSON(http.StatusOK, result)
}

// GetUpcoming previews occurrences within the next days
// @Summary     Upcoming recurring transactions
// @Tags        recurring
// @Produce     json
// @Security    BearerAuth
// @Param       days query int false "Window in days (default 30, max 366)"
// @Success     200 {array}  services.UpcomingOccurrence "Upcoming occurrences"
// @Failure     400 {object} ErrorResponse "Invalid window"
// @Router      /recurring/upcoming [get]
func (h *RecurringHandler) GetUpcoming(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q UpcomingQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	upcoming, err := h.recurringService.GetUpcoming(userID, finance.Today(), q.Days)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"upcoming": upcoming})
}

// GenerateAllDue runs generation for every owner. Mounted behind the
// service key rather than a user session.
// @Summary     Generate due transactions for all users
// @Tags        internal
// @Produce     json
// @Security    ApiKeyAuth
// @Success     200 {object} GenerateAllResponse "Per-owner summary"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Router      /internal/recurring/generate [post]
func (h *RecurringHandler) GenerateAllDue(c *gin.Context) {
	results, err := h.recurringService.GenerateAllDue(finance.Today())
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp := GenerateAllResponse{Users: results}
	for _, r := range results {
		resp.TotalCreated += r.Created
		resp.TotalSkipped += r.Skipped
		resp.TotalErrors += r.Errors
	}
	logger.Get().Infow("Recurring generation run finished",
		"users", len(results), "created", resp.TotalCreated, "errors", resp.TotalErrors)

	c.JSON(http.StatusOK, resp)
}

// GenerateAllResponse totals a service-wide generation run.
type GenerateAllResponse struct {
	TotalCreated int                            `json:"total_created"`
	TotalSkipped int                            `json:"total_skipped"`
	TotalErrors  int                            `json:"total_errors"`
	Users        []services.OwnerGenerateResult `json:"users"`
}
