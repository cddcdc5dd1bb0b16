package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pocketpilot/internal/pagination"
	"pocketpilot/internal/services"
)

// TransactionHandler handles transaction-related requests
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, auditService: auditService}
}

// CreateTransactionRequest represents the request body for creating a
// transaction. Amount is signed cents: negative for expenses.
type CreateTransactionRequest struct {
	AccountID   string   `json:"account_id" binding:"required,uuid"`
	CategoryID  *string  `json:"category_id" binding:"omitempty,uuid"`
	Date        string   `json:"date"`
	Amount      int64    `json:"amount" binding:"required"`
	Description string   `json:"description" binding:"required,min=1,max=255"`
	Notes       string   `json:"notes" binding:"max=1000"`
	IsTransfer  bool     `json:"is_transfer"`
	TagIDs      []string `json:"tag_ids" binding:"omitempty,max=20,dive,uuid"`
}

// UpdateTransactionRequest represents the request body for updating a transaction.
type UpdateTransactionRequest struct {
	AccountID     *string `json:"account_id" binding:"omitempty,uuid"`
	CategoryID    *string `json:"category_id" binding:"omitempty,uuid"`
	ClearCategory bool    `json:"clear_category"`
	Date          *string `json:"date"`
	Amount        *int64  `json:"amount"`
	Description   *string `json:"description" binding:"omitempty,min=1,max=255"`
	Notes         *string `json:"notes" binding:"omitempty,max=1000"`
	IsTransfer    *bool   `json:"is_transfer"`
}

// SplitRequest divides a transaction into categorized parts. Amounts are
// positive magnitudes that must add up to the transaction's amount.
type SplitRequest struct {
	Splits []SplitItem `json:"splits" binding:"required,min=2,max=50,dive"`
}

// SplitItem is one part of a split.
type SplitItem struct {
	CategoryID  *string `json:"category_id" binding:"omitempty,uuid"`
	Amount      int64   `json:"amount" binding:"required,gt=0"`
	Description string  `json:"description" binding:"max=255"`
	Notes       string  `json:"notes" binding:"max=1000"`
}

// TransactionListQuery holds the transaction list filters.
type TransactionListQuery struct {
	pagination.PageRequest
	FromDate      string `form:"from_date"`
	ToDate        string `form:"to_date"`
	AccountID     string `form:"account_id" binding:"omitempty,uuid"`
	CategoryID    string `form:"category_id" binding:"omitempty,uuid"`
	Uncategorized bool   `form:"uncategorized"`
	TagID         string `form:"tag_id" binding:"omitempty,uuid"`
	MinAmount     *int64 `form:"min_amount"`
	MaxAmount     *int64 `form:"max_amount"`
	Search        string `form:"search" binding:"max=100"`
}

func (q *TransactionListQuery) filter() (services.TransactionFilter, error) {
	f := services.TransactionFilter{
		Uncategorized: q.Uncategorized,
		MinAmount:     q.MinAmount,
		MaxAmount:     q.MaxAmount,
		Search:        q.Search,
	}
	var err error
	if f.FromDate, err = parseOptionalDate(&q.FromDate, "from_date"); err != nil {
		return f, err
	}
	if f.ToDate, err = parseOptionalDate(&q.ToDate, "to_date"); err != nil {
		return f, err
	}
	if q.AccountID != "" {
		f.AccountID = &q.AccountID
	}
	if q.CategoryID != "" {
		f.CategoryID = &q.CategoryID
	}
	if q.TagID != "" {
		f.TagID = &q.TagID
	}
	return f, nil
}

// CreateTransaction handles the creation of a new transaction
// @Summary     Create transaction
// @Description Record a transaction. Without a category the owner's rules pick one.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Account or category not found"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	in := services.TransactionInput{
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
		Amount:      req.Amount,
		Description: req.Description,
		Notes:       req.Notes,
		IsTransfer:  req.IsTransfer,
		TagIDs:      req.TagIDs,
	}
	if req.Date != "" {
		if in.Date, err = parseDate(req.Date, "date"); err != nil {
			respondWithError(c, err)
			return
		}
	}

	transaction, err := h.transactionService.CreateTransaction(userID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_TRANSACTION", "transaction", transaction.ID, c.ClientIP(),
		map[string]interface{}{"account_id": req.AccountID, "amount": req.Amount, "is_transfer": req.IsTransfer})

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// GetUserTransactions lists the user's transactions
// @Summary     List transactions
// @Description Top-level transactions with split children nested under their parent
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       from_date     query string false "Start date (YYYY-MM-DD)"
// @Param       to_date       query string false "End date (YYYY-MM-DD)"
// @Param       account_id    query string false "Account ID"
// @Param       category_id   query string false "Category ID"
// @Param       uncategorized query bool   false "Only uncategorized"
// @Param       tag_id        query string false "Tag ID"
// @Param       min_amount    query int    false "Minimum signed amount in cents"
// @Param       max_amount    query int    false "Maximum signed amount in cents"
// @Param       search        query string false "Search description and notes"
// @Param       page          query int    false "Page number"
// @Param       page_size     query int    false "Page size"
// @Param       sort          query string false "Sort column (date, amount, description, created_at)"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Router      /transactions [get]
func (h *TransactionHandler) GetUserTransactions(c *gin.Context) {
	h.listTransactions(c, "")
}

// GetAccountTransactions lists transactions for one account
// @Summary     List account transactions
// @Tags        accounts
// @Produce     json
// @Security    BearerAuth
// @Param       id        path  string true  "Account ID"
// @Param       from_date query string false "Start date (YYYY-MM-DD)"
// @Param       to_date   query string false "End date (YYYY-MM-DD)"
// @Param       page      query int    false "Page number"
// @Param       page_size query int    false "Page size"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Router      /accounts/{id}/transactions [get]
func (h *TransactionHandler) GetAccountTransactions(c *gin.Context) {
	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	h.listTransactions(c, accountID)
}

func (h *TransactionHandler) listTransactions(c *gin.Context, accountID string) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q TransactionListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}
	if accountID != "" {
		q.AccountID = accountID
	}

	filter, err := q.filter()
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.GetUserTransactions(userID, q.PageRequest, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetTransactionByID returns a transaction with its splits
// @Summary     Get transaction
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// UpdateTransaction updates a transaction
// @Summary     Update transaction
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                   true "Transaction ID"
// @Param       request body UpdateTransactionRequest true "Fields to update"
// @Success     200 {object} models.Transaction "Transaction updated"
// @Failure     400 {object} ErrorResponse "Invalid input or split child"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     409 {object} ErrorResponse "Amount locked while split"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	date, err := parseOptionalDate(req.Date, "date")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.UpdateTransaction(userID, transactionID, services.TransactionUpdateFields{
		AccountID:     req.AccountID,
		CategoryID:    req.CategoryID,
		ClearCategory: req.ClearCategory,
		Date:          date,
		Amount:        req.Amount,
		Description:   req.Description,
		Notes:         req.Notes,
		IsTransfer:    req.IsTransfer,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_TRANSACTION", "transaction", transaction.ID, c.ClientIP(),
		map[string]interface{}{"amount": req.Amount, "category_id": req.CategoryID, "clear_category": req.ClearCategory})

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// DeleteTransaction deletes a transaction and its splits
// @Summary     Delete transaction
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} MessageResponse "Transaction deleted"
// @Failure     400 {object} ErrorResponse "Split child"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteTransaction(userID, transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_TRANSACTION", "transaction", transactionID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, MessageResponse{Message: "Transaction deleted"})
}

// SplitTransaction divides a transaction across categories
// @Summary     Split transaction
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string       true "Transaction ID"
// @Param       request body SplitRequest true "Split parts"
// @Success     200 {object} models.Transaction "Split transaction with children"
// @Failure     400 {object} ErrorResponse "Amounts do not reconcile"
// @Failure     409 {object} ErrorResponse "Already split"
// @Router      /transactions/{id}/split [post]
func (h *TransactionHandler) SplitTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SplitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	splits := make([]services.SplitInput, len(req.Splits))
	for i, s := range req.Splits {
		splits[i] = services.SplitInput{
			CategoryID:  s.CategoryID,
			Amount:      s.Amount,
			Description: s.Description,
			Notes:       s.Notes,
		}
	}

	transaction, err := h.transactionService.SplitTransaction(userID, transactionID, splits)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "SPLIT_TRANSACTION", "transaction", transactionID, c.ClientIP(),
		map[string]interface{}{"parts": len(splits)})

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// UnsplitTransaction removes a transaction's split children
// @Summary     Unsplit transaction
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction without splits"
// @Failure     400 {object} ErrorResponse "Transaction is not split"
// @Router      /transactions/{id}/split [delete]
func (h *TransactionHandler) UnsplitTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.UnsplitTransaction(userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UNSPLIT_TRANSACTION", "transaction", transactionID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}
