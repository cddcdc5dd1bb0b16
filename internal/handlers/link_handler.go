package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pocketpilot/internal/models"
	"pocketpilot/internal/services"
)

// LinkHandler handles links between related transactions
type LinkHandler struct {
	linkService  services.LinkServicer
	auditService services.AuditServicer
}

// NewLinkHandler creates a new LinkHandler
func NewLinkHandler(linkService services.LinkServicer, auditService services.AuditServicer) *LinkHandler {
	return &LinkHandler{linkService: linkService, auditService: auditService}
}

// CreateLinkRequest represents the request body for linking two transactions
type CreateLinkRequest struct {
	SourceTransactionID string          `json:"source_transaction_id" binding:"required,uuid"`
	TargetTransactionID string          `json:"target_transaction_id" binding:"required,uuid"`
	LinkType            models.LinkType `json:"link_type" binding:"required,link_type"`
	Notes               string          `json:"notes" binding:"max=500"`
}

// CreateLink links two of the user's transactions
// @Summary     Create link
// @Tags        links
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateLinkRequest true "Link details"
// @Success     201 {object} models.TransactionLink "Link created"
// @Failure     400 {object} ErrorResponse "Self link or invalid input"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     409 {object} ErrorResponse "Link already exists"
// @Router      /links [post]
func (h *LinkHandler) CreateLink(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	link, err := h.linkService.CreateLink(userID, services.LinkInput{
		SourceTransactionID: req.SourceTransactionID,
		TargetTransactionID: req.TargetTransactionID,
		LinkType:            req.LinkType,
		Notes:               req.Notes,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_LINK", "transaction_link", link.ID, c.ClientIP(),
		map[string]interface{}{"source": req.SourceTransactionID, "target": req.TargetTransactionID, "link_type": req.LinkType})

	c.JSON(http.StatusCreated, gin.H{"link": link})
}

// GetTransactionLinks lists links in either direction for a transaction
// @Summary     List transaction links
// @Tags        links
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {array}  models.TransactionLink "Links"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id}/links [get]
func (h *LinkHandler) GetTransactionLinks(c *gin.Context) {
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

	links, err := h.linkService.GetTransactionLinks(userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"links": links})
}

// DeleteLink removes a link
// @Summary     Delete link
// @Tags        links
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Link ID"
// @Success     200 {object} MessageResponse "Link deleted"
// @Failure     404 {object} ErrorResponse "Link not found"
// @Router      /links/{id} [delete]
func (h *LinkHandler) DeleteLink(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	linkID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.linkService.DeleteLink(userID, linkID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_LINK", "transaction_link", linkID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, MessageResponse{Message: "Link deleted"})
}
