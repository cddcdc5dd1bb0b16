package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"pocketpilot/internal/models"
	"pocketpilot/internal/services"
)

// RuleHandler handles categorization rule requests
type RuleHandler struct {
	ruleService  services.RuleServicer
	auditService services.AuditServicer
}

// NewRuleHandler creates a new RuleHandler
func NewRuleHandler(ruleService services.RuleServicer, auditService services.AuditServicer) *RuleHandler {
	return &RuleHandler{ruleService: ruleService, auditService: auditService}
}

// CreateRuleRequest represents the request body for creating a rule
type CreateRuleRequest struct {
	Name          string          `json:"name" binding:"required,min=1,max=100"`
	RuleType      models.RuleType `json:"rule_type" binding:"required,rule_type"`
	Pattern       string          `json:"pattern" binding:"required,max=500"`
	CaseSensitive bool            `json:"case_sensitive"`
	CategoryID    string          `json:"category_id" binding:"required,uuid"`
	IsActive      *bool           `json:"is_active"`
}

// UpdateRuleRequest represents the request body for updating a rule
type UpdateRuleRequest struct {
	Name          *string          `json:"name" binding:"omitempty,min=1,max=100"`
	RuleType      *models.RuleType `json:"rule_type" binding:"omitempty,rule_type"`
	Pattern       *string          `json:"pattern" binding:"omitempty,min=1,max=500"`
	CaseSensitive *bool            `json:"case_sensitive"`
	CategoryID    *string          `json:"category_id" binding:"omitempty,uuid"`
	IsActive      *bool            `json:"is_active"`
}

// ReorderRulesRequest lists every rule ID in the new evaluation order.
type ReorderRulesRequest struct {
	RuleIDs []string `json:"rule_ids" binding:"required,min=1,dive,uuid"`
}

// ApplyRulesRequest controls a rule application run.
type ApplyRulesRequest struct {
	UncategorizedOnly *bool `json:"uncategorized_only"`
	DryRun            bool  `json:"dry_run"`
}

// TestRuleRequest is an unsaved rule to try against a description.
type TestRuleRequest struct {
	Description   string          `json:"description" binding:"max=255"`
	RuleType      models.RuleType `json:"rule_type" binding:"required,rule_type"`
	Pattern       string          `json:"pattern" binding:"required,max=500"`
	CaseSensitive bool            `json:"case_sensitive"`
}

// CreateRule handles the creation of a categorization rule
// @Summary     Create rule
// @Description New rules are appended to the end of the evaluation order
// @Tags        rules
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateRuleRequest true "Rule details"
// @Success     201 {object} models.CategorizationRule "Rule created"
// @Failure     400 {object} ErrorResponse "Invalid pattern"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /rules [post]
func (h *RuleHandler) CreateRule(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	rule, err := h.ruleService.CreateRule(userID, services.RuleInput{
		Name:          req.Name,
		RuleType:      req.RuleType,
		Pattern:       req.Pattern,
		CaseSensitive: req.CaseSensitive,
		CategoryID:    req.CategoryID,
		IsActive:      req.IsActive,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_RULE", "categorization_rule", rule.ID, c.ClientIP(),
		map[string]interface{}{"rule_type": req.RuleType, "category_id": req.CategoryID})

	c.JSON(http.StatusCreated, gin.H{"rule": rule})
}

// GetUserRules lists rules in evaluation order
// @Summary     List rules
// @Tags        rules
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.CategorizationRule "Rules"
// @Router      /rules [get]
func (h *RuleHandler) GetUserRules(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	rules, err := h.ruleService.GetUserRules(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rules": rules})
}

// GetRuleByID returns a single rule
// @Summary     Get rule
// @Tags        rules
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Rule ID"
// @Success     200 {object} models.CategorizationRule "Rule"
// @Failure     404 {object} ErrorResponse "Rule not found"
// @Router      /rules/{id} [get]
func (h *RuleHandler) GetRuleByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	ruleID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	rule, err := h.ruleService.GetRuleByID(userID, ruleID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rule": rule})
}

// UpdateRule updates a rule
// @Summary     Update rule
// @Tags        rules
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true "Rule ID"
// @Param       request body UpdateRuleRequest true "Fields to update"
// @Success     200 {object} models.CategorizationRule "Rule updated"
// @Failure     400 {object} ErrorResponse "Invalid pattern"
// @Failure     404 {object} ErrorResponse "Rule not found"
// @Router      /rules/{id} [put]
func (h *RuleHandler) UpdateRule(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	ruleID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	rule, err := h.ruleService.UpdateRule(userID, ruleID, services.RuleUpdateFields{
		Name:          req.Name,
		RuleType:      req.RuleType,
		Pattern:       req.Pattern,
		CaseSensitive: req.CaseSensitive,
		CategoryID:    req.CategoryID,
		IsActive:      req.IsActive,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_RULE", "categorization_rule", ruleID, c.ClientIP(),
		map[string]interface{}{"pattern": req.Pattern, "is_active": req.IsActive})

	c.JSON(http.StatusOK, gin.H{"rule": rule})
}

// DeleteRule deletes a rule and closes the gap in the order
// @Summary     Delete rule
// @Tags        rules
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Rule ID"
// @Success     200 {object} MessageResponse "Rule deleted"
// @Failure     404 {object} ErrorResponse "Rule not found"
// @Router      /rules/{id} [delete]
func (h *RuleHandler) DeleteRule(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	ruleID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.ruleService.DeleteRule(userID, ruleID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_RULE", "categorization_rule", ruleID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, MessageResponse{Message: "Rule deleted"})
}

// ReorderRules sets the evaluation order
// @Summary     Reorder rules
// @Tags        rules
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ReorderRulesRequest true "Every rule ID in order"
// @Success     200 {array}  models.CategorizationRule "Rules in new order"
// @Failure     400 {object} ErrorResponse "Rule list does not match"
// @Router      /rules/reorder [put]
func (h *RuleHandler) ReorderRules(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ReorderRulesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	rules, err := h.ruleService.ReorderRules(userID, req.RuleIDs)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "REORDER_RULES", "categorization_rule", "", c.ClientIP(),
		map[string]interface{}{"rule_ids": req.RuleIDs})

	c.JSON(http.StatusOK, gin.H{"rules": rules})
}

// ApplyRules runs the active rules over existing transactions
// @Summary     Apply rules
// @Description Uncategorized transactions only unless uncategorized_only is false. dry_run reports without writing.
// @Tags        rules
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ApplyRulesRequest false "Run options"
// @Success     200 {object} services.ApplyRulesResult "Run summary"
// @Router      /rules/apply [post]
func (h *RuleHandler) ApplyRules(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	// An empty body means the defaults.
	var req ApplyRulesRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondWithError(c, invalidInput(err))
		return
	}

	opts := services.ApplyRulesOptions{UncategorizedOnly: true, DryRun: req.DryRun}
	if req.UncategorizedOnly != nil {
		opts.UncategorizedOnly = *req.UncategorizedOnly
	}

	result, err := h.ruleService.ApplyRules(userID, opts)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if !opts.DryRun {
		h.auditService.Log(userID, "APPLY_RULES", "categorization_rule", "", c.ClientIP(),
			map[string]interface{}{"matched": result.TotalMatched, "checked": result.TotalChecked})
	}

	c.JSON(http.StatusOK, result)
}

// TestRule tries an unsaved rule
// @Summary     Test rule
// @Tags        rules
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body TestRuleRequest true "Rule to try"
// @Success     200 {object} services.RuleTestResult "Match result"
// @Failure     400 {object} ErrorResponse "Invalid pattern"
// @Router      /rules/test [post]
func (h *RuleHandler) TestRule(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TestRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	result, err := h.ruleService.TestRule(userID, services.RuleTestInput{
		Description:   req.Description,
		RuleType:      req.RuleType,
		Pattern:       req.Pattern,
		CaseSensitive: req.CaseSensitive,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
