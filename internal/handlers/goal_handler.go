package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "pocketpilot/internal/errors"
	"pocketpilot/internal/pagination"
	"pocketpilot/internal/services"
)

// GoalHandler handles savings goal requests
type GoalHandler struct {
	goalService  services.GoalServicer
	auditService services.AuditServicer
}

// NewGoalHandler creates a new GoalHandler
func NewGoalHandler(goalService services.GoalServicer, auditService services.AuditServicer) *GoalHandler {
	return &GoalHandler{goalService: goalService, auditService: auditService}
}

// CreateGoalRequest represents the request body for creating a goal
type CreateGoalRequest struct {
	Name          string  `json:"name" binding:"required,min=1,max=100"`
	TargetAmount  int64   `json:"target_amount" binding:"required,gt=0"`
	CurrentAmount int64   `json:"current_amount" binding:"gte=0"`
	TargetDate    *string `json:"target_date"`
}

// UpdateGoalRequest represents the request body for updating a goal
type UpdateGoalRequest struct {
	Name            *string `json:"name" binding:"omitempty,min=1,max=100"`
	TargetAmount    *int64  `json:"target_amount" binding:"omitempty,gt=0"`
	TargetDate      *string `json:"target_date"`
	ClearTargetDate bool    `json:"clear_target_date"`
}

// ContributionRequest adds money to a goal.
type ContributionRequest struct {
	Amount int64  `json:"amount" binding:"required,gt=0"`
	Date   string `json:"date"`
	Note   string `json:"note" binding:"max=255"`
}

// ContributionResponse returns the stored contribution and the goal after it.
type ContributionResponse struct {
	Contribution interface{} `json:"contribution"`
	Goal         interface{} `json:"goal"`
}

// ShareResponse carries a goal's public share token.
type ShareResponse struct {
	ShareToken string `json:"share_token"`
	SharePath  string `json:"share_path"`
}

// CreateGoal handles the creation of a new goal
// @Summary     Create goal
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateGoalRequest true "Goal details"
// @Success     201 {object} services.GoalWithDetails "Goal created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /goals [post]
func (h *GoalHandler) CreateGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	targetDate, err := parseOptionalDate(req.TargetDate, "target_date")
	if err != nil {
		respondWithError(c, err)
		return
	}

	goal, err := h.goalService.CreateGoal(userID, services.GoalInput{
		Name:          req.Name,
		TargetAmount:  req.TargetAmount,
		CurrentAmount: req.CurrentAmount,
		TargetDate:    targetDate,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_GOAL", "goal", goal.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name, "target_amount": req.TargetAmount})

	c.JSON(http.StatusCreated, gin.H{"goal": goal})
}

// GetUserGoals lists the user's goals with progress
// @Summary     List goals
// @Tags        goals
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[services.GoalWithDetails] "Paginated goals"
// @Router      /goals [get]
func (h *GoalHandler) GetUserGoals(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	result, err := h.goalService.GetUserGoals(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetGoalByID returns a goal with progress, pace and milestones
// @Summary     Get goal
// @Tags        goals
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Goal ID"
// @Success     200 {object} services.GoalWithDetails "Goal"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Router      /goals/{id} [get]
func (h *GoalHandler) GetGoalByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	goal, err := h.goalService.GetGoalByID(userID, goalID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"goal": goal})
}

// UpdateGoal updates a goal
// @Summary     Update goal
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true "Goal ID"
// @Param       request body UpdateGoalRequest true "Fields to update"
// @Success     200 {object} services.GoalWithDetails "Goal updated"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Router      /goals/{id} [put]
func (h *GoalHandler) UpdateGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	targetDate, err := parseOptionalDate(req.TargetDate, "target_date")
	if err != nil {
		respondWithError(c, err)
		return
	}

	goal, err := h.goalService.UpdateGoal(userID, goalID, services.GoalUpdateFields{
		Name:            req.Name,
		TargetAmount:    req.TargetAmount,
		TargetDate:      targetDate,
		ClearTargetDate: req.ClearTargetDate,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_GOAL", "goal", goalID, c.ClientIP(),
		map[string]interface{}{"name": req.Name, "target_amount": req.TargetAmount})

	c.JSON(http.StatusOK, gin.H{"goal": goal})
}

// DeleteGoal deletes a goal and its contributions
// @Summary     Delete goal
// @Tags        goals
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Goal ID"
// @Success     200 {object} MessageResponse "Goal deleted"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Router      /goals/{id} [delete]
func (h *GoalHandler) DeleteGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.goalService.DeleteGoal(userID, goalID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_GOAL", "goal", goalID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, MessageResponse{Message: "Goal deleted"})
}

// AddContribution records money added to a goal
// @Summary     Add contribution
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string              true "Goal ID"
// @Param       request body ContributionRequest true "Contribution"
// @Success     201 {object} ContributionResponse "Contribution recorded"
// @Failure     400 {object} ErrorResponse "Invalid amount"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Router      /goals/{id}/contributions [post]
func (h *GoalHandler) AddContribution(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ContributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	in := services.ContributionInput{Amount: req.Amount, Note: req.Note}
	if req.Date != "" {
		if in.Date, err = parseDate(req.Date, "date"); err != nil {
			respondWithError(c, err)
			return
		}
	}

	contribution, goal, err := h.goalService.AddContribution(userID, goalID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "ADD_CONTRIBUTION", "goal", goalID, c.ClientIP(),
		map[string]interface{}{"amount": contribution.Amount})

	c.JSON(http.StatusCreated, ContributionResponse{Contribution: contribution, Goal: goal})
}

// GetContributions lists a goal's contributions, newest first
// @Summary     List contributions
// @Tags        goals
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Goal ID"
// @Success     200 {array}  models.GoalContribution "Contributions"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Router      /goals/{id}/contributions [get]
func (h *GoalHandler) GetContributions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	contributions, err := h.goalService.GetContributions(userID, goalID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"contributions": contributions})
}

// DeleteContribution removes a contribution and reverses it
// @Summary     Delete contribution
// @Tags        goals
// @Produce     json
// @Security    BearerAuth
// @Param       id             path string true "Goal ID"
// @Param       contributionId path string true "Contribution ID"
// @Success     200 {object} services.GoalWithDetails "Goal after reversal"
// @Failure     404 {object} ErrorResponse "Contribution not found"
// @Router      /goals/{id}/contributions/{contributionId} [delete]
func (h *GoalHandler) DeleteContribution(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	contributionID, err := parsePathID(c, "contributionId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	goal, err := h.goalService.DeleteContribution(userID, goalID, contributionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_CONTRIBUTION", "goal", goalID, c.ClientIP(),
		map[string]interface{}{"contribution_id": contributionID})

	c.JSON(http.StatusOK, gin.H{"goal": goal})
}

// ShareGoal issues a public read-only link for a goal
// @Summary     Share goal
// @Tags        goals
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Goal ID"
// @Success     200 {object} ShareResponse "Share token"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Router      /goals/{id}/share [post]
func (h *GoalHandler) ShareGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	token, err := h.goalService.ShareGoal(userID, goalID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "SHARE_GOAL", "goal", goalID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, ShareResponse{ShareToken: token, SharePath: "/api/v1/shared/goals/" + token})
}

// UnshareGoal revokes a goal's public link
// @Summary     Unshare goal
// @Tags        goals
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Goal ID"
// @Success     200 {object} MessageResponse "Sharing disabled"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Router      /goals/{id}/share [delete]
func (h *GoalHandler) UnshareGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.goalService.UnshareGoal(userID, goalID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UNSHARE_GOAL", "goal", goalID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, MessageResponse{Message: "Sharing disabled"})
}

// GetSharedGoal returns the public view of a shared goal
// @Summary     View shared goal
// @Description Public endpoint; no authentication required
// @Tags        shared
// @Produce     json
// @Param       token path string true "Share token"
// @Success     200 {object} services.SharedGoal "Shared goal"
// @Failure     404 {object} ErrorResponse "Shared goal not found"
// @Router      /shared/goals/{token} [get]
func (h *GoalHandler) GetSharedGoal(c *gin.Context) {
	token := c.Param("token")
	if len(token) > 128 {
		respondWithError(c, apperrors.ErrShareNotFound)
		return
	}

	goal, err := h.goalService.GetSharedGoal(token)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"goal": goal})
}
