package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pocketpilot/internal/models"
	"pocketpilot/internal/pagination"
	"pocketpilot/internal/services"
)

// CategoryHandler handles category-related requests
type CategoryHandler struct {
	categoryService services.CategoryServicer
	auditService    services.AuditServicer
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService services.CategoryServicer, auditService services.AuditServicer) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService, auditService: auditService}
}

// CreateCategoryRequest represents the request body for creating a category
type CreateCategoryRequest struct {
	Name         string              `json:"name" binding:"required,min=1,max=100"`
	Type         models.CategoryType `json:"type" binding:"required,category_type"`
	Color        string              `json:"color" binding:"omitempty,hex_color"`
	Icon         string              `json:"icon" binding:"max=50"`
	IsTaxRelated bool                `json:"is_tax_related"`
	TaxTag       string              `json:"tax_tag" binding:"max=50"`
}

// UpdateCategoryRequest represents the request body for updating a category
type UpdateCategoryRequest struct {
	Name         *string `json:"name" binding:"omitempty,min=1,max=100"`
	Color        *string `json:"color" binding:"omitempty,hex_color"`
	Icon         *string `json:"icon" binding:"omitempty,max=50"`
	IsTaxRelated *bool   `json:"is_tax_related"`
	TaxTag       *string `json:"tax_tag" binding:"omitempty,max=50"`
	IsArchived   *bool   `json:"is_archived"`
}

// CategoryListQuery holds the category list filters.
type CategoryListQuery struct {
	pagination.PageRequest
	Type            models.CategoryType `form:"type" binding:"omitempty,category_type"`
	IncludeArchived bool                `form:"include_archived"`
}

// DeleteCategoryResponse says whether the category was archived or removed.
type DeleteCategoryResponse struct {
	Message  string `json:"message"`
	Archived bool   `json:"archived"`
}

// CreateCategory handles the creation of a new category
// @Summary     Create category
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateCategoryRequest true "Category details"
// @Success     201 {object} models.Category "Category created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Duplicate category name"
// @Router      /categories [post]
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	category, err := h.categoryService.CreateCategory(userID, services.CategoryInput{
		Name:         req.Name,
		Type:         req.Type,
		Color:        req.Color,
		Icon:         req.Icon,
		IsTaxRelated: req.IsTaxRelated,
		TaxTag:       req.TaxTag,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_CATEGORY", "category", category.ID, c.ClientIP(),
		map[string]interface{}{"name": category.Name, "type": category.Type})

	c.JSON(http.StatusCreated, gin.H{"category": category})
}

// GetUserCategories returns the user's categories
// @Summary     List categories
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Param       type             query string false "Filter by type"
// @Param       include_archived query bool   false "Include archived categories"
// @Param       page             query int    false "Page number"
// @Param       page_size        query int    false "Page size"
// @Success     200 {object} pagination.PageResponse[models.Category] "Paginated categories"
// @Router      /categories [get]
func (h *CategoryHandler) GetUserCategories(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q CategoryListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	filter := services.CategoryFilter{IncludeArchived: q.IncludeArchived}
	if q.Type != "" {
		filter.Type = &q.Type
	}

	result, err := h.categoryService.GetUserCategories(userID, filter, q.PageRequest)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetCategoryByID returns a category
// @Summary     Get category
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Category ID"
// @Success     200 {object} models.Category "Category"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /categories/{id} [get]
func (h *CategoryHandler) GetCategoryByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categoryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	category, err := h.categoryService.GetCategoryByID(userID, categoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": category})
}

// UpdateCategory updates a category
// @Summary     Update category
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                true "Category ID"
// @Param       request body UpdateCategoryRequest true "Fields to update"
// @Success     200 {object} models.Category "Category updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     409 {object} ErrorResponse "Duplicate category name"
// @Router      /categories/{id} [put]
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categoryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	category, err := h.categoryService.UpdateCategory(userID, categoryID, services.CategoryUpdateFields{
		Name:         req.Name,
		Color:        req.Color,
		Icon:         req.Icon,
		IsTaxRelated: req.IsTaxRelated,
		TaxTag:       req.TaxTag,
		IsArchived:   req.IsArchived,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_CATEGORY", "category", category.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name, "is_archived": req.IsArchived})

	c.JSON(http.StatusOK, gin.H{"category": category})
}

// DeleteCategory removes a category, or archives it while transactions use it
// @Summary     Delete category
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Category ID"
// @Success     200 {object} DeleteCategoryResponse "Category deleted or archived"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categoryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	archived, err := h.categoryService.DeleteCategory(userID, categoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp := DeleteCategoryResponse{Message: "Category deleted", Archived: archived}
	if archived {
		resp.Message = "Category is used by transactions and was archived"
	}

	h.auditService.Log(userID, "DELETE_CATEGORY", "category", categoryID, c.ClientIP(),
		map[string]interface{}{"archived": archived})
	c.JSON(http.StatusOK, resp)
}
