package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pocketpilot/internal/services"
)

// TagHandler handles tag requests
type TagHandler struct {
	tagService   services.TagServicer
	auditService services.AuditServicer
}

// NewTagHandler creates a new TagHandler
func NewTagHandler(tagService services.TagServicer, auditService services.AuditServicer) *TagHandler {
	return &TagHandler{tagService: tagService, auditService: auditService}
}

// CreateTagRequest represents the request body for creating a tag
type CreateTagRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=50"`
	Color string `json:"color" binding:"omitempty,hex_color"`
}

// UpdateTagRequest represents the request body for updating a tag
type UpdateTagRequest struct {
	Name  *string `json:"name" binding:"omitempty,min=1,max=50"`
	Color *string `json:"color" binding:"omitempty,hex_color"`
}

// CreateTag creates a tag
// @Summary     Create tag
// @Tags        tags
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTagRequest true "Tag details"
// @Success     201 {object} models.Tag "Tag created"
// @Failure     409 {object} ErrorResponse "Duplicate tag name"
// @Router      /tags [post]
func (h *TagHandler) CreateTag(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	tag, err := h.tagService.CreateTag(userID, req.Name, req.Color)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_TAG", "tag", tag.ID, c.ClientIP(), map[string]interface{}{"name": req.Name})
	c.JSON(http.StatusCreated, gin.H{"tag": tag})
}

// GetUserTags lists tags by name
// @Summary     List tags
// @Tags        tags
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.Tag "Tags"
// @Router      /tags [get]
func (h *TagHandler) GetUserTags(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	tags, err := h.tagService.GetUserTags(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

// UpdateTag renames or recolors a tag
// @Summary     Update tag
// @Tags        tags
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string           true "Tag ID"
// @Param       request body UpdateTagRequest true "Fields to update"
// @Success     200 {object} models.Tag "Tag updated"
// @Failure     404 {object} ErrorResponse "Tag not found"
// @Failure     409 {object} ErrorResponse "Duplicate tag name"
// @Router      /tags/{id} [put]
func (h *TagHandler) UpdateTag(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	tagID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	tag, err := h.tagService.UpdateTag(userID, tagID, req.Name, req.Color)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_TAG", "tag", tagID, c.ClientIP(), map[string]interface{}{"name": req.Name})
	c.JSON(http.StatusOK, gin.H{"tag": tag})
}

// DeleteTag deletes a tag and detaches it everywhere
// @Summary     Delete tag
// @Tags        tags
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Tag ID"
// @Success     200 {object} MessageResponse "Tag deleted"
// @Failure     404 {object} ErrorResponse "Tag not found"
// @Router      /tags/{id} [delete]
func (h *TagHandler) DeleteTag(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	tagID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.tagService.DeleteTag(userID, tagID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_TAG", "tag", tagID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, MessageResponse{Message: "Tag deleted"})
}

// AttachTag tags a transaction
// @Summary     Tag transaction
// @Tags        tags
// @Produce     json
// @Security    BearerAuth
// @Param       id    path string true "Transaction ID"
// @Param       tagId path string true "Tag ID"
// @Success     200 {object} MessageResponse "Tag attached"
// @Failure     404 {object} ErrorResponse "Transaction or tag not found"
// @Router      /transactions/{id}/tags/{tagId} [post]
func (h *TagHandler) AttachTag(c *gin.Context) {
	h.changeTag(c, true)
}

// DetachTag removes a tag from a transaction
// @Summary     Untag transaction
// @Tags        tags
// @Produce     json
// @Security    BearerAuth
// @Param       id    path string true "Transaction ID"
// @Param       tagId path string true "Tag ID"
// @Success     200 {object} MessageResponse "Tag detached"
// @Failure     404 {object} ErrorResponse "Transaction or tag not found"
// @Router      /transactions/{id}/tags/{tagId} [delete]
func (h *TagHandler) DetachTag(c *gin.Context) {
	h.changeTag(c, false)
}

func (h *TagHandler) changeTag(c *gin.Context, attach bool) {
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

	tagID, err := parsePathID(c, "tagId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	action, message := "ATTACH_TAG", "Tag attached"
	if attach {
		err = h.tagService.AttachTag(userID, transactionID, tagID)
	} else {
		action, message = "DETACH_TAG", "Tag detached"
		err = h.tagService.DetachTag(userID, transactionID, tagID)
	}
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, action, "transaction", transactionID, c.ClientIP(), map[string]interface{}{"tag_id": tagID})
	c.JSON(http.StatusOK, MessageResponse{Message: message})
}
