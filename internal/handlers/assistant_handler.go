package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pocketpilot/internal/services"
)

// AssistantHandler answers finance questions through the chat model
type AssistantHandler struct {
	assistantService services.AssistantServicer
}

// NewAssistantHandler creates a new AssistantHandler
func NewAssistantHandler(assistantService services.AssistantServicer) *AssistantHandler {
	return &AssistantHandler{assistantService: assistantService}
}

// ChatRequest is a user message plus the earlier turns of the conversation.
type ChatRequest struct {
	Message string                 `json:"message" binding:"required,max=4000"`
	History []services.ChatMessage `json:"history" binding:"max=50"`
}

// ChatResponse carries the assistant's reply.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// Chat asks the assistant a question about the user's finances
// @Summary     Chat with the assistant
// @Tags        assistant
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ChatRequest true "Message and history"
// @Success     200 {object} ChatResponse "Assistant reply"
// @Failure     502 {object} ErrorResponse "Model unavailable"
// @Failure     503 {object} ErrorResponse "Assistant not configured"
// @Router      /assistant/chat [post]
func (h *AssistantHandler) Chat(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	reply, err := h.assistantService.Chat(c.Request.Context(), userID, req.Message, req.History)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, ChatResponse{Reply: reply})
}
