package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"chatrelay/internal/ai"
	"chatrelay/internal/app"
	"chatrelay/internal/transport/http/response"
)

type ChatHandler struct {
	chatService *app.ChatService
}

type ChatMessage struct {
	Role    string            `json:"role" binding:"required"`
	Content ai.MessageContent `json:"content"`
}

type ChatRequest struct {
	Model       string        `json:"model" binding:"required"`
	Messages    []ChatMessage `json:"messages" binding:"required,min=1"`
	SessionID   string        `json:"session_id"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature *float64      `json:"temperature"`
}

func NewChatHandler(chatService *app.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) Completion(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	messages := make([]ai.Message, 0, len(req.Messages))
	for _, msg := range req.Messages {
		messages = append(messages, ai.Message{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	result, err := h.chatService.SendTurn(c.Request.Context(), app.SendTurnInput{
		Model:       req.Model,
		SessionID:   req.SessionID,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput), errors.Is(err, app.ErrMessageEmpty):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrSessionNotFound):
			response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, err.Error())
		case errors.Is(err, ai.ErrUnavailable):
			response.Error(c, http.StatusServiceUnavailable, response.CodeUpstreamUnavailable, "completion gateway unreachable")
		case errors.Is(err, ai.ErrRejected):
			response.Error(c, http.StatusBadGateway, response.CodeUpstreamRejected, "completion gateway rejected the request")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "chat completion failed")
		}
		return
	}

	c.JSON(http.StatusOK, result)
}
