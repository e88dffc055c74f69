package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"chatrelay/internal/app"
	"chatrelay/internal/dto"
	"chatrelay/internal/transport/http/response"
)

type SessionsHandler struct {
	conversationService *app.ConversationService
}

type CreateSessionRequest struct {
	ModelID string `json:"model_id" binding:"required"`
	Title   string `json:"title" binding:"max=128"`
}

type UpdateSessionRequest struct {
	Title string `json:"title" binding:"required,max=128"`
}

func NewSessionsHandler(conversationService *app.ConversationService) *SessionsHandler {
	return &SessionsHandler{conversationService: conversationService}
}

func (h *SessionsHandler) List(c *gin.Context) {
	summaries, err := h.conversationService.ListSessions(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list sessions failed")
		return
	}

	responses := make([]dto.SessionSummaryResponse, 0, len(summaries))
	for _, summary := range summaries {
		responses = append(responses, dto.NewSessionSummaryResponse(summary))
	}
	c.JSON(http.StatusOK, responses)
}

func (h *SessionsHandler) Get(c *gin.Context) {
	session, messages, err := h.conversationService.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, app.ErrSessionNotFound):
			response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, err.Error())
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "get session failed")
		}
		return
	}

	c.JSON(http.StatusOK, dto.NewSessionResponse(session, messages))
}

func (h *SessionsHandler) Create(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	session, err := h.conversationService.CreateSession(c.Request.Context(), req.ModelID, req.Title)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "create session failed")
		}
		return
	}

	c.JSON(http.StatusOK, dto.NewSessionResponse(session, nil))
}

func (h *SessionsHandler) UpdateTitle(c *gin.Context) {
	var req UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	session, err := h.conversationService.UpdateTitle(c.Request.Context(), c.Param("id"), req.Title)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrSessionNotFound):
			response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, err.Error())
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "update session failed")
		}
		return
	}

	c.JSON(http.StatusOK, dto.NewSessionResponse(session, nil))
}

func (h *SessionsHandler) Delete(c *gin.Context) {
	if err := h.conversationService.DeleteSession(c.Request.Context(), c.Param("id")); err != nil {
		switch {
		case errors.Is(err, app.ErrSessionNotFound):
			response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, err.Error())
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete session failed")
		}
		return
	}

	c.Status(http.StatusNoContent)
}
