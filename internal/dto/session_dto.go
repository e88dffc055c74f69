package dto

import (
	"time"

	"chatrelay/internal/model"
)

// Client-facing shapes. Storage rows keep snake_case fields (image_url,
// created_at); messages cross the API boundary re-cased to imageUrl and
// createdAt, which is the shape the chat window consumes.

type MessageResponse struct {
	ID        string                 `json:"id"`
	Role      string                 `json:"role"`
	Content   string                 `json:"content"`
	ImageURL  string                 `json:"imageUrl,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type SessionResponse struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	ModelID   string            `json:"model_id"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	Messages  []MessageResponse `json:"messages"`
}

type SessionSummaryResponse struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	ModelID      string    `json:"model_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int64     `json:"message_count"`
}

func NewMessageResponse(message model.Message) MessageResponse {
	return MessageResponse{
		ID:        message.ID,
		Role:      message.Role,
		Content:   message.Content,
		ImageURL:  message.ImageURL,
		CreatedAt: message.CreatedAt,
		Metadata:  map[string]interface{}(message.Metadata),
	}
}

func NewSessionResponse(session *model.Session, messages []model.Message) SessionResponse {
	responses := make([]MessageResponse, 0, len(messages))
	for _, message := range messages {
		responses = append(responses, NewMessageResponse(message))
	}
	return SessionResponse{
		ID:        session.ID,
		Title:     session.Title,
		ModelID:   session.ModelID,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
		Messages:  responses,
	}
}

func NewSessionSummaryResponse(summary model.SessionSummary) SessionSummaryResponse {
	return SessionSummaryResponse{
		ID:           summary.ID,
		Title:        summary.Title,
		ModelID:      summary.ModelID,
		CreatedAt:    summary.CreatedAt,
		UpdatedAt:    summary.UpdatedAt,
		MessageCount: summary.MessageCount,
	}
}
