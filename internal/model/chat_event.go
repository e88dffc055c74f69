package model

import "time"

// ChatEvent is a usage-accounting record written asynchronously by the event
// worker, one row per completed chat exchange.
type ChatEvent struct {
	ID               string    `gorm:"primaryKey;size:36" json:"id"`
	Type             string    `gorm:"size:64;not null" json:"type"`
	SessionID        string    `gorm:"size:36;index" json:"session_id"`
	ModelID          string    `gorm:"size:128;not null" json:"model_id"`
	PromptTokens     int       `json:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens"`
	CreatedAt        time.Time `json:"created_at"`
}

const EventChatCompleted = "chat.completed"
