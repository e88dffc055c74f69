package model

import "time"

type Session struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Title     string    `gorm:"size:128;not null" json:"title"`
	ModelID   string    `gorm:"size:128;not null" json:"model_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SessionSummary is the list view of a session: the row itself plus how many
// messages it holds, without loading the message bodies.
type SessionSummary struct {
	Session
	MessageCount int64 `json:"message_count"`
}
