package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

type Message struct {
	ID        string            `gorm:"primaryKey;size:36" json:"id"`
	SessionID string            `gorm:"size:36;not null;index" json:"session_id"`
	Role      string            `gorm:"size:16;not null" json:"role"`
	Content   string            `gorm:"type:text;not null" json:"content"`
	ImageURL  string            `gorm:"type:longtext" json:"image_url,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	Metadata  datatypes.JSONMap `json:"metadata,omitempty"`
}

func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}
