package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"chatrelay/internal/model"
)

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(ctx context.Context, event *model.ChatEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("create chat event failed: %w", err)
	}
	return nil
}
