package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"chatrelay/internal/model"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, session *model.Session) error {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("create session failed: %w", err)
	}
	return nil
}

func (r *SessionRepository) GetByID(ctx context.Context, id string) (*model.Session, error) {
	var session model.Session
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session failed: %w", err)
	}
	return &session, nil
}

func (r *SessionRepository) ListSummaries(ctx context.Context) ([]model.SessionSummary, error) {
	var summaries []model.SessionSummary
	err := r.db.WithContext(ctx).
		Model(&model.Session{}).
		Select("sessions.*, (SELECT COUNT(*) FROM messages WHERE messages.session_id = sessions.id) AS message_count").
		Order("updated_at DESC").
		Find(&summaries).Error
	if err != nil {
		return nil, fmt.Errorf("list sessions failed: %w", err)
	}
	return summaries, nil
}

func (r *SessionRepository) Update(ctx context.Context, session *model.Session) error {
	if err := r.db.WithContext(ctx).Save(session).Error; err != nil {
		return fmt.Errorf("update session failed: %w", err)
	}
	return nil
}

func (r *SessionRepository) TouchUpdatedAt(ctx context.Context, id string, at time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("id = ?", id).
		UpdateColumn("updated_at", at).Error
	if err != nil {
		return fmt.Errorf("touch session failed: %w", err)
	}
	return nil
}

// Delete removes the session and every message it owns inside one
// transaction, so a partial cascade is never observable.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", id).Delete(&model.Message{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.Session{}).Error
	})
	if err != nil {
		return fmt.Errorf("delete session failed: %w", err)
	}
	return nil
}
