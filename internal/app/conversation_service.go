package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"

	"chatrelay/internal/model"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrSessionNotFound = errors.New("session not found")
	ErrMessageEmpty    = errors.New("message content is empty")
)

const DefaultSessionTitle = "New Chat"

type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) error
	GetByID(ctx context.Context, id string) (*model.Session, error)
	ListSummaries(ctx context.Context) ([]model.SessionSummary, error)
	Update(ctx context.Context, session *model.Session) error
	TouchUpdatedAt(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

type MessageRepository interface {
	Create(ctx context.Context, message *model.Message) error
	ListBySessionID(ctx context.Context, sessionID string) ([]model.Message, error)
}

type HistoryCache interface {
	GetHistory(ctx context.Context, sessionID string) ([]model.Message, bool, error)
	SetHistory(ctx context.Context, sessionID string, messages []model.Message) error
	DeleteHistory(ctx context.Context, sessionID string) error
	MarkDirty(ctx context.Context, sessionID string) error
	IsDirty(ctx context.Context, sessionID string) (bool, error)
}

// ConversationService owns the session/message lifecycle: no message may
// reference a missing session, and deleting a session never leaves messages
// behind.
type ConversationService struct {
	sessionRepo  SessionRepository
	messageRepo  MessageRepository
	historyCache HistoryCache
	tracer       trace.Tracer
}

func NewConversationService(
	sessionRepo SessionRepository,
	messageRepo MessageRepository,
	historyCache HistoryCache,
) *ConversationService {
	return &ConversationService{
		sessionRepo:  sessionRepo,
		messageRepo:  messageRepo,
		historyCache: historyCache,
		tracer:       otel.Tracer("chatrelay/app"),
	}
}

func (s *ConversationService) CreateSession(ctx context.Context, modelID, title string) (*model.Session, error) {
	ctx, span := s.tracer.Start(ctx, "session.create")
	defer span.End()

	modelID = strings.TrimSpace(modelID)
	if modelID == "" {
		return nil, ErrInvalidInput
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultSessionTitle
	}

	now := time.Now().UTC()
	session := &model.Session{
		ID:        uuid.NewString(),
		Title:     title,
		ModelID:   modelID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.String("session_id", session.ID))
	return session, nil
}

// GetSession loads the session and its messages in append order.
func (s *ConversationService) GetSession(ctx context.Context, id string) (*model.Session, []model.Message, error) {
	ctx, span := s.tracer.Start(ctx, "session.get",
		trace.WithAttributes(attribute.String("session_id", id)))
	defer span.End()

	if id == "" {
		return nil, nil, ErrInvalidInput
	}
	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		recordSpanError(span, err)
		return nil, nil, err
	}
	if session == nil {
		return nil, nil, ErrSessionNotFound
	}

	if s.historyCache != nil {
		if dirty, dirtyErr := s.historyCache.IsDirty(ctx, id); dirtyErr == nil && !dirty {
			if cached, hit, cacheErr := s.historyCache.GetHistory(ctx, id); cacheErr == nil && hit {
				span.SetAttributes(attribute.Bool("history_cache_hit", true))
				return session, cached, nil
			}
		}
	}

	messages, err := s.messageRepo.ListBySessionID(ctx, id)
	if err != nil {
		recordSpanError(span, err)
		return nil, nil, err
	}
	if s.historyCache != nil {
		if dirty, dirtyErr := s.historyCache.IsDirty(ctx, id); dirtyErr == nil && !dirty {
			_ = s.historyCache.SetHistory(ctx, id, messages)
		}
	}
	return session, messages, nil
}

func (s *ConversationService) ListSessions(ctx context.Context) ([]model.SessionSummary, error) {
	ctx, span := s.tracer.Start(ctx, "session.list")
	defer span.End()

	summaries, err := s.sessionRepo.ListSummaries(ctx)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	return summaries, nil
}

func (s *ConversationService) UpdateTitle(ctx context.Context, id, title string) (*model.Session, error) {
	ctx, span := s.tracer.Start(ctx, "session.update_title",
		trace.WithAttributes(attribute.String("session_id", id)))
	defer span.End()

	title = strings.TrimSpace(title)
	if id == "" || title == "" {
		return nil, ErrInvalidInput
	}
	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	session.Title = title
	session.UpdatedAt = time.Now().UTC()
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	return session, nil
}

func (s *ConversationService) DeleteSession(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "session.delete",
		trace.WithAttributes(attribute.String("session_id", id)))
	defer span.End()

	if id == "" {
		return ErrInvalidInput
	}
	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		recordSpanError(span, err)
		return err
	}
	if session == nil {
		return ErrSessionNotFound
	}
	if err := s.sessionRepo.Delete(ctx, id); err != nil {
		recordSpanError(span, err)
		return err
	}
	if s.historyCache != nil {
		_ = s.historyCache.DeleteHistory(ctx, id)
	}
	return nil
}

type AppendMessageInput struct {
	SessionID string
	Role      string
	Content   string
	ImageURL  string
	Metadata  map[string]interface{}
}

// AppendMessage stores one message and bumps the session's updated_at as part
// of the same logical operation.
func (s *ConversationService) AppendMessage(ctx context.Context, input AppendMessageInput) (*model.Message, error) {
	ctx, span := s.tracer.Start(ctx, "session.append_message",
		trace.WithAttributes(
			attribute.String("session_id", input.SessionID),
			attribute.String("role", input.Role),
		))
	defer span.End()

	if input.SessionID == "" || !model.ValidRole(input.Role) {
		return nil, ErrInvalidInput
	}
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, ErrMessageEmpty
	}

	session, err := s.sessionRepo.GetByID(ctx, input.SessionID)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if s.historyCache != nil {
		_ = s.historyCache.MarkDirty(ctx, input.SessionID)
		_ = s.historyCache.DeleteHistory(ctx, input.SessionID)
	}

	now := time.Now().UTC()
	message := &model.Message{
		ID:        uuid.NewString(),
		SessionID: input.SessionID,
		Role:      input.Role,
		Content:   content,
		ImageURL:  input.ImageURL,
		CreatedAt: now,
		Metadata:  datatypes.JSONMap(input.Metadata),
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	if err := s.sessionRepo.TouchUpdatedAt(ctx, input.SessionID, now); err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	return message, nil
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
