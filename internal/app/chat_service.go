package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"chatrelay/internal/ai"
	"chatrelay/internal/model"
)

const emptyReplyFallback = "The model returned an empty response."

type CompletionGateway interface {
	Complete(ctx context.Context, request ai.CompletionRequest) (*ai.CompletionResponse, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event model.ChatEvent) error
}

type ChatDefaults struct {
	MaxTokens   int
	Temperature float64
}

// ChatService runs the chat turn pipeline: resolve the session, assemble the
// outgoing message list from stored history plus the new turn, call the
// gateway, and persist both sides of the exchange.
type ChatService struct {
	conversations *ConversationService
	gateway       CompletionGateway
	publisher     EventPublisher
	defaults      ChatDefaults
	tracer        trace.Tracer
}

func NewChatService(
	conversations *ConversationService,
	gateway CompletionGateway,
	publisher EventPublisher,
	defaults ChatDefaults,
) *ChatService {
	if defaults.MaxTokens <= 0 {
		defaults.MaxTokens = 1000
	}
	return &ChatService{
		conversations: conversations,
		gateway:       gateway,
		publisher:     publisher,
		defaults:      defaults,
		tracer:        otel.Tracer("chatrelay/app"),
	}
}

type SendTurnInput struct {
	Model       string
	SessionID   string
	Messages    []ai.Message
	MaxTokens   int
	Temperature *float64
}

// SendTurn completes one chat exchange. With a session id the last inbound
// message is the new user turn: stored history plus that turn go upstream,
// and both the turn and the reply are persisted. Without a session id the
// inbound messages go upstream as-is and nothing is persisted.
//
// The user turn is stored before the gateway call, so history reflects what
// was sent even when the gateway call fails afterwards.
func (s *ChatService) SendTurn(ctx context.Context, input SendTurnInput) (*ai.CompletionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "chat.send_turn",
		trace.WithAttributes(
			attribute.String("model", input.Model),
			attribute.Int("message_count", len(input.Messages)),
		))
	defer span.End()

	modelID := strings.TrimSpace(input.Model)
	if modelID == "" || len(input.Messages) == 0 {
		return nil, ErrInvalidInput
	}
	for _, msg := range input.Messages {
		if !model.ValidRole(msg.Role) {
			return nil, ErrInvalidInput
		}
	}

	outgoing := input.Messages
	if input.SessionID != "" {
		span.SetAttributes(attribute.String("session_id", input.SessionID))

		newTurn := input.Messages[len(input.Messages)-1]
		if newTurn.Role != model.RoleUser {
			return nil, ErrInvalidInput
		}
		if strings.TrimSpace(newTurn.Content.Text) == "" {
			return nil, ErrMessageEmpty
		}

		_, history, err := s.conversations.GetSession(ctx, input.SessionID)
		if err != nil {
			recordSpanError(span, err)
			return nil, err
		}

		// Prior turns always go upstream as plain text; only the newly
		// arriving turn may carry an image.
		outgoing = make([]ai.Message, 0, len(history)+1)
		for _, item := range history {
			outgoing = append(outgoing, ai.Message{
				Role:    item.Role,
				Content: ai.TextContent(item.Content),
			})
		}
		outgoing = append(outgoing, newTurn)

		if _, err := s.conversations.AppendMessage(ctx, AppendMessageInput{
			SessionID: input.SessionID,
			Role:      model.RoleUser,
			Content:   newTurn.Content.Text,
			ImageURL:  newTurn.Content.ImageURL,
			Metadata:  map[string]interface{}{"model": modelID},
		}); err != nil {
			recordSpanError(span, err)
			return nil, err
		}
	}

	maxTokens := input.MaxTokens
	if maxTokens <= 0 {
		maxTokens = s.defaults.MaxTokens
	}
	temperature := input.Temperature
	if temperature == nil {
		t := s.defaults.Temperature
		temperature = &t
	}

	response, err := s.gateway.Complete(ctx, ai.CompletionRequest{
		Model:       modelID,
		Messages:    outgoing,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	if len(response.Choices) == 0 {
		err := fmt.Errorf("%w: empty choice list", ai.ErrRejected)
		recordSpanError(span, err)
		return nil, err
	}

	if input.SessionID != "" {
		replyContent := strings.TrimSpace(response.Choices[0].Message.Content)
		if replyContent == "" {
			replyContent = emptyReplyFallback
		}
		metadata := map[string]interface{}{"model": modelID}
		if response.Usage != nil {
			metadata["usage"] = map[string]interface{}{
				"prompt_tokens":     response.Usage.PromptTokens,
				"completion_tokens": response.Usage.CompletionTokens,
				"total_tokens":      response.Usage.TotalTokens,
			}
		}
		if _, err := s.conversations.AppendMessage(ctx, AppendMessageInput{
			SessionID: input.SessionID,
			Role:      model.RoleAssistant,
			Content:   replyContent,
			Metadata:  metadata,
		}); err != nil {
			recordSpanError(span, err)
			return nil, err
		}
	}

	s.publishUsage(ctx, input.SessionID, modelID, response.Usage)

	if response.Usage != nil {
		span.SetAttributes(attribute.Int("completion_tokens", response.Usage.CompletionTokens))
	}
	return response, nil
}

// publishUsage is fire-and-forget: a broker outage must never fail a turn
// that already completed.
func (s *ChatService) publishUsage(ctx context.Context, sessionID, modelID string, usage *ai.Usage) {
	if s.publisher == nil {
		return
	}
	event := model.ChatEvent{
		ID:        uuid.NewString(),
		Type:      model.EventChatCompleted,
		SessionID: sessionID,
		ModelID:   modelID,
		CreatedAt: time.Now().UTC(),
	}
	if usage != nil {
		event.PromptTokens = usage.PromptTokens
		event.CompletionTokens = usage.CompletionTokens
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Printf("publish usage event failed: %v", err)
	}
}
