package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"chatrelay/internal/ai"
	"chatrelay/internal/model"
)

// fakeStore backs both repository interfaces with in-memory maps so service
// tests exercise the real lifecycle rules without a database.
type fakeStore struct {
	mu       sync.Mutex
	sessions map[string]model.Session
	messages map[string][]model.Message

	createSessionErr error
	createMessageErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		sessions: make(map[string]model.Session),
		messages: make(map[string][]model.Message),
	}
}

func (f *fakeStore) Create(ctx context.Context, session *model.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createSessionErr != nil {
		return f.createSessionErr
	}
	f.sessions[session.ID] = *session
	return nil
}

func (f *fakeStore) GetByID(ctx context.Context, id string) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[id]
	if !ok {
		return nil, nil
	}
	copied := session
	return &copied, nil
}

func (f *fakeStore) ListSummaries(ctx context.Context) ([]model.SessionSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	summaries := make([]model.SessionSummary, 0, len(f.sessions))
	for id, session := range f.sessions {
		summaries = append(summaries, model.SessionSummary{
			Session:      session,
			MessageCount: int64(len(f.messages[id])),
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})
	return summaries, nil
}

func (f *fakeStore) Update(ctx context.Context, session *model.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[session.ID] = *session
	return nil
}

func (f *fakeStore) TouchUpdatedAt(ctx context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[id]
	if !ok {
		return nil
	}
	session.UpdatedAt = at
	f.sessions[id] = session
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.messages, id)
	delete(f.sessions, id)
	return nil
}

func (f *fakeStore) CreateMessage(ctx context.Context, message *model.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createMessageErr != nil {
		return f.createMessageErr
	}
	f.messages[message.SessionID] = append(f.messages[message.SessionID], *message)
	return nil
}

func (f *fakeStore) ListBySessionID(ctx context.Context, sessionID string) ([]model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Message(nil), f.messages[sessionID]...), nil
}

// messageRepoAdapter exposes the fakeStore under the MessageRepository method
// set, whose Create collides with SessionRepository's.
type messageRepoAdapter struct{ store *fakeStore }

func (a messageRepoAdapter) Create(ctx context.Context, message *model.Message) error {
	return a.store.CreateMessage(ctx, message)
}

func (a messageRepoAdapter) ListBySessionID(ctx context.Context, sessionID string) ([]model.Message, error) {
	return a.store.ListBySessionID(ctx, sessionID)
}

func newTestConversationService(store *fakeStore) *ConversationService {
	return NewConversationService(store, messageRepoAdapter{store}, nil)
}

type fakeGateway struct {
	response *ai.CompletionResponse
	err      error
	requests []ai.CompletionRequest
}

func (f *fakeGateway) Complete(ctx context.Context, request ai.CompletionRequest) (*ai.CompletionResponse, error) {
	f.requests = append(f.requests, request)
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

type fakeLister struct {
	models []ai.Model
	err    error
}

func (f *fakeLister) ListModels(ctx context.Context) ([]ai.Model, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.models, nil
}

type fakePublisher struct {
	events []model.ChatEvent
	err    error
}

func (f *fakePublisher) Publish(ctx context.Context, event model.ChatEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func textReply(content string) *ai.CompletionResponse {
	return &ai.CompletionResponse{
		ID:    "gen-test",
		Model: "test/model",
		Choices: []ai.CompletionChoice{
			{Message: ai.ReplyMessage{Role: "assistant", Content: content}, FinishReason: "stop"},
		},
		Usage: &ai.Usage{PromptTokens: 12, CompletionTokens: 7, TotalTokens: 19},
	}
}
