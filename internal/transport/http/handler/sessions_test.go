package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatrelay/internal/app"
	"chatrelay/internal/model"
	"chatrelay/internal/transport/http/response"
)

type memorySessionRepo struct {
	sessions map[string]model.Session
}

func (r *memorySessionRepo) Create(ctx context.Context, session *model.Session) error {
	r.sessions[session.ID] = *session
	return nil
}

func (r *memorySessionRepo) GetByID(ctx context.Context, id string) (*model.Session, error) {
	session, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	copied := session
	return &copied, nil
}

func (r *memorySessionRepo) ListSummaries(ctx context.Context) ([]model.SessionSummary, error) {
	summaries := make([]model.SessionSummary, 0, len(r.sessions))
	for _, session := range r.sessions {
		summaries = append(summaries, model.SessionSummary{Session: session})
	}
	return summaries, nil
}

func (r *memorySessionRepo) Update(ctx context.Context, session *model.Session) error {
	r.sessions[session.ID] = *session
	return nil
}

func (r *memorySessionRepo) TouchUpdatedAt(ctx context.Context, id string, at time.Time) error {
	return nil
}

func (r *memorySessionRepo) Delete(ctx context.Context, id string) error {
	delete(r.sessions, id)
	return nil
}

type memoryMessageRepo struct{}

func (memoryMessageRepo) Create(ctx context.Context, message *model.Message) error { return nil }
func (memoryMessageRepo) ListBySessionID(ctx context.Context, sessionID string) ([]model.Message, error) {
	return nil, nil
}

func newSessionsRouter() (*gin.Engine, *memorySessionRepo) {
	gin.SetMode(gin.TestMode)
	repo := &memorySessionRepo{sessions: make(map[string]model.Session)}
	service := app.NewConversationService(repo, memoryMessageRepo{}, nil)
	h := NewSessionsHandler(service)

	router := gin.New()
	group := router.Group("/sessions")
	{
		group.GET("/", h.List)
		group.POST("/", h.Create)
		group.GET("/:id", h.Get)
		group.PATCH("/:id", h.UpdateTitle)
		group.DELETE("/:id", h.Delete)
	}
	return router, repo
}

func TestSessionsCreateAndGet(t *testing.T) {
	router, _ := newSessionsRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sessions/",
		strings.NewReader(`{"model_id":"meta/free-chat","title":"My Chat"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "My Chat", created["title"])

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sessions/"+id, nil))
	require.Equal(t, http.StatusOK, w.Code)

	var fetched map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	assert.Equal(t, id, fetched["id"])
	assert.Equal(t, []interface{}{}, fetched["messages"])
}

func TestSessionsCreateRejectsMissingModel(t *testing.T) {
	router, _ := newSessionsRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sessions/", strings.NewReader(`{"title":"no model"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body response.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, response.CodeBadRequest, body.Code)
}

func TestSessionsGetUnknownReturns404(t *testing.T) {
	router, _ := newSessionsRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sessions/missing-id", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	var body response.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, response.CodeSessionNotFound, body.Code)
}

func TestSessionsDelete(t *testing.T) {
	router, repo := newSessionsRouter()
	repo.sessions["doomed"] = model.Session{ID: "doomed", Title: "Doomed", ModelID: "meta/free-chat"}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/sessions/doomed", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.Bytes())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/sessions/doomed", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionsUpdateTitleValidation(t *testing.T) {
	router, repo := newSessionsRouter()
	repo.sessions["s1"] = model.Session{ID: "s1", Title: "Old", ModelID: "meta/free-chat"}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/sessions/s1", strings.NewReader(`{"title":""}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPatch, "/sessions/s1", strings.NewReader(`{"title":"Renamed"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var updated map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "Renamed", updated["title"])
}
