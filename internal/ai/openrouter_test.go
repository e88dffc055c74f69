package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *OpenRouterClient {
	return NewOpenRouterClient(ClientConfig{
		BaseURL:       baseURL,
		APIKey:        "test-key",
		ModelsTimeout: 2 * time.Second,
		ChatTimeout:   2 * time.Second,
	})
}

func TestListModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[
			{"id":"a/free","name":"Free A","description":"d","context_length":8192,
			 "pricing":{"prompt":"0","completion":"0"},
			 "architecture":{"input_modalities":["text","image"]}},
			{"id":"b/paid","name":"Paid B","pricing":{"prompt":"0.001","completion":"0"}}
		]}`))
	}))
	defer server.Close()

	models, err := newTestClient(server.URL).ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "a/free", models[0].ID)
	assert.Equal(t, []string{"text", "image"}, models[0].Architecture.InputModalities)
	assert.Equal(t, "0.001", models[1].Pricing.Prompt)
}

func TestListModelsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).ListModels(context.Background())
	assert.ErrorIs(t, err, ErrRejected)
}

func TestListModelsUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := newTestClient(server.URL).ListModels(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"gen-1","model":"a/free",
			"choices":[{"message":{"role":"assistant","content":"hello"},"finish_reason":"stop"}],
			"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`))
	}))
	defer server.Close()

	resp, err := newTestClient(server.URL).Complete(context.Background(), CompletionRequest{
		Model:    "a/free",
		Messages: []Message{{Role: "user", Content: TextContent("hi")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "gen-1", resp.ID)
	require.Len(t, resp.Choices, 1)
	assert.Equal(t, "hello", resp.Choices[0].Message.Content)
	require.NotNil(t, resp.Usage)
	assert.Equal(t, 5, resp.Usage.CompletionTokens)
}

func TestCompleteEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"gen-2","model":"a/free","choices":[]}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Complete(context.Background(), CompletionRequest{
		Model:    "a/free",
		Messages: []Message{{Role: "user", Content: TextContent("hi")}},
	})
	assert.ErrorIs(t, err, ErrRejected)
}

func TestCompleteTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewOpenRouterClient(ClientConfig{
		BaseURL:     server.URL,
		APIKey:      "test-key",
		ChatTimeout: 20 * time.Millisecond,
	})
	_, err := client.Complete(context.Background(), CompletionRequest{
		Model:    "a/free",
		Messages: []Message{{Role: "user", Content: TextContent("hi")}},
	})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestCompleteMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Complete(context.Background(), CompletionRequest{
		Model:    "a/free",
		Messages: []Message{{Role: "user", Content: TextContent("hi")}},
	})
	assert.ErrorIs(t, err, ErrRejected)
}
