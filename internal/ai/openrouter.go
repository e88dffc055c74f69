package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrUnavailable marks transport-level failures: the gateway could not be
	// reached, or the call timed out.
	ErrUnavailable = errors.New("upstream gateway unavailable")
	// ErrRejected marks calls that reached the gateway but came back unusable:
	// an error status, a malformed body, or an empty choice list.
	ErrRejected = errors.New("upstream gateway rejected request")
)

type Message struct {
	Role    string         `json:"role"`
	Content MessageContent `json:"content"`
}

type Model struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Description   string       `json:"description"`
	ContextLength int          `json:"context_length"`
	Pricing       Pricing      `json:"pricing"`
	Architecture  Architecture `json:"architecture"`
}

type Pricing struct {
	Prompt     string `json:"prompt"`
	Completion string `json:"completion"`
}

type Architecture struct {
	InputModalities []string `json:"input_modalities"`
	Modality        string   `json:"modality"`
}

type CompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature *float64  `json:"temperature,omitempty"`
}

type CompletionChoice struct {
	Message      ReplyMessage `json:"message"`
	FinishReason string       `json:"finish_reason"`
}

type ReplyMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type CompletionResponse struct {
	ID      string             `json:"id"`
	Model   string             `json:"model"`
	Choices []CompletionChoice `json:"choices"`
	Usage   *Usage             `json:"usage,omitempty"`
}

type ClientConfig struct {
	BaseURL       string
	APIKey        string
	ModelsTimeout time.Duration
	ChatTimeout   time.Duration
}

// OpenRouterClient talks to an OpenRouter-compatible gateway. The zero value
// is not usable; construct with NewOpenRouterClient.
type OpenRouterClient struct {
	cfg        ClientConfig
	httpClient *http.Client
}

func NewOpenRouterClient(cfg ClientConfig) *OpenRouterClient {
	if cfg.ModelsTimeout <= 0 {
		cfg.ModelsTimeout = 30 * time.Second
	}
	if cfg.ChatTimeout <= 0 {
		cfg.ChatTimeout = 60 * time.Second
	}
	return &OpenRouterClient{
		cfg:        cfg,
		httpClient: &http.Client{},
	}
}

func (c *OpenRouterClient) ListModels(ctx context.Context) ([]Model, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.ModelsTimeout)
	defer cancel()

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/models"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build models request failed: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read models response: %v", ErrUnavailable, err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: models status %d: %s", ErrRejected, resp.StatusCode, truncateBody(raw))
	}

	var parsed struct {
		Data []Model `json:"data"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: parse models response: %v", ErrRejected, err)
	}
	return parsed.Data, nil
}

func (c *OpenRouterClient) Complete(ctx context.Context, request CompletionRequest) (*CompletionResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.ChatTimeout)
	defer cancel()

	bodyBytes, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("marshal completion request failed: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("build completion request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read completion response: %v", ErrUnavailable, err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: completion status %d: %s", ErrRejected, resp.StatusCode, truncateBody(raw))
	}

	var parsed CompletionResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: parse completion response: %v", ErrRejected, err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty choice list", ErrRejected)
	}
	return &parsed, nil
}

func truncateBody(raw []byte) string {
	const maxLen = 512
	body := strings.TrimSpace(string(raw))
	if len(body) > maxLen {
		return body[:maxLen] + "..."
	}
	return body
}
