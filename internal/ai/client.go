// Package ai provides the text-completion collaborator used by the quote
// conversation to extract structured fields from free-form replies.
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

	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the OpenRouter API root.
	DefaultBaseURL = "https://openrouter.ai/api/v1"

	// DefaultModel is used when no model is configured.
	DefaultModel = "anthropic/claude-3.5-haiku"

	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 2
	defaultRetryDelay = 500 * time.Millisecond
	maxRetryDelay     = 8 * time.Second

	// maxResponseSize bounds how much of a response body is read.
	maxResponseSize = 2 * 1024 * 1024
)

var (
	// ErrNotConfigured indicates the API key is not set.
	ErrNotConfigured = errors.New("completion API key not configured")

	// ErrAuthFailed indicates the API key was rejected.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrRateLimited indicates the provider kept returning 429 after retries.
	ErrRateLimited = errors.New("rate limited")

	// ErrEmptyResponse indicates the provider returned no choices.
	ErrEmptyResponse = errors.New("empty completion response")
)

// APIError is a non-retryable error returned by the provider.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("completion API error [%s] (HTTP %d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("completion API error (HTTP %d): %s", e.Status, e.Message)
}

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SystemMessage creates a system message.
func SystemMessage(content string) Message { return Message{Role: "system", Content: content} }

// UserMessage creates a user message.
func UserMessage(content string) Message { return Message{Role: "user", Content: content} }

// Completer turns a conversation into a single assistant reply.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

type apiErrorResponse struct {
	Error struct {
		Code    json.RawMessage `json:"code"`
		Message string          `json:"message"`
	} `json:"error"`
}

// OpenRouterClient is a Completer backed by the OpenRouter chat completions API.
type OpenRouterClient struct {
	apiKey     string
	baseURL    string
	model      string
	maxRetries int
	retryDelay time.Duration
	httpClient *http.Client
	logger     *zap.Logger
}

// NewOpenRouterClient creates a client. An empty key yields a client whose
// calls fail with ErrNotConfigured.
func NewOpenRouterClient(apiKey string, logger *zap.Logger) *OpenRouterClient {
	return &OpenRouterClient{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    DefaultBaseURL,
		model:      DefaultModel,
		maxRetries: defaultMaxRetries,
		retryDelay: defaultRetryDelay,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger,
	}
}

// WithBaseURL sets a custom API root.
func (c *OpenRouterClient) WithBaseURL(url string) *OpenRouterClient {
	if url != "" {
		c.baseURL = strings.TrimSuffix(url, "/")
	}
	return c
}

// WithModel sets the model identifier.
func (c *OpenRouterClient) WithModel(model string) *OpenRouterClient {
	if model != "" {
		c.model = model
	}
	return c
}

// WithMaxRetries sets how many times 429 and 5xx responses are retried.
func (c *OpenRouterClient) WithMaxRetries(n int) *OpenRouterClient {
	c.maxRetries = n
	return c
}

// WithRetryDelay sets the base backoff delay.
func (c *OpenRouterClient) WithRetryDelay(d time.Duration) *OpenRouterClient {
	c.retryDelay = d
	return c
}

// Complete sends messages and returns the first choice's content.
func (c *OpenRouterClient) Complete(ctx context.Context, messages []Message) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: 0,
		MaxTokens:   512,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode completion request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := c.wait(ctx, attempt); err != nil {
				return "", err
			}
		}

		content, retry, err := c.do(ctx, body)
		if err == nil {
			return content, nil
		}
		lastErr = err
		if !retry {
			return "", err
		}
		c.logger.Warn("Completion request failed, retrying",
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}
	return "", lastErr
}

func (c *OpenRouterClient) do(ctx context.Context, body []byte) (content string, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", false, fmt.Errorf("failed to create completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("X-Title", "paintquote")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", false, ctx.Err()
		}
		return "", true, fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", true, fmt.Errorf("failed to read completion response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		var parsed chatResponse
		if err := json.Unmarshal(data, &parsed); err != nil {
			return "", false, fmt.Errorf("failed to decode completion response: %w", err)
		}
		if len(parsed.Choices) == 0 {
			return "", false, ErrEmptyResponse
		}
		return parsed.Choices[0].Message.Content, false, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", false, ErrAuthFailed
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", true, ErrRateLimited
	case resp.StatusCode >= 500:
		return "", true, parseAPIError(resp.StatusCode, data)
	default:
		return "", false, parseAPIError(resp.StatusCode, data)
	}
}

func (c *OpenRouterClient) wait(ctx context.Context, attempt int) error {
	delay := c.retryDelay << (attempt - 1)
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func parseAPIError(status int, data []byte) error {
	apiErr := &APIError{Status: status, Message: http.StatusText(status)}
	var parsed apiErrorResponse
	if err := json.Unmarshal(data, &parsed); err == nil && parsed.Error.Message != "" {
		apiErr.Message = parsed.Error.Message
		apiErr.Code = strings.Trim(string(parsed.Error.Code), `"`)
	}
	return apiErr
}
