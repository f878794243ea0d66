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

var ErrLLMUnavailable = errors.New("llm client unavailable")

type TokenUsage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// CompletionRequest is one synchronous model call. Instructions carry the
// system-level framing, Prompt the stage's assembled input.
type CompletionRequest struct {
	Model           string
	Instructions    string
	Prompt          string
	Temperature     float64
	MaxOutputTokens int
}

type Completion struct {
	Text    string
	ModelID string
	Usage   TokenUsage
}

// TextCompleter is the language-model collaborator contract consumed by
// the live stage executor.
type TextCompleter interface {
	Complete(ctx context.Context, request CompletionRequest) (Completion, error)
	Available() bool
}

type ClientConfig struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	HTTPClient *http.Client
}

// Client talks to an OpenAI-compatible responses API.
type Client struct {
	apiKey     string
	baseURL    string
	timeout    time.Duration
	maxRetries int
	httpClient *http.Client
}

func NewClient(config ClientConfig) *Client {
	if strings.TrimSpace(config.BaseURL) == "" {
		config.BaseURL = "https://api.openai.com/v1"
	}
	if config.Timeout <= 0 {
		config.Timeout = 60 * time.Second
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = 2
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{}
	}
	return &Client{
		apiKey:     strings.TrimSpace(config.APIKey),
		baseURL:    strings.TrimSuffix(config.BaseURL, "/"),
		timeout:    config.Timeout,
		maxRetries: config.MaxRetries,
		httpClient: config.HTTPClient,
	}
}

func (c *Client) Available() bool {
	return c.apiKey != ""
}

func (c *Client) Complete(ctx context.Context, request CompletionRequest) (Completion, error) {
	if !c.Available() {
		return Completion{}, ErrLLMUnavailable
	}
	if strings.TrimSpace(request.Model) == "" {
		return Completion{}, errors.New("model is required")
	}
	if strings.TrimSpace(request.Prompt) == "" {
		return Completion{}, errors.New("prompt is required")
	}

	payload, err := json.Marshal(map[string]any{
		"model":             request.Model,
		"input":             request.Prompt,
		"instructions":      request.Instructions,
		"temperature":       request.Temperature,
		"max_output_tokens": request.MaxOutputTokens,
	})
	if err != nil {
		return Completion{}, fmt.Errorf("marshal llm payload: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		completion, callErr := c.call(ctx, payload, request.Model)
		if callErr == nil {
			return completion, nil
		}
		lastErr = callErr

		if !isRetryable(callErr) || attempt == c.maxRetries {
			break
		}

		backoff := time.Duration(350*(attempt+1)) * time.Millisecond
		select {
		case <-ctx.Done():
			return Completion{}, ctx.Err()
		case <-time.After(backoff):
		}
	}

	if lastErr == nil {
		lastErr = errors.New("unknown llm error")
	}
	return Completion{}, lastErr
}

func (c *Client) call(ctx context.Context, payload []byte, requestedModel string) (Completion, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	request, err := http.NewRequestWithContext(timeoutCtx, http.MethodPost, c.baseURL+"/responses", bytes.NewReader(payload))
	if err != nil {
		return Completion{}, fmt.Errorf("create llm request: %w", err)
	}
	request.Header.Set("Authorization", "Bearer "+c.apiKey)
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(timeoutCtx.Err(), context.DeadlineExceeded) {
			return Completion{}, fmt.Errorf("llm timeout: %w", err)
		}
		return Completion{}, fmt.Errorf("llm transport error: %w", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return Completion{}, fmt.Errorf("read llm body: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		message := strings.TrimSpace(string(body))
		if len(message) > 700 {
			message = message[:700]
		}
		return Completion{}, &httpError{StatusCode: response.StatusCode, Message: message}
	}

	var raw responsesPayload
	if err := json.Unmarshal(body, &raw); err != nil {
		return Completion{}, fmt.Errorf("decode llm response: %w", err)
	}

	text := raw.text()
	if text == "" {
		return Completion{}, errors.New("llm response without text output")
	}

	modelID := strings.TrimSpace(raw.Model)
	if modelID == "" {
		modelID = requestedModel
	}
	return Completion{
		Text:    text,
		ModelID: modelID,
		Usage: TokenUsage{
			InputTokens:  raw.Usage.InputTokens,
			OutputTokens: raw.Usage.OutputTokens,
			TotalTokens:  raw.Usage.TotalTokens,
		},
	}, nil
}

type responsesPayload struct {
	Model  string `json:"model"`
	Output []struct {
		Type    string `json:"type"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
	OutputText string `json:"output_text"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

func (p responsesPayload) text() string {
	if trimmed := strings.TrimSpace(p.OutputText); trimmed != "" {
		return trimmed
	}
	fragments := make([]string, 0)
	for _, output := range p.Output {
		for _, content := range output.Content {
			if content.Type != "output_text" && content.Type != "text" {
				continue
			}
			if trimmed := strings.TrimSpace(content.Text); trimmed != "" {
				fragments = append(fragments, trimmed)
			}
		}
	}
	return strings.TrimSpace(strings.Join(fragments, "\n"))
}

type httpError struct {
	StatusCode int
	Message    string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("llm status %d: %s", e.StatusCode, e.Message)
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	var callErr *httpError
	if errors.As(err, &callErr) {
		return callErr.StatusCode == http.StatusTooManyRequests || callErr.StatusCode >= 500
	}
	return strings.Contains(strings.ToLower(err.Error()), "timeout")
}
