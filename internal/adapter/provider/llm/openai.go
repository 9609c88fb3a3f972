package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// OpenAICompatClient talks to any OpenAI-compatible /chat/completions
// endpoint (OpenAI, xAI, DashScope).
type OpenAICompatClient struct {
	provider   Provider
	baseURL    string
	apiKey     string
	opts       Options
	httpClient *http.Client
	log        *slog.Logger
}

// NewOpenAICompatClient creates a client for baseURL (without the
// /chat/completions suffix).
func NewOpenAICompatClient(provider Provider, baseURL, apiKey string, opts Options, timeout time.Duration, logger *slog.Logger) *OpenAICompatClient {
	return &OpenAICompatClient{
		provider:   provider,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		opts:       opts,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.With("adapter", string(provider)),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model           string        `json:"model"`
	Messages        []chatMessage `json:"messages"`
	Temperature     *float64      `json:"temperature,omitempty"`
	ReasoningEffort string        `json:"reasoning_effort,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Complete sends prompt as a single user message.
func (c *OpenAICompatClient) Complete(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model:    c.opts.Model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	}
	if supportsReasoningEffort(c.provider, c.opts.Model) {
		reqBody.ReasoningEffort = c.opts.ReasoningEffort
	}
	if !isOpenAIReasoningModel(c.opts.Model) {
		t := c.opts.Temperature
		reqBody.Temperature = &t
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("%s: marshal request: %w", c.provider, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%s: create request: %w", c.provider, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: request failed: %w", c.provider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%s: read body: %w", c.provider, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{Provider: c.provider, StatusCode: resp.StatusCode, Body: string(body)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%s: decode response: %w", c.provider, err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("%s: api error: %s", c.provider, parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%s: no completion returned", c.provider)
	}

	answer := strings.TrimSpace(parsed.Choices[0].Message.Content)
	c.log.DebugContext(ctx, "chat completion",
		slog.String("model", c.opts.Model),
		slog.Duration("duration", time.Since(start)),
		slog.Int("answer_len", len(answer)),
	)
	return answer, nil
}

// retryableHTTP accepts transport errors and retryable status codes.
func retryableHTTP(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return retryableStatus(se.StatusCode)
	}
	return isTransportError(err)
}
