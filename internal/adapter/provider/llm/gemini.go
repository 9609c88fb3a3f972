package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

// GeminiClient calls the Gemini API through the genai SDK.
type GeminiClient struct {
	client *genai.Client
	opts   Options
}

// NewGeminiClient creates a Gemini client. baseURL may be empty.
func NewGeminiClient(ctx context.Context, apiKey, baseURL string, opts Options, timeout time.Duration) (*GeminiClient, error) {
	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeout},
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &GeminiClient{client: client, opts: opts}, nil
}

// Complete sends prompt as a single user turn.
func (c *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	genCfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(c.opts.Temperature)),
	}
	if c.opts.MaxTokens > 0 {
		genCfg.MaxOutputTokens = int32(c.opts.MaxTokens)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.opts.Model, genai.Text(prompt), genCfg)
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("gemini: empty response")
	}
	return text, nil
}

func retryableGemini(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.Code)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return retryableStatus(apiErrPtr.Code)
	}
	return isTransportError(err)
}
