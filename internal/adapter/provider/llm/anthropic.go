package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicClient calls the Claude Messages API through the official SDK.
// The SDK's own retries are disabled; WithRetry owns the retry policy.
type AnthropicClient struct {
	client anthropic.Client
	opts   Options
}

// NewAnthropicClient creates a Claude client. baseURL may be empty.
func NewAnthropicClient(apiKey, baseURL string, opts Options, timeout time.Duration) *AnthropicClient {
	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
	}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}
	return &AnthropicClient{client: anthropic.NewClient(reqOpts...), opts: opts}
}

// Complete sends prompt as a single user message.
func (c *AnthropicClient) Complete(ctx context.Context, prompt string) (string, error) {
	maxTokens := c.opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.opts.Model),
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(c.opts.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		b.WriteString(block.Text)
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("anthropic: empty response")
	}
	return strings.TrimSpace(b.String()), nil
}

func retryableAnthropic(err error) bool {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.StatusCode)
	}
	return isTransportError(err)
}
