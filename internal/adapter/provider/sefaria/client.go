// Package sefaria is an HTTP client for the Sefaria v3 texts API.
package sefaria

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/dilma-lab/dilma/internal/config"
)

const defaultBaseURL = "https://www.sefaria.org/api/v3/texts"

// Client fetches raw text documents from Sefaria.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	maxRetries     int
	initialBackoff time.Duration
	log            *slog.Logger
}

// NewClient creates a Client from config.
func NewClient(cfg config.SefariaConfig, logger *slog.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		maxRetries:     cfg.MaxRetries,
		initialBackoff: cfg.InitialBackoff,
		log:            logger.With("adapter", "sefaria"),
	}
}

// NewClientWithURL creates a Client with a custom base URL (for testing).
func NewClientWithURL(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		httpClient:     &http.Client{Timeout: 10 * time.Second},
		maxRetries:     3,
		initialBackoff: time.Millisecond,
		log:            logger.With("adapter", "sefaria"),
	}
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.code)
}

// FetchText fetches the named text (e.g. "Mishnah Berakhot").
// Returns nil, nil if the text does not exist (HTTP 404).
func (c *Client) FetchText(ctx context.Context, name string) (json.RawMessage, error) {
	reqURL := c.baseURL + "/" + url.PathEscape(name)

	attempts := c.maxRetries
	if attempts < 1 {
		attempts = 1
	}
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = c.initialBackoff
	exp.Multiplier = 2
	exp.MaxElapsedTime = 0
	b := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(attempts-1)), ctx)

	var (
		body     json.RawMessage
		notFound bool
		attempt  int
	)
	op := func() error {
		attempt++
		c.log.DebugContext(ctx, "sefaria request",
			slog.String("text", name),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", attempts),
		)

		data, status, err := c.get(ctx, reqURL)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		switch {
		case status == http.StatusOK:
			body = data
			return nil
		case status == http.StatusNotFound:
			notFound = true
			return nil
		default:
			return &statusError{code: status}
		}
	}
	notify := func(err error, wait time.Duration) {
		c.log.WarnContext(ctx, "sefaria retry",
			slog.String("text", name),
			slog.String("reason", err.Error()),
			slog.Duration("wait", wait),
		)
	}

	if err := backoff.RetryNotify(op, b, notify); err != nil {
		c.log.ErrorContext(ctx, "sefaria request failed", slog.String("text", name), slog.String("error", err.Error()))
		return nil, fmt.Errorf("sefaria: fetch %q after %d attempts: %w", name, attempt, err)
	}
	if notFound {
		c.log.InfoContext(ctx, "sefaria text not found", slog.String("text", name))
		return nil, nil
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("sefaria: fetch %q: %w", name, errors.New("response is not valid JSON"))
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, reqURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	return data, resp.StatusCode, nil
}
