// Package llm adapts chat-completion providers to a single blocking
// Complete call, routed by model-name prefix.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ChatClient sends one user prompt and returns the trimmed reply text.
type ChatClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Options configures a single model.
type Options struct {
	Model           string
	Temperature     float64
	ReasoningEffort string
	MaxTokens       int64
}

// StatusError is a non-2xx HTTP reply from a provider.
type StatusError struct {
	Provider   Provider
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200]
	}
	return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, body)
}

// retryableStatus reports whether an HTTP status is worth retrying.
func retryableStatus(code int) bool {
	return code == 429 || code >= 500
}

// RetryPolicy bounds the retries of one Complete call.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
}

// retrying retries transient failures of an inner client with exponential
// backoff. Context cancellation and non-retryable errors stop immediately.
type retrying struct {
	inner     ChatClient
	policy    RetryPolicy
	retryable func(error) bool
	log       *slog.Logger
}

// WithRetry wraps c so that errors accepted by retryable are retried
// according to policy.
func WithRetry(c ChatClient, policy RetryPolicy, retryable func(error) bool, log *slog.Logger) ChatClient {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	return &retrying{inner: c, policy: policy, retryable: retryable, log: log}
}

func (r *retrying) Complete(ctx context.Context, prompt string) (string, error) {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = r.policy.InitialBackoff
	exp.Multiplier = 2
	exp.RandomizationFactor = 0.1
	exp.MaxElapsedTime = 0

	b := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(r.policy.MaxAttempts-1)), ctx)

	var (
		answer  string
		attempt int
	)
	op := func() error {
		attempt++
		out, err := r.inner.Complete(ctx, prompt)
		if err == nil {
			answer = out
			return nil
		}
		if ctx.Err() != nil || !r.retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		r.log.WarnContext(ctx, "llm retry",
			slog.Int("attempt", attempt),
			slog.Duration("wait", wait),
			slog.String("error", err.Error()),
		)
	}

	if err := backoff.RetryNotify(op, b, notify); err != nil {
		return "", err
	}
	return answer, nil
}

// isTransportError reports network-level failures that did not produce an
// HTTP status.
func isTransportError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return strings.Contains(err.Error(), "connection reset") || strings.Contains(err.Error(), "EOF")
}
