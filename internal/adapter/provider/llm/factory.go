package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dilma-lab/dilma/internal/config"
	"github.com/dilma-lab/dilma/internal/domain"
)

// Provider names a chat backend.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderXAI       Provider = "xai"
	ProviderGemini    Provider = "gemini"
	ProviderQwen      Provider = "qwen"
	ProviderAnthropic Provider = "anthropic"
)

// ProviderFor routes a model name to its provider by prefix. Anything
// unrecognised goes to OpenAI.
func ProviderFor(model string) Provider {
	m := strings.ToLower(model)
	switch {
	case strings.HasPrefix(m, "grok-"):
		return ProviderXAI
	case strings.HasPrefix(m, "gemini-"):
		return ProviderGemini
	case strings.HasPrefix(m, "qwen-"):
		return ProviderQwen
	case strings.HasPrefix(m, "claude-"):
		return ProviderAnthropic
	default:
		return ProviderOpenAI
	}
}

// EnvVar is the environment variable holding the provider's API key.
func (p Provider) EnvVar() string {
	switch p {
	case ProviderXAI:
		return "XAI_API_KEY"
	case ProviderGemini:
		return "GEMINI_API_KEY"
	case ProviderQwen:
		return "DASHSCOPE_API_KEY"
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return "OPENAI_API_KEY"
	}
}

func (p Provider) apiKey(cfg config.LLMConfig) string {
	switch p {
	case ProviderXAI:
		return cfg.XAIAPIKey
	case ProviderGemini:
		return cfg.GeminiAPIKey
	case ProviderQwen:
		return cfg.DashScopeAPIKey
	case ProviderAnthropic:
		return cfg.AnthropicAPIKey
	default:
		return cfg.OpenAIAPIKey
	}
}

// RequireKey returns domain.ErrMissingCredentials when the key for model's
// provider is unset.
func RequireKey(cfg config.LLMConfig, model string) error {
	p := ProviderFor(model)
	if strings.TrimSpace(p.apiKey(cfg)) == "" {
		return fmt.Errorf("%w: %s is not set (needed for model %q)", domain.ErrMissingCredentials, p.EnvVar(), model)
	}
	return nil
}

// isOpenAIReasoningModel matches the o-series, which reject a custom
// temperature.
func isOpenAIReasoningModel(model string) bool {
	m := strings.ToLower(model)
	return strings.HasPrefix(m, "o1") || strings.HasPrefix(m, "o3") || strings.HasPrefix(m, "o4")
}

func supportsReasoningEffort(p Provider, model string) bool {
	if p == ProviderXAI {
		return true
	}
	return p == ProviderOpenAI && isOpenAIReasoningModel(model)
}

// NewClient builds a retrying ChatClient for opts.Model.
func NewClient(ctx context.Context, cfg config.LLMConfig, opts Options, logger *slog.Logger) (ChatClient, error) {
	if err := RequireKey(cfg, opts.Model); err != nil {
		return nil, err
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = cfg.MaxTokens
	}

	p := ProviderFor(opts.Model)
	key := p.apiKey(cfg)
	policy := RetryPolicy{MaxAttempts: cfg.MaxRetries, InitialBackoff: cfg.InitialBackoff}
	log := logger.With(slog.String("provider", string(p)), slog.String("model", opts.Model))

	var (
		inner     ChatClient
		retryable func(error) bool
	)
	switch p {
	case ProviderAnthropic:
		inner = NewAnthropicClient(key, cfg.AnthropicBaseURL, opts, cfg.Timeout)
		retryable = retryableAnthropic
	case ProviderGemini:
		gc, err := NewGeminiClient(ctx, key, cfg.GeminiBaseURL, opts, cfg.Timeout)
		if err != nil {
			return nil, err
		}
		inner = gc
		retryable = retryableGemini
	case ProviderXAI:
		inner = NewOpenAICompatClient(p, cfg.XAIBaseURL, key, opts, cfg.Timeout, log)
		retryable = retryableHTTP
	case ProviderQwen:
		inner = NewOpenAICompatClient(p, cfg.QwenBaseURL, key, opts, cfg.Timeout, log)
		retryable = retryableHTTP
	default:
		inner = NewOpenAICompatClient(p, cfg.OpenAIBaseURL, key, opts, cfg.Timeout, log)
		retryable = retryableHTTP
	}

	return WithRetry(inner, policy, retryable, log), nil
}
