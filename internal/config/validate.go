package config

import (
	"fmt"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if err := c.Paths.validate(); err != nil {
		return fmt.Errorf("paths: %w", err)
	}
	if err := c.Log.validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if err := c.LLM.validate(); err != nil {
		return fmt.Errorf("llm: %w", err)
	}
	if err := c.Sefaria.validate(); err != nil {
		return fmt.Errorf("sefaria: %w", err)
	}
	if c.Views.Port <= 0 || c.Views.Port > 65535 {
		return fmt.Errorf("views: port must be in 1..65535 (got %d)", c.Views.Port)
	}
	return nil
}

func (p *PathsConfig) validate() error {
	required := map[string]string{
		"dilemmas_dir":    p.DilemmasDir,
		"vocabulary_path": p.VocabularyPath,
		"artifact_path":   p.ArtifactPath,
	}
	for name, v := range required {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%s must not be empty", name)
		}
	}
	return nil
}

func (l *LogConfig) validate() error {
	switch strings.ToLower(l.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("format must be json or text (got %q)", l.Format)
	}
	switch strings.ToLower(strings.TrimSpace(l.Level)) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("level must be debug, info, warn or error (got %q)", l.Level)
	}
	return nil
}

func (l *LLMConfig) validate() error {
	if l.MaxRetries < 1 {
		return fmt.Errorf("max_retries must be >= 1 (got %d)", l.MaxRetries)
	}
	if l.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0 (got %v)", l.Timeout)
	}
	if l.InitialBackoff <= 0 {
		return fmt.Errorf("initial_backoff must be > 0 (got %v)", l.InitialBackoff)
	}
	if l.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be > 0 (got %d)", l.MaxTokens)
	}
	return nil
}

func (s *SefariaConfig) validate() error {
	if s.BaseURL == "" {
		return fmt.Errorf("base_url must not be empty")
	}
	if s.MaxRetries < 1 {
		return fmt.Errorf("max_retries must be >= 1 (got %d)", s.MaxRetries)
	}
	if s.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0 (got %v)", s.Timeout)
	}
	if s.Delay < 0 {
		return fmt.Errorf("delay must be >= 0 (got %v)", s.Delay)
	}
	return nil
}

// RequireDatabase reports an error when no DSN is configured.
func (d DatabaseConfig) RequireDatabase() error {
	if strings.TrimSpace(d.DSN) == "" {
		return fmt.Errorf("database.dsn (DATABASE_DSN) is required")
	}
	return nil
}
