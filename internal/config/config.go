package config

import "time"

// Config is the root configuration shared by every dilma tool.
type Config struct {
	Paths    PathsConfig    `yaml:"paths"`
	Log      LogConfig      `yaml:"log"`
	LLM      LLMConfig      `yaml:"llm"`
	Sefaria  SefariaConfig  `yaml:"sefaria"`
	Database DatabaseConfig `yaml:"database"`
	Views    ViewsConfig    `yaml:"views"`
}

// PathsConfig locates the on-disk data the pipeline reads and writes.
type PathsConfig struct {
	DilemmasDir    string `yaml:"dilemmas_dir"    env:"DILMA_DILEMMAS_DIR"    env-default:"data/dilemmas"`
	NeutralDir     string `yaml:"neutral_dir"     env:"DILMA_NEUTRAL_DIR"     env-default:"data/dilemmas-neutral"`
	VocabularyPath string `yaml:"vocabulary_path" env:"DILMA_VOCABULARY_PATH" env-default:"data/annotations/value_labels.yaml"`
	ResultsDir     string `yaml:"results_dir"     env:"DILMA_RESULTS_DIR"     env-default:"results"`
	ArtifactPath   string `yaml:"artifact_path"   env:"DILMA_ARTIFACT_PATH"   env-default:"results/value_label_distribution.csv"`
	AxesPath       string `yaml:"axes_path"       env:"DILMA_AXES_PATH"`
	SourcesDir     string `yaml:"sources_dir"     env:"DILMA_SOURCES_DIR"     env-default:"data/sources"`
	TextsDir       string `yaml:"texts_dir"       env:"DILMA_TEXTS_DIR"       env-default:"data/texts"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}

// LLMConfig holds chat provider endpoints, retry policy and credentials.
// API keys are read from the environment only.
type LLMConfig struct {
	OpenAIBaseURL  string        `yaml:"openai_base_url" env:"LLM_OPENAI_BASE_URL" env-default:"https://api.openai.com/v1"`
	XAIBaseURL     string        `yaml:"xai_base_url"    env:"LLM_XAI_BASE_URL"    env-default:"https://api.x.ai/v1"`
	QwenBaseURL    string        `yaml:"qwen_base_url"   env:"LLM_QWEN_BASE_URL"   env-default:"https://dashscope-intl.aliyuncs.com/compatible-mode/v1"`
	// Empty means the SDK default endpoint.
	AnthropicBaseURL string `yaml:"anthropic_base_url" env:"LLM_ANTHROPIC_BASE_URL"`
	GeminiBaseURL    string `yaml:"gemini_base_url"    env:"LLM_GEMINI_BASE_URL"`

	Timeout        time.Duration `yaml:"timeout"         env:"LLM_TIMEOUT"         env-default:"120s"`
	MaxRetries     int           `yaml:"max_retries"     env:"LLM_MAX_RETRIES"     env-default:"3"`
	InitialBackoff time.Duration `yaml:"initial_backoff" env:"LLM_INITIAL_BACKOFF" env-default:"1s"`
	MaxTokens      int64         `yaml:"max_tokens"      env:"LLM_MAX_TOKENS"      env-default:"1024"`

	OpenAIAPIKey    string `yaml:"-" env:"OPENAI_API_KEY"`
	XAIAPIKey       string `yaml:"-" env:"XAI_API_KEY"`
	GeminiAPIKey    string `yaml:"-" env:"GEMINI_API_KEY"`
	DashScopeAPIKey string `yaml:"-" env:"DASHSCOPE_API_KEY"`
	AnthropicAPIKey string `yaml:"-" env:"ANTHROPIC_API_KEY"`
}

// SefariaConfig holds settings for the Sefaria text fetcher.
type SefariaConfig struct {
	BaseURL        string        `yaml:"base_url"        env:"SEFARIA_BASE_URL"        env-default:"https://www.sefaria.org/api/v3/texts"`
	Timeout        time.Duration `yaml:"timeout"         env:"SEFARIA_TIMEOUT"         env-default:"30s"`
	MaxRetries     int           `yaml:"max_retries"     env:"SEFARIA_MAX_RETRIES"     env-default:"3"`
	InitialBackoff time.Duration `yaml:"initial_backoff" env:"SEFARIA_INITIAL_BACKOFF" env-default:"1s"`
	Delay          time.Duration `yaml:"delay"           env:"SEFARIA_DELAY"           env-default:"1s"`
}

// DatabaseConfig holds PostgreSQL settings for the results warehouse.
// DSN is only required by tools that talk to the database.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"5"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"1"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// ViewsConfig holds settings for the distribution views HTTP server.
type ViewsConfig struct {
	Host            string        `yaml:"host"             env:"VIEWS_HOST"             env-default:"127.0.0.1"`
	Port            int           `yaml:"port"             env:"VIEWS_PORT"             env-default:"8090"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"VIEWS_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"VIEWS_WRITE_TIMEOUT"    env-default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"VIEWS_SHUTDOWN_TIMEOUT" env-default:"10s"`
	ReloadDebounce  time.Duration `yaml:"reload_debounce"  env:"VIEWS_RELOAD_DEBOUNCE"  env-default:"250ms"`
}
