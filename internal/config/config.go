package config

import (
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// AI operation names. Each has its own OperationAIConfig section.
const (
	OperationAnalyze   = "analyze"
	OperationQuestions = "questions"
	OperationCompare   = "compare"
	OperationATS       = "ats"
)

// Operations lists every AI operation
var Operations = []string{OperationAnalyze, OperationQuestions, OperationCompare, OperationATS}

// AI providers
const (
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
)

// Screening modes
const (
	ModeAI   = "ai"
	ModeRule = "rule"
)

// Config holds all application configuration
// API Key Precedence Order:
// 1. Vault (if configured) - Highest priority
// 2. Config File values
// 3. Environment Variables (RESUMESCREEN_AI_APIKEY, etc.), including those from a .env file
// 4. Default values - Lowest priority
type Config struct {
	AI            AIConfig            `mapstructure:"ai"`
	OpenRouter    OpenRouterConfig    `mapstructure:"openRouter"`
	Screening     ScreeningConfig     `mapstructure:"screening"`
	Server        ServerConfig        `mapstructure:"server"`
	App           AppConfig           `mapstructure:"app"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Events        EventsConfig        `mapstructure:"events"`
	Inbox         InboxConfig         `mapstructure:"inbox"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// AIConfig holds AI service configuration
type AIConfig struct {
	// Global/fallback configuration
	Provider         string               `mapstructure:"provider"`
	Model            string               `mapstructure:"model"`
	Timeout          time.Duration        `mapstructure:"timeout"`
	APIKey           string               `mapstructure:"apiKey"`
	MaxRetries       int                  `mapstructure:"maxRetries"`
	Temperature      float32              `mapstructure:"temperature"`
	UseSystemPrompts bool                 `mapstructure:"useSystemPrompts"`
	MaxResumeChars   int                  `mapstructure:"maxResumeChars"`
	Retry            RetryConfig          `mapstructure:"retry"`
	CircuitBreaker   CircuitBreakerConfig `mapstructure:"circuitBreaker"`
	CustomPrompts    PromptConfig         `mapstructure:"customPrompts"`

	// Operation-specific configurations
	Analyze   OperationAIConfig `mapstructure:"analyze"`
	Questions OperationAIConfig `mapstructure:"questions"`
	Compare   OperationAIConfig `mapstructure:"compare"`
	ATS       OperationAIConfig `mapstructure:"ats"`
}

// RetryConfig controls exponential backoff for transient AI failures
type RetryConfig struct {
	BaseDelay  time.Duration `mapstructure:"baseDelay"`
	Multiplier float64       `mapstructure:"multiplier"`
	MaxDelay   time.Duration `mapstructure:"maxDelay"`
}

// CircuitBreakerConfig represents circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`          // Whether circuit breaker is enabled
	MaxRequests      uint32        `mapstructure:"maxRequests"`      // Max requests allowed when half-open
	Interval         time.Duration `mapstructure:"interval"`         // Interval to clear counts
	Timeout          time.Duration `mapstructure:"timeout"`          // Timeout for half-open to open
	MinRequests      uint32        `mapstructure:"minRequests"`      // Minimum requests before tripping
	FailureThreshold float64       `mapstructure:"failureThreshold"` // Failure ratio threshold (0.0-1.0)
}

// OperationAIConfig holds AI configuration for specific operations.
// Pointer fields are nil until resolved against the global AI config.
type OperationAIConfig struct {
	Provider         string               `mapstructure:"provider"`
	Model            string               `mapstructure:"model"`
	Timeout          *time.Duration       `mapstructure:"timeout"`
	APIKey           string               `mapstructure:"apiKey"`
	MaxRetries       *int                 `mapstructure:"maxRetries"`
	Temperature      *float32             `mapstructure:"temperature"`
	UseSystemPrompts *bool                `mapstructure:"useSystemPrompts"`
	CustomPrompts    PromptConfig         `mapstructure:"customPrompts"`
	CircuitBreaker   CircuitBreakerConfig `mapstructure:"circuitBreaker"`

	// Filled in from the global sections when the operation config is resolved
	BaseURL        string      `mapstructure:"-"`
	Retry          RetryConfig `mapstructure:"-"`
	MaxResumeChars int         `mapstructure:"-"`
}

// PromptConfig holds a customizable system and user prompt, either inline or from a file
type PromptConfig struct {
	SystemPrompt     string `mapstructure:"systemPrompt"`
	SystemPromptFile string `mapstructure:"systemPromptFile"`
	UserPrompt       string `mapstructure:"userPrompt"`
	UserPromptFile   string `mapstructure:"userPromptFile"`
}

// OpenRouterConfig holds settings for the OpenRouter chat completions backend
type OpenRouterConfig struct {
	BaseURL string `mapstructure:"baseURL"`
	APIKey  string `mapstructure:"apiKey"`
	Model   string `mapstructure:"model"`
}

// ScreeningConfig holds defaults for resume screening
type ScreeningConfig struct {
	DefaultMode   string        `mapstructure:"defaultMode"`   // "ai" or "rule"
	BatchCooldown time.Duration `mapstructure:"batchCooldown"` // Pause between consecutive AI-backed batch items
	RankWorkers   int           `mapstructure:"rankWorkers"`   // Parallelism for rule-based ranking
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout  time.Duration `mapstructure:"idleTimeout"`

	// API Authentication
	APIKeys []string `mapstructure:"apiKeys"` // Valid API keys for authentication

	// Rate Limiting Configuration
	RateLimit RateLimitConfig `mapstructure:"rateLimit"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled        bool          `mapstructure:"enabled"`        // Enable/disable rate limiting
	RequestsPerMin int           `mapstructure:"requestsPerMin"` // Requests allowed per window
	BurstCapacity  int           `mapstructure:"burstCapacity"`  // Burst capacity for token bucket
	ByIP           bool          `mapstructure:"byIP"`           // Enable per-IP rate limiting
	ByAPIKey       bool          `mapstructure:"byAPIKey"`       // Enable per-API-key rate limiting
	Window         time.Duration `mapstructure:"window"`         // Window for requestsPerMin, one minute by default
}

// AppConfig holds general application configuration
type AppConfig struct {
	LogLevel         string   `mapstructure:"logLevel"`
	DefaultFormat    string   `mapstructure:"defaultFormat"`
	SupportedFormats []string `mapstructure:"supportedFormats"`
	MaxFileSize      int64    `mapstructure:"maxFileSize"`
}

// DatabaseConfig holds persistence configuration
type DatabaseConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	DSN             string        `mapstructure:"dsn"`
	AutoMigrate     bool          `mapstructure:"autoMigrate"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"`
}

// EventsConfig holds progress event delivery configuration
type EventsConfig struct {
	WebhookURL    string        `mapstructure:"webhookURL"` // Empty means events are only logged
	WebhookSecret string        `mapstructure:"webhookSecret"`
	BufferSize    int           `mapstructure:"bufferSize"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// InboxConfig holds configuration for the watched resume inbox
type InboxConfig struct {
	Dir      string        `mapstructure:"dir"`
	Debounce time.Duration `mapstructure:"debounce"`
	JobFile  string        `mapstructure:"jobFile"`
	Mode     string        `mapstructure:"mode"`
}

// ObservabilityConfig holds observability configuration
type ObservabilityConfig struct {
	Enabled         bool                `mapstructure:"enabled"`
	ServiceName     string              `mapstructure:"serviceName"`
	ServiceVersion  string              `mapstructure:"serviceVersion"`
	ServiceInstance string              `mapstructure:"serviceInstance"`
	ConsoleOutput   bool                `mapstructure:"consoleOutput"`
	SampleRate      float64             `mapstructure:"sampleRate"`
	Tracing         TracingConfig       `mapstructure:"tracing"`
	Metrics         MetricsConfig       `mapstructure:"metrics"`
	CustomMetrics   CustomMetricsConfig `mapstructure:"customMetrics"`
	Console         ConsoleConfig       `mapstructure:"console"`
	Prometheus      PrometheusConfig    `mapstructure:"prometheus"`
	OTLP            OTLPConfig          `mapstructure:"otlp"`
	HealthCheck     HealthCheckConfig   `mapstructure:"healthCheck"`
}

// TracingConfig holds tracing configuration
type TracingConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	SampleRate float64 `mapstructure:"sampleRate"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	CollectionInterval time.Duration `mapstructure:"collectionInterval"`
}

// ConsoleConfig holds console output configuration
type ConsoleConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	PrettyPrint bool `mapstructure:"prettyPrint"`
}

// CustomMetricsConfig holds fine-grained custom metrics configuration
type CustomMetricsConfig struct {
	AIOperations    AIOperationsMetricsConfig   `mapstructure:"aiOperations"`
	BusinessMetrics BusinessMetricsConfig       `mapstructure:"businessMetrics"`
	Infrastructure  InfrastructureMetricsConfig `mapstructure:"infrastructure"`
}

// AIOperationsMetricsConfig holds AI operation metrics configuration
type AIOperationsMetricsConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	TrackDuration   bool `mapstructure:"trackDuration"`
	TrackTokenUsage bool `mapstructure:"trackTokenUsage"`
	TrackFallbacks  bool `mapstructure:"trackFallbacks"`
}

// BusinessMetricsConfig holds screening metrics configuration
type BusinessMetricsConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	TrackSuccessRates bool `mapstructure:"trackSuccessRates"`
	TrackMatchScores  bool `mapstructure:"trackMatchScores"`
}

// InfrastructureMetricsConfig holds infrastructure metrics configuration
type InfrastructureMetricsConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	TrackRateLimits bool `mapstructure:"trackRateLimits"`
}

// PrometheusConfig holds Prometheus configuration
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Port     string `mapstructure:"port"`
}

// OTLPConfig holds OTLP exporter configuration
type OTLPConfig struct {
	Enabled  bool              `mapstructure:"enabled"`
	Endpoint string            `mapstructure:"endpoint"`
	Insecure bool              `mapstructure:"insecure"`
	Headers  map[string]string `mapstructure:"headers"`
}

// HealthCheckConfig holds health check configuration
type HealthCheckConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// LoadConfig loads configuration from environment variables and a config file
func LoadConfig() (*Config, error) {
	log.Println("[CONFIG] Starting configuration loading process")

	if err := godotenv.Load(); err == nil {
		log.Println("[CONFIG] Loaded environment variables from .env")
	}

	v := viper.New()

	setDefaults(v)
	log.Println("[CONFIG] Applied default configuration values")

	v.SetEnvPrefix("RESUMESCREEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	log.Println("[CONFIG] Configured environment variable handling with prefix 'RESUMESCREEN'")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/resumescreen/")
	v.AddConfigPath("$HOME/.resumescreen")
	v.AddConfigPath(".")
	log.Println("[CONFIG] Configured config file search paths: /etc/resumescreen/, $HOME/.resumescreen, .")

	configFileUsed := ""
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Println("[CONFIG] No config file found, using defaults and environment variables")
	} else {
		configFileUsed = v.ConfigFileUsed()
		log.Printf("[CONFIG] Successfully loaded config file: %s", configFileUsed)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	log.Println("[CONFIG] Successfully unmarshaled configuration")

	config.applyFallbacks()
	log.Println("[CONFIG] Applied configuration fallbacks and environment variable overrides")

	config.logConfigurationSources(configFileUsed)

	if err := config.validatePromptFiles(); err != nil {
		return nil, fmt.Errorf("prompt file validation failed: %w", err)
	}

	if err := config.loadPromptsFromFiles(); err != nil {
		return nil, fmt.Errorf("failed to load custom prompts from files: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log.Println("[CONFIG] Configuration loading completed successfully")
	return &config, nil
}

// Validate checks if the configuration is valid. A missing AI key is not an
// error: screening falls back to the rule-based analyzer.
func (c *Config) Validate() error {
	switch c.AI.Provider {
	case ProviderGemini, ProviderOpenRouter:
	default:
		return fmt.Errorf("unsupported AI provider: %s (must be '%s' or '%s')", c.AI.Provider, ProviderGemini, ProviderOpenRouter)
	}

	if c.AI.Timeout <= 0 {
		return fmt.Errorf("AI timeout must be positive")
	}

	if c.AI.MaxRetries < 0 {
		return fmt.Errorf("AI maxRetries cannot be negative")
	}

	if c.AI.Retry.Multiplier < 1 {
		return fmt.Errorf("AI retry multiplier must be at least 1")
	}

	if c.AI.MaxResumeChars <= 0 {
		return fmt.Errorf("AI maxResumeChars must be positive")
	}

	if err := validateMode(c.Screening.DefaultMode); err != nil {
		return fmt.Errorf("screening: %w", err)
	}

	if c.Screening.BatchCooldown < 0 {
		return fmt.Errorf("screening batchCooldown cannot be negative")
	}

	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if !slices.Contains(c.App.SupportedFormats, c.App.DefaultFormat) {
		return fmt.Errorf("invalid default format: %s", c.App.DefaultFormat)
	}

	switch strings.ToLower(c.App.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.App.LogLevel)
	}

	if c.Database.Enabled && c.Database.DSN == "" && !(c.Vault.Enabled && c.Vault.Secrets.DatabaseDSN != "") {
		return fmt.Errorf("database DSN is required when the database is enabled")
	}

	if c.Inbox.Mode != "" {
		if err := validateMode(c.Inbox.Mode); err != nil {
			return fmt.Errorf("inbox: %w", err)
		}
	}

	return nil
}

func validateMode(mode string) error {
	if mode != ModeAI && mode != ModeRule {
		return fmt.Errorf("invalid mode: %s (must be '%s' or '%s')", mode, ModeAI, ModeRule)
	}
	return nil
}
