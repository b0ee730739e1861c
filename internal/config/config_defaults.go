package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// AI Configuration - Global defaults
	v.SetDefault("ai.provider", ProviderGemini)
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("ai.apiKey", "")
	v.SetDefault("ai.maxRetries", 3)
	v.SetDefault("ai.temperature", 0.2)
	v.SetDefault("ai.useSystemPrompts", true)
	v.SetDefault("ai.maxResumeChars", 12000)

	// Retry backoff: 1s, 2s, 4s ... capped
	v.SetDefault("ai.retry.baseDelay", time.Second)
	v.SetDefault("ai.retry.multiplier", 2.0)
	v.SetDefault("ai.retry.maxDelay", 30*time.Second)

	v.SetDefault("ai.circuitBreaker.enabled", true)
	v.SetDefault("ai.circuitBreaker.maxRequests", 3)
	v.SetDefault("ai.circuitBreaker.interval", 60*time.Second)
	v.SetDefault("ai.circuitBreaker.timeout", 60*time.Second)
	v.SetDefault("ai.circuitBreaker.minRequests", 3)
	v.SetDefault("ai.circuitBreaker.failureThreshold", 0.6)

	// Analysis favors deterministic extraction
	v.SetDefault("ai.analyze.timeout", 75*time.Second)
	v.SetDefault("ai.analyze.temperature", 0.1)

	// Question generation benefits from some variety
	v.SetDefault("ai.questions.temperature", 0.7)

	// Comparing several resumes produces long prompts
	v.SetDefault("ai.compare.timeout", 120*time.Second)
	v.SetDefault("ai.compare.maxRetries", 2)
	v.SetDefault("ai.compare.temperature", 0.2)

	v.SetDefault("ai.ats.temperature", 0.3)

	// OpenRouter
	v.SetDefault("openRouter.baseURL", "https://openrouter.ai/api/v1")
	v.SetDefault("openRouter.apiKey", "")
	v.SetDefault("openRouter.model", "google/gemini-2.0-flash-001")

	// Screening
	v.SetDefault("screening.defaultMode", ModeAI)
	v.SetDefault("screening.batchCooldown", 3*time.Second)
	v.SetDefault("screening.rankWorkers", 4)

	// Server Configuration
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 180*time.Second) // batch and compare calls run long
	v.SetDefault("server.idleTimeout", 120*time.Second)
	v.SetDefault("server.apiKeys", []string{})
	v.SetDefault("server.rateLimit.enabled", false)
	v.SetDefault("server.rateLimit.requestsPerMin", 60)
	v.SetDefault("server.rateLimit.burstCapacity", 10)
	v.SetDefault("server.rateLimit.byIP", true)
	v.SetDefault("server.rateLimit.byAPIKey", false)
	v.SetDefault("server.rateLimit.window", time.Minute)

	// App Configuration
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "json")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown"})
	v.SetDefault("app.maxFileSize", 10*1024*1024) // 10MB, resumes are often PDFs

	// Vault Configuration
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.secrets.apiKeys", "")
	v.SetDefault("vault.secrets.geminiKey", "")
	v.SetDefault("vault.secrets.openRouterKey", "")
	v.SetDefault("vault.secrets.databaseDSN", "")
	v.SetDefault("vault.secrets.webhookSecret", "")

	// Database
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.autoMigrate", true)
	v.SetDefault("database.maxOpenConns", 10)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", 30*time.Minute)

	// Events
	v.SetDefault("events.webhookURL", "")
	v.SetDefault("events.webhookSecret", "")
	v.SetDefault("events.bufferSize", 256)
	v.SetDefault("events.timeout", 5*time.Second)

	// Inbox watcher
	v.SetDefault("inbox.dir", "./inbox")
	v.SetDefault("inbox.debounce", time.Second)
	v.SetDefault("inbox.jobFile", "")
	v.SetDefault("inbox.mode", "")

	// Observability Configuration
	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "resumescreen")
	v.SetDefault("observability.serviceVersion", "")  // Will use app version if empty
	v.SetDefault("observability.serviceInstance", "") // Will be auto-generated if empty
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.sampleRate", 1.0)

	v.SetDefault("observability.tracing.enabled", true)
	v.SetDefault("observability.tracing.sampleRate", 1.0)

	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)

	v.SetDefault("observability.customMetrics.aiOperations.enabled", true)
	v.SetDefault("observability.customMetrics.aiOperations.trackDuration", true)
	v.SetDefault("observability.customMetrics.aiOperations.trackTokenUsage", true)
	v.SetDefault("observability.customMetrics.aiOperations.trackFallbacks", true)
	v.SetDefault("observability.customMetrics.businessMetrics.enabled", true)
	v.SetDefault("observability.customMetrics.businessMetrics.trackSuccessRates", true)
	v.SetDefault("observability.customMetrics.businessMetrics.trackMatchScores", true)
	v.SetDefault("observability.customMetrics.infrastructure.enabled", true)
	v.SetDefault("observability.customMetrics.infrastructure.trackRateLimits", true)

	v.SetDefault("observability.console.enabled", false)
	v.SetDefault("observability.console.prettyPrint", true)

	v.SetDefault("observability.prometheus.enabled", true)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")

	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})

	v.SetDefault("observability.healthCheck.timeout", 15*time.Second)
}

// Default returns the built-in configuration without reading files or the
// environment
func Default() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal defaults: %w", err)
	}
	return &cfg, nil
}
