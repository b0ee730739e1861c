package ai

import (
	"context"
	"fmt"
	"time"

	"resumescreen/internal/config"
	"resumescreen/internal/errors"
)

// Prompt is a single generation request
type Prompt struct {
	System string
	User   string
}

// Backend is a remote text generation service. Replies are raw text and are
// never trusted to be valid JSON.
type Backend interface {
	Generate(ctx context.Context, prompt Prompt) (string, *TokenUsage, error)
	Name() string
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// ModelInfo represents information about the AI model
type ModelInfo struct {
	Name        string `json:"name"`
	Provider    string `json:"provider"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}

// ModelChecker is implemented by backends that can report model availability
type ModelChecker interface {
	ModelInfo(ctx context.Context) *ModelInfo
}

// NewBackend creates the backend configured for an operation. It returns a
// ConfigurationError when the operation has no credential.
func NewBackend(ctx context.Context, cfg config.OperationAIConfig, operation string, logger *errors.Logger) (Backend, error) {
	if cfg.APIKey == "" {
		return nil, errors.NewConfigurationError(
			fmt.Sprintf("no API key configured for the %s operation (provider %s)", operation, cfg.Provider))
	}

	logger.Debug("Initializing AI backend",
		"provider", cfg.Provider,
		"operation_type", operation,
		"model", cfg.Model,
		"timeout", operationTimeout(cfg),
		"max_retries", operationRetries(cfg))

	switch cfg.Provider {
	case config.ProviderGemini:
		backend, err := NewGeminiBackend(ctx, cfg, operation, logger)
		if err != nil {
			return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed, "Failed to create AI backend", err)
		}
		return backend, nil
	case config.ProviderOpenRouter:
		return NewOpenRouterBackend(cfg, operation, logger), nil
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported AI provider: %s", cfg.Provider), nil)
	}
}

const defaultTimeout = 60 * time.Second

// The pointer fields of an OperationAIConfig are set once it is resolved
// through config.GetOperationConfig; these accessors also accept unresolved ones.

func operationTimeout(cfg config.OperationAIConfig) time.Duration {
	if cfg.Timeout != nil && *cfg.Timeout > 0 {
		return *cfg.Timeout
	}
	return defaultTimeout
}

func operationRetries(cfg config.OperationAIConfig) int {
	if cfg.MaxRetries != nil {
		return *cfg.MaxRetries
	}
	return 0
}

func operationTemperature(cfg config.OperationAIConfig) float32 {
	if cfg.Temperature != nil {
		return *cfg.Temperature
	}
	return 0
}

func useSystemPrompts(cfg config.OperationAIConfig) bool {
	return cfg.UseSystemPrompts == nil || *cfg.UseSystemPrompts
}
