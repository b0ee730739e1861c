package ai

import (
	"context"
	"fmt"
	"time"

	"resumescreen/internal/config"
	"resumescreen/internal/errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/genai"
)

const modelCheckTimeout = 10 * time.Second

// GeminiBackend generates text with Google Gemini
type GeminiBackend struct {
	client    *genai.Client
	config    config.OperationAIConfig
	operation string
	breaker   *Breaker[*genai.GenerateContentResponse]
	logger    *errors.Logger
}

var (
	_ Backend      = (*GeminiBackend)(nil)
	_ ModelChecker = (*GeminiBackend)(nil)
)

// NewGeminiBackend creates a Gemini backend for one operation
func NewGeminiBackend(ctx context.Context, cfg config.OperationAIConfig, operation string, logger *errors.Logger) (*GeminiBackend, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed, "Failed to create Gemini client", err)
	}

	return &GeminiBackend{
		client:    client,
		config:    cfg,
		operation: operation,
		breaker:   NewBreaker[*genai.GenerateContentResponse]("gemini-"+operation, cfg.CircuitBreaker, logger),
		logger:    logger,
	}, nil
}

// Name identifies the backend in logs and metrics
func (g *GeminiBackend) Name() string {
	return config.ProviderGemini
}

// Generate sends one prompt to Gemini and returns the reply text
func (g *GeminiBackend) Generate(ctx context.Context, prompt Prompt) (string, *TokenUsage, error) {
	tracer := otel.Tracer("resumescreen.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini."+g.operation)
	defer span.End()

	temperature := operationTemperature(g.config)
	span.SetAttributes(
		attribute.String("ai.provider", config.ProviderGemini),
		attribute.String("ai.model", g.config.Model),
		attribute.Float64("ai.temperature", float64(temperature)),
		attribute.Int("input.prompt_length", len(prompt.User)),
	)

	genaiConfig := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}
	if temperature > 0 {
		genaiConfig.Temperature = &temperature
	}
	userPrompt := prompt.User
	if prompt.System != "" {
		if useSystemPrompts(g.config) {
			genaiConfig.SystemInstruction = genai.NewContentFromText(prompt.System, genai.RoleUser)
		} else {
			userPrompt = prompt.System + "\n\n" + prompt.User
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, operationTimeout(g.config))
	defer cancel()

	result, err := g.breaker.Execute(func() (*genai.GenerateContentResponse, error) {
		return g.client.Models.GenerateContent(callCtx, g.config.Model, genai.Text(userPrompt), genaiConfig)
	})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return "", nil, classifyBackendError(err, 0, "Failed to generate content for "+g.operation)
	}

	text := result.Text()
	tokenUsage := extractTokenUsage(result)
	if tokenUsage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", tokenUsage.InputTokens),
			attribute.Int64("ai.tokens.output", tokenUsage.OutputTokens),
			attribute.Int64("ai.tokens.total", tokenUsage.TotalTokens),
		)
	}
	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Int("output.reply_length", len(text)),
	)

	return text, tokenUsage, nil
}

// ModelInfo checks the readiness and availability of the configured model
func (g *GeminiBackend) ModelInfo(ctx context.Context) *ModelInfo {
	info := &ModelInfo{
		Name:     g.config.Model,
		Provider: config.ProviderGemini,
	}

	checkCtx, cancel := context.WithTimeout(ctx, modelCheckTimeout)
	defer cancel()

	model, err := g.client.Models.Get(checkCtx, g.config.Model, &genai.GetModelConfig{})
	if err != nil {
		info.Error = fmt.Sprintf("Failed to get model info: %v", err)
		g.logger.Warn("Model availability check failed",
			"model", g.config.Model,
			"provider", config.ProviderGemini,
			"error", err.Error())
		return info
	}

	info.Available = true
	info.DisplayName = model.DisplayName
	info.Version = model.Version

	g.logger.Debug("Model availability check successful",
		"model", g.config.Model,
		"display_name", info.DisplayName,
		"version", info.Version)

	return info
}

// BreakerStats returns circuit breaker statistics
func (g *GeminiBackend) BreakerStats() map[string]any {
	stats := g.breaker.Stats()
	stats["healthy"] = g.breaker.IsHealthy()
	return stats
}

// extractTokenUsage extracts token usage information from a Gemini response
func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}
