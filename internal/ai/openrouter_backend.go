package ai

import (
	"context"
	"fmt"

	"resumescreen/internal/config"
	"resumescreen/internal/errors"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// OpenRouterBackend generates text through the OpenRouter chat completions API
type OpenRouterBackend struct {
	client    *resty.Client
	config    config.OperationAIConfig
	operation string
	breaker   *Breaker[*resty.Response]
	logger    *errors.Logger
}

var _ Backend = (*OpenRouterBackend)(nil)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    *float32          `json:"temperature,omitempty"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

// NewOpenRouterBackend creates an OpenRouter backend for one operation
func NewOpenRouterBackend(cfg config.OperationAIConfig, operation string, logger *errors.Logger) *OpenRouterBackend {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Title", "resumescreen").
		SetTimeout(operationTimeout(cfg))

	return &OpenRouterBackend{
		client:    client,
		config:    cfg,
		operation: operation,
		breaker:   NewBreaker[*resty.Response]("openrouter-"+operation, cfg.CircuitBreaker, logger),
		logger:    logger,
	}
}

// Name identifies the backend in logs and metrics
func (o *OpenRouterBackend) Name() string {
	return config.ProviderOpenRouter
}

// Generate sends one prompt to OpenRouter and returns the reply text
func (o *OpenRouterBackend) Generate(ctx context.Context, prompt Prompt) (string, *TokenUsage, error) {
	tracer := otel.Tracer("resumescreen.ai.openrouter")
	ctx, span := tracer.Start(ctx, "openrouter."+o.operation)
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", config.ProviderOpenRouter),
		attribute.String("ai.model", o.config.Model),
		attribute.Int("input.prompt_length", len(prompt.User)),
	)

	request := chatRequest{
		Model:          o.config.Model,
		ResponseFormat: map[string]string{"type": "json_object"},
	}
	if prompt.System != "" {
		request.Messages = append(request.Messages, chatMessage{Role: "system", Content: prompt.System})
	}
	request.Messages = append(request.Messages, chatMessage{Role: "user", Content: prompt.User})
	if temperature := operationTemperature(o.config); temperature > 0 {
		request.Temperature = &temperature
	}

	resp, err := o.breaker.Execute(func() (*resty.Response, error) {
		resp, err := o.client.R().
			SetContext(ctx).
			SetBody(request).
			Post("/chat/completions")
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			// Count server-side failures against the breaker
			return resp, classifyBackendError(nil, resp.StatusCode(),
				fmt.Sprintf("OpenRouter returned %s: %s", resp.Status(), gjson.Get(resp.String(), "error.message").String()))
		}
		return resp, nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		if _, ok := errors.As(err); ok {
			return "", nil, err
		}
		return "", nil, classifyBackendError(err, 0, "Failed to generate content for "+o.operation)
	}

	body := resp.String()
	// OpenRouter reports some upstream failures inside a 200 response
	if errMsg := gjson.Get(body, "error.message"); errMsg.Exists() {
		code := int(gjson.Get(body, "error.code").Int())
		err := classifyBackendError(nil, code, "OpenRouter error: "+errMsg.String())
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return "", nil, err
	}

	content := gjson.Get(body, "choices.0.message.content")
	if !content.Exists() {
		err := errors.NewAIResponseError("OpenRouter response has no message content", nil)
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return "", nil, err
	}

	tokenUsage := extractOpenRouterUsage(body)
	if tokenUsage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", tokenUsage.InputTokens),
			attribute.Int64("ai.tokens.output", tokenUsage.OutputTokens),
			attribute.Int64("ai.tokens.total", tokenUsage.TotalTokens),
		)
	}
	span.SetAttributes(attribute.Bool("success", true))

	return content.String(), tokenUsage, nil
}

// BreakerStats returns circuit breaker statistics
func (o *OpenRouterBackend) BreakerStats() map[string]any {
	stats := o.breaker.Stats()
	stats["healthy"] = o.breaker.IsHealthy()
	return stats
}

func extractOpenRouterUsage(body string) *TokenUsage {
	usage := gjson.Get(body, "usage")
	if !usage.Exists() {
		return nil
	}
	return &TokenUsage{
		InputTokens:  usage.Get("prompt_tokens").Int(),
		OutputTokens: usage.Get("completion_tokens").Int(),
		TotalTokens:  usage.Get("total_tokens").Int(),
	}
}
