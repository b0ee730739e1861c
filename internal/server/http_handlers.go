package server

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"resumescreen/internal/ai"
	"resumescreen/internal/config"
	"resumescreen/internal/errors"
	"resumescreen/internal/types"

	"github.com/go-playground/validator/v10"
)

// breakerReporter is implemented by backends guarded by a circuit breaker
type breakerReporter interface {
	BreakerStats() map[string]any
}

// pinger is implemented by stores backed by a database connection
type pinger interface {
	Ping(ctx context.Context) error
}

// healthHandler reports AI model, circuit breaker and database status. The
// service stays healthy without AI because the rule path serves every
// analysis; an unreachable database makes it unhealthy.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.Services.Config.Observability.HealthCheck.Timeout)
	defer cancel()

	response := map[string]any{
		"status":       "healthy",
		"service":      "resumescreen",
		"version":      s.Version,
		"ai_available": s.Services.Screener.AIAvailable(),
		"ai_models":    s.checkAIModelsHealth(ctx),
	}
	status := http.StatusOK

	if p, ok := s.Services.Store.(pinger); ok {
		if err := p.Ping(ctx); err != nil {
			response["status"] = "unhealthy"
			response["database"] = map[string]any{"healthy": false, "error": err.Error()}
			status = http.StatusServiceUnavailable
		} else {
			response["database"] = map[string]any{"healthy": true}
		}
	}

	writeJSON(w, status, response)
}

// checkAIModelsHealth reports each AI operation's backend, model availability
// and circuit breaker state
func (s *Server) checkAIModelsHealth(ctx context.Context) map[string]any {
	status := make(map[string]any, len(config.Operations))
	for _, op := range config.Operations {
		backend := s.Services.AI.Backend(op)
		if backend == nil {
			status[op] = map[string]any{"available": false, "error": "no credentials configured"}
			continue
		}

		entry := map[string]any{"available": true, "provider": backend.Name()}
		if checker, ok := backend.(ai.ModelChecker); ok {
			info := checker.ModelInfo(ctx)
			entry["model"] = info
			entry["available"] = info.Available
		}
		if reporter, ok := backend.(breakerReporter); ok {
			entry["circuit_breaker"] = reporter.BreakerStats()
		}
		status[op] = entry
	}
	return status
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"service": "resumescreen",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
			"rank_workers":           s.RankWorkers,
		},
		"screening": map[string]any{
			"ai_available":   s.Services.Screener.AIAvailable(),
			"default_mode":   s.Services.Config.Screening.DefaultMode,
			"batch_cooldown": s.Services.Config.Screening.BatchCooldown.String(),
		},
		"events": map[string]any{
			"webhook_enabled": s.Services.Config.Events.WebhookURL != "",
			"dropped":         s.Services.Events.Dropped(),
		},
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.Stats()
	} else {
		response["rate_limiting"] = RateLimitStats{}
	}

	writeJSON(w, http.StatusOK, response)
}

// parseJSONRequest decodes the body into v and validates its struct tags
func parseJSONRequest(r *http.Request, v any) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "content-type must be application/json", nil)
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if stdErrors.As(err, &maxBytesErr) {
			return errors.NewValidationError(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("request body too large (limit is %d bytes)", maxBytesErr.Limit), nil)
		}
		return errors.NewIOError(errors.ErrCodeFileNotReadable, "failed to read request body", err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat, "failed to parse JSON", err)
	}

	return validateRequest(v)
}

// validateRequest checks validate tags and reports the failing fields
func validateRequest(v any) error {
	err := types.Validator().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !stdErrors.As(err, &verrs) {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "invalid request", err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s failed on '%s'", fe.Namespace(), fe.Tag()))
	}
	return errors.NewValidationError(errors.ErrCodeInvalidRequest,
		"invalid request: "+strings.Join(fields, "; "), nil)
}

// statusForError maps an application error to an HTTP status
func statusForError(err error) int {
	if stdErrors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	appErr, ok := errors.As(err)
	if !ok {
		return http.StatusInternalServerError
	}

	switch appErr.Code {
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupportedFormat:
		return http.StatusUnsupportedMediaType
	case errors.ErrCodeParseFailed:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeMissingAPIKey, errors.ErrCodeAIUnavailable, errors.ErrCodeMaxRetriesExceeded:
		return http.StatusServiceUnavailable
	case errors.ErrCodeAIRateLimited:
		return http.StatusTooManyRequests
	case errors.ErrCodeAIResponseInvalid:
		return http.StatusBadGateway
	}

	switch appErr.Type {
	case errors.ErrorTypeValidation:
		return http.StatusBadRequest
	case errors.ErrorTypeAI, errors.ErrorTypeNetwork:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// writeError writes err as an ErrorResponse with its mapped status
func (s *Server) writeError(w http.ResponseWriter, title string, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		s.Logger.LogError(err, title)
	}

	code, message := "", err.Error()
	if appErr, ok := errors.As(err); ok {
		code, message = appErr.Code, appErr.Message
	}
	writeErrorResponse(w, title, code, message, status)
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, title, code, message string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{Error: title, Code: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent, so an encode failure cannot be reported
	_ = json.NewEncoder(w).Encode(v)
}
