package errors

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeAI         ErrorType = "ai"
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeParse      ErrorType = "parse"
	ErrorTypeStorage    ErrorType = "storage"
	ErrorTypeInternal   ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type    ErrorType      `json:"type"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Cause   error          `json:"cause,omitempty"`
	Context map[string]any `json:"context,omitempty"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// newAppError is an unexported helper to create AppError instances
func newAppError(typ ErrorType, code, message string, cause error) *AppError {
	return &AppError{
		Type:    typ,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Error constructors for different types
func NewValidationError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeValidation, code, message, cause)
}

func NewIOError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeIO, code, message, cause)
}

func NewAIError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeAI, code, message, cause)
}

func NewNetworkError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeNetwork, code, message, cause)
}

func NewConfigError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeConfig, code, message, cause)
}

func NewStorageError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeStorage, code, message, cause)
}

func NewInternalError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeInternal, code, message, cause)
}

// NewConfigurationError reports that the AI path was attempted without credentials
func NewConfigurationError(message string) *AppError {
	return newAppError(ErrorTypeConfig, ErrCodeMissingAPIKey, message, nil)
}

// NewParseError reports that text could not be extracted from a resume file
func NewParseError(message string, cause error) *AppError {
	return newAppError(ErrorTypeParse, ErrCodeParseFailed, message, cause)
}

// NewUnsupportedFormatError reports a document type the extractor cannot read
func NewUnsupportedFormatError(mimeType string) *AppError {
	return newAppError(ErrorTypeValidation, ErrCodeUnsupportedFormat,
		fmt.Sprintf("Unsupported document format: %s", mimeType), nil).
		WithContext("mime_type", mimeType)
}

// NewAIResponseError reports an AI reply that is not usable JSON
func NewAIResponseError(message string, cause error) *AppError {
	return newAppError(ErrorTypeAI, ErrCodeAIResponseInvalid, message, cause)
}

// NewRateLimitError reports a transient rate limit from the AI backend
func NewRateLimitError(message string, cause error) *AppError {
	return newAppError(ErrorTypeAI, ErrCodeAIRateLimited, message, cause)
}

// NewServiceUnavailableError reports a transient outage of the AI backend
func NewServiceUnavailableError(message string, cause error) *AppError {
	return newAppError(ErrorTypeAI, ErrCodeAIUnavailable, message, cause)
}

// NewMaxRetriesExceededError wraps the last error seen after the retry budget ran out
func NewMaxRetriesExceededError(attempts int, cause error) *AppError {
	return newAppError(ErrorTypeAI, ErrCodeMaxRetriesExceeded,
		fmt.Sprintf("AI operation failed after %d attempts", attempts), cause).
		WithContext("attempts", attempts)
}

// WithContext adds context to an error
func (e *AppError) WithContext(key string, value any) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// As finds the first AppError in err's chain
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether any AppError in err's chain carries code
func HasCode(err error, code string) bool {
	for err != nil {
		var appErr *AppError
		if !errors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Cause
	}
	return false
}

func IsConfiguration(err error) bool { return HasCode(err, ErrCodeMissingAPIKey) }

func IsParse(err error) bool { return HasCode(err, ErrCodeParseFailed) }

func IsUnsupportedFormat(err error) bool { return HasCode(err, ErrCodeUnsupportedFormat) }

func IsAIResponse(err error) bool { return HasCode(err, ErrCodeAIResponseInvalid) }

func IsMaxRetriesExceeded(err error) bool { return HasCode(err, ErrCodeMaxRetriesExceeded) }

// IsTransient reports whether err is a rate limit or service unavailable error
func IsTransient(err error) bool {
	return HasCode(err, ErrCodeAIRateLimited) || HasCode(err, ErrCodeAIUnavailable)
}

// IsValidation reports whether err is a validation error
func IsValidation(err error) bool {
	appErr, ok := As(err)
	return ok && appErr.Type == ErrorTypeValidation
}

// Logger wraps slog with application-specific methods
type Logger struct {
	logger *slog.Logger
}

// NewLogger creates a new structured logger
func NewLogger(level slog.Level) *Logger {
	return NewLoggerWithWriter(os.Stdout, level)
}

// NewLoggerWithWriter creates a structured logger writing JSON to w
func NewLoggerWithWriter(w io.Writer, level slog.Level) *Logger {
	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := slog.NewJSONHandler(w, opts)
	logger := slog.New(handler)

	return &Logger{logger: logger}
}

// NewNopLogger returns a logger that discards everything
func NewNopLogger() *Logger {
	return NewLoggerWithWriter(io.Discard, slog.LevelError)
}

// LogError logs an application error with appropriate level and context
func (l *Logger) LogError(err error, message string, args ...any) {
	if l == nil {
		return
	}
	if appErr, ok := As(err); ok {
		logArgs := []any{
			"error_type", appErr.Type,
			"error_code", appErr.Code,
			"error_message", appErr.Message,
		}

		for key, value := range appErr.Context {
			logArgs = append(logArgs, key, value)
		}
		if appErr.Cause != nil {
			logArgs = append(logArgs, "cause", appErr.Cause.Error())
		}

		logArgs = append(logArgs, args...)

		l.logger.Error(message, logArgs...)
	} else {
		logArgs := append([]any{"error", err.Error()}, args...)
		l.logger.Error(message, logArgs...)
	}
}

func (l *Logger) Info(message string, args ...any) {
	if l == nil {
		return
	}
	l.logger.Info(message, args...)
}

func (l *Logger) Debug(message string, args ...any) {
	if l == nil {
		return
	}
	l.logger.Debug(message, args...)
}

func (l *Logger) Warn(message string, args ...any) {
	if l == nil {
		return
	}
	l.logger.Warn(message, args...)
}

// With returns a logger that always includes the given attributes
func (l *Logger) With(args ...any) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{logger: l.logger.With(args...)}
}

// New creates a new logger instance
func New(level string) (*Logger, error) {
	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "info":
		slogLevel = slog.LevelInfo
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	return NewLogger(slogLevel), nil
}

// Common error codes
const (
	ErrCodeFileNotFound       = "FILE_NOT_FOUND"
	ErrCodeFileNotReadable    = "FILE_NOT_READABLE"
	ErrCodeInvalidFormat      = "INVALID_FORMAT"
	ErrCodeUnsupportedFormat  = "UNSUPPORTED_FORMAT"
	ErrCodeParseFailed        = "RESUME_PARSE_FAILED"
	ErrCodeAIServiceFailed    = "AI_SERVICE_FAILED"
	ErrCodeAIResponseInvalid  = "AI_RESPONSE_INVALID"
	ErrCodeAIRateLimited      = "AI_RATE_LIMITED"
	ErrCodeAIUnavailable      = "AI_UNAVAILABLE"
	ErrCodeMaxRetriesExceeded = "AI_MAX_RETRIES_EXCEEDED"
	ErrCodeAITimeout          = "AI_TIMEOUT"
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeMissingAPIKey      = "MISSING_API_KEY"
	ErrCodeNetworkTimeout     = "NETWORK_TIMEOUT"
	ErrCodeInvalidConfig      = "INVALID_CONFIG"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeStorageFailed      = "STORAGE_FAILED"
)
