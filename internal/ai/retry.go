package ai

import (
	"context"
	"crypto/rand"
	stdErrors "errors"
	"math"
	"math/big"
	"net"
	"net/http"
	"strings"
	"time"

	"resumescreen/internal/config"
	"resumescreen/internal/errors"

	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

// RetryPolicy retries transient AI failures with exponential backoff
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
	MaxDelay    time.Duration
	// Jitter adds up to this fraction of the delay, drawn from crypto/rand
	Jitter float64

	Retryable func(error) bool
	Sleep     func(ctx context.Context, d time.Duration) error
	Logger    *errors.Logger
}

// NewRetryPolicy builds the policy of an operation. MaxRetries counts retries,
// so the policy makes MaxRetries+1 attempts.
func NewRetryPolicy(cfg config.OperationAIConfig, logger *errors.Logger) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: operationRetries(cfg) + 1,
		BaseDelay:   cfg.Retry.BaseDelay,
		Multiplier:  cfg.Retry.Multiplier,
		MaxDelay:    cfg.Retry.MaxDelay,
		Jitter:      0.1,
		Retryable:   IsTransient,
		Sleep:       SleepContext,
		Logger:      logger,
	}
}

// SleepContext waits for d or until ctx is done
func SleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Delay returns the wait before retry number n (1-based):
// BaseDelay × Multiplier^(n-1), capped at MaxDelay.
func (p RetryPolicy) Delay(n int) time.Duration {
	multiplier := p.Multiplier
	if multiplier < 1 {
		multiplier = 1
	}
	delay := time.Duration(float64(p.BaseDelay) * math.Pow(multiplier, float64(n-1)))

	if p.Jitter > 0 && delay > 0 {
		jitterMax := big.NewInt(int64(float64(delay) * p.Jitter))
		if jitterMax.Sign() > 0 {
			if jitterBig, err := rand.Int(rand.Reader, jitterMax); err == nil {
				delay += time.Duration(jitterBig.Int64())
			}
		}
	}

	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	return delay
}

// Do runs fn until it succeeds, fails with a non-retryable error, or the
// attempt budget runs out. Exhaustion returns a MaxRetriesExceededError
// wrapping the last error.
func (p RetryPolicy) Do(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	attempts := max(p.MaxAttempts, 1)
	retryable := p.Retryable
	if retryable == nil {
		retryable = IsTransient
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = SleepContext
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			if attempt > 1 {
				p.Logger.Info("AI operation succeeded after retry",
					"operation", operation,
					"successful_attempt", attempt)
			}
			return nil
		}
		lastErr = err

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !retryable(err) {
			p.Logger.Debug("Error is not retryable, stopping retry attempts",
				"operation", operation,
				"error", err.Error())
			return err
		}
		if attempt == attempts {
			break
		}

		delay := p.Delay(attempt)
		p.Logger.Warn("Retrying AI operation",
			"operation", operation,
			"attempt", attempt,
			"max_attempts", attempts,
			"delay", delay,
			"error", err.Error())
		if err := sleep(ctx, delay); err != nil {
			return err
		}
	}

	p.Logger.LogError(lastErr, "AI operation failed after all retry attempts",
		"operation", operation,
		"total_attempts", attempts)
	return errors.NewMaxRetriesExceededError(attempts, lastErr).WithContext("operation", operation)
}

var transientMarkers = []string{"rate limit", "429", "unavailable", "503", "overloaded"}

// IsTransient reports whether err is a rate limit or service outage worth retrying
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if stdErrors.Is(err, context.Canceled) || stdErrors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.IsTransient(err) {
		return true
	}
	if isTransientStatus(statusCode(err)) {
		return true
	}

	var netErr net.Error
	if stdErrors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func isTransientStatus(code int) bool {
	return code == http.StatusTooManyRequests || code == http.StatusServiceUnavailable
}

// statusCode extracts an HTTP status from Gemini and Google API errors, or 0
func statusCode(err error) int {
	var apiErr *googleapi.Error
	if stdErrors.As(err, &apiErr) {
		return apiErr.Code
	}
	var genaiErr genai.APIError
	if stdErrors.As(err, &genaiErr) {
		return genaiErr.Code
	}
	var genaiErrPtr *genai.APIError
	if stdErrors.As(err, &genaiErrPtr) && genaiErrPtr != nil {
		return genaiErrPtr.Code
	}
	return 0
}

// classifyBackendError maps a raw backend failure onto the error taxonomy
func classifyBackendError(err error, code int, message string) error {
	if err != nil && code == 0 {
		code = statusCode(err)
	}
	lower := strings.ToLower(message)
	if err != nil {
		lower += " " + strings.ToLower(err.Error())
	}

	switch {
	case code == http.StatusTooManyRequests || strings.Contains(lower, "rate limit") || strings.Contains(lower, "429"):
		return errors.NewRateLimitError(message, err)
	case code == http.StatusServiceUnavailable || strings.Contains(lower, "unavailable") ||
		strings.Contains(lower, "503") || strings.Contains(lower, "overloaded"):
		return errors.NewServiceUnavailableError(message, err)
	default:
		return errors.NewAIError(errors.ErrCodeAIServiceFailed, message, err)
	}
}
