package ai

import (
	"fmt"
	"testing"
	"time"

	"resumescreen/internal/config"

	"github.com/sony/gobreaker/v2"
)

func testBreakerConfig() config.CircuitBreakerConfig {
	return config.CircuitBreakerConfig{
		Enabled:          true,
		MaxRequests:      1,
		Interval:         60 * time.Second,
		Timeout:          60 * time.Second,
		MinRequests:      3,
		FailureThreshold: 0.6,
	}
}

func TestIndependentBreakers(t *testing.T) {
	analyzeCB := NewBreaker[string]("analyze", testBreakerConfig(), nil)
	compareCB := NewBreaker[string]("compare", testBreakerConfig(), nil)

	t.Run("Names", func(t *testing.T) {
		for expected, cb := range map[string]*Breaker[string]{"AI-analyze": analyzeCB, "AI-compare": compareCB} {
			stats := cb.Stats()
			name, ok := stats["name"].(string)
			if !ok {
				t.Fatal("Circuit breaker name not found")
			}
			if name != expected {
				t.Errorf("Expected circuit breaker name '%s', got '%s'", expected, name)
			}
			if state := stats["state"]; state != "closed" {
				t.Errorf("Expected initial state 'closed', got '%v'", state)
			}
		}
	})

	t.Run("TrippingOneLeavesTheOtherClosed", func(t *testing.T) {
		for range 3 {
			_, _ = analyzeCB.Execute(func() (string, error) { return "", fmt.Errorf("boom") })
		}

		if analyzeCB.IsHealthy() {
			t.Error("Analyze circuit breaker should be open after repeated failures")
		}
		if !compareCB.IsHealthy() {
			t.Error("Compare circuit breaker should still be closed")
		}

		_, err := analyzeCB.Execute(func() (string, error) { return "ok", nil })
		if err != gobreaker.ErrOpenState {
			t.Errorf("Expected open state error, got %v", err)
		}
	})
}

func TestBreakerBelowMinRequests(t *testing.T) {
	cb := NewBreaker[string]("min", testBreakerConfig(), nil)

	for range 2 {
		_, _ = cb.Execute(func() (string, error) { return "", fmt.Errorf("boom") })
	}
	if !cb.IsHealthy() {
		t.Error("Circuit breaker should not trip before MinRequests")
	}
}

func TestBreakerDisabled(t *testing.T) {
	cfg := testBreakerConfig()
	cfg.Enabled = false

	cb := NewBreaker[string]("disabled", cfg, nil)
	if cb != nil {
		t.Fatal("Circuit breaker should be nil when disabled")
	}

	// A nil breaker runs calls directly
	got, err := cb.Execute(func() (string, error) { return "direct", nil })
	if err != nil || got != "direct" {
		t.Errorf("Expected direct execution, got %q, %v", got, err)
	}
	if !cb.IsHealthy() {
		t.Error("A disabled breaker should report healthy")
	}
	if enabled := cb.Stats()["enabled"]; enabled != false {
		t.Errorf("Expected enabled=false, got %v", enabled)
	}
}
