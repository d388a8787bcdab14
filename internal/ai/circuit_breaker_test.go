package ai

import (
	"fmt"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"google.golang.org/genai"

	"atsresume/internal/config"
)

func breakerConfig() config.CircuitBreakerConfig {
	return config.CircuitBreakerConfig{
		Enabled:          true,
		MaxRequests:      1,
		Interval:         60 * time.Second,
		Timeout:          60 * time.Second,
		MinRequests:      3,
		FailureThreshold: 0.6,
	}
}

func TestCircuitBreakerStats(t *testing.T) {
	cb := NewCircuitBreaker("gemini", breakerConfig(), nil)
	if cb == nil {
		t.Fatal("Circuit breaker should not be nil")
	}

	stats := cb.Stats()
	if name, _ := stats["name"].(string); name != "generator-gemini" {
		t.Errorf("Expected circuit breaker name 'generator-gemini', got '%v'", stats["name"])
	}
	if state, _ := stats["state"].(string); state != "closed" {
		t.Errorf("Expected initial state 'closed', got '%v'", stats["state"])
	}
	if enabled, _ := stats["enabled"].(bool); !enabled {
		t.Error("Circuit breaker should be enabled")
	}
	if !cb.IsHealthy() {
		t.Error("Circuit breaker should be healthy initially")
	}
}

func TestCircuitBreakerTrips(t *testing.T) {
	cb := NewCircuitBreaker("gemini", breakerConfig(), nil)
	failing := func() (*genai.GenerateContentResponse, error) {
		return nil, fmt.Errorf("provider down")
	}

	for i := 0; i < 3; i++ {
		if _, err := cb.Execute(failing); err == nil {
			t.Fatalf("call %d: expected provider error", i)
		}
	}

	if cb.IsHealthy() {
		t.Fatal("Circuit breaker should be open after repeated failures")
	}

	calls := 0
	_, err := cb.Execute(func() (*genai.GenerateContentResponse, error) {
		calls++
		return &genai.GenerateContentResponse{}, nil
	})
	if err != gobreaker.ErrOpenState {
		t.Errorf("Expected ErrOpenState, got %v", err)
	}
	if calls != 0 {
		t.Errorf("Open breaker should not invoke the call, got %d invocations", calls)
	}
}

func TestCircuitBreakerDisabled(t *testing.T) {
	cfg := breakerConfig()
	cfg.Enabled = false

	cb := NewCircuitBreaker("disabled", cfg, nil)
	if cb != nil {
		t.Fatal("Circuit breaker should be nil when disabled")
	}

	resp, err := cb.Execute(func() (*genai.GenerateContentResponse, error) {
		return &genai.GenerateContentResponse{}, nil
	})
	if err != nil || resp == nil {
		t.Errorf("Nil breaker should pass calls through, got %v, %v", resp, err)
	}
	if enabled, _ := cb.Stats()["enabled"].(bool); enabled {
		t.Error("Nil breaker should report disabled")
	}
	if !cb.IsHealthy() {
		t.Error("Nil breaker should report healthy")
	}
}
