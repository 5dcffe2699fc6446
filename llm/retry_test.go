package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastRetryConfig(maxRetries int) RetryConfig {
	return RetryConfig{
		MaxRetries:    maxRetries,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2.0,
	}
}

func TestExecuteSucceedsAfterRetries(t *testing.T) {
	r := NewRetrier(fastRetryConfig(3))

	attempts := 0
	result, err := Execute(r, context.Background(), func(ctx context.Context, attempt int) (string, error) {
		attempts++
		if attempts < 3 {
			return "", NewLLMError(ProviderOpenAI, ErrorTypeRateLimit, "slow down")
		}
		return "done", nil
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result != "done" {
		t.Errorf("result = %q", result)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestExecuteStopsOnTerminalError(t *testing.T) {
	r := NewRetrier(fastRetryConfig(3))

	attempts := 0
	_, err := Execute(r, context.Background(), func(ctx context.Context, attempt int) (string, error) {
		attempts++
		return "", NewLLMError(ProviderOpenAI, ErrorTypeAuthentication, "bad key")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 for terminal error", attempts)
	}
	if !IsAuthenticationError(err) {
		t.Errorf("error should remain an authentication LLMError, got %v", err)
	}
}

func TestExecuteExhaustsRetries(t *testing.T) {
	r := NewRetrier(fastRetryConfig(2))

	attempts := 0
	_, err := Execute(r, context.Background(), func(ctx context.Context, attempt int) (string, error) {
		attempts++
		return "", NewLLMError(ProviderOpenAI, ErrorTypeServerError, "boom")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3 (initial + 2 retries)", attempts)
	}

	var llmErr *LLMError
	if !errors.As(err, &llmErr) {
		t.Error("exhaustion error should wrap the last LLMError")
	}
}

func TestExecuteRespectsContextCancellation(t *testing.T) {
	r := NewRetrier(RetryConfig{
		MaxRetries:    5,
		InitialDelay:  time.Hour, // would block forever without cancellation
		MaxDelay:      time.Hour,
		BackoffFactor: 2.0,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := Execute(r, ctx, func(ctx context.Context, attempt int) (string, error) {
		return "", NewLLMError(ProviderOpenAI, ErrorTypeTimeout, "timeout")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestExecuteRetriesConfiguredErrorStrings(t *testing.T) {
	cfg := fastRetryConfig(2)
	cfg.RetryableErrors = []string{"temporary glitch"}
	r := NewRetrier(cfg)

	attempts := 0
	result, err := Execute(r, context.Background(), func(ctx context.Context, attempt int) (int, error) {
		attempts++
		if attempts == 1 {
			return 0, errors.New("a temporary glitch occurred")
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result != 42 || attempts != 2 {
		t.Errorf("result = %d, attempts = %d", result, attempts)
	}
}

func TestCalculateDelayHonorsRetryAfter(t *testing.T) {
	r := NewRetrier(fastRetryConfig(3))

	err := NewLLMError(ProviderOpenAI, ErrorTypeRateLimit, "slow down")
	err.RetryAfter = 7

	if d := r.calculateDelay(0, err); d != 7*time.Second {
		t.Errorf("delay = %v, want 7s", d)
	}
}

func TestCalculateDelayClampsToMax(t *testing.T) {
	cfg := RetryConfig{
		MaxRetries:    10,
		InitialDelay:  time.Second,
		MaxDelay:      3 * time.Second,
		BackoffFactor: 2.0,
	}
	r := NewRetrier(cfg)

	plain := errors.New("x")
	for attempt := 0; attempt < 10; attempt++ {
		d := r.calculateDelay(attempt, plain)
		if d > cfg.MaxDelay {
			t.Errorf("attempt %d: delay %v exceeds max %v", attempt, d, cfg.MaxDelay)
		}
		if d < cfg.InitialDelay {
			t.Errorf("attempt %d: delay %v below initial %v", attempt, d, cfg.InitialDelay)
		}
	}
}
