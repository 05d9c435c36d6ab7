package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"isthatstilltrue/internal/config"
)

type scriptedProvider struct {
	calls    int
	failures int
	response string
}

func (s *scriptedProvider) Name() string { return "scripted" }

func (s *scriptedProvider) GenerateText(ctx context.Context, prompt string, opts Options) (string, error) {
	s.calls++
	if s.calls <= s.failures {
		return "", fmt.Errorf("transient failure %d", s.calls)
	}
	return s.response, nil
}

func TestCalculateBackoff(t *testing.T) {
	base := 100 * time.Millisecond

	if got := CalculateBackoff(base, 0); got != 0 {
		t.Errorf("attempt 0: expected no delay, got %v", got)
	}

	for attempt := 1; attempt <= 5; attempt++ {
		expected := base * time.Duration(1<<uint(attempt))
		got := CalculateBackoff(base, attempt)
		min := expected - expected/4
		max := expected + expected/4
		if got < min || got > max {
			t.Errorf("attempt %d: backoff %v outside jitter range [%v, %v]", attempt, got, min, max)
		}
	}
}

func TestCalculateBackoffCap(t *testing.T) {
	got := CalculateBackoff(time.Second, 20)
	// 30s cap plus 25% jitter headroom
	if got > 38*time.Second {
		t.Errorf("expected backoff capped near 30s, got %v", got)
	}
}

func TestRetryingProviderSucceedsAfterRetry(t *testing.T) {
	inner := &scriptedProvider{failures: 2, response: "hello"}
	p := WithRetry(inner, time.Second, 2, time.Millisecond)

	text, err := p.GenerateText(context.Background(), "prompt", Options{})
	if err != nil {
		t.Fatalf("expected success after retries, got error: %v", err)
	}
	if text != "hello" {
		t.Errorf("expected 'hello', got %q", text)
	}
	if inner.calls != 3 {
		t.Errorf("expected 3 calls, got %d", inner.calls)
	}
}

func TestRetryingProviderExhaustsRetries(t *testing.T) {
	inner := &scriptedProvider{failures: 10}
	p := WithRetry(inner, time.Second, 2, time.Millisecond)

	_, err := p.GenerateText(context.Background(), "prompt", Options{})
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if inner.calls != 3 {
		t.Errorf("expected 3 calls (initial + 2 retries), got %d", inner.calls)
	}
}

func TestRetryingProviderRespectsCancellation(t *testing.T) {
	inner := &scriptedProvider{failures: 10}
	p := WithRetry(inner, time.Second, 5, 10*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.GenerateText(ctx, "prompt", Options{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestNewProviderRejectsUnknown(t *testing.T) {
	_, err := NewProvider(config.AI{Provider: "mystery"})
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestNewProviderRequiresAPIKey(t *testing.T) {
	if _, err := NewProvider(config.AI{Provider: "openai"}); err == nil {
		t.Error("expected error for openai provider without API key")
	}
}
