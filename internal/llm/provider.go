// Package llm provides clients for the external AI text-generation gateways.
// The gateway is treated as an opaque capability: generate text given a
// prompt, fallibly, with latency.
package llm

import (
	"context"
	"fmt"
	"time"

	"isthatstilltrue/internal/config"
)

// Options contains per-call options for text generation.
type Options struct {
	Model       string  // Model override (optional, defaults to the provider's model)
	Temperature float32 // Randomness (0.0 to 1.0)
	MaxTokens   int32   // Maximum number of tokens to generate, 0 means provider default
}

// Provider generates text from a prompt.
type Provider interface {
	GenerateText(ctx context.Context, prompt string, opts Options) (string, error)
	Name() string
}

// NewProvider creates the provider selected by configuration.
func NewProvider(cfg config.AI) (Provider, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGeminiProvider(cfg.Gemini)
	case "openai":
		return NewOpenAIProvider(cfg.OpenAI)
	default:
		return nil, fmt.Errorf("unknown AI provider: %s", cfg.Provider)
	}
}

// RetryingProvider wraps a Provider with per-call timeouts and capped
// exponential backoff. Retries cover transport and HTTP failures; a canceled
// context aborts immediately.
type RetryingProvider struct {
	inner      Provider
	timeout    time.Duration
	maxRetries int
	baseDelay  time.Duration
}

// WithRetry wraps the provider with retry behavior.
func WithRetry(inner Provider, timeout time.Duration, maxRetries int, baseDelay time.Duration) *RetryingProvider {
	return &RetryingProvider{
		inner:      inner,
		timeout:    timeout,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
	}
}

// Name returns the wrapped provider's name.
func (r *RetryingProvider) Name() string {
	return r.inner.Name()
}

// GenerateText calls the wrapped provider, retrying failed calls with
// exponential backoff until the retry cap is exhausted.
func (r *RetryingProvider) GenerateText(ctx context.Context, prompt string, opts Options) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(CalculateBackoff(r.baseDelay, attempt)):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, r.timeout)
		text, err := r.inner.GenerateText(callCtx, prompt, opts)
		cancel()

		if err == nil {
			return text, nil
		}
		lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)

		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}

	return "", fmt.Errorf("generation failed after %d attempts: %w", r.maxRetries+1, lastErr)
}
