// Package provider builds the configured inference client.
package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/at-ishikawa/inkcalc/internal/config"
	"github.com/at-ishikawa/inkcalc/internal/inference"
	"github.com/at-ishikawa/inkcalc/internal/inference/gemini"
	"github.com/at-ishikawa/inkcalc/internal/inference/openai"
)

var ErrMissingAPIKey = errors.New("provider credential is not set")

// New creates the client once per process. The returned close function releases its resources.
func New(ctx context.Context, cfg *config.Config) (inference.Client, func() error, error) {
	retries := cfg.Inference.MaxRetryAttempts

	var client inference.Client
	closeFunc := func() error { return nil }

	switch cfg.Inference.Provider {
	case config.ProviderOpenAI:
		if cfg.OpenAI.APIKey == "" {
			return nil, nil, fmt.Errorf("OPENAI_API_KEY environment variable is required: %w", ErrMissingAPIKey)
		}
		openaiClient := openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL, retries)
		client = openaiClient
		closeFunc = openaiClient.Close
		slog.Default().Info("Using OpenAI provider", "model", openaiClient.GetModel())
	case config.ProviderGemini, "":
		if cfg.Gemini.APIKey == "" {
			return nil, nil, fmt.Errorf("GEMINI_API_KEY environment variable is required: %w", ErrMissingAPIKey)
		}
		geminiClient, err := gemini.NewClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, retries)
		if err != nil {
			return nil, nil, fmt.Errorf("gemini.NewClient() > %w", err)
		}
		client = geminiClient
		slog.Default().Info("Using Gemini provider", "model", geminiClient.GetModel())
	default:
		return nil, nil, fmt.Errorf("unknown provider %q", cfg.Inference.Provider)
	}

	if breaker := cfg.Inference.CircuitBreaker; breaker.MaxFailures > 0 {
		client = inference.NewCircuitBreakerClient(client, cfg.Inference.Provider, breaker.MaxFailures, breaker.Timeout)
	}
	return client, closeFunc, nil
}
