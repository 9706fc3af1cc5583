package inference

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
)

const defaultCircuitBreakerTimeout = 30 * time.Second

// CircuitBreakerClient fails fast once the wrapped provider has failed
// MaxFailures times in a row, until the breaker half-opens again.
type CircuitBreakerClient struct {
	inner   Client
	breaker *gobreaker.CircuitBreaker[GenerateContentResponse]
}

func NewCircuitBreakerClient(inner Client, name string, maxFailures uint32, timeout time.Duration) *CircuitBreakerClient {
	if timeout == 0 {
		timeout = defaultCircuitBreakerTimeout
	}

	breaker := gobreaker.NewCircuitBreaker[GenerateContentResponse](gobreaker.Settings{
		Name:        "inference:" + name,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Default().Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
		IsSuccessful: func(err error) bool {
			// a cancelled request says nothing about the provider
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return &CircuitBreakerClient{
		inner:   inner,
		breaker: breaker,
	}
}

func (client *CircuitBreakerClient) GenerateContent(ctx context.Context, params GenerateContentRequest) (GenerateContentResponse, error) {
	response, err := client.breaker.Execute(func() (GenerateContentResponse, error) {
		return client.inner.GenerateContent(ctx, params)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return GenerateContentResponse{}, fmt.Errorf("provider circuit open: %w", err)
		}
		return GenerateContentResponse{}, err
	}
	return response, nil
}

// State returns the current breaker state
func (client *CircuitBreakerClient) State() gobreaker.State {
	return client.breaker.State()
}

var _ Client = (*CircuitBreakerClient)(nil)
