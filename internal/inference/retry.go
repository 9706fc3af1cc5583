package inference

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/avast/retry-go"
)

var retryableStatusCodes = []string{"429", "500", "502", "503", "504"}

// isRetryableError determines if an error should trigger a retry
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	errStr := err.Error()
	// Retry on network-related errors
	if strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "connection reset") {
		return true
	}
	// Retry on 5xx errors (server errors) and rate limiting (429).
	// genai reports status codes as "Error 503, Message: ..."
	for _, code := range retryableStatusCodes {
		if strings.Contains(errStr, "response error "+code) || strings.Contains(errStr, "Error "+code+",") {
			return true
		}
	}
	return false
}

// CallWithRetry runs call once, then up to maxRetryAttempts more times on transient errors.
// With maxRetryAttempts == 0 the call is made exactly once.
func CallWithRetry(
	ctx context.Context,
	maxRetryAttempts uint,
	call func(ctx context.Context) (GenerateContentResponse, error),
) (GenerateContentResponse, error) {
	var result GenerateContentResponse
	if err := retry.Do(
		func() error {
			response, err := call(ctx)
			if err != nil {
				if !isRetryableError(err) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			result = response
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(maxRetryAttempts+1),
		retry.LastErrorOnly(true),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			return retry.BackOffDelay(n, err, config)
		}),
	); err != nil {
		return GenerateContentResponse{}, err
	}
	return result, nil
}
