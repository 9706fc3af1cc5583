package inference

import (
	"context"
)

//go:generate mockgen -source=interface.go -destination=../mocks/inference/mock_client.go -package=mock_inference

// Client sends a prompt and an image to a multimodal model and returns its text completion.
// Implementations are created once per process and shared across requests.
type Client interface {
	GenerateContent(ctx context.Context, params GenerateContentRequest) (GenerateContentResponse, error)
}

// GenerateContentRequest holds one prompt with the image it refers to
type GenerateContentRequest struct {
	Prompt   string
	Image    []byte
	MIMEType string
}

type GenerateContentResponse struct {
	Text  string
	Model string
}

const (
	// DefaultMaxRetryAttempts keeps a failed provider call from being repeated.
	DefaultMaxRetryAttempts = 0
)
