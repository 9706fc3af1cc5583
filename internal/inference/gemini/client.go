package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/at-ishikawa/inkcalc/internal/inference"
	"google.golang.org/genai"
)

const DefaultModel = "gemini-1.5-flash"

type Client struct {
	genaiClient      *genai.Client
	model            string
	maxRetryAttempts uint
}

// Option customizes the underlying genai client
type Option func(config *genai.ClientConfig)

// WithBaseURL points the client at another endpoint, such as a local test server
func WithBaseURL(baseURL string) Option {
	return func(config *genai.ClientConfig) {
		config.HTTPOptions.BaseURL = baseURL
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(config *genai.ClientConfig) {
		config.HTTPClient = httpClient
	}
}

func NewClient(ctx context.Context, apiKey, model string, retryAttempts uint, opts ...Option) (*Client, error) {
	if model == "" {
		model = DefaultModel
	}

	config := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	for _, opt := range opts {
		opt(config)
	}

	genaiClient, err := genai.NewClient(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient > %w", err)
	}
	return &Client{
		genaiClient:      genaiClient,
		model:            model,
		maxRetryAttempts: retryAttempts,
	}, nil
}

// GetModel returns the model name configured for this client
func (client Client) GetModel() string {
	return client.model
}

// GenerateContent implements the inference.Client interface
func (client *Client) GenerateContent(
	ctx context.Context,
	params inference.GenerateContentRequest,
) (inference.GenerateContentResponse, error) {
	return inference.CallWithRetry(ctx, client.maxRetryAttempts, func(ctx context.Context) (inference.GenerateContentResponse, error) {
		return client.generateContent(ctx, params)
	})
}

func (client *Client) generateContent(
	ctx context.Context,
	params inference.GenerateContentRequest,
) (inference.GenerateContentResponse, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(params.Prompt),
			genai.NewPartFromBytes(params.Image, params.MIMEType),
		}, genai.RoleUser),
	}

	response, err := client.genaiClient.Models.GenerateContent(ctx, client.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return inference.GenerateContentResponse{}, fmt.Errorf("Models.GenerateContent > %w", err)
	}
	if response == nil || len(response.Candidates) == 0 {
		return inference.GenerateContentResponse{}, errors.New("empty response candidates")
	}

	text := response.Text()
	slog.Default().Debug("gemini response content",
		"model", client.model,
		"finishReason", response.Candidates[0].FinishReason,
		"content", text,
	)
	return inference.GenerateContentResponse{
		Text:  text,
		Model: client.model,
	}, nil
}
