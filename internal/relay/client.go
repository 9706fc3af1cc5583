// Package relay is the canvas side client of the drawing relay.
package relay

import (
	"context"
	"fmt"

	"resty.dev/v3"

	"github.com/at-ishikawa/inkcalc/internal/drawing"
)

type Client struct {
	httpClient *resty.Client
}

func NewClient(baseURL string) *Client {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetHeader("Content-Type", "application/json")

	return &Client{
		httpClient: client,
	}
}

func (client *Client) Close() error {
	return client.httpClient.Close()
}

// Submit posts a drawing and returns the relay's envelope.
// Rejections by the relay come back as a non-success envelope with a nil error;
// an error means no envelope could be read.
func (client *Client) Submit(ctx context.Context, request drawing.Request) (drawing.Response, error) {
	response, err := client.httpClient.R().
		SetContext(ctx).
		SetBody(request).
		SetResult(&drawing.Response{}).
		SetError(&drawing.Response{}).
		Post(drawing.Path)
	if err != nil {
		return drawing.Response{}, fmt.Errorf("httpClient.Post > %w", err)
	}

	var envelope *drawing.Response
	if response.IsError() {
		envelope, _ = response.Error().(*drawing.Response)
	} else {
		envelope, _ = response.Result().(*drawing.Response)
	}
	if envelope == nil || envelope.Status == "" {
		return drawing.Response{}, fmt.Errorf("unexpected response %d: %s", response.StatusCode(), response.String())
	}
	return *envelope, nil
}
