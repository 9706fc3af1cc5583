// Package server provides the HTTP relay between the canvas and the inference provider.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/at-ishikawa/inkcalc/internal/drawing"
	"github.com/at-ishikawa/inkcalc/internal/inference"
	"github.com/at-ishikawa/inkcalc/internal/tracer"
)

const maxRequestBodyBytes = 20 << 20

// DrawingHandler serves POST /api/drawing.
// It holds no per-request state; the provider client is shared.
type DrawingHandler struct {
	client        inference.Client
	prompt        *inference.Prompt
	minImageBytes int
	timeout       time.Duration
}

// NewDrawingHandler creates a DrawingHandler. A nil prompt uses the built-in one,
// and a zero timeout leaves the provider call unbounded.
func NewDrawingHandler(client inference.Client, prompt *inference.Prompt, minImageBytes int, timeout time.Duration) *DrawingHandler {
	if prompt == nil {
		prompt = inference.DefaultPrompt()
	}
	return &DrawingHandler{
		client:        client,
		prompt:        prompt,
		minImageBytes: minImageBytes,
		timeout:       timeout,
	}
}

func (h *DrawingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.StartSpan(r.Context(), "DrawingHandler.ServeHTTP")
	defer span.End()

	defer func() {
		if recovered := recover(); recovered != nil {
			err := fmt.Errorf("panic: %v", recovered)
			tracer.RecordError(span, err)
			slog.Default().Error("Error processing request",
				"requestID", RequestIDFromContext(ctx),
				"error", err)
			writeJSON(w, http.StatusInternalServerError, drawing.Response{
				Message: "Error processing request",
				Error:   err.Error(),
				Status:  drawing.StatusError,
			})
		}
	}()

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	status, response := h.process(ctx, r)
	if response.IsSuccess() {
		tracer.SetOK(span)
	}
	span.SetAttributes(attribute.Int("http.status_code", status))
	writeJSON(w, status, response)
}

func (h *DrawingHandler) process(ctx context.Context, r *http.Request) (int, drawing.Response) {
	logger := slog.Default().With("requestID", RequestIDFromContext(ctx))

	var request drawing.Request
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	if err := decoder.Decode(&request); err != nil {
		logger.Error("Invalid request body", "error", err)
		return http.StatusBadRequest, drawing.Response{
			Message: "Invalid request body",
			Error:   err.Error(),
			Status:  drawing.StatusError,
		}
	}

	image, err := drawing.ValidateImage(request.Image, h.minImageBytes)
	if err != nil {
		logger.Error("Invalid or empty image data received", "error", err)
		return http.StatusBadRequest, drawing.Response{
			Message: "Invalid image data",
			Error:   "The image appears to be empty or invalid",
			Status:  drawing.StatusError,
		}
	}

	prompt, err := h.prompt.Build(request.DictOfVars)
	if err != nil {
		return internalError(logger, "prompt.Build", err)
	}

	callCtx := ctx
	if h.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	spanCtx, span := tracer.StartSpan(callCtx, "inference.GenerateContent")
	span.SetAttributes(
		attribute.String("image.mime_type", image.MIMEType),
		attribute.Int("image.bytes", len(image.Data)),
		attribute.Int("variables", len(request.DictOfVars)),
	)
	completion, err := h.client.GenerateContent(spanCtx, inference.GenerateContentRequest{
		Prompt:   prompt,
		Image:    image.Data,
		MIMEType: image.MIMEType,
	})
	if err != nil {
		tracer.RecordError(span, err)
		span.End()
		return internalError(logger, "client.GenerateContent", err)
	}
	span.End()

	results, err := inference.ParseResults(completion.Text)
	if err != nil {
		logger.Error("Error parsing provider response",
			"model", completion.Model,
			"completion", completion.Text,
			"error", err)
		return http.StatusBadRequest, drawing.Response{
			Message: "Error processing response",
			Error:   "Invalid response format",
			Status:  drawing.StatusError,
		}
	}

	logger.Info("Image processed",
		"model", completion.Model,
		"results", len(results))
	return http.StatusOK, drawing.Response{
		Message: "Image processed",
		Data:    results,
		Status:  drawing.StatusSuccess,
	}
}

func internalError(logger *slog.Logger, operation string, err error) (int, drawing.Response) {
	logger.Error("Error processing request", "operation", operation, "error", err)
	return http.StatusInternalServerError, drawing.Response{
		Message: "Error processing request",
		Error:   err.Error(),
		Status:  drawing.StatusError,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Default().Error("failed to write response", "error", err)
	}
}
