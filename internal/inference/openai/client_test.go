package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/at-ishikawa/inkcalc/internal/inference"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"resty.dev/v3"
)

func newCompletion(content string) ChatCompletionResponse {
	return ChatCompletionResponse{
		ID:      "chatcmpl-123",
		Object:  "chat.completion",
		Created: 1677652288,
		Model:   "gpt-4o-mini",
		Choices: []Choice{
			{
				Index: 0,
				Message: ChoiceMessage{
					Role:    RoleAssistant,
					Content: content,
				},
				FinishReason: "stop",
			},
		},
		Usage: Usage{
			PromptTokens:     100,
			CompletionTokens: 20,
			TotalTokens:      120,
		},
	}
}

func TestClient_GenerateContent(t *testing.T) {
	request := inference.GenerateContentRequest{
		Prompt:   "solve this",
		Image:    []byte{0xff, 0xd8, 0xff},
		MIMEType: "image/jpeg",
	}

	tests := []struct {
		name              string
		maxRetryAttempts  uint
		mockServerHandler func(t *testing.T, calls int32, w http.ResponseWriter, r *http.Request)

		wantResponse    inference.GenerateContentResponse
		wantCalls       int32
		wantError       bool
		wantErrorString string
	}{
		{
			name: "Success sends prompt and image as one user message",
			mockServerHandler: func(t *testing.T, calls int32, w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/chat/completions", r.URL.Path)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

				var reqBody ChatCompletionRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
				assert.Equal(t, "gpt-4o-mini", reqBody.Model)
				require.Len(t, reqBody.Messages, 1)
				assert.Equal(t, RoleUser, reqBody.Messages[0].Role)
				assert.Equal(t, []ContentPart{
					{Type: ContentPartTypeText, Text: "solve this"},
					{Type: ContentPartTypeImageURL, ImageURL: &ImageURL{URL: "data:image/jpeg;base64,/9j/"}},
				}, reqBody.Messages[0].Content)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				json.NewEncoder(w).Encode(newCompletion(`[{"expr":"2 + 2","result":"4"}]`))
			},
			wantResponse: inference.GenerateContentResponse{
				Text:  `[{"expr":"2 + 2","result":"4"}]`,
				Model: "gpt-4o-mini",
			},
			wantCalls: 1,
		},
		{
			name: "Completion text is returned as is even when it is not JSON",
			mockServerHandler: func(t *testing.T, calls int32, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(newCompletion("The answer is 4."))
			},
			wantResponse: inference.GenerateContentResponse{
				Text:  "The answer is 4.",
				Model: "gpt-4o-mini",
			},
			wantCalls: 1,
		},
		{
			name: "HTTP 500 error is not retried by default",
			mockServerHandler: func(t *testing.T, calls int32, w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"error": {"message": "Internal server error"}}`))
			},
			wantCalls:       1,
			wantError:       true,
			wantErrorString: "response error 500",
		},
		{
			name:             "HTTP 500 error is retried when configured",
			maxRetryAttempts: 1,
			mockServerHandler: func(t *testing.T, calls int32, w http.ResponseWriter, r *http.Request) {
				if calls == 1 {
					w.WriteHeader(http.StatusInternalServerError)
					return
				}
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(newCompletion(`[]`))
			},
			wantResponse: inference.GenerateContentResponse{
				Text:  `[]`,
				Model: "gpt-4o-mini",
			},
			wantCalls: 2,
		},
		{
			name:             "HTTP 400 error is never retried",
			maxRetryAttempts: 3,
			mockServerHandler: func(t *testing.T, calls int32, w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"error": {"message": "bad image"}}`))
			},
			wantCalls:       1,
			wantError:       true,
			wantErrorString: "response error 400",
		},
		{
			name: "No choices",
			mockServerHandler: func(t *testing.T, calls int32, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(ChatCompletionResponse{ID: "chatcmpl-1"})
			},
			wantCalls:       1,
			wantError:       true,
			wantErrorString: "empty response body or choices",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				tt.mockServerHandler(t, calls.Add(1), w, r)
			}))
			defer server.Close()

			client := &Client{
				httpClient:       resty.New().SetBaseURL(server.URL),
				model:            "gpt-4o-mini",
				maxRetryAttempts: tt.maxRetryAttempts,
			}

			gotResponse, gotErr := client.GenerateContent(context.Background(), request)
			assert.Equal(t, tt.wantCalls, calls.Load())

			if tt.wantError {
				require.Error(t, gotErr)
				if tt.wantErrorString != "" {
					assert.Contains(t, gotErr.Error(), tt.wantErrorString)
				}
				return
			}

			require.NoError(t, gotErr)
			assert.Equal(t, tt.wantResponse, gotResponse)
		})
	}
}

func TestNewClient(t *testing.T) {
	client := NewClient("key", "gpt-4o-mini", "", inference.DefaultMaxRetryAttempts)
	defer client.Close()

	assert.Equal(t, "gpt-4o-mini", client.GetModel())
}
