package relay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/inkcalc/internal/drawing"
)

func TestClient_Submit(t *testing.T) {
	tests := []struct {
		name         string
		statusCode   int
		responseBody string
		want         drawing.Response
		wantErr      bool
	}{
		{
			name:         "success",
			statusCode:   http.StatusOK,
			responseBody: `{"message":"Image processed","data":[{"expr":"2 + 2","result":"4","assign":false}],"status":"success"}`,
			want: drawing.Response{
				Message: "Image processed",
				Data:    []drawing.ResultEntry{{Expr: "2 + 2", Result: "4"}},
				Status:  drawing.StatusSuccess,
			},
		},
		{
			name:         "rejected image",
			statusCode:   http.StatusBadRequest,
			responseBody: `{"message":"Invalid image data","error":"The image appears to be empty or invalid","status":"error"}`,
			want: drawing.Response{
				Message: "Invalid image data",
				Error:   "The image appears to be empty or invalid",
				Status:  drawing.StatusError,
			},
		},
		{
			name:         "provider failure",
			statusCode:   http.StatusInternalServerError,
			responseBody: `{"message":"Error processing request","error":"quota exceeded","status":"error"}`,
			want: drawing.Response{
				Message: "Error processing request",
				Error:   "quota exceeded",
				Status:  drawing.StatusError,
			},
		},
		{
			name:         "not an envelope",
			statusCode:   http.StatusBadGateway,
			responseBody: `{"detail":"bad gateway"}`,
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotRequest drawing.Request
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, drawing.Path, r.URL.Path)
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.responseBody))
			}))
			defer server.Close()

			client := NewClient(server.URL)
			defer func() { _ = client.Close() }()

			request := drawing.Request{
				Image:      "data:image/jpeg;base64,AAAA",
				DictOfVars: drawing.VariableContext{"x": "5"},
			}
			got, err := client.Submit(context.Background(), request)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, request, gotRequest)
		})
	}
}

func TestClient_SubmitTransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	client := NewClient(server.URL)
	_, err := client.Submit(context.Background(), drawing.Request{Image: "data:image/jpeg;base64,AAAA"})
	assert.Error(t, err)
}
