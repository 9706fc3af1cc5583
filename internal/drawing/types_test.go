package drawing

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponse_MarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		response Response
		want     string
	}{
		{
			name:     "success without entries still has data",
			response: Response{Message: "Image processed", Status: StatusSuccess},
			want:     `{"message":"Image processed","data":[],"status":"success"}`,
		},
		{
			name: "success with entries",
			response: Response{
				Message: "Image processed",
				Data:    []ResultEntry{{Expr: "2 + 2", Result: "4"}},
				Status:  StatusSuccess,
			},
			want: `{"message":"Image processed","data":[{"expr":"2 + 2","result":"4","assign":false}],"status":"success"}`,
		},
		{
			name: "error omits data",
			response: Response{
				Message: "Invalid image data",
				Error:   "The image appears to be empty or invalid",
				Status:  StatusError,
			},
			want: `{"message":"Invalid image data","error":"The image appears to be empty or invalid","status":"error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.response)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}

func TestResultEntry_AssignAlwaysEncoded(t *testing.T) {
	encoded, err := json.Marshal(ResultEntry{Expr: "2 + 2", Result: "4"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"expr":"2 + 2","result":"4","assign":false}`, string(encoded))
}

func TestErrorEntry(t *testing.T) {
	assert.Equal(t, ResultEntry{Expr: "Error", Result: "Failed to process equation", Assign: false}, ErrorEntry("Failed to process equation"))
}
