// Package drawing defines the request and response contract shared by the relay
// endpoint and the canvas client.
package drawing

import "encoding/json"

// Path is where the relay serves drawing submissions
const Path = "/api/drawing"

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// VariableContext maps a variable name to a previously known value.
// Values are numbers, strings, booleans or structured JSON values.
type VariableContext map[string]any

// Request is the body of POST /api/drawing
type Request struct {
	// Image is a data URL such as "data:image/jpeg;base64,...."
	Image      string          `json:"image"`
	DictOfVars VariableContext `json:"dict_of_vars"`
}

// ResultEntry is one finding returned by the provider.
// Assign marks a variable binding rather than a standalone answer.
type ResultEntry struct {
	Expr   string `json:"expr"`
	Result any    `json:"result"`
	Assign bool   `json:"assign"`
}

// Response is the envelope returned by the relay.
type Response struct {
	Message string        `json:"message"`
	Data    []ResultEntry `json:"data,omitempty"`
	Error   string        `json:"error,omitempty"`
	Status  string        `json:"status"`
}

// IsSuccess reports whether the envelope carries a result list.
func (response Response) IsSuccess() bool {
	return response.Status == StatusSuccess
}

// MarshalJSON always writes data on success, even when no entries were found.
func (response Response) MarshalJSON() ([]byte, error) {
	if response.IsSuccess() {
		data := response.Data
		if data == nil {
			data = []ResultEntry{}
		}
		return json.Marshal(struct {
			Message string        `json:"message"`
			Data    []ResultEntry `json:"data"`
			Status  string        `json:"status"`
		}{
			Message: response.Message,
			Data:    data,
			Status:  response.Status,
		})
	}

	type envelope Response
	return json.Marshal(envelope(response))
}

// ErrorEntry builds the synthetic entry shown when a submission fails.
func ErrorEntry(message string) ResultEntry {
	return ResultEntry{
		Expr:   "Error",
		Result: message,
		Assign: false,
	}
}
