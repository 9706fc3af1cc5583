package inference

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/at-ishikawa/inkcalc/internal/drawing"
)

var ErrInvalidResponseFormat = errors.New("invalid response format")

// ParseResults reads a model completion as a JSON array of {expr, result[, assign]} objects.
// Anything other than exactly that shape is rejected as a whole; nothing is salvaged.
func ParseResults(text string) ([]drawing.ResultEntry, error) {
	content := strings.TrimSpace(text)
	if !strings.HasPrefix(content, "[") {
		return nil, fmt.Errorf("completion is not a JSON array: %w", ErrInvalidResponseFormat)
	}

	var items []map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &items); err != nil {
		return nil, fmt.Errorf("json.Unmarshal > %w: %w", err, ErrInvalidResponseFormat)
	}

	results := make([]drawing.ResultEntry, 0, len(items))
	for i, item := range items {
		entry, err := parseEntry(item)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w: %w", i, err, ErrInvalidResponseFormat)
		}
		results = append(results, entry)
	}
	return results, nil
}

func parseEntry(item map[string]json.RawMessage) (drawing.ResultEntry, error) {
	if item == nil {
		return drawing.ResultEntry{}, errors.New("entry is not an object")
	}

	rawExpr, ok := item["expr"]
	if !ok {
		return drawing.ResultEntry{}, errors.New(`"expr" is missing`)
	}
	var expr *string
	if err := json.Unmarshal(rawExpr, &expr); err != nil {
		return drawing.ResultEntry{}, fmt.Errorf(`"expr" is not a string: %w`, err)
	}
	if expr == nil {
		return drawing.ResultEntry{}, errors.New(`"expr" is null`)
	}

	rawResult, ok := item["result"]
	if !ok {
		return drawing.ResultEntry{}, errors.New(`"result" is missing`)
	}
	// Numbers are kept as json.Number so they are re-encoded exactly as the model wrote them
	decoder := json.NewDecoder(bytes.NewReader(rawResult))
	decoder.UseNumber()
	var result any
	if err := decoder.Decode(&result); err != nil {
		return drawing.ResultEntry{}, fmt.Errorf(`"result" cannot be decoded: %w`, err)
	}

	var assign *bool
	if rawAssign, ok := item["assign"]; ok {
		if err := json.Unmarshal(rawAssign, &assign); err != nil {
			return drawing.ResultEntry{}, fmt.Errorf(`"assign" is not a boolean: %w`, err)
		}
	}

	return drawing.ResultEntry{
		Expr:   *expr,
		Result: result,
		Assign: assign != nil && *assign,
	}, nil
}
