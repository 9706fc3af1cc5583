// Package typeset renders result entries with math notation.
package typeset

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/at-ishikawa/inkcalc/internal/drawing"
)

// markupChars mark text that needs typesetting
const markupChars = `\{}^_$`

// Typesetter converts math markup into display text.
type Typesetter interface {
	Typeset(source string) (string, error)
}

func HasMarkup(text string) bool {
	return strings.ContainsAny(text, markupChars)
}

// Render typesets text that contains markup. Any failure of t, including a panic, yields text unchanged.
func Render(t Typesetter, text string) (rendered string) {
	if !HasMarkup(text) {
		return text
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			slog.Default().Warn("typesetter panicked", "text", text, "panic", recovered)
			rendered = text
		}
	}()

	out, err := t.Typeset(text)
	if err != nil {
		slog.Default().Debug("failed to typeset", "text", text, "error", err)
		return text
	}
	return out
}

// FormatEntry produces "typeset(expr) = typeset(result)".
func FormatEntry(t Typesetter, entry drawing.ResultEntry) string {
	return Render(t, entry.Expr) + " = " + Render(t, Stringify(entry.Result))
}

// Stringify converts a JSON value to the text shown for it.
// Strings are shown without quotes, numbers in their shortest form, and objects or arrays as compact JSON.
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprint(value)
	}
	return string(encoded)
}
