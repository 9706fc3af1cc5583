package inference

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/at-ishikawa/inkcalc/internal/assets"
	"github.com/at-ishikawa/inkcalc/internal/drawing"
)

// Prompt renders the instruction sent along with every drawing.
type Prompt struct {
	template *template.Template
}

var defaultPrompt = mustDefaultPrompt()

func mustDefaultPrompt() *Prompt {
	prompt, err := NewPrompt("")
	if err != nil {
		panic(err)
	}
	return prompt
}

// NewPrompt loads a custom template from templatePath, or the built-in one when it is empty.
// The template receives the variables as .Variables.
func NewPrompt(templatePath string) (*Prompt, error) {
	tmpl, err := assets.ParsePromptTemplate(templatePath)
	if err != nil {
		return nil, fmt.Errorf("assets.ParsePromptTemplate() > %w", err)
	}
	return &Prompt{template: tmpl}, nil
}

// Build embeds the variables as compact JSON, so {"x": 5} shows up as "x":5.
func (prompt *Prompt) Build(variables drawing.VariableContext) (string, error) {
	if variables == nil {
		variables = drawing.VariableContext{}
	}
	var encoded bytes.Buffer
	encoder := json.NewEncoder(&encoded)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(variables); err != nil {
		return "", fmt.Errorf("encoder.Encode(variables) > %w", err)
	}

	var buf bytes.Buffer
	if err := prompt.template.Execute(&buf, struct {
		Variables string
	}{
		Variables: strings.TrimSuffix(encoded.String(), "\n"),
	}); err != nil {
		return "", fmt.Errorf("template.Execute > %w", err)
	}
	return buf.String(), nil
}

func DefaultPrompt() *Prompt {
	return defaultPrompt
}

// BuildPrompt renders the built-in prompt.
func BuildPrompt(variables drawing.VariableContext) (string, error) {
	return defaultPrompt.Build(variables)
}
