// Package assets holds the embedded prompt template.
package assets

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

const promptTemplateName = "prompt.md.go.tmpl"

//go:embed templates/prompt.md.go.tmpl
var fallbackPromptTemplate string

// ParsePromptTemplate parses templatePath, or the embedded prompt when the path is empty,
// missing or unparsable.
func ParsePromptTemplate(templatePath string) (*template.Template, error) {
	return parseTemplateWithFallback(templatePath, promptTemplateName, fallbackPromptTemplate)
}

func parseTemplateWithFallback(templatePath string, fallbackName string, fallbackTemplate string) (*template.Template, error) {
	funcMap := template.FuncMap{
		"join": strings.Join,
	}

	if templatePath != "" {
		if _, err := os.Stat(templatePath); err == nil {
			fileName := filepath.Base(templatePath)
			tmpl, err := template.New(fileName).
				Funcs(funcMap).
				ParseFiles(templatePath)
			if err == nil {
				return tmpl, nil
			}
			slog.Default().Warn("failed to parse a templatePath",
				slog.String("templatePath", templatePath),
				slog.Any("error", err),
			)
		} else {
			slog.Default().Warn("template not found, using the embedded one",
				slog.String("templatePath", templatePath),
			)
		}
	}

	tmpl, err := template.New(fallbackName).
		Funcs(funcMap).
		Parse(fallbackTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded template: %w", err)
	}
	return tmpl, nil
}
