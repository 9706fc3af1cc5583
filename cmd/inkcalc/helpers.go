package main

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/at-ishikawa/inkcalc/internal/cli"
	"github.com/at-ishikawa/inkcalc/internal/config"
	"github.com/at-ishikawa/inkcalc/internal/drawing"
)

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// addVariableFlag registers the repeatable --var flag
func addVariableFlag(flags *pflag.FlagSet, variables *[]string) {
	flags.StringArrayVar(variables, "var", nil, "variable known before solving, as name=value (repeatable)")
}

func parseVariableFlags(variables []string) (drawing.VariableContext, error) {
	variableContext, err := cli.ParseVariables(variables)
	if err != nil {
		return nil, fmt.Errorf("invalid --var: %w", err)
	}
	return variableContext, nil
}
