package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/inkcalc/internal/inference"
)

func newPromptCommand() *cobra.Command {
	var variables []string
	var templatePath string

	command := &cobra.Command{
		Use:   "prompt",
		Short: "Print the instruction sent to the provider for the given variables",
		RunE: func(cmd *cobra.Command, args []string) error {
			variableContext, err := parseVariableFlags(variables)
			if err != nil {
				return err
			}
			prompt, err := inference.NewPrompt(templatePath)
			if err != nil {
				return fmt.Errorf("inference.NewPrompt() > %w", err)
			}
			text, err := prompt.Build(variableContext)
			if err != nil {
				return fmt.Errorf("prompt.Build() > %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		},
	}

	addVariableFlag(command.Flags(), &variables)
	command.Flags().StringVar(&templatePath, "template", "", "custom prompt template (default is the built-in prompt)")
	return command
}
