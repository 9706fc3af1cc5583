package main

import (
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/inkcalc/internal/cli"
	"github.com/at-ishikawa/inkcalc/internal/relay"
	"github.com/at-ishikawa/inkcalc/internal/typeset"
)

func newSolveCommand() *cobra.Command {
	var variables []string

	command := &cobra.Command{
		Use:   "solve <image-file>",
		Short: "Send a PNG or JPEG drawing to the relay and print the results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			variableContext, err := parseVariableFlags(variables)
			if err != nil {
				return err
			}

			relayClient := relay.NewClient(cfg.Client.RelayURL)
			defer func() {
				_ = relayClient.Close()
			}()

			solveCLI := cli.NewSolveCLI(relayClient, typeset.Unicode{}, cmd.OutOrStdout())
			return solveCLI.Solve(cmd.Context(), args[0], variableContext)
		},
	}

	addVariableFlag(command.Flags(), &variables)
	return command
}
