package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/inkcalc/internal/board"
	"github.com/at-ishikawa/inkcalc/internal/canvas"
	"github.com/at-ishikawa/inkcalc/internal/cli"
	"github.com/at-ishikawa/inkcalc/internal/relay"
	"github.com/at-ishikawa/inkcalc/internal/typeset"
)

func newDrawCommand() *cobra.Command {
	var variables []string
	var logFile string

	command := &cobra.Command{
		Use:   "draw",
		Short: "Open the drawing canvas in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			initialVariables, err := parseVariableFlags(variables)
			if err != nil {
				return err
			}

			// the terminal belongs to the canvas, so logs go to a file
			file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				return fmt.Errorf("os.OpenFile(%s) > %w", logFile, err)
			}
			defer func() {
				_ = file.Close()
			}()
			setupLoggerTo(file, debugMode)

			relayClient := relay.NewClient(cfg.Client.RelayURL)
			defer func() {
				_ = relayClient.Close()
			}()

			b := board.New(canvas.New(cfg.Canvas.Width, cfg.Canvas.Height), relayClient)
			for name, value := range initialVariables {
				b.SetVariable(name, value)
			}
			return cli.RunDraw(cmd.Context(), b, typeset.Unicode{})
		},
	}

	addVariableFlag(command.Flags(), &variables)
	command.Flags().StringVar(&logFile, "log-file", "inkcalc.log", "file to write logs to while the canvas is open")
	return command
}
