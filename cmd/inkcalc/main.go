package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	configFile string
	debugMode  bool
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return newRootCommand().ExecuteContext(ctx)
}

func newRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:           "inkcalc",
		Short:         "Draw math by hand and let a multimodal model solve it",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogger(debugMode)
			return nil
		},
	}

	rootCommand.PersistentFlags().StringVar(&configFile, "config", os.Getenv("INKCALC_CONFIG"), "config file (default is ./config.yml or $HOME/.config/inkcalc/config.yml)")
	rootCommand.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")

	rootCommand.AddCommand(newDrawCommand())
	rootCommand.AddCommand(newSolveCommand())
	rootCommand.AddCommand(newServeCommand())
	rootCommand.AddCommand(newPromptCommand())

	return rootCommand
}

func setupLogger(debugMode bool) {
	setupLoggerTo(os.Stderr, debugMode)
}

func setupLoggerTo(w io.Writer, debugMode bool) {
	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		AddSource: true,
		Level:     level,
	})
	slog.SetDefault(slog.New(handler))
}
