package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/inkcalc/internal/config"
	"github.com/at-ishikawa/inkcalc/internal/inference"
	"github.com/at-ishikawa/inkcalc/internal/inference/provider"
	"github.com/at-ishikawa/inkcalc/internal/server"
	"github.com/at-ishikawa/inkcalc/internal/tracer"
)

func newServeCommand() *cobra.Command {
	var address string

	command := &cobra.Command{
		Use:   "serve",
		Short: "Run the relay that forwards drawings to the inference provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if address != "" {
				cfg.Server.Address = address
			}
			return serve(cmd.Context(), cfg)
		},
	}

	command.Flags().StringVar(&address, "address", "", "address to listen on (overrides server.address)")
	return command
}

func serve(ctx context.Context, cfg *config.Config) error {
	shutdownTracer, err := tracer.Setup(ctx, cfg.Tracing)
	if err != nil {
		return fmt.Errorf("tracer.Setup() > %w", err)
	}
	defer func() {
		_ = shutdownTracer(context.Background())
	}()

	client, closeClient, err := provider.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("provider.New() > %w", err)
	}
	defer func() {
		_ = closeClient()
	}()

	prompt, err := inference.NewPrompt(cfg.Inference.PromptTemplate)
	if err != nil {
		return fmt.Errorf("inference.NewPrompt() > %w", err)
	}

	handler := server.NewHandler(ctx, cfg, prompt, client)
	return server.ListenAndServe(ctx, cfg.Server, handler)
}
