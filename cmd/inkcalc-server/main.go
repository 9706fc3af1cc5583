package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/at-ishikawa/inkcalc/internal/config"
	"github.com/at-ishikawa/inkcalc/internal/inference"
	"github.com/at-ishikawa/inkcalc/internal/inference/provider"
	"github.com/at-ishikawa/inkcalc/internal/server"
	"github.com/at-ishikawa/inkcalc/internal/tracer"
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

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loadConfig() > %w", err)
	}

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

	return server.ListenAndServe(ctx, cfg.Server, server.NewHandler(ctx, cfg, prompt, client))
}

func loadConfig() (*config.Config, error) {
	configFile := os.Getenv("INKCALC_CONFIG")
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	return loader.Load()
}
