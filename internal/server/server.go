package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/at-ishikawa/inkcalc/internal/config"
	"github.com/at-ishikawa/inkcalc/internal/drawing"
	"github.com/at-ishikawa/inkcalc/internal/inference"
)

const DrawingPath = drawing.Path

// NewHandler builds the relay's routes and middleware chain.
// ctx bounds background work such as the rate limiter's sweeper.
func NewHandler(ctx context.Context, root *config.Config, prompt *inference.Prompt, client inference.Client) http.Handler {
	cfg := root.Server

	mux := http.NewServeMux()
	mux.Handle("POST "+DrawingPath, NewDrawingHandler(client, prompt, cfg.MinImageBytes, root.Inference.Timeout))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	var handler http.Handler = mux
	if cfg.RateLimit.RequestsPerMinute > 0 {
		handler = rateLimitMiddleware(ctx, cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst, handler)
	}
	handler = corsMiddleware(cfg.CORS.AllowedOrigins, handler)
	handler = loggingMiddleware(handler)
	return requestIDMiddleware(handler)
}

const shutdownTimeout = 10 * time.Second

// ListenAndServe listens on cfg.Address and serves until ctx is done.
func ListenAndServe(ctx context.Context, cfg config.ServerConfig, handler http.Handler) error {
	listener, err := net.Listen("tcp", cfg.Address)
	if err != nil {
		return fmt.Errorf("net.Listen(%s) > %w", cfg.Address, err)
	}
	return Serve(ctx, listener, cfg.TLS, handler)
}

// Serve accepts HTTP/1.1 and cleartext HTTP/2 on listener, or HTTPS when tls is enabled.
// Cancelling ctx shuts the server down gracefully.
func Serve(ctx context.Context, listener net.Listener, tls config.TLSConfig, handler http.Handler) error {
	srv := &http.Server{
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Default().Info("Starting server", "address", listener.Addr().String(), "tls", tls.Enabled())
		if tls.Enabled() {
			errCh <- srv.ServeTLS(listener, tls.CertFile, tls.KeyFile)
			return
		}
		errCh <- srv.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("srv.Serve > %w", err)
	case <-ctx.Done():
		slog.Default().Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("srv.Shutdown > %w", err)
		}
		return nil
	}
}
