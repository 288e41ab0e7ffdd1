package main

import (
	"context"
	"errors"
	"log/slog"
	nethttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"manualrag/internal/handlers"
	"manualrag/internal/http"
	"manualrag/internal/session"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and WebSocket server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			slog.Error("Failed to close resources", "error", err)
		}
	}()

	// Fail fast when the embedding model does not match VECTOR_SIZE.
	vecs, err := a.embedder.EmbedTexts(ctx, []string{"health check"})
	if err != nil {
		return err
	}
	if len(vecs) != 1 || len(vecs[0]) != cfg.VectorSize {
		return errors.New("embedding vector size does not match VECTOR_SIZE")
	}
	slog.Info("Embedding client validated", "vector_size", cfg.VectorSize)

	sessions := session.NewManager(a.answerer(cfg), cfg.TurnTimeout)

	router := http.NewRouter(&http.Deps{
		Manuals:        handlers.NewManualHandler(a.manuals, cfg.MaxUploadBytes),
		Documents:      handlers.NewDocumentHandler(a.documents),
		Health:         handlers.NewHealthHandler(a.manuals, sessions),
		Chat:           handlers.NewChatHandler(ctx, sessions, cfg.AllowedOrigins),
		AllowedOrigins: cfg.AllowedOrigins,
	})

	srv := &nethttp.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting API server", "addr", srv.Addr)
		slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModelName)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, nethttp.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down", "active_sessions", sessions.Active())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Hijacked WebSocket connections are not tracked by Shutdown.
	sessions.Shutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown incomplete", "error", err)
		return err
	}
	return nil
}
