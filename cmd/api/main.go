package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"manualrag/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "manualrag",
	Short: "Manual ingestion and retrieval-augmented chat service",
	Long: `manualrag ingests product manuals (PDF, Markdown, plain text) into a vector
index and answers questions about them over HTTP and WebSocket.

Run without a subcommand to start the server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}
		configureLogging(cfg)
		return nil
	},
	RunE: runServe,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func configureLogging(cfg *config.Config) {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)
}
