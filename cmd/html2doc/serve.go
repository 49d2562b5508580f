package main

import (
	"log/slog"

	"github.com/aisa-it/html2doc/internal/html2doc"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run HTTP conversion service",
	Long: `Serve starts the HTTP API (POST /api/convert/) and the Prometheus metrics endpoint.
Configuration is read from environment variables (HTTP_ADDR, METRICS_ADDR, BODY_LIMIT, ACCESS_TOKEN, ...).`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	PrintBanner()

	cfg := readConfig()

	srv, err := html2doc.NewServer(cfg, version)
	if err != nil {
		slog.Error("Fail init server", "err", err)
		return err
	}

	slog.Info("html2doc start.")
	return srv.Run(cmd.Context())
}
