package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mfenderov/article-search/internal/api"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP search API.

Endpoints:
  GET  /                 API information
  GET  /search           Similar articles (query, limit)
  GET  /stats            Corpus statistics
  GET  /article/:index   A single article
  POST /reload           Reread the corpus

Example:
  article-search serve --addr :8000`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	engine, err := loadEngine(ctx, cfg)
	if err != nil {
		return err
	}

	server, err := api.NewServer(api.Config{
		Addr:  cfg.Server.Addr,
		Rate:  cfg.Server.Rate,
		Burst: cfg.Server.Burst,
	}, engine)
	if err != nil {
		return fmt.Errorf("failed to create API server: %w", err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Serving %d articles on %s\n", engine.Len(), cfg.Server.Addr)
	return server.ListenAndServe(ctx)
}
