package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"faktur/internal/config"
	"faktur/internal/logger"
	"faktur/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the rekap workflow over HTTP",
	Long: `Start an HTTP server for uploading invoices from a browser or script.

Endpoints:
  POST /api/extract  - multipart "files" (+ optional "columns"), rows as JSON
  POST /api/export   - multipart "files" (+ optional "columns"), xlsx download
  GET  /api/columns  - available columns in default order
  GET  /health       - health check`,
	Example: `  faktur serve --addr :9000

  curl -F files=@a.pdf -F files=@b.pdf localhost:8080/api/export -o rekap.xlsx`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (default: HTTP_ADDR or :8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cfg.HTTPAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	extractor, err := newExtractor(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer extractor.Close()

	handler := server.NewHandler(extractor, cfg.BatchWorkers)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler.SetupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info().
		Str("addr", addr).
		Str("source", cfg.TextSource).
		Str("version", server.Version).
		Msg("Starting HTTP server")

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
