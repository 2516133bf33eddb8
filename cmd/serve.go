package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"audio-from-video/infrastructure/httpapi"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP server exposing the extraction pipeline.

Endpoints:
  POST /api/v1/extract-audio   {"path": "...", "outputPath": "...", "includeData": false}
  GET  /health

Example:
  audio-from-video serve
  audio-from-video serve --addr 127.0.0.1:9090`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Address
	}

	log := newLogger(cfg)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	extractor, health := NewExtractor(ctx, cfg, log)
	srv := httpapi.NewServer(addr, extractor, health, log, httpapi.WithOutputRoot(outputRootFor(cfg)))

	return RunServeWithDependencies(ctx, srv, addr, os.Stdout)
}

// RunServeWithDependencies serves until ctx is cancelled, then shuts down gracefully
func RunServeWithDependencies(ctx context.Context, srv *httpapi.Server, addr string, output OutputWriter) error {
	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("server error: %w", err)
		}
	}()

	fmt.Fprintf(output, "Listening on %s\n", addr)

	var runErr error
	select {
	case <-ctx.Done():
		fmt.Fprintln(output, "Shutting down server...")
	case runErr = <-serverErr:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return runErr
}
