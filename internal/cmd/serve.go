package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/planforge/internal/log"
	"github.com/felixgeelhaar/planforge/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the plan generation HTTP API",
	Long: `Run an HTTP server exposing plan generation and enhancement status.

Endpoints:
  POST /api/plans                     - generate a plan from {"task": "..."}
  GET  /api/plans/{hash}/status       - poll background enhancement state
  POST /api/agent/run                 - execute one phase with the mock agent
  GET  /health/live, /health/ready    - Kubernetes-style probes
  GET  /metrics                       - Prometheus metrics

The server drains connections and waits for in-flight enhancements on
SIGINT or SIGTERM.

Examples:
  # Listen on the configured address (default :8080)
  planforge serve

  # Override the listen address
  planforge serve --listen :9090`,
	RunE: runServe,
}

var (
	serveListen          string
	serveShutdownTimeout time.Duration
)

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "listen address (overrides config)")
	serveCmd.Flags().DurationVar(&serveShutdownTimeout, "shutdown-timeout", 30*time.Second, "maximum time to drain connections on shutdown")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := log.DefaultLogger()

	orch, client, err := buildOrchestrator()
	if err != nil {
		return err
	}
	if client != nil {
		defer client.Close()
	}

	// Sweep abandoned enhancement state for the lifetime of the server.
	sweepCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()
	orch.StartSweeper(sweepCtx)

	listen := cfg.Listen
	if serveListen != "" {
		listen = serveListen
	}

	srv := server.New(orch, newAgentRunner(), server.Config{
		Address:         listen,
		ShutdownTimeout: serveShutdownTimeout,
	})

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		logger.Info("shutdown signal received, draining connections")

		// Detach from the cancelled context so draining gets its full budget.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), serveShutdownTimeout+5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		logger.Info("server stopped")
		return nil
	}
}
