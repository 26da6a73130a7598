package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/existflow/taskboard/internal/logger"
	"github.com/existflow/taskboard/internal/realtime"
	"github.com/existflow/taskboard/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the board over HTTP with a websocket change feed",
	Long: `Serve the JSON API under /api/v1 and push every board change to
websocket clients on /api/v1/ws. Changes written by other sessions on the
same store are picked up and pushed as well.

Examples:
  taskboard serve
  taskboard serve --addr :9090 --no-simulation`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	serveAddr         string
	serveNoSimulation bool
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
	serveCmd.Flags().BoolVar(&serveNoSimulation, "no-simulation", false, "Do not simulate activity from other users")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b, closeStore, err := openBoard(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	srv := server.New(b)

	bridgeOpts := []realtime.Option{realtime.WithNotify(srv.Notify)}
	if serveNoSimulation || cfg.SimulationInterval <= 0 {
		bridgeOpts = append(bridgeOpts, realtime.WithoutSimulation())
	} else {
		bridgeOpts = append(bridgeOpts, realtime.WithInterval(cfg.SimulationInterval))
	}
	bridge := realtime.New(b, bridgeOpts...)
	if err := bridge.Start(); err != nil {
		logger.Warn("Realtime bridge unavailable", logger.F("error", err))
	}
	defer bridge.Stop()

	addr := cfg.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(addr)
	}()
	fmt.Fprintf(cmd.OutOrStdout(), "Taskboard serving on %s\n", addr)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}
