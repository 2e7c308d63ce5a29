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

	"github.com/iksnae/ideasurge/internal"
	"github.com/iksnae/ideasurge/internal/api"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the pick, recycle and library endpoints over HTTP",
	Long: `Run the HTTP API in front of the idea repository.

Endpoints:
  GET  /healthz                Repository connectivity
  GET  /metrics                Prometheus metrics
  POST /api/ideas/mark-picked  Mark one idea picked
  POST /api/ideas/recycle      Recycle a batch of ideas
  GET  /api/library            Recycled ideas grouped by category
  GET  /api/library/:id        One stored idea`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := openApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		addr := serveAddr
		if addr == "" {
			addr = cfg.Server.Addr
		}
		server, err := api.NewServer(a.lifecycle, a.repo, internal.Logger(), addr)
		if err != nil {
			return err
		}

		serverErrors := make(chan error, 1)
		go func() {
			serverErrors <- server.Start()
		}()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)
		case <-ctx.Done():
			internal.Logger().Info("shutdown signal received")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			internal.Logger().Error("graceful shutdown failed", zap.Error(err))
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from server.addr)")
}
