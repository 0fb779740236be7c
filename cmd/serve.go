package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/landscope/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the grid and insight API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		cfg.Server.Port = port
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		handler, err := buildServer()
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// buildServer wires the scenario, grid cache, insight provider and metrics
// into the API handler.
func buildServer() (http.Handler, error) {
	reg, err := loadRegistry()
	if err != nil {
		return nil, err
	}
	cps, err := loadCheckpoints()
	if err != nil {
		return nil, err
	}

	metrics, err := server.NewMetrics(nil)
	if err != nil {
		return nil, err
	}
	cache := newGridCache(reg)
	if err := metrics.ObserveCache(cache); err != nil {
		return nil, err
	}

	srv, err := server.New(server.Deps{
		Registry:    reg,
		Grid:        cache,
		Checkpoints: cps,
		Insight:     newInsightService(reg, logBreaker(metrics.BreakerObserver())),
		Metrics:     metrics,
		CORSOrigins: cfg.Server.CORSOrigins,
	})
	if err != nil {
		return nil, err
	}
	return srv.Handler(), nil
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
