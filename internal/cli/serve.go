package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/me/schedsim/internal/metrics"
	"github.com/me/schedsim/internal/render"
	"github.com/me/schedsim/internal/server"
	"github.com/me/schedsim/internal/simulator"
)

// defaultServePace slows a served run down enough to be watched.
const defaultServePace = 100 * time.Millisecond

func newServeCmd() *cobra.Command {
	var sf simFlags
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a simulation behind the HTTP API and Prometheus metrics",
		Long: `Starts the HTTP server, runs one simulation in the background and keeps
serving its final snapshot and the run history until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sf.apply(cmd, &cfg)
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cfg.Simulation.Pace == 0 {
				cfg.Simulation.Pace = defaultServePace
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			st, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			if st != nil {
				defer st.Close()
			}

			sim, params, err := newSimulation(cfg)
			if err != nil {
				return err
			}

			collector := metrics.NewCollector()
			opts := []server.Option{server.WithMetrics(collector)}
			if st != nil {
				opts = append(opts, server.WithStore(st))
			}
			srv := server.New(cfg.Server, logger, opts...)
			loop := simulator.NewLoop(sim, logger, srv, collector)

			httpServer := &http.Server{
				Addr:    cfg.Server.Addr,
				Handler: srv.Handler(),
			}

			// Graceful shutdown
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			serveErr := make(chan error, 1)
			go func() {
				logger.Info("server starting", "addr", cfg.Server.Addr)
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serveErr <- err
				}
			}()

			simDone := make(chan struct{})
			go func() {
				defer close(simDone)
				report, err := loop.Start(ctx)
				if err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("simulation stopped", "error", err)
				}
				archive(context.Background(), storeOrNil(st), report, params)
				render.Report(cmd.OutOrStdout(), report)
			}()

			select {
			case <-ctx.Done():
			case err := <-serveErr:
				loop.Stop()
				<-simDone
				return err
			}
			logger.Info("shutting down")

			// Stop the simulation before the HTTP server.
			loop.Stop()
			<-simDone

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				return err
			}
			logger.Info("server stopped")
			return nil
		},
	}

	sf.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address (overrides server.addr)")

	return cmd
}
