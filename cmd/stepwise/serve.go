package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/stepwise/internal/cli"
	httpAdapter "github.com/aretw0/stepwise/pkg/adapters/http"
	"github.com/aretw0/stepwise/pkg/compare"
	"github.com/aretw0/stepwise/pkg/observability"
	"github.com/aretw0/stepwise/pkg/runner"
	"github.com/aretw0/stepwise/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serves workspaces over a JSON API with live updates on Server-Sent Events
and WebSocket. The OpenAPI document is at /openapi.yaml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := cfg.Server.Addr
		if cmd.Flags().Changed("addr") {
			addr, _ = cmd.Flags().GetString("addr")
		}

		backend, err := cli.OpenBackend(cmd.Context(), cfg.Presets, logger)
		if err != nil {
			return err
		}
		defer backend.Close()

		hooks := observability.LogHooks(logger)
		var httpOpts []httpAdapter.Option
		if cfg.Telemetry.Enabled {
			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			hooks = observability.Chain(hooks, observability.NewMetrics(reg).Hooks())
			httpOpts = append(httpOpts, httpAdapter.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
		}

		sessionOpts := []session.Option{
			session.WithLogger(logger),
			session.WithPresets(backend.Store),
			session.WithSeed(cfg.Compare.Seed),
			session.WithRunnerOptions(
				runner.WithLogger(logger),
				runner.WithSpeed(cfg.Runner.SpeedMS),
				runner.WithPollInterval(cfg.Runner.PollInterval),
				runner.WithChallenge(cfg.Runner.Challenge),
				runner.WithLifecycleHooks(hooks),
			),
		}
		if backend.Locker != nil {
			sessionOpts = append(sessionOpts, session.WithLocker(backend.Locker))
		}
		mgr := session.NewManager(sessionOpts...)
		defer mgr.Close()

		httpOpts = append(httpOpts,
			httpAdapter.WithLogger(logger),
			httpAdapter.WithComparer(compare.New(compare.WithRegistry(mgr.Registry()), compare.WithLogger(logger))),
		)
		handler, err := httpAdapter.NewHandler(mgr, httpOpts...)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("stepwise server listening", "address", addr, "presets", cfg.Presets.Backend, "telemetry", cfg.Telemetry.Enabled)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(shutdown)

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Info("shutting down", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("graceful shutdown did not complete", "err", err)
				return srv.Close()
			}
			logger.Info("server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Address to listen on (default from config)")
}
