package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/aretw0/abacus"
	"github.com/aretw0/abacus/internal/cli"
	"github.com/aretw0/abacus/internal/logging"
	httpAdapter "github.com/aretw0/abacus/pkg/adapters/http"
	"github.com/aretw0/abacus/pkg/observability"
	"github.com/aretw0/abacus/pkg/persistence/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Hosts calculator sessions over a JSON API.

Sessions live in memory by default. With store.backend: redis they are kept
in Redis for the configured TTL, so several replicas can serve one session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			port, _ := cmd.Flags().GetString("port")
			cfg.Server.Addr = ":" + port
		}
		if cmd.Flags().Changed("store") {
			cfg.Store.Backend, _ = cmd.Flags().GetString("store")
			if err := cfg.Validate(); err != nil {
				return err
			}
		}

		level, _ := logging.ParseLevel(cfg.LogLevel)
		logger := logging.NewJSON(os.Stderr, level)

		km, err := cfg.Keymap()
		if err != nil {
			return err
		}

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		var metrics *observability.Metrics
		serverOpts := []httpAdapter.Option{
			httpAdapter.WithKeymap(km),
			httpAdapter.WithGlyphs(glyphsFor(cfg)),
			httpAdapter.WithLogger(logger),
		}
		storeMiddleware := []middleware.Middleware{middleware.NewLogging(logger)}
		if cfg.Server.Metrics {
			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			metrics = observability.NewMetrics(reg)
			serverOpts = append(serverOpts, httpAdapter.WithMetrics(metrics, reg))
			storeMiddleware = append(storeMiddleware, middleware.NewInstrumentation(reg))
		}

		manager, closeStore, err := cli.CreateSessionManager(sigCtx, cfg, logger, storeMiddleware...)
		if err != nil {
			return err
		}
		defer func() {
			if err := closeStore(); err != nil {
				logger.Warn("failed to close session store", "err", err)
			}
		}()

		engine := abacus.NewEngine(
			abacus.WithLogger(logger),
			abacus.WithLifecycleHooks(cli.CreateHooks(logger, metrics)),
		)

		srv := &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           httpAdapter.NewHandler(engine, manager, serverOpts...),
			ReadHeaderTimeout: 5 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			logger.Info("starting abacus server", "addr", srv.Addr, "store", cfg.Store.Backend, "metrics", cfg.Server.Metrics)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case <-sigCtx.Done():
			logger.Info("start shutdown", "signal", fmt.Sprint(sigCtx.Signal()))

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("graceful shutdown did not complete", "timeout", 5*time.Second, "err", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("error killing server: %w", err)
				}
			}
			logger.Info("abacus server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on (overrides server.addr)")
	serveCmd.Flags().String("store", "memory", "Session store backend: memory or redis")
}
