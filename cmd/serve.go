// File: cmd/serve.go
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/pitist/mi-orquestador-mvp/internal/audit"
	"github.com/pitist/mi-orquestador-mvp/internal/config"
	"github.com/pitist/mi-orquestador-mvp/internal/leancheck"
	"github.com/pitist/mi-orquestador-mvp/internal/observability"
	"github.com/pitist/mi-orquestador-mvp/internal/server"
	"github.com/pitist/mi-orquestador-mvp/internal/store"
)

const tracerShutdownTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	var listenAddr, staticDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the audit API and dashboard over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfigFromContext(cmd.Context())
			if err != nil {
				return err
			}
			// Flags beat the config file and environment.
			if cmd.Flags().Changed("listen") {
				cfg.SetServerListenAddr(listenAddr)
			}
			if cmd.Flags().Changed("static-dir") {
				cfg.SetServerStaticDir(staticDir)
			}
			return runServe(cmd.Context(), cfg, observability.GetLogger())
		},
	}

	cmd.Flags().StringVarP(&listenAddr, "listen", "l", config.DefaultListenAddr, "Address to listen on")
	cmd.Flags().StringVar(&staticDir, "static-dir", "", "Serve dashboard files from this directory instead of the embedded copy")
	return cmd
}

// components holds everything runServe builds, so it can be torn down in one place.
type components struct {
	Server         *server.Server
	TracerProvider observability.TracerProvider
	closeStore     func()
}

// Shutdown releases the database pool and flushes the tracer.
func (c *components) Shutdown(logger *zap.Logger) {
	if c.closeStore != nil {
		c.closeStore()
	}
	if c.TracerProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), tracerShutdownTimeout)
		defer cancel()
		if err := c.TracerProvider.Shutdown(ctx); err != nil {
			logger.Warn("Failed to shut down tracer provider", zap.Error(err))
		}
	}
}

// initializeServeComponents wires the generator, lean checker, database probe
// and tracer into an HTTP server.
func initializeServeComponents(ctx context.Context, cfg config.Interface, logger *zap.Logger) (*components, error) {
	c := &components{}

	c.TracerProvider = observability.NewTracerProvider(cfg.Tracing(), logger)
	otel.SetTracerProvider(c.TracerProvider)

	dbCfg := cfg.Database()
	probe, closeStore, err := store.ProbeFor(ctx, dbCfg.URL, dbCfg.PingTimeout, logger)
	if err != nil {
		c.Shutdown(logger)
		return nil, fmt.Errorf("failed to prepare database probe: %w", err)
	}
	c.closeStore = closeStore

	gen := audit.NewGenerator(logger,
		audit.WithTracer(c.TracerProvider.Tracer("github.com/pitist/mi-orquestador-mvp/internal/audit")),
	)

	c.Server, err = server.New(cfg, logger, server.Dependencies{
		Auditor:        gen,
		Lean:           leancheck.New(cfg.Lean().Delay, logger),
		Health:         probe,
		TracerProvider: c.TracerProvider,
	})
	if err != nil {
		c.Shutdown(logger)
		return nil, fmt.Errorf("failed to create server: %w", err)
	}
	return c, nil
}

// runServe serves until ctx is cancelled, e.g. by SIGINT or SIGTERM.
func runServe(ctx context.Context, cfg config.Interface, logger *zap.Logger) error {
	c, err := initializeServeComponents(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.Shutdown(logger)

	if err := c.Server.Run(ctx); err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	logger.Info("Orchestrator stopped")
	return nil
}
