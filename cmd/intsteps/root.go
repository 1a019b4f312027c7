package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/njchilds90/intsteps/internal/cache"
	"github.com/njchilds90/intsteps/internal/config"
	"github.com/njchilds90/intsteps/internal/logging"
	"github.com/njchilds90/intsteps/internal/service"
	"github.com/njchilds90/intsteps/internal/telemetry"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "intsteps",
		Short:         "Step-by-step explanations of indefinite integrals",
		Long:          `intsteps derives how an integral is solved and renders each rule as an explanation step.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	// Persistent flags (available to all commands)
	root.PersistentFlags().String("config", "intsteps.yaml", "Configuration file (missing file means defaults)")
	root.PersistentFlags().String("log-level", "", "Override log_level: debug, info, warn or error")

	root.AddCommand(newExplainCmd(), newServeCmd(), newMCPCmd(), newVersionCmd())
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// app holds what every subcommand needs.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	store   cache.Store
	metrics *telemetry.Metrics
	svc     *service.Service
}

func (a *app) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("closing cache", "error", err)
		}
	}
}

// loadConfig reads --config and applies --log-level.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	return cfg, cfg.Validate()
}

func newApp(cfg config.Config, metrics *telemetry.Metrics) (*app, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logging.New(level)

	store, err := cache.New(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	logger.Debug("configuration loaded", "cache", cfg.Cache.Backend, "log_level", cfg.LogLevel)

	opts := []service.Option{service.WithLogger(logger), service.WithCache(store)}
	if metrics != nil {
		opts = append(opts, service.WithMetrics(metrics))
	}
	return &app{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		metrics: metrics,
		svc:     service.New(opts...),
	}, nil
}
