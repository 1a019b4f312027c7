package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	mcpAdapter "github.com/njchilds90/intsteps/internal/adapters/mcp"
	"github.com/spf13/cobra"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the Model Context Protocol server",
		Long: `Exposes the integral_steps and render_rule_tree tools over MCP.
With stdio (the default) logs go to stderr and stdout carries the protocol.`,
		RunE: runMCP,
	}
	cmd.Flags().String("transport", "", "stdio or sse (overrides mcp.transport)")
	cmd.Flags().Int("port", 0, "SSE port (overrides mcp.port)")
	return cmd
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if t, _ := cmd.Flags().GetString("transport"); t != "" {
		cfg.MCP.Transport = t
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.MCP.Port = port
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a, err := newApp(cfg, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := mcpAdapter.NewServer(a.svc, Version, a.logger)
	switch cfg.MCP.Transport {
	case "sse":
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.ServeSSE(ctx, cfg.MCP.Port)
	case "stdio":
		return srv.ServeStdio()
	}
	return fmt.Errorf("unknown transport %q", cfg.MCP.Transport)
}
