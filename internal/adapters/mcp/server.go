// Package mcp exposes the explanation service as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"
	"github.com/njchilds90/intsteps/internal/logging"
	"github.com/njchilds90/intsteps/internal/service"
	"github.com/njchilds90/intsteps/internal/telemetry"
)

// Explainer is the part of service.Service the tools need.
type Explainer interface {
	Explain(ctx context.Context, expr json.RawMessage, variable string) (*service.Result, error)
	Render(ctx context.Context, rule json.RawMessage) (*service.Result, error)
}

type Server struct {
	svc       Explainer
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

type explainArgs struct {
	Expr map[string]interface{} `mapstructure:"expr"`
	Var  string                 `mapstructure:"var"`
}

type renderArgs struct {
	Rule map[string]interface{} `mapstructure:"rule"`
}

// NewServer registers the tools on a fresh MCP server.
func NewServer(svc Explainer, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		svc:       svc,
		logger:    logger,
		mcpServer: server.NewMCPServer("intsteps", version),
	}
	s.registerTools()
	return s
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

// ServeStdio serves on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves on port until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("integral_steps",
		mcp.WithDescription("Explain an indefinite integral step by step. expr is a symbolic expression in JSON form."),
		mcp.WithObject("expr", mcp.Required(), mcp.Description(`Integrand, e.g. {"type":"sym","name":"x"}`)),
		mcp.WithString("var", mcp.Required(), mcp.Description("Integration variable")),
	), s.handleIntegralSteps)

	s.mcpServer.AddTool(mcp.NewTool("render_rule_tree",
		mcp.WithDescription("Render a precomputed integration rule tree as a step-by-step explanation."),
		mcp.WithObject("rule", mcp.Required(), mcp.Description(`Rule tree, e.g. {"rule":"power","context":...,"symbol":"x",...}`)),
	), s.handleRenderRuleTree)
}

func (s *Server) handleIntegralSteps(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args explainArgs
	if err := decodeArgs(request.GetArguments(), &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if args.Expr == nil {
		return mcp.NewToolResultError("missing argument: expr"), nil
	}
	expr, err := json.Marshal(args.Expr)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.result(s.svc.Explain(ctx, expr, args.Var))
}

func (s *Server) handleRenderRuleTree(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args renderArgs
	if err := decodeArgs(request.GetArguments(), &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if args.Rule == nil {
		return mcp.NewToolResultError("missing argument: rule"), nil
	}
	rule, err := json.Marshal(args.Rule)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.result(s.svc.Render(ctx, rule))
}

// result reports service errors to the client as tool errors; only
// unexpected failures are logged.
func (s *Server) result(res *service.Result, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		if service.Outcome(err) == telemetry.OutcomeError {
			s.logger.Error("MCP tool failed", "error", err)
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultStructured(res.Explanation, res.Explanation.Markdown()), nil
}

// decodeArgs maps raw tool arguments onto dst, rejecting unknown keys.
func decodeArgs(in map[string]interface{}, dst interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      dst,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(in); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}
