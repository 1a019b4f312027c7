// Package http serves explanations over a JSON HTTP API.
//
//	POST /explain  {expr, var}  -> {id, cached, explanation}
//	POST /render   {rule}       -> {id, cached, explanation}
//	POST /tool     {tool, params}
//	GET  /schema   tool schema for agent registration
//	GET  /health   liveness check
//	GET  /metrics  Prometheus exposition, when configured
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/njchilds90/intsteps"
	"github.com/njchilds90/intsteps/internal/logging"
	"github.com/njchilds90/intsteps/internal/service"
	"github.com/njchilds90/intsteps/internal/telemetry"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// Explainer is the part of service.Service the API needs.
type Explainer interface {
	Explain(ctx context.Context, expr json.RawMessage, variable string) (*service.Result, error)
	Render(ctx context.Context, rule json.RawMessage) (*service.Result, error)
	HandleToolCall(ctx context.Context, req service.ToolRequest) service.ToolResponse
}

type Server struct {
	svc     Explainer
	logger  *slog.Logger
	metrics http.Handler
	now     func() time.Time
}

type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithMetricsHandler mounts h at GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

type explainRequest struct {
	Expr json.RawMessage `json:"expr"`
	Var  string          `json:"var"`
}

type renderRequest struct {
	Rule json.RawMessage `json:"rule"`
}

type explanationResponse struct {
	ID          string                `json:"id"`
	Cached      bool                  `json:"cached"`
	Explanation *intsteps.Explanation `json:"explanation"`
}

// NewHandler builds the router.
func NewHandler(svc Explainer, opts ...Option) http.Handler {
	s := &Server{svc: svc, logger: logging.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.recoverer)

	r.Post("/explain", s.Explain)
	r.Post("/render", s.Render)
	r.Post("/tool", s.Tool)
	r.Get("/schema", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, service.ToolSpecJSON())
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "ok",
			"time":   s.now().UTC().Format(time.RFC3339),
		})
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	return r
}

// Explain handles POST /explain.
func (s *Server) Explain(w http.ResponseWriter, r *http.Request) {
	var req explainRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if len(req.Expr) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("missing field: expr"))
		return
	}
	res, err := s.svc.Explain(r.Context(), req.Expr, req.Var)
	s.respond(w, r, res, err)
}

// Render handles POST /render.
func (s *Server) Render(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if len(req.Rule) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("missing field: rule"))
		return
	}
	res, err := s.svc.Render(r.Context(), req.Rule)
	s.respond(w, r, res, err)
}

// Tool handles POST /tool. Tool errors are reported in the body with 200,
// as the tool protocol expects.
func (s *Server) Tool(w http.ResponseWriter, r *http.Request) {
	var req service.ToolRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, s.svc.HandleToolCall(r.Context(), req))
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, res *service.Result, err error) {
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			s.logger.Error("request failed", "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "error", err)
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, explanationResponse{
		ID:          uuid.NewString(),
		Cached:      res.Cached,
		Explanation: res.Explanation,
	})
}

func statusFor(err error) int {
	switch service.Outcome(err) {
	case telemetry.OutcomeBadInput:
		return http.StatusBadRequest
	case telemetry.OutcomeNotEvaluable:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// decodeJSON reads exactly one JSON object with no unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	// Ensure there's no trailing junk.
	if dec.More() {
		return errors.New("invalid JSON: trailing data")
	}
	return nil
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.logger.Error("panic in handler", "path", r.URL.Path, "panic", rec, "stack", string(debug.Stack()))
				writeError(w, http.StatusInternalServerError, errors.New("internal server error"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
