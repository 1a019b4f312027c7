// Package service is the cache-aware explanation service shared by the HTTP,
// MCP and CLI front ends.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/njchilds90/intsteps"
	"github.com/njchilds90/intsteps/internal/cache"
	"github.com/njchilds90/intsteps/internal/logging"
	"github.com/njchilds90/intsteps/internal/telemetry"
	"github.com/njchilds90/intsteps/rules"
	"github.com/njchilds90/intsteps/symbolic"
)

// ErrBadInput marks requests that could not be decoded.
var ErrBadInput = errors.New("bad input")

// Result is one explanation and whether it came from the cache.
type Result struct {
	Explanation *intsteps.Explanation
	Cached      bool
}

type Service struct {
	store   cache.Store
	metrics *telemetry.Metrics
	logger  *slog.Logger
	solver  intsteps.Solver
}

type Option func(*Service)

// WithCache enables caching of rendered explanations. A nil store disables it.
func WithCache(s cache.Store) Option {
	return func(svc *Service) {
		svc.store = s
	}
}

// WithMetrics records renders, rules and cache lookups.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(svc *Service) {
		svc.metrics = m
	}
}

// WithLogger sets the service logger. The renderer logs through it too.
func WithLogger(l *slog.Logger) Option {
	return func(svc *Service) {
		svc.logger = l
	}
}

// WithSolver replaces the default rules.Engine.
func WithSolver(s intsteps.Solver) Option {
	return func(svc *Service) {
		svc.solver = s
	}
}

func New(opts ...Option) *Service {
	s := &Service{
		logger: logging.NewNop(),
		solver: rules.Engine{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Explain renders the steps of ∫expr d(variable). expr is the JSON form of a
// symbolic expression.
func (s *Service) Explain(ctx context.Context, expr json.RawMessage, variable string) (*Result, error) {
	start := time.Now()
	e, err := symbolic.ParseJSON(expr)
	if err != nil {
		return nil, s.fail(start, fmt.Errorf("%w: expr: %v", ErrBadInput, err))
	}
	variable = strings.TrimSpace(variable)
	if variable == "" {
		return nil, s.fail(start, fmt.Errorf("%w: var is required", ErrBadInput))
	}
	canonical, err := json.Marshal(symbolic.ToMap(e))
	if err != nil {
		return nil, s.fail(start, fmt.Errorf("encode expr: %w", err))
	}
	key := cache.Key("explain", canonical, []byte(variable))
	return s.cached(ctx, start, key, func() (*intsteps.Explanation, error) {
		return intsteps.Explain(e, variable, s.renderOptions()...)
	})
}

// Render renders a rule tree given in its JSON form.
func (s *Service) Render(ctx context.Context, rule json.RawMessage) (*Result, error) {
	start := time.Now()
	r, err := rules.Unmarshal(rule)
	if err != nil {
		return nil, s.fail(start, fmt.Errorf("%w: rule: %v", ErrBadInput, err))
	}
	canonical, err := rules.Marshal(r)
	if err != nil {
		return nil, s.fail(start, fmt.Errorf("encode rule: %w", err))
	}
	key := cache.Key("render", canonical)
	return s.cached(ctx, start, key, func() (*intsteps.Explanation, error) {
		return intsteps.ExplainRule(r, s.renderOptions()...)
	})
}

// Integrate returns the closed form of ∫expr d(variable) without steps.
func (s *Service) Integrate(expr json.RawMessage, variable string) (symbolic.Expr, error) {
	variable = strings.TrimSpace(variable)
	if variable == "" {
		return nil, fmt.Errorf("%w: var is required", ErrBadInput)
	}
	e, err := symbolic.ParseJSON(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: expr: %v", ErrBadInput, err)
	}
	res, ok := s.solver.Integrate(e, variable)
	if !ok {
		return nil, fmt.Errorf("%w: %s d%s", intsteps.ErrNotEvaluable, e, variable)
	}
	return s.solver.Simplify(res), nil
}

func (s *Service) renderOptions() []intsteps.Option {
	opts := []intsteps.Option{
		intsteps.WithSolver(s.solver),
		intsteps.WithLogger(s.logger),
	}
	if s.metrics != nil {
		opts = append(opts, intsteps.WithHooks(s.metrics.Hooks()))
	}
	return opts
}

// cached serves key from the store or renders and stores it. Store errors
// are logged and the request proceeds uncached.
func (s *Service) cached(ctx context.Context, start time.Time, key string, render func() (*intsteps.Explanation, error)) (*Result, error) {
	if s.store != nil {
		data, err := s.store.Get(ctx, key)
		switch {
		case err == nil:
			var ex intsteps.Explanation
			if err := json.Unmarshal(data, &ex); err == nil {
				s.hit()
				s.observe(telemetry.OutcomeOK, start)
				return &Result{Explanation: &ex, Cached: true}, nil
			}
			s.logger.Warn("discarding corrupt cache entry", "key", key)
			s.miss()
		case errors.Is(err, cache.ErrMiss):
			s.miss()
		default:
			s.logger.Warn("cache read failed", "key", key, "error", err)
			s.miss()
		}
	}

	ex, err := render()
	if err != nil {
		return nil, s.fail(start, err)
	}
	s.observe(telemetry.OutcomeOK, start)

	if s.store != nil {
		data, err := json.Marshal(ex)
		if err == nil {
			err = s.store.Set(ctx, key, data)
		}
		if err != nil {
			s.logger.Warn("cache write failed", "key", key, "error", err)
		}
	}
	return &Result{Explanation: ex}, nil
}

func (s *Service) fail(start time.Time, err error) error {
	outcome := Outcome(err)
	s.observe(outcome, start)
	if outcome == telemetry.OutcomeError {
		s.logger.Error("render failed", "error", err)
	}
	return err
}

// Outcome classifies err for metrics and status codes.
func Outcome(err error) string {
	switch {
	case err == nil:
		return telemetry.OutcomeOK
	case errors.Is(err, intsteps.ErrNotEvaluable):
		return telemetry.OutcomeNotEvaluable
	case errors.Is(err, ErrBadInput), errors.Is(err, intsteps.ErrNilRule):
		return telemetry.OutcomeBadInput
	}
	return telemetry.OutcomeError
}

func (s *Service) observe(outcome string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveRender(outcome, time.Since(start))
	}
}

func (s *Service) hit() {
	if s.metrics != nil {
		s.metrics.CacheHit()
	}
}

func (s *Service) miss() {
	if s.metrics != nil {
		s.metrics.CacheMiss()
	}
}
