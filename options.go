package intsteps

import (
	"log/slog"

	"github.com/njchilds90/intsteps/document"
	"github.com/njchilds90/intsteps/internal/logging"
	"github.com/njchilds90/intsteps/rules"
)

// RuleEvent is reported for every rule the Printer dispatches.
type RuleEvent struct {
	Tag   rules.Tag
	Depth int
}

// FinalizeEvent is reported once per render.
type FinalizeEvent struct {
	Answered   bool
	Simplified bool
}

// Hooks observe a render. Nil callbacks are skipped.
type Hooks struct {
	OnRule     func(*RuleEvent)
	OnFinalize func(*FinalizeEvent)
}

// Option configures a render.
type Option func(*config)

type config struct {
	solver    Solver
	formatter document.Formatter
	logger    *slog.Logger
	hooks     Hooks
}

// WithSolver replaces the bundled rules.Engine.
func WithSolver(s Solver) Option {
	return func(c *config) {
		c.solver = s
	}
}

// WithFormatter sets how formulas are typeset (default LaTeX).
func WithFormatter(f document.Formatter) Option {
	return func(c *config) {
		c.formatter = f
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithHooks registers observability hooks.
func WithHooks(h Hooks) Option {
	return func(c *config) {
		c.hooks = h
	}
}

func newConfig(opts []Option) config {
	c := config{}
	for _, opt := range opts {
		opt(&c)
	}
	if c.solver == nil {
		c.solver = rules.Engine{}
	}
	if c.formatter == nil {
		c.formatter = document.LaTeXFormatter{}
	}
	if c.logger == nil {
		c.logger = logging.NewNop()
	}
	return c
}
