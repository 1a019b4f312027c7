// Package intsteps renders step-by-step explanations of indefinite
// integrals.
//
// The input is a rule tree (package rules) recording how an integral was
// solved. The Printer walks it and builds a nested outline of sentences,
// formulas and collapsible "Method #n" sections, then finishes with an
// optional simplification step and the constant of integration.
//
// The mathematics is delegated to a Solver. rules.Engine is the bundled one:
//
//	x := symbolic.S("x")
//	ex, err := intsteps.Explain(symbolic.MulOf(x, symbolic.ExpOf(x)), "x")
//	if errors.Is(err, intsteps.ErrNotEvaluable) {
//		// no step-by-step explanation for this integral
//	}
//
// Every call owns its own Printer, so renders may run concurrently.
package intsteps

import (
	"errors"
	"fmt"

	"github.com/njchilds90/intsteps/document"
	"github.com/njchilds90/intsteps/rules"
	"github.com/njchilds90/intsteps/symbolic"
)

// ErrNotEvaluable is returned when the root of the rule tree is DontKnow.
var ErrNotEvaluable = errors.New("integral not evaluable by step tracer")

// ErrNilRule is returned for a missing rule tree.
var ErrNilRule = errors.New("rule tree is nil")

// Solver is the computer-algebra side of a render.
type Solver interface {
	// Derive builds the rule tree for ∫integrand d(symbol).
	Derive(integrand symbolic.Expr, symbol string) rules.Rule
	// ClosedForm evaluates a rule. ok is false when it has no closed form.
	ClosedForm(r rules.Rule) (symbolic.Expr, bool)
	// Integrate is the full, non-step integration used for DontKnow nodes.
	Integrate(integrand symbolic.Expr, symbol string) (symbolic.Expr, bool)
	// Simplify is applied once to the final result.
	Simplify(e symbolic.Expr) symbolic.Expr
}

// Explanation is a finished render.
type Explanation struct {
	Content []document.Block `json:"content"`
	// Answer is the "result + C" block, nil when no closed form exists.
	Answer *document.Block `json:"answer"`
}

// Markdown renders the content tree as a Markdown outline.
func (e *Explanation) Markdown() string { return document.Markdown(e.Content) }

// Explain derives the rule tree for ∫integrand d(symbol) and renders it.
func Explain(integrand symbolic.Expr, symbol string, opts ...Option) (*Explanation, error) {
	cfg := newConfig(opts)
	r := cfg.solver.Derive(integrand, symbol)
	return explain(r, cfg)
}

// ExplainRule renders a precomputed rule tree.
func ExplainRule(r rules.Rule, opts ...Option) (*Explanation, error) {
	return explain(r, newConfig(opts))
}

func explain(r rules.Rule, cfg config) (*Explanation, error) {
	if r == nil {
		return nil, ErrNilRule
	}
	if _, unknown := r.(*rules.DontKnow); unknown {
		cfg.logger.Info("integral not evaluable", "integrand", r.Context().String(), "var", r.Symbol())
		return nil, fmt.Errorf("%w: %s d%s", ErrNotEvaluable, r.Context(), r.Symbol())
	}
	return newPrinter(r, cfg).Explanation(), nil
}

// Render renders r without rejecting an unresolved root.
func Render(r rules.Rule, opts ...Option) *Explanation {
	return NewPrinter(r, opts...).Explanation()
}
