package rules

import (
	"github.com/njchilds90/intsteps/symbolic"
)

// Engine is the bundled solver: pattern-based derivation on top of the
// symbolic kernel.
type Engine struct{}

func (Engine) Derive(integrand symbolic.Expr, symbol string) Rule { return Derive(integrand, symbol) }

func (Engine) ClosedForm(r Rule) (symbolic.Expr, bool) { return ClosedForm(r) }

// Integrate computes an antiderivative without steps.
func (Engine) Integrate(integrand symbolic.Expr, symbol string) (symbolic.Expr, bool) {
	if r := Derive(integrand, symbol); !ContainsUnknown(FilterAlternatives(r)) {
		if e, ok := ClosedForm(r); ok {
			return e, true
		}
	}
	return symbolic.Integrate(integrand, symbol)
}

// Simplify runs trig simplification, then general simplification.
func (Engine) Simplify(e symbolic.Expr) symbolic.Expr {
	return symbolic.DeepSimplify(symbolic.TrigSimplify(e))
}
