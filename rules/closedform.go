package rules

import (
	"github.com/njchilds90/intsteps/symbolic"
)

// ClosedForm returns the antiderivative recorded by r. ok is false when r
// or any sub-rule it depends on is DontKnow; the returned expression is then
// the unevaluated integral of r's context.
func ClosedForm(r Rule) (symbolic.Expr, bool) {
	unevaluated := func() (symbolic.Expr, bool) {
		return symbolic.IntegralOf(r.Context(), r.Symbol()), false
	}
	x := symbolic.S(r.Symbol())

	switch v := r.(type) {
	case *Constant:
		return symbolic.MulOf(v.Value, x), true

	case *ConstantTimes:
		sub, ok := ClosedForm(v.Substep)
		if !ok {
			return unevaluated()
		}
		return symbolic.MulOf(v.Constant, sub), true

	case *Power:
		if n, isNum := v.Exp.(*symbolic.Num); isNum && n.IsNegOne() {
			return symbolic.LnOf(symbolic.AbsOf(v.Base)), true
		}
		next := symbolic.AddOf(v.Exp, symbolic.N(1))
		return symbolic.Div(symbolic.PowOf(v.Base, next), next), true

	case *Add:
		terms := make([]symbolic.Expr, len(v.Substeps))
		for i, s := range v.Substeps {
			t, ok := ClosedForm(s)
			if !ok {
				return unevaluated()
			}
			terms[i] = t
		}
		return symbolic.AddOf(terms...), true

	case *U:
		sub, ok := ClosedForm(v.Substep)
		if !ok {
			return unevaluated()
		}
		return sub.Sub(v.UVar, v.UFunc), true

	case *Parts:
		vf, ok := ClosedForm(v.VStep)
		if !ok || v.SecondStep == nil {
			return unevaluated()
		}
		second, ok := ClosedForm(v.SecondStep)
		if !ok {
			return unevaluated()
		}
		return symbolic.AddOf(symbolic.MulOf(v.U, vf), symbolic.Neg(second)), true

	case *CyclicParts:
		total, ok := CyclicTotal(v)
		if !ok {
			return unevaluated()
		}
		return symbolic.Div(total, symbolic.AddOf(symbolic.N(1), symbolic.Neg(v.Coefficient))), true

	case *Trig:
		switch v.Func {
		case "sin":
			return symbolic.Neg(symbolic.CosOf(v.Arg)), true
		case "cos":
			return symbolic.SinOf(v.Arg), true
		case "sec*tan":
			return symbolic.SecOf(v.Arg), true
		case "csc*cot":
			return symbolic.Neg(symbolic.CscOf(v.Arg)), true
		case "sec**2":
			return symbolic.TanOf(v.Arg), true
		case "csc**2":
			return symbolic.Neg(symbolic.CotOf(v.Arg)), true
		}
		return unevaluated()

	case *Exp:
		power := symbolic.PowOf(v.Base, v.Exponent)
		if symbolic.IsE(v.Base) {
			return power, true
		}
		return symbolic.Div(power, symbolic.LnOf(v.Base)), true

	case *Rewrite:
		return closedFormOr(v.Substep, unevaluated)

	case *CompleteSquare:
		return closedFormOr(v.Substep, unevaluated)

	case *TrigSubstitution:
		sub, ok := ClosedForm(v.Substep)
		if !ok {
			return unevaluated()
		}
		return symbolic.TrigSimplify(sub.Sub(v.Theta, v.Inverse)), true

	case *Alternative:
		// Same candidate the printer shows first.
		filtered := FilterAlternatives(v).(*Alternative)
		if len(filtered.Alternatives) == 0 {
			return unevaluated()
		}
		return closedFormOr(filtered.Alternatives[0], unevaluated)

	case *DontKnow:
		return unevaluated()

	case *Reciprocal:
		return symbolic.LnOf(symbolic.AbsOf(v.Func)), true

	case *Arctan:
		// a/(b·√(c/b)) · atan(x/√(c/b))
		k := symbolic.SqrtOf(symbolic.Div(v.C, v.B))
		coeff := symbolic.Div(v.A, symbolic.MulOf(v.B, k))
		return symbolic.MulOf(coeff, symbolic.AtanOf(symbolic.Div(x, k))), true

	case *Piecewise:
		pieces := make([]symbolic.Piece, len(v.Subfunctions))
		for i, c := range v.Subfunctions {
			e, ok := ClosedForm(c.Rule)
			if !ok {
				return unevaluated()
			}
			pieces[i] = symbolic.Piece{Value: e, Cond: c.Cond}
		}
		return symbolic.PiecewiseOf(pieces...), true
	}
	return unevaluated()
}

func closedFormOr(r Rule, fallback func() (symbolic.Expr, bool)) (symbolic.Expr, bool) {
	e, ok := ClosedForm(r)
	if !ok {
		return fallback()
	}
	return e, true
}

// CyclicTotal sums sign·u·v over the parts rules, signs alternating from +.
func CyclicTotal(c *CyclicParts) (symbolic.Expr, bool) {
	total := symbolic.Expr(symbolic.N(0))
	sign := int64(1)
	for _, p := range c.PartsRules {
		vf, ok := ClosedForm(p.VStep)
		if !ok {
			return nil, false
		}
		total = symbolic.AddOf(total, symbolic.MulOf(symbolic.N(sign), p.U, vf))
		sign = -sign
	}
	return total, true
}
