package rules

import (
	"github.com/njchilds90/intsteps/symbolic"
)

// ReplaceSymbol returns a copy of r with every occurrence of the variable
// old renamed to repl: in contexts, variables of integration and every
// expression-valued field. Each variant has its own case; a variant added
// to the tree needs one here too.
func ReplaceSymbol(r Rule, old, repl string) Rule {
	if r == nil || old == repl {
		return r
	}
	to := symbolic.S(repl)
	ex := func(e symbolic.Expr) symbolic.Expr {
		if e == nil {
			return nil
		}
		return e.Sub(old, to)
	}
	name := func(s string) string {
		if s == old {
			return repl
		}
		return s
	}
	sub := func(r Rule) Rule { return ReplaceSymbol(r, old, repl) }
	subs := func(rs []Rule) []Rule {
		out := make([]Rule, len(rs))
		for i, r := range rs {
			out[i] = sub(r)
		}
		return out
	}

	node := Node{Integrand: ex(r.Context()), Var: name(r.Symbol())}

	switch v := r.(type) {
	case *Constant:
		return &Constant{Node: node, Value: ex(v.Value)}
	case *ConstantTimes:
		return &ConstantTimes{Node: node, Constant: ex(v.Constant), Other: ex(v.Other), Substep: sub(v.Substep)}
	case *Power:
		return &Power{Node: node, Base: ex(v.Base), Exp: ex(v.Exp)}
	case *Add:
		return &Add{Node: node, Substeps: subs(v.Substeps)}
	case *U:
		return &U{Node: node, UVar: name(v.UVar), UFunc: ex(v.UFunc), Substep: sub(v.Substep)}
	case *Parts:
		return replaceParts(v, node, ex, sub)
	case *CyclicParts:
		parts := make([]*Parts, len(v.PartsRules))
		for i, p := range v.PartsRules {
			parts[i] = replaceParts(p, Node{Integrand: ex(p.Integrand), Var: name(p.Var)}, ex, sub)
		}
		return &CyclicParts{Node: node, PartsRules: parts, Coefficient: ex(v.Coefficient)}
	case *Trig:
		return &Trig{Node: node, Func: v.Func, Arg: ex(v.Arg)}
	case *Exp:
		return &Exp{Node: node, Base: ex(v.Base), Exponent: ex(v.Exponent)}
	case *Rewrite:
		return &Rewrite{Node: node, Rewritten: ex(v.Rewritten), Substep: sub(v.Substep)}
	case *CompleteSquare:
		return &CompleteSquare{Node: node, Rewritten: ex(v.Rewritten), Substep: sub(v.Substep)}
	case *TrigSubstitution:
		return &TrigSubstitution{
			Node:      node,
			Theta:     name(v.Theta),
			Func:      ex(v.Func),
			Inverse:   ex(v.Inverse),
			Rewritten: ex(v.Rewritten),
			Substep:   sub(v.Substep),
		}
	case *Alternative:
		return &Alternative{Node: node, Alternatives: subs(v.Alternatives)}
	case *DontKnow:
		return &DontKnow{Node: node}
	case *Reciprocal:
		return &Reciprocal{Node: node, Func: ex(v.Func)}
	case *Arctan:
		return &Arctan{Node: node, A: ex(v.A), B: ex(v.B), C: ex(v.C)}
	case *Piecewise:
		cases := make([]Case, len(v.Subfunctions))
		for i, c := range v.Subfunctions {
			cases[i] = Case{Rule: sub(c.Rule)}
			if c.Cond != nil {
				cases[i].Cond = c.Cond.Sub(old, to)
			}
		}
		return &Piecewise{Node: node, Subfunctions: cases}
	}
	return r
}

func replaceParts(p *Parts, node Node, ex func(symbolic.Expr) symbolic.Expr, sub func(Rule) Rule) *Parts {
	return &Parts{Node: node, U: ex(p.U), Dv: ex(p.Dv), VStep: sub(p.VStep), SecondStep: sub(p.SecondStep)}
}
