package rules

import (
	"fmt"

	"github.com/njchilds90/intsteps/symbolic"
)

// maxDepth bounds the recursion of Derive. Deeper sub-integrals become
// DontKnow.
const maxDepth = 12

// Derive builds a rule tree for ∫integrand d(symbol) by pattern matching.
// It never fails: integrals it cannot handle produce DontKnow nodes.
func Derive(integrand symbolic.Expr, symbol string) Rule {
	d := &deriver{}
	return d.derive(integrand.Simplify(), symbol, 0)
}

type deriver struct {
	dummies int
}

// dummy returns a fresh placeholder variable. Names start with an
// underscore so they never collide with user symbols; printers relabel them.
func (d *deriver) dummy() string {
	d.dummies++
	return fmt.Sprintf("_u%d", d.dummies)
}

func (d *deriver) derive(e symbolic.Expr, v string, depth int) Rule {
	node := At(e, v)
	if depth > maxDepth {
		return &DontKnow{Node: node}
	}
	if !symbolic.Has(e, v) {
		return &Constant{Node: node, Value: e}
	}
	var r Rule
	switch f := e.(type) {
	case *symbolic.Sym:
		return &Power{Node: node, Base: f, Exp: symbolic.N(1)}
	case *symbolic.Add:
		terms := f.Terms()
		steps := make([]Rule, len(terms))
		for i, t := range terms {
			steps[i] = d.derive(t, v, depth+1)
		}
		return &Add{Node: node, Substeps: steps}
	case *symbolic.Mul:
		r = d.product(f, node, depth)
	case *symbolic.Pow:
		r = d.power(f, node, depth)
	case *symbolic.Func:
		r = d.function(f, node, depth)
	}
	if r == nil {
		return &DontKnow{Node: node}
	}
	return r
}

// firstResolved runs attempts in order and returns the first result free of
// unknowns, else the first non-nil result.
func firstResolved(attempts ...func() Rule) Rule {
	var fallback Rule
	for _, try := range attempts {
		r := try()
		if r == nil {
			continue
		}
		if !ContainsUnknown(r) {
			return r
		}
		if fallback == nil {
			fallback = r
		}
	}
	return fallback
}

// ============================================================
// Products
// ============================================================

func (d *deriver) product(m *symbolic.Mul, node Node, depth int) Rule {
	v := node.Var
	var free, dep []symbolic.Expr
	for _, f := range m.Factors() {
		if symbolic.Has(f, v) {
			dep = append(dep, f)
		} else {
			free = append(free, f)
		}
	}
	if len(free) > 0 {
		c := symbolic.MulOf(free...)
		other := symbolic.MulOf(dep...)
		return &ConstantTimes{Node: node, Constant: c, Other: other, Substep: d.derive(other, v, depth+1)}
	}
	return firstResolved(
		func() Rule { return trigProduct(m, node) },
		func() Rule { return d.cyclicParts(m, node, depth) },
		func() Rule { return d.substitution(node, depth) },
		func() Rule { return d.parts(node, depth) },
		func() Rule { return d.expand(node, depth) },
	)
}

func trigProduct(m *symbolic.Mul, node Node) Rule {
	fs := m.Factors()
	if len(fs) != 2 {
		return nil
	}
	f1, ok1 := fs[0].(*symbolic.Func)
	f2, ok2 := fs[1].(*symbolic.Func)
	x := symbolic.S(node.Var)
	if !ok1 || !ok2 || !f1.Arg().Equal(x) || !f2.Arg().Equal(x) {
		return nil
	}
	switch f1.FuncName() + "*" + f2.FuncName() {
	case "sec*tan":
		return &Trig{Node: node, Func: "sec*tan", Arg: x}
	case "cot*csc":
		return &Trig{Node: node, Func: "csc*cot", Arg: x}
	}
	return nil
}

// cyclicParts handles exp(a·x+p)·sin(b·x+q) and exp·cos: two rounds of
// parts bring back the integrand times −(b/a)².
func (d *deriver) cyclicParts(m *symbolic.Mul, node Node, depth int) Rule {
	v := node.Var
	fs := m.Factors()
	if len(fs) != 2 {
		return nil
	}
	var ex, tr *symbolic.Func
	for _, f := range fs {
		fn, ok := f.(*symbolic.Func)
		if !ok {
			return nil
		}
		switch fn.FuncName() {
		case "exp":
			ex = fn
		case "sin", "cos":
			tr = fn
		}
	}
	if ex == nil || tr == nil {
		return nil
	}
	a, ok1 := symbolic.LinearSlope(ex.Arg(), v)
	b, ok2 := symbolic.LinearSlope(tr.Arg(), v)
	if !ok1 || !ok2 {
		return nil
	}
	u2 := symbolic.Div(tr.Diff(v), a)
	first := &Parts{Node: node, U: tr, Dv: ex, VStep: d.derive(ex, v, depth+1)}
	second := &Parts{Node: At(symbolic.MulOf(u2, ex), v), U: u2, Dv: ex, VStep: d.derive(ex, v, depth+1)}
	ratio := symbolic.NumDiv(b, a)
	return &CyclicParts{
		Node:        node,
		PartsRules:  []*Parts{first, second},
		Coefficient: symbolic.Neg(symbolic.PowOf(ratio, symbolic.N(2))),
	}
}

// ============================================================
// Powers
// ============================================================

func (d *deriver) power(p *symbolic.Pow, node Node, depth int) Rule {
	v := node.Var
	x := symbolic.S(v)
	base, exp := p.Base(), p.ExpExpr()

	if base.Equal(x) {
		if symbolic.Has(exp, v) {
			return nil
		}
		if n, ok := exp.(*symbolic.Num); ok {
			if n.IsNegOne() {
				return &Reciprocal{Node: node, Func: x}
			}
			return &Power{Node: node, Base: x, Exp: n}
		}
		return &Piecewise{Node: node, Subfunctions: []Case{
			{Rule: &Power{Node: node, Base: x, Exp: exp}, Cond: symbolic.Ne(exp, symbolic.N(-1))},
			{Rule: &Reciprocal{Node: At(symbolic.Recip(x), v), Func: x}},
		}}
	}
	if !symbolic.Has(base, v) && exp.Equal(x) {
		return &Exp{Node: node, Base: base, Exponent: x}
	}
	if fn, ok := base.(*symbolic.Func); ok && fn.Arg().Equal(x) && exp.Equal(symbolic.N(2)) {
		switch fn.FuncName() {
		case "sec":
			return &Trig{Node: node, Func: "sec**2", Arg: x}
		case "csc":
			return &Trig{Node: node, Func: "csc**2", Arg: x}
		}
	}
	if r := d.quadratic(base, exp, node, depth); r != nil {
		return r
	}
	if n, ok := exp.(*symbolic.Num); ok && n.IsInteger() && n.IsPositive() {
		if _, linear := symbolic.LinearSlope(base, v); linear && n.Float64() <= 6 {
			sub, rw := d.substitution(node, depth), d.expand(node, depth)
			if sub != nil && rw != nil {
				return &Alternative{Node: node, Alternatives: []Rule{sub, rw}}
			}
		}
	}
	return firstResolved(
		func() Rule { return d.substitution(node, depth) },
		func() Rule { return d.parts(node, depth) },
		func() Rule { return d.expand(node, depth) },
	)
}

// quadratic handles (a·x² + b·x + c)⁻¹ and (c − a·x²)^(−1/2) with numeric
// coefficients.
func (d *deriver) quadratic(base, exp symbolic.Expr, node Node, depth int) Rule {
	v := node.Var
	a, b, c, ok := quadraticCoeffs(base, v)
	if !ok {
		return nil
	}
	x := symbolic.S(v)
	theta := "theta"
	if symbolic.Has(node.Integrand, theta) {
		theta = d.dummy()
	}
	th := symbolic.S(theta)

	switch {
	case exp.Equal(symbolic.N(-1)) && !b.IsZero():
		// a(x + h)² + k with h = b/2a, k = c − b²/4a.
		h := symbolic.NumDiv(b, symbolic.NumMul(symbolic.N(2), a))
		k := symbolic.NumSub(c, symbolic.NumDiv(symbolic.NumMul(b, b), symbolic.NumMul(symbolic.N(4), a)))
		if !symbolic.NumDiv(k, a).IsPositive() {
			return nil
		}
		shift := symbolic.AddOf(x, h)
		rewritten := symbolic.Recip(symbolic.AddOf(symbolic.MulOf(a, symbolic.PowOf(shift, symbolic.N(2))), k))
		uv := d.dummy()
		inner := symbolic.Recip(symbolic.AddOf(symbolic.MulOf(a, symbolic.PowOf(symbolic.S(uv), symbolic.N(2))), k))
		sub := &U{Node: At(rewritten, v), UVar: uv, UFunc: shift, Substep: d.derive(inner, uv, depth+1)}
		return &CompleteSquare{Node: node, Rewritten: rewritten, Substep: sub}

	case exp.Equal(symbolic.N(-1)) && a.IsPositive() && c.IsPositive():
		// x = k·tan(θ), k = √(c/a): the integrand becomes k/c.
		k := symbolic.SqrtOf(symbolic.NumDiv(c, a))
		rewritten := symbolic.Div(k, c)
		return &Alternative{Node: node, Alternatives: []Rule{
			&TrigSubstitution{
				Node:      node,
				Theta:     theta,
				Func:      symbolic.MulOf(k, symbolic.TanOf(th)),
				Inverse:   symbolic.AtanOf(symbolic.Div(x, k)),
				Rewritten: rewritten,
				Substep:   &Constant{Node: At(rewritten, theta), Value: rewritten},
			},
			&Arctan{Node: node, A: symbolic.N(1), B: a, C: c},
		}}

	case exp.Equal(symbolic.F(-1, 2)) && b.IsZero() && a.IsNegative() && c.IsPositive():
		// x = k·sin(θ), k = √(c/|a|): the integrand becomes 1/√|a|.
		abs := symbolic.NumSub(symbolic.N(0), a)
		k := symbolic.SqrtOf(symbolic.NumDiv(c, abs))
		rewritten := symbolic.PowOf(abs, symbolic.F(-1, 2))
		return &TrigSubstitution{
			Node:      node,
			Theta:     theta,
			Func:      symbolic.MulOf(k, symbolic.SinOf(th)),
			Inverse:   symbolic.AsinOf(symbolic.Div(x, k)),
			Rewritten: rewritten,
			Substep:   &Constant{Node: At(rewritten, theta), Value: rewritten},
		}
	}
	return nil
}

func quadraticCoeffs(e symbolic.Expr, v string) (a, b, c *symbolic.Num, ok bool) {
	coeffs, isPoly := symbolic.PolyCoeffs(e, v)
	if !isPoly || symbolic.Degree(e, v) != 2 {
		return nil, nil, nil, false
	}
	get := func(deg int) (*symbolic.Num, bool) {
		ce, present := coeffs[deg]
		if !present {
			return symbolic.N(0), true
		}
		n, isNum := ce.(*symbolic.Num)
		return n, isNum
	}
	var okA, okB, okC bool
	a, okA = get(2)
	b, okB = get(1)
	c, okC = get(0)
	return a, b, c, okA && okB && okC
}

// ============================================================
// Functions
// ============================================================

func (d *deriver) function(f *symbolic.Func, node Node, depth int) Rule {
	v := node.Var
	x := symbolic.S(v)
	if !f.Arg().Equal(x) {
		return d.substitution(node, depth)
	}
	switch f.FuncName() {
	case "sin", "cos":
		return &Trig{Node: node, Func: f.FuncName(), Arg: x}
	case "exp":
		return &Exp{Node: node, Base: symbolic.E, Exponent: x}
	case "tan":
		return &Alternative{Node: node, Alternatives: []Rule{
			d.rewrite(node, symbolic.Div(symbolic.SinOf(x), symbolic.CosOf(x)), depth),
			d.rewrite(node, symbolic.MulOf(symbolic.SinOf(x), symbolic.SecOf(x)), depth),
		}}
	case "cot":
		return d.rewrite(node, symbolic.Div(symbolic.CosOf(x), symbolic.SinOf(x)), depth)
	case "sec":
		// sec = (sec² + sec·tan)/(sec + tan); the numerator is built from the
		// derivative so the substitution cancels exactly.
		denom := symbolic.AddOf(symbolic.SecOf(x), symbolic.TanOf(x))
		return d.rewrite(node, symbolic.Div(denom.Diff(v), denom), depth)
	case "csc":
		denom := symbolic.AddOf(symbolic.CscOf(x), symbolic.CotOf(x))
		return d.rewrite(node, symbolic.Div(symbolic.Neg(denom.Diff(v)), denom), depth)
	case "ln", "asin", "acos", "atan":
		return d.parts(node, depth)
	}
	return nil
}

func (d *deriver) rewrite(node Node, rewritten symbolic.Expr, depth int) Rule {
	return &Rewrite{Node: node, Rewritten: rewritten, Substep: d.derive(rewritten, node.Var, depth+1)}
}

// expand rewrites a polynomial into expanded form when that changes it.
func (d *deriver) expand(node Node, depth int) Rule {
	e := node.Integrand
	if _, ok := symbolic.PolyCoeffs(e, node.Var); !ok {
		return nil
	}
	expanded := symbolic.Expand(e)
	if expanded.String() == e.String() {
		return nil
	}
	return d.rewrite(node, expanded, depth)
}

// ============================================================
// Substitution and parts
// ============================================================

// substitution tries u = g for every candidate subexpression g whose
// derivative divides the integrand, leaving an integrand in u alone. Several
// working substitutions become an Alternative.
func (d *deriver) substitution(node Node, depth int) Rule {
	e, v := node.Integrand, node.Var
	var found []Rule
	for _, g := range substitutionCandidates(e, v) {
		if g.Equal(e) {
			continue
		}
		du := g.Diff(v)
		if n, ok := du.(*symbolic.Num); ok && n.IsZero() {
			continue
		}
		uv := d.dummy()
		u := symbolic.S(uv)
		r := symbolic.Replace(symbolic.Div(e, du), g, u)
		if symbolic.Has(r, v) || !symbolic.Has(r, uv) {
			continue
		}
		found = append(found, &U{Node: node, UVar: uv, UFunc: g, Substep: d.derive(r, uv, depth+1)})
	}
	switch len(found) {
	case 0:
		return nil
	case 1:
		return found[0]
	}
	return &Alternative{Node: node, Alternatives: found}
}

func substitutionCandidates(e symbolic.Expr, v string) []symbolic.Expr {
	seen := map[string]bool{}
	var out []symbolic.Expr
	add := func(g symbolic.Expr) {
		if !symbolic.Has(g, v) || g.Equal(symbolic.S(v)) {
			return
		}
		key := g.String()
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, g)
	}
	var walk func(symbolic.Expr)
	walk = func(n symbolic.Expr) {
		switch t := n.(type) {
		case *symbolic.Add:
			for _, term := range t.Terms() {
				walk(term)
			}
		case *symbolic.Mul:
			for _, f := range t.Factors() {
				walk(f)
			}
		case *symbolic.Pow:
			add(t.Base())
			add(t.ExpExpr())
			walk(t.Base())
			walk(t.ExpExpr())
		case *symbolic.Func:
			add(t)
			add(t.Arg())
			walk(t.Arg())
		}
	}
	walk(e)
	return out
}

// parts applies ∫u dv with u the polynomial part against exp, sin, cos or a
// numeric power, or with u a logarithm or inverse trig function against the
// polynomial part.
func (d *deriver) parts(node Node, depth int) Rule {
	e, v := node.Integrand, node.Var
	factors := []symbolic.Expr{e}
	if m, ok := e.(*symbolic.Mul); ok {
		factors = m.Factors()
	}
	var poly, other []symbolic.Expr
	for _, f := range factors {
		if isMonomial(f, v) {
			poly = append(poly, f)
		} else {
			other = append(other, f)
		}
	}
	if len(other) != 1 {
		return nil
	}
	g := other[0]
	var u, dv symbolic.Expr
	switch {
	case len(poly) > 0 && differentiatesAway(g, v):
		u, dv = symbolic.MulOf(poly...), g
	case isLogLike(g, v):
		u, dv = g, symbolic.MulOf(poly...)
	default:
		return nil
	}
	vstep := d.derive(dv, v, depth+1)
	vf, ok := ClosedForm(vstep)
	if !ok {
		return nil
	}
	second := d.derive(symbolic.MulOf(vf, u.Diff(v)), v, depth+1)
	return &Parts{Node: node, U: u, Dv: dv, VStep: vstep, SecondStep: second}
}

func isMonomial(e symbolic.Expr, v string) bool {
	switch t := e.(type) {
	case *symbolic.Sym:
		return t.Name() == v
	case *symbolic.Pow:
		n, ok := t.ExpExpr().(*symbolic.Num)
		return ok && t.Base().Equal(symbolic.S(v)) && n.IsInteger() && n.IsPositive()
	}
	return false
}

// differentiatesAway reports functions whose antiderivative keeps the same
// shape: exp, sin and cos of a linear argument, and b^(linear).
func differentiatesAway(e symbolic.Expr, v string) bool {
	switch t := e.(type) {
	case *symbolic.Func:
		switch t.FuncName() {
		case "exp", "sin", "cos":
			_, ok := symbolic.LinearSlope(t.Arg(), v)
			return ok
		}
	case *symbolic.Pow:
		_, ok := symbolic.LinearSlope(t.ExpExpr(), v)
		return ok && !symbolic.Has(t.Base(), v)
	}
	return false
}

func isLogLike(e symbolic.Expr, v string) bool {
	f, ok := e.(*symbolic.Func)
	if !ok || !f.Arg().Equal(symbolic.S(v)) {
		return false
	}
	switch f.FuncName() {
	case "ln", "asin", "acos", "atan":
		return true
	}
	return false
}
