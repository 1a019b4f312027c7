package symbolic

import (
	"sort"
)

// ============================================================
// Deep Simplification and Trig Identities
// ============================================================

// TrigSimplify applies trig identities: sin²+cos²=1, exp(ln(x))=x, ln(exp(x))=x.
func TrigSimplify(e Expr) Expr {
	return trigSimplifyExpr(e.Simplify()).Simplify()
}

func trigSimplifyExpr(e Expr) Expr {
	switch v := e.(type) {
	case *Add:
		newTerms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			newTerms[i] = trigSimplifyExpr(t)
		}
		return trigFindPythagorean(AddOf(newTerms...))
	case *Mul:
		newFactors := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			newFactors[i] = trigSimplifyExpr(f)
		}
		return trigQuotients(MulOf(newFactors...))
	case *Pow:
		return PowOf(trigSimplifyExpr(v.base), v.exp)
	case *Func:
		return funcOf(v.name, trigSimplifyExpr(v.arg)).Simplify()
	}
	return e
}

// trigFindPythagorean replaces c*sin(a)^2 + c*cos(a)^2 with c.
func trigFindPythagorean(e Expr) Expr {
	add, ok := e.(*Add)
	if !ok {
		return e
	}
	type trigTerm struct {
		funcName string
		argStr   string
		coeff    *Num
		idx      int
	}
	var trigTerms []trigTerm
	for idx, t := range add.terms {
		coeff, inner := extractCoefficient(t)
		p, ok := inner.(*Pow)
		if !ok || !isNumEqual(p.exp, 2) {
			continue
		}
		if fn, ok := p.base.(*Func); ok && (fn.name == "sin" || fn.name == "cos") {
			trigTerms = append(trigTerms, trigTerm{fn.name, fn.arg.String(), coeff, idx})
		}
	}
	for i := 0; i < len(trigTerms); i++ {
		for j := i + 1; j < len(trigTerms); j++ {
			ti, tj := trigTerms[i], trigTerms[j]
			if ti.argStr == tj.argStr && ti.funcName != tj.funcName && ti.coeff.Equal(tj.coeff) {
				newTerms := []Expr{}
				for idx, t := range add.terms {
					if idx != ti.idx && idx != tj.idx {
						newTerms = append(newTerms, t)
					}
				}
				newTerms = append(newTerms, ti.coeff)
				return AddOf(newTerms...)
			}
		}
	}
	return e
}

// trigQuotients folds sin(a)/cos(a) into tan(a) and cos(a)/sin(a) into cot(a).
func trigQuotients(e Expr) Expr {
	m, ok := e.(*Mul)
	if !ok {
		return e
	}
	sinExp := map[string]Expr{}
	cosExp := map[string]Expr{}
	args := map[string]Expr{}
	for _, f := range m.factors {
		base, exp := f, Expr(N(1))
		if p, ok := f.(*Pow); ok {
			base, exp = p.base, p.exp
		}
		fn, ok := base.(*Func)
		if !ok {
			continue
		}
		switch fn.name {
		case "sin":
			sinExp[fn.arg.String()] = exp
			args[fn.arg.String()] = fn.arg
		case "cos":
			cosExp[fn.arg.String()] = exp
			args[fn.arg.String()] = fn.arg
		}
	}
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		se, sok := sinExp[k]
		ce, cok := cosExp[k]
		if !sok || !cok || !AddOf(se, ce).Equal(N(0)) {
			continue
		}
		arg := args[k]
		rest := []Expr{}
		for _, f := range m.factors {
			base := f
			if p, ok := f.(*Pow); ok {
				base = p.base
			}
			if fn, ok := base.(*Func); ok && (fn.name == "sin" || fn.name == "cos") && fn.arg.Equal(arg) {
				continue
			}
			rest = append(rest, f)
		}
		return MulOf(append(rest, PowOf(TanOf(arg), se))...)
	}
	return e
}

// DeepSimplify applies repeated simplification+trig passes until stable.
func DeepSimplify(e Expr) Expr {
	prev := ""
	curr := e.Simplify()
	for i := 0; i < 10; i++ {
		str := curr.String()
		if str == prev {
			break
		}
		prev = str
		curr = TrigSimplify(curr).Simplify()
	}
	return curr
}

// ============================================================
// Expansion
// ============================================================

func Expand(e Expr) Expr { return expandExpr(e).Simplify() }

func expandExpr(e Expr) Expr {
	switch v := e.(type) {
	case *Mul:
		expanded := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			expanded[i] = expandExpr(f)
		}
		for i, f := range expanded {
			if a, ok := f.(*Add); ok {
				rest := make([]Expr, 0, len(expanded)-1)
				for j, ef := range expanded {
					if j != i {
						rest = append(rest, ef)
					}
				}
				terms := make([]Expr, len(a.terms))
				for k, t := range a.terms {
					terms[k] = expandExpr(MulOf(append([]Expr{t}, rest...)...))
				}
				return expandExpr(AddOf(terms...))
			}
		}
		return MulOf(expanded...)
	case *Add:
		newTerms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			newTerms[i] = expandExpr(t)
		}
		return AddOf(newTerms...)
	case *Pow:
		base := expandExpr(v.base)
		if n, ok := v.exp.(*Num); ok && n.IsInteger() {
			exp := n.val.Num().Int64()
			if _, isAdd := base.(*Add); isAdd && exp >= 2 && exp <= 10 {
				result := base
				for i := int64(1); i < exp; i++ {
					result = distribute(result, base)
				}
				return result
			}
		}
		return PowOf(base, expandExpr(v.exp))
	}
	return e
}

// distribute multiplies two expanded expressions term by term. Mul.Simplify
// would fold (a+b)*(a+b) back into a power, so the product is built here.
func distribute(a, b Expr) Expr {
	termsOf := func(e Expr) []Expr {
		if s, ok := e.(*Add); ok {
			return s.terms
		}
		return []Expr{e}
	}
	var out []Expr
	for _, ta := range termsOf(a) {
		for _, tb := range termsOf(b) {
			out = append(out, MulOf(ta, tb))
		}
	}
	return AddOf(out...)
}

// ============================================================
// Structure queries
// ============================================================

func FreeSymbols(e Expr) map[string]struct{} {
	result := map[string]struct{}{}
	collectSymbols(e, result)
	return result
}

func collectSymbols(e Expr, out map[string]struct{}) {
	switch v := e.(type) {
	case *Sym:
		out[v.name] = struct{}{}
	case *Add:
		for _, t := range v.terms {
			collectSymbols(t, out)
		}
	case *Mul:
		for _, f := range v.factors {
			collectSymbols(f, out)
		}
	case *Pow:
		collectSymbols(v.base, out)
		collectSymbols(v.exp, out)
	case *Func:
		collectSymbols(v.arg, out)
	case *Applied:
		collectSymbols(v.arg, out)
	case *Integral:
		inner := map[string]struct{}{}
		collectSymbols(v.integrand, inner)
		delete(inner, v.varName)
		for k := range inner {
			out[k] = struct{}{}
		}
	case *Piecewise:
		for _, pc := range v.pieces {
			collectSymbols(pc.Value, out)
			if pc.Cond != nil {
				collectSymbols(pc.Cond.LHS, out)
				collectSymbols(pc.Cond.RHS, out)
			}
		}
	}
}

// Has reports whether varName occurs free in e.
func Has(e Expr, varName string) bool {
	_, ok := FreeSymbols(e)[varName]
	return ok
}

// Head names the outermost operation of e: the function name for function
// applications, otherwise the node kind ("add", "mul", "pow", "sym", ...).
func Head(e Expr) string {
	switch v := e.(type) {
	case *Func:
		return v.name
	case *Applied:
		return v.name
	}
	return e.exprType()
}

// Replace substitutes every subtree of e equal to old with repl.
func Replace(e, old, repl Expr) Expr {
	if e.Equal(old) {
		return repl
	}
	switch v := e.(type) {
	case *Add:
		terms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			terms[i] = Replace(t, old, repl)
		}
		return AddOf(terms...)
	case *Mul:
		factors := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			factors[i] = Replace(f, old, repl)
		}
		return MulOf(factors...)
	case *Pow:
		// x^4 with old = x^2 becomes u^2.
		if op, ok := old.(*Pow); ok && v.base.Equal(op.base) {
			if ratio, ok := MulOf(v.exp, Recip(op.exp)).(*Num); ok && ratio.IsInteger() {
				return PowOf(repl, ratio)
			}
		}
		return PowOf(Replace(v.base, old, repl), Replace(v.exp, old, repl))
	case *Func:
		return funcOf(v.name, Replace(v.arg, old, repl)).Simplify()
	case *Applied:
		return &Applied{name: v.name, arg: Replace(v.arg, old, repl)}
	case *Integral:
		return &Integral{integrand: Replace(v.integrand, old, repl), varName: v.varName}
	case *Piecewise:
		out := make([]Piece, len(v.pieces))
		for i, pc := range v.pieces {
			out[i] = Piece{Value: Replace(pc.Value, old, repl), Cond: pc.Cond}
			if pc.Cond != nil {
				out[i].Cond = &Relation{LHS: Replace(pc.Cond.LHS, old, repl), RHS: Replace(pc.Cond.RHS, old, repl), Op: pc.Cond.Op}
			}
		}
		return PiecewiseOf(out...)
	}
	return e
}

// ============================================================
// Polynomial utilities
// ============================================================

// PolyCoeffs returns the coefficients of e as a polynomial in varName keyed
// by degree. ok is false when e is not a polynomial in varName.
func PolyCoeffs(e Expr, varName string) (map[int]Expr, bool) {
	out := map[int]Expr{}
	if !extractCoeffs(Expand(e), varName, out) {
		return nil, false
	}
	return out, true
}

func extractCoeffs(e Expr, varName string, out map[int]Expr) bool {
	if !Has(e, varName) {
		addCoeff(out, 0, e)
		return true
	}
	switch v := e.(type) {
	case *Sym:
		addCoeff(out, 1, N(1))
		return true
	case *Pow:
		if d, ok := monomialDegree(v, varName); ok {
			addCoeff(out, d, N(1))
			return true
		}
		return false
	case *Mul:
		deg := 0
		coeffFactors := []Expr{}
		for _, f := range v.factors {
			if !Has(f, varName) {
				coeffFactors = append(coeffFactors, f)
				continue
			}
			d, ok := monomialDegree(f, varName)
			if !ok {
				return false
			}
			deg += d
		}
		addCoeff(out, deg, MulOf(coeffFactors...))
		return true
	case *Add:
		for _, t := range v.terms {
			if !extractCoeffs(t, varName, out) {
				return false
			}
		}
		return true
	}
	return false
}

func monomialDegree(e Expr, varName string) (int, bool) {
	switch v := e.(type) {
	case *Sym:
		return 1, v.name == varName
	case *Pow:
		sym, ok := v.base.(*Sym)
		n, ok2 := v.exp.(*Num)
		if ok && ok2 && sym.name == varName && n.IsInteger() && n.IsPositive() {
			return int(n.val.Num().Int64()), true
		}
	}
	return 0, false
}

func addCoeff(out map[int]Expr, deg int, val Expr) {
	if existing, ok := out[deg]; ok {
		out[deg] = AddOf(existing, val)
	} else {
		out[deg] = val.Simplify()
	}
}

// Degree returns the highest degree of varName in the polynomial e, or -1
// when e is not a polynomial in varName.
func Degree(e Expr, varName string) int {
	coeffs, ok := PolyCoeffs(e, varName)
	if !ok {
		return -1
	}
	deg := 0
	for d, c := range coeffs {
		if d > deg && !isNumEqual(c, 0) {
			deg = d
		}
	}
	return deg
}
