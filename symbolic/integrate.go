package symbolic

// ============================================================
// Integration (pattern-based, non-step)
// ============================================================

// Integrate returns an antiderivative of expr with respect to varName using
// a small table of patterns. ok is false when no pattern matches.
func Integrate(expr Expr, varName string) (Expr, bool) {
	expr = expr.Simplify()
	x := S(varName)
	if !Has(expr, varName) {
		return MulOf(expr, x), true
	}
	switch v := expr.(type) {
	case *Sym:
		return MulOf(F(1, 2), PowOf(x, N(2))), true
	case *Pow:
		if a, ok := LinearSlope(v.base, varName); ok {
			if n, ok2 := v.exp.(*Num); ok2 {
				if n.IsNegOne() {
					return MulOf(numRecip(a), LnOf(AbsOf(v.base))), true
				}
				newExp := numAdd(n, N(1))
				return MulOf(numRecip(numMul(a, newExp)), PowOf(v.base, newExp)), true
			}
		}
		if a, ok := LinearSlope(v.exp, varName); ok && !Has(v.base, varName) {
			return MulOf(numRecip(a), PowOf(v.base, v.exp), Recip(LnOf(v.base))), true
		}
		if fn, ok := v.base.(*Func); ok && isNumEqual(v.exp, 2) {
			if a, ok2 := LinearSlope(fn.arg, varName); ok2 {
				switch fn.name {
				case "sec":
					return MulOf(numRecip(a), TanOf(fn.arg)), true
				case "csc":
					return MulOf(N(-1), numRecip(a), CotOf(fn.arg)), true
				}
			}
		}
		return nil, false
	case *Mul:
		free, dependent := []Expr{}, []Expr{}
		for _, f := range v.factors {
			if Has(f, varName) {
				dependent = append(dependent, f)
			} else {
				free = append(free, f)
			}
		}
		if len(free) == 0 {
			return integrateProduct(v, varName)
		}
		intInner, ok := Integrate(MulOf(dependent...), varName)
		if !ok {
			return nil, false
		}
		return MulOf(append(free, intInner)...), true
	case *Add:
		terms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			intT, ok := Integrate(t, varName)
			if !ok {
				return nil, false
			}
			terms[i] = intT
		}
		return AddOf(terms...), true
	case *Func:
		a, ok := LinearSlope(v.arg, varName)
		if !ok {
			return nil, false
		}
		k := numRecip(a)
		switch v.name {
		case "sin":
			return MulOf(N(-1), k, CosOf(v.arg)), true
		case "cos":
			return MulOf(k, SinOf(v.arg)), true
		case "tan":
			return MulOf(N(-1), k, LnOf(AbsOf(CosOf(v.arg)))), true
		case "cot":
			return MulOf(k, LnOf(AbsOf(SinOf(v.arg)))), true
		case "exp":
			return MulOf(k, ExpOf(v.arg)), true
		case "sinh":
			return MulOf(k, CoshOf(v.arg)), true
		case "cosh":
			return MulOf(k, SinhOf(v.arg)), true
		case "ln":
			return MulOf(k, AddOf(MulOf(v.arg, LnOf(v.arg)), Neg(v.arg))), true
		case "asin":
			return MulOf(k, AddOf(
				MulOf(v.arg, AsinOf(v.arg)),
				SqrtOf(AddOf(N(1), Neg(PowOf(v.arg, N(2))))),
			)), true
		case "atan":
			return MulOf(k, AddOf(
				MulOf(v.arg, AtanOf(v.arg)),
				MulOf(F(-1, 2), LnOf(AddOf(N(1), PowOf(v.arg, N(2))))),
			)), true
		}
	}
	return nil, false
}

// integrateProduct handles sec·tan and csc·cot of a linear argument.
func integrateProduct(m *Mul, varName string) (Expr, bool) {
	if len(m.factors) != 2 {
		return nil, false
	}
	f1, ok1 := m.factors[0].(*Func)
	f2, ok2 := m.factors[1].(*Func)
	if !ok1 || !ok2 || !f1.arg.Equal(f2.arg) {
		return nil, false
	}
	a, ok := LinearSlope(f1.arg, varName)
	if !ok {
		return nil, false
	}
	switch f1.name + "*" + f2.name {
	case "sec*tan", "tan*sec":
		return MulOf(numRecip(a), SecOf(f1.arg)), true
	case "cot*csc", "csc*cot":
		return MulOf(N(-1), numRecip(a), CscOf(f1.arg)), true
	}
	return nil, false
}

// LinearSlope returns a when e = a*varName + b for numeric a ≠ 0.
func LinearSlope(e Expr, varName string) (*Num, bool) {
	coeffs, ok := PolyCoeffs(e, varName)
	if !ok || len(coeffs) > 2 {
		return nil, false
	}
	c1, ok := coeffs[1]
	if !ok {
		return nil, false
	}
	for d := range coeffs {
		if d != 0 && d != 1 {
			return nil, false
		}
	}
	a, ok := c1.(*Num)
	if !ok || a.IsZero() {
		return nil, false
	}
	return a, true
}
