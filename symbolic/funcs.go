package symbolic

import (
	"math"
)

// ============================================================
// Func — named elementary function applications
// ============================================================

type Func struct {
	name string
	arg  Expr
}

func funcOf(name string, arg Expr) *Func { return &Func{name: name, arg: arg} }

func SinOf(arg Expr) Expr  { return funcOf("sin", arg).Simplify() }
func CosOf(arg Expr) Expr  { return funcOf("cos", arg).Simplify() }
func TanOf(arg Expr) Expr  { return funcOf("tan", arg).Simplify() }
func SecOf(arg Expr) Expr  { return funcOf("sec", arg).Simplify() }
func CscOf(arg Expr) Expr  { return funcOf("csc", arg).Simplify() }
func CotOf(arg Expr) Expr  { return funcOf("cot", arg).Simplify() }
func ExpOf(arg Expr) Expr  { return funcOf("exp", arg).Simplify() }
func LnOf(arg Expr) Expr   { return funcOf("ln", arg).Simplify() }
func AbsOf(arg Expr) Expr  { return funcOf("abs", arg).Simplify() }
func AsinOf(arg Expr) Expr { return funcOf("asin", arg).Simplify() }
func AtanOf(arg Expr) Expr { return funcOf("atan", arg).Simplify() }
func SinhOf(arg Expr) Expr { return funcOf("sinh", arg).Simplify() }
func CoshOf(arg Expr) Expr { return funcOf("cosh", arg).Simplify() }
func TanhOf(arg Expr) Expr { return funcOf("tanh", arg).Simplify() }

// FuncOf applies a function by name. Unknown names are kept as opaque
// applications.
func FuncOf(name string, arg Expr) Expr { return funcOf(name, arg).Simplify() }

func isTrig(name string) bool {
	switch name {
	case "sin", "cos", "tan", "sec", "csc", "cot":
		return true
	}
	return false
}

// Simplify only applies exact identities. Numeric folding of transcendental
// values is left to Eval so typeset results stay exact.
func (f *Func) Simplify() Expr {
	arg := f.arg.Simplify()
	zero := isNumEqual(arg, 0)
	switch f.name {
	case "sin", "tan", "asin", "atan", "sinh", "tanh":
		if zero {
			return N(0)
		}
	case "cos", "sec", "cosh":
		if zero {
			return N(1)
		}
	case "ln":
		if isNumEqual(arg, 1) {
			return N(0)
		}
		if IsE(arg) {
			return N(1)
		}
		if inner, ok := arg.(*Func); ok && inner.name == "exp" {
			return inner.arg
		}
	case "exp":
		if zero {
			return N(1)
		}
		if inner, ok := arg.(*Func); ok && inner.name == "ln" {
			return inner.arg
		}
	case "abs":
		if n, ok := arg.(*Num); ok {
			return numAbs(n)
		}
		if m, ok := arg.(*Mul); ok && len(m.factors) >= 2 {
			if coeff, ok2 := m.factors[0].(*Num); ok2 && coeff.IsNegOne() {
				return AbsOf(MulOf(m.factors[1:]...))
			}
		}
	}
	if inner, ok := arg.(*Func); ok {
		if e := inverseComposition(f.name, inner); e != nil {
			return e
		}
	}
	return &Func{name: f.name, arg: arg}
}

// inverseComposition rewrites trig(inverse-trig(z)) in terms of z.
func inverseComposition(outer string, inner *Func) Expr {
	z := inner.arg
	oneMinus := AddOf(N(1), Neg(PowOf(z, N(2))))
	onePlus := AddOf(N(1), PowOf(z, N(2)))
	switch inner.name + "/" + outer {
	case "asin/sin", "acos/cos", "atan/tan":
		return z
	case "asin/cos", "acos/sin":
		return SqrtOf(oneMinus)
	case "asin/tan":
		return MulOf(z, PowOf(oneMinus, F(-1, 2)))
	case "asin/sec":
		return PowOf(oneMinus, F(-1, 2))
	case "asin/csc":
		return Recip(z)
	case "atan/sec":
		return SqrtOf(onePlus)
	case "atan/cos":
		return PowOf(onePlus, F(-1, 2))
	case "atan/sin":
		return MulOf(z, PowOf(onePlus, F(-1, 2)))
	case "atan/cot":
		return Recip(z)
	}
	return nil
}

func numAbs(a *Num) *Num {
	if a.IsNegative() {
		return numNeg(a)
	}
	return a
}

func (f *Func) String() string { return f.name + "(" + f.arg.String() + ")" }

func (f *Func) LaTeX() string {
	arg := "\\left(" + f.arg.LaTeX() + "\\right)"
	switch f.name {
	case "sin", "cos", "tan", "sec", "csc", "cot", "ln", "sinh", "cosh", "tanh":
		return "\\" + f.name + arg
	case "exp":
		return "e^{" + f.arg.LaTeX() + "}"
	case "asin":
		return "\\arcsin" + arg
	case "acos":
		return "\\arccos" + arg
	case "atan":
		return "\\arctan" + arg
	case "abs":
		return "\\left|" + f.arg.LaTeX() + "\\right|"
	}
	return "\\operatorname{" + f.name + "}" + arg
}

func (f *Func) Sub(varName string, value Expr) Expr {
	return funcOf(f.name, f.arg.Sub(varName, value)).Simplify()
}

func (f *Func) Diff(varName string) Expr {
	du := f.arg.Diff(varName)
	if isNumEqual(du.Simplify(), 0) {
		return N(0)
	}
	var outer Expr
	switch f.name {
	case "sin":
		outer = CosOf(f.arg)
	case "cos":
		outer = Neg(SinOf(f.arg))
	case "tan":
		outer = PowOf(SecOf(f.arg), N(2))
	case "sec":
		outer = MulOf(SecOf(f.arg), TanOf(f.arg))
	case "csc":
		outer = Neg(MulOf(CscOf(f.arg), CotOf(f.arg)))
	case "cot":
		outer = Neg(PowOf(CscOf(f.arg), N(2)))
	case "exp":
		outer = ExpOf(f.arg)
	case "ln":
		outer = Recip(f.arg)
	case "abs":
		outer = MulOf(f.arg, Recip(AbsOf(f.arg)))
	case "asin":
		outer = PowOf(AddOf(N(1), Neg(PowOf(f.arg, N(2)))), F(-1, 2))
	case "acos":
		outer = Neg(PowOf(AddOf(N(1), Neg(PowOf(f.arg, N(2)))), F(-1, 2)))
	case "atan":
		outer = Recip(AddOf(N(1), PowOf(f.arg, N(2))))
	case "sinh":
		outer = CoshOf(f.arg)
	case "cosh":
		outer = SinhOf(f.arg)
	case "tanh":
		outer = AddOf(N(1), Neg(PowOf(TanhOf(f.arg), N(2))))
	default:
		outer = &Applied{name: f.name + "'", arg: f.arg}
	}
	return MulOf(outer, du)
}

func (f *Func) Eval() (*Num, bool) {
	n, ok := f.arg.Eval()
	if !ok {
		return nil, false
	}
	v := n.Float64()
	var r float64
	switch f.name {
	case "sin":
		r = math.Sin(v)
	case "cos":
		r = math.Cos(v)
	case "tan":
		r = math.Tan(v)
	case "sec":
		r = 1 / math.Cos(v)
	case "csc":
		r = 1 / math.Sin(v)
	case "cot":
		r = 1 / math.Tan(v)
	case "exp":
		r = math.Exp(v)
	case "ln":
		r = math.Log(v)
	case "abs":
		r = math.Abs(v)
	case "asin":
		r = math.Asin(v)
	case "acos":
		r = math.Acos(v)
	case "atan":
		r = math.Atan(v)
	case "sinh":
		r = math.Sinh(v)
	case "cosh":
		r = math.Cosh(v)
	case "tanh":
		r = math.Tanh(v)
	default:
		return nil, false
	}
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return nil, false
	}
	return NFloat(r), true
}

func (f *Func) Equal(other Expr) bool {
	o, ok := other.(*Func)
	return ok && f.name == o.name && f.arg.Equal(o.arg)
}

func (f *Func) exprType() string { return "func" }
func (f *Func) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "func", "name": f.name, "arg": f.arg.toJSON()}
}
func (f *Func) FuncName() string { return f.name }
func (f *Func) Arg() Expr        { return f.arg }

func isNumEqual(e Expr, v int64) bool {
	n, ok := e.(*Num)
	return ok && n.Equal(N(v))
}

// ============================================================
// Applied — undefined function such as u(x)
// ============================================================

type Applied struct {
	name string
	arg  Expr
}

// Fn applies the undefined function name to arg.
func Fn(name string, arg Expr) *Applied { return &Applied{name: name, arg: arg} }

func (a *Applied) Simplify() Expr     { return &Applied{name: a.name, arg: a.arg.Simplify()} }
func (a *Applied) String() string     { return a.name + "(" + a.arg.String() + ")" }
func (a *Applied) LaTeX() string      { return latexName(a.name) + "{\\left(" + a.arg.LaTeX() + " \\right)}" }
func (a *Applied) Eval() (*Num, bool) { return nil, false }
func (a *Applied) exprType() string   { return "applied" }
func (a *Applied) Name() string       { return a.name }

func (a *Applied) Sub(varName string, value Expr) Expr {
	return &Applied{name: a.name, arg: a.arg.Sub(varName, value)}
}

func (a *Applied) Diff(varName string) Expr {
	du := a.arg.Diff(varName)
	if isNumEqual(du.Simplify(), 0) {
		return N(0)
	}
	return MulOf(&Applied{name: a.name + "'", arg: a.arg}, du)
}

func (a *Applied) Equal(other Expr) bool {
	o, ok := other.(*Applied)
	return ok && a.name == o.name && a.arg.Equal(o.arg)
}

func (a *Applied) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "applied", "name": a.name, "arg": a.arg.toJSON()}
}
