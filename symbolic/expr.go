// Package symbolic is the expression kernel behind the step printer.
//
// Arithmetic is exact (math/big.Rat) and deterministic. The kernel covers
// what an integration trace needs, from elementary functions and
// differentiation up to a pattern-based integrator and LaTeX output.
// Display-only nodes (unevaluated integrals, differentials, relations) live
// here too so formulas can be typeset from a single tree.
package symbolic

import (
	"fmt"
	"math"
	"math/big"
)

// Formula is anything that can be typeset.
type Formula interface {
	String() string
	LaTeX() string
}

// Expr is a symbolic expression. Implementations are immutable.
type Expr interface {
	Formula
	Simplify() Expr
	Sub(varName string, value Expr) Expr
	Diff(varName string) Expr
	Eval() (*Num, bool)
	Equal(other Expr) bool
	exprType() string
	toJSON() map[string]interface{}
}

// TeX is a preformatted LaTeX formula.
type TeX string

func (t TeX) String() string { return string(t) }
func (t TeX) LaTeX() string  { return string(t) }

// ============================================================
// Num — exact rational number
// ============================================================

type Num struct{ val *big.Rat }

func N(n int64) *Num { return &Num{val: new(big.Rat).SetInt64(n)} }

func F(p, q int64) *Num {
	if q == 0 {
		panic("symbolic: denominator is zero")
	}
	return &Num{val: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}

// NRat wraps a copy of r.
func NRat(r *big.Rat) *Num { return &Num{val: new(big.Rat).Set(r)} }

func NFloat(f float64) *Num { return &Num{val: new(big.Rat).SetFloat64(f)} }

func (n *Num) Simplify() Expr        { return n }
func (n *Num) Sub(string, Expr) Expr { return n }
func (n *Num) Diff(string) Expr      { return N(0) }
func (n *Num) Eval() (*Num, bool)    { return n, true }
func (n *Num) Equal(other Expr) bool { o, ok := other.(*Num); return ok && n.val.Cmp(o.val) == 0 }
func (n *Num) exprType() string      { return "num" }
func (n *Num) Float64() float64      { f, _ := n.val.Float64(); return f }
func (n *Num) IsZero() bool          { return n.val.Sign() == 0 }
func (n *Num) IsOne() bool           { return n.val.Cmp(big.NewRat(1, 1)) == 0 }
func (n *Num) IsNegOne() bool        { return n.val.Cmp(big.NewRat(-1, 1)) == 0 }
func (n *Num) IsInteger() bool       { return n.val.IsInt() }
func (n *Num) Rat() *big.Rat         { return new(big.Rat).Set(n.val) }
func (n *Num) IsPositive() bool      { return n.val.Sign() > 0 }
func (n *Num) IsNegative() bool      { return n.val.Sign() < 0 }

func (n *Num) String() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	return n.val.RatString()
}

func (n *Num) LaTeX() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	sign := ""
	v := new(big.Rat).Set(n.val)
	if v.Sign() < 0 {
		sign = "-"
		v.Neg(v)
	}
	return fmt.Sprintf("%s\\frac{%s}{%s}", sign, v.Num().String(), v.Denom().String())
}

func (n *Num) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "num", "value": n.String()}
}

func numAdd(a, b *Num) *Num { return &Num{val: new(big.Rat).Add(a.val, b.val)} }
func numSub(a, b *Num) *Num { return &Num{val: new(big.Rat).Sub(a.val, b.val)} }
func numMul(a, b *Num) *Num { return &Num{val: new(big.Rat).Mul(a.val, b.val)} }
func numNeg(a *Num) *Num    { return &Num{val: new(big.Rat).Neg(a.val)} }

func numRecip(a *Num) *Num {
	if a.IsZero() {
		panic("symbolic: division by zero")
	}
	return &Num{val: new(big.Rat).Inv(a.val)}
}

func numDiv(a, b *Num) *Num { return numMul(a, numRecip(b)) }

// NumDiv returns a/b. It panics when b is zero.
func NumDiv(a, b *Num) *Num { return numDiv(a, b) }

// NumMul returns a*b.
func NumMul(a, b *Num) *Num { return numMul(a, b) }

// NumSub returns a-b.
func NumSub(a, b *Num) *Num { return numSub(a, b) }

// ============================================================
// Sym — symbolic variable
// ============================================================

type Sym struct{ name string }

func S(name string) *Sym             { return &Sym{name: name} }
func (s *Sym) Simplify() Expr        { return s }
func (s *Sym) String() string        { return s.name }
func (s *Sym) LaTeX() string         { return latexName(s.name) }
func (s *Sym) Eval() (*Num, bool)    { return nil, false }
func (s *Sym) Equal(other Expr) bool { o, ok := other.(*Sym); return ok && s.name == o.name }
func (s *Sym) exprType() string      { return "sym" }
func (s *Sym) Name() string          { return s.name }
func (s *Sym) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "sym", "name": s.name}
}

func (s *Sym) Sub(varName string, value Expr) Expr {
	if s.name == varName {
		return value
	}
	return s
}

func (s *Sym) Diff(varName string) Expr {
	if s.name == varName {
		return N(1)
	}
	return N(0)
}

var greek = map[string]string{
	"theta": "\\theta", "phi": "\\phi", "alpha": "\\alpha", "beta": "\\beta",
}

// latexName renders u_1 as u_{1} and greek letter names as commands.
func latexName(name string) string {
	if g, ok := greek[name]; ok {
		return g
	}
	for i := 0; i < len(name); i++ {
		if name[i] == '_' && i > 0 && i < len(name)-1 {
			return latexName(name[:i]) + "_{" + name[i+1:] + "}"
		}
	}
	return name
}

// ============================================================
// Const — named mathematical constants
// ============================================================

type Const struct{ name string }

var (
	E  = &Const{name: "E"}
	Pi = &Const{name: "pi"}
)

func (c *Const) Simplify() Expr        { return c }
func (c *Const) Sub(string, Expr) Expr { return c }
func (c *Const) Diff(string) Expr      { return N(0) }
func (c *Const) String() string        { return c.name }
func (c *Const) Equal(other Expr) bool { o, ok := other.(*Const); return ok && c.name == o.name }
func (c *Const) exprType() string      { return "const" }
func (c *Const) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "const", "name": c.name}
}

func (c *Const) LaTeX() string {
	if c.name == "pi" {
		return "\\pi"
	}
	return "e"
}

func (c *Const) Eval() (*Num, bool) {
	switch c.name {
	case "E":
		return NFloat(math.E), true
	case "pi":
		return NFloat(math.Pi), true
	}
	return nil, false
}

// IsE reports whether e is Euler's number.
func IsE(e Expr) bool {
	c, ok := e.(*Const)
	return ok && c.name == "E"
}
