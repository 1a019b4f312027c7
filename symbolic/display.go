package symbolic

import (
	"strings"
)

// ============================================================
// Integral — unevaluated ∫ f d(var)
// ============================================================

type Integral struct {
	integrand Expr
	varName   string
}

// IntegralOf builds the unevaluated integral of integrand with respect to varName.
func IntegralOf(integrand Expr, varName string) *Integral {
	return &Integral{integrand: integrand, varName: varName}
}

func (i *Integral) Integrand() Expr    { return i.integrand }
func (i *Integral) Var() string        { return i.varName }
func (i *Integral) Eval() (*Num, bool) { return nil, false }
func (i *Integral) exprType() string   { return "integral" }

func (i *Integral) Simplify() Expr {
	return &Integral{integrand: i.integrand.Simplify(), varName: i.varName}
}

func (i *Integral) String() string {
	return "Integral(" + i.integrand.String() + ", " + i.varName + ")"
}

func (i *Integral) LaTeX() string {
	body := i.integrand.LaTeX()
	if _, isAdd := i.integrand.(*Add); isAdd {
		body = "\\left(" + body + "\\right)"
	}
	return "\\int " + body + "\\, d" + latexName(i.varName)
}

// Sub renames the bound variable when varName is the variable of
// integration and value is a symbol; otherwise it substitutes inside the
// integrand only.
func (i *Integral) Sub(varName string, value Expr) Expr {
	if varName == i.varName {
		if s, ok := value.(*Sym); ok {
			return &Integral{integrand: i.integrand.Sub(varName, s), varName: s.name}
		}
		return i
	}
	return &Integral{integrand: i.integrand.Sub(varName, value), varName: i.varName}
}

func (i *Integral) Diff(varName string) Expr {
	if varName == i.varName {
		return i.integrand
	}
	return &Integral{integrand: i.integrand.Diff(varName), varName: i.varName}
}

func (i *Integral) Equal(other Expr) bool {
	o, ok := other.(*Integral)
	return ok && i.varName == o.varName && i.integrand.Equal(o.integrand)
}

func (i *Integral) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "integral", "integrand": i.integrand.toJSON(), "var": i.varName}
}

// ============================================================
// Differential — dx, du, dθ
// ============================================================

type Differential struct{ varName string }

// D returns the differential of varName.
func D(varName string) *Differential { return &Differential{varName: varName} }

func (d *Differential) Simplify() Expr     { return d }
func (d *Differential) String() string     { return "d" + d.varName }
func (d *Differential) LaTeX() string      { return "d" + latexName(d.varName) }
func (d *Differential) Diff(string) Expr   { return N(0) }
func (d *Differential) Eval() (*Num, bool) { return nil, false }
func (d *Differential) exprType() string   { return "differential" }

func (d *Differential) Sub(varName string, value Expr) Expr {
	if s, ok := value.(*Sym); ok && varName == d.varName {
		return &Differential{varName: s.name}
	}
	return d
}

func (d *Differential) Equal(other Expr) bool {
	o, ok := other.(*Differential)
	return ok && d.varName == o.varName
}

func (d *Differential) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "differential", "var": d.varName}
}

// ============================================================
// Relation — lhs = rhs, lhs ≠ rhs
// ============================================================

type Relation struct {
	LHS, RHS Expr
	Op       string
}

const (
	OpEq = "="
	OpNe = "!="
)

// Eq builds the unevaluated equality lhs = rhs.
func Eq(lhs, rhs Expr) *Relation { return &Relation{LHS: lhs, RHS: rhs, Op: OpEq} }

// Ne builds the unevaluated inequality lhs ≠ rhs.
func Ne(lhs, rhs Expr) *Relation { return &Relation{LHS: lhs, RHS: rhs, Op: OpNe} }

func (r *Relation) String() string { return r.LHS.String() + " " + r.Op + " " + r.RHS.String() }

func (r *Relation) LaTeX() string {
	op := "="
	if r.Op == OpNe {
		op = "\\neq"
	}
	return r.LHS.LaTeX() + " " + op + " " + r.RHS.LaTeX()
}

// Residual returns lhs - rhs.
func (r *Relation) Residual() Expr { return AddOf(r.LHS, Neg(r.RHS)) }

func (r *Relation) Sub(varName string, value Expr) *Relation {
	return &Relation{LHS: r.LHS.Sub(varName, value), RHS: r.RHS.Sub(varName, value), Op: r.Op}
}

func (r *Relation) Equal(o *Relation) bool {
	return o != nil && r.Op == o.Op && r.LHS.Equal(o.LHS) && r.RHS.Equal(o.RHS)
}

func (r *Relation) toJSON() map[string]interface{} {
	return map[string]interface{}{"op": r.Op, "lhs": r.LHS.toJSON(), "rhs": r.RHS.toJSON()}
}

// ============================================================
// Piecewise — (value, condition) pairs, nil condition = otherwise
// ============================================================

type Piece struct {
	Value Expr
	Cond  *Relation
}

type Piecewise struct{ pieces []Piece }

// PiecewiseOf builds a piecewise expression from its pieces in order.
func PiecewiseOf(pieces ...Piece) Expr { return (&Piecewise{pieces: pieces}).Simplify() }

func (p *Piecewise) Pieces() []Piece    { return append([]Piece(nil), p.pieces...) }
func (p *Piecewise) Eval() (*Num, bool) { return nil, false }
func (p *Piecewise) exprType() string   { return "piecewise" }

func (p *Piecewise) Simplify() Expr {
	out := make([]Piece, len(p.pieces))
	for i, pc := range p.pieces {
		out[i] = Piece{Value: pc.Value.Simplify(), Cond: pc.Cond}
	}
	if len(out) == 1 && out[0].Cond == nil {
		return out[0].Value
	}
	return &Piecewise{pieces: out}
}

func (p *Piecewise) String() string {
	parts := make([]string, len(p.pieces))
	for i, pc := range p.pieces {
		cond := "otherwise"
		if pc.Cond != nil {
			cond = pc.Cond.String()
		}
		parts[i] = "(" + pc.Value.String() + ", " + cond + ")"
	}
	return "Piecewise(" + strings.Join(parts, ", ") + ")"
}

func (p *Piecewise) LaTeX() string {
	rows := make([]string, len(p.pieces))
	for i, pc := range p.pieces {
		cond := "\\text{otherwise}"
		if pc.Cond != nil {
			cond = "\\text{for}\\: " + pc.Cond.LaTeX()
		}
		rows[i] = pc.Value.LaTeX() + " & " + cond
	}
	return "\\begin{cases} " + strings.Join(rows, " \\\\ ") + " \\end{cases}"
}

func (p *Piecewise) Sub(varName string, value Expr) Expr {
	out := make([]Piece, len(p.pieces))
	for i, pc := range p.pieces {
		out[i] = Piece{Value: pc.Value.Sub(varName, value)}
		if pc.Cond != nil {
			out[i].Cond = pc.Cond.Sub(varName, value)
		}
	}
	return PiecewiseOf(out...)
}

func (p *Piecewise) Diff(varName string) Expr {
	out := make([]Piece, len(p.pieces))
	for i, pc := range p.pieces {
		out[i] = Piece{Value: pc.Value.Diff(varName), Cond: pc.Cond}
	}
	return PiecewiseOf(out...)
}

func (p *Piecewise) Equal(other Expr) bool {
	o, ok := other.(*Piecewise)
	if !ok || len(p.pieces) != len(o.pieces) {
		return false
	}
	for i := range p.pieces {
		a, b := p.pieces[i], o.pieces[i]
		if !a.Value.Equal(b.Value) {
			return false
		}
		if (a.Cond == nil) != (b.Cond == nil) || (a.Cond != nil && !a.Cond.Equal(b.Cond)) {
			return false
		}
	}
	return true
}

func (p *Piecewise) toJSON() map[string]interface{} {
	pieces := make([]map[string]interface{}, len(p.pieces))
	for i, pc := range p.pieces {
		m := map[string]interface{}{"value": pc.Value.toJSON()}
		if pc.Cond != nil {
			m["cond"] = pc.Cond.toJSON()
		}
		pieces[i] = m
	}
	return map[string]interface{}{"type": "piecewise", "pieces": pieces}
}
