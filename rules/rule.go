// Package rules holds integration rule trees: the record of which technique
// solved an integral and the sub-problems that technique reduced it to.
//
// A tree is built once (by Derive or decoded from JSON) and never mutated.
// ClosedForm evaluates a node, FilterAlternatives prunes unresolved branches
// and ReplaceSymbol relabels a subtree for display.
package rules

import (
	"github.com/njchilds90/intsteps/symbolic"
)

// Tag identifies a rule variant.
type Tag string

const (
	TagConstant         Tag = "constant"
	TagConstantTimes    Tag = "constant_times"
	TagPower            Tag = "power"
	TagAdd              Tag = "add"
	TagU                Tag = "u"
	TagParts            Tag = "parts"
	TagCyclicParts      Tag = "cyclic_parts"
	TagTrig             Tag = "trig"
	TagExp              Tag = "exp"
	TagRewrite          Tag = "rewrite"
	TagCompleteSquare   Tag = "complete_square"
	TagTrigSubstitution Tag = "trig_substitution"
	TagAlternative      Tag = "alternative"
	TagDontKnow         Tag = "dont_know"
	TagReciprocal       Tag = "reciprocal"
	TagArctan           Tag = "arctan"
	TagPiecewise        Tag = "piecewise"
)

// Rule is one node of a rule tree.
type Rule interface {
	// Context is the integrand at this node.
	Context() symbolic.Expr
	// Symbol is the variable of integration.
	Symbol() string
	Tag() Tag
}

// Node carries the fields shared by every variant.
type Node struct {
	Integrand symbolic.Expr
	Var       string
}

func (n Node) Context() symbolic.Expr { return n.Integrand }
func (n Node) Symbol() string         { return n.Var }

// At builds the common fields for integrand with respect to v.
func At(integrand symbolic.Expr, v string) Node { return Node{Integrand: integrand, Var: v} }

// Constant: ∫c dx = c·x.
type Constant struct {
	Node
	Value symbolic.Expr
}

// ConstantTimes: ∫c·f dx = c·∫f dx.
type ConstantTimes struct {
	Node
	Constant symbolic.Expr
	Other    symbolic.Expr
	Substep  Rule
}

// Power: ∫bⁿ db = bⁿ⁺¹/(n+1).
type Power struct {
	Node
	Base symbolic.Expr
	Exp  symbolic.Expr
}

// Add integrates a sum term by term. Substeps follow summand order.
type Add struct {
	Node
	Substeps []Rule
}

// U is a u-substitution u = UFunc. Substep integrates in terms of UVar.
type U struct {
	Node
	UVar    string
	UFunc   symbolic.Expr
	Substep Rule
}

// Parts: ∫u dv = u·v − ∫v du. VStep finds v from dv, SecondStep integrates
// v·du. SecondStep is nil inside CyclicParts.
type Parts struct {
	Node
	U          symbolic.Expr
	Dv         symbolic.Expr
	VStep      Rule
	SecondStep Rule
}

// CyclicParts applies parts until the integrand reappears scaled by
// Coefficient, then solves (1 − Coefficient)·I = total.
type CyclicParts struct {
	Node
	PartsRules  []*Parts
	Coefficient symbolic.Expr
}

// Trig integrates a basic trig form. Func is one of "sin", "cos",
// "sec*tan", "csc*cot", "sec**2", "csc**2".
type Trig struct {
	Node
	Func string
	Arg  symbolic.Expr
}

// Exp: ∫bˣ dx = bˣ/ln(b), or eˣ for base e.
type Exp struct {
	Node
	Base     symbolic.Expr
	Exponent symbolic.Expr
}

// Rewrite replaces the integrand with an equal form.
type Rewrite struct {
	Node
	Rewritten symbolic.Expr
	Substep   Rule
}

// CompleteSquare rewrites a quadratic as (x + b/2)² + k.
type CompleteSquare struct {
	Node
	Rewritten symbolic.Expr
	Substep   Rule
}

// TrigSubstitution sets Var = Func(Theta). Substep integrates Rewritten in
// terms of Theta; Inverse expresses Theta in terms of Var.
type TrigSubstitution struct {
	Node
	Theta     string
	Func      symbolic.Expr
	Inverse   symbolic.Expr
	Rewritten symbolic.Expr
	Substep   Rule
}

// Alternative lists independent techniques for the same integral.
type Alternative struct {
	Node
	Alternatives []Rule
}

// DontKnow marks an integral no technique could solve.
type DontKnow struct {
	Node
}

// Reciprocal: ∫1/f = ln|f|.
type Reciprocal struct {
	Node
	Func symbolic.Expr
}

// Arctan: ∫a/(b·x² + c) dx.
type Arctan struct {
	Node
	A, B, C symbolic.Expr
}

// Case is one branch of a Piecewise rule. A nil Cond means "otherwise".
type Case struct {
	Rule Rule
	Cond *symbolic.Relation
}

// Piecewise selects a sub-rule by condition, e.g. xⁿ for n ≠ −1.
type Piecewise struct {
	Node
	Subfunctions []Case
}

func (*Constant) Tag() Tag         { return TagConstant }
func (*ConstantTimes) Tag() Tag    { return TagConstantTimes }
func (*Power) Tag() Tag            { return TagPower }
func (*Add) Tag() Tag              { return TagAdd }
func (*U) Tag() Tag                { return TagU }
func (*Parts) Tag() Tag            { return TagParts }
func (*CyclicParts) Tag() Tag      { return TagCyclicParts }
func (*Trig) Tag() Tag             { return TagTrig }
func (*Exp) Tag() Tag              { return TagExp }
func (*Rewrite) Tag() Tag          { return TagRewrite }
func (*CompleteSquare) Tag() Tag   { return TagCompleteSquare }
func (*TrigSubstitution) Tag() Tag { return TagTrigSubstitution }
func (*Alternative) Tag() Tag      { return TagAlternative }
func (*DontKnow) Tag() Tag         { return TagDontKnow }
func (*Reciprocal) Tag() Tag       { return TagReciprocal }
func (*Arctan) Tag() Tag           { return TagArctan }
func (*Piecewise) Tag() Tag        { return TagPiecewise }
