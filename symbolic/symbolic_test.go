package symbolic_test

import (
	"strings"
	"testing"

	"github.com/njchilds90/intsteps/symbolic"
)

var x = symbolic.S("x")

// ============================================================
// Num / Sym tests
// ============================================================

func TestNum_Rational(t *testing.T) {
	n := symbolic.F(1, 3)
	if n.String() != "1/3" {
		t.Errorf("want 1/3, got %s", n.String())
	}
	if n.LaTeX() != `\frac{1}{3}` {
		t.Errorf("want \\frac{1}{3}, got %s", n.LaTeX())
	}
}

func TestSym_LaTeX_Subscript(t *testing.T) {
	if got := symbolic.S("u_1").LaTeX(); got != "u_{1}" {
		t.Errorf("want u_{1}, got %s", got)
	}
	if got := symbolic.S("theta").LaTeX(); got != `\theta` {
		t.Errorf("want \\theta, got %s", got)
	}
}

// ============================================================
// Arithmetic tests
// ============================================================

func TestAdd_CollectsLikeTerms(t *testing.T) {
	if got := symbolic.AddOf(x, x).String(); got != "2*x" {
		t.Errorf("want 2*x, got %s", got)
	}
}

func TestAdd_NegativeTerm(t *testing.T) {
	if got := symbolic.AddOf(x, symbolic.N(-1)).String(); got != "x - 1" {
		t.Errorf("want x - 1, got %s", got)
	}
}

func TestMul_CombinesPowers(t *testing.T) {
	if got := symbolic.MulOf(x, symbolic.PowOf(x, symbolic.N(2))).String(); got != "x^3" {
		t.Errorf("want x^3, got %s", got)
	}
}

func TestMul_LaTeX_Fraction(t *testing.T) {
	if got := symbolic.Div(x, symbolic.N(2)).LaTeX(); got != `\frac{x}{2}` {
		t.Errorf("want \\frac{x}{2}, got %s", got)
	}
	e := symbolic.MulOf(symbolic.N(3), symbolic.PowOf(x, symbolic.N(-2)))
	if got := e.LaTeX(); got != `\frac{3}{x^{2}}` {
		t.Errorf("want \\frac{3}{x^{2}}, got %s", got)
	}
}

func TestMul_LaTeX_Sign(t *testing.T) {
	if got := symbolic.Neg(symbolic.SinOf(x)).LaTeX(); got != `-\sin\left(x\right)` {
		t.Errorf("want -\\sin\\left(x\\right), got %s", got)
	}
}

func TestPow_LaTeX(t *testing.T) {
	if got := symbolic.SqrtOf(x).LaTeX(); got != `\sqrt{x}` {
		t.Errorf("want \\sqrt{x}, got %s", got)
	}
	if got := symbolic.PowOf(symbolic.SinOf(x), symbolic.N(2)).LaTeX(); got != `\sin^{2}\left(x\right)` {
		t.Errorf("want \\sin^{2}\\left(x\\right), got %s", got)
	}
}

func TestPow_EulerBase(t *testing.T) {
	e := symbolic.PowOf(symbolic.E, x)
	if got := e.LaTeX(); got != "e^{x}" {
		t.Errorf("want e^{x}, got %s", got)
	}
	if symbolic.Head(e) != "exp" {
		t.Errorf("want head exp, got %s", symbolic.Head(e))
	}
}

// ============================================================
// Function tests
// ============================================================

func TestFunc_InverseComposition(t *testing.T) {
	if got := symbolic.SinOf(symbolic.AsinOf(x)).String(); got != "x" {
		t.Errorf("want x, got %s", got)
	}
}

func TestFunc_ChainRule(t *testing.T) {
	d := symbolic.SinOf(symbolic.MulOf(symbolic.N(2), x)).Diff("x")
	if got := d.String(); got != "2*cos(2*x)" {
		t.Errorf("want 2*cos(2*x), got %s", got)
	}
}

func TestApplied_LaTeX(t *testing.T) {
	u := symbolic.Fn("u", x)
	if got := u.LaTeX(); got != `u{\left(x \right)}` {
		t.Errorf("want u{\\left(x \\right)}, got %s", got)
	}
	if got := u.Diff("x").String(); got != "u'(x)" {
		t.Errorf("want u'(x), got %s", got)
	}
}

// ============================================================
// Display node tests
// ============================================================

func TestIntegral_LaTeX(t *testing.T) {
	i := symbolic.IntegralOf(symbolic.PowOf(x, symbolic.N(2)), "x")
	if got := i.LaTeX(); got != `\int x^{2}\, dx` {
		t.Errorf("want \\int x^{2}\\, dx, got %s", got)
	}
}

func TestIntegral_SubRenamesBoundVariable(t *testing.T) {
	i := symbolic.IntegralOf(symbolic.PowOf(x, symbolic.N(2)), "x")
	if got := i.Sub("x", symbolic.S("t")).String(); got != "Integral(t^2, t)" {
		t.Errorf("want Integral(t^2, t), got %s", got)
	}
}

func TestPiecewise_LaTeX(t *testing.T) {
	p := symbolic.PiecewiseOf(
		symbolic.Piece{Value: x, Cond: symbolic.Ne(symbolic.S("n"), symbolic.N(-1))},
		symbolic.Piece{Value: symbolic.LnOf(x)},
	)
	want := `\begin{cases} x & \text{for}\: n \neq -1 \\ \ln\left(x\right) & \text{otherwise} \end{cases}`
	if got := p.LaTeX(); got != want {
		t.Errorf("want %s, got %s", want, got)
	}
}

func TestRelation_LaTeX(t *testing.T) {
	r := symbolic.Eq(symbolic.S("u"), symbolic.PowOf(x, symbolic.N(2)))
	if got := r.LaTeX(); got != "u = x^{2}" {
		t.Errorf("want u = x^{2}, got %s", got)
	}
}

// ============================================================
// Simplification / structure tests
// ============================================================

func TestTrigSimplify_Pythagorean(t *testing.T) {
	e := symbolic.AddOf(
		symbolic.PowOf(symbolic.SinOf(x), symbolic.N(2)),
		symbolic.PowOf(symbolic.CosOf(x), symbolic.N(2)),
	)
	if got := symbolic.TrigSimplify(e); !got.Equal(symbolic.N(1)) {
		t.Errorf("want 1, got %s", got)
	}
}

func TestDeepSimplify_Tangent(t *testing.T) {
	e := symbolic.MulOf(symbolic.SinOf(x), symbolic.Recip(symbolic.CosOf(x)))
	if got := symbolic.DeepSimplify(e).String(); got != "tan(x)" {
		t.Errorf("want tan(x), got %s", got)
	}
}

func TestExpand_Square(t *testing.T) {
	e := symbolic.PowOf(symbolic.AddOf(x, symbolic.N(1)), symbolic.N(2))
	if got := symbolic.Expand(e).String(); got != "2*x + x^2 + 1" {
		t.Errorf("want 2*x + x^2 + 1, got %s", got)
	}
}

func TestReplace(t *testing.T) {
	u := symbolic.S("u")
	x2 := symbolic.PowOf(x, symbolic.N(2))
	if got := symbolic.Replace(symbolic.CosOf(x2), x2, u).String(); got != "cos(u)" {
		t.Errorf("want cos(u), got %s", got)
	}
	if got := symbolic.Replace(symbolic.PowOf(x, symbolic.N(4)), x2, u).String(); got != "u^2" {
		t.Errorf("want u^2, got %s", got)
	}
}

func TestFreeSymbols_IntegralBindsVariable(t *testing.T) {
	i := symbolic.IntegralOf(symbolic.MulOf(symbolic.S("a"), x), "x")
	free := symbolic.FreeSymbols(i)
	if _, ok := free["x"]; ok {
		t.Error("bound variable x should not be free")
	}
	if _, ok := free["a"]; !ok {
		t.Error("a should be free")
	}
}

func TestPolyCoeffs(t *testing.T) {
	e := symbolic.AddOf(symbolic.PowOf(x, symbolic.N(2)), symbolic.MulOf(symbolic.N(2), x), symbolic.N(5))
	coeffs, ok := symbolic.PolyCoeffs(e, "x")
	if !ok {
		t.Fatal("expected a polynomial")
	}
	for deg, want := range map[int]int64{2: 1, 1: 2, 0: 5} {
		if !coeffs[deg].Equal(symbolic.N(want)) {
			t.Errorf("degree %d: want %d, got %v", deg, want, coeffs[deg])
		}
	}
	if _, ok := symbolic.PolyCoeffs(symbolic.SinOf(x), "x"); ok {
		t.Error("sin(x) is not a polynomial")
	}
	if d := symbolic.Degree(e, "x"); d != 2 {
		t.Errorf("want degree 2, got %d", d)
	}
}

// ============================================================
// Integration tests
// ============================================================

func TestIntegrate(t *testing.T) {
	tests := []struct {
		name string
		in   symbolic.Expr
		want string
	}{
		{"power", symbolic.PowOf(x, symbolic.N(2)), "1/3*x^3"},
		{"reciprocal", symbolic.Recip(x), "ln(abs(x))"},
		{"sine", symbolic.SinOf(x), "-cos(x)"},
		{"cosine", symbolic.CosOf(x), "sin(x)"},
		{"constant multiple", symbolic.MulOf(symbolic.N(3), symbolic.PowOf(x, symbolic.N(2))), "x^3"},
		{"free symbol", symbolic.S("c"), "c*x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := symbolic.Integrate(tt.in, "x")
			if !ok {
				t.Fatalf("expected %s to integrate", tt.in)
			}
			if got.String() != tt.want {
				t.Errorf("want %s, got %s", tt.want, got)
			}
		})
	}
}

func TestIntegrate_NoPattern(t *testing.T) {
	if _, ok := symbolic.Integrate(symbolic.ExpOf(symbolic.PowOf(x, symbolic.N(2))), "x"); ok {
		t.Error("exp(x^2) has no elementary antiderivative")
	}
}

// ============================================================
// JSON tests
// ============================================================

func TestParseJSON_Integral(t *testing.T) {
	in := symbolic.IntegralOf(symbolic.PowOf(x, symbolic.N(2)), "x")
	s, err := symbolic.ToJSON(in)
	if err != nil {
		t.Fatalf("ToJSON error: %v", err)
	}
	out, err := symbolic.ParseJSON([]byte(s))
	if err != nil {
		t.Fatalf("ParseJSON error: %v", err)
	}
	if !out.Equal(in) {
		t.Errorf("want %s, got %s", in, out)
	}
}

func TestFromJSON_UnknownType(t *testing.T) {
	_, err := symbolic.FromJSON(map[string]interface{}{"type": "matrix"})
	if err == nil || !strings.Contains(err.Error(), "matrix") {
		t.Errorf("want unknown type error, got %v", err)
	}
}
