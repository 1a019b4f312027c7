package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/intsteps/rules"
	"github.com/njchilds90/intsteps/symbolic"
)

var x = symbolic.S("x")

func evalAt(t *testing.T, e symbolic.Expr, at *symbolic.Num) float64 {
	t.Helper()
	n, ok := e.Sub("x", at).Eval()
	require.True(t, ok, "expression %s does not evaluate", e)
	return n.Float64()
}

func TestDerive_Shapes(t *testing.T) {
	t.Run("sum of powers", func(t *testing.T) {
		r := rules.Derive(symbolic.AddOf(x, symbolic.PowOf(x, symbolic.N(2))), "x")
		add, ok := r.(*rules.Add)
		require.True(t, ok, "got %T", r)
		require.Len(t, add.Substeps, 2)
		for i, want := range []int64{1, 2} {
			p, ok := add.Substeps[i].(*rules.Power)
			require.True(t, ok)
			assert.True(t, p.Exp.Equal(symbolic.N(want)))
		}
	})

	t.Run("linear argument substitutes", func(t *testing.T) {
		r := rules.Derive(symbolic.SinOf(symbolic.MulOf(symbolic.N(2), x)), "x")
		u, ok := r.(*rules.U)
		require.True(t, ok, "got %T", r)
		assert.Equal(t, "2*x", u.UFunc.String())
		ct, ok := u.Substep.(*rules.ConstantTimes)
		require.True(t, ok, "got %T", u.Substep)
		assert.True(t, ct.Constant.Equal(symbolic.F(1, 2)))
		assert.IsType(t, &rules.Trig{}, ct.Substep)
	})

	t.Run("polynomial times exponential uses parts", func(t *testing.T) {
		r := rules.Derive(symbolic.MulOf(x, symbolic.ExpOf(x)), "x")
		p, ok := r.(*rules.Parts)
		require.True(t, ok, "got %T", r)
		assert.True(t, p.U.Equal(x))
		assert.Equal(t, "exp(x)", p.Dv.String())
		assert.IsType(t, &rules.Exp{}, p.VStep)
		assert.IsType(t, &rules.Exp{}, p.SecondStep)
	})

	t.Run("exp times sin is cyclic", func(t *testing.T) {
		r := rules.Derive(symbolic.MulOf(symbolic.ExpOf(x), symbolic.SinOf(x)), "x")
		c, ok := r.(*rules.CyclicParts)
		require.True(t, ok, "got %T", r)
		require.Len(t, c.PartsRules, 2)
		assert.True(t, c.Coefficient.Equal(symbolic.N(-1)))
		assert.Nil(t, c.PartsRules[0].SecondStep)
	})

	t.Run("tangent offers two rewrites", func(t *testing.T) {
		r := rules.Derive(symbolic.TanOf(x), "x")
		alt, ok := r.(*rules.Alternative)
		require.True(t, ok, "got %T", r)
		require.Len(t, alt.Alternatives, 2)
		assert.False(t, rules.ContainsUnknown(alt.Alternatives[0]))
		assert.True(t, rules.ContainsUnknown(alt.Alternatives[1]))
	})

	t.Run("symbolic exponent is piecewise", func(t *testing.T) {
		r := rules.Derive(symbolic.PowOf(x, symbolic.S("n")), "x")
		pw, ok := r.(*rules.Piecewise)
		require.True(t, ok, "got %T", r)
		require.Len(t, pw.Subfunctions, 2)
		require.NotNil(t, pw.Subfunctions[0].Cond)
		assert.Equal(t, "n != -1", pw.Subfunctions[0].Cond.String())
		assert.Nil(t, pw.Subfunctions[1].Cond)
	})

	t.Run("no technique", func(t *testing.T) {
		r := rules.Derive(symbolic.ExpOf(symbolic.PowOf(x, symbolic.N(2))), "x")
		assert.IsType(t, &rules.DontKnow{}, r)
		_, ok := rules.ClosedForm(r)
		assert.False(t, ok)
	})
}

// Every derived tree must differentiate back to its integrand.
func TestDerive_ClosedFormDifferentiatesBack(t *testing.T) {
	one := symbolic.N(1)
	cases := []struct {
		name      string
		integrand symbolic.Expr
	}{
		{"x + x^2", symbolic.AddOf(x, symbolic.PowOf(x, symbolic.N(2)))},
		{"sin(2x)", symbolic.SinOf(symbolic.MulOf(symbolic.N(2), x))},
		{"x exp(x)", symbolic.MulOf(x, symbolic.ExpOf(x))},
		{"tan(x)", symbolic.TanOf(x)},
		{"exp(x) sin(x)", symbolic.MulOf(symbolic.ExpOf(x), symbolic.SinOf(x))},
		{"1/(x^2+1)", symbolic.Recip(symbolic.AddOf(symbolic.PowOf(x, symbolic.N(2)), one))},
		{"1/(x^2+2x+2)", symbolic.Recip(symbolic.AddOf(
			symbolic.PowOf(x, symbolic.N(2)), symbolic.MulOf(symbolic.N(2), x), symbolic.N(2)))},
		{"1/sqrt(1-x^2)", symbolic.PowOf(symbolic.AddOf(one, symbolic.Neg(symbolic.PowOf(x, symbolic.N(2)))), symbolic.F(-1, 2))},
		{"ln(x)", symbolic.LnOf(x)},
		{"sec(x) tan(x)", symbolic.MulOf(symbolic.SecOf(x), symbolic.TanOf(x))},
		{"x cos(x^2)", symbolic.MulOf(x, symbolic.CosOf(symbolic.PowOf(x, symbolic.N(2))))},
		{"(2x+1)^3", symbolic.PowOf(symbolic.AddOf(symbolic.MulOf(symbolic.N(2), x), one), symbolic.N(3))},
		{"2^x", symbolic.PowOf(symbolic.N(2), x)},
		{"3 cos(x)", symbolic.MulOf(symbolic.N(3), symbolic.CosOf(x))},
	}
	at := symbolic.F(7, 10)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := rules.Derive(tc.integrand, "x")
			require.False(t, rules.ContainsUnknown(rules.FilterAlternatives(r)))
			cf, ok := rules.ClosedForm(r)
			require.True(t, ok)
			assert.InDelta(t, evalAt(t, tc.integrand, at), evalAt(t, cf.Diff("x"), at), 1e-9, "antiderivative %s", cf)
		})
	}
}

func TestClosedForm_Values(t *testing.T) {
	node := rules.At(x, "x")

	cases := []struct {
		name string
		rule rules.Rule
		want string
	}{
		{"constant", &rules.Constant{Node: rules.At(symbolic.N(5), "x"), Value: symbolic.N(5)}, "5*x"},
		{"power", &rules.Power{Node: node, Base: x, Exp: symbolic.N(2)}, "1/3*x^3"},
		{"power of -1", &rules.Power{Node: node, Base: x, Exp: symbolic.N(-1)}, "ln(abs(x))"},
		{"reciprocal", &rules.Reciprocal{Node: node, Func: x}, "ln(abs(x))"},
		{"trig sin", &rules.Trig{Node: node, Func: "sin", Arg: x}, "-cos(x)"},
		{"trig csc*cot", &rules.Trig{Node: node, Func: "csc*cot", Arg: x}, "-csc(x)"},
		{"trig sec**2", &rules.Trig{Node: node, Func: "sec**2", Arg: x}, "tan(x)"},
		{"exp base e", &rules.Exp{Node: node, Base: symbolic.E, Exponent: x}, "exp(x)"},
		{"arctan", &rules.Arctan{Node: node, A: symbolic.N(1), B: symbolic.N(1), C: symbolic.N(1)}, "atan(x)"},
		{"sin(2x)", rules.Derive(symbolic.SinOf(symbolic.MulOf(symbolic.N(2), x)), "x"), "-1/2*cos(2*x)"},
		{"x exp(x)", rules.Derive(symbolic.MulOf(x, symbolic.ExpOf(x)), "x"), "exp(x)*x - exp(x)"},
		{"tan(x)", rules.Derive(symbolic.TanOf(x), "x"), "-ln(abs(cos(x)))"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := rules.ClosedForm(tc.rule)
			require.True(t, ok)
			assert.Equal(t, tc.want, got.String())
		})
	}
}

func TestClosedForm_UnknownIsUnevaluated(t *testing.T) {
	dk := &rules.DontKnow{Node: rules.At(symbolic.ExpOf(symbolic.PowOf(x, symbolic.N(2))), "x")}
	r := &rules.ConstantTimes{
		Node:     rules.At(symbolic.MulOf(symbolic.N(2), dk.Integrand), "x"),
		Constant: symbolic.N(2),
		Other:    dk.Integrand,
		Substep:  dk,
	}
	got, ok := rules.ClosedForm(r)
	assert.False(t, ok)
	integral, isIntegral := got.(*symbolic.Integral)
	require.True(t, isIntegral, "got %T", got)
	assert.Equal(t, "x", integral.Var())
}

func TestClosedForm_AlternativeUsesFirstResolved(t *testing.T) {
	node := rules.At(x, "x")
	alt := &rules.Alternative{Node: node, Alternatives: []rules.Rule{
		&rules.DontKnow{Node: node},
		&rules.Power{Node: node, Base: x, Exp: symbolic.N(1)},
	}}
	got, ok := rules.ClosedForm(alt)
	require.True(t, ok)
	assert.Equal(t, "1/2*x^2", got.String())
}

func TestContainsUnknown(t *testing.T) {
	node := rules.At(x, "x")
	known := &rules.Power{Node: node, Base: x, Exp: symbolic.N(1)}
	unknown := &rules.DontKnow{Node: node}

	assert.False(t, rules.ContainsUnknown(nil))
	assert.False(t, rules.ContainsUnknown(known))
	assert.True(t, rules.ContainsUnknown(unknown))
	assert.True(t, rules.ContainsUnknown(&rules.Add{Node: node, Substeps: []rules.Rule{known, unknown}}))
	assert.True(t, rules.ContainsUnknown(&rules.Piecewise{Node: node, Subfunctions: []rules.Case{
		{Rule: known, Cond: symbolic.Ne(symbolic.S("n"), symbolic.N(-1))},
		{Rule: unknown},
	}}))
	assert.True(t, rules.ContainsUnknown(&rules.U{Node: node, UVar: "u", UFunc: x,
		Substep: &rules.Rewrite{Node: node, Rewritten: x, Substep: unknown}}))
}

func TestFilterAlternatives(t *testing.T) {
	node := rules.At(x, "x")
	known := &rules.Power{Node: node, Base: x, Exp: symbolic.N(1)}
	unknown := &rules.DontKnow{Node: node}

	t.Run("prunes unknown candidates", func(t *testing.T) {
		in := &rules.Alternative{Node: node, Alternatives: []rules.Rule{unknown, known}}
		out := rules.FilterAlternatives(in).(*rules.Alternative)
		assert.Equal(t, []rules.Rule{known}, out.Alternatives)
		assert.Len(t, in.Alternatives, 2, "input must not change")
	})

	t.Run("keeps everything when all are unknown", func(t *testing.T) {
		other := &rules.DontKnow{Node: node}
		in := &rules.Alternative{Node: node, Alternatives: []rules.Rule{unknown, other}}
		out := rules.FilterAlternatives(in).(*rules.Alternative)
		assert.Len(t, out.Alternatives, 2)
	})

	t.Run("other rules pass through", func(t *testing.T) {
		assert.Same(t, known, rules.FilterAlternatives(known))
	})
}

func TestReplaceSymbol(t *testing.T) {
	r := rules.Derive(symbolic.SinOf(symbolic.MulOf(symbolic.N(2), x)), "x")
	u := r.(*rules.U)

	relabeled := rules.ReplaceSymbol(u.Substep, u.UVar, "u")
	assert.Equal(t, "u", relabeled.Symbol())
	assert.Equal(t, "1/2*sin(u)", relabeled.Context().String())

	inner := relabeled.(*rules.ConstantTimes).Substep.(*rules.Trig)
	assert.Equal(t, "u", inner.Symbol())
	assert.True(t, inner.Arg.Equal(symbolic.S("u")))

	assert.Equal(t, u.UVar, u.Substep.Symbol(), "original must not change")
}

func TestReplaceSymbol_Piecewise(t *testing.T) {
	r := rules.Derive(symbolic.PowOf(x, symbolic.S("n")), "x")
	out := rules.ReplaceSymbol(r, "n", "m").(*rules.Piecewise)
	assert.Equal(t, "m != -1", out.Subfunctions[0].Cond.String())
	assert.Equal(t, "x^m", out.Context().String())
}

func TestJSON_RoundTrip(t *testing.T) {
	for _, integrand := range []symbolic.Expr{
		symbolic.MulOf(x, symbolic.ExpOf(x)),
		symbolic.MulOf(symbolic.ExpOf(x), symbolic.SinOf(x)),
		symbolic.TanOf(x),
		symbolic.PowOf(x, symbolic.S("n")),
		symbolic.Recip(symbolic.AddOf(symbolic.PowOf(x, symbolic.N(2)), symbolic.N(1))),
	} {
		t.Run(integrand.String(), func(t *testing.T) {
			r := rules.Derive(integrand, "x")
			data, err := rules.Marshal(r)
			require.NoError(t, err)

			back, err := rules.Unmarshal(data)
			require.NoError(t, err)
			assert.Equal(t, r.Tag(), back.Tag())

			want, _ := rules.ClosedForm(r)
			got, ok := rules.ClosedForm(back)
			require.True(t, ok)
			assert.True(t, want.Equal(got), "want %s, got %s", want, got)
		})
	}
}

func TestUnmarshal_Errors(t *testing.T) {
	cases := map[string]string{
		"not json":           `{`,
		"missing rule":       `{"symbol":"x","context":{"type":"sym","name":"x"}}`,
		"missing symbol":     `{"rule":"power","context":{"type":"sym","name":"x"}}`,
		"unknown rule":       `{"rule":"magic","symbol":"x","context":{"type":"sym","name":"x"}}`,
		"empty alternatives": `{"rule":"alternative","symbol":"x","context":{"type":"sym","name":"x"},"alternatives":[]}`,
		"bad substep":        `{"rule":"u","symbol":"x","context":{"type":"sym","name":"x"},"u_var":"u","u_func":{"type":"sym","name":"x"},"substep":3}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := rules.Unmarshal([]byte(raw))
			assert.Error(t, err)
		})
	}
}

func TestEngine_Integrate(t *testing.T) {
	var e rules.Engine
	got, ok := e.Integrate(symbolic.CosOf(x), "x")
	require.True(t, ok)
	assert.Equal(t, "sin(x)", got.String())

	_, ok = e.Integrate(symbolic.ExpOf(symbolic.PowOf(x, symbolic.N(2))), "x")
	assert.False(t, ok)
}
