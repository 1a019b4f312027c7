package intsteps

import (
	"fmt"
	"log/slog"

	"github.com/njchilds90/intsteps/document"
	"github.com/njchilds90/intsteps/rules"
	"github.com/njchilds90/intsteps/symbolic"
)

// partsIdentity is the integration by parts formula shown before every
// Parts step.
const partsIdentity = symbolic.TeX(`\int u \mathrm{d}v = uv - \int v \mathrm{d}u`)

// Printer renders one rule tree. It holds the per-render state: the
// document, the placeholder names and the alternative heads already shown.
// A Printer is used once and is not safe for concurrent use.
type Printer struct {
	solver Solver
	format document.Formatter
	logger *slog.Logger
	hooks  Hooks

	root  rules.Rule
	doc   *document.Builder
	names *placeholders
	seen  map[string]struct{}
	depth int

	result *Explanation
}

// NewPrinter prepares a render of root.
func NewPrinter(root rules.Rule, opts ...Option) *Printer {
	return newPrinter(root, newConfig(opts))
}

func newPrinter(root rules.Rule, cfg config) *Printer {
	taken := map[string]struct{}{}
	if root != nil {
		taken = symbolic.FreeSymbols(root.Context())
		taken[root.Symbol()] = struct{}{}
	}
	return &Printer{
		solver: cfg.solver,
		format: cfg.formatter,
		logger: cfg.logger,
		hooks:  cfg.hooks,
		root:   root,
		doc:    document.New(),
		names:  newPlaceholders(taken),
		seen:   map[string]struct{}{},
	}
}

// Explanation renders and finalizes the tree on the first call and returns
// the same result afterwards.
func (p *Printer) Explanation() *Explanation {
	if p.result != nil {
		return p.result
	}
	p.print(p.root)
	answer := p.finalize()
	content := p.doc.Content()
	if content == nil {
		content = []document.Block{}
	}
	p.result = &Explanation{Content: content, Answer: answer}
	return p.result
}

// ============================================================
// Output helpers
// ============================================================

func (p *Printer) within(s *document.Scope, fn func()) {
	defer s.Close()
	fn()
}

func (p *Printer) text(s string) document.Block            { return p.format.Text(s) }
func (p *Printer) math(f document.Formula) document.Block  { return p.format.Math(f) }
func (p *Printer) block(f document.Formula) document.Block { return p.format.MathDisplay(f) }

func (p *Printer) say(s string)                 { p.doc.Append(p.text(s)) }
func (p *Printer) display(f document.Formula)   { p.doc.Append(p.block(f)) }
func (p *Printer) line(frags ...document.Block) { p.doc.Append(frags...) }

func (p *Printer) closedForm(r rules.Rule) symbolic.Expr {
	e, _ := p.solver.ClosedForm(r)
	return e
}

func integral(r rules.Rule) symbolic.Expr {
	return symbolic.IntegralOf(r.Context(), r.Symbol())
}

// times attaches the differential d(v) to e: "f'(x) dx".
func times(e symbolic.Expr, v string) symbolic.Expr {
	return symbolic.MulOf(e, symbolic.D(v))
}

// equation shows ∫context d(symbol) = closed form.
func (p *Printer) equation(r rules.Rule) {
	p.display(symbolic.Eq(integral(r), p.closedForm(r)))
}

// ============================================================
// Dispatch
// ============================================================

func (p *Printer) print(r rules.Rule) {
	if r == nil {
		return
	}
	p.depth++
	defer func() { p.depth-- }()

	p.logger.Debug("render rule", "tag", string(r.Tag()), "depth", p.depth)
	if p.hooks.OnRule != nil {
		p.hooks.OnRule(&RuleEvent{Tag: r.Tag(), Depth: p.depth})
	}

	switch v := r.(type) {
	case *rules.Constant:
		p.printConstant(v)
	case *rules.ConstantTimes:
		p.printConstantTimes(v)
	case *rules.Power:
		p.printPower(v)
	case *rules.Add:
		p.printAdd(v)
	case *rules.U:
		p.printU(v)
	case *rules.Parts:
		p.printParts(v)
	case *rules.CyclicParts:
		p.printCyclicParts(v)
	case *rules.Trig:
		p.printTrig(v)
	case *rules.Exp:
		p.printExp(v)
	case *rules.Alternative:
		p.printAlternative(v)
	case *rules.DontKnow:
		p.printDontKnow(v)
	case *rules.Rewrite:
		p.printRewrite(v, "Rewrite the integrand:", v.Rewritten, v.Substep)
	case *rules.CompleteSquare:
		p.printRewrite(v, "Complete the square:", v.Rewritten, v.Substep)
	case *rules.TrigSubstitution:
		p.printTrigSubstitution(v)
	default:
		p.printSimple(r)
	}
}

// ============================================================
// Narratives
// ============================================================

func (p *Printer) printConstant(r *rules.Constant) {
	p.within(p.doc.Step(), func() {
		p.say("The integral of a constant is the constant times the variable of integration:")
		p.display(symbolic.Eq(symbolic.IntegralOf(r.Value, r.Symbol()), p.closedForm(r)))
	})
}

func (p *Printer) printConstantTimes(r *rules.ConstantTimes) {
	p.within(p.doc.Step(), func() {
		p.say("The integral of a constant times a function is the constant times the integral of the function:")
		p.display(symbolic.Eq(integral(r), symbolic.MulOf(r.Constant, symbolic.IntegralOf(r.Other, r.Symbol()))))
		p.within(p.doc.Level(), func() { p.print(r.Substep) })
		p.line(p.text("So, the result is: "), p.math(p.closedForm(r)))
	})
}

func (p *Printer) printPower(r *rules.Power) {
	p.within(p.doc.Step(), func() {
		x, n := symbolic.S(r.Symbol()), symbolic.S("n")
		next := symbolic.AddOf(n, symbolic.N(1))
		p.line(
			p.text("The integral of "),
			p.math(symbolic.PowOf(x, n)),
			p.text(" is "),
			p.math(symbolic.Div(symbolic.PowOf(x, next), next)),
			p.text(" when "),
			p.math(symbolic.Ne(n, symbolic.N(-1))),
			p.text(":"),
		)
		p.equation(r)
	})
}

func (p *Printer) printAdd(r *rules.Add) {
	p.within(p.doc.Step(), func() {
		p.say("Integrate term-by-term:")
		for _, sub := range r.Substeps {
			p.within(p.doc.Level(), func() { p.print(sub) })
		}
		p.line(p.text("The result is: "), p.math(p.closedForm(r)))
	})
}

// printU shows the substitution with a fresh placeholder and renders the
// sub-rule relabeled to it, so nested steps read in terms of that name.
func (p *Printer) printU(r *rules.U) {
	p.within(p.doc.Step(), func() {
		name := p.names.acquire()
		u, x := symbolic.S(name), r.Symbol()

		p.line(
			p.text("Let "),
			p.math(symbolic.Eq(u, r.UFunc)),
			p.text(", then "),
			p.math(symbolic.Eq(symbolic.D(name), times(r.UFunc.Diff(x), x))),
		)
		sub := rules.ReplaceSymbol(r.Substep, r.UVar, name)
		p.say("Substitute:")
		p.display(symbolic.IntegralOf(sub.Context(), name))
		p.within(p.doc.Level(), func() { p.print(sub) })

		p.line(p.text("Now substitute "), p.math(u), p.text(" back in:"))
		p.display(p.closedForm(r))
	})
}

func (p *Printer) printParts(r *rules.Parts) {
	p.within(p.doc.Step(), func() {
		x := r.Symbol()
		p.say("Use integration by parts:")
		p.display(partsIdentity)
		p.line(
			p.text("Let "),
			p.math(symbolic.Eq(symbolic.Fn("u", symbolic.S(x)), r.U)),
			p.text(" and "),
			p.math(symbolic.Eq(symbolic.D("v"), times(r.Dv, x))),
		)
		p.line(p.text("Then "), p.math(symbolic.Eq(symbolic.D("u"), times(r.U.Diff(x), x))))
		p.line(p.text("To find "), p.math(symbolic.Fn("v", symbolic.S(x))), p.text(":"))
		p.within(p.doc.Level(), func() { p.print(r.VStep) })
		if r.SecondStep != nil {
			p.say("Now evaluate the sub-integral.")
			p.print(r.SecondStep)
		}
	})
}

// printCyclicParts walks the parts rules with alternating signs, keeping
// the running total u·v and the integrand left over after each round.
func (p *Printer) printCyclicParts(r *rules.CyclicParts) {
	p.within(p.doc.Step(), func() {
		x := r.Symbol()
		original := integral(r)
		p.say("Use integration by parts, noting that the integrand eventually repeats itself.")
		p.within(p.doc.Level(), func() {
			current := r.Context()
			total := symbolic.Expr(symbolic.N(0))
			sign := int64(1)
			for _, rl := range r.PartsRules {
				p.within(p.doc.Step(), func() {
					p.line(p.text("For the integrand "), p.math(current), p.text(":"))
					p.line(
						p.text("Let "),
						p.math(symbolic.Eq(symbolic.Fn("u", symbolic.S(x)), rl.U)),
						p.text(" and "),
						p.math(symbolic.Eq(symbolic.D("v"), times(rl.Dv, x))),
					)
					vf := p.closedForm(rl.VStep)
					total = symbolic.AddOf(total, symbolic.MulOf(symbolic.N(sign), rl.U, vf))
					current = symbolic.MulOf(vf, rl.U.Diff(x))
					remaining := symbolic.MulOf(symbolic.N(-sign), symbolic.IntegralOf(current, x))
					p.line(p.text("Then "), p.math(symbolic.Eq(original, symbolic.AddOf(total, remaining))))
				})
				sign = -sign
			}
			p.within(p.doc.Step(), func() {
				p.say("Notice that the integrand has repeated itself, so move it to one side:")
				lhs := symbolic.MulOf(symbolic.AddOf(symbolic.N(1), symbolic.Neg(r.Coefficient)), original)
				p.display(symbolic.Eq(lhs, total))
				p.say("Therefore,")
				p.equation(r)
			})
		})
	})
}

var trigSentences = map[string]string{
	"sin":     "The integral of sine is negative cosine:",
	"cos":     "The integral of cosine is sine:",
	"sec*tan": "The integral of secant times tangent is secant:",
	"csc*cot": "The integral of cosecant times cotangent is cosecant:",
}

func (p *Printer) printTrig(r *rules.Trig) {
	p.within(p.doc.Step(), func() {
		if s, ok := trigSentences[r.Func]; ok {
			p.say(s)
		}
		p.equation(r)
	})
}

func (p *Printer) printExp(r *rules.Exp) {
	p.within(p.doc.Step(), func() {
		if symbolic.IsE(r.Base) {
			p.say("The integral of the exponential function is itself.")
		} else {
			p.say("The integral of an exponential function is itself divided by the natural logarithm of the base.")
		}
		p.equation(r)
	})
}

func (p *Printer) printSimple(r rules.Rule) {
	p.within(p.doc.Step(), func() {
		p.line(p.text("The integral of "), p.math(r.Context()), p.text(" is "), p.math(p.closedForm(r)))
	})
}

// printRewrite covers Rewrite and CompleteSquare. The sub-rule continues at
// the same level.
func (p *Printer) printRewrite(r rules.Rule, sentence string, rewritten symbolic.Expr, sub rules.Rule) {
	p.within(p.doc.Step(), func() {
		p.say(sentence)
		p.display(symbolic.Eq(r.Context(), rewritten))
		p.print(sub)
	})
}

func (p *Printer) printTrigSubstitution(r *rules.TrigSubstitution) {
	p.within(p.doc.Step(), func() {
		x, theta := r.Symbol(), r.Theta
		p.line(
			p.text("Let "),
			p.math(symbolic.Eq(symbolic.S(x), r.Func)),
			p.text(", then "),
			p.math(symbolic.Eq(symbolic.D(x), times(r.Func.Diff(theta), theta))),
		)
		p.say("Substitute:")
		p.display(integral(r.Substep))
		p.within(p.doc.Level(), func() { p.print(r.Substep) })
	})
}

func (p *Printer) printDontKnow(r *rules.DontKnow) {
	p.within(p.doc.Step(), func() {
		p.say("Don't know the steps in finding this integral.")
		p.say("But the integral is")
		result, ok := p.solver.Integrate(r.Context(), r.Symbol())
		if !ok {
			result = integral(r)
		}
		p.display(result)
	})
}

// printAlternative shows every remaining candidate under its own "Method #n"
// header. A single candidate, or a head already shown once, renders just
// the first candidate.
func (p *Printer) printAlternative(r *rules.Alternative) {
	filtered := rules.FilterAlternatives(r).(*rules.Alternative)
	if len(filtered.Alternatives) == 1 {
		p.print(filtered.Alternatives[0])
		return
	}
	head := symbolic.Head(r.Context())
	if _, shown := p.seen[head]; shown {
		p.print(filtered.Alternatives[0])
		return
	}
	p.seen[head] = struct{}{}
	p.within(p.doc.Step(), func() {
		p.say("There are multiple ways to do this integral.")
		for i, alt := range filtered.Alternatives {
			p.within(p.doc.Collapsible(), func() {
				p.doc.AppendHeader(fmt.Sprintf("Method #%d", i+1))
				p.within(p.doc.Level(), func() { p.print(alt) })
			})
		}
	})
}

// ============================================================
// Finalize
// ============================================================

// finalize closes the outline: an optional simplification step, then the
// constant of integration. It returns the answer block, or nil when the
// tree has no closed form.
func (p *Printer) finalize() *document.Block {
	if p.root == nil {
		return nil
	}
	result, ok := p.solver.ClosedForm(rules.FilterAlternatives(p.root))
	event := &FinalizeEvent{Answered: ok}
	defer func() {
		if p.hooks.OnFinalize != nil {
			p.hooks.OnFinalize(event)
		}
	}()
	if !ok {
		p.logger.Debug("no closed form", "integrand", p.root.Context().String())
		return nil
	}

	if simp := p.solver.Simplify(result); simp.String() != result.String() {
		result = simp
		event.Simplified = true
		p.within(p.doc.Step(), func() {
			p.say("Now simplify:")
			p.display(simp)
		})
	}

	answer := p.block(symbolic.TeX(result.LaTeX() + `+ \mathrm{C}`))
	p.within(p.doc.Step(), func() {
		p.say("Add the constant of integration:")
		p.doc.Append(answer)
	})
	p.logger.Debug("render finished", "result", result.String(), "simplified", event.Simplified)
	return &answer
}
