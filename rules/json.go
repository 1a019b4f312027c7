package rules

import (
	"encoding/json"
	"fmt"

	"github.com/njchilds90/intsteps/symbolic"
)

// ============================================================
// JSON Serialization
// ============================================================
//
// A rule is an object with "rule" (its Tag), "context", "symbol" and the
// variant's own fields; expressions use the symbolic package's JSON form.

// Marshal encodes a rule tree.
func Marshal(r Rule) ([]byte, error) { return json.Marshal(ToMap(r)) }

// Unmarshal decodes a rule tree.
func Unmarshal(data []byte) (Rule, error) {
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode rule: %w", err)
	}
	return FromJSON(m)
}

// ToMap returns the JSON object form of r. A nil rule maps to nil.
func ToMap(r Rule) map[string]interface{} {
	if r == nil {
		return nil
	}
	ex := func(e symbolic.Expr) interface{} {
		if e == nil {
			return nil
		}
		return symbolic.ToMap(e)
	}
	out := map[string]interface{}{
		"rule":    string(r.Tag()),
		"context": ex(r.Context()),
		"symbol":  r.Symbol(),
	}
	all := func(rs []Rule) []interface{} {
		list := make([]interface{}, len(rs))
		for i, s := range rs {
			list[i] = ToMap(s)
		}
		return list
	}
	switch v := r.(type) {
	case *Constant:
		out["value"] = ex(v.Value)
	case *ConstantTimes:
		out["constant"], out["other"], out["substep"] = ex(v.Constant), ex(v.Other), ToMap(v.Substep)
	case *Power:
		out["base"], out["exp"] = ex(v.Base), ex(v.Exp)
	case *Add:
		out["substeps"] = all(v.Substeps)
	case *U:
		out["u_var"], out["u_func"], out["substep"] = v.UVar, ex(v.UFunc), ToMap(v.Substep)
	case *Parts:
		partsFields(v, out, ex)
	case *CyclicParts:
		list := make([]interface{}, len(v.PartsRules))
		for i, p := range v.PartsRules {
			list[i] = ToMap(p)
		}
		out["parts_rules"], out["coefficient"] = list, ex(v.Coefficient)
	case *Trig:
		out["func"], out["arg"] = v.Func, ex(v.Arg)
	case *Exp:
		out["base"], out["exponent"] = ex(v.Base), ex(v.Exponent)
	case *Rewrite:
		out["rewritten"], out["substep"] = ex(v.Rewritten), ToMap(v.Substep)
	case *CompleteSquare:
		out["rewritten"], out["substep"] = ex(v.Rewritten), ToMap(v.Substep)
	case *TrigSubstitution:
		out["theta"], out["func"], out["inverse"] = v.Theta, ex(v.Func), ex(v.Inverse)
		out["rewritten"], out["substep"] = ex(v.Rewritten), ToMap(v.Substep)
	case *Alternative:
		out["alternatives"] = all(v.Alternatives)
	case *Reciprocal:
		out["func"] = ex(v.Func)
	case *Arctan:
		out["a"], out["b"], out["c"] = ex(v.A), ex(v.B), ex(v.C)
	case *Piecewise:
		list := make([]interface{}, len(v.Subfunctions))
		for i, c := range v.Subfunctions {
			item := map[string]interface{}{"rule": ToMap(c.Rule)}
			if c.Cond != nil {
				item["cond"] = symbolic.RelationToMap(c.Cond)
			}
			list[i] = item
		}
		out["subfunctions"] = list
	}
	return out
}

func partsFields(p *Parts, out map[string]interface{}, ex func(symbolic.Expr) interface{}) {
	out["u"], out["dv"] = ex(p.U), ex(p.Dv)
	out["v_step"], out["second_step"] = ToMap(p.VStep), ToMap(p.SecondStep)
}

// FromJSON decodes a rule from its JSON object form.
func FromJSON(data map[string]interface{}) (Rule, error) {
	if data == nil {
		return nil, fmt.Errorf("rule must be an object")
	}
	tag, _ := data["rule"].(string)
	if tag == "" {
		return nil, fmt.Errorf("field 'rule' must be a non-empty string")
	}
	symbol, _ := data["symbol"].(string)
	if symbol == "" {
		return nil, fmt.Errorf("%s: 'symbol' must be a non-empty string", tag)
	}

	subExpr := func(field string) (symbolic.Expr, error) {
		m, ok := data[field].(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an expression object", tag, field)
		}
		e, err := symbolic.FromJSON(m)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", tag, field, err)
		}
		return e, nil
	}

	subString := func(field string) (string, error) {
		s, ok := data[field].(string)
		if !ok || s == "" {
			return "", fmt.Errorf("%s: %q must be a non-empty string", tag, field)
		}
		return s, nil
	}

	subRule := func(field string) (Rule, error) {
		m, ok := data[field].(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q must be a rule object", tag, field)
		}
		r, err := FromJSON(m)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", tag, field, err)
		}
		return r, nil
	}

	subRules := func(field string) ([]Rule, error) {
		raw, ok := data[field].([]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an array", tag, field)
		}
		out := make([]Rule, len(raw))
		for i, it := range raw {
			m, ok := it.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("%s: %q[%d] must be a rule object", tag, field, i)
			}
			r, err := FromJSON(m)
			if err != nil {
				return nil, fmt.Errorf("%s: %s[%d]: %w", tag, field, i, err)
			}
			out[i] = r
		}
		return out, nil
	}

	// exprs decodes every named expression field or stops at the first error.
	exprs := func(fields ...string) ([]symbolic.Expr, error) {
		out := make([]symbolic.Expr, len(fields))
		for i, f := range fields {
			e, err := subExpr(f)
			if err != nil {
				return nil, err
			}
			out[i] = e
		}
		return out, nil
	}

	ctx, err := subExpr("context")
	if err != nil {
		return nil, err
	}
	node := At(ctx, symbol)

	switch Tag(tag) {
	case TagConstant:
		e, err := exprs("value")
		if err != nil {
			return nil, err
		}
		return &Constant{Node: node, Value: e[0]}, nil

	case TagConstantTimes:
		e, err := exprs("constant", "other")
		if err != nil {
			return nil, err
		}
		sub, err := subRule("substep")
		if err != nil {
			return nil, err
		}
		return &ConstantTimes{Node: node, Constant: e[0], Other: e[1], Substep: sub}, nil

	case TagPower:
		e, err := exprs("base", "exp")
		if err != nil {
			return nil, err
		}
		return &Power{Node: node, Base: e[0], Exp: e[1]}, nil

	case TagAdd:
		subs, err := subRules("substeps")
		if err != nil {
			return nil, err
		}
		return &Add{Node: node, Substeps: subs}, nil

	case TagU:
		uv, err := subString("u_var")
		if err != nil {
			return nil, err
		}
		e, err := exprs("u_func")
		if err != nil {
			return nil, err
		}
		sub, err := subRule("substep")
		if err != nil {
			return nil, err
		}
		return &U{Node: node, UVar: uv, UFunc: e[0], Substep: sub}, nil

	case TagParts:
		return partsFromJSON(node, exprs, subRule, data)

	case TagCyclicParts:
		subs, err := subRules("parts_rules")
		if err != nil {
			return nil, err
		}
		parts := make([]*Parts, len(subs))
		for i, s := range subs {
			p, ok := s.(*Parts)
			if !ok {
				return nil, fmt.Errorf("%s: parts_rules[%d] must be a parts rule", tag, i)
			}
			parts[i] = p
		}
		e, err := exprs("coefficient")
		if err != nil {
			return nil, err
		}
		return &CyclicParts{Node: node, PartsRules: parts, Coefficient: e[0]}, nil

	case TagTrig:
		fn, err := subString("func")
		if err != nil {
			return nil, err
		}
		e, err := exprs("arg")
		if err != nil {
			return nil, err
		}
		return &Trig{Node: node, Func: fn, Arg: e[0]}, nil

	case TagExp:
		e, err := exprs("base", "exponent")
		if err != nil {
			return nil, err
		}
		return &Exp{Node: node, Base: e[0], Exponent: e[1]}, nil

	case TagRewrite, TagCompleteSquare:
		e, err := exprs("rewritten")
		if err != nil {
			return nil, err
		}
		sub, err := subRule("substep")
		if err != nil {
			return nil, err
		}
		if Tag(tag) == TagRewrite {
			return &Rewrite{Node: node, Rewritten: e[0], Substep: sub}, nil
		}
		return &CompleteSquare{Node: node, Rewritten: e[0], Substep: sub}, nil

	case TagTrigSubstitution:
		theta, err := subString("theta")
		if err != nil {
			return nil, err
		}
		e, err := exprs("func", "inverse", "rewritten")
		if err != nil {
			return nil, err
		}
		sub, err := subRule("substep")
		if err != nil {
			return nil, err
		}
		return &TrigSubstitution{Node: node, Theta: theta, Func: e[0], Inverse: e[1], Rewritten: e[2], Substep: sub}, nil

	case TagAlternative:
		subs, err := subRules("alternatives")
		if err != nil {
			return nil, err
		}
		if len(subs) == 0 {
			return nil, fmt.Errorf("%s: 'alternatives' must not be empty", tag)
		}
		return &Alternative{Node: node, Alternatives: subs}, nil

	case TagDontKnow:
		return &DontKnow{Node: node}, nil

	case TagReciprocal:
		e, err := exprs("func")
		if err != nil {
			return nil, err
		}
		return &Reciprocal{Node: node, Func: e[0]}, nil

	case TagArctan:
		e, err := exprs("a", "b", "c")
		if err != nil {
			return nil, err
		}
		return &Arctan{Node: node, A: e[0], B: e[1], C: e[2]}, nil

	case TagPiecewise:
		raw, ok := data["subfunctions"].([]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: 'subfunctions' must be an array", tag)
		}
		cases := make([]Case, len(raw))
		for i, it := range raw {
			c, err := caseFromJSON(it)
			if err != nil {
				return nil, fmt.Errorf("%s: subfunctions[%d]: %w", tag, i, err)
			}
			cases[i] = c
		}
		return &Piecewise{Node: node, Subfunctions: cases}, nil
	}
	return nil, fmt.Errorf("unknown rule %q", tag)
}

func partsFromJSON(
	node Node,
	exprs func(...string) ([]symbolic.Expr, error),
	subRule func(string) (Rule, error),
	data map[string]interface{},
) (Rule, error) {
	e, err := exprs("u", "dv")
	if err != nil {
		return nil, err
	}
	vstep, err := subRule("v_step")
	if err != nil {
		return nil, err
	}
	p := &Parts{Node: node, U: e[0], Dv: e[1], VStep: vstep}
	if raw, ok := data["second_step"]; ok && raw != nil {
		if p.SecondStep, err = subRule("second_step"); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func caseFromJSON(it interface{}) (Case, error) {
	m, ok := it.(map[string]interface{})
	if !ok {
		return Case{}, fmt.Errorf("case must be an object")
	}
	rm, ok := m["rule"].(map[string]interface{})
	if !ok {
		return Case{}, fmt.Errorf("'rule' must be a rule object")
	}
	r, err := FromJSON(rm)
	if err != nil {
		return Case{}, err
	}
	c := Case{Rule: r}
	if raw, ok := m["cond"]; ok && raw != nil {
		cm, ok := raw.(map[string]interface{})
		if !ok {
			return Case{}, fmt.Errorf("'cond' must be an object")
		}
		if c.Cond, err = symbolic.RelationFromJSON(cm); err != nil {
			return Case{}, err
		}
	}
	return c, nil
}
