package symbolic

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// ============================================================
// JSON Serialization
// ============================================================

func ToJSON(e Expr) (string, error) {
	b, err := json.Marshal(e.toJSON())
	return string(b), err
}

// ToMap returns the JSON object form of e.
func ToMap(e Expr) map[string]interface{} { return e.toJSON() }

// ParseJSON decodes an expression from its JSON text.
func ParseJSON(data []byte) (Expr, error) {
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode expression: %w", err)
	}
	return FromJSON(m)
}

func FromJSON(data map[string]interface{}) (Expr, error) {
	if data == nil {
		return nil, fmt.Errorf("expression must be an object")
	}
	typAny, ok := data["type"]
	if !ok {
		return nil, fmt.Errorf("missing 'type' field")
	}
	typ, ok := typAny.(string)
	if !ok || typ == "" {
		return nil, fmt.Errorf("field 'type' must be a non-empty string")
	}

	subObj := func(field string) (map[string]interface{}, error) {
		v, ok := data[field]
		if !ok {
			return nil, fmt.Errorf("%s: missing %q", typ, field)
		}
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an object", typ, field)
		}
		return m, nil
	}

	subExpr := func(field string) (Expr, error) {
		m, err := subObj(field)
		if err != nil {
			return nil, err
		}
		e, err := FromJSON(m)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", typ, field, err)
		}
		return e, nil
	}

	subObjArray := func(field string) ([]map[string]interface{}, error) {
		v, ok := data[field]
		if !ok {
			return nil, fmt.Errorf("%s: missing %q", typ, field)
		}
		raw, ok := v.([]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an array", typ, field)
		}
		out := make([]map[string]interface{}, len(raw))
		for i, it := range raw {
			m, ok := it.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("%s: %q[%d] must be an object", typ, field, i)
			}
			out[i] = m
		}
		return out, nil
	}

	subExprArray := func(field string) ([]Expr, error) {
		objs, err := subObjArray(field)
		if err != nil {
			return nil, err
		}
		out := make([]Expr, len(objs))
		for i, o := range objs {
			e, err := FromJSON(o)
			if err != nil {
				return nil, fmt.Errorf("%s: %s[%d]: %w", typ, field, i, err)
			}
			out[i] = e
		}
		return out, nil
	}

	subString := func(field string) (string, error) {
		v, ok := data[field]
		if !ok {
			return "", fmt.Errorf("%s: missing %q", typ, field)
		}
		s, ok := v.(string)
		if !ok || s == "" {
			return "", fmt.Errorf("%s: %q must be a non-empty string", typ, field)
		}
		return s, nil
	}

	switch typ {
	case "num":
		val, err := subString("value")
		if err != nil {
			return nil, err
		}
		r := new(big.Rat)
		if _, ok := r.SetString(val); !ok {
			return nil, fmt.Errorf("invalid num value: %s", val)
		}
		return &Num{val: r}, nil

	case "sym":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		return S(name), nil

	case "const":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		switch name {
		case "E", "e":
			return E, nil
		case "pi":
			return Pi, nil
		}
		return nil, fmt.Errorf("const: unknown constant %q", name)

	case "add":
		terms, err := subExprArray("terms")
		if err != nil {
			return nil, err
		}
		return AddOf(terms...), nil

	case "mul":
		factors, err := subExprArray("factors")
		if err != nil {
			return nil, err
		}
		return MulOf(factors...), nil

	case "pow":
		base, err := subExpr("base")
		if err != nil {
			return nil, err
		}
		exp, err := subExpr("exp")
		if err != nil {
			return nil, err
		}
		return PowOf(base, exp), nil

	case "func":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		arg, err := subExpr("arg")
		if err != nil {
			return nil, err
		}
		return FuncOf(name, arg), nil

	case "applied":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		arg, err := subExpr("arg")
		if err != nil {
			return nil, err
		}
		return Fn(name, arg), nil

	case "integral":
		v, err := subString("var")
		if err != nil {
			return nil, err
		}
		integrand, err := subExpr("integrand")
		if err != nil {
			return nil, err
		}
		return IntegralOf(integrand, v), nil

	case "differential":
		v, err := subString("var")
		if err != nil {
			return nil, err
		}
		return D(v), nil

	case "piecewise":
		objs, err := subObjArray("pieces")
		if err != nil {
			return nil, err
		}
		pieces := make([]Piece, len(objs))
		for i, o := range objs {
			pc, err := pieceFromJSON(o)
			if err != nil {
				return nil, fmt.Errorf("piecewise: pieces[%d]: %w", i, err)
			}
			pieces[i] = pc
		}
		return PiecewiseOf(pieces...), nil
	}
	return nil, fmt.Errorf("unknown expression type %q", typ)
}

func pieceFromJSON(m map[string]interface{}) (Piece, error) {
	raw, ok := m["value"].(map[string]interface{})
	if !ok {
		return Piece{}, fmt.Errorf("'value' must be an object")
	}
	val, err := FromJSON(raw)
	if err != nil {
		return Piece{}, err
	}
	pc := Piece{Value: val}
	if c, ok := m["cond"]; ok && c != nil {
		cm, ok := c.(map[string]interface{})
		if !ok {
			return Piece{}, fmt.Errorf("'cond' must be an object")
		}
		rel, err := RelationFromJSON(cm)
		if err != nil {
			return Piece{}, fmt.Errorf("cond: %w", err)
		}
		pc.Cond = rel
	}
	return pc, nil
}

// RelationToMap returns the JSON object form of r.
func RelationToMap(r *Relation) map[string]interface{} { return r.toJSON() }

// RelationFromJSON decodes {"op": "=" | "!=", "lhs": ..., "rhs": ...}.
func RelationFromJSON(m map[string]interface{}) (*Relation, error) {
	op, _ := m["op"].(string)
	if op != OpEq && op != OpNe {
		return nil, fmt.Errorf("relation: unknown op %q", op)
	}
	lm, ok1 := m["lhs"].(map[string]interface{})
	rm, ok2 := m["rhs"].(map[string]interface{})
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("relation: 'lhs' and 'rhs' must be objects")
	}
	lhs, err := FromJSON(lm)
	if err != nil {
		return nil, fmt.Errorf("relation: lhs: %w", err)
	}
	rhs, err := FromJSON(rm)
	if err != nil {
		return nil, fmt.Errorf("relation: rhs: %w", err)
	}
	return &Relation{LHS: lhs, RHS: rhs, Op: op}, nil
}
