package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/njchilds90/intsteps/symbolic"
)

// ============================================================
// Tool Interface
// ============================================================

type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	LaTeX  string      `json:"latex,omitempty"`
	String string      `json:"string,omitempty"`
	Cached bool        `json:"cached,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// HandleToolCall dispatches a generic {tool, params} request.
func (s *Service) HandleToolCall(ctx context.Context, req ToolRequest) ToolResponse {
	getRaw := func(key string) (json.RawMessage, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, fmt.Errorf("missing param: %s", key)
		}
		if _, ok := v.(map[string]interface{}); !ok {
			return nil, fmt.Errorf("invalid type for param %s", key)
		}
		return json.Marshal(v)
	}
	getString := func(key string) (string, error) {
		v, ok := req.Params[key]
		if !ok {
			return "", fmt.Errorf("missing param: %s", key)
		}
		str, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("param %s must be a string", key)
		}
		return str, nil
	}
	explained := func(res *Result, err error) ToolResponse {
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		resp := ToolResponse{
			Result: res.Explanation,
			String: res.Explanation.Markdown(),
			Cached: res.Cached,
		}
		if res.Explanation.Answer != nil {
			resp.LaTeX = res.Explanation.Answer.Value
		}
		return resp
	}

	switch req.Tool {
	case "integral_steps":
		e, err := getRaw("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		v, err := getString("var")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return explained(s.Explain(ctx, e, v))

	case "render_rule_tree":
		r, err := getRaw("rule")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return explained(s.Render(ctx, r))

	case "integrate":
		e, err := getRaw("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		v, err := getString("var")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		res, err := s.Integrate(e, v)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return ToolResponse{Result: symbolic.ToMap(res), LaTeX: res.LaTeX(), String: res.String()}

	case "to_latex":
		e, err := getRaw("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		ex, err := symbolic.ParseJSON(e)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return ToolResponse{LaTeX: ex.LaTeX(), String: ex.String()}

	case "tool_spec":
		return ToolResponse{Result: ToolSpecs(), String: "tool specification"}
	}

	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}

// ToolSpecs describes the tools in the MCP inputSchema shape.
func ToolSpecs() []map[string]interface{} {
	return []map[string]interface{}{
		ts("integral_steps", "Step-by-step explanation of an indefinite integral", []string{"expr", "var"}, map[string]string{"expr": "object", "var": "string"}),
		ts("render_rule_tree", "Render a precomputed integration rule tree", []string{"rule"}, map[string]string{"rule": "object"}),
		ts("integrate", "Closed form of an indefinite integral, without steps", []string{"expr", "var"}, map[string]string{"expr": "object", "var": "string"}),
		ts("to_latex", "Convert to LaTeX", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("tool_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
}

// ToolSpecJSON is ToolSpecs wrapped as {"tools": [...]}.
func ToolSpecJSON() string {
	b, _ := json.MarshalIndent(map[string]interface{}{"tools": ToolSpecs()}, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
