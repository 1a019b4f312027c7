package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/njchilds90/intsteps"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newExplainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Explain an integral step by step",
		Long: `Explain derives the steps of an indefinite integral (--expr) or renders a
precomputed rule tree (--rule). Both take JSON; "-" reads it from stdin.`,
		Example: `  intsteps explain --expr '{"type":"func","name":"cos","arg":{"type":"sym","name":"x"}}'
  intsteps explain --rule @tree.json --format json`,
		RunE: runExplain,
	}
	cmd.Flags().String("expr", "", "Integrand as a JSON expression")
	cmd.Flags().String("rule", "", "Rule tree as JSON")
	cmd.Flags().String("var", "x", "Integration variable")
	cmd.Flags().StringP("format", "f", "markdown", "Output format: markdown or json")
	cmd.MarkFlagsMutuallyExclusive("expr", "rule")
	cmd.MarkFlagsOneRequired("expr", "rule")
	return cmd
}

func runExplain(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if format != "markdown" && format != "json" {
		return fmt.Errorf("unknown format %q (want markdown or json)", format)
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	a, err := newApp(cfg, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	exprArg, _ := cmd.Flags().GetString("expr")
	ruleArg, _ := cmd.Flags().GetString("rule")
	variable, _ := cmd.Flags().GetString("var")

	var ex *intsteps.Explanation
	if exprArg != "" {
		data, err := readArg(cmd.InOrStdin(), exprArg)
		if err != nil {
			return err
		}
		res, err := a.svc.Explain(ctx, data, variable)
		if err != nil {
			return err
		}
		ex = res.Explanation
	} else {
		data, err := readArg(cmd.InOrStdin(), ruleArg)
		if err != nil {
			return err
		}
		res, err := a.svc.Render(ctx, data)
		if err != nil {
			return err
		}
		ex = res.Explanation
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(ex)
	}
	return writeMarkdown(out, ex.Markdown())
}

// readArg returns the flag value itself, stdin for "-", or a file for "@path".
func readArg(stdin io.Reader, v string) (json.RawMessage, error) {
	switch {
	case v == "-":
		data, err := io.ReadAll(io.LimitReader(stdin, 1<<20))
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	case strings.HasPrefix(v, "@"):
		data, err := os.ReadFile(v[1:])
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", v[1:], err)
		}
		return data, nil
	}
	return json.RawMessage(v), nil
}

// writeMarkdown styles the outline with glamour when out is a terminal and
// writes it verbatim otherwise.
func writeMarkdown(out io.Writer, md string) error {
	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		_, err := io.WriteString(out, md)
		return err
	}
	width := 100
	if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
		width = w
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return err
	}
	styled, err := r.Render(md)
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, styled)
	return err
}
