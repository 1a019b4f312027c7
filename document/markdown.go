package document

import (
	"fmt"
	"strings"
)

// Markdown renders a content tree as a Markdown outline. Steps become
// numbered list items, collapsibles a bold header over their content, inline
// math $…$ and display math $$…$$.
func Markdown(blocks []Block) string {
	out := strings.Join(markdownLines(blocks), "\n")
	return strings.TrimRight(out, "\n") + "\n"
}

func markdownLines(blocks []Block) []string {
	var out []string
	step := 0
	for _, b := range blocks {
		switch b.Type {
		case TypeStep:
			step++
			out = append(out, listItem(fmt.Sprintf("%d. ", step), markdownLines(b.Children))...)
		case TypeLevel:
			out = append(out, markdownLines(b.Children)...)
		case TypeCollapsible:
			if b.Header != "" {
				out = append(out, "**"+b.Header+"**", "")
			}
			out = append(out, markdownLines(b.Children)...)
		default:
			out = append(out, inline(b), "")
		}
	}
	return out
}

// listItem prefixes the first line and indents the rest to the item's
// content column so nested lists and paragraphs stay inside it.
func listItem(prefix string, lines []string) []string {
	if len(lines) == 0 {
		return []string{strings.TrimRight(prefix, " "), ""}
	}
	pad := strings.Repeat(" ", len(prefix))
	out := make([]string, len(lines))
	for i, l := range lines {
		switch {
		case i == 0:
			out[i] = prefix + l
		case l == "":
			out[i] = ""
		default:
			out[i] = pad + l
		}
	}
	return out
}

func inline(b Block) string {
	switch b.Type {
	case TypeMath:
		return "$" + b.Value + "$"
	case TypeMathDisplay:
		return "$$" + b.Value + "$$"
	case TypeParagraph:
		var sb strings.Builder
		for _, c := range b.Children {
			sb.WriteString(inline(c))
		}
		return sb.String()
	}
	return b.Value
}
