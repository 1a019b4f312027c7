package document_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/intsteps/document"
)

type tex string

func (t tex) LaTeX() string { return string(t) }

var f document.LaTeXFormatter

func TestBuilder_NestsScopes(t *testing.T) {
	b := document.New()
	func() {
		s := b.Step()
		defer s.Close()
		b.Append(f.Text("Integrate term-by-term:"))
		func() {
			l := b.Level()
			defer l.Close()
			inner := b.Step()
			defer inner.Close()
			b.Append(f.MathDisplay(tex("x")))
		}()
		b.Append(f.Text("The result is: "), f.Math(tex("y")))
	}()

	require.Equal(t, 0, b.Depth())
	got := b.Content()
	require.Len(t, got, 1)

	step := got[0]
	assert.Equal(t, document.TypeStep, step.Type)
	require.Len(t, step.Children, 3)
	assert.Equal(t, document.Block{Type: document.TypeText, Value: "Integrate term-by-term:"}, step.Children[0])

	level := step.Children[1]
	assert.Equal(t, document.TypeLevel, level.Type)
	require.Len(t, level.Children, 1)
	assert.Equal(t, document.TypeStep, level.Children[0].Type)
	assert.Equal(t, "x", level.Children[0].Children[0].Value)

	para := step.Children[2]
	assert.Equal(t, document.TypeParagraph, para.Type)
	assert.Len(t, para.Children, 2)
}

func TestBuilder_CollapsibleHeader(t *testing.T) {
	b := document.New()
	s := b.Step()
	c := b.Collapsible()
	b.AppendHeader("Method #1")
	b.Append(f.Text("a"))
	c.Close()
	s.Close()

	got := b.Content()
	require.Len(t, got, 1)
	col := got[0].Children[0]
	assert.Equal(t, document.TypeCollapsible, col.Type)
	assert.Equal(t, "Method #1", col.Header)
}

func TestScope_CloseIsIdempotentAndUnwinds(t *testing.T) {
	b := document.New()
	outer := b.Step()
	b.Level()
	b.Step()
	outer.Close()
	outer.Close()

	assert.Equal(t, 0, b.Depth())
	got := b.Content()
	require.Len(t, got, 1)
	require.Len(t, got[0].Children, 1)
	assert.Len(t, got[0].Children[0].Children, 1)
}

func TestBuilder_AppendNothing(t *testing.T) {
	b := document.New()
	b.Append()
	b.AppendHeader("ignored")
	assert.Empty(t, b.Content())
}

func TestBlock_JSON(t *testing.T) {
	blk := document.Block{Type: document.TypeStep, Children: []document.Block{
		{Type: document.TypeText, Value: "hi"},
	}}
	data, err := json.Marshal(blk)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"step","children":[{"type":"text","value":"hi"}]}`, string(data))
}

func TestMarkdown(t *testing.T) {
	blocks := []document.Block{
		{Type: document.TypeStep, Children: []document.Block{
			f.Text("A"),
			f.MathDisplay(tex("x")),
		}},
		{Type: document.TypeStep, Children: []document.Block{
			{Type: document.TypeParagraph, Children: []document.Block{f.Text("B "), f.Math(tex("y"))}},
			{Type: document.TypeLevel, Children: []document.Block{
				{Type: document.TypeStep, Children: []document.Block{f.Text("C")}},
			}},
		}},
	}
	want := "1. A\n\n   $$x$$\n\n2. B $y$\n\n   1. C\n"
	assert.Equal(t, want, document.Markdown(blocks))
}

func TestMarkdown_Collapsible(t *testing.T) {
	blocks := []document.Block{
		{Type: document.TypeCollapsible, Header: "Method #1", Children: []document.Block{f.Text("z")}},
	}
	assert.Equal(t, "**Method #1**\n\nz\n", document.Markdown(blocks))
}
