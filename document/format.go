package document

// Formula is anything that can be typeset as LaTeX.
type Formula interface {
	LaTeX() string
}

// Formatter turns sentences and formulas into leaf blocks.
type Formatter interface {
	Text(s string) Block
	Math(f Formula) Block
	MathDisplay(f Formula) Block
}

// LaTeXFormatter typesets formulas with their LaTeX method.
type LaTeXFormatter struct{}

func (LaTeXFormatter) Text(s string) Block { return Block{Type: TypeText, Value: s} }

func (LaTeXFormatter) Math(f Formula) Block { return Block{Type: TypeMath, Value: f.LaTeX()} }

func (LaTeXFormatter) MathDisplay(f Formula) Block {
	return Block{Type: TypeMathDisplay, Value: f.LaTeX()}
}
