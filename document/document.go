// Package document builds the nested outline an explanation is made of.
//
// A Builder keeps a stack of open frames. Step, Level and Collapsible push a
// frame and return a Scope; closing the Scope pops the frame and attaches the
// finished block to its parent. Callers pair every push with a deferred Close:
//
//	s := b.Step()
//	defer s.Close()
//	b.Append(f.Text("Integrate term-by-term:"))
//
// The result is a tree of plain Blocks that marshals directly to JSON.
package document

// Type is the kind of a Block.
type Type string

const (
	TypeStep        Type = "step"
	TypeLevel       Type = "level"
	TypeCollapsible Type = "collapsible"
	TypeParagraph   Type = "paragraph"
	TypeText        Type = "text"
	TypeMath        Type = "math"
	TypeMathDisplay Type = "math_display"
)

// Block is one node of the content tree. Leaf blocks carry Value; container
// blocks carry Children. Header is only set on collapsibles.
type Block struct {
	Type     Type    `json:"type"`
	Value    string  `json:"value,omitempty"`
	Header   string  `json:"header,omitempty"`
	Children []Block `json:"children,omitempty"`
}

// IsContainer reports whether b holds children rather than a value.
func (b Block) IsContainer() bool {
	switch b.Type {
	case TypeStep, TypeLevel, TypeCollapsible, TypeParagraph:
		return true
	}
	return false
}

type frame struct {
	block Block
}

// Builder accumulates blocks. It is not safe for concurrent use; every
// render owns its own Builder.
type Builder struct {
	root  []Block
	stack []*frame
}

// New returns an empty Builder.
func New() *Builder { return &Builder{} }

// Scope is an open frame. Close is idempotent.
type Scope struct {
	b      *Builder
	f      *frame
	closed bool
}

// Close pops the frame and attaches it to its parent. Frames opened after
// this one and still open are closed first.
func (s *Scope) Close() {
	if s == nil || s.closed {
		return
	}
	s.closed = true
	for len(s.b.stack) > 0 {
		top := s.b.stack[len(s.b.stack)-1]
		s.b.stack = s.b.stack[:len(s.b.stack)-1]
		s.b.attach(top.block)
		if top == s.f {
			return
		}
	}
}

func (b *Builder) push(t Type) *Scope {
	f := &frame{block: Block{Type: t}}
	b.stack = append(b.stack, f)
	return &Scope{b: b, f: f}
}

func (b *Builder) attach(blk Block) {
	if len(b.stack) == 0 {
		b.root = append(b.root, blk)
		return
	}
	top := b.stack[len(b.stack)-1]
	top.block.Children = append(top.block.Children, blk)
}

// Step opens one explanation unit.
func (b *Builder) Step() *Scope { return b.push(TypeStep) }

// Level opens a nested outline under the current step.
func (b *Builder) Level() *Scope { return b.push(TypeLevel) }

// Collapsible opens a nested outline that is hidden by default. Label it
// with AppendHeader.
func (b *Builder) Collapsible() *Scope { return b.push(TypeCollapsible) }

// Append adds one line to the innermost open frame. Several fragments are
// wrapped in a single paragraph.
func (b *Builder) Append(fragments ...Block) {
	switch len(fragments) {
	case 0:
		return
	case 1:
		b.attach(fragments[0])
	default:
		b.attach(Block{Type: TypeParagraph, Children: append([]Block(nil), fragments...)})
	}
}

// AppendHeader sets the header of the innermost open frame.
func (b *Builder) AppendHeader(header string) {
	if len(b.stack) == 0 {
		return
	}
	b.stack[len(b.stack)-1].block.Header = header
}

// Depth is the number of open frames.
func (b *Builder) Depth() int { return len(b.stack) }

// Content returns the finished top-level blocks. Frames still open are not
// included.
func (b *Builder) Content() []Block {
	return append([]Block(nil), b.root...)
}

// Last returns the most recently finished top-level block.
func (b *Builder) Last() (Block, bool) {
	if len(b.root) == 0 {
		return Block{}, false
	}
	return b.root[len(b.root)-1], true
}
