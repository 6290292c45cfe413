package parser

import (
	"github.com/chriserin/doctag/internal/diag"
	"github.com/chriserin/doctag/internal/source"
)

// Parse tokenizes and builds the comment lines of one document. Tokenizer
// and builder diagnostics are merged into the forest, sorted by offset.
func Parse(lines []source.Line) *Forest {
	tokens, diags := Tokenize(lines)
	f := Build(tokens)
	f.Diagnostics = append(diags, f.Diagnostics...)
	diag.Sort(f.Diagnostics)
	return f
}

// Build assembles tokens into a forest using an explicit stack of open tags,
// so nesting depth never turns into call depth.
func Build(tokens []Token) *Forest {
	b := &builder{forest: &Forest{}}
	for _, tok := range tokens {
		switch tok.Kind {
		case OpenBrace, OpenBracket:
			b.open(tok)
		case CloseBrace, CloseBracket:
			b.close(tok)
		case AttributeLine:
			if top := b.top(); top != nil {
				top.Attributes = append(top.Attributes, Attribute{
					Key:    tok.Name,
					Value:  tok.Payload,
					Caret:  tok.Caret,
					Offset: tok.Offset,
				})
			}
		case Text:
			if top := b.top(); top != nil {
				if top.Text != "" {
					top.Text += "\n"
				}
				top.Text += tok.Payload
			}
		}
	}

	// Everything still open is reported, innermost last.
	for _, n := range b.stack {
		b.report(diag.Errorf(diag.UnclosedTag, n.Start, "%s is never closed", n))
	}
	return b.forest
}

type builder struct {
	forest *Forest
	stack  []*DocNode
}

func (b *builder) top() *DocNode {
	if len(b.stack) == 0 {
		return nil
	}
	return b.stack[len(b.stack)-1]
}

func (b *builder) report(d diag.Diagnostic) {
	b.forest.Diagnostics = append(b.forest.Diagnostics, d)
}

func (b *builder) open(tok Token) {
	kind := Block
	if tok.Kind == OpenBracket {
		kind = List
	}
	n := &DocNode{Tag: tok.Name, Kind: kind, Start: tok.Offset, End: -1}
	if top := b.top(); top != nil {
		top.Children = append(top.Children, n)
	} else {
		b.forest.Roots = append(b.forest.Roots, n)
	}
	b.stack = append(b.stack, n)
}

// popTo closes stack[idx:] at offset and truncates the stack to idx.
func (b *builder) popTo(idx, offset int) {
	for i := len(b.stack) - 1; i >= idx; i-- {
		b.stack[i].End = offset
	}
	b.stack = b.stack[:idx]
}

// nearest returns the index of the innermost open node matching kind and,
// when name is set, tag. It returns -1 if there is none.
func (b *builder) nearest(kind NodeKind, name string) int {
	for i := len(b.stack) - 1; i >= 0; i-- {
		n := b.stack[i]
		if n.Kind == kind && (name == "" || n.Tag == name) {
			return i
		}
	}
	return -1
}

func (b *builder) close(tok Token) {
	kind := Block
	if tok.Kind == CloseBracket {
		kind = List
	}
	top := b.top()
	if top == nil {
		b.report(diag.Errorf(diag.UnbalancedTag, tok.Offset, "%s has no matching opening tag", tok.Lexeme()))
		return
	}

	if tok.Name != "" && !(top.Kind == kind && top.Tag == tok.Name) {
		// A named closer may skip over tags that were left open.
		idx := b.nearest(kind, tok.Name)
		if idx < 0 {
			b.report(diag.Errorf(diag.UnbalancedTag, tok.Offset, "%s does not match the open tag %s", tok.Lexeme(), top))
			if top.Kind == kind {
				b.popTo(len(b.stack)-1, tok.Offset)
			}
			return
		}
		for i := len(b.stack) - 1; i > idx; i-- {
			b.report(diag.Errorf(diag.UnclosedTag, b.stack[i].Start, "%s is not closed before %s", b.stack[i], tok.Lexeme()))
		}
		b.popTo(idx, tok.Offset)
		return
	}

	if top.Kind == kind {
		b.popTo(len(b.stack)-1, tok.Offset)
		return
	}

	b.report(diag.Errorf(diag.UnbalancedTag, tok.Offset, "%s cannot close %s; expected %s", tok.Lexeme(), top, top.Kind.closer()))
	if idx := b.nearest(kind, ""); idx >= 0 {
		b.popTo(idx, tok.Offset)
	}
}
