package parser

import (
	"fmt"

	"github.com/chriserin/doctag/internal/diag"
)

// Layer 1: tokens and the tag tree

type TokenKind uint8

const (
	OpenBrace     TokenKind = iota + 1 // @{name
	CloseBrace                         // @}
	OpenBracket                        // @[name
	CloseBracket                       // @]
	AttributeLine                      // @name payload, @^label payload
	Text
)

func (k TokenKind) String() string {
	switch k {
	case OpenBrace:
		return "OPEN_BRACE"
	case CloseBrace:
		return "CLOSE_BRACE"
	case OpenBracket:
		return "OPEN_BRACKET"
	case CloseBracket:
		return "CLOSE_BRACKET"
	case AttributeLine:
		return "ATTRIBUTE"
	case Text:
		return "TEXT"
	}
	return "UNKNOWN"
}

type Token struct {
	Kind    TokenKind
	Name    string // tag name, attribute name, or label for @^ attributes
	Payload string
	Caret   bool // attribute written in the @^ form
	Offset  int  // byte offset in the source file
}

// Lexeme renders the tag part of the token the way it is written.
func (t Token) Lexeme() string {
	switch t.Kind {
	case OpenBrace:
		return "@{" + t.Name
	case CloseBrace:
		return "@}" + t.Name
	case OpenBracket:
		return "@[" + t.Name
	case CloseBracket:
		return "@]" + t.Name
	case AttributeLine:
		if t.Caret {
			return "@^" + t.Name
		}
		return "@" + t.Name
	}
	return t.Payload
}

type NodeKind uint8

const (
	Block NodeKind = iota + 1 // @{ ... @}
	List                      // @[ ... @]
)

func (k NodeKind) opener() string {
	if k == List {
		return "@["
	}
	return "@{"
}

func (k NodeKind) closer() string {
	if k == List {
		return "@]"
	}
	return "@}"
}

type Attribute struct {
	Key    string
	Value  string
	Caret  bool
	Offset int
}

type DocNode struct {
	Tag        string
	Kind       NodeKind
	Attributes []Attribute
	Children   []*DocNode
	Text       string
	Start      int // offset of the opening tag
	End        int // offset of the closing tag, -1 while unclosed
}

func (n *DocNode) String() string {
	return fmt.Sprintf("%s%s", n.Kind.opener(), n.Tag)
}

// Contains reports whether offset lies between the node's opener and closer.
func (n *DocNode) Contains(offset int) bool {
	return offset >= n.Start && (n.End < 0 || offset <= n.End)
}

// Attr returns the first attribute named key.
func (n *DocNode) Attr(key string) (Attribute, bool) {
	for _, a := range n.Attributes {
		if a.Key == key {
			return a, true
		}
	}
	return Attribute{}, false
}

// AttrAll returns every attribute named key in declaration order.
func (n *DocNode) AttrAll(key string) []Attribute {
	var out []Attribute
	for _, a := range n.Attributes {
		if a.Key == key {
			out = append(out, a)
		}
	}
	return out
}

// ChildrenNamed returns the direct children with the given tag and kind.
func (n *DocNode) ChildrenNamed(tag string, kind NodeKind) []*DocNode {
	var out []*DocNode
	for _, c := range n.Children {
		if c.Tag == tag && c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// Forest is the set of root-level nodes of one document together with the
// structural diagnostics found while building it.
type Forest struct {
	Roots       []*DocNode
	Diagnostics []diag.Diagnostic
}

// Walk visits every node in pre-order until fn returns false.
func (f *Forest) Walk(fn func(*DocNode) bool) {
	stack := make([]*DocNode, 0, len(f.Roots))
	for i := len(f.Roots) - 1; i >= 0; i-- {
		stack = append(stack, f.Roots[i])
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(n) {
			return
		}
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
	}
}

// Find returns the first block node tagged name, or nil.
func (f *Forest) Find(name string) *DocNode {
	var found *DocNode
	f.Walk(func(n *DocNode) bool {
		if n.Kind == Block && n.Tag == name {
			found = n
			return false
		}
		return true
	})
	return found
}

// DiagnosticsIn returns the diagnostics located inside n.
func (f *Forest) DiagnosticsIn(n *DocNode) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, d := range f.Diagnostics {
		if n.Contains(d.Offset) {
			out = append(out, d)
		}
	}
	return out
}

// Outline re-serializes the tag structure: one entry per opener and closer,
// in document order.
func (f *Forest) Outline() []string {
	type item struct {
		node  *DocNode
		close bool
	}
	var out []string
	stack := make([]item, 0, len(f.Roots))
	for i := len(f.Roots) - 1; i >= 0; i-- {
		stack = append(stack, item{node: f.Roots[i]})
	}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if it.close {
			out = append(out, it.node.Kind.closer())
			continue
		}
		out = append(out, it.node.String())
		if it.node.End >= 0 {
			stack = append(stack, item{node: it.node, close: true})
		}
		for i := len(it.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, item{node: it.node.Children[i]})
		}
	}
	return out
}

// Layer 2: the extracted model

type ParamDoc struct {
	ExternalLabel string // empty unless written as @^label name Type
	InternalName  string
	Type          string
	Description   string
	Offset        int
}

type FunctionDoc struct {
	FunctionName      string
	Summary           string
	Description       string
	Params            []ParamDoc
	ReturnType        string
	ReturnDescription string

	Offset       int // @{ of the function block
	ParamsOffset int // @[params, or Offset when absent
	ReturnOffset int // @return, or Offset when absent
}
