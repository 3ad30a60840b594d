// Package template scans where-filter templates such as
// "{{ Dimension('listing__country') }} = 'US'" into literal text and
// embedded item expressions. Control-flow statements are rejected.
package template

// Position tracks source location for error reporting.
type Position struct {
	File   string
	Line   int
	Column int
}

// Node is the interface for all template AST nodes.
type Node interface {
	Pos() Position
	node() // marker method to restrict implementation
}

// nodeBase provides common Position handling for all nodes.
type nodeBase struct {
	pos Position
}

func (n *nodeBase) Pos() Position { return n.pos }
func (n *nodeBase) node()         {}

// TextNode represents literal predicate text (passed through unchanged).
type TextNode struct {
	nodeBase
	Text string
}

// ExprNode represents a {{ expr }} expression.
// The Expr field contains the item expression source (without delimiters).
type ExprNode struct {
	nodeBase
	Expr string
}

// Template is a parsed where filter.
type Template struct {
	Source string
	Nodes  []Node
}

// Exprs returns the embedded expressions in source order.
func (t *Template) Exprs() []*ExprNode {
	var exprs []*ExprNode
	for _, n := range t.Nodes {
		if e, ok := n.(*ExprNode); ok {
			exprs = append(exprs, e)
		}
	}
	return exprs
}
