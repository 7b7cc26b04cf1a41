// Package template renders rule-set SQL templates. It supports {{ expr }}
// substitution with Starlark expressions and {# comment #} blocks. Control-flow
// directives ({% %} and {* *}) are recognized so they can be rejected with a
// positioned error instead of leaking into the SQL.
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

// TextNode represents literal SQL text (passed through unchanged).
type TextNode struct {
	nodeBase
	Text string
}

// ExprNode represents a {{ expr }} expression.
// The Expr field contains the Starlark expression source (without delimiters).
type ExprNode struct {
	nodeBase
	Expr string
}

// Template represents a complete parsed template.
type Template struct {
	Nodes []Node
	File  string // Source name, usually the query route
}

// Expressions returns the expression sources in order of appearance.
func (t *Template) Expressions() []string {
	var exprs []string
	for _, n := range t.Nodes {
		if e, ok := n.(*ExprNode); ok {
			exprs = append(exprs, e.Expr)
		}
	}
	return exprs
}
