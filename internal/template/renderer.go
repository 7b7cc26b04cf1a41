package template

import (
	"strings"

	starctx "github.com/leapstack-labs/leapdq/internal/starlark"
)

// Render evaluates every expression of tmpl against ctx and concatenates the
// result with the literal text.
func Render(tmpl *Template, ctx *starctx.ExecutionContext) (string, error) {
	var sb strings.Builder
	for _, n := range tmpl.Nodes {
		switch node := n.(type) {
		case *TextNode:
			sb.WriteString(node.Text)
		case *ExprNode:
			s, err := ctx.EvalExprString(node.Expr, tmpl.File, node.Pos().Line)
			if err != nil {
				return "", renderError(node.Pos(), "failed to evaluate expression", err)
			}
			sb.WriteString(s)
		}
	}
	return sb.String(), nil
}

// RenderString parses and renders input in one step.
func RenderString(input, file string, ctx *starctx.ExecutionContext) (string, error) {
	tmpl, err := Parse(input, file)
	if err != nil {
		return "", err
	}
	return Render(tmpl, ctx)
}
