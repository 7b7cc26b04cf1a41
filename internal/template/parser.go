package template

// Parse tokenizes and parses input into a Template.
// Comments are dropped. Directives are rejected: templates only substitute.
func Parse(input, file string) (*Template, error) {
	tokens, err := NewLexer(input, file).Tokenize()
	if err != nil {
		return nil, err
	}

	tmpl := &Template{File: file}
	for _, tok := range tokens {
		switch tok.Type {
		case TokenText:
			tmpl.Nodes = append(tmpl.Nodes, &TextNode{nodeBase: nodeBase{pos: tok.Pos}, Text: tok.Value})
		case TokenExpr:
			tmpl.Nodes = append(tmpl.Nodes, &ExprNode{nodeBase: nodeBase{pos: tok.Pos}, Expr: tok.Value})
		case TokenComment, TokenEOF:
		case TokenStmt:
			return nil, parseErrorf(tok.Pos, "control-flow directive %q is not supported; templates only substitute {{ expressions }}", tok.Value)
		}
	}
	return tmpl, nil
}
