package template

import "strings"

// Parse tokenizes a where filter and builds its node list.
// Statements ({% ... %}) and empty expressions are parse errors.
func Parse(input, file string) (*Template, error) {
	tokens, err := NewLexer(input, file).Tokenize()
	if err != nil {
		return nil, err
	}

	tmpl := &Template{Source: input}
	for _, tok := range tokens {
		switch tok.Type {
		case TokenText:
			tmpl.Nodes = append(tmpl.Nodes, &TextNode{nodeBase: nodeBase{pos: tok.Pos}, Text: tok.Value})
		case TokenExpr:
			if tok.Value == "" {
				return nil, NewParseError(tok.Pos, "empty expression")
			}
			tmpl.Nodes = append(tmpl.Nodes, &ExprNode{nodeBase: nodeBase{pos: tok.Pos}, Expr: tok.Value})
		case TokenStmt:
			return nil, NewParseErrorf(tok.Pos, "statements are not supported in where filters: %q", tok.Value)
		case TokenEOF:
			return tmpl, nil
		default:
			return nil, NewParseErrorf(tok.Pos, "unexpected token %s", tok.Type)
		}
	}
	return tmpl, nil
}

// ExprFunc renders one embedded expression.
type ExprFunc func(expr *ExprNode) (string, error)

// Render substitutes every expression with the output of fn.
func (t *Template) Render(fn ExprFunc) (string, error) {
	var sb strings.Builder
	for _, n := range t.Nodes {
		switch n := n.(type) {
		case *TextNode:
			sb.WriteString(n.Text)
		case *ExprNode:
			out, err := fn(n)
			if err != nil {
				return "", WrapRenderError(n.Pos(), "failed to render expression", err)
			}
			sb.WriteString(out)
		}
	}
	return sb.String(), nil
}
