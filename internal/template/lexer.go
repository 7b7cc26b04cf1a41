package template

import (
	"strings"
	"unicode/utf8"
)

// TokenType identifies the type of token.
type TokenType int

// TokenType constants for template token types.
const (
	TokenText    TokenType = iota // Literal text (SQL)
	TokenExpr                     // Expression content (between {{ and }})
	TokenComment                  // Comment content (between {# and #})
	TokenStmt                     // Directive content (between {% %} or {* *})
	TokenEOF                      // End of input
)

func (t TokenType) String() string {
	switch t {
	case TokenText:
		return "TEXT"
	case TokenExpr:
		return "EXPR"
	case TokenComment:
		return "COMMENT"
	case TokenStmt:
		return "STMT"
	case TokenEOF:
		return "EOF"
	default:
		return "UNKNOWN"
	}
}

// Token represents a lexical token.
type Token struct {
	Type  TokenType
	Value string
	Pos   Position
}

// delimiters maps each opening delimiter to its closing delimiter and token type.
var delimiters = []struct {
	open, close string
	typ         TokenType
}{
	{"{{", "}}", TokenExpr},
	{"{#", "#}", TokenComment},
	{"{%", "%}", TokenStmt},
	{"{*", "*}", TokenStmt},
}

// Lexer tokenizes a template string.
type Lexer struct {
	input    string
	file     string
	pos      int // current position in input
	line     int // current line number (1-based)
	col      int // current column number (1-based)
	lastLine int // line at start of current token
	lastCol  int // column at start of current token
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input, file string) *Lexer {
	return &Lexer{
		input: input,
		file:  file,
		line:  1,
		col:   1,
	}
}

// Tokenize converts the input into a slice of tokens.
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token

	for {
		tok, err := l.nextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			break
		}
	}

	return tokens, nil
}

// nextToken returns the next token from the input.
func (l *Lexer) nextToken() (Token, error) {
	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF, Pos: l.position()}, nil
	}

	for _, d := range delimiters {
		if l.matchString(d.open) {
			if d.typ == TokenExpr {
				return l.scanExpression()
			}
			return l.scanDelimited(d.open, d.close, d.typ)
		}
	}

	return l.scanText()
}

// atDelimiter reports whether any opening delimiter starts at the current position.
func (l *Lexer) atDelimiter() bool {
	for _, d := range delimiters {
		if l.matchString(d.open) {
			return true
		}
	}
	return false
}

// scanText scans literal text until a delimiter or EOF.
func (l *Lexer) scanText() (Token, error) {
	l.markStart()
	start := l.pos

	for l.pos < len(l.input) && !l.atDelimiter() {
		l.advance()
	}

	if l.pos == start {
		return Token{}, lexError(l.position(), "unexpected state in lexer")
	}

	return Token{
		Type:  TokenText,
		Value: l.input[start:l.pos],
		Pos:   l.startPosition(),
	}, nil
}

// scanExpression scans a {{ expr }} expression.
func (l *Lexer) scanExpression() (Token, error) {
	l.markStart()

	// Skip {{
	l.pos += 2
	l.col += 2

	exprStart := l.pos
	depth := 0 // Track nested braces so dict literals don't end the expression

	for l.pos < len(l.input) {
		if l.matchString("}}") && depth == 0 {
			expr := strings.TrimSpace(l.input[exprStart:l.pos])

			l.pos += 2
			l.col += 2

			if expr == "" {
				return Token{}, lexError(l.startPosition(), "empty expression")
			}
			return Token{
				Type:  TokenExpr,
				Value: expr,
				Pos:   l.startPosition(),
			}, nil
		}

		r := l.peek()
		if r == '{' {
			depth++
		} else if r == '}' && depth > 0 {
			depth--
		}

		l.advance()
	}

	return Token{}, lexError(l.startPosition(), "unclosed expression: missing '}}'")
}

// scanDelimited scans a comment or directive up to its closing delimiter.
func (l *Lexer) scanDelimited(open, closing string, typ TokenType) (Token, error) {
	l.markStart()

	l.pos += len(open)
	l.col += len(open)

	start := l.pos
	for l.pos < len(l.input) {
		if l.matchString(closing) {
			body := strings.TrimSpace(l.input[start:l.pos])

			l.pos += len(closing)
			l.col += len(closing)

			return Token{
				Type:  typ,
				Value: body,
				Pos:   l.startPosition(),
			}, nil
		}
		l.advance()
	}

	return Token{}, lexError(l.startPosition(), "unclosed '"+open+"': missing '"+closing+"'")
}

// peek returns the current rune without advancing.
func (l *Lexer) peek() rune {
	if l.pos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	return r
}

// advance moves to the next rune, updating position tracking.
func (l *Lexer) advance() {
	if l.pos >= len(l.input) {
		return
	}

	r, size := utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += size

	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
}

// matchString checks if the input at current position matches s.
func (l *Lexer) matchString(s string) bool {
	return strings.HasPrefix(l.input[l.pos:], s)
}

// markStart records the start position for the current token.
func (l *Lexer) markStart() {
	l.lastLine = l.line
	l.lastCol = l.col
}

// position returns the current position.
func (l *Lexer) position() Position {
	return Position{File: l.file, Line: l.line, Column: l.col}
}

// startPosition returns the position where the current token started.
func (l *Lexer) startPosition() Position {
	return Position{File: l.file, Line: l.lastLine, Column: l.lastCol}
}
