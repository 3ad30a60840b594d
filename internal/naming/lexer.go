package naming

import "fmt"

// tokenType identifies an object-builder token.
type tokenType int

const (
	tokenEOF tokenType = iota
	tokenIllegal
	tokenIdent
	tokenString
	tokenLParen
	tokenRParen
	tokenLBracket
	tokenRBracket
	tokenComma
	tokenAssign
	tokenDot
)

func (t tokenType) String() string {
	switch t {
	case tokenEOF:
		return "end of input"
	case tokenIdent:
		return "identifier"
	case tokenString:
		return "string"
	case tokenLParen:
		return "'('"
	case tokenRParen:
		return "')'"
	case tokenLBracket:
		return "'['"
	case tokenRBracket:
		return "']'"
	case tokenComma:
		return "','"
	case tokenAssign:
		return "'='"
	case tokenDot:
		return "'.'"
	default:
		return "illegal token"
	}
}

type token struct {
	typ    tokenType
	lit    string
	offset int
}

func (t token) String() string {
	switch t.typ {
	case tokenIdent, tokenIllegal:
		return fmt.Sprintf("%s %q", t.typ, t.lit)
	case tokenString:
		return fmt.Sprintf("string '%s'", t.lit)
	default:
		return t.typ.String()
	}
}

var punct = map[byte]tokenType{
	'(': tokenLParen, ')': tokenRParen,
	'[': tokenLBracket, ']': tokenRBracket,
	',': tokenComma, '=': tokenAssign, '.': tokenDot,
}

// lexer tokenizes object-builder expressions. Only identifiers, quoted strings
// and punctuation are recognized; everything else is illegal.
type lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
}

func newLexer(input string) *lexer {
	l := &lexer{input: input}
	l.readChar()
	return l
}

func (l *lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
}

func (l *lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

func (l *lexer) nextToken() token {
	l.skipWhitespace()
	start := l.pos
	if l.pos >= len(l.input) {
		return token{typ: tokenEOF, offset: start}
	}

	if typ, ok := punct[l.ch]; ok {
		l.readChar()
		return token{typ: typ, lit: string(l.input[start]), offset: start}
	}

	switch {
	case l.ch == '\'' || l.ch == '"':
		return l.readString()
	case isIdentStart(l.ch):
		for isIdentChar(l.ch) {
			l.readChar()
		}
		return token{typ: tokenIdent, lit: l.input[start:l.pos], offset: start}
	}

	l.readChar()
	return token{typ: tokenIllegal, lit: l.input[start:l.pos], offset: start}
}

func (l *lexer) readString() token {
	quote := l.ch
	start := l.pos
	l.readChar()
	for l.ch != quote {
		if l.pos >= len(l.input) || l.ch == '\n' {
			return token{typ: tokenIllegal, lit: errUnterminatedString, offset: start}
		}
		l.readChar()
	}
	lit := l.input[start+1 : l.pos]
	l.readChar()
	return token{typ: tokenString, lit: lit, offset: start}
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentChar(ch byte) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9')
}
