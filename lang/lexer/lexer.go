// Package lexer turns Asterisk source bytes into a stream of tokens for
// the compiler to consume. It is adapted from the teacher's
// lang/scanner package, simplified from Unicode-aware file/line-set
// scanning to a single in-memory byte stream, since Asterisk sources
// are always scanned whole and never span multiple files.
package lexer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mna/asterisk/lang/token"
)

// Lexer tokenizes a single Asterisk source. It is total over any byte
// stream: Next always returns a well-formed token, an ILLEGAL token
// carrying a diagnostic message, or EOF once input is exhausted. A
// Lexer is single-pass, stateful and not safe for concurrent use.
type Lexer struct {
	src  []byte
	pos  int // offset of the next unread byte
	line int

	start     int // offset of the token currently being scanned
	startLine int
}

// New returns a Lexer ready to tokenize src.
func New(src []byte) *Lexer {
	return &Lexer{src: src, pos: 0, line: 1}
}

func (l *Lexer) atEnd() bool { return l.pos >= len(l.src) }

func (l *Lexer) peek() byte {
	if l.atEnd() {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekNext() byte {
	if l.pos+1 >= len(l.src) {
		return 0
	}
	return l.src[l.pos+1]
}

func (l *Lexer) advance() byte {
	b := l.src[l.pos]
	l.pos++
	if b == '\n' {
		l.line++
	}
	return b
}

func (l *Lexer) match(b byte) bool {
	if l.atEnd() || l.src[l.pos] != b {
		return false
	}
	l.pos++
	return true
}

func (l *Lexer) skipWhitespaceAndComments() {
	for !l.atEnd() {
		switch c := l.peek(); c {
		case ' ', '\t', '\r', '\n':
			l.advance()
		case '/':
			switch l.peekNext() {
			case '/':
				for !l.atEnd() && l.peek() != '\n' {
					l.advance()
				}
			case '*':
				l.advance() // '/'
				l.advance() // '*'
				for !l.atEnd() {
					if l.peek() == '*' && l.peekNext() == '/' {
						l.advance()
						l.advance()
						break
					}
					l.advance()
				}
			default:
				return
			}
		default:
			return
		}
	}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isAlpha(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
func isAlphaNumeric(b byte) bool { return isAlpha(b) || isDigit(b) }

// Next scans and returns the next token.
func (l *Lexer) Next() (token.Token, token.Value) {
	l.skipWhitespaceAndComments()

	l.start = l.pos
	l.startLine = l.line
	if l.atEnd() {
		return token.EOF, l.val("")
	}

	c := l.advance()
	switch {
	case isAlpha(c):
		return l.identifier()
	case isDigit(c):
		return l.number()
	}

	switch c {
	case '(':
		return token.LPAREN, l.val("(")
	case ')':
		return token.RPAREN, l.val(")")
	case '{':
		return token.LBRACE, l.val("{")
	case '}':
		return token.RBRACE, l.val("}")
	case ',':
		return token.COMMA, l.val(",")
	case '.':
		return token.DOT, l.val(".")
	case ':':
		return token.COLON, l.val(":")
	case ';':
		return token.SEMI, l.val(";")
	case '+':
		return token.PLUS, l.val("+")
	case '*':
		return token.STAR, l.val("*")
	case '/':
		return token.SLASH, l.val("/")
	case '&':
		if l.match('&') {
			return token.AMP_AMP, l.val("&&")
		}
		return token.AMP, l.val("&")
	case '!':
		if l.match('=') {
			return token.BANG_EQ, l.val("!=")
		}
		return token.BANG, l.val("!")
	case '=':
		if l.match('=') {
			return token.EQ_EQ, l.val("==")
		}
		if l.match('>') {
			return token.ARROW, l.val("=>")
		}
		return token.EQ, l.val("=")
	case '<':
		if l.match('=') {
			return token.LT_EQ, l.val("<=")
		}
		return token.LT, l.val("<")
	case '>':
		if l.match('=') {
			return token.GT_EQ, l.val(">=")
		}
		return token.GT, l.val(">")
	case '-':
		if l.match('>') {
			return token.MINUS_GT, l.val("->")
		}
		return token.MINUS, l.val("-")
	case '|':
		if l.match('|') {
			return token.PIPE_PIPE, l.val("||")
		}
		return l.errorf("unexpected character '|'")
	case '\'', '"':
		return l.string(c)
	}

	return l.errorf("unexpected character %q", c)
}

func (l *Lexer) val(raw string) token.Value {
	if raw == "" {
		raw = string(l.src[l.start:l.pos])
	}
	return token.Value{Raw: raw, Line: l.startLine}
}

func (l *Lexer) errorf(format string, args ...any) (token.Token, token.Value) {
	msg := fmt.Sprintf(format, args...)
	return token.ILLEGAL, token.Value{Raw: msg, Line: l.startLine}
}

func (l *Lexer) identifier() (token.Token, token.Value) {
	for !l.atEnd() && isAlphaNumeric(l.peek()) {
		l.advance()
	}
	lit := string(l.src[l.start:l.pos])
	return token.Lookup(lit), l.val(lit)
}

// number scans an Int or Float literal. A leading digit scans decimal
// digits; an interior '.' followed by a digit makes it a float literal,
// parsed with strconv.ParseFloat. Integer overflow is detected
// explicitly rather than silently wrapping.
func (l *Lexer) number() (token.Token, token.Value) {
	for !l.atEnd() && isDigit(l.peek()) {
		l.advance()
	}

	isFloat := false
	if l.peek() == '.' && isDigit(l.peekNext()) {
		isFloat = true
		l.advance() // consume '.'
		for !l.atEnd() && isDigit(l.peek()) {
			l.advance()
		}
	}

	lit := string(l.src[l.start:l.pos])
	if isFloat {
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return l.errorf("invalid float literal %q: %v", lit, err)
		}
		v := l.val(lit)
		v.Float = f
		return token.FLOAT, v
	}

	n, err := strconv.ParseInt(lit, 10, 64)
	if err != nil {
		if strings.Contains(err.Error(), "value out of range") {
			return l.errorf("integer literal %q out of range", lit)
		}
		return l.errorf("invalid integer literal %q: %v", lit, err)
	}
	v := l.val(lit)
	v.Int = n
	return token.INT, v
}

// string scans a string literal delimited by quote (either ' or "). The
// raw bytes between the delimiters are stored verbatim; no escape
// sequence processing is performed (see DESIGN.md / spec.md §9).
func (l *Lexer) string(quote byte) (token.Token, token.Value) {
	contentStart := l.pos
	for !l.atEnd() && l.peek() != quote {
		l.advance()
	}
	if l.atEnd() {
		return l.errorf("unterminated string literal")
	}
	content := string(l.src[contentStart:l.pos])
	l.advance() // closing quote
	v := token.Value{Raw: content, Line: l.startLine}
	return token.STRING, v
}
