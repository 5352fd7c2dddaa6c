package expr

import (
	"fmt"
	"strings"
)

// Placeholder marks the cursor position in completion mode.
const Placeholder = "█"

type tokenType int

const (
	tokEOF tokenType = iota
	tokIdent
	tokNumber
	tokString
	tokPunct
)

type token struct {
	typ   tokenType
	value string
	start int
	end   int
}

// lexer scans markup into tokens. Offsets are absolute source offsets.
type lexer struct {
	input       string
	offset      int
	position    int
	placeholder bool
	tokens      []token
}

var puncts = []string{"..", "=>", "==", "!=", "<=", ">=", "(", ")", "[", "]", "{", "}", ",", ":", "|", ".", "=", "~", "?", "<", ">"}

func newLexer(input string, offset int, placeholder bool) *lexer {
	return &lexer{
		input:       input,
		offset:      offset,
		placeholder: placeholder,
		tokens:      make([]token, 0, 16),
	}
}

func (l *lexer) tokenize() ([]token, error) {
	for l.position < len(l.input) {
		c := l.input[l.position]
		switch {
		case isSpace(c):
			l.position++

		case c == '"' || c == '\'':
			if err := l.lexString(c); err != nil {
				return nil, err
			}

		case isDigit(c) || (c == '-' && l.position+1 < len(l.input) && isDigit(l.input[l.position+1])):
			l.lexNumber()

		case isIdentStart(c) || l.atPlaceholder():
			l.lexIdent()

		default:
			if !l.lexPunct() {
				return nil, &Error{Offset: l.offset + l.position, Message: fmt.Sprintf("unexpected character %q", c)}
			}
		}
	}
	l.addToken(tokEOF, "", l.position, l.position)
	return l.tokens, nil
}

func (l *lexer) addToken(typ tokenType, value string, start, end int) {
	l.tokens = append(l.tokens, token{typ: typ, value: value, start: l.offset + start, end: l.offset + end})
}

func (l *lexer) atPlaceholder() bool {
	return l.placeholder && strings.HasPrefix(l.input[l.position:], Placeholder)
}

func (l *lexer) lexString(quote byte) error {
	start := l.position
	l.position++
	for l.position < len(l.input) {
		c := l.input[l.position]
		if c == '\\' {
			l.position += 2
			continue
		}
		if c == quote {
			l.position++
			l.addToken(tokString, l.input[start:l.position], start, l.position)
			return nil
		}
		l.position++
	}
	return &Error{Offset: l.offset + start, Message: "unterminated string"}
}

func (l *lexer) lexNumber() {
	start := l.position
	if l.input[l.position] == '-' {
		l.position++
	}
	for l.position < len(l.input) && isDigit(l.input[l.position]) {
		l.position++
	}
	// a fraction needs a digit after the dot, so that `0..1` stays a range
	if l.position+1 < len(l.input) && l.input[l.position] == '.' && isDigit(l.input[l.position+1]) {
		l.position++
		for l.position < len(l.input) && isDigit(l.input[l.position]) {
			l.position++
		}
	}
	l.addToken(tokNumber, l.input[start:l.position], start, l.position)
}

func (l *lexer) lexIdent() {
	start := l.position
	for l.position < len(l.input) {
		if l.atPlaceholder() {
			l.position += len(Placeholder)
			continue
		}
		if !isIdentPart(l.input[l.position]) {
			break
		}
		l.position++
	}
	l.addToken(tokIdent, l.input[start:l.position], start, l.position)
}

func (l *lexer) lexPunct() bool {
	for _, p := range puncts {
		if strings.HasPrefix(l.input[l.position:], p) {
			l.addToken(tokPunct, p, l.position, l.position+len(p))
			l.position += len(p)
			return true
		}
	}
	return false
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
