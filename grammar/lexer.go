// Package grammar implements the textual front end: the bit-source
// string grammar, the dtype grammar, and a minimal recursive-descent
// parser from schema source text to the node tree defined by package
// schema. It also hosts the expression-language parser shared by
// size/count expressions and schema If/Repeat/Let clauses, since dtype
// literal parsing needs dtype-pack semantics and would otherwise create
// an import cycle between bitform and dtype.
package grammar

import (
	"strings"
	"unicode"

	"github.com/dsnet/bitform"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokInt
	tokFloat
	tokString
	tokPunct
)

type token struct {
	kind tokenKind
	text string
}

// lexer tokenizes expression and schema source text. It is hand-rolled as
// a small, purpose-built scanner rather than a generated parser, since the
// grammar is small and fixed.
type lexer struct {
	src []rune
	pos int
}

func newLexer(s string) *lexer { return &lexer{src: []rune(s)} }

func (l *lexer) peekRune() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) && unicode.IsSpace(l.src[l.pos]) {
		l.pos++
	}
}

const punctChars = "+-*/%<>=!&|~^(){}[],.:;"

func (l *lexer) next() (token, error) {
	l.skipSpace()
	if l.pos >= len(l.src) {
		return token{kind: tokEOF}, nil
	}
	r := l.src[l.pos]

	switch {
	case r == '"' || r == '\'':
		return l.lexString(r)
	case unicode.IsDigit(r):
		return l.lexNumber()
	case unicode.IsLetter(r) || r == '_':
		return l.lexIdent()
	case strings.ContainsRune(punctChars, r):
		return l.lexPunct()
	}
	return token{}, bitform.NewError(bitform.BadSyntax, "unexpected character in expression")
}

func (l *lexer) lexString(quote rune) (token, error) {
	l.pos++
	start := l.pos
	for l.pos < len(l.src) && l.src[l.pos] != quote {
		l.pos++
	}
	if l.pos >= len(l.src) {
		return token{}, bitform.NewError(bitform.BadSyntax, "unterminated string literal")
	}
	s := string(l.src[start:l.pos])
	l.pos++
	return token{kind: tokString, text: s}, nil
}

func (l *lexer) lexNumber() (token, error) {
	start := l.pos
	isFloat := false
	for l.pos < len(l.src) && (unicode.IsDigit(l.src[l.pos]) || l.src[l.pos] == '.') {
		if l.src[l.pos] == '.' {
			isFloat = true
		}
		l.pos++
	}
	text := string(l.src[start:l.pos])
	if isFloat {
		return token{kind: tokFloat, text: text}, nil
	}
	return token{kind: tokInt, text: text}, nil
}

func (l *lexer) lexIdent() (token, error) {
	start := l.pos
	for l.pos < len(l.src) && (unicode.IsLetter(l.src[l.pos]) || unicode.IsDigit(l.src[l.pos]) || l.src[l.pos] == '_') {
		l.pos++
	}
	return token{kind: tokIdent, text: string(l.src[start:l.pos])}, nil
}

var twoCharPuncts = []string{"==", "!=", "<=", ">=", "&&", "||", "//", "<<", ">>"}

func (l *lexer) lexPunct() (token, error) {
	if l.pos+1 < len(l.src) {
		two := string(l.src[l.pos : l.pos+2])
		for _, p := range twoCharPuncts {
			if two == p {
				l.pos += 2
				return token{kind: tokPunct, text: two}, nil
			}
		}
	}
	r := l.src[l.pos]
	l.pos++
	return token{kind: tokPunct, text: string(r)}, nil
}
