package grammar

import (
	"strings"
	"unicode"

	"github.com/dsnet/bitform"
)

// cursor is a rune-level scanner over schema source text, used instead of
// the token lexer where the grammar needs to reconstruct contiguous
// substrings (a dtype spec, an embedded expression) to hand off to
// another parser, rather than a token-by-token grammar.
type cursor struct {
	src []rune
	pos int
}

func newCursor(s string) *cursor { return &cursor{src: []rune(s)} }

func (c *cursor) eof() bool {
	c.skipSpace()
	return c.pos >= len(c.src)
}

func (c *cursor) skipSpace() {
	for c.pos < len(c.src) && unicode.IsSpace(c.src[c.pos]) {
		c.pos++
	}
}

func (c *cursor) hasPrefix(s string) bool {
	c.skipSpace()
	return c.pos+len(s) <= len(c.src) && string(c.src[c.pos:c.pos+len(s)]) == s
}

// hasPrefixWord reports whether the next token is the identifier word w,
// not merely a prefix of a longer identifier.
func (c *cursor) hasPrefixWord(w string) bool {
	c.skipSpace()
	if !c.hasPrefix(w) {
		return false
	}
	end := c.pos + len(w)
	return end >= len(c.src) || !isIdentRune(c.src[end])
}

func isIdentRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func (c *cursor) consumePrefix(s string) bool {
	if c.hasPrefix(s) {
		c.pos += len(s)
		return true
	}
	return false
}

func (c *cursor) consumeWord(w string) bool {
	if c.hasPrefixWord(w) {
		c.pos += len(w)
		return true
	}
	return false
}

func (c *cursor) tryIdent() (string, bool) {
	c.skipSpace()
	start := c.pos
	for c.pos < len(c.src) && isIdentRune(c.src[c.pos]) {
		c.pos++
	}
	if c.pos == start {
		return "", false
	}
	return string(c.src[start:c.pos]), true
}

// readBalancedUntil reads runes up to (not including) the first rune in
// stops that occurs at bracket depth zero, tracking (), [], {} nesting so
// that a dtype or expression containing its own delimiters is read whole.
func (c *cursor) readBalancedUntil(stops string) string {
	c.skipSpace()
	start := c.pos
	depth := 0
	for c.pos < len(c.src) {
		r := c.src[c.pos]
		switch r {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		}
		if depth <= 0 && strings.ContainsRune(stops, r) {
			return strings.TrimSpace(string(c.src[start:c.pos]))
		}
		c.pos++
	}
	return strings.TrimSpace(string(c.src[start:c.pos]))
}

func (c *cursor) expect(s string) error {
	if !c.consumePrefix(s) {
		return bitform.NewError(bitform.BadSyntax, "expected '"+s+"' in schema source")
	}
	return nil
}
