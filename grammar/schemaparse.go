package grammar

import (
	"strings"

	"github.com/dsnet/bitform"
	"github.com/dsnet/bitform/dtype"
	"github.com/dsnet/bitform/schema"
)

// ParseSchema parses one field_type per the schema grammar into the node
// tree defined by package schema.
func ParseSchema(src string) (schema.Node, error) {
	c := newCursor(src)
	n, err := c.parseFieldType()
	if err != nil {
		return nil, err
	}
	if !c.eof() {
		return nil, bitform.NewError(bitform.BadSyntax, "unexpected trailing input in schema source")
	}
	return n, nil
}

func (c *cursor) parseFieldType() (schema.Node, error) {
	name := ""
	save := c.pos
	if ident, ok := c.tryIdent(); ok {
		if c.consumePrefix(":") && !isSchemaKeyword(ident) {
			name = ident
		} else {
			c.pos = save
		}
	}

	switch {
	case c.hasPrefix("("):
		return c.parseFormat(name)
	case c.hasPrefixWord("if"):
		return c.parseIf(name)
	case c.hasPrefixWord("repeat"):
		return c.parseRepeat(name)
	case c.hasPrefixWord("let"):
		if name != "" {
			return nil, bitform.NewError(bitform.BadSyntax, "let does not take a name prefix")
		}
		return c.parseLet()
	case c.hasPrefixWord("pass"):
		c.consumeWord("pass")
		return schema.Pass{}, nil
	default:
		return c.parseField(name)
	}
}

func isSchemaKeyword(w string) bool {
	switch w {
	case "if", "else", "repeat", "let", "pass", "const":
		return true
	}
	return false
}

func (c *cursor) parseFormat(name string) (schema.Node, error) {
	if err := c.expect("("); err != nil {
		return nil, err
	}
	var children []schema.Node
	for {
		if c.hasPrefix(")") {
			break
		}
		child, err := c.parseFieldType()
		if err != nil {
			return nil, err
		}
		children = append(children, child)
		if c.consumePrefix(",") {
			continue
		}
		break
	}
	if err := c.expect(")"); err != nil {
		return nil, err
	}
	return schema.NewFormat(name, children...)
}

func (c *cursor) parseIf(name string) (schema.Node, error) {
	c.consumeWord("if")
	condText := c.readBalancedUntil(":")
	cond, err := ParseExpr(condText)
	if err != nil {
		return nil, err
	}
	if err := c.expect(":"); err != nil {
		return nil, err
	}
	then, err := c.parseFieldType()
	if err != nil {
		return nil, err
	}
	var els schema.Node
	if c.hasPrefixWord("else") {
		c.consumeWord("else")
		if err := c.expect(":"); err != nil {
			return nil, err
		}
		els, err = c.parseFieldType()
		if err != nil {
			return nil, err
		}
	}
	return schema.NewIf(name, cond, then, els), nil
}

func (c *cursor) parseRepeat(name string) (schema.Node, error) {
	c.consumeWord("repeat")
	countText := c.readBalancedUntil(":")
	count, err := ParseExpr(countText)
	if err != nil {
		return nil, err
	}
	if err := c.expect(":"); err != nil {
		return nil, err
	}
	body, err := c.parseFieldType()
	if err != nil {
		return nil, err
	}
	return schema.NewRepeat(name, count, body), nil
}

func (c *cursor) parseLet() (schema.Node, error) {
	c.consumeWord("let")
	name, ok := c.tryIdent()
	if !ok {
		return nil, bitform.NewError(bitform.BadSyntax, "expected name after 'let'")
	}
	if err := c.expect("="); err != nil {
		return nil, err
	}
	exprText := c.readBalancedUntil(",)")
	node, err := ParseExpr(exprText)
	if err != nil {
		return nil, err
	}
	return schema.NewLet(name, node), nil
}

func (c *cursor) parseField(name string) (schema.Node, error) {
	isConst := c.consumeWord("const")
	dtypeText := c.readBalancedUntil("=,)")
	d, sizeExpr, err := ParseFieldDtype(strings.TrimSpace(dtypeText))
	if err != nil {
		return nil, err
	}

	if !c.consumePrefix("=") {
		if isConst {
			return nil, bitform.NewError(bitform.BadSyntax, "const field requires a declared value")
		}
		return schema.NewField(name, d, sizeExpr), nil
	}
	valueText := c.readBalancedUntil(",)")
	if d.Shape() != dtype.ShapeSingle {
		return nil, bitform.NewError(bitform.BadSyntax, "inline const values are only supported for single-shaped dtypes")
	}
	if sizeExpr != nil {
		return nil, bitform.NewError(bitform.BadSyntax, "a const field's size must be concrete, not an expression")
	}
	val, err := parseLiteralValue(d, valueText)
	if err != nil {
		return nil, err
	}
	return schema.NewConstField(name, d, nil, val), nil
}
