package grammar

import (
	"math/big"
	"strconv"

	"github.com/dsnet/bitform"
	"github.com/dsnet/bitform/expr"
)

// ParseExpr parses one expression: integer/float/bool literals, name
// references (dotted/indexed paths), binary and unary operators, index
// expressions, and the conditional "a if c else b".
func ParseExpr(src string) (expr.Node, error) {
	p := &exprParser{lex: newLexer(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	n, err := p.parseConditional()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, bitform.NewError(bitform.BadSyntax, "unexpected trailing input in expression")
	}
	return n, nil
}

type exprParser struct {
	lex *lexer
	tok token
}

func (p *exprParser) advance() error {
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

func (p *exprParser) is(text string) bool {
	return (p.tok.kind == tokPunct || p.tok.kind == tokIdent) && p.tok.text == text
}

// parseConditional handles "then if cond else other", which binds looser
// than every binary/unary operator.
func (p *exprParser) parseConditional() (expr.Node, error) {
	then, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.is("if") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		cond, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if !p.is("else") {
			return nil, bitform.NewError(bitform.BadSyntax, "expected 'else' in conditional expression")
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		els, err := p.parseConditional()
		if err != nil {
			return nil, err
		}
		return expr.Conditional{Cond: cond, Then: then, Else: els}, nil
	}
	return then, nil
}

func (p *exprParser) parseOr() (expr.Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.is("||") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = expr.BinaryOp{Op: expr.OpOr, Left: left, Right: right}
	}
	return left, nil
}

func (p *exprParser) parseAnd() (expr.Node, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.is("&&") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = expr.BinaryOp{Op: expr.OpAnd, Left: left, Right: right}
	}
	return left, nil
}

var compOps = map[string]expr.BinOp{
	"==": expr.OpEq, "!=": expr.OpNe,
	"<": expr.OpLt, "<=": expr.OpLe,
	">": expr.OpGt, ">=": expr.OpGe,
}

func (p *exprParser) parseComparison() (expr.Node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := compOps[p.tok.text]
		if !ok || p.tok.kind != tokPunct {
			return left, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = expr.BinaryOp{Op: op, Left: left, Right: right}
	}
}

func (p *exprParser) parseAdditive() (expr.Node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokPunct && (p.tok.text == "+" || p.tok.text == "-") {
		op := expr.OpAdd
		if p.tok.text == "-" {
			op = expr.OpSub
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = expr.BinaryOp{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *exprParser) parseMultiplicative() (expr.Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokPunct && (p.tok.text == "*" || p.tok.text == "/" || p.tok.text == "%" || p.tok.text == "//") {
		var op expr.BinOp
		switch p.tok.text {
		case "*":
			op = expr.OpMul
		case "/", "//":
			op = expr.OpDiv
		case "%":
			op = expr.OpMod
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = expr.BinaryOp{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *exprParser) parseUnary() (expr.Node, error) {
	if p.tok.kind == tokPunct && (p.tok.text == "-" || p.tok.text == "!" || p.tok.text == "~") {
		op := expr.OpNeg
		if p.tok.text != "-" {
			op = expr.OpNot
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return expr.UnaryOp{Op: op, Operand: operand}, nil
	}
	return p.parsePostfix()
}

func (p *exprParser) parsePostfix() (expr.Node, error) {
	n, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.is("[") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		sub, err := p.parseConditional()
		if err != nil {
			return nil, err
		}
		if !p.is("]") {
			return nil, bitform.NewError(bitform.BadSyntax, "expected ']' in index expression")
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		n = expr.Index{Base: n, Sub: sub}
	}
	return n, nil
}

func (p *exprParser) parsePrimary() (expr.Node, error) {
	switch {
	case p.tok.kind == tokInt:
		v, ok := new(big.Int).SetString(p.tok.text, 10)
		if !ok {
			return nil, bitform.NewError(bitform.BadSyntax, "invalid integer literal")
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return expr.Literal{Value: expr.IntValue(v)}, nil
	case p.tok.kind == tokFloat:
		f, err := strconv.ParseFloat(p.tok.text, 64)
		if err != nil {
			return nil, bitform.NewError(bitform.BadSyntax, "invalid float literal")
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return expr.Literal{Value: expr.FloatValue(f)}, nil
	case p.is("("):
		if err := p.advance(); err != nil {
			return nil, err
		}
		n, err := p.parseConditional()
		if err != nil {
			return nil, err
		}
		if !p.is(")") {
			return nil, bitform.NewError(bitform.BadSyntax, "expected ')'")
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return n, nil
	case p.tok.kind == tokIdent:
		switch p.tok.text {
		case "true", "false":
			v := p.tok.text == "true"
			if err := p.advance(); err != nil {
				return nil, err
			}
			return expr.Literal{Value: expr.BoolValue(v)}, nil
		}
		return p.parseNamePath()
	}
	return nil, bitform.NewError(bitform.BadSyntax, "unexpected token in expression")
}

// parseNamePath consumes a dotted/indexed name path as a single NameRef
// token text (e.g. "header.size", "lengths[0]"), so the expr package's
// own path resolver handles the indexing semantics.
func (p *exprParser) parseNamePath() (expr.Node, error) {
	if p.tok.kind != tokIdent {
		return nil, bitform.NewError(bitform.BadSyntax, "expected identifier")
	}
	path := p.tok.text
	if err := p.advance(); err != nil {
		return nil, err
	}
	for {
		if p.is(".") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.tok.kind != tokIdent {
				return nil, bitform.NewError(bitform.BadSyntax, "expected identifier after '.'")
			}
			path += "." + p.tok.text
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		if p.is("[") && p.tok.kind == tokPunct {
			// Only fold a literal-integer index directly into the path;
			// a computed index is left to the postfix Index node.
			save := *p.lex
			saveTok := p.tok
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.tok.kind == tokInt {
				idx := p.tok.text
				if err := p.advance(); err != nil {
					return nil, err
				}
				if p.is("]") {
					path += "[" + idx + "]"
					if err := p.advance(); err != nil {
						return nil, err
					}
					continue
				}
			}
			*p.lex = save
			p.tok = saveTok
		}
		break
	}
	return expr.NameRef{Path: path}, nil
}
