package grammar

import (
	"strconv"
	"strings"

	"github.com/dsnet/bitform"
	"github.com/dsnet/bitform/dtype"
)

// ParseBits parses the bit-source string grammar: comma-separated binary/
// octal/hex literals and typed literals, concatenated in order into a
// single Bits.
func ParseBits(src string) (bitform.Bits, error) {
	var parts []bitform.Bits
	for _, tok := range splitTopLevelCommas(src) {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		b, err := parseOneLiteral(tok)
		if err != nil {
			return bitform.Bits{}, err
		}
		parts = append(parts, b)
	}
	return bitform.Concat(parts...)
}

// splitTopLevelCommas splits on commas that are not nested inside
// parentheses or brackets (so a tuple/array-typed literal's own internal
// commas are preserved).
func splitTopLevelCommas(s string) []string {
	var out []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, s[start:])
	return out
}

func parseOneLiteral(tok string) (bitform.Bits, error) {
	switch {
	case strings.HasPrefix(tok, "0b"):
		return parseBinLiteral(tok[2:])
	case strings.HasPrefix(tok, "0o"):
		return parseOctLiteral(tok[2:])
	case strings.HasPrefix(tok, "0x"):
		return parseHexLiteral(tok[2:])
	}
	return parseTypedLiteral(tok)
}

func parseBinLiteral(digits string) (bitform.Bits, error) {
	vals := make([]bool, len(digits))
	for i, c := range digits {
		switch c {
		case '0':
			vals[i] = false
		case '1':
			vals[i] = true
		default:
			return bitform.Bits{}, bitform.NewError(bitform.BadSyntax, "invalid binary literal")
		}
	}
	return bitform.NewBitsFromBools(vals), nil
}

func parseOctLiteral(digits string) (bitform.Bits, error) {
	var vals []bool
	for _, c := range digits {
		d := strings.IndexRune("01234567", c)
		if d < 0 {
			return bitform.Bits{}, bitform.NewError(bitform.BadSyntax, "invalid octal literal")
		}
		for i := 2; i >= 0; i-- {
			vals = append(vals, (d>>uint(i))&1 == 1)
		}
	}
	return bitform.NewBitsFromBools(vals), nil
}

func parseHexLiteral(digits string) (bitform.Bits, error) {
	var vals []bool
	for _, c := range strings.ToLower(digits) {
		d := strings.IndexRune("0123456789abcdef", c)
		if d < 0 {
			return bitform.Bits{}, bitform.NewError(bitform.BadSyntax, "invalid hex literal")
		}
		for i := 3; i >= 0; i-- {
			vals = append(vals, (d>>uint(i))&1 == 1)
		}
	}
	return bitform.NewBitsFromBools(vals), nil
}

// parseTypedLiteral parses "<kind>[<endian>]<size>?[= value]", e.g.
// "u12=160", "f_le64=3.14", "bool=1", "bytes=abc", "hex=beef".
func parseTypedLiteral(tok string) (bitform.Bits, error) {
	name, valueText, hasValue := strings.Cut(tok, "=")
	name = strings.TrimSpace(name)
	valueText = strings.TrimSpace(valueText)

	d, err := ParseDtype(name)
	if err != nil {
		return bitform.Bits{}, err
	}
	if !hasValue {
		return bitform.Bits{}, bitform.NewError(bitform.BadSyntax, "typed literal requires a value")
	}
	val, err := parseLiteralValue(d, valueText)
	if err != nil {
		return bitform.Bits{}, err
	}
	return d.Pack(val)
}

func parseLiteralValue(d dtype.Dtype, text string) (dtype.Value, error) {
	switch d.Kind() {
	case dtype.UINT, dtype.INT:
		n, err := dtype.ParseUintLiteral(text)
		if err != nil {
			neg := strings.HasPrefix(text, "-")
			if neg {
				n, err = dtype.ParseUintLiteral(text[1:])
				if err == nil {
					n.Neg(n)
				}
			}
			if err != nil {
				return dtype.Value{}, bitform.NewError(bitform.BadSyntax, "invalid integer literal: "+text)
			}
		}
		return dtype.Value{Int: n}, nil
	case dtype.FLOAT:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return dtype.Value{}, bitform.NewError(bitform.BadSyntax, "invalid float literal: "+text)
		}
		return dtype.FloatValue(f), nil
	case dtype.BOOL:
		return dtype.BoolValue(text == "1" || text == "true"), nil
	case dtype.BYTES:
		return dtype.BytesValue([]byte(text)), nil
	case dtype.HEX, dtype.BIN, dtype.OCT:
		return dtype.StrValue(text), nil
	}
	return dtype.Value{}, bitform.NewError(bitform.BadDtype, "kind does not support an inline literal value")
}
