package grammar

import (
	"strconv"
	"strings"

	"github.com/dsnet/bitform"
	"github.com/dsnet/bitform/dtype"
	"github.com/dsnet/bitform/expr"
)

var kindPrefixes = []struct {
	prefix string
	kind   dtype.Kind
}{
	{"uint", dtype.UINT}, {"u", dtype.UINT},
	{"int", dtype.INT}, {"i", dtype.INT},
	{"float", dtype.FLOAT}, {"f", dtype.FLOAT},
	{"bool", dtype.BOOL},
	{"bytes", dtype.BYTES},
	{"hex", dtype.HEX},
	{"bin", dtype.BIN},
	{"oct", dtype.OCT},
	{"bits", dtype.BITS},
	{"pad", dtype.PAD},
}

var endianSuffixes = map[string]dtype.Endian{
	"_be": dtype.BE,
	"_le": dtype.LE,
	"_ne": dtype.NATIVE,
}

// ParseDtype parses the dtype grammar (single/array/tuple), where every
// size/count must be a literal non-negative integer. Use ParseFieldDtype
// when a "{...}" expression size is permitted.
func ParseDtype(s string) (dtype.Dtype, error) {
	d, sizeExpr, err := ParseFieldDtype(s)
	if err != nil {
		return dtype.Dtype{}, err
	}
	if sizeExpr != nil {
		return dtype.Dtype{}, bitform.NewError(bitform.BadSyntax, "dtype literal requires a concrete size, not an expression")
	}
	return d, nil
}

// ParseFieldDtype parses the dtype grammar, permitting a single top-level
// "{expr}" size or count in place of a literal integer; the returned Node
// is non-nil exactly when such an expression was present, in which case
// the returned Dtype's size/count is a placeholder to be resolved with
// Dtype.WithSize (a bit size for Single, an item count for Array) once the
// expression is evaluated.
func ParseFieldDtype(s string) (dtype.Dtype, expr.Node, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]"):
		return parseArrayDtype(s[1 : len(s)-1])
	case strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")"):
		d, err := parseTupleDtype(s[1 : len(s)-1])
		return d, nil, err
	default:
		return parseSingleDtype(s)
	}
}

func parseSingleDtype(s string) (dtype.Dtype, expr.Node, error) {
	var kind dtype.Kind
	var rest string
	matched := false
	for _, kp := range kindPrefixes {
		if strings.HasPrefix(s, kp.prefix) {
			kind, rest, matched = kp.kind, s[len(kp.prefix):], true
			break
		}
	}
	if !matched {
		return dtype.Dtype{}, nil, bitform.NewError(bitform.BadSyntax, "unknown dtype kind: "+s)
	}

	endian := dtype.NONE
	for suf, e := range endianSuffixes {
		if strings.HasPrefix(rest, suf) {
			endian, rest = e, rest[len(suf):]
			break
		}
	}

	if rest == "" {
		d, err := dtype.NewSingle(kind, endian, 0, true)
		return d, nil, err
	}
	if strings.HasPrefix(rest, "{") && strings.HasSuffix(rest, "}") {
		node, err := ParseExpr(rest[1 : len(rest)-1])
		if err != nil {
			return dtype.Dtype{}, nil, err
		}
		d, err := dtype.NewSingle(kind, endian, 0, true)
		return d, node, err
	}
	n, err := strconv.ParseUint(rest, 10, 64)
	if err != nil {
		return dtype.Dtype{}, nil, bitform.NewError(bitform.BadSyntax, "invalid dtype size: "+rest)
	}
	d, err := dtype.NewSingle(kind, endian, n, false)
	return d, nil, err
}

func parseArrayDtype(inner string) (dtype.Dtype, expr.Node, error) {
	itemText, countText, hasSemi := strings.Cut(inner, ";")
	item, err := ParseDtype(strings.TrimSpace(itemText))
	if err != nil {
		return dtype.Dtype{}, nil, err
	}
	countText = strings.TrimSpace(countText)
	if !hasSemi || countText == "" {
		d, err := dtype.NewArray(item, 0, true)
		return d, nil, err
	}
	if strings.HasPrefix(countText, "{") && strings.HasSuffix(countText, "}") {
		node, err := ParseExpr(countText[1 : len(countText)-1])
		if err != nil {
			return dtype.Dtype{}, nil, err
		}
		d, err := dtype.NewArray(item, 0, false)
		return d, node, err
	}
	n, err := strconv.ParseUint(countText, 10, 64)
	if err != nil {
		return dtype.Dtype{}, nil, bitform.NewError(bitform.BadSyntax, "invalid array count: "+countText)
	}
	d, err := dtype.NewArray(item, n, false)
	return d, nil, err
}

func parseTupleDtype(inner string) (dtype.Dtype, error) {
	parts := splitTopLevelCommas(inner)
	var elems []dtype.Dtype
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		d, err := ParseDtype(p)
		if err != nil {
			return dtype.Dtype{}, err
		}
		elems = append(elems, d)
	}
	return dtype.NewTuple(elems...), nil
}
