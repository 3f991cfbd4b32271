package dtype

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/dsnet/bitform"
)

// Pack encodes val as the bits described by d. It returns a LengthMismatch
// error if val's shape does not match d's, and OutOfRange, BadDtype, or
// Alignment errors for kind-specific violations.
func (d Dtype) Pack(val Value) (bitform.Bits, error) {
	switch d.shape {
	case ShapeSingle:
		return d.packSingle(val)
	case ShapeArray:
		return d.packArray(val)
	case ShapeTuple:
		return d.packTuple(val)
	}
	return bitform.Bits{}, bitform.NewError(bitform.SchemaError, "unreachable dtype shape")
}

// Unpack decodes the leading bits of b as described by d, returning the
// decoded Value and the number of bits consumed. If d is Unsized, all of
// b's bits are consumed.
func (d Dtype) Unpack(b bitform.Bits) (Value, uint64, error) {
	switch d.shape {
	case ShapeSingle:
		return d.unpackSingle(b)
	case ShapeArray:
		return d.unpackArray(b)
	case ShapeTuple:
		return d.unpackTuple(b)
	}
	return Value{}, 0, bitform.NewError(bitform.SchemaError, "unreachable dtype shape")
}

func (d Dtype) packSingle(val Value) (bitform.Bits, error) {
	switch d.kind {
	case UINT:
		if val.Int == nil {
			return bitform.Bits{}, bitform.NewError(bitform.BadDtype, "uint dtype requires an integer value")
		}
		return packUint(val.Int, d.size, d.endian)
	case INT:
		if val.Int == nil {
			return bitform.Bits{}, bitform.NewError(bitform.BadDtype, "int dtype requires an integer value")
		}
		return packInt(val.Int, d.size, d.endian)
	case FLOAT:
		return packFloat(val.Float, d.size, d.endian)
	case BOOL:
		vals := []bool{val.Bool}
		return bitform.NewBitsFromBools(vals), nil
	case BYTES:
		n := d.size
		if d.unsized {
			n = uint64(len(val.Bytes)) * 8
		}
		if uint64(len(val.Bytes))*8 != n {
			return bitform.Bits{}, bitform.NewError(bitform.LengthMismatch, "bytes value length does not match dtype size")
		}
		return bitform.NewBitsFromBytes(val.Bytes, int(n))
	case HEX:
		return packDigitString(val.Str, 4, "0123456789abcdef", d.size, d.unsized)
	case OCT:
		return packDigitString(val.Str, 3, "01234567", d.size, d.unsized)
	case BIN:
		return packBinString(val.Str, d.size, d.unsized)
	case BITS:
		if !d.unsized && val.Raw.Len() != d.size {
			return bitform.Bits{}, bitform.NewError(bitform.LengthMismatch, "bits value length does not match dtype size")
		}
		return val.Raw, nil
	case PAD:
		n := d.size
		return bitform.Zeros(n), nil
	}
	return bitform.Bits{}, bitform.NewError(bitform.BadDtype, "unknown kind")
}

func (d Dtype) unpackSingle(b bitform.Bits) (Value, uint64, error) {
	n := d.size
	if d.unsized {
		n = b.Len()
	}
	if b.Len() < n {
		return Value{}, 0, bitform.NewError(bitform.ShortInput, "not enough bits to unpack dtype")
	}
	field, err := b.Slice(0, n)
	if err != nil {
		return Value{}, 0, err
	}

	switch d.kind {
	case UINT:
		v, err := unpackUint(field, d.endian)
		if err != nil {
			return Value{}, 0, err
		}
		return Value{Int: v}, n, nil
	case INT:
		v, err := unpackInt(field, d.endian)
		if err != nil {
			return Value{}, 0, err
		}
		return Value{Int: v}, n, nil
	case FLOAT:
		v, err := unpackFloat(field, d.endian)
		if err != nil {
			return Value{}, 0, err
		}
		return Value{Float: v}, n, nil
	case BOOL:
		bit, _ := field.At(0)
		return Value{Bool: bit}, n, nil
	case BYTES:
		return Value{Bytes: field.ToBytes()}, n, nil
	case HEX:
		return Value{Str: unpackDigitString(field, 4, "0123456789abcdef")}, n, nil
	case OCT:
		return Value{Str: unpackDigitString(field, 3, "01234567")}, n, nil
	case BIN:
		return Value{Str: unpackBinString(field)}, n, nil
	case BITS:
		return Value{Raw: field}, n, nil
	case PAD:
		return Value{}, n, nil
	}
	return Value{}, 0, bitform.NewError(bitform.BadDtype, "unknown kind")
}

func packDigitString(s string, bitsPerDigit uint64, alphabet string, size uint64, unsized bool) (bitform.Bits, error) {
	want := size
	if unsized {
		want = uint64(len(s)) * bitsPerDigit
	}
	if uint64(len(s))*bitsPerDigit != want {
		return bitform.Bits{}, bitform.NewError(bitform.LengthMismatch, "digit string length does not match dtype size")
	}
	var vals []bool
	for _, c := range strings.ToLower(s) {
		idx := strings.IndexRune(alphabet, c)
		if idx < 0 {
			return bitform.Bits{}, bitform.NewError(bitform.BadSyntax, "invalid digit in string literal")
		}
		for i := uint64(0); i < bitsPerDigit; i++ {
			vals = append(vals, (idx>>(bitsPerDigit-1-i))&1 == 1)
		}
	}
	return bitform.NewBitsFromBools(vals), nil
}

func unpackDigitString(b bitform.Bits, bitsPerDigit uint64, alphabet string) string {
	var sb strings.Builder
	for i := uint64(0); i+bitsPerDigit <= b.Len(); i += bitsPerDigit {
		var idx int
		for j := uint64(0); j < bitsPerDigit; j++ {
			bit, _ := b.At(i + j)
			idx <<= 1
			if bit {
				idx |= 1
			}
		}
		sb.WriteByte(alphabet[idx])
	}
	return sb.String()
}

func packBinString(s string, size uint64, unsized bool) (bitform.Bits, error) {
	want := size
	if unsized {
		want = uint64(len(s))
	}
	if uint64(len(s)) != want {
		return bitform.Bits{}, bitform.NewError(bitform.LengthMismatch, "binary string length does not match dtype size")
	}
	vals := make([]bool, len(s))
	for i, c := range s {
		switch c {
		case '0':
			vals[i] = false
		case '1':
			vals[i] = true
		default:
			return bitform.Bits{}, bitform.NewError(bitform.BadSyntax, "invalid character in binary string literal")
		}
	}
	return bitform.NewBitsFromBools(vals), nil
}

func unpackBinString(b bitform.Bits) string {
	var sb strings.Builder
	for i := uint64(0); i < b.Len(); i++ {
		bit, _ := b.At(i)
		if bit {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

func (d Dtype) packArray(val Value) (bitform.Bits, error) {
	if !d.openCount && uint64(len(val.Elems)) != d.count {
		return bitform.Bits{}, bitform.NewError(bitform.LengthMismatch, "array value count does not match dtype count")
	}
	parts := make([]bitform.Bits, len(val.Elems))
	for i, e := range val.Elems {
		b, err := d.item.Pack(e)
		if err != nil {
			return bitform.Bits{}, err
		}
		parts[i] = b
	}
	return bitform.Concat(parts...)
}

func (d Dtype) unpackArray(b bitform.Bits) (Value, uint64, error) {
	itemSize := d.item.Size()
	count := d.count
	if d.openCount {
		if itemSize == 0 {
			return Value{}, 0, bitform.NewError(bitform.SchemaError, "open-count array item must have nonzero size")
		}
		count = b.Len() / itemSize
	}
	need := count * itemSize
	if b.Len() < need {
		return Value{}, 0, bitform.NewError(bitform.ShortInput, "not enough bits to unpack array")
	}
	elems := make([]Value, count)
	var pos uint64
	for i := uint64(0); i < count; i++ {
		field, err := b.Slice(pos, pos+itemSize)
		if err != nil {
			return Value{}, 0, err
		}
		v, consumed, err := d.item.Unpack(field)
		if err != nil {
			return Value{}, 0, err
		}
		elems[i] = v
		pos += consumed
	}
	return Value{Elems: elems}, pos, nil
}

func (d Dtype) packTuple(val Value) (bitform.Bits, error) {
	if len(val.Elems) != len(d.elems) {
		return bitform.Bits{}, bitform.NewError(bitform.LengthMismatch, "tuple value arity does not match dtype arity")
	}
	parts := make([]bitform.Bits, len(d.elems))
	for i, e := range d.elems {
		b, err := e.Pack(val.Elems[i])
		if err != nil {
			return bitform.Bits{}, err
		}
		parts[i] = b
	}
	return bitform.Concat(parts...)
}

func (d Dtype) unpackTuple(b bitform.Bits) (Value, uint64, error) {
	elems := make([]Value, len(d.elems))
	var pos uint64
	for i, e := range d.elems {
		rest, err := b.Slice(pos, b.Len())
		if err != nil {
			return Value{}, 0, err
		}
		v, consumed, err := e.Unpack(rest)
		if err != nil {
			return Value{}, 0, err
		}
		elems[i] = v
		pos += consumed
	}
	return Value{Elems: elems}, pos, nil
}

// ParseUintLiteral is used by the grammar package to resolve decimal digit
// strings appearing in typed dtype literals. It parses s as a base-10
// integer with math/big; a leading sign is accepted.
func ParseUintLiteral(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, bitform.NewError(bitform.BadSyntax, "invalid decimal integer literal: "+strconv.Quote(s))
	}
	return v, nil
}
