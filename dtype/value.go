package dtype

import (
	"fmt"
	"math/big"

	"github.com/dsnet/bitform"
)

// Value holds one packed/unpacked dtype value. Exactly one field is
// meaningful for any given Kind/Shape combination:
//
//	UINT/INT  -> Int (arbitrary precision)
//	FLOAT     -> Float
//	BOOL      -> Bool
//	BYTES     -> Bytes
//	HEX/BIN/OCT -> Str (the canonical digit string)
//	BITS      -> Raw
//	PAD       -> no observable value
//	Array/Tuple -> Elems
type Value struct {
	Int   *big.Int
	Float float64
	Bool  bool
	Bytes []byte
	Str   string
	Raw   bitform.Bits
	Elems []Value
}

// Int64Value is a convenience constructor for small UINT/INT values.
func Int64Value(v int64) Value { return Value{Int: big.NewInt(v)} }

// BoolValue is a convenience constructor for BOOL values.
func BoolValue(v bool) Value { return Value{Bool: v} }

// FloatValue is a convenience constructor for FLOAT values.
func FloatValue(v float64) Value { return Value{Float: v} }

// BytesValue is a convenience constructor for BYTES values.
func BytesValue(v []byte) Value { return Value{Bytes: v} }

// StrValue is a convenience constructor for HEX/BIN/OCT values.
func StrValue(v string) Value { return Value{Str: v} }

// RawValue is a convenience constructor for BITS values.
func RawValue(v bitform.Bits) Value { return Value{Raw: v} }

// ArrayValue is a convenience constructor for Array/Tuple values.
func ArrayValue(elems []Value) Value { return Value{Elems: elems} }

func (v Value) String() string {
	switch {
	case v.Int != nil:
		return v.Int.String()
	case v.Bytes != nil:
		return fmt.Sprintf("%x", v.Bytes)
	case v.Str != "":
		return v.Str
	case v.Elems != nil:
		return fmt.Sprintf("%v", v.Elems)
	default:
		return fmt.Sprintf("%v", v.Bool)
	}
}
