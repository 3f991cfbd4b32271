package dtype

import (
	"fmt"

	"github.com/dsnet/bitform"
)

// Dtype is a codec from bits to a typed value. A Dtype is an immutable
// value type; construct one with NewSingle, NewArray, or NewTuple.
type Dtype struct {
	shape Shape

	// Single
	kind    Kind
	endian  Endian
	size    uint64 // bit size; meaningless when unsized
	unsized bool   // true => Unpack consumes all remaining bits

	// Array
	item  *Dtype
	count uint64
	openCount bool // true => "to end of available bits" (unpack-only)

	// Tuple
	elems []Dtype
}

// Shape reports which of the three dtype variants d is.
func (d Dtype) Shape() Shape { return d.shape }

// Kind reports d's kind. Only meaningful for ShapeSingle.
func (d Dtype) Kind() Kind { return d.kind }

// Endian reports d's endianness. Only meaningful for ShapeSingle.
func (d Dtype) Endian() Endian { return d.endian }

// Unsized reports whether d consumes all remaining bits on Unpack rather
// than a fixed count.
func (d Dtype) Unsized() bool {
	switch d.shape {
	case ShapeArray:
		return d.openCount
	case ShapeTuple:
		for _, e := range d.elems {
			if e.Unsized() {
				return true
			}
		}
		return false
	default:
		return d.unsized
	}
}

// Item returns the element dtype of an Array. It panics if d is not an
// Array.
func (d Dtype) Item() Dtype {
	if d.shape != ShapeArray {
		panic("dtype: Item called on non-array dtype")
	}
	return *d.item
}

// Count returns the item count of an Array. It panics if d is not an Array.
func (d Dtype) Count() uint64 {
	if d.shape != ShapeArray {
		panic("dtype: Count called on non-array dtype")
	}
	return d.count
}

// Elems returns the element dtypes of a Tuple. It panics if d is not a
// Tuple.
func (d Dtype) Elems() []Dtype {
	if d.shape != ShapeTuple {
		panic("dtype: Elems called on non-tuple dtype")
	}
	return d.elems
}

// Size reports the bit size of d. It panics if d is Unsized; callers must
// check Unsized first (an unsized dtype's size is only known once bits are
// available to unpack from).
func (d Dtype) Size() uint64 {
	switch d.shape {
	case ShapeSingle:
		if d.unsized {
			panic("dtype: Size called on an unsized dtype")
		}
		return d.size
	case ShapeArray:
		if d.openCount {
			panic("dtype: Size called on an open-count array dtype")
		}
		return d.count * d.item.Size()
	case ShapeTuple:
		var total uint64
		for _, e := range d.elems {
			total += e.Size()
		}
		return total
	}
	panic("dtype: unreachable")
}

// NewSingle constructs a Single dtype. size is the bit width; pass
// unsized=true for BYTES/HEX/BIN/OCT/BITS/PAD dtypes that should consume
// all remaining input on Unpack.
func NewSingle(kind Kind, endian Endian, size uint64, unsized bool) (Dtype, error) {
	d := Dtype{shape: ShapeSingle, kind: kind, endian: endian, size: size, unsized: unsized}
	if err := d.validateSingle(); err != nil {
		return Dtype{}, err
	}
	return d, nil
}

func (d *Dtype) validateSingle() error {
	switch d.kind {
	case BOOL:
		if d.size != 1 && !d.unsized {
			return bitform.NewError(bitform.BadDtype, "BOOL size must be 1")
		}
		d.size = 1
		d.unsized = false
	case FLOAT:
		if d.unsized || (d.size != 16 && d.size != 32 && d.size != 64) {
			return bitform.NewError(bitform.BadDtype, "FLOAT size must be 16, 32, or 64")
		}
	case BYTES:
		if !d.unsized && d.size%8 != 0 {
			return bitform.NewError(bitform.BadDtype, "BYTES size must be a multiple of 8")
		}
	case HEX:
		if !d.unsized && d.size%4 != 0 {
			return bitform.NewError(bitform.BadDtype, "HEX size must be a multiple of 4")
		}
	case OCT:
		if !d.unsized && d.size%3 != 0 {
			return bitform.NewError(bitform.BadDtype, "OCT size must be a multiple of 3")
		}
	case UINT, INT, BIN, BITS, PAD:
		// any size is legal
	default:
		return bitform.NewError(bitform.BadDtype, "unknown kind")
	}

	if d.kind == UINT || d.kind == INT || d.kind == FLOAT {
		if !d.unsized && d.size%8 != 0 && d.endian != NONE {
			return bitform.NewError(bitform.BadDtype, "endianness modifier requires a byte-multiple size")
		}
		if d.kind != FLOAT && d.endian == LE && d.size%8 != 0 {
			return bitform.NewError(bitform.BadDtype, "LE requires size % 8 == 0")
		}
	} else if d.endian != NONE {
		return bitform.NewError(bitform.BadDtype, "endianness modifier only applies to UINT/INT/FLOAT")
	}
	return nil
}

// WithSize returns a copy of d with its size expression resolved to the
// concrete value n: for a Single dtype, n is a bit size; for an Array
// dtype, n is an item count. It is used when a schema field's dtype carries
// a "{expr}" size or count that must be evaluated against the current
// environment at parse/build time.
func (d Dtype) WithSize(n uint64) (Dtype, error) {
	switch d.shape {
	case ShapeSingle:
		d.size = n
		d.unsized = false
		if err := d.validateSingle(); err != nil {
			return Dtype{}, err
		}
		return d, nil
	case ShapeArray:
		d.count = n
		d.openCount = false
		return d, nil
	}
	return Dtype{}, bitform.NewError(bitform.BadDtype, "WithSize does not apply to a tuple dtype")
}

// NewArray constructs an Array dtype of count items of item, which must be
// a fixed-size Single dtype. Pass openCount=true for "to end of available
// bits" arrays, legal only when Unpack-ing.
func NewArray(item Dtype, count uint64, openCount bool) (Dtype, error) {
	if item.shape != ShapeSingle || item.unsized {
		return Dtype{}, bitform.NewError(bitform.BadDtype, "array item must be a fixed-size single dtype")
	}
	ic := item
	return Dtype{shape: ShapeArray, item: &ic, count: count, openCount: openCount}, nil
}

// NewTuple constructs a Tuple dtype from an ordered, heterogeneous sequence
// of element dtypes.
func NewTuple(elems ...Dtype) Dtype {
	cp := make([]Dtype, len(elems))
	copy(cp, elems)
	return Dtype{shape: ShapeTuple, elems: cp}
}

// String renders d using the dtype grammar.
func (d Dtype) String() string {
	switch d.shape {
	case ShapeSingle:
		size := "{?}"
		if !d.unsized {
			size = fmt.Sprint(d.size)
		}
		return fmt.Sprintf("%s%s%s", d.kind, d.endian, size)
	case ShapeArray:
		if d.openCount {
			return fmt.Sprintf("[%s;]", d.item)
		}
		return fmt.Sprintf("[%s;%d]", d.item, d.count)
	case ShapeTuple:
		s := "("
		for i, e := range d.elems {
			if i > 0 {
				s += ", "
			}
			s += e.String()
		}
		return s + ")"
	}
	return "?"
}
