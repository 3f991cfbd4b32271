// Package array implements the typed array (component I): a contiguous,
// homogeneous dtype sequence backed by a bitform.MutableBits.
package array

import (
	"math/big"

	"github.com/dsnet/bitform"
	"github.com/dsnet/bitform/dtype"
)

// Array is a logical sequence of values of one fixed-width dtype, backed
// by a mutable bit builder whose length is always items*item_size.
type Array struct {
	item dtype.Dtype
	buf  *bitform.MutableBits
}

// New returns an empty Array of the given item dtype, which must be a
// fixed-size Single dtype.
func New(item dtype.Dtype) (*Array, error) {
	if item.Shape() != dtype.ShapeSingle || item.Unsized() {
		return nil, bitform.NewError(bitform.BadDtype, "array item must be a fixed-size single dtype")
	}
	return &Array{item: item, buf: bitform.NewMutableBits()}, nil
}

// Len reports the number of items currently held.
func (a *Array) Len() int {
	sz := a.item.Size()
	if sz == 0 {
		return 0
	}
	return int(a.buf.Len() / sz)
}

// ItemDtype reports the array's element dtype.
func (a *Array) ItemDtype() dtype.Dtype { return a.item }

func (a *Array) itemBits(i int) (bitform.Bits, error) {
	sz := a.item.Size()
	n := uint64(i)
	full, err := bitform.NewBitsFromBytes(a.buf.ToBytes(), int(a.buf.Len()))
	if err != nil {
		return bitform.Bits{}, err
	}
	b, err := full.Slice(n*sz, (n+1)*sz)
	if err != nil {
		return bitform.Bits{}, bitform.NewError(bitform.OutOfRange, "array index out of range")
	}
	return b, nil
}

// Get returns the decoded value at index i.
func (a *Array) Get(i int) (dtype.Value, error) {
	if i < 0 || i >= a.Len() {
		return dtype.Value{}, bitform.NewError(bitform.OutOfRange, "array index out of range")
	}
	b, err := a.itemBits(i)
	if err != nil {
		return dtype.Value{}, err
	}
	v, _, err := a.item.Unpack(b)
	return v, err
}

// Set overwrites the value at index i.
func (a *Array) Set(i int, val dtype.Value) error {
	if i < 0 || i >= a.Len() {
		return bitform.NewError(bitform.OutOfRange, "array index out of range")
	}
	b, err := a.item.Pack(val)
	if err != nil {
		return err
	}
	sz := a.item.Size()
	if _, err := a.buf.SetSlice(false, uint64(i)*sz, uint64(i+1)*sz); err != nil {
		return err
	}
	for j := uint64(0); j < sz; j++ {
		bit, _ := b.At(j)
		if bit {
			if _, err := a.buf.Set(true, uint64(i)*sz+j); err != nil {
				return err
			}
		}
	}
	return nil
}

// Append adds val to the end of the array.
func (a *Array) Append(val dtype.Value) error {
	b, err := a.item.Pack(val)
	if err != nil {
		return err
	}
	a.buf.Append(b)
	return nil
}

// Extend appends every value in vals, in order.
func (a *Array) Extend(vals []dtype.Value) error {
	for _, v := range vals {
		if err := a.Append(v); err != nil {
			return err
		}
	}
	return nil
}

// Insert splices val into the array at index i.
func (a *Array) Insert(i int, val dtype.Value) error {
	n := a.Len()
	if i < 0 || i > n {
		return bitform.NewError(bitform.OutOfRange, "array index out of range")
	}
	b, err := a.item.Pack(val)
	if err != nil {
		return err
	}
	sz := a.item.Size()
	_, err = a.buf.Insert(uint64(i)*sz, b)
	return err
}

// Pop removes and returns the value at index i (negative i counts from
// the end, as with Python-style indexing; -1 is the last element).
func (a *Array) Pop(i int) (dtype.Value, error) {
	n := a.Len()
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return dtype.Value{}, bitform.NewError(bitform.OutOfRange, "array index out of range")
	}
	val, err := a.Get(i)
	if err != nil {
		return dtype.Value{}, err
	}
	sz := a.item.Size()
	frozen := a.buf.Freeze()
	head, err := frozen.Slice(0, uint64(i)*sz)
	if err != nil {
		return dtype.Value{}, err
	}
	tail, err := frozen.Slice(uint64(i+1)*sz, frozen.Len())
	if err != nil {
		return dtype.Value{}, err
	}
	rebuilt, err := bitform.Concat(head, tail)
	if err != nil {
		return dtype.Value{}, err
	}
	a.buf = rebuilt.Thaw()
	return val, nil
}

// SetDtype reinterprets the array's underlying bits as a sequence of the
// new item dtype without converting any value, requiring that the total
// bit length remain evenly divisible by the new item's size.
func (a *Array) SetDtype(item dtype.Dtype) error {
	if item.Shape() != dtype.ShapeSingle || item.Unsized() {
		return bitform.NewError(bitform.BadDtype, "array item must be a fixed-size single dtype")
	}
	if item.Size() == 0 || a.buf.Len()%item.Size() != 0 {
		return bitform.NewError(bitform.LengthMismatch, "existing bit length is not a multiple of the new item size")
	}
	a.item = item
	return nil
}

// ToBytes packs the array's bits left-aligned into bytes.
func (a *Array) ToBytes() []byte { return a.buf.ToBytes() }

// Unpack decodes every item, returning them in order.
func (a *Array) Unpack() ([]dtype.Value, error) {
	n := a.Len()
	out := make([]dtype.Value, n)
	for i := 0; i < n; i++ {
		v, err := a.Get(i)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// ApplyOp is one of the element-wise compound-assignment operators.
type ApplyOp int

const (
	OpAddAssign ApplyOp = iota
	OpSubAssign
	OpMulAssign
	OpDivAssign
)

// Apply performs a[i] op= operand element-wise across every item, using
// integer arithmetic on the array's dtype (which must be UINT or INT).
// It returns BadDtype if the dtype does not support arithmetic.
func (a *Array) Apply(op ApplyOp, operand *big.Int) error {
	if a.item.Kind() != dtype.UINT && a.item.Kind() != dtype.INT {
		return bitform.NewError(bitform.BadDtype, "element-wise arithmetic requires a UINT or INT array")
	}
	n := a.Len()
	for i := 0; i < n; i++ {
		v, err := a.Get(i)
		if err != nil {
			return err
		}
		result := new(big.Int)
		switch op {
		case OpAddAssign:
			result.Add(v.Int, operand)
		case OpSubAssign:
			result.Sub(v.Int, operand)
		case OpMulAssign:
			result.Mul(v.Int, operand)
		case OpDivAssign:
			if operand.Sign() == 0 {
				return bitform.NewError(bitform.Arithmetic, "division by zero")
			}
			result.Quo(v.Int, operand)
		}
		if err := a.Set(i, dtype.Value{Int: result}); err != nil {
			return err
		}
	}
	return nil
}
