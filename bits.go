// Package bitform implements an arbitrary-length, sub-byte-addressable
// bit-vector engine: Bits (an immutable, cheaply sliceable view) and
// MutableBits (an exclusive-owner builder), together with the bitwise
// algebra, search, and packed bit I/O that operate over them.
//
// Bits are addressed most-significant-bit first (MSB0): logical bit 0 is
// the most significant bit of the first storage byte. Least-significant-bit
// ordering is not implemented (see the module's non-goals).
package bitform

import (
	"strings"

	golibbits "github.com/dsnet/golib/bits"
)

// Bits is an immutable, shareable view over a logical sequence of bits.
// Multiple Bits values may share the same backing storage; slicing is O(1)
// and allocation-free. A zero-value Bits is the empty sequence.
type Bits struct {
	data []byte
	off  uint8
	n    uint64
}

// Len reports the number of bits in b.
func (b Bits) Len() uint64 { return b.n }

// At reports the value of the bit at logical index i.
func (b Bits) At(i uint64) (bool, error) {
	if i >= b.n {
		return false, NewError(OutOfRange, "bit index out of range")
	}
	return bitAt(b.data, b.off, i), nil
}

// Slice returns the view over logical bits [a, b_).
func (b Bits) Slice(a, b_ uint64) (Bits, error) {
	if a > b_ || b_ > b.n {
		return Bits{}, NewError(OutOfRange, "slice bounds out of range")
	}
	n := b_ - a
	pos := uint64(b.off) + a
	return Bits{data: b.data[pos/8:], off: uint8(pos % 8), n: n}, nil
}

// ToBytes packs the logical bits left-aligned into bytes, zero-padding the
// tail of the final byte. The result has length ceil(Len()/8).
func (b Bits) ToBytes() []byte {
	return toBytesMSB(b.data, b.off, b.n)
}

// Equal reports whether a and b hold the same number of bits with the same
// values, independent of their storage offset.
func (a Bits) Equal(b Bits) bool {
	return equalBits(a.data, a.off, a.n, b.data, b.off, b.n)
}

// Thaw copies b into a new, exclusively-owned MutableBits.
func (b Bits) Thaw() *MutableBits {
	data := extractBits(b.data, b.off, 0, b.n, 0)
	return &MutableBits{data: data, n: b.n}
}

// Chunker is a forward-only, non-restartable iterator over fixed-size
// slices of a Bits. Mutating the source that produced a Chunker (there is
// none to mutate for an immutable Bits, but see MutableBits.Freeze) after
// construction has undefined results on the iterator.
type Chunker struct {
	src  Bits
	k    uint64
	pos  uint64
	done bool
}

// Chunks returns a lazy iterator over views of length k (the final chunk
// may be shorter). It panics if k is zero.
func (b Bits) Chunks(k uint64) *Chunker {
	if k == 0 {
		panic(NewError(OutOfRange, "chunk size must be positive"))
	}
	return &Chunker{src: b, k: k}
}

// Next returns the next chunk, or ok=false once the source is exhausted.
func (c *Chunker) Next() (chunk Bits, ok bool) {
	if c.done || c.pos >= c.src.n {
		return Bits{}, false
	}
	end := c.pos + c.k
	if end > c.src.n {
		end = c.src.n
	}
	chunk, _ = c.src.Slice(c.pos, end)
	c.pos = end
	if c.pos >= c.src.n {
		c.done = true
	}
	return chunk, true
}

// And returns the bitwise AND of a and b. Both operands must have equal
// length.
func (a Bits) And(b Bits) (Bits, error) { return bitwise(a, b, func(x, y byte) byte { return x & y }) }

// Or returns the bitwise OR of a and b. Both operands must have equal length.
func (a Bits) Or(b Bits) (Bits, error) { return bitwise(a, b, func(x, y byte) byte { return x | y }) }

// Xor returns the bitwise XOR of a and b. Both operands must have equal
// length.
func (a Bits) Xor(b Bits) (Bits, error) { return bitwise(a, b, func(x, y byte) byte { return x ^ y }) }

func bitwise(a, b Bits, op func(x, y byte) byte) (Bits, error) {
	if a.n != b.n {
		return Bits{}, NewError(LengthMismatch, "operand lengths differ")
	}
	ab := a.ToBytes()
	bb := b.ToBytes()
	out := make([]byte, len(ab))
	for i := range out {
		out[i] = op(ab[i], bb[i])
	}
	return Bits{data: out, n: a.n}, nil
}

// Not returns the bitwise complement of b.
func (b Bits) Not() Bits {
	bb := b.ToBytes()
	out := make([]byte, len(bb))
	for i, v := range bb {
		out[i] = ^v
	}
	if rem := b.n % 8; rem != 0 && len(out) > 0 {
		out[len(out)-1] &= ^byte(0) << (8 - rem)
	}
	return Bits{data: out, n: b.n}
}

// Count reports the number of bits equal to value.
func (b Bits) Count(value bool) uint64 {
	ones := uint64(golibbits.Count(b.ToBytes()))
	if value {
		return ones
	}
	return b.n - ones
}

// Find returns the lowest index i >= start such that b.Slice(i, i+pat.Len())
// equals pat. If byteAligned is true, i must additionally be a multiple of
// 8. ok is false if no match exists.
func (b Bits) Find(pat Bits, start uint64, byteAligned bool) (i uint64, ok bool) {
	return findFrom(b, pat, start, byteAligned, false)
}

// RFind is the symmetric counterpart of Find, searching from the high end.
func (b Bits) RFind(pat Bits, start uint64, byteAligned bool) (i uint64, ok bool) {
	return findFrom(b, pat, start, byteAligned, true)
}

func findFrom(b, pat Bits, start uint64, byteAligned, reverse bool) (uint64, bool) {
	m := pat.Len()
	if m == 0 || m > b.n || start > b.n {
		return 0, false
	}
	step := uint64(1)
	if byteAligned {
		step = 8
	}
	lo := start
	if byteAligned && lo%8 != 0 {
		lo += 8 - lo%8
	}
	if lo+m > b.n {
		return 0, false
	}
	last := b.n - m
	last -= last % step
	if !reverse {
		for i := lo; i <= last; i += step {
			win, _ := b.Slice(i, i+m)
			if win.Equal(pat) {
				return i, true
			}
		}
		return 0, false
	}
	for i := last; ; i -= step {
		if i >= lo {
			win, _ := b.Slice(i, i+m)
			if win.Equal(pat) {
				return i, true
			}
		}
		if i < step {
			break
		}
	}
	return 0, false
}

// MatchIter is a forward-only, non-restartable iterator over non-overlapping
// matches of a pattern, produced by FindAll/RFindAll.
type MatchIter struct {
	src, pat    Bits
	pos         uint64 // forward: next lower bound; reverse: exclusive upper bound
	lo          uint64 // reverse only: the caller's lower bound, forwarded to each RFind
	byteAligned bool
	reverse     bool
	done        bool
}

// FindAll returns a lazy iterator over non-overlapping matches of pat, found
// low to high.
func (b Bits) FindAll(pat Bits, start uint64, byteAligned bool) *MatchIter {
	return &MatchIter{src: b, pat: pat, pos: start, byteAligned: byteAligned}
}

// RFindAll returns a lazy iterator over non-overlapping matches of pat,
// found high to low. start is a lower bound on the search window, matching
// RFind's own start parameter; the window's upper bound begins at b.Len()
// and shrinks to just below each match as matches are found.
func (b Bits) RFindAll(pat Bits, start uint64, byteAligned bool) *MatchIter {
	return &MatchIter{src: b, pat: pat, pos: b.Len(), lo: start, byteAligned: byteAligned, reverse: true}
}

// Next returns the next match index, or ok=false once exhausted.
func (m *MatchIter) Next() (i uint64, ok bool) {
	if m.done {
		return 0, false
	}
	if !m.reverse {
		i, ok = m.src.Find(m.pat, m.pos, m.byteAligned)
		if !ok {
			m.done = true
			return 0, false
		}
		m.pos = i + m.pat.Len()
		return i, true
	}
	// Reverse mode: m.pos is an exclusive upper bound on the search window,
	// shrinking after each match; m.lo is the caller's lower bound, forwarded
	// unchanged to every RFind call.
	if m.pos < m.pat.Len() || m.pos <= m.lo {
		m.done = true
		return 0, false
	}
	window, err := m.src.Slice(0, m.pos)
	if err != nil {
		m.done = true
		return 0, false
	}
	i, ok = window.RFind(m.pat, m.lo, m.byteAligned)
	if !ok {
		m.done = true
		return 0, false
	}
	m.pos = i
	return i, true
}

// String renders b as a bit-source literal: a hex literal (0x...) when its
// length is a multiple of 4, and a binary literal (0b...) otherwise.
func (b Bits) String() string {
	if b.n == 0 {
		return "0b"
	}
	if b.n%4 == 0 {
		var sb strings.Builder
		sb.WriteString("0x")
		for i := uint64(0); i < b.n; i += 4 {
			var nib byte
			for j := uint64(0); j < 4; j++ {
				nib <<= 1
				if bitAt(b.data, b.off, i+j) {
					nib |= 1
				}
			}
			sb.WriteByte("0123456789abcdef"[nib])
		}
		return sb.String()
	}
	var sb strings.Builder
	sb.WriteString("0b")
	for i := uint64(0); i < b.n; i++ {
		if bitAt(b.data, b.off, i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}
