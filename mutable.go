package bitform

// MutableBits is an exclusively-owned, mutable bit sequence (component C).
// Unlike Bits, a MutableBits's storage is never shared: every mutator
// modifies the receiver in place and returns it, to permit chaining. A
// MutableBits must not be used concurrently from multiple goroutines.
//
// Internally a MutableBits is always normalized to a zero starting offset;
// this keeps every mutator's bit math anchored at byte 0 instead of
// threading an offset through each one.
type MutableBits struct {
	data []byte
	n    uint64
}

// NewMutableBits returns an empty builder.
func NewMutableBits() *MutableBits { return &MutableBits{} }

// Len reports the number of bits currently held.
func (m *MutableBits) Len() uint64 { return m.n }

// At reports the value of the bit at logical index i.
func (m *MutableBits) At(i uint64) (bool, error) {
	if i >= m.n {
		return false, NewError(OutOfRange, "bit index out of range")
	}
	return bitAt(m.data, 0, i), nil
}

// ToBytes packs the current bits left-aligned into bytes, zero-padding the
// final byte.
func (m *MutableBits) ToBytes() []byte { return toBytesMSB(m.data, 0, m.n) }

// Freeze converts m into an immutable Bits in O(1) by transferring
// ownership of its storage. m must not be used after calling Freeze.
func (m *MutableBits) Freeze() Bits {
	b := Bits{data: m.data, n: m.n}
	m.data, m.n = nil, 0
	return b
}

// growBy appends nb zero bits to m's storage and returns the bit offset at
// which they begin.
func (m *MutableBits) growBy(nb uint64) uint64 {
	start := m.n
	need := bitLen(0, m.n+nb)
	if need > len(m.data) {
		grown := make([]byte, need)
		copy(grown, m.data)
		m.data = grown
	}
	m.n += nb
	return start
}

func (m *MutableBits) writeBitsAt(start uint64, src Bits) {
	for i := uint64(0); i < src.Len(); i++ {
		setBitAt(m.data, 0, start+i, bitAt(src.data, src.off, i))
	}
}

// Append adds src to the end of m.
func (m *MutableBits) Append(src Bits) *MutableBits {
	start := m.growBy(src.Len())
	m.writeBitsAt(start, src)
	return m
}

// Prepend adds src to the beginning of m.
func (m *MutableBits) Prepend(src Bits) *MutableBits {
	old := Bits{data: m.data, n: m.n}
	newData := make([]byte, bitLen(0, src.Len()+m.n))
	nm := &MutableBits{data: newData, n: src.Len() + m.n}
	nm.writeBitsAt(0, src)
	nm.writeBitsAt(src.Len(), old)
	*m = *nm
	return m
}

// Insert splices src into m at logical bit index at.
func (m *MutableBits) Insert(at uint64, src Bits) (*MutableBits, error) {
	if at > m.n {
		return m, NewError(OutOfRange, "insert index out of range")
	}
	full := Bits{data: m.data, n: m.n}
	head, _ := full.Slice(0, at)
	tail, _ := full.Slice(at, m.n)
	newData := make([]byte, bitLen(0, head.Len()+src.Len()+tail.Len()))
	nm := &MutableBits{data: newData, n: head.Len() + src.Len() + tail.Len()}
	nm.writeBitsAt(0, head)
	nm.writeBitsAt(head.Len(), src)
	nm.writeBitsAt(head.Len()+src.Len(), tail)
	*m = *nm
	return m, nil
}

// Replace overwrites every non-overlapping occurrence of old, found from
// start onward, with new. If count >= 0, at most count occurrences are
// replaced. It returns the number of replacements made.
func (m *MutableBits) Replace(old, new Bits, start uint64, count int, byteAligned bool) (int, error) {
	if old.Len() == 0 {
		return 0, NewError(OutOfRange, "replace: empty pattern")
	}
	view := Bits{data: m.data, n: m.n}
	var segments []Bits
	pos := start
	replaced := 0
	for count < 0 || replaced < count {
		i, ok := view.Find(old, pos, byteAligned)
		if !ok {
			break
		}
		pre, _ := view.Slice(pos, i)
		segments = append(segments, pre, new)
		pos = i + old.Len()
		replaced++
	}
	if replaced == 0 {
		return 0, nil
	}
	tail, _ := view.Slice(pos, view.Len())
	segments = append(segments, tail)
	rebuilt, err := Concat(segments...)
	if err != nil {
		return 0, err
	}
	*m = *rebuilt.Thaw()
	return replaced, nil
}

// Set forces every bit at the given indices to value.
func (m *MutableBits) Set(value bool, positions ...uint64) (*MutableBits, error) {
	for _, p := range positions {
		if p >= m.n {
			return m, NewError(OutOfRange, "set: index out of range")
		}
		setBitAt(m.data, 0, p, value)
	}
	return m, nil
}

// SetSlice forces every bit in [a, b) to value.
func (m *MutableBits) SetSlice(value bool, a, b uint64) (*MutableBits, error) {
	if a > b || b > m.n {
		return m, NewError(OutOfRange, "set: slice out of range")
	}
	for i := a; i < b; i++ {
		setBitAt(m.data, 0, i, value)
	}
	return m, nil
}

// Invert flips every bit at the given indices. With no indices given, it
// flips every bit in m.
func (m *MutableBits) Invert(positions ...uint64) (*MutableBits, error) {
	if len(positions) == 0 {
		for i := uint64(0); i < m.n; i++ {
			setBitAt(m.data, 0, i, !bitAt(m.data, 0, i))
		}
		return m, nil
	}
	for _, p := range positions {
		if p >= m.n {
			return m, NewError(OutOfRange, "invert: index out of range")
		}
		setBitAt(m.data, 0, p, !bitAt(m.data, 0, p))
	}
	return m, nil
}

// Reverse reverses the order of all bits in m.
func (m *MutableBits) Reverse() *MutableBits {
	out := make([]byte, len(m.data))
	for i := uint64(0); i < m.n; i++ {
		if bitAt(m.data, 0, i) {
			j := m.n - 1 - i
			out[j/8] |= 1 << (7 - j%8)
		}
	}
	m.data = out
	return m
}

// ByteSwap reverses each contiguous group of k bytes. m's length must be
// divisible by 8*k.
func (m *MutableBits) ByteSwap(k int) (*MutableBits, error) {
	if k <= 0 || m.n%uint64(8*k) != 0 {
		return m, NewError(Alignment, "byte_swap: length not divisible by 8*k")
	}
	bs := m.ToBytes()
	for g := 0; g+k <= len(bs); g += k {
		for i, j := g, g+k-1; i < j; i, j = i+1, j-1 {
			bs[i], bs[j] = bs[j], bs[i]
		}
	}
	m.data = bs
	return m, nil
}

// Rol rotates m left by n bits (n may be negative, rotating right).
func (m *MutableBits) Rol(n int64) *MutableBits {
	if m.n == 0 {
		return m
	}
	shift := ((n % int64(m.n)) + int64(m.n)) % int64(m.n)
	if shift == 0 {
		return m
	}
	view := Bits{data: m.data, n: m.n}
	head, _ := view.Slice(0, uint64(shift))
	tail, _ := view.Slice(uint64(shift), m.n)
	rebuilt, _ := Concat(tail, head)
	*m = *rebuilt.Thaw()
	return m
}

// Ror rotates m right by n bits (n may be negative, rotating left).
func (m *MutableBits) Ror(n int64) *MutableBits {
	return m.Rol(-n)
}

// Clear truncates m to the empty bit sequence.
func (m *MutableBits) Clear() *MutableBits {
	m.data, m.n = nil, 0
	return m
}
