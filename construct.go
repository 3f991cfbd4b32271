package bitform

import (
	"math/rand"
)

// NewBitsFromBytes returns the bits of data. If nbits is negative, the
// entire byte slice is used (len(data)*8 bits); otherwise the result is
// trimmed to the first nbits bits, which must not exceed len(data)*8.
func NewBitsFromBytes(data []byte, nbits int) (Bits, error) {
	total := len(data) * 8
	if nbits < 0 {
		nbits = total
	}
	if nbits > total {
		return Bits{}, NewError(OutOfRange, "nbits exceeds available data")
	}
	out := make([]byte, len(data))
	copy(out, data)
	return Bits{data: out, n: uint64(nbits)}, nil
}

// Zeros returns n zero bits.
func Zeros(n uint64) Bits {
	return Bits{data: make([]byte, bitLen(0, n)), n: n}
}

// Ones returns n one bits.
func Ones(n uint64) Bits {
	data := make([]byte, bitLen(0, n))
	for i := range data {
		data[i] = 0xff
	}
	if rem := n % 8; rem != 0 && len(data) > 0 {
		data[len(data)-1] &= ^byte(0) << (8 - rem)
	}
	return Bits{data: data, n: n}
}

// NewBitsFromRandom returns n bits filled from a seeded pseudo-random
// source. Equal seeds always produce equal output.
func NewBitsFromRandom(seed int64, n uint64) Bits {
	r := rand.New(rand.NewSource(seed))
	data := make([]byte, bitLen(0, n))
	r.Read(data)
	if rem := n % 8; rem != 0 && len(data) > 0 {
		data[len(data)-1] &= ^byte(0) << (8 - rem)
	}
	return Bits{data: data, n: n}
}

// NewBitsFromBools packs a sequence of boolean-valued elements into bits, in
// order.
func NewBitsFromBools(vals []bool) Bits {
	n := uint64(len(vals))
	data := make([]byte, bitLen(0, n))
	for i, v := range vals {
		if v {
			data[i/8] |= 1 << (7 - i%8)
		}
	}
	return Bits{data: data, n: n}
}

// Concat concatenates srcs in order into a single Bits.
func Concat(srcs ...Bits) (Bits, error) {
	var total uint64
	for _, s := range srcs {
		total += s.Len()
	}
	m := &MutableBits{data: make([]byte, bitLen(0, total))}
	var pos uint64
	for _, s := range srcs {
		m.n = pos + s.Len()
		if need := bitLen(0, m.n); need > len(m.data) {
			grown := make([]byte, need)
			copy(grown, m.data)
			m.data = grown
		}
		m.writeBitsAt(pos, s)
		pos += s.Len()
	}
	m.n = total
	return m.Freeze(), nil
}
