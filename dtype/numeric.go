package dtype

import (
	"encoding/binary"
	"math"
	"math/big"

	"github.com/dsnet/bitform"
)

// bigToBitsMSB packs the low n bits of the non-negative v into an n-bit,
// most-significant-bit-first Bits.
func bigToBitsMSB(v *big.Int, n uint64) bitform.Bits {
	vals := make([]bool, n)
	for i := uint64(0); i < n; i++ {
		vals[i] = v.Bit(int(n-1-i)) == 1
	}
	return bitform.NewBitsFromBools(vals)
}

// bitsToBigMSB reconstructs the unsigned integer represented by b, read
// most-significant-bit first.
func bitsToBigMSB(b bitform.Bits) *big.Int {
	v := new(big.Int)
	for i := uint64(0); i < b.Len(); i++ {
		bit, _ := b.At(i)
		v.Lsh(v, 1)
		if bit {
			v.Or(v, big.NewInt(1))
		}
	}
	return v
}

func reverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}

// applyByteOrder reverses a byte-aligned Bits' bytes for LE, and for NATIVE
// on a little-endian host (the same host check float packing uses); BE, NONE
// and NATIVE on a big-endian host leave the bytes untouched. Reversal is its
// own inverse, so the same call serves packing and unpacking.
func applyByteOrder(b bitform.Bits, endian Endian) (bitform.Bits, error) {
	little := binary.NativeEndian.Uint16([]byte{0x01, 0x00}) == 1
	if endian != LE && !(endian == NATIVE && little) {
		return b, nil
	}
	bs := reverseBytes(b.ToBytes())
	return bitform.NewBitsFromBytes(bs, int(b.Len()))
}

func packUint(v *big.Int, n uint64, endian Endian) (bitform.Bits, error) {
	if v.Sign() < 0 || v.BitLen() > int(n) {
		return bitform.Bits{}, bitform.NewError(bitform.OutOfRange, "uint value out of range for dtype size")
	}
	b := bigToBitsMSB(v, n)
	return applyByteOrder(b, endian)
}

func unpackUint(b bitform.Bits, endian Endian) (*big.Int, error) {
	bb, err := applyByteOrder(b, endian)
	if err != nil {
		return nil, err
	}
	return bitsToBigMSB(bb), nil
}

func packInt(v *big.Int, n uint64, endian Endian) (bitform.Bits, error) {
	lo := new(big.Int).Lsh(big.NewInt(-1), uint(n-1))  // -2^(n-1)
	hi := new(big.Int).Lsh(big.NewInt(1), uint(n-1))   // 2^(n-1)
	hi.Sub(hi, big.NewInt(1))
	if v.Cmp(lo) < 0 || v.Cmp(hi) > 0 {
		return bitform.Bits{}, bitform.NewError(bitform.OutOfRange, "int value out of range for dtype size")
	}
	u := new(big.Int)
	if v.Sign() < 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), uint(n))
		u.Add(v, mod)
	} else {
		u.Set(v)
	}
	b := bigToBitsMSB(u, n)
	return applyByteOrder(b, endian)
}

func unpackInt(b bitform.Bits, endian Endian) (*big.Int, error) {
	bb, err := applyByteOrder(b, endian)
	if err != nil {
		return nil, err
	}
	u := bitsToBigMSB(bb)
	n := bb.Len()
	half := new(big.Int).Lsh(big.NewInt(1), uint(n-1))
	if u.Cmp(half) >= 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), uint(n))
		u.Sub(u, mod)
	}
	return u, nil
}

func packFloat(v float64, n uint64, endian Endian) (bitform.Bits, error) {
	var buf []byte
	switch n {
	case 64:
		buf = make([]byte, 8)
		binary.BigEndian.PutUint64(buf, math.Float64bits(v))
	case 32:
		buf = make([]byte, 4)
		binary.BigEndian.PutUint32(buf, math.Float32bits(float32(v)))
	case 16:
		buf = make([]byte, 2)
		binary.BigEndian.PutUint16(buf, float64ToFloat16Bits(v))
	default:
		return bitform.Bits{}, bitform.NewError(bitform.BadDtype, "FLOAT size must be 16, 32, or 64")
	}
	switch endian {
	case LE:
		buf = reverseBytes(buf)
	case NATIVE:
		if binary.NativeEndian.Uint16([]byte{0x01, 0x00}) == 1 {
			buf = reverseBytes(buf)
		}
	}
	return bitform.NewBitsFromBytes(buf, int(n))
}

func unpackFloat(b bitform.Bits, endian Endian) (float64, error) {
	buf := b.ToBytes()
	switch endian {
	case LE:
		buf = reverseBytes(buf)
	case NATIVE:
		if binary.NativeEndian.Uint16([]byte{0x01, 0x00}) == 1 {
			buf = reverseBytes(buf)
		}
	}
	switch len(buf) {
	case 8:
		return math.Float64frombits(binary.BigEndian.Uint64(buf)), nil
	case 4:
		return float64(math.Float32frombits(binary.BigEndian.Uint32(buf))), nil
	case 2:
		return float16BitsToFloat64(binary.BigEndian.Uint16(buf)), nil
	default:
		return 0, bitform.NewError(bitform.BadDtype, "FLOAT size must be 16, 32, or 64")
	}
}

// float64ToFloat16Bits converts v to IEEE-754 binary16 bits. There is no
// standard-library or pack-grounded third-party binary16 codec, so this is a
// direct bit-level implementation: v is first converted to float32, whose
// mantissa is then truncated to binary16 precision (rounding toward zero,
// not to nearest). Values too large for binary16 become infinity, values
// below its smallest subnormal become zero, and a NaN stays a NaN keeping
// the leading bits of its payload. Every value this function produces is
// decoded exactly by float16BitsToFloat64, so re-packing an unpacked value
// reproduces the same bits.
func float64ToFloat16Bits(v float64) uint16 {
	bits32 := math.Float32bits(float32(v))
	sign := uint16((bits32 >> 16) & 0x8000)
	exp := int32((bits32>>23)&0xff) - 127 + 15
	mant := bits32 & 0x7fffff

	switch {
	case (bits32&0x7fffffff) == 0:
		return sign
	case (bits32>>23)&0xff == 0xff && mant != 0:
		return sign | 0x7e00 | uint16(mant>>13) // NaN
	case exp >= 0x1f:
		return sign | 0x7c00 // overflow to infinity
	case exp <= 0:
		if -exp >= 13 {
			return sign
		}
		mant |= 0x800000
		return sign | uint16(mant>>uint(14-exp))
	default:
		return sign | uint16(exp)<<10 | uint16(mant>>13)
	}
}

func float16BitsToFloat64(h uint16) float64 {
	sign := uint32(h&0x8000) << 16
	exp := (h >> 10) & 0x1f
	mant := uint32(h & 0x3ff)

	var bits32 uint32
	switch {
	case exp == 0 && mant == 0:
		bits32 = sign
	case exp == 0x1f:
		bits32 = sign | 0x7f800000 | (mant << 13)
	case exp == 0:
		// subnormal
		e := 1
		m := mant
		for m&0x400 == 0 {
			m <<= 1
			e--
		}
		m &= 0x3ff
		bits32 = sign | uint32(int32(e+127-15))<<23 | (m << 13)
	default:
		bits32 = sign | uint32(int32(exp)-15+127)<<23 | (mant << 13)
	}
	return float64(math.Float32frombits(bits32))
}
