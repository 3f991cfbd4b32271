// Package bitutil is a collection of bit-level helpers shared by the
// bitform packages.
//
// For performance reasons, these functions lack strong error checking and
// require that the caller ensure that strict invariants are kept.
package bitutil

var (
	// ReverseLUT maps a byte to its bit-reversed form.
	ReverseLUT [256]byte

	// PopcountLUT maps a byte to its number of set bits.
	PopcountLUT [256]byte
)

func init() {
	for i := range ReverseLUT {
		b := uint8(i)
		b = (b&0xaa)>>1 | (b&0x55)<<1
		b = (b&0xcc)>>2 | (b&0x33)<<2
		b = (b&0xf0)>>4 | (b&0x0f)<<4
		ReverseLUT[i] = b

		var n byte
		for v := uint8(i); v != 0; v &= v - 1 {
			n++
		}
		PopcountLUT[i] = n
	}
}

// ReverseByte reverses the bits of a single byte, MSB first.
func ReverseByte(b byte) byte { return ReverseLUT[b] }
