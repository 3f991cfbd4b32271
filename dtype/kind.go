// Package dtype implements the typed codec layer (component E): packing
// and unpacking native values to and from bitform.Bits according to a
// closed taxonomy of Kinds, with configurable endianness.
package dtype

// Kind is one member of the closed dtype taxonomy.
type Kind int

const (
	UINT Kind = iota
	INT
	FLOAT
	BOOL
	BYTES
	HEX
	BIN
	OCT
	BITS
	PAD
)

func (k Kind) String() string {
	switch k {
	case UINT:
		return "uint"
	case INT:
		return "int"
	case FLOAT:
		return "float"
	case BOOL:
		return "bool"
	case BYTES:
		return "bytes"
	case HEX:
		return "hex"
	case BIN:
		return "bin"
	case OCT:
		return "oct"
	case BITS:
		return "bits"
	case PAD:
		return "pad"
	default:
		return "unknown"
	}
}

// Endian selects the byte order used to pack/unpack a fixed-width numeric
// dtype.
type Endian int

const (
	// NONE is the only legal endian value for a dtype whose size is not a
	// multiple of 8.
	NONE Endian = iota
	BE
	LE
	NATIVE
)

func (e Endian) String() string {
	switch e {
	case NONE:
		return ""
	case BE:
		return "_be"
	case LE:
		return "_le"
	case NATIVE:
		return "_ne"
	default:
		return "?"
	}
}

// Shape distinguishes the three dtype variants.
type Shape int

const (
	ShapeSingle Shape = iota
	ShapeArray
	ShapeTuple
)
