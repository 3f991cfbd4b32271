package dtype

// NaturalSize reports the bit size val would occupy if packed with an
// unsized dtype of kind d.Kind(), used when pack needs to materialize a
// concrete size for a BYTES/HEX/BIN/OCT/BITS field whose length is
// determined by the value itself rather than a declared or computed size.
func (d Dtype) NaturalSize(val Value) uint64 {
	switch d.kind {
	case BYTES:
		return uint64(len(val.Bytes)) * 8
	case HEX:
		return uint64(len(val.Str)) * 4
	case OCT:
		return uint64(len(val.Str)) * 3
	case BIN:
		return uint64(len(val.Str))
	case BITS:
		return val.Raw.Len()
	default:
		return d.size
	}
}
