package dtype

import (
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustSingle(t *testing.T, kind Kind, endian Endian, size uint64, unsized bool) Dtype {
	t.Helper()
	d, err := NewSingle(kind, endian, size, unsized)
	if err != nil {
		t.Fatalf("NewSingle: %v", err)
	}
	return d
}

func TestUintPackUnpackRoundTrip(t *testing.T) {
	d := mustSingle(t, UINT, NONE, 12, false)
	val := Value{Int: big.NewInt(0xabc)}
	b, err := d.Pack(val)
	if err != nil {
		t.Fatal(err)
	}
	if b.Len() != 12 {
		t.Fatalf("packed length = %d, want 12", b.Len())
	}
	got, consumed, err := d.Unpack(b)
	if err != nil {
		t.Fatal(err)
	}
	if consumed != 12 || got.Int.Cmp(val.Int) != 0 {
		t.Fatalf("Unpack = (%v, %d), want (%v, 12)", got.Int, consumed, val.Int)
	}
}

func TestUintOutOfRange(t *testing.T) {
	d := mustSingle(t, UINT, NONE, 4, false)
	if _, err := d.Pack(Value{Int: big.NewInt(16)}); err == nil {
		t.Fatal("expected OutOfRange for a value that overflows the dtype size")
	}
	if _, err := d.Pack(Value{Int: big.NewInt(-1)}); err == nil {
		t.Fatal("expected OutOfRange for a negative uint value")
	}
}

func TestIntSignedRoundTrip(t *testing.T) {
	d := mustSingle(t, INT, NONE, 8, false)
	for _, v := range []int64{0, 1, -1, 127, -128} {
		b, err := d.Pack(Value{Int: big.NewInt(v)})
		if err != nil {
			t.Fatalf("Pack(%d): %v", v, err)
		}
		got, _, err := d.Unpack(b)
		if err != nil {
			t.Fatalf("Unpack(%d): %v", v, err)
		}
		if got.Int.Int64() != v {
			t.Fatalf("round trip %d -> %v", v, got.Int)
		}
	}
	if _, err := d.Pack(Value{Int: big.NewInt(128)}); err == nil {
		t.Fatal("expected OutOfRange for int8 overflow")
	}
	if _, err := d.Pack(Value{Int: big.NewInt(-129)}); err == nil {
		t.Fatal("expected OutOfRange for int8 underflow")
	}
}

func TestUintEndianness(t *testing.T) {
	be := mustSingle(t, UINT, BE, 16, false)
	le := mustSingle(t, UINT, LE, 16, false)
	val := Value{Int: big.NewInt(0x0102)}

	bBits, err := be.Pack(val)
	if err != nil {
		t.Fatal(err)
	}
	lBits, err := le.Pack(val)
	if err != nil {
		t.Fatal(err)
	}
	if bBits.Equal(lBits) {
		t.Fatal("BE and LE packings of a non-symmetric value should differ")
	}
	gotLE, _, err := le.Unpack(lBits)
	if err != nil {
		t.Fatal(err)
	}
	if gotLE.Int.Cmp(val.Int) != 0 {
		t.Fatalf("LE round trip = %v, want %v", gotLE.Int, val.Int)
	}
}

func TestFloatRoundTrip(t *testing.T) {
	for _, size := range []uint64{16, 32, 64} {
		d := mustSingle(t, FLOAT, NONE, size, false)
		for _, v := range []float64{0, 1, -1, 2.5, -3.5} {
			b, err := d.Pack(FloatValue(v))
			if err != nil {
				t.Fatalf("size %d Pack(%v): %v", size, v, err)
			}
			got, _, err := d.Unpack(b)
			if err != nil {
				t.Fatalf("size %d Unpack(%v): %v", size, v, err)
			}
			if got.Float != v {
				t.Fatalf("size %d round trip %v -> %v", size, v, got.Float)
			}
		}
	}
}

func TestBoolRequiresSizeOne(t *testing.T) {
	if _, err := NewSingle(BOOL, NONE, 1, false); err != nil {
		t.Fatal(err)
	}
	if _, err := NewSingle(BOOL, NONE, 2, false); err == nil {
		t.Fatal("expected BadDtype for BOOL size != 1")
	}
}

func TestBytesLengthMismatch(t *testing.T) {
	d := mustSingle(t, BYTES, NONE, 16, false)
	if _, err := d.Pack(BytesValue([]byte{1})); err == nil {
		t.Fatal("expected LengthMismatch for a bytes value shorter than the dtype")
	}
	b, err := d.Pack(BytesValue([]byte{1, 2}))
	if err != nil {
		t.Fatal(err)
	}
	got, _, err := d.Unpack(b)
	if err != nil {
		t.Fatal(err)
	}
	if !cmp.Equal(got.Bytes, []byte{1, 2}) {
		t.Fatalf("round trip = %v, want [1 2]", got.Bytes)
	}
}

func TestHexOctBinStrings(t *testing.T) {
	hex := mustSingle(t, HEX, NONE, 8, false)
	b, err := hex.Pack(StrValue("ab"))
	if err != nil {
		t.Fatal(err)
	}
	got, _, err := hex.Unpack(b)
	if err != nil {
		t.Fatal(err)
	}
	if got.Str != "ab" {
		t.Fatalf("hex round trip = %q, want ab", got.Str)
	}

	bin := mustSingle(t, BIN, NONE, 4, false)
	bb, err := bin.Pack(StrValue("1010"))
	if err != nil {
		t.Fatal(err)
	}
	gotBin, _, err := bin.Unpack(bb)
	if err != nil {
		t.Fatal(err)
	}
	if gotBin.Str != "1010" {
		t.Fatalf("bin round trip = %q, want 1010", gotBin.Str)
	}
}

func TestArrayRoundTrip(t *testing.T) {
	item := mustSingle(t, UINT, NONE, 8, false)
	arr, err := NewArray(item, 3, false)
	if err != nil {
		t.Fatal(err)
	}
	val := ArrayValue([]Value{Int64Value(1), Int64Value(2), Int64Value(3)})
	b, err := arr.Pack(val)
	if err != nil {
		t.Fatal(err)
	}
	if b.Len() != 24 {
		t.Fatalf("packed length = %d, want 24", b.Len())
	}
	got, consumed, err := arr.Unpack(b)
	if err != nil {
		t.Fatal(err)
	}
	if consumed != 24 || len(got.Elems) != 3 {
		t.Fatalf("Unpack = (%d elems, %d consumed)", len(got.Elems), consumed)
	}
	for i, want := range []int64{1, 2, 3} {
		if got.Elems[i].Int.Int64() != want {
			t.Fatalf("elem %d = %v, want %d", i, got.Elems[i].Int, want)
		}
	}
}

func TestArrayCountMismatch(t *testing.T) {
	item := mustSingle(t, UINT, NONE, 8, false)
	arr, err := NewArray(item, 2, false)
	if err != nil {
		t.Fatal(err)
	}
	val := ArrayValue([]Value{Int64Value(1)})
	if _, err := arr.Pack(val); err == nil {
		t.Fatal("expected LengthMismatch for a short array value")
	}
}

func TestOpenCountArrayUnpack(t *testing.T) {
	item := mustSingle(t, UINT, NONE, 8, false)
	arr, err := NewArray(item, 0, true)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewSingle(BYTES, NONE, 24, false)
	if err != nil {
		t.Fatal(err)
	}
	raw, err := b.Pack(BytesValue([]byte{10, 20, 30}))
	if err != nil {
		t.Fatal(err)
	}
	got, consumed, err := arr.Unpack(raw)
	if err != nil {
		t.Fatal(err)
	}
	if consumed != 24 || len(got.Elems) != 3 {
		t.Fatalf("open-count Unpack = (%d elems, %d consumed), want (3, 24)", len(got.Elems), consumed)
	}
}

func TestTupleRoundTrip(t *testing.T) {
	u8 := mustSingle(t, UINT, NONE, 8, false)
	f32 := mustSingle(t, FLOAT, NONE, 32, false)
	tup := NewTuple(u8, f32)

	val := ArrayValue([]Value{Int64Value(42), FloatValue(1.5)})
	b, err := tup.Pack(val)
	if err != nil {
		t.Fatal(err)
	}
	if b.Len() != 40 {
		t.Fatalf("packed length = %d, want 40", b.Len())
	}
	got, consumed, err := tup.Unpack(b)
	if err != nil {
		t.Fatal(err)
	}
	if consumed != 40 {
		t.Fatalf("consumed = %d, want 40", consumed)
	}
	if got.Elems[0].Int.Int64() != 42 || got.Elems[1].Float != 1.5 {
		t.Fatalf("tuple round trip = %v", got.Elems)
	}
}

func TestWithSizeSingle(t *testing.T) {
	d := mustSingle(t, UINT, NONE, 0, true)
	eff, err := d.WithSize(10)
	if err != nil {
		t.Fatal(err)
	}
	if eff.Size() != 10 {
		t.Fatalf("Size() = %d, want 10", eff.Size())
	}
}

func TestWithSizeArrayIsItemCount(t *testing.T) {
	item := mustSingle(t, UINT, NONE, 8, false)
	d, err := NewArray(item, 0, true)
	if err != nil {
		t.Fatal(err)
	}
	eff, err := d.WithSize(5)
	if err != nil {
		t.Fatal(err)
	}
	if eff.Count() != 5 {
		t.Fatalf("Count() = %d, want 5", eff.Count())
	}
	if eff.Size() != 40 {
		t.Fatalf("Size() = %d, want 40 (5 items * 8 bits)", eff.Size())
	}
}

func TestWithSizeTupleRejected(t *testing.T) {
	tup := NewTuple(mustSingle(t, UINT, NONE, 8, false))
	if _, err := tup.WithSize(1); err == nil {
		t.Fatal("expected an error resolving a size on a tuple dtype")
	}
}

func TestNaturalSizeUnsizedKinds(t *testing.T) {
	bytesDtype := mustSingle(t, BYTES, NONE, 0, true)
	if got := bytesDtype.NaturalSize(BytesValue([]byte{1, 2, 3})); got != 24 {
		t.Fatalf("NaturalSize(BYTES) = %d, want 24", got)
	}
	hexDtype := mustSingle(t, HEX, NONE, 0, true)
	if got := hexDtype.NaturalSize(StrValue("abcd")); got != 16 {
		t.Fatalf("NaturalSize(HEX) = %d, want 16", got)
	}
}

func TestDtypeString(t *testing.T) {
	d := mustSingle(t, UINT, BE, 16, false)
	if got := d.String(); got != "uint_be16" {
		t.Fatalf("String() = %q, want uint_be16", got)
	}
}
