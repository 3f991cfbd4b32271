package bitform

import (
	"testing"

	"github.com/dsnet/bitform/internal/testutil"
)

func binBits(t *testing.T, s string) Bits {
	t.Helper()
	vals := make([]bool, len(s))
	for i, c := range s {
		switch c {
		case '0':
			vals[i] = false
		case '1':
			vals[i] = true
		default:
			t.Fatalf("binBits: invalid character %q in %q", c, s)
		}
	}
	return NewBitsFromBools(vals)
}

func hexBits(t *testing.T, s string) Bits {
	t.Helper()
	raw := testutil.MustDecodeHex(s)
	b, err := NewBitsFromBytes(raw, -1)
	if err != nil {
		t.Fatalf("NewBitsFromBytes: %v", err)
	}
	return b
}

func TestNewBitsFromBytesTrim(t *testing.T) {
	b, err := NewBitsFromBytes([]byte{0xff, 0x00}, 12)
	if err != nil {
		t.Fatal(err)
	}
	if b.Len() != 12 {
		t.Fatalf("Len() = %d, want 12", b.Len())
	}
	if got, _ := b.At(11); got {
		t.Fatal("bit 11 should come from the zero byte")
	}
	if _, err := NewBitsFromBytes([]byte{0x00}, 9); err == nil {
		t.Fatal("expected OutOfRange for nbits exceeding data")
	}
}

func TestZerosOnes(t *testing.T) {
	z := Zeros(10)
	if z.Count(true) != 0 || z.Len() != 10 {
		t.Fatalf("Zeros(10): count(true)=%d len=%d", z.Count(true), z.Len())
	}
	o := Ones(10)
	if o.Count(true) != 10 {
		t.Fatalf("Ones(10): count(true)=%d, want 10", o.Count(true))
	}
}

func TestSliceIsZeroCopy(t *testing.T) {
	b := hexBits(t, "abcd")
	s, err := b.Slice(4, 12)
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 8 {
		t.Fatalf("Len() = %d, want 8", s.Len())
	}
	want := hexBits(t, "bc")
	if !s.Equal(want) {
		t.Fatalf("slice = %s, want %s", s, want)
	}
}

func TestSliceOutOfRange(t *testing.T) {
	b := Zeros(8)
	if _, err := b.Slice(0, 9); err == nil {
		t.Fatal("expected error slicing past Len()")
	}
	if _, err := b.Slice(5, 3); err == nil {
		t.Fatal("expected error for a > b")
	}
}

func TestConcat(t *testing.T) {
	a := binBits(t, "1010")
	b := binBits(t, "1100")
	got, err := Concat(a, b)
	if err != nil {
		t.Fatal(err)
	}
	want := binBits(t, "10101100")
	if !got.Equal(want) {
		t.Fatalf("Concat = %s, want %s", got, want)
	}
}

func TestBitwiseAlgebra(t *testing.T) {
	a := binBits(t, "1100")
	b := binBits(t, "1010")

	and, err := a.And(b)
	if err != nil {
		t.Fatal(err)
	}
	if want := binBits(t, "1000"); !and.Equal(want) {
		t.Fatalf("And = %s, want %s", and, want)
	}

	or, err := a.Or(b)
	if err != nil {
		t.Fatal(err)
	}
	if want := binBits(t, "1110"); !or.Equal(want) {
		t.Fatalf("Or = %s, want %s", or, want)
	}

	xor, err := a.Xor(b)
	if err != nil {
		t.Fatal(err)
	}
	if want := binBits(t, "0110"); !xor.Equal(want) {
		t.Fatalf("Xor = %s, want %s", xor, want)
	}

	if want := binBits(t, "0011"); !a.Not().Equal(want) {
		t.Fatalf("Not = %s, want %s", a.Not(), want)
	}

	if _, err := a.And(binBits(t, "1")); err == nil {
		t.Fatal("expected LengthMismatch for unequal operands")
	}
}

func TestFindByteAligned(t *testing.T) {
	haystack := hexBits(t, "00ff0000ff00")
	needle := hexBits(t, "ff")
	i, ok := haystack.Find(needle, 0, true)
	if !ok || i != 8 {
		t.Fatalf("Find = (%d, %v), want (8, true)", i, ok)
	}
	j, ok := haystack.RFind(needle, 0, true)
	if !ok || j != 32 {
		t.Fatalf("RFind = (%d, %v), want (32, true)", j, ok)
	}
}

func TestFindAllNonOverlapping(t *testing.T) {
	haystack := binBits(t, "1011011011")
	needle := binBits(t, "011")
	var idxs []uint64
	it := haystack.FindAll(needle, 0, false)
	for {
		i, ok := it.Next()
		if !ok {
			break
		}
		idxs = append(idxs, i)
	}
	if len(idxs) != 3 || idxs[0] != 1 || idxs[1] != 4 || idxs[2] != 7 {
		t.Fatalf("FindAll indices = %v, want [1 4 7]", idxs)
	}
}

func TestRFindAllNonOverlapping(t *testing.T) {
	haystack := binBits(t, "1011011011")
	needle := binBits(t, "011")
	var idxs []uint64
	it := haystack.RFindAll(needle, 0, false)
	for {
		i, ok := it.Next()
		if !ok {
			break
		}
		idxs = append(idxs, i)
	}
	if len(idxs) != 3 || idxs[0] != 7 || idxs[1] != 4 || idxs[2] != 1 {
		t.Fatalf("RFindAll indices = %v, want [7 4 1]", idxs)
	}
}

func TestRFindAllRespectsLowerBound(t *testing.T) {
	haystack := binBits(t, "1011011011")
	needle := binBits(t, "011")
	it := haystack.RFindAll(needle, 2, false)
	var idxs []uint64
	for {
		i, ok := it.Next()
		if !ok {
			break
		}
		idxs = append(idxs, i)
	}
	if len(idxs) != 2 || idxs[0] != 7 || idxs[1] != 4 {
		t.Fatalf("RFindAll with start=2 indices = %v, want [7 4]", idxs)
	}
}

func TestChunker(t *testing.T) {
	b := hexBits(t, "0102030405")
	it := b.Chunks(16)
	var got []Bits
	for {
		c, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, c)
	}
	if len(got) != 3 {
		t.Fatalf("got %d chunks, want 3", len(got))
	}
	if got[2].Len() != 8 {
		t.Fatalf("final chunk len = %d, want 8", got[2].Len())
	}
}

func TestMutableAppendInsertReplace(t *testing.T) {
	m := NewMutableBits()
	m.Append(binBits(t, "1100"))
	m.Append(binBits(t, "0011"))
	if want := binBits(t, "11000011"); !m.Freeze().Equal(want) {
		t.Fatal("Append sequence mismatch")
	}

	m2 := binBits(t, "1111").Thaw()
	m2.Prepend(binBits(t, "0000"))
	if want := binBits(t, "00001111"); !m2.Freeze().Equal(want) {
		t.Fatal("Prepend mismatch")
	}

	m3 := binBits(t, "1111").Thaw()
	if _, err := m3.Insert(2, binBits(t, "00")); err != nil {
		t.Fatal(err)
	}
	if want := binBits(t, "110011"); !m3.Freeze().Equal(want) {
		t.Fatal("Insert mismatch")
	}

	m4 := hexBits(t, "00ff00ff00").Thaw()
	n, err := m4.Replace(hexBits(t, "ff"), hexBits(t, "aa"), 0, -1, true)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("Replace count = %d, want 2", n)
	}
	if want := hexBits(t, "00aa00aa00"); !m4.Freeze().Equal(want) {
		t.Fatal("Replace content mismatch")
	}
}

func TestRolRor(t *testing.T) {
	m := binBits(t, "11000000").Thaw()
	m.Rol(2)
	if want := binBits(t, "00000011"); !m.Freeze().Equal(want) {
		t.Fatalf("Rol(2) = %s, want %s", m, want)
	}

	m2 := binBits(t, "00000011").Thaw()
	m2.Ror(2)
	if want := binBits(t, "11000000"); !m2.Freeze().Equal(want) {
		t.Fatalf("Ror(2) = %s, want %s", m2, want)
	}
}

func TestByteSwap(t *testing.T) {
	m := hexBits(t, "0102").Thaw()
	if _, err := m.ByteSwap(2); err != nil {
		t.Fatal(err)
	}
	if want := hexBits(t, "0201"); !m.Freeze().Equal(want) {
		t.Fatalf("ByteSwap(2) = %s, want %s", m, want)
	}

	m2 := binBits(t, "111").Thaw()
	if _, err := m2.ByteSwap(1); err == nil {
		t.Fatal("expected Alignment error for a non-byte-multiple length")
	}
}

func TestThawFreezeRoundTrip(t *testing.T) {
	b := hexBits(t, "1fff")
	m := b.Thaw()
	if !m.Freeze().Equal(b) {
		t.Fatal("Thaw/Freeze round trip changed content")
	}
}

func TestStringPicksHexOrBinary(t *testing.T) {
	if got := hexBits(t, "ab").String(); got != "0xab" {
		t.Fatalf("String() = %q, want 0xab", got)
	}
	if got := binBits(t, "101").String(); got != "0b101" {
		t.Fatalf("String() = %q, want 0b101", got)
	}
}

func TestDeterministicRandom(t *testing.T) {
	a := NewBitsFromRandom(42, 64)
	b := NewBitsFromRandom(42, 64)
	if !a.Equal(b) {
		t.Fatal("NewBitsFromRandom is not deterministic for a fixed seed")
	}
}
