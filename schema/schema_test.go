package schema

import (
	"math/big"
	"testing"

	"github.com/dsnet/bitform"
	"github.com/dsnet/bitform/dtype"
	"github.com/dsnet/bitform/expr"
)

func u8(t *testing.T) dtype.Dtype {
	t.Helper()
	d, err := dtype.NewSingle(dtype.UINT, dtype.NONE, 8, false)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestDuplicateSiblingNameRejected(t *testing.T) {
	a := NewField("x", u8(t), nil)
	b := NewField("x", u8(t), nil)
	if _, err := NewFormat("pair", a, b); err == nil {
		t.Fatal("expected SchemaError for duplicate sibling names")
	}
}

func TestParseUnpackRoundTripFormat(t *testing.T) {
	root, err := NewFormat("hdr",
		NewField("a", u8(t), nil),
		NewField("b", u8(t), nil),
	)
	if err != nil {
		t.Fatal(err)
	}
	s := New(root)
	raw := mustBits(t, []byte{0x01, 0x02})
	consumed, err := s.Parse(raw, 0)
	if err != nil {
		t.Fatal(err)
	}
	if consumed != 16 {
		t.Fatalf("consumed = %d, want 16", consumed)
	}
	val, err := s.Unpack()
	if err != nil {
		t.Fatal(err)
	}
	if len(val.Children) != 2 {
		t.Fatalf("children = %d, want 2", len(val.Children))
	}
	if val.Children[0].Dtype.Int.Int64() != 1 || val.Children[1].Dtype.Int.Int64() != 2 {
		t.Fatalf("values = %v, %v, want 1, 2", val.Children[0].Dtype.Int, val.Children[1].Dtype.Int)
	}
}

func TestConstFieldMismatch(t *testing.T) {
	root, err := NewFormat("hdr",
		NewConstField("magic", u8(t), nil, dtype.Value{Int: big.NewInt(0x7f)}),
	)
	if err != nil {
		t.Fatal(err)
	}
	s := New(root)
	raw := mustBits(t, []byte{0x01})
	if _, err := s.Parse(raw, 0); err == nil {
		t.Fatal("expected ConstMismatch for a non-matching const field")
	}
}

func TestConstFieldMatch(t *testing.T) {
	root, err := NewFormat("hdr",
		NewConstField("magic", u8(t), nil, dtype.Value{Int: big.NewInt(0x7f)}),
	)
	if err != nil {
		t.Fatal(err)
	}
	s := New(root)
	raw := mustBits(t, []byte{0x7f})
	if _, err := s.Parse(raw, 0); err != nil {
		t.Fatal(err)
	}
}

func TestIfBranchRecordedForToBits(t *testing.T) {
	cond := NewField("flag", mustBool(t), nil)
	then := NewField("then_val", u8(t), nil)
	els := NewField("else_val", u8(t), nil)
	ifNode := NewIf("choice", expr.NameRef{Path: "flag"}, then, els)

	root, err := NewFormat("root", cond, ifNode)
	if err != nil {
		t.Fatal(err)
	}
	s := New(root)

	// flag=true (1 bit) then then_val (8 bits); else_val untouched.
	raw := mustBools(t, append([]bool{true}, byteBools(0x42)...))
	if _, err := s.Parse(raw, 0); err != nil {
		t.Fatal(err)
	}

	out, err := s.ToBits()
	if err != nil {
		t.Fatal(err)
	}
	if out.Len() != 9 {
		t.Fatalf("ToBits len = %d, want 9 (1 bit flag + 8 bit then_val)", out.Len())
	}
}

func TestRepeatIterationIsolation(t *testing.T) {
	body, err := NewFormat("item",
		NewField("v", u8(t), nil),
	)
	if err != nil {
		t.Fatal(err)
	}
	rep := NewRepeat("items", expr.Literal{Value: expr.Int64(3)}, body)
	root, err := NewFormat("root", rep)
	if err != nil {
		t.Fatal(err)
	}
	s := New(root)
	raw := mustBits(t, []byte{10, 20, 30})
	consumed, err := s.Parse(raw, 0)
	if err != nil {
		t.Fatal(err)
	}
	if consumed != 24 {
		t.Fatalf("consumed = %d, want 24", consumed)
	}
	val, err := s.Unpack()
	if err != nil {
		t.Fatal(err)
	}
	items := val.Children[0]
	if len(items.Children) != 3 {
		t.Fatalf("repeat children = %d, want 3", len(items.Children))
	}
	want := []int64{10, 20, 30}
	for i, it := range items.Children {
		got := it.Children[0].Dtype.Int.Int64()
		if got != want[i] {
			t.Fatalf("item %d = %d, want %d", i, got, want[i])
		}
	}
}

func TestRepeatCountFromPriorField(t *testing.T) {
	root, err := NewFormat("root",
		NewField("n", u8(t), nil),
		NewRepeat("items", expr.NameRef{Path: "n"}, NewField("v", u8(t), nil)),
	)
	if err != nil {
		t.Fatal(err)
	}
	s := New(root)
	raw := mustBits(t, []byte{2, 100, 200})
	if _, err := s.Parse(raw, 0); err != nil {
		t.Fatal(err)
	}
	val, err := s.Unpack()
	if err != nil {
		t.Fatal(err)
	}
	items := val.Children[1]
	if len(items.Children) != 2 {
		t.Fatalf("repeat children = %d, want 2 (from field n=2)", len(items.Children))
	}
}

func TestPackBuildUnpackToBitsRoundTrip(t *testing.T) {
	root, err := NewFormat("hdr",
		NewField("a", u8(t), nil),
		NewField("b", u8(t), nil),
	)
	if err != nil {
		t.Fatal(err)
	}
	s := New(root)
	vals := NewValueSeq(
		dtype.Value{Int: big.NewInt(5)},
		dtype.Value{Int: big.NewInt(6)},
	)
	packed, err := s.Pack(vals)
	if err != nil {
		t.Fatal(err)
	}
	if packed.Len() != 16 {
		t.Fatalf("packed len = %d, want 16", packed.Len())
	}

	rebuilt, err := s.ToBits()
	if err != nil {
		t.Fatal(err)
	}
	if !packed.Equal(rebuilt) {
		t.Fatal("ToBits after Pack should reassemble identical bits")
	}

	val, err := s.Unpack()
	if err != nil {
		t.Fatal(err)
	}
	if val.Children[0].Dtype.Int.Int64() != 5 || val.Children[1].Dtype.Int.Int64() != 6 {
		t.Fatal("Unpack after Pack mismatch")
	}
}

func TestBuildWithoutBindLeavesTreeUnbound(t *testing.T) {
	root, err := NewFormat("hdr", NewField("a", u8(t), nil))
	if err != nil {
		t.Fatal(err)
	}
	s := New(root)
	vals := NewValueSeq(dtype.Value{Int: big.NewInt(9)})
	if _, err := s.Build(vals); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Unpack(); err == nil {
		t.Fatal("expected SchemaError: Build must not bind node state")
	}
}

func TestClearResetsNonConstFields(t *testing.T) {
	root, err := NewFormat("hdr",
		NewField("a", u8(t), nil),
		NewConstField("magic", u8(t), nil, dtype.Value{Int: big.NewInt(7)}),
	)
	if err != nil {
		t.Fatal(err)
	}
	s := New(root)
	raw := mustBits(t, []byte{1, 7})
	if _, err := s.Parse(raw, 0); err != nil {
		t.Fatal(err)
	}
	s.Clear()
	if _, err := s.Unpack(); err == nil {
		t.Fatal("expected SchemaError: 'a' should be unbound after Clear")
	}
}

func TestLetBindsWithoutEmittingBits(t *testing.T) {
	root, err := NewFormat("hdr",
		NewLet("double", expr.BinaryOp{Op: expr.OpMul, Left: expr.Literal{Value: expr.Int64(2)}, Right: expr.Literal{Value: expr.Int64(3)}}),
		NewField("v", u8(t), nil),
	)
	if err != nil {
		t.Fatal(err)
	}
	s := New(root)
	raw := mustBits(t, []byte{9})
	consumed, err := s.Parse(raw, 0)
	if err != nil {
		t.Fatal(err)
	}
	if consumed != 8 {
		t.Fatalf("consumed = %d, want 8 (Let contributes 0 bits)", consumed)
	}
}

func TestSizeExprDrivesFieldWidth(t *testing.T) {
	// The size expression for a Single-shaped dtype names a bit count
	// directly, so a field holding "16" sizes a 16-bit (2-byte) payload.
	root, err := NewFormat("msg",
		NewField("n", u8(t), nil),
		NewField("payload", mustUnsizedBytes(t), expr.NameRef{Path: "n"}),
	)
	if err != nil {
		t.Fatal(err)
	}
	s := New(root)
	raw := mustBits(t, []byte{16, 0xaa, 0xbb})
	consumed, err := s.Parse(raw, 0)
	if err != nil {
		t.Fatal(err)
	}
	if consumed != 24 {
		t.Fatalf("consumed = %d, want 24 (8 bit n + 16 bit payload)", consumed)
	}
}

// --- helpers ---

func mustBits(t *testing.T, b []byte) bitform.Bits {
	t.Helper()
	v, err := bitform.NewBitsFromBytes(b, -1)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func mustBools(t *testing.T, vals []bool) bitform.Bits {
	t.Helper()
	return bitform.NewBitsFromBools(vals)
}

func byteBools(b byte) []bool {
	out := make([]bool, 8)
	for i := 0; i < 8; i++ {
		out[i] = (b>>(7-i))&1 == 1
	}
	return out
}

func mustBool(t *testing.T) dtype.Dtype {
	t.Helper()
	d, err := dtype.NewSingle(dtype.BOOL, dtype.NONE, 1, false)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func mustUnsizedBytes(t *testing.T) dtype.Dtype {
	t.Helper()
	d, err := dtype.NewSingle(dtype.BYTES, dtype.NONE, 0, true)
	if err != nil {
		t.Fatal(err)
	}
	return d
}
