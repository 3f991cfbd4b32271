package expr

import (
	"math/big"
	"testing"
)

func TestEvalLiteralsAndArithmetic(t *testing.T) {
	env := NewEnv(nil)
	node := BinaryOp{Op: OpAdd, Left: Literal{Int64(2)}, Right: Literal{Int64(3)}}
	got, err := Eval(node, env)
	if err != nil {
		t.Fatal(err)
	}
	if got.Int.Int64() != 5 {
		t.Fatalf("2+3 = %v, want 5", got.Int)
	}
}

func TestEvalDivisionByZero(t *testing.T) {
	env := NewEnv(nil)
	node := BinaryOp{Op: OpDiv, Left: Literal{Int64(1)}, Right: Literal{Int64(0)}}
	if _, err := Eval(node, env); err == nil {
		t.Fatal("expected Arithmetic error for division by zero")
	}
}

func TestEvalFloatPromotion(t *testing.T) {
	env := NewEnv(nil)
	node := BinaryOp{Op: OpMul, Left: Literal{Int64(2)}, Right: Literal{FloatValue(1.5)}}
	got, err := Eval(node, env)
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != KindFloat || got.Float != 3.0 {
		t.Fatalf("2*1.5 = %v, want float 3.0", got)
	}
}

func TestEvalBoolArithmeticRejected(t *testing.T) {
	env := NewEnv(nil)
	node := BinaryOp{Op: OpAdd, Left: Literal{BoolValue(true)}, Right: Literal{Int64(1)}}
	if _, err := Eval(node, env); err == nil {
		t.Fatal("expected Arithmetic error adding a bool operand")
	}
}

func TestEvalLogicalOr(t *testing.T) {
	env := NewEnv(nil)
	node := BinaryOp{Op: OpOr, Left: Literal{BoolValue(true)}, Right: Literal{BoolValue(false)}}
	got, err := Eval(node, env)
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != KindBool || !got.Bool {
		t.Fatalf("true || false = %v, want true", got)
	}
}

func TestEvalConditional(t *testing.T) {
	env := NewEnv(nil)
	node := Conditional{Cond: Literal{BoolValue(false)}, Then: Literal{Int64(1)}, Else: Literal{Int64(2)}}
	got, err := Eval(node, env)
	if err != nil {
		t.Fatal(err)
	}
	if got.Int.Int64() != 2 {
		t.Fatalf("conditional = %v, want 2", got.Int)
	}
}

func TestEvalUnresolvedName(t *testing.T) {
	env := NewEnv(nil)
	if _, err := Eval(NameRef{Path: "missing"}, env); err == nil {
		t.Fatal("expected UnresolvedName for an unbound name")
	}
}

func TestEnvScalarLookup(t *testing.T) {
	env := NewEnv(nil)
	env.Bind("w", Int64(7))
	got, err := Eval(NameRef{Path: "w"}, env)
	if err != nil {
		t.Fatal(err)
	}
	if got.Int.Int64() != 7 {
		t.Fatalf("w = %v, want 7", got.Int)
	}
}

func TestEnvDottedPath(t *testing.T) {
	root := NewEnv(nil)
	child := NewEnv(root)
	child.Bind("size", Int64(40))
	root.BindScope("header", child)

	got, err := Eval(NameRef{Path: "header.size"}, root)
	if err != nil {
		t.Fatal(err)
	}
	if got.Int.Int64() != 40 {
		t.Fatalf("header.size = %v, want 40", got.Int)
	}
}

func TestEnvIndexedSeq(t *testing.T) {
	env := NewEnv(nil)
	env.BindSeq("lengths", []Value{Int64(10), Int64(20), Int64(30)})

	got, err := Eval(NameRef{Path: "lengths[1]"}, env)
	if err != nil {
		t.Fatal(err)
	}
	if got.Int.Int64() != 20 {
		t.Fatalf("lengths[1] = %v, want 20", got.Int)
	}

	if _, err := Eval(NameRef{Path: "lengths[5]"}, env); err == nil {
		t.Fatal("expected OutOfRange for an index past the sequence length")
	}
}

func TestEnvComputedIndex(t *testing.T) {
	env := NewEnv(nil)
	env.BindSeq("lengths", []Value{Int64(10), Int64(20), Int64(30)})

	node := Index{Base: NameRef{Path: "lengths"}, Sub: Literal{Int64(2)}}
	got, err := Eval(node, env)
	if err != nil {
		t.Fatal(err)
	}
	if got.Int.Int64() != 30 {
		t.Fatalf("lengths[computed 2] = %v, want 30", got.Int)
	}
}

func TestEnvSiblingScopesNotVisible(t *testing.T) {
	root := NewEnv(nil)
	a := NewEnv(root)
	a.Bind("x", Int64(1))
	root.BindScope("a", a)

	b := NewEnv(root)
	root.BindScope("b", b)

	if _, err := Eval(NameRef{Path: "b.x"}, root); err == nil {
		t.Fatal("expected UnresolvedName: b's scope has no binding named x")
	}
}

func TestEnvRepeatOfFormatIndexedScopes(t *testing.T) {
	root := NewEnv(nil)
	var kids []*Env
	for i, v := range []int64{1, 2, 3} {
		k := NewEnv(root)
		k.Bind("n", Int64(v))
		kids = append(kids, k)
		_ = i
	}
	root.BindSeqScopes("items", kids)

	got, err := Eval(NameRef{Path: "items[1].n"}, root)
	if err != nil {
		t.Fatal(err)
	}
	if got.Int.Int64() != 2 {
		t.Fatalf("items[1].n = %v, want 2", got.Int)
	}
}

func TestAsCount(t *testing.T) {
	n, err := AsCount(Int64(3))
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("AsCount = %d, want 3", n)
	}
	if _, err := AsCount(Int64(-1)); err == nil {
		t.Fatal("expected OutOfRange for a negative count")
	}
	if _, err := AsCount(FloatValue(1.5)); err == nil {
		t.Fatal("expected OutOfRange for a non-integer count")
	}
}

func TestIntValueArbitraryPrecision(t *testing.T) {
	huge, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	env := NewEnv(nil)
	node := BinaryOp{Op: OpAdd, Left: Literal{IntValue(huge)}, Right: Literal{Int64(1)}}
	got, err := Eval(node, env)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := new(big.Int).SetString("123456789012345678901234567891", 10)
	if got.Int.Cmp(want) != 0 {
		t.Fatalf("huge+1 = %v, want %v", got.Int, want)
	}
}
