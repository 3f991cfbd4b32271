package expr

import (
	"math"
	"math/big"

	"github.com/dsnet/bitform"
	"github.com/dsnet/golib/errs"
)

// Eval evaluates node eagerly against env. It returns UnresolvedName if
// node references a name not yet bound in env, and Arithmetic on division
// or modulo by zero. Internal invariant violations (an expression node or
// operator outside the closed taxonomy reaching here) are recovered at this
// boundary rather than propagated as ordinary errors.
func Eval(node Node, env *Env) (v Value, err error) {
	defer errs.Recover(&err)
	return evalNode(node, env)
}

func evalNode(node Node, env *Env) (Value, error) {
	switch n := node.(type) {
	case Literal:
		return n.Value, nil
	case NameRef:
		return env.Lookup(n.Path)
	case UnaryOp:
		return evalUnary(n, env)
	case BinaryOp:
		return evalBinary(n, env)
	case Index:
		return evalIndex(n, env)
	case Conditional:
		c, err := evalNode(n.Cond, env)
		if err != nil {
			return Value{}, err
		}
		if c.Truth() {
			return evalNode(n.Then, env)
		}
		return evalNode(n.Else, env)
	}
	errs.Panic(bitform.NewError(bitform.SchemaError, "unknown expression node"))
	return Value{}, nil
}

func evalUnary(n UnaryOp, env *Env) (Value, error) {
	v, err := evalNode(n.Operand, env)
	if err != nil {
		return Value{}, err
	}
	switch n.Op {
	case OpNeg:
		switch v.Kind {
		case KindInt:
			return IntValue(new(big.Int).Neg(v.Int)), nil
		case KindFloat:
			return FloatValue(-v.Float), nil
		}
		return Value{}, bitform.NewError(bitform.Arithmetic, "cannot negate a bool")
	case OpNot:
		return BoolValue(!v.Truth()), nil
	}
	errs.Panic(bitform.NewError(bitform.SchemaError, "unknown unary operator"))
	return Value{}, nil
}

func evalIndex(n Index, env *Env) (Value, error) {
	ref, ok := n.Base.(NameRef)
	if !ok {
		return Value{}, bitform.NewError(bitform.BadSyntax, "index base must be a name")
	}
	iv, err := evalNode(n.Sub, env)
	if err != nil {
		return Value{}, err
	}
	if iv.Kind != KindInt {
		return Value{}, bitform.NewError(bitform.BadDtype, "index must be an integer")
	}
	return env.Lookup(ref.Path + "[" + iv.Int.String() + "]")
}

func evalBinary(n BinaryOp, env *Env) (Value, error) {
	l, err := evalNode(n.Left, env)
	if err != nil {
		return Value{}, err
	}
	r, err := evalNode(n.Right, env)
	if err != nil {
		return Value{}, err
	}

	switch n.Op {
	case OpAnd:
		return BoolValue(l.Truth() && r.Truth()), nil
	case OpOr:
		return BoolValue(l.Truth() || r.Truth()), nil
	}

	if l.Kind == KindFloat || r.Kind == KindFloat {
		return evalFloatBinary(n.Op, toFloat(l), toFloat(r))
	}
	if l.Kind == KindBool || r.Kind == KindBool {
		return Value{}, bitform.NewError(bitform.Arithmetic, "arithmetic on a bool operand")
	}
	return evalIntBinary(n.Op, l.Int, r.Int)
}

func toFloat(v Value) float64 {
	if v.Kind == KindFloat {
		return v.Float
	}
	f := new(big.Float).SetInt(v.Int)
	out, _ := f.Float64()
	return out
}

func evalFloatBinary(op BinOp, l, r float64) (Value, error) {
	switch op {
	case OpAdd:
		return FloatValue(l + r), nil
	case OpSub:
		return FloatValue(l - r), nil
	case OpMul:
		return FloatValue(l * r), nil
	case OpDiv:
		if r == 0 {
			return Value{}, bitform.NewError(bitform.Arithmetic, "division by zero")
		}
		return FloatValue(l / r), nil
	case OpMod:
		if r == 0 {
			return Value{}, bitform.NewError(bitform.Arithmetic, "division by zero")
		}
		return FloatValue(math.Mod(l, r)), nil
	case OpEq:
		return BoolValue(l == r), nil
	case OpNe:
		return BoolValue(l != r), nil
	case OpLt:
		return BoolValue(l < r), nil
	case OpLe:
		return BoolValue(l <= r), nil
	case OpGt:
		return BoolValue(l > r), nil
	case OpGe:
		return BoolValue(l >= r), nil
	}
	errs.Panic(bitform.NewError(bitform.SchemaError, "operator not valid on float operands"))
	return Value{}, nil
}

func evalIntBinary(op BinOp, l, r *big.Int) (Value, error) {
	switch op {
	case OpAdd:
		return IntValue(new(big.Int).Add(l, r)), nil
	case OpSub:
		return IntValue(new(big.Int).Sub(l, r)), nil
	case OpMul:
		return IntValue(new(big.Int).Mul(l, r)), nil
	case OpDiv:
		if r.Sign() == 0 {
			return Value{}, bitform.NewError(bitform.Arithmetic, "division by zero")
		}
		return IntValue(new(big.Int).Quo(l, r)), nil
	case OpMod:
		if r.Sign() == 0 {
			return Value{}, bitform.NewError(bitform.Arithmetic, "division by zero")
		}
		return IntValue(new(big.Int).Rem(l, r)), nil
	case OpEq:
		return BoolValue(l.Cmp(r) == 0), nil
	case OpNe:
		return BoolValue(l.Cmp(r) != 0), nil
	case OpLt:
		return BoolValue(l.Cmp(r) < 0), nil
	case OpLe:
		return BoolValue(l.Cmp(r) <= 0), nil
	case OpGt:
		return BoolValue(l.Cmp(r) > 0), nil
	case OpGe:
		return BoolValue(l.Cmp(r) >= 0), nil
	}
	errs.Panic(bitform.NewError(bitform.SchemaError, "operator not valid on integer operands"))
	return Value{}, nil
}

// AsCount coerces v to a non-negative int for use as a Repeat count. It
// returns OutOfRange if v is not an integer >= 0.
func AsCount(v Value) (uint64, error) {
	if v.Kind != KindInt {
		return 0, bitform.NewError(bitform.OutOfRange, "repeat count must be an integer")
	}
	if v.Int.Sign() < 0 {
		return 0, bitform.NewError(bitform.OutOfRange, "repeat count must be non-negative")
	}
	return v.Int.Uint64(), nil
}
