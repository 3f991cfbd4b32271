package schema

import (
	"math/big"

	"github.com/dsnet/bitform"
	"github.com/dsnet/bitform/dtype"
	"github.com/dsnet/bitform/expr"
)

// Value is one node of the structured value tree produced by Unpack. Leaf
// Fields carry a dtype.Value; Format/Repeat nodes carry named/indexed
// Children.
type Value struct {
	Name     string
	Leaf     bool
	Dtype    dtype.Value
	Children []Value
}

// ValueSeq is the input cursor consumed by Build and Pack: a flat,
// document-order sequence of values, one per non-const Field that pulls a
// value during the walk.
type ValueSeq struct {
	vals []dtype.Value
	pos  int
}

// NewValueSeq wraps vals as a ValueSeq.
func NewValueSeq(vals ...dtype.Value) *ValueSeq {
	return &ValueSeq{vals: vals}
}

func (s *ValueSeq) next() (dtype.Value, error) {
	if s == nil || s.pos >= len(s.vals) {
		return dtype.Value{}, bitform.NewError(bitform.ShortInput, "value sequence exhausted")
	}
	v := s.vals[s.pos]
	s.pos++
	return v, nil
}

// toExprValue projects a dtype.Value down to the scalar expr.Value domain
// so it can be bound into the expression environment and referenced by
// later size/count/condition expressions.
func toExprValue(v dtype.Value) expr.Value {
	switch {
	case v.Int != nil:
		return expr.IntValue(v.Int)
	case v.Str != "" || v.Bytes != nil || v.Raw.Len() > 0:
		return expr.IntValue(scalarLen(v))
	default:
		if v.Float != 0 {
			return expr.FloatValue(v.Float)
		}
		return expr.BoolValue(v.Bool)
	}
}

func toExprSeq(vals []dtype.Value) []expr.Value {
	out := make([]expr.Value, len(vals))
	for i, v := range vals {
		out[i] = toExprValue(v)
	}
	return out
}

// scalarLen is used when evaluating a size expression that refers to a
// previously bound value's own length rather than its numeric content.
func scalarLen(v dtype.Value) *big.Int {
	switch {
	case v.Bytes != nil:
		return big.NewInt(int64(len(v.Bytes)))
	case v.Str != "":
		return big.NewInt(int64(len(v.Str)))
	default:
		return big.NewInt(int64(v.Raw.Len()))
	}
}
