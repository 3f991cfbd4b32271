package schema

import (
	"github.com/dsnet/bitform"
	"github.com/dsnet/golib/errs"
)

// toBitsNode reassembles bits from the current bound state of the tree
// under n, without re-evaluating any expression. A Repeat with count zero
// contributes nothing; an untaken If branch contributes nothing.
func toBitsNode(n Node) (bitform.Bits, error) {
	switch node := n.(type) {
	case *Field:
		if node.st == unbound {
			return bitform.Bits{}, bitform.NewError(bitform.SchemaError, "field is unbound").WithField(node.name)
		}
		return node.bits, nil
	case *Format:
		parts := make([]bitform.Bits, len(node.Children))
		for i, c := range node.Children {
			b, err := toBitsNode(c)
			if err != nil {
				return bitform.Bits{}, err
			}
			parts[i] = b
		}
		return bitform.Concat(parts...)
	case *If:
		if node.tookThen {
			return toBitsNode(node.Then)
		}
		if node.tookElse {
			return toBitsNode(node.Else)
		}
		return bitform.Zeros(0), nil
	case *Repeat:
		parts := make([]bitform.Bits, len(node.iters))
		for i, it := range node.iters {
			b, err := toBitsNode(it)
			if err != nil {
				return bitform.Bits{}, err
			}
			parts[i] = b
		}
		return bitform.Concat(parts...)
	case *Let:
		return bitform.Zeros(0), nil
	case Pass:
		return bitform.Zeros(0), nil
	}
	errs.Panic(bitform.NewError(bitform.SchemaError, "unknown schema node kind"))
	return bitform.Bits{}, nil
}
