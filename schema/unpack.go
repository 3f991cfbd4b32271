package schema

import (
	"github.com/dsnet/bitform"
	"github.com/dsnet/golib/errs"
)

// unpackNode returns the structured value tree bound under n.
func unpackNode(n Node) (Value, error) {
	switch node := n.(type) {
	case *Field:
		if node.st == unbound {
			return Value{}, bitform.NewError(bitform.SchemaError, "field is unbound").WithField(node.name)
		}
		return Value{Name: node.name, Leaf: true, Dtype: node.val}, nil
	case *Format:
		children := make([]Value, 0, len(node.Children))
		for _, c := range node.Children {
			if c.Name() == "" {
				if _, isLet := c.(*Let); isLet {
					continue
				}
			}
			v, err := unpackNode(c)
			if err != nil {
				return Value{}, err
			}
			children = append(children, v)
		}
		return Value{Name: node.name, Children: children}, nil
	case *If:
		if node.tookThen {
			return unpackNode(node.Then)
		}
		if node.tookElse {
			return unpackNode(node.Else)
		}
		return Value{Name: node.name}, nil
	case *Repeat:
		children := make([]Value, len(node.iters))
		for i, it := range node.iters {
			v, err := unpackNode(it)
			if err != nil {
				return Value{}, err
			}
			children[i] = v
		}
		return Value{Name: node.name, Children: children}, nil
	case *Let:
		return Value{}, nil
	case Pass:
		return Value{}, nil
	}
	errs.Panic(bitform.NewError(bitform.SchemaError, "unknown schema node kind"))
	return Value{}, nil
}
