package schema

import "github.com/dsnet/bitform/dtype"

// cloneNode returns a deep copy of n with all runtime state reset to
// unbound. Repeat uses this to give every iteration of its body its own
// independent binding state, since a schema tree's node *definitions* are
// shared but each traversal's *bindings* must not be.
func cloneNode(n Node) Node {
	switch v := n.(type) {
	case *Field:
		cp := *v
		cp.st = unbound
		cp.val = dtype.Value{}
		cp.elems = nil
		return &cp
	case *Format:
		children := make([]Node, len(v.Children))
		for i, c := range v.Children {
			children[i] = cloneNode(c)
		}
		return &Format{name: v.name, Children: children}
	case *If:
		return &If{name: v.name, Cond: v.Cond, Then: cloneNode(v.Then), Else: cloneNode(v.Else)}
	case *Repeat:
		return &Repeat{name: v.name, Count: v.Count, Body: v.Body}
	case *Let:
		return &Let{name: v.name, Expr: v.Expr}
	case Pass:
		return Pass{}
	}
	return n
}
