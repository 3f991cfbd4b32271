package schema

import (
	"github.com/dsnet/bitform"
	"github.com/dsnet/bitform/dtype"
)

// clearNode resets every non-const node under n to unbound.
func clearNode(n Node) {
	switch node := n.(type) {
	case *Field:
		if node.st != constBound {
			node.st = unbound
			node.val = dtype.Value{}
			node.bits = bitform.Bits{}
			node.elems = nil
		}
	case *Format:
		for _, c := range node.Children {
			clearNode(c)
		}
		node.env = nil
	case *If:
		node.st = unbound
		node.tookThen, node.tookElse = false, false
		clearNode(node.Then)
		if node.Else != nil {
			clearNode(node.Else)
		}
	case *Repeat:
		node.st = unbound
		node.iters = nil
	case *Let:
		node.st = unbound
	case Pass:
	}
}
