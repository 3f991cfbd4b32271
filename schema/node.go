// Package schema implements the schema tree and interpreter: an immutable
// tree of Field/Format/If/Repeat/Let/Pass nodes, together with the
// parse/build walking algorithm that drives bits through it via the dtype
// and expr packages.
package schema

import (
	set3 "github.com/TomTonic/Set3"
	"github.com/dsnet/bitform"
	"github.com/dsnet/bitform/dtype"
	"github.com/dsnet/bitform/expr"
	"golang.org/x/text/unicode/norm"
)

// state is the runtime binding state of a node.
type state int

const (
	unbound state = iota
	bound
	constBound
)

// Node is one member of the closed schema-node taxonomy.
type Node interface {
	node()
	Name() string
}

func normalizeName(name string) string {
	if name == "" {
		return name
	}
	return norm.NFC.String(name)
}

// Field is a leaf node: one dtype, an optional name, and an optional
// constant value fixed at construction.
type Field struct {
	name  string
	Dtype dtype.Dtype
	Size  expr.Node // nil => Dtype's own fixed size is used

	isConst  bool
	constVal dtype.Value

	st    state
	val   dtype.Value
	bits  bitform.Bits
	elems []expr.Value // scalar projection of val, for array/tuple fields referenced by index
}

func (*Field) node()          {}
func (f *Field) Name() string { return f.name }

// NewField constructs a Field named name (NFC-normalized) with dtype d. A
// nil size expression means d's own bit size applies.
func NewField(name string, d dtype.Dtype, size expr.Node) *Field {
	return &Field{name: normalizeName(name), Dtype: d, Size: size}
}

// NewConstField constructs a Field whose value is fixed at construction
// and checked, never pulled, during parse/build.
func NewConstField(name string, d dtype.Dtype, size expr.Node, val dtype.Value) *Field {
	return &Field{name: normalizeName(name), Dtype: d, Size: size, isConst: true, constVal: val}
}

// Format is an ordered sequence of child nodes sharing one name scope.
type Format struct {
	name     string
	Children []Node

	env *expr.Env
}

func (*Format) node()          {}
func (f *Format) Name() string { return f.name }

// NewFormat constructs a Format named name from an ordered list of
// children. It returns SchemaError if two children share the same
// (normalized) name.
func NewFormat(name string, children ...Node) (*Format, error) {
	seen := set3.EmptyWithCapacity[string](uint32(len(children)))
	for _, c := range children {
		n := c.Name()
		if n == "" {
			continue
		}
		if seen.Contains(n) {
			return nil, bitform.NewError(bitform.SchemaError, "duplicate sibling name: "+n)
		}
		seen.Add(n)
	}
	return &Format{name: normalizeName(name), Children: children}, nil
}

// If evaluates Cond and takes Then or Else accordingly; the non-taken
// branch remains unbound. The taken branch is recorded so that ToBits is
// deterministic.
type If struct {
	name string
	Cond expr.Node
	Then Node
	Else Node // nil => no-op if Cond is false

	st      state
	tookThen bool
	tookElse bool
}

func (*If) node()          {}
func (n *If) Name() string { return n.name }

// NewIf constructs an If node. name may be empty; If itself never binds a
// value, so it rarely needs one.
func NewIf(name string, cond expr.Node, then, els Node) *If {
	return &If{name: normalizeName(name), Cond: cond, Then: then, Else: els}
}

// Repeat evaluates Count once, then parses/builds Body that many times,
// exposing the loop index to Body's environment under the implicit name
// "_" (shadowed by any same-named binding inside Body).
type Repeat struct {
	name  string
	Count expr.Node
	Body  Node

	st    state
	iters []Node
}

func (*Repeat) node()          {}
func (n *Repeat) Name() string { return n.name }

// NewRepeat constructs a Repeat node.
func NewRepeat(name string, count expr.Node, body Node) *Repeat {
	return &Repeat{name: normalizeName(name), Count: count, Body: body}
}

// Let evaluates Expr and binds the result under name; it emits no bits.
type Let struct {
	name string
	Expr expr.Node

	st  state
	val expr.Value
}

func (*Let) node()          {}
func (n *Let) Name() string { return n.name }

// NewLet constructs a Let node.
func NewLet(name string, e expr.Node) *Let {
	return &Let{name: normalizeName(name), Expr: e}
}

// Pass is the identity node: it emits and consumes nothing.
type Pass struct{}

func (Pass) node()        {}
func (Pass) Name() string { return "" }
