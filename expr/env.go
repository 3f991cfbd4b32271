package expr

import (
	"strconv"
	"strings"

	"github.com/dsnet/bitform"
)

// binding is what a single name inside a scope may resolve to: a scalar
// value, a sequence of values (from an array-typed field, indexed with
// "name[i]"), a nested scope (from a Format field, addressed with
// "name.sub"), or a parallel sequence of nested scopes (one per iteration
// of a Repeat, addressed with "name[i].sub").
type binding struct {
	hasValue bool
	value    Value

	elems []Value

	scope *Env

	elemScopes []*Env
}

// Env is a stack of scopes mapping names to values, mirroring the nesting
// of Format nodes in a schema tree. A name is visible from its binding
// point onward within its enclosing Format; enclosing scopes are visible
// from a child scope, but sibling scopes are not.
type Env struct {
	parent *Env
	vars   map[string]binding
}

// NewEnv returns a new scope chained to parent (nil for the root).
func NewEnv(parent *Env) *Env {
	return &Env{parent: parent, vars: make(map[string]binding)}
}

// Bind assigns a scalar value to name in e's own scope, shadowing any
// same-named binding in an enclosing scope.
func (e *Env) Bind(name string, v Value) {
	e.vars[name] = binding{hasValue: true, value: v}
}

// BindSeq assigns an indexable sequence of scalar values to name, for
// array-typed fields.
func (e *Env) BindSeq(name string, vals []Value) {
	e.vars[name] = binding{elems: vals}
}

// BindScope assigns a nested Format scope to name.
func (e *Env) BindScope(name string, child *Env) {
	e.vars[name] = binding{scope: child}
}

// BindSeqScopes assigns a parallel sequence of nested scopes to name, one
// per iteration of a Repeat, whatever node its body is.
func (e *Env) BindSeqScopes(name string, children []*Env) {
	e.vars[name] = binding{elemScopes: children}
}

type pathSegment struct {
	name  string
	index int
	isIdx bool
}

func parsePath(path string) ([]pathSegment, error) {
	var segs []pathSegment
	for _, dotPart := range strings.Split(path, ".") {
		name := dotPart
		idx := -1
		hasIdx := false
		if i := strings.IndexByte(dotPart, '['); i >= 0 {
			if !strings.HasSuffix(dotPart, "]") {
				return nil, bitform.NewError(bitform.BadSyntax, "malformed index in name path")
			}
			name = dotPart[:i]
			n, err := strconv.Atoi(dotPart[i+1 : len(dotPart)-1])
			if err != nil {
				return nil, bitform.NewError(bitform.BadSyntax, "malformed index in name path")
			}
			idx, hasIdx = n, true
		}
		if name == "" {
			return nil, bitform.NewError(bitform.BadSyntax, "empty name component in path")
		}
		segs = append(segs, pathSegment{name: name, index: idx, isIdx: hasIdx})
	}
	return segs, nil
}

// Lookup resolves a dotted/indexed path against e, searching enclosing
// scopes for the first segment only; subsequent segments navigate strictly
// within whatever scope the previous segment produced. It returns
// UnresolvedName if any segment along the way is not yet bound.
func (e *Env) Lookup(path string) (Value, error) {
	segs, err := parsePath(path)
	if err != nil {
		return Value{}, err
	}
	if len(segs) == 0 {
		return Value{}, bitform.NewError(bitform.UnresolvedName, "empty path")
	}

	b, scope, err := e.resolveFirst(segs[0])
	if err != nil {
		return Value{}, err
	}
	for _, seg := range segs[1:] {
		if scope == nil {
			return Value{}, bitform.NewError(bitform.UnresolvedName, "name has no substructure: "+seg.name)
		}
		var err2 error
		b, scope, err2 = scope.resolveLocal(seg)
		if err2 != nil {
			return Value{}, err2
		}
	}
	return finalValue(b, segs[len(segs)-1])
}

// resolveFirst walks up the scope chain looking for segment's name.
func (e *Env) resolveFirst(seg pathSegment) (binding, *Env, error) {
	for scope := e; scope != nil; scope = scope.parent {
		if b, ok := scope.vars[seg.name]; ok {
			return nextScope(b, seg)
		}
	}
	return binding{}, nil, bitform.NewError(bitform.UnresolvedName, "unbound name: "+seg.name)
}

// resolveLocal looks up segment's name strictly within e, with no
// enclosing-scope fallback.
func (e *Env) resolveLocal(seg pathSegment) (binding, *Env, error) {
	b, ok := e.vars[seg.name]
	if !ok {
		return binding{}, nil, bitform.NewError(bitform.UnresolvedName, "unbound name: "+seg.name)
	}
	return nextScope(b, seg)
}

func nextScope(b binding, seg pathSegment) (binding, *Env, error) {
	if seg.isIdx && len(b.elemScopes) > 0 {
		if seg.index < 0 || seg.index >= len(b.elemScopes) {
			return binding{}, nil, bitform.NewError(bitform.OutOfRange, "index out of range")
		}
		s := b.elemScopes[seg.index]
		return binding{scope: s}, s, nil
	}
	return b, b.scope, nil
}

func finalValue(b binding, seg pathSegment) (Value, error) {
	if seg.isIdx {
		if len(b.elems) == 0 {
			return Value{}, bitform.NewError(bitform.UnresolvedName, "name is not indexable")
		}
		if seg.index < 0 || seg.index >= len(b.elems) {
			return Value{}, bitform.NewError(bitform.OutOfRange, "index out of range")
		}
		return b.elems[seg.index], nil
	}
	if !b.hasValue {
		return Value{}, bitform.NewError(bitform.UnresolvedName, "name does not resolve to a scalar value")
	}
	return b.value, nil
}
