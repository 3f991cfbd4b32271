package schema

import (
	"github.com/dsnet/bitform"
	"github.com/dsnet/bitform/dtype"
	"github.com/dsnet/bitform/expr"
	"github.com/dsnet/golib/errs"
)

// Schema is a constructed, immutable schema tree plus the root operations
// that drive bits or values through it.
type Schema struct {
	root Node
}

// New wraps root as a Schema.
func New(root Node) *Schema { return &Schema{root: root} }

// Parse binds child nodes of the schema from data starting at offset and
// returns the number of bits consumed.
func (s *Schema) Parse(data bitform.Bits, offset uint64) (n uint64, err error) {
	defer errs.Recover(&err)
	view, err := data.Slice(offset, data.Len())
	if err != nil {
		return 0, err
	}
	env := expr.NewEnv(nil)
	return parseNode(s.root, view, env)
}

// Unpack returns the structured value tree bound by the most recent Parse
// or Pack.
func (s *Schema) Unpack() (v Value, err error) {
	defer errs.Recover(&err)
	return unpackNode(s.root)
}

// Build consumes values from vals and emits bits, without retaining
// per-node binding state.
func (s *Schema) Build(vals *ValueSeq) (b bitform.Bits, err error) {
	defer errs.Recover(&err)
	env := expr.NewEnv(nil)
	b, _, err = buildNode(s.root, vals, env, false)
	return b, err
}

// Pack is like Build, but also binds child nodes so they can be inspected
// afterward via Unpack or reassembled via ToBits.
func (s *Schema) Pack(vals *ValueSeq) (b bitform.Bits, err error) {
	defer errs.Recover(&err)
	env := expr.NewEnv(nil)
	b, _, err = buildNode(s.root, vals, env, true)
	return b, err
}

// Clear resets every non-const node in the tree to unbound.
func (s *Schema) Clear() { clearNode(s.root) }

// ToBits reassembles bits from the tree's current bound state, without
// re-evaluating any expression.
func (s *Schema) ToBits() (b bitform.Bits, err error) {
	defer errs.Recover(&err)
	return toBitsNode(s.root)
}

func resolveFieldSize(f *Field, env *expr.Env) (uint64, dtype.Dtype, error) {
	if f.Size == nil {
		if f.Dtype.Unsized() {
			return 0, f.Dtype, nil // caller substitutes remaining length
		}
		return f.Dtype.Size(), f.Dtype, nil
	}
	v, err := expr.Eval(f.Size, env)
	if err != nil {
		return 0, dtype.Dtype{}, err
	}
	n, err := expr.AsCount(v)
	if err != nil {
		return 0, dtype.Dtype{}, err
	}
	eff, err := f.Dtype.WithSize(n)
	if err != nil {
		return 0, dtype.Dtype{}, err
	}
	return eff.Size(), eff, nil
}

func parseNode(n Node, view bitform.Bits, env *expr.Env) (uint64, error) {
	switch node := n.(type) {
	case *Field:
		return parseField(node, view, env)
	case *Format:
		return parseFormat(node, view, env)
	case *If:
		return parseIf(node, view, env)
	case *Repeat:
		return parseRepeat(node, view, env)
	case *Let:
		return parseLet(node, env)
	case Pass:
		return 0, nil
	}
	errs.Panic(bitform.NewError(bitform.SchemaError, "unknown schema node kind"))
	return 0, nil
}

func parseField(f *Field, view bitform.Bits, env *expr.Env) (uint64, error) {
	size, eff, err := resolveFieldSize(f, env)
	if err != nil {
		return 0, err
	}
	if eff.Unsized() {
		size = view.Len()
	}
	if view.Len() < size {
		return 0, bitform.NewError(bitform.ShortInput, "not enough bits to parse field").WithField(f.name)
	}
	fieldBits, err := view.Slice(0, size)
	if err != nil {
		return 0, err
	}

	if f.isConst {
		want, err := eff.Pack(f.constVal)
		if err != nil {
			return 0, err
		}
		if !fieldBits.Equal(want) {
			return 0, bitform.NewError(bitform.ConstMismatch, "const field did not match declared value").WithField(f.name)
		}
		f.val, f.bits, f.st = f.constVal, fieldBits, constBound
		if f.name != "" {
			env.Bind(f.name, toExprValue(f.constVal))
		}
		return fieldBits.Len(), nil
	}

	val, consumed, err := eff.Unpack(fieldBits)
	if err != nil {
		return 0, err
	}
	consumedBits, err := fieldBits.Slice(0, consumed)
	if err != nil {
		return 0, err
	}
	f.val, f.bits, f.st = val, consumedBits, bound
	if val.Elems != nil {
		f.elems = toExprSeq(val.Elems)
	}
	if f.name != "" {
		if f.elems != nil {
			env.BindSeq(f.name, f.elems)
		} else {
			env.Bind(f.name, toExprValue(val))
		}
	}
	return consumed, nil
}

func parseFormat(f *Format, view bitform.Bits, env *expr.Env) (uint64, error) {
	child := expr.NewEnv(env)
	var pos uint64
	for _, c := range f.Children {
		rest, err := view.Slice(pos, view.Len())
		if err != nil {
			return 0, err
		}
		n, err := parseNode(c, rest, child)
		if err != nil {
			return 0, err
		}
		pos += n
	}
	f.env = child
	if f.name != "" {
		env.BindScope(f.name, child)
	}
	return pos, nil
}

func parseIf(n *If, view bitform.Bits, env *expr.Env) (uint64, error) {
	cv, err := expr.Eval(n.Cond, env)
	if err != nil {
		return 0, err
	}
	n.st = bound
	if cv.Truth() {
		n.tookThen = true
		return parseNode(n.Then, view, env)
	}
	if n.Else != nil {
		n.tookElse = true
		return parseNode(n.Else, view, env)
	}
	return 0, nil
}

func parseRepeat(n *Repeat, view bitform.Bits, env *expr.Env) (uint64, error) {
	cv, err := expr.Eval(n.Count, env)
	if err != nil {
		return 0, err
	}
	count, err := expr.AsCount(cv)
	if err != nil {
		return 0, err
	}
	n.iters = make([]Node, count)
	childEnvs := make([]*expr.Env, count)
	var pos uint64
	for i := uint64(0); i < count; i++ {
		bodyEnv := expr.NewEnv(env)
		bodyEnv.Bind("_", expr.Int64(int64(i)))
		body := cloneNode(n.Body)
		rest, err := view.Slice(pos, view.Len())
		if err != nil {
			return 0, err
		}
		c, err := parseNode(body, rest, bodyEnv)
		if err != nil {
			return 0, err
		}
		pos += c
		n.iters[i] = body
		childEnvs[i] = bodyEnv
	}
	n.st = bound
	if n.name != "" {
		env.BindSeqScopes(n.name, childEnvs)
	}
	return pos, nil
}

func parseLet(n *Let, env *expr.Env) (uint64, error) {
	v, err := expr.Eval(n.Expr, env)
	if err != nil {
		return 0, err
	}
	n.val, n.st = v, bound
	env.Bind(n.name, v)
	return 0, nil
}
