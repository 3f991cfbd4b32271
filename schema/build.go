package schema

import (
	"github.com/dsnet/bitform"
	"github.com/dsnet/bitform/dtype"
	"github.com/dsnet/bitform/expr"
	"github.com/dsnet/golib/errs"
)

// buildNode is the dual of parseNode: it pulls values from vals (except
// for const fields, which never pull) and emits bits. When bind is true
// (Pack), node state is updated so ToBits/Unpack can be used afterward;
// when false (Build), the walk is a pure emission pass.
func buildNode(n Node, vals *ValueSeq, env *expr.Env, bind bool) (bitform.Bits, uint64, error) {
	switch node := n.(type) {
	case *Field:
		return buildField(node, vals, env, bind)
	case *Format:
		return buildFormat(node, vals, env, bind)
	case *If:
		return buildIf(node, vals, env, bind)
	case *Repeat:
		return buildRepeat(node, vals, env, bind)
	case *Let:
		return buildLet(node, env, bind)
	case Pass:
		return bitform.Zeros(0), 0, nil
	}
	errs.Panic(bitform.NewError(bitform.SchemaError, "unknown schema node kind"))
	return bitform.Bits{}, 0, nil
}

func resolveBuildDtype(f *Field, val dtype.Value, env *expr.Env) (dtype.Dtype, error) {
	if f.Size != nil {
		v, err := expr.Eval(f.Size, env)
		if err != nil {
			return dtype.Dtype{}, err
		}
		n, err := expr.AsCount(v)
		if err != nil {
			return dtype.Dtype{}, err
		}
		return f.Dtype.WithSize(n)
	}
	if f.Dtype.Unsized() {
		return f.Dtype.WithSize(f.Dtype.NaturalSize(val))
	}
	return f.Dtype, nil
}

func buildField(f *Field, vals *ValueSeq, env *expr.Env, bind bool) (bitform.Bits, uint64, error) {
	var val dtype.Value
	if f.isConst {
		val = f.constVal
	} else {
		v, err := vals.next()
		if err != nil {
			return bitform.Bits{}, 0, err
		}
		val = v
	}

	eff, err := resolveBuildDtype(f, val, env)
	if err != nil {
		return bitform.Bits{}, 0, err
	}
	b, err := eff.Pack(val)
	if err != nil {
		return bitform.Bits{}, 0, err
	}

	if bind {
		st := bound
		if f.isConst {
			st = constBound
		}
		f.val, f.bits, f.st = val, b, st
		if val.Elems != nil {
			f.elems = toExprSeq(val.Elems)
		}
	}
	if f.name != "" {
		if val.Elems != nil {
			env.BindSeq(f.name, toExprSeq(val.Elems))
		} else {
			env.Bind(f.name, toExprValue(val))
		}
	}
	return b, b.Len(), nil
}

func buildFormat(f *Format, vals *ValueSeq, env *expr.Env, bind bool) (bitform.Bits, uint64, error) {
	child := expr.NewEnv(env)
	parts := make([]bitform.Bits, 0, len(f.Children))
	var total uint64
	for _, c := range f.Children {
		b, n, err := buildNode(c, vals, child, bind)
		if err != nil {
			return bitform.Bits{}, 0, err
		}
		parts = append(parts, b)
		total += n
	}
	out, err := bitform.Concat(parts...)
	if err != nil {
		return bitform.Bits{}, 0, err
	}
	if bind {
		f.env = child
	}
	if f.name != "" {
		env.BindScope(f.name, child)
	}
	return out, total, nil
}

func buildIf(n *If, vals *ValueSeq, env *expr.Env, bind bool) (bitform.Bits, uint64, error) {
	cv, err := expr.Eval(n.Cond, env)
	if err != nil {
		return bitform.Bits{}, 0, err
	}
	if bind {
		n.st = bound
	}
	if cv.Truth() {
		if bind {
			n.tookThen = true
		}
		return buildNode(n.Then, vals, env, bind)
	}
	if n.Else != nil {
		if bind {
			n.tookElse = true
		}
		return buildNode(n.Else, vals, env, bind)
	}
	return bitform.Zeros(0), 0, nil
}

func buildRepeat(n *Repeat, vals *ValueSeq, env *expr.Env, bind bool) (bitform.Bits, uint64, error) {
	cv, err := expr.Eval(n.Count, env)
	if err != nil {
		return bitform.Bits{}, 0, err
	}
	count, err := expr.AsCount(cv)
	if err != nil {
		return bitform.Bits{}, 0, err
	}

	var iters []Node
	if bind {
		iters = make([]Node, count)
	}
	childEnvs := make([]*expr.Env, count)
	parts := make([]bitform.Bits, 0, count)
	var total uint64
	for i := uint64(0); i < count; i++ {
		bodyEnv := expr.NewEnv(env)
		bodyEnv.Bind("_", expr.Int64(int64(i)))
		body := n.Body
		if bind {
			body = cloneNode(n.Body)
		}
		b, bn, err := buildNode(body, vals, bodyEnv, bind)
		if err != nil {
			return bitform.Bits{}, 0, err
		}
		parts = append(parts, b)
		total += bn
		childEnvs[i] = bodyEnv
		if bind {
			iters[i] = body
		}
	}
	out, err := bitform.Concat(parts...)
	if err != nil {
		return bitform.Bits{}, 0, err
	}
	if bind {
		n.st = bound
		n.iters = iters
	}
	if n.name != "" {
		env.BindSeqScopes(n.name, childEnvs)
	}
	return out, total, nil
}

func buildLet(n *Let, env *expr.Env, bind bool) (bitform.Bits, uint64, error) {
	v, err := expr.Eval(n.Expr, env)
	if err != nil {
		return bitform.Bits{}, 0, err
	}
	if bind {
		n.val, n.st = v, bound
	}
	env.Bind(n.name, v)
	return bitform.Zeros(0), 0, nil
}
