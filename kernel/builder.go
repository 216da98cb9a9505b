package kernel

import (
	"github.com/google/uuid"
	"github.com/wippyai/typeconv/errors"
	"github.com/wippyai/typeconv/host"
	"github.com/wippyai/typeconv/layout"
	"github.com/wippyai/typeconv/types"
	"go.uber.org/zap"
)

// InstantiateInto compiles a program writing host values as t laid out by meta.
// A nil meta selects layout.Default(t).
func InstantiateInto(t *types.Type, meta *layout.Meta, opts ...Option) (*IntoProgram, error) {
	b, err := newBuilder(t, &meta, opts)
	if err != nil {
		return nil, err
	}
	root, err := b.buildInto(t, meta)
	if err != nil {
		b.abandon()
		return nil, err
	}
	p := &IntoProgram{}
	b.finish(&p.Program, "into", root)
	return p, nil
}

// InstantiateFrom compiles a program reading values of t laid out by meta back
// into host values. A nil meta selects layout.Default(t).
func InstantiateFrom(t *types.Type, meta *layout.Meta, opts ...Option) (*FromProgram, error) {
	b, err := newBuilder(t, &meta, opts)
	if err != nil {
		return nil, err
	}
	root, err := b.buildFrom(t, meta)
	if err != nil {
		b.abandon()
		return nil, err
	}
	p := &FromProgram{}
	b.finish(&p.Program, "from", root)
	return p, nil
}

// InstantiateCopy compiles a program copying a value of t laid out by src into
// the layout dst. Nil metas select layout.Default(t).
func InstantiateCopy(t *types.Type, src, dst *layout.Meta, opts ...Option) (*CopyProgram, error) {
	b, err := newBuilder(t, &dst, opts)
	if err != nil {
		return nil, err
	}
	if src == nil {
		src = b.calc.Default(t)
	}
	root, err := b.buildCopy(t, src, dst)
	if err != nil {
		b.abandon()
		return nil, err
	}
	p := &CopyProgram{}
	b.finish(&p.Program, "copy", root)
	return p, nil
}

type builder struct {
	typ   *types.Type
	meta  *layout.Meta
	nodes []node
	opts  options
	calc  *layout.Calculator
}

func newBuilder(t *types.Type, meta **layout.Meta, opts []Option) (*builder, error) {
	if t == nil {
		return nil, errors.InvalidArgument(errors.PhaseBuild, "", "", "nil type")
	}
	o := buildOptions(opts)
	if err := initHost(o.host); err != nil {
		return nil, err
	}
	b := &builder{typ: t, opts: o, calc: layout.NewCalculator()}
	if *meta == nil {
		*meta = b.calc.Default(t)
	}
	b.meta = *meta
	return b, nil
}

func (b *builder) finish(p *Program, direction string, root uint32) {
	p.id = uuid.New()
	p.typ = b.typ
	p.meta = b.meta
	p.nodes = b.nodes
	p.root = root
	p.opts = b.opts
	b.opts.logger.Debug("program instantiated",
		zap.Stringer("id", p.id),
		zap.String("direction", direction),
		zap.Stringer("type", b.typ),
		zap.Int("nodes", len(p.nodes)),
	)
}

// abandon releases host values held by a partially built arena.
func (b *builder) abandon() {
	p := b.view()
	p.opts.logger = zap.NewNop()
	p.Close()
}

// reserve appends a node for t and moves it to the children-pending state.
func (b *builder) reserve(t *types.Type, meta *layout.Meta, r role) uint32 {
	b.nodes = append(b.nodes, node{
		typ:   t,
		meta:  meta,
		kind:  t.Kind(),
		base:  t.Base(),
		role:  r,
		state: stateNotInstantiated,
		size:  b.calc.Calculate(t).Size,
	})
	i := uint32(len(b.nodes) - 1)
	b.nodes[i].state = stateChildrenPending
	return i
}

// complete records the children of node i and marks it complete.
func (b *builder) complete(i uint32, children ...uint32) error {
	for _, c := range children {
		if b.nodes[c].state != stateComplete {
			return errors.InvalidState(errors.PhaseBuild, b.nodes[i].typ.String(), "",
				"child "+b.nodes[c].typ.String()+" is not complete")
		}
	}
	b.nodes[i].children = children
	b.nodes[i].state = stateComplete
	return nil
}

func (b *builder) leaf(t *types.Type, meta *layout.Meta, r role) uint32 {
	i := b.reserve(t, meta, r)
	b.nodes[i].state = stateComplete
	return i
}

func (b *builder) needMeta(t *types.Type, meta *layout.Meta) error {
	if meta == nil {
		return errors.InvalidArgument(errors.PhaseBuild, t.String(), "", "missing layout metadata")
	}
	return nil
}

func (b *builder) buildInto(t *types.Type, meta *layout.Meta) (uint32, error) {
	switch t.Kind() {
	case types.KindBool,
		types.KindInt8, types.KindInt16, types.KindInt32, types.KindInt64, types.KindInt128,
		types.KindUint8, types.KindUint16, types.KindUint32, types.KindUint64, types.KindUint128,
		types.KindFloat16, types.KindFloat32, types.KindFloat64,
		types.KindComplex64, types.KindComplex128,
		types.KindBytes, types.KindFixedBytes,
		types.KindString, types.KindFixedString, types.KindChar,
		types.KindDate, types.KindTime, types.KindDateTime,
		types.KindType:
		return b.leaf(t, meta, roleInto), nil

	case types.KindOption:
		if err := b.needMeta(t, meta); err != nil {
			return 0, err
		}
		i := b.reserve(t, meta, roleInto)
		na := b.leaf(t, meta, roleAssignNA)
		val, err := b.buildInto(t.Elem(), meta.Elem)
		if err != nil {
			return 0, errors.Prepend(err, "?")
		}
		return i, b.complete(i, na, val)

	case types.KindTuple, types.KindStruct:
		if err := b.needMeta(t, meta); err != nil {
			return 0, err
		}
		i := b.reserve(t, meta, roleInto)
		children := make([]uint32, t.NumFields())
		for f := range children {
			c, err := b.buildInto(t.Field(f).Type, meta.Field(f))
			if err != nil {
				return 0, errors.Prepend(err, fieldSeg(t, f))
			}
			children[f] = c
		}
		return i, b.complete(i, children...)

	case types.KindFixedDim, types.KindVarDim:
		if err := b.needMeta(t, meta); err != nil {
			return 0, err
		}
		i := b.reserve(t, meta, roleInto)
		elem, err := b.buildInto(t.Elem(), meta.Elem)
		if err != nil {
			return 0, err
		}
		// fan-out for length-1 sources
		fan, err := b.buildCopy(t.Elem(), meta.Elem, meta.Elem)
		if err != nil {
			return 0, err
		}
		return i, b.complete(i, elem, fan)

	case types.KindCategorical:
		return b.buildCategoricalInto(t, meta)
	}
	return 0, errors.Unsupported(errors.PhaseBuild, t.String())
}

func (b *builder) buildFrom(t *types.Type, meta *layout.Meta) (uint32, error) {
	switch t.Kind() {
	case types.KindBool,
		types.KindInt8, types.KindInt16, types.KindInt32, types.KindInt64, types.KindInt128,
		types.KindUint8, types.KindUint16, types.KindUint32, types.KindUint64, types.KindUint128,
		types.KindFloat16, types.KindFloat32, types.KindFloat64,
		types.KindComplex64, types.KindComplex128,
		types.KindBytes, types.KindFixedBytes,
		types.KindString, types.KindFixedString, types.KindChar,
		types.KindDate, types.KindTime, types.KindDateTime,
		types.KindType:
		return b.leaf(t, meta, roleFrom), nil

	case types.KindOption:
		if err := b.needMeta(t, meta); err != nil {
			return 0, err
		}
		i := b.reserve(t, meta, roleFrom)
		missing := b.leaf(t, meta, roleIsMissing)
		val, err := b.buildFrom(t.Elem(), meta.Elem)
		if err != nil {
			return 0, errors.Prepend(err, "?")
		}
		return i, b.complete(i, missing, val)

	case types.KindTuple, types.KindStruct:
		if err := b.needMeta(t, meta); err != nil {
			return 0, err
		}
		i := b.reserve(t, meta, roleFrom)
		children := make([]uint32, t.NumFields())
		for f := range children {
			c, err := b.buildFrom(t.Field(f).Type, meta.Field(f))
			if err != nil {
				return 0, errors.Prepend(err, fieldSeg(t, f))
			}
			children[f] = c
		}
		if t.Kind() == types.KindStruct {
			keys, err := b.fieldKeys(t)
			if err != nil {
				return 0, err
			}
			b.nodes[i].keys = keys
		}
		return i, b.complete(i, children...)

	case types.KindFixedDim, types.KindVarDim:
		if err := b.needMeta(t, meta); err != nil {
			return 0, err
		}
		i := b.reserve(t, meta, roleFrom)
		elem, err := b.buildFrom(t.Elem(), meta.Elem)
		if err != nil {
			return 0, err
		}
		return i, b.complete(i, elem)

	case types.KindCategorical:
		return b.buildCategoricalFrom(t, meta)
	}
	return 0, errors.Unsupported(errors.PhaseBuild, t.String())
}

func (b *builder) buildCopy(t *types.Type, src, dst *layout.Meta) (uint32, error) {
	// plain data in its default layout moves with one memory copy
	if t.IsPOD() && metaEqual(src, dst) && metaEqual(dst, b.calc.Default(t)) {
		i := b.leaf(t, dst, roleCopy)
		b.nodes[i].pod = true
		return i, nil
	}
	switch t.Kind() {
	case types.KindBool,
		types.KindInt8, types.KindInt16, types.KindInt32, types.KindInt64, types.KindInt128,
		types.KindUint8, types.KindUint16, types.KindUint32, types.KindUint64, types.KindUint128,
		types.KindFloat16, types.KindFloat32, types.KindFloat64,
		types.KindComplex64, types.KindComplex128,
		types.KindFixedBytes, types.KindFixedString, types.KindChar,
		types.KindDate, types.KindTime, types.KindDateTime,
		types.KindType, types.KindCategorical:
		i := b.leaf(t, dst, roleCopy)
		b.nodes[i].pod = true
		return i, nil

	case types.KindBytes, types.KindString:
		return b.leaf(t, dst, roleCopy), nil

	case types.KindOption:
		if err := b.needMeta(t, src); err != nil {
			return 0, err
		}
		if err := b.needMeta(t, dst); err != nil {
			return 0, err
		}
		i := b.reserve(t, dst, roleCopy)
		val, err := b.buildCopy(t.Elem(), src.Elem, dst.Elem)
		if err != nil {
			return 0, err
		}
		return i, b.completeCopy(i, src, val)

	case types.KindTuple, types.KindStruct:
		if err := b.needMeta(t, src); err != nil {
			return 0, err
		}
		if err := b.needMeta(t, dst); err != nil {
			return 0, err
		}
		i := b.reserve(t, dst, roleCopy)
		children := make([]uint32, t.NumFields())
		for f := range children {
			c, err := b.buildCopy(t.Field(f).Type, src.Field(f), dst.Field(f))
			if err != nil {
				return 0, err
			}
			children[f] = c
		}
		return i, b.completeCopy(i, src, children...)

	case types.KindFixedDim, types.KindVarDim:
		if err := b.needMeta(t, src); err != nil {
			return 0, err
		}
		if err := b.needMeta(t, dst); err != nil {
			return 0, err
		}
		i := b.reserve(t, dst, roleCopy)
		elem, err := b.buildCopy(t.Elem(), src.Elem, dst.Elem)
		if err != nil {
			return 0, err
		}
		return i, b.completeCopy(i, src, elem)
	}
	return 0, errors.Unsupported(errors.PhaseBuild, t.String())
}

// completeCopy completes a composite copy node. The source meta is kept as the
// node's single extra metadata entry.
func (b *builder) completeCopy(i uint32, src *layout.Meta, children ...uint32) error {
	b.nodes[i].srcMeta = src
	return b.complete(i, children...)
}

func (b *builder) fieldKeys(t *types.Type) ([]host.Value, error) {
	h := b.opts.host
	keys := make([]host.Value, t.NumFields())
	for f := range keys {
		k, err := h.MakeText([]byte(t.Field(f).Name), types.UTF8)
		if err != nil {
			for _, prev := range keys[:f] {
				h.Release(prev)
			}
			return nil, errors.HostFailure(errors.PhaseBuild, t.String(), t.Field(f).Name, err)
		}
		keys[f] = k
	}
	return keys, nil
}

func fieldSeg(t *types.Type, i int) string {
	if t.Kind() == types.KindStruct {
		return t.Field(i).Name
	}
	return indexSeg(i)
}

func metaEqual(a, b *layout.Meta) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.DimSize != b.DimSize || a.Stride != b.Stride || a.Offset != b.Offset ||
		a.PayloadOffset != b.PayloadOffset || len(a.FieldOffsets) != len(b.FieldOffsets) ||
		len(a.Fields) != len(b.Fields) {
		return false
	}
	for i := range a.FieldOffsets {
		if a.FieldOffsets[i] != b.FieldOffsets[i] {
			return false
		}
	}
	for i := range a.Fields {
		if !metaEqual(a.Fields[i], b.Fields[i]) {
			return false
		}
	}
	return metaEqual(a.Elem, b.Elem)
}
