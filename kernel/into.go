package kernel

import (
	"github.com/wippyai/typeconv"
	"github.com/wippyai/typeconv/errors"
	"github.com/wippyai/typeconv/host"
	"github.com/wippyai/typeconv/layout"
	"github.com/wippyai/typeconv/types"
)

// into converts v into the layout of node i at dst.
func (p *Program) into(i uint32, mem typeconv.Storage, dst uint32, v host.Value) error {
	n := &p.nodes[i]
	if n.role != roleInto {
		return errors.InvalidState(errors.PhaseInto, n.typ.String(), p.opts.host.Repr(v), n.role.String()+" node used as an into kernel")
	}
	if p.opts.host.Kind(v) == host.KindTyped {
		return p.intoTyped(i, mem, dst, v)
	}

	switch n.base {
	case types.BaseBool:
		return p.intoBool(n, mem, dst, v)
	case types.BaseSInt, types.BaseUInt:
		return p.intoInt(n, mem, dst, v)
	case types.BaseFloat:
		return p.intoFloat(n, mem, dst, v)
	case types.BaseComplex:
		return p.intoComplex(n, mem, dst, v)
	case types.BaseBytes:
		return p.intoBytes(n, mem, dst, v)
	case types.BaseString:
		return p.intoString(n, mem, dst, v)
	case types.BaseDateTime:
		return p.intoDateTime(n, mem, dst, v)
	case types.BaseType:
		return p.intoType(n, mem, dst, v)
	case types.BaseOption:
		return p.intoOption(n, mem, dst, v)
	case types.BaseTuple:
		return p.intoRecord(n, mem, dst, v)
	case types.BaseDim:
		return p.intoDim(n, mem, dst, v)
	case types.BaseCategorical:
		return p.intoCategorical(n, mem, dst, v)
	}
	return errors.Unsupported(errors.PhaseInto, n.typ.String())
}

// intoTyped assigns a value that carries its own type and layout. Identical
// types are copied layout to layout; anything else goes through a host value.
func (p *Program) intoTyped(i uint32, mem typeconv.Storage, dst uint32, v host.Value) error {
	n := &p.nodes[i]
	h := p.opts.host
	tv, err := h.AsTyped(v)
	if err != nil {
		return errors.HostFailure(errors.PhaseInto, n.typ.String(), h.Repr(v), err)
	}
	if tv.Type == nil || tv.Mem == nil {
		return errors.InvalidArgument(errors.PhaseInto, n.typ.String(), h.Repr(v), "typed value without type or memory")
	}
	srcMeta := tv.Meta
	if srcMeta == nil {
		srcMeta = layout.Default(tv.Type)
	}

	if types.Equal(tv.Type, n.typ) {
		cp, err := p.typedProgram(typedKey{node: i, typ: tv.Type, meta: srcMeta}, func() (*Program, error) {
			c, err := InstantiateCopy(n.typ, srcMeta, n.meta, p.inherit()...)
			if err != nil {
				return nil, err
			}
			return &c.Program, nil
		})
		if err != nil {
			return err
		}
		return cp.copy(cp.root, tv.Mem, tv.Addr, mem, dst)
	}

	fp, err := p.typedProgram(typedKey{from: true, typ: tv.Type, meta: srcMeta}, func() (*Program, error) {
		f, err := InstantiateFrom(tv.Type, srcMeta, p.inherit()...)
		if err != nil {
			return nil, err
		}
		return &f.Program, nil
	})
	if err != nil {
		return err
	}
	var hv host.Value
	if err := fp.from(fp.root, tv.Mem, &hv, tv.Addr); err != nil {
		return err
	}
	defer h.Release(hv)
	return p.into(i, mem, dst, hv)
}

// typedProgram returns the helper program stored under key, building it on
// first use.
func (p *Program) typedProgram(key typedKey, build func() (*Program, error)) (*Program, error) {
	if cached, ok := p.typed.Load(key); ok {
		return cached.(*Program), nil
	}
	prog, err := build()
	if err != nil {
		return nil, err
	}
	if actual, loaded := p.typed.LoadOrStore(key, prog); loaded {
		prog.Close()
		return actual.(*Program), nil
	}
	return prog, nil
}

func (p *Program) inherit() []Option {
	return []Option{
		WithHost(p.opts.host),
		WithLogger(p.opts.logger),
		WithScalarBroadcast(p.opts.scalarBroadcast),
	}
}

func (p *Program) mismatch(n *node, v host.Value, detail string) error {
	return errors.TypeMismatch(errors.PhaseInto, n.typ.String(), p.opts.host.Repr(v), detail)
}

func (p *Program) invalid(n *node, v host.Value, detail string) error {
	return errors.InvalidArgument(errors.PhaseInto, n.typ.String(), p.opts.host.Repr(v), detail)
}

func (p *Program) hostFailure(phase errors.Phase, n *node, v host.Value, err error) error {
	var repr string
	if v != nil {
		repr = p.opts.host.Repr(v)
	}
	return errors.HostFailure(phase, n.typ.String(), repr, err)
}

func memErr(phase errors.Phase, n *node, err error) error {
	if err == nil {
		return nil
	}
	return errors.OutOfBounds(phase, n.typ.String(), err)
}
