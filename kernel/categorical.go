package kernel

import (
	"encoding/binary"

	"github.com/wippyai/typeconv"
	"github.com/wippyai/typeconv/errors"
	"github.com/wippyai/typeconv/host"
	"github.com/wippyai/typeconv/internal/abi"
	"github.com/wippyai/typeconv/layout"
	"github.com/wippyai/typeconv/types"
)

// buildCategoricalInto composes an into kernel for the category type, which
// writes to call-local scratch storage, with an encode node mapping the
// scratch value to its index.
func (b *builder) buildCategoricalInto(t *types.Type, meta *layout.Meta) (uint32, error) {
	i := b.reserve(t, meta, roleInto)
	elemMeta := b.calc.Default(t.Elem())
	val, err := b.buildInto(t.Elem(), elemMeta)
	if err != nil {
		return 0, err
	}
	enc := b.reserve(t, meta, roleCatEncode)
	if err := b.complete(enc, val); err != nil {
		return 0, err
	}
	if err := b.loadCategories(enc, val); err != nil {
		return 0, err
	}
	return i, b.complete(i, val, enc)
}

// buildCategoricalFrom builds a decode node producing category values from an
// index. The into kernel only serves to lay out the categories once.
func (b *builder) buildCategoricalFrom(t *types.Type, meta *layout.Meta) (uint32, error) {
	i := b.reserve(t, meta, roleCatDecode)
	elemMeta := b.calc.Default(t.Elem())
	out, err := b.buildFrom(t.Elem(), elemMeta)
	if err != nil {
		return 0, err
	}
	in, err := b.buildInto(t.Elem(), elemMeta)
	if err != nil {
		return 0, err
	}
	if err := b.complete(i, out, in); err != nil {
		return 0, err
	}
	return i, b.loadCategories(i, in)
}

// loadCategories converts every category of node i's type with the into kernel
// in and records the resulting layouts on node i.
func (b *builder) loadCategories(i, in uint32) error {
	t := b.nodes[i].typ
	h := b.opts.host
	info := b.calc.Calculate(t.Elem())
	n := t.NumCategories()
	view := b.view()

	store := layout.NewBuffer(int(mulCap(info.Size, n)) + 16)
	addrs := make([]uint32, n)
	index := make(map[string]uint32, n)
	for c := 0; c < n; c++ {
		cat := t.Category(c)
		addr, err := store.Alloc(info.Size, max(info.Align, 1))
		if err != nil {
			return errors.AllocationFailed(errors.PhaseBuild, info.Size, info.Align, err)
		}
		if err := view.into(in, store, addr, cat); err != nil {
			return errors.New(errors.PhaseBuild, errors.KindInvalidArgument).
				Type(t.String()).
				Value(h.Repr(cat)).
				Detail("category %d does not convert to %s", c, t.Elem()).
				Cause(err).
				Build()
		}
		key, err := view.layoutKey(in, store, addr)
		if err != nil {
			return err
		}
		if prev, dup := index[key]; dup {
			return errors.InvalidArgument(errors.PhaseBuild, t.String(), h.Repr(cat),
				"duplicate of category "+indexSeg(int(prev)))
		}
		index[key] = uint32(c)
		addrs[c] = addr
	}

	nd := &b.nodes[i]
	nd.store = store
	nd.storeAddrs = addrs
	nd.index = index
	nd.discSize = abi.DiscriminantSize(n)
	return nil
}

func mulCap(size uint32, n int) uint32 {
	v, ok := abi.SafeMulU32(max(size, 1), uint32(n))
	if !ok {
		return 0
	}
	return v
}

// view exposes the arena under construction for evaluation of complete nodes.
func (b *builder) view() *Program {
	return &Program{typ: b.typ, meta: b.meta, nodes: b.nodes, opts: b.opts}
}

func (p *Program) intoCategorical(n *node, mem typeconv.Storage, dst uint32, v host.Value) error {
	val := n.child(0)
	vn := &p.nodes[val]
	scratch := layout.NewBuffer(int(vn.size) + 64)
	addr, err := scratch.Alloc(vn.size, 8)
	if err != nil {
		return errors.AllocationFailed(errors.PhaseInto, vn.size, 8, err)
	}
	if err := p.into(val, scratch, addr, v); err != nil {
		return err
	}
	return p.encodeCategory(n.child(1), scratch, addr, mem, dst, v)
}

func (p *Program) encodeCategory(i uint32, src typeconv.Memory, addr uint32, mem typeconv.Storage, dst uint32, v host.Value) error {
	n := &p.nodes[i]
	key, err := p.layoutKey(n.child(0), src, addr)
	if err != nil {
		return err
	}
	idx, ok := n.index[key]
	if !ok {
		return errors.InvalidArgument(errors.PhaseInto, n.typ.String(), p.opts.host.Repr(v), "value is not a category")
	}
	return writeDisc(mem, dst, n.discSize, idx, n.typ)
}

func (p *Program) decodeCategory(n *node, mem typeconv.Memory, dst *host.Value, src uint32) error {
	idx, err := readDisc(mem, src, n.discSize)
	if err != nil {
		return errors.OutOfBounds(errors.PhaseFrom, n.typ.String(), err)
	}
	if int(idx) >= len(n.storeAddrs) {
		return errors.New(errors.PhaseFrom, errors.KindInvalidData).
			Type(n.typ.String()).
			Detail("category index %d out of range [0, %d)", idx, len(n.storeAddrs)).
			Build()
	}
	return p.from(n.child(0), n.store, dst, n.storeAddrs[idx])
}

func writeDisc(mem typeconv.Memory, dst, size, idx uint32, t *types.Type) error {
	var err error
	switch size {
	case 1:
		err = mem.WriteU8(dst, uint8(idx))
	case 2:
		err = mem.WriteU16(dst, uint16(idx))
	default:
		err = mem.WriteU32(dst, idx)
	}
	if err != nil {
		return errors.OutOfBounds(errors.PhaseInto, t.String(), err)
	}
	return nil
}

func readDisc(mem typeconv.Memory, src, size uint32) (uint32, error) {
	switch size {
	case 1:
		v, err := mem.ReadU8(src)
		return uint32(v), err
	case 2:
		v, err := mem.ReadU16(src)
		return uint32(v), err
	}
	return mem.ReadU32(src)
}

// layoutKey serializes the value written by into node i at addr so that equal
// values give equal keys: out-of-line data is inlined with a length prefix and
// absent option payloads are skipped.
func (p *Program) layoutKey(i uint32, mem typeconv.Memory, addr uint32) (string, error) {
	var key []byte
	if err := p.appendKey(&key, i, mem, addr); err != nil {
		return "", errors.OutOfBounds(errors.PhaseInto, p.nodes[i].typ.String(), err)
	}
	return string(key), nil
}

func (p *Program) appendKey(key *[]byte, i uint32, mem typeconv.Memory, addr uint32) error {
	n := &p.nodes[i]
	switch n.base {
	case types.BaseBytes, types.BaseString:
		if n.kind == types.KindBytes || n.kind == types.KindString {
			ptr, size, err := layout.ReadSpan(mem, addr)
			if err != nil {
				return err
			}
			*key = binary.LittleEndian.AppendUint32(*key, size)
			if size == 0 || ptr == 0 {
				return nil
			}
			data, err := mem.Read(ptr, size)
			if err != nil {
				return err
			}
			*key = append(*key, data...)
			return nil
		}
	case types.BaseOption:
		flag, err := mem.ReadU8(addr)
		if err != nil {
			return err
		}
		*key = append(*key, flag)
		if flag == 0 {
			return nil
		}
		return p.appendKey(key, n.child(1), mem, addr+n.meta.PayloadOffset)
	case types.BaseTuple:
		for f, c := range n.children {
			if err := p.appendKey(key, c, mem, addr+n.meta.FieldOffsets[f]); err != nil {
				return err
			}
		}
		return nil
	case types.BaseDim:
		d, _, err := layout.AsStrided(n.typ, n.meta, mem, addr)
		if err != nil {
			return err
		}
		*key = binary.LittleEndian.AppendUint32(*key, d.Count)
		for e := uint32(0); e < d.Count; e++ {
			if err := p.appendKey(key, n.child(0), mem, d.Addr(e)); err != nil {
				return err
			}
		}
		return nil
	case types.BaseBool, types.BaseSInt, types.BaseUInt, types.BaseFloat, types.BaseComplex,
		types.BaseDateTime, types.BaseType, types.BaseCategorical:
	}
	data, err := mem.Read(addr, n.size)
	if err != nil {
		return err
	}
	*key = append(*key, data...)
	return nil
}
