package kernel

import (
	"github.com/wippyai/typeconv"
	"github.com/wippyai/typeconv/errors"
	"github.com/wippyai/typeconv/layout"
	"github.com/wippyai/typeconv/types"
)

// copy assigns the value of node i's type at srcAddr in src to dst in mem.
// Out-of-line data is reallocated in mem, so the two values share nothing.
func (p *Program) copy(i uint32, src typeconv.Memory, srcAddr uint32, mem typeconv.Storage, dst uint32) error {
	n := &p.nodes[i]
	if n.role != roleCopy {
		return errors.InvalidState(errors.PhaseCopy, n.typ.String(), "", n.role.String()+" node used as a copy kernel")
	}
	if n.pod {
		return p.copyBytes(n, src, srcAddr, mem, dst)
	}

	switch n.base {
	case types.BaseBytes, types.BaseString:
		data, err := readOutOfLine(src, srcAddr)
		if err != nil {
			return memErr(errors.PhaseCopy, n, err)
		}
		align := uint32(1)
		if n.kind == types.KindString {
			align = n.typ.Encoding().UnitSize()
		}
		return p.writeOutOfLine(errors.PhaseCopy, n, mem, dst, append([]byte(nil), data...), align)

	case types.BaseOption:
		flag, err := src.ReadU8(srcAddr)
		if err != nil {
			return memErr(errors.PhaseCopy, n, err)
		}
		if err := mem.WriteU8(dst, flag); err != nil {
			return memErr(errors.PhaseCopy, n, err)
		}
		if flag == 0 {
			return nil
		}
		return p.copy(n.child(0), src, srcAddr+n.srcMeta.PayloadOffset, mem, dst+n.meta.PayloadOffset)

	case types.BaseTuple:
		for f, c := range n.children {
			if err := p.copy(c, src, srcAddr+n.srcMeta.FieldOffsets[f], mem, dst+n.meta.FieldOffsets[f]); err != nil {
				return errors.Prepend(err, fieldSeg(n.typ, f))
			}
		}
		return nil

	case types.BaseDim:
		sd, _, err := layout.AsStrided(n.typ, n.srcMeta, src, srcAddr)
		if err != nil {
			return memErr(errors.PhaseCopy, n, err)
		}
		dd, err := p.dimTarget(errors.PhaseCopy, n, mem, dst, sd.Count, "")
		if err != nil {
			return err
		}
		if sd.Count != dd.Count {
			return errors.Broadcast(errors.PhaseCopy, n.typ.String(), "", int(dd.Count), int(sd.Count))
		}
		for e := uint32(0); e < sd.Count; e++ {
			if err := p.copy(n.child(0), src, sd.Addr(e), mem, dd.Addr(e)); err != nil {
				return errors.Prepend(err, indexSeg(int(e)))
			}
		}
		return nil

	case types.BaseBool, types.BaseSInt, types.BaseUInt, types.BaseFloat, types.BaseComplex,
		types.BaseDateTime, types.BaseType, types.BaseCategorical:
	}
	return p.copyBytes(n, src, srcAddr, mem, dst)
}

func (p *Program) copyBytes(n *node, src typeconv.Memory, srcAddr uint32, mem typeconv.Storage, dst uint32) error {
	if n.size == 0 {
		return nil
	}
	data, err := src.Read(srcAddr, n.size)
	if err != nil {
		return memErr(errors.PhaseCopy, n, err)
	}
	return memErr(errors.PhaseCopy, n, mem.Write(dst, append([]byte(nil), data...)))
}

// dimTarget returns the destination view of a dim written with count
// elements. An unallocated var dim is initialised for count elements, which is
// only possible when its layout offset is zero. value is the repr of the
// source, reported on failure.
func (p *Program) dimTarget(phase errors.Phase, n *node, mem typeconv.Storage, dst, count uint32, value string) (layout.Dim, error) {
	if n.kind != types.KindVarDim {
		d, _, _ := layout.AsStrided(n.typ, n.meta, mem, dst)
		return d, nil
	}
	vd, err := layout.VarDimInfo(n.typ, n.meta, mem, dst)
	if err != nil {
		return layout.Dim{}, memErr(phase, n, err)
	}
	if !vd.Allocated() {
		if vd.Offset != 0 {
			return layout.Dim{}, errors.InvalidState(phase, n.typ.String(), value,
				"cannot initialize a var dim with a non-zero offset")
		}
		if vd, err = layout.InitVarDim(n.typ, n.meta, mem, dst, count); err != nil {
			return layout.Dim{}, errors.AllocationFailed(phase, count, n.meta.Stride, err)
		}
	}
	return layout.Dim{
		Elem:     n.typ.Elem(),
		ElemMeta: n.meta.Elem,
		Count:    vd.Size,
		Stride:   vd.Stride,
		Data:     vd.ElemAddr(0),
	}, nil
}
