package layout

import (
	"fmt"

	"github.com/wippyai/typeconv"
	"github.com/wippyai/typeconv/internal/abi"
	"github.com/wippyai/typeconv/types"
)

// Dim is a dimension viewed as count elements spaced stride bytes apart,
// the first at Data.
type Dim struct {
	Elem     *types.Type
	ElemMeta *Meta
	Count    uint32
	Stride   uint32
	Data     uint32
}

// Addr returns the address of element i.
func (d Dim) Addr(i uint32) uint32 {
	return d.Data + i*d.Stride
}

// AsStrided reports whether the value of t at addr can be viewed as a uniformly
// strided dimension and, if so, returns that view. Fixed dims need no memory
// access; var dims read their [begin, size] header from mem. An unallocated var
// dim is a view of zero elements.
func AsStrided(t *types.Type, meta *Meta, mem typeconv.Memory, addr uint32) (Dim, bool, error) {
	switch t.Kind() {
	case types.KindFixedDim:
		return Dim{
			Elem:     t.Elem(),
			ElemMeta: meta.ElemMeta(),
			Count:    meta.DimSize,
			Stride:   meta.Stride,
			Data:     addr,
		}, true, nil
	case types.KindVarDim:
		vd, err := VarDimInfo(t, meta, mem, addr)
		if err != nil {
			return Dim{}, false, err
		}
		return Dim{
			Elem:     t.Elem(),
			ElemMeta: meta.ElemMeta(),
			Count:    vd.Size,
			Stride:   vd.Stride,
			Data:     vd.ElemAddr(0),
		}, true, nil
	}
	return Dim{}, false, nil
}

// VarDim describes the storage of one var dim value.
type VarDim struct {
	Begin  uint32 // 0 when unallocated
	Size   uint32
	Offset uint32
	Stride uint32
}

// Allocated reports whether element storage exists.
func (v VarDim) Allocated() bool {
	return v.Begin != 0
}

// ElemAddr returns the address of element i.
func (v VarDim) ElemAddr(i uint32) uint32 {
	return v.Begin + v.Offset + i*v.Stride
}

// VarDimInfo reads the var dim header at addr.
func VarDimInfo(t *types.Type, meta *Meta, mem typeconv.Memory, addr uint32) (VarDim, error) {
	if t.Kind() != types.KindVarDim {
		return VarDim{}, fmt.Errorf("layout: %s is not a var dim", t)
	}
	begin, size, err := ReadSpan(mem, addr)
	if err != nil {
		return VarDim{}, err
	}
	return VarDim{Begin: begin, Size: size, Offset: meta.Offset, Stride: meta.Stride}, nil
}

// InitVarDim allocates zeroed storage for n elements and writes the header at addr.
func InitVarDim(t *types.Type, meta *Meta, s typeconv.Storage, addr, n uint32) (VarDim, error) {
	if n > abi.MaxElements {
		return VarDim{}, fmt.Errorf("layout: %d elements exceeds the dimension limit", n)
	}
	total, ok := abi.SafeMulU32(n, meta.Stride)
	if !ok || total > abi.MaxAlloc {
		return VarDim{}, fmt.Errorf("layout: %d elements of %d bytes exceeds the allocation limit", n, meta.Stride)
	}
	align := AlignOf(t.Elem())

	var begin uint32
	if total > 0 {
		var err error
		begin, err = s.Alloc(total, align)
		if err != nil {
			return VarDim{}, err
		}
		if err := s.Write(begin, make([]byte, total)); err != nil {
			return VarDim{}, err
		}
	} else {
		// empty arrays still need a non-zero begin to count as allocated
		var err error
		begin, err = s.Alloc(1, align)
		if err != nil {
			return VarDim{}, err
		}
	}
	if err := WriteSpan(s, addr, begin, n); err != nil {
		return VarDim{}, err
	}
	return VarDim{Begin: begin, Size: n, Offset: meta.Offset, Stride: meta.Stride}, nil
}

// ReadSpan reads a [ptr u32, len u32] header.
func ReadSpan(mem typeconv.Memory, addr uint32) (ptr, n uint32, err error) {
	if ptr, err = mem.ReadU32(addr); err != nil {
		return 0, 0, err
	}
	if n, err = mem.ReadU32(addr + 4); err != nil {
		return 0, 0, err
	}
	return ptr, n, nil
}

// WriteSpan writes a [ptr u32, len u32] header.
func WriteSpan(mem typeconv.Memory, addr, ptr, n uint32) error {
	if err := mem.WriteU32(addr, ptr); err != nil {
		return err
	}
	return mem.WriteU32(addr+4, n)
}
