package layout

import (
	"math"

	"github.com/wippyai/typeconv/internal/abi"
	"github.com/wippyai/typeconv/types"
)

// Info is the size and alignment of a type's inline data.
type Info struct {
	Size  uint32
	Align uint32
}

// Calculator computes and caches layout info. Not safe for concurrent use.
type Calculator struct {
	cache map[*types.Type]Info
}

func NewCalculator() *Calculator {
	return &Calculator{
		cache: make(map[*types.Type]Info),
	}
}

// SizeOf returns the inline size of t.
func SizeOf(t *types.Type) uint32 {
	return NewCalculator().Calculate(t).Size
}

// AlignOf returns the alignment of t.
func AlignOf(t *types.Type) uint32 {
	return NewCalculator().Calculate(t).Align
}

func (c *Calculator) Calculate(t *types.Type) Info {
	if cached, ok := c.cache[t]; ok {
		return cached
	}

	var info Info
	switch t.Kind() {
	case types.KindBool, types.KindInt8, types.KindUint8:
		info = Info{Size: 1, Align: 1}
	case types.KindInt16, types.KindUint16, types.KindFloat16:
		info = Info{Size: 2, Align: 2}
	case types.KindInt32, types.KindUint32, types.KindFloat32,
		types.KindChar, types.KindDate, types.KindType:
		info = Info{Size: 4, Align: 4}
	case types.KindInt64, types.KindUint64, types.KindFloat64,
		types.KindTime, types.KindDateTime:
		info = Info{Size: 8, Align: 8}
	case types.KindComplex64:
		info = Info{Size: 8, Align: 4}
	case types.KindInt128, types.KindUint128, types.KindComplex128:
		info = Info{Size: 16, Align: 8}
	case types.KindBytes, types.KindString, types.KindVarDim:
		info = Info{Size: 8, Align: 4} // [ptr: u32, len: u32]
	case types.KindFixedBytes:
		info = Info{Size: t.FixedSize(), Align: t.FixedAlign()}
	case types.KindFixedString:
		unit := t.Encoding().UnitSize()
		info = Info{Size: mulSat(t.FixedSize(), unit), Align: unit}
	case types.KindOption:
		info = c.calculateOption(t)
	case types.KindTuple, types.KindStruct:
		info, _ = c.calculateRecord(t)
	case types.KindFixedDim:
		elem := c.Calculate(t.Elem())
		stride := abi.AlignTo(elem.Size, elem.Align)
		info = Info{Size: mulSat(uint32(t.DimSize()), stride), Align: elem.Align}
	case types.KindCategorical:
		size := abi.DiscriminantSize(t.NumCategories())
		info = Info{Size: size, Align: size}
	}

	c.cache[t] = info
	return info
}

func (c *Calculator) calculateOption(t *types.Type) Info {
	inner := c.Calculate(t.Elem())

	maxAlign := inner.Align
	if maxAlign < 1 {
		maxAlign = 1
	}
	payloadOffset := abi.AlignTo(1, maxAlign)
	totalSize := abi.AlignTo(payloadOffset+inner.Size, maxAlign)

	return Info{
		Size:  totalSize,
		Align: maxAlign,
	}
}

func (c *Calculator) calculateRecord(t *types.Type) (Info, []uint32) {
	n := t.NumFields()
	if n == 0 {
		return Info{Size: 0, Align: 1}, nil
	}

	offsets := make([]uint32, n)
	maxAlign := uint32(1)
	offset := uint32(0)

	for i := 0; i < n; i++ {
		fieldLayout := c.Calculate(t.Field(i).Type)

		offset = abi.AlignTo(offset, fieldLayout.Align)
		offsets[i] = offset

		if fieldLayout.Align > maxAlign {
			maxAlign = fieldLayout.Align
		}

		offset += fieldLayout.Size
	}

	return Info{
		Size:  abi.AlignTo(offset, maxAlign),
		Align: maxAlign,
	}, offsets
}

// Default returns the C-contiguous metadata of t.
func Default(t *types.Type) *Meta {
	return NewCalculator().Default(t)
}

func (c *Calculator) Default(t *types.Type) *Meta {
	switch t.Kind() {
	case types.KindFixedDim:
		elem := c.Calculate(t.Elem())
		return &Meta{
			DimSize: uint32(t.DimSize()),
			Stride:  abi.AlignTo(elem.Size, elem.Align),
			Elem:    c.Default(t.Elem()),
		}
	case types.KindVarDim:
		elem := c.Calculate(t.Elem())
		return &Meta{
			Stride: abi.AlignTo(elem.Size, elem.Align),
			Elem:   c.Default(t.Elem()),
		}
	case types.KindTuple, types.KindStruct:
		_, offsets := c.calculateRecord(t)
		fields := make([]*Meta, t.NumFields())
		for i := range fields {
			fields[i] = c.Default(t.Field(i).Type)
		}
		return &Meta{FieldOffsets: offsets, Fields: fields}
	case types.KindOption:
		inner := c.Calculate(t.Elem())
		return &Meta{
			PayloadOffset: abi.AlignTo(1, max(inner.Align, 1)),
			Elem:          c.Default(t.Elem()),
		}
	case types.KindCategorical:
		return &Meta{Elem: c.Default(t.Elem())}
	default:
		return nil
	}
}

func mulSat(a, b uint32) uint32 {
	v, ok := abi.SafeMulU32(a, b)
	if !ok {
		return math.MaxUint32
	}
	return v
}
