package gohost

import (
	"math"
	"math/big"
	"reflect"

	"github.com/wippyai/typeconv/host"
	"github.com/wippyai/typeconv/types"
)

// Equal compares two Go host values. Integers compare by value regardless of
// Go type, as do floats. Sequences and tuples compare element-wise; mappings
// compare as sets of entries.
func Equal(a, b any) bool {
	h := Default
	ka, kb := h.Kind(a), h.Kind(b)
	if ka != kb {
		return false
	}
	switch ka {
	case host.KindNone:
		return true
	case host.KindInt:
		x, err := h.toBig(a)
		if err != nil {
			return false
		}
		y, err := h.toBig(b)
		if err != nil {
			return false
		}
		return x.Cmp(y) == 0
	case host.KindFloat:
		x, _ := h.AsFloat64(a)
		y, _ := h.AsFloat64(b)
		return x == y || (math.IsNaN(x) && math.IsNaN(y))
	case host.KindComplex:
		x, _ := h.AsComplex128(a)
		y, _ := h.AsComplex128(b)
		return x == y
	case host.KindBytes:
		x, _ := h.AsBytes(a)
		y, _ := h.AsBytes(b)
		return string(x) == string(y)
	case host.KindType:
		x, _ := h.AsType(a)
		y, _ := h.AsType(b)
		return types.Equal(x, y)
	case host.KindDateTime:
		x, _ := h.AsDateTime(a)
		y, _ := h.AsDateTime(b)
		return x.Date == y.Date && x.TimeOfDay == y.TimeOfDay
	case host.KindSequence:
		x, _ := h.Items(a)
		y, _ := h.Items(b)
		if len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case host.KindMapping:
		x, _ := h.MappingItems(a)
		y, _ := h.MappingItems(b)
		if len(x) != len(y) {
			return false
		}
		for _, ix := range x {
			found := false
			for _, iy := range y {
				if Equal(ix.Key, iy.Key) {
					if !Equal(ix.Value, iy.Value) {
						return false
					}
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

// BigInt is a convenience for building 128-bit test and fixture values.
func BigInt(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 0)
	if !ok {
		panic("gohost: invalid integer literal " + s)
	}
	return v
}
