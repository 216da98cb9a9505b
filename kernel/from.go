package kernel

import (
	"math"
	"time"
	"unicode/utf8"

	"github.com/wippyai/typeconv"
	"github.com/wippyai/typeconv/errors"
	"github.com/wippyai/typeconv/host"
	"github.com/wippyai/typeconv/internal/abi"
	"github.com/wippyai/typeconv/internal/textenc"
	"github.com/wippyai/typeconv/layout"
	"github.com/wippyai/typeconv/types"
	"github.com/x448/float16"
	"golang.org/x/exp/constraints"
)

// from reads the value of node i at src into *dst.
func (p *Program) from(i uint32, mem typeconv.Memory, dst *host.Value, src uint32) error {
	n := &p.nodes[i]
	switch n.role {
	case roleFrom:
	case roleCatDecode:
		return p.decodeCategory(n, mem, dst, src)
	case roleInto, roleCopy, roleAssignNA, roleIsMissing, roleCatEncode:
		return errors.InvalidState(errors.PhaseFrom, n.typ.String(), "", n.role.String()+" node used as a from kernel")
	}

	switch n.base {
	case types.BaseBool:
		b, err := mem.ReadU8(src)
		if err != nil {
			return memErr(errors.PhaseFrom, n, err)
		}
		return p.store(n, dst, p.opts.host.MakeBool(b != 0), nil)
	case types.BaseSInt, types.BaseUInt:
		return p.fromInt(n, mem, dst, src)
	case types.BaseFloat:
		f, err := readFloat(mem, src, n.kind)
		if err != nil {
			return memErr(errors.PhaseFrom, n, err)
		}
		v, err := p.opts.host.MakeFloat(f, n.kind.Bits())
		return p.store(n, dst, v, err)
	case types.BaseComplex:
		half := n.size / 2
		re, err := readFloat(mem, src, n.kind)
		if err != nil {
			return memErr(errors.PhaseFrom, n, err)
		}
		im, err := readFloat(mem, src+half, n.kind)
		if err != nil {
			return memErr(errors.PhaseFrom, n, err)
		}
		v, err := p.opts.host.MakeComplex(complex(re, im), n.kind.Bits())
		return p.store(n, dst, v, err)
	case types.BaseBytes:
		return p.fromBytes(n, mem, dst, src)
	case types.BaseString:
		return p.fromString(n, mem, dst, src)
	case types.BaseDateTime:
		return p.fromDateTime(n, mem, dst, src)
	case types.BaseType:
		return p.fromType(n, mem, dst, src)
	case types.BaseOption:
		missing, err := p.isMissing(n.child(0), mem, src)
		if err != nil {
			return err
		}
		if missing {
			return p.store(n, dst, p.opts.host.MakeNone(), nil)
		}
		if err := p.from(n.child(1), mem, dst, src+n.meta.PayloadOffset); err != nil {
			return errors.Prepend(err, "?")
		}
		return nil
	case types.BaseTuple:
		if n.kind == types.KindStruct {
			return p.fromStruct(n, mem, dst, src)
		}
		return p.fromTuple(n, mem, dst, src)
	case types.BaseDim:
		return p.fromDim(n, mem, dst, src)
	case types.BaseCategorical:
		return p.decodeCategory(n, mem, dst, src)
	}
	return errors.Unsupported(errors.PhaseFrom, n.typ.String())
}

// store writes a constructed value into dst, releasing the previous value.
// A failed construction leaves dst holding none.
func (p *Program) store(n *node, dst *host.Value, v host.Value, err error) error {
	if err != nil {
		err = p.hostFailure(errors.PhaseFrom, n, nil, err)
	}
	return host.Replace(p.opts.host, dst, v, err)
}

func (p *Program) isMissing(i uint32, mem typeconv.Memory, src uint32) (bool, error) {
	n := &p.nodes[i]
	flag, err := mem.ReadU8(src)
	if err != nil {
		return false, memErr(errors.PhaseFrom, n, err)
	}
	return flag == 0, nil
}

func asSigned[T constraints.Signed](u uint64) int64 {
	return int64(T(u))
}

func (p *Program) fromInt(n *node, mem typeconv.Memory, dst *host.Value, src uint32) error {
	h := p.opts.host
	bits := n.kind.Bits()
	if bits == 128 {
		return p.fromInt128(n, mem, dst, src)
	}
	raw, err := readUint(mem, src, bits)
	if err != nil {
		return memErr(errors.PhaseFrom, n, err)
	}
	if n.base == types.BaseUInt {
		v, err := h.MakeUint(raw, bits)
		return p.store(n, dst, v, err)
	}
	var x int64
	switch n.kind {
	case types.KindInt8:
		x = asSigned[int8](raw)
	case types.KindInt16:
		x = asSigned[int16](raw)
	case types.KindInt32:
		x = asSigned[int32](raw)
	default:
		x = asSigned[int64](raw)
	}
	v, err := h.MakeInt(x, bits)
	return p.store(n, dst, v, err)
}

// fromInt128 rebuilds the value from its halves with host arithmetic,
// negating the magnitude when the sign bit is set.
func (p *Program) fromInt128(n *node, mem typeconv.Memory, dst *host.Value, src uint32) error {
	h := p.opts.host
	lo, err := mem.ReadU64(src)
	if err != nil {
		return memErr(errors.PhaseFrom, n, err)
	}
	hi, err := mem.ReadU64(src + 8)
	if err != nil {
		return memErr(errors.PhaseFrom, n, err)
	}
	negative := n.base == types.BaseSInt && hi>>63 == 1
	if negative {
		lo, hi = ^lo+1, ^hi
		if lo == 0 {
			hi++
		}
	}

	v, err := p.compose128(lo, hi)
	if err == nil && negative {
		var neg host.Value
		neg, err = h.IntNeg(v)
		h.Release(v)
		v = neg
	}
	return p.store(n, dst, v, err)
}

func (p *Program) compose128(lo, hi uint64) (host.Value, error) {
	h := p.opts.host
	if hi == 0 {
		return h.MakeUint(lo, 128)
	}
	high, err := h.MakeUint(hi, 128)
	if err != nil {
		return nil, err
	}
	shifted, err := h.IntShl(high, 64)
	h.Release(high)
	if err != nil {
		return nil, err
	}
	defer h.Release(shifted)
	low, err := h.MakeUint(lo, 128)
	if err != nil {
		return nil, err
	}
	defer h.Release(low)
	return h.IntOr(shifted, low)
}

func readUint(mem typeconv.Memory, src uint32, bits int) (uint64, error) {
	switch bits {
	case 8:
		v, err := mem.ReadU8(src)
		return uint64(v), err
	case 16:
		v, err := mem.ReadU16(src)
		return uint64(v), err
	case 32:
		v, err := mem.ReadU32(src)
		return uint64(v), err
	}
	return mem.ReadU64(src)
}

func readFloat(mem typeconv.Memory, src uint32, k types.Kind) (float64, error) {
	switch k {
	case types.KindFloat16:
		u, err := mem.ReadU16(src)
		return float64(float16.Frombits(u).Float32()), err
	case types.KindFloat32, types.KindComplex64:
		u, err := mem.ReadU32(src)
		return float64(math.Float32frombits(u)), err
	}
	u, err := mem.ReadU64(src)
	return math.Float64frombits(u), err
}

func (p *Program) fromBytes(n *node, mem typeconv.Memory, dst *host.Value, src uint32) error {
	var data []byte
	var err error
	if n.kind == types.KindFixedBytes {
		data, err = mem.Read(src, n.size)
	} else {
		data, err = readOutOfLine(mem, src)
	}
	if err != nil {
		return memErr(errors.PhaseFrom, n, err)
	}
	v, err := p.opts.host.MakeBytes(data)
	return p.store(n, dst, v, err)
}

func readOutOfLine(mem typeconv.Memory, src uint32) ([]byte, error) {
	ptr, size, err := layout.ReadSpan(mem, src)
	if err != nil || size == 0 {
		return nil, err
	}
	return mem.Read(ptr, size)
}

func (p *Program) fromString(n *node, mem typeconv.Memory, dst *host.Value, src uint32) error {
	h := p.opts.host
	if n.kind == types.KindChar {
		u, err := mem.ReadU32(src)
		if err != nil {
			return memErr(errors.PhaseFrom, n, err)
		}
		if !abi.ValidateChar(rune(u)) {
			return errors.New(errors.PhaseFrom, errors.KindInvalidData).
				Type(n.typ.String()).
				Detail("invalid code point U+%X", u).
				Build()
		}
		v, err := h.MakeText(utf8.AppendRune(nil, rune(u)), types.UTF32)
		return p.store(n, dst, v, err)
	}

	enc := n.typ.Encoding()
	var data []byte
	var err error
	if n.kind == types.KindFixedString {
		data, err = mem.Read(src, n.size)
		data = textenc.Trim(enc, data)
	} else {
		data, err = readOutOfLine(mem, src)
	}
	if err != nil {
		return memErr(errors.PhaseFrom, n, err)
	}
	text, err := textenc.Decode(enc, data)
	if err != nil {
		return errors.Encoding(errors.PhaseFrom, n.typ.String(), "", err)
	}
	v, err := h.MakeText(text, enc)
	return p.store(n, dst, v, err)
}

func (p *Program) fromDateTime(n *node, mem typeconv.Memory, dst *host.Value, src uint32) error {
	h := p.opts.host
	switch n.kind {
	case types.KindDate:
		u, err := mem.ReadU32(src)
		if err != nil {
			return memErr(errors.PhaseFrom, n, err)
		}
		v, err := h.MakeDate(civilDate(int64(int32(u))))
		return p.store(n, dst, v, err)
	case types.KindTime:
		u, err := mem.ReadU64(src)
		if err != nil {
			return memErr(errors.PhaseFrom, n, err)
		}
		ticks := int64(u)
		if ticks < 0 || ticks >= abi.TicksPerDay {
			return errors.New(errors.PhaseFrom, errors.KindInvalidData).
				Type(n.typ.String()).
				Detail("time of day %d ticks out of range", ticks).
				Build()
		}
		v, err := h.MakeTime(civilTime(ticks))
		return p.store(n, dst, v, err)
	}
	u, err := mem.ReadU64(src)
	if err != nil {
		return memErr(errors.PhaseFrom, n, err)
	}
	ticks := int64(u)
	days := ticks / abi.TicksPerDay
	rem := ticks % abi.TicksPerDay
	if rem < 0 {
		days--
		rem += abi.TicksPerDay
	}
	v, err := h.MakeDateTime(host.DateTime{Date: civilDate(days), TimeOfDay: civilTime(rem)})
	return p.store(n, dst, v, err)
}

func civilDate(days int64) host.Date {
	y, m, d := time.Unix(days*86400, 0).UTC().Date()
	return host.Date{Year: y, Month: int(m), Day: d}
}

func civilTime(ticks int64) host.TimeOfDay {
	secs := ticks / abi.TicksPerSecond
	return host.TimeOfDay{
		Hour:       int(secs / 3600),
		Minute:     int(secs / 60 % 60),
		Second:     int(secs % 60),
		Nanosecond: int(ticks%abi.TicksPerSecond) * abi.NanosPerTick,
	}
}

func (p *Program) fromType(n *node, mem typeconv.Memory, dst *host.Value, src uint32) error {
	h := p.opts.host
	id, err := mem.ReadU32(src)
	if err != nil {
		return memErr(errors.PhaseFrom, n, err)
	}
	if id == 0 {
		return p.store(n, dst, h.MakeNone(), nil)
	}
	t, ok := types.Lookup(id)
	if !ok {
		return errors.New(errors.PhaseFrom, errors.KindInvalidData).
			Type(n.typ.String()).
			Detail("unknown type id %d", id).
			Build()
	}
	v, err := h.MakeType(t)
	return p.store(n, dst, v, err)
}

func (p *Program) fromTuple(n *node, mem typeconv.Memory, dst *host.Value, src uint32) error {
	h := p.opts.host
	tuple, slots, err := h.MakeTuple(len(n.children))
	if err != nil {
		return p.store(n, dst, nil, err)
	}
	for f, c := range n.children {
		if err := p.from(c, mem, &slots[f], src+n.meta.FieldOffsets[f]); err != nil {
			h.Release(tuple)
			return errors.Prepend(err, indexSeg(f))
		}
	}
	return p.store(n, dst, tuple, nil)
}

func (p *Program) fromStruct(n *node, mem typeconv.Memory, dst *host.Value, src uint32) error {
	h := p.opts.host
	m, err := h.MakeMapping(len(n.children))
	if err != nil {
		return p.store(n, dst, nil, err)
	}
	for f, c := range n.children {
		var v host.Value
		if err := p.from(c, mem, &v, src+n.meta.FieldOffsets[f]); err != nil {
			h.Release(m)
			return errors.Prepend(err, n.typ.Field(f).Name)
		}
		if err := h.SetKey(m, n.keys[f], v); err != nil {
			h.Release(v)
			h.Release(m)
			return p.store(n, dst, nil, err)
		}
	}
	return p.store(n, dst, m, nil)
}

func (p *Program) fromDim(n *node, mem typeconv.Memory, dst *host.Value, src uint32) error {
	h := p.opts.host
	d, _, err := layout.AsStrided(n.typ, n.meta, mem, src)
	if err != nil {
		return memErr(errors.PhaseFrom, n, err)
	}
	if d.Count > abi.MaxElements {
		return errors.New(errors.PhaseFrom, errors.KindInvalidData).
			Type(n.typ.String()).
			Detail("%d elements exceeds the dimension limit", d.Count).
			Build()
	}
	seq, slots, err := h.MakeSequence(int(d.Count))
	if err != nil {
		return p.store(n, dst, nil, err)
	}
	elem := n.child(0)
	for e := range slots {
		if err := p.from(elem, mem, &slots[e], d.Addr(uint32(e))); err != nil {
			h.Release(seq)
			return errors.Prepend(err, indexSeg(e))
		}
	}
	return p.store(n, dst, seq, nil)
}
