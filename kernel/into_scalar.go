package kernel

import (
	"math"
	"math/big"

	"fortio.org/safecast"
	"github.com/wippyai/typeconv"
	"github.com/wippyai/typeconv/errors"
	"github.com/wippyai/typeconv/host"
	"github.com/wippyai/typeconv/types"
	"github.com/x448/float16"
)

func (p *Program) intoBool(n *node, mem typeconv.Storage, dst uint32, v host.Value) error {
	h := p.opts.host
	var b bool
	switch h.Kind(v) {
	case host.KindBool:
		x, err := h.AsBool(v)
		if err != nil {
			return p.hostFailure(errors.PhaseInto, n, v, err)
		}
		b = x
	case host.KindSequence, host.KindMapping:
		return p.mismatch(n, v, "a container does not convert to bool")
	default:
		x, err := p.coerceBool(n, v)
		if err != nil {
			return err
		}
		b = x
	}
	var u uint8
	if b {
		u = 1
	}
	return memErr(errors.PhaseInto, n, mem.WriteU8(dst, u))
}

func (p *Program) intoInt(n *node, mem typeconv.Storage, dst uint32, v host.Value) error {
	h := p.opts.host
	if h.Kind(v) != host.KindInt {
		b, err := p.coerceBigInt(n, v)
		if err != nil {
			return err
		}
		return p.storeBig(n, mem, dst, b, v)
	}

	bits := n.kind.Bits()
	if bits == 128 {
		return p.intoInt128(n, mem, dst, v)
	}
	var raw uint64
	if n.base == types.BaseSInt {
		x, err := h.AsInt64(v)
		if err != nil {
			return p.intErr(n, v, err)
		}
		if raw, err = narrowSigned(n.kind, x); err != nil {
			return errors.Overflow(errors.PhaseInto, n.typ.String(), h.Repr(v))
		}
	} else {
		x, err := h.AsUint64(v)
		if err != nil {
			return p.intErr(n, v, err)
		}
		if raw, err = narrowUnsigned(n.kind, x); err != nil {
			return errors.Overflow(errors.PhaseInto, n.typ.String(), h.Repr(v))
		}
	}
	return memErr(errors.PhaseInto, n, writeUint(mem, dst, bits, raw))
}

func (p *Program) intErr(n *node, v host.Value, err error) error {
	if errors.Is(err, host.ErrOutOfRange) {
		return errors.Overflow(errors.PhaseInto, n.typ.String(), p.opts.host.Repr(v))
	}
	return p.hostFailure(errors.PhaseInto, n, v, err)
}

// narrowSigned returns the two's complement bits of x at the width of k.
func narrowSigned(k types.Kind, x int64) (uint64, error) {
	switch k {
	case types.KindInt8:
		y, err := safecast.Conv[int8](x)
		return uint64(uint8(y)), err
	case types.KindInt16:
		y, err := safecast.Conv[int16](x)
		return uint64(uint16(y)), err
	case types.KindInt32:
		y, err := safecast.Conv[int32](x)
		return uint64(uint32(y)), err
	}
	return uint64(x), nil
}

func narrowUnsigned(k types.Kind, x uint64) (uint64, error) {
	switch k {
	case types.KindUint8:
		y, err := safecast.Conv[uint8](x)
		return uint64(y), err
	case types.KindUint16:
		y, err := safecast.Conv[uint16](x)
		return uint64(y), err
	case types.KindUint32:
		y, err := safecast.Conv[uint32](x)
		return uint64(y), err
	}
	return x, nil
}

// intoInt128 splits a host integer into two 64-bit halves with host shift and
// mask operations. Whatever remains above bit 128 must be the sign extension
// of the result: 0, or -1 for negative signed values.
func (p *Program) intoInt128(n *node, mem typeconv.Storage, dst uint32, v host.Value) error {
	h := p.opts.host
	lo, err := h.IntLow64(v)
	if err != nil {
		return p.hostFailure(errors.PhaseInto, n, v, err)
	}
	upper, err := h.IntRsh(v, 64)
	if err != nil {
		return p.hostFailure(errors.PhaseInto, n, v, err)
	}
	defer h.Release(upper)
	hi, err := h.IntLow64(upper)
	if err != nil {
		return p.hostFailure(errors.PhaseInto, n, v, err)
	}
	rest, err := h.IntRsh(upper, 64)
	if err != nil {
		return p.hostFailure(errors.PhaseInto, n, v, err)
	}
	defer h.Release(rest)
	top, err := h.AsInt64(rest)
	if err != nil && !errors.Is(err, host.ErrOutOfRange) {
		return p.hostFailure(errors.PhaseInto, n, v, err)
	}

	var ok bool
	if n.base == types.BaseSInt {
		negative := hi>>63 == 1
		ok = err == nil && ((top == 0 && !negative) || (top == -1 && negative))
	} else {
		ok = err == nil && top == 0
	}
	if !ok {
		return errors.Overflow(errors.PhaseInto, n.typ.String(), h.Repr(v))
	}
	return write128(mem, dst, n, lo, hi)
}

var bigOne = big.NewInt(1)

// storeBig range checks a coerced integer and writes it at the node's width.
func (p *Program) storeBig(n *node, mem typeconv.Storage, dst uint32, b *big.Int, v host.Value) error {
	bits := uint(n.kind.Bits())
	var lo, hi *big.Int
	if n.base == types.BaseSInt {
		hi = new(big.Int).Lsh(bigOne, bits-1)
		lo = new(big.Int).Neg(hi)
		hi.Sub(hi, bigOne)
	} else {
		lo = new(big.Int)
		hi = new(big.Int).Lsh(bigOne, bits)
		hi.Sub(hi, bigOne)
	}
	if b.Cmp(lo) < 0 || b.Cmp(hi) > 0 {
		return errors.Overflow(errors.PhaseInto, n.typ.String(), p.opts.host.Repr(v))
	}

	u := b
	if b.Sign() < 0 {
		u = new(big.Int).Add(b, new(big.Int).Lsh(bigOne, bits))
	}
	low := new(big.Int).And(u, maxU64).Uint64()
	if bits == 128 {
		high := new(big.Int).Rsh(u, 64).Uint64()
		return write128(mem, dst, n, low, high)
	}
	return memErr(errors.PhaseInto, n, writeUint(mem, dst, int(bits), low))
}

var maxU64 = new(big.Int).SetUint64(math.MaxUint64)

func write128(mem typeconv.Memory, dst uint32, n *node, lo, hi uint64) error {
	if err := mem.WriteU64(dst, lo); err != nil {
		return memErr(errors.PhaseInto, n, err)
	}
	return memErr(errors.PhaseInto, n, mem.WriteU64(dst+8, hi))
}

func writeUint(mem typeconv.Memory, dst uint32, bits int, v uint64) error {
	switch bits {
	case 8:
		return mem.WriteU8(dst, uint8(v))
	case 16:
		return mem.WriteU16(dst, uint16(v))
	case 32:
		return mem.WriteU32(dst, uint32(v))
	}
	return mem.WriteU64(dst, v)
}

func (p *Program) intoFloat(n *node, mem typeconv.Storage, dst uint32, v host.Value) error {
	h := p.opts.host
	var f float64
	if h.Kind(v) == host.KindFloat {
		x, err := h.AsFloat64(v)
		if err != nil {
			return p.hostFailure(errors.PhaseInto, n, v, err)
		}
		f = x
	} else {
		x, err := p.coerceFloat(n, v)
		if err != nil {
			return err
		}
		f = x
	}
	return memErr(errors.PhaseInto, n, writeFloat(mem, dst, n.kind, f))
}

func writeFloat(mem typeconv.Memory, dst uint32, k types.Kind, f float64) error {
	switch k {
	case types.KindFloat16:
		return mem.WriteU16(dst, float16.Fromfloat32(float32(f)).Bits())
	case types.KindFloat32, types.KindComplex64:
		return mem.WriteU32(dst, math.Float32bits(float32(f)))
	}
	return mem.WriteU64(dst, math.Float64bits(f))
}

func (p *Program) intoComplex(n *node, mem typeconv.Storage, dst uint32, v host.Value) error {
	h := p.opts.host
	var c complex128
	if h.Kind(v) == host.KindComplex {
		x, err := h.AsComplex128(v)
		if err != nil {
			return p.hostFailure(errors.PhaseInto, n, v, err)
		}
		c = x
	} else {
		x, err := p.coerceComplex(n, v)
		if err != nil {
			return err
		}
		c = x
	}
	half := n.size / 2
	if err := writeFloat(mem, dst, n.kind, real(c)); err != nil {
		return memErr(errors.PhaseInto, n, err)
	}
	return memErr(errors.PhaseInto, n, writeFloat(mem, dst+half, n.kind, imag(c)))
}
