package kernel

import (
	"unicode/utf8"

	"github.com/wippyai/typeconv"
	"github.com/wippyai/typeconv/errors"
	"github.com/wippyai/typeconv/host"
	"github.com/wippyai/typeconv/internal/abi"
	"github.com/wippyai/typeconv/internal/textenc"
	"github.com/wippyai/typeconv/layout"
	"github.com/wippyai/typeconv/types"
)

func (p *Program) intoBytes(n *node, mem typeconv.Storage, dst uint32, v host.Value) error {
	h := p.opts.host
	if h.Kind(v) != host.KindBytes {
		return p.invalid(n, v, "expected bytes")
	}
	data, err := h.AsBytes(v)
	if err != nil {
		return p.hostFailure(errors.PhaseInto, n, v, err)
	}
	if n.kind == types.KindFixedBytes {
		if uint32(len(data)) != n.size {
			return errors.New(errors.PhaseInto, errors.KindInvalidArgument).
				Type(n.typ.String()).
				Value(h.Repr(v)).
				Detail("expected exactly %d bytes, got %d", n.size, len(data)).
				Build()
		}
		return memErr(errors.PhaseInto, n, mem.Write(dst, data))
	}
	return p.writeOutOfLine(errors.PhaseInto, n, mem, dst, data, 1)
}

// writeOutOfLine allocates storage for data and writes its [ptr, len] header.
func (p *Program) writeOutOfLine(phase errors.Phase, n *node, mem typeconv.Storage, dst uint32, data []byte, align uint32) error {
	if len(data) > abi.MaxAlloc {
		return errors.AllocationFailed(phase, uint32(min(len(data), abi.MaxAlloc+1)), align, nil)
	}
	size := uint32(len(data))
	if size == 0 {
		return memErr(phase, n, layout.WriteSpan(mem, dst, 0, 0))
	}
	ptr, err := mem.Alloc(size, align)
	if err != nil {
		return errors.AllocationFailed(phase, size, align, err)
	}
	if err := mem.Write(ptr, data); err != nil {
		return memErr(phase, n, err)
	}
	return memErr(phase, n, layout.WriteSpan(mem, dst, ptr, size))
}

func (p *Program) intoString(n *node, mem typeconv.Storage, dst uint32, v host.Value) error {
	h := p.opts.host
	if h.Kind(v) != host.KindText {
		return p.mismatch(n, v, "expected text")
	}
	text, err := h.AsUTF8(v)
	if err != nil {
		return p.hostFailure(errors.PhaseInto, n, v, err)
	}

	if n.kind == types.KindChar {
		r, size := utf8.DecodeRune(text)
		if size == 0 || size != len(text) || r == utf8.RuneError {
			return p.invalid(n, v, "expected exactly one character")
		}
		if !abi.ValidateChar(r) {
			return p.invalid(n, v, "not a valid code point")
		}
		return memErr(errors.PhaseInto, n, mem.WriteU32(dst, uint32(r)))
	}

	enc := n.typ.Encoding()
	data, err := textenc.Encode(enc, text)
	if err != nil {
		return errors.Encoding(errors.PhaseInto, n.typ.String(), h.Repr(v), err)
	}
	if n.kind == types.KindFixedString {
		if uint32(len(data)) > n.size {
			return errors.New(errors.PhaseInto, errors.KindInvalidArgument).
				Type(n.typ.String()).
				Value(h.Repr(v)).
				Detail("needs %d bytes, fixed string holds %d", len(data), n.size).
				Build()
		}
		padded := make([]byte, n.size)
		copy(padded, data)
		return memErr(errors.PhaseInto, n, mem.Write(dst, padded))
	}
	return p.writeOutOfLine(errors.PhaseInto, n, mem, dst, data, enc.UnitSize())
}

func (p *Program) intoType(n *node, mem typeconv.Storage, dst uint32, v host.Value) error {
	h := p.opts.host
	if h.Kind(v) != host.KindType {
		return p.mismatch(n, v, "expected a type")
	}
	t, err := h.AsType(v)
	if err != nil {
		return p.hostFailure(errors.PhaseInto, n, v, err)
	}
	return memErr(errors.PhaseInto, n, mem.WriteU32(dst, types.Intern(t)))
}
