package kernel

import (
	"github.com/wippyai/typeconv"
	"github.com/wippyai/typeconv/errors"
	"github.com/wippyai/typeconv/host"
	"github.com/wippyai/typeconv/types"
)

// naTokens are texts meaning "missing" for options over non-text values.
var naTokens = map[string]bool{
	"":     true,
	"NA":   true,
	"null": true,
	"None": true,
}

func (p *Program) intoOption(n *node, mem typeconv.Storage, dst uint32, v host.Value) error {
	h := p.opts.host
	switch h.Kind(v) {
	case host.KindNone:
		return p.assignNA(n.child(0), mem, dst)
	case host.KindText:
		if !n.typ.Elem().Kind().IsStringKind() {
			s, err := h.AsUTF8(v)
			if err != nil {
				return p.hostFailure(errors.PhaseInto, n, v, err)
			}
			if naTokens[string(s)] {
				return p.assignNA(n.child(0), mem, dst)
			}
		}
	}
	// the option reads as missing until the payload is complete
	if err := p.assignNA(n.child(0), mem, dst); err != nil {
		return err
	}
	if err := p.into(n.child(1), mem, dst+n.meta.PayloadOffset, v); err != nil {
		return errors.Prepend(err, "?")
	}
	return memErr(errors.PhaseInto, n, mem.WriteU8(dst, 1))
}

func (p *Program) assignNA(i uint32, mem typeconv.Memory, dst uint32) error {
	n := &p.nodes[i]
	return memErr(errors.PhaseInto, n, mem.WriteU8(dst, 0))
}

// items returns the elements a tuple, struct or dim kernel iterates over.
// With scalar broadcast, a value nested less deeply than the destination is a
// one-element sequence.
func (p *Program) items(n *node, v host.Value) ([]host.Value, error) {
	h := p.opts.host
	if h.Kind(v) == host.KindSequence {
		if !p.opts.scalarBroadcast || p.depth(v) >= n.typ.Ndim() {
			items, err := h.Items(v)
			if err != nil {
				return nil, p.hostFailure(errors.PhaseInto, n, v, err)
			}
			return items, nil
		}
		return []host.Value{v}, nil
	}
	if p.opts.scalarBroadcast {
		return []host.Value{v}, nil
	}
	return nil, p.mismatch(n, v, "expected a sequence")
}

// depth returns how many sequences are nested at the front of v.
func (p *Program) depth(v host.Value) int {
	h := p.opts.host
	d := 0
	for h.Kind(v) == host.KindSequence {
		d++
		items, err := h.Items(v)
		if err != nil || len(items) == 0 {
			break
		}
		v = items[0]
	}
	return d
}

func (p *Program) intoRecord(n *node, mem typeconv.Storage, dst uint32, v host.Value) error {
	if n.kind == types.KindStruct && p.opts.host.Kind(v) == host.KindMapping {
		return p.intoStructMapping(n, mem, dst, v)
	}
	items, err := p.items(n, v)
	if err != nil {
		return err
	}
	nf := len(n.children)
	switch len(items) {
	case nf:
		for f, c := range n.children {
			if err := p.into(c, mem, dst+n.meta.FieldOffsets[f], items[f]); err != nil {
				return errors.Prepend(err, fieldSeg(n.typ, f))
			}
		}
		return nil
	case 1:
		for f, c := range n.children {
			if err := p.into(c, mem, dst+n.meta.FieldOffsets[f], items[0]); err != nil {
				return errors.Prepend(err, fieldSeg(n.typ, f))
			}
		}
		return nil
	}
	return errors.Broadcast(errors.PhaseInto, n.typ.String(), p.opts.host.Repr(v), nf, len(items))
}

// intoStructMapping assigns fields by key. The scan covers every entry so
// that all unknown keys can be reported; the first error found wins.
func (p *Program) intoStructMapping(n *node, mem typeconv.Storage, dst uint32, v host.Value) error {
	h := p.opts.host
	entries, err := h.MappingItems(v)
	if err != nil {
		return p.hostFailure(errors.PhaseInto, n, v, err)
	}

	seen := make([]bool, len(n.children))
	var first error
	var unknown []string
	unknownFirst := false
	for _, e := range entries {
		name, ok := p.keyName(e.Key)
		f := -1
		if ok {
			f = n.typ.FieldIndex(name)
		}
		if f < 0 {
			unknown = append(unknown, name)
			if first == nil {
				unknownFirst = true
			}
			continue
		}
		seen[f] = true
		if first != nil || unknownFirst {
			continue
		}
		if err := p.into(n.child(f), mem, dst+n.meta.FieldOffsets[f], e.Value); err != nil {
			first = errors.Prepend(err, name)
		}
	}
	if unknownFirst {
		return errors.FieldUnknown(errors.PhaseInto, n.typ.String(), p.opts.host.Repr(v), unknown...)
	}
	if first != nil {
		return first
	}
	for f, ok := range seen {
		if !ok {
			return errors.FieldMissing(errors.PhaseInto, n.typ.String(), p.opts.host.Repr(v), n.typ.Field(f).Name)
		}
	}
	return nil
}

// keyName returns a mapping key as a field name; non-text keys are rendered
// with Repr and never match.
func (p *Program) keyName(k host.Value) (string, bool) {
	h := p.opts.host
	if h.Kind(k) != host.KindText {
		return h.Repr(k), false
	}
	b, err := h.AsUTF8(k)
	if err != nil {
		return h.Repr(k), false
	}
	return string(b), true
}

func (p *Program) intoDim(n *node, mem typeconv.Storage, dst uint32, v host.Value) error {
	items, err := p.items(n, v)
	if err != nil {
		return err
	}

	d, err := p.dimTarget(errors.PhaseInto, n, mem, dst, uint32(len(items)), p.opts.host.Repr(v))
	if err != nil {
		return err
	}

	elem, fan := n.child(0), n.child(1)
	switch {
	case uint32(len(items)) == d.Count:
		for e, item := range items {
			if err := p.into(elem, mem, d.Addr(uint32(e)), item); err != nil {
				return errors.Prepend(err, indexSeg(e))
			}
		}
		return nil
	case len(items) == 1:
		if d.Count == 0 {
			return nil
		}
		if err := p.into(elem, mem, d.Data, items[0]); err != nil {
			return errors.Prepend(err, indexSeg(0))
		}
		for e := uint32(1); e < d.Count; e++ {
			if err := p.copy(fan, mem, d.Data, mem, d.Addr(e)); err != nil {
				return errors.Prepend(err, indexSeg(int(e)))
			}
		}
		return nil
	}
	return errors.Broadcast(errors.PhaseInto, n.typ.String(), p.opts.host.Repr(v), int(d.Count), len(items))
}
