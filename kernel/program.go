package kernel

import (
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/wippyai/typeconv"
	"github.com/wippyai/typeconv/errors"
	"github.com/wippyai/typeconv/host"
	"github.com/wippyai/typeconv/layout"
	"github.com/wippyai/typeconv/types"
	"go.uber.org/zap"
)

// Program is a compiled conversion for one (type, meta) pair. It is immutable
// once built; conversions may run concurrently on disjoint destinations.
type Program struct {
	id    uuid.UUID
	typ   *types.Type
	meta  *layout.Meta
	nodes []node
	root  uint32
	opts  options

	typed  sync.Map // typedKey -> *Program
	closed atomic.Bool
}

// typedKey identifies a helper program for typed values: a copy program into
// node, or (from set) a program reading the typed value out.
type typedKey struct {
	node uint32
	from bool
	typ  *types.Type
	meta *layout.Meta
}

// ID identifies the program in logs.
func (p *Program) ID() uuid.UUID { return p.id }

// Type returns the destination (into) or source (from) type.
func (p *Program) Type() *types.Type { return p.typ }

// Meta returns the layout metadata the program was built for.
func (p *Program) Meta() *layout.Meta { return p.meta }

// Host returns the host adapter values are converted with.
func (p *Program) Host() host.Host { return p.opts.host }

// Len returns the number of nodes in the arena.
func (p *Program) Len() int { return len(p.nodes) }

// Close releases host values owned by the program's nodes, parents before
// children. Conversions on a closed program fail with a closed error.
func (p *Program) Close() {
	if !p.closed.CompareAndSwap(false, true) {
		return
	}
	h := p.opts.host
	for i := range p.nodes {
		n := &p.nodes[i]
		for _, k := range n.keys {
			h.Release(k)
		}
		n.keys, n.index, n.store, n.storeAddrs = nil, nil, nil, nil
	}
	p.typed.Range(func(k, v any) bool {
		v.(*Program).Close()
		p.typed.Delete(k)
		return true
	})
	p.opts.logger.Debug("program closed", zap.Stringer("id", p.id), zap.Int("nodes", len(p.nodes)))
}

func (p *Program) checkOpen(phase errors.Phase) error {
	if p.closed.Load() {
		return errors.Closed(phase, p.typ.String())
	}
	return nil
}

// IntoProgram converts host values into binary layout.
type IntoProgram struct {
	Program
}

// ConvertOne writes src into the value at dst.
func (p *IntoProgram) ConvertOne(mem typeconv.Storage, dst uint32, src host.Value) error {
	if err := p.checkOpen(errors.PhaseInto); err != nil {
		return err
	}
	return p.into(p.root, mem, dst, src)
}

// ConvertN writes n values: src[i*srcStride] into dst+i*dstStride.
func (p *IntoProgram) ConvertN(mem typeconv.Storage, dst, dstStride uint32, src []host.Value, srcStride, n int) error {
	if err := p.checkOpen(errors.PhaseInto); err != nil {
		return err
	}
	if err := checkBatch(errors.PhaseInto, p.typ, len(src), srcStride, n); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := p.into(p.root, mem, dst+uint32(i)*dstStride, src[i*srcStride]); err != nil {
			return errors.Prepend(err, indexSeg(i))
		}
	}
	return nil
}

// FromProgram converts binary layout into host values.
type FromProgram struct {
	Program
}

// ConvertOne reads the value at src into *dst, releasing what *dst held.
func (p *FromProgram) ConvertOne(mem typeconv.Memory, dst *host.Value, src uint32) error {
	if err := p.checkOpen(errors.PhaseFrom); err != nil {
		return err
	}
	return p.from(p.root, mem, dst, src)
}

// ConvertN reads n values: src+i*srcStride into dst[i*dstStride].
func (p *FromProgram) ConvertN(mem typeconv.Memory, dst []host.Value, dstStride int, src, srcStride uint32, n int) error {
	if err := p.checkOpen(errors.PhaseFrom); err != nil {
		return err
	}
	if err := checkBatch(errors.PhaseFrom, p.typ, len(dst), dstStride, n); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := p.from(p.root, mem, &dst[i*dstStride], src+uint32(i)*srcStride); err != nil {
			return errors.Prepend(err, indexSeg(i))
		}
	}
	return nil
}

// CopyProgram assigns layout to layout for one type.
type CopyProgram struct {
	Program
}

// ConvertOne copies the value at src in srcMem to dst in dstMem.
func (p *CopyProgram) ConvertOne(dstMem typeconv.Storage, dst uint32, srcMem typeconv.Memory, src uint32) error {
	if err := p.checkOpen(errors.PhaseCopy); err != nil {
		return err
	}
	return p.copy(p.root, srcMem, src, dstMem, dst)
}

func checkBatch(phase errors.Phase, t *types.Type, have, stride, n int) error {
	if n < 0 || stride < 0 {
		return errors.InvalidArgument(phase, t.String(), "", "negative count or stride")
	}
	if n > 0 && (n-1)*stride >= have {
		return errors.New(phase, errors.KindOutOfBounds).
			Type(t.String()).
			Detail("%d values at stride %d need %d slots, have %d", n, stride, (n-1)*stride+1, have).
			Build()
	}
	return nil
}

func indexSeg(i int) string {
	return "[" + strconv.Itoa(i) + "]"
}
