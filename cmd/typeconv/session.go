package main

import (
	"fmt"
	"strings"

	"github.com/wippyai/typeconv"
	"github.com/wippyai/typeconv/host"
	"github.com/wippyai/typeconv/host/gohost"
	"github.com/wippyai/typeconv/kernel"
	"github.com/wippyai/typeconv/layout"
	"github.com/wippyai/typeconv/types"
)

// heap is the storage one conversion writes into.
type heap interface {
	typeconv.Storage
	// Next is the first address past everything allocated so far.
	Next() uint32
}

type bufferHeap struct {
	*layout.Buffer
}

func (b bufferHeap) Next() uint32 { return b.Size() }

// session converts values of one type, each into a fresh heap.
type session struct {
	typ     *types.Type
	into    *kernel.IntoProgram
	from    *kernel.FromProgram
	newHeap func() (heap, error)
}

type result struct {
	addr uint32
	data []byte
	out  host.Value
}

func newSession(t *types.Type, newHeap func() (heap, error), opts ...kernel.Option) (*session, error) {
	into, err := kernel.InstantiateInto(t, nil, opts...)
	if err != nil {
		return nil, err
	}
	from, err := kernel.InstantiateFrom(t, nil, opts...)
	if err != nil {
		into.Close()
		return nil, err
	}
	if newHeap == nil {
		newHeap = func() (heap, error) { return bufferHeap{layout.NewBuffer(256)}, nil }
	}
	return &session{typ: t, into: into, from: from, newHeap: newHeap}, nil
}

func (s *session) Close() {
	s.into.Close()
	s.from.Close()
}

// convert writes v into layout and reads it back.
func (s *session) convert(v any) (*result, error) {
	h, err := s.newHeap()
	if err != nil {
		return nil, err
	}
	addr, err := h.Alloc(max(layout.SizeOf(s.typ), 1), max(layout.AlignOf(s.typ), 1))
	if err != nil {
		return nil, err
	}
	if err := s.into.ConvertOne(h, addr, v); err != nil {
		return nil, err
	}
	data, err := h.Read(addr, h.Next()-addr)
	if err != nil {
		return nil, err
	}
	r := &result{addr: addr, data: append([]byte(nil), data...)}
	if err := s.from.ConvertOne(h, &r.out, addr); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *result) String(width int) string {
	var b strings.Builder
	b.WriteString(hexdump(r.data, r.addr, rowBytes(width)))
	fmt.Fprintf(&b, "=> %s\n", gohost.Default.Repr(r.out))
	return b.String()
}

// rowBytes fits "addr  hex  ascii" rows into width columns.
func rowBytes(width int) int {
	n := (width - 12) / 4
	n -= n % 4
	return min(max(n, 4), 32)
}

func hexdump(data []byte, base uint32, perRow int) string {
	var b strings.Builder
	for off := 0; off < len(data); off += perRow {
		row := data[off:min(off+perRow, len(data))]
		fmt.Fprintf(&b, "%08x ", base+uint32(off))
		for i := 0; i < perRow; i++ {
			if i < len(row) {
				fmt.Fprintf(&b, " %02x", row[i])
			} else {
				b.WriteString("   ")
			}
		}
		b.WriteString("  ")
		for _, c := range row {
			if c < 0x20 || c > 0x7e {
				c = '.'
			}
			b.WriteByte(c)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
