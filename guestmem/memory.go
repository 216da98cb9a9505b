package guestmem

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero/api"
	"github.com/wippyai/typeconv/internal/abi"
	"go.uber.org/zap"
)

// PageSize is the WebAssembly page size in bytes.
const PageSize = 65536

// Options configure a guest memory.
type Options struct {
	// Base is the first heap address of the bump allocator. Zero places the
	// heap at the current end of memory, so existing guest data is untouched.
	Base uint32

	// MaxPages limits growth. Zero means no limit beyond the memory's own.
	MaxPages uint32

	Logger *zap.Logger
}

// Memory adapts a wazero api.Memory to typeconv.Storage.
// It is not safe for concurrent use.
type Memory struct {
	mem     api.Memory
	ctx     context.Context
	realloc api.Function
	next    uint32
	opts    Options
	logger  *zap.Logger
}

// New returns a bump-allocating storage over mem.
func New(ctx context.Context, mem api.Memory, opts Options) (*Memory, error) {
	if mem == nil {
		return nil, fmt.Errorf("guestmem: nil memory")
	}
	m := newMemory(ctx, mem, opts)
	m.next = opts.Base
	if m.next == 0 {
		m.next = mem.Size()
	}
	// address 0 marks unallocated data
	if m.next == 0 {
		m.next = 8
	}
	return m, nil
}

// NewWithRealloc returns a storage over mem allocating through a guest
// cabi_realloc function with signature (ptr, old_size, align, new_size) -> ptr.
func NewWithRealloc(ctx context.Context, mem api.Memory, realloc api.Function, opts Options) (*Memory, error) {
	if mem == nil {
		return nil, fmt.Errorf("guestmem: nil memory")
	}
	if realloc == nil {
		return nil, fmt.Errorf("guestmem: nil realloc function")
	}
	m := newMemory(ctx, mem, opts)
	m.realloc = realloc
	return m, nil
}

func newMemory(ctx context.Context, mem api.Memory, opts Options) *Memory {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Memory{mem: mem, ctx: ctx, opts: opts, logger: logger}
}

// Size returns the current memory size in bytes.
func (m *Memory) Size() uint32 {
	return m.mem.Size()
}

// Alloc returns a zeroed block of size bytes aligned to align. A zero size
// returns address 0.
func (m *Memory) Alloc(size, align uint32) (uint32, error) {
	if size == 0 {
		return 0, nil
	}
	if align == 0 {
		align = 1
	}
	if m.realloc != nil {
		return m.guestAlloc(size, align)
	}

	start := abi.AlignTo(m.next, align)
	end, ok := abi.SafeAddU32(start, size)
	if !ok || start < m.next {
		return 0, fmt.Errorf("allocation of %d bytes overflows the address space", size)
	}
	if end > m.mem.Size() {
		if err := m.grow(end); err != nil {
			return 0, err
		}
	}
	if !m.mem.Write(start, make([]byte, size)) {
		return 0, fmt.Errorf("memory write out of bounds: offset=%d, length=%d", start, size)
	}
	m.next = end
	return start, nil
}

func (m *Memory) grow(end uint32) error {
	need := uint64(end) - uint64(m.mem.Size())
	pages := uint32((need + PageSize - 1) / PageSize)
	current := m.mem.Size() / PageSize
	if m.opts.MaxPages != 0 && uint64(current)+uint64(pages) > uint64(m.opts.MaxPages) {
		return fmt.Errorf("growing memory by %d pages exceeds the limit of %d pages", pages, m.opts.MaxPages)
	}
	prev, ok := m.mem.Grow(pages)
	if !ok {
		return fmt.Errorf("memory grow by %d pages failed", pages)
	}
	m.logger.Debug("guest memory grown",
		zap.Uint32("from_pages", prev),
		zap.Uint32("to_pages", prev+pages),
	)
	return nil
}

func (m *Memory) guestAlloc(size, align uint32) (uint32, error) {
	results, err := m.realloc.Call(m.ctx, 0, 0, uint64(align), uint64(size))
	if err != nil {
		return 0, fmt.Errorf("allocation failed: %w", err)
	}
	if len(results) == 0 {
		return 0, fmt.Errorf("allocation returned no result")
	}
	ptr := uint32(results[0])
	if ptr == 0 {
		return 0, fmt.Errorf("allocation of %d bytes returned a null pointer", size)
	}
	if ptr%align != 0 {
		return 0, fmt.Errorf("allocation returned %d, not aligned to %d", ptr, align)
	}
	if !m.mem.Write(ptr, make([]byte, size)) {
		return 0, fmt.Errorf("allocation returned out of bounds block: offset=%d, length=%d", ptr, size)
	}
	return ptr, nil
}

// Free returns a block to the guest allocator. The bump allocator never
// reuses memory, so there Free does nothing.
func (m *Memory) Free(ptr, size, align uint32) {
	if m.realloc == nil || ptr == 0 {
		return
	}
	if _, err := m.realloc.Call(m.ctx, uint64(ptr), uint64(size), uint64(align), 0); err != nil {
		m.logger.Debug("guest free failed", zap.Uint32("ptr", ptr), zap.Error(err))
	}
}

// Reset rewinds the bump allocator to addr. Blocks above addr must no longer
// be referenced.
func (m *Memory) Reset(addr uint32) {
	if m.realloc == nil && addr != 0 {
		m.next = addr
	}
}

// Next returns the next free heap address of the bump allocator.
func (m *Memory) Next() uint32 {
	return m.next
}

// Read returns a view of length bytes at offset. The view aliases guest memory.
func (m *Memory) Read(offset uint32, length uint32) ([]byte, error) {
	data, ok := m.mem.Read(offset, length)
	if !ok {
		return nil, fmt.Errorf("memory read out of bounds: offset=%d, length=%d", offset, length)
	}
	return data, nil
}

func (m *Memory) Write(offset uint32, data []byte) error {
	if !m.mem.Write(offset, data) {
		return fmt.Errorf("memory write out of bounds: offset=%d, length=%d", offset, len(data))
	}
	return nil
}

func (m *Memory) ReadU8(offset uint32) (uint8, error) {
	v, ok := m.mem.ReadByte(offset)
	if !ok {
		return 0, fmt.Errorf("memory read out of bounds: offset=%d", offset)
	}
	return v, nil
}

func (m *Memory) ReadU16(offset uint32) (uint16, error) {
	v, ok := m.mem.ReadUint16Le(offset)
	if !ok {
		return 0, fmt.Errorf("memory read out of bounds: offset=%d", offset)
	}
	return v, nil
}

func (m *Memory) ReadU32(offset uint32) (uint32, error) {
	v, ok := m.mem.ReadUint32Le(offset)
	if !ok {
		return 0, fmt.Errorf("memory read out of bounds: offset=%d", offset)
	}
	return v, nil
}

func (m *Memory) ReadU64(offset uint32) (uint64, error) {
	v, ok := m.mem.ReadUint64Le(offset)
	if !ok {
		return 0, fmt.Errorf("memory read out of bounds: offset=%d", offset)
	}
	return v, nil
}

func (m *Memory) WriteU8(offset uint32, value uint8) error {
	if !m.mem.WriteByte(offset, value) {
		return fmt.Errorf("memory write out of bounds: offset=%d", offset)
	}
	return nil
}

func (m *Memory) WriteU16(offset uint32, value uint16) error {
	if !m.mem.WriteUint16Le(offset, value) {
		return fmt.Errorf("memory write out of bounds: offset=%d", offset)
	}
	return nil
}

func (m *Memory) WriteU32(offset uint32, value uint32) error {
	if !m.mem.WriteUint32Le(offset, value) {
		return fmt.Errorf("memory write out of bounds: offset=%d", offset)
	}
	return nil
}

func (m *Memory) WriteU64(offset uint32, value uint64) error {
	if !m.mem.WriteUint64Le(offset, value) {
		return fmt.Errorf("memory write out of bounds: offset=%d", offset)
	}
	return nil
}
