package layout

import (
	"encoding/binary"
	"fmt"

	"github.com/wippyai/typeconv/internal/abi"
)

// reserved keeps offset 0 out of the allocatable range so it can mean "unallocated".
const reserved = 8

// Buffer is a growable in-process linear memory with a bump allocator.
// It implements typeconv.Storage and typeconv.MemorySizer. Free is a no-op.
type Buffer struct {
	data  []byte
	limit uint32
}

// NewBuffer creates a buffer with capacity preallocated bytes.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{
		data:  make([]byte, reserved, max(capacity, reserved)),
		limit: abi.MaxAlloc,
	}
}

// SetLimit caps the total size of the buffer.
func (b *Buffer) SetLimit(n uint32) {
	b.limit = n
}

// Bytes returns the backing bytes. Offsets index directly into the slice.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Size returns the current size in bytes.
func (b *Buffer) Size() uint32 {
	return uint32(len(b.data))
}

// Reset drops every allocation.
func (b *Buffer) Reset() {
	clear(b.data[:reserved])
	b.data = b.data[:reserved]
}

// Alloc returns the offset of size fresh zeroed bytes aligned to align.
func (b *Buffer) Alloc(size, align uint32) (uint32, error) {
	if size == 0 {
		return 0, nil
	}
	start := abi.AlignTo(uint32(len(b.data)), align)
	end, ok := abi.SafeAddU32(start, size)
	if !ok || end > b.limit {
		return 0, fmt.Errorf("buffer exhausted: need %d bytes at %d, limit %d", size, start, b.limit)
	}
	b.data = append(b.data, make([]byte, int(end)-len(b.data))...)
	return start, nil
}

// Free is a no-op; memory is reclaimed by Reset.
func (b *Buffer) Free(ptr, size, align uint32) {}

func (b *Buffer) span(offset, length uint32) ([]byte, error) {
	end, ok := abi.SafeAddU32(offset, length)
	if !ok || end > uint32(len(b.data)) {
		return nil, fmt.Errorf("memory access out of bounds: offset=%d, length=%d, size=%d", offset, length, len(b.data))
	}
	return b.data[offset:end], nil
}

// Read returns a copy of length bytes at offset.
func (b *Buffer) Read(offset, length uint32) ([]byte, error) {
	s, err := b.span(offset, length)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), s...), nil
}

func (b *Buffer) Write(offset uint32, data []byte) error {
	s, err := b.span(offset, uint32(len(data)))
	if err != nil {
		return err
	}
	copy(s, data)
	return nil
}

func (b *Buffer) ReadU8(offset uint32) (uint8, error) {
	s, err := b.span(offset, 1)
	if err != nil {
		return 0, err
	}
	return s[0], nil
}

func (b *Buffer) ReadU16(offset uint32) (uint16, error) {
	s, err := b.span(offset, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(s), nil
}

func (b *Buffer) ReadU32(offset uint32) (uint32, error) {
	s, err := b.span(offset, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(s), nil
}

func (b *Buffer) ReadU64(offset uint32) (uint64, error) {
	s, err := b.span(offset, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(s), nil
}

func (b *Buffer) WriteU8(offset uint32, value uint8) error {
	s, err := b.span(offset, 1)
	if err != nil {
		return err
	}
	s[0] = value
	return nil
}

func (b *Buffer) WriteU16(offset uint32, value uint16) error {
	s, err := b.span(offset, 2)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(s, value)
	return nil
}

func (b *Buffer) WriteU32(offset uint32, value uint32) error {
	s, err := b.span(offset, 4)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(s, value)
	return nil
}

func (b *Buffer) WriteU64(offset uint32, value uint64) error {
	s, err := b.span(offset, 8)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(s, value)
	return nil
}
