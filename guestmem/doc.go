// Package guestmem exposes WebAssembly linear memory as typeconv.Storage.
//
// New returns a bump allocator over a wazero memory. Blocks are handed out
// from a heap pointer and the memory grows by whole pages once the heap
// reaches its end:
//
//	mem, err := guestmem.New(ctx, mod.ExportedMemory("memory"), guestmem.Options{})
//	addr, _ := mem.Alloc(size, align)
//	err = prog.ConvertOne(mem, addr, value)
//
// NewWithRealloc delegates allocation to a guest cabi_realloc export instead,
// so the guest owns the blocks written into its memory.
package guestmem
