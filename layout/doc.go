// Package layout describes how typed values sit in linear memory.
//
// It provides the per-instance metadata paired with a Type Descriptor (Meta),
// a calculator for sizes, alignments and the default C-contiguous metadata, the
// layout navigator used by dimension kernels (AsStrided, VarDimInfo, InitVarDim),
// and Buffer, an in-process Storage.
//
// # Layout Rules
//
//   - Scalars: natural size and alignment; 128-bit integers are two u64 halves
//   - Strings, bytes and var dims: [ptr: u32, len: u32] header, data elsewhere
//   - Options: presence byte followed by the aligned payload
//   - Tuples and structs: fields laid out sequentially with padding for alignment
//   - Fixed dims: elements inline at a fixed stride
//
// # Usage
//
//	meta := layout.Default(t)
//	dim, ok, err := layout.AsStrided(t, meta, mem, addr)
//	// dim.Count, dim.Stride, dim.Elem, dim.ElemMeta
package layout
