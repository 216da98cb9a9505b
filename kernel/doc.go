// Package kernel compiles Type Descriptors into conversion programs.
//
// A program is an arena of nodes built once per (type, meta) pair and then
// evaluated any number of times:
//
//	in, err := kernel.InstantiateInto(t, meta)
//	err = in.ConvertOne(mem, addr, value)      // host value -> layout
//
//	out, err := kernel.InstantiateFrom(t, meta)
//	err = out.ConvertOne(mem, &value, addr)    // layout -> host value
//
// Each node is tagged by its kind, base kind and role (into, from, copy,
// assign-NA, is-missing, category encode and decode) and refers to its
// children by arena index. Composite nodes reserve their slot before their
// children are built and complete only once every child has.
//
// Conversion errors are *errors.Error values whose path locates the failing
// element, for example "items[2].name".
//
// Programs are safe for concurrent use on disjoint destinations. Close
// releases the host values a program owns. Cache memoises programs when the
// same shapes are converted repeatedly.
package kernel
