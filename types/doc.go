// Package types defines Type Descriptors, the immutable description of a
// destination value's shape.
//
// A descriptor identifies a Kind from a closed set and, for composite kinds, its
// children: field types and names for tuples and structs, the element type of
// dimensions, the value type of options and the category type and values of
// categoricals. Descriptors say nothing about a particular instance's byte layout;
// that lives in layout.Meta.
//
//	t := types.Struct(
//	    types.NewField("id", types.Uint64()),
//	    types.NewField("tags", types.VarDim(types.String(types.UTF8))),
//	)
//	fmt.Println(t) // {id: uint64, tags: var * string}
//
// Slots of kind type store registry ids; see Intern and Lookup.
package types
