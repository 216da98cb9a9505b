// Package gohost implements host.Host over plain Go values.
//
// Decoded YAML or JSON documents work directly as input: slices become
// sequences, string-keyed maps become mappings. Output uses canonical types
// (int64, uint64, *big.Int for 128-bit integers, float64, []any, Tuple and
// *Record) so results can be compared with Equal.
package gohost
