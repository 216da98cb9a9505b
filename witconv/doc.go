// Package witconv maps WebAssembly Interface Types onto type descriptors.
//
// The mapping covers the WIT types with a direct counterpart:
//
//	bool               bool
//	s8 .. s64          int8 .. int64
//	u8 .. u64          uint8 .. uint64
//	f32, f64           float32, float64
//	char               char
//	string             string['utf8']
//	record             struct
//	tuple<..>          tuple
//	list<T>            var * T
//	option<T>          ?T
//	enum               categorical over the case names
//
// Variants, results, flags and resource handles have no descriptor and are
// reported as unsupported.
package witconv
