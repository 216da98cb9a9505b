package gohost

// Tuple is the fixed-size positional container produced for tuple types.
type Tuple []any

// Record is the insertion-ordered mapping produced for struct types.
type Record struct {
	Keys   []string
	Values []any
}

// NewRecord builds a record from alternating key, value arguments.
func NewRecord(kv ...any) *Record {
	r := &Record{}
	for i := 0; i+1 < len(kv); i += 2 {
		r.Set(kv[i].(string), kv[i+1])
	}
	return r
}

// Len returns the number of entries.
func (r *Record) Len() int {
	return len(r.Keys)
}

// Get returns the value stored under key.
func (r *Record) Get(key string) (any, bool) {
	for i, k := range r.Keys {
		if k == key {
			return r.Values[i], true
		}
	}
	return nil, false
}

// Set stores v under key, keeping the original position of existing keys.
func (r *Record) Set(key string, v any) {
	for i, k := range r.Keys {
		if k == key {
			r.Values[i] = v
			return
		}
	}
	r.Keys = append(r.Keys, key)
	r.Values = append(r.Values, v)
}

// Map returns the entries as a plain map.
func (r *Record) Map() map[string]any {
	m := make(map[string]any, len(r.Keys))
	for i, k := range r.Keys {
		m[k] = r.Values[i]
	}
	return m
}
