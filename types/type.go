package types

import (
	"fmt"
	"reflect"
)

// Type is an immutable Type Descriptor. Values are shared by pointer and must not
// be modified after construction.
type Type struct {
	elem       *Type
	fields     []Field
	categories []any
	kind       Kind
	enc        Encoding
	size       uint32
	align      uint32
	dimSize    int
}

// Field is one tuple element or struct member. Tuple fields have no name.
type Field struct {
	Type *Type
	Name string
}

// NewField creates a named struct field.
func NewField(name string, t *Type) Field {
	return Field{Name: name, Type: t}
}

var builtins [KindType + 1]*Type

func init() {
	for k := KindBool; k <= KindType; k++ {
		switch k {
		case KindFixedBytes, KindFixedString:
			continue
		}
		builtins[k] = &Type{kind: k}
	}
}

func Bool() *Type       { return builtins[KindBool] }
func Int8() *Type       { return builtins[KindInt8] }
func Int16() *Type      { return builtins[KindInt16] }
func Int32() *Type      { return builtins[KindInt32] }
func Int64() *Type      { return builtins[KindInt64] }
func Int128() *Type     { return builtins[KindInt128] }
func Uint8() *Type      { return builtins[KindUint8] }
func Uint16() *Type     { return builtins[KindUint16] }
func Uint32() *Type     { return builtins[KindUint32] }
func Uint64() *Type     { return builtins[KindUint64] }
func Uint128() *Type    { return builtins[KindUint128] }
func Float16() *Type    { return builtins[KindFloat16] }
func Float32() *Type    { return builtins[KindFloat32] }
func Float64() *Type    { return builtins[KindFloat64] }
func Complex64() *Type  { return builtins[KindComplex64] }
func Complex128() *Type { return builtins[KindComplex128] }
func Bytes() *Type      { return builtins[KindBytes] }
func Char() *Type       { return builtins[KindChar] }
func Date() *Type       { return builtins[KindDate] }
func Time() *Type       { return builtins[KindTime] }
func DateTime() *Type   { return builtins[KindDateTime] }

// TypeValue is the kind of slots holding a Type Descriptor.
func TypeValue() *Type { return builtins[KindType] }

// Scalar returns the shared descriptor of a parameterless scalar kind.
func Scalar(k Kind) (*Type, bool) {
	if int(k) >= len(builtins) || builtins[k] == nil {
		return nil, false
	}
	return builtins[k], true
}

// String returns a variable-length string stored in enc.
func String(enc Encoding) *Type {
	if enc == UTF8 {
		return builtins[KindString]
	}
	return &Type{kind: KindString, enc: enc}
}

// FixedBytes returns an inline byte string of n bytes aligned to align.
func FixedBytes(n, align uint32) *Type {
	if align == 0 || align&(align-1) != 0 {
		panic(fmt.Sprintf("types: fixed_bytes alignment %d is not a power of two", align))
	}
	if n%align != 0 {
		panic(fmt.Sprintf("types: fixed_bytes size %d is not a multiple of alignment %d", n, align))
	}
	return &Type{kind: KindFixedBytes, size: n, align: align}
}

// FixedString returns an inline string of n code units stored in enc.
func FixedString(n uint32, enc Encoding) *Type {
	return &Type{kind: KindFixedString, size: n, enc: enc}
}

// Option returns ?t.
func Option(t *Type) *Type {
	mustElem("option", t)
	return &Type{kind: KindOption, elem: t}
}

// Tuple returns a positional tuple of ts.
func Tuple(ts ...*Type) *Type {
	fields := make([]Field, len(ts))
	for i, t := range ts {
		mustElem("tuple", t)
		fields[i] = Field{Type: t}
	}
	return &Type{kind: KindTuple, fields: fields}
}

// Struct returns a struct with the given fields. Names must be unique.
func Struct(fields ...Field) *Type {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		mustElem("struct", f.Type)
		if seen[f.Name] {
			panic(fmt.Sprintf("types: duplicate struct field %q", f.Name))
		}
		seen[f.Name] = true
	}
	return &Type{kind: KindStruct, fields: append([]Field(nil), fields...)}
}

// FixedDim returns n * elem.
func FixedDim(n int, elem *Type) *Type {
	mustElem("fixed_dim", elem)
	if n < 0 {
		panic(fmt.Sprintf("types: negative dimension size %d", n))
	}
	return &Type{kind: KindFixedDim, dimSize: n, elem: elem}
}

// VarDim returns var * elem.
func VarDim(elem *Type) *Type {
	mustElem("var_dim", elem)
	return &Type{kind: KindVarDim, elem: elem}
}

// Categorical returns an enumeration over values of the category type.
// Values are host values; they are converted with the category type when a
// kernel is instantiated.
func Categorical(category *Type, values ...any) *Type {
	mustElem("categorical", category)
	if len(values) == 0 {
		panic("types: categorical needs at least one category")
	}
	return &Type{kind: KindCategorical, elem: category, categories: append([]any(nil), values...)}
}

func mustElem(what string, t *Type) {
	if t == nil {
		panic("types: nil element type in " + what)
	}
}

// Kind returns the kind of t.
func (t *Type) Kind() Kind { return t.kind }

// Base returns the base kind of t.
func (t *Type) Base() BaseKind { return t.kind.Base() }

// Elem returns the element type of dims, the value type of options and the
// category type of categoricals.
func (t *Type) Elem() *Type { return t.elem }

// NumFields returns the number of tuple or struct fields.
func (t *Type) NumFields() int { return len(t.fields) }

// Field returns field i.
func (t *Type) Field(i int) Field { return t.fields[i] }

// FieldIndex returns the index of the named struct field, or -1.
func (t *Type) FieldIndex(name string) int {
	for i, f := range t.fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// DimSize returns the size of a fixed dimension.
func (t *Type) DimSize() int { return t.dimSize }

// FixedSize returns the byte size of fixed_bytes or the code unit count of fixed_string.
func (t *Type) FixedSize() uint32 { return t.size }

// FixedAlign returns the alignment of fixed_bytes.
func (t *Type) FixedAlign() uint32 { return t.align }

// Encoding returns the storage encoding of string kinds.
func (t *Type) Encoding() Encoding {
	if t.kind == KindChar {
		return UTF32
	}
	return t.enc
}

// NumCategories returns the number of categories.
func (t *Type) NumCategories() int { return len(t.categories) }

// Category returns category value i.
func (t *Type) Category(i int) any { return t.categories[i] }

// Ndim returns the number of leading dimensions. Tuples and structs count as one.
func (t *Type) Ndim() int {
	switch t.kind {
	case KindFixedDim, KindVarDim:
		return 1 + t.elem.Ndim()
	case KindTuple, KindStruct:
		return 1
	}
	return 0
}

// IsPOD reports whether values of t live entirely inline, so a byte copy of the
// value is a complete copy.
func (t *Type) IsPOD() bool {
	switch t.kind {
	case KindBytes, KindString, KindVarDim:
		return false
	case KindOption, KindFixedDim:
		return t.elem.IsPOD()
	case KindTuple, KindStruct:
		for _, f := range t.fields {
			if !f.Type.IsPOD() {
				return false
			}
		}
		return true
	}
	return true
}

// Equal reports whether a and b describe the same type.
func Equal(a, b *Type) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.kind != b.kind {
		return false
	}
	if a.Encoding() != b.Encoding() || a.size != b.size || a.align != b.align || a.dimSize != b.dimSize {
		return false
	}
	if (a.elem == nil) != (b.elem == nil) || (a.elem != nil && !Equal(a.elem, b.elem)) {
		return false
	}
	if len(a.fields) != len(b.fields) {
		return false
	}
	for i := range a.fields {
		if a.fields[i].Name != b.fields[i].Name || !Equal(a.fields[i].Type, b.fields[i].Type) {
			return false
		}
	}
	return reflect.DeepEqual(a.categories, b.categories)
}
