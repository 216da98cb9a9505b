package host

import (
	"errors"

	"github.com/wippyai/typeconv"
	"github.com/wippyai/typeconv/layout"
	"github.com/wippyai/typeconv/types"
)

// Value is an opaque dynamic value owned by a Host.
type Value = any

// ErrOutOfRange is returned by integer extraction when the value does not fit.
var ErrOutOfRange = errors.New("integer out of range")

// Kind is the capability class of a dynamic value.
type Kind uint8

const (
	KindOther Kind = iota
	KindNone
	KindBool
	KindInt
	KindFloat
	KindComplex
	KindBytes
	KindText
	KindDate
	KindTime
	KindDateTime
	KindSequence
	KindMapping
	KindTyped
	KindType
)

var kindNames = [...]string{
	KindOther:    "other",
	KindNone:     "none",
	KindBool:     "bool",
	KindInt:      "int",
	KindFloat:    "float",
	KindComplex:  "complex",
	KindBytes:    "bytes",
	KindText:     "text",
	KindDate:     "date",
	KindTime:     "time",
	KindDateTime: "datetime",
	KindSequence: "sequence",
	KindMapping:  "mapping",
	KindTyped:    "typed",
	KindType:     "type",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Date is a calendar date without zone.
type Date struct {
	Year  int
	Month int
	Day   int
}

// TimeOfDay is a wall clock time without zone.
type TimeOfDay struct {
	Hour       int
	Minute     int
	Second     int
	Nanosecond int
}

// IsZero reports whether every component is zero.
func (t TimeOfDay) IsZero() bool {
	return t == TimeOfDay{}
}

// DateTime is a date and time. HasZone is set when the host value carried
// timezone information.
type DateTime struct {
	Date
	TimeOfDay
	HasZone bool
}

// Item is one mapping entry.
type Item struct {
	Key   Value
	Value Value
}

// Typed is an externally produced value that carries its own type and layout.
type Typed struct {
	Type *types.Type
	Meta *layout.Meta
	Mem  typeconv.Memory
	Addr uint32
}

// Host adapts a dynamic value system. Extraction methods are only called after
// Kind reported a compatible class, except where noted.
type Host interface {
	// Kind classifies v.
	Kind(v Value) Kind
	// Repr returns a human-readable representation of v for diagnostics.
	Repr(v Value) string
	// Release drops a reference to v. Hosts without reference counting ignore it.
	Release(v Value)

	AsBool(v Value) (bool, error)
	// AsInt64 and AsUint64 return ErrOutOfRange when v does not fit.
	// Only integer values are accepted.
	AsInt64(v Value) (int64, error)
	AsUint64(v Value) (uint64, error)
	// IntLow64 returns the low 64 bits of the two's complement form of v.
	IntLow64(v Value) (uint64, error)
	// IntRsh returns v >> n with floor semantics.
	IntRsh(v Value, n uint) (Value, error)
	// AsFloat64 also accepts integers, rounding to the nearest float.
	AsFloat64(v Value) (float64, error)
	AsComplex128(v Value) (complex128, error)
	AsBytes(v Value) ([]byte, error)
	// AsUTF8 returns the UTF-8 encoding of text.
	AsUTF8(v Value) ([]byte, error)
	AsDate(v Value) (Date, error)
	AsTime(v Value) (TimeOfDay, error)
	AsDateTime(v Value) (DateTime, error)
	AsType(v Value) (*types.Type, error)
	AsTyped(v Value) (Typed, error)
	// Items returns a contiguous view of a sequence. The caller must not modify it.
	Items(v Value) ([]Value, error)
	MappingItems(v Value) ([]Item, error)

	MakeNone() Value
	MakeBool(b bool) Value
	MakeInt(v int64, bits int) (Value, error)
	MakeUint(v uint64, bits int) (Value, error)
	IntShl(v Value, n uint) (Value, error)
	IntOr(a, b Value) (Value, error)
	IntNeg(v Value) (Value, error)
	MakeFloat(f float64, bits int) (Value, error)
	MakeComplex(c complex128, bits int) (Value, error)
	MakeBytes(b []byte) (Value, error)
	// MakeText builds text from UTF-8; enc is the storage encoding it came from.
	MakeText(utf8 []byte, enc types.Encoding) (Value, error)
	MakeDate(d Date) (Value, error)
	MakeTime(t TimeOfDay) (Value, error)
	MakeDateTime(dt DateTime) (Value, error)
	MakeType(t *types.Type) (Value, error)
	// MakeSequence returns a sequence of n none values and its writable slots.
	MakeSequence(n int) (Value, []Value, error)
	// MakeTuple is MakeSequence for fixed-size positional containers.
	MakeTuple(n int) (Value, []Value, error)
	MakeMapping(n int) (Value, error)
	// SetKey takes ownership of v but not of key, which may be reused.
	SetKey(m Value, key Value, v Value) error
}

// Initializer is implemented by hosts needing one-time process setup.
// Init is called before every instantiation and must be idempotent.
type Initializer interface {
	Init() error
}

// Replace stores v into slot after releasing the previous value. On a failed
// construction (err != nil) the slot is left holding none.
func Replace(h Host, slot *Value, v Value, err error) error {
	if old := *slot; old != nil {
		h.Release(old)
	}
	if err != nil {
		*slot = h.MakeNone()
		return err
	}
	*slot = v
	return nil
}
