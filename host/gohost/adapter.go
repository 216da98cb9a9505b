package gohost

import (
	"fmt"
	"math"
	"math/big"
	"reflect"
	"slices"
	"time"

	"fortio.org/safecast"
	"github.com/wippyai/typeconv/host"
	"github.com/wippyai/typeconv/types"
	"golang.org/x/exp/constraints"
)

// Host is a host.Host over plain Go values:
//
//	nil                        none
//	bool                       bool
//	int*, uint*, *big.Int      int
//	float32, float64           float
//	complex64, complex128      complex
//	[]byte                     bytes
//	string                     text
//	host.Date, TimeOfDay       date, time
//	host.DateTime, time.Time   datetime
//	*types.Type                type
//	host.Typed                 typed
//	slices, arrays, Tuple      sequence
//	string-keyed maps, Record  mapping
//
// Built values are canonical: int64, uint64, *big.Int (128-bit), float64,
// complex128, []byte, string, []any, Tuple and *Record.
type Host struct {
	naiveUTC bool
}

// Option configures a Host.
type Option func(*Host)

// WithNaiveUTC treats time.Time values in UTC as carrying no zone.
func WithNaiveUTC() Option {
	return func(h *Host) {
		h.naiveUTC = true
	}
}

// New creates a Go value host.
func New(opts ...Option) *Host {
	h := &Host{}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Default is the host used when none is configured.
var Default = New()

var (
	bigType   = reflect.TypeOf((*big.Int)(nil))
	bytesType = reflect.TypeOf([]byte(nil))
)

func (h *Host) Kind(v host.Value) host.Kind {
	switch x := v.(type) {
	case nil:
		return host.KindNone
	case bool:
		return host.KindBool
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return host.KindInt
	case *big.Int:
		if x == nil {
			return host.KindNone
		}
		return host.KindInt
	case float32, float64:
		return host.KindFloat
	case complex64, complex128:
		return host.KindComplex
	case []byte:
		return host.KindBytes
	case string:
		return host.KindText
	case host.Date:
		return host.KindDate
	case host.TimeOfDay:
		return host.KindTime
	case host.DateTime, time.Time:
		return host.KindDateTime
	case *types.Type:
		if x == nil {
			return host.KindNone
		}
		return host.KindType
	case host.Typed:
		return host.KindTyped
	case []any, Tuple:
		return host.KindSequence
	case map[string]any, *Record:
		return host.KindMapping
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return host.KindSequence
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			return host.KindMapping
		}
	case reflect.Pointer:
		if rv.IsNil() {
			return host.KindNone
		}
	}
	return host.KindOther
}

// Release is a no-op; Go values are garbage collected.
func (h *Host) Release(v host.Value) {}

func (h *Host) AsBool(v host.Value) (bool, error) {
	if b, ok := v.(bool); ok {
		return b, nil
	}
	return false, h.notA(v, "bool")
}

func (h *Host) AsInt64(v host.Value) (int64, error) {
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case uint:
		return narrow[int64](safecast.Conv[int64](x))
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint64:
		return narrow[int64](safecast.Conv[int64](x))
	case *big.Int:
		if x.IsInt64() {
			return x.Int64(), nil
		}
		return 0, host.ErrOutOfRange
	}
	return 0, h.notA(v, "integer")
}

func (h *Host) AsUint64(v host.Value) (uint64, error) {
	switch x := v.(type) {
	case int:
		return narrow[uint64](safecast.Conv[uint64](x))
	case int8:
		return narrow[uint64](safecast.Conv[uint64](x))
	case int16:
		return narrow[uint64](safecast.Conv[uint64](x))
	case int32:
		return narrow[uint64](safecast.Conv[uint64](x))
	case int64:
		return narrow[uint64](safecast.Conv[uint64](x))
	case uint:
		return uint64(x), nil
	case uint8:
		return uint64(x), nil
	case uint16:
		return uint64(x), nil
	case uint32:
		return uint64(x), nil
	case uint64:
		return x, nil
	case *big.Int:
		if x.IsUint64() {
			return x.Uint64(), nil
		}
		return 0, host.ErrOutOfRange
	}
	return 0, h.notA(v, "integer")
}

func narrow[T any](v T, err error) (T, error) {
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%w: %v", host.ErrOutOfRange, err)
	}
	return v, nil
}

var mask64 = new(big.Int).SetUint64(math.MaxUint64)

func (h *Host) IntLow64(v host.Value) (uint64, error) {
	b, err := h.toBig(v)
	if err != nil {
		return 0, err
	}
	return new(big.Int).And(b, mask64).Uint64(), nil
}

func (h *Host) IntRsh(v host.Value, n uint) (host.Value, error) {
	b, err := h.toBig(v)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Rsh(b, n), nil
}

func (h *Host) IntShl(v host.Value, n uint) (host.Value, error) {
	b, err := h.toBig(v)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Lsh(b, n), nil
}

func (h *Host) IntOr(a, b host.Value) (host.Value, error) {
	x, err := h.toBig(a)
	if err != nil {
		return nil, err
	}
	y, err := h.toBig(b)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Or(x, y), nil
}

func (h *Host) IntNeg(v host.Value) (host.Value, error) {
	b, err := h.toBig(v)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Neg(b), nil
}

func (h *Host) toBig(v host.Value) (*big.Int, error) {
	switch x := v.(type) {
	case *big.Int:
		return x, nil
	case int:
		return signedBig(x), nil
	case int8:
		return signedBig(x), nil
	case int16:
		return signedBig(x), nil
	case int32:
		return signedBig(x), nil
	case int64:
		return signedBig(x), nil
	case uint:
		return unsignedBig(x), nil
	case uint8:
		return unsignedBig(x), nil
	case uint16:
		return unsignedBig(x), nil
	case uint32:
		return unsignedBig(x), nil
	case uint64:
		return unsignedBig(x), nil
	}
	return nil, h.notA(v, "integer")
}

func signedBig[T constraints.Signed](x T) *big.Int {
	return big.NewInt(int64(x))
}

func unsignedBig[T constraints.Unsigned](x T) *big.Int {
	return new(big.Int).SetUint64(uint64(x))
}

func (h *Host) AsFloat64(v host.Value) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case *big.Int:
		f, _ := new(big.Float).SetInt(x).Float64()
		return f, nil
	}
	if h.Kind(v) == host.KindInt {
		i, err := h.toBig(v)
		if err != nil {
			return 0, err
		}
		f, _ := new(big.Float).SetInt(i).Float64()
		return f, nil
	}
	return 0, h.notA(v, "float")
}

func (h *Host) AsComplex128(v host.Value) (complex128, error) {
	switch x := v.(type) {
	case complex128:
		return x, nil
	case complex64:
		return complex128(x), nil
	}
	f, err := h.AsFloat64(v)
	if err != nil {
		return 0, h.notA(v, "complex")
	}
	return complex(f, 0), nil
}

func (h *Host) AsBytes(v host.Value) ([]byte, error) {
	if b, ok := v.([]byte); ok {
		return b, nil
	}
	return nil, h.notA(v, "bytes")
}

func (h *Host) AsUTF8(v host.Value) ([]byte, error) {
	if s, ok := v.(string); ok {
		return []byte(s), nil
	}
	return nil, h.notA(v, "text")
}

func (h *Host) AsDate(v host.Value) (host.Date, error) {
	if d, ok := v.(host.Date); ok {
		return d, nil
	}
	return host.Date{}, h.notA(v, "date")
}

func (h *Host) AsTime(v host.Value) (host.TimeOfDay, error) {
	if t, ok := v.(host.TimeOfDay); ok {
		return t, nil
	}
	return host.TimeOfDay{}, h.notA(v, "time")
}

func (h *Host) AsDateTime(v host.Value) (host.DateTime, error) {
	switch x := v.(type) {
	case host.DateTime:
		return x, nil
	case time.Time:
		y, m, d := x.Date()
		return host.DateTime{
			Date: host.Date{Year: y, Month: int(m), Day: d},
			TimeOfDay: host.TimeOfDay{
				Hour:       x.Hour(),
				Minute:     x.Minute(),
				Second:     x.Second(),
				Nanosecond: x.Nanosecond(),
			},
			HasZone: !(h.naiveUTC && x.Location() == time.UTC),
		}, nil
	}
	return host.DateTime{}, h.notA(v, "datetime")
}

func (h *Host) AsType(v host.Value) (*types.Type, error) {
	if t, ok := v.(*types.Type); ok && t != nil {
		return t, nil
	}
	return nil, h.notA(v, "type")
}

func (h *Host) AsTyped(v host.Value) (host.Typed, error) {
	if t, ok := v.(host.Typed); ok {
		return t, nil
	}
	return host.Typed{}, h.notA(v, "typed value")
}

func (h *Host) Items(v host.Value) ([]host.Value, error) {
	switch x := v.(type) {
	case []any:
		return x, nil
	case Tuple:
		return []any(x), nil
	}
	rv := reflect.ValueOf(v)
	if (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) || rv.Type() == bytesType {
		return nil, h.notA(v, "sequence")
	}
	items := make([]host.Value, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, nil
}

func (h *Host) MappingItems(v host.Value) ([]host.Item, error) {
	switch x := v.(type) {
	case *Record:
		items := make([]host.Item, len(x.Keys))
		for i, k := range x.Keys {
			items[i] = host.Item{Key: k, Value: x.Values[i]}
		}
		return items, nil
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		items := make([]host.Item, len(keys))
		for i, k := range keys {
			items[i] = host.Item{Key: k, Value: x[k]}
		}
		return items, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, h.notA(v, "mapping")
	}
	keys := rv.MapKeys()
	slices.SortFunc(keys, func(a, b reflect.Value) int {
		switch {
		case a.String() < b.String():
			return -1
		case a.String() > b.String():
			return 1
		}
		return 0
	})
	items := make([]host.Item, len(keys))
	for i, k := range keys {
		items[i] = host.Item{Key: k.String(), Value: rv.MapIndex(k).Interface()}
	}
	return items, nil
}

func (h *Host) MakeNone() host.Value {
	return nil
}

func (h *Host) MakeBool(b bool) host.Value {
	return b
}

func (h *Host) MakeInt(v int64, bits int) (host.Value, error) {
	if bits > 64 {
		return big.NewInt(v), nil
	}
	return v, nil
}

func (h *Host) MakeUint(v uint64, bits int) (host.Value, error) {
	if bits > 64 {
		return new(big.Int).SetUint64(v), nil
	}
	return v, nil
}

func (h *Host) MakeFloat(f float64, bits int) (host.Value, error) {
	return f, nil
}

func (h *Host) MakeComplex(c complex128, bits int) (host.Value, error) {
	return c, nil
}

func (h *Host) MakeBytes(b []byte) (host.Value, error) {
	return append([]byte{}, b...), nil
}

func (h *Host) MakeText(utf8 []byte, enc types.Encoding) (host.Value, error) {
	return string(utf8), nil
}

func (h *Host) MakeDate(d host.Date) (host.Value, error) {
	return d, nil
}

func (h *Host) MakeTime(t host.TimeOfDay) (host.Value, error) {
	return t, nil
}

func (h *Host) MakeDateTime(dt host.DateTime) (host.Value, error) {
	return dt, nil
}

func (h *Host) MakeType(t *types.Type) (host.Value, error) {
	return t, nil
}

func (h *Host) MakeSequence(n int) (host.Value, []host.Value, error) {
	s := make([]any, n)
	return s, s, nil
}

func (h *Host) MakeTuple(n int) (host.Value, []host.Value, error) {
	t := make(Tuple, n)
	return t, []any(t), nil
}

func (h *Host) MakeMapping(n int) (host.Value, error) {
	return &Record{
		Keys:   make([]string, 0, n),
		Values: make([]any, 0, n),
	}, nil
}

func (h *Host) SetKey(m host.Value, key host.Value, v host.Value) error {
	r, ok := m.(*Record)
	if !ok {
		return h.notA(m, "record")
	}
	k, ok := key.(string)
	if !ok {
		return h.notA(key, "text key")
	}
	r.Set(k, v)
	return nil
}

func (h *Host) notA(v host.Value, what string) error {
	return fmt.Errorf("%s is not a %s", h.Repr(v), what)
}
