package types

// Kind identifies a Type Descriptor variant. The set is closed:
// KindCount terminates the enum and sizes per-kind tables.
type Kind uint8

const (
	KindBool Kind = iota
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindInt128
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindUint128
	KindFloat16
	KindFloat32
	KindFloat64
	KindComplex64
	KindComplex128
	KindBytes
	KindFixedBytes
	KindString
	KindFixedString
	KindChar
	KindDate
	KindTime
	KindDateTime
	KindType
	KindOption
	KindTuple
	KindStruct
	KindFixedDim
	KindVarDim
	KindCategorical
	KindCount
)

var kindNames = [...]string{
	KindBool:        "bool",
	KindInt8:        "int8",
	KindInt16:       "int16",
	KindInt32:       "int32",
	KindInt64:       "int64",
	KindInt128:      "int128",
	KindUint8:       "uint8",
	KindUint16:      "uint16",
	KindUint32:      "uint32",
	KindUint64:      "uint64",
	KindUint128:     "uint128",
	KindFloat16:     "float16",
	KindFloat32:     "float32",
	KindFloat64:     "float64",
	KindComplex64:   "complex64",
	KindComplex128:  "complex128",
	KindBytes:       "bytes",
	KindFixedBytes:  "fixed_bytes",
	KindString:      "string",
	KindFixedString: "fixed_string",
	KindChar:        "char",
	KindDate:        "date",
	KindTime:        "time",
	KindDateTime:    "datetime",
	KindType:        "type",
	KindOption:      "option",
	KindTuple:       "tuple",
	KindStruct:      "struct",
	KindFixedDim:    "fixed_dim",
	KindVarDim:      "var_dim",
	KindCategorical: "categorical",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// BaseKind groups kinds that share a conversion strategy.
type BaseKind uint8

const (
	BaseBool BaseKind = iota
	BaseSInt
	BaseUInt
	BaseFloat
	BaseComplex
	BaseBytes
	BaseString
	BaseDateTime
	BaseType
	BaseOption
	BaseTuple
	BaseDim
	BaseCategorical
)

var baseNames = [...]string{
	BaseBool:        "bool",
	BaseSInt:        "sint",
	BaseUInt:        "uint",
	BaseFloat:       "float",
	BaseComplex:     "complex",
	BaseBytes:       "bytes",
	BaseString:      "string",
	BaseDateTime:    "datetime",
	BaseType:        "type",
	BaseOption:      "option",
	BaseTuple:       "tuple",
	BaseDim:         "dim",
	BaseCategorical: "categorical",
}

func (b BaseKind) String() string {
	if int(b) < len(baseNames) {
		return baseNames[b]
	}
	return "unknown"
}

var kindBases = [KindCount]BaseKind{
	KindBool:        BaseBool,
	KindInt8:        BaseSInt,
	KindInt16:       BaseSInt,
	KindInt32:       BaseSInt,
	KindInt64:       BaseSInt,
	KindInt128:      BaseSInt,
	KindUint8:       BaseUInt,
	KindUint16:      BaseUInt,
	KindUint32:      BaseUInt,
	KindUint64:      BaseUInt,
	KindUint128:     BaseUInt,
	KindFloat16:     BaseFloat,
	KindFloat32:     BaseFloat,
	KindFloat64:     BaseFloat,
	KindComplex64:   BaseComplex,
	KindComplex128:  BaseComplex,
	KindBytes:       BaseBytes,
	KindFixedBytes:  BaseBytes,
	KindString:      BaseString,
	KindFixedString: BaseString,
	KindChar:        BaseString,
	KindDate:        BaseDateTime,
	KindTime:        BaseDateTime,
	KindDateTime:    BaseDateTime,
	KindType:        BaseType,
	KindOption:      BaseOption,
	KindTuple:       BaseTuple,
	KindStruct:      BaseTuple,
	KindFixedDim:    BaseDim,
	KindVarDim:      BaseDim,
	KindCategorical: BaseCategorical,
}

// Base returns the base kind of k.
func (k Kind) Base() BaseKind {
	return kindBases[k]
}

// IsScalar reports whether k has no child descriptors.
func (k Kind) IsScalar() bool {
	return k <= KindType
}

// IsStringKind reports whether values of k are stored as text.
func (k Kind) IsStringKind() bool {
	return k.Base() == BaseString
}

// IsDim reports whether k is an array dimension.
func (k Kind) IsDim() bool {
	return k == KindFixedDim || k == KindVarDim
}

// Bits returns the bit width of numeric kinds, 0 otherwise.
// Complex widths count both components.
func (k Kind) Bits() int {
	switch k {
	case KindInt8, KindUint8:
		return 8
	case KindInt16, KindUint16, KindFloat16:
		return 16
	case KindInt32, KindUint32, KindFloat32:
		return 32
	case KindInt64, KindUint64, KindFloat64, KindComplex64:
		return 64
	case KindInt128, KindUint128, KindComplex128:
		return 128
	}
	return 0
}
