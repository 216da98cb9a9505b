package types

import "testing"

func TestKindString(t *testing.T) {
	tests := []struct {
		want string
		kind Kind
	}{
		{"bool", KindBool},
		{"int8", KindInt8},
		{"int128", KindInt128},
		{"uint64", KindUint64},
		{"float16", KindFloat16},
		{"complex128", KindComplex128},
		{"fixed_bytes", KindFixedBytes},
		{"fixed_string", KindFixedString},
		{"datetime", KindDateTime},
		{"option", KindOption},
		{"var_dim", KindVarDim},
		{"categorical", KindCategorical},
		{"unknown", Kind(255)},
	}

	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			if got := tc.kind.String(); got != tc.want {
				t.Errorf("String() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestKindTablesComplete(t *testing.T) {
	for k := Kind(0); k < KindCount; k++ {
		if kindNames[k] == "" {
			t.Errorf("kind %d has no name", k)
		}
	}
	if len(kindNames) != int(KindCount) {
		t.Errorf("kindNames has %d entries, want %d", len(kindNames), KindCount)
	}
}

func TestKindBase(t *testing.T) {
	tests := []struct {
		kind Kind
		want BaseKind
	}{
		{KindBool, BaseBool},
		{KindInt16, BaseSInt},
		{KindUint128, BaseUInt},
		{KindFloat32, BaseFloat},
		{KindComplex64, BaseComplex},
		{KindFixedBytes, BaseBytes},
		{KindChar, BaseString},
		{KindTime, BaseDateTime},
		{KindStruct, BaseTuple},
		{KindVarDim, BaseDim},
		{KindCategorical, BaseCategorical},
	}
	for _, tc := range tests {
		t.Run(tc.kind.String(), func(t *testing.T) {
			if got := tc.kind.Base(); got != tc.want {
				t.Errorf("Base() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestTypeString(t *testing.T) {
	point := Struct(NewField("x", Int32()), NewField("y", Int32()))
	tests := []struct {
		typ  *Type
		want string
	}{
		{Int32(), "int32"},
		{String(UTF8), "string"},
		{String(UTF16), "string['utf16']"},
		{FixedString(8, UTF8), "fixed_string[8]"},
		{FixedString(8, UTF32), "fixed_string[8, 'utf32']"},
		{FixedBytes(16, 1), "fixed_bytes[16]"},
		{FixedBytes(16, 4), "fixed_bytes[16, align=4]"},
		{Option(Int32()), "?int32"},
		{Tuple(Int32(), Float64(), String(UTF8)), "(int32, float64, string)"},
		{point, "{x: int32, y: int32}"},
		{Struct(NewField("my field", Bool())), `{"my field": bool}`},
		{FixedDim(4, Int32()), "4 * int32"},
		{VarDim(Option(String(UTF16))), "var * ?string['utf16']"},
		{FixedDim(2, VarDim(point)), "2 * var * {x: int32, y: int32}"},
		{Categorical(String(UTF8), "red", "green"), `categorical[string, ["red", "green"]]`},
		{Categorical(Int8(), 1, 2), "categorical[int8, [1, 2]]"},
		{TypeValue(), "type"},
	}

	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			if got := tc.typ.String(); got != tc.want {
				t.Errorf("String() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestStructFieldIndex(t *testing.T) {
	s := Struct(NewField("a", Int32()), NewField("b", String(UTF8)))
	if s.FieldIndex("b") != 1 {
		t.Errorf("FieldIndex(b) = %d, want 1", s.FieldIndex("b"))
	}
	if s.FieldIndex("c") != -1 {
		t.Errorf("FieldIndex(c) = %d, want -1", s.FieldIndex("c"))
	}
}

func TestStructDuplicateFieldPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for duplicate field")
		}
	}()
	Struct(NewField("a", Int32()), NewField("a", Int64()))
}

func TestEqual(t *testing.T) {
	a := Struct(NewField("a", Int32()), NewField("b", VarDim(String(UTF16))))
	b := Struct(NewField("a", Int32()), NewField("b", VarDim(String(UTF16))))
	c := Struct(NewField("a", Int32()), NewField("b", VarDim(String(UTF8))))

	if !Equal(a, b) {
		t.Error("structurally equal types should be Equal")
	}
	if Equal(a, c) {
		t.Error("types with different encodings should not be Equal")
	}
	if Equal(FixedDim(3, Int8()), FixedDim(4, Int8())) {
		t.Error("dims of different size should not be Equal")
	}
	if !Equal(Categorical(Int8(), 1, 2), Categorical(Int8(), 1, 2)) {
		t.Error("categoricals with same values should be Equal")
	}
}

func TestIsPOD(t *testing.T) {
	tests := []struct {
		typ  *Type
		want bool
	}{
		{Int64(), true},
		{FixedString(4, UTF16), true},
		{String(UTF8), false},
		{FixedDim(3, Option(Float32())), true},
		{FixedDim(3, Bytes()), false},
		{Tuple(Int8(), VarDim(Int8())), false},
		{Categorical(String(UTF8), "a"), true},
	}
	for _, tc := range tests {
		t.Run(tc.typ.String(), func(t *testing.T) {
			if got := tc.typ.IsPOD(); got != tc.want {
				t.Errorf("IsPOD() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNdim(t *testing.T) {
	if n := FixedDim(2, VarDim(Int32())).Ndim(); n != 2 {
		t.Errorf("Ndim = %d, want 2", n)
	}
	if n := Int32().Ndim(); n != 0 {
		t.Errorf("Ndim = %d, want 0", n)
	}
}

func TestRegistry(t *testing.T) {
	Init()
	Init()

	id := Intern(Int32())
	if id == 0 {
		t.Fatal("Intern returned the unset id")
	}
	if again := Intern(Int32()); again != id {
		t.Errorf("Intern not stable: %d then %d", id, again)
	}

	custom := VarDim(Int8())
	cid := Intern(custom)
	got, ok := Lookup(cid)
	if !ok || got != custom {
		t.Errorf("Lookup(%d) = %v, %v", cid, got, ok)
	}

	if _, ok := Lookup(0); ok {
		t.Error("Lookup(0) should fail")
	}
	if _, ok := Lookup(1 << 30); ok {
		t.Error("Lookup of unknown id should fail")
	}
}

func TestParseEncoding(t *testing.T) {
	for _, name := range []string{"utf8", "utf-8", "ascii", "utf16", "utf-32"} {
		if _, ok := ParseEncoding(name); !ok {
			t.Errorf("ParseEncoding(%q) failed", name)
		}
	}
	if _, ok := ParseEncoding("latin1"); ok {
		t.Error("ParseEncoding(latin1) should fail")
	}
}
