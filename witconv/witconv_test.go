package witconv

import (
	"testing"

	"github.com/wippyai/typeconv/errors"
	"github.com/wippyai/typeconv/types"
	"go.bytecodealliance.org/wit"
)

func named(name string, kind wit.TypeDefKind) *wit.TypeDef {
	return &wit.TypeDef{Name: &name, Kind: kind}
}

func TestFromWIT(t *testing.T) {
	point := named("point", &wit.Record{Fields: []wit.Field{
		{Name: "x", Type: wit.S32{}},
		{Name: "label", Type: wit.String{}},
	}})

	tests := []struct {
		name string
		in   wit.Type
		want string
	}{
		{"bool", wit.Bool{}, "bool"},
		{"s8", wit.S8{}, "int8"},
		{"s64", wit.S64{}, "int64"},
		{"u16", wit.U16{}, "uint16"},
		{"f32", wit.F32{}, "float32"},
		{"f64", wit.F64{}, "float64"},
		{"char", wit.Char{}, "char"},
		{"string", wit.String{}, types.String(types.UTF8).String()},
		{"record", point, types.Struct(
			types.NewField("x", types.Int32()),
			types.NewField("label", types.String(types.UTF8)),
		).String()},
		{"list", &wit.TypeDef{Kind: &wit.List{Type: wit.U8{}}}, "var * uint8"},
		{"option", &wit.TypeDef{Kind: &wit.Option{Type: wit.U32{}}}, "?uint32"},
		{"tuple", &wit.TypeDef{Kind: &wit.Tuple{Types: []wit.Type{wit.U32{}, wit.F64{}}}}, "(uint32, float64)"},
		{"alias", named("id", wit.U64{}), "uint64"},
		{"enum", named("color", &wit.Enum{Cases: []wit.EnumCase{{Name: "red"}, {Name: "green"}}}),
			types.Categorical(types.String(types.UTF8), "red", "green").String()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromWIT(tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if got.String() != tt.want {
				t.Errorf("FromWIT = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFromWITUnsupported(t *testing.T) {
	tests := []struct {
		name string
		in   wit.Type
	}{
		{"variant", named("shape", &wit.Variant{Cases: []wit.Case{{Name: "none"}}})},
		{"result", &wit.TypeDef{Kind: &wit.Result{OK: wit.U32{}}}},
		{"flags", named("perm", &wit.Flags{Flags: []wit.Flag{{Name: "read"}}})},
		{"nested", &wit.TypeDef{Kind: &wit.Record{Fields: []wit.Field{
			{Name: "r", Type: &wit.TypeDef{Kind: &wit.Result{}}},
		}}}},
		{"nil", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromWIT(tt.in)
			var e *errors.Error
			if !errors.As(err, &e) || e.Kind != errors.KindUnsupported {
				t.Fatalf("err = %v, want unsupported", err)
			}
		})
	}

	_, err := FromWIT(&wit.TypeDef{Kind: &wit.Record{Fields: []wit.Field{
		{Name: "r", Type: &wit.TypeDef{Kind: &wit.Flags{}}},
	}}})
	var e *errors.Error
	if errors.As(err, &e) && errors.JoinPath(e.Path) != "r" {
		t.Errorf("path = %q, want r", errors.JoinPath(e.Path))
	}
}

func TestConverterSharesDefinitions(t *testing.T) {
	elem := named("pair", &wit.Tuple{Types: []wit.Type{wit.U8{}, wit.U8{}}})
	c := NewConverter()
	a, err := c.Convert(&wit.TypeDef{Kind: &wit.List{Type: elem}})
	if err != nil {
		t.Fatal(err)
	}
	b, err := c.Convert(&wit.TypeDef{Kind: &wit.Option{Type: elem}})
	if err != nil {
		t.Fatal(err)
	}
	if a.Elem() != b.Elem() {
		t.Error("a definition should convert to one descriptor")
	}
}

func TestLookup(t *testing.T) {
	point := named("point", &wit.Record{Fields: []wit.Field{{Name: "x", Type: wit.S32{}}}})
	resolve := &wit.Resolve{TypeDefs: []*wit.TypeDef{
		{Kind: &wit.List{Type: wit.U8{}}},
		point,
	}}

	got, ok := Lookup(resolve, "point")
	if !ok || got != point {
		t.Fatalf("Lookup(point) = %v, %v", got, ok)
	}
	if _, ok := Lookup(resolve, "missing"); ok {
		t.Error("Lookup(missing) should fail")
	}
	if _, ok := Lookup(nil, "point"); ok {
		t.Error("Lookup on a nil resolve should fail")
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"u32", "uint32"},
		{"list<u8>", "var * uint8"},
		{" list< tuple<u32, string> > ", "var * (uint32, " + types.String(types.UTF8).String() + ")"},
		{"option<list<s16>>", "?var * int16"},
		{"tuple<bool, option<f64>, char>", "(bool, ?float64, char)"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			wt, err := ParseType(tt.in)
			if err != nil {
				t.Fatal(err)
			}
			got, err := FromWIT(wt)
			if err != nil {
				t.Fatal(err)
			}
			if got.String() != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParseTypeErrors(t *testing.T) {
	for _, in := range []string{"", "nope", "list<u8", "list<u8, u16>", "option<>", "tuple<>", "map<u8>", "list<xyz>"} {
		t.Run(in, func(t *testing.T) {
			if _, err := ParseType(in); err == nil {
				t.Errorf("ParseType(%q) should fail", in)
			}
		})
	}
}
