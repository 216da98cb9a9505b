package kernel

import (
	"strings"
	"testing"

	"github.com/wippyai/typeconv/errors"
	"github.com/wippyai/typeconv/host"
	"github.com/wippyai/typeconv/host/gohost"
	"github.com/wippyai/typeconv/layout"
	"github.com/wippyai/typeconv/types"
)

func pointType() *types.Type {
	return types.Struct(
		types.NewField("a", types.Int32()),
		types.NewField("b", types.String(types.UTF8)),
	)
}

func TestCompositeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		typ  *types.Type
		in   any
		want any
	}{
		{"tuple", types.Tuple(types.Int32(), types.String(types.UTF8), types.Float64()),
			[]any{1, "x", 2.5}, gohost.Tuple{1, "x", 2.5}},
		{"tuple broadcast", types.Tuple(types.Int32(), types.Int64()), []any{9}, gohost.Tuple{9, 9}},
		{"struct from sequence", pointType(), []any{1, "x"}, map[string]any{"a": 1, "b": "x"}},
		{"struct from mapping", pointType(), gohost.NewRecord("b", "y", "a", 2), map[string]any{"a": 2, "b": "y"}},
		{"struct from map", pointType(), map[string]any{"a": 3, "b": "z"}, map[string]any{"a": 3, "b": "z"}},
		{"fixed dim", types.FixedDim(3, types.Int16()), []any{1, 2, 3}, []any{1, 2, 3}},
		{"fixed dim broadcast", types.FixedDim(4, types.Int32()), []any{7}, []any{7, 7, 7, 7}},
		{"var dim", types.VarDim(types.Float64()), []any{1.5, 2.5}, []any{1.5, 2.5}},
		{"empty var dim", types.VarDim(types.Int32()), []any{}, []any{}},
		{"var dim of strings", types.VarDim(types.String(types.UTF16)), []any{"a", "", "€"}, []any{"a", "", "€"}},
		{"nested dims", types.FixedDim(2, types.VarDim(types.Uint8())), []any{[]any{1}, []any{2, 3}},
			[]any{[]any{1}, []any{2, 3}}},
		{"broadcast nested var dims", types.FixedDim(3, types.VarDim(types.Int8())), []any{[]any{4, 5}},
			[]any{[]any{4, 5}, []any{4, 5}, []any{4, 5}}},
		{"dim of structs", types.VarDim(pointType()), []any{gohost.NewRecord("a", 1, "b", "p")},
			[]any{map[string]any{"a": 1, "b": "p"}}},
		{"option none", types.Option(types.Int32()), nil, nil},
		{"option value", types.Option(types.Int32()), 5, 5},
		{"option NA token", types.Option(types.Float64()), "NA", nil},
		{"option empty token", types.Option(types.Int8()), "", nil},
		{"option null token", types.Option(types.Date()), "null", nil},
		{"option text keeps token", types.Option(types.String(types.UTF8)), "NA", "NA"},
		{"option in struct", types.Struct(types.NewField("x", types.Option(types.Int64()))),
			map[string]any{"x": nil}, map[string]any{"x": nil}},
		{"native slice", types.VarDim(types.Int64()), []int{1, 2}, []any{1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := roundTrip(t, tt.typ, tt.in)
			if !gohost.Equal(got, tt.want) {
				t.Errorf("%s: got %s, want %s", tt.typ, gohost.Default.Repr(got), gohost.Default.Repr(tt.want))
			}
		})
	}
}

func TestCompositeErrors(t *testing.T) {
	tests := []struct {
		name string
		typ  *types.Type
		in   any
		kind errors.Kind
		msg  string
	}{
		{"tuple arity", types.Tuple(types.Int32(), types.Int32(), types.Int32()), []any{1, 2},
			errors.KindBroadcast, "cannot broadcast input of size 2 to destination of size 3"},
		{"tuple from scalar", types.Tuple(types.Int32()), 1, errors.KindTypeMismatch, "expected a sequence"},
		{"struct missing field", pointType(), gohost.NewRecord("a", 5), errors.KindFieldMissing, `value {"a": 5}`},
		{"struct unknown field", pointType(), gohost.NewRecord("a", 1, "b", "x", "c", 2), errors.KindFieldUnknown,
			`value {"a": 1, "b": "x", "c": 2}`},
		{"struct unknown first", pointType(), gohost.NewRecord("c", 1, "a", "bad"), errors.KindFieldUnknown, `"c"`},
		{"struct bad value first", pointType(), gohost.NewRecord("a", "bad", "c", 1), errors.KindInvalidArgument, "at a"},
		{"fixed dim length", types.FixedDim(4, types.Int32()), []any{1, 2, 3},
			errors.KindBroadcast, "cannot broadcast input of size 3 to destination of size 4"},
		{"fixed dim zero", types.FixedDim(0, types.Int32()), []any{1, 2},
			errors.KindBroadcast, "cannot broadcast input of size 2 to destination of size 0"},
		{"dim from text", types.VarDim(types.Int32()), "abc", errors.KindTypeMismatch, ""},
		{"element path", types.VarDim(pointType()), []any{[]any{1, "x"}, gohost.NewRecord("a", "nope", "b", "y")},
			errors.KindInvalidArgument, "at [1].a"},
		{"option payload path", types.Option(types.Int8()), 1000, errors.KindOverflow, "at ?"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := convertIn(t, tt.typ, tt.in)
			wantKind(t, err, tt.kind)
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("error %q does not contain %q", err, tt.msg)
			}
		})
	}
}

func TestUnknownKeysAllReported(t *testing.T) {
	_, _, err := convertIn(t, pointType(), gohost.NewRecord("x", 1, "a", 1, "y", 2))
	wantKind(t, err, errors.KindFieldUnknown)
	if !strings.Contains(err.Error(), `"x", "y"`) {
		t.Errorf("error %q should list every unknown key", err)
	}
}

func TestVarDimRewrite(t *testing.T) {
	typ := types.VarDim(types.Int32())
	into := mustInto(t, typ)
	from := mustFrom(t, typ)
	buf := layout.NewBuffer(256)
	addr := slot(t, buf, typ)

	steps := []struct {
		in   []any
		want []any
		kind errors.Kind
	}{
		{in: []any{1, 2, 3}, want: []any{1, 2, 3}},
		{in: []any{4, 5, 6}, want: []any{4, 5, 6}},
		{in: []any{9}, want: []any{9, 9, 9}},
		{in: []any{1, 2}, want: []any{9, 9, 9}, kind: errors.KindBroadcast},
	}
	for i, s := range steps {
		err := into.ConvertOne(buf, addr, s.in)
		if s.kind != "" {
			wantKind(t, err, s.kind)
		} else if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		var got host.Value
		if err := from.ConvertOne(buf, &got, addr); err != nil {
			t.Fatalf("step %d: read back: %v", i, err)
		}
		if !gohost.Equal(got, s.want) {
			t.Errorf("step %d: got %v, want %v", i, got, s.want)
		}
	}
}

func TestVarDimNonZeroOffset(t *testing.T) {
	typ := types.VarDim(types.Int32())
	meta := *layout.Default(typ)
	meta.Offset = 4
	p, err := InstantiateInto(typ, &meta)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	buf := layout.NewBuffer(64)
	addr := slot(t, buf, typ)
	wantKind(t, p.ConvertOne(buf, addr, []any{1}), errors.KindInvalidState)
}

func TestVarDimNonZeroOffsetNamesValue(t *testing.T) {
	typ := types.VarDim(types.Int32())
	meta := *layout.Default(typ)
	meta.Offset = 4
	p, err := InstantiateInto(typ, &meta)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	buf := layout.NewBuffer(64)
	err = p.ConvertOne(buf, slot(t, buf, typ), []any{7, 8})
	e := wantKind(t, err, errors.KindInvalidState)
	if e.Value != "[7, 8]" || !strings.Contains(err.Error(), "value [7, 8]") {
		t.Errorf("error %q should carry the source value", err)
	}
}

func TestZeroLengthDimFromSingleElement(t *testing.T) {
	fixed := types.FixedDim(0, types.Int32())
	if got := roundTrip(t, fixed, []any{1}); !gohost.Equal(got, []any{}) {
		t.Errorf("fixed dim: got %v, want []", got)
	}

	typ := types.VarDim(types.Int32())
	into := mustInto(t, typ)
	from := mustFrom(t, typ)
	buf := layout.NewBuffer(64)
	addr := slot(t, buf, typ)
	for _, in := range [][]any{{}, {5}} {
		if err := into.ConvertOne(buf, addr, in); err != nil {
			t.Fatalf("write %v: %v", in, err)
		}
	}
	var got host.Value
	if err := from.ConvertOne(buf, &got, addr); err != nil {
		t.Fatal(err)
	}
	if !gohost.Equal(got, []any{}) {
		t.Errorf("var dim: got %v, want []", got)
	}
}

func TestVarDimEmptyIsAllocated(t *testing.T) {
	typ := types.VarDim(types.Int32())
	buf, addr, err := convertIn(t, typ, []any{})
	if err != nil {
		t.Fatal(err)
	}
	vd, err := layout.VarDimInfo(typ, layout.Default(typ), buf, addr)
	if err != nil {
		t.Fatal(err)
	}
	if !vd.Allocated() || vd.Size != 0 {
		t.Errorf("empty var dim: allocated=%v size=%d", vd.Allocated(), vd.Size)
	}
}

func TestOptionFlagLayout(t *testing.T) {
	typ := types.Option(types.Int32())
	meta := layout.Default(typ)
	into := mustInto(t, typ)
	buf := layout.NewBuffer(64)
	addr := slot(t, buf, typ)

	if err := into.ConvertOne(buf, addr, 5); err != nil {
		t.Fatal(err)
	}
	flag, _ := buf.ReadU8(addr)
	payload, _ := buf.ReadU32(addr + meta.PayloadOffset)
	if flag != 1 || payload != 5 {
		t.Errorf("some(5): flag=%d payload=%d", flag, payload)
	}

	if err := into.ConvertOne(buf, addr, nil); err != nil {
		t.Fatal(err)
	}
	if flag, _ = buf.ReadU8(addr); flag != 0 {
		t.Errorf("none: flag=%d", flag)
	}

	// the flag is only set once the payload converts
	if err := into.ConvertOne(buf, addr, "x"); err == nil {
		t.Fatal("expected error")
	}
	if flag, _ = buf.ReadU8(addr); flag != 0 {
		t.Errorf("failed payload: flag=%d", flag)
	}
}

func TestOptionFailedRewriteIsMissing(t *testing.T) {
	typ := types.Option(types.Tuple(types.Int8(), types.Int8()))
	into := mustInto(t, typ)
	from := mustFrom(t, typ)
	buf := layout.NewBuffer(64)
	addr := slot(t, buf, typ)

	if err := into.ConvertOne(buf, addr, []any{1, 2}); err != nil {
		t.Fatal(err)
	}
	wantKind(t, into.ConvertOne(buf, addr, []any{3, 300}), errors.KindOverflow)

	var got host.Value
	if err := from.ConvertOne(buf, &got, addr); err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("got %#v after a failed rewrite, want none", got)
	}
}

func TestScalarBroadcast(t *testing.T) {
	tests := []struct {
		name string
		typ  *types.Type
		in   any
		want any
	}{
		{"scalar to dim", types.FixedDim(3, types.Int32()), 7, []any{7, 7, 7}},
		{"row to matrix", types.FixedDim(2, types.FixedDim(2, types.Int32())), []any{1, 2},
			[]any{[]any{1, 2}, []any{1, 2}}},
		{"scalar to tuple", types.Tuple(types.Float64(), types.Float64()), 0.5, gohost.Tuple{0.5, 0.5}},
		{"full depth unchanged", types.FixedDim(2, types.Int32()), []any{1, 2}, []any{1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := roundTrip(t, tt.typ, tt.in, WithScalarBroadcast(true))
			if !gohost.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	_, _, err := convertIn(t, types.FixedDim(3, types.Int32()), 7)
	wantKind(t, err, errors.KindTypeMismatch)
}
