package kernel

import (
	"testing"

	"github.com/wippyai/typeconv/errors"
	"github.com/wippyai/typeconv/host"
	"github.com/wippyai/typeconv/host/gohost"
	"github.com/wippyai/typeconv/layout"
	"github.com/wippyai/typeconv/types"
)

func colors() *types.Type {
	return types.Categorical(types.String(types.UTF8), "red", "green", "blue")
}

func TestCategoricalRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		typ  *types.Type
		in   any
		want any
	}{
		{"string", colors(), "green", "green"},
		{"int", types.Categorical(types.Int32(), 10, 20, 30), 30, 30},
		{"int from text", types.Categorical(types.Int32(), 10, 20, 30), "20", 20},
		{"option", types.Categorical(types.Option(types.Int16()), nil, 1), nil, nil},
		{"tuple", types.Categorical(types.Tuple(types.String(types.UTF8), types.Int8()),
			[]any{"a", 1}, []any{"a", 2}), []any{"a", 2}, gohost.Tuple{"a", 2}},
		{"in dim", types.VarDim(colors()), []any{"blue", "red", "blue"}, []any{"blue", "red", "blue"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := roundTrip(t, tt.typ, tt.in)
			if !gohost.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCategoricalIndex(t *testing.T) {
	buf, addr, err := convertIn(t, colors(), "blue")
	if err != nil {
		t.Fatal(err)
	}
	if layout.SizeOf(colors()) != 1 {
		t.Fatalf("three categories should use a one-byte index, got %d", layout.SizeOf(colors()))
	}
	idx, _ := buf.ReadU8(addr)
	if idx != 2 {
		t.Errorf("index = %d, want 2", idx)
	}

	wide := make([]any, 300)
	for i := range wide {
		wide[i] = i
	}
	typ := types.Categorical(types.Uint16(), wide...)
	buf, addr, err = convertIn(t, typ, 299)
	if err != nil {
		t.Fatal(err)
	}
	if idx, _ := buf.ReadU16(addr); idx != 299 {
		t.Errorf("wide index = %d, want 299", idx)
	}
}

func TestCategoricalErrors(t *testing.T) {
	_, _, err := convertIn(t, colors(), "purple")
	e := wantKind(t, err, errors.KindInvalidArgument)
	if e.Detail != "value is not a category" {
		t.Errorf("detail = %q", e.Detail)
	}

	_, _, err = convertIn(t, colors(), 3)
	wantKind(t, err, errors.KindTypeMismatch)

	_, err = InstantiateInto(types.Categorical(types.Int32(), 1, 2, 1), nil)
	e = wantKind(t, err, errors.KindInvalidArgument)
	if e.Phase != errors.PhaseBuild {
		t.Errorf("duplicate category phase = %s, want build", e.Phase)
	}

	_, err = InstantiateFrom(types.Categorical(types.Int8(), 1, 1000), nil)
	wantKind(t, err, errors.KindInvalidArgument)
}

func TestCategoricalBadIndex(t *testing.T) {
	typ := colors()
	buf := layout.NewBuffer(16)
	addr := slot(t, buf, typ)
	if err := buf.WriteU8(addr, 7); err != nil {
		t.Fatal(err)
	}
	var got host.Value = "stale"
	err := mustFrom(t, typ).ConvertOne(buf, &got, addr)
	wantKind(t, err, errors.KindInvalidData)
}
