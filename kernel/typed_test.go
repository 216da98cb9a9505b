package kernel

import (
	"testing"

	"github.com/wippyai/typeconv/errors"
	"github.com/wippyai/typeconv/host"
	"github.com/wippyai/typeconv/host/gohost"
	"github.com/wippyai/typeconv/layout"
	"github.com/wippyai/typeconv/types"
)

// typedValue lays v out as typ in its own buffer.
func typedValue(t *testing.T, typ *types.Type, v any) host.Typed {
	t.Helper()
	buf, addr, err := convertIn(t, typ, v)
	if err != nil {
		t.Fatal(err)
	}
	return host.Typed{Type: typ, Meta: layout.Default(typ), Mem: buf, Addr: addr}
}

func typedCount(p *Program) int {
	n := 0
	p.typed.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func TestTypedSameType(t *testing.T) {
	typ := types.VarDim(types.String(types.UTF8))
	src := typedValue(t, typ, []any{"a", "bc"})

	into := mustInto(t, typ)
	buf := layout.NewBuffer(128)
	addr := slot(t, buf, typ)
	for range 2 {
		if err := into.ConvertOne(buf, addr, src); err != nil {
			t.Fatal(err)
		}
	}
	if n := typedCount(&into.Program); n != 1 {
		t.Errorf("typed programs = %d, want 1", n)
	}

	var got host.Value
	if err := mustFrom(t, typ).ConvertOne(buf, &got, addr); err != nil {
		t.Fatal(err)
	}
	if !gohost.Equal(got, []any{"a", "bc"}) {
		t.Errorf("got %v", got)
	}
}

func TestTypedOtherType(t *testing.T) {
	typ := types.VarDim(types.Int64())
	elem := typedValue(t, types.Int8(), -3)
	got := roundTrip(t, typ, []any{elem, 4, elem})
	if !gohost.Equal(got, []any{-3, 4, -3}) {
		t.Errorf("got %v", got)
	}
}

func TestTypedErrors(t *testing.T) {
	_, _, err := convertIn(t, types.Int32(), host.Typed{Type: types.Int32()})
	wantKind(t, err, errors.KindInvalidArgument)

	big := typedValue(t, types.Int64(), 1<<40)
	_, _, err = convertIn(t, types.Int16(), big)
	wantKind(t, err, errors.KindOverflow)
}
