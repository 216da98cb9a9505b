package kernel

import (
	"fmt"
	"testing"

	"github.com/wippyai/typeconv/errors"
	"github.com/wippyai/typeconv/host"
	"github.com/wippyai/typeconv/host/gohost"
	"github.com/wippyai/typeconv/layout"
	"github.com/wippyai/typeconv/types"
)

// countingHost counts releases. Text construction fails once textLimit texts
// have been made; a negative limit never fails.
type countingHost struct {
	*gohost.Host
	released  int
	texts     int
	textLimit int
}

func newCountingHost() *countingHost {
	return &countingHost{Host: gohost.New(), textLimit: -1}
}

func (h *countingHost) Release(v host.Value) {
	h.released++
}

func (h *countingHost) MakeText(utf8 []byte, enc types.Encoding) (host.Value, error) {
	if h.textLimit >= 0 && h.texts >= h.textLimit {
		return nil, fmt.Errorf("text limit %d reached", h.textLimit)
	}
	h.texts++
	return h.Host.MakeText(utf8, enc)
}

func mustInto(t *testing.T, typ *types.Type, opts ...Option) *IntoProgram {
	t.Helper()
	p, err := InstantiateInto(typ, nil, opts...)
	if err != nil {
		t.Fatalf("InstantiateInto(%s): %v", typ, err)
	}
	t.Cleanup(p.Close)
	return p
}

func mustFrom(t *testing.T, typ *types.Type, opts ...Option) *FromProgram {
	t.Helper()
	p, err := InstantiateFrom(typ, nil, opts...)
	if err != nil {
		t.Fatalf("InstantiateFrom(%s): %v", typ, err)
	}
	t.Cleanup(p.Close)
	return p
}

// slot allocates an aligned, zeroed value of typ in buf.
func slot(t *testing.T, buf *layout.Buffer, typ *types.Type) uint32 {
	t.Helper()
	addr, err := buf.Alloc(max(layout.SizeOf(typ), 1), max(layout.AlignOf(typ), 1))
	if err != nil {
		t.Fatal(err)
	}
	return addr
}

// convertIn writes v as typ into a fresh buffer and returns the buffer and address.
func convertIn(t *testing.T, typ *types.Type, v any, opts ...Option) (*layout.Buffer, uint32, error) {
	t.Helper()
	buf := layout.NewBuffer(256)
	addr := slot(t, buf, typ)
	return buf, addr, mustInto(t, typ, opts...).ConvertOne(buf, addr, v)
}

func roundTrip(t *testing.T, typ *types.Type, v any, opts ...Option) any {
	t.Helper()
	buf, addr, err := convertIn(t, typ, v, opts...)
	if err != nil {
		t.Fatalf("into %s: %v", typ, err)
	}
	var got host.Value
	if err := mustFrom(t, typ, opts...).ConvertOne(buf, &got, addr); err != nil {
		t.Fatalf("from %s: %v", typ, err)
	}
	return got
}

func wantKind(t *testing.T, err error, kind errors.Kind) *errors.Error {
	t.Helper()
	var e *errors.Error
	if !errors.As(err, &e) {
		t.Fatalf("err = %v, want %s error", err, kind)
	}
	if e.Kind != kind {
		t.Fatalf("err kind = %s (%v), want %s", e.Kind, err, kind)
	}
	return e
}
