package kernel

import (
	"sync"
	"testing"

	"github.com/wippyai/typeconv/errors"
	"github.com/wippyai/typeconv/layout"
	"github.com/wippyai/typeconv/types"
)

func TestCache(t *testing.T) {
	c := NewCache()
	typ := types.VarDim(types.Int32())
	meta := layout.Default(typ)

	a, err := c.Into(typ, meta)
	if err != nil {
		t.Fatal(err)
	}
	b, err := c.Into(typ, meta)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("same type and meta should share a program")
	}

	f, err := c.From(typ, meta)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Into(typ, layout.Default(typ)); err != nil {
		t.Fatal(err)
	}

	c.Close()
	buf := layout.NewBuffer(16)
	wantKind(t, a.ConvertOne(buf, 8, []any{}), errors.KindClosed)
	wantKind(t, f.ConvertOne(buf, nil, 8), errors.KindClosed)
}

func TestCacheConcurrent(t *testing.T) {
	c := NewCache()
	defer c.Close()
	typ := types.Struct(types.NewField("x", types.Float64()))

	var wg sync.WaitGroup
	progs := make([]*FromProgram, 16)
	for i := range progs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := c.From(typ, nil)
			if err != nil {
				t.Error(err)
				return
			}
			progs[i] = p
		}()
	}
	wg.Wait()
	for _, p := range progs[1:] {
		if p != progs[0] {
			t.Fatal("concurrent lookups returned different programs")
		}
	}
}

func TestCacheBuildError(t *testing.T) {
	c := NewCache()
	defer c.Close()
	_, err := c.Into(types.Categorical(types.Int8(), 1, 1), nil)
	wantKind(t, err, errors.KindInvalidArgument)
}
