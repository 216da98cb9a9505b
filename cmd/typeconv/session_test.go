package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wippyai/typeconv/types"
	"go.uber.org/zap"
)

func TestHexdump(t *testing.T) {
	got := hexdump([]byte("AB\x00CDEFG"), 16, 4)
	want := "00000010  41 42 00 43  AB.C\n" +
		"00000014  44 45 46 47  DEFG\n"
	if got != want {
		t.Errorf("hexdump =\n%s\nwant\n%s", got, want)
	}

	got = hexdump([]byte{1}, 0, 4)
	if got != "00000000  01           .\n" {
		t.Errorf("short row = %q", got)
	}
}

func TestRowBytes(t *testing.T) {
	tests := []struct{ width, want int }{
		{0, 4},
		{80, 16},
		{60, 12},
		{200, 32},
	}
	for _, tt := range tests {
		if got := rowBytes(tt.width); got != tt.want {
			t.Errorf("rowBytes(%d) = %d, want %d", tt.width, got, tt.want)
		}
	}
}

func TestLoadType(t *testing.T) {
	typ, err := loadType(config{typeExpr: "list<tuple<u32, string>>"})
	if err != nil {
		t.Fatal(err)
	}
	want := types.VarDim(types.Tuple(types.Uint32(), types.String(types.UTF8)))
	if !types.Equal(typ, want) {
		t.Errorf("type = %s, want %s", typ, want)
	}

	if _, err := loadType(config{typeExpr: "list<"}); err == nil {
		t.Error("expected error for a malformed type")
	}
	if _, err := loadType(config{witFile: filepath.Join(t.TempDir(), "missing.json"), name: "x"}); err == nil {
		t.Error("expected error for a missing WIT file")
	}
}

func TestSessionConvert(t *testing.T) {
	s, err := newSession(types.VarDim(types.Int16()), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	r, err := s.convert([]any{1, -1})
	if err != nil {
		t.Fatal(err)
	}
	// the dim header followed by its two elements
	if len(r.data) != 12 {
		t.Errorf("layout is %d bytes, want 12", len(r.data))
	}
	if out := r.String(80); !strings.Contains(out, "=> [1, -1]") || !strings.Contains(out, "01 00 ff ff") {
		t.Errorf("output:\n%s", out)
	}

	if _, err := s.convert([]any{70000}); err == nil {
		t.Error("expected overflow")
	}
}

func TestSessionGuest(t *testing.T) {
	ctx := context.Background()
	g, err := newGuest(ctx, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	defer g.Close(ctx)

	s, err := newSession(types.String(types.UTF8), g.heap)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	for range 3 {
		r, err := s.convert("guest")
		if err != nil {
			t.Fatal(err)
		}
		if r.addr != g.base || r.out != "guest" {
			t.Errorf("addr = %d, out = %v", r.addr, r.out)
		}
	}
}

func TestRunBatch(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "values.yaml")
	if err := os.WriteFile(in, []byte("[1, 2]\n---\n[x]\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := newSession(types.VarDim(types.Uint8()), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var out bytes.Buffer
	err = runBatch(s, in, &out)
	if err == nil || !strings.Contains(err.Error(), "1 of 2") {
		t.Errorf("err = %v, want one failed document", err)
	}
	text := out.String()
	for _, want := range []string{"type var * uint8", "document 0", "=> [1, 2]", "document 1", "invalid_argument"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}
