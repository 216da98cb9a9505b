package main

import (
	"fmt"
	"math/big"
	"strings"
	"testing"

	"github.com/wippyai/typeconv/host/gohost"
)

func TestDecodeDocuments(t *testing.T) {
	in := `
- 1
- two
- 2.5
---
name: x
id: 18446744073709551616
---
~
---
when: 2024-01-02
raw: !!binary aGk=
`
	values, err := decodeDocuments(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(values) != 4 {
		t.Fatalf("got %d documents, want 4", len(values))
	}

	if !gohost.Equal(values[0], []any{1, "two", 2.5}) {
		t.Errorf("document 0 = %#v", values[0])
	}

	rec, ok := values[1].(*gohost.Record)
	if !ok {
		t.Fatalf("document 1 = %T, want *gohost.Record", values[1])
	}
	if strings.Join(rec.Keys, ",") != "name,id" {
		t.Errorf("keys = %v, want document order", rec.Keys)
	}
	id, _ := rec.Get("id")
	if _, ok := id.(*big.Int); !ok {
		t.Errorf("id = %T, want *big.Int", id)
	}

	if values[2] != nil {
		t.Errorf("document 2 = %#v, want nil", values[2])
	}

	rec = values[3].(*gohost.Record)
	if when, _ := rec.Get("when"); when != "2024-01-02" {
		t.Errorf("timestamp = %#v, want text", when)
	}
	if raw, _ := rec.Get("raw"); string(raw.([]byte)) != "hi" {
		t.Errorf("binary = %#v", raw)
	}
}

func TestDecodeValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"42", int64(42)},
		{"0x10", int64(16)},
		{"true", true},
		{"hello", "hello"},
		{"'42'", "42"},
		{"[1, [2]]", []any{1, []any{2}}},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := decodeValue(tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if !gohost.Equal(got, tt.want) {
				t.Errorf("decodeValue(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}

	if _, err := decodeValue("[1, 2"); err == nil {
		t.Error("expected error for malformed YAML")
	}
	if _, err := decodeValue("{[1]: 2}"); err == nil {
		t.Error("expected error for a sequence key")
	}
}

func TestDecodeWideIntegers(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"18446744073709551615", gohost.BigInt("18446744073709551615")},
		{"340282366920938463463374607431768211455", gohost.BigInt("340282366920938463463374607431768211455")},
		{"-170141183460469231731687303715884105728", gohost.BigInt("-170141183460469231731687303715884105728")},
		{"1e30", 1e30},
		{"!!float 5", 5.0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := decodeValue(tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if fmt.Sprintf("%T", got) != fmt.Sprintf("%T", tt.want) || !gohost.Equal(got, tt.want) {
				t.Errorf("decodeValue(%q) = %T %v, want %T %v", tt.in, got, got, tt.want, tt.want)
			}
		})
	}
}
