package abi

import (
	"math"
	"testing"
)

func TestSafeMulU32(t *testing.T) {
	tests := []struct {
		name   string
		a, b   uint32
		want   uint32
		wantOK bool
	}{
		{"zero * zero", 0, 0, 0, true},
		{"zero * max", 0, math.MaxUint32, 0, true},
		{"max * zero", math.MaxUint32, 0, 0, true},
		{"small * small", 100, 200, 20000, true},
		{"max * one", math.MaxUint32, 1, math.MaxUint32, true},
		{"overflow", math.MaxUint32, 2, 0, false},
		{"large overflow", 100000, 100000, 0, false},
		{"edge case ok", 65536, 65535, 65536 * 65535, true},
		{"edge case overflow", 65536, 65537, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SafeMulU32(tt.a, tt.b)
			if ok != tt.wantOK {
				t.Errorf("SafeMulU32(%d, %d) ok = %v, want %v", tt.a, tt.b, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("SafeMulU32(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSafeAddU32(t *testing.T) {
	if _, ok := SafeAddU32(math.MaxUint32, 1); ok {
		t.Error("expected overflow")
	}
	if v, ok := SafeAddU32(3, 4); !ok || v != 7 {
		t.Errorf("SafeAddU32(3, 4) = %d, %v", v, ok)
	}
}

func TestTicks(t *testing.T) {
	maxDays := int64(math.MaxInt64 / TicksPerDay)
	tests := []struct {
		name      string
		days, tod int64
		want      int64
		wantOK    bool
	}{
		{"epoch", 0, 0, 0, true},
		{"one day", 1, 5, TicksPerDay + 5, true},
		{"before epoch", -1, 0, -TicksPerDay, true},
		{"last whole day", maxDays, 0, maxDays * TicksPerDay, true},
		{"day past range", maxDays + 1, 0, 0, false},
		{"time of day past range", maxDays, TicksPerDay - 1, 0, false},
		{"far before epoch", -maxDays - 2, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Ticks(tt.days, tt.tod)
			if ok != tt.wantOK {
				t.Fatalf("Ticks(%d, %d) ok = %v, want %v", tt.days, tt.tod, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("Ticks(%d, %d) = %d, want %d", tt.days, tt.tod, got, tt.want)
			}
		})
	}
}

func TestAlignTo(t *testing.T) {
	tests := []struct {
		offset, align, want uint32
	}{
		{0, 4, 0},
		{1, 4, 4},
		{4, 4, 4},
		{5, 8, 8},
		{7, 1, 7},
		{9, 0, 9},
	}
	for _, tt := range tests {
		if got := AlignTo(tt.offset, tt.align); got != tt.want {
			t.Errorf("AlignTo(%d, %d) = %d, want %d", tt.offset, tt.align, got, tt.want)
		}
	}
}

func TestDiscriminantSize(t *testing.T) {
	tests := []struct {
		n    int
		want uint32
	}{
		{1, 1},
		{256, 1},
		{257, 2},
		{65536, 2},
		{65537, 4},
	}
	for _, tt := range tests {
		if got := DiscriminantSize(tt.n); got != tt.want {
			t.Errorf("DiscriminantSize(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestValidateChar(t *testing.T) {
	valid := []rune{0, 'a', 0xD7FF, 0xE000, 0x10FFFF}
	for _, r := range valid {
		if !ValidateChar(r) {
			t.Errorf("ValidateChar(%#x) = false, want true", r)
		}
	}
	invalid := []rune{0xD800, 0xDFFF, 0x110000, -1}
	for _, r := range invalid {
		if ValidateChar(r) {
			t.Errorf("ValidateChar(%#x) = true, want false", r)
		}
	}
}
