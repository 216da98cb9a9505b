package abi

import "math"

const (
	MaxAlloc    = 1 << 30 // 1 GB max single allocation
	MaxElements = 1 << 27 // 128M max elements per dimension
)

// Ticks are 100ns units, matching the datetime storage resolution.
const (
	TicksPerMicrosecond = 10
	TicksPerSecond      = 10_000_000
	TicksPerDay         = 86_400 * TicksPerSecond
	NanosPerTick        = 100
)

func SafeMulU32(a, b uint32) (uint32, bool) {
	if b != 0 && a > math.MaxUint32/b {
		return 0, false
	}
	return a * b, true
}

func SafeAddU32(a, b uint32) (uint32, bool) {
	if a > math.MaxUint32-b {
		return 0, false
	}
	return a + b, true
}

// Ticks returns days*TicksPerDay + tod, reporting int64 overflow.
func Ticks(days, tod int64) (int64, bool) {
	if days > math.MaxInt64/TicksPerDay || days < math.MinInt64/TicksPerDay {
		return 0, false
	}
	base := days * TicksPerDay
	if (tod > 0 && base > math.MaxInt64-tod) || (tod < 0 && base < math.MinInt64-tod) {
		return 0, false
	}
	return base + tod, true
}

func AlignTo(offset, align uint32) uint32 {
	if align == 0 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}

// DiscriminantSize returns the index width for n categories.
func DiscriminantSize(n int) uint32 {
	if n <= 256 {
		return 1
	} else if n <= 65536 {
		return 2
	}
	return 4
}

// ValidateChar rejects surrogates (0xD800-0xDFFF) and values >= 0x110000.
func ValidateChar(r rune) bool {
	if r >= 0xD800 && r <= 0xDFFF {
		return false
	}
	if r < 0 || r >= 0x110000 {
		return false
	}
	return true
}
