package types

// Encoding is the storage encoding of string kinds.
type Encoding uint8

const (
	UTF8 Encoding = iota
	ASCII
	UTF16
	UTF32
)

var encodingNames = [...]string{
	UTF8:  "utf8",
	ASCII: "ascii",
	UTF16: "utf16",
	UTF32: "utf32",
}

func (e Encoding) String() string {
	if int(e) < len(encodingNames) {
		return encodingNames[e]
	}
	return "unknown"
}

// UnitSize returns the size in bytes of one code unit.
func (e Encoding) UnitSize() uint32 {
	switch e {
	case UTF16:
		return 2
	case UTF32:
		return 4
	default:
		return 1
	}
}

// ParseEncoding resolves an encoding name.
func ParseEncoding(name string) (Encoding, bool) {
	for i, n := range encodingNames {
		if n == name {
			return Encoding(i), true
		}
	}
	switch name {
	case "utf-8":
		return UTF8, true
	case "utf-16":
		return UTF16, true
	case "utf-32":
		return UTF32, true
	}
	return 0, false
}
