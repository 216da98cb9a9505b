package textenc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/wippyai/typeconv/types"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

var (
	// ErrInvalidUTF8 reports interchange text that is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("invalid UTF-8")
	// ErrNotASCII reports text that cannot be stored as ASCII.
	ErrNotASCII = errors.New("text contains non-ASCII characters")
)

var (
	utf16LE = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	utf32LE = utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM)
)

func codec(enc types.Encoding) encoding.Encoding {
	switch enc {
	case types.UTF16:
		return utf16LE
	case types.UTF32:
		return utf32LE
	}
	return nil
}

// Encode converts UTF-8 text to the storage encoding.
func Encode(enc types.Encoding, text []byte) ([]byte, error) {
	if !utf8.Valid(text) {
		return nil, ErrInvalidUTF8
	}
	switch enc {
	case types.UTF8:
		return text, nil
	case types.ASCII:
		for i, c := range text {
			if c >= 0x80 {
				return nil, fmt.Errorf("%w: byte %d", ErrNotASCII, i)
			}
		}
		return text, nil
	}
	c := codec(enc)
	if c == nil {
		return nil, fmt.Errorf("unknown encoding %d", enc)
	}
	return c.NewEncoder().Bytes(text)
}

// Decode converts stored text to UTF-8.
func Decode(enc types.Encoding, data []byte) ([]byte, error) {
	switch enc {
	case types.UTF8:
		if !utf8.Valid(data) {
			return nil, ErrInvalidUTF8
		}
		return data, nil
	case types.ASCII:
		for i, c := range data {
			if c >= 0x80 {
				return nil, fmt.Errorf("%w: byte %d", ErrNotASCII, i)
			}
		}
		return data, nil
	}
	c := codec(enc)
	if c == nil {
		return nil, fmt.Errorf("unknown encoding %d", enc)
	}
	return c.NewDecoder().Bytes(data)
}

// Trim returns the prefix of fixed-width storage before the first zero code unit.
func Trim(enc types.Encoding, data []byte) []byte {
	unit := int(enc.UnitSize())
	for i := 0; i+unit <= len(data); i += unit {
		var zero bool
		switch unit {
		case 1:
			zero = data[i] == 0
		case 2:
			zero = binary.LittleEndian.Uint16(data[i:]) == 0
		default:
			zero = binary.LittleEndian.Uint32(data[i:]) == 0
		}
		if zero {
			return data[:i]
		}
	}
	return data[:len(data)/unit*unit]
}
