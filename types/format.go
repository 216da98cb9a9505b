package types

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// String returns the canonical string form of t, e.g. "{a: int32, b: var * string}".
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	var b strings.Builder
	t.format(&b)
	return b.String()
}

func (t *Type) format(b *strings.Builder) {
	switch t.kind {
	case KindString:
		b.WriteString("string")
		if t.enc != UTF8 {
			fmt.Fprintf(b, "['%s']", t.enc)
		}
	case KindFixedString:
		fmt.Fprintf(b, "fixed_string[%d", t.size)
		if t.enc != UTF8 {
			fmt.Fprintf(b, ", '%s'", t.enc)
		}
		b.WriteByte(']')
	case KindFixedBytes:
		fmt.Fprintf(b, "fixed_bytes[%d", t.size)
		if t.align != 1 {
			fmt.Fprintf(b, ", align=%d", t.align)
		}
		b.WriteByte(']')
	case KindOption:
		b.WriteByte('?')
		t.elem.format(b)
	case KindTuple:
		b.WriteByte('(')
		for i, f := range t.fields {
			if i > 0 {
				b.WriteString(", ")
			}
			f.Type.format(b)
		}
		b.WriteByte(')')
	case KindStruct:
		b.WriteByte('{')
		for i, f := range t.fields {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(fieldName(f.Name))
			b.WriteString(": ")
			f.Type.format(b)
		}
		b.WriteByte('}')
	case KindFixedDim:
		b.WriteString(strconv.Itoa(t.dimSize))
		b.WriteString(" * ")
		t.elem.format(b)
	case KindVarDim:
		b.WriteString("var * ")
		t.elem.format(b)
	case KindCategorical:
		b.WriteString("categorical[")
		t.elem.format(b)
		b.WriteString(", [")
		for i, c := range t.categories {
			if i > 0 {
				b.WriteString(", ")
			}
			if s, ok := c.(string); ok {
				b.WriteString(strconv.Quote(s))
			} else {
				fmt.Fprint(b, c)
			}
		}
		b.WriteString("]]")
	default:
		b.WriteString(t.kind.String())
	}
}

func fieldName(name string) string {
	if name == "" {
		return strconv.Quote(name)
	}
	for i, r := range name {
		if r != '_' && !unicode.IsLetter(r) && (i == 0 || !unicode.IsDigit(r)) {
			return strconv.Quote(name)
		}
	}
	return name
}
