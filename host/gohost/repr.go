package gohost

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/wippyai/typeconv/host"
	"github.com/wippyai/typeconv/types"
)

const maxRepr = 120

// Repr renders v for error messages, truncated to a readable length.
func (h *Host) Repr(v host.Value) string {
	var b strings.Builder
	h.repr(&b, v)
	s := b.String()
	if len(s) > maxRepr {
		return s[:maxRepr-3] + "..."
	}
	return s
}

func (h *Host) repr(b *strings.Builder, v host.Value) {
	if b.Len() > maxRepr {
		return
	}
	switch x := v.(type) {
	case nil:
		b.WriteString("none")
	case bool:
		b.WriteString(strconv.FormatBool(x))
	case string:
		b.WriteString(strconv.Quote(x))
	case []byte:
		b.WriteByte('b')
		b.WriteString(strconv.Quote(string(x)))
	case float32:
		b.WriteString(strconv.FormatFloat(float64(x), 'g', -1, 32))
	case float64:
		b.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
	case *big.Int:
		b.WriteString(x.String())
	case host.Date:
		b.WriteString(FormatDate(x))
	case host.TimeOfDay:
		b.WriteString(FormatTime(x))
	case host.DateTime:
		b.WriteString(FormatDate(x.Date))
		b.WriteByte('T')
		b.WriteString(FormatTime(x.TimeOfDay))
	case time.Time:
		b.WriteString(x.Format(time.RFC3339Nano))
	case *types.Type:
		fmt.Fprintf(b, "type(%s)", x)
	case host.Typed:
		fmt.Fprintf(b, "typed(%s)", x.Type)
	case Tuple:
		b.WriteByte('(')
		for i, item := range x {
			if i > 0 {
				b.WriteString(", ")
			}
			h.repr(b, item)
		}
		b.WriteByte(')')
	default:
		switch h.Kind(v) {
		case host.KindSequence:
			items, _ := h.Items(v)
			b.WriteByte('[')
			for i, item := range items {
				if i > 0 {
					b.WriteString(", ")
				}
				h.repr(b, item)
			}
			b.WriteByte(']')
		case host.KindMapping:
			items, _ := h.MappingItems(v)
			b.WriteByte('{')
			for i, item := range items {
				if i > 0 {
					b.WriteString(", ")
				}
				h.repr(b, item.Key)
				b.WriteString(": ")
				h.repr(b, item.Value)
			}
			b.WriteByte('}')
		default:
			fmt.Fprintf(b, "%v", v)
		}
	}
}

// FormatDate renders d as YYYY-MM-DD.
func FormatDate(d host.Date) string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// FormatTime renders t as hh:mm:ss with a fractional part when non-zero.
func FormatTime(t host.TimeOfDay) string {
	s := fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
	if t.Nanosecond != 0 {
		frac := strings.TrimRight(fmt.Sprintf("%09d", t.Nanosecond), "0")
		s += "." + frac
	}
	return s
}
