package kernel

import (
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/wippyai/typeconv/errors"
	"github.com/wippyai/typeconv/host"
)

// The coercions below are the generic fallback for scalar destinations given a
// host value of another kind. Sequences and mappings never coerce.

func (p *Program) text(n *node, v host.Value) (string, error) {
	b, err := p.opts.host.AsUTF8(v)
	if err != nil {
		return "", p.hostFailure(errors.PhaseInto, n, v, err)
	}
	return strings.TrimSpace(string(b)), nil
}

func (p *Program) coerceBool(n *node, v host.Value) (bool, error) {
	h := p.opts.host
	switch h.Kind(v) {
	case host.KindInt:
		x, err := h.AsInt64(v)
		if err == nil && (x == 0 || x == 1) {
			return x == 1, nil
		}
		return false, p.invalid(n, v, "only 0 and 1 convert to bool")
	case host.KindFloat:
		f, err := h.AsFloat64(v)
		if err != nil {
			return false, p.hostFailure(errors.PhaseInto, n, v, err)
		}
		if f == 0 || f == 1 {
			return f == 1, nil
		}
		return false, p.invalid(n, v, "only 0 and 1 convert to bool")
	case host.KindText:
		s, err := p.text(n, v)
		if err != nil {
			return false, err
		}
		b, err := strconv.ParseBool(s)
		if err != nil {
			return false, p.invalid(n, v, "text is not a boolean")
		}
		return b, nil
	}
	return false, p.mismatch(n, v, "expected a bool")
}

func (p *Program) coerceBigInt(n *node, v host.Value) (*big.Int, error) {
	h := p.opts.host
	switch h.Kind(v) {
	case host.KindBool:
		b, err := h.AsBool(v)
		if err != nil {
			return nil, p.hostFailure(errors.PhaseInto, n, v, err)
		}
		if b {
			return big.NewInt(1), nil
		}
		return new(big.Int), nil
	case host.KindFloat:
		f, err := h.AsFloat64(v)
		if err != nil {
			return nil, p.hostFailure(errors.PhaseInto, n, v, err)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return nil, p.invalid(n, v, "not an integral value")
		}
		i, _ := big.NewFloat(f).Int(nil)
		return i, nil
	case host.KindText:
		s, err := p.text(n, v)
		if err != nil {
			return nil, err
		}
		i, ok := new(big.Int).SetString(strings.ReplaceAll(s, "_", ""), 10)
		if !ok {
			return nil, p.invalid(n, v, "text is not a decimal integer")
		}
		return i, nil
	}
	return nil, p.mismatch(n, v, "expected an integer")
}

func (p *Program) coerceFloat(n *node, v host.Value) (float64, error) {
	h := p.opts.host
	switch h.Kind(v) {
	case host.KindBool:
		b, err := h.AsBool(v)
		if err != nil {
			return 0, p.hostFailure(errors.PhaseInto, n, v, err)
		}
		if b {
			return 1, nil
		}
		return 0, nil
	case host.KindInt:
		f, err := h.AsFloat64(v)
		if err != nil {
			return 0, p.hostFailure(errors.PhaseInto, n, v, err)
		}
		return f, nil
	case host.KindText:
		s, err := p.text(n, v)
		if err != nil {
			return 0, err
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			if errors.Is(err, strconv.ErrRange) {
				return 0, errors.Overflow(errors.PhaseInto, n.typ.String(), h.Repr(v))
			}
			return 0, p.invalid(n, v, "text is not a number")
		}
		return f, nil
	}
	return 0, p.mismatch(n, v, "expected a float")
}

func (p *Program) coerceComplex(n *node, v host.Value) (complex128, error) {
	h := p.opts.host
	switch h.Kind(v) {
	case host.KindBool, host.KindInt, host.KindFloat:
		f, err := p.coerceFloat(n, v)
		if err != nil {
			return 0, err
		}
		return complex(f, 0), nil
	case host.KindText:
		s, err := p.text(n, v)
		if err != nil {
			return 0, err
		}
		c, err := strconv.ParseComplex(s, 128)
		if err != nil {
			return 0, p.invalid(n, v, "text is not a complex number")
		}
		return c, nil
	}
	return 0, p.mismatch(n, v, "expected a complex number")
}

// ISO-8601 layouts accepted from text. Zoned layouts are tried first so that
// a zone suffix is reported rather than rejected as malformed.
const (
	layoutDate = "2006-01-02"
	layoutTime = "15:04:05.999999999"
)

var (
	zonedDateTimeLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999Z07:00"}
	dateTimeLayouts      = []string{"2006-01-02T15:04:05.999999999", "2006-01-02 15:04:05.999999999", "2006-01-02T15:04"}
	zonedTimeLayouts     = []string{"15:04:05.999999999Z07:00"}
	timeLayouts          = []string{layoutTime, "15:04"}
)

type parsed struct {
	t       time.Time
	hasZone bool
}

func parseLayouts(s string, zoned, naive []string) (parsed, bool) {
	for _, l := range zoned {
		if t, err := time.Parse(l, s); err == nil {
			return parsed{t: t, hasZone: true}, true
		}
	}
	for _, l := range naive {
		if t, err := time.Parse(l, s); err == nil {
			return parsed{t: t}, true
		}
	}
	return parsed{}, false
}

func parseDate(s string) (host.Date, bool) {
	t, err := time.Parse(layoutDate, s)
	if err != nil {
		return host.Date{}, false
	}
	return dateOf(t), true
}

func parseTime(s string) (host.TimeOfDay, bool, bool) {
	pt, ok := parseLayouts(s, zonedTimeLayouts, timeLayouts)
	if !ok {
		return host.TimeOfDay{}, false, false
	}
	return timeOf(pt.t), pt.hasZone, true
}

func parseDateTime(s string) (host.DateTime, bool) {
	pt, ok := parseLayouts(s, zonedDateTimeLayouts, dateTimeLayouts)
	if !ok {
		return host.DateTime{}, false
	}
	return host.DateTime{Date: dateOf(pt.t), TimeOfDay: timeOf(pt.t), HasZone: pt.hasZone}, true
}

func dateOf(t time.Time) host.Date {
	y, m, d := t.Date()
	return host.Date{Year: y, Month: int(m), Day: d}
}

func timeOf(t time.Time) host.TimeOfDay {
	return host.TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second(), Nanosecond: t.Nanosecond()}
}
