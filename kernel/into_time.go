package kernel

import (
	"strings"
	"time"

	"fortio.org/safecast"
	"github.com/wippyai/typeconv"
	"github.com/wippyai/typeconv/errors"
	"github.com/wippyai/typeconv/host"
	"github.com/wippyai/typeconv/internal/abi"
	"github.com/wippyai/typeconv/types"
)

func (p *Program) intoDateTime(n *node, mem typeconv.Storage, dst uint32, v host.Value) error {
	switch n.kind {
	case types.KindDate:
		return p.intoDate(n, mem, dst, v)
	case types.KindTime:
		return p.intoTime(n, mem, dst, v)
	}
	return p.intoTimestamp(n, mem, dst, v)
}

func (p *Program) intoDate(n *node, mem typeconv.Storage, dst uint32, v host.Value) error {
	h := p.opts.host
	var d host.Date
	switch h.Kind(v) {
	case host.KindDate:
		x, err := h.AsDate(v)
		if err != nil {
			return p.hostFailure(errors.PhaseInto, n, v, err)
		}
		d = x
	case host.KindDateTime:
		dt, err := h.AsDateTime(v)
		if err != nil {
			return p.hostFailure(errors.PhaseInto, n, v, err)
		}
		if d, err = p.dateOnly(n, v, dt); err != nil {
			return err
		}
	case host.KindText:
		s, err := p.text(n, v)
		if err != nil {
			return err
		}
		if strings.ContainsAny(s, "T ") {
			dt, ok := parseDateTime(s)
			if !ok {
				return p.invalid(n, v, "text is not an ISO 8601 date")
			}
			if d, err = p.dateOnly(n, v, dt); err != nil {
				return err
			}
		} else {
			var ok bool
			if d, ok = parseDate(s); !ok {
				return p.invalid(n, v, "text is not an ISO 8601 date")
			}
		}
	default:
		return p.mismatch(n, v, "expected a date")
	}

	days, err := p.days(n, v, d)
	if err != nil {
		return err
	}
	return memErr(errors.PhaseInto, n, mem.WriteU32(dst, uint32(days)))
}

func (p *Program) dateOnly(n *node, v host.Value, dt host.DateTime) (host.Date, error) {
	if dt.HasZone {
		return host.Date{}, errors.UnsupportedTimezone(errors.PhaseInto, n.typ.String(), p.opts.host.Repr(v))
	}
	if !dt.TimeOfDay.IsZero() {
		return host.Date{}, errors.NonZeroTime(errors.PhaseInto, n.typ.String(), p.opts.host.Repr(v))
	}
	return dt.Date, nil
}

// days returns the number of days since 1970-01-01, rejecting dates that are
// not on the calendar.
func (p *Program) days(n *node, v host.Value, d host.Date) (int32, error) {
	t := time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
	if y, m, day := t.Date(); y != d.Year || int(m) != d.Month || day != d.Day {
		return 0, p.invalid(n, v, "not a valid calendar date")
	}
	days, err := safecast.Conv[int32](t.Unix() / 86400)
	if err != nil {
		return 0, errors.Overflow(errors.PhaseInto, n.typ.String(), p.opts.host.Repr(v))
	}
	return days, nil
}

func (p *Program) ticksOfDay(n *node, v host.Value, t host.TimeOfDay) (int64, error) {
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 ||
		t.Second < 0 || t.Second > 59 || t.Nanosecond < 0 || t.Nanosecond > 999_999_999 {
		return 0, p.invalid(n, v, "not a valid time of day")
	}
	secs := int64(t.Hour)*3600 + int64(t.Minute)*60 + int64(t.Second)
	return secs*abi.TicksPerSecond + int64(t.Nanosecond)/abi.NanosPerTick, nil
}

func (p *Program) intoTime(n *node, mem typeconv.Storage, dst uint32, v host.Value) error {
	h := p.opts.host
	var t host.TimeOfDay
	switch h.Kind(v) {
	case host.KindTime:
		x, err := h.AsTime(v)
		if err != nil {
			return p.hostFailure(errors.PhaseInto, n, v, err)
		}
		t = x
	case host.KindText:
		s, err := p.text(n, v)
		if err != nil {
			return err
		}
		x, zoned, ok := parseTime(s)
		if !ok {
			return p.invalid(n, v, "text is not an ISO 8601 time")
		}
		if zoned {
			return errors.UnsupportedTimezone(errors.PhaseInto, n.typ.String(), h.Repr(v))
		}
		t = x
	default:
		return p.mismatch(n, v, "expected a time")
	}

	ticks, err := p.ticksOfDay(n, v, t)
	if err != nil {
		return err
	}
	return memErr(errors.PhaseInto, n, mem.WriteU64(dst, uint64(ticks)))
}

func (p *Program) intoTimestamp(n *node, mem typeconv.Storage, dst uint32, v host.Value) error {
	h := p.opts.host
	var dt host.DateTime
	switch h.Kind(v) {
	case host.KindDateTime:
		x, err := h.AsDateTime(v)
		if err != nil {
			return p.hostFailure(errors.PhaseInto, n, v, err)
		}
		dt = x
	case host.KindDate:
		d, err := h.AsDate(v)
		if err != nil {
			return p.hostFailure(errors.PhaseInto, n, v, err)
		}
		dt = host.DateTime{Date: d}
	case host.KindText:
		s, err := p.text(n, v)
		if err != nil {
			return err
		}
		x, ok := parseDateTime(s)
		if !ok {
			d, dateOK := parseDate(s)
			if !dateOK {
				return p.invalid(n, v, "text is not an ISO 8601 datetime")
			}
			x = host.DateTime{Date: d}
		}
		dt = x
	default:
		return p.mismatch(n, v, "expected a datetime")
	}
	if dt.HasZone {
		return errors.UnsupportedTimezone(errors.PhaseInto, n.typ.String(), h.Repr(v))
	}

	days, err := p.days(n, v, dt.Date)
	if err != nil {
		return err
	}
	tod, err := p.ticksOfDay(n, v, dt.TimeOfDay)
	if err != nil {
		return err
	}
	ticks, ok := abi.Ticks(int64(days), tod)
	if !ok {
		return errors.Overflow(errors.PhaseInto, n.typ.String(), h.Repr(v))
	}
	return memErr(errors.PhaseInto, n, mem.WriteU64(dst, uint64(ticks)))
}
