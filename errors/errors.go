package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseBuild Phase = "build" // kernel instantiation
	PhaseInto  Phase = "into"  // host value to layout
	PhaseFrom  Phase = "from"  // layout to host value
	PhaseCopy  Phase = "copy"  // layout to layout
	PhaseHost  Phase = "host"  // host adapter calls outside a conversion
	PhaseLoad  Phase = "load"  // descriptor loading (WIT, CLI inputs)
)

// Kind categorizes the error
type Kind string

const (
	KindTypeMismatch        Kind = "type_mismatch"
	KindOverflow            Kind = "overflow"
	KindBroadcast           Kind = "broadcast"
	KindFieldMissing        Kind = "field_missing"
	KindFieldUnknown        Kind = "field_unknown"
	KindUnsupportedTimezone Kind = "unsupported_timezone"
	KindNonZeroTime         Kind = "nonzero_time"
	KindInvalidState        Kind = "invalid_state"
	KindHostFailure         Kind = "host_failure"
	KindInvalidArgument     Kind = "invalid_argument"
	KindEncoding            Kind = "encoding"
	KindOutOfBounds         Kind = "out_of_bounds"
	KindAllocation          Kind = "allocation"
	KindUnsupported         Kind = "unsupported"
	KindClosed              Kind = "closed"
	KindInvalidData         Kind = "invalid_data"
)

// Error is the structured error type used throughout the module.
// Type is the destination type string and Value the host representation of the
// offending value.
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Type   string
	Value  string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(JoinPath(e.Path))
	}

	if e.Type != "" || e.Value != "" {
		b.WriteString(": ")
		if e.Type != "" {
			b.WriteString("type ")
			b.WriteString(e.Type)
		}
		if e.Value != "" {
			if e.Type != "" {
				b.WriteString(", ")
			}
			b.WriteString("value ")
			b.WriteString(e.Value)
		}
	}

	if e.Detail != "" {
		if e.Type != "" || e.Value != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Is is errors.Is from the standard library, so callers need a single import.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As is errors.As from the standard library.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// JoinPath renders a path, attaching index segments ("[3]") without a dot.
func JoinPath(path []string) string {
	var b strings.Builder
	for i, seg := range path {
		if i > 0 && !strings.HasPrefix(seg, "[") {
			b.WriteByte('.')
		}
		b.WriteString(seg)
	}
	return b.String()
}

// Prepend adds seg in front of the path of a structured error.
// Other errors are returned unchanged.
func Prepend(err error, seg string) error {
	if e, ok := err.(*Error); ok {
		e.Path = append([]string{seg}, e.Path...)
	}
	return err
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Type sets the destination type string
func (b *Builder) Type(t string) *Builder {
	b.err.Type = t
	return b
}

// Value sets the representation of the offending value
func (b *Builder) Value(repr string) *Builder {
	b.err.Value = repr
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, typ, value, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Type:   typ,
		Value:  value,
		Detail: detail,
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, typ, value string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Type:   typ,
		Value:  value,
		Detail: fmt.Sprintf("value %s overflows %s", value, typ),
	}
}

// Broadcast creates an arity mismatch error
func Broadcast(phase Phase, typ, value string, want, got int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindBroadcast,
		Type:   typ,
		Value:  value,
		Detail: fmt.Sprintf("cannot broadcast input of size %d to destination of size %d", got, want),
	}
}

// FieldMissing creates a missing field error
func FieldMissing(phase Phase, typ, value, field string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindFieldMissing,
		Type:   typ,
		Value:  value,
		Detail: fmt.Sprintf("mapping does not contain the field %q required by %s", field, typ),
	}
}

// FieldUnknown creates an unknown field error. keys lists every unknown key found.
func FieldUnknown(phase Phase, typ, value string, keys ...string) *Error {
	quoted := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = fmt.Sprintf("%q", k)
	}
	detail := fmt.Sprintf("mapping has key %s, but no such field is in %s", strings.Join(quoted, ", "), typ)
	if len(keys) > 1 {
		detail = fmt.Sprintf("mapping has keys %s, but no such fields are in %s", strings.Join(quoted, ", "), typ)
	}
	return &Error{
		Phase:  phase,
		Kind:   KindFieldUnknown,
		Type:   typ,
		Value:  value,
		Detail: detail,
	}
}

// UnsupportedTimezone creates an error for date/time values carrying a zone
func UnsupportedTimezone(phase Phase, typ, value string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupportedTimezone,
		Type:   typ,
		Value:  value,
		Detail: "converting values with timezone information is not yet supported",
	}
}

// NonZeroTime creates an error for a date destination given a nonzero time of day
func NonZeroTime(phase Phase, typ, value string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNonZeroTime,
		Type:   typ,
		Value:  value,
		Detail: fmt.Sprintf("cannot convert a datetime with non-zero time to %s", typ),
	}
}

// InvalidState creates a caller contract violation error.
// value is empty when no host value is involved.
func InvalidState(phase Phase, typ, value, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidState,
		Type:   typ,
		Value:  value,
		Detail: detail,
	}
}

// HostFailure wraps an error raised by the host adapter
func HostFailure(phase Phase, typ, value string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindHostFailure,
		Type:   typ,
		Value:  value,
		Detail: "host adapter failed",
		Cause:  cause,
	}
}

// InvalidArgument creates an error for a value the destination cannot accept
func InvalidArgument(phase Phase, typ, value, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidArgument,
		Type:   typ,
		Value:  value,
		Detail: detail,
	}
}

// Encoding creates a text encoding error
func Encoding(phase Phase, typ, value string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindEncoding,
		Type:   typ,
		Value:  value,
		Detail: "text cannot be represented in the storage encoding",
		Cause:  cause,
	}
}

// OutOfBounds creates a memory access error
func OutOfBounds(phase Phase, typ string, cause error) *Error {
	return &Error{
		Phase: phase,
		Kind:  KindOutOfBounds,
		Type:  typ,
		Cause: cause,
	}
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(phase Phase, size, align uint32, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("failed to allocate %d bytes (align %d)", size, align),
		Cause:  cause,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// Closed creates an error for use of a closed program
func Closed(phase Phase, typ string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindClosed,
		Type:   typ,
		Detail: "program is closed",
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Load creates a descriptor loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}
