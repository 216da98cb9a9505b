// Package errors provides structured error types for conversion kernels.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the path to the failing leaf, the destination type string,
// a representation of the offending host value, and the cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseInto, errors.KindTypeMismatch).
//		Path("user", "age").
//		Type("int32").
//		Value(`"abc"`).
//		Detail("cannot parse text as an integer").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Overflow(errors.PhaseInto, "int8", "300")
//	err := errors.Broadcast(errors.PhaseInto, "(int32, int32, int32)", "[1, 2]", 3, 2)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
