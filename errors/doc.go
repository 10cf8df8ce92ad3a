// Package errors provides structured error types for the contract runtime.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries an element path, the contract type name involved, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindTruncated).
//		Path("list", "3").
//		ValueType("int").
//		Detail("need %d bytes, have %d", 19, 7).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.LengthMismatch(errors.PhaseDecode, nil, 16, 12)
//	err := errors.OutOfBounds(errors.PhaseArena, nil, 10, 5)
//
// Host functions that return to a guest without trapping report errors as a
// Code; CodeOf performs that mapping.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
