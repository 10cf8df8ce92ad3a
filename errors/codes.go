package errors

import stderrors "errors"

// Code is the integer error code returned to guests by host functions that
// cannot trap, such as the memory-serialized calling convention.
type Code int32

const (
	CodeOK Code = iota
	CodeArgumentTypeMismatch
	CodeArithmeticOverflow
	CodeArithmeticUnderflow
	CodeDivisionByZero
	CodeFunctionArgumentRequired
	CodeFunctionOnlySupportsIntegralValues
	CodeFailedToDeserializeValueFromMemory
	CodeFailedToDiscernSerializedType
	CodeFailedToWriteResultToMemory
	CodeInvalidPointer
	CodeNotASequence
	CodeGuestCallFailed
	CodeInternal
)

var codeNames = [...]string{
	CodeOK:                                 "ok",
	CodeArgumentTypeMismatch:               "argument_type_mismatch",
	CodeArithmeticOverflow:                 "arithmetic_overflow",
	CodeArithmeticUnderflow:                "arithmetic_underflow",
	CodeDivisionByZero:                     "division_by_zero",
	CodeFunctionArgumentRequired:           "function_argument_required",
	CodeFunctionOnlySupportsIntegralValues: "function_only_supports_integral_values",
	CodeFailedToDeserializeValueFromMemory: "failed_to_deserialize_value_from_memory",
	CodeFailedToDiscernSerializedType:      "failed_to_discern_serialized_type",
	CodeFailedToWriteResultToMemory:        "failed_to_write_result_to_memory",
	CodeInvalidPointer:                     "invalid_pointer",
	CodeNotASequence:                       "not_a_sequence",
	CodeGuestCallFailed:                    "guest_call_failed",
	CodeInternal:                           "internal",
}

func (c Code) String() string {
	if c >= 0 && int(c) < len(codeNames) {
		return codeNames[c]
	}
	return "unknown"
}

// CodeOf maps an error to the code a guest receives for it.
// A nil error maps to CodeOK. Errors that are not *Error map to CodeInternal.
func CodeOf(err error) Code {
	if err == nil {
		return CodeOK
	}
	var e *Error
	if !stderrors.As(err, &e) {
		return CodeInternal
	}
	switch e.Phase {
	case PhaseDecode:
		if e.Kind == KindInvalidTag {
			return CodeFailedToDiscernSerializedType
		}
		return CodeFailedToDeserializeValueFromMemory
	case PhaseScan:
		if e.Kind == KindTypeNotAllowed {
			return CodeNotASequence
		}
		return CodeFailedToDeserializeValueFromMemory
	case PhaseEncode:
		return CodeFailedToWriteResultToMemory
	case PhaseArena:
		return CodeInvalidPointer
	}
	switch e.Kind {
	case KindTypeMismatch:
		return CodeArgumentTypeMismatch
	case KindOverflow:
		return CodeArithmeticOverflow
	case KindUnderflow:
		return CodeArithmeticUnderflow
	case KindDivisionByZero:
		return CodeDivisionByZero
	case KindArgumentMissing:
		return CodeFunctionArgumentRequired
	case KindUnsupported:
		return CodeFunctionOnlySupportsIntegralValues
	case KindTypeNotAllowed:
		return CodeNotASequence
	case KindAllocation:
		return CodeFailedToWriteResultToMemory
	case KindGuestCall:
		return CodeGuestCallFailed
	}
	return CodeInternal
}

// FromCode builds the runtime error a caller sees when a guest-facing
// function reported code c.
func FromCode(c Code) *Error {
	if c == CodeOK {
		return nil
	}
	var kind Kind
	switch c {
	case CodeArgumentTypeMismatch:
		kind = KindTypeMismatch
	case CodeArithmeticOverflow:
		kind = KindOverflow
	case CodeArithmeticUnderflow:
		kind = KindUnderflow
	case CodeDivisionByZero:
		kind = KindDivisionByZero
	case CodeFunctionArgumentRequired:
		kind = KindArgumentMissing
	case CodeFunctionOnlySupportsIntegralValues:
		kind = KindUnsupported
	case CodeNotASequence:
		kind = KindTypeNotAllowed
	case CodeGuestCallFailed:
		kind = KindGuestCall
	case CodeFailedToWriteResultToMemory:
		kind = KindAllocation
	default:
		kind = KindInvalidData
	}
	return &Error{
		Phase:  PhaseRuntime,
		Kind:   kind,
		Detail: "guest reported " + c.String(),
		Value:  c,
	}
}
