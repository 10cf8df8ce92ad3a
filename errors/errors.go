package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseEncode  Phase = "encode"  // Value to wire bytes
	PhaseDecode  Phase = "decode"  // wire bytes to Value
	PhaseScan    Phase = "scan"    // span scanning of sequences
	PhaseArena   Phase = "arena"   // slot table and frames
	PhaseRuntime Phase = "runtime" // host function execution
	PhaseLoad    Phase = "load"    // module loading
	PhaseHost    Phase = "host"    // host module registration
	PhaseParse   Phase = "parse"   // value literal parsing
)

// Kind categorizes the error
type Kind string

const (
	KindTypeMismatch    Kind = "type_mismatch"
	KindOutOfBounds     Kind = "out_of_bounds"
	KindInvalidData     Kind = "invalid_data"
	KindUnsupported     Kind = "unsupported"
	KindAllocation      Kind = "allocation"
	KindInvalidUTF8     Kind = "invalid_utf8"
	KindInvalidASCII    Kind = "invalid_ascii"
	KindOverflow        Kind = "overflow"
	KindUnderflow       Kind = "underflow"
	KindDivisionByZero  Kind = "division_by_zero"
	KindLengthMismatch  Kind = "length_mismatch"
	KindInvalidTag      Kind = "invalid_tag"
	KindTruncated       Kind = "truncated"
	KindTypeNotAllowed  Kind = "type_not_allowed"
	KindInvariant       Kind = "invariant"
	KindStaleHandle     Kind = "stale_handle"
	KindForeignHandle   Kind = "foreign_handle"
	KindArgumentMissing Kind = "argument_missing"
	KindNotFound        Kind = "not_found"
	KindInvalidInput    Kind = "invalid_input"
	KindRegistration    Kind = "registration"
	KindInstantiation   Kind = "instantiation"
	KindGuestCall       Kind = "guest_call"
)

// Error is the structured error type used throughout the runtime
type Error struct {
	Value     any
	Cause     error
	Phase     Phase
	Kind      Kind
	ValueType string
	Detail    string
	Path      []string
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
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.ValueType != "" {
		b.WriteString(": type ")
		b.WriteString(e.ValueType)
	}

	if e.Detail != "" {
		if e.ValueType != "" {
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

// Path sets the element path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// ValueType sets the contract type name
func (b *Builder) ValueType(t string) *Builder {
	b.err.ValueType = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
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
func TypeMismatch(phase Phase, path []string, want, got string) *Error {
	return &Error{
		Phase:     phase,
		Kind:      KindTypeMismatch,
		Path:      path,
		ValueType: got,
		Detail:    fmt.Sprintf("expected %s", want),
	}
}

// InvalidUTF8 creates an invalid UTF-8 error
func InvalidUTF8(phase Phase, path []string, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidUTF8,
		Path:   path,
		Detail: fmt.Sprintf("invalid UTF-8 sequence: %x", preview),
	}
}

// InvalidASCII creates an error for a byte outside the contract ASCII alphabet
func InvalidASCII(phase Phase, path []string, c byte, at int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidASCII,
		Path:   path,
		Detail: fmt.Sprintf("byte 0x%02x at %d is not printable ASCII", c, at),
		Value:  c,
	}
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(phase Phase, size, align uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("failed to allocate %d bytes (align %d)", size, align),
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

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, path []string, value any, targetType string) *Error {
	return &Error{
		Phase:     phase,
		Kind:      KindOverflow,
		Path:      path,
		ValueType: targetType,
		Detail:    fmt.Sprintf("value %v overflows %s", value, targetType),
		Value:     value,
	}
}

// Truncated creates an error for a buffer shorter than its contents claim
func Truncated(phase Phase, path []string, need, have int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTruncated,
		Path:   path,
		Detail: fmt.Sprintf("need %d bytes, have %d", need, have),
	}
}

// LengthMismatch creates an error for a length indicator that disagrees with the buffer
func LengthMismatch(phase Phase, path []string, indicated, actual int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindLengthMismatch,
		Path:   path,
		Detail: fmt.Sprintf("length indicator %d does not match buffer length %d", indicated, actual),
	}
}

// InvalidTag creates an error for an unknown type indicator
func InvalidTag(phase Phase, path []string, tag byte) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidTag,
		Path:   path,
		Detail: fmt.Sprintf("invalid type indicator %d", tag),
		Value:  tag,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// Invariant creates an arena invariant violation. These are raised with panic.
func Invariant(detail string, args ...any) *Error {
	return &Error{
		Phase:  PhaseArena,
		Kind:   KindInvariant,
		Detail: fmt.Sprintf(detail, args...),
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

// NotFound creates a not found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Registration creates a host registration error
func Registration(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseHost,
		Kind:   KindRegistration,
		Detail: detail,
		Cause:  cause,
	}
}

// Load creates a module load error
func Load(kind Kind, detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// ParseFailed creates a literal parse error
func ParseFailed(at int, detail string, args ...any) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindInvalidInput,
		Detail: fmt.Sprintf("at %d: %s", at, fmt.Sprintf(detail, args...)),
		Value:  at,
	}
}
