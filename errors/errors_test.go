package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:     PhaseDecode,
				Kind:      KindTruncated,
				Path:      []string{"list", "3", "some"},
				ValueType: "int",
				Detail:    "need 19 bytes",
			},
			contains: []string{"[decode]", "truncated", "list.3.some", "type int", "need 19 bytes"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseArena,
				Kind:  KindOutOfBounds,
			},
			contains: []string{"[arena]", "out_of_bounds"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseRuntime,
				Kind:   KindAllocation,
				Detail: "memory full",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[runtime]", "allocation", "memory full", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !containsSubstring(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseEncode,
		Kind:  KindInvalidData,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseDecode,
		Kind:  KindLengthMismatch,
		Path:  []string{"foo"},
	}

	if !err.Is(&Error{Phase: PhaseDecode, Kind: KindLengthMismatch}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseScan, Kind: KindLengthMismatch}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseDecode, Kind: KindOutOfBounds}) {
		t.Error("Is should not match different kind")
	}

	wrapped := fmt.Errorf("call add: %w", err)
	if !errors.Is(wrapped, &Error{Phase: PhaseDecode, Kind: KindLengthMismatch}) {
		t.Error("errors.Is should match through wrapping")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseEncode, KindOverflow).
		Path("tuple", "name").
		ValueType("utf8").
		Value(70000).
		Cause(cause).
		Detail("payload %d exceeds %d", 70000, 65535).
		Build()

	if err.Phase != PhaseEncode {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseEncode)
	}
	if err.Kind != KindOverflow {
		t.Errorf("Kind = %v, want %v", err.Kind, KindOverflow)
	}
	if len(err.Path) != 2 || err.Path[0] != "tuple" || err.Path[1] != "name" {
		t.Errorf("Path = %v, want [tuple name]", err.Path)
	}
	if err.ValueType != "utf8" {
		t.Errorf("ValueType = %v, want 'utf8'", err.ValueType)
	}
	if err.Value != 70000 {
		t.Errorf("Value = %v, want 70000", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "payload 70000 exceeds 65535" {
		t.Errorf("Detail = %v", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("TypeMismatch", func(t *testing.T) {
		err := TypeMismatch(PhaseRuntime, []string{"arg0"}, "int", "bool")
		if err.Kind != KindTypeMismatch {
			t.Errorf("Kind = %v, want %v", err.Kind, KindTypeMismatch)
		}
		if err.ValueType != "bool" || !containsSubstring(err.Detail, "int") {
			t.Errorf("ValueType=%v Detail=%v", err.ValueType, err.Detail)
		}
	})

	t.Run("InvalidUTF8", func(t *testing.T) {
		err := InvalidUTF8(PhaseDecode, []string{"str"}, []byte{0xff, 0xfe})
		if err.Kind != KindInvalidUTF8 {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidUTF8)
		}
		if !containsSubstring(err.Detail, "fffe") {
			t.Errorf("Detail = %v, should contain bytes", err.Detail)
		}
	})

	t.Run("InvalidASCII", func(t *testing.T) {
		err := InvalidASCII(PhaseDecode, nil, 0x07, 2)
		if err.Kind != KindInvalidASCII {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidASCII)
		}
	})

	t.Run("AllocationFailed", func(t *testing.T) {
		err := AllocationFailed(PhaseRuntime, 1024, 8)
		if err.Kind != KindAllocation {
			t.Errorf("Kind = %v, want %v", err.Kind, KindAllocation)
		}
		if !containsSubstring(err.Detail, "1024") {
			t.Errorf("Detail = %v, should contain size", err.Detail)
		}
	})

	t.Run("OutOfBounds", func(t *testing.T) {
		err := OutOfBounds(PhaseArena, nil, 10, 5)
		if err.Kind != KindOutOfBounds {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOutOfBounds)
		}
		if err.Value != 10 {
			t.Errorf("Value = %v, want 10", err.Value)
		}
	})

	t.Run("LengthMismatch", func(t *testing.T) {
		err := LengthMismatch(PhaseDecode, nil, 16, 12)
		if err.Kind != KindLengthMismatch {
			t.Errorf("Kind = %v, want %v", err.Kind, KindLengthMismatch)
		}
	})

	t.Run("InvalidTag", func(t *testing.T) {
		err := InvalidTag(PhaseDecode, nil, 99)
		if err.Kind != KindInvalidTag || err.Value != byte(99) {
			t.Errorf("Kind=%v Value=%v", err.Kind, err.Value)
		}
	})

	t.Run("Invariant", func(t *testing.T) {
		err := Invariant("drop frame %d, top is %d", 1, 2)
		if err.Phase != PhaseArena || err.Kind != KindInvariant {
			t.Errorf("Phase=%v Kind=%v", err.Phase, err.Kind)
		}
		if err.Detail != "drop frame 1, top is 2" {
			t.Errorf("Detail = %v", err.Detail)
		}
	})

	t.Run("ParseFailed", func(t *testing.T) {
		err := ParseFailed(4, "unexpected %q", ")")
		if err.Phase != PhaseParse || !containsSubstring(err.Error(), "at 4") {
			t.Errorf("unexpected %v", err)
		}
	})
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"nil", nil, CodeOK},
		{"plain error", errors.New("boom"), CodeInternal},
		{"overflow", &Error{Phase: PhaseRuntime, Kind: KindOverflow}, CodeArithmeticOverflow},
		{"underflow", &Error{Phase: PhaseRuntime, Kind: KindUnderflow}, CodeArithmeticUnderflow},
		{"div zero", &Error{Phase: PhaseRuntime, Kind: KindDivisionByZero}, CodeDivisionByZero},
		{"mismatch", &Error{Phase: PhaseRuntime, Kind: KindTypeMismatch}, CodeArgumentTypeMismatch},
		{"missing arg", &Error{Phase: PhaseRuntime, Kind: KindArgumentMissing}, CodeFunctionArgumentRequired},
		{"bad tag", &Error{Phase: PhaseDecode, Kind: KindInvalidTag}, CodeFailedToDiscernSerializedType},
		{"truncated", &Error{Phase: PhaseDecode, Kind: KindTruncated}, CodeFailedToDeserializeValueFromMemory},
		{"not a sequence", &Error{Phase: PhaseScan, Kind: KindTypeNotAllowed}, CodeNotASequence},
		{"encode", &Error{Phase: PhaseEncode, Kind: KindOverflow}, CodeFailedToWriteResultToMemory},
		{"stale", &Error{Phase: PhaseArena, Kind: KindStaleHandle}, CodeInvalidPointer},
		{"wrapped", fmt.Errorf("ctx: %w", &Error{Phase: PhaseRuntime, Kind: KindOverflow}), CodeArithmeticOverflow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFromCode(t *testing.T) {
	if FromCode(CodeOK) != nil {
		t.Fatal("CodeOK should map to nil")
	}
	for c := CodeArgumentTypeMismatch; c <= CodeInternal; c++ {
		err := FromCode(c)
		if err == nil {
			t.Fatalf("FromCode(%v) = nil", c)
		}
		if err.Phase != PhaseRuntime {
			t.Errorf("FromCode(%v).Phase = %v", c, err.Phase)
		}
	}
	if got := CodeOf(FromCode(CodeArithmeticOverflow)); got != CodeArithmeticOverflow {
		t.Errorf("round trip = %v", got)
	}
	if Code(99).String() != "unknown" {
		t.Error("out of range code should print unknown")
	}
}

func containsSubstring(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
