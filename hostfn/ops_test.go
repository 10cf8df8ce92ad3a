package hostfn

import (
	"errors"
	"testing"

	rterrors "github.com/wippyai/contract-runtime/errors"
	"github.com/wippyai/contract-runtime/value"
)

func kindOf(err error) rterrors.Kind {
	var e *rterrors.Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		name string
		fn   BinaryFunc
		a, b value.Value
		want value.Value
		kind rterrors.Kind
	}{
		{"add ints", Add, value.NewInt(2), value.NewInt(3), value.NewInt(5), ""},
		{"add negative", Add, value.NewInt(-10), value.NewInt(3), value.NewInt(-7), ""},
		{"add overflow", Add, value.MaxInt, value.NewInt(1), nil, rterrors.KindOverflow},
		{"add underflow", Add, value.MinInt, value.NewInt(-1), nil, rterrors.KindUnderflow},
		{"add uint overflow", Add, value.MaxUInt, value.NewUInt(1), nil, rterrors.KindOverflow},
		{"add uint carry", Add, value.UInt{Lo: ^uint64(0)}, value.NewUInt(1), value.UInt{Hi: 1}, ""},
		{"sub uint underflow", Sub, value.NewUInt(1), value.NewUInt(2), nil, rterrors.KindUnderflow},
		{"sub int", Sub, value.NewInt(1), value.NewInt(2), value.NewInt(-1), ""},
		{"sub int overflow", Sub, value.MaxInt, value.NewInt(-1), nil, rterrors.KindOverflow},
		{"mul", Mul, value.NewInt(-4), value.NewInt(5), value.NewInt(-20), ""},
		{"mul uint max overflow", Mul, value.MaxUInt, value.MaxUInt, nil, rterrors.KindOverflow},
		{"mul int overflow", Mul, value.MaxInt, value.NewInt(2), nil, rterrors.KindOverflow},
		{"mul int underflow", Mul, value.MinInt, value.NewInt(2), nil, rterrors.KindUnderflow},
		{"div truncates", Div, value.NewInt(-7), value.NewInt(2), value.NewInt(-3), ""},
		{"div uint", Div, value.NewUInt(7), value.NewUInt(2), value.NewUInt(3), ""},
		{"div by zero", Div, value.NewInt(1), value.NewInt(0), nil, rterrors.KindDivisionByZero},
		{"div min by minus one", Div, value.MinInt, value.NewInt(-1), nil, rterrors.KindOverflow},
		{"mod sign of dividend", Mod, value.NewInt(-7), value.NewInt(2), value.NewInt(-1), ""},
		{"mod by zero", Mod, value.NewUInt(7), value.NewUInt(0), nil, rterrors.KindDivisionByZero},
		{"lt signed", Lt, value.NewInt(-1), value.NewInt(0), value.Bool(true), ""},
		{"lt unsigned", Lt, value.NewUInt(1), value.NewUInt(0), value.Bool(false), ""},
		{"gt", Gt, value.MaxInt, value.MinInt, value.Bool(true), ""},
		{"le equal", Le, value.NewInt(3), value.NewInt(3), value.Bool(true), ""},
		{"ge", Ge, value.NewUInt(2), value.NewUInt(3), value.Bool(false), ""},
		{"mixed signedness", Add, value.NewInt(1), value.NewUInt(1), nil, rterrors.KindTypeMismatch},
		{"non integral", Add, value.Bool(true), value.Bool(true), nil, rterrors.KindUnsupported},
		{"non integral right", Add, value.NewInt(1), value.ASCIIString("x"), nil, rterrors.KindUnsupported},
		{"missing argument", Add, value.NewInt(1), nil, nil, rterrors.KindArgumentMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fn(tt.a, tt.b)
			if tt.kind != "" {
				if kindOf(err) != tt.kind {
					t.Fatalf("error = %v, want kind %s", err, tt.kind)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !value.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorCodes(t *testing.T) {
	_, err := Add(value.MaxInt, value.NewInt(1))
	if rterrors.CodeOf(err) != rterrors.CodeArithmeticOverflow {
		t.Errorf("overflow code = %v", rterrors.CodeOf(err))
	}
	_, err = Add(value.NewInt(1), value.NewUInt(1))
	if rterrors.CodeOf(err) != rterrors.CodeArgumentTypeMismatch {
		t.Errorf("mismatch code = %v", rterrors.CodeOf(err))
	}
	_, err = Add(value.Bool(true), value.NewUInt(1))
	if rterrors.CodeOf(err) != rterrors.CodeFunctionOnlySupportsIntegralValues {
		t.Errorf("non integral code = %v", rterrors.CodeOf(err))
	}
}

func TestLookup(t *testing.T) {
	for _, b := range Binaries {
		fn, ok := Lookup(b.Name)
		if !ok || fn == nil {
			t.Errorf("Lookup(%s) failed", b.Name)
		}
	}
	if _, ok := Lookup("pow"); ok {
		t.Error("Lookup(pow) should fail")
	}
}
