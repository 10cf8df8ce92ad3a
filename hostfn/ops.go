package hostfn

import (
	"github.com/holiman/uint256"

	"github.com/wippyai/contract-runtime/errors"
	"github.com/wippyai/contract-runtime/value"
)

// BinaryFunc is a host function of two values.
type BinaryFunc func(a, b value.Value) (value.Value, error)

// Binary names a BinaryFunc as exported to guests.
type Binary struct {
	Fn   BinaryFunc
	Name string
}

// Binaries lists the binary host functions every calling convention exports.
var Binaries = []Binary{
	{Name: "add", Fn: Add},
	{Name: "sub", Fn: Sub},
	{Name: "mul", Fn: Mul},
	{Name: "div", Fn: Div},
	{Name: "mod", Fn: Mod},
	{Name: "lt", Fn: Lt},
	{Name: "gt", Fn: Gt},
	{Name: "le", Fn: Le},
	{Name: "ge", Fn: Ge},
}

// Lookup finds a binary host function by name.
func Lookup(name string) (BinaryFunc, bool) {
	for _, b := range Binaries {
		if b.Name == name {
			return b.Fn, true
		}
	}
	return nil, false
}

// operands widens two integers of the same signedness to 256 bits.
func operands(op string, a, b value.Value) (x, y *uint256.Int, signed bool, err error) {
	if a == nil || b == nil {
		return nil, nil, false, errors.New(errors.PhaseRuntime, errors.KindArgumentMissing).
			Path(op).Detail("two arguments required").Build()
	}
	switch l := a.(type) {
	case value.Int:
		r, ok := b.(value.Int)
		if !ok {
			return nil, nil, false, mismatch(op, a, b)
		}
		return l.Word(), r.Word(), true, nil
	case value.UInt:
		r, ok := b.(value.UInt)
		if !ok {
			return nil, nil, false, mismatch(op, a, b)
		}
		return l.Word(), r.Word(), false, nil
	}
	return nil, nil, false, errors.New(errors.PhaseRuntime, errors.KindUnsupported).
		Path(op).ValueType(a.Tag().String()).Detail("only integral values are supported").Build()
}

func mismatch(op string, a, b value.Value) error {
	if b.Tag() != value.TagInt && b.Tag() != value.TagUInt {
		return errors.New(errors.PhaseRuntime, errors.KindUnsupported).
			Path(op).ValueType(b.Tag().String()).Detail("only integral values are supported").Build()
	}
	return errors.TypeMismatch(errors.PhaseRuntime, []string{op}, a.Tag().String(), b.Tag().String())
}

// narrow converts an exact 256-bit result back to the operand type.
func narrow(op string, z *uint256.Int, signed, negative bool) (value.Value, error) {
	if signed {
		if v, ok := value.IntFromWord(z); ok {
			return v, nil
		}
		if z.Sign() < 0 {
			return nil, errors.New(errors.PhaseRuntime, errors.KindUnderflow).Path(op).ValueType("int").Build()
		}
		return nil, errors.Overflow(errors.PhaseRuntime, []string{op}, z.Dec(), "int")
	}
	if negative {
		return nil, errors.New(errors.PhaseRuntime, errors.KindUnderflow).Path(op).ValueType("uint").Build()
	}
	if v, ok := value.UIntFromWord(z); ok {
		return v, nil
	}
	return nil, errors.Overflow(errors.PhaseRuntime, []string{op}, z.Dec(), "uint")
}

// Add returns a + b, failing on overflow.
func Add(a, b value.Value) (value.Value, error) {
	x, y, signed, err := operands("add", a, b)
	if err != nil {
		return nil, err
	}
	return narrow("add", new(uint256.Int).Add(x, y), signed, false)
}

// Sub returns a - b, failing on overflow or underflow.
func Sub(a, b value.Value) (value.Value, error) {
	x, y, signed, err := operands("sub", a, b)
	if err != nil {
		return nil, err
	}
	return narrow("sub", new(uint256.Int).Sub(x, y), signed, !signed && x.Lt(y))
}

// Mul returns a * b, failing on overflow.
func Mul(a, b value.Value) (value.Value, error) {
	x, y, signed, err := operands("mul", a, b)
	if err != nil {
		return nil, err
	}
	return narrow("mul", new(uint256.Int).Mul(x, y), signed, false)
}

// Div returns a / b truncated toward zero.
func Div(a, b value.Value) (value.Value, error) {
	x, y, signed, err := operands("div", a, b)
	if err != nil {
		return nil, err
	}
	if y.IsZero() {
		return nil, errors.New(errors.PhaseRuntime, errors.KindDivisionByZero).Path("div").Build()
	}
	if signed {
		return narrow("div", new(uint256.Int).SDiv(x, y), true, false)
	}
	return narrow("div", new(uint256.Int).Div(x, y), false, false)
}

// Mod returns the remainder of a / b, taking the sign of a.
func Mod(a, b value.Value) (value.Value, error) {
	x, y, signed, err := operands("mod", a, b)
	if err != nil {
		return nil, err
	}
	if y.IsZero() {
		return nil, errors.New(errors.PhaseRuntime, errors.KindDivisionByZero).Path("mod").Build()
	}
	if signed {
		return narrow("mod", new(uint256.Int).SMod(x, y), true, false)
	}
	return narrow("mod", new(uint256.Int).Mod(x, y), false, false)
}

func compare(op string, a, b value.Value, fn func(x, y *uint256.Int, signed bool) bool) (value.Value, error) {
	x, y, signed, err := operands(op, a, b)
	if err != nil {
		return nil, err
	}
	return value.Bool(fn(x, y, signed)), nil
}

// Lt reports a < b.
func Lt(a, b value.Value) (value.Value, error) {
	return compare("lt", a, b, func(x, y *uint256.Int, signed bool) bool {
		if signed {
			return x.Slt(y)
		}
		return x.Lt(y)
	})
}

// Gt reports a > b.
func Gt(a, b value.Value) (value.Value, error) {
	return compare("gt", a, b, func(x, y *uint256.Int, signed bool) bool {
		if signed {
			return x.Sgt(y)
		}
		return x.Gt(y)
	})
}

// Le reports a <= b.
func Le(a, b value.Value) (value.Value, error) {
	return compare("le", a, b, func(x, y *uint256.Int, signed bool) bool {
		if signed {
			return !x.Sgt(y)
		}
		return !x.Gt(y)
	})
}

// Ge reports a >= b.
func Ge(a, b value.Value) (value.Value, error) {
	return compare("ge", a, b, func(x, y *uint256.Int, signed bool) bool {
		if signed {
			return !x.Slt(y)
		}
		return !x.Lt(y)
	})
}
