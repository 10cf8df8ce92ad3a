package runtime

import (
	"fmt"
	"math/big"

	"github.com/wippyai/contract-runtime/errors"
	"github.com/wippyai/contract-runtime/value"
)

// ToValue converts a Go value to a contract value.
//
//	value.Value            itself
//	bool                   Bool
//	int, int8 ... int64    Int
//	uint, uint8 ... uint64 UInt
//	*big.Int               Int, or overflow
//	string                 ASCIIString if printable ASCII, else UTF8String
//	[]byte                 Buffer
//	[]any                  List of converted elements
//	map[string]any         Tuple of converted fields
//	nil                    Optional none
func ToValue(v any) (value.Value, error) {
	switch x := v.(type) {
	case nil:
		return value.None, nil
	case value.Value:
		return x, nil
	case bool:
		return value.Bool(x), nil
	case int:
		return value.NewInt(int64(x)), nil
	case int8:
		return value.NewInt(int64(x)), nil
	case int16:
		return value.NewInt(int64(x)), nil
	case int32:
		return value.NewInt(int64(x)), nil
	case int64:
		return value.NewInt(x), nil
	case uint:
		return value.NewUInt(uint64(x)), nil
	case uint8:
		return value.NewUInt(uint64(x)), nil
	case uint16:
		return value.NewUInt(uint64(x)), nil
	case uint32:
		return value.NewUInt(uint64(x)), nil
	case uint64:
		return value.NewUInt(x), nil
	case *big.Int:
		if i, ok := value.ParseIntDecimal(x.String()); ok {
			return i, nil
		}
		return nil, errors.Overflow(errors.PhaseRuntime, nil, x.String(), "int")
	case string:
		if s, ok := value.NewASCII(x); ok {
			return s, nil
		}
		if s, ok := value.NewUTF8(x); ok {
			return s, nil
		}
		return nil, errors.InvalidUTF8(errors.PhaseRuntime, nil, []byte(x))
	case []byte:
		return value.Buffer(append([]byte(nil), x...)), nil
	case []any:
		l := make(value.List, len(x))
		for i, el := range x {
			ev, err := ToValue(el)
			if err != nil {
				return nil, err
			}
			l[i] = ev
		}
		return l, nil
	case map[string]any:
		fields := make([]value.TupleField, 0, len(x))
		for name, el := range x {
			ev, err := ToValue(el)
			if err != nil {
				return nil, err
			}
			fields = append(fields, value.TupleField{Name: name, Value: ev})
		}
		t, err := value.NewTuple(fields...)
		if err != nil {
			return nil, err
		}
		return t, nil
	}
	return nil, errors.Unsupported(errors.PhaseRuntime, fmt.Sprintf("no value conversion for %T", v))
}
