package codec

import (
	"encoding/binary"
	"strconv"
	"unicode/utf8"

	"github.com/wippyai/contract-runtime/errors"
	"github.com/wippyai/contract-runtime/value"
)

// Encode serializes v into a new buffer.
func Encode(v value.Value) ([]byte, error) {
	buf := getBuf()
	defer putBuf(buf)

	out, err := AppendEncode(*buf, v)
	*buf = out
	if err != nil {
		return nil, err
	}
	res := make([]byte, len(out))
	copy(res, out)
	return res, nil
}

// EncodeFunc serializes v into a pooled scratch buffer and hands it to fn.
// The buffer is only valid for the duration of fn.
func EncodeFunc(v value.Value, fn func([]byte) error) error {
	buf := getBuf()
	defer putBuf(buf)

	out, err := AppendEncode(*buf, v)
	*buf = out
	if err != nil {
		return err
	}
	return fn(out)
}

// AppendEncode appends the serialization of v to dst.
//
// Nested values must have payloads of at most MaxNestedLen bytes. The
// outermost value may be longer; its length field then holds the payload
// length modulo 2^16 and the transport supplies the real extent.
func AppendEncode(dst []byte, v value.Value) ([]byte, error) {
	return encodeValue(dst, v, true)
}

func encodeValue(dst []byte, v value.Value, outer bool) ([]byte, error) {
	if v == nil {
		return dst, errors.InvalidInput(errors.PhaseEncode, "nil value")
	}
	start := len(dst)
	dst = append(dst, byte(v.Tag()), 0, 0)

	dst, err := encodePayload(dst, v)
	if err != nil {
		return dst, err
	}

	n := len(dst) - start - HeaderLen
	if !outer && n > MaxNestedLen {
		return dst, errors.New(errors.PhaseEncode, errors.KindOverflow).
			ValueType(v.Tag().String()).
			Detail("nested payload of %d bytes exceeds %d", n, MaxNestedLen).Build()
	}
	binary.LittleEndian.PutUint16(dst[start+1:start+3], uint16(n))
	return dst, nil
}

func encodePayload(dst []byte, v value.Value) ([]byte, error) {
	switch x := v.(type) {
	case value.UInt:
		b := x.Bytes()
		return append(dst, b[:]...), nil
	case value.Int:
		b := x.Bytes()
		return append(dst, b[:]...), nil
	case value.Bool:
		if x {
			return append(dst, 1), nil
		}
		return append(dst, 0), nil
	case value.Optional:
		if !x.IsSome() {
			return append(dst, 0), nil
		}
		dst, err := encodeValue(append(dst, 1), x.Some, false)
		if err != nil {
			return dst, within(err, "some")
		}
		return dst, nil
	case value.Response:
		flag, seg := byte(0), "err"
		if x.Committed {
			flag, seg = 1, "ok"
		}
		dst, err := encodeValue(append(dst, flag), x.Data, false)
		if err != nil {
			return dst, within(err, seg)
		}
		return dst, nil
	case value.ASCIIString:
		if i := value.ValidASCII([]byte(x)); i >= 0 {
			return dst, errors.InvalidASCII(errors.PhaseEncode, nil, x[i], i)
		}
		return append(dst, x...), nil
	case value.UTF8String:
		if !utf8.ValidString(string(x)) {
			return dst, errors.InvalidUTF8(errors.PhaseEncode, nil, []byte(x))
		}
		return append(dst, x...), nil
	case value.Buffer:
		return append(dst, x...), nil
	case value.List:
		if len(x) > 0xFFFF {
			return dst, errors.Overflow(errors.PhaseEncode, nil, len(x), "list element count")
		}
		dst = binary.LittleEndian.AppendUint16(dst, uint16(len(x)))
		var err error
		for i, el := range x {
			if dst, err = encodeValue(dst, el, false); err != nil {
				return dst, within(err, strconv.Itoa(i))
			}
		}
		return dst, nil
	case value.StandardPrincipal:
		return appendStandard(dst, x), nil
	case value.ContractPrincipal:
		return appendContract(dst, x)
	case value.CallableContract:
		dst, err := appendContract(dst, x.Contract)
		if err != nil {
			return dst, err
		}
		if x.Trait == nil {
			return append(dst, 0), nil
		}
		if dst, err = appendContract(append(dst, 1), x.Trait.Contract); err != nil {
			return dst, within(err, "trait")
		}
		if dst, err = appendName(dst, x.Trait.Name); err != nil {
			return dst, within(err, "trait")
		}
		return dst, nil
	case value.Tuple:
		fields := x.Fields()
		if len(fields) > 0xFFFF {
			return dst, errors.Overflow(errors.PhaseEncode, nil, len(fields), "tuple field count")
		}
		dst = binary.LittleEndian.AppendUint16(dst, uint16(len(fields)))
		var err error
		for _, f := range fields {
			if dst, err = appendName(dst, f.Name); err != nil {
				return dst, within(err, f.Name)
			}
			if dst, err = encodeValue(dst, f.Value, false); err != nil {
				return dst, within(err, f.Name)
			}
		}
		return dst, nil
	}
	return dst, errors.Unsupported(errors.PhaseEncode, "unknown value type "+v.Tag().String())
}

func appendStandard(dst []byte, p value.StandardPrincipal) []byte {
	dst = append(dst, p.Version)
	return append(dst, p.Hash[:]...)
}

func appendContract(dst []byte, c value.ContractPrincipal) ([]byte, error) {
	return appendName(appendStandard(dst, c.Issuer), c.Name)
}

func appendName(dst []byte, name string) ([]byte, error) {
	if !value.ValidContractName(name) {
		return dst, errors.InvalidData(errors.PhaseEncode, nil, "invalid name "+strconv.Quote(name))
	}
	dst = binary.LittleEndian.AppendUint16(dst, uint16(len(name)))
	return append(dst, name...), nil
}
