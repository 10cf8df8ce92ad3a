package codec

import (
	"encoding/binary"
	"unicode/utf8"

	"github.com/wippyai/contract-runtime/errors"
	"github.com/wippyai/contract-runtime/value"
)

// Decode deserializes a complete value. The buffer must hold exactly one
// encoding; Decode never panics on malformed input.
func Decode(buf []byte) (value.Value, error) {
	h, payload, err := readOuter(errors.PhaseDecode, buf)
	if err != nil {
		return nil, err
	}
	return decodePayload(h.tag, payload, 0)
}

// decodeExact decodes a nested encoding that must fill buf.
func decodeExact(buf []byte, depth int) (value.Value, error) {
	e, err := readExact(errors.PhaseDecode, buf)
	if err != nil {
		return nil, err
	}
	return decodePayload(e.tag, e.payload(buf), depth+1)
}

func decodePayload(tag value.Tag, p []byte, depth int) (value.Value, error) {
	if depth > MaxDepth {
		return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Detail("nesting deeper than %d", MaxDepth).Build()
	}

	switch tag {
	case value.TagUInt:
		if err := wantLen(tag, p, 16); err != nil {
			return nil, err
		}
		return value.UIntFromBytes(p), nil

	case value.TagInt:
		if err := wantLen(tag, p, 16); err != nil {
			return nil, err
		}
		return value.IntFromBytes(p), nil

	case value.TagBool:
		if err := wantLen(tag, p, 1); err != nil {
			return nil, err
		}
		flag, err := readFlag(tag, p[0])
		if err != nil {
			return nil, err
		}
		return value.Bool(flag), nil

	case value.TagOptional:
		if len(p) == 0 {
			return nil, errors.Truncated(errors.PhaseDecode, nil, 1, 0)
		}
		some, err := readFlag(tag, p[0])
		if err != nil {
			return nil, err
		}
		if !some {
			if err := wantLen(tag, p, 1); err != nil {
				return nil, err
			}
			return value.None, nil
		}
		inner, err := decodeExact(p[1:], depth)
		if err != nil {
			return nil, within(err, "some")
		}
		return value.SomeOf(inner), nil

	case value.TagResponse:
		if len(p) == 0 {
			return nil, errors.Truncated(errors.PhaseDecode, nil, 1, 0)
		}
		ok, err := readFlag(tag, p[0])
		if err != nil {
			return nil, err
		}
		inner, err := decodeExact(p[1:], depth)
		if err != nil {
			if ok {
				return nil, within(err, "ok")
			}
			return nil, within(err, "err")
		}
		return value.Response{Committed: ok, Data: inner}, nil

	case value.TagASCII:
		if i := value.ValidASCII(p); i >= 0 {
			return nil, errors.InvalidASCII(errors.PhaseDecode, nil, p[i], i)
		}
		return value.ASCIIString(p), nil

	case value.TagUTF8:
		if !utf8.Valid(p) {
			return nil, errors.InvalidUTF8(errors.PhaseDecode, nil, p)
		}
		return value.UTF8String(p), nil

	case value.TagBuffer:
		out := make(value.Buffer, len(p))
		copy(out, p)
		return out, nil

	case value.TagList:
		var items value.List
		err := forEachElement(errors.PhaseDecode, p, func(i int, e element) error {
			if items == nil {
				items = make(value.List, 0, binary.LittleEndian.Uint16(p[0:2]))
			}
			v, err := decodePayload(e.tag, e.payload(p), depth+1)
			if err != nil {
				return err
			}
			items = append(items, v)
			return nil
		})
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = value.List{}
		}
		return items, nil

	case value.TagStandardPrincipal:
		if err := wantLen(tag, p, 1+value.HashLen); err != nil {
			return nil, err
		}
		return readStandard(p), nil

	case value.TagContractPrincipal:
		c, n, err := readContract(p, 0)
		if err != nil {
			return nil, err
		}
		if err := wantLen(tag, p, n); err != nil {
			return nil, err
		}
		return c, nil

	case value.TagCallableContract:
		return decodeCallable(p)

	case value.TagTuple:
		return decodeTuple(p, depth)
	}
	return nil, errors.InvalidTag(errors.PhaseDecode, nil, byte(tag))
}

func decodeCallable(p []byte) (value.Value, error) {
	c, off, err := readContract(p, 0)
	if err != nil {
		return nil, err
	}
	if off >= len(p) {
		return nil, errors.Truncated(errors.PhaseDecode, nil, off+1, len(p))
	}
	hasTrait, err := readFlag(value.TagCallableContract, p[off])
	if err != nil {
		return nil, err
	}
	off++
	out := value.CallableContract{Contract: c}
	if hasTrait {
		tc, next, err := readContract(p, off)
		if err != nil {
			return nil, within(err, "trait")
		}
		name, next, err := readName(errors.PhaseDecode, p, next)
		if err != nil {
			return nil, within(err, "trait")
		}
		out.Trait = &value.TraitRef{Contract: tc, Name: name}
		off = next
	}
	if err := wantLen(value.TagCallableContract, p, off); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeTuple(p []byte, depth int) (value.Value, error) {
	if len(p) < 2 {
		return nil, errors.Truncated(errors.PhaseDecode, nil, 2, len(p))
	}
	count := int(binary.LittleEndian.Uint16(p[0:2]))
	fields := make([]value.TupleField, 0, count)
	off := 2
	for i := 0; i < count; i++ {
		name, next, err := readName(errors.PhaseDecode, p, off)
		if err != nil {
			return nil, err
		}
		if i > 0 && fields[i-1].Name >= name {
			return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).Path(name).
				Detail("tuple fields must be unique and sorted").Build()
		}
		e, err := readElement(errors.PhaseDecode, p, next)
		if err != nil {
			return nil, within(err, name)
		}
		v, err := decodePayload(e.tag, e.payload(p), depth+1)
		if err != nil {
			return nil, within(err, name)
		}
		fields = append(fields, value.TupleField{Name: name, Value: v})
		off = e.end
	}
	if err := wantLen(value.TagTuple, p, off); err != nil {
		return nil, err
	}
	return value.NewTuple(fields...)
}

func readStandard(p []byte) value.StandardPrincipal {
	var sp value.StandardPrincipal
	sp.Version = p[0]
	copy(sp.Hash[:], p[1:1+value.HashLen])
	return sp
}

// readContract reads issuer version, hash and name starting at p[off].
func readContract(p []byte, off int) (value.ContractPrincipal, int, error) {
	if off+1+value.HashLen > len(p) {
		return value.ContractPrincipal{}, 0, errors.Truncated(errors.PhaseDecode, nil, off+1+value.HashLen, len(p))
	}
	issuer := readStandard(p[off:])
	name, next, err := readName(errors.PhaseDecode, p, off+1+value.HashLen)
	if err != nil {
		return value.ContractPrincipal{}, 0, err
	}
	return value.ContractPrincipal{Issuer: issuer, Name: name}, next, nil
}

func readFlag(tag value.Tag, b byte) (bool, error) {
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, errors.New(errors.PhaseDecode, errors.KindInvalidData).
		ValueType(tag.String()).Detail("flag byte %d is neither 0 nor 1", b).Build()
}

// wantLen checks that a fixed-size payload has exactly n bytes.
func wantLen(tag value.Tag, p []byte, n int) error {
	switch {
	case len(p) < n:
		return errors.New(errors.PhaseDecode, errors.KindTruncated).
			ValueType(tag.String()).Detail("expected %d bytes, received %d", n, len(p)).Build()
	case len(p) > n:
		return errors.New(errors.PhaseDecode, errors.KindLengthMismatch).
			ValueType(tag.String()).Detail("expected %d bytes, received %d", n, len(p)).Build()
	}
	return nil
}
