package hostfn

import (
	"unicode/utf8"

	"github.com/wippyai/contract-runtime/errors"
	"github.com/wippyai/contract-runtime/value"
)

// Each visits the elements of a sequence left to right. Buffer elements are
// one-byte buffers, string elements are one-character strings.
func Each(seq value.Value, fn func(i int, el value.Value) error) error {
	switch s := seq.(type) {
	case value.List:
		for i, el := range s {
			if err := fn(i, el); err != nil {
				return err
			}
		}
		return nil
	case value.Buffer:
		for i := range s {
			if err := fn(i, value.Buffer{s[i]}); err != nil {
				return err
			}
		}
		return nil
	case value.ASCIIString:
		for i := 0; i < len(s); i++ {
			if err := fn(i, s[i:i+1]); err != nil {
				return err
			}
		}
		return nil
	case value.UTF8String:
		i := 0
		for off := 0; off < len(s); {
			_, n := utf8.DecodeRuneInString(string(s[off:]))
			if err := fn(i, s[off:off+n]); err != nil {
				return err
			}
			off += n
			i++
		}
		return nil
	}
	if seq == nil {
		return errors.New(errors.PhaseRuntime, errors.KindArgumentMissing).
			Path("fold").Detail("sequence argument required").Build()
	}
	return NotASequence(seq.Tag())
}

// Fold reduces seq from the left: acc = fn(element, acc), starting at init.
func Fold(seq, init value.Value, fn func(el, acc value.Value) (value.Value, error)) (value.Value, error) {
	if init == nil {
		return nil, errors.New(errors.PhaseRuntime, errors.KindArgumentMissing).
			Path("fold").Detail("initial value required").Build()
	}
	acc := init
	err := Each(seq, func(_ int, el value.Value) error {
		next, err := fn(el, acc)
		if err != nil {
			return err
		}
		if next == nil {
			return errors.New(errors.PhaseRuntime, errors.KindArgumentMissing).
				Path("fold").Detail("folded function returned no value").Build()
		}
		acc = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return acc, nil
}

// NotASequence is the error for folding over a non-sequence.
func NotASequence(tag value.Tag) error {
	return errors.New(errors.PhaseRuntime, errors.KindTypeNotAllowed).
		Path("fold").ValueType(tag.String()).Detail("value is not a sequence").Build()
}
