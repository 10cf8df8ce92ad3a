package codec

import (
	"github.com/wippyai/contract-runtime/errors"
	"github.com/wippyai/contract-runtime/value"
)

// Span is the byte extent of one sequence element inside a serialized buffer.
// Offset is relative to the start of the buffer that was scanned.
type Span struct {
	Offset uint32
	Len    uint32
}

// Scan computes the span of each element of a serialized sequence without
// materializing values.
//
// For lists each span covers the element's complete [tag][len][payload]
// encoding, so it can be passed to Decode on its own. For buffers and ASCII
// strings each span is one byte; for UTF-8 strings each span is one
// character. Other types fail with KindTypeNotAllowed.
func Scan(buf []byte) ([]Span, error) {
	var spans []Span
	err := ScanFunc(buf, func(n int) {
		spans = make([]Span, 0, n)
	}, func(_ int, s Span) error {
		spans = append(spans, s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if spans == nil {
		spans = []Span{}
	}
	return spans, nil
}

// ScanFunc is the streaming form of Scan. size, if non-nil, receives an
// upper bound on the element count before the first call to fn. Elements are
// visited strictly left to right; an error from fn stops the walk.
func ScanFunc(buf []byte, size func(n int), fn func(i int, s Span) error) error {
	h, payload, err := readOuter(errors.PhaseScan, buf)
	if err != nil {
		return err
	}
	if !h.tag.IsSequence() {
		return errors.New(errors.PhaseScan, errors.KindTypeNotAllowed).
			ValueType(h.tag.String()).Detail("only lists, buffers and strings can be scanned").Build()
	}

	switch h.tag {
	case value.TagList:
		if size != nil && len(payload) >= 2 {
			size(int(payload[0]) | int(payload[1])<<8)
		}
		return forEachElement(errors.PhaseScan, payload, func(i int, e element) error {
			return fn(i, Span{Offset: uint32(HeaderLen + e.start), Len: uint32(e.end - e.start)})
		})

	case value.TagBuffer, value.TagASCII:
		if h.tag == value.TagASCII {
			if i := value.ValidASCII(payload); i >= 0 {
				return errors.InvalidASCII(errors.PhaseScan, nil, payload[i], i)
			}
		}
		if size != nil {
			size(len(payload))
		}
		for i := range payload {
			if err := fn(i, Span{Offset: uint32(HeaderLen + i), Len: 1}); err != nil {
				return err
			}
		}
		return nil

	case value.TagUTF8:
		if size != nil {
			size(len(payload))
		}
		var ferr error
		i := 0
		err := forEachRune(errors.PhaseScan, payload, func(start, n int) {
			if ferr == nil {
				ferr = fn(i, Span{Offset: uint32(HeaderLen + start), Len: uint32(n)})
				i++
			}
		})
		if ferr != nil {
			return ferr
		}
		return err
	}
	return nil
}

// Element returns the bytes of span s within buf.
func Element(buf []byte, s Span) ([]byte, error) {
	end := uint64(s.Offset) + uint64(s.Len)
	if end > uint64(len(buf)) {
		return nil, errors.OutOfBounds(errors.PhaseScan, nil, int(end), len(buf))
	}
	return buf[s.Offset:end], nil
}
