package codec

import (
	"encoding/binary"
	"strconv"
	"unicode/utf8"

	"github.com/wippyai/contract-runtime/errors"
	"github.com/wippyai/contract-runtime/value"
)

const (
	// HeaderLen is the size of the [tag u8][length u16 LE] prefix.
	HeaderLen = 3

	// MaxNestedLen is the largest payload a nested value can carry.
	MaxNestedLen = 0xFFFF

	// MaxDepth bounds value nesting accepted by Decode.
	MaxDepth = 128
)

// header is the decoded prefix of one serialized value.
type header struct {
	tag value.Tag
	len int
}

// element locates one complete nested encoding inside a buffer.
type element struct {
	tag   value.Tag
	start int // offset of the tag byte
	end   int // offset one past the payload
}

func (e element) payload(buf []byte) []byte {
	return buf[e.start+HeaderLen : e.end]
}

// readHeader parses the prefix at buf[0:3].
func readHeader(phase errors.Phase, buf []byte) (header, error) {
	if len(buf) == 0 {
		return header{}, errors.New(phase, errors.KindTruncated).
			Detail("cannot read a zero-length buffer").Build()
	}
	if len(buf) < HeaderLen {
		return header{}, errors.Truncated(phase, nil, HeaderLen, len(buf))
	}
	tag := value.Tag(buf[0])
	if !tag.Valid() {
		return header{}, errors.InvalidTag(phase, nil, buf[0])
	}
	return header{tag: tag, len: int(binary.LittleEndian.Uint16(buf[1:3]))}, nil
}

// readOuter parses the header of a top-level value whose extent is the whole
// buffer. The length field of a top-level value holds the payload length
// modulo 2^16, so sequences longer than MaxNestedLen stay representable.
func readOuter(phase errors.Phase, buf []byte) (header, []byte, error) {
	h, err := readHeader(phase, buf)
	if err != nil {
		return h, nil, err
	}
	payload := buf[HeaderLen:]
	if uint16(len(payload)) != uint16(h.len) {
		return h, nil, errors.LengthMismatch(phase, nil, h.len, len(payload))
	}
	return h, payload, nil
}

// readElement locates the nested encoding starting at buf[off].
func readElement(phase errors.Phase, buf []byte, off int) (element, error) {
	h, err := readHeader(phase, buf[off:])
	if err != nil {
		return element{}, err
	}
	end := off + HeaderLen + h.len
	if end > len(buf) {
		return element{}, errors.New(phase, errors.KindTruncated).ValueType(h.tag.String()).
			Detail("length indicator %d exceeds remaining %d bytes", h.len, len(buf)-off-HeaderLen).Build()
	}
	return element{tag: h.tag, start: off, end: end}, nil
}

// readExact locates a nested encoding that must span all of buf.
func readExact(phase errors.Phase, buf []byte) (element, error) {
	e, err := readElement(phase, buf, 0)
	if err != nil {
		return e, err
	}
	if e.end != len(buf) {
		return e, errors.LengthMismatch(phase, nil, e.end-HeaderLen, len(buf)-HeaderLen)
	}
	return e, nil
}

// forEachElement walks a list payload: a u16 element count followed by
// back-to-back encodings. Element offsets passed to fn are relative to
// payload. The elements must consume the payload exactly.
func forEachElement(phase errors.Phase, payload []byte, fn func(i int, e element) error) error {
	if len(payload) < 2 {
		return errors.Truncated(phase, nil, 2, len(payload))
	}
	count := int(binary.LittleEndian.Uint16(payload[0:2]))
	off := 2
	for i := 0; i < count; i++ {
		if off >= len(payload) {
			return errors.New(phase, errors.KindTruncated).
				Detail("list declares %d elements, found %d", count, i).Build()
		}
		e, err := readElement(phase, payload, off)
		if err != nil {
			return within(err, strconv.Itoa(i))
		}
		if err := fn(i, e); err != nil {
			return within(err, strconv.Itoa(i))
		}
		off = e.end
	}
	if off != len(payload) {
		return errors.New(phase, errors.KindLengthMismatch).
			Detail("%d trailing bytes after %d elements", len(payload)-off, count).Build()
	}
	return nil
}

// forEachRune walks a UTF-8 payload one character at a time.
func forEachRune(phase errors.Phase, payload []byte, fn func(start, size int)) error {
	for off := 0; off < len(payload); {
		r, size := utf8.DecodeRune(payload[off:])
		if r == utf8.RuneError && size <= 1 {
			return errors.InvalidUTF8(phase, nil, payload[off:])
		}
		fn(off, size)
		off += size
	}
	return nil
}

// readName reads a u16-prefixed identifier at buf[off] and returns the
// offset past it.
func readName(phase errors.Phase, buf []byte, off int) (string, int, error) {
	if off+2 > len(buf) {
		return "", 0, errors.Truncated(phase, nil, off+2, len(buf))
	}
	n := int(binary.LittleEndian.Uint16(buf[off : off+2]))
	off += 2
	if off+n > len(buf) {
		return "", 0, errors.Truncated(phase, nil, off+n, len(buf))
	}
	name := string(buf[off : off+n])
	if !value.ValidContractName(name) {
		return "", 0, errors.InvalidData(phase, nil, "invalid name "+strconv.Quote(name))
	}
	return name, off + n, nil
}

// within prefixes the path of err with seg. Each enclosing value adds its
// own segment as the error unwinds, so paths cost nothing on success.
func within(err error, seg string) error {
	if e, ok := err.(*errors.Error); ok {
		p := make([]string, 0, len(e.Path)+1)
		p = append(p, seg)
		e.Path = append(p, e.Path...)
	}
	return err
}

// PeekTag returns the type indicator of a serialized value without decoding it.
func PeekTag(buf []byte) (value.Tag, error) {
	h, err := readHeader(errors.PhaseDecode, buf)
	return h.tag, err
}
