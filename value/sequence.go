package value

import (
	"encoding/hex"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Buffer is a byte buffer.
type Buffer []byte

// ASCIIString is a string restricted to printable ASCII and whitespace.
type ASCIIString string

// UTF8String is a string of unicode scalar values.
type UTF8String string

// List is a sequence of values.
type List []Value

func (Buffer) Tag() Tag      { return TagBuffer }
func (ASCIIString) Tag() Tag { return TagASCII }
func (UTF8String) Tag() Tag  { return TagUTF8 }
func (List) Tag() Tag        { return TagList }

func (b Buffer) String() string {
	return "0x" + hex.EncodeToString(b)
}

func (s ASCIIString) String() string {
	return strconv.Quote(string(s))
}

func (s UTF8String) String() string {
	return "u" + strconv.Quote(string(s))
}

func (l List) String() string {
	var b strings.Builder
	b.WriteString("(list")
	for _, v := range l {
		b.WriteByte(' ')
		b.WriteString(v.String())
	}
	b.WriteByte(')')
	return b.String()
}

// IsASCIIByte reports whether c belongs to the contract ASCII alphabet:
// alphanumerics, punctuation and whitespace.
func IsASCIIByte(c byte) bool {
	switch {
	case c >= 0x20 && c <= 0x7e:
		return true
	case c == '\t' || c == '\n' || c == '\r':
		return true
	}
	return false
}

// ValidASCII returns the index of the first byte outside the ASCII alphabet,
// or -1 if every byte is allowed.
func ValidASCII(b []byte) int {
	for i, c := range b {
		if !IsASCIIByte(c) {
			return i
		}
	}
	return -1
}

// NewASCII validates s and returns it as an ASCIIString.
func NewASCII(s string) (ASCIIString, bool) {
	if ValidASCII([]byte(s)) >= 0 {
		return "", false
	}
	return ASCIIString(s), true
}

// NewUTF8 validates s and returns it as a UTF8String.
func NewUTF8(s string) (UTF8String, bool) {
	if !utf8.ValidString(s) {
		return "", false
	}
	return UTF8String(s), true
}

// Len returns the number of elements a sequence value holds, and false for
// values that are not sequences.
func Len(v Value) (int, bool) {
	switch s := v.(type) {
	case Buffer:
		return len(s), true
	case ASCIIString:
		return len(s), true
	case UTF8String:
		return utf8.RuneCountInString(string(s)), true
	case List:
		return len(s), true
	}
	return 0, false
}
