package value

import "fmt"

// Tag is the type indicator of a value. Its numeric form is the first byte
// of every serialized value.
type Tag uint8

const (
	TagUInt              Tag = 1
	TagInt               Tag = 2
	TagBool              Tag = 3
	TagOptional          Tag = 4
	TagResponse          Tag = 5
	TagASCII             Tag = 6
	TagUTF8              Tag = 7
	TagBuffer            Tag = 8
	TagList              Tag = 9
	TagStandardPrincipal Tag = 10
	TagContractPrincipal Tag = 11
	TagCallableContract  Tag = 12
	TagTuple             Tag = 13
)

var tagNames = [...]string{
	TagUInt:              "uint",
	TagInt:               "int",
	TagBool:              "bool",
	TagOptional:          "optional",
	TagResponse:          "response",
	TagASCII:             "string-ascii",
	TagUTF8:              "string-utf8",
	TagBuffer:            "buff",
	TagList:              "list",
	TagStandardPrincipal: "principal",
	TagContractPrincipal: "contract-principal",
	TagCallableContract:  "callable-contract",
	TagTuple:             "tuple",
}

// Valid reports whether t is a known tag.
func (t Tag) Valid() bool {
	return t >= TagUInt && t <= TagTuple
}

func (t Tag) String() string {
	if t.Valid() {
		return tagNames[t]
	}
	return fmt.Sprintf("tag(%d)", uint8(t))
}

// IsSequence reports whether values with this tag have elements that can
// be iterated.
func (t Tag) IsSequence() bool {
	switch t {
	case TagList, TagBuffer, TagASCII, TagUTF8:
		return true
	}
	return false
}

// Value is a contract-language value. Values are immutable once constructed.
//
// The concrete types are UInt, Int, Bool, Optional, Response, Buffer,
// ASCIIString, UTF8String, List, StandardPrincipal, ContractPrincipal,
// CallableContract and Tuple.
type Value interface {
	Tag() Tag
	// String renders the value as a literal accepted by Parse.
	String() string
}

// Bool is a boolean value.
type Bool bool

func (Bool) Tag() Tag { return TagBool }

func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}

// Optional holds Some when Some is non-nil, and none otherwise.
type Optional struct {
	Some Value
}

// None is the empty optional.
var None = Optional{}

// SomeOf wraps v in an optional.
func SomeOf(v Value) Optional { return Optional{Some: v} }

func (Optional) Tag() Tag { return TagOptional }

// IsSome reports whether the optional carries a value.
func (o Optional) IsSome() bool { return o.Some != nil }

func (o Optional) String() string {
	if o.Some == nil {
		return "none"
	}
	return "(some " + o.Some.String() + ")"
}

// Response is an ok or err result carrying a payload.
type Response struct {
	Data      Value
	Committed bool
}

// Ok builds a committed response.
func Ok(v Value) Response { return Response{Committed: true, Data: v} }

// Err builds an error response.
func Err(v Value) Response { return Response{Committed: false, Data: v} }

func (Response) Tag() Tag { return TagResponse }

func (r Response) String() string {
	if r.Committed {
		return "(ok " + r.Data.String() + ")"
	}
	return "(err " + r.Data.String() + ")"
}

// Equal reports deep equality of two values.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Tag() != b.Tag() {
		return false
	}
	switch x := a.(type) {
	case UInt, Int, Bool, StandardPrincipal, ContractPrincipal, ASCIIString, UTF8String:
		return a == b
	case Optional:
		y := b.(Optional)
		return Equal(x.Some, y.Some)
	case Response:
		y := b.(Response)
		return x.Committed == y.Committed && Equal(x.Data, y.Data)
	case Buffer:
		y := b.(Buffer)
		return string(x) == string(y)
	case List:
		y := b.(List)
		if len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case CallableContract:
		y := b.(CallableContract)
		if x.Contract != y.Contract {
			return false
		}
		if x.Trait == nil || y.Trait == nil {
			return x.Trait == nil && y.Trait == nil
		}
		return *x.Trait == *y.Trait
	case Tuple:
		y := b.(Tuple)
		if len(x.fields) != len(y.fields) {
			return false
		}
		for i := range x.fields {
			if x.fields[i].Name != y.fields[i].Name || !Equal(x.fields[i].Value, y.fields[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}
