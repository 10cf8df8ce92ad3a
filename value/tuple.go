package value

import (
	"sort"
	"strings"

	"github.com/wippyai/contract-runtime/errors"
)

// TupleField is one named entry of a tuple.
type TupleField struct {
	Value Value
	Name  string
}

// Tuple is a record of named values. Fields are kept sorted by name.
type Tuple struct {
	fields []TupleField
}

// NewTuple builds a tuple, sorting fields by name. Names must be valid
// identifiers and unique.
func NewTuple(fields ...TupleField) (Tuple, error) {
	sorted := make([]TupleField, len(fields))
	copy(sorted, fields)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	for i, f := range sorted {
		if !ValidContractName(f.Name) {
			return Tuple{}, errors.New(errors.PhaseParse, errors.KindInvalidInput).
				Path(f.Name).Detail("invalid tuple field name").Build()
		}
		if f.Value == nil {
			return Tuple{}, errors.New(errors.PhaseParse, errors.KindInvalidInput).
				Path(f.Name).Detail("tuple field has no value").Build()
		}
		if i > 0 && sorted[i-1].Name == f.Name {
			return Tuple{}, errors.New(errors.PhaseParse, errors.KindInvalidInput).
				Path(f.Name).Detail("duplicate tuple field").Build()
		}
	}
	return Tuple{fields: sorted}, nil
}

// MustTuple is NewTuple that panics on invalid fields.
func MustTuple(fields ...TupleField) Tuple {
	t, err := NewTuple(fields...)
	if err != nil {
		panic(err)
	}
	return t
}

func (Tuple) Tag() Tag { return TagTuple }

// Fields returns the fields in name order. The slice must not be modified.
func (t Tuple) Fields() []TupleField { return t.fields }

// Len returns the number of fields.
func (t Tuple) Len() int { return len(t.fields) }

// Get looks up a field by name.
func (t Tuple) Get(name string) (Value, bool) {
	i := sort.Search(len(t.fields), func(i int) bool { return t.fields[i].Name >= name })
	if i < len(t.fields) && t.fields[i].Name == name {
		return t.fields[i].Value, true
	}
	return nil, false
}

func (t Tuple) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, f := range t.fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.Name)
		b.WriteString(": ")
		b.WriteString(f.Value.String())
	}
	b.WriteByte('}')
	return b.String()
}
