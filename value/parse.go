package value

import (
	"encoding/hex"
	"strconv"

	"github.com/wippyai/contract-runtime/errors"
)

// Parse reads a single value literal:
//
//	u42  -7  true  none  0xbeef  "ascii"  u"utf8"
//	'ADDRESS  'ADDRESS.contract  (callable 'ADDRESS.contract 'ADDRESS.contract.trait)
//	(some 1)  (ok u1)  (err none)  (list 1 2 3)  {a: 1, b: u2}  (tuple (a 1) (b u2))
//
// The String method of every value produces text Parse accepts.
func Parse(s string) (Value, error) {
	p := &parser{src: s}
	v, err := p.value()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, errors.ParseFailed(p.pos, "trailing input %q", p.src[p.pos:])
	}
	return v, nil
}

// MustParse is Parse that panics on error.
func MustParse(s string) Value {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

type parser struct {
	src string
	pos int
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) peek() byte {
	if p.pos < len(p.src) {
		return p.src[p.pos]
	}
	return 0
}

// word consumes an atom up to a delimiter.
func (p *parser) word() string {
	start := p.pos
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r', '(', ')', '{', '}', ',', ':':
			return p.src[start:p.pos]
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *parser) expect(c byte) error {
	p.skipSpace()
	if p.peek() != c {
		return errors.ParseFailed(p.pos, "expected %q", string(c))
	}
	p.pos++
	return nil
}

func (p *parser) value() (Value, error) {
	p.skipSpace()
	start := p.pos
	switch c := p.peek(); {
	case c == 0:
		return nil, errors.ParseFailed(p.pos, "unexpected end of input")
	case c == '(':
		p.pos++
		return p.form()
	case c == '{':
		p.pos++
		return p.braceTuple()
	case c == '"':
		s, err := p.quoted()
		if err != nil {
			return nil, err
		}
		if v, ok := NewASCII(s); ok {
			return v, nil
		}
		return nil, errors.ParseFailed(start, "string is not ASCII; use u\"...\"")
	case c == 'u' && p.pos+1 < len(p.src) && p.src[p.pos+1] == '"':
		p.pos++
		s, err := p.quoted()
		if err != nil {
			return nil, err
		}
		if v, ok := NewUTF8(s); ok {
			return v, nil
		}
		return nil, errors.ParseFailed(start, "string is not valid UTF-8")
	case c == '\'':
		p.pos++
		w := p.word()
		v, ok := ParsePrincipal(w)
		if !ok {
			return nil, errors.ParseFailed(start, "invalid principal %q", w)
		}
		return v, nil
	}

	w := p.word()
	switch {
	case w == "":
		return nil, errors.ParseFailed(start, "unexpected %q", string(p.peek()))
	case w == "true":
		return Bool(true), nil
	case w == "false":
		return Bool(false), nil
	case w == "none":
		return None, nil
	case len(w) >= 2 && w[0] == '0' && (w[1] == 'x' || w[1] == 'X'):
		b, err := hex.DecodeString(w[2:])
		if err != nil {
			return nil, errors.ParseFailed(start, "invalid buffer %q", w)
		}
		return Buffer(b), nil
	case w[0] == 'u':
		if v, ok := ParseUIntDecimal(w[1:]); ok {
			return v, nil
		}
		return nil, errors.ParseFailed(start, "invalid uint %q", w)
	default:
		if v, ok := ParseIntDecimal(w); ok {
			return v, nil
		}
		return nil, errors.ParseFailed(start, "invalid literal %q", w)
	}
}

func (p *parser) quoted() (string, error) {
	start := p.pos
	p.pos++ // opening quote
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case '\\':
			p.pos += 2
			continue
		case '"':
			p.pos++
			s, err := strconv.Unquote(p.src[start:p.pos])
			if err != nil {
				return "", errors.ParseFailed(start, "invalid string literal")
			}
			return s, nil
		}
		p.pos++
	}
	return "", errors.ParseFailed(start, "unterminated string")
}

func (p *parser) form() (Value, error) {
	p.skipSpace()
	start := p.pos
	head := p.word()
	switch head {
	case "some", "ok", "err":
		inner, err := p.value()
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		switch head {
		case "some":
			return SomeOf(inner), nil
		case "ok":
			return Ok(inner), nil
		}
		return Err(inner), nil
	case "list":
		var items List
		for {
			p.skipSpace()
			if p.peek() == ')' {
				p.pos++
				if items == nil {
					items = List{}
				}
				return items, nil
			}
			v, err := p.value()
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
	case "callable":
		return p.callable(start)
	case "tuple":
		var fields []TupleField
		for {
			p.skipSpace()
			if p.peek() == ')' {
				p.pos++
				return p.tuple(start, fields)
			}
			if err := p.expect('('); err != nil {
				return nil, err
			}
			p.skipSpace()
			name := p.word()
			v, err := p.value()
			if err != nil {
				return nil, err
			}
			if err := p.expect(')'); err != nil {
				return nil, err
			}
			fields = append(fields, TupleField{Name: name, Value: v})
		}
	}
	return nil, errors.ParseFailed(start, "unknown form %q", head)
}

func (p *parser) callable(start int) (Value, error) {
	v, err := p.value()
	if err != nil {
		return nil, err
	}
	contract, ok := v.(ContractPrincipal)
	if !ok {
		return nil, errors.ParseFailed(start, "callable needs a contract principal")
	}
	out := CallableContract{Contract: contract}
	p.skipSpace()
	if p.peek() != ')' {
		tv, err := p.value()
		if err != nil {
			return nil, err
		}
		trait, ok := tv.(CallableContract)
		if !ok || trait.Trait == nil {
			return nil, errors.ParseFailed(start, "callable trait must be 'ADDRESS.contract.trait")
		}
		out.Trait = trait.Trait
	}
	if err := p.expect(')'); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *parser) braceTuple() (Value, error) {
	start := p.pos - 1
	var fields []TupleField
	for {
		p.skipSpace()
		if p.peek() == '}' {
			p.pos++
			return p.tuple(start, fields)
		}
		if len(fields) > 0 {
			if err := p.expect(','); err != nil {
				return nil, err
			}
			p.skipSpace()
		}
		name := p.word()
		if err := p.expect(':'); err != nil {
			return nil, err
		}
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		fields = append(fields, TupleField{Name: name, Value: v})
	}
}

func (p *parser) tuple(start int, fields []TupleField) (Value, error) {
	t, err := NewTuple(fields...)
	if err != nil {
		return nil, errors.ParseFailed(start, "%v", err)
	}
	return t, nil
}
