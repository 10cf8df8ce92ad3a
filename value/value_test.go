package value

import (
	"encoding/hex"
	"errors"
	"testing"

	rterrors "github.com/wippyai/contract-runtime/errors"
)

func testPrincipal(seed byte) StandardPrincipal {
	p := StandardPrincipal{Version: 22}
	for i := range p.Hash {
		p.Hash[i] = seed + byte(i)
	}
	return p
}

func TestIntBounds(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"max int", MaxInt, "170141183460469231731687303715884105727"},
		{"min int", MinInt, "-170141183460469231731687303715884105728"},
		{"max uint", MaxUInt, "u340282366920938463463374607431768211455"},
		{"minus one", NewInt(-1), "-1"},
		{"zero uint", NewUInt(0), "u0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.String(); got != tt.want {
				t.Errorf("String() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestIntBytes(t *testing.T) {
	b := MaxInt.Bytes()
	for i := 0; i < 15; i++ {
		if b[i] != 0xff {
			t.Fatalf("byte %d = %x, want ff", i, b[i])
		}
	}
	if b[15] != 0x7f {
		t.Fatalf("top byte = %x, want 7f", b[15])
	}
	if got := IntFromBytes(b[:]); got != MaxInt {
		t.Fatalf("IntFromBytes = %v", got)
	}

	neg := NewInt(-2).Bytes()
	if neg[0] != 0xfe || neg[15] != 0xff {
		t.Fatalf("-2 encodes as %x", neg)
	}
}

func TestWordNarrowing(t *testing.T) {
	w := MaxInt.Word()
	w.AddUint64(w, 1)
	if _, ok := IntFromWord(w); ok {
		t.Error("MaxInt+1 should not fit in Int")
	}
	if v, ok := IntFromWord(NewInt(-5).Word()); !ok || v != NewInt(-5) {
		t.Errorf("IntFromWord(-5) = %v, %v", v, ok)
	}
	u := MaxUInt.Word()
	u.AddUint64(u, 1)
	if _, ok := UIntFromWord(u); ok {
		t.Error("MaxUInt+1 should not fit in UInt")
	}
}

func TestParseDecimal(t *testing.T) {
	if v, ok := ParseIntDecimal("-170141183460469231731687303715884105728"); !ok || v != MinInt {
		t.Errorf("min int parse = %v %v", v, ok)
	}
	if _, ok := ParseIntDecimal("170141183460469231731687303715884105728"); ok {
		t.Error("max int + 1 should not parse")
	}
	if _, ok := ParseUIntDecimal("340282366920938463463374607431768211456"); ok {
		t.Error("max uint + 1 should not parse")
	}
	for _, bad := range []string{"", "-", "1a", "+1", "0x10"} {
		if _, ok := ParseIntDecimal(bad); ok {
			t.Errorf("ParseIntDecimal(%q) should fail", bad)
		}
	}
}

func TestEqual(t *testing.T) {
	p := testPrincipal(1)
	c := ContractPrincipal{Issuer: p, Name: "token"}
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"ints", NewInt(3), NewInt(3), true},
		{"int vs uint", NewInt(3), NewUInt(3), false},
		{"nested list", List{List{NewInt(1)}, None}, List{List{NewInt(1)}, None}, true},
		{"list length", List{NewInt(1)}, List{NewInt(1), NewInt(2)}, false},
		{"buffers", Buffer{1, 2}, Buffer{1, 2}, true},
		{"responses", Ok(Bool(true)), Err(Bool(true)), false},
		{"optional none/some", None, SomeOf(NewInt(0)), false},
		{"callable traits", CallableContract{Contract: c, Trait: &TraitRef{Contract: c, Name: "t"}},
			CallableContract{Contract: c, Trait: &TraitRef{Contract: c, Name: "t"}}, true},
		{"callable no trait", CallableContract{Contract: c}, CallableContract{Contract: c, Trait: &TraitRef{Contract: c, Name: "t"}}, false},
		{"tuples", MustTuple(TupleField{Name: "b", Value: NewInt(2)}, TupleField{Name: "a", Value: NewInt(1)}),
			MustTuple(TupleField{Name: "a", Value: NewInt(1)}, TupleField{Name: "b", Value: NewInt(2)}), true},
		{"nil", nil, nil, true},
		{"nil vs value", nil, Bool(false), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTuple(t *testing.T) {
	tup, err := NewTuple(
		TupleField{Name: "zeta", Value: NewUInt(1)},
		TupleField{Name: "alpha", Value: Bool(true)},
	)
	if err != nil {
		t.Fatal(err)
	}
	if tup.Fields()[0].Name != "alpha" {
		t.Errorf("fields not sorted: %v", tup)
	}
	if v, ok := tup.Get("zeta"); !ok || v != NewUInt(1) {
		t.Errorf("Get(zeta) = %v, %v", v, ok)
	}
	if _, ok := tup.Get("missing"); ok {
		t.Error("Get(missing) should fail")
	}

	_, err = NewTuple(TupleField{Name: "a", Value: NewInt(1)}, TupleField{Name: "a", Value: NewInt(2)})
	if !errors.Is(err, &rterrors.Error{Phase: rterrors.PhaseParse, Kind: rterrors.KindInvalidInput}) {
		t.Errorf("duplicate field error = %v", err)
	}
	if _, err := NewTuple(TupleField{Name: "1bad", Value: NewInt(1)}); err == nil {
		t.Error("invalid name should fail")
	}
}

func TestPrincipalAddress(t *testing.T) {
	p := testPrincipal(7)
	addr := p.Address()
	back, ok := ParseAddress(addr)
	if !ok || back != p {
		t.Fatalf("ParseAddress(%s) = %v, %v", addr, back, ok)
	}

	// flip one character to break the checksum
	corrupt := []byte(addr)
	if corrupt[3] == 'a' {
		corrupt[3] = 'b'
	} else {
		corrupt[3] = 'a'
	}
	if _, ok := ParseAddress(string(corrupt)); ok {
		t.Error("corrupted address should not parse")
	}
}

func TestPrincipalFromPublicKey(t *testing.T) {
	// hash160 of the secp256k1 generator point, compressed
	pub, _ := hex.DecodeString("0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798")
	p := PrincipalFromPublicKey(0, pub)
	if got := hex.EncodeToString(p.Hash[:]); got != "751e76e8199196d454941c45d1b3a323f1433bd6" {
		t.Errorf("hash160 = %s", got)
	}
}

func TestValidContractName(t *testing.T) {
	for _, ok := range []string{"a", "token-v2", "My_Contract"} {
		if !ValidContractName(ok) {
			t.Errorf("%q should be valid", ok)
		}
	}
	for _, bad := range []string{"", "2fast", "-x", "has space", "dot.ted"} {
		if ValidContractName(bad) {
			t.Errorf("%q should be invalid", bad)
		}
	}
}

func TestLen(t *testing.T) {
	if n, ok := Len(UTF8String("héllo")); !ok || n != 5 {
		t.Errorf("utf8 len = %d %v", n, ok)
	}
	if n, ok := Len(Buffer{1, 2, 3}); !ok || n != 3 {
		t.Errorf("buffer len = %d %v", n, ok)
	}
	if _, ok := Len(NewInt(1)); ok {
		t.Error("int is not a sequence")
	}
}
