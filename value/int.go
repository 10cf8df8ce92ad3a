package value

import (
	"encoding/binary"
	"math"

	"github.com/holiman/uint256"
)

// UInt is an unsigned 128-bit integer.
type UInt struct {
	Hi, Lo uint64
}

// Int is a signed 128-bit integer in two's complement.
type Int struct {
	Hi, Lo uint64
}

var (
	MaxUInt = UInt{Hi: math.MaxUint64, Lo: math.MaxUint64}
	MaxInt  = Int{Hi: math.MaxInt64, Lo: math.MaxUint64}
	MinInt  = Int{Hi: 1 << 63, Lo: 0}
)

// NewUInt returns v as a UInt.
func NewUInt(v uint64) UInt { return UInt{Lo: v} }

// NewInt returns v sign-extended to an Int.
func NewInt(v int64) Int {
	var hi uint64
	if v < 0 {
		hi = math.MaxUint64
	}
	return Int{Hi: hi, Lo: uint64(v)}
}

func (UInt) Tag() Tag { return TagUInt }
func (Int) Tag() Tag  { return TagInt }

// Negative reports whether the integer is below zero.
func (v Int) Negative() bool { return v.Hi>>63 == 1 }

// Bytes returns the 16-byte little-endian representation.
func (v UInt) Bytes() (b [16]byte) {
	binary.LittleEndian.PutUint64(b[0:8], v.Lo)
	binary.LittleEndian.PutUint64(b[8:16], v.Hi)
	return b
}

// Bytes returns the 16-byte little-endian two's complement representation.
func (v Int) Bytes() (b [16]byte) {
	return UInt(v).Bytes()
}

// UIntFromBytes reads a 16-byte little-endian integer. b must hold at least 16 bytes.
func UIntFromBytes(b []byte) UInt {
	return UInt{
		Lo: binary.LittleEndian.Uint64(b[0:8]),
		Hi: binary.LittleEndian.Uint64(b[8:16]),
	}
}

// IntFromBytes reads a 16-byte little-endian two's complement integer.
func IntFromBytes(b []byte) Int {
	return Int(UIntFromBytes(b))
}

// Word widens v to 256 bits.
func (v UInt) Word() *uint256.Int {
	return &uint256.Int{v.Lo, v.Hi, 0, 0}
}

// Word sign-extends v to 256 bits, so that 256-bit two's complement
// arithmetic on the result is exact for any pair of Int operands.
func (v Int) Word() *uint256.Int {
	var ext uint64
	if v.Negative() {
		ext = math.MaxUint64
	}
	return &uint256.Int{v.Lo, v.Hi, ext, ext}
}

// UIntFromWord narrows z to 128 bits, reporting false if it does not fit.
func UIntFromWord(z *uint256.Int) (UInt, bool) {
	return UInt{Lo: z[0], Hi: z[1]}, z[2] == 0 && z[3] == 0
}

// IntFromWord narrows a signed 256-bit z to 128 bits, reporting false if it
// does not fit.
func IntFromWord(z *uint256.Int) (Int, bool) {
	var ext uint64
	if z[1]>>63 == 1 {
		ext = math.MaxUint64
	}
	return Int{Lo: z[0], Hi: z[1]}, z[2] == ext && z[3] == ext
}

// Decimal renders v in base 10 without the u prefix.
func (v UInt) Decimal() string { return v.Word().Dec() }

// Decimal renders v in base 10.
func (v Int) Decimal() string {
	w := v.Word()
	if !v.Negative() {
		return w.Dec()
	}
	return "-" + new(uint256.Int).Neg(w).Dec()
}

func (v UInt) String() string { return "u" + v.Decimal() }
func (v Int) String() string  { return v.Decimal() }

// ParseUIntDecimal parses an unsigned base-10 integer.
func ParseUIntDecimal(s string) (UInt, bool) {
	if !allDigits(s) {
		return UInt{}, false
	}
	z, err := uint256.FromDecimal(s)
	if err != nil {
		return UInt{}, false
	}
	return UIntFromWord(z)
}

// ParseIntDecimal parses a base-10 integer with an optional leading minus.
func ParseIntDecimal(s string) (Int, bool) {
	neg := len(s) > 0 && s[0] == '-'
	if neg {
		s = s[1:]
	}
	if !allDigits(s) {
		return Int{}, false
	}
	z, err := uint256.FromDecimal(s)
	if err != nil {
		return Int{}, false
	}
	if neg {
		z.Neg(z)
	}
	return IntFromWord(z)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
