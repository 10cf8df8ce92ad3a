// Package value defines the contract-language value model that crosses the
// host/guest boundary.
//
// Every value implements Value and reports a Tag, which doubles as the type
// indicator byte of the wire format in package codec. 128-bit integers are
// stored as two 64-bit halves; arithmetic widens them to 256 bits with
// github.com/holiman/uint256 so overflow can be detected exactly.
//
// Values have a literal text form used by the command line tools:
//
//	v, err := value.Parse(`(list (some u1) none)`)
//	fmt.Println(v) // (list (some u1) none)
package value
