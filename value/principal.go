package value

import (
	"bytes"
	"crypto/sha256"
	"strings"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // hash160 addresses require ripemd160
)

// HashLen is the length of a principal's public key hash.
const HashLen = 20

// MaxContractNameLen bounds contract and trait names.
const MaxContractNameLen = 128

// StandardPrincipal identifies an account by address version and key hash.
type StandardPrincipal struct {
	Version byte
	Hash    [HashLen]byte
}

// ContractPrincipal identifies a contract deployed by Issuer.
type ContractPrincipal struct {
	Issuer StandardPrincipal
	Name   string
}

// TraitRef identifies a trait defined in a contract.
type TraitRef struct {
	Contract ContractPrincipal
	Name     string
}

// CallableContract is a contract principal that may be called dynamically,
// optionally through a trait.
type CallableContract struct {
	Trait    *TraitRef
	Contract ContractPrincipal
}

func (StandardPrincipal) Tag() Tag { return TagStandardPrincipal }
func (ContractPrincipal) Tag() Tag { return TagContractPrincipal }
func (CallableContract) Tag() Tag  { return TagCallableContract }

// Address renders the principal as a base58check address.
func (p StandardPrincipal) Address() string {
	payload := make([]byte, 0, 1+HashLen+4)
	payload = append(payload, p.Version)
	payload = append(payload, p.Hash[:]...)
	sum := checksum(payload)
	payload = append(payload, sum[:]...)
	return base58.Encode(payload)
}

func (p StandardPrincipal) String() string { return "'" + p.Address() }

// Address renders the contract as ADDRESS.name.
func (c ContractPrincipal) Address() string {
	return c.Issuer.Address() + "." + c.Name
}

func (c ContractPrincipal) String() string { return "'" + c.Address() }

// Address renders the trait as ADDRESS.contract.trait.
func (t TraitRef) Address() string {
	return t.Contract.Address() + "." + t.Name
}

func (c CallableContract) String() string {
	if c.Trait == nil {
		return "(callable " + c.Contract.String() + ")"
	}
	return "(callable " + c.Contract.String() + " '" + c.Trait.Address() + ")"
}

// ParseAddress decodes a base58check address.
func ParseAddress(s string) (StandardPrincipal, bool) {
	raw, err := base58.Decode(s)
	if err != nil || len(raw) != 1+HashLen+4 {
		return StandardPrincipal{}, false
	}
	sum := checksum(raw[:1+HashLen])
	if !bytes.Equal(sum[:], raw[1+HashLen:]) {
		return StandardPrincipal{}, false
	}
	var p StandardPrincipal
	p.Version = raw[0]
	copy(p.Hash[:], raw[1:1+HashLen])
	return p, true
}

// ParsePrincipal decodes ADDRESS, ADDRESS.contract or ADDRESS.contract.trait.
// It returns a StandardPrincipal, ContractPrincipal or TraitRef-carrying
// CallableContract respectively.
func ParsePrincipal(s string) (Value, bool) {
	parts := strings.Split(s, ".")
	issuer, ok := ParseAddress(parts[0])
	if !ok {
		return nil, false
	}
	switch len(parts) {
	case 1:
		return issuer, true
	case 2:
		if !ValidContractName(parts[1]) {
			return nil, false
		}
		return ContractPrincipal{Issuer: issuer, Name: parts[1]}, true
	case 3:
		if !ValidContractName(parts[1]) || !ValidContractName(parts[2]) {
			return nil, false
		}
		c := ContractPrincipal{Issuer: issuer, Name: parts[1]}
		return CallableContract{Contract: c, Trait: &TraitRef{Contract: c, Name: parts[2]}}, true
	}
	return nil, false
}

// ValidContractName reports whether s is a legal contract or trait name:
// a letter followed by letters, digits, '-' or '_'.
func ValidContractName(s string) bool {
	if s == "" || len(s) > MaxContractNameLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && (c >= '0' && c <= '9' || c == '-' || c == '_'):
		default:
			return false
		}
	}
	return true
}

// PrincipalFromPublicKey derives a standard principal from a public key as
// RIPEMD160(SHA256(pubkey)).
func PrincipalFromPublicKey(version byte, pubkey []byte) StandardPrincipal {
	sha := sha256.Sum256(pubkey)
	h := ripemd160.New()
	h.Write(sha[:])
	p := StandardPrincipal{Version: version}
	copy(p.Hash[:], h.Sum(nil))
	return p
}

func checksum(b []byte) [4]byte {
	first := sha256.Sum256(b)
	second := sha256.Sum256(first[:])
	var out [4]byte
	copy(out[:], second[:4])
	return out
}
