package formats

import (
	"math/big"
	"sort"
	"strings"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/btcutil/bech32"
)

// Predicate reports whether a string satisfies a format constraint.
// Predicates never panic and return false for any input they cannot parse.
type Predicate func(s string) bool

// Format binds a format name to its predicate
type Format struct {
	Name  string
	Check Predicate
}

// Format names as referenced from a schema node's "format" field
const (
	Hex       = "hex"
	Bech32    = "bech32"
	Base58    = "base58"
	Uint16    = "uint16"
	Uint64    = "uint64"
	PosInt64  = "posint64"
	Int128    = "int128"
	String64  = "string64"
	String128 = "string128"
)

// MaxBech32Length is the longest bech32 string accepted. Shelley addresses
// exceed the 90 character limit of BIP-173.
const MaxBech32Length = 108

var (
	two16  = new(big.Int).Lsh(big.NewInt(1), 16)
	two64  = new(big.Int).Lsh(big.NewInt(1), 64)
	two128 = new(big.Int).Lsh(big.NewInt(1), 128)

	negTwo128 = new(big.Int).Neg(two128)
	zero      = big.NewInt(0)
)

var registry = map[string]Predicate{
	Hex:       IsHex,
	Bech32:    IsBech32,
	Base58:    IsBase58,
	Uint16:    IsUint16,
	Uint64:    IsUint64,
	PosInt64:  IsPosInt64,
	Int128:    IsInt128,
	String64:  IsString64,
	String128: IsString128,
}

// Default returns every built-in format, sorted by name
func Default() []Format {
	names := Names()
	out := make([]Format, 0, len(names))
	for _, name := range names {
		out = append(out, Format{Name: name, Check: registry[name]})
	}
	return out
}

// Lookup returns the format registered under name
func Lookup(name string) (Format, bool) {
	check, ok := registry[name]
	if !ok {
		return Format{}, false
	}
	return Format{Name: name, Check: check}, true
}

// Names returns the sorted list of format names
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsHex accepts an even number of lowercase hex digits, including the empty string
func IsHex(s string) bool {
	if len(s)%2 != 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// IsBech32 accepts a checksummed bech32 string of at most MaxBech32Length characters
func IsBech32(s string) bool {
	if len(s) > MaxBech32Length {
		return false
	}
	_, _, err := bech32.DecodeNoLimit(s)
	return err == nil
}

// IsBase58 accepts strings drawn from the Bitcoin base58 alphabet.
// The decoder returns an empty slice on invalid input, and any non-empty
// valid input decodes to at least one byte.
func IsBase58(s string) bool {
	if s == "" {
		return true
	}
	return len(base58.Decode(s)) > 0
}

// IsUint16 accepts integers in [0, 2^16)
func IsUint16(s string) bool {
	return inRange(s, zero, true, two16)
}

// IsUint64 accepts integers in [0, 2^64)
func IsUint64(s string) bool {
	return inRange(s, zero, true, two64)
}

// IsPosInt64 accepts integers in (0, 2^64)
func IsPosInt64(s string) bool {
	return inRange(s, zero, false, two64)
}

// IsInt128 accepts integers in (-2^128, 2^128)
func IsInt128(s string) bool {
	return inRange(s, negTwo128, false, two128)
}

// IsString64 accepts strings whose UTF-8 encoding is at most 64 bytes
func IsString64(s string) bool {
	return len(s) <= 64
}

// IsString128 accepts strings whose UTF-8 encoding is at most 128 bytes
func IsString128(s string) bool {
	return len(s) <= 128
}

// inRange parses s as a base-10 integer and checks lo <(=) n < hi.
// Canonical form (no leading zeros, no "-0") is enforced by the paired
// schema pattern, not here.
func inRange(s string, lo *big.Int, loInclusive bool, hi *big.Int) bool {
	n, ok := parseInteger(s)
	if !ok {
		return false
	}
	c := n.Cmp(lo)
	if c < 0 || (c == 0 && !loInclusive) {
		return false
	}
	return n.Cmp(hi) < 0
}

func parseInteger(s string) (*big.Int, bool) {
	digits := strings.TrimPrefix(s, "-")
	if digits == "" {
		return nil, false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return nil, false
		}
	}
	return new(big.Int).SetString(s, 10)
}
