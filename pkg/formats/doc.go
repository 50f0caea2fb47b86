// Package formats provides the domain string formats used by the ledger schemas.
//
// # Overview
//
// JSON Schema cannot express arbitrary-precision integer ranges, byte-length
// bounds or checksummed address encodings. Each of those constraints is a named
// predicate that the validation registry installs into the schema engine's
// format table, where schema nodes reference it via "format".
//
// # Formats
//
//	hex        lowercase byte pairs, may be empty
//	bech32     checksummed bech32, at most 108 characters
//	base58     Bitcoin base58 alphabet
//	uint16     [0, 2^16)
//	uint64     [0, 2^64)
//	posint64   (0, 2^64)
//	int128     (-2^128, 2^128)
//	string64   at most 64 UTF-8 bytes
//	string128  at most 128 UTF-8 bytes
//
// Integer predicates only check the numeric range. Canonical decimal form is the
// job of the "pattern" that accompanies each integer type in the schema.
//
// # Usage Example
//
//	f, ok := formats.Lookup(formats.Uint64)
//	if ok && f.Check("18446744073709551615") {
//		fmt.Println("fits")
//	}
//
// # Related Packages
//
//   - pkg/validation: Registers these formats into the schema compiler
package formats
