package schema

import "strings"

// Era is a named protocol version with its own schema document
type Era string

const (
	Babbage Era = "babbage"
	Conway  Era = "conway"
)

func (e Era) String() string { return string(e) }

// DefaultEras maps every published era to its document file name
func DefaultEras() map[Era]string {
	return map[Era]string{
		Babbage: "cardano-babbage.json",
		Conway:  "cardano-conway.json",
	}
}

// NormalizeEra folds an era tag to its canonical lower-case form
func NormalizeEra(s string) Era {
	return Era(strings.ToLower(strings.TrimSpace(s)))
}
