package governance

import (
	"errors"
	"fmt"
	"strings"

	"github.com/platinummonkey/cip116/pkg/schema"
)

var (
	// ErrDisallowedField marks a definition carrying a field outside the whitelist
	ErrDisallowedField = errors.New("disallowed field")
	// ErrTitleMissing marks a definition without a title
	ErrTitleMissing = errors.New("title missing")
	// ErrTitleMismatch marks a definition whose title differs from its key
	ErrTitleMismatch = errors.New("title mismatch")
	// ErrUnresolvedRef marks a $ref whose target is not a definition
	ErrUnresolvedRef = errors.New("unresolved reference")
	// ErrInvalidDefinition marks a definition that is not an object
	ErrInvalidDefinition = errors.New("invalid definition")
	// ErrUnreferenced marks a definition no $ref points at
	ErrUnreferenced = errors.New("unreferenced definition")
)

// Severity indicates how serious a violation is
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Valid reports whether s is a known severity
func (s Severity) Valid() bool {
	switch s {
	case SeverityError, SeverityWarning, SeverityInfo:
		return true
	}
	return false
}

// Category groups related rules
type Category string

const (
	CategoryStructure Category = "structure"
	CategoryNaming    Category = "naming"
	CategoryReference Category = "reference"
)

// Violation is one governance finding
type Violation struct {
	Rule     string   `json:"rule" yaml:"rule"`
	Severity Severity `json:"severity" yaml:"severity"`
	Category Category `json:"category" yaml:"category"`
	Message  string   `json:"message" yaml:"message"`
	// Key is the definition the finding is about, or the missing ref target
	Key    string   `json:"key" yaml:"key"`
	Fields []string `json:"fields,omitempty" yaml:"fields,omitempty"`
	Found  string   `json:"found,omitempty" yaml:"found,omitempty"`
	Ref    string   `json:"ref,omitempty" yaml:"ref,omitempty"`
	Path   string   `json:"path,omitempty" yaml:"path,omitempty"`
	Kind   error    `json:"-" yaml:"-"`
}

// Error is the failure raised for a document that does not pass governance
type Error struct {
	Era  schema.Era
	File string
	Violation
}

func (e *Error) Error() string {
	if e.File == "" {
		return e.Message
	}
	return e.File + ": " + e.Message
}

// Unwrap exposes the violation kind for errors.Is
func (e *Error) Unwrap() error { return e.Kind }

// Report collects every finding of one governance run, in check order
type Report struct {
	Era        schema.Era  `json:"era" yaml:"era"`
	File       string      `json:"file" yaml:"file"`
	Violations []Violation `json:"violations" yaml:"violations"`
	Summary    Summary     `json:"summary" yaml:"summary"`
}

// Summary counts violations per severity
type Summary struct {
	Total    int `json:"total" yaml:"total"`
	Errors   int `json:"errors" yaml:"errors"`
	Warnings int `json:"warnings" yaml:"warnings"`
	Infos    int `json:"infos" yaml:"infos"`
}

// Passed reports whether no error-severity violation was found
func (r Report) Passed() bool {
	return r.Summary.Errors == 0
}

// Err returns the first error-severity violation, or nil
func (r Report) Err() error {
	for _, v := range r.Violations {
		if v.Severity == SeverityError {
			return &Error{Era: r.Era, File: r.File, Violation: v}
		}
	}
	return nil
}

// ByRule counts violations per rule name
func (r Report) ByRule() map[string]int {
	out := make(map[string]int)
	for _, v := range r.Violations {
		out[v.Rule]++
	}
	return out
}

func summarize(violations []Violation) Summary {
	s := Summary{Total: len(violations)}
	for _, v := range violations {
		switch v.Severity {
		case SeverityError:
			s.Errors++
		case SeverityWarning:
			s.Warnings++
		case SeverityInfo:
			s.Infos++
		}
	}
	return s
}

func disallowedMessage(key string, fields []string) string {
	return fmt.Sprintf("disallowed property found in %s: %s", key, strings.Join(fields, ", "))
}
