package validation

import (
	"errors"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Result is the immutable outcome of one validation call
type Result struct {
	Valid      bool        `json:"valid"`
	Violations []Violation `json:"violations,omitempty"`
}

// Violation is one failed assertion
type Violation struct {
	// InstanceLocation is a JSON pointer into the validated value
	InstanceLocation string `json:"instanceLocation"`
	// KeywordLocation is a JSON pointer to the failing keyword in its schema
	KeywordLocation string `json:"keywordLocation"`
	SchemaURL       string `json:"schemaURL,omitempty"`
	Message         string `json:"message"`
}

func (v Violation) String() string {
	loc := v.InstanceLocation
	if loc == "" {
		loc = "/"
	}
	return loc + ": " + v.Message
}

// Error joins all violations, or returns nil for a valid result
func (r Result) Error() error {
	if r.Valid {
		return nil
	}
	msgs := make([]string, 0, len(r.Violations))
	for _, v := range r.Violations {
		msgs = append(msgs, v.String())
	}
	return errors.New(strings.Join(msgs, "; "))
}

// newResult converts an engine error into a Result. Only leaf causes are kept.
func newResult(err error) Result {
	if err == nil {
		return Result{Valid: true}
	}

	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return Result{Violations: []Violation{{Message: err.Error()}}}
	}

	var out []Violation
	collectLeaves(verr, &out)
	return Result{Violations: out}
}

func collectLeaves(e *jsonschema.ValidationError, out *[]Violation) {
	if len(e.Causes) == 0 {
		*out = append(*out, Violation{
			InstanceLocation: pointer(e.InstanceLocation),
			KeywordLocation:  pointer(e.ErrorKind.KeywordPath()),
			SchemaURL:        e.SchemaURL,
			Message:          e.ErrorKind.LocalizedString(printer),
		})
		return
	}
	for _, cause := range e.Causes {
		collectLeaves(cause, out)
	}
}

func pointer(tokens []string) string {
	var sb strings.Builder
	for _, tok := range tokens {
		sb.WriteByte('/')
		tok = strings.ReplaceAll(tok, "~", "~0")
		sb.WriteString(strings.ReplaceAll(tok, "/", "~1"))
	}
	return sb.String()
}
