package schema

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// DefinitionsKey is the top-level property holding named definitions
const DefinitionsKey = "definitions"

// BaseURL prefixes every document's resource URL in the schema compiler
const BaseURL = "https://cips.cardano.org/cip116/"

var (
	// ErrNotObject is returned when a document's root is not a JSON object
	ErrNotObject = errors.New("schema document root is not an object")
	// ErrNoDefinitions is returned when a document lacks a definitions object
	ErrNoDefinitions = errors.New("schema document has no definitions object")
)

// Document is one era's immutable schema document
type Document struct {
	era  Era
	name string
	root *Node
}

// Parse decodes a JSON schema document. Numbers keep their exact decimal
// text so large integer bounds survive decoding.
func Parse(era Era, name string, data []byte) (*Document, error) {
	v, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return NewDocument(era, name, v)
}

// NewDocument wraps an already decoded JSON value
func NewDocument(era Era, name string, v any) (*Document, error) {
	root := NewNode(v)
	if !root.IsObject() {
		return nil, fmt.Errorf("%s: %w", name, ErrNotObject)
	}
	defs, ok := root.Get(DefinitionsKey)
	if !ok || !defs.IsObject() {
		return nil, fmt.Errorf("%s: %w", name, ErrNoDefinitions)
	}
	return &Document{era: era, name: name, root: root}, nil
}

// Era returns the protocol era the document describes
func (d *Document) Era() Era { return d.era }

// Name returns the document's file name
func (d *Document) Name() string { return d.name }

// Root returns the document's root node
func (d *Document) Root() *Node { return d.root }

// Raw returns the decoded JSON value, as handed to the schema compiler
func (d *Document) Raw() any { return d.root.Raw() }

// URL returns the resource URL the document is registered under
func (d *Document) URL() string {
	return BaseURL + d.name
}

// DefinitionURL returns the compiler location of a named definition
func (d *Document) DefinitionURL(typeName string) string {
	return d.URL() + "#/" + DefinitionsKey + "/" + escapePointer(typeName)
}

// Definitions returns the definitions object
func (d *Document) Definitions() *Node {
	defs, _ := d.root.Get(DefinitionsKey)
	return defs
}

// Definition returns one named definition
func (d *Document) Definition(typeName string) (*Node, bool) {
	return d.Definitions().Get(typeName)
}

// DefinitionNames returns every definition key in sorted order
func (d *Document) DefinitionNames() []string {
	return d.Definitions().Keys()
}

// escapePointer escapes a JSON pointer reference token (RFC 6901)
func escapePointer(s string) string {
	s = strings.ReplaceAll(s, "~", "~0")
	return strings.ReplaceAll(s, "/", "~1")
}
