package schema

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrUnknownEra is returned when no document is registered for an era
	ErrUnknownEra = errors.New("unknown era")
	// ErrUnknownType is returned when an era's document has no such definition
	ErrUnknownType = errors.New("unknown type")
	// ErrEmptyStore is returned by Ready when no documents are loaded
	ErrEmptyStore = errors.New("schema store is empty")
)

// Store holds one immutable Document per era. A Store never changes after
// construction and is safe for concurrent use.
type Store struct {
	docs map[Era]*Document
}

// NewStore indexes documents by era. Two documents for the same era is an error.
func NewStore(docs ...*Document) (*Store, error) {
	s := &Store{docs: make(map[Era]*Document, len(docs))}
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		if _, dup := s.docs[doc.Era()]; dup {
			return nil, fmt.Errorf("duplicate document for era %s", doc.Era())
		}
		s.docs[doc.Era()] = doc
	}
	return s, nil
}

// Document returns the document registered for era
func (s *Store) Document(era Era) (*Document, error) {
	doc, ok := s.docs[era]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEra, era)
	}
	return doc, nil
}

// Documents returns every document, ordered by era
func (s *Store) Documents() []*Document {
	out := make([]*Document, 0, len(s.docs))
	for _, era := range s.Eras() {
		out = append(out, s.docs[era])
	}
	return out
}

// Eras returns the registered eras in sorted order
func (s *Store) Eras() []Era {
	eras := make([]Era, 0, len(s.docs))
	for era := range s.docs {
		eras = append(eras, era)
	}
	sort.Slice(eras, func(i, j int) bool { return eras[i] < eras[j] })
	return eras
}

// ParseEra resolves an era tag, case-insensitively, against the loaded eras
func (s *Store) ParseEra(tag string) (Era, error) {
	era := NormalizeEra(tag)
	if _, ok := s.docs[era]; !ok {
		known := make([]string, 0, len(s.docs))
		for _, e := range s.Eras() {
			known = append(known, string(e))
		}
		return "", fmt.Errorf("%w %q (known: %s)", ErrUnknownEra, tag, strings.Join(known, ", "))
	}
	return era, nil
}

// Definitions returns the sorted definition names of an era
func (s *Store) Definitions(era Era) ([]string, error) {
	doc, err := s.Document(era)
	if err != nil {
		return nil, err
	}
	return doc.DefinitionNames(), nil
}

// Definition returns one named definition of an era
func (s *Store) Definition(era Era, typeName string) (*Node, error) {
	doc, err := s.Document(era)
	if err != nil {
		return nil, err
	}
	node, ok := doc.Definition(typeName)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no definition %q", ErrUnknownType, era, typeName)
	}
	return node, nil
}

// Ready reports whether the store can serve lookups
func (s *Store) Ready(context.Context) error {
	if s == nil || len(s.docs) == 0 {
		return ErrEmptyStore
	}
	return nil
}
