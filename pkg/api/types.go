package api

import (
	"github.com/platinummonkey/cip116/pkg/governance"
	"github.com/platinummonkey/cip116/pkg/schema"
	"github.com/platinummonkey/cip116/pkg/validation"
)

// EraSummary describes one loaded era document
type EraSummary struct {
	Era         schema.Era `json:"era"`
	File        string     `json:"file"`
	Definitions int        `json:"definitions"`
}

// ErasResponse is returned by GET /api/v1/eras
type ErasResponse struct {
	Eras []EraSummary `json:"eras"`
}

// TypesResponse is returned by GET /api/v1/eras/{era}/types
type TypesResponse struct {
	Era   schema.Era `json:"era"`
	Types []string   `json:"types"`
}

// DefinitionResponse is returned by GET /api/v1/eras/{era}/types/{type}
type DefinitionResponse struct {
	Era        schema.Era `json:"era"`
	Type       string     `json:"type"`
	SchemaURL  string     `json:"schema_url"`
	Definition any        `json:"definition"`
}

// ValidateResponse is returned by POST .../validate
type ValidateResponse struct {
	Era        schema.Era             `json:"era"`
	Type       string                 `json:"type"`
	Valid      bool                   `json:"valid"`
	Violations []validation.Violation `json:"violations,omitempty"`
}

// GovernanceResponse is returned by GET /api/v1/eras/{era}/governance
type GovernanceResponse struct {
	Passed     bool              `json:"passed"`
	Report     governance.Report `json:"report"`
	MetaSchema validation.Result `json:"meta_schema"`
}
