package api

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/cip116/pkg/httputil"
	"github.com/platinummonkey/cip116/pkg/observability"
	"github.com/platinummonkey/cip116/pkg/schema"
)

// listEras handles GET /api/v1/eras
func (s *Server) listEras(w http.ResponseWriter, r *http.Request) {
	docs := s.Registry().Store().Documents()
	resp := ErasResponse{Eras: make([]EraSummary, 0, len(docs))}
	for _, doc := range docs {
		resp.Eras = append(resp.Eras, EraSummary{
			Era:         doc.Era(),
			File:        doc.Name(),
			Definitions: doc.Definitions().Len(),
		})
	}
	_ = httputil.WriteSuccess(w, resp)
}

// listTypes handles GET /api/v1/eras/{era}/types
func (s *Server) listTypes(w http.ResponseWriter, r *http.Request) {
	era, ok := pathEra(w, r)
	if !ok {
		return
	}
	names, err := s.Registry().Store().Definitions(era)
	if err != nil {
		s.writeLookupError(w, r, err)
		return
	}
	_ = httputil.WriteSuccess(w, TypesResponse{Era: era, Types: names})
}

// getDefinition handles GET /api/v1/eras/{era}/types/{type}
func (s *Server) getDefinition(w http.ResponseWriter, r *http.Request) {
	era, typeName, ok := pathEraType(w, r)
	if !ok {
		return
	}
	store := s.Registry().Store()
	node, err := store.Definition(era, typeName)
	if err != nil {
		s.writeLookupError(w, r, err)
		return
	}
	doc, err := store.Document(era)
	if err != nil {
		s.writeLookupError(w, r, err)
		return
	}
	_ = httputil.WriteSuccess(w, DefinitionResponse{
		Era:        era,
		Type:       typeName,
		SchemaURL:  doc.DefinitionURL(typeName),
		Definition: node.Raw(),
	})
}

// validate handles POST /api/v1/eras/{era}/types/{type}/validate.
// The body is the candidate JSON value itself.
func (s *Server) validate(w http.ResponseWriter, r *http.Request) {
	era, typeName, ok := pathEraType(w, r)
	if !ok {
		return
	}

	v, err := s.Registry().ValidatorForType(r.Context(), era, typeName)
	if err != nil {
		s.writeLookupError(w, r, err)
		return
	}

	body, ok := httputil.ReadBodyOrError(w, r)
	if !ok {
		return
	}
	res, err := v.ValidateJSON(body)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	status := http.StatusOK
	if !res.Valid {
		status = http.StatusUnprocessableEntity
		observability.FromContext(r.Context()).WithFields(logrus.Fields{
			"era":        era,
			"type":       typeName,
			"violations": len(res.Violations),
		}).Debug("Value failed validation")
	}
	_ = httputil.WriteJSON(w, status, ValidateResponse{
		Era:        era,
		Type:       typeName,
		Valid:      res.Valid,
		Violations: res.Violations,
	})
}

// governance handles GET /api/v1/eras/{era}/governance
func (s *Server) governance(w http.ResponseWriter, r *http.Request) {
	era, ok := pathEra(w, r)
	if !ok {
		return
	}
	registry := s.Registry()
	doc, err := registry.Store().Document(era)
	if err != nil {
		s.writeLookupError(w, r, err)
		return
	}

	report := s.engine.Check(doc)
	meta, err := registry.CheckMetaSchema(era)
	if err != nil {
		s.writeLookupError(w, r, err)
		return
	}

	_ = httputil.WriteSuccess(w, GovernanceResponse{
		Passed:     report.Passed() && meta.Valid,
		Report:     report,
		MetaSchema: meta,
	})
}

func pathEra(w http.ResponseWriter, r *http.Request) (schema.Era, bool) {
	era, ok := httputil.ParsePathStringOrError(w, r, "era")
	if !ok {
		return "", false
	}
	return schema.NormalizeEra(era), true
}

func pathEraType(w http.ResponseWriter, r *http.Request) (schema.Era, string, bool) {
	era, ok := pathEra(w, r)
	if !ok {
		return "", "", false
	}
	typeName, ok := httputil.ParsePathStringOrError(w, r, "type")
	if !ok {
		return "", "", false
	}
	return era, typeName, true
}

// writeLookupError maps unknown eras and types to 404
func (s *Server) writeLookupError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, schema.ErrUnknownEra) || errors.Is(err, schema.ErrUnknownType) {
		httputil.WriteNotFoundError(w, err.Error())
		return
	}
	observability.FromContext(r.Context()).WithError(err).Error("Schema lookup failed")
	httputil.WriteInternalError(w)
}
