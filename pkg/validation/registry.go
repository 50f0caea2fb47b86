package validation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/platinummonkey/cip116/pkg/formats"
	"github.com/platinummonkey/cip116/pkg/observability"
	"github.com/platinummonkey/cip116/pkg/schema"
)

// MetaSchemaURL is the dialect every era document is written in
const MetaSchemaURL = "https://json-schema.org/draft/2020-12/schema"

// DefaultCacheSize bounds the number of compiled validators kept in memory
const DefaultCacheSize = 512

type cacheKey struct {
	era      schema.Era
	typeName string
}

// Registry compiles and caches validators for (era, type) pairs.
// It is built once from a Store and is safe for concurrent use.
type Registry struct {
	store     *schema.Store
	formats   []formats.Format
	cacheSize int
	logger    logrus.FieldLogger
	metrics   *observability.Metrics

	// compiler is not safe for concurrent use
	mu       sync.Mutex
	compiler *jsonschema.Compiler
	meta     *jsonschema.Schema

	cache *lru.Cache[cacheKey, *Validator]
}

// Option configures a Registry
type Option func(*Registry)

// WithCacheSize bounds the compiled validator cache
func WithCacheSize(size int) Option {
	return func(r *Registry) { r.cacheSize = size }
}

// WithLogger sets the registry logger
func WithLogger(logger logrus.FieldLogger) Option {
	return func(r *Registry) { r.logger = logger }
}

// WithMetrics records compilations, cache lookups and validations
func WithMetrics(metrics *observability.Metrics) Option {
	return func(r *Registry) { r.metrics = metrics }
}

// WithFormats registers additional format predicates, overriding built-ins of
// the same name
func WithFormats(extra ...formats.Format) Option {
	return func(r *Registry) { r.formats = append(r.formats, extra...) }
}

// NewRegistry builds a registry over every document in store
func NewRegistry(store *schema.Store, opts ...Option) (*Registry, error) {
	if store == nil {
		return nil, errors.New("validation registry requires a schema store")
	}

	r := &Registry{
		store:     store,
		formats:   formats.Default(),
		cacheSize: DefaultCacheSize,
		logger:    observability.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}

	cache, err := lru.New[cacheKey, *Validator](r.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create validator cache: %w", err)
	}
	r.cache = cache

	compiler, err := r.newCompiler()
	if err != nil {
		return nil, err
	}
	r.compiler = compiler

	return r, nil
}

// NewEmbeddedRegistry loads the embedded era documents and builds a registry
func NewEmbeddedRegistry(ctx context.Context, opts ...Option) (*Registry, error) {
	store, err := schema.LoadEmbedded(ctx)
	if err != nil {
		return nil, err
	}
	return NewRegistry(store, opts...)
}

func (r *Registry) newCompiler() (*jsonschema.Compiler, error) {
	c := jsonschema.NewCompiler()
	c.DefaultDraft(jsonschema.Draft2020)
	c.AssertFormat()
	c.AssertVocabs()

	for _, f := range r.formats {
		c.RegisterFormat(schemaFormat(f))
	}

	vocab, err := newDiscriminatorVocabulary()
	if err != nil {
		return nil, err
	}
	c.RegisterVocabulary(vocab)

	for _, doc := range r.store.Documents() {
		if err := c.AddResource(doc.URL(), doc.Raw()); err != nil {
			return nil, fmt.Errorf("failed to register %s: %w", doc.Name(), err)
		}
	}
	return c, nil
}

// schemaFormat adapts a string predicate to the engine. Non-string values
// are left to the type keyword.
func schemaFormat(f formats.Format) *jsonschema.Format {
	return &jsonschema.Format{
		Name: f.Name,
		Validate: func(v any) error {
			s, ok := v.(string)
			if !ok {
				return nil
			}
			if !f.Check(s) {
				return jsonschema.LocalizableError("%q is not valid %s", s, f.Name)
			}
			return nil
		},
	}
}

// Store returns the schema store backing the registry
func (r *Registry) Store() *schema.Store { return r.store }

// ValidatorForType returns the compiled validator for definitions/<typeName>
// in the era's document. Unknown eras and types return schema.ErrUnknownEra
// and schema.ErrUnknownType.
func (r *Registry) ValidatorForType(ctx context.Context, era schema.Era, typeName string) (*Validator, error) {
	doc, err := r.store.Document(era)
	if err != nil {
		return nil, err
	}
	if _, ok := doc.Definition(typeName); !ok {
		return nil, fmt.Errorf("%w: %s has no definition %q", schema.ErrUnknownType, era, typeName)
	}

	key := cacheKey{era: era, typeName: typeName}
	if v, ok := r.cache.Get(key); ok {
		r.metrics.RecordValidatorCache(string(era), true)
		return v, nil
	}
	r.metrics.RecordValidatorCache(string(era), false)

	sch, err := r.compile(ctx, era, doc.DefinitionURL(typeName))
	if err != nil {
		return nil, err
	}

	v := &Validator{era: era, typeName: typeName, schema: sch, metrics: r.metrics}
	r.cache.Add(key, v)
	return v, nil
}

// MkValidatorForType is the predicate form of ValidatorForType
func (r *Registry) MkValidatorForType(ctx context.Context, era schema.Era, typeName string) (func(any) bool, error) {
	v, err := r.ValidatorForType(ctx, era, typeName)
	if err != nil {
		return nil, err
	}
	return v.IsValid, nil
}

func (r *Registry) compile(ctx context.Context, era schema.Era, loc string) (sch *jsonschema.Schema, err error) {
	_, span := observability.Tracer().Start(ctx, "validation.Compile")
	span.SetAttributes(attribute.String("schema.era", string(era)), attribute.String("schema.location", loc))
	defer func() {
		r.metrics.RecordCompilation(string(era), err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	r.mu.Lock()
	defer r.mu.Unlock()

	sch, err = r.compiler.Compile(loc)
	if err != nil {
		r.logger.WithError(err).WithField("location", loc).Error("Schema compilation failed")
		return nil, fmt.Errorf("failed to compile %s: %w", loc, err)
	}
	return sch, nil
}

// CompileAll compiles every definition of an era, returning the first failure
func (r *Registry) CompileAll(ctx context.Context, era schema.Era) error {
	names, err := r.store.Definitions(era)
	if err != nil {
		return err
	}
	for _, name := range names {
		if _, err := r.ValidatorForType(ctx, era, name); err != nil {
			return err
		}
	}
	return nil
}

// CheckMetaSchema validates an era's whole document against the draft
// 2020-12 meta-schema
func (r *Registry) CheckMetaSchema(era schema.Era) (Result, error) {
	doc, err := r.store.Document(era)
	if err != nil {
		return Result{}, err
	}

	r.mu.Lock()
	if r.meta == nil {
		r.meta, err = r.compiler.Compile(MetaSchemaURL)
	}
	meta := r.meta
	r.mu.Unlock()
	if err != nil {
		return Result{}, fmt.Errorf("failed to compile meta-schema: %w", err)
	}

	return newResult(meta.Validate(doc.Raw())), nil
}

// Validator is a compiled validator for one definition
type Validator struct {
	era      schema.Era
	typeName string
	schema   *jsonschema.Schema
	metrics  *observability.Metrics
}

// Era returns the era the validator was compiled for
func (v *Validator) Era() schema.Era { return v.era }

// TypeName returns the definition the validator checks
func (v *Validator) TypeName() string { return v.typeName }

// Validate checks a decoded JSON value. Numbers should be json.Number,
// float64 or int, as produced by UnmarshalJSON or encoding/json.
func (v *Validator) Validate(instance any) Result {
	start := time.Now()
	res := newResult(v.schema.Validate(instance))
	v.metrics.RecordValidation(string(v.era), v.typeName, res.Valid, time.Since(start))
	return res
}

// IsValid reports whether instance validates
func (v *Validator) IsValid(instance any) bool {
	return v.Validate(instance).Valid
}

// ValidateJSON decodes data, keeping numbers exact, and validates it
func (v *Validator) ValidateJSON(data []byte) (Result, error) {
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return Result{}, fmt.Errorf("invalid JSON: %w", err)
	}
	return v.Validate(instance), nil
}
