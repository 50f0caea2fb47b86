package governance

import (
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/cip116/pkg/observability"
	"github.com/platinummonkey/cip116/pkg/schema"
)

// Engine runs the enabled governance rules against documents
type Engine struct {
	config   *Config
	registry *Registry
	logger   logrus.FieldLogger
	metrics  *observability.Metrics
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the engine logger
func WithLogger(logger logrus.FieldLogger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithMetrics records every run in metrics
func WithMetrics(metrics *observability.Metrics) Option {
	return func(e *Engine) { e.metrics = metrics }
}

// WithRegistry replaces the built-in rule registry
func WithRegistry(registry *Registry) Option {
	return func(e *Engine) { e.registry = registry }
}

// NewEngine creates a new governance engine. A nil config uses DefaultConfig.
func NewEngine(config *Config, opts ...Option) *Engine {
	if config == nil {
		config = DefaultConfig()
	}

	e := &Engine{
		config:   config,
		registry: NewRegistry(),
		logger:   observability.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry returns the engine's rule registry
func (e *Engine) Registry() *Registry { return e.registry }

// Check audits one document. Definition rules run per definition in sorted
// key order, then document rules run over the collected references.
// The document is never modified.
func (e *Engine) Check(doc *schema.Document) Report {
	report := Report{
		Era:        doc.Era(),
		File:       doc.Name(),
		Violations: make([]Violation, 0),
	}

	var (
		defRules []DefinitionRule
		docRules []DocumentRule
	)
	for _, rule := range e.registry.GetEnabledRules(e.config) {
		switch r := rule.(type) {
		case DefinitionRule:
			defRules = append(defRules, r)
		case DocumentRule:
			docRules = append(docRules, r)
		}
	}

	ctx := &Context{
		Document: doc,
		Config:   e.config,
		Refs:     CollectRefs(doc.Root()),
		allowed:  e.config.allowedSet(),
	}

	defs := doc.Definitions()
	for _, key := range doc.DefinitionNames() {
		if e.config.ignored(key) {
			continue
		}
		def, _ := defs.Get(key)
		for _, rule := range defRules {
			report.Violations = append(report.Violations, e.apply(rule, rule.CheckDefinition(ctx, key, def))...)
		}
	}
	for _, rule := range docRules {
		report.Violations = append(report.Violations, e.apply(rule, rule.CheckDocument(ctx))...)
	}

	report.Summary = summarize(report.Violations)
	e.metrics.RecordGovernance(string(doc.Era()), report.Passed(), report.ByRule())
	e.logger.WithFields(logrus.Fields{
		"era":        doc.Era(),
		"file":       doc.Name(),
		"violations": report.Summary.Total,
		"errors":     report.Summary.Errors,
	}).Debug("Governance check complete")

	return report
}

// CheckStore audits every document of a store, ordered by era
func (e *Engine) CheckStore(store *schema.Store) []Report {
	docs := store.Documents()
	reports := make([]Report, 0, len(docs))
	for _, doc := range docs {
		reports = append(reports, e.Check(doc))
	}
	return reports
}

func (e *Engine) apply(rule Rule, violations []Violation) []Violation {
	for i := range violations {
		violations[i].Severity = e.config.SeverityFor(rule.Name(), violations[i].Severity)
	}
	return violations
}

// CheckRefs certifies a document for publication with the default rules.
// It returns the first violation found as an *Error, or nil.
func CheckRefs(doc *schema.Document) error {
	return NewEngine(nil).Check(doc).Err()
}
