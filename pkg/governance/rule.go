package governance

import (
	"sort"

	"github.com/platinummonkey/cip116/pkg/schema"
)

// Rule is the common surface of every governance rule
type Rule interface {
	Name() string
	Category() Category
	Severity() Severity
	Description() string
}

// DefinitionRule audits one top-level definition at a time. Definition rules
// run per key, in sorted key order, before any DocumentRule.
type DefinitionRule interface {
	Rule
	CheckDefinition(ctx *Context, key string, def *schema.Node) []Violation
}

// DocumentRule audits the document as a whole
type DocumentRule interface {
	Rule
	CheckDocument(ctx *Context) []Violation
}

// Context is shared by all rules of one run
type Context struct {
	Document *schema.Document
	Config   *Config
	// Refs holds every reference found in the document, collected once
	Refs []Reference

	allowed map[string]struct{}
}

// BaseRule provides common functionality for rules
type BaseRule struct {
	RuleName        string
	RuleCategory    Category
	RuleSeverity    Severity
	RuleDescription string
}

func (r *BaseRule) Name() string        { return r.RuleName }
func (r *BaseRule) Category() Category  { return r.RuleCategory }
func (r *BaseRule) Severity() Severity  { return r.RuleSeverity }
func (r *BaseRule) Description() string { return r.RuleDescription }

func (r *BaseRule) violation(kind error, key, message string) Violation {
	return Violation{
		Rule:     r.RuleName,
		Severity: r.RuleSeverity,
		Category: r.RuleCategory,
		Message:  message,
		Key:      key,
		Kind:     kind,
	}
}

// Registry holds rules in registration order, which is also run order
type Registry struct {
	rules []Rule
	index map[string]int
}

// NewRegistry creates a registry holding the built-in rules
func NewRegistry() *Registry {
	r := &Registry{index: make(map[string]int)}
	RegisterDefaultRules(r)
	return r
}

// RegisterDefaultRules registers the built-in governance rules
func RegisterDefaultRules(r *Registry) {
	r.Register(NewAllowedFieldsRule())
	r.Register(NewTitleRule())
	r.Register(NewRefClosureRule())
	r.Register(NewUnreferencedRule())
}

// Register adds a rule, replacing any rule with the same name in place
func (r *Registry) Register(rule Rule) {
	if i, ok := r.index[rule.Name()]; ok {
		r.rules[i] = rule
		return
	}
	r.index[rule.Name()] = len(r.rules)
	r.rules = append(r.rules, rule)
}

// GetRule retrieves a rule by name
func (r *Registry) GetRule(name string) (Rule, bool) {
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.rules[i], true
}

// GetAllRules returns all registered rules in run order
func (r *Registry) GetAllRules() []Rule {
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

// GetEnabledRules returns the rules enabled by config, in run order
func (r *Registry) GetEnabledRules(config *Config) []Rule {
	out := make([]Rule, 0, len(r.rules))
	for _, rule := range r.rules {
		if config.RuleEnabled(rule.Name()) {
			out = append(out, rule)
		}
	}
	return out
}

// Names returns the sorted names of every registered rule
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.rules))
	for _, rule := range r.rules {
		names = append(names, rule.Name())
	}
	sort.Strings(names)
	return names
}
