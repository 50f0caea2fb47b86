package governance

import (
	"fmt"

	"github.com/platinummonkey/cip116/pkg/schema"
)

// DefaultAllowedFields is the whitelist of fields a top-level definition may carry
var DefaultAllowedFields = []string{
	"title",
	"description",
	"type",
	"pattern",
	"format",
	"oneOf",
	"anyOf",
	"required",
	"additionalProperties",
	"properties",
	"minimum",
	"maximum",
	"maxLength",
	"minLength",
	"discriminator",
	"enum",
	"patternProperties",
	"items",
	"maxItems",
	"minItems",
	"examples",
}

const titleKey = "title"

// AllowedFieldsRule checks every definition field against the whitelist
type AllowedFieldsRule struct {
	BaseRule
}

// NewAllowedFieldsRule creates the whitelist rule
func NewAllowedFieldsRule() *AllowedFieldsRule {
	return &AllowedFieldsRule{
		BaseRule: BaseRule{
			RuleName:        "allowed-fields",
			RuleCategory:    CategoryStructure,
			RuleSeverity:    SeverityError,
			RuleDescription: "Definitions may only use whitelisted schema fields",
		},
	}
}

// CheckDefinition reports all disallowed fields of one definition together
func (r *AllowedFieldsRule) CheckDefinition(ctx *Context, key string, def *schema.Node) []Violation {
	if !def.IsObject() {
		return []Violation{r.violation(ErrInvalidDefinition, key,
			fmt.Sprintf("definition %s is not an object", key))}
	}

	var bad []string
	for _, field := range def.Keys() {
		if _, ok := ctx.allowed[field]; !ok {
			bad = append(bad, field)
		}
	}
	if len(bad) == 0 {
		return nil
	}

	v := r.violation(ErrDisallowedField, key, disallowedMessage(key, bad))
	v.Fields = bad
	return []Violation{v}
}

// TitleRule checks that every definition's title equals its key
type TitleRule struct {
	BaseRule
}

// NewTitleRule creates the title rule
func NewTitleRule() *TitleRule {
	return &TitleRule{
		BaseRule: BaseRule{
			RuleName:        "title",
			RuleCategory:    CategoryNaming,
			RuleSeverity:    SeverityError,
			RuleDescription: "Definition titles must equal their key",
		},
	}
}

// CheckDefinition validates a definition's title
func (r *TitleRule) CheckDefinition(ctx *Context, key string, def *schema.Node) []Violation {
	// non-objects are reported by allowed-fields
	if !def.IsObject() {
		return nil
	}

	title, ok := def.Get(titleKey)
	if !ok {
		return []Violation{r.violation(ErrTitleMissing, key, "no title set for "+key)}
	}

	s, isString := title.AsString()
	if !isString {
		v := r.violation(ErrTitleMismatch, key, fmt.Sprintf("title of %s is not a string", key))
		v.Found = fmt.Sprint(title.Raw())
		return []Violation{v}
	}
	if s != key {
		v := r.violation(ErrTitleMismatch, key, fmt.Sprintf("title of %s is %q, expected %q", key, s, key))
		v.Found = s
		return []Violation{v}
	}
	return nil
}

// RefClosureRule checks that every $ref resolves to a definition
type RefClosureRule struct {
	BaseRule
}

// NewRefClosureRule creates the reference closure rule
func NewRefClosureRule() *RefClosureRule {
	return &RefClosureRule{
		BaseRule: BaseRule{
			RuleName:        "ref-closure",
			RuleCategory:    CategoryReference,
			RuleSeverity:    SeverityError,
			RuleDescription: "Every $ref must name an existing definition",
		},
	}
}

// CheckDocument reports each unresolved target once, at its first occurrence
func (r *RefClosureRule) CheckDocument(ctx *Context) []Violation {
	defs := ctx.Document.Definitions()
	seen := make(map[string]struct{})

	var violations []Violation
	for _, ref := range ctx.Refs {
		if !ref.Valid {
			v := r.violation(ErrUnresolvedRef, "", fmt.Sprintf("$ref at /%s is not a string", ref.Path))
			v.Path = ref.Path
			violations = append(violations, v)
			continue
		}
		if _, dup := seen[ref.Target]; dup {
			continue
		}
		seen[ref.Target] = struct{}{}

		if target, ok := defs.Get(ref.Target); ok && target.IsObject() {
			continue
		}
		v := r.violation(ErrUnresolvedRef, ref.Target, "$ref not found: "+ref.Target)
		v.Ref = ref.Raw
		v.Path = ref.Path
		violations = append(violations, v)
	}
	return violations
}

// UnreferencedRule flags definitions that no $ref points at. Root types such
// as Transaction are legitimately unreferenced, so it is off by default.
type UnreferencedRule struct {
	BaseRule
}

// NewUnreferencedRule creates the unreferenced definition rule
func NewUnreferencedRule() *UnreferencedRule {
	return &UnreferencedRule{
		BaseRule: BaseRule{
			RuleName:        "unreferenced-definition",
			RuleCategory:    CategoryReference,
			RuleSeverity:    SeverityInfo,
			RuleDescription: "Definitions should be reachable through a $ref",
		},
	}
}

// CheckDocument reports unreferenced definitions in key order
func (r *UnreferencedRule) CheckDocument(ctx *Context) []Violation {
	used := make(map[string]struct{}, len(ctx.Refs))
	for _, ref := range ctx.Refs {
		if ref.Valid {
			used[ref.Target] = struct{}{}
		}
	}

	var violations []Violation
	for _, key := range ctx.Document.DefinitionNames() {
		if _, ok := used[key]; ok {
			continue
		}
		violations = append(violations, r.violation(ErrUnreferenced, key, key+" is not referenced by any $ref"))
	}
	return violations
}
