package validation

import (
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/message"
)

// DiscriminatorVocabularyURL identifies the discriminator keyword vocabulary
const DiscriminatorVocabularyURL = "https://cips.cardano.org/cip116/vocab/discriminator"

const discriminatorKeyword = "discriminator"

// discriminatorMetaSchema only requires the keyword value to be an object;
// a non-string propertyName must fail validation, not compilation.
const discriminatorMetaSchema = `{
	"properties": {
		"discriminator": {"type": "object"}
	}
}`

// discriminator checks that an object instance carries its tag property.
// Branch selection stays with oneOf.
type discriminator struct {
	propertyName any
}

func (d *discriminator) Validate(ctx *jsonschema.ValidatorContext, v any) {
	obj, ok := v.(map[string]any)
	if !ok {
		return
	}
	name, ok := d.propertyName.(string)
	if !ok {
		ctx.AddError(&DiscriminatorNameError{PropertyName: d.propertyName})
		return
	}
	if _, ok := obj[name]; !ok {
		ctx.AddError(&DiscriminatorMissingError{PropertyName: name})
	}
}

func newDiscriminatorVocabulary() (*jsonschema.Vocabulary, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(discriminatorMetaSchema))
	if err != nil {
		return nil, err
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(DiscriminatorVocabularyURL, doc); err != nil {
		return nil, err
	}
	sch, err := c.Compile(DiscriminatorVocabularyURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile discriminator vocabulary: %w", err)
	}

	return &jsonschema.Vocabulary{
		URL:     DiscriminatorVocabularyURL,
		Schema:  sch,
		Compile: compileDiscriminator,
	}, nil
}

func compileDiscriminator(_ *jsonschema.CompilerContext, obj map[string]any) (jsonschema.SchemaExt, error) {
	v, ok := obj[discriminatorKeyword]
	if !ok {
		return nil, nil
	}
	d, ok := v.(map[string]any)
	if !ok {
		return nil, nil
	}
	return &discriminator{propertyName: d["propertyName"]}, nil
}

// DiscriminatorNameError is reported when propertyName is not a string
type DiscriminatorNameError struct {
	PropertyName any
}

func (*DiscriminatorNameError) KeywordPath() []string {
	return []string{discriminatorKeyword, "propertyName"}
}

func (e *DiscriminatorNameError) LocalizedString(p *message.Printer) string {
	return p.Sprintf("discriminator propertyName must be a string, got %v", e.PropertyName)
}

// DiscriminatorMissingError is reported when the tag property is absent
type DiscriminatorMissingError struct {
	PropertyName string
}

func (*DiscriminatorMissingError) KeywordPath() []string {
	return []string{discriminatorKeyword}
}

func (e *DiscriminatorMissingError) LocalizedString(p *message.Printer) string {
	return p.Sprintf("missing discriminator property %s", e.PropertyName)
}
