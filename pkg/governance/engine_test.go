package governance

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/cip116/pkg/observability"
	"github.com/platinummonkey/cip116/pkg/schema"
)

func parse(t *testing.T, data string) *schema.Document {
	t.Helper()
	doc, err := schema.Parse(schema.Babbage, "cardano-babbage.json", []byte(data))
	require.NoError(t, err)
	return doc
}

func TestCheckRefs_PublishedEras(t *testing.T) {
	store, err := schema.LoadEmbedded(context.Background())
	require.NoError(t, err)

	for _, doc := range store.Documents() {
		t.Run(string(doc.Era()), func(t *testing.T) {
			assert.NoError(t, CheckRefs(doc))
		})
	}
}

func TestCheckRefs_Failures(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		kind    error
		key     string
		message string
	}{
		{
			name:    "title mismatch",
			doc:     `{"definitions":{"Bar":{"title":"Foo","type":"string"}}}`,
			kind:    ErrTitleMismatch,
			key:     "Bar",
			message: `title of Bar is "Foo", expected "Bar"`,
		},
		{
			name:    "title missing",
			doc:     `{"definitions":{"Bar":{"type":"string"}}}`,
			kind:    ErrTitleMissing,
			key:     "Bar",
			message: "no title set for Bar",
		},
		{
			name: "title not a string",
			doc:  `{"definitions":{"Bar":{"title":1}}}`,
			kind: ErrTitleMismatch,
			key:  "Bar",
		},
		{
			name:    "unresolved ref",
			doc:     `{"definitions":{"A":{"title":"A","properties":{"x":{"$ref":"#/definitions/DoesNotExist"}}}}}`,
			kind:    ErrUnresolvedRef,
			key:     "DoesNotExist",
			message: "$ref not found: DoesNotExist",
		},
		{
			name: "ref outside definitions",
			doc:  `{"$defs":{"x":{"$ref":"#/definitions/DoesNotExist"}},"definitions":{}}`,
			kind: ErrUnresolvedRef,
			key:  "DoesNotExist",
		},
		{
			name:    "disallowed fields",
			doc:     `{"definitions":{"A":{"title":"A","const":1,"$comment":"x"}}}`,
			kind:    ErrDisallowedField,
			key:     "A",
			message: "disallowed property found in A: $comment, const",
		},
		{
			name: "definition not an object",
			doc:  `{"definitions":{"A":"string"}}`,
			kind: ErrInvalidDefinition,
			key:  "A",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckRefs(parse(t, tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)

			var gerr *Error
			require.True(t, errors.As(err, &gerr))
			assert.Equal(t, tt.key, gerr.Key)
			assert.Equal(t, schema.Babbage, gerr.Era)
			if tt.message != "" {
				assert.Equal(t, tt.message, gerr.Message)
				assert.Equal(t, "cardano-babbage.json: "+tt.message, err.Error())
			}
		})
	}
}

func TestCheck_FailureOrder(t *testing.T) {
	// per key: whitelist before title; refs after all definitions
	doc := parse(t, `{"definitions":{
		"B":{"title":"X","bogus":true,"properties":{"p":{"$ref":"#/definitions/Missing"}}},
		"A":{"title":"Y"}
	}}`)

	report := NewEngine(nil).Check(doc)
	require.Len(t, report.Violations, 4)

	var got []string
	for _, v := range report.Violations {
		got = append(got, v.Rule+":"+v.Key)
	}
	assert.Equal(t, []string{"title:A", "allowed-fields:B", "title:B", "ref-closure:Missing"}, got)
	assert.Equal(t, Summary{Total: 4, Errors: 4}, report.Summary)
	assert.False(t, report.Passed())

	err := report.Err()
	assert.ErrorIs(t, err, ErrTitleMismatch)
}

func TestCheck_UnresolvedRefReportedOnce(t *testing.T) {
	doc := parse(t, `{"definitions":{
		"A":{"title":"A","items":{"$ref":"#/definitions/Gone"}},
		"B":{"title":"B","items":{"$ref":"#/definitions/Gone"}},
		"C":{"title":"C","items":{"$ref":{"not":"a string"}}}
	}}`)

	report := NewEngine(nil).Check(doc)
	require.Len(t, report.Violations, 2)
	assert.Equal(t, "definitions/A/items", report.Violations[0].Path)
	assert.Contains(t, report.Violations[1].Message, "is not a string")
}

func TestCheck_DoesNotMutate(t *testing.T) {
	doc := parse(t, `{"definitions":{"A":{"title":"B"}}}`)
	_ = NewEngine(nil).Check(doc)

	def, ok := doc.Definition("A")
	require.True(t, ok)
	title, _ := def.Get("title")
	s, _ := title.AsString()
	assert.Equal(t, "B", s)
	assert.Equal(t, []string{"A"}, doc.Definitions().Keys())
}

func TestEngine_Config(t *testing.T) {
	doc := parse(t, `{"definitions":{
		"A":{"title":"A","deprecated":true},
		"B":{"title":"B","items":{"$ref":"#/definitions/A"}}
	}}`)

	t.Run("default", func(t *testing.T) {
		report := NewEngine(nil).Check(doc)
		require.Len(t, report.Violations, 1)
		assert.Equal(t, []string{"deprecated"}, report.Violations[0].Fields)
	})

	t.Run("extra allowed field and optional rule", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.ExtraAllowedFields = []string{"deprecated"}
		cfg.Rules["unreferenced-definition"] = true
		cfg.Severities["unreferenced-definition"] = SeverityWarning

		report := NewEngine(cfg).Check(doc)
		require.Len(t, report.Violations, 1)
		v := report.Violations[0]
		assert.Equal(t, "unreferenced-definition", v.Rule)
		assert.Equal(t, "B", v.Key)
		assert.Equal(t, SeverityWarning, v.Severity)
		assert.True(t, report.Passed())
		assert.NoError(t, report.Err())
	})

	t.Run("disable rule", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Rules["allowed-fields"] = false
		assert.True(t, NewEngine(cfg).Check(doc).Passed())
	})

	t.Run("ignore definition", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.IgnoreDefinitions = []string{"A"}
		report := NewEngine(cfg).Check(doc)
		assert.True(t, report.Passed(), report.Violations)
	})
}

func TestEngine_RecordsMetrics(t *testing.T) {
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	engine := NewEngine(nil, WithMetrics(metrics), WithLogger(observability.NewNopLogger()))

	engine.Check(parse(t, `{"definitions":{"A":{"title":"Z"}}}`))

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.GovernanceRunsTotal.WithLabelValues("babbage", "fail")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.GovernanceViolationsTotal.WithLabelValues("babbage", "title")))
}

func TestEngine_CheckStore(t *testing.T) {
	store, err := schema.LoadEmbedded(context.Background())
	require.NoError(t, err)

	reports := NewEngine(nil).CheckStore(store)
	require.Len(t, reports, 2)
	assert.Equal(t, schema.Babbage, reports[0].Era)
	for _, r := range reports {
		assert.True(t, r.Passed(), r.Violations)
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []string{"allowed-fields", "ref-closure", "title", "unreferenced-definition"}, r.Names())

	rule, ok := r.GetRule("title")
	require.True(t, ok)
	assert.Equal(t, CategoryNaming, rule.Category())

	enabled := r.GetEnabledRules(DefaultConfig())
	require.Len(t, enabled, 3)
	assert.Equal(t, "allowed-fields", enabled[0].Name())

	r.Register(NewTitleRule())
	assert.Len(t, r.GetAllRules(), 4)
}
