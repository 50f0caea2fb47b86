package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{name: "valid", data: `{"definitions":{"A":{"title":"A","type":"string"}}}`},
		{name: "array root", data: `[]`, wantErr: ErrNotObject},
		{name: "missing definitions", data: `{"title":"x"}`, wantErr: ErrNoDefinitions},
		{name: "definitions not an object", data: `{"definitions":[]}`, wantErr: ErrNoDefinitions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse(Babbage, "test.json", []byte(tt.data))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, Babbage, doc.Era())
			assert.Equal(t, "test.json", doc.Name())
		})
	}

	_, err := Parse(Babbage, "broken.json", []byte(`{"definitions":`))
	assert.Error(t, err)
}

func TestDocument_Accessors(t *testing.T) {
	doc, err := Parse(Conway, "cardano-conway.json", []byte(`{
		"definitions": {
			"b/c": {"title": "b/c"},
			"A": {"title": "A", "maximum": 18446744073709551616}
		}
	}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "b/c"}, doc.DefinitionNames())
	assert.Equal(t, BaseURL+"cardano-conway.json", doc.URL())
	assert.Equal(t, BaseURL+"cardano-conway.json#/definitions/b~1c", doc.DefinitionURL("b/c"))

	a, ok := doc.Definition("A")
	require.True(t, ok)
	bound, _ := a.Get("maximum")
	assert.Equal(t, json.Number("18446744073709551616"), bound.Value())

	_, ok = doc.Definition("Missing")
	assert.False(t, ok)
}

func TestNormalizeEra(t *testing.T) {
	assert.Equal(t, Babbage, NormalizeEra(" Babbage "))
	assert.Equal(t, Conway, NormalizeEra("CONWAY"))
	assert.Equal(t, Era("shelley"), NormalizeEra("shelley"))
}
