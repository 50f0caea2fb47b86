package validation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/platinummonkey/cip116/pkg/schema"
)

// FixtureExt is the file extension of fixture files
const FixtureExt = ".json"

// Fixture lists sample values for one type, in a file named <Type>.json:
//
//	{"valid": ["aa", ""], "invalid": ["aA", "a"]}
type Fixture struct {
	Valid   []json.RawMessage `json:"valid"`
	Invalid []json.RawMessage `json:"invalid"`
}

// LoadFixtures reads every <Type>.json file at the root of fsys
func LoadFixtures(fsys fs.FS) (map[string]Fixture, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}

	out := make(map[string]Fixture)
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != FixtureExt {
			continue
		}
		data, err := fs.ReadFile(fsys, entry.Name())
		if err != nil {
			return nil, err
		}
		var f Fixture
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("fixture %s: %w", entry.Name(), err)
		}
		out[strings.TrimSuffix(entry.Name(), FixtureExt)] = f
	}
	return out, nil
}

// CoverageReport summarizes fixture coverage of one era
type CoverageReport struct {
	Era schema.Era `json:"era"`
	// Uncovered lists definitions with no fixture file
	Uncovered []string `json:"uncovered"`
	// Unknown lists fixture files naming no definition
	Unknown []string `json:"unknown"`
	// Failures lists fixture values whose outcome was not the expected one
	Failures []FixtureFailure `json:"failures"`
	Covered  int              `json:"covered"`
	Total    int              `json:"total"`
}

// FixtureFailure is a fixture value that validated contrary to expectation
type FixtureFailure struct {
	Type     string `json:"type"`
	Index    int    `json:"index"`
	Expected bool   `json:"expected_valid"`
	Value    string `json:"value"`
	Detail   string `json:"detail,omitempty"`
}

// Passed reports full coverage with every fixture behaving as expected
func (c CoverageReport) Passed() bool {
	return len(c.Uncovered) == 0 && len(c.Unknown) == 0 && len(c.Failures) == 0
}

// Coverage checks that every definition of era has a fixture and that every
// fixture value validates as declared
func (r *Registry) Coverage(ctx context.Context, era schema.Era, fixtures map[string]Fixture) (CoverageReport, error) {
	names, err := r.store.Definitions(era)
	if err != nil {
		return CoverageReport{}, err
	}

	report := CoverageReport{Era: era, Total: len(names)}
	defined := make(map[string]struct{}, len(names))
	for _, name := range names {
		defined[name] = struct{}{}
		fixture, ok := fixtures[name]
		if !ok {
			report.Uncovered = append(report.Uncovered, name)
			continue
		}
		report.Covered++

		v, err := r.ValidatorForType(ctx, era, name)
		if err != nil {
			return CoverageReport{}, err
		}
		report.Failures = append(report.Failures, runFixture(v, fixture.Valid, true)...)
		report.Failures = append(report.Failures, runFixture(v, fixture.Invalid, false)...)
	}

	for name := range fixtures {
		if _, ok := defined[name]; !ok {
			report.Unknown = append(report.Unknown, name)
		}
	}
	sort.Strings(report.Unknown)

	return report, nil
}

func runFixture(v *Validator, values []json.RawMessage, expected bool) []FixtureFailure {
	var failures []FixtureFailure
	for i, raw := range values {
		instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			failures = append(failures, FixtureFailure{
				Type: v.TypeName(), Index: i, Expected: expected, Value: string(raw), Detail: err.Error(),
			})
			continue
		}
		res := v.Validate(instance)
		if res.Valid == expected {
			continue
		}
		f := FixtureFailure{Type: v.TypeName(), Index: i, Expected: expected, Value: string(raw)}
		if err := res.Error(); err != nil {
			f.Detail = err.Error()
		}
		failures = append(failures, f)
	}
	return failures
}
