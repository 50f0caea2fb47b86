package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/cip116/pkg/validation"
)

func writeFixtures(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestRunCoverage(t *testing.T) {
	tests := []struct {
		name     string
		fixtures map[string]string
		strict   bool
		wantErr  bool
		wantOut  []string
	}{
		{
			name: "full coverage",
			fixtures: map[string]string{
				"Port.json": `{"valid": [0, 65535], "invalid": [-1, 65536]}`,
				"Pair.json": `{"valid": [{"port": 1}], "invalid": [{}]}`,
			},
			strict:  true,
			wantOut: []string{"test: 2/2 types covered (100.0%)"},
		},
		{
			name: "partial coverage passes without strict",
			fixtures: map[string]string{
				"Port.json": `{"valid": [1]}`,
			},
			wantOut: []string{"1/2 types covered (50.0%)", "uncovered: 1 types"},
		},
		{
			name: "partial coverage fails with strict",
			fixtures: map[string]string{
				"Port.json": `{"valid": [1]}`,
			},
			strict:  true,
			wantErr: true,
		},
		{
			name: "fixture failure",
			fixtures: map[string]string{
				"Port.json": `{"valid": [1, 70000]}`,
			},
			wantErr: true,
			wantOut: []string{"FAIL Port[1] expected valid: 70000"},
		},
		{
			name: "unknown type",
			fixtures: map[string]string{
				"Stale.json": `{"valid": [1]}`,
			},
			wantErr: true,
			wantOut: []string{"unknown type in fixtures: Stale"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, eras := writeSchemaDir(t, craftedDoc)
			out := captureOutput(t, "")
			err := runCoverage(context.Background(), coverageOptions{
				sourceFlags: sourceFlags{dir: dir, erasFile: eras},
				era:         "test",
				fixtures:    writeFixtures(t, tt.fixtures),
				strict:      tt.strict,
			})
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrCoverageFailed)
			} else {
				assert.NoError(t, err)
			}
			for _, want := range tt.wantOut {
				assert.Contains(t, out.String(), want)
			}
		})
	}
}

func TestRunCoverage_JSON(t *testing.T) {
	dir, eras := writeSchemaDir(t, craftedDoc)
	out := captureOutput(t, "")
	err := runCoverage(context.Background(), coverageOptions{
		sourceFlags: sourceFlags{dir: dir, erasFile: eras},
		era:         "test",
		fixtures:    writeFixtures(t, map[string]string{"Port.json": `{"valid": [8080]}`}),
		format:      "json",
	})
	require.NoError(t, err)

	var report validation.CoverageReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 1, report.Covered)
	assert.Equal(t, []string{"Pair"}, report.Uncovered)
}

func TestRunCoverage_ShippedFixtures(t *testing.T) {
	out := captureOutput(t, "")
	err := runCoverage(context.Background(), coverageOptions{
		era:      "babbage",
		fixtures: filepath.Join("testdata", "fixtures", "babbage"),
		format:   "json",
	})
	require.NoError(t, err)

	var report validation.CoverageReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Empty(t, report.Failures)
	assert.Empty(t, report.Unknown)
	assert.Equal(t, 6, report.Covered)
	assert.NotContains(t, report.Uncovered, "Address")

	err = runCoverage(context.Background(), coverageOptions{
		era:      "babbage",
		fixtures: filepath.Join("testdata", "fixtures", "babbage"),
		strict:   true,
	})
	assert.ErrorIs(t, err, ErrCoverageFailed)
}

func TestRunCoverage_RequiredFlags(t *testing.T) {
	captureOutput(t, "")
	err := runCoverage(context.Background(), coverageOptions{era: "babbage"})
	assert.EqualError(t, err, "-fixtures is required")

	err = runCoverage(context.Background(), coverageOptions{fixtures: t.TempDir()})
	assert.EqualError(t, err, "-era is required")
}
