package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const craftedDoc = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "definitions": {
    "Port": {"title": "Port", "type": "integer", "minimum": 0, "maximum": 65535},
    "Pair": {
      "title": "Pair",
      "type": "object",
      "properties": {"port": {"$ref": "#/definitions/Port"}},
      "required": ["port"],
      "additionalProperties": false
    }
  }
}`

// writeSchemaDir writes doc as the only era "test" and returns the dir and
// eras file
func writeSchemaDir(t *testing.T, doc string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.json"), []byte(doc), 0o644))
	eras := filepath.Join(t.TempDir(), "eras.yaml")
	require.NoError(t, os.WriteFile(eras, []byte("test: test.json\n"), 0o644))
	return dir, eras
}

// captureOutput swaps stdout and stdin for the duration of the test
func captureOutput(t *testing.T, input string) *bytes.Buffer {
	t.Helper()
	var out bytes.Buffer
	oldOut, oldIn := stdout, stdin
	stdout, stdin = &out, strings.NewReader(input)
	t.Cleanup(func() { stdout, stdin = oldOut, oldIn })
	return &out
}
