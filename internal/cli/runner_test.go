package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/sieve/internal/logging"
	"github.com/aretw0/sieve/internal/testutils"
)

func run(t *testing.T, opts Options) (string, error) {
	t.Helper()
	var out bytes.Buffer
	r, err := NewRunner(opts, logging.NewNop(), &out)
	require.NoError(t, err)
	runErr := r.Run()
	return out.String(), runErr
}

func TestRunSingleFile(t *testing.T) {
	dir := testutils.TempTree(t, map[string]string{
		"schema.yaml": "name: str()\n",
		"data.yaml":   "name: Bill\n",
	})

	out, err := run(t, Options{
		Paths:       []string{filepath.Join(dir, "data.yaml")},
		SchemaNames: []string{filepath.Join(dir, "schema.yaml")},
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Validation success")
}

func TestRunDirectory(t *testing.T) {
	dir := testutils.TempTree(t, map[string]string{
		"schema.yaml":  "name: str()\n",
		"one.yaml":     "name: a\n",
		"two.yml":      "name: b\n",
		"sub/three.yaml": "name: c\n",
		"notes.txt":    "ignored\n",
	})

	out, err := run(t, Options{Paths: []string{dir}, Workers: 2})
	require.NoError(t, err)
	assert.Contains(t, out, "Validation success")
}

func TestRunDirectoryReportsFailures(t *testing.T) {
	dir := testutils.TempTree(t, map[string]string{
		"schema.yaml": "name: str()\n",
		"good.yaml":   "name: a\n",
		"bad.yaml":    "name: 7\n",
	})

	out, err := run(t, Options{Paths: []string{dir}})
	require.Error(t, err)
	assert.Contains(t, out, "Validation failed")
	assert.Contains(t, err.Error(), "bad.yaml")
	assert.Contains(t, err.Error(), "name: '7' is not a str.")
	assert.NotContains(t, err.Error(), "good.yaml")
}

func TestRunExcludesMatchingPaths(t *testing.T) {
	dir := testutils.TempTree(t, map[string]string{
		"schema.yaml":      "name: str()\n",
		"good.yaml":        "name: a\n",
		"skip/broken.yaml": "name: 7\n",
	})

	_, err := run(t, Options{
		Paths:    []string{dir},
		Excludes: []string{`skip/`},
	})
	assert.NoError(t, err)
}

func TestRunBadExcludePattern(t *testing.T) {
	_, err := NewRunner(Options{Excludes: []string{`(`}}, logging.NewNop(), &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad exclude pattern")
}

func TestSchemaDiscoveredInParentDirectory(t *testing.T) {
	dir := testutils.TempTree(t, map[string]string{
		"schema.yaml":       "name: str()\n",
		"deep/nested/d.yaml": "name: ok\n",
	})

	_, err := run(t, Options{Paths: []string{filepath.Join(dir, "deep", "nested", "d.yaml")}})
	assert.NoError(t, err)
}

func TestMissingSchemaIsAnError(t *testing.T) {
	dir := testutils.TempTree(t, map[string]string{
		"data.yaml": "name: a\n",
	})

	_, err := run(t, Options{
		Paths:       []string{filepath.Join(dir, "data.yaml")},
		SchemaNames: []string{"nowhere.yaml"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no schema "nowhere.yaml" found`)
}

func TestStrictFlagControlsUnexpectedKeys(t *testing.T) {
	dir := testutils.TempTree(t, map[string]string{
		"schema.yaml": "name: str()\n",
		"data.yaml":   "name: a\nextra: 1\n",
	})

	_, err := run(t, Options{Paths: []string{filepath.Join(dir, "data.yaml")}, Strict: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extra: Unexpected element")

	_, err = run(t, Options{Paths: []string{filepath.Join(dir, "data.yaml")}})
	assert.NoError(t, err)
}

func TestFindSchemaPrefersExplicitPath(t *testing.T) {
	dir := testutils.TempTree(t, map[string]string{
		"alt/special.yaml": "name: int()\n",
		"data.yaml":        "name: 7\n",
	})

	_, err := run(t, Options{
		Paths:       []string{filepath.Join(dir, "data.yaml")},
		SchemaNames: []string{filepath.Join(dir, "alt", "special.yaml")},
	})
	assert.NoError(t, err)
}
