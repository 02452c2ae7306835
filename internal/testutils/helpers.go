package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteFile writes content to name inside dir, creating intermediate
// directories as needed, and returns the full path. It fails the test
// immediately on error.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755), "Failed to create fixture dir")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644), "Failed to write fixture")
	return path
}

// TempTree creates a temp directory populated with the given files,
// mapping relative name to content, and returns the directory.
func TempTree(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		WriteFile(t, dir, name, content)
	}
	return dir
}
