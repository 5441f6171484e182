package testsupp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/otiai10/copy"
	"github.com/stretchr/testify/require"
)

// CopyFixtures copies the fixture tree at src into a fresh temporary directory
// and returns that directory. Tests may modify the copy freely.
func CopyFixtures(t *testing.T, src string) string {
	t.Helper()

	dst := t.TempDir()
	require.NoError(t, copy.Copy(src, dst))
	return dst
}

// WriteFile creates name under dir with the given content, creating parent directories.
func WriteFile(t *testing.T, dir string, name string, content string) string {
	t.Helper()

	p := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), os.ModePerm))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}
