package fileutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAtomic_ReplacesContent(t *testing.T) {
	t.Parallel()
	target := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, os.WriteFile(target, []byte("old"), 0o644)) //nolint:gosec // G306: test file
	require.NoError(t, WriteAtomic(target, []byte("new"), 0o600))

	data, err := os.ReadFile(target) //nolint:gosec // G304: test path
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(target))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestWriteAtomic_CreatesParents(t *testing.T) {
	t.Parallel()
	target := filepath.Join(t.TempDir(), "a", "b", "config.yaml")

	require.NoError(t, WriteAtomic(target, []byte("x"), 0o600))
	_, err := os.Stat(target)
	require.NoError(t, err)
}

func TestWriteAtomic_FailureLeavesOriginalFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	tmpDir := t.TempDir()
	target := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(target, []byte("original"), 0o644)) //nolint:gosec // G306: test file

	require.NoError(t, os.Chmod(tmpDir, 0o500)) //nolint:gosec // G302: intentionally restrictive
	defer func() {
		_ = os.Chmod(tmpDir, 0o700) //nolint:gosec // G302: restoring perms
	}()

	require.Error(t, WriteAtomic(target, []byte("replacement"), 0o600))

	data, err := os.ReadFile(target) //nolint:gosec // G304: test path
	require.NoError(t, err)
	assert.Equal(t, "original", string(data))
}

func TestWriteAtomic_EmptyPath(t *testing.T) {
	t.Parallel()
	require.ErrorIs(t, WriteAtomic("", []byte("x"), 0o600), ErrEmptyPath)
}
