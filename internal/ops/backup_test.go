package ops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestBackupRestoreRoundTrip(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "tasks.json"), `{"users":{}}`)
	writeFile(t, filepath.Join(src, "nested", "focusly.db"), "binary-ish")

	archive := filepath.Join(t.TempDir(), "backup.tar.gz")
	man, err := Backup(src, archive)
	require.NoError(t, err)
	assert.Equal(t, 2, man.Files)
	assert.NotEmpty(t, man.Digest)

	dst := filepath.Join(t.TempDir(), "restored")
	restored, err := Restore(archive, dst)
	require.NoError(t, err)
	require.NotNil(t, restored)
	assert.Equal(t, man.Digest, restored.Digest)

	b, err := os.ReadFile(filepath.Join(dst, "nested", "focusly.db"))
	require.NoError(t, err)
	assert.Equal(t, "binary-ish", string(b))

	// The manifest entry travels in the archive but is not materialized.
	_, err = os.Stat(filepath.Join(dst, manifestName))
	assert.True(t, os.IsNotExist(err))
}

func TestRestore_DetectsTamperedArchive(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "tasks.json"), "original")

	archive := filepath.Join(t.TempDir(), "backup.tar.gz")
	_, err := Backup(src, archive)
	require.NoError(t, err)

	// Restore into a directory that already holds a conflicting extra file:
	// the digest covers the whole restored tree, so the mismatch surfaces.
	dst := t.TempDir()
	writeFile(t, filepath.Join(dst, "stray.txt"), "not in backup")

	_, err = Restore(archive, dst)
	assert.ErrorContains(t, err, "digest mismatch")
}

func TestBackup_RejectsMissingSource(t *testing.T) {
	_, err := Backup(filepath.Join(t.TempDir(), "nope"), filepath.Join(t.TempDir(), "out.tar.gz"))
	assert.Error(t, err)
}

func TestTreeDigest_IsOrderStableAndContentSensitive(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "aaa")
	writeFile(t, filepath.Join(dir, "b.txt"), "bbb")

	d1, err := TreeDigest(dir)
	require.NoError(t, err)
	d2, err := TreeDigest(dir)
	require.NoError(t, err)
	assert.Equal(t, d1, d2)

	writeFile(t, filepath.Join(dir, "b.txt"), "changed")
	d3, err := TreeDigest(dir)
	require.NoError(t, err)
	assert.NotEqual(t, d1, d3)
}

func TestSafeRelPath(t *testing.T) {
	_, err := safeRelPath("../escape")
	assert.Error(t, err)
	_, err = safeRelPath("/abs/path")
	assert.Error(t, err)

	rel, err := safeRelPath("nested/file.json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("nested", "file.json"), rel)
}
