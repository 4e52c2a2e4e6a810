package backup

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*Manager, afero.Fs) {
	t.Helper()
	var fs = afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/src", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/src/a.txt", []byte("hello"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/src/nested/b.txt", []byte("world!!"), 0o644))

	var m, err = NewManager(fs, "/backups", 4, 16)
	require.NoError(t, err)
	return m, fs
}

func TestCreateCopiesTreeAndWritesSidecar(t *testing.T) {
	var m, fs = newTestManager(t)

	var desc, err = m.Create("snap1", "/src")
	require.NoError(t, err)
	require.Equal(t, "snap1", desc.Name)
	require.Equal(t, 2, desc.TotalFiles)
	require.Equal(t, int64(12), desc.TotalBytes)
	require.ElementsMatch(t, []string{"a.txt", "nested/b.txt"}, desc.Files)

	ok, err := afero.Exists(fs, "/backups/snap1/a.txt")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = afero.Exists(fs, "/backups/snap1/nested/b.txt")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = afero.Exists(fs, "/backups/snap1/MANIFEST.backup")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCreateGeneratesNameWhenEmpty(t *testing.T) {
	var m, _ = newTestManager(t)

	var desc, err = m.Create("", "/src")
	require.NoError(t, err)
	require.NotEmpty(t, desc.Name)
}

func TestCreateRefusesToOverwriteExisting(t *testing.T) {
	var m, _ = newTestManager(t)

	_, err := m.Create("snap1", "/src")
	require.NoError(t, err)

	_, err = m.Create("snap1", "/src")
	require.Error(t, err)
}

func TestRestoreRecreatesTree(t *testing.T) {
	var m, fs = newTestManager(t)

	_, err := m.Create("snap1", "/src")
	require.NoError(t, err)

	require.NoError(t, m.Restore("snap1", "/restored"))

	data, err := afero.ReadFile(fs, "/restored/a.txt")
	require.NoError(t, err)
	require.Equal(t, "hello", string(data))

	data, err = afero.ReadFile(fs, "/restored/nested/b.txt")
	require.NoError(t, err)
	require.Equal(t, "world!!", string(data))
}

func TestCreateIncrementalOnlyCopiesFilesModifiedAfterParent(t *testing.T) {
	var m, fs = newTestManager(t)

	var full, err = m.Create("full", "/src")
	require.NoError(t, err)
	require.Equal(t, 2, full.TotalFiles)
	require.Equal(t, full.CreatedAt, full.ModifiedAt)

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, afero.WriteFile(fs, "/src/c.txt", []byte("new file"), 0o644))

	var inc, ierr = m.CreateIncremental("inc1", "/src", "full")
	require.NoError(t, ierr)
	require.True(t, inc.Incremental)
	require.Equal(t, "full", inc.Parent)
	require.Equal(t, []string{"c.txt"}, inc.Files)

	var reloaded, derr = m.Descriptor("full")
	require.NoError(t, derr)
	require.True(t, reloaded.ModifiedAt.After(reloaded.CreatedAt))
	require.Equal(t, inc.CreatedAt, reloaded.ModifiedAt)
}

func TestDeleteRemovesBackupAndCacheEntry(t *testing.T) {
	var m, fs = newTestManager(t)

	_, err := m.Create("snap1", "/src")
	require.NoError(t, err)

	require.NoError(t, m.Delete("snap1"))

	ok, err := afero.DirExists(fs, "/backups/snap1")
	require.NoError(t, err)
	require.False(t, ok)

	_, err = m.Descriptor("snap1")
	require.Error(t, err)
}

func TestDeleteMissingBackupIsNotFound(t *testing.T) {
	var m, _ = newTestManager(t)
	require.Error(t, m.Delete("nope"))
}

func TestListReturnsNewestFirst(t *testing.T) {
	var m, _ = newTestManager(t)

	_, err := m.Create("first", "/src")
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	_, err = m.Create("second", "/src")
	require.NoError(t, err)

	list, lerr := m.List()
	require.NoError(t, lerr)
	require.Len(t, list, 2)
	require.Equal(t, "second", list[0].Name)
	require.Equal(t, "first", list[1].Name)
}

func TestDescriptorUsesCacheOnSecondLookup(t *testing.T) {
	var m, fs = newTestManager(t)

	_, err := m.Create("snap1", "/src")
	require.NoError(t, err)

	first, ferr := m.Descriptor("snap1")
	require.NoError(t, ferr)

	require.NoError(t, fs.Remove("/backups/snap1/MANIFEST.backup"))

	second, serr := m.Descriptor("snap1")
	require.NoError(t, serr)
	require.Equal(t, first.TotalFiles, second.TotalFiles)
}
