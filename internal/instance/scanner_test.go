package instance

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
}

// P2: instance grouping with a primary archive, split volumes, a checksum
// sidecar, and a pin marker.
func TestScan_GroupsInstanceWithSidecars(t *testing.T) {
	dir := t.TempDir()
	key := "base [2025-Jun-12].7z"
	touch(t, dir, key)
	touch(t, dir, key+".001")
	touch(t, dir, key+".002")
	touch(t, dir, key+".sha256")
	touch(t, dir, key+".pinned")

	instances, ignored, err := Scan(dir, "base", ".7z")
	require.NoError(t, err)
	require.Empty(t, ignored)
	require.Len(t, instances, 1)

	inst := instances[key]
	require.NotNil(t, inst)
	assert.True(t, inst.Pinned)
	assert.Len(t, inst.Files, 4, "primary + 2 volumes + checksum sidecar, not the .pinned marker itself")
	for _, f := range inst.Files {
		assert.NotEqual(t, key+".pinned", f.Name)
	}
}

func TestScan_MissingFirstVolumeStillGroups(t *testing.T) {
	dir := t.TempDir()
	key := "base [2025-Jun-12].7z"
	touch(t, dir, key+".002")
	touch(t, dir, key+".003")

	instances, _, err := Scan(dir, "base", ".7z")
	require.NoError(t, err)
	require.Len(t, instances, 1)
	assert.Len(t, instances[key].Files, 2)
}

func TestScan_NonDateStampedFilesAreIgnored(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "base.7z")
	touch(t, dir, "base [2025-Jun-12].7z")

	instances, ignored, err := Scan(dir, "base", ".7z")
	require.NoError(t, err)
	assert.Len(t, instances, 1)
	assert.Contains(t, ignored, "base.7z")
}

func TestScan_SortTimeIsOldestFileCreationTime(t *testing.T) {
	dir := t.TempDir()
	key := "base [2025-Jun-12].7z"
	touch(t, dir, key)
	touch(t, dir, key+".001")

	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, key), old, old))

	instances, _, err := Scan(dir, "base", ".7z")
	require.NoError(t, err)
	assert.WithinDuration(t, old, instances[key].SortTime, time.Second)
}

// P8: the regex built by KeyPattern matches exactly what BuildKey produces.
func TestKeyPattern_RoundTripsWithBuildKey(t *testing.T) {
	when := time.Date(2025, time.March, 7, 0, 0, 0, 0, time.UTC)
	key := BuildKey("nightly-docs", when, ".7z")
	assert.Equal(t, "nightly-docs [2025-Mar-07].7z", key)

	pattern := KeyPattern("nightly-docs", ".7z")
	assert.Equal(t, key, pattern.FindString(key+".001"))
	assert.Equal(t, key, pattern.FindString(key))
	assert.Empty(t, pattern.FindString("nightly-docs.7z"))
}
