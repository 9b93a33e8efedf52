package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eastfield/archivist/internal/archiver"
	"github.com/eastfield/archivist/internal/logging"
	"github.com/eastfield/archivist/internal/model"
	"github.com/eastfield/archivist/internal/runctx"
)

func newTestRC() *runctx.RunContext {
	return runctx.New(context.Background(), logging.Discard, model.NewJobReport("job", ""), runctx.ConfirmPolicy{})
}

func TestCleanStaleVolumeParts_RemovesMatchingParts(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "nightly [2026-Jan-01].7z")
	require.NoError(t, os.WriteFile(archivePath+".001", []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(archivePath+".002", []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(archivePath+".txt", []byte("x"), 0o644))

	cleanStaleVolumeParts(newTestRC(), archivePath)

	_, err := os.Stat(archivePath + ".001")
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(archivePath + ".002")
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(archivePath + ".txt")
	assert.NoError(t, err, "non-volume-part file must survive")
}

func TestDiscoverVolumeParts_FindsNumberedParts(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "nightly [2026-Jan-01].7z")
	require.NoError(t, os.WriteFile(archivePath+".001", []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(archivePath+".002", []byte("x"), 0o644))

	parts := discoverVolumeParts(archivePath)
	assert.Len(t, parts, 2)
}

func TestRemapSources_UsesShadowPathWhenActive(t *testing.T) {
	session := model.NewVssSession()
	session.OriginalToShadowPath["/data/a"] = "/shadow/data/a"
	remapped := remapSources([]string{"/data/a", "/data/b"}, session)
	assert.Equal(t, []string{"/shadow/data/a", "/data/b"}, remapped)
}

func TestRemapSources_PassesThroughWhenNoSession(t *testing.T) {
	remapped := remapSources([]string{"/data/a"}, nil)
	assert.Equal(t, []string{"/data/a"}, remapped)
}

func TestFreeSpaceCheck_SkippedWhenNotConfigured(t *testing.T) {
	p := New(archiver.New("7z"))
	eff := &model.EffectiveJobConfig{DestinationDir: t.TempDir(), MinimumRequiredFreeSpaceGB: 0}
	assert.NoError(t, p.freeSpaceCheck(newTestRC(), eff))
}

func TestFreeSpaceCheck_FailsHardWhenExitOnLowSpace(t *testing.T) {
	p := New(archiver.New("7z"))
	eff := &model.EffectiveJobConfig{
		DestinationDir:             t.TempDir(),
		MinimumRequiredFreeSpaceGB: 1e12, // absurdly high, guaranteed to trip
		ExitOnLowSpace:             true,
	}
	err := p.freeSpaceCheck(newTestRC(), eff)
	require.Error(t, err)
	kind, ok := model.KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, model.KindEnv, kind)
}

func TestFreeSpaceCheck_WarnsWhenNotExitOnLowSpace(t *testing.T) {
	p := New(archiver.New("7z"))
	eff := &model.EffectiveJobConfig{
		DestinationDir:             t.TempDir(),
		MinimumRequiredFreeSpaceGB: 1e12,
		ExitOnLowSpace:             false,
	}
	assert.NoError(t, p.freeSpaceCheck(newTestRC(), eff))
}

func TestChecksumAndManifest_WritesSingleFileSidecar(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "nightly [2026-Jan-01].7z")
	require.NoError(t, os.WriteFile(archivePath, []byte("archive-bytes"), 0o644))

	p := New(archiver.New("7z"))
	eff := &model.EffectiveJobConfig{GenerateArchiveChecksum: true, ChecksumAlgorithm: model.ChecksumSHA256}
	require.NoError(t, p.checksumAndManifest(newTestRC(), eff, "nightly [2026-Jan-01].7z", archivePath, nil, ""))

	digest, err := os.ReadFile(archivePath + ".sha256")
	require.NoError(t, err)
	assert.Len(t, string(digest), 65) // 64 hex chars + newline
}

func TestChecksumAndManifest_WritesSplitManifest(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "nightly [2026-Jan-01].7z")
	require.NoError(t, os.WriteFile(archivePath, []byte("part0"), 0o644))
	part1 := archivePath + ".001"
	require.NoError(t, os.WriteFile(part1, []byte("part1"), 0o644))

	p := New(archiver.New("7z"))
	eff := &model.EffectiveJobConfig{GenerateSplitArchiveManifest: true, ChecksumAlgorithm: model.ChecksumMD5}
	require.NoError(t, p.checksumAndManifest(newTestRC(), eff, "nightly [2026-Jan-01].7z", archivePath, []string{part1}, ""))

	manifest, err := os.ReadFile(filepath.Join(dir, "nightly [2026-Jan-01].7z.manifest.md5"))
	require.NoError(t, err)
	assert.Contains(t, string(manifest), "nightly [2026-Jan-01].7z")
	assert.Contains(t, string(manifest), filepath.Base(part1))
}
