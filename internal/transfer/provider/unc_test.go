package provider

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eastfield/archivist/internal/model"
)

func TestUNCProvider_ValidateSettingsRequiresPath(t *testing.T) {
	p := UNCProvider{}
	err := p.ValidateSettings(model.TargetDef{Type: "unc"})
	assert.Error(t, err)

	err = p.ValidateSettings(model.TargetDef{Type: "unc", TargetSpecificSettings: map[string]any{"path": "/tmp"}})
	assert.NoError(t, err)
}

func TestUNCProvider_TransferCopiesFile(t *testing.T) {
	srcDir := t.TempDir()
	destDir := t.TempDir()
	srcPath := filepath.Join(srcDir, "nightly [2026-Jan-01].7z")
	require.NoError(t, os.WriteFile(srcPath, []byte("archive-bytes"), 0o644))

	target := model.TargetDef{Type: "unc", TargetSpecificSettings: map[string]any{"path": destDir}}
	remotePath, size, err := (UNCProvider{}).Transfer(context.Background(), nil, srcPath, target)
	require.NoError(t, err)
	assert.Equal(t, int64(len("archive-bytes")), size)

	contents, err := os.ReadFile(remotePath)
	require.NoError(t, err)
	assert.Equal(t, "archive-bytes", string(contents))
}

func TestUNCProvider_ListRemoteInstancesFiltersByBaseName(t *testing.T) {
	destDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(destDir, "nightly [2026-Jan-01].7z"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(destDir, "other [2026-Jan-01].7z"), []byte("b"), 0o644))

	target := model.TargetDef{Type: "unc", TargetSpecificSettings: map[string]any{"path": destDir}}
	refs, err := (UNCProvider{}).ListRemoteInstances(context.Background(), target, "nightly", ".7z")
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "nightly [2026-Jan-01].7z", refs[0].Name)
}

func TestUNCProvider_DeleteRemoteRemovesFile(t *testing.T) {
	destDir := t.TempDir()
	path := filepath.Join(destDir, "nightly [2026-Jan-01].7z")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))

	err := (UNCProvider{}).DeleteRemote(context.Background(), model.TargetDef{}, model.FileRef{Path: path})
	require.NoError(t, err)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestUNCProvider_DeleteRemoteMissingFileIsNotError(t *testing.T) {
	err := (UNCProvider{}).DeleteRemote(context.Background(), model.TargetDef{}, model.FileRef{Path: "/does/not/exist"})
	assert.NoError(t, err)
}
