package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eastfield/archivist/internal/model"
)

func sampleGlobal() *model.GlobalConfig {
	return &model.GlobalConfig{
		SevenZipPath:          "/usr/bin/7z",
		DefaultDestinationDir: "/backups",
		LogRetentionCount:     3,
		BackupTargets: map[string]model.TargetDef{
			"nas": {Type: "unc"},
		},
		BackupLocations: map[string]model.JobDef{
			"docs": {
				Path:        []string{"/home/me/docs"},
				Name:        "docs",
				TargetNames: []string{"nas"},
			},
		},
		BackupSets: map[string]model.SetDef{},
	}
}

// P1: a key set in only one layer resolves to that layer's value.
func TestResolve_SingleLayerValues(t *testing.T) {
	gc := sampleGlobal()
	eff, err := Resolve(gc, "docs", CliOverrides{}, "")
	require.NoError(t, err)
	assert.Equal(t, "/backups", eff.DestinationDir)
	assert.Equal(t, "/usr/bin/7z", eff.SevenZipPath)
	assert.Equal(t, 3, eff.LogRetentionCount)
}

// P1: CLI > Job > Global precedence for LocalRetentionCount (SetDef carries
// no LocalRetentionCount of its own).
func TestResolve_Precedence(t *testing.T) {
	gc := sampleGlobal()
	job := gc.BackupLocations["docs"]
	job.LocalRetentionCount = model.Some(5)
	gc.BackupLocations["docs"] = job

	eff, err := Resolve(gc, "docs", CliOverrides{}, "")
	require.NoError(t, err)
	assert.Equal(t, 5, eff.LocalRetentionCount)

	eff, err = Resolve(gc, "docs", CliOverrides{LocalRetentionCount: model.Some(9)}, "")
	require.NoError(t, err)
	assert.Equal(t, 9, eff.LocalRetentionCount)
}

func TestResolve_DerivedExtensions(t *testing.T) {
	gc := sampleGlobal()
	job := gc.BackupLocations["docs"]
	job.SplitVolumeSize = model.Some("4g")
	job.CreateSFX = model.Some(true)
	gc.BackupLocations["docs"] = job

	eff, err := Resolve(gc, "docs", CliOverrides{}, "")
	require.NoError(t, err)
	assert.Equal(t, ".exe", eff.JobArchiveExtension)
	assert.Equal(t, ".7z", eff.InternalArchiveExtension, "split sets always use .7z internally")
}

func TestResolve_MissingTargetIsConfigError(t *testing.T) {
	gc := sampleGlobal()
	job := gc.BackupLocations["docs"]
	job.TargetNames = []string{"does-not-exist"}
	gc.BackupLocations["docs"] = job

	_, err := Resolve(gc, "docs", CliOverrides{}, "")
	require.Error(t, err)
	kind, ok := model.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, model.KindConfig, kind)
}

func TestResolve_InvalidSplitVolumeSize(t *testing.T) {
	gc := sampleGlobal()
	job := gc.BackupLocations["docs"]
	job.SplitVolumeSize = model.Some("4gigs")
	gc.BackupLocations["docs"] = job

	_, err := Resolve(gc, "docs", CliOverrides{}, "")
	require.Error(t, err)
}

func TestResolve_UnknownJobIsConfigError(t *testing.T) {
	gc := sampleGlobal()
	_, err := Resolve(gc, "nope", CliOverrides{}, "")
	require.Error(t, err)
}
