package orchestrator

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eastfield/archivist/internal/model"
)

func TestSelectJobs_SetNameUsesSetJobNamesAndPolicy(t *testing.T) {
	global := &model.GlobalConfig{
		BackupSets: map[string]model.SetDef{
			"nightly": {JobNames: []string{"db", "files"}, OnErrorInJob: model.OnErrorStopSet},
		},
	}
	names, onError, err := selectJobs(Options{Global: global, SetName: "nightly"})
	require.NoError(t, err)
	assert.Equal(t, []string{"db", "files"}, names)
	assert.Equal(t, model.OnErrorStopSet, onError)
}

func TestSelectJobs_UnknownSetIsConfigError(t *testing.T) {
	global := &model.GlobalConfig{BackupSets: map[string]model.SetDef{}}
	_, _, err := selectJobs(Options{Global: global, SetName: "missing"})
	require.Error(t, err)
	kind, ok := model.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, model.KindConfig, kind)
}

func TestSelectJobs_ExplicitJobNamesNeverStopSet(t *testing.T) {
	global := &model.GlobalConfig{}
	names, onError, err := selectJobs(Options{Global: global, JobNames: []string{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)
	assert.Equal(t, model.OnErrorContinueSet, onError)
}

func TestSelectJobs_NoSelectionRunsEverySortedJob(t *testing.T) {
	global := &model.GlobalConfig{
		BackupLocations: map[string]model.JobDef{
			"zeta": {}, "alpha": {},
		},
	}
	names, _, err := selectJobs(Options{Global: global})
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, names)
}

func TestRun_MaintenanceModeFileBlocksRun(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "MAINTENANCE")
	require.NoError(t, os.WriteFile(marker, []byte("down for upgrade"), 0o644))

	global := &model.GlobalConfig{MaintenanceModeFilePath: marker}
	_, err := Run(t.Context(), Options{Global: global})
	require.Error(t, err)
	kind, ok := model.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, model.KindConfig, kind)
}

func TestRun_SelectedJobNotInBackupLocationsIsConfigError(t *testing.T) {
	global := &model.GlobalConfig{
		BackupLocations: map[string]model.JobDef{
			"orphan": {},
		},
	}
	_, err := Run(t.Context(), Options{Global: global, JobNames: []string{"phantom"}})
	require.Error(t, err)
	kind, ok := model.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, model.KindConfig, kind)
}

func TestApplyLogRetention_KeepsNewestNAndRemovesRest(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	for i, name := range []string{"a.log", "b.log", "c.log"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
		modTime := now.Add(time.Duration(i) * time.Minute)
		require.NoError(t, os.Chtimes(path, modTime, modTime))
	}

	applyLogRetention(dir, 2)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var remaining []string
	for _, e := range entries {
		remaining = append(remaining, e.Name())
	}
	assert.ElementsMatch(t, []string{"b.log", "c.log"}, remaining)
}

func TestApplyLogRetention_ZeroKeepCountKeepsEverything(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.log"), []byte("x"), 0o644))
	applyLogRetention(dir, 0)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
