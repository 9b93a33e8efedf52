package retention

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eastfield/archivist/internal/logging"
	"github.com/eastfield/archivist/internal/model"
	"github.com/eastfield/archivist/internal/runctx"
)

func instanceAt(key string, age time.Duration, pinned bool) *model.BackupInstance {
	return &model.BackupInstance{
		Key:      key,
		SortTime: time.Now().Add(-age),
		Pinned:   pinned,
		Files:    []model.FileRef{{Path: "/tmp/" + key, Name: key}},
	}
}

// P3: pinned instances are never selected for deletion regardless of KeepCount.
func TestSelect_PinImmunity(t *testing.T) {
	instances := map[string]*model.BackupInstance{
		"jan01": instanceAt("jan01", 5*24*time.Hour, false),
		"jan02": instanceAt("jan02", 4*24*time.Hour, false),
		"jan03": instanceAt("jan03", 3*24*time.Hour, true),
		"jan04": instanceAt("jan04", 2*24*time.Hour, false),
		"jan05": instanceAt("jan05", 1*24*time.Hour, false),
	}
	plan := Select(instances, 2)
	for _, inst := range plan.Delete {
		assert.False(t, inst.Pinned)
	}
	keptKeys := map[string]bool{}
	for _, inst := range plan.Keep {
		keptKeys[inst.Key] = true
	}
	assert.True(t, keptKeys["jan03"], "pinned instance must always survive")
}

// P4: after selection, surviving unpinned instances <= KeepCount, and they
// are the KeepCount newest by SortTime.
func TestSelect_KeepCountInvariant(t *testing.T) {
	instances := map[string]*model.BackupInstance{
		"jan01": instanceAt("jan01", 5*24*time.Hour, false),
		"jan02": instanceAt("jan02", 4*24*time.Hour, false),
		"jan03": instanceAt("jan03", 3*24*time.Hour, true),
		"jan04": instanceAt("jan04", 2*24*time.Hour, false),
		"jan05": instanceAt("jan05", 1*24*time.Hour, false),
	}
	plan := Select(instances, 2)

	unpinnedKept := 0
	keptKeys := map[string]bool{}
	for _, inst := range plan.Keep {
		keptKeys[inst.Key] = true
		if !inst.Pinned {
			unpinnedKept++
		}
	}
	assert.LessOrEqual(t, unpinnedKept, 2)
	assert.True(t, keptKeys["jan05"] && keptKeys["jan04"], "the 2 newest unpinned instances must survive")
	assert.Len(t, plan.Delete, 2)
	deletedKeys := map[string]bool{}
	for _, inst := range plan.Delete {
		deletedKeys[inst.Key] = true
	}
	assert.True(t, deletedKeys["jan01"] && deletedKeys["jan02"])
}

func TestSelect_KeepCountZeroMeansKeepAll(t *testing.T) {
	instances := map[string]*model.BackupInstance{
		"jan01": instanceAt("jan01", 2*24*time.Hour, false),
		"jan02": instanceAt("jan02", 1*24*time.Hour, false),
	}
	plan := Select(instances, 0)
	assert.Empty(t, plan.Delete)
	assert.Len(t, plan.Keep, 2)
}

func TestSelect_NegativeKeepCountClampsToZero(t *testing.T) {
	instances := map[string]*model.BackupInstance{
		"jan01": instanceAt("jan01", 2*24*time.Hour, false),
	}
	plan := Select(instances, -3)
	assert.Empty(t, plan.Delete)
}

type fakeTester struct {
	err error
}

func (f fakeTester) Test(rc *runctx.RunContext, archivePath, password string) error {
	return f.err
}

func newTestRC() *runctx.RunContext {
	return runctx.New(context.Background(), logging.Discard, model.NewJobReport("job", ""), runctx.ConfirmPolicy{})
}

// P5: if TestArchiveBeforeDeletion is true and the test reports failure,
// the candidate instance's file count is unchanged after Run completes.
func TestRun_SafetyHaltPreservesFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doomed.7z")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	inst := &model.BackupInstance{Key: "doomed", Files: []model.FileRef{{Path: path, Name: "doomed.7z"}}}
	plan := Plan{Delete: []*model.BackupInstance{inst}}

	results := Run(newTestRC(), plan, Options{
		TestArchiveBeforeDeletion: true,
		Tester:                    fakeTester{err: errors.New("crc mismatch")},
	})

	require.Len(t, results, 1)
	assert.True(t, results[0].SafetyHalted)
	assert.False(t, results[0].Deleted)
	_, err := os.Stat(path)
	assert.NoError(t, err, "file must still exist after a safety halt")
}

func TestRun_DeletesFilesWhenNoTestConfigured(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "old.7z")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	inst := &model.BackupInstance{Key: "old", Files: []model.FileRef{{Path: path, Name: "old.7z"}}}
	plan := Plan{Delete: []*model.BackupInstance{inst}}

	results := Run(newTestRC(), plan, Options{})
	require.Len(t, results, 1)
	assert.True(t, results[0].Deleted)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestRun_SimulateModeTouchesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "old.7z")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	inst := &model.BackupInstance{Key: "old", Files: []model.FileRef{{Path: path, Name: "old.7z"}}}
	plan := Plan{Delete: []*model.BackupInstance{inst}}

	rc := runctx.New(context.Background(), logging.Discard, model.NewJobReport("job", ""), runctx.ConfirmPolicy{Simulate: true})
	results := Run(rc, plan, Options{})
	require.Len(t, results, 1)
	assert.False(t, results[0].Deleted)
	_, err := os.Stat(path)
	assert.NoError(t, err)
}
