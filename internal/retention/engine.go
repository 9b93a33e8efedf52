// Package retention implements RetentionEngine (§4.3): selecting deletion
// candidates among unpinned BackupInstances, re-verifying them before
// destroying anything, and deleting local or remote files.
package retention

import (
	"os"
	"sort"
	"time"

	"github.com/eastfield/archivist/internal/model"
	"github.com/eastfield/archivist/internal/runctx"
)

// ArchiveTester is the subset of ArchiverDriver the retention engine needs
// for TestArchiveBeforeDeletion (§4.3). Declared here, implemented by
// internal/archiver, to avoid a retention→archiver→retention import cycle.
type ArchiveTester interface {
	Test(rc *runctx.RunContext, archivePath, password string) error
}

// Options configures one RetentionEngine.Run call (§4.3's contract).
type Options struct {
	KeepCount              int
	DeleteToRecycleBin     bool
	ConfirmBeforeDelete    bool
	TestArchiveBeforeDeletion bool
	Password               string
	Tester                 ArchiveTester
}

// Plan is the outcome of Select: which instances survive and which are
// candidates for deletion, before any safety re-verification.
type Plan struct {
	Keep      []*model.BackupInstance
	Delete    []*model.BackupInstance
}

// Select implements the selection rule from §4.3: unpinned instances sorted
// by SortTime descending, skip the first KeepCount, remainder are
// candidates (P3, P4). KeepCount <= 0 means "keep all" after being clamped
// (negative values are logged as a warning by the caller and treated as 0).
func Select(instances map[string]*model.BackupInstance, keepCount int) Plan {
	if keepCount < 0 {
		keepCount = 0
	}

	var unpinned, pinned []*model.BackupInstance
	for _, inst := range instances {
		if inst.Pinned {
			pinned = append(pinned, inst)
		} else {
			unpinned = append(unpinned, inst)
		}
	}
	sort.Slice(unpinned, func(i, j int) bool { return unpinned[i].SortTime.After(unpinned[j].SortTime) })

	if keepCount == 0 || keepCount >= len(unpinned) {
		return Plan{Keep: append(pinned, unpinned...)}
	}

	plan := Plan{
		Keep:   append(pinned, unpinned[:keepCount]...),
		Delete: unpinned[keepCount:],
	}
	return plan
}

// Result records what actually happened to one candidate instance.
type Result struct {
	Instance *model.BackupInstance
	Deleted  bool
	SafetyHalted bool
	Err      error
}

// Run executes the plan: for each deletion candidate, optionally tests the
// archive, then deletes every file in it (or simulates). It never touches
// Plan.Keep.
func Run(rc *runctx.RunContext, plan Plan, opts Options) []Result {
	results := make([]Result, 0, len(plan.Delete))
	for _, inst := range plan.Delete {
		results = append(results, runOne(rc, inst, opts))
	}
	return results
}

func runOne(rc *runctx.RunContext, inst *model.BackupInstance, opts Options) Result {
	if rc.Confirm.Simulate {
		rc.Logf(model.LogSimulate, "would delete instance %s (%d files)", inst.Key, len(inst.Files))
		return Result{Instance: inst, Deleted: false}
	}

	if opts.TestArchiveBeforeDeletion && opts.Tester != nil {
		primary := primaryFile(inst)
		if primary != "" {
			if err := opts.Tester.Test(rc, primary, opts.Password); err != nil {
				rc.Logf(model.LogError, "CRITICAL: retention safety halt for %s: archive test failed: %v", inst.Key, err)
				return Result{
					Instance:     inst,
					SafetyHalted: true,
					Err:          model.WrapError(model.KindRetentionSafetyHalt, err, "instance %s failed pre-deletion test", inst.Key),
				}
			}
		}
	}

	if opts.ConfirmBeforeDelete && !rc.Confirm.Allow("delete instance "+inst.Key+"?") {
		rc.Logf(model.LogWarning, "deletion of %s declined", inst.Key)
		return Result{Instance: inst, Deleted: false}
	}

	var firstErr error
	for _, f := range inst.Files {
		if err := deleteWithRetry(f.Path, opts.DeleteToRecycleBin); err != nil {
			rc.Logf(model.LogError, "failed to delete %s: %v", f.Path, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if firstErr != nil {
		return Result{Instance: inst, Err: firstErr}
	}
	rc.Logf(model.LogInfo, "deleted instance %s (%d files)", inst.Key, len(inst.Files))
	return Result{Instance: inst, Deleted: true}
}

func primaryFile(inst *model.BackupInstance) string {
	for _, f := range inst.Files {
		if f.Name == inst.Key || hasVolumeSuffix(f.Name, inst.Key, "001") {
			return f.Path
		}
	}
	if len(inst.Files) > 0 {
		return inst.Files[0].Path
	}
	return ""
}

func hasVolumeSuffix(name, key, suffix string) bool {
	return name == key+"."+suffix
}

// deleteWithRetry retries a file deletion up to 3 times with a 2s backoff
// to tolerate transient file locks (§4.3), routing to the Recycle Bin
// facility when requested.
func deleteWithRetry(path string, toRecycleBin bool) error {
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		if toRecycleBin {
			err = MoveToRecycleBin(path)
		} else {
			err = os.Remove(path)
		}
		if err == nil || os.IsNotExist(err) {
			return nil
		}
		time.Sleep(2 * time.Second)
	}
	return err
}
