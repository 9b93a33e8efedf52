package retention

import (
	"context"
	"sort"
	"strings"

	"github.com/eastfield/archivist/internal/instance"
	"github.com/eastfield/archivist/internal/model"
	"github.com/eastfield/archivist/internal/runctx"
	"github.com/eastfield/archivist/internal/transfer"
)

// RemoteOptions configures one RunRemote call.
type RemoteOptions struct {
	KeepCount int
}

// RunRemote applies the same selection/grouping logic as local retention,
// against a listing from the target's RemoteRetentionProvider, and deletes
// through DeleteRemote (§4.3 "Remote retention").
func RunRemote(ctx context.Context, rc *runctx.RunContext, provider transfer.RemoteRetentionProvider, target model.TargetDef, baseFileName, primaryExt string) ([]Result, error) {
	refs, err := provider.ListRemoteInstances(ctx, target, baseFileName, primaryExt)
	if err != nil {
		return nil, model.WrapError(model.KindTransfer, err, "listing remote instances")
	}

	pattern := instance.KeyPattern(baseFileName, primaryExt)
	byKey := map[string]*model.BackupInstance{}
	for _, ref := range refs {
		key := pattern.FindString(ref.Name)
		if key == "" {
			continue
		}
		inst, ok := byKey[key]
		if !ok {
			inst = &model.BackupInstance{Key: key}
			byKey[key] = inst
		}
		if strings.HasSuffix(ref.Name, ".pinned") {
			inst.Pinned = true
			continue
		}
		inst.Files = append(inst.Files, ref)
	}
	for _, inst := range byKey {
		sort.Slice(inst.Files, func(i, j int) bool { return inst.Files[i].CreationTime.Before(inst.Files[j].CreationTime) })
		if len(inst.Files) > 0 {
			min := inst.Files[0].CreationTime
			for _, f := range inst.Files {
				if f.CreationTime.Before(min) {
					min = f.CreationTime
				}
			}
			inst.SortTime = min
		}
	}

	plan := Select(byKey, target.RemoteRetentionSettings.KeepCount)

	var results []Result
	for _, inst := range plan.Delete {
		if rc.Confirm.Simulate {
			rc.Logf(model.LogSimulate, "would remotely delete instance %s (%d files)", inst.Key, len(inst.Files))
			results = append(results, Result{Instance: inst})
			continue
		}
		var firstErr error
		for _, f := range inst.Files {
			if err := provider.DeleteRemote(ctx, target, f); err != nil {
				firstErr = err
				rc.Logf(model.LogError, "failed to delete remote file %s: %v", f.Path, err)
			}
		}
		results = append(results, Result{Instance: inst, Deleted: firstErr == nil, Err: firstErr})
	}
	return results, nil
}
