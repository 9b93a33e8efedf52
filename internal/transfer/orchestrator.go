package transfer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/eastfield/archivist/internal/model"
	"github.com/eastfield/archivist/internal/runctx"
)

// StagedFile is one local file belonging to the instance just created:
// the primary archive, any ".NNN" volume parts, and recognised sidecars
// (§4.8 step 1).
type StagedFile struct {
	Path string
	Name string
	Size int64
}

// DiscoverStaged enumerates destDir for every file belonging to the
// instance keyed by instanceKey (§4.8 step 1). In simulate mode it
// synthesises a mock single-file list so the rest of the pipeline can
// proceed without touching disk.
func DiscoverStaged(destDir, instanceKey string, simulate bool) ([]StagedFile, error) {
	if simulate {
		return []StagedFile{{Path: filepath.Join(destDir, instanceKey), Name: instanceKey, Size: 0}}, nil
	}
	entries, err := os.ReadDir(destDir)
	if err != nil {
		return nil, err
	}
	var staged []StagedFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if name != instanceKey && !strings.HasPrefix(name, instanceKey+".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		staged = append(staged, StagedFile{Path: filepath.Join(destDir, name), Name: name, Size: info.Size()})
	}
	return staged, nil
}

// Outcome is the aggregated result of fanning out to every configured
// target (§4.8 steps 2-4).
type Outcome struct {
	Results              []model.TransferResult
	AllTransfersSuccessful bool
}

// Run fans out staged to one worker per target, in parallel, stopping each
// worker at its first file failure for that target (§4.8 steps 2-3).
func Run(rc *runctx.RunContext, registry *Registry, targets []model.ResolvedTarget, staged []StagedFile) Outcome {
	if rc.Confirm.Simulate {
		var results []model.TransferResult
		for _, t := range targets {
			for _, f := range staged {
				results = append(results, model.TransferResult{TargetName: t.Name, TargetType: t.Type, FileName: f.Name, Status: model.TransferSuccess})
			}
		}
		return Outcome{Results: results, AllTransfersSuccessful: true}
	}

	g, ctx := errgroup.WithContext(rc.Ctx)
	resultsCh := make(chan []model.TransferResult, len(targets))

	for _, target := range targets {
		target := target
		g.Go(func() error {
			resultsCh <- transferToTarget(ctx, rc, registry, target, staged)
			return nil
		})
	}
	_ = g.Wait()
	close(resultsCh)

	var results []model.TransferResult
	allOK := true
	for rs := range resultsCh {
		for _, r := range rs {
			results = append(results, r)
			if r.Status != model.TransferSuccess {
				allOK = false
			}
		}
	}
	return Outcome{Results: results, AllTransfersSuccessful: allOK}
}

// transferToTarget uploads every staged file to target in order, appending
// one TransferResult per file (§4.8 step 4), and stops at the first file
// failure for this target (§4.8 step 3) without attempting the rest.
func transferToTarget(ctx context.Context, rc *runctx.RunContext, registry *Registry, target model.ResolvedTarget, staged []StagedFile) []model.TransferResult {
	provider, ok := registry.Lookup(target.Type)
	if !ok {
		return []model.TransferResult{{
			TargetName: target.Name, TargetType: target.Type,
			Status: model.TransferFailure, ErrorMessage: "no TargetProvider registered for type " + target.Type,
		}}
	}

	var results []model.TransferResult
	for _, f := range staged {
		start := time.Now()
		select {
		case <-ctx.Done():
			results = append(results, model.TransferResult{TargetName: target.Name, TargetType: target.Type, FileName: f.Name, Status: model.TransferFailure, ErrorMessage: "cancelled"})
			return results
		default:
		}
		path, size, err := provider.Transfer(rc.Ctx, rc, f.Path, target.TargetDef)
		if err != nil {
			rc.Logf(model.LogError, "transfer to %s failed for %s: %v", target.Name, f.Name, err)
			results = append(results, model.TransferResult{
				TargetName: target.Name, TargetType: target.Type, FileName: f.Name,
				Status: model.TransferFailure, ErrorMessage: err.Error(),
				TransferDuration: time.Since(start),
			})
			return results
		}
		rc.Logf(model.LogSuccess, "transferred %s to target %s", f.Name, target.Name)
		results = append(results, model.TransferResult{
			TargetName: target.Name, TargetType: target.Type, FileName: f.Name,
			Status: model.TransferSuccess, RemotePath: path,
			TransferSize: size, TransferDuration: time.Since(start),
		})
	}
	return results
}

// CleanupStaged deletes every staged file when every target succeeded and
// cleanup is enabled (§4.8 step 5, P6).
func CleanupStaged(rc *runctx.RunContext, staged []StagedFile, outcome Outcome, deleteAfterTransfer bool, targetCount int) {
	if !deleteAfterTransfer || targetCount == 0 || !outcome.AllTransfersSuccessful {
		return
	}
	for _, f := range staged {
		if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
			rc.Logf(model.LogWarning, "could not remove staged file %s after transfer: %v", f.Path, err)
		}
	}
}
