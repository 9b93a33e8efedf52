// Package pipeline implements LocalArchivePipeline (§4.7): the sequential
// state machine that turns a set of source paths into a tested, checksummed,
// optionally pinned local archive instance.
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/shirou/gopsutil/v3/disk"

	"github.com/eastfield/archivist/internal/archiver"
	"github.com/eastfield/archivist/internal/hooks"
	"github.com/eastfield/archivist/internal/instance"
	"github.com/eastfield/archivist/internal/model"
	"github.com/eastfield/archivist/internal/password"
	"github.com/eastfield/archivist/internal/runctx"
	"github.com/eastfield/archivist/internal/vss"
)

// Pipeline runs one job's local archive creation through every step of the
// §4.7 state machine.
type Pipeline struct {
	Driver *archiver.Driver
}

func New(driver *archiver.Driver) *Pipeline {
	return &Pipeline{Driver: driver}
}

// Outcome is everything JobOrchestrator and TransferOrchestrator need after
// a local run completes (or fails).
type Outcome struct {
	Status          model.OverallStatus
	InstanceKey     string
	ArchivePath     string
	VolumeParts     []string
	ArchiveSize     int64
	CompressionTime time.Duration
	Pinned          bool
}

// Run executes [Init] through [Done] or the failure path, always releasing
// any VSS session it created (§5: "scoped resource release").
func (p *Pipeline) Run(rc *runctx.RunContext, eff *model.EffectiveJobConfig, sourcePaths []string) (Outcome, error) {
	now := time.Now()
	instanceKey := instance.BuildKey(eff.BaseFileName, now, eff.InternalArchiveExtension)
	archivePath := filepath.Join(eff.DestinationDir, instanceKey)

	out := Outcome{InstanceKey: instanceKey, ArchivePath: archivePath, Status: model.StatusSuccess}

	if err := p.freeSpaceCheck(rc, eff); err != nil {
		return out, p.fail(rc, eff, out, nil, err)
	}

	cleanStaleVolumeParts(rc, archivePath)

	var session *model.VssSession
	effectiveSources := sourcePaths
	if eff.EnableVSS {
		var err error
		session, err = vss.Create(rc, sourcePaths, vss.Options{
			ContextOption: eff.VSSContextOption,
			PollTimeout:   time.Duration(eff.VSSPollingTimeoutSeconds) * time.Second,
			PollInterval:  time.Duration(eff.VSSPollingIntervalSeconds) * time.Second,
		})
		if err != nil {
			return out, p.fail(rc, eff, out, session, model.WrapError(model.KindEnv, err, "VSS snapshot required but unavailable"))
		}
		effectiveSources = remapSources(sourcePaths, session)
	}
	defer vss.Release(rc, session)

	resolved, err := password.Resolve(rc, eff.ArchivePasswordSource, eff.ArchivePasswordSecretName, eff.ArchivePasswordPlain)
	if err != nil {
		return out, p.fail(rc, eff, out, session, err)
	}
	if resolved.Zero != nil {
		defer resolved.Zero()
	}

	hookResult := hooks.Run(rc, eff.PreBackupScriptPath, hooks.Context{JobName: eff.JobName, StatusSoFar: out.Status})
	recordHook(rc, hookResult)

	result, err := p.Driver.Create(rc, eff, archivePath, effectiveSources, resolved.Plaintext)
	rc.Report.SevenZipExitCode = result.ExitCode
	if err != nil {
		if kind, ok := model.KindOf(err); !ok || kind != model.KindArchiverWarning {
			return out, p.fail(rc, eff, out, session, err)
		}
		rc.Logf(model.LogWarning, "%v", err)
	}
	if result.Status == model.StatusWarnings {
		out.Status = model.Worse(out.Status, model.StatusWarnings)
		if eff.TreatSevenZipWarningsAsSuccess {
			out.Status = model.StatusSuccess
		}
	}

	hookResult = hooks.Run(rc, eff.PostLocalArchiveScriptPath, hooks.Context{JobName: eff.JobName, StatusSoFar: out.Status, ArchivePath: archivePath})
	recordHook(rc, hookResult)

	out.VolumeParts = discoverVolumeParts(archivePath)
	if info, statErr := os.Stat(archivePath); statErr == nil {
		out.ArchiveSize = info.Size()
	}
	for _, part := range out.VolumeParts {
		if info, statErr := os.Stat(part); statErr == nil {
			out.ArchiveSize += info.Size()
		}
	}

	if err := p.checksumAndManifest(rc, eff, instanceKey, archivePath, out.VolumeParts, resolved.Plaintext); err != nil {
		rc.Logf(model.LogWarning, "checksum/manifest step failed: %v", err)
		out.Status = model.Worse(out.Status, model.StatusWarnings)
	}

	if eff.TestArchiveAfterCreation {
		var testErr error
		if eff.VerifyArchiveChecksumOnTest {
			testErr = p.Driver.TestWithChecksum(rc, archivePath, resolved.Plaintext)
		} else {
			testErr = p.Driver.Test(rc, archivePath, resolved.Plaintext)
		}
		if testErr != nil {
			return out, p.fail(rc, eff, out, session, model.WrapError(model.KindArchiverError, testErr, "post-creation test failed"))
		}
	}

	if eff.PinOnCreation {
		pinPath := filepath.Join(eff.DestinationDir, instanceKey+".pinned")
		if f, err := os.Create(pinPath); err != nil {
			rc.Logf(model.LogWarning, "could not write pin marker %s: %v", pinPath, err)
		} else {
			f.Close()
			out.Pinned = true
		}
	}
	rc.Report.ArchivePath = archivePath
	rc.Report.ArchiveSizeBytes = out.ArchiveSize
	rc.Report.Downgrade(out.Status)
	return out, nil
}

func (p *Pipeline) fail(rc *runctx.RunContext, eff *model.EffectiveJobConfig, out Outcome, session *model.VssSession, cause error) error {
	out.Status = model.StatusFailure
	rc.Report.Downgrade(model.StatusFailure)
	if cause != nil {
		rc.Report.ErrorMessage = cause.Error()
	}
	hookResult := hooks.Run(rc, eff.PostBackupScriptOnFailurePath, hooks.Context{JobName: eff.JobName, StatusSoFar: model.StatusFailure, ArchivePath: out.ArchivePath})
	recordHook(rc, hookResult)
	if always := hooks.Run(rc, eff.PostBackupScriptAlwaysPath, hooks.Context{JobName: eff.JobName, StatusSoFar: model.StatusFailure, ArchivePath: out.ArchivePath}); always.Ran {
		recordHook(rc, always)
	}
	return cause
}

func recordHook(rc *runctx.RunContext, r hooks.Result) {
	if !r.Ran && r.ScriptPath == "" {
		return
	}
	errMsg := ""
	if r.Err != nil {
		errMsg = r.Err.Error()
	}
	rc.Report.HookScripts = append(rc.Report.HookScripts, model.HookResult{
		Path: r.ScriptPath, ExitCode: r.ExitCode, Ran: r.Ran, Error: errMsg,
	})
}

func (p *Pipeline) freeSpaceCheck(rc *runctx.RunContext, eff *model.EffectiveJobConfig) error {
	if eff.MinimumRequiredFreeSpaceGB <= 0 {
		return nil
	}
	usage, err := disk.Usage(eff.DestinationDir)
	if err != nil {
		rc.Logf(model.LogWarning, "could not determine free space for %s: %v", eff.DestinationDir, err)
		return nil
	}
	requiredBytes := uint64(eff.MinimumRequiredFreeSpaceGB * 1024 * 1024 * 1024)
	if usage.Free >= requiredBytes {
		return nil
	}
	msg := fmt.Sprintf("only %.2f GB free at %s, %.2f GB required", float64(usage.Free)/(1<<30), eff.DestinationDir, eff.MinimumRequiredFreeSpaceGB)
	if eff.ExitOnLowSpace {
		return model.NewError(model.KindEnv, "%s", msg)
	}
	rc.Logf(model.LogWarning, "%s", msg)
	return nil
}

// cleanStaleVolumeParts removes any pre-existing "<archive>.NNN" parts from
// an earlier, abandoned run so 7-Zip does not append to a stale split set
// (§4.7). Deletion failures downgrade to a warning, never halt the job.
func cleanStaleVolumeParts(rc *runctx.RunContext, archivePath string) {
	matches := discoverVolumeParts(archivePath)
	for _, m := range matches {
		if err := os.Remove(m); err != nil {
			rc.Logf(model.LogWarning, "could not remove stale volume part %s: %v", m, err)
		}
	}
}

// discoverVolumeParts lists the "<archive>.NNN" files beside archivePath. It
// reads the directory instead of globbing, since the "[date]" in an instance
// key would be taken as a glob character class.
func discoverVolumeParts(archivePath string) []string {
	dir := filepath.Dir(archivePath)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	partName := regexp.MustCompile("^" + regexp.QuoteMeta(filepath.Base(archivePath)) + `\.[0-9]{3}$`)
	var matches []string
	for _, e := range entries {
		if !e.IsDir() && partName.MatchString(e.Name()) {
			matches = append(matches, filepath.Join(dir, e.Name()))
		}
	}
	return matches
}

func remapSources(sourcePaths []string, session *model.VssSession) []string {
	if !session.Active() {
		return sourcePaths
	}
	remapped := make([]string, len(sourcePaths))
	for i, p := range sourcePaths {
		remapped[i] = session.ResolvePath(p)
	}
	return remapped
}
