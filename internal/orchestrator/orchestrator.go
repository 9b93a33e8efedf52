package orchestrator

import (
	"context"
	"io"
	"os"
	"sort"
	"time"

	"github.com/eastfield/archivist/internal/archiver"
	"github.com/eastfield/archivist/internal/config"
	"github.com/eastfield/archivist/internal/hooks"
	"github.com/eastfield/archivist/internal/instance"
	"github.com/eastfield/archivist/internal/logging"
	"github.com/eastfield/archivist/internal/model"
	"github.com/eastfield/archivist/internal/pipeline"
	"github.com/eastfield/archivist/internal/report"
	"github.com/eastfield/archivist/internal/retention"
	"github.com/eastfield/archivist/internal/runctx"
	"github.com/eastfield/archivist/internal/transfer"
)

// Options configures one JobOrchestrator run (§4.9).
type Options struct {
	Global *model.GlobalConfig

	// JobNames is the explicit job selection for an ad-hoc run. Ignored
	// when SetName is set, since the set's own JobNames list governs.
	JobNames []string
	SetName  string

	Cli config.CliOverrides

	// ResolveOnly implements `-TestConfig`/`test-config` (§4.9): resolve
	// every selected job's EffectiveJobConfig and validate it, but run
	// nothing.
	ResolveOnly bool

	Registry *transfer.Registry
	Reporter report.Reporter
	LogDir   string
	// ConsoleMirror additionally streams each job's log lines (nil disables
	// console mirroring, e.g. for a quiet scheduled run).
	ConsoleMirror io.Writer
	Confirm       runctx.ConfirmPolicy
}

// JobResult is one job's outcome within a run.
type JobResult struct {
	JobName       string
	Status        model.OverallStatus
	Err           error
	Report        *model.JobReport
	PostRunAction model.PostRunActionConfig
}

// RunResult is the aggregate outcome of an entire orchestrator run.
type RunResult struct {
	JobResults   []JobResult
	Aggregate    model.OverallStatus
	StoppedEarly bool
	StoppedAt    string
	PostRunAction model.PostRunActionConfig
}

// Run executes every selected job in dependency order, applying the set's
// stop-on-error policy and aggregating status (§4.9). It never returns an
// error for a job-level failure — that's carried in RunResult — only for a
// selection/configuration problem that prevents the run from starting at
// all (unknown set, dependency cycle, maintenance mode).
func Run(ctx context.Context, opts Options) (RunResult, error) {
	if opts.Global.MaintenanceModeFilePath != "" {
		if _, err := os.Stat(opts.Global.MaintenanceModeFilePath); err == nil {
			return RunResult{Aggregate: model.StatusWarnings}, model.NewError(model.KindConfig,
				"maintenance mode file %q is present, refusing to run", opts.Global.MaintenanceModeFilePath)
		}
	}

	jobNames, onError, err := selectJobs(opts)
	if err != nil {
		return RunResult{}, err
	}

	dependsOn := make(map[string][]string, len(jobNames))
	for _, name := range jobNames {
		job, ok := opts.Global.BackupLocations[name]
		if !ok {
			return RunResult{}, model.ConfigError("job %q is not defined in BackupLocations", name)
		}
		dependsOn[name] = job.DependsOnJobs
	}
	ordered, err := TopoSort(jobNames, dependsOn)
	if err != nil {
		return RunResult{}, err
	}

	result := RunResult{Aggregate: model.StatusSuccess}
	for _, jobName := range ordered {
		if ctx.Err() != nil {
			result.StoppedEarly = true
			result.StoppedAt = jobName
			break
		}

		jr := runJob(ctx, opts, jobName)
		result.JobResults = append(result.JobResults, jr)
		result.Aggregate = model.Worse(result.Aggregate, jr.Status)
		if jr.PostRunAction.Enabled {
			result.PostRunAction = jr.PostRunAction
		}

		if jr.Status == model.StatusFailure && onError == model.OnErrorStopSet {
			result.StoppedEarly = true
			result.StoppedAt = jobName
			break
		}
	}
	return result, nil
}

// selectJobs resolves the ordered (pre-topo-sort) job list and the
// stop-on-error policy governing it. An ad-hoc run (no SetName) has no
// set-level policy to draw on, so every job runs regardless of prior
// failures (§4.9, §9 — "stop-set" is a BackupSet concept).
func selectJobs(opts Options) ([]string, model.OnErrorInJob, error) {
	if opts.SetName != "" {
		set, ok := opts.Global.BackupSets[opts.SetName]
		if !ok {
			return nil, 0, model.ConfigError("set %q is not defined in BackupSets", opts.SetName)
		}
		return set.JobNames, set.OnErrorInJob, nil
	}
	if len(opts.JobNames) > 0 {
		return opts.JobNames, model.OnErrorContinueSet, nil
	}
	names := make([]string, 0, len(opts.Global.BackupLocations))
	for name := range opts.Global.BackupLocations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, model.OnErrorContinueSet, nil
}

func runJob(ctx context.Context, opts Options, jobName string) JobResult {
	eff, err := config.Resolve(opts.Global, jobName, opts.Cli, opts.SetName)
	if err != nil {
		return JobResult{JobName: jobName, Status: model.StatusFailure, Err: err}
	}

	jobReport := model.NewJobReport(jobName, opts.SetName)
	if opts.ResolveOnly {
		jobReport.OverallStatus = model.StatusSimulatedComplete
		return JobResult{JobName: jobName, Status: model.StatusSimulatedComplete, Report: jobReport, PostRunAction: eff.PostRunAction}
	}

	jobLogger, logErr := logging.NewJobLogger(jobReport.JobID.String(), opts.LogDir, model.LogInfo, opts.ConsoleMirror)
	if logErr != nil {
		return JobResult{JobName: jobName, Status: model.StatusFailure, Err: model.WrapError(model.KindEnv, logErr, "opening job log for %q", jobName)}
	}
	defer jobLogger.Close()

	rc := runctx.New(ctx, jobLogger, jobReport, opts.Confirm)
	eff.SimulateMode = opts.Confirm.Simulate

	driver := &archiver.Driver{SevenZipPath: eff.SevenZipPath}
	pl := pipeline.New(driver)

	out, runErr := pl.Run(rc, eff, eff.Path)
	if runErr != nil {
		rc.Logf(model.LogError, "job %s failed: %v", jobName, runErr)
		finish(rc, eff, opts)
		return JobResult{JobName: jobName, Status: model.StatusFailure, Err: runErr, Report: jobReport, PostRunAction: eff.PostRunAction}
	}

	jobStatus := runTransferAndRetention(rc, opts, eff, out)
	rc.Report.Downgrade(jobStatus)
	finish(rc, eff, opts)
	return JobResult{JobName: jobName, Status: rc.Report.OverallStatus, Report: jobReport, PostRunAction: eff.PostRunAction}
}

// runTransferAndRetention implements the rest of the job lifecycle after a
// successful local archive: TransferOrchestrator fan-out, matching
// success/failure/always hooks, local retention, and per-target remote
// retention (§4.8, §4.3, §4.9).
func runTransferAndRetention(rc *runctx.RunContext, opts Options, eff *model.EffectiveJobConfig, out pipeline.Outcome) model.OverallStatus {
	status := out.Status

	staged, err := transfer.DiscoverStaged(eff.DestinationDir, out.InstanceKey, eff.SimulateMode)
	if err != nil {
		rc.Logf(model.LogError, "could not discover staged files for %s: %v", out.InstanceKey, err)
		status = model.Worse(status, model.StatusFailure)
	}

	verified := true
	if eff.VerifyLocalArchiveBeforeTransfer {
		driver := &archiver.Driver{SevenZipPath: eff.SevenZipPath}
		if testErr := driver.Test(rc, out.ArchivePath, eff.ArchivePasswordPlain); testErr != nil {
			rc.Logf(model.LogError, "pre-transfer verification failed for %s: %v", out.ArchivePath, testErr)
			status = model.Worse(status, model.StatusFailure)
			verified = false
		}
	}

	var xferOut transfer.Outcome
	if len(eff.TargetInstances) > 0 && verified {
		xferOut = transfer.Run(rc, opts.Registry, eff.TargetInstances, staged)
		for _, r := range xferOut.Results {
			rc.Report.TargetTransfers = append(rc.Report.TargetTransfers, r)
			if r.Status != model.TransferSuccess {
				status = model.Worse(status, model.StatusFailure)
			}
		}
		transfer.CleanupStaged(rc, staged, xferOut, opts.Global.DeleteLocalArchiveAfterSuccessfulTransfer, len(eff.TargetInstances))
	}

	if status == model.StatusFailure {
		recordHook(rc, hooks.Run(rc, eff.PostBackupScriptOnFailurePath, hooks.Context{JobName: eff.JobName, StatusSoFar: status, ArchivePath: out.ArchivePath, ArchiveSize: out.ArchiveSize}))
	} else {
		recordHook(rc, hooks.Run(rc, eff.PostBackupScriptOnSuccessPath, hooks.Context{JobName: eff.JobName, StatusSoFar: status, ArchivePath: out.ArchivePath, ArchiveSize: out.ArchiveSize}))
	}
	recordHook(rc, hooks.Run(rc, eff.PostBackupScriptAlwaysPath, hooks.Context{JobName: eff.JobName, StatusSoFar: status, ArchivePath: out.ArchivePath, ArchiveSize: out.ArchiveSize}))

	runLocalRetention(rc, opts, eff)
	runRemoteRetention(rc, opts, eff)

	return status
}

func runLocalRetention(rc *runctx.RunContext, opts Options, eff *model.EffectiveJobConfig) {
	instances, ignored, err := instance.Scan(eff.DestinationDir, eff.BaseFileName, eff.InternalArchiveExtension)
	if err != nil {
		rc.Logf(model.LogWarning, "local retention: could not scan %s: %v", eff.DestinationDir, err)
		return
	}
	for _, name := range ignored {
		rc.Logf(model.LogWarning, "local retention: %q matches base name %q but not the date-stamped key, skipping", name, eff.BaseFileName)
	}

	if eff.LocalRetentionCount < 0 {
		rc.Logf(model.LogWarning, "local retention: LocalRetentionCount %d is negative, treating it as 0 (keep all)", eff.LocalRetentionCount)
	}
	plan := retention.Select(instances, eff.LocalRetentionCount)
	results := retention.Run(rc, plan, retention.Options{
		KeepCount:                 eff.LocalRetentionCount,
		DeleteToRecycleBin:        eff.DeleteToRecycleBin,
		ConfirmBeforeDelete:       eff.RetentionConfirmDelete,
		TestArchiveBeforeDeletion: eff.TestArchiveBeforeDeletion,
		Password:                  eff.ArchivePasswordPlain,
		Tester:                    &archiver.Driver{SevenZipPath: eff.SevenZipPath},
	})
	for _, r := range results {
		if r.SafetyHalted {
			// The instance is kept and logged CRITICAL; the job status is unchanged.
			continue
		}
		if r.Err != nil {
			rc.Report.Downgrade(model.StatusWarnings)
		}
	}
}

func runRemoteRetention(rc *runctx.RunContext, opts Options, eff *model.EffectiveJobConfig) {
	if opts.Registry == nil {
		return
	}
	for _, target := range eff.TargetInstances {
		if target.RemoteRetentionSettings.KeepCount <= 0 {
			continue
		}
		provider, ok := opts.Registry.Lookup(target.Type)
		if !ok {
			continue
		}
		remoteProvider, ok := provider.(transfer.RemoteRetentionProvider)
		if !ok {
			continue
		}
		results, err := retention.RunRemote(rc.Ctx, rc, remoteProvider, target.TargetDef, eff.BaseFileName, eff.InternalArchiveExtension)
		if err != nil {
			rc.Logf(model.LogWarning, "remote retention against target %s failed: %v", target.Name, err)
			rc.Report.Downgrade(model.StatusWarnings)
			continue
		}
		for _, r := range results {
			if r.Err != nil {
				rc.Report.Downgrade(model.StatusWarnings)
			}
		}
	}
}

func finish(rc *runctx.RunContext, eff *model.EffectiveJobConfig, opts Options) {
	rc.Report.EndTime = time.Now()
	if opts.Reporter != nil {
		if err := opts.Reporter.Emit(rc.Report); err != nil {
			rc.Logf(model.LogWarning, "reporter emit failed for job %s: %v", eff.JobName, err)
		}
	}
	applyLogRetention(opts.LogDir, eff.LogRetentionCount)
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
