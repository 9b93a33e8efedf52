package config

import (
	"regexp"

	"github.com/eastfield/archivist/internal/model"
)

// CliOverrides carries only the handful of settings CLI flags are allowed
// to override (the core does not parse flags itself — see SPEC_FULL §1).
type CliOverrides struct {
	LocalRetentionCount Optional[int]
	PostRunAction       Optional[model.PostRunActionConfig]
	LogRetentionCount   Optional[int]
	SimulateMode        bool
}

// Optional is a re-export alias so callers outside internal/model can build
// CliOverrides without importing model directly for this one type.
type Optional[T any] = model.Optional[T]

var splitSizePattern = regexp.MustCompile(`^\d+[kmg]$`)

// Resolve computes the EffectiveJobConfig for one job per §4.1: merge order
// GlobalConfig → JobDef → SetDef → CliOverrides, latest wins only when a
// layer explicitly set the value (P1).
func Resolve(global *model.GlobalConfig, jobName string, cli CliOverrides, setName string) (*model.EffectiveJobConfig, error) {
	job, ok := global.BackupLocations[jobName]
	if !ok {
		return nil, model.ConfigError("job %q is not defined in BackupLocations", jobName)
	}

	var set model.SetDef
	var setPresent bool
	if setName != "" {
		set, setPresent = global.BackupSets[setName]
		if !setPresent {
			return nil, model.ConfigError("set %q is not defined in BackupSets", setName)
		}
	}

	eff := &model.EffectiveJobConfig{
		JobName:        jobName,
		SetName:        setName,
		Path:           job.Path,
		BaseFileName:   job.Name,
		DestinationDir: job.DestinationDir.Or(global.DefaultDestinationDir),
		DependsOnJobs:  job.DependsOnJobs,
		SevenZipPath:   global.SevenZipPath,
		SimulateMode:   cli.SimulateMode,
	}
	if eff.BaseFileName == "" {
		eff.BaseFileName = jobName
	}

	eff.ArchiveType = job.ArchiveType.Or("7z")
	eff.CompressionLevel = job.CompressionLevel.Or(5)
	eff.CompressionMethod = job.CompressionMethod.Or("")
	eff.DictionarySize = job.DictionarySize.Or("")
	eff.WordSize = job.WordSize.Or("")
	eff.SolidBlockSize = job.SolidBlockSize.Or("")
	eff.CompressOpenFiles = job.CompressOpenFiles.Or(false)
	eff.ThreadsSetting = job.ThreadsSetting.Or(0)
	eff.FollowSymbolicLinks = job.FollowSymbolicLinks.Or(true)
	eff.SevenZipTempDirectory = job.SevenZipTempDirectory.Or("")
	eff.CreateSFX = job.CreateSFX.Or(false)
	eff.SFXModule = job.SFXModule.Or(model.SFXConsole)
	eff.SplitVolumeSize = job.SplitVolumeSize.Or("")

	exclusions := append([]string{}, global.DefaultAdditionalExclusions...)
	if global.DefaultScriptExcludeRecycleBin {
		exclusions = append(exclusions, "-x!$RECYCLE.BIN")
	}
	if global.DefaultScriptExcludeSysVolInfo {
		exclusions = append(exclusions, "-x!System Volume Information")
	}
	exclusions = append(exclusions, job.AdditionalExclusions...)
	eff.AdditionalExclusions = exclusions

	eff.SevenZipIncludeListFile = job.SevenZipIncludeListFile.Or("")
	eff.SevenZipExcludeListFile = job.SevenZipExcludeListFile.Or("")

	eff.ArchivePasswordSource = job.ArchivePasswordSource.Or(model.PasswordSourceNone)
	eff.ArchivePasswordSecretName = job.ArchivePasswordSecretName.Or("")
	eff.ArchivePasswordPlain = job.ArchivePasswordPlain.Or("")

	eff.ArchiveDateFormat = job.ArchiveDateFormat.Or("2006-Jan-02")

	eff.EnableVSS = job.EnableVSS.Or(global.EnableVSS)
	eff.VSSContextOption = job.VSSContextOption.Or("ClientAccessible")
	eff.VSSPollingTimeoutSeconds = job.VSSPollingTimeoutSeconds.Or(180)
	eff.VSSPollingIntervalSeconds = job.VSSPollingIntervalSeconds.Or(2)

	eff.GenerateArchiveChecksum = job.GenerateArchiveChecksum.Or(false)
	eff.ChecksumAlgorithm = job.ChecksumAlgorithm.Or(model.ChecksumSHA256)
	eff.GenerateSplitArchiveManifest = job.GenerateSplitArchiveManifest.Or(false)
	eff.GenerateContentsManifest = job.GenerateContentsManifest.Or(false)
	eff.TestArchiveAfterCreation = job.TestArchiveAfterCreation.Or(false)
	eff.VerifyArchiveChecksumOnTest = job.VerifyArchiveChecksumOnTest.Or(false)
	eff.VerifyLocalArchiveBeforeTransfer = job.VerifyLocalArchiveBeforeTransfer.Or(false)
	eff.TestArchiveBeforeDeletion = job.TestArchiveBeforeDeletion.Or(false)
	eff.PinOnCreation = job.PinOnCreation.Or(false)

	// SetDef carries no LocalRetentionCount override in §3; only the
	// explicitly named keys (OnErrorInJob, PostRunAction, LogRetentionCount)
	// are allowed to flow from a set.
	eff.LocalRetentionCount = cli.LocalRetentionCount.Merge(job.LocalRetentionCount).Or(0)

	eff.DeleteToRecycleBin = job.DeleteToRecycleBin.Or(false)
	eff.RetentionConfirmDelete = job.RetentionConfirmDelete.Or(true)

	eff.MinimumRequiredFreeSpaceGB = job.MinimumRequiredFreeSpaceGB.Or(0)
	eff.ExitOnLowSpace = job.ExitOnLowSpace.Or(false)

	eff.TreatSevenZipWarningsAsSuccess = job.TreatSevenZipWarningsAsSuccess.Or(global.TreatSevenZipWarningsAsSuccess)
	eff.SevenZipCpuAffinity = job.SevenZipCpuAffinity.Or("")
	eff.SevenZipProcessPriority = job.SevenZipProcessPriority.Or(model.PriorityNormal)

	eff.MaxRetryAttempts = job.MaxRetryAttempts.Or(1)
	if eff.MaxRetryAttempts < 1 {
		eff.MaxRetryAttempts = 1
	}
	eff.RetryDelaySeconds = job.RetryDelaySeconds.Or(5)
	eff.EnableRetries = job.EnableRetries.Or(false)

	eff.PreBackupScriptPath = job.PreBackupScriptPath.Or("")
	eff.PostLocalArchiveScriptPath = job.PostLocalArchiveScriptPath.Or("")
	eff.PostBackupScriptOnSuccessPath = job.PostBackupScriptOnSuccessPath.Or("")
	eff.PostBackupScriptOnFailurePath = job.PostBackupScriptOnFailurePath.Or("")
	eff.PostBackupScriptAlwaysPath = job.PostBackupScriptAlwaysPath.Or("")

	eff.PostRunAction = resolvePostRunAction(job, set, setPresent, cli, global)

	// LogRetentionCount precedence per §9's resolved open question: CLI if
	// given, else Set if the key is present, else the layered
	// EffectiveJobConfig default (job, falling back to global).
	layered := job.LogRetentionCount.Or(global.LogRetentionCount)
	if setPresent && set.LogRetentionCount.Set {
		layered = set.LogRetentionCount.Value
	}
	eff.LogRetentionCount = cli.LogRetentionCount.Or(layered)

	eff.JobArchiveExtension = archiveExtension(eff.ArchiveType, eff.CreateSFX)
	if eff.SplitVolumeSize != "" {
		eff.InternalArchiveExtension = ".7z"
	} else {
		eff.InternalArchiveExtension = eff.JobArchiveExtension
	}

	targets, err := resolveTargets(global, job.TargetNames)
	if err != nil {
		return nil, err
	}
	eff.TargetInstances = targets

	if err := validate(eff); err != nil {
		return nil, err
	}

	return eff, nil
}

func archiveExtension(archiveType string, sfx bool) string {
	if sfx {
		return ".exe"
	}
	switch archiveType {
	case "zip":
		return ".zip"
	default:
		return ".7z"
	}
}

func resolveTargets(global *model.GlobalConfig, names []string) ([]model.ResolvedTarget, error) {
	out := make([]model.ResolvedTarget, 0, len(names))
	for _, name := range names {
		td, ok := global.BackupTargets[name]
		if !ok {
			return nil, model.ConfigError("target %q referenced by job is not defined in BackupTargets", name)
		}
		out = append(out, model.ResolvedTarget{Name: name, TargetDef: td})
	}
	return out, nil
}

func resolvePostRunAction(job model.JobDef, set model.SetDef, setPresent bool, cli CliOverrides, global *model.GlobalConfig) model.PostRunActionConfig {
	// Precedence: CLI override > Set.PostRunAction > Job.PostRunAction >
	// GlobalConfig.PostRunActionDefaults; first level present AND enabled
	// AND not "None" wins (§4.9).
	candidates := []model.Optional[model.PostRunActionConfig]{cli.PostRunAction}
	if setPresent {
		candidates = append(candidates, set.PostRunAction)
	}
	candidates = append(candidates, job.PostRunAction)
	for _, c := range candidates {
		if c.Set && c.Value.Enabled && c.Value.Action != model.PostRunNone {
			return c.Value
		}
	}
	if global.PostRunActionDefaults.Enabled && global.PostRunActionDefaults.Action != model.PostRunNone {
		return global.PostRunActionDefaults
	}
	return model.PostRunActionConfig{Action: model.PostRunNone, Enabled: false}
}
