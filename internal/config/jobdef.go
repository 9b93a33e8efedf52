package config

import (
	"github.com/eastfield/archivist/internal/model"
)

// decodeJobDef decodes one BackupLocations entry. Each setting Resolve
// layers is wrapped in model.Optional so a field simply absent from the YAML
// map is distinguishable, later in Resolve, from one explicitly set to its
// zero value (P1). Path, Name, the name lists, AdditionalExclusions and
// Schedule are decoded as plain values.
func decodeJobDef(m rawDoc) (model.JobDef, error) {
	jd := model.JobDef{}

	switch p := m["Path"].(type) {
	case string:
		jd.Path = []string{p}
	case []any:
		jd.Path = stringList(p)
	}
	if v, ok := m["Name"].(string); ok {
		jd.Name = v
	}
	jd.TargetNames = stringList(m["TargetNames"])
	jd.DependsOnJobs = stringList(m["DependsOnJobs"])
	jd.AdditionalExclusions = stringList(m["AdditionalExclusions"])
	if sched, ok := asMap(m["Schedule"]); ok {
		jd.Schedule = sched
	}

	setStr(m, "DestinationDir", &jd.DestinationDir)
	setBool(m, "Enabled", &jd.Enabled)
	setStr(m, "ArchiveType", &jd.ArchiveType)
	setInt(m, "CompressionLevel", &jd.CompressionLevel)
	setStr(m, "CompressionMethod", &jd.CompressionMethod)
	setStr(m, "DictionarySize", &jd.DictionarySize)
	setStr(m, "WordSize", &jd.WordSize)
	setStr(m, "SolidBlockSize", &jd.SolidBlockSize)
	setBool(m, "CompressOpenFiles", &jd.CompressOpenFiles)
	setInt(m, "ThreadsSetting", &jd.ThreadsSetting)
	setBool(m, "FollowSymbolicLinks", &jd.FollowSymbolicLinks)
	setStr(m, "SevenZipTempDirectory", &jd.SevenZipTempDirectory)
	setBool(m, "CreateSFX", &jd.CreateSFX)
	if v, ok := m["SFXModule"].(string); ok {
		var sm model.SFXModule
		if err := sm.Parse(v); err == nil {
			jd.SFXModule = model.Some(sm)
		}
	}
	setStr(m, "SplitVolumeSize", &jd.SplitVolumeSize)
	setStr(m, "SevenZipIncludeListFile", &jd.SevenZipIncludeListFile)
	setStr(m, "SevenZipExcludeListFile", &jd.SevenZipExcludeListFile)
	if v, ok := m["ArchivePasswordSource"].(string); ok {
		var aps model.ArchivePasswordSource
		if err := aps.Parse(v); err == nil {
			jd.ArchivePasswordSource = model.Some(aps)
		}
	}
	setStr(m, "ArchivePasswordSecretName", &jd.ArchivePasswordSecretName)
	setStr(m, "ArchivePasswordPlain", &jd.ArchivePasswordPlain)
	setStr(m, "ArchiveDateFormat", &jd.ArchiveDateFormat)
	setBool(m, "EnableVSS", &jd.EnableVSS)
	setStr(m, "VSSContextOption", &jd.VSSContextOption)
	setInt(m, "VSSPollingTimeoutSeconds", &jd.VSSPollingTimeoutSeconds)
	setInt(m, "VSSPollingIntervalSeconds", &jd.VSSPollingIntervalSeconds)
	setBool(m, "GenerateArchiveChecksum", &jd.GenerateArchiveChecksum)
	if v, ok := m["ChecksumAlgorithm"].(string); ok {
		var alg model.ChecksumAlgorithm
		if err := alg.Parse(v); err == nil {
			jd.ChecksumAlgorithm = model.Some(alg)
		}
	}
	setBool(m, "GenerateSplitArchiveManifest", &jd.GenerateSplitArchiveManifest)
	setBool(m, "GenerateContentsManifest", &jd.GenerateContentsManifest)
	setBool(m, "TestArchiveAfterCreation", &jd.TestArchiveAfterCreation)
	setBool(m, "VerifyArchiveChecksumOnTest", &jd.VerifyArchiveChecksumOnTest)
	setBool(m, "VerifyLocalArchiveBeforeTransfer", &jd.VerifyLocalArchiveBeforeTransfer)
	setBool(m, "TestArchiveBeforeDeletion", &jd.TestArchiveBeforeDeletion)
	setBool(m, "PinOnCreation", &jd.PinOnCreation)
	setInt(m, "LocalRetentionCount", &jd.LocalRetentionCount)
	setBool(m, "DeleteToRecycleBin", &jd.DeleteToRecycleBin)
	setBool(m, "RetentionConfirmDelete", &jd.RetentionConfirmDelete)
	setFloat(m, "MinimumRequiredFreeSpaceGB", &jd.MinimumRequiredFreeSpaceGB)
	setBool(m, "ExitOnLowSpace", &jd.ExitOnLowSpace)
	setBool(m, "TreatSevenZipWarningsAsSuccess", &jd.TreatSevenZipWarningsAsSuccess)
	setStr(m, "SevenZipCpuAffinity", &jd.SevenZipCpuAffinity)
	if v, ok := m["SevenZipProcessPriority"].(string); ok {
		var pp model.ProcessPriority
		if err := pp.Parse(v); err == nil {
			jd.SevenZipProcessPriority = model.Some(pp)
		}
	}
	setInt(m, "MaxRetryAttempts", &jd.MaxRetryAttempts)
	setInt(m, "RetryDelaySeconds", &jd.RetryDelaySeconds)
	setBool(m, "EnableRetries", &jd.EnableRetries)
	setStr(m, "PreBackupScriptPath", &jd.PreBackupScriptPath)
	setStr(m, "PostLocalArchiveScriptPath", &jd.PostLocalArchiveScriptPath)
	setStr(m, "PostBackupScriptOnSuccessPath", &jd.PostBackupScriptOnSuccessPath)
	setStr(m, "PostBackupScriptOnFailurePath", &jd.PostBackupScriptOnFailurePath)
	setStr(m, "PostBackupScriptAlwaysPath", &jd.PostBackupScriptAlwaysPath)
	setInt(m, "LogRetentionCount", &jd.LogRetentionCount)
	if pra, ok := asMap(m["PostRunAction"]); ok {
		jd.PostRunAction = model.Some(decodePostRunAction(pra))
	}

	return jd, nil
}

func setStr(m rawDoc, key string, dst *model.Optional[string]) {
	if v, ok := m[key].(string); ok {
		*dst = model.Some(v)
	}
}

func setBool(m rawDoc, key string, dst *model.Optional[bool]) {
	if v, ok := m[key].(bool); ok {
		*dst = model.Some(v)
	}
}

func setInt(m rawDoc, key string, dst *model.Optional[int]) {
	if v, ok := asInt(m[key]); ok {
		*dst = model.Some(v)
	}
}

func setFloat(m rawDoc, key string, dst *model.Optional[float64]) {
	if v, ok := asFloat(m[key]); ok {
		*dst = model.Some(v)
	}
}
