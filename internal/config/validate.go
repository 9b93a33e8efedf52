package config

import "github.com/eastfield/archivist/internal/model"

// validate enforces §4.1's "every required setting must resolve to a
// non-null value" and the specific constraints called out in the
// distilled spec. It runs after merge+derivation so it sees the final,
// fully-resolved EffectiveJobConfig.
func validate(eff *model.EffectiveJobConfig) error {
	if eff.BaseFileName == "" {
		return model.ConfigError("job %q: BaseFileName resolved empty", eff.JobName)
	}
	if len(eff.Path) == 0 {
		return model.ConfigError("job %q: Path must name at least one source", eff.JobName)
	}
	if eff.DestinationDir == "" {
		return model.ConfigError("job %q: DestinationDir did not resolve (no job or global default)", eff.JobName)
	}
	if eff.SevenZipPath == "" {
		return model.ConfigError("job %q: SevenZipPath is not configured", eff.JobName)
	}
	if eff.MaxRetryAttempts < 1 {
		return model.ConfigError("job %q: MaxRetryAttempts must be >= 1, got %d", eff.JobName, eff.MaxRetryAttempts)
	}
	if eff.SplitVolumeSize != "" && !splitSizePattern.MatchString(eff.SplitVolumeSize) {
		return model.ConfigError("job %q: SplitVolumeSize %q does not match ^\\d+[kmg]$", eff.JobName, eff.SplitVolumeSize)
	}
	if eff.GenerateArchiveChecksum || eff.GenerateSplitArchiveManifest {
		switch eff.ChecksumAlgorithm {
		case model.ChecksumMD5, model.ChecksumSHA1, model.ChecksumSHA256, model.ChecksumSHA384, model.ChecksumSHA512:
		default:
			return model.ConfigError("job %q: unrecognised ChecksumAlgorithm %v", eff.JobName, eff.ChecksumAlgorithm)
		}
	}
	return nil
}
