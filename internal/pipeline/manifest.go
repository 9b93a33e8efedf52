package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/eastfield/archivist/internal/model"
	"github.com/eastfield/archivist/internal/runctx"
)

// checksumAndManifest implements the [Checksum/Manifest] step (§4.7):
// single-file checksum sidecar, split-set manifest, and/or a contents
// manifest from the archive's own technical listing.
func (p *Pipeline) checksumAndManifest(rc *runctx.RunContext, eff *model.EffectiveJobConfig, instanceKey, archivePath string, volumeParts []string, password string) error {
	if eff.GenerateArchiveChecksum && len(volumeParts) == 0 {
		digest, err := hashFile(archivePath, eff.ChecksumAlgorithm)
		if err != nil {
			return fmt.Errorf("hashing %s: %w", archivePath, err)
		}
		sidecar := archivePath + "." + algExtension(eff.ChecksumAlgorithm)
		if err := os.WriteFile(sidecar, []byte(digest+"\n"), 0o644); err != nil {
			return fmt.Errorf("writing checksum sidecar: %w", err)
		}
		rc.Logf(model.LogInfo, "wrote checksum sidecar %s", sidecar)
	}

	if eff.GenerateSplitArchiveManifest && len(volumeParts) > 0 {
		var b strings.Builder
		for _, part := range volumeParts {
			digest, err := hashFile(part, eff.ChecksumAlgorithm)
			if err != nil {
				return fmt.Errorf("hashing %s: %w", part, err)
			}
			fmt.Fprintf(&b, "%s  %s\n", digest, filepath.Base(part))
		}
		manifestPath := filepath.Join(filepath.Dir(archivePath), instanceKey+".manifest."+algExtension(eff.ChecksumAlgorithm))
		if err := os.WriteFile(manifestPath, []byte(b.String()), 0o644); err != nil {
			return fmt.Errorf("writing split manifest: %w", err)
		}
		rc.Logf(model.LogInfo, "wrote split archive manifest %s", manifestPath)
	}

	if eff.GenerateContentsManifest {
		records, err := p.Driver.List(rc, archivePath, password)
		if err != nil {
			return fmt.Errorf("listing archive contents: %w", err)
		}
		var b strings.Builder
		for _, r := range records {
			fmt.Fprintf(&b, "%s\t%d\t%s\n", r.Path, r.Size, r.CRC)
		}
		manifestPath := filepath.Join(filepath.Dir(archivePath), instanceKey+".contents.manifest")
		if err := os.WriteFile(manifestPath, []byte(b.String()), 0o644); err != nil {
			return fmt.Errorf("writing contents manifest: %w", err)
		}
		rc.Logf(model.LogInfo, "wrote contents manifest %s", manifestPath)
	}

	return nil
}
