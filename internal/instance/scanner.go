// Package instance implements InstanceScanner (§4.2): grouping archive
// files and their sidecars, found either on the local filesystem or via a
// TargetProvider's remote listing, into logical BackupInstance values.
package instance

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/eastfield/archivist/internal/model"
)

// recognised sidecar suffixes, grouped into Files (not the .pinned marker,
// which only flips Pinned and is never part of Files — P2).
var manifestSuffixes = []string{".contents.manifest"}

// KeyPattern builds the date-stamped instance-key regex for a given
// BaseFileName and primary extension, with base and ext regexp-quoted:
// "^<base> \[\d{4}-[A-Za-z]{3}-\d{2}\]<ext>". It is exported so remote retention
// (§4.3) can reuse it against a TargetProvider's listing.
func KeyPattern(baseFileName, primaryExt string) *regexp.Regexp {
	pattern := "^" + regexp.QuoteMeta(baseFileName) + ` \[\d{4}-[A-Za-z]{3}-\d{2}\]` + regexp.QuoteMeta(primaryExt)
	return regexp.MustCompile(pattern)
}

// Scan enumerates dir for files matching "<baseFileName>*" and groups them
// into BackupInstances keyed by the date-stamped prefix (§4.2).
func Scan(dir, baseFileName, primaryExt string) (map[string]*model.BackupInstance, []string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}

	key := KeyPattern(baseFileName, primaryExt)
	instances := map[string]*model.BackupInstance{}
	var ignored []string

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, baseFileName) {
			continue
		}
		loc := key.FindString(name)
		if loc == "" {
			ignored = append(ignored, name)
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		full := filepath.Join(dir, name)

		inst, ok := instances[loc]
		if !ok {
			inst = &model.BackupInstance{Key: loc}
			instances[loc] = inst
		}

		if strings.HasSuffix(name, ".pinned") {
			inst.Pinned = true
			continue
		}

		inst.Files = append(inst.Files, model.FileRef{
			Path:         full,
			Name:         name,
			Size:         info.Size(),
			CreationTime: creationTime(full, info),
		})
	}

	for _, inst := range instances {
		inst.SortTime = oldestCreationTime(inst.Files)
		sort.Slice(inst.Files, func(i, j int) bool { return inst.Files[i].Name < inst.Files[j].Name })
	}

	return instances, ignored, nil
}

func oldestCreationTime(files []model.FileRef) time.Time {
	var result time.Time
	first := true
	for _, f := range files {
		if first || f.CreationTime.Before(result) {
			result = f.CreationTime
			first = false
		}
	}
	return result
}

// IsManifestSidecar reports whether name is a recognised non-pin sidecar
// (".contents.manifest", "manifest.<alg>", or a bare "<alg>" suffix). The
// grouping in Scan doesn't need to special-case these — they match the same
// date-stamped-prefix rule as any ".NNN" volume part — but TargetProvider
// implementations reuse this to decide what counts as "staged" for an
// instance (§4.8).
func IsManifestSidecar(name string) bool {
	for _, suf := range manifestSuffixes {
		if strings.HasSuffix(name, suf) {
			return true
		}
	}
	if strings.Contains(name, ".manifest.") {
		return true
	}
	switch {
	case strings.HasSuffix(name, ".sha256"), strings.HasSuffix(name, ".sha1"),
		strings.HasSuffix(name, ".sha384"), strings.HasSuffix(name, ".sha512"),
		strings.HasSuffix(name, ".md5"):
		return true
	}
	return false
}
