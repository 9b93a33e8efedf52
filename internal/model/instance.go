package model

import "time"

// FileRef is one file belonging to a BackupInstance: a primary archive, a
// split volume part, or a recognised sidecar.
type FileRef struct {
	// Path is a local filesystem path for on-disk instances, or a
	// provider-specific remote key for instances discovered via
	// TargetProvider.ListRemoteInstances.
	Path         string
	Name         string
	Size         int64
	CreationTime time.Time
}

// BackupInstance is a logical backup snapshot identified by
// "<BaseFileName> [<DateStamp>]<InternalExtension>" (§3, §6).
type BackupInstance struct {
	Key      string
	Files    []FileRef
	SortTime time.Time
	Pinned   bool
}

// AllFilePaths returns every file path in the instance, for deletion.
func (b *BackupInstance) AllFilePaths() []string {
	paths := make([]string, 0, len(b.Files))
	for _, f := range b.Files {
		paths = append(paths, f.Path)
	}
	return paths
}
