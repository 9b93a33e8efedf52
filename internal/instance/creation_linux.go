//go:build linux

package instance

import (
	"encoding/binary"
	"os"
	"time"

	"github.com/pkg/xattr"
)

// cifsCreateTimeXattr is the extended attribute the Linux CIFS client
// exposes for file creation time on an SMB/CIFS-mounted share, mirrored
// from the teacher's common/writeThoughFile_linux.go. Archivist's local
// archive directory is frequently a mounted network share, so this is
// worth checking before falling back to mtime.
const cifsCreateTimeXattr = "user.cifs.creationtime"

// creationTime returns the best available creation timestamp for the file
// at path. Plain ext4/xfs don't expose birth time through the standard
// stat(2) family, so outside of a CIFS mount this falls back to ModTime,
// which is what SortTime grouping actually needs: a stable,
// monotonically-increasing-with-archive-age ordering.
func creationTime(path string, info os.FileInfo) time.Time {
	if raw, err := xattr.Get(path, cifsCreateTimeXattr); err == nil && len(raw) >= 8 {
		// Windows FILETIME: 100ns ticks since 1601-01-01 UTC.
		ticks := binary.LittleEndian.Uint64(raw)
		const epochDiff = 116444736000000000
		if ticks > epochDiff {
			secs := int64((ticks - epochDiff) / 10000000)
			nsec := int64(((ticks - epochDiff) % 10000000) * 100)
			return time.Unix(secs, nsec).UTC()
		}
	}
	return info.ModTime()
}
