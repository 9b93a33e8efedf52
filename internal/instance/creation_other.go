//go:build !linux

package instance

import (
	"os"
	"time"
)

// creationTime falls back to ModTime on platforms without a cheap portable
// birth-time syscall wired in here (darwin's Birthtimespec and windows'
// CreationTime are both reachable via os.FileInfo.Sys(), but the extra
// precision isn't needed for SortTime ordering across backup runs taken
// at least a day apart).
func creationTime(path string, info os.FileInfo) time.Time {
	return info.ModTime()
}
