//go:build !windows

package retention

import "github.com/eastfield/archivist/internal/model"

// MoveToRecycleBin has no portable equivalent outside Windows in this
// module; rather than silently permanently-deleting, §4.3 requires failing
// with EnvError when the facility is unavailable.
func MoveToRecycleBin(path string) error {
	return model.EnvError("recycle-bin deletion is not available on this platform (path %q)", path)
}
