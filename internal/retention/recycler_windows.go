//go:build windows

package retention

import (
	"syscall"
	"unsafe"

	"github.com/eastfield/archivist/internal/model"
)

// MoveToRecycleBin moves path to the Windows Recycle Bin via the shell32
// SHFileOperationW facility, per §4.3: "use the platform facility that
// moves to recycle bin; if unavailable, fail with EnvError."
func MoveToRecycleBin(path string) error {
	shell32 := syscall.NewLazyDLL("shell32.dll")
	proc := shell32.NewProc("SHFileOperationW")
	if err := proc.Find(); err != nil {
		return model.WrapError(model.KindEnv, err, "SHFileOperationW unavailable")
	}

	// SHFILEOPSTRUCT expects the pFrom buffer double-NUL terminated.
	from, err := syscall.UTF16FromString(path)
	if err != nil {
		return model.WrapError(model.KindEnv, err, "encoding path for recycle-bin move")
	}
	from = append(from, 0)

	const (
		foDelete          = 0x0003
		fofAllowUndo      = 0x0040
		fofNoConfirmation = 0x0010
		fofSilent         = 0x0004
	)

	type shFileOpStruct struct {
		hwnd                  uintptr
		wFunc                 uint32
		pFrom                 *uint16
		pTo                   *uint16
		fFlags                uint16
		fAnyOperationsAborted int32
		hNameMappings         uintptr
		lpszProgressTitle     *uint16
	}

	op := shFileOpStruct{
		wFunc:  foDelete,
		pFrom:  &from[0],
		fFlags: fofAllowUndo | fofNoConfirmation | fofSilent,
	}

	ret, _, _ := proc.Call(uintptr(unsafe.Pointer(&op)))
	if ret != 0 {
		return model.NewError(model.KindEnv, "SHFileOperationW returned code %d moving %q to recycle bin", ret, path)
	}
	return nil
}
