//go:build windows

package archiver

import (
	"os/exec"
	"strconv"
	"strings"

	"golang.org/x/sys/windows"

	"github.com/eastfield/archivist/internal/model"
	"github.com/eastfield/archivist/internal/runctx"
)

func priorityClass(p model.ProcessPriority) uint32 {
	switch p {
	case model.PriorityIdle:
		return windows.IDLE_PRIORITY_CLASS
	case model.PriorityBelowNormal:
		return windows.BELOW_NORMAL_PRIORITY_CLASS
	case model.PriorityAboveNormal:
		return windows.ABOVE_NORMAL_PRIORITY_CLASS
	case model.PriorityHigh:
		return windows.HIGH_PRIORITY_CLASS
	default:
		return windows.NORMAL_PRIORITY_CLASS
	}
}

// applyPriorityAndAffinity sets the running 7-Zip process's priority class
// and CPU affinity mask. Best-effort: failures are logged as warnings, they
// never fail the archiving step (§4.4).
func applyPriorityAndAffinity(cmd *exec.Cmd, priority model.ProcessPriority, affinity string, rc *runctx.RunContext) {
	if cmd.Process == nil {
		return
	}
	handle, err := windows.OpenProcess(windows.PROCESS_SET_INFORMATION|windows.PROCESS_QUERY_INFORMATION, false, uint32(cmd.Process.Pid))
	if err != nil {
		rc.Logf(model.LogWarning, "could not open 7-Zip process handle: %v", err)
		return
	}
	defer windows.CloseHandle(handle)

	if priority != model.PriorityNormal {
		if err := windows.SetPriorityClass(handle, priorityClass(priority)); err != nil {
			rc.Logf(model.LogWarning, "could not set 7-Zip process priority: %v", err)
		}
	}

	if affinity == "" {
		return
	}
	mask, err := parseAffinityMask(affinity)
	if err != nil {
		rc.Logf(model.LogWarning, "could not parse SevenZipCpuAffinity %q: %v", affinity, err)
		return
	}
	if err := windows.SetProcessAffinityMask(handle, mask); err != nil {
		rc.Logf(model.LogWarning, "could not set 7-Zip CPU affinity: %v", err)
	}
}

// parseAffinityMask accepts either a hex bitmask ("0xF") or a comma
// separated list of CPU indices ("0,2,4"), clamped to the host's logical
// processor count.
func parseAffinityMask(spec string) (uintptr, error) {
	var sysInfo windows.SystemInfo
	windows.GetSystemInfo(&sysInfo)
	nCPU := int(sysInfo.NumberOfProcessors)
	if nCPU <= 0 {
		nCPU = 64
	}

	if strings.HasPrefix(spec, "0x") || strings.HasPrefix(spec, "0X") {
		mask, err := strconv.ParseUint(spec[2:], 16, 64)
		if err != nil {
			return 0, err
		}
		return uintptr(mask) & ((1 << uint(nCPU)) - 1), nil
	}

	var mask uintptr
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return 0, err
		}
		if n >= 0 && n < nCPU {
			mask |= 1 << uint(n)
		}
	}
	return mask, nil
}
