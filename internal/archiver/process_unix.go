//go:build !windows

package archiver

import (
	"os/exec"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/eastfield/archivist/internal/model"
	"github.com/eastfield/archivist/internal/runctx"
)

// niceForPriority maps ProcessPriority onto a setpriority(2) nice value.
func niceForPriority(p model.ProcessPriority) int {
	switch p {
	case model.PriorityIdle:
		return 19
	case model.PriorityBelowNormal:
		return 10
	case model.PriorityAboveNormal:
		return -5
	case model.PriorityHigh:
		return -10
	default:
		return 0
	}
}

// applyPriorityAndAffinity nices the running 7-Zip process and pins it to
// the requested CPU set. Best-effort: failures are logged as warnings, they
// never fail the archiving step (§4.4).
func applyPriorityAndAffinity(cmd *exec.Cmd, priority model.ProcessPriority, affinity string, rc *runctx.RunContext) {
	if cmd.Process == nil {
		return
	}
	pid := cmd.Process.Pid

	if priority != model.PriorityNormal {
		if err := unix.Setpriority(unix.PRIO_PROCESS, pid, niceForPriority(priority)); err != nil {
			rc.Logf(model.LogWarning, "could not set 7-Zip process priority: %v", err)
		}
	}

	if affinity == "" {
		return
	}
	cpus, err := parseAffinity(affinity)
	if err != nil {
		rc.Logf(model.LogWarning, "could not parse SevenZipCpuAffinity %q: %v", affinity, err)
		return
	}
	var set unix.CPUSet
	for _, c := range cpus {
		set.Set(c)
	}
	if err := unix.SchedSetaffinity(pid, &set); err != nil {
		rc.Logf(model.LogWarning, "could not set 7-Zip CPU affinity: %v", err)
	}
}

// parseAffinity accepts either a hex bitmask ("0xF") or a comma-separated
// list of CPU indices ("0,2,4"), clamped to the host's available cores.
func parseAffinity(spec string) ([]int, error) {
	nCPU := numCPU()

	if strings.HasPrefix(spec, "0x") || strings.HasPrefix(spec, "0X") {
		mask, err := strconv.ParseUint(spec[2:], 16, 64)
		if err != nil {
			return nil, err
		}
		var cpus []int
		for i := 0; i < nCPU; i++ {
			if mask&(1<<uint(i)) != 0 {
				cpus = append(cpus, i)
			}
		}
		return cpus, nil
	}

	var cpus []int
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		if n >= 0 && n < nCPU {
			cpus = append(cpus, n)
		}
	}
	return cpus, nil
}

func numCPU() int {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return 64
	}
	return set.Count()
}
