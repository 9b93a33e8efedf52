// Package hooks implements HookRunner (§4.11): invoking external scripts at
// lifecycle points with job context injected as environment variables and
// CLI arguments.
package hooks

import (
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/eastfield/archivist/internal/model"
	"github.com/eastfield/archivist/internal/runctx"
)

// Context is the job state a hook is told about (§4.11).
type Context struct {
	JobName         string
	StatusSoFar     model.OverallStatus
	ArchivePath     string
	ArchiveSize     int64
}

// Result records a completed hook invocation. A hook's exit code never
// changes job status (§4.11).
type Result struct {
	ScriptPath string
	Ran        bool
	ExitCode   int
	Err        error
	Duration   time.Duration
}

// Run invokes scriptPath with the job context injected as both environment
// variables and positional arguments. A script missing from disk is a
// WARNING, not a failure (§4.11).
func Run(rc *runctx.RunContext, scriptPath string, hctx Context) Result {
	if scriptPath == "" {
		return Result{}
	}
	if _, err := os.Stat(scriptPath); err != nil {
		rc.Logf(model.LogWarning, "hook script %q not found, skipping", scriptPath)
		return Result{ScriptPath: scriptPath}
	}

	if rc.Confirm.Simulate {
		rc.Logf(model.LogSimulate, "would run hook %s", scriptPath)
		return Result{ScriptPath: scriptPath, Ran: true}
	}

	args := []string{hctx.JobName, hctx.StatusSoFar.String(), hctx.ArchivePath, strconv.FormatInt(hctx.ArchiveSize, 10)}
	cmd := exec.CommandContext(rc.Ctx, scriptPath, args...)
	cmd.Env = append(os.Environ(),
		"ARCHIVIST_JOB_NAME="+hctx.JobName,
		"ARCHIVIST_STATUS="+hctx.StatusSoFar.String(),
		"ARCHIVIST_ARCHIVE_PATH="+hctx.ArchivePath,
		"ARCHIVIST_ARCHIVE_SIZE="+strconv.FormatInt(hctx.ArchiveSize, 10),
	)

	start := time.Now()
	err := cmd.Run()
	result := Result{ScriptPath: scriptPath, Ran: true, Duration: time.Since(start)}
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.Err = model.WrapError(model.KindHookNonZero, err, "running hook %s", scriptPath)
			return result
		}
		result.Err = model.NewError(model.KindHookNonZero, "hook %s exited %d", scriptPath, result.ExitCode)
		rc.Logf(model.LogWarning, "hook %s exited %d", scriptPath, result.ExitCode)
	}
	return result
}
