package archiver

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"time"

	"github.com/eastfield/archivist/internal/model"
	"github.com/eastfield/archivist/internal/runctx"
)

// Exit codes 7-Zip itself never returns, used to report failures before the
// process could report its own (§4.4).
const (
	ExitSpawnFailed   = -999
	ExitUserDeclined  = -1000
)

// Driver runs the 7-Zip binary at SevenZipPath and interprets its exit code
// (§4.4). It satisfies retention.ArchiveTester via Test.
type Driver struct {
	SevenZipPath string
}

func New(sevenZipPath string) *Driver {
	return &Driver{SevenZipPath: sevenZipPath}
}

// Result is the outcome of one ArchiverDriver invocation.
type Result struct {
	ExitCode int
	Status   model.OverallStatus
	Stderr   string
	Stdout   string
}

// Create runs the 7-Zip "a" command. When EnableRetries is set it makes up
// to MaxRetryAttempts attempts: exit 0 always stops retrying, and exit 1
// stops only when TreatSevenZipWarningsAsSuccess is set (§4.4 process
// control).
func (d *Driver) Create(rc *runctx.RunContext, eff *model.EffectiveJobConfig, archivePath string, sourcePaths []string, password string) (Result, error) {
	args := BuildCreateArgs(eff, archivePath, sourcePaths, password, func(msg string) {
		rc.Logf(model.LogWarning, "%s", msg)
	})

	attempts := 1
	if eff.EnableRetries && eff.MaxRetryAttempts > 1 {
		attempts = eff.MaxRetryAttempts
	}

	var last Result
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		last, lastErr = d.run(rc, eff, args)
		if lastErr == nil && last.ExitCode == 0 {
			return last, nil
		}
		if last.ExitCode == 1 && eff.TreatSevenZipWarningsAsSuccess {
			return last, nil
		}
		if attempt < attempts {
			rc.Logf(model.LogWarning, "7-Zip exited %d on attempt %d/%d, retrying in %ds", last.ExitCode, attempt, attempts, eff.RetryDelaySeconds)
			select {
			case <-rc.Ctx.Done():
				return last, model.WrapError(model.KindCancelled, rc.Ctx.Err(), "retry wait cancelled")
			case <-time.After(time.Duration(eff.RetryDelaySeconds) * time.Second):
			}
		}
	}
	return last, classifyExit(last, eff)
}

// Test runs the 7-Zip "t" command, satisfying retention.ArchiveTester.
func (d *Driver) Test(rc *runctx.RunContext, archivePath, password string) error {
	args := BuildTestArgs(archivePath, password, false)
	eff := &model.EffectiveJobConfig{SevenZipPath: d.SevenZipPath}
	result, err := d.run(rc, eff, args)
	if err != nil {
		return err
	}
	if result.ExitCode != 0 {
		return model.NewError(model.KindArchiverError, "7-Zip test of %s exited %d: %s", archivePath, result.ExitCode, result.Stderr)
	}
	return nil
}

// TestWithChecksum is Test with -scrc appended, used when
// VerifyArchiveChecksumOnTest is set.
func (d *Driver) TestWithChecksum(rc *runctx.RunContext, archivePath, password string) error {
	args := BuildTestArgs(archivePath, password, true)
	eff := &model.EffectiveJobConfig{SevenZipPath: d.SevenZipPath}
	result, err := d.run(rc, eff, args)
	if err != nil {
		return err
	}
	if result.ExitCode != 0 {
		return model.NewError(model.KindArchiverError, "7-Zip checksum test of %s exited %d: %s", archivePath, result.ExitCode, result.Stderr)
	}
	return nil
}

// List runs "l -slt" and returns the parsed technical-listing records (§6).
func (d *Driver) List(rc *runctx.RunContext, archivePath, password string) ([]ListRecord, error) {
	args := BuildListArgs(archivePath, password)
	eff := &model.EffectiveJobConfig{SevenZipPath: d.SevenZipPath}
	result, err := d.run(rc, eff, args)
	if err != nil {
		return nil, err
	}
	if result.ExitCode != 0 {
		return nil, model.NewError(model.KindArchiverError, "7-Zip list of %s exited %d: %s", archivePath, result.ExitCode, result.Stderr)
	}
	return ParseListOutput(result.Stdout), nil
}

func (d *Driver) run(rc *runctx.RunContext, eff *model.EffectiveJobConfig, args []string) (Result, error) {
	if rc.Confirm.Simulate {
		rc.Logf(model.LogSimulate, "would run: %s %v", d.SevenZipPath, args)
		return Result{ExitCode: 0, Status: model.StatusSimulatedComplete}, nil
	}

	ctx := rc.Ctx
	cmd := exec.CommandContext(ctx, d.SevenZipPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return Result{ExitCode: ExitSpawnFailed}, model.WrapError(model.KindEnv, err, "failed to spawn %s", d.SevenZipPath)
	}

	applyPriorityAndAffinity(cmd, eff.SevenZipProcessPriority, eff.SevenZipCpuAffinity, rc)

	err := cmd.Wait()
	exitCode := 0
	if err != nil {
		if ctx.Err() == context.Canceled || ctx.Err() == context.DeadlineExceeded {
			return Result{ExitCode: ExitSpawnFailed, Stderr: stderr.String()}, model.WrapError(model.KindCancelled, ctx.Err(), "7-Zip run cancelled")
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			return Result{ExitCode: ExitSpawnFailed}, model.WrapError(model.KindEnv, err, "failed to run %s", d.SevenZipPath)
		}
	}

	return Result{
		ExitCode: exitCode,
		Status:   statusForExit(exitCode),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}, nil
}

func statusForExit(exitCode int) model.OverallStatus {
	switch {
	case exitCode == 0:
		return model.StatusSuccess
	case exitCode == 1:
		return model.StatusWarnings
	default:
		return model.StatusFailure
	}
}

func classifyExit(r Result, eff *model.EffectiveJobConfig) error {
	switch {
	case r.ExitCode == 0:
		return nil
	case r.ExitCode == 1:
		return model.NewError(model.KindArchiverWarning, "7-Zip reported warnings (exit 1): %s", r.Stderr)
	default:
		return model.NewError(model.KindArchiverError, "7-Zip failed (exit %d): %s", r.ExitCode, r.Stderr)
	}
}

// ListRecord is one "Path = ..." record from a "-slt" listing (§6).
type ListRecord struct {
	Path         string
	Size         int64
	Modified     string
	Attributes   string
	CRC          string
	Encrypted    bool
}

// ParseListOutput parses 7-Zip's "-slt" technical listing: blank-line
// separated "Key = Value" records following the "----------" separator.
func ParseListOutput(output string) []ListRecord {
	scanner := bufio.NewScanner(bytes.NewBufferString(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var records []ListRecord
	var cur ListRecord
	inRecords := false
	have := false

	flush := func() {
		if have && cur.Path != "" {
			records = append(records, cur)
		}
		cur = ListRecord{}
		have = false
	}

	for scanner.Scan() {
		line := scanner.Text()
		if !inRecords {
			if bytes.HasPrefix([]byte(line), []byte("----------")) {
				inRecords = true
			}
			continue
		}
		if line == "" {
			flush()
			continue
		}
		key, val, ok := splitKV(line)
		if !ok {
			continue
		}
		have = true
		switch key {
		case "Path":
			cur.Path = val
		case "Size":
			cur.Size = int64(parseIntOr(val, 0))
		case "Modified":
			cur.Modified = val
		case "Attributes":
			cur.Attributes = val
		case "CRC":
			cur.CRC = val
		case "Encrypted":
			cur.Encrypted = val == "+"
		}
	}
	flush()
	return records
}

func splitKV(line string) (key, val string, ok bool) {
	idx := bytes.Index([]byte(line), []byte(" = "))
	if idx < 0 {
		return "", "", false
	}
	return line[:idx], line[idx+3:], true
}
