package hooks

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eastfield/archivist/internal/logging"
	"github.com/eastfield/archivist/internal/model"
	"github.com/eastfield/archivist/internal/runctx"
)

func newTestRC() *runctx.RunContext {
	return runctx.New(context.Background(), logging.Discard, model.NewJobReport("job", ""), runctx.ConfirmPolicy{})
}

func TestRun_EmptyPathIsNoop(t *testing.T) {
	result := Run(newTestRC(), "", Context{JobName: "nightly"})
	assert.False(t, result.Ran)
}

func TestRun_MissingScriptIsWarningNotError(t *testing.T) {
	result := Run(newTestRC(), filepath.Join(t.TempDir(), "does-not-exist.sh"), Context{JobName: "nightly"})
	assert.False(t, result.Ran)
	assert.NoError(t, result.Err)
}

func TestRun_SimulateModeDoesNotExecute(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script test is unix-only")
	}
	dir := t.TempDir()
	script := filepath.Join(dir, "hook.sh")
	marker := filepath.Join(dir, "ran")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\ntouch "+marker+"\n"), 0o755))

	rc := runctx.New(context.Background(), logging.Discard, model.NewJobReport("job", ""), runctx.ConfirmPolicy{Simulate: true})
	result := Run(rc, script, Context{JobName: "nightly"})
	assert.True(t, result.Ran)
	_, err := os.Stat(marker)
	assert.True(t, os.IsNotExist(err))
}

func TestRun_NonZeroExitIsRecordedButNotFatal(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script test is unix-only")
	}
	dir := t.TempDir()
	script := filepath.Join(dir, "hook.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\nexit 3\n"), 0o755))

	result := Run(newTestRC(), script, Context{JobName: "nightly"})
	assert.True(t, result.Ran)
	assert.Equal(t, 3, result.ExitCode)
	kind, ok := model.KindOf(result.Err)
	assert.True(t, ok)
	assert.Equal(t, model.KindHookNonZero, kind)
}

func TestRun_EnvironmentCarriesJobContext(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script test is unix-only")
	}
	dir := t.TempDir()
	script := filepath.Join(dir, "hook.sh")
	out := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho \"$ARCHIVIST_JOB_NAME\" > "+out+"\n"), 0o755))

	Run(newTestRC(), script, Context{JobName: "nightly-db"})
	contents, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(contents), "nightly-db")
}
