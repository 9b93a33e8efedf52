// Package vss implements VssCoordinator (§4.6): creating a point-in-time
// shadow copy of every volume a job's source paths live on, remapping paths
// to read through it, and releasing it exactly once.
package vss

import (
	"time"

	"github.com/eastfield/archivist/internal/model"
	"github.com/eastfield/archivist/internal/runctx"
)

// Options configures one Create call.
type Options struct {
	ContextOption   string
	PollTimeout     time.Duration
	PollInterval    time.Duration
}

// Creator is implemented per-platform: vss_windows.go backs it with raw NT
// syscalls via go-ntdll, vss_other.go always fails with EnvError.
type Creator interface {
	create(rc *runctx.RunContext, paths []string, opts Options) (*model.VssSession, error)
}

var platformCreator Creator

// Create snapshots every volume referenced by paths and returns a session
// mapping each original path to its shadow-copy path. On a platform with no
// VSS support this always returns an EnvError; the caller proceeds without a
// snapshot only when EnableVSS is false in the effective config (§4.6).
func Create(rc *runctx.RunContext, paths []string, opts Options) (*model.VssSession, error) {
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = 60 * time.Second
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 2 * time.Second
	}
	return platformCreator.create(rc, paths, opts)
}

// Release tears down a VssSession exactly once. Calling it twice, or with a
// nil/already-inactive session, is a no-op (§5: "non-shareable VssSession").
func Release(rc *runctx.RunContext, session *model.VssSession) {
	if !session.Active() {
		return
	}
	releaseImpl(rc, session)
	session.Deactivate()
}
