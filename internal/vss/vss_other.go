//go:build !windows

package vss

import (
	"github.com/eastfield/archivist/internal/model"
	"github.com/eastfield/archivist/internal/runctx"
)

func init() {
	platformCreator = unsupportedCreator{}
}

type unsupportedCreator struct{}

// create always fails: there is no portable shadow-copy facility on this
// platform. The job proceeds without a snapshot only when EnableVSS is
// false in the effective config (§4.6).
func (unsupportedCreator) create(rc *runctx.RunContext, paths []string, opts Options) (*model.VssSession, error) {
	return nil, model.EnvError("VSS is not supported on this platform")
}

func releaseImpl(rc *runctx.RunContext, session *model.VssSession) {}
