package vss

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eastfield/archivist/internal/logging"
	"github.com/eastfield/archivist/internal/model"
	"github.com/eastfield/archivist/internal/runctx"
)

func newTestRC() *runctx.RunContext {
	return runctx.New(context.Background(), logging.Discard, model.NewJobReport("job", ""), runctx.ConfirmPolicy{})
}

func TestRelease_NoopOnNilSession(t *testing.T) {
	assert.NotPanics(t, func() { Release(newTestRC(), nil) })
}

func TestRelease_NoopWhenAlreadyReleased(t *testing.T) {
	session := model.NewVssSession()
	session.Deactivate()
	Release(newTestRC(), session)
	assert.False(t, session.Active())
}

func TestRelease_DeactivatesActiveSession(t *testing.T) {
	session := model.NewVssSession()
	assert.True(t, session.Active())
	Release(newTestRC(), session)
	assert.False(t, session.Active())
}
