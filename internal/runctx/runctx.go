// Package runctx carries the per-job cancellation context, logger, and
// report buffer explicitly through every component call, replacing the
// teacher's process-wide logger/report globals (§9: "pass a RunContext
// carrying logger + per-job report buffer explicitly; no mutable globals").
package runctx

import (
	"context"
	"fmt"
	"time"

	"github.com/eastfield/archivist/internal/logging"
	"github.com/eastfield/archivist/internal/model"
)

// ConfirmPolicy replaces the source's partial PSCmdlet mock (§9): a minimal
// record telling components whether they may proceed without prompting and
// whether they're in "what if" (simulate) mode.
type ConfirmPolicy struct {
	// Simulate means "describe what would happen, touch nothing."
	Simulate bool
	// AssumeYes means "never prompt; treat every confirmation as granted."
	AssumeYes bool
	// Confirm, when non-nil, is invoked for an operation that requires
	// interactive confirmation (e.g. RetentionConfirmDelete). Returns true
	// to proceed.
	Confirm func(prompt string) bool
}

// Allow resolves whether an operation gated on confirmation may proceed.
func (c ConfirmPolicy) Allow(prompt string) bool {
	if c.Simulate {
		return false
	}
	if c.AssumeYes || c.Confirm == nil {
		return true
	}
	return c.Confirm(prompt)
}

// RunContext is threaded explicitly through every component call for one
// job's lifetime.
type RunContext struct {
	Ctx     context.Context
	Logger  logging.Logger
	Report  *model.JobReport
	Confirm ConfirmPolicy
}

func New(ctx context.Context, logger logging.Logger, report *model.JobReport, confirm ConfirmPolicy) *RunContext {
	return &RunContext{Ctx: ctx, Logger: logger, Report: report, Confirm: confirm}
}

// Logf is a convenience wrapper matching the Logger.Write collaborator
// contract from §6.
func (rc *RunContext) Logf(level model.LogLevel, format string, args ...any) {
	rc.Logger.WriteFormat(level, format, args...)
	rc.Report.LogEntries = append(rc.Report.LogEntries, model.LogEntry{
		Time:    time.Now(),
		Level:   level,
		Message: fmt.Sprintf(format, args...),
	})
}

// Cancelled reports whether the run-wide cancellation token has fired.
func (rc *RunContext) Cancelled() bool {
	select {
	case <-rc.Ctx.Done():
		return true
	default:
		return false
	}
}
