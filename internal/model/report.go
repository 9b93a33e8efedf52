package model

import (
	"time"

	"github.com/google/uuid"
)

// TransferResult is the outcome of one TargetProvider.Transfer call (§3).
type TransferResult struct {
	TargetName       string
	TargetType       string
	FileName         string
	Status           TargetTransferStatus
	RemotePath       string
	TransferSize     int64
	TransferDuration time.Duration
	ErrorMessage     string
}

// HookResult records one HookRunner invocation.
type HookResult struct {
	Path     string
	Stage    string
	ExitCode int
	Ran      bool
	Error    string
}

// LogEntry is one line captured into JobReport.LogEntries, mirroring what a
// Logger collaborator would have emitted (§6).
type LogEntry struct {
	Time    time.Time
	Level   LogLevel
	Message string
}

// JobReport accumulates everything about one job's run (§3). It is built up
// by RunContext as the job progresses and handed to Reporter.Emit at the end.
type JobReport struct {
	JobID    uuid.UUID
	JobName  string
	SetName  string
	StartTime time.Time
	EndTime   time.Time

	OverallStatus OverallStatus

	SevenZipExitCode int
	ArchiveSizeBytes int64
	CompressionTime  time.Duration

	ArchivePath string

	TargetTransfers []TransferResult
	LogEntries      []LogEntry
	HookScripts     []HookResult

	ErrorMessage string
}

func NewJobReport(jobName, setName string) *JobReport {
	return &JobReport{
		JobID:     uuid.New(),
		JobName:   jobName,
		SetName:   setName,
		StartTime: time.Now(),
	}
}

func (r *JobReport) Downgrade(status OverallStatus) {
	r.OverallStatus = Worse(r.OverallStatus, status)
}
