package model

import (
	"reflect"

	"github.com/JeffreyRichter/enum/enum"
)

// OverallStatus is the terminal status of a job or set, worst-of ordering
// FAILURE > WARNINGS > SUCCESS.
type OverallStatus uint8

const (
	StatusSuccess OverallStatus = iota
	StatusSimulatedComplete
	StatusWarnings
	StatusFailure
)

var EOverallStatus = OverallStatus(0)

func (OverallStatus) Success() OverallStatus           { return StatusSuccess }
func (OverallStatus) SimulatedComplete() OverallStatus { return StatusSimulatedComplete }
func (OverallStatus) Warnings() OverallStatus          { return StatusWarnings }
func (OverallStatus) Failure() OverallStatus           { return StatusFailure }

func (o *OverallStatus) Parse(s string) error {
	val, err := enum.ParseInt(reflect.TypeOf(o), s, true, true)
	if err == nil {
		*o = val.(OverallStatus)
	}
	return err
}

// String returns the report/console name: SUCCESS, SIMULATED_COMPLETE,
// WARNINGS or FAILURE.
func (o OverallStatus) String() string {
	switch o {
	case StatusSuccess:
		return "SUCCESS"
	case StatusSimulatedComplete:
		return "SIMULATED_COMPLETE"
	case StatusWarnings:
		return "WARNINGS"
	case StatusFailure:
		return "FAILURE"
	}
	return enum.StringInt(o, reflect.TypeOf(o))
}

// Worse returns the more severe of two statuses under FAILURE > WARNINGS > SUCCESS > SIMULATED_COMPLETE.
func Worse(a, b OverallStatus) OverallStatus {
	rank := func(s OverallStatus) int {
		switch s {
		case StatusFailure:
			return 3
		case StatusWarnings:
			return 2
		case StatusSuccess:
			return 1
		default:
			return 0
		}
	}
	if rank(b) > rank(a) {
		return b
	}
	return a
}

// ArchivePasswordSource selects where LocalArchivePipeline obtains the archive password.
type ArchivePasswordSource uint8

const (
	PasswordSourceNone ArchivePasswordSource = iota
	PasswordSourcePlain
	PasswordSourceSecret
	PasswordSourceInteractive
)

var EArchivePasswordSource = ArchivePasswordSource(0)

func (ArchivePasswordSource) None() ArchivePasswordSource        { return PasswordSourceNone }
func (ArchivePasswordSource) Plain() ArchivePasswordSource       { return PasswordSourcePlain }
func (ArchivePasswordSource) Secret() ArchivePasswordSource      { return PasswordSourceSecret }
func (ArchivePasswordSource) Interactive() ArchivePasswordSource { return PasswordSourceInteractive }

func (a *ArchivePasswordSource) Parse(s string) error {
	val, err := enum.ParseInt(reflect.TypeOf(a), s, true, true)
	if err == nil {
		*a = val.(ArchivePasswordSource)
	}
	return err
}

func (a ArchivePasswordSource) String() string {
	return enum.StringInt(a, reflect.TypeOf(a))
}

// SFXModule selects which 7-Zip SFX stub to prepend when CreateSFX is set.
type SFXModule uint8

const (
	SFXConsole SFXModule = iota
	SFXGUI
	SFXInstaller
)

var ESFXModule = SFXModule(0)

func (SFXModule) Console() SFXModule   { return SFXConsole }
func (SFXModule) GUI() SFXModule       { return SFXGUI }
func (SFXModule) Installer() SFXModule { return SFXInstaller }

func (s *SFXModule) Parse(v string) error {
	val, err := enum.ParseInt(reflect.TypeOf(s), v, true, true)
	if err == nil {
		*s = val.(SFXModule)
	}
	return err
}

func (s SFXModule) String() string {
	return enum.StringInt(s, reflect.TypeOf(s))
}

// ChecksumAlgorithm is a hash algorithm recognised for sidecar checksums/manifests.
type ChecksumAlgorithm uint8

const (
	ChecksumMD5 ChecksumAlgorithm = iota
	ChecksumSHA1
	ChecksumSHA256
	ChecksumSHA384
	ChecksumSHA512
)

var EChecksumAlgorithm = ChecksumAlgorithm(0)

func (ChecksumAlgorithm) MD5() ChecksumAlgorithm    { return ChecksumMD5 }
func (ChecksumAlgorithm) SHA1() ChecksumAlgorithm   { return ChecksumSHA1 }
func (ChecksumAlgorithm) SHA256() ChecksumAlgorithm { return ChecksumSHA256 }
func (ChecksumAlgorithm) SHA384() ChecksumAlgorithm { return ChecksumSHA384 }
func (ChecksumAlgorithm) SHA512() ChecksumAlgorithm { return ChecksumSHA512 }

func (c *ChecksumAlgorithm) Parse(v string) error {
	val, err := enum.ParseInt(reflect.TypeOf(c), v, true, true)
	if err == nil {
		*c = val.(ChecksumAlgorithm)
	}
	return err
}

func (c ChecksumAlgorithm) String() string {
	return enum.StringInt(c, reflect.TypeOf(c))
}

// ProcessPriority maps to an OS scheduling priority class for the 7-Zip subprocess.
type ProcessPriority uint8

const (
	PriorityIdle ProcessPriority = iota
	PriorityBelowNormal
	PriorityNormal
	PriorityAboveNormal
	PriorityHigh
)

var EProcessPriority = ProcessPriority(0)

func (ProcessPriority) Idle() ProcessPriority        { return PriorityIdle }
func (ProcessPriority) BelowNormal() ProcessPriority { return PriorityBelowNormal }
func (ProcessPriority) Normal() ProcessPriority      { return PriorityNormal }
func (ProcessPriority) AboveNormal() ProcessPriority { return PriorityAboveNormal }
func (ProcessPriority) High() ProcessPriority        { return PriorityHigh }

func (p *ProcessPriority) Parse(v string) error {
	val, err := enum.ParseInt(reflect.TypeOf(p), v, true, true)
	if err == nil {
		*p = val.(ProcessPriority)
	}
	return err
}

func (p ProcessPriority) String() string {
	return enum.StringInt(p, reflect.TypeOf(p))
}

// OnErrorInJob is a BackupSet's policy on the first job FAILURE.
type OnErrorInJob uint8

const (
	OnErrorStopSet OnErrorInJob = iota
	OnErrorContinueSet
)

var EOnErrorInJob = OnErrorInJob(0)

func (OnErrorInJob) StopSet() OnErrorInJob     { return OnErrorStopSet }
func (OnErrorInJob) ContinueSet() OnErrorInJob { return OnErrorContinueSet }

func (o *OnErrorInJob) Parse(v string) error {
	val, err := enum.ParseInt(reflect.TypeOf(o), v, true, true)
	if err == nil {
		*o = val.(OnErrorInJob)
	}
	return err
}

func (o OnErrorInJob) String() string {
	return enum.StringInt(o, reflect.TypeOf(o))
}

// PostRunAction is the system-state change applied after a run completes.
type PostRunAction uint8

const (
	PostRunNone PostRunAction = iota
	PostRunShutdown
	PostRunRestart
	PostRunSleep
	PostRunLock
	PostRunHibernate
	PostRunLogoff
)

var EPostRunAction = PostRunAction(0)

func (PostRunAction) None() PostRunAction      { return PostRunNone }
func (PostRunAction) Shutdown() PostRunAction  { return PostRunShutdown }
func (PostRunAction) Restart() PostRunAction   { return PostRunRestart }
func (PostRunAction) Sleep() PostRunAction     { return PostRunSleep }
func (PostRunAction) Lock() PostRunAction      { return PostRunLock }
func (PostRunAction) Hibernate() PostRunAction { return PostRunHibernate }
func (PostRunAction) Logoff() PostRunAction    { return PostRunLogoff }

func (p *PostRunAction) Parse(v string) error {
	val, err := enum.ParseInt(reflect.TypeOf(p), v, true, true)
	if err == nil {
		*p = val.(PostRunAction)
	}
	return err
}

func (p PostRunAction) String() string {
	return enum.StringInt(p, reflect.TypeOf(p))
}

// TargetTransferStatus is the per-target outcome of TransferOrchestrator.
type TargetTransferStatus uint8

const (
	TransferSuccess TargetTransferStatus = iota
	TransferFailure
)

var ETargetTransferStatus = TargetTransferStatus(0)

func (TargetTransferStatus) Success() TargetTransferStatus { return TransferSuccess }
func (TargetTransferStatus) Failure() TargetTransferStatus { return TransferFailure }

func (t TargetTransferStatus) String() string {
	return enum.StringInt(t, reflect.TypeOf(t))
}

// LogLevel mirrors the severity levels a Logger collaborator understands.
type LogLevel uint8

const (
	LogError LogLevel = iota
	LogWarning
	LogInfo
	LogSuccess
	LogDebug
	LogSimulate
	LogHeading
	LogAdvice
)

var ELogLevel = LogLevel(0)

func (LogLevel) Error() LogLevel    { return LogError }
func (LogLevel) Warning() LogLevel  { return LogWarning }
func (LogLevel) Info() LogLevel     { return LogInfo }
func (LogLevel) Success() LogLevel  { return LogSuccess }
func (LogLevel) Debug() LogLevel    { return LogDebug }
func (LogLevel) Simulate() LogLevel { return LogSimulate }
func (LogLevel) Heading() LogLevel  { return LogHeading }
func (LogLevel) Advice() LogLevel   { return LogAdvice }

func (l LogLevel) String() string {
	return enum.StringInt(l, reflect.TypeOf(l))
}
