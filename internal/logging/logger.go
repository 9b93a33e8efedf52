// Package logging defines the Logger collaborator interface the execution
// core writes to (§6) and a minimal console+file implementation good enough
// to run the module standalone. Log-file rotation and console theming stay
// external concerns (§1) — this sink never rotates or recolors anything.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/eastfield/archivist/internal/model"
)

// Logger is the collaborator interface every component writes through
// (§6: "Logger.Write(level, message)").
type Logger interface {
	Write(level model.LogLevel, message string)
	WriteFormat(level model.LogLevel, format string, args ...any)
}

// ILoggerCloser additionally owns a resource (a file) that must be closed.
type ILoggerCloser interface {
	Logger
	Close() error
}

// jobLogger is a job-scoped logger: one line-oriented file per job, plus an
// optional mirrored stream (stdout) for interactive runs. Grounded directly
// on the teacher's jobLogger (common/logger.go): a minimum level gate, a
// stdlib *log.Logger sink, no rotation.
type jobLogger struct {
	mu          sync.Mutex
	minimumLevel model.LogLevel
	file        io.WriteCloser
	fileLogger  *log.Logger
	mirror      io.Writer
}

// NewJobLogger opens (creating if necessary) "<jobID>.log" under logDir and
// returns a Logger that writes to it, and also mirrors to mirror (pass nil
// to disable console mirroring).
func NewJobLogger(jobID string, logDir string, minimumLevel model.LogLevel, mirror io.Writer) (ILoggerCloser, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory %q: %w", logDir, err)
	}
	f, err := os.OpenFile(filepath.Join(logDir, jobID+".log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening job log for %q: %w", jobID, err)
	}
	jl := &jobLogger{
		minimumLevel: minimumLevel,
		file:         f,
		fileLogger:   log.New(f, "", log.LstdFlags|log.LUTC),
		mirror:       mirror,
	}
	jl.fileLogger.Println("job", jobID, "log opened")
	return jl, nil
}

func (jl *jobLogger) shouldLog(level model.LogLevel) bool {
	// Lower numeric value is more severe for most levels, but DEBUG/ADVICE
	// sit above INFO; gate everything through an explicit allow-set rather
	// than a single numeric threshold so "Info-and-louder" behaves sanely
	// against the mixed severities in model.LogLevel.
	if jl.minimumLevel == model.LogDebug {
		return true
	}
	switch level {
	case model.LogError, model.LogWarning, model.LogSuccess, model.LogHeading, model.LogSimulate, model.LogAdvice:
		return true
	case model.LogInfo:
		return jl.minimumLevel != model.LogError && jl.minimumLevel != model.LogWarning
	case model.LogDebug:
		return false
	default:
		return true
	}
}

func (jl *jobLogger) Write(level model.LogLevel, message string) {
	jl.mu.Lock()
	defer jl.mu.Unlock()
	if !jl.shouldLog(level) {
		return
	}
	prefix := ""
	if level == model.LogError || level == model.LogWarning {
		prefix = level.String() + ": "
	}
	line := prefix + message
	jl.fileLogger.Println(line)
	if jl.mirror != nil {
		fmt.Fprintln(jl.mirror, line)
	}
}

func (jl *jobLogger) WriteFormat(level model.LogLevel, format string, args ...any) {
	jl.Write(level, fmt.Sprintf(format, args...))
}

func (jl *jobLogger) Close() error {
	jl.mu.Lock()
	defer jl.mu.Unlock()
	jl.fileLogger.Println("job log closed")
	return jl.file.Close()
}

// Discard is a Logger that throws every message away; useful for tests.
var Discard Logger = discardLogger{}

type discardLogger struct{}

func (discardLogger) Write(model.LogLevel, string)          {}
func (discardLogger) WriteFormat(model.LogLevel, string, ...any) {}
