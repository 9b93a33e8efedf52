package model

import (
	"fmt"
	"reflect"

	"github.com/JeffreyRichter/enum/enum"
	"github.com/pkg/errors"
)

// ErrorKind classifies the semantic error categories from §7: it is not a Go
// error type, it is metadata carried on one so JobOrchestrator can decide
// whether to halt a set, downgrade a status, or just log and move on.
type ErrorKind uint8

const (
	KindConfig ErrorKind = iota
	KindEnv
	KindArchiverWarning
	KindArchiverError
	KindTransfer
	KindRetentionSafetyHalt
	KindHookNonZero
	KindCancelled
)

var EErrorKind = ErrorKind(0)

func (ErrorKind) Config() ErrorKind             { return KindConfig }
func (ErrorKind) Env() ErrorKind                { return KindEnv }
func (ErrorKind) ArchiverWarning() ErrorKind     { return KindArchiverWarning }
func (ErrorKind) ArchiverError() ErrorKind       { return KindArchiverError }
func (ErrorKind) Transfer() ErrorKind            { return KindTransfer }
func (ErrorKind) RetentionSafetyHalt() ErrorKind { return KindRetentionSafetyHalt }
func (ErrorKind) HookNonZero() ErrorKind         { return KindHookNonZero }
func (ErrorKind) Cancelled() ErrorKind           { return KindCancelled }

func (k ErrorKind) String() string {
	return enum.StringInt(k, reflect.TypeOf(k))
}

// KindedError pairs an ErrorKind with an underlying, stack-carrying error.
type KindedError struct {
	Kind  ErrorKind
	cause error
}

func (e *KindedError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.cause)
}

func (e *KindedError) Unwrap() error { return e.cause }

func NewError(kind ErrorKind, format string, args ...any) error {
	return &KindedError{Kind: kind, cause: errors.Errorf(format, args...)}
}

func WrapError(kind ErrorKind, cause error, format string, args ...any) error {
	if cause == nil {
		return nil
	}
	return &KindedError{Kind: kind, cause: errors.Wrapf(cause, format, args...)}
}

// KindOf extracts the ErrorKind from err if it (or something it wraps) is a
// *KindedError, reporting ok=false otherwise.
func KindOf(err error) (ErrorKind, bool) {
	var ke *KindedError
	if errors.As(err, &ke) {
		return ke.Kind, true
	}
	return 0, false
}

func ConfigError(format string, args ...any) error {
	return NewError(KindConfig, format, args...)
}

func EnvError(format string, args ...any) error {
	return NewError(KindEnv, format, args...)
}
