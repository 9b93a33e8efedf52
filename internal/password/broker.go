// Package password implements PasswordBroker (§4.10): resolving the
// archive password from interactive input, a host secret store, or inline
// plain text, whichever single source the job names.
package password

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/eastfield/archivist/internal/model"
	"github.com/eastfield/archivist/internal/runctx"
)

// SecretStore is the host-specific secret lookup PasswordBroker defers to
// for ArchivePasswordSource.Secret (§6: "SecretStore.Get(name) -> string").
// Each platform wires a concrete implementation grounded on its native
// credential facility.
type SecretStore interface {
	Get(name string) (string, error)
}

var platformStore SecretStore

// Resolved is a plaintext password plus the caller's zeroisation hook. The
// caller must invoke Zero after the archive step (§4.10: "never logs the
// password").
type Resolved struct {
	Plaintext string
	Zero      func()
}

// Resolve reads the password from the one source named by source
// (Interactive, Secret or Plain; None yields no password). A job names
// exactly one source, so no precedence between sources is applied.
// Failure to resolve is a ConfigError, which JobOrchestrator treats as
// FAILURE for the job.
func Resolve(rc *runctx.RunContext, source model.ArchivePasswordSource, secretName, plain string) (Resolved, error) {
	switch source {
	case model.PasswordSourceNone:
		return Resolved{}, nil

	case model.PasswordSourceInteractive:
		return resolveInteractive(rc)

	case model.PasswordSourceSecret:
		if platformStore == nil {
			return Resolved{}, model.ConfigError("no secret store available on this platform for ArchivePasswordSecretName %q", secretName)
		}
		value, err := platformStore.Get(secretName)
		if err != nil {
			return Resolved{}, model.WrapError(model.KindConfig, err, "resolving secret %q", secretName)
		}
		buf := []byte(value)
		return Resolved{Plaintext: value, Zero: func() { zeroBytes(buf) }}, nil

	case model.PasswordSourcePlain:
		rc.Logf(model.LogWarning, "ArchivePasswordSource is Plain: password is stored in the configuration file in clear text")
		buf := []byte(plain)
		return Resolved{Plaintext: plain, Zero: func() { zeroBytes(buf) }}, nil

	default:
		return Resolved{}, model.ConfigError("unrecognised ArchivePasswordSource %v", source)
	}
}

func resolveInteractive(rc *runctx.RunContext) (Resolved, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return Resolved{}, model.ConfigError("ArchivePasswordSource is Interactive but no terminal is attached to stdin")
	}
	fmt.Fprint(os.Stderr, "Archive password: ")
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return Resolved{}, model.WrapError(model.KindConfig, err, "reading interactive password")
	}
	return Resolved{Plaintext: string(raw), Zero: func() { zeroBytes(raw) }}, nil
}

// zeroBytes overwrites a secret's backing buffer once it is no longer
// needed, so it does not linger readable in process memory.
func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
