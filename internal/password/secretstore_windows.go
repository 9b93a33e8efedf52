//go:build windows

package password

import (
	"github.com/danieljoos/wincred"

	"github.com/eastfield/archivist/internal/model"
)

func init() {
	platformStore = wincredStore{prefix: "archivist:"}
}

// wincredStore reads named secrets from the Windows Credential Manager.
type wincredStore struct {
	prefix string
}

func (s wincredStore) Get(name string) (string, error) {
	cred, err := wincred.GetGenericCredential(s.prefix + name)
	if err != nil {
		return "", model.WrapError(model.KindEnv, err, "reading Windows credential for secret %q", name)
	}
	return string(cred.CredentialBlob), nil
}
