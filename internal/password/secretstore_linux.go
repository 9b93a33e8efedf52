//go:build linux

package password

import (
	"github.com/wastore/keyctl"

	"github.com/eastfield/archivist/internal/model"
)

func init() {
	platformStore = keyctlStore{}
}

// keyctlStore reads named secrets from the Linux kernel session keyring.
type keyctlStore struct{}

func (keyctlStore) Get(name string) (string, error) {
	ring, err := keyctl.SessionKeyring()
	if err != nil {
		return "", model.WrapError(model.KindEnv, err, "opening session keyring")
	}
	key, err := ring.Search(name)
	if err != nil {
		return "", model.WrapError(model.KindEnv, err, "searching session keyring for secret %q", name)
	}
	data, err := key.Get()
	if err != nil {
		return "", model.WrapError(model.KindEnv, err, "reading secret %q from session keyring", name)
	}
	return string(data), nil
}
