//go:build darwin

package password

import (
	"github.com/keybase/go-keychain"

	"github.com/eastfield/archivist/internal/model"
)

func init() {
	platformStore = keychainStore{service: "archivist"}
}

// keychainStore reads named secrets from the macOS login keychain, adapted
// from the teacher's CredCache (common/credCache_darwin.go) from an OAuth
// token cache into a plain named-secret lookup.
type keychainStore struct {
	service string
}

func (s keychainStore) Get(name string) (string, error) {
	query := keychain.NewItem()
	query.SetSecClass(keychain.SecClassGenericPassword)
	query.SetService(s.service)
	query.SetAccount(name)
	query.SetMatchLimit(keychain.MatchLimitOne)
	query.SetReturnData(true)

	results, err := keychain.QueryItem(query)
	if err != nil {
		return "", model.WrapError(model.KindEnv, err, "querying keychain for secret %q", name)
	}
	if len(results) != 1 {
		return "", model.EnvError("no keychain item found for secret %q", name)
	}
	return string(results[0].Data), nil
}
