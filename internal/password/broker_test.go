package password

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

func TestResolve_NoneReturnsEmpty(t *testing.T) {
	resolved, err := Resolve(newTestRC(), model.PasswordSourceNone, "", "")
	assert.NoError(t, err)
	assert.Empty(t, resolved.Plaintext)
	assert.Nil(t, resolved.Zero)
}

func TestResolve_PlainReturnsInlineValueAndWarns(t *testing.T) {
	resolved, err := Resolve(newTestRC(), model.PasswordSourcePlain, "", "s3cr3t")
	assert.NoError(t, err)
	assert.Equal(t, "s3cr3t", resolved.Plaintext)
	assert.NotNil(t, resolved.Zero)
}

func TestResolve_SecretWithoutPlatformStoreIsConfigError(t *testing.T) {
	saved := platformStore
	platformStore = nil
	defer func() { platformStore = saved }()

	_, err := Resolve(newTestRC(), model.PasswordSourceSecret, "db-password", "")
	kind, ok := model.KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, model.KindConfig, kind)
}

type fakeStore struct {
	values map[string]string
}

func (f fakeStore) Get(name string) (string, error) {
	v, ok := f.values[name]
	if !ok {
		return "", model.EnvError("secret %q not found", name)
	}
	return v, nil
}

func TestResolve_SecretUsesPlatformStore(t *testing.T) {
	saved := platformStore
	platformStore = fakeStore{values: map[string]string{"db-password": "hunter2"}}
	defer func() { platformStore = saved }()

	resolved, err := Resolve(newTestRC(), model.PasswordSourceSecret, "db-password", "")
	assert.NoError(t, err)
	assert.Equal(t, "hunter2", resolved.Plaintext)
}

func TestZeroBytes_ClearsBuffer(t *testing.T) {
	buf := []byte("secret")
	zeroBytes(buf)
	for _, b := range buf {
		assert.Equal(t, byte(0), b)
	}
}
