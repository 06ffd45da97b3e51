package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSessionKey = "0000000000000000000000000000000000000000000000000000000000000000"

func useMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	srv, err := miniredis.Run()
	if err != nil {
		t.Skipf("skip: miniredis unavailable in this environment: %v", err)
	}
	cli := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	SetClient(cli)
	t.Cleanup(func() {
		_ = cli.Close()
		srv.Close()
	})
	return srv
}

func TestNewSessionStoreValidation(t *testing.T) {
	_, err := NewSessionStore("zz")
	assert.Error(t, err)

	_, err = NewSessionStore("0011")
	assert.Error(t, err)

	store, err := NewSessionStore(testSessionKey)
	assert.NoError(t, err)
	assert.NotNil(t, store)
}

func TestSessionStoreEncryptDecrypt(t *testing.T) {
	store, err := NewSessionStore(testSessionKey)
	require.NoError(t, err)

	enc, err := store.encrypt([]byte(`{"x":1}`))
	require.NoError(t, err)
	assert.NotContains(t, enc, `"x"`)

	dec, err := store.decrypt(enc)
	require.NoError(t, err)
	assert.Contains(t, string(dec), `"x":1`)

	_, err = store.decrypt("not-a-jwe")
	assert.Error(t, err)

	other, err := NewSessionStore("1111111111111111111111111111111111111111111111111111111111111111")
	require.NoError(t, err)
	_, err = other.decrypt(enc)
	assert.Error(t, err)
}

func TestSessionStoreEncrypt_InvalidKeyMaterial(t *testing.T) {
	store := &SessionStore{encryptionKey: []byte("short-key")}
	_, err := store.encrypt([]byte("x"))
	assert.Error(t, err)
}

func TestSessionStoreCreateGetDeleteSuccess(t *testing.T) {
	useMiniredis(t)

	store, err := NewSessionStore(testSessionKey)
	require.NoError(t, err)

	ctx := context.Background()
	err = store.CreateSession(ctx, "sid-ok", &SessionData{AccessToken: "a-ok", RefreshToken: "r-ok", Address: "0xabc"}, time.Minute)
	require.NoError(t, err)

	data, err := store.GetSession(ctx, "sid-ok")
	require.NoError(t, err)
	assert.Equal(t, "a-ok", data.AccessToken)
	assert.Equal(t, "r-ok", data.RefreshToken)
	assert.Equal(t, "0xabc", data.Address)

	require.NoError(t, store.DeleteSession(ctx, "sid-ok"))

	_, err = store.GetSession(ctx, "sid-ok")
	assert.Error(t, err)
}

func TestSessionStore_GetSessionInvalidJSONPayload(t *testing.T) {
	useMiniredis(t)

	store, err := NewSessionStore(testSessionKey)
	require.NoError(t, err)

	enc, err := store.encrypt([]byte("plain-text"))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, Set(ctx, "session:sid-bad-json", enc, time.Minute))

	_, err = store.GetSession(ctx, "sid-bad-json")
	assert.Error(t, err)
}

func TestSessionStore_OperationHooks(t *testing.T) {
	store, err := NewSessionStore(testSessionKey)
	require.NoError(t, err)

	origSet, origGet, origDel := setSessionValue, getSessionValue, delSessionValue
	t.Cleanup(func() {
		setSessionValue = origSet
		getSessionValue = origGet
		delSessionValue = origDel
	})

	setSessionValue = func(_ context.Context, _ string, _ interface{}, _ time.Duration) error {
		return errors.New("set failed")
	}
	err = store.CreateSession(context.Background(), "sid-hook", &SessionData{AccessToken: "a"}, time.Minute)
	assert.Error(t, err)

	getSessionValue = func(_ context.Context, _ string) (string, error) {
		return "", errors.New("not found")
	}
	_, err = store.GetSession(context.Background(), "sid-hook")
	assert.Error(t, err)

	enc, err := store.encrypt([]byte(`{"accessToken":"ok","refreshToken":"ok2"}`))
	require.NoError(t, err)
	getSessionValue = func(_ context.Context, _ string) (string, error) {
		return enc, nil
	}
	data, err := store.GetSession(context.Background(), "sid-hook")
	require.NoError(t, err)
	assert.Equal(t, "ok", data.AccessToken)
	assert.Equal(t, "ok2", data.RefreshToken)

	delSessionValue = func(_ context.Context, _ string) error { return errors.New("delete failed") }
	assert.Error(t, store.DeleteSession(context.Background(), "sid-hook"))
}

func TestSessionStore_CreateSession_MarshalErrorBranch(t *testing.T) {
	store, err := NewSessionStore(testSessionKey)
	require.NoError(t, err)

	origMarshal := marshalSessionJSON
	t.Cleanup(func() { marshalSessionJSON = origMarshal })
	marshalSessionJSON = func(v interface{}) ([]byte, error) {
		return nil, errors.New("marshal failed")
	}

	err = store.CreateSession(context.Background(), "sid-marshal", &SessionData{AccessToken: "a"}, time.Minute)
	assert.Error(t, err)
}
