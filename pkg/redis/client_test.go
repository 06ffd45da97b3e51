package redis

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	t.Cleanup(func() { client = nil })

	require.Error(t, Init("://invalid-url", ""))

	err := Init("redis://127.0.0.1:0", "")
	require.ErrorContains(t, err, "redis ping 127.0.0.1:0")

	srv := useMiniredis(t)
	srv.RequireAuth("s3cret")
	require.Error(t, Init("redis://"+srv.Addr(), ""))
	require.NoError(t, Init("redis://"+srv.Addr(), "s3cret"))
	require.NoError(t, Ping(context.Background()))
}

func TestOpsWithUnreachableRedis(t *testing.T) {
	cli := goredis.NewClient(&goredis.Options{
		Addr:         "127.0.0.1:0",
		DialTimeout:  50 * time.Millisecond,
		ReadTimeout:  50 * time.Millisecond,
		WriteTimeout: 50 * time.Millisecond,
	})
	SetClient(cli)
	t.Cleanup(func() { _ = Close() })
	assert.Same(t, cli, GetClient())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	assert.Error(t, Ping(ctx))
	assert.Error(t, Set(ctx, "k", "v", time.Second))
	_, err := Get(ctx, "k")
	assert.Error(t, err)
	assert.Error(t, Del(ctx, "k"))
	_, err = SetNX(ctx, "k", "v", time.Second)
	assert.Error(t, err)
}

func TestPingAndCloseWithoutClient(t *testing.T) {
	orig := client
	client = nil
	t.Cleanup(func() { client = orig })

	assert.ErrorIs(t, Ping(context.Background()), errNotInitialized)
	assert.NoError(t, Close())
}

func TestGetDelAndIsNil(t *testing.T) {
	useMiniredis(t)
	ctx := context.Background()

	assert.NoError(t, Set(ctx, "k", "v", time.Minute))
	val, err := GetDel(ctx, "k")
	assert.NoError(t, err)
	assert.Equal(t, "v", val)

	_, err = GetDel(ctx, "k")
	assert.True(t, IsNil(err))
	assert.False(t, IsNil(nil))
}
