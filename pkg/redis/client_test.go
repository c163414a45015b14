package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitInvalidURL(t *testing.T) {
	err := Init("://invalid-url", "")
	assert.Error(t, err)
}

func TestSetClientAndBasicOpsWithUnreachableRedis(t *testing.T) {
	cli := goredis.NewClient(&goredis.Options{
		Addr:         "127.0.0.1:0", // invalid/unreachable
		DialTimeout:  50 * time.Millisecond,
		ReadTimeout:  50 * time.Millisecond,
		WriteTimeout: 50 * time.Millisecond,
	})
	SetClient(cli)
	t.Cleanup(func() { _ = Close() })
	assert.NotNil(t, GetClient())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	assert.Error(t, Set(ctx, "k", "v", time.Second))
	_, err := Get(ctx, "k")
	assert.Error(t, err)
	assert.Error(t, Del(ctx, "k"))
	_, err = SetNX(ctx, "k", "v", time.Second)
	assert.Error(t, err)
	_, err = Publish(ctx, "c", "m")
	assert.Error(t, err)
}

func TestOpsWithMiniredis(t *testing.T) {
	srv, err := miniredis.Run()
	if err != nil {
		t.Skipf("skip: miniredis unavailable in this environment: %v", err)
	}
	t.Cleanup(srv.Close)

	require.NoError(t, Init("redis://"+srv.Addr(), ""))
	t.Cleanup(func() { _ = Close() })
	ctx := context.Background()

	_, err = Get(ctx, "missing")
	require.True(t, IsNil(err))

	ok, err := SetNX(ctx, "lock", "1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = SetNX(ctx, "lock", "2", time.Minute)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, Set(ctx, "k", "v", time.Minute))
	v, err := Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "v", v)
	require.NoError(t, Del(ctx, "k"))

	sub := GetClient().Subscribe(ctx, "events")
	t.Cleanup(func() { _ = sub.Close() })
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	n, err := Publish(ctx, "events", "hello")
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	require.Equal(t, "hello", msg.Payload)
}
