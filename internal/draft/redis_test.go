package draft

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStorePutGet(t *testing.T) {
	mr, client := setupRedis(t)
	s := NewRedisStore(client, 0)
	ctx := context.Background()

	got, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, got)

	put, err := s.Put(ctx, "u1", lampFields())
	require.NoError(t, err)
	assert.True(t, mr.Exists("draft:u1"))
	assert.Equal(t, DefaultTTL, mr.TTL("draft:u1"))

	got, err = s.Get(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, put.ID, got.ID)
	assert.Equal(t, put.Fields, got.Fields)
	assert.True(t, put.ExpiresAt.Equal(got.ExpiresAt))
}

func TestRedisStoreKeyExpiry(t *testing.T) {
	mr, client := setupRedis(t)
	s := NewRedisStore(client, DefaultTTL)
	ctx := context.Background()

	_, err := s.Put(ctx, "u1", lampFields())
	require.NoError(t, err)

	mr.FastForward(DefaultTTL + time.Second)
	got, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStoreClockExpiry(t *testing.T) {
	mr, client := setupRedis(t)
	clock := newFakeClock()
	s := NewRedisStore(client, DefaultTTL)
	s.now = clock.Now
	ctx := context.Background()

	_, err := s.Put(ctx, "u1", lampFields())
	require.NoError(t, err)

	clock.Advance(DefaultTTL + time.Second)
	got, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, mr.Exists("draft:u1"))
}

func TestRedisStoreDelete(t *testing.T) {
	_, client := setupRedis(t)
	s := NewRedisStore(client, 0)
	ctx := context.Background()

	_, err := s.Put(ctx, "u1", lampFields())
	require.NoError(t, err)

	existed, err := s.Delete(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = s.Delete(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestRedisStoreErrors(t *testing.T) {
	mr, client := setupRedis(t)
	s := NewRedisStore(client, 0)
	ctx := context.Background()

	require.NoError(t, mr.Set("draft:u1", "not json"))
	_, err := s.Get(ctx, "u1")
	assert.Error(t, err)

	mr.Close()
	_, err = s.Put(ctx, "u2", lampFields())
	assert.Error(t, err)
	assert.Error(t, s.Ping(ctx))
}
