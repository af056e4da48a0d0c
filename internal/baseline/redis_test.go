package baseline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func setupRedis(t *testing.T) (*RedisStore, func()) {
	if testing.Short() {
		t.Skip("Skipping redis integration test in short mode")
	}
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	s, err := NewRedisStore(Config{RedisURL: url, SessionTTL: time.Minute})
	require.NoError(t, err, "Failed to create store")

	cleanup := func() {
		s.Close()
		container.Terminate(ctx)
	}
	return s, cleanup
}

func TestRedisStore(t *testing.T) {
	s, cleanup := setupRedis(t)
	defer cleanup()
	ctx := context.Background()

	stored, err := s.Capture(ctx, "s1", "CHEM20", 77.25)
	require.NoError(t, err)
	assert.True(t, stored)

	stored, err = s.Capture(ctx, "s1", "CHEM20", 12)
	require.NoError(t, err)
	assert.False(t, stored)

	mark, ok, err := s.Lookup(ctx, "s1", "CHEM20")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 77.25, mark)

	_, ok, err = s.Lookup(ctx, "s1", "PHYS20")
	require.NoError(t, err)
	assert.False(t, ok)

	ttl, err := s.redis.TTL(ctx, "baseline:s1:CHEM20").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestRedisStore_Key(t *testing.T) {
	s := newRedisStore(nil, Config{KeyTemplate: "mb:{course}:{session}"})
	assert.Equal(t, "mb:MATH30:abc", s.key("abc", "MATH30"))

	s = newRedisStore(nil, Config{})
	assert.Equal(t, "baseline:abc:MATH30", s.key("abc", "MATH30"))
	assert.Equal(t, DefaultSessionTTL, s.ttl)

	assert.NotEqual(t, s.key("a:b", "c"), s.key("a", "b:c"))
	assert.Equal(t, "baseline:a%3Ab:c%2Fd", s.key("a:b", "c/d"))
}
