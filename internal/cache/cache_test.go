package cache

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/talentflux/talentflux-api/internal/config"
)

func TestLRU_Eviction(t *testing.T) {
	c := NewLRU[string, int](2)
	c.Add("a", 1)
	c.Add("b", 2)
	_, _ = c.Get("a") // a is now most recent
	c.Add("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok, "b should have been evicted")
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, c.Len())

	c.Add("a", 10)
	v, _ = c.Get("a")
	assert.Equal(t, 10, v)
	assert.Equal(t, 2, c.Len())
}

func TestLRU_Concurrent(t *testing.T) {
	c := NewLRU[int, int](16)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Add(j, n)
				c.Get(j)
			}
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 16)
}

func TestLRU_BadCapacity(t *testing.T) {
	assert.Panics(t, func() { NewLRU[string, string](0) })
}

func TestRedis_Disabled(t *testing.T) {
	r := NewRedis(&config.Config{RedisPoolSize: 10}, nil)
	require.NoError(t, r.Init(context.Background()))
	assert.False(t, r.Enabled())
	assert.Nil(t, r.Client())
	assert.ErrorIs(t, r.Ping(context.Background()), ErrDisabled)
	assert.NoError(t, r.Close())
}

func TestRedis_BadURL(t *testing.T) {
	r := NewRedis(&config.Config{RedisURL: "http://not-redis", RedisPoolSize: 10}, nil)
	err := r.Init(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse redis URL")
}

func TestRedis_UnreachableRequired(t *testing.T) {
	// Port 1 is reserved; the dial is refused immediately.
	r := NewRedis(&config.Config{RedisURL: "redis://127.0.0.1:1/0", RedisPoolSize: 2, RedisRequired: true}, nil)
	err := r.Init(context.Background())
	require.Error(t, err)
	assert.Nil(t, r.Client())
	assert.NoError(t, r.Close())
}

func TestRedis_UnreachableOptional(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := NewRedis(&config.Config{RedisURL: "redis://127.0.0.1:1/0", RedisPoolSize: 2}, zap.New(core))

	require.NoError(t, r.Init(context.Background()))
	assert.True(t, r.Enabled())
	assert.False(t, r.Available())
	assert.ErrorIs(t, r.Ping(context.Background()), ErrDisabled)
	assert.Equal(t, 1, logs.FilterMessageSnippet("REDIS_REQUIRED").Len())
	assert.NoError(t, r.Close())
}

func TestRedis_CloseNil(t *testing.T) {
	var r *Redis
	assert.NoError(t, r.Close())
}
