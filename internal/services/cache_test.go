package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDisabledCache(t *testing.T) {
	ctx := context.Background()
	for name, cache := range map[string]*CacheService{
		"nil service": nil,
		"nil client":  NewCacheService(nil),
	} {
		t.Run(name, func(t *testing.T) {
			assert.False(t, cache.Enabled())
			assert.NoError(t, cache.Set(ctx, "k", 1, time.Minute))

			var v int
			assert.ErrorIs(t, cache.Get(ctx, "k", &v), ErrCacheMiss)
			assert.NoError(t, cache.Delete(ctx, "k"))
			assert.NoError(t, cache.Ping(ctx))
		})
	}
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "players:19:677:12", PlayersCacheKey(19, 677, 12))
	assert.Equal(t, "schedule:19:677", ScheduleCacheKey(19, 677))
	assert.NotEqual(t, PlayersCacheKey(19, 677, 0), PlayersCacheKey(19, 677, 1))
}
