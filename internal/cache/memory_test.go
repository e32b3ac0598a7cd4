package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/logsage/logsage/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_SetGetRoundtrip(t *testing.T) {
	mc := cache.NewMemoryCache(0)
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k", []byte("v"), time.Minute))

	val, found, err := mc.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("v"), val)
}

func TestMemoryCache_GetMissing(t *testing.T) {
	mc := cache.NewMemoryCache(0)

	_, found, err := mc.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryCache_TTLExpiry(t *testing.T) {
	mc := cache.NewMemoryCache(0)
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k", []byte("v"), 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	_, found, err := mc.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found, "expired entry must not be returned")
}

func TestMemoryCache_ZeroTTLNeverExpires(t *testing.T) {
	mc := cache.NewMemoryCache(0)
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k", []byte("v"), 0))
	time.Sleep(10 * time.Millisecond)

	_, found, _ := mc.Get(ctx, "k")
	assert.True(t, found)
}

func TestMemoryCache_Delete(t *testing.T) {
	mc := cache.NewMemoryCache(0)
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, mc.Delete(ctx, "k"))

	_, found, _ := mc.Get(ctx, "k")
	assert.False(t, found)
}

func TestMemoryCache_EvictsOldestAtCapacity(t *testing.T) {
	mc := cache.NewMemoryCache(2)
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, mc.Set(ctx, "b", []byte("2"), time.Minute))
	require.NoError(t, mc.Set(ctx, "c", []byte("3"), time.Minute))

	_, foundA, _ := mc.Get(ctx, "a")
	_, foundB, _ := mc.Get(ctx, "b")
	_, foundC, _ := mc.Get(ctx, "c")
	assert.False(t, foundA, "oldest entry should be evicted")
	assert.True(t, foundB)
	assert.True(t, foundC)
}

func TestMemoryCache_IncrWithExpiry(t *testing.T) {
	mc := cache.NewMemoryCache(0)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := mc.IncrWithExpiry(ctx, "counter", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestMemoryCache_IncrResetsAfterExpiry(t *testing.T) {
	mc := cache.NewMemoryCache(0)
	ctx := context.Background()

	_, err := mc.IncrWithExpiry(ctx, "counter", 10*time.Millisecond)
	require.NoError(t, err)
	time.Sleep(30 * time.Millisecond)

	got, err := mc.IncrWithExpiry(ctx, "counter", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got, "expired counter must restart")
}

func TestMemoryCache_Ping(t *testing.T) {
	assert.NoError(t, cache.NewMemoryCache(0).Ping(context.Background()))
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "analysis:abc", cache.AnalysisKey("abc"))
	assert.Equal(t, "ratelimit:lsk_1234", cache.RateLimitKey("lsk_1234"))
}
