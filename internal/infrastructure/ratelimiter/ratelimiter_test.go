package ratelimiter

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimiter(t *testing.T, cache GetterSetter, rate, burst int, clock *time.Time) *RateLimiter {
	t.Helper()

	l, err := New(Options{MaxRatePerSecond: rate, MaxBurst: burst, Cache: cache, CacheTTL: time.Minute})
	require.NoError(t, err)

	rl := l.(*RateLimiter)
	rl.now = func() time.Time { return *clock }
	return rl
}

func TestTokenBucketBurstAndRefill(t *testing.T) {
	cache := NewInMemory()
	defer cache.Close()

	clock := time.Unix(1_700_000_000, 0)
	rl := newLimiter(t, cache, 10, 3, &clock)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("client"), "request %d", i)
	}
	assert.False(t, rl.Allow("client"))
	assert.Equal(t, 0, rl.Remaining("client"))

	clock = clock.Add(100 * time.Millisecond)
	assert.True(t, rl.Allow("client"))
	assert.False(t, rl.Allow("client"))

	clock = clock.Add(10 * time.Second)
	assert.Equal(t, 3, rl.Remaining("client"))
}

func TestTokenBucketAccumulatesFractions(t *testing.T) {
	cache := NewInMemory()
	defer cache.Close()

	clock := time.Unix(1_700_000_000, 0)
	rl := newLimiter(t, cache, 1, 1, &clock)

	require.True(t, rl.Allow("client"))

	// Ten checks 100ms apart add up to one full token.
	for i := 0; i < 9; i++ {
		clock = clock.Add(100 * time.Millisecond)
		assert.False(t, rl.Allow("client"))
	}
	clock = clock.Add(100 * time.Millisecond)
	assert.True(t, rl.Allow("client"))
}

func TestTokenBucketKeysAreIndependent(t *testing.T) {
	clock := time.Unix(1_700_000_000, 0)
	rl := newLimiter(t, NewInMemory(), 1, 1, &clock)

	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"))
}

func TestTokenBucketOverRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewRedis(client)
	defer cache.Close()

	clock := time.Unix(1_700_000_000, 0)
	rl := newLimiter(t, cache, 5, 2, &clock)

	assert.True(t, rl.Allow("client"))
	assert.True(t, rl.Allow("client"))
	assert.False(t, rl.Allow("client"))

	assert.True(t, mr.Exists(bucketKeyPrefix+"client"))
	ttl := mr.TTL(bucketKeyPrefix + "client")
	assert.Equal(t, time.Minute, ttl)

	// A second limiter over the same Redis sees the drained bucket.
	other := newLimiter(t, NewRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()})), 5, 2, &clock)
	assert.False(t, other.Allow("client"))
}

func TestRedisCacheMiss(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := NewRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	defer cache.Close()

	_, err := cache.Get("missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, cache.Set("present", 7))
	v, err := cache.Get("present")
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestNewRejectsZeroRate(t *testing.T) {
	_, err := New(Options{})
	assert.ErrorIs(t, err, ErrInvalidRate)
}

func TestGetSourceKey(t *testing.T) {
	rl, err := New(Options{MaxRatePerSecond: 1})
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, "10.0.0.1:1234", rl.GetSourceKey(req))

	req.Header.Set(defaultSourceKey, "tenant-1")
	assert.Equal(t, "tenant-1", rl.GetSourceKey(req))
}

func TestFixedWindow(t *testing.T) {
	fw := NewFixedWindow(2, time.Minute)
	defer fw.Close()

	clock := time.Date(2024, 1, 1, 12, 0, 10, 0, time.UTC)
	fw.now = func() time.Time { return clock }

	ok, _ := fw.Allow("u1")
	assert.True(t, ok)
	ok, _ = fw.Allow("u1")
	assert.True(t, ok)

	ok, wait := fw.Allow("u1")
	assert.False(t, ok)
	assert.Equal(t, 50*time.Second, wait)

	ok, _ = fw.Allow("u2")
	assert.True(t, ok)

	clock = clock.Add(50 * time.Second)
	ok, _ = fw.Allow("u1")
	assert.True(t, ok)

	clock = clock.Add(2 * time.Minute)
	fw.removeExpired()
	fw.mu.Lock()
	assert.Empty(t, fw.counts)
	fw.mu.Unlock()
}
