package dedupe_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/newsphere/newsletter-bff/internal/dedupe"
)

func TestCacheSeenDuplicate(t *testing.T) {
	cache := dedupe.NewCache(10, time.Minute)
	require.False(t, cache.IsSeen("evt-1"))
	cache.MarkSeen("evt-1")
	require.True(t, cache.IsSeen("evt-1"))
	require.Equal(t, 1, cache.Len())
}

func TestCacheTTLExpiry(t *testing.T) {
	cache := dedupe.NewCache(10, 20*time.Millisecond)
	cache.MarkSeen("evt-2")
	time.Sleep(25 * time.Millisecond)
	require.False(t, cache.IsSeen("evt-2"))
}

func TestCacheCapacityEvictsOldest(t *testing.T) {
	cache := dedupe.NewCache(1, time.Minute)
	cache.MarkSeen("first")
	cache.MarkSeen("second")

	require.False(t, cache.IsSeen("first"))
	require.True(t, cache.IsSeen("second"))
	require.Equal(t, 1, cache.Len())
}

func TestCacheRemarkRefreshes(t *testing.T) {
	cache := dedupe.NewCache(2, time.Minute)
	cache.MarkSeen("a")
	cache.MarkSeen("b")
	cache.MarkSeen("a")
	cache.MarkSeen("c")

	// "b" was the oldest after "a" got refreshed.
	require.False(t, cache.IsSeen("b"))
	require.True(t, cache.IsSeen("a"))
	require.True(t, cache.IsSeen("c"))
}
