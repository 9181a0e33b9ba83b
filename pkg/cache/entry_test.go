package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheEntry_Freshness(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name        string
		expires     time.Time
		wantExpired bool
		wantTTL     time.Duration
		wantStale   time.Duration
	}{
		{"fresh for a day", now.Add(24 * time.Hour), false, 24 * time.Hour, 0},
		{"expired an hour ago", now.Add(-time.Hour), true, 0, time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := &CacheEntry{Expires: tt.expires}

			assert.Equal(t, tt.wantExpired, entry.IsExpired())
			assert.InDelta(t, tt.wantTTL.Seconds(), entry.TTL().Seconds(), 5)
			assert.InDelta(t, tt.wantStale.Seconds(), entry.StaleFor().Seconds(), 5)
		})
	}
}

func TestCacheEntry_ZeroExpiryIsExpired(t *testing.T) {
	entry := &CacheEntry{}

	assert.True(t, entry.IsExpired())
	assert.Zero(t, entry.TTL())
	assert.Positive(t, entry.StaleFor())
}

func TestCacheEntry_Age(t *testing.T) {
	assert.Zero(t, (&CacheEntry{}).Age())

	entry := &CacheEntry{CachedAt: time.Now().Add(-time.Minute)}
	assert.InDelta(t, time.Minute.Seconds(), entry.Age().Seconds(), 5)
}

func TestCacheEntry_StaleButRevalidatable(t *testing.T) {
	// mirrors what the client sees after max-age runs out
	entry := &CacheEntry{
		ETag:     `"pokemon-25"`,
		CachedAt: time.Now().Add(-2 * time.Minute),
		Expires:  time.Now().Add(-time.Minute),
	}

	assert.True(t, entry.IsExpired())
	assert.Less(t, entry.StaleFor(), RevalidateWindow)
	assert.True(t, ShouldMakeConditionalRequest(entry))
}
