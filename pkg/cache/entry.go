package cache

import (
	"net/http"
	"time"
)

// CacheEntry is one stored PokeAPI response. Entries outlive Expires by
// RevalidateWindow so a stale copy can be confirmed with a 304 instead of
// being downloaded again.
type CacheEntry struct {
	Data       []byte      `json:"data"`
	StatusCode int         `json:"status_code"`
	Headers    http.Header `json:"headers"`

	// Validators sent back on revalidation
	ETag         string    `json:"etag"`
	LastModified time.Time `json:"last_modified"`

	// Expires is the end of the freshness lifetime
	Expires  time.Time `json:"expires"`
	CachedAt time.Time `json:"cached_at"`
}

// IsExpired reports whether the freshness lifetime is over. A zero Expires
// counts as expired.
func (e *CacheEntry) IsExpired() bool {
	return !time.Now().Before(e.Expires)
}

// TTL is the remaining freshness lifetime, never negative.
func (e *CacheEntry) TTL() time.Duration {
	return max(time.Until(e.Expires), 0)
}

// StaleFor is how long ago the entry expired, zero while still fresh.
func (e *CacheEntry) StaleFor() time.Duration {
	return max(time.Since(e.Expires), 0)
}

// Age returns how long ago the response was stored.
func (e *CacheEntry) Age() time.Duration {
	if e.CachedAt.IsZero() {
		return 0
	}
	return time.Since(e.CachedAt)
}
