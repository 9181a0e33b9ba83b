//go:build integration

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Sternrassler/pokedex-client/internal/testutil"
)

func TestManager_Integration_RoundTrip(t *testing.T) {
	client := testutil.StartRedis(t)
	manager := NewManager(client)
	ctx := context.Background()

	if err := manager.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}

	key := CacheKey{Endpoint: "/api/v2/pokemon/150"}
	entry := &CacheEntry{
		Data:       []byte(`{"id": 150, "name": "mewtwo"}`),
		ETag:       `"mewtwo"`,
		StatusCode: 200,
		Expires:    time.Now().Add(2 * time.Second),
		CachedAt:   time.Now(),
	}

	if err := manager.Set(ctx, key, entry); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	ttl, err := client.TTL(ctx, key.String()).Result()
	if err != nil {
		t.Fatalf("TTL() error = %v", err)
	}
	if ttl <= RevalidateWindow || ttl > RevalidateWindow+2*time.Second {
		t.Errorf("redis TTL = %v, want expiry plus revalidate window", ttl)
	}

	got, err := manager.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ETag != entry.ETag {
		t.Errorf("ETag = %q, want %q", got.ETag, entry.ETag)
	}

	time.Sleep(2500 * time.Millisecond)
	if _, err := manager.Get(ctx, key); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get() after expiry error = %v, want ErrCacheMiss", err)
	}

	// Stale entries stay available for revalidation
	stale, err := manager.Lookup(ctx, key)
	if err != nil {
		t.Fatalf("Lookup() after expiry error = %v", err)
	}
	if !stale.IsExpired() {
		t.Error("Lookup() should return the expired entry as stale")
	}
}

func TestManager_Integration_InvalidEntry(t *testing.T) {
	client := testutil.StartRedis(t)
	manager := NewManager(client)
	ctx := context.Background()

	key := CacheKey{Endpoint: "/api/v2/pokemon/corrupt"}
	if err := client.Set(ctx, key.String(), "not json", time.Minute).Err(); err != nil {
		t.Fatalf("seed corrupt value: %v", err)
	}

	if _, err := manager.Get(ctx, key); !errors.Is(err, ErrInvalidEntry) {
		t.Errorf("Get() error = %v, want ErrInvalidEntry", err)
	}
}
