// Package cache provides an opt-in, Redis-backed response cache for PokeAPI requests.
//
// PokeAPI responses are static for long periods and are served with
// Cache-Control: max-age and ETag headers. The cache manager stores successful
// responses for exactly as long as the upstream allows:
//
// - TTL from Cache-Control max-age, falling back to Expires, then DefaultTTL
// - Cache-Control no-store / no-cache responses are never stored
// - ETag support for conditional requests (If-None-Match)
// - Last-Modified support (If-Modified-Since)
// - Prometheus metrics for observability
// - Deterministic cache key generation
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	manager := cache.NewManager(redisClient)
//
//	key := cache.CacheKey{
//		Host:        "pokeapi.co",
//		Endpoint:    "/api/v2/pokemon",
//		QueryParams: url.Values{"limit": []string{"150"}, "offset": []string{"0"}},
//	}
//
//	entry, err := manager.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// fetch from PokeAPI
//	}
//
// # Conditional Requests
//
//	if cache.ShouldMakeConditionalRequest(entry) {
//		cache.AddConditionalHeaders(req, entry)
//	}
//
// The cache is never consulted as a fallback when the upstream is unreachable:
// a transport error always surfaces to the caller.
//
// # Metrics
//
//   - pokeapi_cache_hits_total{layer="redis"} - Cache hits
//   - pokeapi_cache_misses_total - Cache misses
//   - pokeapi_cache_stored_bytes_total{layer="redis"} - Bytes written to the cache
//   - pokeapi_304_responses_total - Conditional request successes
//   - pokeapi_conditional_requests_total - Conditional requests sent
//   - pokeapi_cache_errors_total{operation} - Cache operation errors
package cache
