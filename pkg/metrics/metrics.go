// Package metrics exposes the Prometheus registry used by the pokedex packages.
// Metrics are defined in their respective packages (client, cache, aggregate)
// and registered via promauto, so importing this package adds none of its own.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the pokedex packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the counterpart of Registry used when serving metrics.
var Gatherer = prometheus.DefaultGatherer

// Handler serves every registered metric in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - pokeapi_requests_total{endpoint, status} (Counter): Requests by endpoint and HTTP status
//     (status is also "cache_hit" or "network_error")
//   - pokeapi_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - pokeapi_errors_total{class} (Counter): Errors by class (client, server, network, decode)
//
// Cache Metrics (pkg/cache):
//   - pokeapi_cache_hits_total{layer="redis"} (Counter): Cache hits by layer
//   - pokeapi_cache_misses_total (Counter): Cache misses
//   - pokeapi_cache_stored_bytes_total{layer="redis"} (Counter): Bytes written to the cache
//   - pokeapi_304_responses_total (Counter): 304 Not Modified responses
//   - pokeapi_conditional_requests_total (Counter): Conditional requests sent with If-None-Match
//   - pokeapi_cache_errors_total{operation} (Counter): Cache operation errors
//
// Aggregation Metrics (pkg/aggregate):
//   - pokedex_aggregate_duration_seconds{policy} (Histogram): Time to expand one list page
//   - pokedex_aggregate_failures_total{policy} (Counter): Failed detail fetches during aggregation
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(pokeapi_cache_hits_total[5m])) /
//   (sum(rate(pokeapi_cache_hits_total[5m])) + sum(rate(pokeapi_cache_misses_total[5m])))
//
//   # Upstream Error Rate
//   rate(pokeapi_errors_total[5m])
//
//   # P95 Page Load
//   histogram_quantile(0.95, rate(pokedex_aggregate_duration_seconds_bucket[5m]))
