// Package client provides the HTTP fetch client for PokeAPI with optional
// response caching, error classification, and request metrics.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/pokedex-client/pkg/cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the public PokeAPI v2 root.
const DefaultBaseURL = "https://pokeapi.co/api/v2"

// Prometheus metrics for PokeAPI client operations.
var (
	apiRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pokeapi_requests_total",
		Help: "Total PokeAPI requests by endpoint and status",
	}, []string{"endpoint", "status"})

	apiRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pokeapi_request_duration_seconds",
		Help:    "PokeAPI request duration in seconds by endpoint",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	apiErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pokeapi_errors_total",
		Help: "Total PokeAPI errors by class",
	}, []string{"class"})
)

// Client is the PokeAPI fetch client.
type Client struct {
	httpClient *http.Client
	cache      *cache.Manager
	baseURL    *url.URL
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the API root that relative references resolve against.
	BaseURL string

	// UserAgent header sent with every request
	UserAgent string

	// Timeout bounds each request; a timeout is reported as a network error.
	Timeout time.Duration

	// Redis enables the shared response cache when non-nil.
	Redis *redis.Client
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		UserAgent: "pokedex-client/0.1.0",
		Timeout:   30 * time.Second,
	}
}

// New creates a new PokeAPI client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}

	baseURL, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if !baseURL.IsAbs() || baseURL.Host == "" {
		return nil, fmt.Errorf("base url must be absolute (got %q)", cfg.BaseURL)
	}

	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("timeout must be >= 0 (got %s)", cfg.Timeout)
	}

	logger := log.With().Str("component", "pokeapi-client").Logger()

	var cacheManager *cache.Manager
	if cfg.Redis != nil {
		cacheManager = cache.NewManager(cfg.Redis)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		cache:   cacheManager,
		baseURL: baseURL,
		config:  cfg,
		logger:  logger,
	}, nil
}

// Do performs an HTTP request with caching, error classification, and metrics.
// Any response that arrives is returned as-is, including 4xx and 5xx; only
// transport failures are returned as errors. Requests are never retried.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	endpoint := endpointLabel(req.URL)

	startTime := time.Now()
	defer func() {
		apiRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	// Step 1: Check cache
	var cacheKey cache.CacheKey
	var cachedEntry *cache.CacheEntry
	useCache := c.cache != nil && req.Method == http.MethodGet
	if useCache {
		cacheKey = cache.KeyFromURL(req.URL)

		entry, err := c.cache.Lookup(ctx, cacheKey)
		switch {
		case err == nil:
			cachedEntry = entry
		case !errors.Is(err, cache.ErrCacheMiss):
			c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Cache lookup error")
		}

		if cachedEntry != nil && !cachedEntry.IsExpired() {
			cache.CacheHits.WithLabelValues("redis").Inc()
			apiRequestsTotal.WithLabelValues(endpoint, "cache_hit").Inc()
			c.logger.Debug().
				Str("endpoint", endpoint).
				Dur("ttl", cachedEntry.TTL()).
				Msg("Serving fresh cached response")
			return cache.EntryToResponse(cachedEntry), nil
		}
	}

	// Step 2: Revalidate stale entries
	if cachedEntry != nil && cache.ShouldMakeConditionalRequest(cachedEntry) {
		cache.AddConditionalHeaders(req, cachedEntry)
		cache.ConditionalRequestsSent.Inc()
		c.logger.Debug().
			Str("endpoint", endpoint).
			Str("etag", cachedEntry.ETag).
			Dur("age", cachedEntry.Age()).
			Dur("stale_for", cachedEntry.StaleFor()).
			Msg("Making conditional request")
	}

	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Msg("Executing PokeAPI request")

	// Step 3: Execute HTTP request
	resp, err := c.httpClient.Do(req)
	if err != nil {
		apiErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		apiRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("HTTP request failed")
		return nil, &APIError{
			ErrorClass: ErrorClassNetwork,
			Endpoint:   endpoint,
			Message:    "request failed",
			Err:        err,
		}
	}

	apiRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	// Step 4: 304 Not Modified refreshes the stale entry
	if resp.StatusCode == http.StatusNotModified && cachedEntry != nil {
		cache.NotModifiedResponses.Inc()
		c.logger.Debug().Str("endpoint", endpoint).Msg("304 Not Modified - using cache")

		if entry, err := cache.ResponseToEntry(resp); err == nil {
			if err := c.cache.UpdateTTL(ctx, cacheKey, entry.Expires); err != nil {
				c.logger.Warn().Err(err).Msg("Failed to update cache TTL")
			}
		}
		resp.Body.Close()
		return cache.EntryToResponse(cachedEntry), nil
	}

	if class := classifyStatus(resp.StatusCode); class != "" {
		apiErrorsTotal.WithLabelValues(string(class)).Inc()
		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Str("error_class", string(class)).
			Msg("PokeAPI request error")
		return resp, nil
	}

	// Step 5: Update cache on success
	if useCache && cache.Cacheable(resp) {
		entry, err := cache.ResponseToEntry(resp)
		if err != nil {
			c.logger.Warn().Err(err).Msg("Failed to create cache entry")
		} else if err := c.cache.Set(ctx, cacheKey, entry); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to cache response")
		} else {
			c.logger.Debug().
				Str("endpoint", endpoint).
				Dur("ttl", entry.TTL()).
				Msg("Cached response")
		}
	}

	return resp, nil
}

// Get performs a GET request. ref may be an absolute URL (as found in list
// results) or a path relative to the configured base URL.
func (c *Client) Get(ctx context.Context, ref string) (*http.Response, error) {
	target, err := c.Resolve(ref)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	return c.Do(req)
}

// GetJSON fetches ref and decodes the JSON body into v. Any non-2xx status is
// returned as an *APIError; not-found and server errors fail the same way.
func (c *Client) GetJSON(ctx context.Context, ref string, v any) error {
	resp, err := c.Get(ctx, ref)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	endpoint := ref
	if resp.Request != nil {
		endpoint = endpointLabel(resp.Request.URL)
	}

	if class := classifyStatus(resp.StatusCode); class != "" {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: class,
			Endpoint:   endpoint,
			Message:    resp.Status,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		apiErrorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		return &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassDecode,
			Endpoint:   endpoint,
			Message:    "decode response body",
			Err:        err,
		}
	}

	return nil
}

// Resolve turns ref into an absolute URL against the base URL.
func (c *Client) Resolve(ref string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", fmt.Errorf("parse reference %q: %w", ref, err)
	}
	if u.IsAbs() {
		return u.String(), nil
	}

	resolved := *c.baseURL
	resolved.Path = strings.TrimRight(resolved.Path, "/") + "/" + strings.TrimLeft(u.Path, "/")
	resolved.RawPath = ""
	resolved.RawQuery = u.RawQuery
	return resolved.String(), nil
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Close releases idle connections held by the client.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// GetCache returns the cache manager, nil when caching is disabled.
func (c *Client) GetCache() *cache.Manager {
	return c.cache
}

var versionSegment = regexp.MustCompile(`^v\d+$`)

// endpointLabel collapses a request path into a low-cardinality metric label:
// /api/v2/pokemon -> "pokemon", /api/v2/pokemon/25 -> "pokemon/{id}".
func endpointLabel(u *url.URL) string {
	if u == nil {
		return "unknown"
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	start := 0
	for i, seg := range segments {
		if versionSegment.MatchString(seg) {
			start = i + 1
			break
		}
	}

	rest := segments[start:]
	switch {
	case len(rest) == 0 || rest[0] == "":
		return "root"
	case len(rest) == 1:
		return rest[0]
	default:
		return rest[0] + "/{id}"
	}
}
