// Package testutil provides testing utilities for the PokeAPI client.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MockStat is a base stat served by the mock.
type MockStat struct {
	Name string
	Base int
}

// MockPokemon is a detail record served by the mock in PokeAPI's nested JSON shape.
type MockPokemon struct {
	ID        int
	Name      string
	Height    int
	Weight    int
	Types     []string
	Abilities []string
	Stats     []MockStat
}

// MockResponse defines a canned response for one detail key.
type MockResponse struct {
	StatusCode int
	Body       string
}

// MockPokeAPI is a configurable in-process PokeAPI for tests.
type MockPokeAPI struct {
	server *httptest.Server
	mu     sync.RWMutex

	pokemon  map[string]MockPokemon // keyed by name and by id
	order    []string               // list order (names)
	failures map[string]MockResponse
	delays   map[string]time.Duration
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// Tracking
	RequestCount      int
	ConditionalCount  int
	LastRequestHeader http.Header
	pathCounts        map[string]int
}

// NewMockPokeAPI creates a mock server with no pokemon registered.
func NewMockPokeAPI() *MockPokeAPI {
	mock := &MockPokeAPI{
		pokemon:    make(map[string]MockPokemon),
		failures:   make(map[string]MockResponse),
		delays:     make(map[string]time.Duration),
		handlers:   make(map[string]func(w http.ResponseWriter, r *http.Request)),
		pathCounts: make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.pathCounts[strings.TrimRight(r.URL.Path, "/")]++
		mock.LastRequestHeader = r.Header.Clone()
		if r.Header.Get("If-None-Match") != "" || r.Header.Get("If-Modified-Since") != "" {
			mock.ConditionalCount++
		}
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		path := strings.TrimRight(r.URL.Path, "/")
		switch {
		case path == "/api/v2/pokemon":
			mock.listHandler(w, r)
		case strings.HasPrefix(path, "/api/v2/pokemon/"):
			mock.detailHandler(w, r, strings.TrimPrefix(path, "/api/v2/pokemon/"))
		default:
			http.NotFound(w, r)
		}
	}))

	return mock
}

// NewMockPokeAPIWithSamples creates a mock preloaded with SamplePokemon,
// listed in the order given by SampleListOrder.
func NewMockPokeAPIWithSamples() *MockPokeAPI {
	mock := NewMockPokeAPI()
	for _, p := range SamplePokemon() {
		mock.AddPokemon(p)
	}
	mock.SetListOrder(SampleListOrder()...)
	return mock
}

// URL returns the mock server root URL.
func (m *MockPokeAPI) URL() string {
	return m.server.URL
}

// BaseURL returns the API root to configure clients with.
func (m *MockPokeAPI) BaseURL() string {
	return m.server.URL + "/api/v2"
}

// Close shuts down the mock server.
func (m *MockPokeAPI) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockPokeAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.ConditionalCount = 0
	m.LastRequestHeader = nil
	m.pathCounts = make(map[string]int)
}

// AddPokemon registers a pokemon and appends it to the list order.
func (m *MockPokeAPI) AddPokemon(p MockPokemon) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.pokemon[p.Name]; !exists {
		m.order = append(m.order, p.Name)
	}
	m.pokemon[p.Name] = p
	m.pokemon[strconv.Itoa(p.ID)] = p
}

// SetListOrder sets the order in which the list endpoint returns entries.
func (m *MockPokeAPI) SetListOrder(names ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.order = append([]string(nil), names...)
}

// FailPokemon makes the detail endpoint for key (name or id) answer with status.
func (m *MockPokeAPI) FailPokemon(key string, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[key] = MockResponse{StatusCode: status, Body: http.StatusText(status)}
}

// DelayPokemon delays the detail response for key.
func (m *MockPokeAPI) DelayPokemon(key string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delays[key] = d
}

// SetHandler sets a custom handler for a specific path.
func (m *MockPokeAPI) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockPokeAPI) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetConditionalCount returns the number of conditional requests.
func (m *MockPokeAPI) GetConditionalCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ConditionalCount
}

// RequestsFor returns how many requests hit path (trailing slash ignored).
func (m *MockPokeAPI) RequestsFor(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pathCounts[strings.TrimRight(path, "/")]
}

func (m *MockPokeAPI) listHandler(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)

	m.mu.RLock()
	names := append([]string(nil), m.order...)
	ids := make(map[string]int, len(names))
	for _, name := range names {
		ids[name] = m.pokemon[name].ID
	}
	m.mu.RUnlock()

	type entry struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	}
	body := struct {
		Count    int     `json:"count"`
		Next     *string `json:"next"`
		Previous *string `json:"previous"`
		Results  []entry `json:"results"`
	}{Count: len(names), Results: []entry{}}

	base := m.BaseURL()
	end := offset + limit
	if end > len(names) {
		end = len(names)
	}
	if offset < len(names) {
		for _, name := range names[offset:end] {
			body.Results = append(body.Results, entry{
				Name: name,
				URL:  fmt.Sprintf("%s/pokemon/%d/", base, ids[name]),
			})
		}
	}
	if end < len(names) {
		next := fmt.Sprintf("%s/pokemon?offset=%d&limit=%d", base, end, limit)
		body.Next = &next
	}
	if offset > 0 {
		prevOffset := offset - limit
		if prevOffset < 0 {
			prevOffset = 0
		}
		prev := fmt.Sprintf("%s/pokemon?offset=%d&limit=%d", base, prevOffset, limit)
		body.Previous = &prev
	}

	writeJSON(w, body, "")
}

func (m *MockPokeAPI) detailHandler(w http.ResponseWriter, r *http.Request, key string) {
	m.mu.RLock()
	failure, failing := m.failures[key]
	delay := m.delays[key]
	p, found := m.pokemon[key]
	if found {
		// failures and delays may be registered under the other key
		if f, ok := m.failures[p.Name]; ok {
			failure, failing = f, true
		}
		if f, ok := m.failures[strconv.Itoa(p.ID)]; ok {
			failure, failing = f, true
		}
		if d, ok := m.delays[p.Name]; ok {
			delay = d
		}
		if d, ok := m.delays[strconv.Itoa(p.ID)]; ok {
			delay = d
		}
	}
	m.mu.RUnlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	if failing {
		w.WriteHeader(failure.StatusCode)
		w.Write([]byte(failure.Body))
		return
	}
	if !found {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("Not Found"))
		return
	}

	etag := fmt.Sprintf(`"pokemon-%d"`, p.ID)
	if r.Header.Get("If-None-Match") == etag {
		w.Header().Set("Cache-Control", "public, max-age=86400")
		w.WriteHeader(http.StatusNotModified)
		return
	}

	writeJSON(w, DetailJSON(p), etag)
}

// DetailJSON renders p in PokeAPI's nested response shape.
func DetailJSON(p MockPokemon) map[string]any {
	types := make([]map[string]any, 0, len(p.Types))
	for i, t := range p.Types {
		types = append(types, map[string]any{
			"slot": i + 1,
			"type": map[string]string{"name": t, "url": ""},
		})
	}

	abilities := make([]map[string]any, 0, len(p.Abilities))
	for i, a := range p.Abilities {
		abilities = append(abilities, map[string]any{
			"slot":      i + 1,
			"is_hidden": false,
			"ability":   map[string]string{"name": a, "url": ""},
		})
	}

	stats := make([]map[string]any, 0, len(p.Stats))
	for _, s := range p.Stats {
		stats = append(stats, map[string]any{
			"base_stat": s.Base,
			"effort":    0,
			"stat":      map[string]string{"name": s.Name, "url": ""},
		})
	}

	return map[string]any{
		"id":        p.ID,
		"name":      p.Name,
		"height":    p.Height,
		"weight":    p.Weight,
		"types":     types,
		"abilities": abilities,
		"stats":     stats,
		"sprites": map[string]any{
			"front_default": SpriteURL(p.ID),
		},
	}
}

// SpriteURL returns the sprite URL the mock serves for id.
func SpriteURL(id int) string {
	return fmt.Sprintf("https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon/%d.png", id)
}

func writeJSON(w http.ResponseWriter, v any, etag string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=86400, s-maxage=86400")
	if etag != "" {
		w.Header().Set("ETag", etag)
	}
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

// SamplePokemon returns a small fixed dataset.
func SamplePokemon() []MockPokemon {
	return []MockPokemon{
		{ID: 1, Name: "bulbasaur", Height: 7, Weight: 69, Types: []string{"grass", "poison"}, Abilities: []string{"overgrow", "chlorophyll"},
			Stats: []MockStat{{"hp", 45}, {"attack", 49}, {"defense", 49}, {"special-attack", 65}, {"special-defense", 65}, {"speed", 45}}},
		{ID: 4, Name: "charmander", Height: 6, Weight: 85, Types: []string{"fire"}, Abilities: []string{"blaze", "solar-power"},
			Stats: []MockStat{{"hp", 39}, {"attack", 52}, {"defense", 43}, {"special-attack", 60}, {"special-defense", 50}, {"speed", 65}}},
		{ID: 7, Name: "squirtle", Height: 5, Weight: 90, Types: []string{"water"}, Abilities: []string{"torrent", "rain-dish"},
			Stats: []MockStat{{"hp", 44}, {"attack", 48}, {"defense", 65}, {"special-attack", 50}, {"special-defense", 64}, {"speed", 43}}},
		{ID: 25, Name: "pikachu", Height: 4, Weight: 60, Types: []string{"electric"}, Abilities: []string{"static", "lightning-rod"},
			Stats: []MockStat{{"hp", 35}, {"attack", 55}, {"defense", 40}, {"special-attack", 50}, {"special-defense", 50}, {"speed", 90}}},
		{ID: 113, Name: "chansey", Height: 11, Weight: 346, Types: []string{"normal"}, Abilities: []string{"natural-cure", "serene-grace"},
			Stats: []MockStat{{"hp", 250}, {"attack", 5}, {"defense", 5}, {"special-attack", 35}, {"special-defense", 105}, {"speed", 50}}},
	}
}

// SampleListOrder is deliberately not in id order.
func SampleListOrder() []string {
	return []string{"pikachu", "squirtle", "bulbasaur", "chansey", "charmander"}
}

// SampleIDs returns the sample ids in ascending order.
func SampleIDs() []int {
	samples := SamplePokemon()
	ids := make([]int, 0, len(samples))
	for _, p := range samples {
		ids = append(ids, p.ID)
	}
	sort.Ints(ids)
	return ids
}
