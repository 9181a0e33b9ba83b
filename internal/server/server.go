// Package server exposes the aggregated PokeAPI views over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Sternrassler/pokedex-client/pkg/aggregate"
	"github.com/Sternrassler/pokedex-client/pkg/app"
	"github.com/Sternrassler/pokedex-client/pkg/client"
	"github.com/Sternrassler/pokedex-client/pkg/detail"
	"github.com/Sternrassler/pokedex-client/pkg/metrics"
	"github.com/Sternrassler/pokedex-client/pkg/pagination"
	"github.com/Sternrassler/pokedex-client/pkg/pokeapi"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Pinger checks a backing dependency. *cache.Manager implements it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds server configuration.
type Config struct {
	Addr           string
	PageSize       int
	RequestTimeout time.Duration
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() Config {
	return Config{
		Addr:           ":8080",
		PageSize:       pagination.DefaultPageSize,
		RequestTimeout: 30 * time.Second,
	}
}

// Server serves the list and detail views as JSON.
type Server struct {
	api        app.API
	aggregator *aggregate.Aggregator
	cache      Pinger
	config     Config
	logger     zerolog.Logger
}

// New creates a server. cache may be nil when caching is disabled.
func New(api app.API, aggregator *aggregate.Aggregator, cache Pinger, cfg Config) *Server {
	if cfg.PageSize <= 0 {
		cfg.PageSize = pagination.DefaultPageSize
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	return &Server{
		api:        api,
		aggregator: aggregator,
		cache:      cache,
		config:     cfg,
		logger:     log.With().Str("component", "server").Logger(),
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler)
	mux.HandleFunc("GET /ready", s.readyHandler)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /api/pokemon", s.listHandler)
	mux.HandleFunc("GET /api/pokemon/{name}", s.detailHandler)
	return mux
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.config.Addr).Msg("Starting HTTP server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

func (s *Server) readyHandler(w http.ResponseWriter, r *http.Request) {
	if s.cache != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.cache.Ping(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("Readiness check failed")
			http.Error(w, "cache unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

// ListResponse is the body of GET /api/pokemon.
type ListResponse struct {
	Count      int               `json:"count"`
	Offset     int               `json:"offset"`
	NextOffset *int              `json:"next_offset"`
	PrevOffset *int              `json:"prev_offset"`
	Results    []pokeapi.Pokemon `json:"results"`
	Failures   []FailureBody     `json:"failures,omitempty"`
}

// FailureBody reports one entry that could not be expanded.
type FailureBody struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// ErrorBody is the body of every error response.
type ErrorBody struct {
	Error string `json:"error"`
	Class string `json:"class,omitempty"`
}

func (s *Server) listHandler(w http.ResponseWriter, r *http.Request) {
	offset := 0
	if raw := r.URL.Query().Get("offset"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			writeJSON(w, http.StatusBadRequest, ErrorBody{Error: "offset must be a non-negative integer"})
			return
		}
		offset = v
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.config.RequestTimeout)
	defer cancel()

	page, err := s.api.ListPage(ctx, s.config.PageSize, offset)
	if err != nil {
		s.writeUpstreamError(w, err)
		return
	}

	pager := pagination.NewController(s.config.PageSize)
	pager.Apply(offset, page.Next, page.Previous)

	body := ListResponse{Count: page.Count, Offset: offset}
	if pager.CanNext() {
		next := pager.NextOffset()
		body.NextOffset = &next
	}
	if pager.CanPrev() {
		prev := pager.PrevOffset()
		body.PrevOffset = &prev
	}

	if s.aggregator.Policy() == aggregate.SettleAll {
		res := s.aggregator.Settle(ctx, page.Results)
		body.Results = res.Records
		for _, f := range res.Failures {
			body.Failures = append(body.Failures, FailureBody{Name: f.Entry.Name, Error: f.Err.Error()})
		}
	} else {
		records, err := s.aggregator.Aggregate(ctx, page.Results)
		if err != nil {
			s.logger.Warn().Err(err).Int("offset", offset).Msg("List aggregation failed")
			writeJSON(w, http.StatusBadGateway, ErrorBody{Error: err.Error(), Class: string(client.ClassOf(err))})
			return
		}
		body.Results = records
	}

	writeJSON(w, http.StatusOK, body)
}

func (s *Server) detailHandler(w http.ResponseWriter, r *http.Request) {
	key := detail.NormalizeKey(r.PathValue("name"))
	if key == "" {
		writeJSON(w, http.StatusBadRequest, ErrorBody{Error: "name is required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.config.RequestTimeout)
	defer cancel()

	p, err := s.api.Pokemon(ctx, key)
	if err != nil {
		s.writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) writeUpstreamError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	if errors.Is(err, client.ErrNotFound) {
		status = http.StatusNotFound
	}
	s.logger.Warn().Err(err).Int("status", status).Msg("Upstream request failed")
	writeJSON(w, status, ErrorBody{Error: err.Error(), Class: string(client.ClassOf(err))})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("Failed to write response")
	}
}
