// Package detail fetches and renders a single pokemon on selection or search.
package detail

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/Sternrassler/pokedex-client/pkg/pokeapi"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Fetcher fetches one detail record by name or id. *pokeapi.API implements it.
type Fetcher interface {
	Pokemon(ctx context.Context, nameOrID string) (pokeapi.Pokemon, error)
}

// Target receives the outcome of a view.
type Target interface {
	RenderDetail(p pokeapi.Pokemon)
	RenderDetailError(key string, err error)
}

// Recorder records successfully viewed names. *history.Tracker implements it.
type Recorder interface {
	Add(name string) bool
}

// Viewer resolves a key to a detail record. Only the latest View renders;
// completions of views that were superseded meanwhile are dropped.
type Viewer struct {
	fetcher    Fetcher
	recorder   Recorder
	generation atomic.Uint64

	// renderMu makes the generation check and the render one step
	renderMu sync.Mutex

	logger zerolog.Logger
}

// NewViewer creates a viewer. recorder may be nil.
func NewViewer(fetcher Fetcher, recorder Recorder) *Viewer {
	return &Viewer{
		fetcher:  fetcher,
		recorder: recorder,
		logger:   log.With().Str("component", "detail").Logger(),
	}
}

// NormalizeKey trims and lower-cases a user supplied name or id.
func NormalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// View fetches key and renders the result to target. An empty key is
// ignored. Failures are rendered, never returned. The canonical name from the
// response is recorded, not the key as typed.
func (v *Viewer) View(ctx context.Context, key string, target Target) {
	key = NormalizeKey(key)
	if key == "" {
		return
	}

	gen := v.generation.Add(1)

	p, err := v.fetcher.Pokemon(ctx, key)

	v.renderMu.Lock()
	defer v.renderMu.Unlock()

	if gen != v.generation.Load() {
		v.logger.Debug().
			Str("key", key).
			Uint64("generation", gen).
			Msg("Dropping superseded detail view")
		return
	}

	if err != nil {
		v.logger.Warn().Err(err).Str("key", key).Msg("Detail fetch failed")
		target.RenderDetailError(key, err)
		return
	}

	target.RenderDetail(p)
	if v.recorder != nil {
		v.recorder.Add(p.Name)
	}
}
