package pokeapi

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Fetcher is the subset of the fetch client the API needs.
// *client.Client implements it.
type Fetcher interface {
	GetJSON(ctx context.Context, ref string, v any) error
}

// API exposes the typed PokeAPI endpoints.
type API struct {
	fetcher Fetcher
	logger  zerolog.Logger
}

// New creates an API over the given fetcher.
func New(fetcher Fetcher) *API {
	return &API{
		fetcher: fetcher,
		logger:  log.With().Str("component", "pokeapi").Logger(),
	}
}

// ListPage fetches GET /pokemon?limit={limit}&offset={offset}.
func (a *API) ListPage(ctx context.Context, limit, offset int) (ListPage, error) {
	if limit <= 0 {
		return ListPage{}, fmt.Errorf("limit must be > 0 (got %d)", limit)
	}
	if offset < 0 {
		return ListPage{}, fmt.Errorf("offset must be >= 0 (got %d)", offset)
	}

	ref := fmt.Sprintf("pokemon?limit=%d&offset=%d", limit, offset)

	var page ListPage
	if err := a.fetcher.GetJSON(ctx, ref, &page); err != nil {
		return ListPage{}, fmt.Errorf("fetch pokemon list (offset %d): %w", offset, err)
	}

	a.logger.Debug().
		Int("offset", offset).
		Int("limit", limit).
		Int("results", len(page.Results)).
		Bool("has_next", page.Next != "").
		Bool("has_previous", page.Previous != "").
		Msg("Fetched list page")

	return page, nil
}

// Pokemon fetches GET /pokemon/{nameOrID}. The key is used as given.
func (a *API) Pokemon(ctx context.Context, nameOrID string) (Pokemon, error) {
	if strings.TrimSpace(nameOrID) == "" {
		return Pokemon{}, fmt.Errorf("pokemon name or id is required")
	}
	return a.fetchPokemon(ctx, "pokemon/"+url.PathEscape(nameOrID), nameOrID)
}

// PokemonByURL fetches a detail record from the absolute URL carried by a ListEntry.
func (a *API) PokemonByURL(ctx context.Context, detailURL string) (Pokemon, error) {
	if detailURL == "" {
		return Pokemon{}, fmt.Errorf("detail url is required")
	}
	return a.fetchPokemon(ctx, detailURL, detailURL)
}

// Detail expands a list entry into its record. It is the fetch used by the
// list aggregator.
func (a *API) Detail(ctx context.Context, entry ListEntry) (Pokemon, error) {
	if entry.URL != "" {
		return a.PokemonByURL(ctx, entry.URL)
	}
	return a.Pokemon(ctx, entry.Name)
}

func (a *API) fetchPokemon(ctx context.Context, ref, label string) (Pokemon, error) {
	var raw rawPokemon
	if err := a.fetcher.GetJSON(ctx, ref, &raw); err != nil {
		return Pokemon{}, fmt.Errorf("fetch pokemon %s: %w", label, err)
	}
	return raw.flatten(), nil
}
