// Package app wires the list aggregator, detail viewer, history tracker and
// pagination controller behind a single Renderer.
//
// All browser state is owned by a Controller. Operations may be called from
// any goroutine; a list load that has been superseded by a newer one never
// reaches the renderer.
package app

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Sternrassler/pokedex-client/pkg/aggregate"
	"github.com/Sternrassler/pokedex-client/pkg/detail"
	"github.com/Sternrassler/pokedex-client/pkg/history"
	"github.com/Sternrassler/pokedex-client/pkg/pagination"
	"github.com/Sternrassler/pokedex-client/pkg/pokeapi"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Renderer is the display surface driven by the controller.
type Renderer interface {
	ClearList()
	AppendCard(p pokeapi.Pokemon)
	RenderListError(err error)
	ClearDetail()
	RenderDetail(p pokeapi.Pokemon)
	RenderDetailError(key string, err error)
	RenderPagination(canNext, canPrev bool)
	RenderHistory(names []string)
}

// API is the PokeAPI surface the controller uses. *pokeapi.API implements it.
type API interface {
	ListPage(ctx context.Context, limit, offset int) (pokeapi.ListPage, error)
	aggregate.Fetcher
	detail.Fetcher
}

// Config holds controller configuration.
type Config struct {
	PageSize      int
	Aggregate     aggregate.Config
	HistoryPolicy history.Policy
}

// DefaultConfig returns the default browser configuration.
func DefaultConfig() Config {
	return Config{
		PageSize:      pagination.DefaultPageSize,
		Aggregate:     aggregate.DefaultConfig(),
		HistoryPolicy: history.MoveToFront,
	}
}

// Controller owns the browser state.
type Controller struct {
	api        API
	renderer   Renderer
	pager      *pagination.Controller
	history    *history.Tracker
	aggregator *aggregate.Aggregator
	viewer     *detail.Viewer
	generation atomic.Uint64

	// renderMu makes each generation check and its renders one step
	renderMu sync.Mutex

	logger zerolog.Logger
}

// New creates a controller. Nothing is fetched until Start or LoadPage.
func New(api API, renderer Renderer, cfg Config) *Controller {
	c := &Controller{
		api:        api,
		renderer:   renderer,
		pager:      pagination.NewController(cfg.PageSize),
		history:    history.New(cfg.HistoryPolicy),
		aggregator: aggregate.New(api, cfg.Aggregate),
		logger:     log.With().Str("component", "app").Logger(),
	}
	c.viewer = detail.NewViewer(api, historyRecorder{c})
	return c
}

// Start renders the empty history and loads the first page.
func (c *Controller) Start(ctx context.Context) error {
	c.renderer.RenderHistory(c.history.Names())
	return c.LoadPage(ctx, 0)
}

// LoadPage fetches the list page at offset and renders it. The details panel
// is cleared first. Pagination is updated as soon as the list page arrives;
// the cards follow once every detail fetch has completed.
func (c *Controller) LoadPage(ctx context.Context, offset int) error {
	gen := c.generation.Add(1)
	pageSize := c.pager.PageSize()

	c.renderer.ClearDetail()

	page, err := c.api.ListPage(ctx, pageSize, offset)
	if current, err := c.renderPage(gen, offset, page, err); !current || err != nil {
		return err
	}

	buf := &pageBuffer{}
	err = c.aggregator.Render(ctx, page.Results, buf)
	if current, err := c.renderCards(gen, offset, buf, err); !current || err != nil {
		return err
	}

	c.logger.Info().
		Int("offset", offset).
		Int("records", len(buf.cards)).
		Msg("Page loaded")
	return nil
}

// Next loads the following page. It is a no-op when there is none.
func (c *Controller) Next(ctx context.Context) error {
	if !c.pager.CanNext() {
		return nil
	}
	return c.LoadPage(ctx, c.pager.NextOffset())
}

// Prev loads the preceding page. It is a no-op when there is none.
func (c *Controller) Prev(ctx context.Context) error {
	if !c.pager.CanPrev() {
		return nil
	}
	return c.LoadPage(ctx, c.pager.PrevOffset())
}

// Select shows the details for key, as typed in search or taken from a card.
func (c *Controller) Select(ctx context.Context, key string) {
	c.viewer.View(ctx, key, c.renderer)
}

// Replay shows the details of the history entry at index.
func (c *Controller) Replay(ctx context.Context, index int) error {
	name, ok := c.history.At(index)
	if !ok {
		return fmt.Errorf("history index %d out of range (len %d)", index, c.history.Len())
	}
	c.Select(ctx, name)
	return nil
}

// History returns the viewed names, most recent first.
func (c *Controller) History() []string {
	return c.history.Names()
}

// Pagination returns a snapshot of the pagination state.
func (c *Controller) Pagination() pagination.State {
	return c.pager.State()
}

// renderPage renders the outcome of the list request unless gen was superseded.
func (c *Controller) renderPage(gen uint64, offset int, page pokeapi.ListPage, err error) (bool, error) {
	c.renderMu.Lock()
	defer c.renderMu.Unlock()

	if !c.current(gen) {
		return false, nil
	}
	if err != nil {
		c.logger.Warn().Err(err).Int("offset", offset).Msg("List page fetch failed")
		c.renderer.RenderListError(err)
		return true, fmt.Errorf("load page at offset %d: %w", offset, err)
	}

	c.pager.Apply(offset, page.Next, page.Previous)
	st := c.pager.State()
	c.renderer.RenderPagination(st.CanNext(), st.CanPrev())
	return true, nil
}

// renderCards flushes an aggregated page unless gen was superseded.
func (c *Controller) renderCards(gen uint64, offset int, buf *pageBuffer, err error) (bool, error) {
	c.renderMu.Lock()
	defer c.renderMu.Unlock()

	if !c.current(gen) {
		c.logger.Debug().Int("offset", offset).Msg("Dropping superseded list page")
		return false, nil
	}

	if buf.cleared {
		c.renderer.ClearList()
		for _, p := range buf.cards {
			c.renderer.AppendCard(p)
		}
	}
	if err != nil {
		c.logger.Warn().Err(err).Int("offset", offset).Msg("List aggregation failed")
		c.renderer.RenderListError(err)
		return true, fmt.Errorf("aggregate page at offset %d: %w", offset, err)
	}
	return true, nil
}

func (c *Controller) current(gen uint64) bool {
	return c.generation.Load() == gen
}

// historyRecorder re-renders the history after every add.
type historyRecorder struct {
	c *Controller
}

func (r historyRecorder) Add(name string) bool {
	changed := r.c.history.Add(name)
	r.c.renderer.RenderHistory(r.c.history.Names())
	return changed
}

// pageBuffer holds an aggregated page until the generation check passes.
type pageBuffer struct {
	cleared bool
	cards   []pokeapi.Pokemon
}

func (b *pageBuffer) ClearList() {
	b.cleared = true
	b.cards = b.cards[:0]
}

func (b *pageBuffer) AppendCard(p pokeapi.Pokemon) {
	b.cards = append(b.cards, p)
}
