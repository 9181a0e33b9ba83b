package app

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/Sternrassler/pokedex-client/internal/testutil"
	"github.com/Sternrassler/pokedex-client/pkg/aggregate"
	"github.com/Sternrassler/pokedex-client/pkg/client"
	"github.com/Sternrassler/pokedex-client/pkg/history"
	"github.com/Sternrassler/pokedex-client/pkg/pokeapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type paginationCall struct {
	canNext, canPrev bool
}

// fakeRenderer records every call it receives.
type fakeRenderer struct {
	mu           sync.Mutex
	clearList    int
	cards        []pokeapi.Pokemon
	listErrors   []error
	clearDetail  int
	details      []pokeapi.Pokemon
	detailErrors []string
	pagination   []paginationCall
	histories    [][]string
}

func (f *fakeRenderer) ClearList() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clearList++
	f.cards = nil
}

func (f *fakeRenderer) AppendCard(p pokeapi.Pokemon) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cards = append(f.cards, p)
}

func (f *fakeRenderer) RenderListError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listErrors = append(f.listErrors, err)
}

func (f *fakeRenderer) ClearDetail() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clearDetail++
}

func (f *fakeRenderer) RenderDetail(p pokeapi.Pokemon) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.details = append(f.details, p)
}

func (f *fakeRenderer) RenderDetailError(key string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailErrors = append(f.detailErrors, key)
}

func (f *fakeRenderer) RenderPagination(canNext, canPrev bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pagination = append(f.pagination, paginationCall{canNext, canPrev})
}

func (f *fakeRenderer) RenderHistory(names []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.histories = append(f.histories, names)
}

func (f *fakeRenderer) cardIDs() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]int, 0, len(f.cards))
	for _, p := range f.cards {
		ids = append(ids, p.ID)
	}
	return ids
}

func (f *fakeRenderer) lastPagination() paginationCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pagination[len(f.pagination)-1]
}

func newTestController(t *testing.T, cfg Config) (*Controller, *fakeRenderer, *testutil.MockPokeAPI) {
	t.Helper()

	mock := testutil.NewMockPokeAPIWithSamples()
	t.Cleanup(mock.Close)

	clientCfg := client.DefaultConfig()
	clientCfg.BaseURL = mock.BaseURL()
	c, err := client.New(clientCfg)
	require.NoError(t, err)

	r := &fakeRenderer{}
	return New(pokeapi.New(c), r, cfg), r, mock
}

func TestStart_LoadsFirstPageSorted(t *testing.T) {
	ctrl, r, _ := newTestController(t, DefaultConfig())

	require.NoError(t, ctrl.Start(context.Background()))

	assert.Equal(t, testutil.SampleIDs(), r.cardIDs())
	assert.Equal(t, 1, r.clearList)
	assert.Equal(t, 1, r.clearDetail, "list load clears the details panel")
	assert.Equal(t, paginationCall{canNext: false, canPrev: false}, r.lastPagination())
	require.Len(t, r.histories, 1)
	assert.Empty(t, r.histories[0])
}

func TestNextPrev(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PageSize = 2
	ctrl, r, _ := newTestController(t, cfg)
	ctx := context.Background()

	require.NoError(t, ctrl.LoadPage(ctx, 0))
	// pikachu(25), squirtle(7)
	assert.Equal(t, []int{7, 25}, r.cardIDs())
	assert.Equal(t, paginationCall{canNext: true, canPrev: false}, r.lastPagination())

	require.NoError(t, ctrl.Next(ctx))
	// bulbasaur(1), chansey(113)
	assert.Equal(t, []int{1, 113}, r.cardIDs())
	assert.Equal(t, 2, ctrl.Pagination().Offset)
	assert.Equal(t, paginationCall{canNext: true, canPrev: true}, r.lastPagination())

	require.NoError(t, ctrl.Next(ctx))
	assert.Equal(t, []int{4}, r.cardIDs())
	assert.Equal(t, paginationCall{canNext: false, canPrev: true}, r.lastPagination())

	calls := len(r.pagination)
	require.NoError(t, ctrl.Next(ctx), "next on the last page is a no-op")
	assert.Len(t, r.pagination, calls)

	require.NoError(t, ctrl.Prev(ctx))
	assert.Equal(t, 2, ctrl.Pagination().Offset)
	require.NoError(t, ctrl.Prev(ctx))
	assert.Equal(t, 0, ctrl.Pagination().Offset)
	assert.False(t, ctrl.Pagination().CanPrev())
}

func TestLoadPage_FailedDetailLeavesListUntouched(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PageSize = 2
	ctrl, r, mock := newTestController(t, cfg)
	ctx := context.Background()

	require.NoError(t, ctrl.LoadPage(ctx, 0))
	before := r.cardIDs()

	mock.FailPokemon("chansey", http.StatusInternalServerError)
	err := ctrl.Next(ctx)

	require.Error(t, err)
	assert.Equal(t, before, r.cardIDs(), "no partial render")
	assert.Equal(t, 1, r.clearList)
	require.Len(t, r.listErrors, 1)
	assert.Equal(t, 2, ctrl.Pagination().Offset, "pagination follows the list page, not the details")
}

func TestLoadPage_SettleAllRendersPartial(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Aggregate.Policy = aggregate.SettleAll
	ctrl, r, mock := newTestController(t, cfg)
	mock.FailPokemon("pikachu", http.StatusInternalServerError)

	err := ctrl.LoadPage(context.Background(), 0)

	require.Error(t, err)
	assert.Equal(t, []int{1, 4, 7, 113}, r.cardIDs())
	assert.Len(t, r.listErrors, 1)
}

func TestLoadPage_ListFailureKeepsPagination(t *testing.T) {
	ctrl, r, mock := newTestController(t, DefaultConfig())
	ctx := context.Background()
	require.NoError(t, ctrl.LoadPage(ctx, 0))

	mock.SetHandler("/api/v2/pokemon", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	err := ctrl.LoadPage(ctx, 150)
	require.Error(t, err)
	assert.Equal(t, 0, ctrl.Pagination().Offset)
	assert.Len(t, r.listErrors, 1)
}

func TestLoadPage_SupersededLoadDropped(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PageSize = 2
	ctrl, r, mock := newTestController(t, cfg)
	mock.DelayPokemon("pikachu", 150*time.Millisecond)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = ctrl.LoadPage(ctx, 0)
	}()

	time.Sleep(40 * time.Millisecond)
	require.NoError(t, ctrl.LoadPage(ctx, 2))
	wg.Wait()

	assert.Equal(t, []int{1, 113}, r.cardIDs())
	assert.Equal(t, 1, r.clearList, "only the latest load renders cards")
	assert.Equal(t, 2, ctrl.Pagination().Offset)
}

// parkingRenderer parks the first AppendCard until release is closed.
type parkingRenderer struct {
	fakeRenderer
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (p *parkingRenderer) AppendCard(card pokeapi.Pokemon) {
	first := false
	p.once.Do(func() { first = true })
	if first {
		close(p.entered)
		<-p.release
	}
	p.fakeRenderer.AppendCard(card)
}

func TestLoadPage_NewerLoadRendersAfterInFlightRender(t *testing.T) {
	mock := testutil.NewMockPokeAPIWithSamples()
	t.Cleanup(mock.Close)

	clientCfg := client.DefaultConfig()
	clientCfg.BaseURL = mock.BaseURL()
	c, err := client.New(clientCfg)
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.PageSize = 2
	r := &parkingRenderer{entered: make(chan struct{}), release: make(chan struct{})}
	ctrl := New(pokeapi.New(c), r, cfg)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = ctrl.LoadPage(ctx, 0)
	}()
	<-r.entered

	go func() {
		defer wg.Done()
		_ = ctrl.LoadPage(ctx, 2)
	}()

	// the newer load fetches its page while the first one is mid-render
	time.Sleep(100 * time.Millisecond)
	close(r.release)
	wg.Wait()

	assert.Equal(t, []int{1, 113}, r.cardIDs(), "cards of the older load never land on top")
	assert.Equal(t, 2, ctrl.Pagination().Offset)
	assert.Equal(t, paginationCall{canNext: true, canPrev: true}, r.lastPagination())
}

func TestSelect_RecordsHistory(t *testing.T) {
	ctrl, r, _ := newTestController(t, DefaultConfig())
	ctx := context.Background()

	ctrl.Select(ctx, "Pikachu")
	ctrl.Select(ctx, "bulbasaur")
	ctrl.Select(ctx, " pikachu ")

	assert.Equal(t, []string{"pikachu", "bulbasaur"}, ctrl.History())
	require.Len(t, r.details, 3)
	require.Len(t, r.histories, 3)
	assert.Equal(t, []string{"pikachu", "bulbasaur"}, r.histories[2])
}

func TestSelect_UnknownRendersError(t *testing.T) {
	ctrl, r, _ := newTestController(t, DefaultConfig())

	ctrl.Select(context.Background(), "missingno")

	assert.Equal(t, []string{"missingno"}, r.detailErrors)
	assert.Empty(t, ctrl.History())
	assert.Empty(t, r.histories)
}

func TestSelect_InsertOncePolicy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HistoryPolicy = history.InsertOnce
	ctrl, _, _ := newTestController(t, cfg)
	ctx := context.Background()

	ctrl.Select(ctx, "pikachu")
	ctrl.Select(ctx, "bulbasaur")
	ctrl.Select(ctx, "pikachu")

	assert.Equal(t, []string{"bulbasaur", "pikachu"}, ctrl.History())
}

func TestReplay(t *testing.T) {
	ctrl, r, _ := newTestController(t, DefaultConfig())
	ctx := context.Background()

	ctrl.Select(ctx, "squirtle")
	ctrl.Select(ctx, "charmander")

	require.NoError(t, ctrl.Replay(ctx, 1))
	require.Len(t, r.details, 3)
	assert.Equal(t, "squirtle", r.details[2].Name)
	assert.Equal(t, []string{"squirtle", "charmander"}, ctrl.History())

	assert.Error(t, ctrl.Replay(ctx, 5))
}

func TestSelect_DoesNotTouchList(t *testing.T) {
	ctrl, r, _ := newTestController(t, DefaultConfig())
	ctx := context.Background()
	require.NoError(t, ctrl.LoadPage(ctx, 0))
	pagination := len(r.pagination)

	ctrl.Select(ctx, "pikachu")

	assert.Equal(t, 1, r.clearList)
	assert.Len(t, r.pagination, pagination)
	assert.Equal(t, 1, r.clearDetail)
}
