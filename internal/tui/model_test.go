package tui

import (
	"context"
	"errors"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sternrassler/pokedex-client/pkg/pokeapi"
)

type fakeController struct {
	mu      sync.Mutex
	calls   []string
	selects []string
	replays []int
}

func (f *fakeController) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeController) Start(ctx context.Context) error { f.record("start"); return nil }
func (f *fakeController) Next(ctx context.Context) error  { f.record("next"); return nil }
func (f *fakeController) Prev(ctx context.Context) error  { f.record("prev"); return nil }

func (f *fakeController) Select(ctx context.Context, key string) {
	f.record("select")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selects = append(f.selects, key)
}

func (f *fakeController) Replay(ctx context.Context, index int) error {
	f.record("replay")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replays = append(f.replays, index)
	return nil
}

type fakeSender struct {
	msgs []tea.Msg
}

func (f *fakeSender) Send(msg tea.Msg) { f.msgs = append(f.msgs, msg) }

func newTestModel() (*Model, *fakeController) {
	m := New(context.Background())
	ctrl := &fakeController{}
	m.Attach(ctrl)
	return m, ctrl
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(m *Model, msgs ...tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	for _, msg := range msgs {
		_, cmd = m.Update(msg)
	}
	return cmd
}

func loadCards(m *Model) {
	send(m,
		listClearedMsg{},
		cardMsg{pokeapi.Pokemon{ID: 1, Name: "bulbasaur"}},
		cardMsg{pokeapi.Pokemon{ID: 4, Name: "charmander"}},
		cardMsg{pokeapi.Pokemon{ID: 7, Name: "squirtle"}},
	)
}

func TestRenderer_SendsMessages(t *testing.T) {
	s := &fakeSender{}
	r := NewRenderer(s)
	p := pokeapi.Pokemon{ID: 25, Name: "pikachu"}
	boom := errors.New("boom")

	r.ClearList()
	r.AppendCard(p)
	r.RenderListError(boom)
	r.ClearDetail()
	r.RenderDetail(p)
	r.RenderDetailError("mew", boom)
	r.RenderPagination(true, false)
	r.RenderHistory([]string{"pikachu"})

	assert.Equal(t, []tea.Msg{
		listClearedMsg{},
		cardMsg{p},
		listErrorMsg{boom},
		detailClearedMsg{},
		detailMsg{p},
		detailErrorMsg{key: "mew", err: boom},
		paginationMsg{canNext: true, canPrev: false},
		historyMsg{names: []string{"pikachu"}},
	}, s.msgs)
}

func TestInit_StartsController(t *testing.T) {
	m, ctrl := newTestModel()

	cmd := m.Init()
	require.NotNil(t, cmd)
	cmd()

	assert.Equal(t, []string{"start"}, ctrl.calls)
	assert.Contains(t, m.View(), "Loading and sorting pokemon...")
}

func TestList_CursorAndSelect(t *testing.T) {
	m, ctrl := newTestModel()
	loadCards(m)

	assert.Contains(t, m.View(), "#1 - BULBASAUR")

	send(m, key("down"), key("down"), key("down"))
	assert.Equal(t, 2, m.cursor, "cursor stops at the last card")
	send(m, key("up"))
	assert.Equal(t, 1, m.cursor)

	cmd := send(m, key("enter"))
	require.NotNil(t, cmd)
	assert.Contains(t, m.View(), "Loading details of CHARMANDER...")
	cmd()
	assert.Equal(t, []string{"charmander"}, ctrl.selects)
}

func TestList_ClearResetsCursor(t *testing.T) {
	m, _ := newTestModel()
	loadCards(m)
	send(m, key("down"))

	send(m, listClearedMsg{})
	assert.Zero(t, m.cursor)
	assert.Empty(t, m.cards)
}

func TestPagination_Keys(t *testing.T) {
	m, ctrl := newTestModel()
	loadCards(m)

	assert.Nil(t, send(m, key("n")), "next disabled before pagination is rendered")
	assert.Nil(t, send(m, key("p")))

	send(m, paginationMsg{canNext: true, canPrev: false})
	assert.Nil(t, send(m, key("p")), "prev disabled on first page")

	cmd := send(m, key("n"))
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, []string{"next"}, ctrl.calls)

	assert.Nil(t, send(m, key("n")), "no second request while loading")

	send(m, listClearedMsg{}, paginationMsg{canNext: true, canPrev: true})
	cmd = send(m, key("p"))
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, []string{"next", "prev"}, ctrl.calls)
}

func TestSearch(t *testing.T) {
	m, ctrl := newTestModel()

	send(m, key("/"))
	assert.Equal(t, focusSearch, m.focus)

	send(m, key(" PikaChu "))
	cmd := send(m, key("enter"))
	require.NotNil(t, cmd)
	cmd()

	assert.Equal(t, []string{"pikachu"}, ctrl.selects)
	assert.Equal(t, focusList, m.focus)
	assert.Empty(t, m.search.Value())
}

func TestSearch_EmptyQueryIsNoOp(t *testing.T) {
	m, ctrl := newTestModel()

	send(m, key("/"), key("   "))
	assert.Nil(t, send(m, key("enter")))
	assert.Empty(t, ctrl.calls)
}

func TestSearch_EscCancels(t *testing.T) {
	m, ctrl := newTestModel()

	send(m, key("/"), key("mew"), key("esc"))
	assert.Equal(t, focusList, m.focus)
	assert.Empty(t, ctrl.calls)
}

func TestHistory_Replay(t *testing.T) {
	m, ctrl := newTestModel()

	send(m, historyMsg{names: []string{"pikachu", "bulbasaur"}})
	assert.Contains(t, m.View(), "History: pikachu  bulbasaur")

	send(m, key("tab"))
	assert.Equal(t, focusHistory, m.focus)

	send(m, key("down"))
	cmd := send(m, key("enter"))
	require.NotNil(t, cmd)
	cmd()

	assert.Equal(t, []int{1}, ctrl.replays)

	send(m, key("esc"))
	assert.Equal(t, focusList, m.focus)
}

func TestHistory_TabIgnoredWhenEmpty(t *testing.T) {
	m, _ := newTestModel()
	send(m, key("tab"))
	assert.Equal(t, focusList, m.focus)
	assert.Contains(t, m.View(), "History: none yet.")
}

func TestDetail_Rendering(t *testing.T) {
	m, _ := newTestModel()

	send(m, detailMsg{pokeapi.Pokemon{
		ID:     25,
		Name:   "pikachu",
		Height: 4,
		Weight: 60,
		Types:  []string{"electric"},
		Stats:  []pokeapi.Stat{{Name: "special-attack", BaseValue: 50}},
	}})

	out := m.View()
	assert.Contains(t, out, "PIKACHU (#25)")
	assert.Contains(t, out, "0.4 m")
	assert.Contains(t, out, "6 kg")
	assert.Contains(t, out, "special attack")

	send(m, detailErrorMsg{key: "missingno", err: errors.New("not found")})
	assert.Contains(t, m.View(), "Could not find the details of MISSINGNO.")

	send(m, detailClearedMsg{})
	assert.Contains(t, m.View(), "Select a pokemon to see its details.")
}

func TestList_ErrorRendering(t *testing.T) {
	m, _ := newTestModel()
	send(m, listErrorMsg{errors.New("upstream 500")})

	out := m.View()
	assert.Contains(t, out, "Error loading the pokemon list.")
	assert.Contains(t, out, "upstream 500")
}

func TestList_PartialPageKeepsCards(t *testing.T) {
	m, _ := newTestModel()
	send(m,
		listClearedMsg{},
		cardMsg{pokeapi.Pokemon{ID: 1, Name: "bulbasaur"}},
		cardMsg{pokeapi.Pokemon{ID: 4, Name: "charmander"}},
		listErrorMsg{errors.New("1 of 3 detail fetches failed (pikachu)")},
	)

	out := m.View()
	assert.Contains(t, out, "#1 - BULBASAUR")
	assert.Contains(t, out, "#4 - CHARMANDER")
	assert.Contains(t, out, "Some pokemon could not be loaded.")
	assert.Contains(t, out, "pikachu")
	assert.NotContains(t, out, "Error loading the pokemon list.")
}

func TestList_FailedLoadReplacesPreviousPage(t *testing.T) {
	m, _ := newTestModel()
	loadCards(m)
	send(m, paginationMsg{canNext: true})

	send(m, key("n"))
	send(m, listErrorMsg{errors.New("upstream 500")})

	out := m.View()
	assert.Contains(t, out, "Error loading the pokemon list.")
	assert.NotContains(t, out, "#1 - BULBASAUR", "cards of the previous page are not shown")
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel()

	cmd := send(m, key("ctrl+c"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	cmd = send(m, key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestStatBar(t *testing.T) {
	assert.Equal(t, statBarWidth, len([]rune(statBar(100))))
	assert.Equal(t, statBarWidth, len([]rune(statBar(0))))
	assert.Equal(t, "████████████████████████", statBar(100))
}
