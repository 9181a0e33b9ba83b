package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Sternrassler/pokedex-client/pkg/detail"
	"github.com/Sternrassler/pokedex-client/pkg/pokeapi"
	"github.com/Sternrassler/pokedex-client/pkg/view"
)

// Controller is the subset of *app.Controller the model drives.
type Controller interface {
	Start(ctx context.Context) error
	Next(ctx context.Context) error
	Prev(ctx context.Context) error
	Select(ctx context.Context, key string)
	Replay(ctx context.Context, index int) error
}

type focus int

const (
	focusList focus = iota
	focusSearch
	focusHistory
)

// Model is the bubbletea model of the browser.
type Model struct {
	ctx  context.Context
	ctrl Controller

	cards      []pokeapi.Pokemon
	cursor     int
	listErr    error
	loading    bool
	canNext    bool
	canPrev    bool
	detail     *view.Detail
	detailErr  string
	detailWait string

	history       []string
	historyCursor int

	search textinput.Model
	focus  focus

	width, height int
}

// New creates a model. Call Attach before running the program.
func New(ctx context.Context) *Model {
	ti := textinput.New()
	ti.Placeholder = "name or id"
	ti.Prompt = "search> "
	ti.CharLimit = 64

	return &Model{
		ctx:     ctx,
		search:  ti,
		loading: true,
	}
}

// Attach sets the controller the model drives.
func (m *Model) Attach(ctrl Controller) {
	m.ctrl = ctrl
}

// Init starts loading the first page.
func (m *Model) Init() tea.Cmd {
	return m.do(func(ctx context.Context) { _ = m.ctrl.Start(ctx) })
}

// do runs f off the event loop. Results arrive as renderer messages.
func (m *Model) do(f func(ctx context.Context)) tea.Cmd {
	if m.ctrl == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		f(ctx)
		return nil
	}
}

// Update handles renderer messages and key presses.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case listClearedMsg:
		m.cards = m.cards[:0]
		m.cursor = 0
		m.listErr = nil
		m.loading = false
		return m, nil

	case cardMsg:
		m.cards = append(m.cards, msg.pokemon)
		return m, nil

	case listErrorMsg:
		// A failed load that never cleared the list leaves no cards of its
		// own; a partial page keeps the cards rendered before the error.
		if m.loading {
			m.cards = m.cards[:0]
			m.cursor = 0
		}
		m.listErr = msg.err
		m.loading = false
		return m, nil

	case detailClearedMsg:
		m.detail = nil
		m.detailErr = ""
		m.detailWait = ""
		return m, nil

	case detailMsg:
		d := view.NewDetail(msg.pokemon)
		m.detail = &d
		m.detailErr = ""
		m.detailWait = ""
		return m, nil

	case detailErrorMsg:
		m.detail = nil
		m.detailWait = ""
		m.detailErr = fmt.Sprintf("Could not find the details of %s.", strings.ToUpper(msg.key))
		return m, nil

	case paginationMsg:
		m.canNext, m.canPrev = msg.canNext, msg.canPrev
		return m, nil

	case historyMsg:
		m.history = msg.names
		if m.historyCursor >= len(m.history) {
			m.historyCursor = max(0, len(m.history)-1)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.focus {
		case focusSearch:
			return m.updateSearch(msg)
		case focusHistory:
			return m.updateHistory(msg)
		default:
			return m.updateList(msg)
		}
	}

	return m, nil
}

func (m *Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.cards)-1 {
			m.cursor++
		}
	case "enter":
		if m.cursor < len(m.cards) {
			return m, m.selectKey(m.cards[m.cursor].Name)
		}
	case "n", "right":
		if m.canNext && !m.loading {
			m.loading = true
			return m, m.do(func(ctx context.Context) { _ = m.ctrl.Next(ctx) })
		}
	case "p", "left":
		if m.canPrev && !m.loading {
			m.loading = true
			return m, m.do(func(ctx context.Context) { _ = m.ctrl.Prev(ctx) })
		}
	case "/":
		m.focus = focusSearch
		return m, m.search.Focus()
	case "tab", "h":
		if len(m.history) > 0 {
			m.focus = focusHistory
		}
	}
	return m, nil
}

func (m *Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		query := m.search.Value()
		m.search.SetValue("")
		m.search.Blur()
		m.focus = focusList
		return m, m.selectKey(query)
	case tea.KeyEsc:
		m.search.Blur()
		m.focus = focusList
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m *Model) updateHistory(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc", "tab":
		m.focus = focusList
	case "up", "k":
		if m.historyCursor > 0 {
			m.historyCursor--
		}
	case "down", "j":
		if m.historyCursor < len(m.history)-1 {
			m.historyCursor++
		}
	case "enter":
		if m.historyCursor < len(m.history) {
			idx := m.historyCursor
			m.detailWait = m.history[idx]
			return m, m.do(func(ctx context.Context) { _ = m.ctrl.Replay(ctx, idx) })
		}
	}
	return m, nil
}

func (m *Model) selectKey(key string) tea.Cmd {
	key = detail.NormalizeKey(key)
	if key == "" {
		return nil
	}
	m.detailWait = key
	return m.do(func(ctx context.Context) { m.ctrl.Select(ctx, key) })
}

// View renders the screen.
func (m *Model) View() string {
	header := titleStyle.Render("Pokédex")

	body := lipgloss.JoinHorizontal(lipgloss.Top, m.viewList(), " ", m.viewDetail())

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		body,
		m.viewHistory(),
		m.search.View(),
		helpStyle.Render(m.help()),
	)
}

func (m *Model) listRows() int {
	if m.height <= 0 {
		return 20
	}
	return max(5, m.height-10)
}

func (m *Model) viewList() string {
	var b strings.Builder

	switch {
	case m.listErr != nil && len(m.cards) == 0:
		b.WriteString(errorStyle.Render("Error loading the pokemon list."))
		b.WriteString("\n" + dimStyle.Render(m.listErr.Error()))
	case m.loading && len(m.cards) == 0:
		b.WriteString(dimStyle.Render("Loading and sorting pokemon..."))
	case len(m.cards) == 0:
		b.WriteString(dimStyle.Render("No pokemon on this page."))
	default:
		rows := m.listRows()
		start := 0
		if m.cursor >= rows {
			start = m.cursor - rows + 1
		}
		end := min(start+rows, len(m.cards))
		for i := start; i < end; i++ {
			line := view.CardTitle(m.cards[i])
			if i == m.cursor {
				line = selectedStyle.Render("> " + line)
			} else {
				line = "  " + line
			}
			b.WriteString(line)
			if i < end-1 {
				b.WriteString("\n")
			}
		}
		if m.listErr != nil {
			b.WriteString("\n" + errorStyle.Render("Some pokemon could not be loaded."))
			b.WriteString("\n" + dimStyle.Render(m.listErr.Error()))
		}
	}

	style := listStyle
	if m.focus == focusList {
		style = style.BorderForeground(focusedBorder)
	}
	return style.Render(b.String())
}

func (m *Model) viewDetail() string {
	switch {
	case m.detailWait != "":
		return detailStyle.Render(fmt.Sprintf("Loading details of %s...", strings.ToUpper(m.detailWait)))
	case m.detailErr != "":
		return detailStyle.Render(errorStyle.Render("Error!") + "\n" + m.detailErr)
	case m.detail != nil:
		return panelStyle(m.detail.Color).Render(renderDetail(*m.detail))
	default:
		return detailStyle.Render(dimStyle.Render("Select a pokemon to see its details."))
	}
}

func (m *Model) viewHistory() string {
	if len(m.history) == 0 {
		return dimStyle.Render("History: none yet.")
	}

	items := make([]string, 0, len(m.history))
	for i, name := range m.history {
		if m.focus == focusHistory && i == m.historyCursor {
			items = append(items, selectedStyle.Render("["+name+"]"))
			continue
		}
		items = append(items, name)
	}
	return "History: " + strings.Join(items, "  ")
}

func (m *Model) help() string {
	parts := []string{"↑/↓ move", "enter details", "/ search"}
	if m.canPrev {
		parts = append(parts, "p prev")
	}
	if m.canNext {
		parts = append(parts, "n next")
	}
	if len(m.history) > 0 {
		parts = append(parts, "tab history")
	}
	parts = append(parts, "q quit")
	return strings.Join(parts, " • ")
}
