// Package tui is the interactive terminal front end built on bubbletea.
//
// The app controller drives a Renderer, which forwards every call to the
// running program as a message. All state changes happen in Model.Update.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Sternrassler/pokedex-client/pkg/pokeapi"
)

// Sender delivers messages to a running program. *tea.Program implements it.
type Sender interface {
	Send(msg tea.Msg)
}

type (
	listClearedMsg   struct{}
	cardMsg          struct{ pokemon pokeapi.Pokemon }
	listErrorMsg     struct{ err error }
	detailClearedMsg struct{}
	detailMsg        struct{ pokemon pokeapi.Pokemon }
	detailErrorMsg   struct {
		key string
		err error
	}
	paginationMsg struct{ canNext, canPrev bool }
	historyMsg    struct{ names []string }
)

// Renderer implements app.Renderer on top of a Sender.
type Renderer struct {
	sender Sender
}

// NewRenderer creates a renderer that sends to s.
func NewRenderer(s Sender) *Renderer {
	return &Renderer{sender: s}
}

func (r *Renderer) ClearList() {
	r.sender.Send(listClearedMsg{})
}

func (r *Renderer) AppendCard(p pokeapi.Pokemon) {
	r.sender.Send(cardMsg{p})
}

func (r *Renderer) RenderListError(err error) {
	r.sender.Send(listErrorMsg{err})
}

func (r *Renderer) ClearDetail() {
	r.sender.Send(detailClearedMsg{})
}

func (r *Renderer) RenderDetail(p pokeapi.Pokemon) {
	r.sender.Send(detailMsg{p})
}

func (r *Renderer) RenderDetailError(key string, err error) {
	r.sender.Send(detailErrorMsg{key: key, err: err})
}

func (r *Renderer) RenderPagination(canNext, canPrev bool) {
	r.sender.Send(paginationMsg{canNext: canNext, canPrev: canPrev})
}

func (r *Renderer) RenderHistory(names []string) {
	r.sender.Send(historyMsg{names: names})
}
