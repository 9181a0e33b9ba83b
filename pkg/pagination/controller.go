package pagination

import (
	"sync"
)

// DefaultPageSize is the number of list entries requested per page.
const DefaultPageSize = 150

// State is a snapshot of the pagination controller.
type State struct {
	Offset   int
	PageSize int
	NextURL  string
	PrevURL  string
}

// CanNext reports whether a next page exists.
func (s State) CanNext() bool {
	return s.NextURL != ""
}

// CanPrev reports whether a previous page exists.
func (s State) CanPrev() bool {
	return s.PrevURL != "" && s.Offset != 0
}

// Controller holds the pagination state. It is safe for concurrent use.
type Controller struct {
	mu    sync.RWMutex
	state State
}

// NewController creates a controller at offset 0. A non-positive page size
// falls back to DefaultPageSize.
func NewController(pageSize int) *Controller {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Controller{state: State{PageSize: pageSize}}
}

// PageSize returns the configured page size.
func (c *Controller) PageSize() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.PageSize
}

// Offset returns the offset of the last successfully loaded page.
func (c *Controller) Offset() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Offset
}

// NextOffset returns offset + pageSize.
func (c *Controller) NextOffset() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Offset + c.state.PageSize
}

// PrevOffset returns offset - pageSize, clamped at 0.
func (c *Controller) PrevOffset() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return max(0, c.state.Offset-c.state.PageSize)
}

// Apply records a successfully fetched page at offset.
func (c *Controller) Apply(offset int, next, prev string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Offset = max(0, offset)
	c.state.NextURL = next
	c.state.PrevURL = prev
}

// CanNext reports whether the next control is enabled.
func (c *Controller) CanNext() bool {
	return c.State().CanNext()
}

// CanPrev reports whether the previous control is enabled.
func (c *Controller) CanPrev() bool {
	return c.State().CanPrev()
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}
