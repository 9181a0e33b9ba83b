// Package history keeps the session-local list of viewed pokemon names.
//
// Names are unique and index 0 is the most recent. The list is unbounded and
// lives only as long as the process.
package history

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Policy controls what happens when a name that is already present is added.
type Policy string

const (
	// MoveToFront moves an existing name to index 0.
	MoveToFront Policy = "move-to-front"

	// InsertOnce leaves an existing name where it is.
	InsertOnce Policy = "insert-once"
)

// ParsePolicy maps a configuration string to a Policy. Empty means MoveToFront.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", MoveToFront:
		return MoveToFront, nil
	case InsertOnce:
		return InsertOnce, nil
	default:
		return "", fmt.Errorf("unknown history policy %q", s)
	}
}

// Tracker is the ordered, duplicate-free history. It is safe for concurrent use.
type Tracker struct {
	mu     sync.RWMutex
	policy Policy
	names  []string
}

// New creates an empty tracker.
func New(policy Policy) *Tracker {
	if policy == "" {
		policy = MoveToFront
	}
	return &Tracker{policy: policy}
}

// Policy returns the configured policy.
func (t *Tracker) Policy() Policy {
	return t.policy
}

// Add records name and reports whether the order changed.
func (t *Tracker) Add(name string) bool {
	if name == "" {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	idx := slices.Index(t.names, name)
	switch {
	case idx == 0:
		return false
	case idx > 0 && t.policy == InsertOnce:
		return false
	case idx > 0:
		t.names = slices.Delete(t.names, idx, idx+1)
	}

	t.names = slices.Insert(t.names, 0, name)
	return true
}

// Names returns a copy of the history, most recent first.
func (t *Tracker) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.names)
}

// At returns the name at index i.
func (t *Tracker) At(i int) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if i < 0 || i >= len(t.names) {
		return "", false
	}
	return t.names[i], true
}

// Len returns the number of names.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.names)
}

// Contains reports whether name is in the history.
func (t *Tracker) Contains(name string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Contains(t.names, name)
}
