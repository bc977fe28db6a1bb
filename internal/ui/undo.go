// Package ui provides the terminal interface for tally.
// This file implements the session history behind ctrl+z / ctrl+y. Every
// accepted change is recorded as the whole list before and after it.
package ui

import (
	"sync"

	"tally/internal/tally"

	"github.com/mattn/go-runewidth"
)

// maxHistorySize bounds how many changes can be undone.
const maxHistorySize = 50

// Change is one recorded list replacement.
type Change struct {
	Desc   string
	Before []tally.Task
	After  []tally.Task
}

// NewChange copies before and after so later edits by the caller do not
// leak into the history.
func NewChange(desc string, before, after []tally.Task) *Change {
	return &Change{
		Desc:   desc,
		Before: tally.CloneTasks(before),
		After:  tally.CloneTasks(after),
	}
}

// listSaver is the part of the store the history writes through.
type listSaver interface {
	Save(tasks []tally.Task) error
}

// History holds the undo and redo stacks for one session.
type History struct {
	mu     sync.Mutex
	store  listSaver
	done   []*Change
	undone []*Change
}

// NewHistory creates an empty history that restores lists into store.
func NewHistory(store listSaver) *History {
	return &History{store: store}
}

// Record adds a change. Anything previously undone can no longer be redone.
func (h *History) Record(c *Change) {
	if c == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undone = nil
	if len(h.done) == maxHistorySize {
		h.done = h.done[1:]
	}
	h.done = append(h.done, c)
}

// CanUndo reports whether there is a change to revert.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.done) > 0
}

// CanRedo reports whether there is a reverted change to reapply.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undone) > 0
}

// Undo restores the list from before the latest change and returns the
// change's description, or "" when there is nothing to undo. A failed save
// leaves both stacks as they were.
func (h *History) Undo() (string, error) {
	return h.step(&h.done, &h.undone, func(c *Change) []tally.Task { return c.Before })
}

// Redo reapplies the latest undone change.
func (h *History) Redo() (string, error) {
	return h.step(&h.undone, &h.done, func(c *Change) []tally.Task { return c.After })
}

func (h *History) step(from, to *[]*Change, list func(*Change) []tally.Task) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(*from) == 0 {
		return "", nil
	}
	c := (*from)[len(*from)-1]
	if err := h.store.Save(list(c)); err != nil {
		return "", err
	}
	*from = (*from)[:len(*from)-1]
	*to = append(*to, c)
	return c.Desc, nil
}

// truncateText shortens text to maxLen columns, ending in "..".
func truncateText(text string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	return runewidth.Truncate(text, maxLen, "..")
}
